package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// infoAttrLimit caps the fields printed beneath an INFO line; the rest are
// summarized as hidden. DEBUG lines print everything.
const infoAttrLimit = 6

// consoleTimeLayout stamps console lines in local time; the log file keeps UTC.
const consoleTimeLayout = "2006-01-02 15:04:05.000"

// infoValueLimit caps the runes of a free-text value on an INFO line, so a
// transcript excerpt attached to a record stays on one short line.
const infoValueLimit = 96

// Keys that are always printed before other fields when present.
var infoHighlightKeys = []string{
	FieldEventType,
	FieldErrorHint,
	FieldImpact,
	"error",
	"output",
	"guid",
	"status",
}

// pathKeys name fields holding file system paths; they print verbatim.
var pathKeys = map[string]struct{}{
	"output": {},
	"file":   {},
	"folder": {},
	"config": {},
}

// Keys already folded into the header.
var headerKeys = map[string]struct{}{
	FieldComponent: {},
	FieldCommand:   {},
	FieldInput:     {},
	FieldRunID:     {},
}

type prettyHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	level     *slog.LevelVar
	attrs     []slog.Attr
	groups    []string
	addSource bool
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &prettyHandler{mu: &sync.Mutex{}, writer: w, level: lvl, addSource: addSource}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *prettyHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	timestamp := record.Time
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	flattenAttrs(&kvs, h.groups, h.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})
	kvs = dedupeKVsByKey(kvs)

	var component, command, input string
	fields := make([]kv, 0, len(kvs))
	for _, item := range kvs {
		switch item.key {
		case FieldComponent:
			component = headerText(item.value)
		case FieldCommand:
			command = headerText(item.value)
		case FieldInput:
			input = headerText(item.value)
		}
		if _, folded := headerKeys[item.key]; folded && record.Level >= slog.LevelInfo {
			continue
		}
		fields = append(fields, item)
	}

	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}

	var buf bytes.Buffer
	buf.Grow(192 + len(fields)*32)
	h.writeHeader(&buf, timestamp, record.Level, component, composeSubject(command, input), message, record.Source())
	buf.WriteByte('\n')
	if record.Level < slog.LevelInfo {
		writeAllFields(&buf, fields)
	} else {
		writeInfoFields(&buf, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

func (h *prettyHandler) writeHeader(buf *bytes.Buffer, ts time.Time, level slog.Level, component, subject, message string, src *slog.Source) {
	buf.WriteString(formatTimestamp(ts))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(level))
	if component != "" {
		buf.WriteString(" [")
		buf.WriteString(component)
		buf.WriteByte(']')
	}
	if subject != "" {
		buf.WriteByte(' ')
		buf.WriteString(subject)
	}
	buf.WriteString(" – ")
	buf.WriteString(message)
	if h.addSource && src != nil {
		buf.WriteString(" [")
		buf.WriteString(filepath.Base(src.File))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(src.Line))
		buf.WriteByte(']')
	}
}

func writeInfoFields(buf *bytes.Buffer, fields []kv) {
	ordered := make([]kv, 0, len(fields))
	used := make(map[string]struct{}, len(fields))
	for _, key := range infoHighlightKeys {
		for _, item := range fields {
			if item.key == key {
				ordered = append(ordered, item)
				used[key] = struct{}{}
			}
		}
	}
	for _, item := range fields {
		if _, ok := used[item.key]; !ok {
			ordered = append(ordered, item)
		}
	}

	hidden := 0
	if len(ordered) > infoAttrLimit {
		hidden = len(ordered) - infoAttrLimit
		ordered = ordered[:infoAttrLimit]
	}
	for _, item := range ordered {
		buf.WriteString("    - ")
		buf.WriteString(item.key)
		buf.WriteString(": ")
		buf.WriteString(fieldText(item.key, item.value, infoValueLimit))
		buf.WriteByte('\n')
	}
	if hidden > 0 {
		buf.WriteString("    + ")
		buf.WriteString(strconv.Itoa(hidden))
		buf.WriteString(" more field")
		if hidden != 1 {
			buf.WriteByte('s')
		}
		buf.WriteString(" hidden\n")
	}
}

func writeAllFields(buf *bytes.Buffer, fields []kv) {
	for _, item := range fields {
		buf.WriteString("    ")
		buf.WriteString(item.key)
		buf.WriteString(": ")
		buf.WriteString(fieldText(item.key, item.value, 0))
		buf.WriteByte('\n')
	}
}

// composeSubject renders "command · file" for the console header.
func composeSubject(command, input string) string {
	command = strings.TrimSpace(command)
	input = strings.TrimSpace(input)
	if input != "" {
		input = filepath.Base(input)
	}
	switch {
	case command != "" && input != "":
		return command + " · " + input
	case command != "":
		return command
	default:
		return input
	}
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	clone.attrs = append(clone.attrs, attrs...)
	return clone
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

func (h *prettyHandler) clone() *prettyHandler {
	clone := &prettyHandler{
		mu:        h.mu,
		writer:    h.writer,
		level:     h.level,
		addSource: h.addSource,
	}
	if len(h.attrs) > 0 {
		clone.attrs = make([]slog.Attr, len(h.attrs))
		copy(clone.attrs, h.attrs)
	}
	if len(h.groups) > 0 {
		clone.groups = make([]string, len(h.groups))
		copy(clone.groups, h.groups)
	}
	return clone
}

type kv struct {
	key   string
	value slog.Value
}

func dedupeKVsByKey(attrs []kv) []kv {
	if len(attrs) < 2 {
		return attrs
	}
	positions := make(map[string]int, len(attrs))
	deduped := make([]kv, 0, len(attrs))
	for _, attr := range attrs {
		if attr.key == "" {
			continue
		}
		if pos, ok := positions[attr.key]; ok {
			deduped[pos].value = attr.value
			continue
		}
		positions[attr.key] = len(deduped)
		deduped = append(deduped, attr)
	}
	return deduped
}

func flattenAttrs(dst *[]kv, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		nextPrefix := prefix
		if attr.Key != "" {
			nextPrefix = append(append([]string(nil), prefix...), attr.Key)
		}
		flattenAttrs(dst, nextPrefix, attr.Value.Group())
		return
	}
	key := attr.Key
	if len(prefix) > 0 {
		key = strings.Join(append(append([]string(nil), prefix...), key), ".")
	}
	*dst = append(*dst, kv{key: key, value: attr.Value})
}

func formatTimestamp(ts time.Time) string {
	if ts.IsZero() {
		return ""
	}
	return ts.In(time.Local).Format(consoleTimeLayout)
}

// headerText renders a header value without quoting.
func headerText(v slog.Value) string {
	v = v.Resolve()
	if v.Kind() == slog.KindAny {
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
	}
	return v.String()
}

// fieldText renders one field value for the console. Paths, GUIDs and
// statuses print as they are; other text is quoted when it is empty or spans
// lines and is cut to limit runes when limit is positive.
func fieldText(key string, v slog.Value, limit int) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindDuration:
		return v.Duration().Round(time.Millisecond).String()
	case slog.KindString, slog.KindAny:
		return textField(key, headerText(v), limit)
	default:
		return v.String()
	}
}

func textField(key, text string, limit int) string {
	if _, ok := pathKeys[key]; ok || key == "guid" || key == "status" {
		if text == "" {
			return `""`
		}
		return text
	}
	if limit > 0 {
		if runes := []rune(text); len(runes) > limit {
			text = string(runes[:limit]) + "…"
		}
	}
	if text == "" || strings.ContainsAny(text, "\n\r\t") {
		return strconv.Quote(text)
	}
	return text
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}
