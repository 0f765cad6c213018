package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
)

// recordTimeLayout is RFC 3339 in UTC with milliseconds, so the ordering of
// records from one batch run survives in the log file.
const recordTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// newRecordHandler writes one JSON object per record. It backs both the
// "json" console format and the log file under paths.log_dir.
func newRecordHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		AddSource:   addSource,
		ReplaceAttr: replaceRecordAttr,
	})
}

func replaceRecordAttr(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(recordTimeLayout))
		}
		return attr
	case slog.LevelKey:
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
		return attr
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
		return attr
	}
	if attr.Value.Kind() == slog.KindDuration {
		attr.Value = slog.StringValue(attr.Value.Duration().Round(time.Millisecond).String())
	}
	return attr
}

// fileTee sends each record to the console handler, filtered at the
// configured level, and to the log file handler, which keeps debug records
// even when the console is quieter.
type fileTee struct {
	console slog.Handler
	file    slog.Handler
}

func (t *fileTee) Enabled(ctx context.Context, level slog.Level) bool {
	return t.console.Enabled(ctx, level) || t.file.Enabled(ctx, level)
}

func (t *fileTee) Handle(ctx context.Context, record slog.Record) error {
	var consoleErr error
	if t.console.Enabled(ctx, record.Level) {
		consoleErr = t.console.Handle(ctx, record.Clone())
	}
	if !t.file.Enabled(ctx, record.Level) {
		return consoleErr
	}
	if err := t.file.Handle(ctx, record); err != nil {
		return fmt.Errorf("write log file: %w", err)
	}
	return consoleErr
}

func (t *fileTee) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &fileTee{console: t.console.WithAttrs(attrs), file: t.file.WithAttrs(attrs)}
}

func (t *fileTee) WithGroup(name string) slog.Handler {
	return &fileTee{console: t.console.WithGroup(name), file: t.file.WithGroup(name)}
}
