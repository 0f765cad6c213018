package mmif

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"clamsutils/internal/services"
)

// Short type names used by the converter.
const (
	TypeTextDocument  = "TextDocument"
	TypeAudioDocument = "AudioDocument"
	TypeVideoDocument = "VideoDocument"
	TypeTimeFrame     = "TimeFrame"
	TypeAlignment     = "Alignment"
	TypeSentence      = "Sentence"
	TypeToken         = "Token"
)

// Mmif is a parsed MMIF file.
type Mmif struct {
	Metadata  map[string]any `json:"metadata"`
	Documents []*Annotation  `json:"documents"`
	Views     []*View        `json:"views"`

	byID       map[string]*Annotation
	alignments []*alignment
}

// View is one tool's output layer.
type View struct {
	ID          string        `json:"id"`
	Metadata    ViewMetadata  `json:"metadata"`
	Annotations []*Annotation `json:"annotations"`
}

// ViewMetadata describes the producing app and the annotation types a view
// contains, with per-type default properties.
type ViewMetadata struct {
	App       string                    `json:"app"`
	Timestamp string                    `json:"timestamp,omitempty"`
	Contains  map[string]map[string]any `json:"contains"`
}

// Annotation is a document or annotation node with untyped properties.
type Annotation struct {
	Type       string         `json:"@type"`
	Properties map[string]any `json:"properties"`

	view *View
}

type alignment struct {
	source *Annotation
	target *Annotation
}

// Parse decodes an MMIF document and indexes its identifiers. Invalid JSON is
// a MalformedInput error.
func Parse(r io.Reader) (*Mmif, error) {
	var m Mmif
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, services.Wrap(services.ErrMalformedInput, "mmif", "decode", "invalid MMIF JSON", err)
	}
	m.index()
	return &m, nil
}

func (m *Mmif) index() {
	m.byID = make(map[string]*Annotation)
	for _, doc := range m.Documents {
		if doc == nil {
			continue
		}
		if id := doc.ID(); id != "" {
			m.byID[id] = doc
		}
	}
	for _, view := range m.Views {
		if view == nil {
			continue
		}
		for _, ann := range view.Annotations {
			if ann == nil {
				continue
			}
			ann.view = view
			if id := ann.LongID(); id != "" {
				m.byID[id] = ann
			}
		}
	}
	for _, view := range m.Views {
		if view == nil {
			continue
		}
		for _, ann := range view.AnnotationsOfType(TypeAlignment) {
			source, okSource := m.Resolve(view, ann.String("source"))
			target, okTarget := m.Resolve(view, ann.String("target"))
			if okSource && okTarget {
				m.alignments = append(m.alignments, &alignment{source: source, target: target})
			}
		}
	}
}

// TypeName reduces a type URI to its short name: the last path segment that
// is not a version marker such as "v5".
func TypeName(uri string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(uri), "/")
	segments := strings.Split(trimmed, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		segment := segments[i]
		if segment == "" || isVersionSegment(segment) {
			continue
		}
		return segment
	}
	return trimmed
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for _, r := range segment[1:] {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}

// qualify turns a view-local reference into a long identifier.
func qualify(viewID, ref string) string {
	if ref == "" || strings.Contains(ref, ":") || viewID == "" {
		return ref
	}
	return viewID + ":" + ref
}

// ViewsContaining returns the views whose metadata declares every type name.
func (m *Mmif) ViewsContaining(typeNames ...string) []*View {
	var out []*View
	for _, view := range m.Views {
		if view != nil && view.Contains(typeNames...) {
			out = append(out, view)
		}
	}
	return out
}

// Contains reports whether the view metadata declares every type name.
func (v *View) Contains(typeNames ...string) bool {
	declared := make(map[string]struct{}, len(v.Metadata.Contains))
	for uri := range v.Metadata.Contains {
		declared[TypeName(uri)] = struct{}{}
	}
	for _, name := range typeNames {
		if _, ok := declared[name]; !ok {
			return false
		}
	}
	return true
}

// AnnotationsOfType returns the view's annotations of the given short type,
// in document order.
func (v *View) AnnotationsOfType(typeName string) []*Annotation {
	var out []*Annotation
	for _, ann := range v.Annotations {
		if ann != nil && TypeName(ann.Type) == typeName {
			out = append(out, ann)
		}
	}
	return out
}

// containsProperty looks up a default property declared for a type in the
// view metadata.
func (v *View) containsProperty(typeName, key string) (any, bool) {
	for uri, props := range v.Metadata.Contains {
		if TypeName(uri) != typeName {
			continue
		}
		if value, ok := props[key]; ok {
			return value, true
		}
	}
	return nil, false
}

// Resolve finds the annotation a reference points to. References containing
// ':' are long identifiers; others are tried within view first, then as a
// top-level document id.
func (m *Mmif) Resolve(view *View, ref string) (*Annotation, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}
	if strings.Contains(ref, ":") {
		ann, ok := m.byID[ref]
		return ann, ok
	}
	if view != nil {
		if ann, ok := m.byID[view.ID+":"+ref]; ok {
			return ann, true
		}
	}
	ann, ok := m.byID[ref]
	return ann, ok
}

// Aligned returns every annotation linked to ann through an Alignment, from
// any view.
func (m *Mmif) Aligned(ann *Annotation) []*Annotation {
	var out []*Annotation
	for _, al := range m.alignments {
		switch ann {
		case al.source:
			out = append(out, al.target)
		case al.target:
			out = append(out, al.source)
		}
	}
	return out
}

// AlignedOfType returns the aligned annotations with one of the short type
// names, in alignment order.
func (m *Mmif) AlignedOfType(ann *Annotation, typeNames ...string) []*Annotation {
	var out []*Annotation
	for _, other := range m.Aligned(ann) {
		for _, name := range typeNames {
			if other.TypeName() == name {
				out = append(out, other)
				break
			}
		}
	}
	return out
}

// ID returns the short identifier from the properties.
func (a *Annotation) ID() string {
	return a.String("id")
}

// LongID returns the identifier qualified by the owning view, or the plain id
// for top-level documents.
func (a *Annotation) LongID() string {
	if a.view == nil {
		return a.ID()
	}
	return qualify(a.view.ID, a.ID())
}

// TypeName returns the annotation's short type name.
func (a *Annotation) TypeName() string {
	return TypeName(a.Type)
}

// Property returns a property, falling back to the default declared for the
// annotation's type in its view metadata.
func (a *Annotation) Property(key string) (any, bool) {
	if value, ok := a.Properties[key]; ok && value != nil {
		return value, true
	}
	if a.view != nil {
		return a.view.containsProperty(a.TypeName(), key)
	}
	return nil, false
}

// String returns a string property, or "" when absent or not a string.
func (a *Annotation) String(key string) string {
	value, ok := a.Property(key)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

// Number returns a numeric property.
func (a *Annotation) Number(key string) (float64, bool) {
	value, ok := a.Property(key)
	if !ok {
		return 0, false
	}
	switch n := value.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Strings returns a list-of-strings property such as "targets".
func (a *Annotation) Strings(key string) []string {
	value, ok := a.Property(key)
	if !ok {
		return nil
	}
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Text returns the "@value" and "@language" of a TextDocument's text
// property. A bare string is accepted as the value.
func (a *Annotation) Text() (value, lang string) {
	raw, ok := a.Properties["text"]
	if !ok {
		return "", ""
	}
	switch text := raw.(type) {
	case string:
		return text, ""
	case map[string]any:
		value, _ = text["@value"].(string)
		lang, _ = text["@language"].(string)
		return value, lang
	default:
		return "", ""
	}
}

// LocationPath returns the filesystem path of a document's location.
// "file://" URLs yield their path; other schemes yield host and path; plain
// paths are returned unchanged.
func (a *Annotation) LocationPath() (string, error) {
	location := strings.TrimSpace(a.String("location"))
	if location == "" {
		return "", services.Wrap(services.ErrMissingData, "mmif", "location", fmt.Sprintf("document %q has no location", a.ID()), nil)
	}
	if !strings.Contains(location, "://") {
		return location, nil
	}
	parsed, err := url.Parse(location)
	if err != nil {
		return "", services.Wrap(services.ErrMalformedInput, "mmif", "location", location, err)
	}
	if parsed.Scheme == "file" {
		return path.Clean(parsed.Path), nil
	}
	return parsed.Host + parsed.Path, nil
}
