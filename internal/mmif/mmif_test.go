package mmif_test

import (
	"errors"
	"strings"
	"testing"

	"clamsutils/internal/mmif"
	"clamsutils/internal/services"
)

const sample = `{
  "documents": [{"@type": "http://mmif.clams.ai/vocabulary/VideoDocument/v1", "properties": {"id": "d1", "location": "file:///media/cpb-aacip-1-abc.mp4"}}],
  "views": [
    {"id": "v1", "metadata": {"app": "swt", "contains": {"http://mmif.clams.ai/vocabulary/TimeFrame/v5": {"timeUnit": "milliseconds"}}},
     "annotations": [
       {"@type": "http://mmif.clams.ai/vocabulary/TimeFrame/v5", "properties": {"id": "tf1", "start": 1500, "end": 2250}}
     ]},
    {"id": "v2", "metadata": {"app": "ocr", "contains": {"http://mmif.clams.ai/vocabulary/TextDocument/v1": {}, "http://mmif.clams.ai/vocabulary/Alignment/v1": {}}},
     "annotations": [
       {"@type": "http://mmif.clams.ai/vocabulary/TextDocument/v1", "properties": {"id": "td1", "text": {"@value": "hello", "@language": "en"}}},
       {"@type": "http://mmif.clams.ai/vocabulary/Alignment/v1", "properties": {"id": "al1", "source": "v1:tf1", "target": "td1"}},
       {"@type": "http://mmif.clams.ai/vocabulary/Alignment/v1", "properties": {"id": "al2", "source": "d1", "target": "v2:td1"}}
     ]}
  ]
}`

func parseSample(t *testing.T) *mmif.Mmif {
	t.Helper()
	m, err := mmif.Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"http://mmif.clams.ai/vocabulary/TimeFrame/v5", "TimeFrame"},
		{"http://vocab.lappsgrid.org/Sentence", "Sentence"},
		{"http://mmif.clams.ai/0.4.0/vocabulary/Alignment", "Alignment"},
		{"http://mmif.clams.ai/vocabulary/TextDocument/v1/", "TextDocument"},
		{"Token", "Token"},
	}
	for _, tc := range tests {
		if got := mmif.TypeName(tc.uri); got != tc.want {
			t.Errorf("TypeName(%q) = %q, want %q", tc.uri, got, tc.want)
		}
	}
}

func TestResolveAndAligned(t *testing.T) {
	m := parseSample(t)
	views := m.ViewsContaining(mmif.TypeTextDocument, mmif.TypeAlignment)
	if len(views) != 1 || views[0].ID != "v2" {
		t.Fatalf("unexpected views %+v", views)
	}
	view := views[0]

	td, ok := m.Resolve(view, "td1")
	if !ok || td.LongID() != "v2:td1" {
		t.Fatalf("resolve td1: %v %v", td, ok)
	}
	if _, ok := m.Resolve(view, "tf1"); ok {
		t.Fatal("short id must not resolve into another view")
	}
	if doc, ok := m.Resolve(view, "d1"); !ok || doc.TypeName() != mmif.TypeVideoDocument {
		t.Fatalf("expected top-level document, got %v %v", doc, ok)
	}

	aligned := m.Aligned(td)
	if len(aligned) != 2 {
		t.Fatalf("expected 2 aligned annotations, got %d", len(aligned))
	}
	media := m.AlignedOfType(td, mmif.TypeAudioDocument, mmif.TypeVideoDocument)
	if len(media) != 1 {
		t.Fatalf("expected one media document, got %d", len(media))
	}
	location, err := media[0].LocationPath()
	if err != nil || location != "/media/cpb-aacip-1-abc.mp4" {
		t.Fatalf("LocationPath = %q, %v", location, err)
	}

	value, lang := td.Text()
	if value != "hello" || lang != "en" {
		t.Fatalf("Text = %q, %q", value, lang)
	}
}

func TestIntervalFallsBackToViewTimeUnit(t *testing.T) {
	m := parseSample(t)
	tf, ok := m.Resolve(nil, "v1:tf1")
	if !ok {
		t.Fatal("resolve v1:tf1")
	}
	start, end, err := mmif.Interval(tf)
	if err != nil {
		t.Fatalf("Interval: %v", err)
	}
	if start != 1.5 || end != 2.25 {
		t.Fatalf("Interval = %v, %v", start, end)
	}
}

func TestToSeconds(t *testing.T) {
	if got, err := mmif.ToSeconds(2500, "milliseconds"); err != nil || got != 2.5 {
		t.Fatalf("ms: %v %v", got, err)
	}
	if got, err := mmif.ToSeconds(2.5, "seconds"); err != nil || got != 2.5 {
		t.Fatalf("s: %v %v", got, err)
	}
	if _, err := mmif.ToSeconds(30, "frames"); !errors.Is(err, services.ErrNotSupported) {
		t.Fatalf("frames: expected not supported, got %v", err)
	}
	if _, err := mmif.ToSeconds(30, "fortnights"); !errors.Is(err, services.ErrMalformedInput) {
		t.Fatalf("unknown unit: expected malformed input, got %v", err)
	}
}

func TestLocationPathSchemes(t *testing.T) {
	input := `{"documents":[
	  {"@type":"AudioDocument","properties":{"id":"a","location":"/plain/cpb-aacip-2-x.wav"}},
	  {"@type":"AudioDocument","properties":{"id":"b","location":"baapb://cpb-aacip-3-y.audio"}},
	  {"@type":"AudioDocument","properties":{"id":"c"}}
	]}`
	m, err := mmif.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := map[string]string{"a": "/plain/cpb-aacip-2-x.wav", "b": "cpb-aacip-3-y.audio"}
	for id, path := range want {
		doc, _ := m.Resolve(nil, id)
		got, err := doc.LocationPath()
		if err != nil || got != path {
			t.Errorf("LocationPath(%s) = %q, %v", id, got, err)
		}
	}
	doc, _ := m.Resolve(nil, "c")
	if _, err := doc.LocationPath(); !errors.Is(err, services.ErrMissingData) {
		t.Fatalf("expected missing location error, got %v", err)
	}
}
