package aapbjson_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clamsutils/internal/aapbjson"
	"clamsutils/internal/config"
	"clamsutils/internal/logging"
	"clamsutils/internal/mmif"
	"clamsutils/internal/services"
)

func openFixture(t *testing.T) *os.File {
	t.Helper()
	file, err := os.Open(filepath.Join("testdata", "asr.mmif"))
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	t.Cleanup(func() { _ = file.Close() })
	return file
}

func TestConvertFixture(t *testing.T) {
	cfg := config.Default()
	converter := aapbjson.NewConverter(&cfg, logging.NewNop())

	var out bytes.Buffer
	doc, err := converter.Convert(context.Background(), openFixture(t), &out, false)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if doc.ID != "cpb-aacip-507-0z70v8b17g" {
		t.Fatalf("unexpected id %q", doc.ID)
	}
	if doc.Language != "en" {
		t.Fatalf("unexpected language %q", doc.Language)
	}
	want := []struct {
		start, end, text string
		speaker          int
	}{
		{"0.000", "1.200", "Good evening.", 1},
		{"1.500", "2.600", "LEHRER: Thanks.", 2},
		{"3.000", "4.250", "Goodnight.", 3},
	}
	if len(doc.Parts) != len(want) {
		t.Fatalf("expected %d parts, got %+v", len(want), doc.Parts)
	}
	for i, part := range doc.Parts {
		n, ok := part.SpeakerID.Int()
		if part.StartTime != want[i].start || part.EndTime != want[i].end || part.Text != want[i].text || !ok || n != want[i].speaker {
			t.Fatalf("part %d = %+v, want %+v", i, part, want[i])
		}
	}

	var raw map[string]any
	if err := json.Unmarshal(out.Bytes(), &raw); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	parts := raw["parts"].([]any)
	first := parts[0].(map[string]any)
	if first["speaker_id"] != float64(1) || first["start_time"] != "0.000" {
		t.Fatalf("unexpected wire format %v", first)
	}
	if strings.Contains(out.String(), "\n  ") {
		t.Fatal("compact output should not be indented")
	}
}

func TestConvertPrettyRoundTrip(t *testing.T) {
	converter := aapbjson.NewConverter(nil, nil)
	var out bytes.Buffer
	if _, err := converter.Convert(context.Background(), openFixture(t), &out, true); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(out.String(), "\n  \"id\": ") {
		t.Fatalf("expected indented output, got %s", out.String())
	}
	doc, err := aapbjson.Read(&out)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(doc.Parts) != 3 || doc.Parts[2].SpeakerID.String() != "3" {
		t.Fatalf("unexpected decoded doc %+v", doc)
	}
}

func TestConvertWithoutASRView(t *testing.T) {
	input := `{"metadata":{},"documents":[],"views":[{"id":"v1","metadata":{"contains":{"http://mmif.clams.ai/vocabulary/TimeFrame/v5":{}}},"annotations":[]}]}`
	m, err := mmif.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = aapbjson.NewConverter(nil, nil).FromMMIF(context.Background(), m)
	if !errors.Is(err, services.ErrMissingData) {
		t.Fatalf("expected missing data error, got %v", err)
	}
}

func TestConvertWithoutGUID(t *testing.T) {
	input := `{
  "documents": [{"@type": "http://mmif.clams.ai/vocabulary/VideoDocument/v1", "properties": {"id": "d1", "location": "file:///data/video/news.mp4"}}],
  "views": [{
    "id": "v1",
    "metadata": {"contains": {
      "http://vocab.lappsgrid.org/Sentence": {},
      "http://mmif.clams.ai/vocabulary/TimeFrame/v5": {},
      "http://mmif.clams.ai/vocabulary/Alignment/v1": {},
      "http://mmif.clams.ai/vocabulary/TextDocument/v1": {}
    }},
    "annotations": [
      {"@type": "http://mmif.clams.ai/vocabulary/TextDocument/v1", "properties": {"id": "td1", "text": {"@value": "hi"}}},
      {"@type": "http://mmif.clams.ai/vocabulary/Alignment/v1", "properties": {"id": "a1", "source": "d1", "target": "td1"}}
    ]
  }]
}`
	m, err := mmif.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, err = aapbjson.NewConverter(nil, nil).FromMMIF(context.Background(), m)
	if !errors.Is(err, services.ErrMissingData) || !strings.Contains(err.Error(), "GUID") {
		t.Fatalf("expected missing GUID error, got %v", err)
	}
}

func TestConvertRejectsInvalidJSON(t *testing.T) {
	_, err := aapbjson.NewConverter(nil, nil).Convert(context.Background(), strings.NewReader("{"), &bytes.Buffer{}, false)
	if !errors.Is(err, services.ErrMalformedInput) {
		t.Fatalf("expected malformed input error, got %v", err)
	}
}

func TestToMMIFNotSupported(t *testing.T) {
	if err := aapbjson.ToMMIF(strings.NewReader("{}"), &bytes.Buffer{}); !errors.Is(err, services.ErrNotSupported) {
		t.Fatalf("expected not supported error, got %v", err)
	}
}

func TestSpeakerIDJSON(t *testing.T) {
	tests := []struct {
		id   aapbjson.SpeakerID
		want string
	}{
		{aapbjson.NumericSpeaker(4), `4`},
		{aapbjson.LabelSpeaker("JUDY_WOODRUFF"), `"JUDY_WOODRUFF"`},
	}
	for _, tc := range tests {
		data, err := json.Marshal(tc.id)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(data) != tc.want {
			t.Fatalf("marshal = %s, want %s", data, tc.want)
		}
		var decoded aapbjson.SpeakerID
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if decoded != tc.id {
			t.Fatalf("unmarshal = %+v, want %+v", decoded, tc.id)
		}
	}
	var bad aapbjson.SpeakerID
	if err := json.Unmarshal([]byte(`1.5`), &bad); err == nil {
		t.Fatal("expected error for fractional speaker id")
	}
}
