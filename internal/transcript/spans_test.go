package transcript_test

import (
	"strings"
	"testing"

	"clamsutils/internal/transcript"
)

func TestExtractSpansMacNeilWoodruff(t *testing.T) {
	text := "\nROBERT MacNEIL: Hello.\n\nJUDY WOODRUFF: Hi."
	spans := transcript.ExtractSpans(text, transcript.DefaultRules())
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %+v", spans)
	}
	if spans[0].SpeakerID != "ROBERT_MacNEIL" || spans[1].SpeakerID != "JUDY_WOODRUFF" {
		t.Fatalf("unexpected speakers %+v", spans)
	}
	if got := strings.TrimSpace(text[spans[0].Start:spans[0].End]); got != "Hello." {
		t.Fatalf("first span text = %q", got)
	}
	if spans[1].End != len(text) {
		t.Fatalf("last span should end at len(text), got %d", spans[1].End)
	}
	if got := strings.TrimSpace(text[spans[1].Start:]); got != "Hi." {
		t.Fatalf("second span text = %q", got)
	}
}

func TestExtractSpansTitlesAndAnnotations(t *testing.T) {
	text := "\nDr. JANE DOE (Harvard) [via satellite]: We studied it.\nMR. SMITH: Indeed.\nNOTE:. not a speaker\nO'BRIEN-SMITH: Last word."
	spans := transcript.ExtractSpans(text, transcript.DefaultRules())
	got := make([]string, 0, len(spans))
	for _, span := range spans {
		got = append(got, span.SpeakerID)
	}
	if strings.Join(got, ",") != "JANE_DOE,SMITH,O'BRIEN-SMITH" {
		t.Fatalf("unexpected speakers %v", got)
	}
	turns := transcript.SpeakerTurns(text, spans)
	if turns[0].Text != "We studied it." {
		t.Fatalf("unexpected first turn %q", turns[0].Text)
	}
	if turns[1].Text != "Indeed.\nNOTE:. not a speaker" {
		t.Fatalf("abbreviation line should stay inside the previous turn, got %q", turns[1].Text)
	}
	if turns[2].Text != "Last word." {
		t.Fatalf("unexpected last turn %q", turns[2].Text)
	}
}

func TestExtractSpansNoMarkers(t *testing.T) {
	spans := transcript.ExtractSpans("and then LEHRER: spoke inline only", transcript.DefaultRules())
	if spans == nil || len(spans) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", spans)
	}
}

func TestExtractSpansOrderingAndCoverage(t *testing.T) {
	text := "\nLEHRER: One.\nWOODRUFF: Two.\nLEHRER: Three.\n"
	spans := transcript.NewSpanExtractor(transcript.DefaultRules()).Extract(text)
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %+v", spans)
	}
	for i, span := range spans {
		if span.Start > span.End {
			t.Fatalf("span %d inverted: %+v", i, span)
		}
		if i > 0 && spans[i-1].End > span.Start {
			t.Fatalf("spans %d and %d overlap", i-1, i)
		}
	}
	if spans[0].SpeakerID != spans[2].SpeakerID {
		t.Fatalf("same speaker should keep the same id: %+v", spans)
	}
	if spans[len(spans)-1].End != len(text) {
		t.Fatalf("last span should close at end of text")
	}
}

func TestSplitBySpeakers(t *testing.T) {
	spans := []transcript.Span{
		{SpeakerID: "A", Start: 5, End: 10},
		{SpeakerID: "B", Start: 15, End: 30},
	}
	tests := []struct {
		name       string
		start, end int
		want       []transcript.Span
	}{
		{"covers both", 0, 40, spans},
		{"clips both", 7, 20, []transcript.Span{{SpeakerID: "A", Start: 7, End: 10}, {SpeakerID: "B", Start: 15, End: 20}}},
		{"inside one span", 6, 9, nil},
		{"between spans", 11, 14, nil},
		{"empty range", 12, 12, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := transcript.SplitBySpeakers(spans, tc.start, tc.end)
			if got == nil {
				t.Fatal("expected non-nil result")
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("span %d = %+v, want %+v", i, got[i], tc.want[i])
				}
				if got[i].Start < tc.start || got[i].End > tc.end {
					t.Fatalf("span %+v escapes [%d,%d)", got[i], tc.start, tc.end)
				}
			}
		})
	}
}
