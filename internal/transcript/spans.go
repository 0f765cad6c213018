package transcript

import (
	"regexp"
	"strings"
)

// Span attributes the byte range [Start, End) of the original text to one
// speaker. Start is the end of the speaker marker, so the marker itself is
// never part of a span.
type Span struct {
	SpeakerID string `json:"speaker_id"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
}

// Turn pairs a span with the trimmed text it covers.
type Turn struct {
	Span
	Text string `json:"text"`
}

// SpanExtractor finds line-start speaker markers. Build one per Rules and
// reuse it; it is safe for concurrent use.
type SpanExtractor struct {
	marker *regexp.Regexp
}

// NewSpanExtractor compiles the speaker marker pattern for rules.
//
// A marker is an optional title from rules, a capitalised name made of
// letters, spaces, apostrophes, hyphens, and periods, any number of
// "(affiliation)" or "[note]" segments, then a colon and trailing spaces.
func NewSpanExtractor(rules Rules) *SpanExtractor {
	pattern := `(?m)^[ \t]*` +
		`(?:(?i:` + rules.speakerAlternation() + `)[ \t]+)?` +
		`([A-Z][A-Za-z .'\-]*?)` +
		`(?:[ \t]*(?:\([^)\n]*\)|\[[^\]\n]*\]))*` +
		`[ \t]*(:)[ \t]*`
	return &SpanExtractor{marker: regexp.MustCompile(pattern)}
}

// Extract returns the speaker spans of text in document order. Each span runs
// from the end of its marker to the start of the next marker; the last one
// runs to len(text). Text without markers yields an empty, non-nil slice.
func (e *SpanExtractor) Extract(text string) []Span {
	spans := make([]Span, 0)
	open := -1
	for _, loc := range e.marker.FindAllStringSubmatchIndex(text, -1) {
		colonEnd := loc[5]
		// "Note:." style abbreviations are not speaker markers.
		if colonEnd < len(text) && text[colonEnd] == '.' {
			continue
		}
		if open >= 0 {
			spans[open].End = loc[0]
		}
		spans = append(spans, Span{
			SpeakerID: speakerID(text[loc[2]:loc[3]]),
			Start:     loc[1],
			End:       len(text),
		})
		open = len(spans) - 1
	}
	return spans
}

// ExtractSpans is a convenience wrapper around NewSpanExtractor(rules).Extract.
func ExtractSpans(text string, rules Rules) []Span {
	return NewSpanExtractor(rules).Extract(text)
}

func speakerID(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
}

// SplitBySpeakers returns the spans that intersect [start, end), clipped to
// that range. When the range lies entirely inside a single span the result is
// empty: no split is needed. Callers that must distinguish "one speaker" from
// "nobody" check span coverage themselves.
func SplitBySpeakers(spans []Span, start, end int) []Span {
	out := make([]Span, 0)
	if end <= start {
		return out
	}
	for _, span := range spans {
		if span.Start <= start && end <= span.End {
			return make([]Span, 0)
		}
		if span.End <= start || span.Start >= end {
			continue
		}
		out = append(out, Span{
			SpeakerID: span.SpeakerID,
			Start:     max(span.Start, start),
			End:       min(span.End, end),
		})
	}
	return out
}

// SpeakerTurns pairs every span with its trimmed text from the original
// transcript. Spans outside the bounds of text are clipped.
func SpeakerTurns(text string, spans []Span) []Turn {
	turns := make([]Turn, 0, len(spans))
	for _, span := range spans {
		start := min(max(span.Start, 0), len(text))
		end := min(max(span.End, start), len(text))
		turns = append(turns, Turn{Span: span, Text: strings.TrimSpace(text[start:end])})
	}
	return turns
}
