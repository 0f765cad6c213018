package transcript

import (
	"regexp"
	"strings"

	"clamsutils/internal/config"
)

// Rules carries the pattern tables used by the cleanup steps and the span
// extractor. The zero value is not useful; construct with NewRules or
// DefaultRules.
type Rules struct {
	sectionTitles []string
	speakerTitles []string
}

// DefaultRules returns the built-in NewsHour section and speaker title tables.
func DefaultRules() Rules {
	return NewRules(config.DefaultSectionTitles(), config.DefaultSpeakerTitles())
}

// NewRules copies the supplied tables, dropping blanks. An empty table falls
// back to the default for that table.
func NewRules(sectionTitles, speakerTitles []string) Rules {
	sections := compactTitles(sectionTitles)
	if len(sections) == 0 {
		sections = compactTitles(config.DefaultSectionTitles())
	}
	speakers := compactTitles(speakerTitles)
	if len(speakers) == 0 {
		speakers = compactTitles(config.DefaultSpeakerTitles())
	}
	return Rules{sectionTitles: sections, speakerTitles: speakers}
}

// RulesFromConfig builds Rules from the cleanup section of cfg.
func RulesFromConfig(cfg *config.Config) Rules {
	if cfg == nil {
		return DefaultRules()
	}
	return NewRules(cfg.Cleanup.SectionTitles, cfg.Cleanup.SpeakerTitles)
}

// SectionTitles returns a copy of the section title table.
func (r Rules) SectionTitles() []string {
	return append([]string(nil), r.sectionTitles...)
}

// SpeakerTitles returns a copy of the speaker title table.
func (r Rules) SpeakerTitles() []string {
	return append([]string(nil), r.speakerTitles...)
}

// sectionAlternation renders the section titles as a regexp alternation where
// internal spaces match any run of spaces or tabs.
func (r Rules) sectionAlternation() string {
	parts := make([]string, 0, len(r.sectionTitles))
	for _, title := range r.sectionTitles {
		words := strings.Fields(title)
		for i, word := range words {
			words[i] = regexp.QuoteMeta(word)
		}
		parts = append(parts, strings.Join(words, `[ \t]+`))
	}
	return strings.Join(parts, "|")
}

// speakerAlternation renders the speaker titles as a literal alternation.
func (r Rules) speakerAlternation() string {
	parts := make([]string, 0, len(r.speakerTitles))
	for _, title := range r.speakerTitles {
		parts = append(parts, regexp.QuoteMeta(title))
	}
	return strings.Join(parts, "|")
}

func compactTitles(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
