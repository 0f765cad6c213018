package transcript

import "regexp"

var focusLinePattern = regexp.MustCompile(`(?im)^FOCUS[ \t]*-.*$`)

// TitleSteps returns the section-title steps: "FOCUS -" lines first, then
// whole-line section titles. Matching lines become empty; their line breaks
// are kept so line numbering is unchanged.
func TitleSteps(rules Rules) []Step {
	sections := regexp.MustCompile(`(?im)^[ \t]*(?:` + rules.sectionAlternation() + `)[ \t]*$`)
	return []Step{
		{Name: "focus_lines", Apply: func(text string) string {
			return focusLinePattern.ReplaceAllLiteralString(text, "")
		}},
		{Name: "section_titles", Apply: func(text string) string {
			return sections.ReplaceAllLiteralString(text, "")
		}},
	}
}

// CleanTitles blanks every line holding only a section title or starting
// with "FOCUS -".
func CleanTitles(text string, rules Rules) string {
	for _, step := range TitleSteps(rules) {
		text = step.Apply(text)
	}
	return text
}
