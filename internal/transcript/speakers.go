package transcript

import "github.com/dlclark/regexp2"

// nameToken is one word of a speaker name: letters, digits, quotes,
// backticks, hash marks, and hyphens.
const nameToken = "[A-Za-z\\d'\"`#\\-]+"

// Up to four name tokens followed by a colon.
const speakerName = "(?:" + nameToken + "\\s){0,3}" + nameToken + ":"

var (
	// ", Democratic presidential candidate" between a capital and a colon.
	appositivePattern = regexp2.MustCompile(`(?<=[A-Z]),\s[a-zA-Z.'()*+,\s]*(?=:)`, regexp2.None)

	lineStartSpeakerPattern = regexp2.MustCompile(`\n`+speakerName, regexp2.None)

	// Inline markers only after sentence-final punctuation or whitespace, and
	// never when the colon is followed by a period.
	inlineSpeakerPattern = regexp2.MustCompile(`(?<=[.?!\-\s])\s`+speakerName+`(?!\.)`, regexp2.None)
)

// SpeakerSteps returns the speaker marker cascade in order: appositives,
// leading titles, line-start names, inline names, trailing titles.
func SpeakerSteps(rules Rules) []Step {
	titles := rules.speakerAlternation()
	leadingTitle := regexp2.MustCompile(`(?<=\n)(?i:`+titles+`)\s`, regexp2.None)
	trailingTitle := regexp2.MustCompile(`(?i:`+titles+`)(?=\n)`, regexp2.None)
	return []Step{
		{Name: "speaker_appositive", Apply: replaceWith(appositivePattern, "")},
		{Name: "speaker_leading_title", Apply: replaceWith(leadingTitle, "")},
		{Name: "speaker_line_start", Apply: replaceWith(lineStartSpeakerPattern, " ")},
		{Name: "speaker_inline", Apply: replaceWith(inlineSpeakerPattern, "\n")},
		{Name: "speaker_trailing_title", Apply: replaceWith(trailingTitle, "")},
	}
}

// CleanSpeakers runs the speaker marker cascade over text.
func CleanSpeakers(text string, rules Rules) string {
	for _, step := range SpeakerSteps(rules) {
		text = step.Apply(text)
	}
	return text
}

// replaceWith substitutes every match of re with a literal replacement.
// regexp2 only fails on MatchTimeout, which these patterns never set.
func replaceWith(re *regexp2.Regexp, replacement string) func(string) string {
	return func(text string) string {
		out, err := re.Replace(text, replacement, -1, -1)
		if err != nil {
			return text
		}
		return out
	}
}
