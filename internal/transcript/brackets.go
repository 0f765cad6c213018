package transcript

import "regexp"

// One whitespace character followed by the shortest same-line run opened by
// '[' or '(' and closed by ']' or ')'. Nested brackets are not balanced.
var bracketPattern = regexp.MustCompile(`\s[\[(].*?[\])]`)

// BracketStep removes bracketed asides in a single pass.
func BracketStep() Step {
	return Step{Name: "brackets", Apply: CleanBrackets}
}

// CleanBrackets removes every whitespace-led [...] or (...) run.
func CleanBrackets(text string) string {
	return bracketPattern.ReplaceAllLiteralString(text, "")
}
