package transcript

import "strings"

// Step is one named text transform in the cleanup cascade.
type Step struct {
	Name  string
	Apply func(string) string
}

// Pipeline is an ordered list of Steps applied sequentially; each step's
// output is the next step's input.
type Pipeline struct {
	steps []Step
}

// NewPipeline compiles the full cleanup cascade for rules: section titles,
// brackets, speaker markers, then per-line trimming.
func NewPipeline(rules Rules) *Pipeline {
	steps := make([]Step, 0, 9)
	steps = append(steps, TitleSteps(rules)...)
	steps = append(steps, BracketStep())
	steps = append(steps, SpeakerSteps(rules)...)
	steps = append(steps, TrimLinesStep())
	return &Pipeline{steps: steps}
}

// Steps returns the steps in execution order.
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Clean runs the cascade over text until a pass leaves it unchanged, so
// chained markers such as "A: B: c" are fully removed and cleaning cleaned
// text is a no-op. Every step only deletes or collapses characters, so each
// changing pass shortens the text and the loop ends.
func (p *Pipeline) Clean(text string) string {
	for {
		next := p.pass(text)
		if next == text {
			return next
		}
		text = next
	}
}

func (p *Pipeline) pass(text string) string {
	for _, step := range p.steps {
		text = step.Apply(text)
	}
	return text
}

// Clean removes section titles, bracketed asides, and speaker markers from
// text and trims every line. Callers cleaning many transcripts should build a
// Pipeline once instead.
func Clean(text string, rules Rules) string {
	return NewPipeline(rules).Clean(text)
}

// TrimLinesStep trims leading and trailing whitespace from every line. Blank
// lines survive as empty lines; a single trailing line break is dropped.
func TrimLinesStep() Step {
	return Step{Name: "trim_lines", Apply: trimLines}
}

func trimLines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, "\n")
}
