package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"

	"clamsutils/internal/services"
)

// tone picks the marker and color of a summary line.
type tone int

const (
	toneNeutral tone = iota
	toneGood
	toneNotice
	toneBad
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
)

// summaryWriter prints aligned "marker label  value" lines after a command's
// table. Lines are colored only when out is a terminal.
type summaryWriter struct {
	out   io.Writer
	color bool
	width int
}

// newSummaryWriter pads labels to the longest of labels.
func newSummaryWriter(out io.Writer, labels ...string) *summaryWriter {
	width := 0
	for _, label := range labels {
		width = max(width, utf8.RuneCountInString(label))
	}
	return &summaryWriter{out: out, color: isTerminal(out), width: width}
}

func (s *summaryWriter) heading(title string) {
	title = strings.TrimSpace(title)
	fmt.Fprintln(s.out, s.paint(toneNeutral, title))
	fmt.Fprintln(s.out, s.paint(toneNeutral, strings.Repeat("=", utf8.RuneCountInString(title))))
}

func (s *summaryWriter) line(t tone, label, value string) {
	pad := strings.Repeat(" ", max(0, s.width-utf8.RuneCountInString(label)))
	text := strings.TrimRight(fmt.Sprintf("  %s %s%s  %s", toneMarker(t), label, pad, value), " ")
	fmt.Fprintln(s.out, s.paint(t, text))
}

// outcome prints how many items ended with a ledger status.
func (s *summaryWriter) outcome(status string, count int) {
	s.line(outcomeTone(status), status, strconv.Itoa(count))
}

// check prints one preflight result.
func (s *summaryWriter) check(name string, passed bool, detail string) {
	t := toneGood
	if !passed {
		t = toneBad
	}
	s.line(t, name, detail)
}

func (s *summaryWriter) paint(t tone, text string) string {
	if !s.color {
		return text
	}
	return toneColor(t) + text + ansiReset
}

func toneMarker(t tone) string {
	switch t {
	case toneGood:
		return "+"
	case toneNotice:
		return "!"
	case toneBad:
		return "x"
	default:
		return "-"
	}
}

func toneColor(t tone) string {
	switch t {
	case toneGood:
		return ansiGreen
	case toneNotice:
		return ansiYellow
	case toneBad:
		return ansiRed
	default:
		return ansiCyan
	}
}

// outcomeTone treats skipped items as notices and hard failures as errors.
func outcomeTone(status string) tone {
	switch status {
	case services.OutcomeCleaned:
		return toneGood
	case services.OutcomeMissing, services.OutcomeMalformed:
		return toneNotice
	case services.OutcomeFailed:
		return toneBad
	default:
		return toneNeutral
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
