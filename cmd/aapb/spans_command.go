package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"clamsutils/internal/transcript"
)

func newSpansCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var rangeFlag string

	cmd := &cobra.Command{
		Use:   "spans <file>",
		Short: "List speaker turns in a transcript",
		Long: "Locate speaker markers in the original transcript text and print one span per turn. " +
			"Offsets are byte positions in the file text (or in the joined parts[].text for JSON input).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := ctx.setup(cmd)
			if err != nil {
				return err
			}
			src, err := transcript.ReadFile(args[0])
			if err != nil {
				return err
			}
			text := src.Text
			if !src.JSON {
				text = strings.TrimPrefix(text, "\n")
			}

			spans := transcript.ExtractSpans(text, transcript.RulesFromConfig(cfg))
			if rangeFlag != "" {
				start, end, err := parseRange(rangeFlag, len(text))
				if err != nil {
					return err
				}
				spans = transcript.SplitBySpeakers(spans, start, end)
			}

			turns := transcript.SpeakerTurns(text, spans)
			if jsonOutput {
				return writeJSON(cmd, turns)
			}
			out := cmd.OutOrStdout()
			if len(turns) == 0 {
				fmt.Fprintln(out, "No speaker turns found")
				return nil
			}
			rows := make([][]string, 0, len(turns))
			for i, turn := range turns {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					turn.SpeakerID,
					strconv.Itoa(turn.Start),
					strconv.Itoa(turn.End),
					preview(turn.Text),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Speaker", "Start", "End", "Text"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print turns as JSON")
	cmd.Flags().StringVar(&rangeFlag, "range", "", "Restrict output to the byte range start:end (either side may be empty)")
	return cmd
}

// parseRange reads "start:end"; an empty side defaults to 0 or length.
func parseRange(value string, length int) (int, int, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid --range %q (want start:end)", value)
	}
	start, end := 0, length
	var err error
	if left = strings.TrimSpace(left); left != "" {
		if start, err = strconv.Atoi(left); err != nil || start < 0 {
			return 0, 0, fmt.Errorf("invalid range start %q", left)
		}
	}
	if right = strings.TrimSpace(right); right != "" {
		if end, err = strconv.Atoi(right); err != nil || end < 0 {
			return 0, 0, fmt.Errorf("invalid range end %q", right)
		}
	}
	if end < start {
		return 0, 0, fmt.Errorf("invalid --range %q: end before start", value)
	}
	return start, end, nil
}
