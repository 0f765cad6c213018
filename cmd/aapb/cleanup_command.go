package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"clamsutils/internal/batch"
	"clamsutils/internal/ledger"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var jobs int
	var useLedger bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "cleanup <in-path> <out-path>",
		Short: "Clean NewsHour transcripts into plain text",
		Long: "Clean a transcript file, or every .json and .txt file in a directory, " +
			"removing section titles, bracketed notes and speaker markers. " +
			"Cleaned text is written to <out-path>/<stem>.txt; existing files are never overwritten.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, runCtx, err := ctx.setup(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("jobs") {
				if jobs < 1 {
					return fmt.Errorf("--jobs must be at least 1")
				}
				cfg.Cleanup.Jobs = jobs
			}

			var recorder batch.Recorder
			if useLedger || cfg.Ledger.Enabled {
				store, err := ledger.Open(cfg)
				if err != nil {
					return fmt.Errorf("open ledger: %w", err)
				}
				defer store.Close()
				recorder = store
			}

			summary, runErr := batch.New(cfg, recorder, logger).Run(runCtx, args[0], args[1])
			if jsonOutput {
				if err := writeJSON(cmd, summary); err != nil {
					return err
				}
				return runErr
			}
			if summary.Total > 0 {
				printCleanupSummary(cmd, summary)
			}
			return runErr
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "Number of files to clean concurrently")
	cmd.Flags().BoolVar(&useLedger, "ledger", false, "Record outcomes in the ledger even when it is disabled in config")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run summary as JSON")
	return cmd
}

func printCleanupSummary(cmd *cobra.Command, summary batch.Summary) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(summary.Items))
	for _, item := range summary.Items {
		output := ""
		if item.Output != "" {
			output = filepath.Base(item.Output)
		}
		rows = append(rows, []string{
			filepath.Base(item.Input),
			item.Status,
			output,
			strconv.Itoa(item.Speakers),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Input", "Status", "Output", "Speakers"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
	))

	summaryOut := newSummaryWriter(out, "Cleaned", "Skipped", "Failed", "Output")
	summaryOut.line(toneGood, "Cleaned", strconv.Itoa(summary.Cleaned))
	if summary.Skipped > 0 {
		summaryOut.line(toneNotice, "Skipped", strconv.Itoa(summary.Skipped))
	}
	if summary.Failed > 0 {
		summaryOut.line(toneBad, "Failed", strconv.Itoa(summary.Failed))
	}
	summaryOut.line(toneNeutral, "Output", summary.OutputDir)
}
