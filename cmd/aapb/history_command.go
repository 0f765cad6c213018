package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"clamsutils/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently processed transcripts from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, runCtx, err := ctx.setup(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := os.Stat(cfg.Ledger.Path); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintf(out, "No ledger at %s (run cleanup with --ledger first)\n", cfg.Ledger.Path)
				return nil
			}

			store, err := ledger.Open(cfg)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(runCtx, limit)
			if err != nil {
				return err
			}
			if jsonOutput {
				if entries == nil {
					entries = []ledger.Entry{}
				}
				return writeJSON(cmd, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "Ledger is empty")
				return nil
			}
			printHistory(cmd, entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", ledger.DefaultRecentLimit, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print entries as JSON")
	return cmd
}

func printHistory(cmd *cobra.Command, entries []ledger.Entry) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(entries))
	counts := map[string]int{}
	var order []string
	for _, entry := range entries {
		output := ""
		if entry.OutputPath != "" {
			output = filepath.Base(entry.OutputPath)
		}
		rows = append(rows, []string{
			entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			entry.Status,
			filepath.Base(entry.InputPath),
			output,
			strconv.Itoa(entry.Speakers),
			preview(entry.Error),
		})
		if counts[entry.Status] == 0 {
			order = append(order, entry.Status)
		}
		counts[entry.Status]++
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Time", "Status", "Input", "Output", "Speakers", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))

	totals := newSummaryWriter(out, order...)
	for _, status := range order {
		totals.outcome(status, counts[status])
	}
}
