package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"clamsutils/internal/retriever"
)

func newGoldRetrieverCommand(ctx *commandContext) *cobra.Command {
	var folder string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "goldretriever <gold-dir-url>",
		Short: "Download gold release files from a GitHub directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, runCtx, err := ctx.setup(cmd)
			if err != nil {
				return err
			}
			result, err := retriever.New(cfg, nil, logger).Gold(runCtx, args[0], folder)
			if err != nil {
				return err
			}
			return printRetrieval(cmd, result, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&folder, "output-folder", "o", "", "Local folder to store the downloaded files (must be empty)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the downloaded file list as JSON")
	return cmd
}

func newPredRetrieverCommand(ctx *commandContext) *cobra.Command {
	var folder string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "predretriever [storage-url] <pipeline.json>",
		Short: "Download prediction MMIFs for a pipeline from the storage API",
		Long: "POST the pipeline description to the storage API and save each returned MMIF as <guid>.mmif. " +
			"When storage-url is omitted the configured retriever.storage_url is used.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, runCtx, err := ctx.setup(cmd)
			if err != nil {
				return err
			}
			storageURL, pipelinePath := "", args[0]
			if len(args) == 2 {
				storageURL, pipelinePath = args[0], args[1]
			}
			pipeline, err := os.ReadFile(pipelinePath)
			if err != nil {
				return fmt.Errorf("read pipeline: %w", err)
			}
			result, err := retriever.New(cfg, nil, logger).Predictions(runCtx, storageURL, pipeline, folder)
			if err != nil {
				return err
			}
			return printRetrieval(cmd, result, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&folder, "output-folder", "o", "", "Local folder to store the MMIF files (must be empty)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the downloaded file list as JSON")
	return cmd
}

func printRetrieval(cmd *cobra.Command, result retriever.Result, jsonOutput bool) error {
	if jsonOutput {
		return writeJSON(cmd, result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %d files to: %s\n", len(result.Files), result.Folder)
	return nil
}
