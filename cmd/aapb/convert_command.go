package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"clamsutils/internal/aapbjson"
	"clamsutils/internal/fileutil"
	"clamsutils/internal/logging"
)

const stdioArg = "-"

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var fromMMIF bool
	var toMMIF bool
	var pretty bool

	cmd := &cobra.Command{
		Use:   "convert [IN_FILE|-] [OUT_FILE|-]",
		Short: "Convert MMIF ASR output to AAPB-JSON",
		Long: "Read an MMIF file (or stdin) and write the AAPB-JSON transcript of its first " +
			"speech recognition view to OUT_FILE (or stdout). An existing OUT_FILE is never overwritten; " +
			"the output goes to the first free OUT_FILE-N name instead.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, runCtx, err := ctx.setup(cmd)
			if err != nil {
				return err
			}
			inPath, outPath := stdioArg, stdioArg
			if len(args) > 0 {
				inPath = args[0]
			}
			if len(args) > 1 {
				outPath = args[1]
			}

			in, closeIn, err := openInput(cmd, inPath)
			if err != nil {
				return err
			}
			defer closeIn()

			var buf bytes.Buffer
			if toMMIF {
				if err := aapbjson.ToMMIF(in, &buf); err != nil {
					return err
				}
				_, err := writeOutput(cmd, outPath, &buf)
				return err
			}

			converter := aapbjson.NewConverter(cfg, logger)
			doc, err := converter.Convert(runCtx, in, &buf, pretty || converter.Pretty())
			if err != nil {
				return err
			}
			written, err := writeOutput(cmd, outPath, &buf)
			if err != nil {
				return err
			}
			logging.WithContext(runCtx, logger).Info("mmif converted",
				logging.String(logging.FieldEventType, "convert_complete"),
				logging.String("guid", doc.ID),
				logging.Int("parts", len(doc.Parts)),
				logging.String("output", written),
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromMMIF, "from-mmif", false, "Convert MMIF to AAPB-JSON (default)")
	cmd.Flags().BoolVar(&toMMIF, "to-mmif", false, "Convert AAPB-JSON to MMIF (not supported)")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent the JSON output")
	cmd.MarkFlagsMutuallyExclusive("from-mmif", "to-mmif")
	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == stdioArg {
		return cmd.InOrStdin(), func() {}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}

// writeOutput copies r to stdout for "-", otherwise to path or, when path
// exists, to the first free "<stem>-N<ext>" beside it. It returns the path
// written and reports a renamed output on stderr.
func writeOutput(cmd *cobra.Command, path string, r io.Reader) (string, error) {
	if path == stdioArg {
		_, err := io.Copy(cmd.OutOrStdout(), r)
		return path, err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	written, err := fileutil.CopyUnique(dir, fileutil.Stem(path), filepath.Ext(path), r)
	if err != nil {
		return "", err
	}
	if written != filepath.Join(dir, filepath.Base(path)) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s exists; wrote %s\n", path, written)
	}
	return written, nil
}
