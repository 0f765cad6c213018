package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clamsutils/internal/guid"
)

type guidResult struct {
	Input string `json:"input"`
	GUID  string `json:"guid,omitempty"`
	Found bool   `json:"found"`
}

func newGUIDCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "guid <string>...",
		Short:       "Extract AAPB GUIDs from file names or strings",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]guidResult, 0, len(args))
			missing := 0
			for _, arg := range args {
				id, ok := guid.FromString(arg)
				if !ok {
					missing++
				}
				results = append(results, guidResult{Input: arg, GUID: id, Found: ok})
			}

			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				for _, result := range results {
					if result.Found {
						fmt.Fprintln(cmd.OutOrStdout(), result.GUID)
					} else {
						fmt.Fprintf(cmd.ErrOrStderr(), "no AAPB GUID in %q\n", result.Input)
					}
				}
			}
			if missing > 0 {
				return fmt.Errorf("%d of %d inputs had no AAPB GUID", missing, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	return cmd
}
