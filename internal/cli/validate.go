package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reallyoldfogie/tcm-go/tcm"
)

func newValidateCmd() *cobra.Command {
	var verbose, quiet bool

	cmd := &cobra.Command{
		Use:   "validate <replay.tcm> [replay2.tcm ...]",
		Short: "Check that replay files decode and are well-formed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			failed := 0

			for _, file := range args {
				if _, err := os.Stat(file); err != nil {
					fmt.Fprintf(errOut, "❌ %s: file not found\n", file)
					failed++
					continue
				}

				if verbose {
					fmt.Fprintf(out, "Validating %s...\n", file)
				}

				var err error
				if quiet {
					err = tcm.ValidateFileQuiet(file)
				} else {
					err = tcm.ValidateFile(file)
				}

				if err != nil {
					fmt.Fprintf(errOut, "❌ %s: %v\n", filepath.Base(file), err)
					failed++
				} else if !quiet {
					fmt.Fprintf(out, "✅ %s: valid\n", filepath.Base(file))
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d replay files are invalid", failed, len(args))
			}
			if !quiet && len(args) > 1 {
				fmt.Fprintf(out, "\nAll %d replay files are valid!\n", len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	return cmd
}
