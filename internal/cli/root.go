package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root tcm command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tcm",
		Short: "Inspect, validate and convert TCM replay macros",
		Long: `tcm works with tcbot macro (.tcm) files.

Both format versions are detected automatically. Version 1 stores only button
and restart inputs; version 2 adds tick rate changes, bugpoints and RNG seeds.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newValidateCmd(),
		newInfoCmd(),
		newConvertCmd(),
		newCreateCmd(),
	)

	return root
}
