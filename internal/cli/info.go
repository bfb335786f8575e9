package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reallyoldfogie/tcm-go/tcm"
)

func newInfoCmd() *cobra.Command {
	var listInputs bool

	cmd := &cobra.Command{
		Use:   "info <replay.tcm>",
		Short: "Print a replay's metadata and input summary",
		Example: `  tcm info macro.tcm
  tcm info macro.tcm --inputs`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := tcm.Open(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version:      %d\n", r.Meta.Version())
			fmt.Fprintf(out, "TPS:          %g\n", r.Meta.TPS())
			fmt.Fprintf(out, "Tick length:  %g\n", r.Meta.TPSDt())
			fmt.Fprintf(out, "Stores dt:    %t\n", r.Meta.UsesDt())
			if seed, ok := r.Meta.RngSeed(); ok {
				fmt.Fprintf(out, "RNG seed:     %d (override flag %t)\n", seed, r.Meta.IsRngSeedSet())
			} else {
				fmt.Fprintf(out, "RNG seed:     none\n")
			}

			s := summarize(r.Inputs)
			fmt.Fprintf(out, "Inputs:       %d\n", len(r.Inputs))
			fmt.Fprintf(out, "  Buttons:    %d\n", s.vanilla)
			fmt.Fprintf(out, "  Restarts:   %d\n", s.restarts)
			fmt.Fprintf(out, "  TPS:        %d\n", s.tps)
			fmt.Fprintf(out, "  Bugpoints:  %d\n", s.bugpoints)
			fmt.Fprintf(out, "Segments:     %d\n", s.restarts+1)

			if listInputs {
				fmt.Fprintln(out)
				for _, c := range r.Inputs {
					fmt.Fprintf(out, "  %v\n", c)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&listInputs, "inputs", false, "List every input")
	return cmd
}

type inputSummary struct {
	vanilla, restarts, tps, bugpoints int
}

func summarize(inputs []tcm.InputCommand) inputSummary {
	var s inputSummary
	for _, c := range inputs {
		switch c.Input.(type) {
		case tcm.VanillaInput:
			s.vanilla++
		case tcm.RestartInput:
			s.restarts++
		case tcm.TpsInput:
			s.tps++
		case tcm.BugpointInput:
			s.bugpoints++
		}
	}
	return s
}
