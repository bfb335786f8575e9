package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/reallyoldfogie/tcm-go/tcm"
)

type inputSpec struct {
	frame tcm.Frame
	input tcm.Input
}

// inputFlags collects repeatable --input values.
type inputFlags []inputSpec

var _ pflag.Value = (*inputFlags)(nil)

func (p *inputFlags) String() string { return fmt.Sprintf("%d inputs", len(*p)) }

func (p *inputFlags) Type() string { return "frame:kind[:args]" }

// Set parses frame:kind[:args], e.g.
//
//	120:jump:push  130:left:release:p2  200:restart  200:death:1234
//	300:tps:120    310:bugpoint
func (p *inputFlags) Set(v string) error {
	parts := strings.Split(v, ":")
	if len(parts) < 2 {
		return fmt.Errorf("invalid --input %q, want frame:kind[:args]", v)
	}
	frame, err := parseUint(parts[0])
	if err != nil {
		return fmt.Errorf("frame: %w", err)
	}
	in, err := parseInput(strings.ToLower(parts[1]), parts[2:])
	if err != nil {
		return err
	}
	*p = append(*p, inputSpec{frame: frame, input: in})
	return nil
}

func parseInput(kind string, args []string) (tcm.Input, error) {
	switch kind {
	case "jump", "left", "right":
		v := tcm.VanillaInput{Button: map[string]tcm.PlayerButton{
			"jump": tcm.Jump, "left": tcm.Left, "right": tcm.Right,
		}[kind]}
		if len(args) == 0 || len(args) > 2 {
			return nil, fmt.Errorf("%s: want %s:push|release[:p2]", kind, kind)
		}
		switch args[0] {
		case "push":
			v.Push = true
		case "release":
		default:
			return nil, fmt.Errorf("%s: unknown action %q", kind, args[0])
		}
		if len(args) == 2 {
			if args[1] != "p2" {
				return nil, fmt.Errorf("%s: unknown player %q", kind, args[1])
			}
			v.Player2 = true
		}
		return v, nil

	case "restart", "restart-full", "death":
		r := tcm.RestartInput{Type: map[string]tcm.RestartType{
			"restart": tcm.Restart, "restart-full": tcm.RestartFull, "death": tcm.Death,
		}[kind]}
		switch len(args) {
		case 0:
		case 1:
			seed, err := parseUint(args[0])
			if err != nil {
				return nil, fmt.Errorf("%s seed: %w", kind, err)
			}
			r.NewSeed = &seed
		default:
			return nil, fmt.Errorf("%s: want %s[:seed]", kind, kind)
		}
		return r, nil

	case "tps":
		if len(args) != 1 {
			return nil, fmt.Errorf("tps: want tps:value")
		}
		tps, err := strconv.ParseFloat(args[0], 32)
		if err != nil {
			return nil, fmt.Errorf("tps: %w", err)
		}
		return tcm.TpsInput{TPS: float32(tps)}, nil

	case "bugpoint":
		if len(args) != 0 {
			return nil, fmt.Errorf("bugpoint takes no arguments")
		}
		return tcm.BugpointInput{}, nil

	default:
		return nil, fmt.Errorf("unknown input kind %q", kind)
	}
}

func parseUint(s string) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func writeInputs[M tcm.Meta](path string, meta M, inputs inputFlags) (err error) {
	w, err := tcm.Create(path, meta)
	if err != nil {
		return fmt.Errorf("create writer: %w", err)
	}
	defer func() {
		if cerr := w.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()

	for i, sp := range inputs {
		if err := w.WriteInput(sp.frame, sp.input); err != nil {
			return fmt.Errorf("input %d: %w", i, err)
		}
	}
	return nil
}

func newCreateCmd() *cobra.Command {
	var (
		version uint8
		tps     float32
		seed    uint64
		inputs  inputFlags
	)

	cmd := &cobra.Command{
		Use:   "create <out.tcm>",
		Short: "Write a replay from inputs given on the command line",
		Example: `  tcm create out.tcm --tps 240 --input 10:jump:push --input 25:jump:release
  tcm create out.tcm --version 1 --tps 60 --input 0:right:push --input 90:death
  tcm create out.tcm --seed 42 --input 0:tps:480 --input 5:bugpoint`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			switch version {
			case 1:
				if cmd.Flags().Changed("seed") {
					return fmt.Errorf("--seed needs --version 2")
				}
				err = writeInputs(args[0], tcm.NewMetaV1(tps, 0), inputs)
			case 2:
				var s *uint64
				if cmd.Flags().Changed("seed") {
					s = &seed
				}
				err = writeInputs(args[0], tcm.NewMetaV2(tps, 0, s), inputs)
			default:
				return fmt.Errorf("unsupported version %d", version)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d inputs)\n", args[0], len(inputs))
			return nil
		},
	}

	cmd.Flags().Uint8Var(&version, "version", 2, "Format version (1 or 2)")
	cmd.Flags().Float32Var(&tps, "tps", 240, "Ticks per second")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "RNG seed (version 2 only)")
	cmd.Flags().Var(&inputs, "input", "Input spec frame:kind[:args] (repeatable)")
	return cmd
}
