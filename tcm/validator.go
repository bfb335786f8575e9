package tcm

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
)

// Validate checks that r's frames never go backwards within a segment and
// that every input is representable in r's version.
func Validate[M Meta](r *Replay[M]) error {
	version := r.Meta.Version()
	for i, c := range r.Inputs {
		switch in := c.Input.(type) {
		case VanillaInput:
			if !in.Button.Valid() {
				return fmt.Errorf("input %d: invalid button %d", i, in.Button)
			}
		case RestartInput:
			if !in.Type.Valid() {
				return fmt.Errorf("input %d: invalid restart type %d", i, in.Type)
			}
		case TpsInput, BugpointInput:
			if version == 1 {
				return fmt.Errorf("input %d: %w", i, ErrUnsupportedInput)
			}
		case nil:
			return fmt.Errorf("input %d: missing input", i)
		}

		if i > 0 {
			if prev := r.Inputs[i-1].AdjustedFrame(); c.Frame < prev {
				return &OutOfOrderError{Index: i, Frame: c.Frame, Previous: prev}
			}
		}
	}
	return nil
}

// ValidateFile decodes the replay at path, checks it with Validate and logs
// warnings for metadata that decodes but looks wrong.
func ValidateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("replay file not found: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("replay file is empty (0 bytes)")
	}

	r, err := Open(path)
	if err != nil {
		return err
	}
	if err := Validate(r); err != nil {
		return err
	}

	tps := r.Meta.TPS()
	if math.IsNaN(float64(tps)) || math.IsInf(float64(tps), 0) || tps <= 0 {
		log.Printf("[tcm] WARNING: unusable tick rate: %v", tps)
	}
	if len(r.Inputs) == 0 {
		log.Printf("[tcm] WARNING: replay has no inputs")
	}
	if m, ok := r.Meta.(MetaV2); ok {
		_, hasSeed := m.RngSeed()
		switch {
		case m.IsRngSeedSet() && !hasSeed:
			log.Printf("[tcm] WARNING: seed override flag set but seed is 0")
		case !m.IsRngSeedSet() && hasSeed:
			log.Printf("[tcm] WARNING: seed stored without the override flag")
		}
		if m.AppendCounter != 0 {
			log.Printf("[tcm] WARNING: append counter is %d", m.AppendCounter)
		}
	}

	log.Printf("[tcm] Validated %s: v%d, %g tps, %d inputs, %d bytes",
		path, r.Meta.Version(), tps, len(r.Inputs), info.Size())

	return nil
}

// ValidateFileQuiet is like ValidateFile but suppresses all log output.
func ValidateFileQuiet(path string) error {
	oldFlags := log.Flags()
	oldOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer func() {
		log.SetFlags(oldFlags)
		log.SetOutput(oldOutput)
	}()

	return ValidateFile(path)
}
