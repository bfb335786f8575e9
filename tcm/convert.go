package tcm

import "fmt"

// ToV1 converts r to version 1. It fails with a *ConversionError if r holds
// inputs version 1 cannot store. The RNG seed, in the metadata and on
// restarts, is dropped.
func (r *Replay[M]) ToV1() (*Replay[MetaV1], error) {
	for i, c := range r.Inputs {
		switch c.Input.(type) {
		case TpsInput:
			return nil, &ConversionError{Reason: fmt.Sprintf("TPS changes not supported in V1 (input %d)", i)}
		case BugpointInput:
			return nil, &ConversionError{Reason: fmt.Sprintf("Bugpoint inputs not supported in V1 (input %d)", i)}
		}
	}

	inputs := cloneInputs(r.Inputs)
	for i, c := range inputs {
		if restart, ok := c.Input.(RestartInput); ok && restart.NewSeed != nil {
			restart.NewSeed = nil
			inputs[i].Input = restart
		}
	}
	return NewReplay(NewMetaV1(r.Meta.TPS(), 0), inputs), nil
}

// ToV2 converts r to version 2. The new metadata uses seed if it is not nil,
// and r's own seed otherwise.
func (r *Replay[M]) ToV2(seed *uint64) *Replay[MetaV2] {
	if seed == nil {
		if s, ok := r.Meta.RngSeed(); ok {
			seed = &s
		}
	}
	return NewReplay(NewMetaV2(r.Meta.TPS(), 0, seed), cloneInputs(r.Inputs))
}
