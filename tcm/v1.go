package tcm

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

// Version 1 control byte:
//
//	bits 0-2  code: 0-2 button-1, 3-5 restart kind+3
//	bit 6     player 2
//	bit 7     push
const (
	v1InputMask   = 0b111
	v1Player2Mask = 1 << 6
	v1PushMask    = 1 << 7
	v1RestartBase = 3

	// v1EOM terminates a version 1 input stream.
	v1EOM = 0xCC
)

func encodeInputV1(in Input) (byte, error) {
	switch in := in.(type) {
	case VanillaInput:
		if !in.Button.Valid() {
			return 0, errors.Errorf("invalid button %d", in.Button)
		}
		b := (byte(in.Button) - 1) & v1InputMask
		if in.Push {
			b |= v1PushMask
		}
		if in.Player2 {
			b |= v1Player2Mask
		}
		return b, nil
	case RestartInput:
		if !in.Type.Valid() {
			return 0, errors.Errorf("invalid restart type %d", in.Type)
		}
		return v1RestartBase + byte(in.Type), nil
	default:
		return 0, ErrUnsupportedInput
	}
}

func decodeInputV1(b byte) (Input, error) {
	code := b & v1InputMask
	switch {
	case code < v1RestartBase:
		return VanillaInput{
			Button:  PlayerButton(code + 1),
			Push:    b&v1PushMask != 0,
			Player2: b&v1Player2Mask != 0,
		}, nil
	case code <= v1RestartBase+byte(Death):
		return RestartInput{Type: RestartType(code - v1RestartBase)}, nil
	default:
		return nil, &InvalidInputError{Value: b}
	}
}

func writeInputsV1(w io.Writer, inputs []InputCommand) error {
	if uint64(len(inputs)) > math.MaxUint32 {
		return errors.Errorf("too many inputs for v1 replay: %d", len(inputs))
	}
	if err := writeVarU32(w, uint32(len(inputs))); err != nil {
		return errors.Wrap(err, "write input count")
	}

	var rec [1]byte
	for i, c := range inputs {
		b, err := encodeInputV1(c.Input)
		if err != nil {
			return errors.Wrapf(err, "input %d", i)
		}
		if err := writeVarFrame(w, c.Frame); err != nil {
			return errors.Wrapf(err, "input %d", i)
		}
		rec[0] = b
		if _, err := w.Write(rec[:]); err != nil {
			return errors.Wrapf(err, "input %d", i)
		}
	}

	rec[0] = v1EOM
	_, err := w.Write(rec[:])
	return errors.Wrap(err, "write end-of-macro")
}

func readInputsV1(r io.Reader) ([]InputCommand, error) {
	count, err := readVarU32(r)
	if err != nil {
		return nil, eofError(err, "input count")
	}

	// The count comes from the file; don't trust it for a huge allocation.
	inputs := make([]InputCommand, 0, int(min(count, 1<<16)))

	var rec [1]byte
	for i := uint32(0); i < count; i++ {
		frame, err := readVarFrame(r, "input frame")
		if err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return nil, eofError(err, "input data")
		}
		in, err := decodeInputV1(rec[0])
		if err != nil {
			return nil, errors.Wrapf(err, "input %d", i)
		}
		inputs = append(inputs, InputCommand{Frame: frame, Input: in})
	}

	if _, err := io.ReadFull(r, rec[:]); err != nil {
		return nil, eofError(err, "end-of-macro")
	}
	if rec[0] != v1EOM {
		return nil, ErrInvalidTerminator
	}
	return inputs, nil
}
