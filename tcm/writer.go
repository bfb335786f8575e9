package tcm

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// ErrWriterClosed is returned by Writer methods after Close.
var ErrWriterClosed = errors.New("tcm: writer closed")

// Writer builds a replay one input at a time and writes it out on Close.
//
// Usage:
//
//	w, _ := tcm.Create("out.tcm", tcm.NewMetaV2(240, 0, nil))
//	defer w.Close()
//	_ = w.WriteInput(12, tcm.VanillaInput{Button: tcm.Jump, Push: true})
//
// Inputs are checked as they arrive: frames must not go backwards within a
// segment, and a version 1 writer rejects inputs only version 2 can store.
// Both formats need the whole input list to encode (a leading count for
// version 1, a look-ahead for version 2 deltas), so inputs are buffered.
type Writer[M Meta] struct {
	out    io.Writer
	meta   M
	inputs []InputCommand
	closed bool
	file   *os.File // optional, when using Create()
}

// NewWriter returns a Writer that serializes onto out when closed.
func NewWriter[M Meta](out io.Writer, meta M) *Writer[M] {
	return &Writer[M]{out: out, meta: meta}
}

// Create creates a file at path and returns a Writer that owns it. Close also
// closes the file.
func Create[M Meta](path string, meta M) (*Writer[M], error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := NewWriter(f, meta)
	w.file = f
	return w, nil
}

// Meta returns the metadata the replay will be written with.
func (w *Writer[M]) Meta() M { return w.meta }

// Len returns the number of inputs written so far.
func (w *Writer[M]) Len() int { return len(w.inputs) }

// SegmentStart returns the frame the next input is measured from: 0 after a
// restart or before any input, else the frame of the last input.
func (w *Writer[M]) SegmentStart() Frame {
	if len(w.inputs) == 0 {
		return 0
	}
	return w.inputs[len(w.inputs)-1].AdjustedFrame()
}

// WriteInput appends in at frame.
func (w *Writer[M]) WriteInput(frame Frame, in Input) error {
	if w.closed {
		return ErrWriterClosed
	}
	if in == nil {
		return errors.New("tcm: nil input")
	}
	if w.meta.Version() == 1 {
		switch in.(type) {
		case TpsInput, BugpointInput:
			return ErrUnsupportedInput
		}
	}
	if len(w.inputs) > 0 {
		if prev := w.SegmentStart(); frame < prev {
			return &OutOfOrderError{Index: len(w.inputs), Frame: frame, Previous: prev}
		}
	}
	w.inputs = append(w.inputs, InputCommand{Frame: frame, Input: in})
	return nil
}

// Replay returns a copy of the replay built so far.
func (w *Writer[M]) Replay() *Replay[M] {
	return NewReplay(w.meta, cloneInputs(w.inputs))
}

// Close writes the replay and, for a Writer made by Create, closes the file.
// Calling Close again does nothing.
func (w *Writer[M]) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := NewReplay(w.meta, w.inputs).Serialize(w.out)
	if w.file != nil {
		if cerr := w.file.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
