package tcm

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidHeader is returned when a stream does not start with the TCM magic.
	ErrInvalidHeader = errors.New("tcm: invalid file header - not a valid TCM file")

	// ErrUnsupportedInput is returned when a version 1 replay holds an input
	// that only version 2 can represent.
	ErrUnsupportedInput = errors.New("tcm: unsupported input type in v1 replay")

	// ErrInvalidTerminator is returned when a version 1 input stream does not
	// end with the end-of-macro byte.
	ErrInvalidTerminator = errors.New("tcm: missing end-of-macro marker in v1 replay")
)

// UnsupportedVersionError reports a metadata version byte other than 1 or 2.
type UnsupportedVersionError struct {
	Version uint8
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("tcm: unsupported format version: %d", e.Version)
}

// VersionMismatchError reports a version-specific decode fed the other version.
type VersionMismatchError struct {
	Want, Got uint8
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("tcm: expected format version %d, found %d", e.Want, e.Got)
}

// InvalidInputError reports a control byte that does not decode to an input.
type InvalidInputError struct {
	Value uint8
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("tcm: invalid input byte 0x%02x", e.Value)
}

// UnexpectedEOFError reports a stream that ended inside a record.
type UnexpectedEOFError struct {
	Context string
}

func (e *UnexpectedEOFError) Error() string {
	return fmt.Sprintf("tcm: unexpected end of file while reading %s", e.Context)
}

func (e *UnexpectedEOFError) Unwrap() error { return io.ErrUnexpectedEOF }

// DeltaOverflowError reports a gap between two actions that cannot be
// encoded, even relative to the previous gap.
type DeltaOverflowError struct {
	Delta, LastDelta Frame
}

func (e *DeltaOverflowError) Error() string {
	return fmt.Sprintf("tcm: delta too big: %d (last: %d)", e.Delta, e.LastDelta)
}

// OutOfOrderError reports an input whose frame is before the frame of the
// input preceding it in the same segment.
type OutOfOrderError struct {
	Index           int
	Frame, Previous Frame
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("tcm: input %d at frame %d is before frame %d", e.Index, e.Frame, e.Previous)
}

// FrameOverflowError reports a frame that does not fit in a 32-bit varint.
type FrameOverflowError struct {
	Frame Frame
}

func (e *FrameOverflowError) Error() string {
	return fmt.Sprintf("tcm: frame %d does not fit in 32 bits", e.Frame)
}

// ConversionError reports a replay that cannot be converted to the requested
// version.
type ConversionError struct {
	Reason string
}

func (e *ConversionError) Error() string {
	return "tcm: conversion failed: " + e.Reason
}

// eofError turns any flavour of end-of-file into an UnexpectedEOFError for
// context, and wraps everything else.
func eofError(err error, context string) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return &UnexpectedEOFError{Context: context}
	}
	return errors.Wrapf(err, "read %s", context)
}
