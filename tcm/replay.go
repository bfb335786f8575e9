package tcm

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
)

// HeaderSize is the length of the magic header.
const HeaderSize = 0x10

// Header is the magic sequence every TCM file starts with.
var Header = [HeaderSize]byte{
	0x9f, 0x88, 0x89, 0x84, 0x9f, 0x3b, 0x1d, 0xd8,
	0xcc, 0xa1, 0x86, 0x8a, 0x88, 0x99, 0x84, 0x00,
}

// Replay is a decoded macro: its metadata and its inputs in file order.
//
// Frames are non-decreasing between restarts; each RestartInput starts a new
// segment measured from frame 0.
type Replay[M Meta] struct {
	Meta   M
	Inputs []InputCommand
}

// DynamicReplay is a replay whose version is only known at runtime.
type DynamicReplay = Replay[Meta]

// NewReplay returns a replay of meta and inputs. It takes ownership of inputs.
func NewReplay[M Meta](meta M, inputs []InputCommand) *Replay[M] {
	if inputs == nil {
		inputs = []InputCommand{}
	}
	return &Replay[M]{Meta: meta, Inputs: inputs}
}

// NewEmptyV1 returns a version 1 replay without inputs.
func NewEmptyV1(tps float32) *Replay[MetaV1] {
	return NewReplay(NewMetaV1(tps, 0), nil)
}

// NewEmptyV2 returns a version 2 replay without inputs or seed.
func NewEmptyV2(tps float32) *Replay[MetaV2] {
	return NewReplay(NewMetaV2(tps, 0, nil), nil)
}

// Version is the format version of the replay's metadata.
func (r *Replay[M]) Version() uint8 {
	return r.Meta.Version()
}

// Dynamic returns a copy of r with its metadata behind the Meta interface.
func (r *Replay[M]) Dynamic() *DynamicReplay {
	return &DynamicReplay{Meta: r.Meta, Inputs: cloneInputs(r.Inputs)}
}

// Serialize writes the header, the metadata block and the input stream for
// the replay's version.
func (r *Replay[M]) Serialize(w io.Writer) error {
	meta, err := r.Meta.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Write(Header[:]); err != nil {
		return errors.Wrap(err, "write header")
	}
	if _, err := w.Write(meta); err != nil {
		return errors.Wrap(err, "write metadata")
	}

	switch v := r.Meta.Version(); v {
	case 1:
		return writeInputsV1(w, r.Inputs)
	case 2:
		return writeInputsV2(w, r.Inputs)
	default:
		return &UnsupportedVersionError{Version: v}
	}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *Replay[M]) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readHeader(r io.Reader) error {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return ErrInvalidHeader
		}
		return errors.Wrap(err, "read header")
	}
	if hdr != Header {
		return ErrInvalidHeader
	}
	return nil
}

func readMetaBlock(r io.Reader) ([]byte, error) {
	block := make([]byte, MetaSize)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, eofError(err, "metadata")
	}
	return block, nil
}

// DeserializeV1 reads a version 1 replay.
func DeserializeV1(r io.Reader) (*Replay[MetaV1], error) {
	if err := readHeader(r); err != nil {
		return nil, err
	}
	block, err := readMetaBlock(r)
	if err != nil {
		return nil, err
	}
	meta, err := ParseMetaV1(block)
	if err != nil {
		return nil, err
	}
	inputs, err := readInputsV1(r)
	if err != nil {
		return nil, err
	}
	return NewReplay(meta, inputs), nil
}

// DeserializeV2 reads a version 2 replay. The input stream runs to the end of
// r.
func DeserializeV2(r io.Reader) (*Replay[MetaV2], error) {
	if err := readHeader(r); err != nil {
		return nil, err
	}
	block, err := readMetaBlock(r)
	if err != nil {
		return nil, err
	}
	meta, err := ParseMetaV2(block)
	if err != nil {
		return nil, err
	}
	inputs, err := readInputsV2(r)
	if err != nil {
		return nil, err
	}
	return NewReplay(meta, inputs), nil
}

// PeekVersion checks the header of the replay at the current position of rs
// and returns its metadata version byte, leaving the position unchanged.
func PeekVersion(rs io.ReadSeeker) (uint8, error) {
	pos, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, errors.Wrap(err, "stream position")
	}

	readErr := readHeader(rs)
	var version [1]byte
	if readErr == nil {
		if _, err := io.ReadFull(rs, version[:]); err != nil {
			readErr = eofError(err, "version")
		}
	}

	if _, err := rs.Seek(pos, io.SeekStart); err != nil {
		return 0, errors.Wrap(err, "seek back")
	}
	if readErr != nil {
		return 0, readErr
	}
	return version[0], nil
}

// Deserialize reads a replay of either version, detected from its metadata
// block.
func Deserialize(rs io.ReadSeeker) (*DynamicReplay, error) {
	version, err := PeekVersion(rs)
	if err != nil {
		return nil, err
	}

	switch version {
	case 1:
		r, err := DeserializeV1(rs)
		if err != nil {
			return nil, err
		}
		return &DynamicReplay{Meta: r.Meta, Inputs: r.Inputs}, nil
	case 2:
		r, err := DeserializeV2(rs)
		if err != nil {
			return nil, err
		}
		return &DynamicReplay{Meta: r.Meta, Inputs: r.Inputs}, nil
	default:
		return nil, &UnsupportedVersionError{Version: version}
	}
}

// Open reads the replay file at path.
func Open(path string) (*DynamicReplay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := Deserialize(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return r, nil
}
