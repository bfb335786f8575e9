package tcm

import (
	"io"
	"math"

	pk "github.com/Tnze/go-mc/net/packet"
	"github.com/pkg/errors"
)

// TCM counts and frames use the same unsigned 32-bit LEB128 layout as a
// Minecraft VarInt, so the go-mc codec is used directly.

// varIntSource feeds pk.VarInt one byte at a time and remembers how many
// bytes it handed out, so a stream that ends mid-varint can be told apart
// from one that ends before it.
type varIntSource struct {
	r    io.Reader
	read int
}

func (s *varIntSource) ReadByte() (byte, error) {
	var b [1]byte
	if _, err := io.ReadFull(s.r, b[:]); err != nil {
		return 0, err
	}
	s.read++
	return b[0], nil
}

func (s *varIntSource) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := s.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = b
	return 1, nil
}

// readVarU32 reads a varint. It returns io.EOF only if the stream ended
// before the first byte; a varint cut short yields io.ErrUnexpectedEOF.
func readVarU32(r io.Reader) (uint32, error) {
	src := varIntSource{r: r}
	var v pk.VarInt
	if _, err := v.ReadFrom(&src); err != nil {
		if err == io.EOF && src.read > 0 {
			return 0, io.ErrUnexpectedEOF
		}
		return 0, err
	}
	return uint32(v), nil
}

func writeVarU32(w io.Writer, v uint32) error {
	_, err := pk.VarInt(int32(v)).WriteTo(w)
	return err
}

// writeVarFrame writes a frame as a varint, refusing frames that do not fit.
func writeVarFrame(w io.Writer, f Frame) error {
	if f > math.MaxUint32 {
		return &FrameOverflowError{Frame: f}
	}
	return errors.Wrap(writeVarU32(w, uint32(f)), "write frame")
}

// readVarFrame reads a varint that is required to be present.
func readVarFrame(r io.Reader, context string) (Frame, error) {
	v, err := readVarU32(r)
	if err != nil {
		return 0, eofError(err, context)
	}
	return Frame(v), nil
}
