package tcm

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Version 2 action byte:
//
//	bits 0-1  input code: 1-3 button, 0 custom
//	bit 2     push       (custom: low bit of custom type)
//	bit 3     player 2   (custom: high bit of custom type)
//	bit 4     extra: swift twin, seed follows, or bugpoint
//	bit 5     delta is relative to the last nonzero delta
//	bits 6-7  delta width: 0, 1, 2 or 4 bytes
const (
	v2InputMask   = 0b11
	v2PushMask    = 1 << 2
	v2Player2Mask = 1 << 3
	v2CustomShift = 2
	v2CustomMask  = 0b11 << v2CustomShift
	v2ExtraMask   = 1 << 4
	v2DeltaShift  = 5

	// v2CustomTps is the custom type shared by TpsInput and BugpointInput;
	// the extra bit tells them apart.
	v2CustomTps = 3
)

// blobWidth is the size selector of a frame delta field.
type blobWidth uint8

const (
	widthZero blobWidth = iota
	widthOne
	widthTwo
	widthFour
)

var blobWidths = [...]blobWidth{widthZero, widthOne, widthTwo, widthFour}

func (w blobWidth) max() Frame {
	switch w {
	case widthOne:
		return math.MaxUint8
	case widthTwo:
		return math.MaxUint16
	case widthFour:
		return math.MaxUint32
	default:
		return 0
	}
}

func (w blobWidth) size() int {
	switch w {
	case widthOne:
		return 1
	case widthTwo:
		return 2
	case widthFour:
		return 4
	default:
		return 0
	}
}

// deltaField is an encoded gap between two actions.
type deltaField struct {
	width blobWidth
	// magic marks stored as relative to the previous nonzero delta.
	magic  bool
	stored Frame
	delta  Frame
}

// encodeDelta picks the narrowest width that holds delta, either directly or
// as an offset from lastDelta. A delta equal to lastDelta takes no bytes.
func encodeDelta(delta, lastDelta Frame) (deltaField, error) {
	for _, w := range blobWidths {
		if delta <= w.max() {
			return deltaField{width: w, stored: delta, delta: delta}, nil
		}
		if lastDelta == 0 || lastDelta > delta {
			continue
		}
		if rel := delta - lastDelta; rel <= w.max() {
			return deltaField{width: w, magic: true, stored: rel, delta: delta}, nil
		}
	}
	return deltaField{}, &DeltaOverflowError{Delta: delta, LastDelta: lastDelta}
}

// control is the 3-bit delta control stored in the top of the action byte.
func (d deltaField) control() byte {
	c := byte(d.width) << 1
	if d.magic {
		c |= 1
	}
	return c
}

// appendTo appends the delta field bytes, if any, to buf.
func (d deltaField) appendTo(buf []byte) []byte {
	switch d.width {
	case widthOne:
		return append(buf, byte(d.stored))
	case widthTwo:
		return binary.LittleEndian.AppendUint16(buf, uint16(d.stored))
	case widthFour:
		return binary.LittleEndian.AppendUint32(buf, uint32(d.stored))
	default:
		return buf
	}
}

// readDelta reads the delta field described by the 3-bit control value and
// resolves it against lastDelta.
func readDelta(r io.Reader, control byte, lastDelta Frame) (Frame, error) {
	magic := control&1 != 0
	width := blobWidth((control >> 1) & 0b11)

	var buf [4]byte
	var stored Frame
	if n := width.size(); n > 0 {
		if _, err := io.ReadFull(r, buf[:n]); err != nil {
			return 0, eofError(err, "frame delta")
		}
		switch width {
		case widthOne:
			stored = Frame(buf[0])
		case widthTwo:
			stored = Frame(binary.LittleEndian.Uint16(buf[:2]))
		case widthFour:
			stored = Frame(binary.LittleEndian.Uint32(buf[:4]))
		}
	}
	if magic {
		stored += lastDelta
	}
	return stored, nil
}

// isSwiftPair reports whether b can be folded into a's action byte: the same
// button and player on the same frame, with the opposite push state.
func isSwiftPair(a, b InputCommand) bool {
	if a.Frame != b.Frame {
		return false
	}
	va, ok := a.Input.(VanillaInput)
	if !ok {
		return false
	}
	vb, ok := b.Input.(VanillaInput)
	if !ok {
		return false
	}
	return va.Button == vb.Button && va.Player2 == vb.Player2 && va.Push != vb.Push
}

// encodeActionV2 returns the action byte for in, without delta control bits.
func encodeActionV2(in Input, swift bool) (byte, error) {
	if v, ok := in.(VanillaInput); ok {
		if !v.Button.Valid() {
			return 0, errors.Errorf("invalid button %d", v.Button)
		}
		b := byte(v.Button) & v2InputMask
		if v.Push {
			b |= v2PushMask
		}
		if v.Player2 {
			b |= v2Player2Mask
		}
		if swift {
			b |= v2ExtraMask
		}
		return b, nil
	}

	if swift {
		return 0, errors.New("non-vanilla inputs cannot be swift")
	}

	var custom byte
	var extra bool
	switch in := in.(type) {
	case RestartInput:
		if !in.Type.Valid() {
			return 0, errors.Errorf("invalid restart type %d", in.Type)
		}
		custom = byte(in.Type)
		extra = in.NewSeed != nil
	case TpsInput:
		custom = v2CustomTps
	case BugpointInput:
		custom = v2CustomTps
		extra = true
	default:
		return 0, errors.Errorf("unknown input type %T", in)
	}

	b := custom << v2CustomShift
	if extra {
		b |= v2ExtraMask
	}
	return b, nil
}

func writeInputsV2(w io.Writer, inputs []InputCommand) error {
	if len(inputs) == 0 {
		return nil
	}
	if err := writeVarFrame(w, inputs[0].Frame); err != nil {
		return errors.Wrap(err, "start frame")
	}

	// action byte + 8 byte seed + 4 byte delta at most
	buf := make([]byte, 0, 13)
	var lastDelta Frame
	for i := 0; i < len(inputs); {
		idx := i
		c := inputs[i]
		i++

		swift := i < len(inputs) && isSwiftPair(c, inputs[i])
		if swift {
			i++
		}

		var delta deltaField
		if i < len(inputs) {
			next := inputs[i].Frame
			base := c.AdjustedFrame()
			if next < base {
				return &OutOfOrderError{Index: i, Frame: next, Previous: base}
			}
			var err error
			if delta, err = encodeDelta(next-base, lastDelta); err != nil {
				return errors.Wrapf(err, "input %d", idx)
			}
			if delta.delta != 0 {
				lastDelta = delta.delta
			}
		}

		action, err := encodeActionV2(c.Input, swift)
		if err != nil {
			return errors.Wrapf(err, "input %d", idx)
		}

		buf = append(buf[:0], action|delta.control()<<v2DeltaShift)
		switch in := c.Input.(type) {
		case TpsInput:
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(in.TPS))
		case RestartInput:
			if in.NewSeed != nil {
				buf = binary.LittleEndian.AppendUint64(buf, *in.NewSeed)
			}
		}
		buf = delta.appendTo(buf)

		if _, err := w.Write(buf); err != nil {
			return errors.Wrapf(err, "write input %d", idx)
		}
	}
	return nil
}

// v2State is the next thing the version 2 decoder expects.
type v2State uint8

const (
	v2Action v2State = iota
	v2FrameDelta
	v2Tps
	v2Seed
)

type v2Decoder struct {
	r      io.Reader
	inputs []InputCommand

	frame     Frame
	lastDelta Frame
	// control holds the delta bits of the last action byte; they apply once
	// its follow-up blobs have been read.
	control byte

	// pending is a restart waiting for its seed, recorded at pendingFrame.
	pending      RestartInput
	pendingFrame Frame
}

// nextAction reads an action byte. ok is false at a clean end of stream,
// which is the only place a version 2 stream may end.
func (d *v2Decoder) nextAction() (byte, bool, error) {
	var buf [1]byte
	switch _, err := io.ReadFull(d.r, buf[:]); err {
	case nil:
		return buf[0], true, nil
	case io.EOF:
		return 0, false, nil
	default:
		return 0, false, errors.Wrap(err, "read action")
	}
}

func (d *v2Decoder) emit(frame Frame, in Input) {
	d.inputs = append(d.inputs, InputCommand{Frame: frame, Input: in})
}

// action decodes an action byte and returns the state that follows it.
func (d *v2Decoder) action(b byte) v2State {
	d.control = b >> v2DeltaShift
	extra := b&v2ExtraMask != 0

	if code := b & v2InputMask; code != 0 {
		v := VanillaInput{
			Button:  PlayerButton(code),
			Push:    b&v2PushMask != 0,
			Player2: b&v2Player2Mask != 0,
		}
		d.emit(d.frame, v)
		if extra {
			v.Push = !v.Push
			d.emit(d.frame, v)
		}
		return v2FrameDelta
	}

	custom := (b & v2CustomMask) >> v2CustomShift
	if custom == v2CustomTps {
		if extra {
			d.emit(d.frame, BugpointInput{})
			return v2FrameDelta
		}
		return v2Tps
	}

	restart := RestartInput{Type: RestartType(custom)}
	frame := d.frame
	d.frame = 0
	if extra {
		d.pending, d.pendingFrame = restart, frame
		return v2Seed
	}
	d.emit(frame, restart)
	return v2FrameDelta
}

func (d *v2Decoder) run() ([]InputCommand, error) {
	state := v2Action
	for {
		switch state {
		case v2Action:
			b, ok, err := d.nextAction()
			if err != nil {
				return nil, err
			}
			if !ok {
				return d.inputs, nil
			}
			state = d.action(b)

		case v2FrameDelta:
			delta, err := readDelta(d.r, d.control, d.lastDelta)
			if err != nil {
				return nil, err
			}
			d.frame += delta
			if delta != 0 {
				d.lastDelta = delta
			}
			state = v2Action

		case v2Tps:
			var buf [4]byte
			if _, err := io.ReadFull(d.r, buf[:]); err != nil {
				return nil, eofError(err, "tps")
			}
			d.emit(d.frame, TpsInput{TPS: math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))})
			state = v2FrameDelta

		case v2Seed:
			var buf [8]byte
			if _, err := io.ReadFull(d.r, buf[:]); err != nil {
				return nil, eofError(err, "seed")
			}
			seed := binary.LittleEndian.Uint64(buf[:])
			d.pending.NewSeed = &seed
			d.emit(d.pendingFrame, d.pending)
			d.pending = RestartInput{}
			state = v2FrameDelta
		}
	}
}

func readInputsV2(r io.Reader) ([]InputCommand, error) {
	start, err := readVarU32(r)
	switch {
	case err == io.EOF:
		// Nothing after the metadata: an empty replay.
		return []InputCommand{}, nil
	case err != nil:
		return nil, eofError(err, "start frame")
	}

	d := v2Decoder{r: r, frame: Frame(start), inputs: []InputCommand{}}
	return d.run()
}
