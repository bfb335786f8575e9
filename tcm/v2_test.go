package tcm

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInputsV2(t *testing.T) {
	inputs, err := readInputsV2(bytes.NewReader(v2Stream))
	require.NoError(t, err)
	assert.Equal(t, v2Inputs, inputs)
}

func TestWriteInputsV2(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeInputsV2(&buf, v2Inputs))
	assert.Equal(t, v2Stream, buf.Bytes())
}

func TestEncodeDelta(t *testing.T) {
	tests := []struct {
		name             string
		delta, lastDelta Frame
		want             deltaField
	}{
		{"zero", 0, 0, deltaField{width: widthZero}},
		{"zero with history", 0, 40, deltaField{width: widthZero}},
		{"repeat", 40, 40, deltaField{width: widthZero, magic: true, delta: 40}},
		{"one byte", 200, 0, deltaField{width: widthOne, stored: 200, delta: 200}},
		{"one byte ignores larger last", 200, 300, deltaField{width: widthOne, stored: 200, delta: 200}},
		{"relative one byte", 600, 500, deltaField{width: widthOne, magic: true, stored: 100, delta: 600}},
		{"two bytes", 1000, 0, deltaField{width: widthTwo, stored: 1000, delta: 1000}},
		{"relative two bytes", 100000, 90000, deltaField{width: widthTwo, magic: true, stored: 10000, delta: 100000}},
		{"four bytes", 100000, 5, deltaField{width: widthFour, stored: 100000, delta: 100000}},
		{"relative four bytes", math.MaxUint32 + 10, 20, deltaField{width: widthFour, magic: true, stored: math.MaxUint32 - 10, delta: math.MaxUint32 + 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeDelta(tt.delta, tt.lastDelta)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			var buf bytes.Buffer
			buf.Write(got.appendTo(nil))
			assert.Equal(t, got.width.size(), buf.Len())
			back, err := readDelta(&buf, got.control(), tt.lastDelta)
			require.NoError(t, err)
			assert.Equal(t, tt.delta, back)
		})
	}
}

func TestEncodeDeltaOverflow(t *testing.T) {
	_, err := encodeDelta(math.MaxUint32+1, 0)
	var overflow *DeltaOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.EqualValues(t, uint64(math.MaxUint32)+1, overflow.Delta)

	// too far past the last delta to be relative either
	_, err = encodeDelta(2*math.MaxUint32+2, 1)
	assert.ErrorAs(t, err, &overflow)

	var buf bytes.Buffer
	err = writeInputsV2(&buf, []InputCommand{
		{Frame: 0, Input: VanillaInput{Button: Jump, Push: true}},
		{Frame: math.MaxUint32 + 1, Input: VanillaInput{Button: Jump}},
	})
	assert.ErrorAs(t, err, &overflow)
}

func TestDeltaRelativeShorthand(t *testing.T) {
	// f0 < f1 < f2 with equal gaps above one byte
	inputs := []InputCommand{
		{Frame: 0, Input: VanillaInput{Button: Jump, Push: true}},
		{Frame: 300, Input: VanillaInput{Button: Jump}},
		{Frame: 600, Input: VanillaInput{Button: Jump, Push: true}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeInputsV2(&buf, inputs))
	assert.Equal(t, []byte{0x00, 0x85, 0x2c, 0x01, 0x21, 0x05}, buf.Bytes())

	first := blobWidth(buf.Bytes()[1] >> (v2DeltaShift + 1))
	second := blobWidth(buf.Bytes()[4] >> (v2DeltaShift + 1))
	assert.Equal(t, widthTwo, first)
	assert.Less(t, second, first)
	assert.NotZero(t, buf.Bytes()[4]&(1<<v2DeltaShift), "second delta is relative")

	back, err := readInputsV2(&buf)
	require.NoError(t, err)
	assert.Equal(t, inputs, back)
}

func TestSwiftPair(t *testing.T) {
	inputs := []InputCommand{
		{Frame: 5, Input: VanillaInput{Button: Jump, Push: true}},
		{Frame: 5, Input: VanillaInput{Button: Jump}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeInputsV2(&buf, inputs))
	assert.Equal(t, []byte{0x05, 0x15}, buf.Bytes())

	back, err := readInputsV2(&buf)
	require.NoError(t, err)
	assert.Equal(t, inputs, back)

	// release first, then push
	inputs[0].Input, inputs[1].Input = inputs[1].Input, inputs[0].Input
	buf.Reset()
	require.NoError(t, writeInputsV2(&buf, inputs))
	assert.Equal(t, []byte{0x05, 0x11}, buf.Bytes())
	back, err = readInputsV2(&buf)
	require.NoError(t, err)
	assert.Equal(t, inputs, back)
}

func TestSwiftPairNotMerged(t *testing.T) {
	tests := []struct {
		name string
		a, b InputCommand
	}{
		{"other player",
			InputCommand{Frame: 5, Input: VanillaInput{Button: Jump, Push: true}},
			InputCommand{Frame: 5, Input: VanillaInput{Button: Jump, Player2: true}}},
		{"other button",
			InputCommand{Frame: 5, Input: VanillaInput{Button: Jump, Push: true}},
			InputCommand{Frame: 5, Input: VanillaInput{Button: Left}}},
		{"same push",
			InputCommand{Frame: 5, Input: VanillaInput{Button: Jump, Push: true}},
			InputCommand{Frame: 5, Input: VanillaInput{Button: Jump, Push: true}}},
		{"other frame",
			InputCommand{Frame: 5, Input: VanillaInput{Button: Jump, Push: true}},
			InputCommand{Frame: 6, Input: VanillaInput{Button: Jump}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, isSwiftPair(tt.a, tt.b))

			inputs := []InputCommand{tt.a, tt.b}
			var buf bytes.Buffer
			require.NoError(t, writeInputsV2(&buf, inputs))
			assert.Zero(t, buf.Bytes()[1]&v2ExtraMask, "first action is not folded")

			back, err := readInputsV2(&buf)
			require.NoError(t, err)
			assert.Equal(t, inputs, back)
		})
	}
}

func TestSameFrameVersusEndOfStream(t *testing.T) {
	// Both actions carry an empty, non-relative delta. The first is followed
	// by another action so its zero delta means "same frame"; the second is
	// followed by nothing so its zero delta ends the stream.
	stream := []byte{0x07, 0x06, 0x0a}

	inputs, err := readInputsV2(bytes.NewReader(stream))
	require.NoError(t, err)
	assert.Equal(t, []InputCommand{
		{Frame: 7, Input: VanillaInput{Button: Left, Push: true}},
		{Frame: 7, Input: VanillaInput{Button: Left, Player2: true}},
	}, inputs)
}

func TestFrameResetsAfterRestart(t *testing.T) {
	inputs, err := readInputsV2(bytes.NewReader(v2Stream))
	require.NoError(t, err)

	for i, c := range inputs[:len(inputs)-1] {
		if _, ok := c.Input.(RestartInput); !ok {
			continue
		}
		next := inputs[i+1]
		assert.Less(t, next.Frame, c.Frame, "frame after restart is measured from zero")
		assert.EqualValues(t, 5, next.Frame)
	}
}

func TestRestartWithoutSeed(t *testing.T) {
	inputs := []InputCommand{
		{Frame: 40, Input: VanillaInput{Button: Right, Push: true}},
		{Frame: 90, Input: RestartInput{Type: Death}},
		{Frame: 0, Input: VanillaInput{Button: Right}},
		{Frame: 12, Input: RestartInput{Type: Restart}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeInputsV2(&buf, inputs))
	assert.Equal(t, []byte{
		0x28,       // start frame 40
		0x47, 0x32, // right push, delta 50
		0x08,       // death, delta 0
		0x43, 0x0c, // right release, delta 12
		0x00, // restart
	}, buf.Bytes())

	back, err := readInputsV2(&buf)
	require.NoError(t, err)
	assert.Equal(t, inputs, back)
}

func TestRestartWithZeroSeed(t *testing.T) {
	inputs := []InputCommand{
		{Frame: 3, Input: RestartInput{Type: Restart, NewSeed: seedPtr(0)}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeInputsV2(&buf, inputs))
	back, err := readInputsV2(&buf)
	require.NoError(t, err)
	assert.Equal(t, inputs, back, "restart seeds are flagged, so 0 survives")
}

func TestReadInputsV2Empty(t *testing.T) {
	inputs, err := readInputsV2(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, inputs)

	var buf bytes.Buffer
	require.NoError(t, writeInputsV2(&buf, nil))
	assert.Zero(t, buf.Len())
}

func TestReadInputsV2Truncated(t *testing.T) {
	// cuts that land exactly on an action boundary are valid, shorter streams
	boundaries := map[int]bool{1: true, 4: true, 5: true, 6: true, 16: true, 21: true, 26: true, 27: true}

	for n := 1; n < len(v2Stream); n++ {
		_, err := readInputsV2(bytes.NewReader(v2Stream[:n]))
		if boundaries[n] {
			assert.NoError(t, err, "cut at %d", n)
			continue
		}
		var eof *UnexpectedEOFError
		if assert.ErrorAs(t, err, &eof, "cut at %d", n) {
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		}
	}
}

func TestReadInputsV2StartFrameTruncated(t *testing.T) {
	_, err := readInputsV2(bytes.NewReader([]byte{0x80}))
	var eof *UnexpectedEOFError
	assert.ErrorAs(t, err, &eof)
}

func TestEncodeActionV2(t *testing.T) {
	tests := []struct {
		in    Input
		swift bool
		byte  byte
	}{
		{VanillaInput{Button: Jump}, false, 0x01},
		{VanillaInput{Button: Right, Push: true, Player2: true}, true, 0x1f},
		{RestartInput{Type: Restart}, false, 0x00},
		{RestartInput{Type: RestartFull}, false, 0x04},
		{RestartInput{Type: Death, NewSeed: seedPtr(1)}, false, 0x18},
		{TpsInput{TPS: 60}, false, 0x0c},
		{BugpointInput{}, false, 0x1c},
	}

	for _, tt := range tests {
		b, err := encodeActionV2(tt.in, tt.swift)
		require.NoError(t, err)
		assert.Equal(t, tt.byte, b, "%v", tt.in)
	}

	_, err := encodeActionV2(RestartInput{}, true)
	assert.Error(t, err)
	_, err = encodeActionV2(VanillaInput{Button: 0}, false)
	assert.Error(t, err)
}

func TestWriteInputsV2OutOfOrder(t *testing.T) {
	var buf bytes.Buffer
	err := writeInputsV2(&buf, []InputCommand{
		{Frame: 10, Input: VanillaInput{Button: Jump, Push: true}},
		{Frame: 4, Input: VanillaInput{Button: Jump}},
	})
	var order *OutOfOrderError
	require.ErrorAs(t, err, &order)
	assert.Equal(t, OutOfOrderError{Index: 1, Frame: 4, Previous: 10}, *order)
}
