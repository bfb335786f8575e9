package tcm

import "bytes"

func seedPtr(v uint64) *uint64 { return &v }

// file joins the magic header, a metadata block and an input stream.
func file(meta []byte, stream ...byte) []byte {
	var b bytes.Buffer
	b.Write(Header[:])
	b.Write(meta)
	b.Write(stream)
	return b.Bytes()
}

// metaBlock returns a 64-byte block starting with prefix.
func metaBlock(prefix ...byte) []byte {
	block := make([]byte, MetaSize)
	copy(block, prefix)
	return block
}

var (
	// version 1, 60 tps
	v1Meta = metaBlock(0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x70, 0x42)

	v1Stream = []byte{
		0x03,             // three inputs
		0x00, 0x80,       // 0: jump push
		0xc8, 0x01, 0x41, // 200: left release p2
		0xac, 0x02, 0x05, // 300: death
		0xcc,
	}

	v1Inputs = []InputCommand{
		{Frame: 0, Input: VanillaInput{Button: Jump, Push: true}},
		{Frame: 200, Input: VanillaInput{Button: Left, Player2: true}},
		{Frame: 300, Input: RestartInput{Type: Death}},
	}

	// version 2, 240 tps stored as a rate, no seed
	v2Meta = metaBlock(0x02, 0x00, 0x02, 0x00, 0x00, 0x00, 0x70, 0x43)

	v2Stream = []byte{
		0x0a,             // start frame 10
		0x95, 0x22, 0x01, // jump push + swift release, delta 290 in 2 bytes
		0x2f,             // right push p2, repeat last delta
		0x2b,             // right release p2, repeat last delta
		0x54,             // restart-full with seed, delta in 1 byte
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
		0x05,
		0x0c, 0x00, 0x00, 0xf0, 0x42, // tps 120, same frame
		0xdc, 0x70, 0x11, 0x01, 0x00, // bugpoint, delta 70000 in 4 bytes
		0x26, // left push, repeat last delta
		0x02, // left release, last action
	}

	v2Inputs = []InputCommand{
		{Frame: 10, Input: VanillaInput{Button: Jump, Push: true}},
		{Frame: 10, Input: VanillaInput{Button: Jump}},
		{Frame: 300, Input: VanillaInput{Button: Right, Push: true, Player2: true}},
		{Frame: 590, Input: VanillaInput{Button: Right, Player2: true}},
		{Frame: 880, Input: RestartInput{Type: RestartFull, NewSeed: seedPtr(0x0102030405060708)}},
		{Frame: 5, Input: TpsInput{TPS: 120}},
		{Frame: 5, Input: BugpointInput{}},
		{Frame: 70005, Input: VanillaInput{Button: Left, Push: true}},
		{Frame: 140005, Input: VanillaInput{Button: Left}},
	}
)
