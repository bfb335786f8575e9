package tcm

import (
	"bytes"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
)

// MetaSize is the encoded size of the metadata block for every version.
const MetaSize = 0x40

// Meta is the metadata block of a replay. It is implemented by MetaV1 and
// MetaV2 only; switch on the concrete type to reach version-specific fields.
type Meta interface {
	// Version is the format version, 1 or 2.
	Version() uint8
	// TPS is the tick rate.
	TPS() float32
	// TPSDt is the tick duration, 1/TPS.
	TPSDt() float32
	// UsesDt reports whether the block stores the tick duration rather than
	// the rate.
	UsesDt() bool
	// RngSeed returns the RNG seed, if any.
	RngSeed() (uint64, bool)
	// IsRngSeedSet reports whether the seed override flag is set.
	IsRngSeedSet() bool
	// Size is the encoded size in bytes.
	Size() int
	// MarshalBinary encodes the block.
	MarshalBinary() ([]byte, error)

	isMeta()
}

// metaV1Block is the on-disk layout of MetaV1.
//
//	0    version = 1
//	1    append counter
//	4-7  tps, float32 LE
type metaV1Block struct {
	Version       uint8
	AppendCounter uint8
	Reserved0     []byte  `struc:"[2]pad"`
	TPS           float32 `struc:"float32,little"`
	Reserved1     []byte  `struc:"[56]pad"`
}

// metaV2Block is the on-disk layout of MetaV2.
//
//	0     version = 2
//	1     append counter
//	2     flags
//	4-7   tps or dt, float32 LE
//	8-15  rng seed, uint64 LE, 0 when absent
type metaV2Block struct {
	Version       uint8
	AppendCounter uint8
	Flags         uint8
	Reserved0     []byte  `struc:"[1]pad"`
	TPSOrDt       float32 `struc:"float32,little"`
	Seed          uint64  `struc:"uint64,little"`
	Reserved1     []byte  `struc:"[48]pad"`
}

func packBlock(block interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(MetaSize)
	if err := struc.Pack(&buf, block); err != nil {
		return nil, errors.Wrap(err, "pack metadata")
	}
	if buf.Len() != MetaSize {
		return nil, errors.Errorf("metadata block is %d bytes, want %d", buf.Len(), MetaSize)
	}
	return buf.Bytes(), nil
}

func unpackBlock(data []byte, block interface{}) error {
	if len(data) < MetaSize {
		return &UnexpectedEOFError{Context: "metadata"}
	}
	return errors.Wrap(struc.Unpack(bytes.NewReader(data[:MetaSize]), block), "unpack metadata")
}

// MetaV1 is the version 1 metadata block.
type MetaV1 struct {
	TicksPerSecond float32
	AppendCounter  uint8
}

// NewMetaV1 returns version 1 metadata.
func NewMetaV1(tps float32, appendCounter uint8) MetaV1 {
	return MetaV1{TicksPerSecond: tps, AppendCounter: appendCounter}
}

func (MetaV1) isMeta()                 {}
func (MetaV1) Version() uint8          { return 1 }
func (MetaV1) Size() int               { return MetaSize }
func (m MetaV1) TPS() float32          { return m.TicksPerSecond }
func (m MetaV1) TPSDt() float32        { return 1 / m.TicksPerSecond }
func (MetaV1) UsesDt() bool            { return false }
func (MetaV1) RngSeed() (uint64, bool) { return 0, false }
func (MetaV1) IsRngSeedSet() bool      { return false }

// MarshalBinary implements encoding.BinaryMarshaler.
func (m MetaV1) MarshalBinary() ([]byte, error) {
	return packBlock(&metaV1Block{
		Version:       1,
		AppendCounter: m.AppendCounter,
		TPS:           m.TicksPerSecond,
	})
}

// ParseMetaV1 decodes a version 1 metadata block.
func ParseMetaV1(data []byte) (MetaV1, error) {
	var b metaV1Block
	if err := unpackBlock(data, &b); err != nil {
		return MetaV1{}, err
	}
	if b.Version != 1 {
		return MetaV1{}, &VersionMismatchError{Want: 1, Got: b.Version}
	}
	return MetaV1{TicksPerSecond: b.TPS, AppendCounter: b.AppendCounter}, nil
}

// MetaV2Flags is the flags byte of a version 2 metadata block.
type MetaV2Flags uint8

const (
	// FlagOverrideSeed is set when the block carries an RNG seed.
	FlagOverrideSeed MetaV2Flags = 1 << 0
	// FlagTpsInsteadOfDt is set when the block stores the tick rate rather
	// than the tick duration.
	FlagTpsInsteadOfDt MetaV2Flags = 1 << 1
)

// Has reports whether flag is set.
func (f MetaV2Flags) Has(flag MetaV2Flags) bool {
	return f&flag != 0
}

// With returns f with flag set or cleared.
func (f MetaV2Flags) With(flag MetaV2Flags, set bool) MetaV2Flags {
	if set {
		return f | flag
	}
	return f &^ flag
}

// MetaV2 is the version 2 metadata block.
//
// A stored seed of 0 means "no seed", so a genuine seed of 0 cannot be
// represented.
type MetaV2 struct {
	AppendCounter uint8

	tpsOrDt float32
	seed    uint64
	flags   MetaV2Flags
}

// NewMetaV2 returns version 2 metadata storing the tick rate directly. The
// seed override flag is set if seed is not nil.
func NewMetaV2(tps float32, appendCounter uint8, seed *uint64) MetaV2 {
	m := MetaV2{
		AppendCounter: appendCounter,
		tpsOrDt:       tps,
		flags:         MetaV2Flags(0).With(FlagTpsInsteadOfDt, true).With(FlagOverrideSeed, seed != nil),
	}
	if seed != nil {
		m.seed = *seed
	}
	return m
}

func (MetaV2) isMeta()        {}
func (MetaV2) Version() uint8 { return 2 }
func (MetaV2) Size() int      { return MetaSize }

// Flags returns the raw flags byte.
func (m MetaV2) Flags() MetaV2Flags { return m.flags }

func (m MetaV2) TPS() float32 {
	if m.flags.Has(FlagTpsInsteadOfDt) {
		return m.tpsOrDt
	}
	return 1 / m.tpsOrDt
}

func (m MetaV2) TPSDt() float32 {
	if m.flags.Has(FlagTpsInsteadOfDt) {
		return 1 / m.tpsOrDt
	}
	return m.tpsOrDt
}

func (m MetaV2) UsesDt() bool {
	return !m.flags.Has(FlagTpsInsteadOfDt)
}

func (m MetaV2) RngSeed() (uint64, bool) {
	return m.seed, m.seed != 0
}

func (m MetaV2) IsRngSeedSet() bool {
	return m.flags.Has(FlagOverrideSeed)
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (m MetaV2) MarshalBinary() ([]byte, error) {
	return packBlock(&metaV2Block{
		Version:       2,
		AppendCounter: m.AppendCounter,
		Flags:         uint8(m.flags),
		TPSOrDt:       m.tpsOrDt,
		Seed:          m.seed,
	})
}

// ParseMetaV2 decodes a version 2 metadata block.
func ParseMetaV2(data []byte) (MetaV2, error) {
	var b metaV2Block
	if err := unpackBlock(data, &b); err != nil {
		return MetaV2{}, err
	}
	if b.Version != 2 {
		return MetaV2{}, &VersionMismatchError{Want: 2, Got: b.Version}
	}
	return MetaV2{
		AppendCounter: b.AppendCounter,
		tpsOrDt:       b.TPSOrDt,
		seed:          b.Seed,
		flags:         MetaV2Flags(b.Flags),
	}, nil
}

// ParseMeta decodes a metadata block of either version.
func ParseMeta(data []byte) (Meta, error) {
	if len(data) == 0 {
		return nil, &UnexpectedEOFError{Context: "metadata"}
	}
	switch data[0] {
	case 1:
		m, err := ParseMetaV1(data)
		if err != nil {
			return nil, err
		}
		return m, nil
	case 2:
		m, err := ParseMetaV2(data)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, &UnsupportedVersionError{Version: data[0]}
	}
}
