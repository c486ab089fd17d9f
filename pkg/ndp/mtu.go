package ndp

import (
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|     Type      |    Length     |           Reserved            |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                              MTU                              |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+

const (
	mtuReservedOffset = headerSize
	mtuOffset         = mtuReservedOffset + wire.ShortSize
	mtuOptionSize     = mtuOffset + wire.IntSize
)

// MTUOption is the MTU option (type 5).
type MTUOption struct {
	length   uint8
	reserved uint16
	mtu      uint32
}

// DecodeMTUOption parses raw, which must start with an MTU option. The
// reserved field is kept as is.
func DecodeMTUOption(raw []byte) (*MTUOption, error) {
	length, err := checkHeader(raw, OptionTypeMTU, mtuOptionSize)
	if err != nil {
		return nil, err
	}
	if int(length)*LengthUnit != mtuOptionSize {
		return nil, packet.Illegalf(raw, "invalid value of length field: %d", length)
	}
	reserved, _ := wire.Uint16(raw, mtuReservedOffset)
	mtu, _ := wire.Uint32(raw, mtuOffset)
	return &MTUOption{length: length, reserved: reserved, mtu: mtu}, nil
}

func (o *MTUOption) Type() OptionType { return OptionTypeMTU }
func (o *MTUOption) Length() uint8    { return o.length }
func (o *MTUOption) Reserved() uint16 { return o.reserved }
func (o *MTUOption) MTU() uint32      { return o.mtu }
func (o *MTUOption) Len() int         { return mtuOptionSize }
func (o *MTUOption) ndpOption()       {}

func (o *MTUOption) RawData() []byte {
	raw := make([]byte, mtuOptionSize)
	raw[typeOffset] = uint8(OptionTypeMTU)
	raw[lengthOffset] = o.length
	_ = wire.PutUint16(raw, mtuReservedOffset, o.reserved)
	_ = wire.PutUint32(raw, mtuOffset, o.mtu)
	return raw
}

func (o *MTUOption) String() string {
	return fmt.Sprintf("[Type: %s] [Length: %d (%d bytes)] [Reserved: %d] [MTU: %d]",
		OptionTypeMTU, o.length, int(o.length)*LengthUnit, o.reserved, o.mtu)
}

// Builder returns a builder staged with the option's fields.
func (o *MTUOption) Builder() *MTUOptionBuilder {
	return &MTUOptionBuilder{Length: o.length, Reserved: o.reserved, MTU: o.mtu}
}

// MTUOptionBuilder stages the fields of an MTUOption.
type MTUOptionBuilder struct {
	Length   uint8
	Reserved uint16
	MTU      uint32

	// CorrectLengthAtBuild replaces Length with the size of the built
	// option in 8-byte units.
	CorrectLengthAtBuild bool
}

func (b *MTUOptionBuilder) Build() (*MTUOption, error) {
	o := &MTUOption{reserved: b.Reserved, mtu: b.MTU}
	length, err := buildLength(b.Length, o.Len(), b.CorrectLengthAtBuild)
	if err != nil {
		return nil, err
	}
	o.length = length
	return o, nil
}
