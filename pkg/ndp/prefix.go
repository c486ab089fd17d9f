package ndp

import (
	"fmt"
	"net/netip"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|     Type      |    Length     | Prefix Length |L|A| Reserved1 |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                         Valid Lifetime                        |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                       Preferred Lifetime                      |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                           Reserved2                           |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                                                               |
//	+                            Prefix                             +
//	|                                                               |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+

const (
	prefixLengthOffset      = headerSize
	flagsOffset             = prefixLengthOffset + wire.ByteSize
	validLifetimeOffset     = flagsOffset + wire.ByteSize
	preferredLifetimeOffset = validLifetimeOffset + wire.IntSize
	reserved2Offset         = preferredLifetimeOffset + wire.IntSize
	prefixOffset            = reserved2Offset + wire.IntSize
	prefixOptionSize        = prefixOffset + wire.IPv6Size

	onLinkMask     = 0x80
	autonomousMask = 0x40
	reserved1Mask  = 0x3F
)

// PrefixInformationOption is the Prefix Information option (type 3).
type PrefixInformationOption struct {
	length            uint8
	prefixLength      uint8
	onLink            bool
	autonomous        bool
	reserved1         uint8
	validLifetime     uint32
	preferredLifetime uint32
	reserved2         uint32
	prefix            netip.Addr
}

// DecodePrefixInformationOption parses raw. Reserved1 is masked to its six
// low bits; no other constraint is placed on reserved fields.
func DecodePrefixInformationOption(raw []byte) (*PrefixInformationOption, error) {
	length, err := checkHeader(raw, OptionTypePrefixInformation, prefixOptionSize)
	if err != nil {
		return nil, err
	}
	if int(length)*LengthUnit != prefixOptionSize {
		return nil, packet.Illegalf(raw, "invalid value of length field: %d", length)
	}

	o := &PrefixInformationOption{length: length}
	o.prefixLength, _ = wire.Uint8(raw, prefixLengthOffset)
	o.onLink, _ = wire.Bool(raw, flagsOffset, onLinkMask)
	o.autonomous, _ = wire.Bool(raw, flagsOffset, autonomousMask)
	o.reserved1, _ = wire.Bits(raw, flagsOffset, reserved1Mask)
	o.validLifetime, _ = wire.Uint32(raw, validLifetimeOffset)
	o.preferredLifetime, _ = wire.Uint32(raw, preferredLifetimeOffset)
	o.reserved2, _ = wire.Uint32(raw, reserved2Offset)
	o.prefix, _ = wire.IPv6(raw, prefixOffset)
	return o, nil
}

func (o *PrefixInformationOption) Type() OptionType          { return OptionTypePrefixInformation }
func (o *PrefixInformationOption) Length() uint8             { return o.length }
func (o *PrefixInformationOption) PrefixLength() uint8       { return o.prefixLength }
func (o *PrefixInformationOption) OnLink() bool              { return o.onLink }
func (o *PrefixInformationOption) Autonomous() bool          { return o.autonomous }
func (o *PrefixInformationOption) Reserved1() uint8          { return o.reserved1 }
func (o *PrefixInformationOption) ValidLifetime() uint32     { return o.validLifetime }
func (o *PrefixInformationOption) PreferredLifetime() uint32 { return o.preferredLifetime }
func (o *PrefixInformationOption) Reserved2() uint32         { return o.reserved2 }
func (o *PrefixInformationOption) Prefix() netip.Addr        { return o.prefix }
func (o *PrefixInformationOption) Len() int                  { return prefixOptionSize }
func (o *PrefixInformationOption) ndpOption()                {}

func (o *PrefixInformationOption) RawData() []byte {
	raw := make([]byte, prefixOptionSize)
	raw[typeOffset] = uint8(OptionTypePrefixInformation)
	raw[lengthOffset] = o.length
	raw[prefixLengthOffset] = o.prefixLength
	flags := o.reserved1 & reserved1Mask
	flags = wire.SetFlag(flags, onLinkMask, o.onLink)
	flags = wire.SetFlag(flags, autonomousMask, o.autonomous)
	raw[flagsOffset] = flags
	_ = wire.PutUint32(raw, validLifetimeOffset, o.validLifetime)
	_ = wire.PutUint32(raw, preferredLifetimeOffset, o.preferredLifetime)
	_ = wire.PutUint32(raw, reserved2Offset, o.reserved2)
	_ = wire.PutAddr(raw, prefixOffset, o.prefix)
	return raw
}

func (o *PrefixInformationOption) String() string {
	return fmt.Sprintf("[Type: %s] [Length: %d (%d bytes)] [Prefix Length: %d] [on-link flag: %t] "+
		"[address-configuration flag: %t] [Reserved1: %d] [Valid Lifetime: %d] "+
		"[Preferred Lifetime: %d] [Reserved2: %d] [Prefix: %s]",
		OptionTypePrefixInformation, o.length, int(o.length)*LengthUnit, o.prefixLength, o.onLink,
		o.autonomous, o.reserved1, o.validLifetime, o.preferredLifetime, o.reserved2, o.prefix)
}

func (o *PrefixInformationOption) Builder() *PrefixInformationOptionBuilder {
	return &PrefixInformationOptionBuilder{
		Length:            o.length,
		PrefixLength:      o.prefixLength,
		OnLink:            o.onLink,
		Autonomous:        o.autonomous,
		Reserved1:         o.reserved1,
		ValidLifetime:     o.validLifetime,
		PreferredLifetime: o.preferredLifetime,
		Reserved2:         o.reserved2,
		Prefix:            o.prefix,
	}
}

// PrefixInformationOptionBuilder stages the fields of a
// PrefixInformationOption. Prefix is required and must be IPv6; Reserved1
// may only use its six low bits.
type PrefixInformationOptionBuilder struct {
	Length            uint8
	PrefixLength      uint8
	OnLink            bool
	Autonomous        bool
	Reserved1         uint8
	ValidLifetime     uint32
	PreferredLifetime uint32
	Reserved2         uint32
	Prefix            netip.Addr

	CorrectLengthAtBuild bool
}

func (b *PrefixInformationOptionBuilder) Build() (*PrefixInformationOption, error) {
	if !b.Prefix.IsValid() {
		return nil, packet.Invalidf("prefix is required")
	}
	if !b.Prefix.Is6() {
		return nil, packet.Invalidf("prefix must be an IPv6 address: %s", b.Prefix)
	}
	if err := wire.CheckReserved(b.Reserved1, reserved1Mask); err != nil {
		return nil, packet.Invalidf("invalid reserved1: %d: %v", b.Reserved1, err)
	}
	o := &PrefixInformationOption{
		prefixLength:      b.PrefixLength,
		onLink:            b.OnLink,
		autonomous:        b.Autonomous,
		reserved1:         b.Reserved1,
		validLifetime:     b.ValidLifetime,
		preferredLifetime: b.PreferredLifetime,
		reserved2:         b.Reserved2,
		prefix:            b.Prefix,
	}
	length, err := buildLength(b.Length, o.Len(), b.CorrectLengthAtBuild)
	if err != nil {
		return nil, err
	}
	o.length = length
	return o, nil
}
