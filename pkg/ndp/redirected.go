package ndp

import (
	"bytes"
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|     Type      |    Length     |            Reserved           |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|                           Reserved                            |
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	~                       IP header + data                        ~
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+

const (
	redirectedReservedOffset = headerSize
	redirectedReservedSize   = 6
	redirectedPacketOffset   = redirectedReservedOffset + redirectedReservedSize
)

// RedirectedHeaderOption is the Redirected Header option (type 4). The
// carried IP packet is kept as raw bytes.
type RedirectedHeaderOption struct {
	length   uint8
	reserved [redirectedReservedSize]byte
	ipPacket []byte
}

func DecodeRedirectedHeaderOption(raw []byte) (*RedirectedHeaderOption, error) {
	length, err := checkHeader(raw, OptionTypeRedirectedHeader, redirectedPacketOffset)
	if err != nil {
		return nil, err
	}
	o := &RedirectedHeaderOption{length: length}
	copy(o.reserved[:], raw[redirectedReservedOffset:redirectedPacketOffset])
	o.ipPacket, err = wire.Copy(raw, redirectedPacketOffset, int(length)*LengthUnit-redirectedPacketOffset)
	if err != nil {
		return nil, packet.WrapIllegal(raw, err, "redirected packet")
	}
	return o, nil
}

func (o *RedirectedHeaderOption) Type() OptionType { return OptionTypeRedirectedHeader }
func (o *RedirectedHeaderOption) Length() uint8    { return o.length }
func (o *RedirectedHeaderOption) Reserved() [6]byte {
	return o.reserved
}

// IPPacket returns a copy of the embedded IP header and data.
func (o *RedirectedHeaderOption) IPPacket() []byte { return bytes.Clone(o.ipPacket) }
func (o *RedirectedHeaderOption) Len() int         { return redirectedPacketOffset + len(o.ipPacket) }
func (o *RedirectedHeaderOption) ndpOption()       {}

func (o *RedirectedHeaderOption) RawData() []byte {
	raw := make([]byte, o.Len())
	raw[typeOffset] = uint8(OptionTypeRedirectedHeader)
	raw[lengthOffset] = o.length
	copy(raw[redirectedReservedOffset:], o.reserved[:])
	copy(raw[redirectedPacketOffset:], o.ipPacket)
	return raw
}

func (o *RedirectedHeaderOption) String() string {
	return fmt.Sprintf("[Type: %s] [Length: %d (%d bytes)] [Reserved: %s] [IP header + data: %d bytes]",
		OptionTypeRedirectedHeader, o.length, int(o.length)*LengthUnit,
		wire.HexString(o.reserved[:], " "), len(o.ipPacket))
}

func (o *RedirectedHeaderOption) Builder() *RedirectedHeaderOptionBuilder {
	return &RedirectedHeaderOptionBuilder{
		Length:   o.length,
		Reserved: o.reserved,
		IPPacket: bytes.Clone(o.ipPacket),
	}
}

// RedirectedHeaderOptionBuilder stages a RedirectedHeaderOption. IPPacket
// must already be truncated or padded to a multiple of 8 bytes.
type RedirectedHeaderOptionBuilder struct {
	Length   uint8
	Reserved [6]byte
	IPPacket []byte

	CorrectLengthAtBuild bool
}

func (b *RedirectedHeaderOptionBuilder) Build() (*RedirectedHeaderOption, error) {
	if len(b.IPPacket)%LengthUnit != 0 {
		return nil, packet.Invalidf("ip packet length %d is not a multiple of 8", len(b.IPPacket))
	}
	o := &RedirectedHeaderOption{reserved: b.Reserved, ipPacket: bytes.Clone(b.IPPacket)}
	if o.ipPacket == nil {
		o.ipPacket = []byte{}
	}
	length, err := buildLength(b.Length, o.Len(), b.CorrectLengthAtBuild)
	if err != nil {
		return nil, err
	}
	o.length = length
	return o, nil
}
