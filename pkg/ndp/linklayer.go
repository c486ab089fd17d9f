package ndp

import (
	"bytes"
	"fmt"
	"net"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

//	 0                   1                   2                   3
//	 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//	|     Type      |    Length     |    Link-Layer Address ...
//	+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+

const linkLayerAddressOffset = headerSize

// linkLayerAddressOption is the layout shared by the source (type 1) and
// target (type 2) link-layer address options.
type linkLayerAddressOption struct {
	typ     OptionType
	length  uint8
	address net.HardwareAddr
}

func decodeLinkLayerAddress(raw []byte, typ OptionType) (linkLayerAddressOption, error) {
	length, err := checkHeader(raw, typ, headerSize+1)
	if err != nil {
		return linkLayerAddressOption{}, err
	}
	addr, err := wire.Copy(raw, linkLayerAddressOffset, int(length)*LengthUnit-headerSize)
	if err != nil {
		return linkLayerAddressOption{}, packet.WrapIllegal(raw, err, "link-layer address")
	}
	return linkLayerAddressOption{typ: typ, length: length, address: addr}, nil
}

func (o *linkLayerAddressOption) Type() OptionType { return o.typ }
func (o *linkLayerAddressOption) Length() uint8    { return o.length }
func (o *linkLayerAddressOption) Len() int         { return headerSize + len(o.address) }
func (o *linkLayerAddressOption) ndpOption()       {}

// Address returns a copy of the link-layer address.
func (o *linkLayerAddressOption) Address() net.HardwareAddr {
	return bytes.Clone(o.address)
}

func (o *linkLayerAddressOption) RawData() []byte {
	raw := make([]byte, o.Len())
	raw[typeOffset] = uint8(o.typ)
	raw[lengthOffset] = o.length
	copy(raw[linkLayerAddressOffset:], o.address)
	return raw
}

func (o *linkLayerAddressOption) String() string {
	return fmt.Sprintf("[Type: %s] [Length: %d (%d bytes)] [Link Layer address: %s]",
		o.typ, o.length, int(o.length)*LengthUnit, wire.HexString(o.address, ":"))
}

// LinkLayerAddressFields are the staged fields shared by both link-layer
// address builders. The encoded option must be a whole number of 8-byte
// units, so len(Address)+2 must be a multiple of 8.
type LinkLayerAddressFields struct {
	Length  uint8
	Address net.HardwareAddr

	CorrectLengthAtBuild bool
}

func (f *LinkLayerAddressFields) build(typ OptionType) (linkLayerAddressOption, error) {
	if len(f.Address) == 0 {
		return linkLayerAddressOption{}, packet.Invalidf("address is required")
	}
	if (headerSize+len(f.Address))%LengthUnit != 0 {
		return linkLayerAddressOption{}, packet.Invalidf("address length %d does not pad the option to 8-byte units", len(f.Address))
	}
	o := linkLayerAddressOption{typ: typ, address: bytes.Clone(f.Address)}
	length, err := buildLength(f.Length, o.Len(), f.CorrectLengthAtBuild)
	if err != nil {
		return linkLayerAddressOption{}, err
	}
	o.length = length
	return o, nil
}

func fieldsOf(o *linkLayerAddressOption) LinkLayerAddressFields {
	return LinkLayerAddressFields{Length: o.length, Address: bytes.Clone(o.address)}
}

// SourceLinkLayerAddressOption is the Source Link-layer Address option.
type SourceLinkLayerAddressOption struct {
	linkLayerAddressOption
}

func DecodeSourceLinkLayerAddressOption(raw []byte) (*SourceLinkLayerAddressOption, error) {
	o, err := decodeLinkLayerAddress(raw, OptionTypeSourceLinkLayerAddress)
	if err != nil {
		return nil, err
	}
	return &SourceLinkLayerAddressOption{o}, nil
}

func (o *SourceLinkLayerAddressOption) Builder() *SourceLinkLayerAddressOptionBuilder {
	return &SourceLinkLayerAddressOptionBuilder{fieldsOf(&o.linkLayerAddressOption)}
}

type SourceLinkLayerAddressOptionBuilder struct {
	LinkLayerAddressFields
}

func (b *SourceLinkLayerAddressOptionBuilder) Build() (*SourceLinkLayerAddressOption, error) {
	o, err := b.build(OptionTypeSourceLinkLayerAddress)
	if err != nil {
		return nil, err
	}
	return &SourceLinkLayerAddressOption{o}, nil
}

// TargetLinkLayerAddressOption is the Target Link-layer Address option.
type TargetLinkLayerAddressOption struct {
	linkLayerAddressOption
}

func DecodeTargetLinkLayerAddressOption(raw []byte) (*TargetLinkLayerAddressOption, error) {
	o, err := decodeLinkLayerAddress(raw, OptionTypeTargetLinkLayerAddress)
	if err != nil {
		return nil, err
	}
	return &TargetLinkLayerAddressOption{o}, nil
}

func (o *TargetLinkLayerAddressOption) Builder() *TargetLinkLayerAddressOptionBuilder {
	return &TargetLinkLayerAddressOptionBuilder{fieldsOf(&o.linkLayerAddressOption)}
}

type TargetLinkLayerAddressOptionBuilder struct {
	LinkLayerAddressFields
}

func (b *TargetLinkLayerAddressOptionBuilder) Build() (*TargetLinkLayerAddressOption, error) {
	o, err := b.build(OptionTypeTargetLinkLayerAddress)
	if err != nil {
		return nil, err
	}
	return &TargetLinkLayerAddressOption{o}, nil
}
