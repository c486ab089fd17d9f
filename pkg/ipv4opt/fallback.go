package ipv4opt

import (
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

// UnknownOption is an option with a usable type/length header but no
// registered codec.
type UnknownOption struct {
	packet.Raw
	typ    OptionType
	length uint8
}

func DecodeUnknownOption(raw []byte) (*UnknownOption, error) {
	if err := packet.CheckNil(raw); err != nil {
		return nil, err
	}
	if len(raw) < headerSize {
		return nil, packet.TooShort(raw, "an unknown option", headerSize)
	}
	typ := OptionType(raw[typeOffset])
	length, err := checkHeader(raw, typ, headerSize)
	if err != nil {
		return nil, err
	}
	return &UnknownOption{Raw: packet.NewRaw(raw[:length]), typ: typ, length: length}, nil
}

func (o *UnknownOption) Type() OptionType { return o.typ }
func (o *UnknownOption) Length() uint8    { return o.length }
func (o *UnknownOption) ipv4Option()      {}

func (o *UnknownOption) String() string {
	return fmt.Sprintf("[option-type: %s] [option-length: %d bytes] [data: 0x%s]",
		o.typ, o.length, wire.HexString(o.RawData()[headerSize:], ""))
}

// IllegalOption keeps the bytes of an option that failed validation.
type IllegalOption struct {
	packet.Raw
	cause error
}

func newIllegalOption(raw []byte, cause error) *IllegalOption {
	return &IllegalOption{Raw: packet.NewRaw(raw), cause: cause}
}

func (o *IllegalOption) Type() OptionType {
	raw := o.RawData()
	if len(raw) == 0 {
		return 0
	}
	return OptionType(raw[typeOffset])
}

func (o *IllegalOption) Cause() error { return o.cause }
func (o *IllegalOption) ipv4Option()  {}

func (o *IllegalOption) String() string {
	return fmt.Sprintf("[Illegal Raw Data: 0x%s] [cause: %v]", wire.HexString(o.RawData(), ""), o.cause)
}
