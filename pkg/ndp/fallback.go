package ndp

import (
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

// UnknownOption is a structurally sound option whose type has no codec.
type UnknownOption struct {
	packet.Raw
	typ    OptionType
	length uint8
}

// DecodeUnknownOption accepts any type but still requires a usable
// type/length header and a buffer covering the declared length.
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
	return &UnknownOption{
		Raw:    packet.NewRaw(raw[:int(length)*LengthUnit]),
		typ:    typ,
		length: length,
	}, nil
}

func (o *UnknownOption) Type() OptionType { return o.typ }
func (o *UnknownOption) Length() uint8    { return o.length }
func (o *UnknownOption) ndpOption()       {}

func (o *UnknownOption) String() string {
	return fmt.Sprintf("[Type: %s] [Length: %d (%d bytes)] [data: 0x%s]",
		o.typ, o.length, int(o.length)*LengthUnit, wire.HexString(o.RawData()[headerSize:], ""))
}

// IllegalOption keeps the bytes of an option that failed structural
// validation together with the error that rejected it.
type IllegalOption struct {
	packet.Raw
	cause error
}

func newIllegalOption(raw []byte, cause error) *IllegalOption {
	return &IllegalOption{Raw: packet.NewRaw(raw), cause: cause}
}

// Type is the first byte of the raw data, or 0 if there is none.
func (o *IllegalOption) Type() OptionType {
	raw := o.RawData()
	if len(raw) == 0 {
		return 0
	}
	return OptionType(raw[typeOffset])
}

// Cause is the structural decode error that produced this value.
func (o *IllegalOption) Cause() error { return o.cause }
func (o *IllegalOption) ndpOption()   {}

func (o *IllegalOption) String() string {
	return fmt.Sprintf("[Illegal Raw Data: 0x%s] [cause: %v]", wire.HexString(o.RawData(), ""), o.cause)
}
