package ipv4opt

import (
	"firestige.xyz/otus-dissect/pkg/packet"
)

// singleOctetOption is the layout of options that are only a type octet.
type singleOctetOption struct {
	typ OptionType
}

func decodeSingleOctet(raw []byte, typ OptionType) (singleOctetOption, error) {
	if err := packet.CheckNil(raw); err != nil {
		return singleOctetOption{}, err
	}
	if len(raw) < 1 {
		return singleOctetOption{}, packet.TooShort(raw, "a "+optionTypeNames[typ]+" option", 1)
	}
	if OptionType(raw[typeOffset]) != typ {
		return singleOctetOption{}, packet.TypeMismatch(raw, typ)
	}
	return singleOctetOption{typ: typ}, nil
}

func (o singleOctetOption) Type() OptionType { return o.typ }
func (o singleOctetOption) Len() int         { return 1 }
func (o singleOctetOption) RawData() []byte  { return []byte{uint8(o.typ)} }
func (o singleOctetOption) String() string   { return "[option-type: " + o.typ.String() + "]" }
func (o singleOctetOption) ipv4Option()      {}

// EndOfOptionList marks the end of the option list (type 0).
type EndOfOptionList struct{ singleOctetOption }

// NewEndOfOptionList returns the single instance value of the option.
func NewEndOfOptionList() *EndOfOptionList {
	return &EndOfOptionList{singleOctetOption{OptionTypeEndOfOptionList}}
}

func DecodeEndOfOptionList(raw []byte) (*EndOfOptionList, error) {
	o, err := decodeSingleOctet(raw, OptionTypeEndOfOptionList)
	if err != nil {
		return nil, err
	}
	return &EndOfOptionList{o}, nil
}

// NoOperation is the padding option (type 1).
type NoOperation struct{ singleOctetOption }

func NewNoOperation() *NoOperation {
	return &NoOperation{singleOctetOption{OptionTypeNoOperation}}
}

func DecodeNoOperation(raw []byte) (*NoOperation, error) {
	o, err := decodeSingleOctet(raw, OptionTypeNoOperation)
	if err != nil {
		return nil, err
	}
	return &NoOperation{o}, nil
}
