// Package ipv4opt decodes and encodes IPv4 header options (RFC 791).
// Option lengths are in bytes and cover the type and length octets.
package ipv4opt

import (
	"firestige.xyz/otus-dissect/pkg/packet"
)

// OptionType is the full option-type octet (copied flag, class, number).
type OptionType uint8

const (
	OptionTypeEndOfOptionList   OptionType = 0
	OptionTypeNoOperation       OptionType = 1
	OptionTypeRecordRoute       OptionType = 7
	OptionTypeInternetTimestamp OptionType = 68
	OptionTypeSecurity          OptionType = 130
	OptionTypeLooseSourceRoute  OptionType = 131
	OptionTypeStreamID          OptionType = 136
	OptionTypeStrictSourceRoute OptionType = 137
)

var optionTypeNames = map[OptionType]string{
	OptionTypeEndOfOptionList:   "End of Option List",
	OptionTypeNoOperation:       "No Operation",
	OptionTypeRecordRoute:       "Record Route",
	OptionTypeInternetTimestamp: "Internet Timestamp",
	OptionTypeSecurity:          "Security",
	OptionTypeLooseSourceRoute:  "Loose Source Route",
	OptionTypeStreamID:          "Stream ID",
	OptionTypeStrictSourceRoute: "Strict Source Route",
}

func (t OptionType) String() string { return packet.Named(t, optionTypeNames) }

// Copied reports the copied flag (bit 7).
func (t OptionType) Copied() bool { return t&0x80 != 0 }

// Class is the two-bit option class.
func (t OptionType) Class() uint8 { return uint8(t>>5) & 0x03 }

// Number is the five-bit option number.
func (t OptionType) Number() uint8 { return uint8(t) & 0x1F }

const (
	typeOffset   = 0
	lengthOffset = 1
	headerSize   = 2
)

// Option is one decoded IPv4 option. Implementations are the concrete
// formats of this package, UnknownOption and IllegalOption.
type Option interface {
	packet.Unit
	Type() OptionType
	ipv4Option()
}

// checkHeader validates the type/length header of a multi-byte option and
// returns the declared length.
func checkHeader(raw []byte, typ OptionType, min int) (uint8, error) {
	if err := packet.CheckNil(raw); err != nil {
		return 0, err
	}
	if len(raw) < min {
		return 0, packet.TooShort(raw, "a "+optionTypeNames[typ]+" option", min)
	}
	if OptionType(raw[typeOffset]) != typ {
		return 0, packet.TypeMismatch(raw, typ)
	}
	length := raw[lengthOffset]
	if int(length) < min {
		return 0, packet.Illegalf(raw, "the length field must be at least %d but is %d", min, length)
	}
	if len(raw) < int(length) {
		return 0, packet.Illegalf(raw, "the raw data is too short to build this option. %d bytes data is needed", length)
	}
	return length, nil
}
