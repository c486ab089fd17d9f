// Package ndp decodes and encodes IPv6 Neighbor Discovery options
// (RFC 4861). Option lengths are expressed in units of 8 bytes.
package ndp

import (
	"github.com/google/gopacket/layers"

	"firestige.xyz/otus-dissect/pkg/packet"
)

// OptionType is the ND option type code.
type OptionType uint8

const (
	OptionTypeSourceLinkLayerAddress = OptionType(layers.ICMPv6OptSourceAddress)
	OptionTypeTargetLinkLayerAddress = OptionType(layers.ICMPv6OptTargetAddress)
	OptionTypePrefixInformation      = OptionType(layers.ICMPv6OptPrefixInfo)
	OptionTypeRedirectedHeader       = OptionType(layers.ICMPv6OptRedirectedHeader)
	OptionTypeMTU                    = OptionType(layers.ICMPv6OptMTU)
)

var optionTypeNames = map[OptionType]string{
	OptionTypeSourceLinkLayerAddress: "Source Link-layer Address",
	OptionTypeTargetLinkLayerAddress: "Target Link-layer Address",
	OptionTypePrefixInformation:      "Prefix Information",
	OptionTypeRedirectedHeader:       "Redirected Header",
	OptionTypeMTU:                    "MTU",
}

func (t OptionType) String() string { return packet.Named(t, optionTypeNames) }

// LengthUnit is the size in bytes of one unit of the length field.
const LengthUnit = 8

// MaxOptionSize is the largest size the 8-bit length field can express.
const MaxOptionSize = 0xFF * LengthUnit

// buildLength returns the length field of a built option of size bytes.
// A staged length of 0 cannot be decoded, so it is replaced like a
// correction. Options larger than MaxOptionSize are rejected.
func buildLength(staged uint8, size int, correct bool) (uint8, error) {
	if size > MaxOptionSize {
		return 0, packet.Invalidf("option of %d bytes exceeds the %d bytes the length field can express", size, MaxOptionSize)
	}
	if correct || staged == 0 {
		return uint8(size / LengthUnit), nil
	}
	return staged, nil
}

// Offsets shared by every ND option.
const (
	typeOffset   = 0
	lengthOffset = typeOffset + 1
	headerSize   = lengthOffset + 1
)

// Option is one decoded ND option. The set of implementations is closed:
// the concrete formats of this package plus UnknownOption and
// IllegalOption.
type Option interface {
	packet.Unit
	Type() OptionType
	ndpOption()
}

// checkHeader applies the checks every ND option shares: non-nil input, a
// minimum size, a matching type tag, a non-zero declared length and a
// buffer long enough for it. It returns the declared length.
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
	if length == 0 {
		return 0, packet.Illegalf(raw, "the length field may not be 0")
	}
	if len(raw) < int(length)*LengthUnit {
		return 0, packet.Illegalf(raw, "the raw data is too short to build this option. %d bytes data is needed", int(length)*LengthUnit)
	}
	return length, nil
}
