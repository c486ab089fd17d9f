package ipv4opt

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net/netip"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

//	+--------+--------+--------+--------+
//	|01000100| length | pointer|oflw|flg|
//	+--------+--------+--------+--------+
//	|         internet address          |
//	+--------+--------+--------+--------+
//	|             timestamp             |
//	+--------+--------+--------+--------+
//	|                 .                 |

const (
	oflwFlgOffset       = pointerOffset + 1
	timestampDataOffset = oflwFlgOffset + 1

	overflowMask = 0xF0
	flagMask     = 0x0F
)

// TimestampFlag selects what the timestamp option records.
type TimestampFlag uint8

const (
	TimestampOnly         TimestampFlag = 0
	TimestampWithAddress  TimestampFlag = 1
	TimestampPrespecified TimestampFlag = 3
)

var timestampFlagNames = map[TimestampFlag]string{
	TimestampOnly:         "timestamps only",
	TimestampWithAddress:  "address and timestamp",
	TimestampPrespecified: "prespecified addresses",
}

func (f TimestampFlag) String() string { return packet.Named(f, timestampFlagNames) }

// unit is the size of one data entry for flag, or 0 when the flag is not
// one RFC 791 defines.
func (f TimestampFlag) unit() int {
	switch f {
	case TimestampOnly:
		return 4
	case TimestampWithAddress, TimestampPrespecified:
		return 8
	}
	return 0
}

// AddressTimestamp is one entry of a flag 1 or flag 3 timestamp option.
type AddressTimestamp struct {
	Address   netip.Addr
	Timestamp uint32
}

// InternetTimestampOption is the Internet Timestamp option (type 68). The
// data area is kept verbatim; Timestamps and AddressTimestamps interpret
// it according to the flag.
type InternetTimestampOption struct {
	length   uint8
	pointer  uint8
	overflow uint8
	flag     TimestampFlag
	data     []byte
}

func DecodeInternetTimestampOption(raw []byte) (*InternetTimestampOption, error) {
	length, err := checkHeader(raw, OptionTypeInternetTimestamp, timestampDataOffset)
	if err != nil {
		return nil, err
	}
	o := &InternetTimestampOption{length: length, pointer: raw[pointerOffset]}
	o.overflow = wire.Extract(raw[oflwFlgOffset], overflowMask)
	o.flag = TimestampFlag(wire.Extract(raw[oflwFlgOffset], flagMask))
	o.data, err = wire.Copy(raw, timestampDataOffset, int(length)-timestampDataOffset)
	if err != nil {
		return nil, packet.WrapIllegal(raw, err, "timestamp data")
	}
	if unit := o.flag.unit(); unit != 0 && len(o.data)%unit != 0 {
		return nil, packet.Illegalf(raw, "timestamp data of %d bytes does not match flag %s", len(o.data), o.flag)
	}
	return o, nil
}

func (o *InternetTimestampOption) Type() OptionType    { return OptionTypeInternetTimestamp }
func (o *InternetTimestampOption) Length() uint8       { return o.length }
func (o *InternetTimestampOption) Pointer() uint8      { return o.pointer }
func (o *InternetTimestampOption) Overflow() uint8     { return o.overflow }
func (o *InternetTimestampOption) Flag() TimestampFlag { return o.flag }
func (o *InternetTimestampOption) Data() []byte        { return bytes.Clone(o.data) }
func (o *InternetTimestampOption) Len() int            { return timestampDataOffset + len(o.data) }
func (o *InternetTimestampOption) ipv4Option()         {}

// Timestamps interprets the data of a flag 0 option.
func (o *InternetTimestampOption) Timestamps() []uint32 {
	if o.flag != TimestampOnly {
		return nil
	}
	ts := make([]uint32, 0, len(o.data)/4)
	for off := 0; off+4 <= len(o.data); off += 4 {
		ts = append(ts, binary.BigEndian.Uint32(o.data[off:]))
	}
	return ts
}

// AddressTimestamps interprets the data of a flag 1 or flag 3 option.
func (o *InternetTimestampOption) AddressTimestamps() []AddressTimestamp {
	if o.flag.unit() != 8 {
		return nil
	}
	out := make([]AddressTimestamp, 0, len(o.data)/8)
	for off := 0; off+8 <= len(o.data); off += 8 {
		addr, _ := wire.IPv4(o.data, off)
		ts, _ := wire.Uint32(o.data, off+4)
		out = append(out, AddressTimestamp{Address: addr, Timestamp: ts})
	}
	return out
}

func (o *InternetTimestampOption) RawData() []byte {
	raw := make([]byte, o.Len())
	raw[typeOffset] = uint8(OptionTypeInternetTimestamp)
	raw[lengthOffset] = o.length
	raw[pointerOffset] = o.pointer
	raw[oflwFlgOffset] = o.overflow<<4 | uint8(o.flag)&flagMask
	copy(raw[timestampDataOffset:], o.data)
	return raw
}

func (o *InternetTimestampOption) String() string {
	return fmt.Sprintf("[option-type: %s] [option-length: %d bytes] [pointer: %d] [overflow: %d] [flag: %s] [data: %s]",
		OptionTypeInternetTimestamp, o.length, o.pointer, o.overflow, o.flag, wire.HexString(o.data, " "))
}

func (o *InternetTimestampOption) Builder() *InternetTimestampOptionBuilder {
	return &InternetTimestampOptionBuilder{
		Length:   o.length,
		Pointer:  o.pointer,
		Overflow: o.overflow,
		Flag:     o.flag,
		Data:     bytes.Clone(o.data),
	}
}

// TimestampData encodes a flag 0 data area.
func TimestampData(ts ...uint32) []byte {
	out := make([]byte, 4*len(ts))
	for i, v := range ts {
		binary.BigEndian.PutUint32(out[4*i:], v)
	}
	return out
}

// AddressTimestampData encodes a flag 1 or flag 3 data area.
func AddressTimestampData(entries ...AddressTimestamp) ([]byte, error) {
	out := make([]byte, 8*len(entries))
	for i, e := range entries {
		if !e.Address.Is4() {
			return nil, packet.Invalidf("timestamp address %s is not IPv4", e.Address)
		}
		_ = wire.PutAddr(out, 8*i, e.Address)
		_ = wire.PutUint32(out, 8*i+4, e.Timestamp)
	}
	return out, nil
}

// InternetTimestampOptionBuilder stages an InternetTimestampOption.
// Overflow and Flag are four-bit fields.
type InternetTimestampOptionBuilder struct {
	Length   uint8
	Pointer  uint8
	Overflow uint8
	Flag     TimestampFlag
	Data     []byte

	CorrectLengthAtBuild bool
}

func (b *InternetTimestampOptionBuilder) Build() (*InternetTimestampOption, error) {
	if _, err := wire.Pack(0, overflowMask, b.Overflow); err != nil {
		return nil, packet.Invalidf("overflow %d: %v", b.Overflow, err)
	}
	if _, err := wire.Pack(0, flagMask, uint8(b.Flag)); err != nil {
		return nil, packet.Invalidf("flag %d: %v", b.Flag, err)
	}
	if unit := b.Flag.unit(); unit != 0 && len(b.Data)%unit != 0 {
		return nil, packet.Invalidf("data of %d bytes does not match flag %s", len(b.Data), b.Flag)
	}
	o := &InternetTimestampOption{
		length:   b.Length,
		pointer:  b.Pointer,
		overflow: b.Overflow,
		flag:     b.Flag,
		data:     bytes.Clone(b.Data),
	}
	if o.Len() > 0xFF {
		return nil, packet.Invalidf("timestamp data too long: %d bytes", len(b.Data))
	}
	if b.CorrectLengthAtBuild {
		o.length = uint8(o.Len())
	}
	return o, nil
}
