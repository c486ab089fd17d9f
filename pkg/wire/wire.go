// Package wire implements fixed-width big-endian field access at byte
// offsets, masked bit fields and address fields.
//
// Every accessor reports a short buffer with an error wrapping
// ErrBufferTooShort. Values that cannot be represented in the target field
// are reported with an error wrapping ErrValueRange. Callers branch on the
// two with errors.Is because the messages they build differ.
package wire

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math/bits"
	"net/netip"
	"strings"
)

// Field widths in bytes.
const (
	ByteSize  = 1
	ShortSize = 2
	IntSize   = 4
	LongSize  = 8
	IPv4Size  = 4
	IPv6Size  = 16
)

var (
	ErrBufferTooShort = errors.New("wire: buffer too short")
	ErrValueRange     = errors.New("wire: value out of range")
)

func check(b []byte, off, width int) error {
	if off < 0 || width < 0 || off > len(b)-width {
		return fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrBufferTooShort, width, off, len(b))
	}
	return nil
}

// Slice returns b[off:off+n] after bounds checking. The result aliases b.
func Slice(b []byte, off, n int) ([]byte, error) {
	if err := check(b, off, n); err != nil {
		return nil, err
	}
	return b[off : off+n : off+n], nil
}

// Copy is Slice followed by a copy, for values that must not alias b.
func Copy(b []byte, off, n int) ([]byte, error) {
	s, err := Slice(b, off, n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, s)
	return out, nil
}

func Uint8(b []byte, off int) (uint8, error) {
	if err := check(b, off, ByteSize); err != nil {
		return 0, err
	}
	return b[off], nil
}

func Uint16(b []byte, off int) (uint16, error) {
	if err := check(b, off, ShortSize); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[off:]), nil
}

func Uint32(b []byte, off int) (uint32, error) {
	if err := check(b, off, IntSize); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[off:]), nil
}

func Uint64(b []byte, off int) (uint64, error) {
	if err := check(b, off, LongSize); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[off:]), nil
}

// Int8 reads a two's-complement signed byte.
func Int8(b []byte, off int) (int8, error) {
	v, err := Uint8(b, off)
	return int8(v), err
}

// Int16 reads a two's-complement signed big-endian short.
func Int16(b []byte, off int) (int16, error) {
	v, err := Uint16(b, off)
	return int16(v), err
}

// Int32 reads a two's-complement signed big-endian int.
func Int32(b []byte, off int) (int32, error) {
	v, err := Uint32(b, off)
	return int32(v), err
}

func PutUint8(b []byte, off int, v uint8) error {
	if err := check(b, off, ByteSize); err != nil {
		return err
	}
	b[off] = v
	return nil
}

func PutUint16(b []byte, off int, v uint16) error {
	if err := check(b, off, ShortSize); err != nil {
		return err
	}
	binary.BigEndian.PutUint16(b[off:], v)
	return nil
}

func PutUint32(b []byte, off int, v uint32) error {
	if err := check(b, off, IntSize); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(b[off:], v)
	return nil
}

func PutUint64(b []byte, off int, v uint64) error {
	if err := check(b, off, LongSize); err != nil {
		return err
	}
	binary.BigEndian.PutUint64(b[off:], v)
	return nil
}

// PutBytes copies v into b at off.
func PutBytes(b []byte, off int, v []byte) error {
	if err := check(b, off, len(v)); err != nil {
		return err
	}
	copy(b[off:], v)
	return nil
}

// Bool reports whether any bit of mask is set in the byte at off.
func Bool(b []byte, off int, mask uint8) (bool, error) {
	v, err := Uint8(b, off)
	if err != nil {
		return false, err
	}
	return v&mask != 0, nil
}

// Bits extracts the bits selected by mask from the byte at off, shifted
// down so that the lowest bit of mask lands on bit 0.
func Bits(b []byte, off int, mask uint8) (uint8, error) {
	v, err := Uint8(b, off)
	if err != nil {
		return 0, err
	}
	return Extract(v, mask), nil
}

// Extract is Bits on an already loaded byte.
func Extract(v, mask uint8) uint8 {
	if mask == 0 {
		return 0
	}
	return (v & mask) >> bits.TrailingZeros8(mask)
}

// Pack returns dst with the bits selected by mask replaced by v shifted
// into position. A v that does not fit the mask is an ErrValueRange.
func Pack(dst, mask, v uint8) (uint8, error) {
	if mask == 0 {
		if v != 0 {
			return dst, fmt.Errorf("%w: %#x does not fit empty mask", ErrValueRange, v)
		}
		return dst, nil
	}
	shift := bits.TrailingZeros8(mask)
	if v > mask>>shift {
		return dst, fmt.Errorf("%w: %#x does not fit mask %#02x", ErrValueRange, v, mask)
	}
	return dst&^mask | v<<shift, nil
}

// SetFlag sets or clears the bits of mask in dst.
func SetFlag(dst, mask uint8, on bool) uint8 {
	if on {
		return dst | mask
	}
	return dst &^ mask
}

// CheckReserved fails with ErrValueRange when v has bits outside allowed.
func CheckReserved(v, allowed uint8) error {
	if v&^allowed != 0 {
		return fmt.Errorf("%w: %#02x uses bits outside %#02x", ErrValueRange, v, allowed)
	}
	return nil
}

func IPv4(b []byte, off int) (netip.Addr, error) {
	if err := check(b, off, IPv4Size); err != nil {
		return netip.Addr{}, err
	}
	return netip.AddrFrom4([4]byte(b[off : off+IPv4Size])), nil
}

func IPv6(b []byte, off int) (netip.Addr, error) {
	if err := check(b, off, IPv6Size); err != nil {
		return netip.Addr{}, err
	}
	return netip.AddrFrom16([16]byte(b[off : off+IPv6Size])), nil
}

// PutAddr writes the 4 or 16 byte form of a, depending on its family.
func PutAddr(b []byte, off int, a netip.Addr) error {
	if !a.IsValid() {
		return fmt.Errorf("%w: invalid address", ErrValueRange)
	}
	return PutBytes(b, off, a.AsSlice())
}

// HexString renders b as two-digit lowercase hex bytes joined by sep.
func HexString(b []byte, sep string) string {
	if len(b) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(b) * (2 + len(sep)))
	for i, v := range b {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(hex.EncodeToString([]byte{v}))
	}
	return sb.String()
}

// ParseHex accepts hex with optional whitespace, colons or a 0x prefix.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "0x")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':', '-':
			return -1
		}
		return r
	}, s)
	return hex.DecodeString(s)
}
