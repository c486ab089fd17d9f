package decoder

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/otus-dissect/internal/core"
)

func TestDecodeIPv4Basic(t *testing.T) {
	data := []byte{
		0x45,       // Version 4, IHL 5
		0x00,       // DSCP, ECN
		0x00, 0x18, // Total Length: 24 bytes
		0x12, 0x34, // Identification
		0x00, 0x00, // Flags, Fragment Offset
		0x40,       // TTL: 64
		0x11,       // Protocol: UDP (17)
		0x00, 0x00, // Checksum
		192, 168, 1, 1, // Src IP
		192, 168, 1, 2, // Dst IP
		0x01, 0x02, 0x03, 0x04, // Payload
		0x00, 0x00, // Ethernet padding
	}

	ip, payload, err := decodeIPv4(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(4), ip.Version)
	assert.Equal(t, uint8(17), ip.Protocol)
	assert.Equal(t, uint8(64), ip.TTL)
	assert.Equal(t, uint16(24), ip.TotalLen)
	assert.Equal(t, netip.MustParseAddr("192.168.1.1"), ip.SrcIP)
	assert.Equal(t, netip.MustParseAddr("192.168.1.2"), ip.DstIP)
	assert.Empty(t, ip.Options)
	assert.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, payload)
}

func TestDecodeIPv4Options(t *testing.T) {
	data := []byte{
		0x46, 0x00, 0x00, 0x18,
		0x00, 0x00, 0x00, 0x00,
		0x40, 0x06, 0x00, 0x00,
		10, 0, 0, 1,
		10, 0, 0, 2,
		0x94, 0x04, 0x00, 0x00, // Router Alert
	}

	ip, payload, err := decodeIPv4(data)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x94, 0x04, 0x00, 0x00}, ip.Options)
	assert.Empty(t, payload)

	// IHL beyond the buffer
	data[0] = 0x4F
	_, _, err = decodeIPv4(data)
	assert.True(t, errors.Is(err, core.ErrFrameTooShort))
}

func TestDecodeIPv6Basic(t *testing.T) {
	data := make([]byte, 40+4)
	data[0] = 0x60
	data[5] = 0x04 // Payload Length
	data[6] = 58   // Next Header: ICMPv6
	data[7] = 255  // Hop Limit
	src := netip.MustParseAddr("fe80::1").As16()
	dst := netip.MustParseAddr("ff02::1").As16()
	copy(data[8:24], src[:])
	copy(data[24:40], dst[:])
	copy(data[40:], []byte{0x86, 0x00, 0x00, 0x00})

	ip, payload, err := decodeIPv6(data)
	require.NoError(t, err)
	assert.Equal(t, uint8(6), ip.Version)
	assert.Equal(t, uint8(58), ip.Protocol)
	assert.Equal(t, uint8(255), ip.TTL)
	assert.Equal(t, uint16(44), ip.TotalLen)
	assert.Equal(t, netip.MustParseAddr("fe80::1"), ip.SrcIP)
	assert.Equal(t, netip.MustParseAddr("ff02::1"), ip.DstIP)
	assert.Len(t, payload, 4)
}

func TestDecodeIPv6PayloadLengthOverflow(t *testing.T) {
	data := make([]byte, 40+8)
	data[0] = 0x60
	data[4], data[5] = 0xFF, 0xFF // Payload Length
	data[6] = 17

	ip, payload, err := decodeIPv6(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xFFFF), ip.TotalLen)
	assert.Len(t, payload, 8)

	data[4], data[5] = 0xFF, 0xD8 // 65496 + 40 > 0xFFFF
	_, payload, err = decodeIPv6(data)
	require.NoError(t, err)
	assert.Len(t, payload, 8)
}

func TestDecodeIPErrors(t *testing.T) {
	_, _, err := decodeIP([]byte{0x45, 0x00, 0x00})
	assert.True(t, errors.Is(err, core.ErrFrameTooShort))

	_, _, err = decodeIP(nil)
	assert.True(t, errors.Is(err, core.ErrFrameTooShort))

	data := make([]byte, 20)
	data[0] = 0x70
	_, _, err = decodeIP(data)
	assert.True(t, errors.Is(err, core.ErrUnsupportedProto))
}

func TestIsIPFragment(t *testing.T) {
	header := func(flags0, flags1 byte) []byte {
		b := make([]byte, 20)
		b[0] = 0x45
		b[6], b[7] = flags0, flags1
		return b
	}

	assert.True(t, isIPFragment(header(0x20, 0x00)), "MF set")
	assert.True(t, isIPFragment(header(0x00, 0x10)), "non-zero offset")
	assert.False(t, isIPFragment(header(0x40, 0x00)), "DF only")
	assert.False(t, isIPFragment([]byte{0x45}))

	v6 := make([]byte, 40)
	v6[0] = 0x60
	v6[6] = 0x20
	assert.False(t, isIPFragment(v6))
}
