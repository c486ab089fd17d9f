package wire

import (
	"errors"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBigEndian(t *testing.T) {
	b := []byte{0x05, 0x01, 0x00, 0x00, 0x00, 0x00, 0x05, 0xDC}

	v8, err := Uint8(b, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(5), v8)

	v16, err := Uint16(b, 2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), v16)

	v32, err := Uint32(b, 4)
	require.NoError(t, err)
	assert.Equal(t, uint32(1500), v32)

	v64, err := Uint64(b, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x05010000000005DC), v64)
}

func TestReadSigned(t *testing.T) {
	b := []byte{0xFF, 0xFE, 0x80, 0x00, 0x00, 0x00}

	i8, err := Int8(b, 0)
	require.NoError(t, err)
	assert.Equal(t, int8(-1), i8)

	i16, err := Int16(b, 0)
	require.NoError(t, err)
	assert.Equal(t, int16(-2), i16)

	i32, err := Int32(b, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(-2147483648), i32)
}

func TestShortBuffer(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"uint8 past end", func() error { _, err := Uint8([]byte{}, 0); return err }},
		{"uint16 straddling", func() error { _, err := Uint16([]byte{1, 2}, 1); return err }},
		{"uint32 short", func() error { _, err := Uint32([]byte{1, 2, 3}, 0); return err }},
		{"negative offset", func() error { _, err := Uint8([]byte{1}, -1); return err }},
		{"put uint32", func() error { return PutUint32(make([]byte, 3), 0, 1) }},
		{"ipv6", func() error { _, err := IPv6(make([]byte, 15), 0); return err }},
		{"slice", func() error { _, err := Slice(make([]byte, 4), 2, 3); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBufferTooShort))
			assert.False(t, errors.Is(err, ErrValueRange))
		})
	}
}

func TestPutRoundTrip(t *testing.T) {
	b := make([]byte, 15)
	require.NoError(t, PutUint8(b, 0, 0xAB))
	require.NoError(t, PutUint16(b, 1, 0xCDEF))
	require.NoError(t, PutUint32(b, 3, 0xDEADBEEF))
	require.NoError(t, PutUint64(b, 7, 0x0102030405060708))

	assert.Equal(t, "ab cd ef de ad be ef 01 02 03 04 05 06 07 08", HexString(b, " "))
}

func TestBits(t *testing.T) {
	b := []byte{0xC5}

	on, err := Bool(b, 0, 0x80)
	require.NoError(t, err)
	assert.True(t, on)

	on, err = Bool(b, 0, 0x20)
	require.NoError(t, err)
	assert.False(t, on)

	low, err := Bits(b, 0, 0x3F)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x05), low)

	high := Extract(0xC5, 0xF0)
	assert.Equal(t, uint8(0x0C), high)
}

func TestPack(t *testing.T) {
	v, err := Pack(0x80, 0x0F, 0x3)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x83), v)

	v, err = Pack(v, 0xF0, 0x2)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x23), v)

	_, err = Pack(0, 0x0F, 0x10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValueRange))
	assert.False(t, errors.Is(err, ErrBufferTooShort))

	assert.Equal(t, uint8(0xC0), SetFlag(SetFlag(0, 0x80, true), 0x40, true))
	assert.Equal(t, uint8(0x40), SetFlag(0xC0, 0x80, false))
}

func TestCheckReserved(t *testing.T) {
	assert.NoError(t, CheckReserved(0x3F, 0x3F))
	err := CheckReserved(0x40, 0x3F)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValueRange))
}

func TestAddresses(t *testing.T) {
	b := make([]byte, 20)
	v4 := netip.MustParseAddr("192.0.2.1")
	v6 := netip.MustParseAddr("2001:db8::1")
	require.NoError(t, PutAddr(b, 0, v4))
	require.NoError(t, PutAddr(b, 4, v6))

	got4, err := IPv4(b, 0)
	require.NoError(t, err)
	assert.Equal(t, v4, got4)

	got6, err := IPv6(b, 4)
	require.NoError(t, err)
	assert.Equal(t, v6, got6)

	err = PutAddr(b, 0, netip.Addr{})
	assert.True(t, errors.Is(err, ErrValueRange))
}

func TestCopyDoesNotAlias(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	c, err := Copy(b, 1, 2)
	require.NoError(t, err)
	c[0] = 9
	assert.Equal(t, byte(2), b[1])
}

func TestParseHex(t *testing.T) {
	for _, in := range []string{"05 01 00 00 00 00 05 DC", "0x0501000000000 5dc", "05:01:00:00:00:00:05:dc"} {
		b, err := ParseHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, []byte{0x05, 0x01, 0, 0, 0, 0, 0x05, 0xDC}, b, in)
	}
	_, err := ParseHex("zz")
	assert.Error(t, err)
}

func TestHexStringEmpty(t *testing.T) {
	assert.Equal(t, "", HexString(nil, " "))
	assert.Equal(t, "0a", HexString([]byte{10}, " "))
}
