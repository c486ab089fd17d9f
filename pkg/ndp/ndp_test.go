package ndp

import (
	"encoding/binary"
	"errors"
	"net"
	"net/netip"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

func TestMTUOptionEndToEnd(t *testing.T) {
	raw := []byte{0x05, 0x01, 0x00, 0x00, 0x00, 0x00, 0x05, 0xDC}

	o := NewOption(raw, OptionTypeMTU)
	mtu, ok := o.(*MTUOption)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, OptionTypeMTU, mtu.Type())
	assert.Equal(t, uint8(1), mtu.Length())
	assert.Equal(t, uint16(0), mtu.Reserved())
	assert.Equal(t, uint32(1500), mtu.MTU())
	assert.Equal(t, raw, mtu.RawData())
	assert.Equal(t, 8, mtu.Len())
	assert.Equal(t, "[Type: 5 (MTU)] [Length: 1 (8 bytes)] [Reserved: 0] [MTU: 1500]", mtu.String())
}

func TestMTUOptionReservedIsNotValidated(t *testing.T) {
	raw := []byte{0x05, 0x01, 0xFF, 0xFF, 0x00, 0x00, 0x05, 0xDC}
	o, err := DecodeMTUOption(raw)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xFFFF), o.Reserved())
	assert.Equal(t, raw, o.RawData())
}

func TestMTUOptionRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		msg  string
	}{
		{"short", []byte{0x05, 0x01, 0x00, 0x00, 0x00}, "at least 8"},
		{"wrong type", []byte{0x03, 0x01, 0x00, 0x00, 0x00, 0x00, 0x05, 0xDC}, "the type must be: 5 (MTU)"},
		{"zero length", []byte{0x05, 0x00, 0x00, 0x00, 0x00, 0x00, 0x05, 0xDC}, "may not be 0"},
		{"declared longer than buffer", []byte{0x05, 0x02, 0x00, 0x00, 0x00, 0x00, 0x05, 0xDC}, "16 bytes data is needed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMTUOption(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, packet.ErrIllegalRawData))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	_, err := DecodeMTUOption(nil)
	assert.True(t, errors.Is(err, packet.ErrNilRawData))
}

func TestMTUOptionTruncatedIsIllegal(t *testing.T) {
	raw := []byte{0x05, 0x01, 0x00, 0x00, 0x00, 0x00, 0x05}

	o := NewOption(raw, OptionTypeMTU)
	ill, ok := o.(*IllegalOption)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, raw, ill.RawData())
	assert.Equal(t, len(raw), ill.Len())
	assert.True(t, errors.Is(ill.Cause(), packet.ErrIllegalRawData))
	assert.True(t, errors.Is(ill.Cause(), wire.ErrBufferTooShort))
	assert.Equal(t, OptionTypeMTU, ill.Type())

	raw[0] = 0x09
	assert.Equal(t, byte(0x05), ill.RawData()[0], "illegal variant must own its bytes")
}

func TestMTUOptionBuilder(t *testing.T) {
	b := &MTUOptionBuilder{Length: 7, MTU: 9000, CorrectLengthAtBuild: true}
	o, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), o.Length())
	assert.Equal(t, len(o.RawData())/LengthUnit, int(o.Length()))

	back, err := DecodeMTUOption(o.RawData())
	require.NoError(t, err)
	assert.True(t, packet.Equal(o, back))
	assert.Equal(t, packet.Hash(o), packet.Hash(back))

	// without correction the staged length is preserved as is, even when
	// the decoder will reject it
	edit := o.Builder()
	edit.Length = 3
	wrong, err := edit.Build()
	require.NoError(t, err)
	assert.Equal(t, uint8(3), wrong.RawData()[1])
	assert.False(t, packet.Equal(o, wrong))
	assert.IsType(t, &IllegalOption{}, NewOption(wrong.RawData(), OptionTypeMTU))
}

func TestZeroLengthBuildersRoundTrip(t *testing.T) {
	mtu, err := (&MTUOptionBuilder{MTU: 1500}).Build()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), mtu.Length())
	assert.IsType(t, &MTUOption{}, NewOption(mtu.RawData(), OptionTypeMTU))

	pb := validPrefixBuilder()
	pb.CorrectLengthAtBuild = false
	prefix, err := pb.Build()
	require.NoError(t, err)
	assert.Equal(t, uint8(4), prefix.Length())
	back, err := DecodePrefixInformationOption(prefix.RawData())
	require.NoError(t, err)
	assert.True(t, packet.Equal(prefix, back))

	rh, err := (&RedirectedHeaderOptionBuilder{IPPacket: make([]byte, 16)}).Build()
	require.NoError(t, err)
	assert.Equal(t, uint8(3), rh.Length())

	sll, err := (&SourceLinkLayerAddressOptionBuilder{LinkLayerAddressFields{Address: net.HardwareAddr{2, 0, 0, 0, 0, 1}}}).Build()
	require.NoError(t, err)
	assert.IsType(t, &SourceLinkLayerAddressOption{}, NewOption(sll.RawData(), OptionTypeSourceLinkLayerAddress))
}

func TestBuildLengthFieldLimit(t *testing.T) {
	o, err := (&RedirectedHeaderOptionBuilder{IPPacket: make([]byte, 2032), CorrectLengthAtBuild: true}).Build()
	require.NoError(t, err)
	assert.Equal(t, MaxOptionSize, o.Len())
	assert.Equal(t, uint8(255), o.Length())
	assert.IsType(t, &RedirectedHeaderOption{}, NewOption(o.RawData(), OptionTypeRedirectedHeader))

	_, err = (&RedirectedHeaderOptionBuilder{IPPacket: make([]byte, 2040), CorrectLengthAtBuild: true}).Build()
	assert.ErrorIs(t, err, packet.ErrInvalidArgument)

	addr, err := (&TargetLinkLayerAddressOptionBuilder{LinkLayerAddressFields{Address: make(net.HardwareAddr, 2038), CorrectLengthAtBuild: true}}).Build()
	require.NoError(t, err)
	assert.Equal(t, uint8(255), addr.Length())

	_, err = (&TargetLinkLayerAddressOptionBuilder{LinkLayerAddressFields{Address: make(net.HardwareAddr, 2046), CorrectLengthAtBuild: true}}).Build()
	assert.ErrorIs(t, err, packet.ErrInvalidArgument)
}

func validPrefixBuilder() *PrefixInformationOptionBuilder {
	return &PrefixInformationOptionBuilder{
		PrefixLength:         64,
		OnLink:               true,
		Autonomous:           true,
		ValidLifetime:        2592000,
		PreferredLifetime:    604800,
		Prefix:               netip.MustParseAddr("2001:db8:1::"),
		CorrectLengthAtBuild: true,
	}
}

func TestPrefixInformationRoundTrip(t *testing.T) {
	o, err := validPrefixBuilder().Build()
	require.NoError(t, err)
	assert.Equal(t, uint8(4), o.Length())

	raw := o.RawData()
	require.Len(t, raw, 32)
	assert.Equal(t, byte(0xC0), raw[3])

	back, err := DecodePrefixInformationOption(raw)
	require.NoError(t, err)
	assert.True(t, packet.Equal(o, back))
	assert.True(t, back.OnLink())
	assert.True(t, back.Autonomous())
	assert.Equal(t, uint8(64), back.PrefixLength())
	assert.Equal(t, uint32(2592000), back.ValidLifetime())
	assert.Equal(t, uint32(604800), back.PreferredLifetime())
	assert.Equal(t, netip.MustParseAddr("2001:db8:1::"), back.Prefix())
	assert.Contains(t, back.String(), "[on-link flag: true]")
}

func TestPrefixInformationReservedBits(t *testing.T) {
	for _, reserved1 := range []uint8{0x40, 0x80, 0xC0} {
		b := validPrefixBuilder()
		b.Reserved1 = reserved1
		_, err := b.Build()
		require.Error(t, err, "reserved1 %#x", reserved1)
		assert.True(t, errors.Is(err, packet.ErrInvalidArgument))
	}

	b := validPrefixBuilder()
	b.Reserved1 = 0x3F
	o, err := b.Build()
	require.NoError(t, err)

	// decoding the same bit pattern is permissive
	raw := o.RawData()
	raw[3] = 0xFF
	back, err := DecodePrefixInformationOption(raw)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x3F), back.Reserved1())
	assert.True(t, back.OnLink())
	assert.True(t, back.Autonomous())
}

func TestPrefixInformationBuilderRequiresPrefix(t *testing.T) {
	b := validPrefixBuilder()
	b.Prefix = netip.Addr{}
	_, err := b.Build()
	assert.True(t, errors.Is(err, packet.ErrInvalidArgument))

	b.Prefix = netip.MustParseAddr("192.0.2.0")
	_, err = b.Build()
	assert.True(t, errors.Is(err, packet.ErrInvalidArgument))
}

func TestPrefixInformationRejectsLength(t *testing.T) {
	o, err := validPrefixBuilder().Build()
	require.NoError(t, err)
	raw := append(o.RawData(), make([]byte, 8)...)
	raw[1] = 5
	_, err = DecodePrefixInformationOption(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid value of length field: 5")
}

func TestLinkLayerAddressOptions(t *testing.T) {
	mac := net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}

	src, err := (&SourceLinkLayerAddressOptionBuilder{LinkLayerAddressFields{Address: mac, CorrectLengthAtBuild: true}}).Build()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 1, 0x00, 0x11, 0x22, 0x33, 0x44, 0x55}, src.RawData())
	assert.Equal(t, OptionTypeSourceLinkLayerAddress, src.Type())

	got := NewOption(src.RawData(), OptionTypeSourceLinkLayerAddress)
	require.IsType(t, &SourceLinkLayerAddressOption{}, got)
	assert.True(t, packet.Equal(src, got))
	assert.Equal(t, mac, got.(*SourceLinkLayerAddressOption).Address())

	// a source option handed to the target codec is a type mismatch
	got = NewOption(src.RawData(), OptionTypeTargetLinkLayerAddress)
	require.IsType(t, &IllegalOption{}, got)

	tgt, err := src.Builder().Build()
	require.NoError(t, err)
	assert.Equal(t, src.RawData(), tgt.RawData())

	target, err := (&TargetLinkLayerAddressOptionBuilder{LinkLayerAddressFields{Address: mac, CorrectLengthAtBuild: true}}).Build()
	require.NoError(t, err)
	assert.Equal(t, byte(2), target.RawData()[0])
	assert.Contains(t, target.String(), "00:11:22:33:44:55")

	_, err = (&SourceLinkLayerAddressOptionBuilder{LinkLayerAddressFields{Address: mac[:4]}}).Build()
	assert.True(t, errors.Is(err, packet.ErrInvalidArgument))
	_, err = (&SourceLinkLayerAddressOptionBuilder{}).Build()
	assert.True(t, errors.Is(err, packet.ErrInvalidArgument))
}

func TestRedirectedHeaderOption(t *testing.T) {
	payload := make([]byte, 40)
	payload[0] = 0x60
	b := &RedirectedHeaderOptionBuilder{IPPacket: payload, CorrectLengthAtBuild: true}
	o, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, uint8(6), o.Length())
	assert.Equal(t, 48, o.Len())

	back := NewOption(o.RawData(), OptionTypeRedirectedHeader)
	require.IsType(t, &RedirectedHeaderOption{}, back)
	assert.True(t, packet.Equal(o, back))
	assert.Equal(t, payload, back.(*RedirectedHeaderOption).IPPacket())

	b.IPPacket = payload[:5]
	_, err = b.Build()
	assert.True(t, errors.Is(err, packet.ErrInvalidArgument))
}

func TestUnknownOption(t *testing.T) {
	raw := []byte{25, 1, 0, 0, 0, 0, 0, 0, 0xAA}
	o := NewOption(raw, OptionType(25))
	unk, ok := o.(*UnknownOption)
	require.True(t, ok, "got %T", o)
	assert.Equal(t, OptionType(25), unk.Type())
	assert.Equal(t, raw[:8], unk.RawData())
	assert.Equal(t, "25 (unknown)", unk.Type().String())

	o = NewOption([]byte{25, 2, 0, 0}, OptionType(25))
	assert.IsType(t, &IllegalOption{}, o)

	o = NewOption(nil, OptionTypeMTU)
	ill := o.(*IllegalOption)
	assert.True(t, errors.Is(ill.Cause(), packet.ErrNilRawData))
	assert.Equal(t, 0, ill.Len())
}

func TestRegistryCodes(t *testing.T) {
	assert.Equal(t, []OptionType{1, 2, 3, 4, 5}, Registry().Codes())
}

func TestOptionsAgainstGopacket(t *testing.T) {
	mac := net.HardwareAddr{0x02, 0x00, 0x5e, 0x10, 0x00, 0x01}
	sll, err := (&SourceLinkLayerAddressOptionBuilder{LinkLayerAddressFields{Address: mac, CorrectLengthAtBuild: true}}).Build()
	require.NoError(t, err)
	mtu, err := (&MTUOptionBuilder{MTU: 1500, CorrectLengthAtBuild: true}).Build()
	require.NoError(t, err)
	pio, err := validPrefixBuilder().Build()
	require.NoError(t, err)

	// router advertisement body: hop limit, flags, lifetime, reachable, retrans
	body := []byte{64, 0, 0x07, 0x08, 0, 0, 0, 0, 0, 0, 0, 0}
	var opts []byte
	for _, o := range []Option{sll, mtu, pio} {
		opts = append(opts, o.RawData()...)
	}
	body = append(body, opts...)

	var ra layers.ICMPv6RouterAdvertisement
	require.NoError(t, ra.DecodeFromBytes(body, gopacket.NilDecodeFeedback))
	require.Len(t, ra.Options, 3)

	decoded := Options(opts)
	require.Len(t, decoded, 3)
	for i, o := range decoded {
		assert.Equal(t, uint8(ra.Options[i].Type), uint8(o.Type()))
		assert.Equal(t, ra.Options[i].Data, o.RawData()[headerSize:])
	}
	assert.Equal(t, uint32(1500), binary.BigEndian.Uint32(ra.Options[1].Data[2:6]))
	assert.Equal(t, uint32(1500), decoded[1].(*MTUOption).MTU())
}

func TestOptionsStopsAtIllegal(t *testing.T) {
	raw := []byte{0x05, 0x01, 0, 0, 0, 0, 0x05, 0xDC, 0x05, 0x01, 0x00}
	opts := Options(raw)
	require.Len(t, opts, 2)
	assert.IsType(t, &MTUOption{}, opts[0])
	ill := opts[1].(*IllegalOption)
	assert.Equal(t, []byte{0x05, 0x01, 0x00}, ill.RawData())
}
