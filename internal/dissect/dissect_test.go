package dissect

import (
	"errors"
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/miekg/dns"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/otus-dissect/internal/config"
	"firestige.xyz/otus-dissect/internal/core"
	"firestige.xyz/otus-dissect/internal/core/decoder"
	"firestige.xyz/otus-dissect/internal/metrics"
	"firestige.xyz/otus-dissect/pkg/ndp"
	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/ssh2"
)

var allFamilies = config.DissectConfig{
	Families: []string{"ndp", "ipv4opt", "dnsrdata", "ssh2"},
	DNSPorts: []uint16{53},
	SSHPorts: []uint16{22},
}

var (
	macA = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x01}
	macB = net.HardwareAddr{0x02, 0x00, 0x00, 0x00, 0x00, 0x02}
)

// frame serializes ls with gopacket and runs the frame decoder on it.
func frame(t *testing.T, ls ...gopacket.SerializableLayer) core.DecodedPacket {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	require.NoError(t, gopacket.SerializeLayers(buf, gopacket.SerializeOptions{FixLengths: true}, ls...))
	pkt, err := decoder.NewStandardDecoder(decoder.Config{}).Decode(core.RawPacket{Data: buf.Bytes()})
	require.NoError(t, err)
	return pkt
}

func ipv4(proto layers.IPProtocol, opts ...layers.IPv4Option) *layers.IPv4 {
	return &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: proto,
		SrcIP:    net.IPv4(192, 0, 2, 1),
		DstIP:    net.IPv4(192, 0, 2, 2),
		Options:  opts,
	}
}

func ethernet(typ layers.EthernetType) *layers.Ethernet {
	return &layers.Ethernet{SrcMAC: macA, DstMAC: macB, EthernetType: typ}
}

func variants(records []core.Record) []core.Variant {
	out := make([]core.Variant, len(records))
	for i, r := range records {
		out[i] = r.Variant
	}
	return out
}

func TestIPv4Options(t *testing.T) {
	rr := layers.IPv4Option{OptionType: 7, OptionLength: 7, OptionData: []byte{4, 0, 0, 0, 0}}
	alert := layers.IPv4Option{OptionType: 148, OptionLength: 4, OptionData: []byte{0, 0}}
	pkt := frame(t, ethernet(layers.EthernetTypeIPv4), ipv4(layers.IPProtocolUDP, rr, alert),
		&layers.UDP{SrcPort: 1000, DstPort: 2000})

	records := New(allFamilies, nil, nil).Dissect(1, pkt)
	require.Len(t, records, 3)
	assert.Equal(t, []core.Variant{core.VariantKnown, core.VariantUnknown, core.VariantKnown}, variants(records))

	assert.Equal(t, core.FamilyIPv4Opt, records[0].Family)
	assert.Equal(t, uint32(7), records[0].Type)
	assert.Equal(t, "07070400000000", records[0].Raw)
	assert.Equal(t, 7, records[0].Length)
	assert.Equal(t, 1, records[0].Frame)
	assert.Equal(t, "192.0.2.1", records[0].SrcIP.String())

	assert.Equal(t, uint32(148), records[1].Type)
	assert.Equal(t, uint32(0), records[2].Type) // padding byte is an EOOL
}

func ndFrame(t *testing.T, icmpType uint8, fixed int, opts ...interface{ RawData() []byte }) core.DecodedPacket {
	t.Helper()
	body := append([]byte{icmpType, 0, 0, 0}, make([]byte, fixed)...)
	for _, o := range opts {
		body = append(body, o.RawData()...)
	}
	return frame(t, ethernet(layers.EthernetTypeIPv6),
		&layers.IPv6{
			Version:    6,
			NextHeader: layers.IPProtocolICMPv6,
			HopLimit:   255,
			SrcIP:      net.ParseIP("fe80::1"),
			DstIP:      net.ParseIP("ff02::1"),
		},
		gopacket.Payload(body))
}

func TestNDOptions(t *testing.T) {
	slla, err := (&ndp.SourceLinkLayerAddressOptionBuilder{LinkLayerAddressFields: ndp.LinkLayerAddressFields{
		Address:              macA,
		CorrectLengthAtBuild: true,
	}}).Build()
	require.NoError(t, err)
	mtu, err := (&ndp.MTUOptionBuilder{MTU: 1500, CorrectLengthAtBuild: true}).Build()
	require.NoError(t, err)

	pkt := ndFrame(t, 134, 12, slla, mtu)
	records := New(allFamilies, nil, nil).Dissect(7, pkt)
	require.Len(t, records, 2)

	assert.Equal(t, core.FamilyNDP, records[0].Family)
	assert.Equal(t, uint32(ndp.OptionTypeSourceLinkLayerAddress), records[0].Type)
	assert.Equal(t, "0101020000000001", records[0].Raw)
	assert.Equal(t, "134", records[0].Labels[core.LabelICMPv6Type])

	assert.Equal(t, uint32(ndp.OptionTypeMTU), records[1].Type)
	assert.Equal(t, core.VariantKnown, records[1].Variant)
	assert.Contains(t, records[1].Description, "[MTU: 1500]")
}

func TestNDOptionsIllegalStops(t *testing.T) {
	// An MTU option with a zero length, then bytes that are never reached.
	bad := packet.NewRaw([]byte{5, 0, 0, 0, 0, 0, 0x05, 0xDC, 1, 1, 2, 0, 0, 0, 0, 1})
	records := New(allFamilies, nil, nil).Dissect(1, ndFrame(t, 135, 20, bad))
	require.Len(t, records, 1)
	assert.Equal(t, core.VariantIllegal, records[0].Variant)
	assert.NotEmpty(t, records[0].Cause)
}

func TestNDOptionsNotND(t *testing.T) {
	// Echo request carries no options.
	records := New(allFamilies, nil, nil).Dissect(1, ndFrame(t, 128, 4))
	assert.Empty(t, records)
}

func dnsResponse(t *testing.T) []byte {
	t.Helper()
	m := new(dns.Msg)
	m.SetQuestion("www.example.com.", dns.TypeA)
	m.Response = true
	m.Compress = true
	for _, s := range []string{
		"www.example.com. 300 IN CNAME web.example.com.",
		"web.example.com. 300 IN A 192.0.2.10",
	} {
		rr, err := dns.NewRR(s)
		require.NoError(t, err)
		m.Answer = append(m.Answer, rr)
	}
	ns, err := dns.NewRR("example.com. 3600 IN NS ns1.example.com.")
	require.NoError(t, err)
	m.Ns = []dns.RR{ns}
	srv, err := dns.NewRR("_sip._udp.example.com. 60 IN SRV 10 5 5060 sip.example.com.")
	require.NoError(t, err)
	m.Extra = []dns.RR{srv}

	msg, err := m.Pack()
	require.NoError(t, err)
	return msg
}

func TestDNSOverUDP(t *testing.T) {
	pkt := frame(t, ethernet(layers.EthernetTypeIPv4), ipv4(layers.IPProtocolUDP),
		&layers.UDP{SrcPort: 53, DstPort: 40000}, gopacket.Payload(dnsResponse(t)))

	records := New(allFamilies, nil, nil).Dissect(1, pkt)
	require.Len(t, records, 4)
	assert.Equal(t, []core.Variant{core.VariantKnown, core.VariantKnown, core.VariantKnown, core.VariantUnknown}, variants(records))

	cname := records[0]
	assert.Equal(t, core.FamilyDNSRData, cname.Family)
	assert.Equal(t, uint32(dns.TypeCNAME), cname.Type)
	assert.Equal(t, "answer", cname.Labels[core.LabelDNSSection])
	assert.Equal(t, "www.example.com", cname.Labels[core.LabelDNSName])
	assert.Contains(t, cname.Description, "[pointer:")
	assert.Equal(t, "53", cname.Labels[core.LabelSrcPort])

	assert.Equal(t, "[address: 192.0.2.10]", records[1].Description)
	assert.Equal(t, "web.example.com", records[1].Labels[core.LabelDNSName])

	assert.Equal(t, "authority", records[2].Labels[core.LabelDNSSection])
	assert.Equal(t, uint32(dns.TypeNS), records[2].Type)

	assert.Equal(t, "additional", records[3].Labels[core.LabelDNSSection])
	assert.Equal(t, uint32(dns.TypeSRV), records[3].Type)
}

func TestDNSOverTCP(t *testing.T) {
	msg := dnsResponse(t)
	payload := append([]byte{byte(len(msg) >> 8), byte(len(msg))}, msg...)
	pkt := frame(t, ethernet(layers.EthernetTypeIPv4), ipv4(layers.IPProtocolTCP),
		&layers.TCP{SrcPort: 53, DstPort: 40000, DataOffset: 5, ACK: true, PSH: true}, gopacket.Payload(payload))

	records := New(allFamilies, nil, nil).Dissect(1, pkt)
	assert.Len(t, records, 4)
}

func TestDNSTruncatedRData(t *testing.T) {
	msg := dnsResponse(t)
	// Cut inside the SRV RDATA: its RDLENGTH now runs past the end.
	cut := msg[:len(msg)-10]
	pkt := frame(t, ethernet(layers.EthernetTypeIPv4), ipv4(layers.IPProtocolUDP),
		&layers.UDP{SrcPort: 53, DstPort: 40000}, gopacket.Payload(cut))

	records := New(allFamilies, nil, nil).Dissect(1, pkt)
	require.NotEmpty(t, records)
	require.Len(t, records, 4)
	assert.Equal(t, core.VariantIllegal, records[3].Variant)
	assert.Equal(t, uint32(dns.TypeSRV), records[3].Type)
}

func TestDNSPortFilter(t *testing.T) {
	pkt := frame(t, ethernet(layers.EthernetTypeIPv4), ipv4(layers.IPProtocolUDP),
		&layers.UDP{SrcPort: 5353, DstPort: 5353}, gopacket.Payload(dnsResponse(t)))

	assert.Empty(t, New(allFamilies, nil, nil).Dissect(1, pkt))

	cfg := allFamilies
	cfg.DNSPorts = []uint16{5353}
	assert.Len(t, New(cfg, nil, nil).Dissect(1, pkt), 4)
}

func binaryPacket(t *testing.T, payload []byte) []byte {
	t.Helper()
	bp, err := (&ssh2.BinaryPacketBuilder{Payload: payload, CorrectLengthAtBuild: true}).Build()
	require.NoError(t, err)
	return bp.RawData()
}

func sshFrame(t *testing.T, srcPort, dstPort uint16, payload []byte) core.DecodedPacket {
	return frame(t, ethernet(layers.EthernetTypeIPv4), ipv4(layers.IPProtocolTCP),
		&layers.TCP{SrcPort: layers.TCPPort(srcPort), DstPort: layers.TCPPort(dstPort), DataOffset: 5, ACK: true, PSH: true},
		gopacket.Payload(payload))
}

func TestSSHClearTextPhase(t *testing.T) {
	kex, err := (&ssh2.KexInitMessageBuilder{
		Cookie:                              make([]byte, ssh2.CookieSize),
		KexAlgorithms:                       []string{"curve25519-sha256"},
		ServerHostKeyAlgorithms:             []string{"ssh-ed25519"},
		EncryptionAlgorithmsClientToServer:  []string{"aes128-ctr"},
		EncryptionAlgorithmsServerToClient:  []string{"aes128-ctr"},
		MACAlgorithmsClientToServer:         []string{"hmac-sha2-256"},
		MACAlgorithmsServerToClient:         []string{"hmac-sha2-256"},
		CompressionAlgorithmsClientToServer: []string{"none"},
		CompressionAlgorithmsServerToClient: []string{"none"},
	}).Build()
	require.NoError(t, err)

	d := New(allFamilies, nil, nil)

	first := append([]byte("SSH-2.0-OpenSSH_9.6\r\n"), binaryPacket(t, kex.RawData())...)
	records := d.Dissect(1, sshFrame(t, 22, 50000, first))
	require.Len(t, records, 1)
	assert.Equal(t, core.FamilySSH2, records[0].Family)
	assert.Equal(t, uint32(ssh2.MsgKexInit), records[0].Type)
	assert.Equal(t, "SSH-2.0-OpenSSH_9.6", records[0].Labels[core.LabelSSHIdent])

	// NEWKEYS followed by an unknown message in one segment.
	second := append(binaryPacket(t, []byte{byte(ssh2.MsgNewKeys)}), binaryPacket(t, []byte{99, 1})...)
	records = d.Dissect(2, sshFrame(t, 22, 50000, second))
	require.Len(t, records, 1, "nothing after NEWKEYS is dissected")
	assert.Equal(t, uint32(ssh2.MsgNewKeys), records[0].Type)

	// The server direction is now encrypted, the client one is not.
	assert.Equal(t, 1, d.encrypted.ItemCount())
	assert.Empty(t, d.Dissect(3, sshFrame(t, 22, 50000, binaryPacket(t, []byte{99}))))
	records = d.Dissect(4, sshFrame(t, 50000, 22, binaryPacket(t, []byte{99})))
	require.Len(t, records, 1)
	assert.Equal(t, core.VariantUnknown, records[0].Variant)
}

func TestSSHPartialPacket(t *testing.T) {
	raw := binaryPacket(t, []byte{byte(ssh2.MsgIgnore), 0, 0, 0, 0})
	records := New(allFamilies, nil, nil).Dissect(1, sshFrame(t, 50000, 22, raw[:len(raw)-2]))
	assert.Empty(t, records)
}

func TestFamiliesDisabled(t *testing.T) {
	cfg := allFamilies
	cfg.Families = []string{"ssh2"}
	pkt := frame(t, ethernet(layers.EthernetTypeIPv4), ipv4(layers.IPProtocolUDP),
		&layers.UDP{SrcPort: 53, DstPort: 40000}, gopacket.Payload(dnsResponse(t)))
	assert.Empty(t, New(cfg, nil, nil).Dissect(1, pkt))
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	pkt := frame(t, ethernet(layers.EthernetTypeIPv4), ipv4(layers.IPProtocolUDP),
		&layers.UDP{SrcPort: 53, DstPort: 40000}, gopacket.Payload(dnsResponse(t)))

	New(allFamilies, m, nil).Dissect(1, pkt)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.UnitsTotal.WithLabelValues("dnsrdata", metrics.OutcomeKnown)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnitsTotal.WithLabelValues("dnsrdata", metrics.OutcomeUnknown)))
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		family  core.Family
		code    uint32
		raw     []byte
		variant core.Variant
	}{
		{"ndp mtu", core.FamilyNDP, 5, []byte{5, 1, 0, 0, 0, 0, 0x05, 0xDC}, core.VariantKnown},
		{"ndp mismatch", core.FamilyNDP, 3, []byte{5, 1, 0, 0, 0, 0, 0x05, 0xDC}, core.VariantIllegal},
		{"ipv4 nop", core.FamilyIPv4Opt, 1, []byte{1}, core.VariantKnown},
		{"ipv4 unknown", core.FamilyIPv4Opt, 148, []byte{148, 4, 0, 0}, core.VariantUnknown},
		{"dns a", core.FamilyDNSRData, 1, []byte{192, 0, 2, 1}, core.VariantKnown},
		{"dns srv", core.FamilyDNSRData, 33, []byte{0, 1}, core.VariantUnknown},
		{"ssh newkeys", core.FamilySSH2, 21, []byte{21}, core.VariantKnown},
		{"ssh disconnect truncated", core.FamilySSH2, 1, []byte{1, 0, 0}, core.VariantIllegal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Decode(tt.family, tt.code, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.family, r.Family)
			assert.Equal(t, tt.variant, r.Variant)
			assert.NotEmpty(t, r.Description)
			if tt.variant == core.VariantIllegal {
				assert.NotEmpty(t, r.Cause)
			}
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	_, err := Decode("tcpopt", 1, []byte{1})
	assert.True(t, errors.Is(err, core.ErrUnknownFamily))

	_, err = Decode(core.FamilyNDP, 256, []byte{1})
	assert.True(t, errors.Is(err, packet.ErrInvalidArgument))

	_, err = Decode(core.FamilyDNSRData, 65536, []byte{1})
	assert.True(t, errors.Is(err, packet.ErrInvalidArgument))
}
