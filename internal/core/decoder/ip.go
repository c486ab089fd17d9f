package decoder

import (
	"firestige.xyz/otus-dissect/internal/core"
	"firestige.xyz/otus-dissect/pkg/wire"
)

const (
	ipv4HeaderMinLen = 20
	ipv6HeaderLen    = 40

	ihlMask       = 0x0F
	mfFlag        = 0x2000
	fragOffsetMsk = 0x1FFF
)

// decodeIP decodes IP header (IPv4 or IPv6).
// Returns IPHeader and remaining payload.
func decodeIP(data []byte) (core.IPHeader, []byte, error) {
	if len(data) < 1 {
		return core.IPHeader{}, nil, core.ErrFrameTooShort
	}

	switch data[0] >> 4 {
	case 4:
		return decodeIPv4(data)
	case 6:
		return decodeIPv6(data)
	default:
		return core.IPHeader{}, nil, core.ErrUnsupportedProto
	}
}

// decodeIPv4 decodes IPv4 header. The option area between the fixed
// header and IHL*4 is kept in IPHeader.Options for the option dissector.
func decodeIPv4(data []byte) (core.IPHeader, []byte, error) {
	if len(data) < ipv4HeaderMinLen {
		return core.IPHeader{}, nil, core.ErrFrameTooShort
	}

	headerLen := int(data[0]&ihlMask) * 4 // IHL is in 32-bit words
	if headerLen < ipv4HeaderMinLen || len(data) < headerLen {
		return core.IPHeader{}, nil, core.ErrFrameTooShort
	}

	ip := core.IPHeader{
		Version:  4,
		TTL:      data[8],
		Protocol: data[9],
	}
	ip.TotalLen, _ = wire.Uint16(data, 2)
	ip.SrcIP, _ = wire.IPv4(data, 12)
	ip.DstIP, _ = wire.IPv4(data, 16)
	if headerLen > ipv4HeaderMinLen {
		ip.Options = data[ipv4HeaderMinLen:headerLen:headerLen]
	}

	end := len(data)
	if tl := int(ip.TotalLen); tl >= headerLen && tl < end {
		// Ethernet padding
		end = tl
	}
	return ip, data[headerLen:end], nil
}

// decodeIPv6 decodes IPv6 header.
func decodeIPv6(data []byte) (core.IPHeader, []byte, error) {
	if len(data) < ipv6HeaderLen {
		return core.IPHeader{}, nil, core.ErrFrameTooShort
	}

	ip := core.IPHeader{
		Version:  6,
		Protocol: data[6], // Next Header
		TTL:      data[7], // Hop Limit
	}
	payloadLen, _ := wire.Uint16(data, 4)
	tl := ipv6HeaderLen + int(payloadLen)
	// TotalLen saturates; the payload length alone may reach 0xFFFF.
	ip.TotalLen = uint16(min(tl, 0xFFFF))
	ip.SrcIP, _ = wire.IPv6(data, 8)
	ip.DstIP, _ = wire.IPv6(data, 24)

	end := len(data)
	if tl >= ipv6HeaderLen && tl < end {
		end = tl
	}
	return ip, data[ipv6HeaderLen:end], nil
}

// isIPFragment reports whether data is an IPv4 fragment. IPv6
// fragmentation lives in an extension header and is not detected.
func isIPFragment(data []byte) bool {
	if len(data) < ipv4HeaderMinLen || data[0]>>4 != 4 {
		return false
	}
	flags, _ := wire.Uint16(data, 6)
	return flags&mfFlag != 0 || flags&fragOffsetMsk != 0
}
