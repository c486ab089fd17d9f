package decoder

import (
	"firestige.xyz/otus-dissect/internal/core"
	"firestige.xyz/otus-dissect/pkg/wire"
)

const (
	udpHeaderLen    = 8
	tcpHeaderMinLen = 20
	icmpHeaderLen   = 4

	// Protocol numbers
	protocolTCP    = 6
	protocolUDP    = 17
	protocolICMPv6 = 58

	tcpFlagsMask = 0x3F
)

// decodeTransport decodes transport layer header (TCP/UDP/ICMPv6).
// Returns TransportHeader and remaining payload.
func decodeTransport(data []byte, protocol uint8) (core.TransportHeader, []byte, error) {
	switch protocol {
	case protocolTCP:
		return decodeTCP(data)
	case protocolUDP:
		return decodeUDP(data)
	case protocolICMPv6:
		return decodeICMPv6(data)
	default:
		// Passed through untouched (SCTP, ICMPv4, extension headers)
		return core.TransportHeader{Protocol: protocol}, data, nil
	}
}

func decodeUDP(data []byte) (core.TransportHeader, []byte, error) {
	if len(data) < udpHeaderLen {
		return core.TransportHeader{}, nil, core.ErrFrameTooShort
	}

	transport := core.TransportHeader{Protocol: protocolUDP}
	transport.SrcPort, _ = wire.Uint16(data, 0)
	transport.DstPort, _ = wire.Uint16(data, 2)

	// Length includes the header; trust it only when it fits.
	end := len(data)
	if l, _ := wire.Uint16(data, 4); int(l) >= udpHeaderLen && int(l) < end {
		end = int(l)
	}
	return transport, data[udpHeaderLen:end], nil
}

func decodeTCP(data []byte) (core.TransportHeader, []byte, error) {
	if len(data) < tcpHeaderMinLen {
		return core.TransportHeader{}, nil, core.ErrFrameTooShort
	}

	transport := core.TransportHeader{Protocol: protocolTCP}
	transport.SrcPort, _ = wire.Uint16(data, 0)
	transport.DstPort, _ = wire.Uint16(data, 2)
	transport.SeqNum, _ = wire.Uint32(data, 4)
	transport.AckNum, _ = wire.Uint32(data, 8)

	headerLen := int(data[12]>>4) * 4 // Data offset is in 32-bit words
	if headerLen < tcpHeaderMinLen || len(data) < headerLen {
		return transport, nil, core.ErrFrameTooShort
	}

	// URG, ACK, PSH, RST, SYN, FIN
	transport.TCPFlags = data[13] & tcpFlagsMask

	return transport, data[headerLen:], nil
}

// decodeICMPv6 consumes type, code and checksum. The message body,
// including any fixed part before ND options, is the payload.
func decodeICMPv6(data []byte) (core.TransportHeader, []byte, error) {
	if len(data) < icmpHeaderLen {
		return core.TransportHeader{}, nil, core.ErrFrameTooShort
	}
	return core.TransportHeader{
		Protocol: protocolICMPv6,
		ICMPType: data[0],
		ICMPCode: data[1],
	}, data[icmpHeaderLen:], nil
}
