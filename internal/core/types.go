// Package core defines the frame and record types shared by the decoder,
// the dissector and the sinks.
package core

import "net/netip"

// EthernetHeader represents L2 Ethernet frame header.
type EthernetHeader struct {
	SrcMAC    [6]byte
	DstMAC    [6]byte
	EtherType uint16   // 0x0800=IPv4, 0x86DD=IPv6, 0x8100=VLAN
	VLANs     []uint16 // 0~2 VLAN IDs (QinQ scenarios have 2)
}

// IPHeader represents L3 IP header (IPv4/IPv6).
type IPHeader struct {
	Version  uint8
	SrcIP    netip.Addr
	DstIP    netip.Addr
	Protocol uint8 // TCP=6, UDP=17, ICMPv6=58
	TTL      uint8
	TotalLen uint16
	// Options is the IPv4 option area between the fixed header and the
	// payload, aliasing the frame. Empty for IPv6.
	Options []byte
}

// TransportHeader represents the L4 header (TCP/UDP/ICMPv6).
type TransportHeader struct {
	SrcPort  uint16
	DstPort  uint16
	Protocol uint8
	// TCP-specific fields (only populated for TCP)
	TCPFlags uint8
	SeqNum   uint32
	AckNum   uint32
	// ICMPv6-specific fields (only populated for ICMPv6)
	ICMPType uint8
	ICMPCode uint8
}
