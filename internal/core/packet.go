package core

import (
	"net/netip"
	"time"
)

// RawPacket is one frame as read from a capture file.
type RawPacket struct {
	Data       []byte
	Timestamp  time.Time
	CaptureLen uint32
	OrigLen    uint32
}

// DecodedPacket is the result of L2-L4 protocol stack decoding.
type DecodedPacket struct {
	Timestamp  time.Time
	Ethernet   EthernetHeader
	IP         IPHeader
	Transport  TransportHeader
	Payload    []byte // Application layer payload, zero-copy slice
	CaptureLen uint32
	OrigLen    uint32
}

// Variant classifies how a factory resolved a unit.
type Variant string

const (
	VariantKnown   Variant = "known"
	VariantUnknown Variant = "unknown"
	VariantIllegal Variant = "illegal"
)

// Record is one dissected protocol unit, ready for a sink.
type Record struct {
	Frame     int        `json:"frame" yaml:"frame"`
	Timestamp time.Time  `json:"timestamp,omitzero" yaml:"timestamp,omitempty"`
	SrcIP     netip.Addr `json:"src_ip,omitzero" yaml:"src_ip,omitempty"`
	DstIP     netip.Addr `json:"dst_ip,omitzero" yaml:"dst_ip,omitempty"`

	Family      Family  `json:"family" yaml:"family"`
	Type        uint32  `json:"type" yaml:"type"`
	TypeName    string  `json:"type_name" yaml:"type_name"`
	Variant     Variant `json:"variant" yaml:"variant"`
	Length      int     `json:"length" yaml:"length"`
	Description string  `json:"description" yaml:"description"`
	Raw         string  `json:"raw" yaml:"raw"`
	Cause       string  `json:"cause,omitempty" yaml:"cause,omitempty"`

	Labels Labels `json:"labels,omitempty" yaml:"labels,omitempty"`
}
