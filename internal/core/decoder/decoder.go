// Package decoder implements L2-L4 protocol stack decoding.
package decoder

import (
	"fmt"
	"time"

	"firestige.xyz/otus-dissect/internal/core"
)

// Decoder decodes raw packets into structured format.
type Decoder interface {
	Decode(raw core.RawPacket) (core.DecodedPacket, error)
}

// LinkType selects the outermost header of a frame.
type LinkType int

const (
	LinkEthernet LinkType = iota // DLT_EN10MB
	LinkRaw                      // DLT_RAW, frame starts at the IP header
)

// Config controls StandardDecoder.
type Config struct {
	Link LinkType
	// KeepFragments passes IPv4 fragments through instead of failing with
	// ErrUnsupportedProto. Only the first fragment carries an L4 header.
	KeepFragments bool
	// Reassemble buffers IPv4 fragments and decodes the datagram once it
	// is complete. Takes precedence over KeepFragments.
	Reassemble        bool
	ReassemblyTimeout time.Duration
}

// StandardDecoder decodes Ethernet or raw IP frames carrying IPv4 or IPv6
// with a TCP, UDP or ICMPv6 header. IPv6 extension headers are not walked.
// A StandardDecoder with Reassemble set is not safe for concurrent use.
type StandardDecoder struct {
	cfg         Config
	reassembler *ipv4Reassembler
}

func NewStandardDecoder(cfg Config) *StandardDecoder {
	d := &StandardDecoder{cfg: cfg}
	if cfg.Reassemble {
		d.reassembler = newIPv4Reassembler(cfg.ReassemblyTimeout)
	}
	return d
}

func (d *StandardDecoder) Decode(raw core.RawPacket) (core.DecodedPacket, error) {
	pkt := core.DecodedPacket{
		Timestamp:  raw.Timestamp,
		CaptureLen: raw.CaptureLen,
		OrigLen:    raw.OrigLen,
	}

	data := raw.Data
	if d.cfg.Link == LinkEthernet {
		eth, payload, err := decodeEthernet(data)
		if err != nil {
			return pkt, fmt.Errorf("ethernet: %w", err)
		}
		pkt.Ethernet = eth
		if eth.EtherType != etherTypeIPv4 && eth.EtherType != etherTypeIPv6 {
			return pkt, fmt.Errorf("%w: ethertype %#04x", core.ErrUnsupportedProto, eth.EtherType)
		}
		data = payload
	}

	if isIPFragment(data) {
		switch {
		case d.reassembler != nil:
			datagram, err := d.reassembler.add(data, raw.Timestamp)
			if err != nil {
				return pkt, err
			}
			data = datagram
		case !d.cfg.KeepFragments:
			return pkt, fmt.Errorf("%w: ipv4 fragment", core.ErrUnsupportedProto)
		}
	}

	ip, payload, err := decodeIP(data)
	if err != nil {
		return pkt, fmt.Errorf("ip: %w", err)
	}
	pkt.IP = ip

	transport, payload, err := decodeTransport(payload, ip.Protocol)
	if err != nil {
		return pkt, fmt.Errorf("transport: %w", err)
	}
	pkt.Transport = transport
	pkt.Payload = payload
	return pkt, nil
}
