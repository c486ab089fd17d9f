package decoder

import (
	"firestige.xyz/otus-dissect/internal/core"
	"firestige.xyz/otus-dissect/pkg/wire"
)

const (
	// Ethernet constants
	ethernetHeaderLen = 14
	vlanHeaderLen     = 4
	macLen            = 6
	etherTypeOffset   = 12

	// EtherType values
	etherTypeIPv4 = 0x0800
	etherTypeIPv6 = 0x86DD
	etherTypeVLAN = 0x8100
	etherTypeQinQ = 0x88A8

	vlanIDMask = 0x0FFF
)

// decodeEthernet decodes Ethernet frame header (including VLAN tags).
// Returns EthernetHeader and remaining payload. Non-IP EtherTypes are
// returned as is; the caller decides whether to go on.
func decodeEthernet(data []byte) (core.EthernetHeader, []byte, error) {
	if len(data) < ethernetHeaderLen {
		return core.EthernetHeader{}, nil, core.ErrFrameTooShort
	}

	eth := core.EthernetHeader{}
	copy(eth.DstMAC[:], data[0:macLen])
	copy(eth.SrcMAC[:], data[macLen:2*macLen])

	etherType, _ := wire.Uint16(data, etherTypeOffset)
	offset := ethernetHeaderLen

	// QinQ stacks at most two tags, but nothing breaks with more.
	for etherType == etherTypeVLAN || etherType == etherTypeQinQ {
		tci, err := wire.Uint16(data, offset)
		if err != nil {
			return eth, nil, core.ErrFrameTooShort
		}
		next, err := wire.Uint16(data, offset+2)
		if err != nil {
			return eth, nil, core.ErrFrameTooShort
		}
		eth.VLANs = append(eth.VLANs, tci&vlanIDMask)
		etherType = next
		offset += vlanHeaderLen
	}

	eth.EtherType = etherType
	return eth, data[offset:], nil
}
