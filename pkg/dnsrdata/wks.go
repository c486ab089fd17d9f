package dnsrdata

import (
	"bytes"
	"fmt"
	"net/netip"

	"github.com/google/gopacket/layers"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

const (
	wksProtocolOffset = wire.IPv4Size
	wksBitmapOffset   = wksProtocolOffset + 1
)

// WKS is a well known services record. Bit n of the bitmap, counted from
// the most significant bit of the first byte, stands for port n.
type WKS struct {
	address  netip.Addr
	protocol layers.IPProtocol
	bitmap   []byte
}

func DecodeWKS(raw []byte) (*WKS, error) {
	if err := packet.CheckNil(raw); err != nil {
		return nil, err
	}
	if len(raw) < wksBitmapOffset {
		return nil, packet.TooShort(raw, "a DNS WKS RDATA", wksBitmapOffset)
	}
	addr, _ := wire.IPv4(raw, 0)
	return &WKS{
		address:  addr,
		protocol: layers.IPProtocol(raw[wksProtocolOffset]),
		bitmap:   bytes.Clone(raw[wksBitmapOffset:]),
	}, nil
}

func (r *WKS) Type() RecordType            { return TypeWKS }
func (r *WKS) Address() netip.Addr         { return r.address }
func (r *WKS) Protocol() layers.IPProtocol { return r.protocol }
func (r *WKS) Bitmap() []byte              { return bytes.Clone(r.bitmap) }
func (r *WKS) Len() int                    { return wksBitmapOffset + len(r.bitmap) }
func (r *WKS) dnsRData()                   {}

// Ports lists the ports whose bit is set, in ascending order.
func (r *WKS) Ports() []uint16 {
	var ports []uint16
	for i, b := range r.bitmap {
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>bit) != 0 {
				ports = append(ports, uint16(i*8+bit))
			}
		}
	}
	return ports
}

func (r *WKS) RawData() []byte {
	raw := make([]byte, r.Len())
	_ = wire.PutAddr(raw, 0, r.address)
	raw[wksProtocolOffset] = uint8(r.protocol)
	copy(raw[wksBitmapOffset:], r.bitmap)
	return raw
}

func (r *WKS) String() string {
	return fmt.Sprintf("[ADDRESS: %s] [PROTOCOL: %s] [ports: %v]", r.address, r.protocol, r.Ports())
}

func (r *WKS) Builder() *WKSBuilder {
	return &WKSBuilder{Address: r.address, Protocol: r.protocol, Bitmap: bytes.Clone(r.bitmap)}
}

type WKSBuilder struct {
	Address  netip.Addr
	Protocol layers.IPProtocol
	Bitmap   []byte
}

func (b *WKSBuilder) Build() (*WKS, error) {
	if !b.Address.Is4() {
		return nil, packet.Invalidf("WKS address must be IPv4: %s", b.Address)
	}
	return &WKS{address: b.Address, protocol: b.Protocol, bitmap: bytes.Clone(b.Bitmap)}, nil
}

// WKSBitmap encodes ports as a WKS bitmap just long enough for the
// highest port.
func WKSBitmap(ports ...uint16) []byte {
	var bitmap []byte
	for _, p := range ports {
		i := int(p) / 8
		if i >= len(bitmap) {
			bitmap = append(bitmap, make([]byte, i+1-len(bitmap))...)
		}
		bitmap[i] |= 0x80 >> (p % 8)
	}
	return bitmap
}
