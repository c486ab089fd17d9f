package dnsrdata

import (
	"fmt"
	"net/netip"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

// A is the RDATA of an A record: one IPv4 address.
type A struct {
	address netip.Addr
}

func DecodeA(raw []byte) (*A, error) {
	if err := packet.CheckNil(raw); err != nil {
		return nil, err
	}
	if len(raw) < wire.IPv4Size {
		return nil, packet.TooShort(raw, "a DNS A RDATA", wire.IPv4Size)
	}
	addr, _ := wire.IPv4(raw, 0)
	return &A{address: addr}, nil
}

func (r *A) Type() RecordType    { return TypeA }
func (r *A) Address() netip.Addr { return r.address }
func (r *A) Len() int            { return wire.IPv4Size }
func (r *A) RawData() []byte     { return r.address.AsSlice() }
func (r *A) String() string      { return fmt.Sprintf("[address: %s]", r.address) }
func (r *A) dnsRData()           {}

func (r *A) Builder() *ABuilder { return &ABuilder{Address: r.address} }

type ABuilder struct {
	Address netip.Addr
}

func (b *ABuilder) Build() (*A, error) {
	if !b.Address.Is4() {
		return nil, packet.Invalidf("A record address must be IPv4: %s", b.Address)
	}
	return &A{address: b.Address}, nil
}

// AAAA is the RDATA of an AAAA record: one IPv6 address.
type AAAA struct {
	address netip.Addr
}

func DecodeAAAA(raw []byte) (*AAAA, error) {
	if err := packet.CheckNil(raw); err != nil {
		return nil, err
	}
	if len(raw) < wire.IPv6Size {
		return nil, packet.TooShort(raw, "a DNS AAAA RDATA", wire.IPv6Size)
	}
	addr, _ := wire.IPv6(raw, 0)
	return &AAAA{address: addr}, nil
}

func (r *AAAA) Type() RecordType    { return TypeAAAA }
func (r *AAAA) Address() netip.Addr { return r.address }
func (r *AAAA) Len() int            { return wire.IPv6Size }
func (r *AAAA) RawData() []byte     { return r.address.AsSlice() }
func (r *AAAA) String() string      { return fmt.Sprintf("[address: %s]", r.address) }
func (r *AAAA) dnsRData()           {}

func (r *AAAA) Builder() *AAAABuilder { return &AAAABuilder{Address: r.address} }

type AAAABuilder struct {
	Address netip.Addr
}

func (b *AAAABuilder) Build() (*AAAA, error) {
	if !b.Address.Is6() || b.Address.Is4In6() {
		return nil, packet.Invalidf("AAAA record address must be IPv6: %s", b.Address)
	}
	return &AAAA{address: b.Address}, nil
}
