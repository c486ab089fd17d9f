package dnsrdata

import (
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

// MINFO is the experimental mailbox information record.
type MINFO struct {
	rMailBx *DomainName
	eMailBx *DomainName
}

func DecodeMINFO(raw []byte) (*MINFO, error) {
	r, err := DecodeDomainName(raw, 0)
	if err != nil {
		return nil, err
	}
	e, err := DecodeDomainName(raw, r.Len())
	if err != nil {
		return nil, err
	}
	if err := checkConsumed(raw, r.Len()+e.Len(), "the EMAILBX"); err != nil {
		return nil, err
	}
	return &MINFO{rMailBx: r, eMailBx: e}, nil
}

func (r *MINFO) Type() RecordType     { return TypeMINFO }
func (r *MINFO) RMailBx() *DomainName { return r.rMailBx }
func (r *MINFO) EMailBx() *DomainName { return r.eMailBx }
func (r *MINFO) Len() int             { return r.rMailBx.Len() + r.eMailBx.Len() }
func (r *MINFO) RawData() []byte      { return append(r.rMailBx.RawData(), r.eMailBx.RawData()...) }
func (r *MINFO) dnsRData()            {}

func (r *MINFO) String() string {
	return fmt.Sprintf("[RMAILBX: %s] [EMAILBX: %s]", r.rMailBx, r.eMailBx)
}

func (r *MINFO) Builder() *MINFOBuilder {
	return &MINFOBuilder{RMailBx: r.rMailBx, EMailBx: r.eMailBx}
}

type MINFOBuilder struct {
	RMailBx *DomainName
	EMailBx *DomainName
}

func (b *MINFOBuilder) Build() (*MINFO, error) {
	if b.RMailBx == nil || b.EMailBx == nil {
		return nil, packet.Invalidf("MINFO RDATA needs both RMAILBX and EMAILBX")
	}
	return &MINFO{rMailBx: b.RMailBx, eMailBx: b.EMailBx}, nil
}

// MX is a mail exchange record.
type MX struct {
	preference uint16
	exchange   *DomainName
}

func DecodeMX(raw []byte) (*MX, error) {
	if err := packet.CheckNil(raw); err != nil {
		return nil, err
	}
	if len(raw) < wire.ShortSize+1 {
		return nil, packet.TooShort(raw, "a DNS MX RDATA", wire.ShortSize+1)
	}
	pref, _ := wire.Uint16(raw, 0)
	exchange, err := DecodeDomainName(raw, wire.ShortSize)
	if err != nil {
		return nil, err
	}
	if err := checkConsumed(raw, wire.ShortSize+exchange.Len(), "the EXCHANGE"); err != nil {
		return nil, err
	}
	return &MX{preference: pref, exchange: exchange}, nil
}

func (r *MX) Type() RecordType      { return TypeMX }
func (r *MX) Preference() uint16    { return r.preference }
func (r *MX) Exchange() *DomainName { return r.exchange }
func (r *MX) Len() int              { return wire.ShortSize + r.exchange.Len() }
func (r *MX) dnsRData()             {}

func (r *MX) RawData() []byte {
	raw := []byte{uint8(r.preference >> 8), uint8(r.preference)}
	return append(raw, r.exchange.RawData()...)
}

func (r *MX) String() string {
	return fmt.Sprintf("[PREFERENCE: %d] [EXCHANGE: %s]", r.preference, r.exchange)
}

func (r *MX) Builder() *MXBuilder {
	return &MXBuilder{Preference: r.preference, Exchange: r.exchange}
}

type MXBuilder struct {
	Preference uint16
	Exchange   *DomainName
}

func (b *MXBuilder) Build() (*MX, error) {
	if b.Exchange == nil {
		return nil, packet.Invalidf("MX RDATA needs an EXCHANGE name")
	}
	return &MX{preference: b.Preference, exchange: b.Exchange}, nil
}
