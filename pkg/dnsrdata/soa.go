package dnsrdata

import (
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

const soaCountersSize = 5 * wire.IntSize

// SOA is the start of a zone of authority.
type SOA struct {
	mName   *DomainName
	rName   *DomainName
	serial  uint32
	refresh uint32
	retry   uint32
	expire  uint32
	minimum uint32
}

func DecodeSOA(raw []byte) (*SOA, error) {
	mName, err := DecodeDomainName(raw, 0)
	if err != nil {
		return nil, err
	}
	rName, err := DecodeDomainName(raw, mName.Len())
	if err != nil {
		return nil, err
	}
	off := mName.Len() + rName.Len()
	if len(raw) < off+soaCountersSize {
		return nil, packet.TooShort(raw, "a DNS SOA RDATA", off+soaCountersSize)
	}
	if err := checkConsumed(raw, off+soaCountersSize, "the MINIMUM"); err != nil {
		return nil, err
	}
	r := &SOA{mName: mName, rName: rName}
	for i, dst := range []*uint32{&r.serial, &r.refresh, &r.retry, &r.expire, &r.minimum} {
		*dst, _ = wire.Uint32(raw, off+i*wire.IntSize)
	}
	return r, nil
}

func (r *SOA) Type() RecordType   { return TypeSOA }
func (r *SOA) MName() *DomainName { return r.mName }
func (r *SOA) RName() *DomainName { return r.rName }
func (r *SOA) Serial() uint32     { return r.serial }
func (r *SOA) Refresh() uint32    { return r.refresh }
func (r *SOA) Retry() uint32      { return r.retry }
func (r *SOA) Expire() uint32     { return r.expire }
func (r *SOA) Minimum() uint32    { return r.minimum }
func (r *SOA) Len() int           { return r.mName.Len() + r.rName.Len() + soaCountersSize }
func (r *SOA) dnsRData()          {}

func (r *SOA) RawData() []byte {
	raw := append(r.mName.RawData(), r.rName.RawData()...)
	off := len(raw)
	raw = append(raw, make([]byte, soaCountersSize)...)
	for i, v := range []uint32{r.serial, r.refresh, r.retry, r.expire, r.minimum} {
		_ = wire.PutUint32(raw, off+i*wire.IntSize, v)
	}
	return raw
}

func (r *SOA) String() string {
	return fmt.Sprintf("[MNAME: %s] [RNAME: %s] [SERIAL: %d] [REFRESH: %d] [RETRY: %d] [EXPIRE: %d] [MINIMUM: %d]",
		r.mName, r.rName, r.serial, r.refresh, r.retry, r.expire, r.minimum)
}

func (r *SOA) Builder() *SOABuilder {
	return &SOABuilder{
		MName:   r.mName,
		RName:   r.rName,
		Serial:  r.serial,
		Refresh: r.refresh,
		Retry:   r.retry,
		Expire:  r.expire,
		Minimum: r.minimum,
	}
}

type SOABuilder struct {
	MName   *DomainName
	RName   *DomainName
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (b *SOABuilder) Build() (*SOA, error) {
	if b.MName == nil || b.RName == nil {
		return nil, packet.Invalidf("SOA RDATA needs both MNAME and RNAME")
	}
	return &SOA{
		mName:   b.MName,
		rName:   b.RName,
		serial:  b.Serial,
		refresh: b.Refresh,
		retry:   b.Retry,
		expire:  b.Expire,
		minimum: b.Minimum,
	}, nil
}
