package dnsrdata

import (
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

// UnknownRData is RDATA of a type with no codec, kept verbatim.
type UnknownRData struct {
	packet.Raw
	typ RecordType
}

func (r *UnknownRData) Type() RecordType { return r.typ }
func (r *UnknownRData) dnsRData()        {}

func (r *UnknownRData) String() string {
	return fmt.Sprintf("[type: %s] [data: 0x%s]", r.typ, wire.HexString(r.RawData(), ""))
}

// IllegalRData keeps the bytes of RDATA that failed validation.
type IllegalRData struct {
	packet.Raw
	typ   RecordType
	cause error
}

func (r *IllegalRData) Type() RecordType { return r.typ }
func (r *IllegalRData) Cause() error     { return r.cause }
func (r *IllegalRData) dnsRData()        {}

func (r *IllegalRData) String() string {
	return fmt.Sprintf("[Illegal Raw Data: 0x%s] [cause: %v]", wire.HexString(r.RawData(), ""), r.cause)
}
