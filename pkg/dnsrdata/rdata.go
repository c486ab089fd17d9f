// Package dnsrdata decodes and encodes the RDATA of DNS resource records
// (RFC 1035, RFC 3596).
//
// RDATA carries no type tag of its own; the record type comes from the
// enclosing resource record and is passed to NewRData. Domain names are
// kept exactly as they appear on the wire, compression pointers included,
// so a decoded value re-encodes to the same bytes. DomainName.Decompress
// resolves the pointers against the enclosing message.
package dnsrdata

import (
	"github.com/google/gopacket/layers"

	"firestige.xyz/otus-dissect/pkg/packet"
)

// RecordType is the TYPE field of a resource record.
type RecordType uint16

const (
	TypeA     = RecordType(layers.DNSTypeA)
	TypeNS    = RecordType(layers.DNSTypeNS)
	TypeMD    = RecordType(layers.DNSTypeMD)
	TypeMF    = RecordType(layers.DNSTypeMF)
	TypeCNAME = RecordType(layers.DNSTypeCNAME)
	TypeSOA   = RecordType(layers.DNSTypeSOA)
	TypeMB    = RecordType(layers.DNSTypeMB)
	TypeMG    = RecordType(layers.DNSTypeMG)
	TypeMR    = RecordType(layers.DNSTypeMR)
	TypeNULL  = RecordType(layers.DNSTypeNULL)
	TypeWKS   = RecordType(layers.DNSTypeWKS)
	TypePTR   = RecordType(layers.DNSTypePTR)
	TypeHINFO = RecordType(layers.DNSTypeHINFO)
	TypeMINFO = RecordType(layers.DNSTypeMINFO)
	TypeMX    = RecordType(layers.DNSTypeMX)
	TypeTXT   = RecordType(layers.DNSTypeTXT)
	TypeAAAA  = RecordType(layers.DNSTypeAAAA)
)

var recordTypeNames = map[RecordType]string{
	TypeA:     "A",
	TypeNS:    "NS",
	TypeMD:    "MD",
	TypeMF:    "MF",
	TypeCNAME: "CNAME",
	TypeSOA:   "SOA",
	TypeMB:    "MB",
	TypeMG:    "MG",
	TypeMR:    "MR",
	TypeNULL:  "NULL",
	TypeWKS:   "WKS",
	TypePTR:   "PTR",
	TypeHINFO: "HINFO",
	TypeMINFO: "MINFO",
	TypeMX:    "MX",
	TypeTXT:   "TXT",
	TypeAAAA:  "AAAA",
}

func (t RecordType) String() string { return packet.Named(t, recordTypeNames) }

// RData is the decoded RDATA of one resource record.
type RData interface {
	packet.Unit
	Type() RecordType
	dnsRData()
}
