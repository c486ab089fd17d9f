package dissect

import (
	"firestige.xyz/otus-dissect/internal/core"
	"firestige.xyz/otus-dissect/pkg/dnsrdata"
	"firestige.xyz/otus-dissect/pkg/wire"
)

const (
	dnsHeaderSize   = 12
	dnsQDCount      = 4
	questionTail    = 4  // QTYPE, QCLASS
	rrFixedSize     = 10 // TYPE, CLASS, TTL, RDLENGTH
	rrRDLengthField = 8
	tcpLengthPrefix = 2
)

var dnsSections = []string{"answer", "authority", "additional"}

// dnsMessage walks the questions and resource records of one DNS message
// and dissects every RDATA. A message over TCP carries a 2-byte length
// prefix. Walking stops at the first structural error; records already
// produced are kept.
func (d *Dissector) dnsMessage(base core.Record, msg []byte, tcp bool) []core.Record {
	if tcp {
		n, err := wire.Uint16(msg, 0)
		if err != nil {
			return nil
		}
		// Segments that do not start a message are skipped.
		if msg, err = wire.Slice(msg, tcpLengthPrefix, int(n)); err != nil {
			return nil
		}
	}
	if len(msg) < dnsHeaderSize {
		return nil
	}

	var counts [4]uint16
	for i := range counts {
		counts[i], _ = wire.Uint16(msg, dnsQDCount+2*i)
	}

	off := dnsHeaderSize
	for range counts[0] {
		name, err := dnsrdata.DecodeDomainName(msg, off)
		if err != nil {
			d.logger.Debug("malformed DNS question", "frame", base.Frame, "offset", off, "error", err)
			return nil
		}
		off += name.Len() + questionTail
	}

	var records []core.Record
	for s, section := range dnsSections {
		for range counts[s+1] {
			name, err := dnsrdata.DecodeDomainName(msg, off)
			if err != nil {
				d.logger.Debug("malformed DNS resource record", "frame", base.Frame, "offset", off, "error", err)
				return records
			}
			off += name.Len()
			typ, err := wire.Uint16(msg, off)
			if err != nil {
				return records
			}
			rdlen, err := wire.Uint16(msg, off+rrRDLengthField)
			if err != nil {
				return records
			}
			off += rrFixedSize

			// Out-of-range RDLENGTH comes back as an illegal unit.
			rdata := dnsrdata.NewRData(msg, off, int(rdlen), dnsrdata.RecordType(typ))
			r := labeled(base, core.LabelDNSSection, section)
			if owner, err := name.Decompress(msg); err == nil {
				r = labeled(r, core.LabelDNSName, owner)
			}
			records = append(records, describe(r, core.FamilyDNSRData, rdata))
			off += int(rdlen)
			if off > len(msg) {
				return records
			}
		}
	}
	return records
}
