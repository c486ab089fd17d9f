package dissect

import (
	"fmt"

	"firestige.xyz/otus-dissect/internal/core"
	"firestige.xyz/otus-dissect/pkg/ipv4opt"
	"firestige.xyz/otus-dissect/pkg/ndp"
)

const (
	protocolTCP    = 6
	protocolUDP    = 17
	protocolICMPv6 = 58
)

// Size of the ND message body between the ICMPv6 header and the options.
var ndFixedSize = map[uint8]int{
	133: 4,  // Router Solicitation: reserved
	134: 12, // Router Advertisement: hop limit, flags, lifetime, reachable, retrans
	135: 20, // Neighbor Solicitation: reserved, target
	136: 20, // Neighbor Advertisement: flags, target
	137: 36, // Redirect: reserved, target, destination
}

func (d *Dissector) ipv4Options(base core.Record, raw []byte) []core.Record {
	opts, _ := ipv4opt.Options(raw)
	records := make([]core.Record, 0, len(opts))
	for _, o := range opts {
		records = append(records, describe(base, core.FamilyIPv4Opt, o))
	}
	return records
}

// ndOptions dissects the option list of an ND message. body starts after
// the 4-byte ICMPv6 header.
func (d *Dissector) ndOptions(base core.Record, icmpType uint8, body []byte) []core.Record {
	fixed, ok := ndFixedSize[icmpType]
	if !ok || len(body) <= fixed {
		return nil
	}
	base = labeled(base, core.LabelICMPv6Type, fmt.Sprint(icmpType))

	opts := ndp.Options(body[fixed:])
	records := make([]core.Record, 0, len(opts))
	for _, o := range opts {
		records = append(records, describe(base, core.FamilyNDP, o))
	}
	return records
}
