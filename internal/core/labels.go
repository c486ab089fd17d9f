package core

import "fmt"

// Labels represents key-value metadata attached by the dissector.
type Labels map[string]string

// Label naming constants following {protocol}.{field} convention.
const (
	LabelSrcIP   = "ip.src"
	LabelDstIP   = "ip.dst"
	LabelSrcPort = "l4.src_port"
	LabelDstPort = "l4.dst_port"

	LabelICMPv6Type = "icmpv6.type" // ND message carrying the option list
	LabelDNSSection = "dns.section" // answer | authority | additional
	LabelDNSName    = "dns.name"    // Owner name, decompressed
	LabelSSHIdent   = "ssh.ident"   // Identification string of the direction
)

// Family names a protocol unit family handled by a factory.
type Family string

const (
	FamilyNDP      Family = "ndp"
	FamilyIPv4Opt  Family = "ipv4opt"
	FamilyDNSRData Family = "dnsrdata"
	FamilySSH2     Family = "ssh2"
)

// Families lists every family in a stable order.
var Families = []Family{FamilyNDP, FamilyIPv4Opt, FamilyDNSRData, FamilySSH2}

// ParseFamily accepts the family names used in config and on the command
// line.
func ParseFamily(s string) (Family, error) {
	for _, f := range Families {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFamily, s)
}
