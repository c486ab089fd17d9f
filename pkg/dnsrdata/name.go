package dnsrdata

import (
	"fmt"
	"slices"
	"strings"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

const (
	maxLabelLength = 63
	maxNameLength  = 255
	maxPointer     = 0x3FFF

	labelTypeMask    = 0xC0
	labelTypeNormal  = 0x00
	labelTypePointer = 0xC0
)

// DomainName is a sequence of labels terminated either by the root label
// or by a compression pointer into the enclosing message.
type DomainName struct {
	labels     []string
	pointer    uint16
	compressed bool
}

// DecodeDomainName reads the name starting at raw[off]. Only raw is
// consulted; pointers are kept and not followed.
func DecodeDomainName(raw []byte, off int) (*DomainName, error) {
	if err := packet.CheckNil(raw); err != nil {
		return nil, err
	}
	n := &DomainName{}
	cur := off
	for {
		b, err := wire.Uint8(raw, cur)
		if err != nil {
			return nil, packet.WrapIllegal(raw, err, "the raw data is too short to build a domain name at offset %d", off)
		}
		switch b & labelTypeMask {
		case labelTypePointer:
			p, err := wire.Uint16(raw, cur)
			if err != nil {
				return nil, packet.WrapIllegal(raw, err, "truncated compression pointer at offset %d", cur)
			}
			n.pointer = p & maxPointer
			n.compressed = true
			return n, nil
		case labelTypeNormal:
		default:
			return nil, packet.Illegalf(raw, "a label must start with 00 or 11 bits, but is %#02x at offset %d", b, cur)
		}
		if b == 0 {
			return n, nil
		}
		label, err := wire.Slice(raw, cur+1, int(b))
		if err != nil {
			return nil, packet.WrapIllegal(raw, err, "truncated label at offset %d", cur)
		}
		n.labels = append(n.labels, string(label))
		cur += 1 + int(b)
	}
}

// Labels returns the labels before the terminator.
func (n *DomainName) Labels() []string { return slices.Clone(n.labels) }

// Pointer returns the compression pointer offset and whether there is one.
func (n *DomainName) Pointer() (uint16, bool) { return n.pointer, n.compressed }

func (n *DomainName) Len() int {
	size := 0
	for _, l := range n.labels {
		size += 1 + len(l)
	}
	if n.compressed {
		return size + wire.ShortSize
	}
	return size + 1
}

func (n *DomainName) RawData() []byte {
	raw := make([]byte, 0, n.Len())
	for _, l := range n.labels {
		raw = append(raw, uint8(len(l)))
		raw = append(raw, l...)
	}
	if n.compressed {
		return append(raw, uint8(labelTypePointer|n.pointer>>8), uint8(n.pointer))
	}
	return append(raw, 0)
}

// Name joins the uncompressed labels, "." for the root.
func (n *DomainName) Name() string {
	if len(n.labels) == 0 {
		return "."
	}
	return strings.Join(n.labels, ".")
}

func (n *DomainName) String() string {
	if !n.compressed {
		return n.Name()
	}
	if len(n.labels) == 0 {
		return fmt.Sprintf("[pointer: %d]", n.pointer)
	}
	return fmt.Sprintf("%s.[pointer: %d]", n.Name(), n.pointer)
}

// Decompress resolves the compression pointers of n against msg, the
// message the name was read from, and returns the full name.
func (n *DomainName) Decompress(msg []byte) (string, error) {
	labels := slices.Clone(n.labels)
	next, follow := n.pointer, n.compressed
	visited := make(map[uint16]struct{})
	for follow {
		if _, loop := visited[next]; loop {
			return "", packet.Illegalf(nil, "compression pointer loop at offset %d", next)
		}
		visited[next] = struct{}{}
		target, err := DecodeDomainName(msg, int(next))
		if err != nil {
			return "", fmt.Errorf("resolve pointer %d: %w", next, err)
		}
		labels = append(labels, target.labels...)
		if uncompressedLen(labels) > maxNameLength {
			return "", packet.Illegalf(nil, "decompressed name exceeds %d bytes", maxNameLength)
		}
		next, follow = target.pointer, target.compressed
	}
	if len(labels) == 0 {
		return ".", nil
	}
	return strings.Join(labels, "."), nil
}

func uncompressedLen(labels []string) int {
	size := 1
	for _, l := range labels {
		size += 1 + len(l)
	}
	return size
}

func (n *DomainName) Builder() *DomainNameBuilder {
	return &DomainNameBuilder{Labels: slices.Clone(n.labels), Pointer: n.pointer, Compressed: n.compressed}
}

// DomainNameBuilder stages a DomainName. Pointer is used only when
// Compressed is set.
type DomainNameBuilder struct {
	Labels     []string
	Pointer    uint16
	Compressed bool
}

func (b *DomainNameBuilder) Build() (*DomainName, error) {
	for _, l := range b.Labels {
		if l == "" {
			return nil, packet.Invalidf("empty label in %q", strings.Join(b.Labels, "."))
		}
		if len(l) > maxLabelLength {
			return nil, packet.Invalidf("label %q is longer than %d bytes", l, maxLabelLength)
		}
	}
	if b.Compressed && b.Pointer > maxPointer {
		return nil, packet.Invalidf("pointer %#x is above %#x", b.Pointer, maxPointer)
	}
	n := &DomainName{labels: slices.Clone(b.Labels), compressed: b.Compressed}
	if b.Compressed {
		n.pointer = b.Pointer
	}
	if n.Len() > maxNameLength {
		return nil, packet.Invalidf("domain name is longer than %d bytes", maxNameLength)
	}
	return n, nil
}

// ParseDomainName builds an uncompressed name from dotted text. A trailing
// dot is optional and "." is the root.
func ParseDomainName(s string) (*DomainName, error) {
	s = strings.TrimSuffix(s, ".")
	b := &DomainNameBuilder{}
	if s != "" {
		b.Labels = strings.Split(s, ".")
	}
	return b.Build()
}

// readCharacterString reads a <character-string> at raw[off] and returns
// it with its encoded size.
func readCharacterString(raw []byte, off int) (string, int, error) {
	size, err := wire.Uint8(raw, off)
	if err != nil {
		return "", 0, packet.WrapIllegal(raw, err, "the raw data is too short to build a character-string at offset %d", off)
	}
	s, err := wire.Slice(raw, off+1, int(size))
	if err != nil {
		return "", 0, packet.WrapIllegal(raw, err, "the raw data is too short to build a character-string. %d bytes data is needed", 1+int(size))
	}
	return string(s), 1 + int(size), nil
}

func appendCharacterString(dst []byte, s string) []byte {
	dst = append(dst, uint8(len(s)))
	return append(dst, s...)
}

func checkCharacterString(s string) error {
	if len(s) > 0xFF {
		return packet.Invalidf("character-string is longer than 255 bytes: %d", len(s))
	}
	return nil
}

// checkConsumed rejects RDATA whose window is longer than the fields
// decoded from it, since RawData could not reproduce the extra bytes.
func checkConsumed(raw []byte, used int, what string) error {
	if used != len(raw) {
		return packet.Illegalf(raw, "%s ends at offset %d, but RDLENGTH is %d", what, used, len(raw))
	}
	return nil
}
