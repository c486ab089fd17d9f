package dnsrdata

import (
	"fmt"
	"slices"
	"strings"

	"firestige.xyz/otus-dissect/pkg/packet"
)

// HINFO is the host information record.
type HINFO struct {
	cpu string
	os  string
}

func DecodeHINFO(raw []byte) (*HINFO, error) {
	if err := packet.CheckNil(raw); err != nil {
		return nil, err
	}
	cpu, n, err := readCharacterString(raw, 0)
	if err != nil {
		return nil, err
	}
	os, _, err := readCharacterString(raw, n)
	if err != nil {
		return nil, err
	}
	return &HINFO{cpu: cpu, os: os}, nil
}

func (r *HINFO) Type() RecordType { return TypeHINFO }
func (r *HINFO) CPU() string      { return r.cpu }
func (r *HINFO) OS() string       { return r.os }
func (r *HINFO) Len() int         { return 2 + len(r.cpu) + len(r.os) }
func (r *HINFO) dnsRData()        {}

func (r *HINFO) RawData() []byte {
	raw := make([]byte, 0, r.Len())
	raw = appendCharacterString(raw, r.cpu)
	return appendCharacterString(raw, r.os)
}

func (r *HINFO) String() string {
	return fmt.Sprintf("[CPU: %q] [OS: %q]", r.cpu, r.os)
}

func (r *HINFO) Builder() *HINFOBuilder { return &HINFOBuilder{CPU: r.cpu, OS: r.os} }

type HINFOBuilder struct {
	CPU string
	OS  string
}

func (b *HINFOBuilder) Build() (*HINFO, error) {
	for _, s := range []string{b.CPU, b.OS} {
		if err := checkCharacterString(s); err != nil {
			return nil, err
		}
	}
	return &HINFO{cpu: b.CPU, os: b.OS}, nil
}

// TXT holds one or more character-strings.
type TXT struct {
	texts []string
}

func DecodeTXT(raw []byte) (*TXT, error) {
	if err := packet.CheckNil(raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, packet.TooShort(raw, "a DNS TXT RDATA", 1)
	}
	r := &TXT{}
	for off := 0; off < len(raw); {
		s, n, err := readCharacterString(raw, off)
		if err != nil {
			return nil, err
		}
		r.texts = append(r.texts, s)
		off += n
	}
	return r, nil
}

func (r *TXT) Type() RecordType { return TypeTXT }
func (r *TXT) Texts() []string  { return slices.Clone(r.texts) }
func (r *TXT) dnsRData()        {}

func (r *TXT) Len() int {
	size := 0
	for _, s := range r.texts {
		size += 1 + len(s)
	}
	return size
}

func (r *TXT) RawData() []byte {
	raw := make([]byte, 0, r.Len())
	for _, s := range r.texts {
		raw = appendCharacterString(raw, s)
	}
	return raw
}

func (r *TXT) String() string {
	quoted := make([]string, len(r.texts))
	for i, s := range r.texts {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[TXT-DATA: " + strings.Join(quoted, " ") + "]"
}

func (r *TXT) Builder() *TXTBuilder { return &TXTBuilder{Texts: slices.Clone(r.texts)} }

type TXTBuilder struct {
	Texts []string
}

func (b *TXTBuilder) Build() (*TXT, error) {
	if len(b.Texts) == 0 {
		return nil, packet.Invalidf("TXT RDATA needs at least one character-string")
	}
	for _, s := range b.Texts {
		if err := checkCharacterString(s); err != nil {
			return nil, err
		}
	}
	return &TXT{texts: slices.Clone(b.Texts)}, nil
}
