package dnsrdata

import (
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
)

// nameRData is the layout shared by the record types whose RDATA is a
// single domain name.
type nameRData struct {
	typ  RecordType
	name *DomainName
}

func decodeNameRData(raw []byte, typ RecordType) (nameRData, error) {
	name, err := DecodeDomainName(raw, 0)
	if err != nil {
		return nameRData{}, err
	}
	if err := checkConsumed(raw, name.Len(), "the "+typ.field()); err != nil {
		return nameRData{}, err
	}
	return nameRData{typ: typ, name: name}, nil
}

func (r *nameRData) Type() RecordType  { return r.typ }
func (r *nameRData) Name() *DomainName { return r.name }
func (r *nameRData) Len() int          { return r.name.Len() }
func (r *nameRData) RawData() []byte   { return r.name.RawData() }
func (r *nameRData) String() string    { return fmt.Sprintf("[%s: %s]", r.typ.field(), r.name) }
func (r *nameRData) dnsRData()         {}

func (t RecordType) field() string {
	switch t {
	case TypeNS:
		return "NSDNAME"
	case TypeMD, TypeMF, TypeMB:
		return "MADNAME"
	case TypeCNAME:
		return "CNAME"
	case TypeMG:
		return "MGMNAME"
	case TypeMR:
		return "NEWNAME"
	case TypePTR:
		return "PTRDNAME"
	}
	return "name"
}

// NameFields is the staged state of a single-name builder.
type NameFields struct {
	Name *DomainName
}

func (f *NameFields) build(typ RecordType) (nameRData, error) {
	if f.Name == nil {
		return nameRData{}, packet.Invalidf("%s RDATA needs a domain name", recordTypeNames[typ])
	}
	return nameRData{typ: typ, name: f.Name}, nil
}

func (r *nameRData) fields() NameFields { return NameFields{Name: r.name} }

// NS is the RDATA of an NS record.
type NS struct{ nameRData }

func DecodeNS(raw []byte) (*NS, error) {
	d, err := decodeNameRData(raw, TypeNS)
	if err != nil {
		return nil, err
	}
	return &NS{d}, nil
}

func (r *NS) Builder() *NSBuilder { return &NSBuilder{r.fields()} }

type NSBuilder struct{ NameFields }

func (b *NSBuilder) Build() (*NS, error) {
	d, err := b.build(TypeNS)
	if err != nil {
		return nil, err
	}
	return &NS{d}, nil
}

// MD is the obsolete mail destination record.
type MD struct{ nameRData }

func DecodeMD(raw []byte) (*MD, error) {
	d, err := decodeNameRData(raw, TypeMD)
	if err != nil {
		return nil, err
	}
	return &MD{d}, nil
}

func (r *MD) Builder() *MDBuilder { return &MDBuilder{r.fields()} }

type MDBuilder struct{ NameFields }

func (b *MDBuilder) Build() (*MD, error) {
	d, err := b.build(TypeMD)
	if err != nil {
		return nil, err
	}
	return &MD{d}, nil
}

// MF is the obsolete mail forwarder record.
type MF struct{ nameRData }

func DecodeMF(raw []byte) (*MF, error) {
	d, err := decodeNameRData(raw, TypeMF)
	if err != nil {
		return nil, err
	}
	return &MF{d}, nil
}

func (r *MF) Builder() *MFBuilder { return &MFBuilder{r.fields()} }

type MFBuilder struct{ NameFields }

func (b *MFBuilder) Build() (*MF, error) {
	d, err := b.build(TypeMF)
	if err != nil {
		return nil, err
	}
	return &MF{d}, nil
}

type CNAME struct{ nameRData }

func DecodeCNAME(raw []byte) (*CNAME, error) {
	d, err := decodeNameRData(raw, TypeCNAME)
	if err != nil {
		return nil, err
	}
	return &CNAME{d}, nil
}

func (r *CNAME) Builder() *CNAMEBuilder { return &CNAMEBuilder{r.fields()} }

type CNAMEBuilder struct{ NameFields }

func (b *CNAMEBuilder) Build() (*CNAME, error) {
	d, err := b.build(TypeCNAME)
	if err != nil {
		return nil, err
	}
	return &CNAME{d}, nil
}

// MB is the experimental mailbox record.
type MB struct{ nameRData }

func DecodeMB(raw []byte) (*MB, error) {
	d, err := decodeNameRData(raw, TypeMB)
	if err != nil {
		return nil, err
	}
	return &MB{d}, nil
}

func (r *MB) Builder() *MBBuilder { return &MBBuilder{r.fields()} }

type MBBuilder struct{ NameFields }

func (b *MBBuilder) Build() (*MB, error) {
	d, err := b.build(TypeMB)
	if err != nil {
		return nil, err
	}
	return &MB{d}, nil
}

// MG is the experimental mail group member record.
type MG struct{ nameRData }

func DecodeMG(raw []byte) (*MG, error) {
	d, err := decodeNameRData(raw, TypeMG)
	if err != nil {
		return nil, err
	}
	return &MG{d}, nil
}

func (r *MG) Builder() *MGBuilder { return &MGBuilder{r.fields()} }

type MGBuilder struct{ NameFields }

func (b *MGBuilder) Build() (*MG, error) {
	d, err := b.build(TypeMG)
	if err != nil {
		return nil, err
	}
	return &MG{d}, nil
}

// MR is the experimental mail rename record.
type MR struct{ nameRData }

func DecodeMR(raw []byte) (*MR, error) {
	d, err := decodeNameRData(raw, TypeMR)
	if err != nil {
		return nil, err
	}
	return &MR{d}, nil
}

func (r *MR) Builder() *MRBuilder { return &MRBuilder{r.fields()} }

type MRBuilder struct{ NameFields }

func (b *MRBuilder) Build() (*MR, error) {
	d, err := b.build(TypeMR)
	if err != nil {
		return nil, err
	}
	return &MR{d}, nil
}

type PTR struct{ nameRData }

func DecodePTR(raw []byte) (*PTR, error) {
	d, err := decodeNameRData(raw, TypePTR)
	if err != nil {
		return nil, err
	}
	return &PTR{d}, nil
}

func (r *PTR) Builder() *PTRBuilder { return &PTRBuilder{r.fields()} }

type PTRBuilder struct{ NameFields }

func (b *PTRBuilder) Build() (*PTR, error) {
	d, err := b.build(TypePTR)
	if err != nil {
		return nil, err
	}
	return &PTR{d}, nil
}
