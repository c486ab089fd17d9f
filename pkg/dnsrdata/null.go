package dnsrdata

import (
	"bytes"
	"fmt"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

const maxRDataLength = 0xFFFF

// NULL carries up to 65535 bytes of anything.
type NULL struct {
	data []byte
}

func DecodeNULL(raw []byte) (*NULL, error) {
	if err := packet.CheckNil(raw); err != nil {
		return nil, err
	}
	return &NULL{data: bytes.Clone(raw)}, nil
}

func (r *NULL) Type() RecordType { return TypeNULL }
func (r *NULL) Data() []byte     { return bytes.Clone(r.data) }
func (r *NULL) Len() int         { return len(r.data) }
func (r *NULL) RawData() []byte  { return bytes.Clone(r.data) }
func (r *NULL) String() string   { return fmt.Sprintf("[data: 0x%s]", wire.HexString(r.data, "")) }
func (r *NULL) dnsRData()        {}

func (r *NULL) Builder() *NULLBuilder { return &NULLBuilder{Data: bytes.Clone(r.data)} }

type NULLBuilder struct {
	Data []byte
}

func (b *NULLBuilder) Build() (*NULL, error) {
	if len(b.Data) > maxRDataLength {
		return nil, packet.Invalidf("NULL RDATA is longer than %d bytes: %d", maxRDataLength, len(b.Data))
	}
	return &NULL{data: bytes.Clone(b.Data)}, nil
}
