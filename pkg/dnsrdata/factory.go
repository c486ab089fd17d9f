package dnsrdata

import (
	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

// NewRData decodes the n bytes of RDATA at buf[off:]. buf is normally the
// whole DNS message. The candidate types are tried in order and the first
// one with a codec decides the format; when none has one the result is an
// *UnknownRData tagged with the first candidate. NewRData never fails:
// decode errors, including a window outside buf, yield an *IllegalRData
// holding whatever bytes the window covers.
func NewRData(buf []byte, off, n int, types ...RecordType) RData {
	var typ RecordType
	if len(types) > 0 {
		typ = types[0]
	}
	if buf == nil {
		return &IllegalRData{typ: typ, cause: packet.CheckNil(nil)}
	}
	raw, err := wire.Slice(buf, off, n)
	if err != nil {
		window := packet.Window(buf, off, n)
		return &IllegalRData{Raw: packet.NewRaw(window), typ: typ, cause: packet.WrapIllegal(window, err, "RDATA window")}
	}

	for _, t := range types {
		if decode, ok := decoderFor(t); ok {
			r, err := decode(raw)
			illegal := func(err error) RData { return &IllegalRData{Raw: packet.NewRaw(raw), typ: t, cause: err} }
			return packet.Fallback(r, err, illegal)
		}
	}
	return &UnknownRData{Raw: packet.NewRaw(raw), typ: typ}
}

// Supported reports whether t has a codec in this package.
func Supported(t RecordType) bool {
	_, ok := decoderFor(t)
	return ok
}

func decoderFor(t RecordType) (packet.DecodeFunc[RData], bool) {
	switch t {
	case TypeA:
		return wrap(DecodeA), true
	case TypeNS:
		return wrap(DecodeNS), true
	case TypeMD:
		return wrap(DecodeMD), true
	case TypeMF:
		return wrap(DecodeMF), true
	case TypeCNAME:
		return wrap(DecodeCNAME), true
	case TypeSOA:
		return wrap(DecodeSOA), true
	case TypeMB:
		return wrap(DecodeMB), true
	case TypeMG:
		return wrap(DecodeMG), true
	case TypeMR:
		return wrap(DecodeMR), true
	case TypeNULL:
		return wrap(DecodeNULL), true
	case TypeWKS:
		return wrap(DecodeWKS), true
	case TypePTR:
		return wrap(DecodePTR), true
	case TypeHINFO:
		return wrap(DecodeHINFO), true
	case TypeMINFO:
		return wrap(DecodeMINFO), true
	case TypeMX:
		return wrap(DecodeMX), true
	case TypeTXT:
		return wrap(DecodeTXT), true
	case TypeAAAA:
		return wrap(DecodeAAAA), true
	}
	return nil, false
}

// wrap keeps a typed nil pointer from becoming a non-nil RData.
func wrap[T RData](decode func([]byte) (T, error)) packet.DecodeFunc[RData] {
	return func(raw []byte) (RData, error) {
		r, err := decode(raw)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}
