package ssh2

import (
	"strings"

	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/wire"
)

// reader walks the fields of a message body. The first error sticks and
// later reads return zero values.
type reader struct {
	raw []byte
	off int
	err error
}

func (r *reader) uint32(field string) uint32 {
	if r.err != nil {
		return 0
	}
	v, err := wire.Uint32(r.raw, r.off)
	if err != nil {
		r.err = packet.WrapIllegal(r.raw, err, "the raw data is too short to read %s at offset %d", field, r.off)
		return 0
	}
	r.off += wire.IntSize
	return v
}

// boolean returns the raw byte of a boolean field. Any non-zero byte reads
// as true, but the byte itself is kept so it re-encodes unchanged.
func (r *reader) boolean(field string) uint8 {
	if r.err != nil {
		return 0
	}
	v, err := wire.Uint8(r.raw, r.off)
	if err != nil {
		r.err = packet.WrapIllegal(r.raw, err, "the raw data is too short to read %s at offset %d", field, r.off)
		return 0
	}
	r.off++
	return v
}

func (r *reader) bytes(field string, n int) []byte {
	if r.err != nil {
		return nil
	}
	v, err := wire.Copy(r.raw, r.off, n)
	if err != nil {
		r.err = packet.WrapIllegal(r.raw, err, "the raw data is too short to read %s at offset %d", field, r.off)
		return nil
	}
	r.off += n
	return v
}

func (r *reader) string(field string) []byte {
	size := r.uint32(field + " length")
	if r.err != nil {
		return nil
	}
	if int64(size) > int64(len(r.raw)-r.off) {
		r.err = packet.WrapIllegal(r.raw, wire.ErrBufferTooShort,
			"the raw data is too short to read %s. %d bytes data is needed", field, size)
		return nil
	}
	return r.bytes(field, int(size))
}

func (r *reader) nameList(field string) []string {
	s := r.string(field)
	if r.err != nil || len(s) == 0 {
		return nil
	}
	return strings.Split(string(s), ",")
}

func appendUint32(dst []byte, v uint32) []byte {
	return append(dst, uint8(v>>24), uint8(v>>16), uint8(v>>8), uint8(v))
}

func booleanByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

func appendString(dst []byte, s []byte) []byte {
	dst = appendUint32(dst, uint32(len(s)))
	return append(dst, s...)
}

func appendNameList(dst []byte, names []string) []byte {
	return appendString(dst, []byte(strings.Join(names, ",")))
}

func stringSize(s []byte) int { return wire.IntSize + len(s) }

func nameListSize(names []string) int {
	return wire.IntSize + len(strings.Join(names, ","))
}

// checkNameList enforces the name-list syntax: every name is non-empty
// and contains no comma.
func checkNameList(field string, names []string) error {
	for _, n := range names {
		if n == "" {
			return packet.Invalidf("%s: empty name", field)
		}
		if strings.Contains(n, ",") {
			return packet.Invalidf("%s: name %q contains a comma", field, n)
		}
	}
	return nil
}
