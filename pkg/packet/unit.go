// Package packet holds the contract shared by every protocol unit codec:
// the Unit interface, structural and argument errors, read-only type
// registries and the raw payload kept by Unknown and Illegal variants.
package packet

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"reflect"
)

// Unit is one self-contained protocol data unit: an option, header or
// record. RawData always returns a fresh slice of exactly Len bytes.
type Unit interface {
	Len() int
	RawData() []byte
	String() string
}

// Equal reports whether a and b are the same variant with bit-identical
// encodings.
func Equal(a, b Unit) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	return bytes.Equal(a.RawData(), b.RawData())
}

// Hash is an FNV-1a digest of the canonical encoding.
func Hash(u Unit) uint64 {
	h := fnv.New64a()
	h.Write(u.RawData())
	return h.Sum64()
}

// Raw is the verbatim byte payload of a fallback variant.
type Raw struct {
	data []byte
}

// NewRaw copies b.
func NewRaw(b []byte) Raw {
	return Raw{data: bytes.Clone(b)}
}

func (r Raw) Len() int { return len(r.data) }

func (r Raw) RawData() []byte { return bytes.Clone(r.data) }

// Window returns a copy of buf[off:off+n], clipped to the bounds of buf.
// Factories use it so fallback variants can keep whatever bytes exist.
func Window(buf []byte, off, n int) []byte {
	if buf == nil {
		return nil
	}
	if off < 0 {
		off = 0
	}
	if off > len(buf) {
		off = len(buf)
	}
	end := off + n
	if n < 0 || end > len(buf) || end < off {
		end = len(buf)
	}
	return bytes.Clone(buf[off:end])
}

// Named formats a numeric code with its symbolic name, "5 (MTU)".
func Named[T ~uint8 | ~uint16 | ~uint32](v T, names map[T]string) string {
	if n, ok := names[v]; ok {
		return fmt.Sprintf("%d (%s)", v, n)
	}
	return fmt.Sprintf("%d (unknown)", v)
}
