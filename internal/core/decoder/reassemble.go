package decoder

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"time"

	"firestige.xyz/otus-dissect/pkg/wire"
)

// ErrFragmentPending is returned for a fragment that was buffered but did
// not complete its datagram.
var ErrFragmentPending = errors.New("waiting for more fragments")

const (
	defaultReassemblyTimeout = 30 * time.Second
	maxDatagramLen           = 0xFFFF
)

// fragmentKey identifies the fragments of one IPv4 datagram.
type fragmentKey struct {
	src, dst netip.Addr
	id       uint16
	protocol uint8
}

type fragment struct {
	offset int
	data   []byte
}

type fragmentBuffer struct {
	header    []byte // header of the offset 0 fragment, options included
	fragments []fragment
	totalSize int // 0 until the last fragment arrives
	firstSeen time.Time
}

// ipv4Reassembler collects IPv4 fragments keyed by source, destination,
// identification and protocol. Buffers expire timeout after their first
// fragment, measured in capture time.
type ipv4Reassembler struct {
	buffers map[fragmentKey]*fragmentBuffer
	timeout time.Duration
}

func newIPv4Reassembler(timeout time.Duration) *ipv4Reassembler {
	if timeout <= 0 {
		timeout = defaultReassemblyTimeout
	}
	return &ipv4Reassembler{
		buffers: make(map[fragmentKey]*fragmentBuffer),
		timeout: timeout,
	}
}

// add buffers one fragment. When it completes a datagram the rebuilt,
// unfragmented IPv4 packet is returned.
func (r *ipv4Reassembler) add(data []byte, ts time.Time) ([]byte, error) {
	if len(data) < ipv4HeaderMinLen {
		return nil, fmt.Errorf("fragment: %w", wire.ErrBufferTooShort)
	}
	headerLen := int(data[0]&ihlMask) * 4
	totalLen, _ := wire.Uint16(data, 2)
	if headerLen < ipv4HeaderMinLen || int(totalLen) < headerLen || len(data) < int(totalLen) {
		return nil, fmt.Errorf("fragment: %w", wire.ErrBufferTooShort)
	}
	flags, _ := wire.Uint16(data, 6)
	id, _ := wire.Uint16(data, 4)
	key := fragmentKey{id: id, protocol: data[9]}
	key.src, _ = wire.IPv4(data, 12)
	key.dst, _ = wire.IPv4(data, 16)

	r.expire(ts)

	buf, ok := r.buffers[key]
	if !ok {
		buf = &fragmentBuffer{firstSeen: ts}
		r.buffers[key] = buf
	}

	frag := fragment{
		offset: int(flags&fragOffsetMsk) * 8,
		data:   slices.Clone(data[headerLen:totalLen]),
	}
	if frag.offset+len(frag.data) > maxDatagramLen-headerLen {
		delete(r.buffers, key)
		return nil, fmt.Errorf("fragment overflow: offset=%d, len=%d", frag.offset, len(frag.data))
	}
	for _, f := range buf.fragments {
		if f.offset == frag.offset {
			return nil, fmt.Errorf("duplicate fragment at offset %d", frag.offset)
		}
	}
	if frag.offset == 0 {
		buf.header = slices.Clone(data[:headerLen])
	}
	if flags&mfFlag == 0 {
		buf.totalSize = frag.offset + len(frag.data)
	}
	buf.fragments = append(buf.fragments, frag)

	if buf.header == nil || buf.totalSize == 0 || !buf.complete() {
		return nil, ErrFragmentPending
	}
	delete(r.buffers, key)
	return buf.assemble()
}

// complete reports whether the fragments cover [0, totalSize) without gaps.
func (b *fragmentBuffer) complete() bool {
	slices.SortFunc(b.fragments, func(x, y fragment) int { return x.offset - y.offset })
	covered := 0
	for _, f := range b.fragments {
		if f.offset > covered {
			return false
		}
		covered = max(covered, f.offset+len(f.data))
	}
	return covered >= b.totalSize
}

func (b *fragmentBuffer) assemble() ([]byte, error) {
	headerLen := len(b.header)
	out := make([]byte, headerLen+b.totalSize)
	copy(out, b.header)
	for _, f := range b.fragments {
		if f.offset+len(f.data) > b.totalSize {
			return nil, fmt.Errorf("fragment overflow: offset=%d, len=%d, total=%d", f.offset, len(f.data), b.totalSize)
		}
		copy(out[headerLen+f.offset:], f.data)
	}
	if err := wire.PutUint16(out, 2, uint16(len(out))); err != nil {
		return nil, err
	}
	// Clear MF and the offset, keep DF. The checksum is left stale.
	flags, _ := wire.Uint16(out, 6)
	if err := wire.PutUint16(out, 6, flags&^(mfFlag|fragOffsetMsk)); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ipv4Reassembler) expire(now time.Time) {
	for key, buf := range r.buffers {
		if now.Sub(buf.firstSeen) > r.timeout {
			delete(r.buffers, key)
		}
	}
}

// pending returns the number of incomplete datagrams.
func (r *ipv4Reassembler) pending() int {
	return len(r.buffers)
}
