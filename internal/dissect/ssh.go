package dissect

import (
	"errors"
	"net/netip"

	"github.com/patrickmn/go-cache"

	"firestige.xyz/otus-dissect/internal/core"
	"firestige.xyz/otus-dissect/pkg/ssh2"
	"firestige.xyz/otus-dissect/pkg/wire"
)

// flow is one direction of a TCP connection.
type flow struct {
	src, dst netip.AddrPort
}

func (f flow) key() string {
	return f.src.String() + ">" + f.dst.String()
}

// sshSegment dissects the clear-text binary packets of one TCP segment.
// An identification line is skipped. Once a direction has sent NEWKEYS
// its packets are encrypted and no longer dissected. A segment is assumed
// to start on a packet boundary; a packet continuing in the next segment
// is dropped.
func (d *Dissector) sshSegment(base core.Record, pkt core.DecodedPacket, data []byte) []core.Record {
	f := flow{
		src: netip.AddrPortFrom(pkt.IP.SrcIP, pkt.Transport.SrcPort),
		dst: netip.AddrPortFrom(pkt.IP.DstIP, pkt.Transport.DstPort),
	}
	if len(data) == 0 {
		return nil
	}
	if _, found := d.encrypted.Get(f.key()); found {
		return nil
	}

	if ident, rest, ok := ssh2.SplitIdentification(data); ok {
		base = labeled(base, core.LabelSSHIdent, ident)
		data = rest
	}

	var records []core.Record
	for len(data) > 0 {
		bp, err := ssh2.DecodeBinaryPacket(data)
		if err != nil {
			if !errors.Is(err, wire.ErrBufferTooShort) {
				d.logger.Debug("malformed SSH binary packet", "frame", base.Frame, "error", err)
			}
			break
		}
		msg := bp.Message()
		records = append(records, describe(base, core.FamilySSH2, msg))
		data = data[bp.Len():]

		if _, ok := msg.(*ssh2.NewKeysMessage); ok {
			d.encrypted.Set(f.key(), struct{}{}, cache.DefaultExpiration)
			break
		}
	}
	return records
}
