// Package dissect finds protocol units inside decoded frames and turns
// them into records: IPv4 options in the IP header, ND options in ICMPv6
// neighbor discovery messages, RDATA in DNS messages and SSH2 transport
// messages in the clear-text phase of SSH connections.
package dissect

import (
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"time"

	"github.com/patrickmn/go-cache"

	"firestige.xyz/otus-dissect/internal/config"
	"firestige.xyz/otus-dissect/internal/core"
	"firestige.xyz/otus-dissect/internal/metrics"
	"firestige.xyz/otus-dissect/pkg/dnsrdata"
	"firestige.xyz/otus-dissect/pkg/ipv4opt"
	"firestige.xyz/otus-dissect/pkg/ndp"
	"firestige.xyz/otus-dissect/pkg/packet"
	"firestige.xyz/otus-dissect/pkg/ssh2"
	"firestige.xyz/otus-dissect/pkg/wire"
)

const (
	defaultFlowTTL = 10 * time.Minute
	defaultCleanup = 1 * time.Minute
)

// Dissector tracks per-flow SSH state. Each Dissect call must finish
// before the next one starts.
type Dissector struct {
	cfg     config.DissectConfig
	metrics *metrics.Metrics
	logger  *slog.Logger

	// flow key → struct{}, for directions that sent NEWKEYS. Their later
	// packets are encrypted.
	encrypted *cache.Cache
}

// New creates a Dissector. m may be nil.
func New(cfg config.DissectConfig, m *metrics.Metrics, logger *slog.Logger) *Dissector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dissector{
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
		encrypted: cache.New(defaultFlowTTL, defaultCleanup),
	}
}

// Dissect returns one record per unit found in pkt, in wire order. frame
// is the 1-based frame number copied into each record.
func (d *Dissector) Dissect(frame int, pkt core.DecodedPacket) []core.Record {
	base := core.Record{
		Frame:     frame,
		Timestamp: pkt.Timestamp,
		SrcIP:     pkt.IP.SrcIP,
		DstIP:     pkt.IP.DstIP,
	}

	var records []core.Record
	if d.cfg.Enabled(core.FamilyIPv4Opt) && len(pkt.IP.Options) > 0 {
		records = append(records, d.ipv4Options(base, pkt.IP.Options)...)
	}

	th := pkt.Transport
	switch th.Protocol {
	case protocolICMPv6:
		if d.cfg.Enabled(core.FamilyNDP) {
			records = append(records, d.ndOptions(base, th.ICMPType, pkt.Payload)...)
		}
	case protocolUDP, protocolTCP:
		base.Labels = core.Labels{
			core.LabelSrcPort: fmt.Sprint(th.SrcPort),
			core.LabelDstPort: fmt.Sprint(th.DstPort),
		}
		if d.cfg.Enabled(core.FamilyDNSRData) && d.isPort(d.cfg.DNSPorts, th) {
			records = append(records, d.dnsMessage(base, pkt.Payload, th.Protocol == protocolTCP)...)
		}
		if d.cfg.Enabled(core.FamilySSH2) && th.Protocol == protocolTCP && d.isPort(d.cfg.SSHPorts, th) {
			records = append(records, d.sshSegment(base, pkt, pkt.Payload)...)
		}
	}

	for i := range records {
		d.observe(&records[i])
	}
	return records
}

func (d *Dissector) isPort(ports []uint16, th core.TransportHeader) bool {
	return slices.Contains(ports, th.SrcPort) || slices.Contains(ports, th.DstPort)
}

func (d *Dissector) observe(r *core.Record) {
	if r.Variant == core.VariantIllegal {
		d.logger.Debug("illegal unit", "frame", r.Frame, "family", r.Family, "type", r.Type, "cause", r.Cause)
	}
	if d.metrics != nil {
		d.metrics.ObserveUnit(string(r.Family), string(r.Variant), r.Length)
	}
}

// Decode runs the factory of family on raw with the given type code, the
// way a dissector would for a unit found on the wire.
func Decode(family core.Family, code uint32, raw []byte) (core.Record, error) {
	var u packet.Unit
	switch family {
	case core.FamilyNDP, core.FamilyIPv4Opt, core.FamilySSH2:
		if code > math.MaxUint8 {
			return core.Record{}, fmt.Errorf("%w: %s type code %d exceeds 255", packet.ErrInvalidArgument, family, code)
		}
	case core.FamilyDNSRData:
		if code > math.MaxUint16 {
			return core.Record{}, fmt.Errorf("%w: %s type code %d exceeds 65535", packet.ErrInvalidArgument, family, code)
		}
	default:
		return core.Record{}, fmt.Errorf("%w: %q", core.ErrUnknownFamily, family)
	}

	switch family {
	case core.FamilyNDP:
		u = ndp.NewOption(raw, ndp.OptionType(code))
	case core.FamilyIPv4Opt:
		u = ipv4opt.NewOption(raw, 0, len(raw), ipv4opt.OptionType(code))
	case core.FamilyDNSRData:
		u = dnsrdata.NewRData(raw, 0, len(raw), dnsrdata.RecordType(code))
	case core.FamilySSH2:
		u = ssh2.NewMessage(raw, ssh2.MessageNumber(code))
	}
	return describe(core.Record{}, family, u), nil
}

// labeled returns r with k=v added to a copy of its labels.
func labeled(r core.Record, k, v string) core.Record {
	r.Labels = maps.Clone(r.Labels)
	if r.Labels == nil {
		r.Labels = core.Labels{}
	}
	r.Labels[k] = v
	return r
}

// describe fills the unit part of a record.
func describe(r core.Record, family core.Family, u packet.Unit) core.Record {
	r.Family = family
	r.Description = u.String()
	r.Length = u.Len()
	r.Raw = wire.HexString(u.RawData(), "")
	r.Variant = core.VariantKnown

	switch v := u.(type) {
	case ndp.Option:
		r.Type, r.TypeName = uint32(v.Type()), v.Type().String()
	case ipv4opt.Option:
		r.Type, r.TypeName = uint32(v.Type()), v.Type().String()
	case dnsrdata.RData:
		r.Type, r.TypeName = uint32(v.Type()), v.Type().String()
	case ssh2.Message:
		r.Type, r.TypeName = uint32(v.Number()), v.Number().String()
	}

	switch u.(type) {
	case *ndp.UnknownOption, *ipv4opt.UnknownOption, *dnsrdata.UnknownRData, *ssh2.UnknownMessage:
		r.Variant = core.VariantUnknown
	}
	if c, ok := u.(interface{ Cause() error }); ok {
		r.Variant = core.VariantIllegal
		if err := c.Cause(); err != nil {
			r.Cause = err.Error()
		}
	}
	return r
}
