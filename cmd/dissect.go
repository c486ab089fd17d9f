package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"firestige.xyz/otus-dissect/internal/config"
	"firestige.xyz/otus-dissect/internal/core"
	"firestige.xyz/otus-dissect/internal/core/decoder"
	"firestige.xyz/otus-dissect/internal/dissect"
	"firestige.xyz/otus-dissect/internal/filter"
	"firestige.xyz/otus-dissect/internal/metrics"
	"firestige.xyz/otus-dissect/internal/sink/console"
	"firestige.xyz/otus-dissect/internal/source/file"
)

var dissectCmd = &cobra.Command{
	Use:   "dissect",
	Short: "Dissect every unit in a capture file",
	Long: `Read a pcap or pcapng capture and print one record per IPv4 option, ND
option, DNS RDATA and clear-text SSH2 message found in it.

Examples:
  otus-dissect dissect --pcap ra.pcap
  otus-dissect dissect --pcap dns.pcapng -o json -c config.yml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dissectFormat != "" {
			cfg.Output.Format = dissectFormat
		}
		return runDissectFile(cmd.Context(), cfg, dissectPcap, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

var (
	dissectPcap   string
	dissectFormat string
)

func init() {
	dissectCmd.Flags().StringVar(&dissectPcap, "pcap", "", "capture file (required)")
	dissectCmd.Flags().StringVarP(&dissectFormat, "output", "o", "", "output format: text, json, yaml")
	dissectCmd.MarkFlagRequired("pcap")
}

// packetSource is satisfied by file.FileSource and file.Reader.
type packetSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// recordSink is satisfied by console.Sink.
type recordSink interface {
	Send(core.Record) error
	Close() error
}

// summary counts what a run saw.
type summary struct {
	Frames   int
	Filtered int
	Skipped  int
	// Fragments buffered for reassembly. The frame completing a datagram
	// is not counted here.
	Fragments int
	Units     map[core.Variant]int
}

func (s summary) String() string {
	return fmt.Sprintf("frames: %d (filtered %d, skipped %d, fragments %d), units: %d known, %d unknown, %d illegal",
		s.Frames, s.Filtered, s.Skipped, s.Fragments, s.Units[core.VariantKnown], s.Units[core.VariantUnknown], s.Units[core.VariantIllegal])
}

func linkConfig(lt layers.LinkType) (decoder.Config, error) {
	switch lt {
	case layers.LinkTypeEthernet:
		return decoder.Config{Link: decoder.LinkEthernet}, nil
	case layers.LinkTypeRaw, layers.LinkTypeIPv4, layers.LinkTypeIPv6:
		return decoder.Config{Link: decoder.LinkRaw}, nil
	default:
		return decoder.Config{}, fmt.Errorf("%w: link type %s", core.ErrUnsupportedProto, lt)
	}
}

func runDissectFile(ctx context.Context, c *config.GlobalConfig, path string, out, errOut io.Writer) error {
	src, err := file.NewSource(path)
	if err != nil {
		return err
	}
	if err := src.Start(ctx); err != nil {
		return err
	}
	defer src.Stop()

	sink, err := console.NewSink(out, c.Output.Format)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if c.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		if c.Metrics.Listen != "" {
			srv := metrics.NewServer(c.Metrics.Listen, c.Metrics.Path, reg)
			if err := srv.Start(ctx); err != nil {
				return err
			}
			defer srv.Stop(context.Background())
		}
	}

	sum, err := runDissect(ctx, c.Dissect, src, sink, m)
	if err != nil {
		return err
	}
	slog.Info("dissect finished", "file", path, "frames", sum.Frames, "filtered", sum.Filtered, "skipped", sum.Skipped, "fragments", sum.Fragments)
	fmt.Fprintln(errOut, sum)
	return nil
}

// runDissect reads frames from src until EOF, MaxFrames or ctx is done.
// Frames the prefilter drops are counted as filtered, frames the L2-L4
// decoder rejects as skipped and fragments waiting for the rest of their
// datagram as fragments.
func runDissect(ctx context.Context, c config.DissectConfig, src packetSource, sink recordSink, m *metrics.Metrics) (summary, error) {
	sum := summary{Units: make(map[core.Variant]int)}

	dcfg, err := linkConfig(src.LinkType())
	if err != nil {
		return sum, err
	}
	dcfg.Reassemble = c.Reassemble
	dcfg.ReassemblyTimeout = c.ReassemblyTimeout
	dec := decoder.NewStandardDecoder(dcfg)
	var pre *filter.Filter
	if c.Prefilter {
		if pre, err = filter.Compile(dcfg.Link, c); err != nil {
			return sum, err
		}
	}
	d := dissect.New(c, m, slog.Default())

	for c.MaxFrames == 0 || sum.Frames < c.MaxFrames {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		data, ci, err := src.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return sum, fmt.Errorf("failed to read frame %d: %w", sum.Frames+1, err)
		}
		sum.Frames++

		if pre != nil && !pre.Match(data) {
			sum.Filtered++
			if m != nil {
				m.ObserveFrame("filtered")
			}
			continue
		}

		pkt, err := dec.Decode(core.RawPacket{
			Data:       data,
			Timestamp:  ci.Timestamp,
			CaptureLen: uint32(ci.CaptureLength),
			OrigLen:    uint32(ci.Length),
		})
		if errors.Is(err, decoder.ErrFragmentPending) {
			sum.Fragments++
			if m != nil {
				m.ObserveFrame("fragment")
			}
			continue
		}
		if err != nil {
			sum.Skipped++
			if m != nil {
				m.ObserveFrame("skipped")
			}
			slog.Debug("frame skipped", "frame", sum.Frames, "error", err)
			continue
		}
		if m != nil {
			m.ObserveFrame("decoded")
		}

		for _, r := range d.Dissect(sum.Frames, pkt) {
			sum.Units[r.Variant]++
			if err := sink.Send(r); err != nil {
				return sum, fmt.Errorf("failed to write record: %w", err)
			}
		}
	}
	return sum, sink.Close()
}
