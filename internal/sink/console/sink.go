// Package console renders dissected records to a writer.
package console

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"firestige.xyz/otus-dissect/internal/core"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Sink writes records in one of the supported formats. JSON is one object
// per line, YAML one document per record.
type Sink struct {
	w      io.Writer
	format string
	json   *json.Encoder
	yaml   *yaml.Encoder
}

func NewSink(w io.Writer, format string) (*Sink, error) {
	s := &Sink{w: w, format: format}
	switch format {
	case FormatText:
	case FormatJSON:
		s.json = json.NewEncoder(w)
	case FormatYAML:
		s.yaml = yaml.NewEncoder(w)
		s.yaml.SetIndent(2)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return s, nil
}

func (s *Sink) Send(r core.Record) error {
	switch s.format {
	case FormatJSON:
		return s.json.Encode(r)
	case FormatYAML:
		return s.yaml.Encode(r)
	default:
		_, err := io.WriteString(s.w, Text(r)+"\n")
		return err
	}
}

// Close flushes the YAML stream.
func (s *Sink) Close() error {
	if s.yaml != nil {
		return s.yaml.Close()
	}
	return nil
}

// Text renders r on one line:
//
//	#3 dnsrdata 5 (CNAME) known 6B [CNAME: web.[pointer: 16]] raw=03776562c010 dns.section=answer
func Text(r core.Record) string {
	var sb strings.Builder
	if r.Frame > 0 {
		fmt.Fprintf(&sb, "#%d ", r.Frame)
	}
	fmt.Fprintf(&sb, "%s %s %s %dB %s raw=%s", r.Family, r.TypeName, r.Variant, r.Length, r.Description, r.Raw)
	if r.Cause != "" {
		fmt.Fprintf(&sb, " cause=%q", r.Cause)
	}
	for _, k := range slices.Sorted(maps.Keys(r.Labels)) {
		fmt.Fprintf(&sb, " %s=%s", k, r.Labels[k])
	}
	return sb.String()
}
