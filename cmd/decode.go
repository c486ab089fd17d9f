package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"firestige.xyz/otus-dissect/internal/core"
	"firestige.xyz/otus-dissect/internal/dissect"
	"firestige.xyz/otus-dissect/internal/sink/console"
	"firestige.xyz/otus-dissect/pkg/wire"
)

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode hex bytes with a unit factory",
	Long: `Decode hex bytes as one unit of the given family and type code.
The result is always printed: known, unknown or illegal with its cause.

Examples:
  otus-dissect decode --family ndp --type 5 --hex "05 01 00 00 00 00 05 dc"
  otus-dissect decode --family dnsrdata --type 1 --hex c0000201 -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := decodeFormat
		if format == "" {
			format = cfg.Output.Format
		}
		return runDecode(decodeFamily, decodeType, decodeHex, format, cmd.OutOrStdout())
	},
}

var (
	decodeFamily string
	decodeType   uint32
	decodeHex    string
	decodeFormat string
)

func init() {
	decodeCmd.Flags().StringVar(&decodeFamily, "family", "", "unit family: ndp, ipv4opt, dnsrdata, ssh2 (required)")
	decodeCmd.Flags().Uint32Var(&decodeType, "type", 0, "option type, RR type or message number")
	decodeCmd.Flags().StringVar(&decodeHex, "hex", "", "unit bytes in hex (required)")
	decodeCmd.Flags().StringVarP(&decodeFormat, "output", "o", "", "output format: text, json, yaml")
	decodeCmd.MarkFlagRequired("family")
	decodeCmd.MarkFlagRequired("hex")
}

func runDecode(family string, code uint32, hexBytes, format string, w io.Writer) error {
	f, err := core.ParseFamily(family)
	if err != nil {
		return err
	}
	raw, err := wire.ParseHex(hexBytes)
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}

	r, err := dissect.Decode(f, code, raw)
	if err != nil {
		return err
	}

	sink, err := console.NewSink(w, format)
	if err != nil {
		return err
	}
	if err := sink.Send(r); err != nil {
		return err
	}
	return sink.Close()
}
