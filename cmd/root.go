// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"firestige.xyz/otus-dissect/internal/config"
	"firestige.xyz/otus-dissect/internal/log"
)

var (
	// Global flags
	configFile string

	// Loaded by the root PersistentPreRunE
	cfg       *config.GlobalConfig
	logCloser io.Closer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "otus-dissect",
	Short: "Otus dissect - decode and build IPv4 options, ND options, DNS RDATA and SSH2 messages",
	Long: `otus-dissect decodes and builds protocol units: IPv4 header options, IPv6
neighbor discovery options, DNS resource record data and SSH2 transport
layer messages.

Every decode yields a value: a known unit, an unknown unit kept as raw
bytes, or an illegal unit carrying the reason it was rejected.

Commands:
  - decode:   run one factory on hex bytes
  - encode:   build an ND option from field values
  - dissect:  find every unit in a pcap file`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		closer, err := log.Init(loaded.Log)
		if err != nil {
			return err
		}
		cfg, logCloser = loaded, closer
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logCloser != nil {
			return logCloser.Close()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (defaults and OTUS_DISSECT_* env when empty)")

	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(dissectCmd)
	rootCmd.AddCommand(validateCmd)
}

// exitWithError prints error message and exits with code 1
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
