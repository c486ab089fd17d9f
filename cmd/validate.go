package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"firestige.xyz/otus-dissect/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file without dissecting anything.
Environment overrides (OTUS_DISSECT_*) are applied as they would be at run time.

Examples:
  otus-dissect validate -f config.yml`,
	// Loading is the point of the command; skip the root hook.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(validateConfigFile, cmd.OutOrStdout()); err != nil {
			exitWithError("INVALID", err)
		}
	},
}

var validateConfigFile string

func init() {
	validateCmd.Flags().StringVarP(&validateConfigFile, "file", "f", "",
		"configuration file to validate (required)")
	validateCmd.MarkFlagRequired("file")
}

func runValidate(path string, w io.Writer) error {
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "VALID: families [%s], output %s, log %s/%s\n",
		strings.Join(c.Dissect.Families, " "), c.Output.Format, c.Log.Level, c.Log.Format)
	return nil
}
