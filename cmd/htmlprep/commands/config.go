package commands

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/htmlprep/internal/output"
	"github.com/jmylchreest/htmlprep/pkg/cleaner/mockup"
)

// fileConfig mirrors the layout of .htmlprep.yaml.
type fileConfig struct {
	mockup.Config `yaml:",inline"`
	Formatter     string `json:"formatter" yaml:"formatter"`
	MaxInputSize  string `json:"max_input_size" yaml:"max_input_size"`
}

func flatten(cfg *mockup.Config, formatter string, maxInputSize uint64) fileConfig {
	size := "0"
	if maxInputSize > 0 {
		size = humanize.Bytes(maxInputSize)
	}
	return fileConfig{
		Config:       *cfg,
		Formatter:    formatter,
		MaxInputSize: size,
	}
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration clean would use after merging defaults, the config
file, HTMLPREP_ environment variables and flags. Invalid values appear as
they would be applied, with a warning logged for each correction.

The YAML output can be saved as .htmlprep.yaml and edited.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringP("format", "f", string(output.FormatYAML), "output format: yaml, json")
}

func runConfig(cmd *cobra.Command, _ []string) error {
	name, _ := cmd.Flags().GetString("format")
	format, err := output.ParseFormat(name)
	if err != nil {
		return err
	}
	if format != output.FormatYAML && format != output.FormatJSON {
		return fmt.Errorf("%w: %s (use yaml or json)", output.ErrUnsupportedFormat, name)
	}

	s, err := loadSettings()
	if err != nil {
		return err
	}

	return output.WriteOne(cmd.OutOrStdout(), format, flatten(s.Config, s.Formatter, s.MaxInputSize))
}
