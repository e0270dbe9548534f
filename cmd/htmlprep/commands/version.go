package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/htmlprep/internal/output"
	"github.com/jmylchreest/htmlprep/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, _ := cmd.Flags().GetString("format")
		format, err := output.ParseFormat(name)
		if err != nil {
			return err
		}
		if format == output.FormatText {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Full())
			return err
		}
		return output.WriteOne(cmd.OutOrStdout(), format, version.Get())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version.String()
	versionCmd.Flags().StringP("format", "f", string(output.FormatText), "output format: text, json, yaml")
}
