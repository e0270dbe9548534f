// Package commands implements the CLI commands for htmlprep.
package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/htmlprep/internal/logger"
	"github.com/jmylchreest/htmlprep/internal/settings"
)

var rootCmd = &cobra.Command{
	Use:   "htmlprep",
	Short: "Normalize captured HTML into clean, indented mockup markup",
	Long: `htmlprep turns HTML captured from a live page (a file, stdin or a URL)
into clean markup for static mockups.

It scopes the document to the elements you want, strips scripts and other
noise, makes root-relative URLs absolute, normalizes SVG and metadata,
and re-indents the result.

Examples:
  # Clean a saved page
  htmlprep clean page.html -o mockup.html

  # Keep only the hero section of a live page, with absolute asset URLs
  htmlprep clean --url "https://example.com" --target ".hero" \
      --absolute-path "https://example.com"

  # Capture a JavaScript-rendered page
  htmlprep clean --url "https://example.com/app" --fetch-mode dynamic \
      --wait-for "#root > *"`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $HOME/.htmlprep.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolP("quiet", "q", false, "only log errors")
	flags.Bool("log-json", false, "log as JSON")

	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
	_ = viper.BindPFlag("quiet", flags.Lookup("quiet"))
	_ = viper.BindPFlag("log_json", flags.Lookup("log-json"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".htmlprep")
		viper.SetConfigType("yaml")
	}

	// Environment variables, e.g. HTMLPREP_DELETE_SELECTORS
	viper.SetEnvPrefix("HTMLPREP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	settings.SetDefaults(viper.GetViper())

	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		logger.Debug("config file loaded", "path", viper.ConfigFileUsed())
	case errors.As(err, &notFound):
	default:
		logger.Warn("failed to read config file", "error", err)
	}
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		logError("%v", err)
		return err
	}
	return nil
}

// logError prints an error message to stderr.
func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// loadSettings resolves the merged configuration and logs every value that
// had to be corrected.
func loadSettings() (*settings.Settings, error) {
	s, err := settings.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	for _, w := range s.Warnings {
		logger.Warn("config value ignored", "detail", w)
	}
	return s, nil
}
