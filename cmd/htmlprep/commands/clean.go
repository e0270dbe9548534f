package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/htmlprep/internal/logger"
	"github.com/jmylchreest/htmlprep/internal/output"
	"github.com/jmylchreest/htmlprep/internal/settings"
	"github.com/jmylchreest/htmlprep/pkg/cleaner"
	"github.com/jmylchreest/htmlprep/pkg/cleaner/mockup"
	"github.com/jmylchreest/htmlprep/pkg/fetcher"
)

// statsReport is what --stats prints.
type statsReport struct {
	Source    string           `json:"source" yaml:"source"`
	Formatter string           `json:"formatter" yaml:"formatter"`
	Stats     *mockup.Stats    `json:"stats" yaml:"stats"`
	Warnings  []mockup.Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func (r statsReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Source: %s\n", r.Source)
	fmt.Fprintf(&sb, "Formatter: %s\n", r.Formatter)
	sb.WriteString(r.Stats.String())
	for _, w := range r.Warnings {
		fmt.Fprintf(&sb, "Warning: %s\n", w)
	}
	return sb.String()
}

var cleanCmd = &cobra.Command{
	Use:   "clean [file]",
	Short: "Clean and re-indent HTML",
	Long: `Clean HTML from a file, stdin or a URL and print the normalized markup.

List flags take comma-separated values. Every flag can also be set in the
config file or as an HTMLPREP_ environment variable using the config key,
e.g. HTMLPREP_DELETE_SELECTORS="script,style,.cookie-banner".

Examples:
  # From stdin
  curl -s https://example.com | htmlprep clean

  # Keep header and footer, drop tracking attributes
  htmlprep clean page.html --target "header,footer" --delete-attrs "data-track"

  # Only re-indent
  htmlprep clean page.html --raw --stats`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	flags := cleanCmd.Flags()
	def := mockup.DefaultConfig()

	// Input
	flags.StringP("url", "u", "", "fetch the page from this URL instead of a file or stdin")
	flags.String("fetch-mode", string(fetcher.ModeStatic), "fetch mode: static, dynamic, auto")
	flags.String("wait-for", "", "CSS selector to wait for (dynamic fetch mode)")
	flags.Duration("wait", 0, "extra wait after the page is ready (dynamic fetch mode)")
	flags.Duration("timeout", 30*time.Second, "fetch timeout")
	flags.String("user-agent", "", "user agent for fetching")
	flags.String("max-input-size", settings.DefaultMaxInputSize, "max input size (e.g., 500KB, 5MB, 0=unlimited)")

	// Cleaning
	flags.StringP("target", "t", "", "selectors of elements to keep (comma-separated)")
	flags.StringP("delete", "d", strings.Join(def.DeleteSelectors, ","), "selectors of elements to remove (comma-separated)")
	flags.String("delete-attrs", "", "attributes to remove (comma-separated)")
	flags.StringP("absolute-path", "a", "", "base URL prepended to root-relative URLs")
	flags.Bool("convert-xlink", def.ConvertXlink, "replace xlink:href with href on SVG elements")
	flags.Bool("remove-unused-meta", def.RemoveUnusedMeta, "remove meta tags other than charset and viewport")
	flags.Bool("remove-unused-params", def.RemoveUnusedParams, "strip query strings from href and src")
	flags.Bool("remove-unused-comments", def.RemoveUnusedComments, "remove comments")
	flags.Bool("raw", false, "disable removal and normalization passes; only scope, rewrite and re-indent")
	flags.Bool("no-clean", false, "write the input exactly as read or fetched")

	// Formatting
	flags.Int("indent-size", def.IndentSize, "spaces per indentation level")
	flags.String("inline-tags", strings.Join(def.InlineTags, ","), "tags kept inline with surrounding text (comma-separated)")
	flags.String("formatter", "beautify", "formatter: beautify, gohtml")

	// Output
	flags.StringP("output", "o", "", "output file (default: stdout)")
	flags.Bool("stats", false, "print cleaning stats to stderr")
	flags.String("stats-format", string(output.FormatText), "stats format: text, json, yaml")

	// Bind to viper
	bindings := map[string]string{
		settings.KeyTargetSelectors:      "target",
		settings.KeyDeleteSelectors:      "delete",
		settings.KeyDeleteAttrs:          "delete-attrs",
		settings.KeyAbsolutePath:         "absolute-path",
		settings.KeyConvertXlink:         "convert-xlink",
		settings.KeyRemoveUnusedMeta:     "remove-unused-meta",
		settings.KeyRemoveUnusedParams:   "remove-unused-params",
		settings.KeyRemoveUnusedComments: "remove-unused-comments",
		settings.KeyIndentSize:           "indent-size",
		settings.KeyInlineTags:           "inline-tags",
		settings.KeyFormatter:            "formatter",
		settings.KeyMaxInputSize:         "max-input-size",
	}
	for key, flag := range bindings {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
}

func runClean(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s, err := loadSettings()
	if err != nil {
		return err
	}

	if raw, _ := cmd.Flags().GetBool("raw"); raw {
		s.Config = s.Config.Apply(mockup.NewPartial(
			mockup.WithDeleteSelectors(),
			mockup.WithDeleteAttrs(),
			mockup.WithConvertXlink(false),
			mockup.WithRemoveUnusedMeta(false),
			mockup.WithRemoveUnusedParams(false),
			mockup.WithRemoveUnusedComments(false),
		))
		logger.Debug("raw mode, cleaning passes disabled")
	}

	statsFormat := output.FormatText
	showStats, _ := cmd.Flags().GetBool("stats")
	if showStats {
		name, _ := cmd.Flags().GetString("stats-format")
		if statsFormat, err = output.ParseFormat(name); err != nil {
			return err
		}
	}

	html, source, err := readInput(ctx, cmd, args, s)
	if err != nil {
		return err
	}
	logger.Debug("input read", "source", source, "size", humanize.Bytes(uint64(len(html))))

	var cl cleaner.Cleaner = s.NewCleaner()
	if noClean, _ := cmd.Flags().GetBool("no-clean"); noClean {
		cl = cleaner.NewNoop()
	}

	var content string
	var report *statsReport
	if mc, ok := cl.(*mockup.Cleaner); ok {
		result := mc.CleanWithStats(html)
		for _, w := range result.Warnings {
			logger.Warn("clean warning", "phase", w.Phase, "message", w.Message, "context", w.Context)
		}
		content = result.Content
		report = &statsReport{
			Source:    source,
			Formatter: s.Formatter,
			Stats:     result.Stats,
			Warnings:  result.Warnings,
		}
	} else if content, err = cl.Clean(html); err != nil {
		return fmt.Errorf("%s cleaner failed: %w", cl.Name(), err)
	}

	if err := writeContent(cmd, content); err != nil {
		return err
	}

	if showStats {
		if report == nil {
			logger.Info("no stats collected", "cleaner", cl.Name())
			return nil
		}
		if err := output.WriteOne(cmd.ErrOrStderr(), statsFormat, report); err != nil {
			return fmt.Errorf("failed to write stats: %w", err)
		}
	}
	return nil
}

// readInput reads markup from the URL flag, the file argument or stdin,
// in that order of precedence.
func readInput(ctx context.Context, cmd *cobra.Command, args []string, s *settings.Settings) (string, string, error) {
	if targetURL, _ := cmd.Flags().GetString("url"); targetURL != "" {
		html, err := fetchInput(ctx, cmd, targetURL)
		if err != nil {
			return "", "", err
		}
		if err := s.CheckInput(len(html)); err != nil {
			return "", "", err
		}
		return html, targetURL, nil
	}

	var r io.Reader = cmd.InOrStdin()
	source := "stdin"
	if len(args) > 0 {
		f, err := os.Open(args[0]) //#nosec G304 -- CLI tool reads the user-specified input file
		if err != nil {
			return "", "", fmt.Errorf("failed to open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		r, source = f, args[0]
	}

	// Read one byte past the limit so oversize input is detected
	if s.MaxInputSize > 0 {
		r = io.LimitReader(r, int64(s.MaxInputSize)+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", source, err)
	}
	if err := s.CheckInput(len(data)); err != nil {
		return "", "", fmt.Errorf("%s: %w", source, err)
	}
	return string(data), source, nil
}

func fetchInput(ctx context.Context, cmd *cobra.Command, targetURL string) (string, error) {
	flags := cmd.Flags()
	mode, _ := flags.GetString("fetch-mode")
	timeout, _ := flags.GetDuration("timeout")
	userAgent, _ := flags.GetString("user-agent")
	waitFor, _ := flags.GetString("wait-for")
	wait, _ := flags.GetDuration("wait")

	f, err := fetcher.New(fetcher.Mode(mode), fetcher.Config{
		UserAgent: userAgent,
		Timeout:   timeout,
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	logger.Info("fetching", "url", targetURL, "mode", f.Type())
	content, err := f.Fetch(ctx, targetURL, fetcher.Options{
		WaitForSelector: waitFor,
		WaitDuration:    wait,
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", targetURL, err)
	}
	logger.Debug("fetched",
		"url", content.URL,
		"status", content.StatusCode,
		"title", content.Title,
		"size", humanize.Bytes(uint64(len(content.HTML))))
	return content.HTML, nil
}

// writeContent writes to the --output file, or to stdout with a final
// newline.
func writeContent(cmd *cobra.Command, content string) error {
	outPath, _ := cmd.Flags().GetString("output")
	if outPath == "" {
		out := content
		if out != "" && !strings.HasSuffix(out, "\n") {
			out += "\n"
		}
		_, err := io.WriteString(cmd.OutOrStdout(), out)
		return err
	}

	//#nosec G306 -- output is a user-facing HTML file
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info("output written", "path", outPath, "size", humanize.Bytes(uint64(len(content))))
	return nil
}
