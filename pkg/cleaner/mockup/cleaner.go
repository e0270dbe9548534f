package mockup

import (
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/htmlprep/internal/logger"
	"github.com/jmylchreest/htmlprep/pkg/cleaner/htmlfmt"
)

// Cleaner runs the mockup pipeline over HTML input.
// It implements the cleaner.Cleaner interface. A Cleaner holds no
// per-call state, so one instance may be used from many goroutines.
type Cleaner struct {
	config    *Config
	formatter htmlfmt.Formatter
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

// WithFormatter replaces the default beautifier.
func WithFormatter(f htmlfmt.Formatter) CleanerOption {
	return func(c *Cleaner) {
		if f != nil {
			c.formatter = f
		}
	}
}

// New creates a new Cleaner with the given configuration.
// If config is nil, DefaultConfig() is used.
func New(config *Config, opts ...CleanerOption) *Cleaner {
	if config == nil {
		config = DefaultConfig()
	}
	c := &Cleaner{
		config:    config.clone(),
		formatter: htmlfmt.NewBeautifier(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transform cleans html with the default configuration overridden by opts.
func Transform(html string, opts ...Option) string {
	cfg := DefaultConfig().Apply(NewPartial(opts...))
	result, _ := New(cfg).Clean(html)
	return result
}

// Name returns the cleaner name for logging.
func (c *Cleaner) Name() string {
	return "mockup"
}

// Config returns a copy of the cleaner's configuration.
func (c *Cleaner) Config() *Config {
	return c.config.clone()
}

// Clean transforms HTML content according to the configuration.
// This method implements the cleaner.Cleaner interface and never fails.
func (c *Cleaner) Clean(html string) (string, error) {
	return c.CleanWithStats(html).Content, nil
}

// CleanWithStats performs cleaning and returns detailed stats.
func (c *Cleaner) CleanWithStats(html string) *Result {
	startTime := time.Now()
	result := &Result{
		Stats: NewStats(),
	}
	result.Stats.InputBytes = len(html)

	// Parse HTML
	parseStart := time.Now()
	doc, shape, err := load(html)
	result.Stats.ParseDuration = time.Since(parseStart)
	result.Stats.Shape = shape

	if err != nil {
		// Graceful degradation: return original content with warning
		result.Content = html
		result.AddWarning("parse", "HTML parse failed, returning original", err.Error())
		result.Stats.OutputBytes = len(html)
		result.Stats.TotalDuration = time.Since(startTime)
		logger.Warn("mockup parse failed", "error", err)
		return result
	}

	// Transform
	transformStart := time.Now()
	c.transform(doc, result)
	result.Stats.TransformDuration = time.Since(transformStart)

	// Extract and format
	scope := c.extractionScope(shape)
	result.Stats.Scope = scope
	markup := extract(doc, scope)

	formatStart := time.Now()
	result.Content = c.format(markup, result)
	result.Stats.FormatDuration = time.Since(formatStart)

	result.Stats.OutputBytes = len(result.Content)
	result.Stats.TotalDuration = time.Since(startTime)

	logger.Debug("mockup clean complete",
		"input_bytes", result.Stats.InputBytes,
		"output_bytes", result.Stats.OutputBytes,
		"scope", scope,
		"warnings", len(result.Warnings))

	return result
}

// transform applies all configured passes to the document.
// Order matters: every pass sees the tree left by the previous one.
func (c *Cleaner) transform(doc *goquery.Document, result *Result) {
	// 1. Reduce the body to the target elements
	if len(c.config.TargetSelectors) > 0 {
		c.filterScope(doc, result)
		logger.Debug("scope filter applied", "targets", result.Stats.TargetsMatched)
	}

	// 2. Remove elements, then attributes
	if len(c.config.DeleteSelectors) > 0 {
		c.removeBySelectors(doc, result)
		logger.Debug("elements removed", "count", result.Stats.TotalElementsRemoved())
	}
	if len(c.config.DeleteAttrs) > 0 {
		c.removeAttributes(doc, result)
		logger.Debug("attributes removed", "count", result.Stats.AttributesRemoved)
	}

	// 3. Make root-relative URLs absolute
	if c.config.AbsolutePath != "" {
		c.rewriteURLs(doc, result)
		logger.Debug("urls rewritten", "count", result.Stats.URLsRewritten)
	}

	// 4. Attribute and metadata normalization
	if c.config.ConvertXlink {
		c.convertXlink(doc, result)
	}
	if c.config.RemoveUnusedMeta {
		c.removeUnusedMeta(doc, result)
	}
	if c.config.RemoveUnusedParams {
		c.removeUnusedParams(doc, result)
	}

	// 5. Comments last, so content cloned or emptied earlier is covered
	if c.config.RemoveUnusedComments {
		c.removeComments(doc, result)
		logger.Debug("comments removed", "count", result.Stats.CommentsRemoved)
	}
}

// format runs the formatter. A formatter panic must not fail the clean, so
// the unformatted markup is returned instead.
func (c *Cleaner) format(markup string, result *Result) (out string) {
	defer func() {
		if r := recover(); r != nil {
			result.AddWarning("format", "formatter failed, returning unformatted markup", fmt.Sprint(r))
			logger.Warn("mockup formatter failed", "formatter", c.formatter.Name(), "panic", r)
			out = markup
		}
	}()

	return c.formatter.Format(markup, htmlfmt.Options{
		IndentSize: c.config.IndentSize,
		InlineTags: c.config.InlineTags,
	})
}
