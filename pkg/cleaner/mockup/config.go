// Package mockup normalizes captured HTML fragments into clean, re-indented
// markup for static mockups. It runs an ordered sequence of DOM passes
// (scope filtering, removal, URL rewriting, attribute normalization and
// comment stripping) over a single parsed document and pretty-prints the
// result.
package mockup

// Config defines all configuration options for the mockup cleaner.
// A Config must not be modified after it has been handed to a Cleaner.
type Config struct {
	// === Scope ===

	// TargetSelectors reduces the body to clones of the matched elements.
	// Empty means the whole document is processed.
	TargetSelectors []string `json:"target_selectors" yaml:"target_selectors" mapstructure:"target_selectors"`

	// === Removal ===

	// DeleteSelectors removes every element matching any of the selectors.
	DeleteSelectors []string `json:"delete_selectors" yaml:"delete_selectors" mapstructure:"delete_selectors"`

	// DeleteAttrs removes the named attributes from every element.
	DeleteAttrs []string `json:"delete_attrs" yaml:"delete_attrs" mapstructure:"delete_attrs"`

	// === Rewriting ===

	// AbsolutePath is prefixed to root-relative URLs. Empty disables rewriting.
	AbsolutePath string `json:"absolute_path" yaml:"absolute_path" mapstructure:"absolute_path"`

	// ConvertXlink replaces xlink:href with href on SVG elements.
	ConvertXlink bool `json:"convert_xlink" yaml:"convert_xlink" mapstructure:"convert_xlink"`

	// RemoveUnusedMeta removes <meta> tags other than charset and viewport.
	RemoveUnusedMeta bool `json:"remove_unused_meta" yaml:"remove_unused_meta" mapstructure:"remove_unused_meta"`

	// RemoveUnusedParams strips query strings from href and src values.
	RemoveUnusedParams bool `json:"remove_unused_params" yaml:"remove_unused_params" mapstructure:"remove_unused_params"`

	// RemoveUnusedComments strips every comment node.
	RemoveUnusedComments bool `json:"remove_unused_comments" yaml:"remove_unused_comments" mapstructure:"remove_unused_comments"`

	// === Formatting ===

	// IndentSize is the number of spaces per nesting level.
	IndentSize int `json:"indent_size" yaml:"indent_size" mapstructure:"indent_size" validate:"gte=0"`

	// InlineTags are kept on the same line as surrounding text.
	InlineTags []string `json:"inline_tags" yaml:"inline_tags" mapstructure:"inline_tags"`
}

// DefaultConfig returns the default configuration. Every call returns a
// fresh value; slices are never shared between calls.
func DefaultConfig() *Config {
	return &Config{
		TargetSelectors:      []string{},
		DeleteSelectors:      []string{"script", "noscript", "iframe", "style"},
		DeleteAttrs:          []string{},
		AbsolutePath:         "",
		ConvertXlink:         true,
		RemoveUnusedMeta:     true,
		RemoveUnusedParams:   true,
		RemoveUnusedComments: true,
		IndentSize:           2,
		InlineTags:           []string{"span", "strong", "b", "small", "del", "s", "code", "br", "wbr"},
	}
}

// PresetRaw returns a config with every pass disabled. The markup is only
// re-serialized and re-indented.
func PresetRaw() *Config {
	cfg := DefaultConfig()
	cfg.DeleteSelectors = []string{}
	cfg.ConvertXlink = false
	cfg.RemoveUnusedMeta = false
	cfg.RemoveUnusedParams = false
	cfg.RemoveUnusedComments = false
	return cfg
}

// Partial is a configuration where every field is optional.
// Nil fields keep the value of the config it is applied to.
type Partial struct {
	TargetSelectors      *[]string `json:"target_selectors,omitempty" yaml:"target_selectors,omitempty"`
	DeleteSelectors      *[]string `json:"delete_selectors,omitempty" yaml:"delete_selectors,omitempty"`
	DeleteAttrs          *[]string `json:"delete_attrs,omitempty" yaml:"delete_attrs,omitempty"`
	AbsolutePath         *string   `json:"absolute_path,omitempty" yaml:"absolute_path,omitempty"`
	ConvertXlink         *bool     `json:"convert_xlink,omitempty" yaml:"convert_xlink,omitempty"`
	RemoveUnusedMeta     *bool     `json:"remove_unused_meta,omitempty" yaml:"remove_unused_meta,omitempty"`
	RemoveUnusedParams   *bool     `json:"remove_unused_params,omitempty" yaml:"remove_unused_params,omitempty"`
	RemoveUnusedComments *bool     `json:"remove_unused_comments,omitempty" yaml:"remove_unused_comments,omitempty"`
	IndentSize           *int      `json:"indent_size,omitempty" yaml:"indent_size,omitempty"`
	InlineTags           *[]string `json:"inline_tags,omitempty" yaml:"inline_tags,omitempty"`
}

// Apply merges a partial configuration over this one, field by field.
// The receiver is not modified; a new Config is returned.
func (c *Config) Apply(p *Partial) *Config {
	merged := c.clone()
	if p == nil {
		return merged
	}

	if p.TargetSelectors != nil {
		merged.TargetSelectors = copyStrings(*p.TargetSelectors)
	}
	if p.DeleteSelectors != nil {
		merged.DeleteSelectors = copyStrings(*p.DeleteSelectors)
	}
	if p.DeleteAttrs != nil {
		merged.DeleteAttrs = copyStrings(*p.DeleteAttrs)
	}
	if p.AbsolutePath != nil {
		merged.AbsolutePath = *p.AbsolutePath
	}
	if p.ConvertXlink != nil {
		merged.ConvertXlink = *p.ConvertXlink
	}
	if p.RemoveUnusedMeta != nil {
		merged.RemoveUnusedMeta = *p.RemoveUnusedMeta
	}
	if p.RemoveUnusedParams != nil {
		merged.RemoveUnusedParams = *p.RemoveUnusedParams
	}
	if p.RemoveUnusedComments != nil {
		merged.RemoveUnusedComments = *p.RemoveUnusedComments
	}
	if p.IndentSize != nil {
		merged.IndentSize = *p.IndentSize
	}
	if p.InlineTags != nil {
		merged.InlineTags = copyStrings(*p.InlineTags)
	}

	return merged
}

func (c *Config) clone() *Config {
	cp := *c
	cp.TargetSelectors = copyStrings(c.TargetSelectors)
	cp.DeleteSelectors = copyStrings(c.DeleteSelectors)
	cp.DeleteAttrs = copyStrings(c.DeleteAttrs)
	cp.InlineTags = copyStrings(c.InlineTags)
	return &cp
}

func copyStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Option sets one field of a partial configuration.
type Option func(*Partial)

// NewPartial builds a Partial from options.
func NewPartial(opts ...Option) *Partial {
	p := &Partial{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithTargetSelectors sets the scope selectors.
func WithTargetSelectors(selectors ...string) Option {
	return func(p *Partial) {
		p.TargetSelectors = &selectors
	}
}

// WithDeleteSelectors sets the selectors of elements to remove.
func WithDeleteSelectors(selectors ...string) Option {
	return func(p *Partial) {
		p.DeleteSelectors = &selectors
	}
}

// WithDeleteAttrs sets the attributes to remove.
func WithDeleteAttrs(attrs ...string) Option {
	return func(p *Partial) {
		p.DeleteAttrs = &attrs
	}
}

// WithAbsolutePath sets the base prepended to root-relative URLs.
func WithAbsolutePath(base string) Option {
	return func(p *Partial) {
		p.AbsolutePath = &base
	}
}

// WithConvertXlink toggles xlink:href conversion.
func WithConvertXlink(enabled bool) Option {
	return func(p *Partial) {
		p.ConvertXlink = &enabled
	}
}

// WithRemoveUnusedMeta toggles meta pruning.
func WithRemoveUnusedMeta(enabled bool) Option {
	return func(p *Partial) {
		p.RemoveUnusedMeta = &enabled
	}
}

// WithRemoveUnusedParams toggles query string stripping.
func WithRemoveUnusedParams(enabled bool) Option {
	return func(p *Partial) {
		p.RemoveUnusedParams = &enabled
	}
}

// WithRemoveUnusedComments toggles comment stripping.
func WithRemoveUnusedComments(enabled bool) Option {
	return func(p *Partial) {
		p.RemoveUnusedComments = &enabled
	}
}

// WithIndentSize sets the indentation width.
func WithIndentSize(n int) Option {
	return func(p *Partial) {
		p.IndentSize = &n
	}
}

// WithInlineTags sets the tags the formatter keeps inline.
func WithInlineTags(tags ...string) Option {
	return func(p *Partial) {
		p.InlineTags = &tags
	}
}
