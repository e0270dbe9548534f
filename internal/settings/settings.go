// Package settings resolves CLI configuration (flags, environment and the
// config file, merged by viper) into a validated mockup.Config.
//
// User-typed values are sanitized rather than rejected: invalid selectors
// are dropped, a malformed indent becomes 0 and an invalid absolute path
// disables URL rewriting. Each correction is reported as a warning.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jmylchreest/htmlprep/pkg/cleaner/htmlfmt"
	"github.com/jmylchreest/htmlprep/pkg/cleaner/mockup"
	"github.com/jmylchreest/htmlprep/pkg/selector"
)

// Configuration keys. Cleaner keys match the json names of mockup.Config.
const (
	KeyTargetSelectors      = "target_selectors"
	KeyDeleteSelectors      = "delete_selectors"
	KeyDeleteAttrs          = "delete_attrs"
	KeyAbsolutePath         = "absolute_path"
	KeyConvertXlink         = "convert_xlink"
	KeyRemoveUnusedMeta     = "remove_unused_meta"
	KeyRemoveUnusedParams   = "remove_unused_params"
	KeyRemoveUnusedComments = "remove_unused_comments"
	KeyIndentSize           = "indent_size"
	KeyInlineTags           = "inline_tags"
	KeyFormatter            = "formatter"
	KeyMaxInputSize         = "max_input_size"
)

// DefaultMaxInputSize bounds the input read by the CLI.
const DefaultMaxInputSize = "10MB"

var (
	// ErrEmptyInput is returned when there is no markup to clean.
	ErrEmptyInput = errors.New("empty input")

	// ErrInputTooLarge is returned when the input exceeds max_input_size.
	ErrInputTooLarge = errors.New("input too large")
)

// Settings is the resolved CLI configuration.
type Settings struct {
	Config       *mockup.Config `json:"config" yaml:"config"`
	Formatter    string         `json:"formatter" yaml:"formatter"`
	MaxInputSize uint64         `json:"max_input_size" yaml:"max_input_size"` // 0 means unlimited
	Warnings     []string       `json:"-" yaml:"-"`

	formatter htmlfmt.Formatter
}

// SetDefaults registers the library defaults on v.
func SetDefaults(v *viper.Viper) {
	cfg := mockup.DefaultConfig()
	v.SetDefault(KeyTargetSelectors, cfg.TargetSelectors)
	v.SetDefault(KeyDeleteSelectors, cfg.DeleteSelectors)
	v.SetDefault(KeyDeleteAttrs, cfg.DeleteAttrs)
	v.SetDefault(KeyAbsolutePath, cfg.AbsolutePath)
	v.SetDefault(KeyConvertXlink, cfg.ConvertXlink)
	v.SetDefault(KeyRemoveUnusedMeta, cfg.RemoveUnusedMeta)
	v.SetDefault(KeyRemoveUnusedParams, cfg.RemoveUnusedParams)
	v.SetDefault(KeyRemoveUnusedComments, cfg.RemoveUnusedComments)
	v.SetDefault(KeyIndentSize, cfg.IndentSize)
	v.SetDefault(KeyInlineTags, cfg.InlineTags)
	v.SetDefault(KeyFormatter, htmlfmt.NewBeautifier().Name())
	v.SetDefault(KeyMaxInputSize, DefaultMaxInputSize)
}

// Load resolves the current state of v.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{}

	cfg := &mockup.Config{
		TargetSelectors:      s.selectors(v, KeyTargetSelectors),
		DeleteSelectors:      s.selectors(v, KeyDeleteSelectors),
		DeleteAttrs:          s.attributes(v, KeyDeleteAttrs),
		AbsolutePath:         strings.TrimSpace(v.GetString(KeyAbsolutePath)),
		ConvertXlink:         v.GetBool(KeyConvertXlink),
		RemoveUnusedMeta:     v.GetBool(KeyRemoveUnusedMeta),
		RemoveUnusedParams:   v.GetBool(KeyRemoveUnusedParams),
		RemoveUnusedComments: v.GetBool(KeyRemoveUnusedComments),
		IndentSize:           selector.ParseIndent(v.GetString(KeyIndentSize)),
		InlineTags:           lowerAll(list(v, KeyInlineTags)),
	}
	s.validate(cfg)
	s.Config = cfg

	f, err := htmlfmt.ByName(v.GetString(KeyFormatter))
	if err != nil {
		return nil, err
	}
	s.formatter = f
	s.Formatter = f.Name()

	size, err := ParseSize(v.GetString(KeyMaxInputSize))
	if err != nil {
		return nil, err
	}
	s.MaxInputSize = size

	return s, nil
}

// NewCleaner builds the cleaner described by s.
func (s *Settings) NewCleaner() *mockup.Cleaner {
	return mockup.New(s.Config, mockup.WithFormatter(s.formatter))
}

// CheckInput enforces the input size limit.
func (s *Settings) CheckInput(n int) error {
	if n == 0 {
		return ErrEmptyInput
	}
	if s.MaxInputSize > 0 && uint64(n) > s.MaxInputSize {
		return fmt.Errorf("%w: %s exceeds limit of %s",
			ErrInputTooLarge, humanize.Bytes(uint64(n)), humanize.Bytes(s.MaxInputSize))
	}
	return nil
}

// ParseSize reads a human-readable byte size such as "5MB". Empty and "0"
// mean unlimited.
func ParseSize(value string) (uint64, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", KeyMaxInputSize, value, err)
	}
	return n, nil
}

func (s *Settings) warn(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

// selectors reads a selector list and drops entries that do not parse.
func (s *Settings) selectors(v *viper.Viper, key string) []string {
	raw := list(v, key)
	valid := selector.Sanitize(raw)
	if len(valid) < len(raw) {
		s.warn("%s: dropped %d invalid selector(s)", key, len(raw)-len(valid))
	}
	return valid
}

// attributes reads attribute names; names that cannot appear in an
// attribute selector are dropped.
func (s *Settings) attributes(v *viper.Viper, key string) []string {
	out := []string{}
	for _, name := range list(v, key) {
		if !selector.Valid("[" + name + "]") {
			s.warn("%s: dropped invalid attribute name %q", key, name)
			continue
		}
		out = append(out, name)
	}
	return out
}

// validate checks struct tags on cfg. Fields that fail are reset so the
// corresponding pass is disabled.
func (s *Settings) validate(cfg *mockup.Config) {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return
	}

	for _, fe := range verrs {
		switch fe.StructField() {
		case "IndentSize":
			s.warn("%s: %d is negative, using 0", KeyIndentSize, cfg.IndentSize)
			cfg.IndentSize = 0
		default:
			s.warn("%s: failed %s validation", fe.Field(), fe.Tag())
		}
	}
}

// list reads a list value. Strings (from flags or the environment) are
// split on commas; YAML sequences are used as is. Entries are trimmed and
// empty entries dropped.
func list(v *viper.Viper, key string) []string {
	var raw []string
	switch val := v.Get(key).(type) {
	case nil:
	case string:
		raw = strings.Split(val, ",")
	default:
		raw = v.GetStringSlice(key)
	}

	out := []string{}
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func lowerAll(items []string) []string {
	for i, item := range items {
		items[i] = strings.ToLower(item)
	}
	return items
}
