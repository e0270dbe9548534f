// Package htmlfmt re-indents HTML markup. Formatting only touches
// whitespace between and inside tags; tags, attributes and text are
// written back byte for byte.
package htmlfmt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormatter is returned by ByName for unsupported names.
var ErrUnknownFormatter = errors.New("unknown formatter")

// Options controls indentation.
type Options struct {
	// IndentSize is the number of spaces per nesting level.
	IndentSize int

	// InlineTags never force a line break; they stay on the line of the
	// surrounding text.
	InlineTags []string
}

// Formatter pretty-prints markup. Implementations must be pure and safe
// for concurrent use.
type Formatter interface {
	Format(markup string, opts Options) string

	// Name returns the formatter type for logging/debugging.
	Name() string
}

// Names lists the formatters ByName understands.
func Names() []string {
	return []string{"beautify", "gohtml"}
}

// ByName returns the formatter registered under name. An empty name
// selects the default beautifier.
func ByName(name string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "beautify":
		return NewBeautifier(), nil
	case "gohtml":
		return NewGohtml(), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormatter, name, strings.Join(Names(), ", "))
	}
}

func indent(depth, size int) string {
	if depth <= 0 || size <= 0 {
		return ""
	}
	return strings.Repeat(" ", depth*size)
}
