package htmlfmt

import (
	"math"
	"strings"
	"sync"

	"github.com/yosssi/gohtml"
)

// gohtmlIndent is the indentation unit gohtml writes.
const gohtmlIndent = 2

// gohtml reads its inline settings from package variables, so every Format
// call holds gohtmlMu while they are swapped in.
var gohtmlMu sync.Mutex

// Gohtml formats with github.com/yosssi/gohtml and rescales its fixed
// two-space indentation to the requested size. Options.InlineTags are
// condensed onto the surrounding line.
type Gohtml struct{}

// NewGohtml creates a gohtml-backed formatter.
func NewGohtml() *Gohtml {
	return &Gohtml{}
}

// Name returns the formatter type.
func (g *Gohtml) Name() string {
	return "gohtml"
}

// Format re-indents markup with gohtml.
func (g *Gohtml) Format(markup string, opts Options) string {
	inline := make(map[string]bool, len(opts.InlineTags))
	for _, tag := range opts.InlineTags {
		inline[strings.ToLower(tag)] = true
	}

	formatted := formatGohtml(markup, inline)

	lines := strings.Split(formatted, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.TrimSpace(trimmed) == "" {
			continue
		}
		lead := len(line) - len(trimmed)
		out = append(out, indent(lead/gohtmlIndent, opts.IndentSize)+strings.Repeat(" ", lead%gohtmlIndent)+trimmed)
	}
	return strings.Join(out, "\n")
}

func formatGohtml(markup string, inline map[string]bool) string {
	gohtmlMu.Lock()
	defer gohtmlMu.Unlock()

	prevCondense, prevTags, prevMax := gohtml.Condense, gohtml.InlineTags, gohtml.InlineTagMaxLength
	defer func() {
		gohtml.Condense, gohtml.InlineTags, gohtml.InlineTagMaxLength = prevCondense, prevTags, prevMax
	}()

	gohtml.Condense = true
	gohtml.InlineTags = inline
	// Long start tags (many attributes) stay inline too.
	gohtml.InlineTagMaxLength = math.MaxInt32
	return gohtml.Format(markup)
}
