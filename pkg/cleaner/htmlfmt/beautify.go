package htmlfmt

import (
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// voidTags never have children.
var voidTags = map[string]bool{
	"area": true, "base": true, "basefont": true, "bgsound": true,
	"br": true, "col": true, "embed": true, "frame": true,
	"hr": true, "img": true, "input": true, "keygen": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// verbatimTags keep their content untouched.
var verbatimTags = map[string]bool{
	"pre": true, "textarea": true,
}

// codeTags hold stylesheet or script text that is re-indented line by line.
var codeTags = map[string]bool{
	"script": true, "style": true,
}

var whitespaceRegex = regexp.MustCompile(`[ \t\n\r\f]+`)

type nodeKind int

const (
	elementKind nodeKind = iota
	textKind
	commentKind
	doctypeKind
	strayKind
)

// node is a lightweight token tree. Unlike a parsed DOM it adds no
// implied elements, so the markup is reproduced exactly.
type node struct {
	kind     nodeKind
	name     string
	raw      string // start tag, text, comment, doctype or stray end tag
	end      string // raw end tag, empty when the element was never closed
	inner    string // raw content of verbatim elements
	children []*node
}

// Beautifier indents block elements one per line and keeps inline elements
// and text flowing on the line of their parent.
type Beautifier struct{}

// NewBeautifier creates the default formatter.
func NewBeautifier() *Beautifier {
	return &Beautifier{}
}

// Name returns the formatter type.
func (b *Beautifier) Name() string {
	return "beautify"
}

// Format re-indents markup. The result has no blank lines and no trailing
// newline.
func (b *Beautifier) Format(markup string, opts Options) string {
	root := tokenize(markup)

	inline := make(map[string]bool, len(opts.InlineTags))
	for _, tag := range opts.InlineTags {
		inline[strings.ToLower(strings.TrimSpace(tag))] = true
	}

	r := &renderer{size: opts.IndentSize, inline: inline}
	r.children(root.children, 0)
	return strings.Join(r.lines, "\n")
}

// tokenize builds a node tree from markup. End tags close the nearest open
// element of the same name; unmatched end tags are kept as stray tokens.
func tokenize(markup string) *node {
	root := &node{kind: elementKind}
	stack := []*node{root}
	z := html.NewTokenizer(strings.NewReader(markup))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				// Flush whatever the tokenizer could not consume.
				if rest := string(z.Raw()); rest != "" {
					top := stack[len(stack)-1]
					top.children = append(top.children, &node{kind: textKind, raw: rest})
				}
			}
			break
		}

		raw := string(z.Raw())
		top := stack[len(stack)-1]

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			n := &node{kind: elementKind, name: string(name), raw: raw}
			top.children = append(top.children, n)
			if tt == html.SelfClosingTagToken || voidTags[n.name] {
				continue
			}
			if verbatimTags[n.name] {
				n.inner, n.end = captureVerbatim(z, n.name)
				continue
			}
			stack = append(stack, n)

		case html.EndTagToken:
			name, _ := z.TagName()
			closed := false
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].name == string(name) {
					stack[i].end = raw
					stack = stack[:i]
					closed = true
					break
				}
			}
			if !closed {
				top.children = append(top.children, &node{kind: strayKind, raw: raw})
			}

		case html.TextToken:
			top.children = append(top.children, &node{kind: textKind, raw: raw})

		case html.CommentToken:
			top.children = append(top.children, &node{kind: commentKind, raw: raw})

		case html.DoctypeToken:
			top.children = append(top.children, &node{kind: doctypeKind, raw: raw})
		}
	}

	return root
}

// captureVerbatim collects the raw content of a pre or textarea element up
// to its matching end tag.
func captureVerbatim(z *html.Tokenizer, name string) (string, string) {
	var sb strings.Builder
	depth := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return sb.String(), ""
		}
		raw := string(z.Raw())
		if tt == html.StartTagToken || tt == html.EndTagToken {
			tag, _ := z.TagName()
			if string(tag) == name {
				if tt == html.StartTagToken {
					depth++
				} else if depth == 0 {
					return sb.String(), raw
				} else {
					depth--
				}
			}
		}
		sb.WriteString(raw)
	}
}

type renderer struct {
	size   int
	inline map[string]bool
	lines  []string
}

func (r *renderer) emit(depth int, line string) {
	r.lines = append(r.lines, indent(depth, r.size)+line)
}

// isInline reports whether n flows with the surrounding text.
func (r *renderer) isInline(n *node) bool {
	switch n.kind {
	case textKind, strayKind:
		return true
	case elementKind:
		return r.inline[n.name] && !r.hasBlock(n)
	default:
		return false
	}
}

// hasBlock reports whether any child of n needs its own line.
func (r *renderer) hasBlock(n *node) bool {
	for _, c := range n.children {
		if !r.isInline(c) {
			return true
		}
	}
	return false
}

// children renders a child list. Consecutive inline nodes are joined on a
// single line; block nodes get lines of their own.
func (r *renderer) children(nodes []*node, depth int) {
	var run strings.Builder
	flush := func() {
		if line := strings.TrimSpace(run.String()); line != "" {
			r.emit(depth, line)
		}
		run.Reset()
	}

	for _, n := range nodes {
		if r.isInline(n) {
			run.WriteString(r.flow(n))
			continue
		}
		flush()
		r.block(n, depth)
	}
	flush()
}

// flow renders an inline node with collapsed whitespace.
func (r *renderer) flow(n *node) string {
	switch n.kind {
	case textKind:
		return whitespaceRegex.ReplaceAllString(n.raw, " ")
	case elementKind:
		if verbatimTags[n.name] {
			return n.raw + n.inner + n.end
		}
		var sb strings.Builder
		sb.WriteString(n.raw)
		for _, c := range n.children {
			sb.WriteString(r.flow(c))
		}
		sb.WriteString(n.end)
		return sb.String()
	default:
		return n.raw
	}
}

func (r *renderer) block(n *node, depth int) {
	if n.kind != elementKind {
		r.emit(depth, strings.TrimSpace(n.raw))
		return
	}

	switch {
	case verbatimTags[n.name]:
		r.emit(depth, n.raw+n.inner+n.end)

	case codeTags[n.name]:
		r.code(n, depth)

	case !r.hasBlock(n):
		var sb strings.Builder
		for _, c := range n.children {
			sb.WriteString(r.flow(c))
		}
		r.emit(depth, n.raw+strings.TrimSpace(sb.String())+n.end)

	default:
		r.emit(depth, n.raw)
		r.children(n.children, depth+1)
		if n.end != "" {
			r.emit(depth, n.end)
		}
	}
}

// code re-indents script and style bodies, keeping their relative
// indentation and dropping blank lines.
func (r *renderer) code(n *node, depth int) {
	var sb strings.Builder
	for _, c := range n.children {
		sb.WriteString(c.raw)
	}

	var lines []string
	for _, line := range strings.Split(sb.String(), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		r.emit(depth, n.raw+n.end)
		return
	}

	common := -1
	for _, line := range lines {
		lead := len(line) - len(strings.TrimLeft(line, " \t"))
		if common < 0 || lead < common {
			common = lead
		}
	}

	r.emit(depth, n.raw)
	for _, line := range lines {
		r.emit(depth+1, line[common:])
	}
	if n.end != "" {
		r.emit(depth, n.end)
	}
}
