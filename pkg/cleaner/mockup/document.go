package mockup

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Shape records which wrapper tags appeared in the original text.
// The parsed tree always has html, head and body, so these are taken from
// the source string instead.
type Shape struct {
	HasHTML bool `json:"has_html"`
	HasHead bool `json:"has_head"`
	HasBody bool `json:"has_body"`
}

var (
	htmlTagRegex = regexp.MustCompile(`(?i)<html[\s>]`)
	headTagRegex = regexp.MustCompile(`(?i)<head[\s>]`)
	bodyTagRegex = regexp.MustCompile(`(?i)<body[\s>]`)
)

// DetectShape reports which wrapper tags are present in raw.
func DetectShape(raw string) Shape {
	return Shape{
		HasHTML: htmlTagRegex.MatchString(raw),
		HasHead: headTagRegex.MatchString(raw),
		HasBody: bodyTagRegex.MatchString(raw),
	}
}

// load parses raw into a document. Parsing follows the HTML5 tree
// construction rules with scripting disabled, the way a DOMParser document
// is built, so noscript content is parsed as markup.
func load(raw string) (*goquery.Document, Shape, error) {
	shape := DetectShape(raw)
	root, err := html.ParseWithOptions(strings.NewReader(raw), html.ParseOptionEnableScripting(false))
	if err != nil {
		return nil, shape, err
	}
	return goquery.NewDocumentFromNode(root), shape, nil
}

// documentElement returns the root <html> element.
func documentElement(doc *goquery.Document) *html.Node {
	for _, n := range doc.Nodes {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				return c
			}
		}
	}
	return nil
}

// childElement returns the first direct child element of n named tag.
func childElement(n *html.Node, tag string) *html.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag && c.Namespace == "" {
			return c
		}
	}
	return nil
}

func headElement(doc *goquery.Document) *html.Node {
	return childElement(documentElement(doc), "head")
}

func bodyElement(doc *goquery.Document) *html.Node {
	return childElement(documentElement(doc), "body")
}

// splitQualified splits "xlink:href" into ("xlink", "href").
// Names without a prefix have an empty namespace.
func splitQualified(name string) (string, string) {
	if i := strings.IndexByte(name, ':'); i > 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}

// qualifiedName is the serialized name of an attribute.
func qualifiedName(a html.Attribute) string {
	if a.Namespace != "" {
		return a.Namespace + ":" + a.Key
	}
	return a.Key
}

// attrIndex finds an attribute by qualified name. Attributes the parser
// kept unadjusted (e.g. "xlink:href" outside foreign content) are stored
// with the colon in the key and match as well.
func attrIndex(n *html.Node, name string) int {
	for i, a := range n.Attr {
		if qualifiedName(a) == name {
			return i
		}
	}
	return -1
}

func getAttr(n *html.Node, name string) (string, bool) {
	if i := attrIndex(n, name); i >= 0 {
		return n.Attr[i].Val, true
	}
	return "", false
}

func hasAttr(n *html.Node, name string) bool {
	return attrIndex(n, name) >= 0
}

func setAttr(n *html.Node, name, val string) {
	if i := attrIndex(n, name); i >= 0 {
		n.Attr[i].Val = val
		return
	}
	ns, key := splitQualified(name)
	if ns != "xlink" && ns != "xml" && ns != "xmlns" {
		ns, key = "", name
	}
	n.Attr = append(n.Attr, html.Attribute{Namespace: ns, Key: key, Val: val})
}

// removeAttr deletes an attribute by qualified name. Removing an absent
// attribute is a no-op.
func removeAttr(n *html.Node, name string) bool {
	i := attrIndex(n, name)
	if i < 0 {
		return false
	}
	n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
	return true
}

// textContent concatenates the text node children of n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(c.Data)
			case html.ElementNode:
				walk(c)
			}
		}
	}
	walk(n)
	return sb.String()
}

// setTextContent replaces the children of n with a single text node.
func setTextContent(n *html.Node, text string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}
