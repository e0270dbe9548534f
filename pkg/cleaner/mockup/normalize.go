package mockup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// convertXlink replaces xlink:href with a plain href on every element in
// the SVG namespace, not only on <svg> itself.
func (c *Cleaner) convertXlink(doc *goquery.Document, result *Result) {
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			if n.Namespace != "svg" {
				continue
			}
			href, ok := getAttr(n, "xlink:href")
			if !ok || href == "" {
				continue
			}
			setAttr(n, "href", href)
			removeAttr(n, "xlink:href")
			result.Stats.XlinksConverted++
		}
	})
}

// removeUnusedMeta drops every <meta> except charset and viewport.
func (c *Cleaner) removeUnusedMeta(doc *goquery.Document, result *Result) {
	selection := doc.Find(`meta:not([charset]):not([name="viewport"])`)
	result.Stats.MetaRemoved += selection.Length()
	selection.Each(func(_ int, _ *goquery.Selection) {
		result.Stats.RecordRemoval("meta")
	})
	selection.Remove()
}

// stripQuery removes the query string from url, keeping any fragment.
func stripQuery(url string) string {
	q := strings.IndexByte(url, '?')
	if q < 0 {
		return url
	}
	if h := strings.IndexByte(url[q:], '#'); h >= 0 {
		return url[:q] + url[q+h:]
	}
	return url[:q]
}

// removeUnusedParams strips query strings from href and src values.
func (c *Cleaner) removeUnusedParams(doc *goquery.Document, result *Result) {
	doc.Find("[href], [src]").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			for _, attr := range []string{"href", "src"} {
				val, ok := getAttr(n, attr)
				if !ok || val == "" {
					continue
				}
				cleaned := stripQuery(val)
				if cleaned != val {
					result.Stats.QueriesStripped++
					setAttr(n, attr, cleaned)
				}
			}
		}
	})
}

// removeComments detaches every comment node in the tree. Comments are
// collected first so the walk never mutates the child list it iterates.
func (c *Cleaner) removeComments(doc *goquery.Document, result *Result) {
	var comments []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.CommentNode {
				comments = append(comments, child)
				continue
			}
			walk(child)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}

	for _, n := range comments {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	result.Stats.CommentsRemoved += len(comments)
}
