package mockup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// removeBySelectors removes every element matching each delete selector.
// Selectors run in order against the current tree, so an element removed
// by an earlier selector is no longer seen by later ones.
func (c *Cleaner) removeBySelectors(doc *goquery.Document, result *Result) {
	for _, selector := range c.config.DeleteSelectors {
		selection := doc.Find(selector)
		count := selection.Length()
		if count == 0 {
			continue
		}
		result.Stats.RecordSelectorMatch(selector, count)
		selection.Each(func(_ int, s *goquery.Selection) {
			result.Stats.RecordRemoval(goquery.NodeName(s))
		})
		selection.Remove()
	}
}

// removeAttributes strips the configured attributes. Candidates are found
// with a single combined attribute query. Names are matched in lower case on
// HTML elements and exactly on foreign (SVG, MathML) elements.
func (c *Cleaner) removeAttributes(doc *goquery.Document, result *Result) {
	parts := make([]string, 0, len(c.config.DeleteAttrs))
	for _, attr := range c.config.DeleteAttrs {
		parts = append(parts, "["+attr+"]")
	}

	doc.Find(strings.Join(parts, ",")).Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			for _, attr := range c.config.DeleteAttrs {
				if n.Namespace == "" {
					attr = asciiLower(attr)
				}
				if removeAttr(n, attr) {
					result.Stats.AttributesRemoved++
				}
			}
		}
	})
}

// asciiLower lowercases A-Z only.
func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
