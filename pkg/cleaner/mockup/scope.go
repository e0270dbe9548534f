package mockup

import (
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Scope names the part of the document that gets serialized.
type Scope string

const (
	ScopeBodyInner Scope = "body-inner"
	ScopeDocument  Scope = "document"
	ScopeHead      Scope = "head"
	ScopeBody      Scope = "body"
)

// filterScope replaces the body content with deep clones of every element
// matched by the target selectors. Matches are collected selector by
// selector, so an element matched twice (or an ancestor and its
// descendant) is cloned twice.
func (c *Cleaner) filterScope(doc *goquery.Document, result *Result) {
	var clones []*html.Node
	for _, selector := range c.config.TargetSelectors {
		sel := doc.Find(selector)
		result.Stats.RecordSelectorMatch(selector, sel.Length())
		clones = append(clones, sel.Clone().Nodes...)
	}

	body := bodyElement(doc)
	if body == nil {
		return
	}

	bodySel := doc.FindNodes(body)
	bodySel.Empty()
	bodySel.AppendNodes(clones...)

	result.Stats.TargetsMatched = len(clones)
	if len(clones) == 0 {
		result.AddWarning("scope", "target selectors matched nothing, body emptied", "")
	}
}

// extractionScope picks the serialization root. The first matching rule
// wins: targets, then html, head and body tags from the source text.
func (c *Cleaner) extractionScope(shape Shape) Scope {
	switch {
	case len(c.config.TargetSelectors) > 0:
		return ScopeBodyInner
	case shape.HasHTML:
		return ScopeDocument
	case shape.HasHead:
		return ScopeHead
	case shape.HasBody:
		return ScopeBody
	default:
		return ScopeBodyInner
	}
}

// extract serializes the selected scope of the document.
func extract(doc *goquery.Document, scope Scope) string {
	switch scope {
	case ScopeDocument:
		return outerHTML(documentElement(doc))
	case ScopeHead:
		return outerHTML(headElement(doc))
	case ScopeBody:
		return outerHTML(bodyElement(doc))
	default:
		return innerHTML(bodyElement(doc))
	}
}
