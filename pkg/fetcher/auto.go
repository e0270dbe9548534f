package fetcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/htmlprep/internal/logger"
)

// spaMountSelector matches framework mount points that are still empty in
// the server response.
const spaMountSelector = "#root:empty, #app:empty, #__next:empty, #__nuxt:empty, app-root:empty, [ng-app], [v-cloak]"

// minRenderedText is the body text length below which a page with a
// loading message is treated as unrendered.
const minRenderedText = 100

var loadingIndicators = []string{"loading", "please wait", "javascript required", "enable javascript"}

// AutoFetcher tries a static fetch first and retries in a headless browser
// when the markup needs JavaScript to render.
type AutoFetcher struct {
	static  *StaticFetcher
	dynamic *DynamicFetcher
}

// NewAuto creates an auto-detecting fetcher.
func NewAuto(cfg Config) (*AutoFetcher, error) {
	dynamic, err := NewDynamic(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic fetcher: %w", err)
	}
	return &AutoFetcher{
		static:  NewStatic(cfg),
		dynamic: dynamic,
	}, nil
}

// Fetch returns the static response unless it needs rendering.
func (f *AutoFetcher) Fetch(ctx context.Context, url string, opts Options) (Content, error) {
	content, err := f.static.Fetch(ctx, url, opts)
	if err != nil {
		if ctx.Err() != nil {
			return content, err
		}
		logger.Debug("static fetch failed, retrying in browser", "url", url, "error", err)
		return f.dynamic.Fetch(ctx, url, opts)
	}

	if NeedsJavaScript(content.HTML) {
		logger.Debug("page needs rendering, retrying in browser", "url", url)
		return f.dynamic.Fetch(ctx, url, opts)
	}
	return content, nil
}

// NeedsJavaScript reports whether markup looks like it is rendered client
// side: an empty framework mount point, a near-empty body showing a
// loading message, or a noscript warning.
func NeedsJavaScript(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}

	if doc.Find(spaMountSelector).Length() > 0 {
		return true
	}

	noscript := strings.ToLower(doc.Find("noscript").Text())
	if strings.Contains(noscript, "javascript") {
		return true
	}

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	text := strings.ToLower(strings.Join(strings.Fields(body.Text()), " "))
	if len(text) < minRenderedText {
		for _, indicator := range loadingIndicators {
			if strings.Contains(text, indicator) {
				return true
			}
		}
	}

	return false
}

// Close releases all fetcher resources.
func (f *AutoFetcher) Close() error {
	return f.dynamic.Close()
}

// Type returns the fetcher type.
func (f *AutoFetcher) Type() string {
	return string(ModeAuto)
}
