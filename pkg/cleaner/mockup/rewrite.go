package mockup

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cssURLRegex matches url(...) references to root-relative paths. The
// closing quote is captured separately and checked against the opening one
// in rewriteCSS, since RE2 has no backreferences.
var cssURLRegex = regexp.MustCompile("url\\((['\"`]?)(/[^)'\"]+)(['\"`]?)\\)")

// rewriteURL prefixes root-relative URLs with base. Absolute URLs and
// relative paths pass through.
func rewriteURL(base, url string) string {
	if strings.HasPrefix(url, "/") {
		return base + url
	}
	return url
}

// rewriteCSS rewrites the path of every url(...) reference in css, keeping
// the original quoting. When the quotes of a match differ, scanning resumes
// just after its "url(" so a reference nested in the skipped text is found.
func rewriteCSS(base, css string) (string, int) {
	var sb strings.Builder
	count, pos := 0, 0
	for pos < len(css) {
		loc := cssURLRegex.FindStringSubmatchIndex(css[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		open := css[pos+loc[2] : pos+loc[3]]
		path := css[pos+loc[4] : pos+loc[5]]
		closing := css[pos+loc[6] : pos+loc[7]]

		// A backtick is not excluded from the path class, so a backtick
		// quote ends up at the tail of the path.
		if open == "`" && closing == "" && strings.HasSuffix(path, "`") {
			path, closing = path[:len(path)-1], "`"
		}
		if open != closing {
			resume := start + len("url(")
			sb.WriteString(css[pos:resume])
			pos = resume
			continue
		}

		sb.WriteString(css[pos:start])
		sb.WriteString("url(" + open + rewriteURL(base, path) + closing + ")")
		count++
		pos = end
	}
	sb.WriteString(css[pos:])
	return sb.String(), count
}

// rewriteSrcset rewrites each candidate path of a srcset list. Only the
// first descriptor after the path is kept.
func rewriteSrcset(base, srcset string) string {
	candidates := strings.Split(srcset, ",")
	for i, candidate := range candidates {
		fields := strings.Fields(candidate)
		var path, descriptor string
		if len(fields) > 0 {
			path = fields[0]
		}
		if len(fields) > 1 {
			descriptor = fields[1]
		}
		candidates[i] = strings.TrimSpace(rewriteURL(base, path) + " " + descriptor)
	}
	return strings.Join(candidates, ", ")
}

// rewriteURLs prefixes root-relative URLs in links, scripts, images,
// stylesheets and inline styles with the configured absolute path.
func (c *Cleaner) rewriteURLs(doc *goquery.Document, result *Result) {
	base := c.config.AbsolutePath

	rewriteAttr := func(selector, attr string) {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			for _, n := range s.Nodes {
				val, ok := getAttr(n, attr)
				if !ok || val == "" {
					continue
				}
				updated := rewriteURL(base, val)
				if updated != val {
					result.Stats.URLsRewritten++
				}
				setAttr(n, attr, updated)
			}
		})
	}

	rewriteAttr("link[href]", "href")
	rewriteAttr("script[src]", "src")

	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			css := textContent(n)
			if css == "" {
				continue
			}
			updated, count := rewriteCSS(base, css)
			result.Stats.URLsRewritten += count
			setTextContent(n, updated)
		}
	})

	doc.Find("[style]").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			style, ok := getAttr(n, "style")
			if !ok || style == "" {
				continue
			}
			updated, count := rewriteCSS(base, style)
			result.Stats.URLsRewritten += count
			setAttr(n, "style", updated)
		}
	})

	rewriteAttr("img[src]", "src")

	for _, selector := range []string{"img[srcset]", "source[srcset]"} {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			for _, n := range s.Nodes {
				srcset, ok := getAttr(n, "srcset")
				if !ok || srcset == "" {
					continue
				}
				updated := rewriteSrcset(base, srcset)
				if updated != srcset {
					result.Stats.URLsRewritten++
				}
				setAttr(n, "srcset", updated)
			}
		})
	}
}
