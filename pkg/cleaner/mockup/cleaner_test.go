package mockup

import (
	"strings"
	"sync"
	"testing"

	"github.com/jmylchreest/htmlprep/pkg/cleaner/htmlfmt"
)

// identityFormatter returns the extracted markup unchanged so tests can
// inspect the serialized scope directly.
type identityFormatter struct{}

func (identityFormatter) Format(markup string, _ htmlfmt.Options) string { return markup }
func (identityFormatter) Name() string                                   { return "identity" }

type panicFormatter struct{}

func (panicFormatter) Format(string, htmlfmt.Options) string { panic("boom") }
func (panicFormatter) Name() string                          { return "panic" }

// cleanRaw runs the pipeline without formatting.
func cleanRaw(t *testing.T, html string, opts ...Option) *Result {
	t.Helper()
	cfg := DefaultConfig().Apply(NewPartial(opts...))
	return New(cfg, WithFormatter(identityFormatter{})).CleanWithStats(html)
}

// passesOff disables every optional pass.
func passesOff() []Option {
	return []Option{
		WithDeleteSelectors(),
		WithConvertXlink(false),
		WithRemoveUnusedMeta(false),
		WithRemoveUnusedParams(false),
		WithRemoveUnusedComments(false),
	}
}

func TestNew(t *testing.T) {
	t.Run("nil config uses default", func(t *testing.T) {
		c := New(nil)
		if c == nil {
			t.Fatal("expected non-nil cleaner")
		}
		if c.config == nil {
			t.Fatal("expected non-nil config")
		}
		if c.config.IndentSize != 2 {
			t.Errorf("expected default indent 2, got %d", c.config.IndentSize)
		}
		if c.formatter.Name() != "beautify" {
			t.Errorf("expected beautify formatter, got %s", c.formatter.Name())
		}
	})

	t.Run("config is copied", func(t *testing.T) {
		cfg := DefaultConfig()
		c := New(cfg)
		cfg.DeleteSelectors[0] = "div"
		if c.config.DeleteSelectors[0] != "script" {
			t.Error("cleaner config changed after caller mutated its copy")
		}
	})

	t.Run("nil formatter keeps default", func(t *testing.T) {
		c := New(nil, WithFormatter(nil))
		if c.formatter == nil {
			t.Fatal("expected default formatter")
		}
	})
}

func TestName(t *testing.T) {
	c := New(nil)
	if c.Name() != "mockup" {
		t.Errorf("expected name 'mockup', got '%s'", c.Name())
	}
}

func TestTransform_Examples(t *testing.T) {
	tests := []struct {
		name string
		html string
		opts []Option
		want string
	}{
		{
			name: "comments removed at all depths",
			html: `<div><!--a--><p><!--b--></p></div>`,
			opts: append(passesOff(), WithRemoveUnusedComments(true)),
			want: "<div>\n  <p></p>\n</div>",
		},
		{
			name: "root-relative image rewritten",
			html: `<img src="/a.png">`,
			opts: []Option{WithAbsolutePath("https://x.com"), WithRemoveUnusedParams(true)},
			want: `<img src="https://x.com/a.png">`,
		},
		{
			name: "xlink href converted",
			html: `<svg><use xlink:href="#id"></use></svg>`,
			opts: []Option{WithConvertXlink(true)},
			want: "<svg>\n  <use href=\"#id\"></use>\n</svg>",
		},
		{
			name: "target selector scoping",
			html: `<div><p class="a">X</p><span>Y</span></div>`,
			opts: []Option{WithTargetSelectors("p.a")},
			want: `<p class="a">X</p>`,
		},
		{
			name: "default delete selectors",
			html: `<div><script>x()</script><noscript><img src="/n.png"></noscript><iframe src="/f"></iframe><style>p{}</style><p>Keep</p></div>`,
			want: "<div>\n  <p>Keep</p>\n</div>",
		},
		{
			name: "indent size honoured",
			html: `<ul><li>a</li></ul>`,
			opts: []Option{WithIndentSize(4)},
			want: "<ul>\n    <li>a</li>\n</ul>",
		},
		{
			name: "zero indent",
			html: `<ul><li>a</li></ul>`,
			opts: []Option{WithIndentSize(0)},
			want: "<ul>\n<li>a</li>\n</ul>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Transform(tt.html, tt.opts...)
			if got != tt.want {
				t.Errorf("Transform() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestTransform_Idempotent(t *testing.T) {
	inputs := []string{
		`<div class="x"><p>Hello <b>world</b></p><ul><li>a</li><li>b</li></ul><!-- c --></div>`,
		`<html><head><title>T</title><meta name="description" content="d"></head><body><p>x</p></body></html>`,
		`<body><section><h1>Title</h1><p>Some <code>code</code> and <span>text</span></p></section></body>`,
	}

	for _, in := range inputs {
		once := Transform(in)
		twice := Transform(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\nonce:\n%s\ntwice:\n%s", in, once, twice)
		}
	}
}

func TestTransform_AbsentAttributeRemovalIsNoop(t *testing.T) {
	html := `<div class="a"><p id="b">text</p></div>`
	with := Transform(html, WithDeleteAttrs("style"))
	without := Transform(html, WithDeleteAttrs())
	if with != without {
		t.Errorf("removing an absent attribute changed output:\n%s\nvs\n%s", with, without)
	}
}

func TestTransform_Concurrent(t *testing.T) {
	html := `<div><p class="a">X <b>y</b></p><img src="/i.png?v=1"><!-- c --></div>`
	want := Transform(html, WithAbsolutePath("https://x.com"))

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := Transform(html, WithAbsolutePath("https://x.com")); got != want {
				errs <- got
			}
		}()
	}
	wg.Wait()
	close(errs)

	for got := range errs {
		t.Errorf("concurrent Transform() = %q, want %q", got, want)
	}
}

func TestExtractionScope(t *testing.T) {
	tests := []struct {
		name  string
		html  string
		opts  []Option
		want  string
		scope Scope
	}{
		{
			name:  "no wrapper tags gives body content",
			html:  `<p>Hi</p>`,
			want:  `<p>Hi</p>`,
			scope: ScopeBodyInner,
		},
		{
			name:  "body only gives body outer markup",
			html:  `<body class="b"><p>Hi</p></body>`,
			want:  `<body class="b"><p>Hi</p></body>`,
			scope: ScopeBody,
		},
		{
			name:  "head without html gives head outer markup",
			html:  `<head><title>T</title></head><p>x</p>`,
			want:  `<head><title>T</title></head>`,
			scope: ScopeHead,
		},
		{
			name:  "head wins over body",
			html:  `<head><title>T</title></head><body><p>x</p></body>`,
			want:  `<head><title>T</title></head>`,
			scope: ScopeHead,
		},
		{
			name:  "html gives the document element",
			html:  `<!DOCTYPE html><HTML lang="en"><body>x</body></HTML>`,
			want:  `<html lang="en"><head></head><body>x</body></html>`,
			scope: ScopeDocument,
		},
		{
			name:  "targets win over html",
			html:  `<html><body><p>a</p><div>b</div></body></html>`,
			opts:  []Option{WithTargetSelectors("div")},
			want:  `<div>b</div>`,
			scope: ScopeBodyInner,
		},
		{
			name:  "tag probe needs a delimiter",
			html:  `<header>h</header>`,
			want:  `<header>h</header>`,
			scope: ScopeBodyInner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanRaw(t, tt.html, tt.opts...)
			if result.Content != tt.want {
				t.Errorf("content = %q, want %q", result.Content, tt.want)
			}
			if result.Stats.Scope != tt.scope {
				t.Errorf("scope = %s, want %s", result.Stats.Scope, tt.scope)
			}
		})
	}
}

func TestScopeFilter(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		targets []string
		want    string
	}{
		{
			name:    "selector then document order",
			html:    `<p class="b">1</p><p class="a">2</p><p class="b">3</p>`,
			targets: []string{".a", ".b"},
			want:    `<p class="a">2</p><p class="b">1</p><p class="b">3</p>`,
		},
		{
			name:    "element matched twice is cloned twice",
			html:    `<p class="i">A</p>`,
			targets: []string{"p", ".i"},
			want:    `<p class="i">A</p><p class="i">A</p>`,
		},
		{
			name:    "ancestor and descendant both cloned",
			html:    `<div class="o"><p class="i">A</p></div>`,
			targets: []string{".o", ".i"},
			want:    `<div class="o"><p class="i">A</p></div><p class="i">A</p>`,
		},
		{
			name:    "no match empties body",
			html:    `<p>A</p>`,
			targets: []string{".none"},
			want:    ``,
		},
		{
			name:    "later passes see the clones",
			html:    `<div class="t"><script>x()</script><span>y</span><!-- c --></div><p>out</p>`,
			targets: []string{".t"},
			want:    `<div class="t"><span>y</span></div>`,
		},
		{
			name:    "head elements can be targeted",
			html:    `<html><head><title>T</title></head><body><p>x</p></body></html>`,
			targets: []string{"title"},
			want:    `<title>T</title>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanRaw(t, tt.html, WithTargetSelectors(tt.targets...))
			if result.Content != tt.want {
				t.Errorf("content = %q, want %q", result.Content, tt.want)
			}
		})
	}

	t.Run("no match records a warning", func(t *testing.T) {
		result := cleanRaw(t, `<p>A</p>`, WithTargetSelectors(".none"))
		if !result.HasWarnings() || result.Warnings[0].Phase != "scope" {
			t.Errorf("expected scope warning, got %v", result.Warnings)
		}
	})
}

func TestRemovalPass(t *testing.T) {
	tests := []struct {
		name string
		html string
		opts []Option
		want string
	}{
		{
			name: "removes by class selector",
			html: `<div class="ad">Ad</div><p>Keep</p>`,
			opts: []Option{WithDeleteSelectors(".ad")},
			want: `<p>Keep</p>`,
		},
		{
			name: "removes nested matches",
			html: `<div class="x"><div class="x">inner</div></div><p>Keep</p>`,
			opts: []Option{WithDeleteSelectors(".x")},
			want: `<p>Keep</p>`,
		},
		{
			name: "later selectors see earlier removals",
			html: `<section><p class="a">A</p></section><p class="a">B</p>`,
			opts: []Option{WithDeleteSelectors("section", ".a")},
			want: ``,
		},
		{
			name: "removes listed attributes",
			html: `<p class="x" style="color:red" id="i">T</p>`,
			opts: []Option{WithDeleteAttrs("class", "style")},
			want: `<p id="i">T</p>`,
		},
		{
			name: "attribute removal across elements",
			html: `<p data-x="1">a</p><span data-y="2" data-x="3">b</span>`,
			opts: []Option{WithDeleteAttrs("data-x", "data-y")},
			want: `<p>a</p><span>b</span>`,
		},
		{
			name: "attribute names match case-insensitively on html elements",
			html: `<p style="color:red" class="c">x</p><span Data-X="1">y</span>`,
			opts: []Option{WithDeleteAttrs("STYLE", "data-X")},
			want: `<p class="c">x</p><span>y</span>`,
		},
		{
			name: "keeps style when not deleted",
			html: `<div><style>p{}</style><p>x</p></div>`,
			opts: []Option{WithDeleteSelectors("script")},
			want: `<div><style>p{}</style><p>x</p></div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanRaw(t, tt.html, tt.opts...)
			if result.Content != tt.want {
				t.Errorf("content = %q, want %q", result.Content, tt.want)
			}
		})
	}

	t.Run("records removals", func(t *testing.T) {
		result := cleanRaw(t, `<div><script>a</script><script>b</script><iframe></iframe></div>`)
		if got := result.Stats.ElementsRemoved["script"]; got != 2 {
			t.Errorf("expected 2 scripts removed, got %d", got)
		}
		if got := result.Stats.SelectorMatches["iframe"]; got != 1 {
			t.Errorf("expected iframe selector to match once, got %d", got)
		}
	})
}

func TestURLRewritePass(t *testing.T) {
	html := `<html><head>` +
		`<link rel="stylesheet" href="/s.css">` +
		`<script src="/a.js"></script>` +
		`<style>.a{background:url(/bg.png)}</style>` +
		`</head><body>` +
		`<div style="background-image:url('/x.png')">` +
		`<img src="/i.png" srcset="/i.png 1x, /i2.png 2x">` +
		`<picture><source srcset="/p.webp 480w"></picture>` +
		`<img src="https://cdn.example.com/c.png">` +
		`<img src="rel/r.png">` +
		`<a href="/page">link</a>` +
		`</div></body></html>`

	result := cleanRaw(t, html, WithDeleteSelectors(), WithAbsolutePath("https://x.com"))

	contains := []string{
		`<link rel="stylesheet" href="https://x.com/s.css">`,
		`<script src="https://x.com/a.js"></script>`,
		`<style>.a{background:url(https://x.com/bg.png)}</style>`,
		`style="background-image:url('https://x.com/x.png')"`,
		`<img src="https://x.com/i.png" srcset="https://x.com/i.png 1x, https://x.com/i2.png 2x">`,
		`<source srcset="https://x.com/p.webp 480w">`,
		`<img src="https://cdn.example.com/c.png">`,
		`<img src="rel/r.png">`,
		`<a href="/page">link</a>`,
	}
	for _, s := range contains {
		if !strings.Contains(result.Content, s) {
			t.Errorf("expected output to contain %q, got: %s", s, result.Content)
		}
	}

	if result.Stats.URLsRewritten != 7 {
		t.Errorf("expected 7 rewrites, got %d", result.Stats.URLsRewritten)
	}
}

func TestURLRewritePass_Disabled(t *testing.T) {
	result := cleanRaw(t, `<img src="/a.png">`)
	if result.Content != `<img src="/a.png">` {
		t.Errorf("expected untouched src, got %q", result.Content)
	}
}

func TestNormalizationPasses(t *testing.T) {
	tests := []struct {
		name string
		html string
		opts []Option
		want string
	}{
		{
			name: "xlink on nested svg elements",
			html: `<svg><g><use xlink:href="#a"></use></g><use xlink:href="#b"></use></svg>`,
			want: `<svg><g><use href="#a"></use></g><use href="#b"></use></svg>`,
		},
		{
			name: "xlink kept when disabled",
			html: `<svg><use xlink:href="#a"></use></svg>`,
			opts: []Option{WithConvertXlink(false)},
			want: `<svg><use xlink:href="#a"></use></svg>`,
		},
		{
			name: "meta pruning keeps charset and viewport",
			html: `<html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width"><meta name="description" content="d"><meta property="og:title" content="t"></head><body></body></html>`,
			want: `<html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width"></head><body></body></html>`,
		},
		{
			name: "meta kept when disabled",
			html: `<html><head><meta name="description" content="d"></head><body></body></html>`,
			opts: []Option{WithRemoveUnusedMeta(false)},
			want: `<html><head><meta name="description" content="d"></head><body></body></html>`,
		},
		{
			name: "query strings stripped from href and src",
			html: `<a href="/p?x=1#s">a</a><img src="/i.png?v=2">`,
			want: `<a href="/p#s">a</a><img src="/i.png">`,
		},
		{
			name: "query strings kept when disabled",
			html: `<a href="/p?x=1">a</a>`,
			opts: []Option{WithRemoveUnusedParams(false)},
			want: `<a href="/p?x=1">a</a>`,
		},
		{
			name: "comments outside body removed",
			html: `<!-- top --><html><head><!-- h --></head><body><!-- b --><p>x<!-- deep --></p></body></html>`,
			want: `<html><head></head><body><p>x</p></body></html>`,
		},
		{
			name: "comments kept when disabled",
			html: `<p><!-- c -->x</p>`,
			opts: []Option{WithRemoveUnusedComments(false)},
			want: `<p><!-- c -->x</p>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanRaw(t, tt.html, tt.opts...)
			if result.Content != tt.want {
				t.Errorf("content = %q, want %q", result.Content, tt.want)
			}
		})
	}
}

func TestSerialization(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "quotes in text are not escaped",
			html: `<p>Don't &amp; "quote" &lt;tag&gt;</p>`,
			want: `<p>Don't &amp; "quote" &lt;tag&gt;</p>`,
		},
		{
			name: "double quotes escaped in attributes",
			html: `<a title='say "hi"'>x</a>`,
			want: `<a title="say &quot;hi&quot;">x</a>`,
		},
		{
			name: "non-breaking space",
			html: `<p>a&nbsp;b</p>`,
			want: `<p>a&nbsp;b</p>`,
		},
		{
			name: "void elements have no end tag",
			html: `<p>a<br>b<input type="text"></p>`,
			want: `<p>a<br>b<input type="text"></p>`,
		},
		{
			name: "unclosed tags are closed",
			html: `<div><p>one<p>two`,
			want: `<div><p>one</p><p>two</p></div>`,
		},
		{
			name: "boolean attributes get empty values",
			html: `<input disabled>`,
			want: `<input disabled="">`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanRaw(t, tt.html)
			if result.Content != tt.want {
				t.Errorf("content = %q, want %q", result.Content, tt.want)
			}
		})
	}
}

func TestCleanWithStats(t *testing.T) {
	t.Run("returns stats with input/output bytes", func(t *testing.T) {
		html := `<div><script>` + strings.Repeat("x", 1000) + `</script><p>Hello</p></div>`
		c := New(nil)
		result := c.CleanWithStats(html)

		if result.Stats == nil {
			t.Fatal("expected stats to be non-nil")
		}
		if result.Stats.InputBytes != len(html) {
			t.Errorf("expected input bytes %d, got %d", len(html), result.Stats.InputBytes)
		}
		if result.Stats.OutputBytes != len(result.Content) {
			t.Errorf("expected output bytes %d, got %d", len(result.Content), result.Stats.OutputBytes)
		}
		if reduction := result.Stats.ReductionPercent(); reduction < 90 {
			t.Errorf("expected >90%% reduction, got %.1f%%", reduction)
		}
	})

	t.Run("records shape", func(t *testing.T) {
		result := New(nil).CleanWithStats(`<body><p>x</p></body>`)
		want := Shape{HasBody: true}
		if result.Stats.Shape != want {
			t.Errorf("shape = %+v, want %+v", result.Stats.Shape, want)
		}
	})

	t.Run("formatter panic returns unformatted markup", func(t *testing.T) {
		c := New(nil, WithFormatter(panicFormatter{}))
		result := c.CleanWithStats(`<div><p>x</p></div>`)

		if result.Content != `<div><p>x</p></div>` {
			t.Errorf("expected unformatted markup, got %q", result.Content)
		}
		if !result.HasWarnings() || result.Warnings[0].Phase != "format" {
			t.Errorf("expected format warning, got %v", result.Warnings)
		}
	})

	t.Run("nesting beyond the parser depth limit returns input", func(t *testing.T) {
		html := "<div><script>x()</script>" + strings.Repeat("<span>", 1000) + "deep" + "</div>"
		result := New(nil).CleanWithStats(html)

		if result.Content != html {
			t.Errorf("expected input returned unchanged")
		}
		if !result.HasWarnings() || result.Warnings[0].Phase != "parse" {
			t.Errorf("expected parse warning, got %v", result.Warnings)
		}
		if result.Stats.OutputBytes != len(html) {
			t.Errorf("expected output bytes %d, got %d", len(html), result.Stats.OutputBytes)
		}
	})

	t.Run("clean never fails", func(t *testing.T) {
		got, err := New(nil).Clean(`<<<>>><div`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		_ = got
	})
}
