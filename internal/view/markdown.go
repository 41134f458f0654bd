// internal/view/markdown.go
//
// Markdown → HTML with a digest-keyed render cache.
//
// Context
// -------
// Bodies are MDX.  Component tags (<Callout>, <Tabs>, …) are passed through
// as raw HTML; a browser ignores unknown elements and shows their text, which
// is good enough for a server-rendered preview.  GFM tables, strikethrough,
// task lists, footnotes, and heading IDs are enabled.
//
// The cache key is the BLAKE3 digest of the body, so an edited document is
// simply a new key.  Content reads are never cached; only the pure
// Markdown conversion is.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/zeebo/blake3"

	"github.com/yanizio/quill/internal/cache"
	"github.com/yanizio/quill/internal/metrics"
)

// Markdown converts document bodies.  Safe for concurrent use.
type Markdown struct {
	md    goldmark.Markdown
	cache *cache.LRU[[32]byte, template.HTML]
}

// NewMarkdown returns a converter caching up to capacity bodies.
func NewMarkdown(capacity int) *Markdown {
	if capacity < 1 {
		capacity = 256
	}
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		cache: cache.New[[32]byte, template.HTML](capacity),
	}
}

// Render converts src.  A conversion failure falls back to the escaped
// source so the page still renders.
func (m *Markdown) Render(src []byte) template.HTML {
	key := blake3.Sum256(src)
	if out, ok := m.cache.Get(key); ok {
		metrics.RenderCacheHitsTotal.Inc()
		return out
	}

	var buf bytes.Buffer
	if err := m.md.Convert(src, &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(string(src)) + "</pre>")
	}
	out := template.HTML(buf.String())
	m.cache.Add(key, out)
	return out
}
