// internal/head/builder.go
//
// The Builder collects everything that should appear inside a page’s
// <head> element.  It is scoped to a single request.  Handlers push tags
// into the builder, then the base layout emits each slice in place.
//
// Features
// --------
//   - SetTitle            – single <title> tag (last call wins).
//   - Canonical           – single <link rel="canonical"> (last call wins).
//   - Alternate           – <link rel="alternate" hreflang=…>, one per
//     language, deduplicated.
//   - Meta, Link, JSONLD  – arbitrary tags with deduplication.
//   - Render helpers      – concat methods that return template.HTML.
//
// Notes
// -----
// • Every value passed to the typed helpers is attribute-escaped here.
//   Meta and Link take pre-built tags and trust the caller.
// • Oxford commas, two spaces after periods.
package head

import (
	"html/template"
	"strings"
	"sync"
)

// Builder is safe for concurrent use; typical use is one per request.
type Builder struct {
	mu sync.Mutex

	title     string
	canonical string

	metas      []string
	links      []string
	alternates []string
	jsonLD     []string

	seen map[string]struct{}
}

func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// ------------------------------------------------------------------
// Single-value helpers
// ------------------------------------------------------------------

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// Title returns a fully formed <title> tag or an empty string.
func (b *Builder) Title() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.title == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(b.title) + "</title>")
}

// Canonical sets the page's canonical URL.  The last caller wins.
func (b *Builder) Canonical(url string) {
	b.mu.Lock()
	b.canonical = url
	b.mu.Unlock()
}

// CanonicalURL returns the URL passed to Canonical, if any.
func (b *Builder) CanonicalURL() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canonical
}

// ------------------------------------------------------------------
// Slice helpers with deduplication
// ------------------------------------------------------------------

// Alternate adds an hreflang alternate.  A repeated hreflang is ignored.
func (b *Builder) Alternate(hreflang, url string) {
	tag := `<link rel="alternate" hreflang="` + template.HTMLEscapeString(hreflang) +
		`" href="` + template.HTMLEscapeString(url) + `">`
	b.add("alt:"+hreflang, &b.alternates, tag)
}

// Description adds <meta name="description">.
func (b *Builder) Description(s string) {
	if s == "" {
		return
	}
	b.Meta(`<meta name="description" content="` + template.HTMLEscapeString(s) + `">`)
}

// Property adds an OpenGraph-style <meta property=… content=…>.
func (b *Builder) Property(name, value string) {
	if value == "" {
		return
	}
	b.add("prop:"+name, &b.metas, `<meta property="`+template.HTMLEscapeString(name)+
		`" content="`+template.HTMLEscapeString(value)+`">`)
}

func (b *Builder) Meta(tag string)  { b.add("meta:"+tag, &b.metas, tag) }
func (b *Builder) Link(tag string)  { b.add("link:"+tag, &b.links, tag) }
func (b *Builder) JSONLD(js string) { b.add("jsonld:"+js, &b.jsonLD, js) }

func (b *Builder) add(key string, tgt *[]string, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// ------------------------------------------------------------------
// Rendering helpers called from layouts
// ------------------------------------------------------------------

func (b *Builder) Metas() template.HTML { return b.concat(b.metas) }

// Links returns the canonical link, the hreflang alternates, and any other
// links, in that order.
func (b *Builder) Links() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	if b.canonical != "" {
		sb.WriteString(`<link rel="canonical" href="` + template.HTMLEscapeString(b.canonical) + `">`)
	}
	for _, s := range b.alternates {
		sb.WriteString(s)
	}
	for _, s := range b.links {
		sb.WriteString(s)
	}
	return template.HTML(sb.String())
}

// JSON returns all JSON-LD blocks wrapped in <script> tags.
func (b *Builder) JSON() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.jsonLD) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, js := range b.jsonLD {
		sb.WriteString(`<script type="application/ld+json">`)
		sb.WriteString(js)
		sb.WriteString(`</script>`)
	}
	return template.HTML(sb.String())
}

// concat joins pre-escaped tags without a separator.
func (b *Builder) concat(sl []string) template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	return template.HTML(strings.Join(sl, ""))
}
