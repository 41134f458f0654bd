// internal/permalink/permalink.go
//
// Canonical and alternate URLs for blog documents.
//
// Context
// -------
// The canonical URL is the one address the site advertises for a document:
// in <link rel="canonical">, in the sitemap, in index listings, and as the
// target of stale-token redirects.  It is always built from the document's
// current Token (fresh slug + stored identifier), never from whatever the
// visitor typed.
//
// Alternates pair translations for crawlers.  Each one carries the
// translation's own canonical token, since titles (and therefore slugs)
// differ per locale.  A locale with no translation gets no alternate, so
// every advertised alternate resolves without a redirect.
//
// Notes
// -----
// • Pure: no I/O, safe for concurrent use.
// • Oxford commas, two spaces after periods.

package permalink

import (
	"strings"

	"github.com/yanizio/quill/internal/content"
	"github.com/yanizio/quill/internal/routing"
)

// Section is the path segment between locale and token.
const Section = "blog"

// Alternate is one hreflang entry.
type Alternate struct {
	Locale string
	URL    string
}

// Builder formats absolute URLs under BaseURL.
type Builder struct {
	BaseURL string
	Locales []string
}

// New returns a Builder.  A trailing slash on baseURL is ignored.
func New(baseURL string, locales []string) Builder {
	return Builder{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Locales: append([]string(nil), locales...),
	}
}

// Path returns the site-relative path of token in locale.
func Path(locale, token string) string {
	return routing.BuildPath(locale, Section, token)
}

// IndexPath returns the site-relative path of the locale's blog index.
func IndexPath(locale string) string {
	return routing.BuildPath(locale, Section)
}

// Path is the package-level Path, for templates holding a Builder.
func (b Builder) Path(locale, token string) string { return Path(locale, token) }

// URL prefixes a site-relative path with BaseURL.
func (b Builder) URL(path string) string {
	return strings.TrimRight(b.BaseURL, "/") + path
}

// Canonical returns the absolute canonical URL of doc in locale.
func (b Builder) Canonical(locale string, doc content.Document) string {
	return b.URL(Path(locale, doc.Token))
}

// Alternates returns one URL per translation, keyed by locale.  tr maps a
// locale to the document that translates into it, as built by
// content.TranslationsIn.
func (b Builder) Alternates(tr map[string]content.Document) map[string]string {
	out := make(map[string]string, len(tr))
	for _, a := range b.AlternateList(tr) {
		out[a.Locale] = a.URL
	}
	return out
}

// AlternateList is Alternates in configured locale order.
func (b Builder) AlternateList(tr map[string]content.Document) []Alternate {
	out := make([]Alternate, 0, len(tr))
	for _, l := range b.Locales {
		d, ok := tr[l]
		if !ok {
			continue
		}
		out = append(out, Alternate{Locale: l, URL: b.Canonical(l, d)})
	}
	return out
}
