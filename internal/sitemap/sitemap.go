// internal/sitemap/sitemap.go
//
// Sitemap and static-params generation.
//
// Context
// -------
// Crawlers and static builds both need the full set of blog URLs.  Every
// (locale, document) pair contributes exactly one entry, keyed by the
// document's canonical token.  Stale slugs never appear, and a document
// with an identifier is never advertised under its content key; both keep
// resolving through the resolver but are not advertised.
//
// Workflow
// --------
//  1. Snapshot every configured locale once (newest first).
//  2. Map each document to its canonical URL, and pair it with its
//     translations by identifier for the hreflang alternates.
//  3. Write renders the sitemaps.org urlset with xhtml:link alternates.
//
// Notes
// -----
// • A locale that fails to list is logged and omitted; the rest of the
//   sitemap is still served.
// • Oxford commas, two spaces after periods.

package sitemap

import (
	"context"
	"encoding/xml"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/quill/internal/content"
	"github.com/yanizio/quill/internal/permalink"
)

// Lister is the slice of *content.Catalog used here.
type Lister interface {
	Locales() []string
	Snapshot(ctx context.Context, locale string) (*content.Snapshot, error)
}

// Entry is one <url> element.
type Entry struct {
	Locale     string
	Token      string
	Loc        string
	LastMod    time.Time
	Alternates []permalink.Alternate
}

// Param is one pre-renderable route.
type Param struct {
	Locale string `json:"locale"`
	Token  string `json:"token"`
}

// Entries returns one canonical entry per (locale, document).
func Entries(ctx context.Context, cat Lister, b permalink.Builder) []Entry {
	locales, snaps := snapshots(ctx, cat)
	var out []Entry
	for _, locale := range locales {
		for _, d := range snaps[locale].Documents() {
			out = append(out, Entry{
				Locale:     locale,
				Token:      d.Token,
				Loc:        b.Canonical(locale, d),
				LastMod:    d.Date,
				Alternates: b.AlternateList(content.TranslationsIn(snaps, d)),
			})
		}
	}
	return out
}

// Params returns the {locale, token} pairs a static build must render.
func Params(ctx context.Context, cat Lister) []Param {
	locales, snaps := snapshots(ctx, cat)
	var out []Param
	for _, locale := range locales {
		for _, d := range snaps[locale].Documents() {
			out = append(out, Param{Locale: locale, Token: d.Token})
		}
	}
	return out
}

// snapshots builds every locale once, in configured order, dropping the
// ones that fail.
func snapshots(ctx context.Context, cat Lister) ([]string, map[string]*content.Snapshot) {
	var locales []string
	snaps := make(map[string]*content.Snapshot)
	for _, locale := range cat.Locales() {
		snap, err := cat.Snapshot(ctx, locale)
		if err != nil {
			zap.L().Warn("sitemap: locale skipped",
				zap.String("locale", locale),
				zap.Error(err))
			continue
		}
		locales = append(locales, locale)
		snaps[locale] = snap
	}
	return locales, snaps
}

// -----------------------------------------------------------------------------
// XML
// -----------------------------------------------------------------------------

const (
	nsSitemap = "http://www.sitemaps.org/schemas/sitemap/0.9"
	nsXHTML   = "http://www.w3.org/1999/xhtml"
)

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	XMLNS   string   `xml:"xmlns,attr"`
	XHTML   string   `xml:"xmlns:xhtml,attr"`
	URLs    []xmlURL `xml:"url"`
}

type xmlURL struct {
	Loc     string    `xml:"loc"`
	LastMod string    `xml:"lastmod,omitempty"`
	Links   []xmlLink `xml:"xhtml:link"`
}

type xmlLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// Write renders entries as sitemap.xml.
func Write(w io.Writer, entries []Entry) error {
	set := urlset{XMLNS: nsSitemap, XHTML: nsXHTML, URLs: make([]xmlURL, 0, len(entries))}
	for _, e := range entries {
		u := xmlURL{Loc: e.Loc}
		if !e.LastMod.IsZero() {
			u.LastMod = e.LastMod.UTC().Format("2006-01-02")
		}
		for _, a := range e.Alternates {
			u.Links = append(u.Links, xmlLink{Rel: "alternate", Hreflang: a.Locale, Href: a.URL})
		}
		set.URLs = append(set.URLs, u)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
