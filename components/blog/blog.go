// components/blog/blog.go
//
// Blog Component: permalink routing, self-healing redirects, index pages,
// and the sitemap.
//
// Routes
// ------
//
//	GET /                           302 → /{negotiated locale}/blog
//	GET /{locale}/blog              index, newest first, canonical links only
//	GET /{locale}/blog/{token}      200 post │ 308 canonical │ 404 page
//	GET /api/resolve/{locale}/{token}  JSON view of the same resolution
//	GET /sitemap.xml                one canonical URL per (locale, document)
//	GET /robots.txt                 points crawlers at the sitemap
//
// Post workflow
// -------------
//  1. resolve.Resolve(locale, token).
//  2. NotFound → 404 page (noindex).  Never a raw error.
//  3. Stale → 308 Permanent Redirect to the current token, query kept.
//  4. Found → load the body, render Markdown, emit canonical, hreflang
//     alternates, OpenGraph, and JSON-LD into <head>.  Alternates and the
//     language switcher follow the translations sharing the identifier;
//     an untranslated locale switches to its index instead.
//
// Notes
// -----
// • A document whose body vanished between listing and load is a 404.
// • Oxford commas, two spaces after periods.
package blog

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/quill/internal/component"
	"github.com/yanizio/quill/internal/content"
	"github.com/yanizio/quill/internal/head"
	"github.com/yanizio/quill/internal/permalink"
	"github.com/yanizio/quill/internal/requestinfo"
	"github.com/yanizio/quill/internal/sitemap"
	"github.com/yanizio/quill/internal/view"
)

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

func init() { component.Register(&Comp{}) }

// Comp implements component.Component.
type Comp struct {
	site component.SiteInfo
}

// New returns a component already initialised with site.
func New(site component.SiteInfo) *Comp { return &Comp{site: site} }

func (c *Comp) Name() string         { return "blog" }
func (c *Comp) Migrations() []string { return nil }

func (c *Comp) Init(site component.SiteInfo) error {
	c.site = site
	return nil
}

func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", c.root)
	r.Get("/sitemap.xml", c.sitemap)
	r.Get("/robots.txt", c.robots)
	r.Get("/api/resolve/{locale}/{token}", c.apiResolve)
	r.Get("/{locale}/blog", c.index)
	r.Get("/{locale}/blog/{token}", c.post)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		c.notFound(w, r, c.defaultLocale())
	})
	return r
}

/*──────────────────────────── handlers ────────────────────────────────────*/

// root sends visitors to the blog in their best language.
func (c *Comp) root(w http.ResponseWriter, r *http.Request) {
	locale := c.defaultLocale()
	if info := requestinfo.FromContext(r.Context()); info != nil && info.Locale != "" {
		locale = info.Locale
	} else if n := c.site.GetNegotiator(); n != nil {
		locale = n.Match(r.Header.Get("Accept-Language"))
	}
	w.Header().Add("Vary", "Accept-Language")
	http.Redirect(w, r, permalink.IndexPath(locale), http.StatusFound)
}

func (c *Comp) index(w http.ResponseWriter, r *http.Request) {
	locale := chi.URLParam(r, "locale")
	if !c.site.GetCatalog().Supports(locale) {
		c.notFound(w, r, c.defaultLocale())
		return
	}
	docs, err := c.site.GetCatalog().List(r.Context(), locale)
	if err != nil {
		zap.L().Error("index listing failed", zap.String("locale", locale), zap.Error(err))
		c.notFound(w, r, locale)
		return
	}

	links := c.site.GetLinks()
	h := head.New()
	h.SetTitle(c.site.GetConfig().Site.Name)
	h.Canonical(links.URL(permalink.IndexPath(locale)))
	for _, l := range links.Locales {
		h.Alternate(l, links.URL(permalink.IndexPath(l)))
	}
	h.Alternate("x-default", links.URL(permalink.IndexPath(c.defaultLocale())))

	items := make([]view.Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, view.Item{
			Title:       d.Title,
			Path:        permalink.Path(locale, d.Token),
			Date:        d.Date,
			Description: d.Description,
			Tags:        d.Tags,
		})
	}

	page := c.page(locale, h, func(l string) string { return permalink.IndexPath(l) })
	page.Items = items
	_ = c.site.GetViews().Render(w, http.StatusOK, view.PageIndex, page)
}

func (c *Comp) post(w http.ResponseWriter, r *http.Request) {
	locale := chi.URLParam(r, "locale")
	token := chi.URLParam(r, "token")

	res := c.site.GetResolver().Resolve(r.Context(), locale, token)
	if !res.Found() {
		c.notFound(w, r, c.pageLocale(locale))
		return
	}
	doc := *res.Document

	if res.Stale {
		target := permalink.Path(locale, doc.Token)
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		zap.L().Debug("stale token redirected",
			zap.String("locale", locale),
			zap.String("from", token),
			zap.String("to", doc.Token))
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
		return
	}

	raw, err := c.site.GetCatalog().Raw(r.Context(), locale, doc.ContentKey)
	if err != nil {
		c.notFound(w, r, locale)
		return
	}

	links := c.site.GetLinks()
	canonical := links.Canonical(locale, doc)
	tr := c.site.GetCatalog().Translations(r.Context(), doc)

	h := head.New()
	h.SetTitle(doc.Title + " · " + c.site.GetConfig().Site.Name)
	h.Description(doc.Description)
	h.Canonical(canonical)
	for _, a := range links.AlternateList(tr) {
		h.Alternate(a.Locale, a.URL)
	}
	if d, ok := tr[c.defaultLocale()]; ok {
		h.Alternate("x-default", links.Canonical(c.defaultLocale(), d))
	}
	h.Property("og:type", "article")
	h.Property("og:title", doc.Title)
	h.Property("og:url", canonical)
	h.Property("og:description", doc.Description)
	h.Property("og:image", doc.Image)
	h.Property("og:locale", locale)
	if ld, err := jsonLD(doc, canonical); err == nil {
		h.JSONLD(ld)
	}

	page := c.page(locale, h, func(l string) string {
		if d, ok := tr[l]; ok {
			return permalink.Path(l, d.Token)
		}
		return permalink.IndexPath(l)
	})
	page.Doc = &doc
	page.Body = c.site.GetMarkdown().Render(raw.Body)
	_ = c.site.GetViews().Render(w, http.StatusOK, view.PagePost, page)
}

// resolveJSON is the /api/resolve payload.
type resolveJSON struct {
	Outcome   string            `json:"outcome"`
	Canonical string            `json:"canonical,omitempty"`
	Path      string            `json:"path,omitempty"`
	Document  *content.Document `json:"document,omitempty"`
}

func (c *Comp) apiResolve(w http.ResponseWriter, r *http.Request) {
	locale := chi.URLParam(r, "locale")
	res := c.site.GetResolver().Resolve(r.Context(), locale, chi.URLParam(r, "token"))

	out := resolveJSON{Outcome: res.Outcome()}
	status := http.StatusNotFound
	if res.Found() {
		status = http.StatusOK
		out.Document = res.Document
		out.Path = permalink.Path(locale, res.Document.Token)
		out.Canonical = c.site.GetLinks().Canonical(locale, *res.Document)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(out)
}

func (c *Comp) sitemap(w http.ResponseWriter, r *http.Request) {
	entries := sitemap.Entries(r.Context(), c.site.GetCatalog(), c.site.GetLinks())
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if err := sitemap.Write(w, entries); err != nil {
		zap.L().Warn("sitemap write failed", zap.Error(err))
	}
}

func (c *Comp) robots(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("User-agent: *\nAllow: /\nSitemap: " + c.site.GetLinks().URL("/sitemap.xml") + "\n"))
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func (c *Comp) notFound(w http.ResponseWriter, r *http.Request, locale string) {
	h := head.New()
	h.SetTitle("Not found · " + c.site.GetConfig().Site.Name)
	h.Meta(`<meta name="robots" content="noindex">`)

	page := c.page(locale, h, func(l string) string { return permalink.IndexPath(l) })
	page.Path = r.URL.Path
	_ = c.site.GetViews().Render(w, http.StatusNotFound, view.PageNotFound, page)
}

// page fills the fields every template needs.  pathFor builds the language
// switcher target for each locale.
func (c *Comp) page(locale string, h *head.Builder, pathFor func(string) string) view.Page {
	locales := c.site.GetLinks().Locales
	sw := make([]view.LocaleLink, 0, len(locales))
	for _, l := range locales {
		sw = append(sw, view.LocaleLink{Locale: l, Path: pathFor(l), Current: l == locale})
	}
	return view.Page{
		SiteName: c.site.GetConfig().Site.Name,
		Locale:   locale,
		Switch:   sw,
		Head:     h,
	}
}

func (c *Comp) defaultLocale() string {
	return c.site.GetConfig().Site.DefaultLocale
}

// pageLocale is locale when configured, else the default.
func (c *Comp) pageLocale(locale string) string {
	if c.site.GetCatalog().Supports(locale) {
		return locale
	}
	return c.defaultLocale()
}

// jsonLD builds a schema.org BlogPosting block.
func jsonLD(doc content.Document, url string) (string, error) {
	v := map[string]any{
		"@context":         "https://schema.org",
		"@type":            "BlogPosting",
		"headline":         doc.Title,
		"datePublished":    doc.Date.UTC().Format(time.RFC3339),
		"mainEntityOfPage": url,
		"inLanguage":       doc.Locale,
	}
	if doc.Description != "" {
		v["description"] = doc.Description
	}
	if doc.Author != "" {
		v["author"] = map[string]string{"@type": "Person", "name": doc.Author}
	}
	if doc.Image != "" {
		v["image"] = doc.Image
	}
	if len(doc.Tags) > 0 {
		v["keywords"] = doc.Tags
	}
	b, err := json.Marshal(v)
	return string(b), err
}
