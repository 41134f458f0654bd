package blog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/quill/internal/config"
	"github.com/yanizio/quill/internal/content"
	"github.com/yanizio/quill/internal/permalink"
	"github.com/yanizio/quill/internal/requestinfo"
	"github.com/yanizio/quill/internal/resolve"
	"github.com/yanizio/quill/internal/site"
	"github.com/yanizio/quill/internal/view"
)

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func newSite(t *testing.T, fsys fstest.MapFS) *site.Site {
	t.Helper()
	cfg := &config.Config{
		Site: config.Site{
			Name:          "Quill",
			BaseURL:       "https://blog.example.com",
			Locales:       []string{"en", "ko"},
			DefaultLocale: "en",
		},
	}
	locales := cfg.Locales()
	cat := content.NewCatalog(content.NewFSStoreFS(fsys), locales,
		content.WithClock(func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }))
	engine, err := view.New("")
	require.NoError(t, err)
	return &site.Site{
		Config:     cfg,
		Catalog:    cat,
		Resolver:   resolve.New(cat),
		Links:      permalink.New(cfg.Site.BaseURL, locales),
		Views:      engine,
		Markdown:   view.NewMarkdown(16),
		Negotiator: requestinfo.NewNegotiator(locales),
	}
}

func corpus() fstest.MapFS {
	return fstest.MapFS{
		"en/hello.mdx":   file("---\ntitle: Hello World\ndate: 2024-03-01\nid: a1b2c3d4\ndescription: First post\n---\n# Hi\n\nBody text.\n"),
		"ko/hello.mdx":   file("---\ntitle: 안녕하세요\ndate: 2024-03-01\nid: a1b2c3d4\n---\n본문\n"),
		"en/old-post.md": file("---\ntitle: Legacy Thing\ndate: 2023-01-01\n---\nOld.\n"),
	}
}

func serve(t *testing.T, s *site.Site, target string, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	c := New(s)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	c.Routes().ServeHTTP(rec, req)
	return rec
}

func TestPost_Found(t *testing.T) {
	s := newSite(t, corpus())
	rec := serve(t, s, "/en/blog/hello-world-a1b2c3d4")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Hello World</h1>")
	assert.Contains(t, body, `<link rel="canonical" href="https://blog.example.com/en/blog/hello-world-a1b2c3d4">`)
	assert.Contains(t, body, `hreflang="ko" href="https://blog.example.com/ko/blog/-a1b2c3d4"`)
	assert.Contains(t, body, `hreflang="x-default" href="https://blog.example.com/en/blog/hello-world-a1b2c3d4"`)
	assert.Contains(t, body, `<a href="/ko/blog/-a1b2c3d4" hreflang="ko">`)
	assert.Contains(t, body, `"@type":"BlogPosting"`)
	assert.Contains(t, body, "Body text.")
}

func TestPost_StaleRedirects(t *testing.T) {
	s := newSite(t, corpus())
	rec := serve(t, s, "/en/blog/some-old-title-a1b2c3d4?utm_source=x")

	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "/en/blog/hello-world-a1b2c3d4?utm_source=x", rec.Header().Get("Location"))
}

func TestPost_NonLatinTitleHealsToBareIdentifier(t *testing.T) {
	s := newSite(t, corpus())

	rec := serve(t, s, "/ko/blog/hello-world-a1b2c3d4")
	assert.Equal(t, http.StatusPermanentRedirect, rec.Code)
	assert.Equal(t, "/ko/blog/-a1b2c3d4", rec.Header().Get("Location"))

	rec = serve(t, s, "/ko/blog/-a1b2c3d4")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPost_LegacyKeyNeverRedirects(t *testing.T) {
	s := newSite(t, corpus())
	rec := serve(t, s, "/en/blog/old-post")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Legacy Thing")
	assert.Contains(t, rec.Body.String(), `<link rel="canonical" href="https://blog.example.com/en/blog/old-post">`)
	assert.NotContains(t, rec.Body.String(), `<link rel="alternate" hreflang="ko"`, "no translation to pair with")
	assert.Contains(t, rec.Body.String(), `<a href="/ko/blog" hreflang="ko">`)

	// A pre-identifier link to a post that has since gained an identifier
	// still serves, with the canonical tag pointing at the new form.
	rec = serve(t, s, "/en/blog/hello")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<link rel="canonical" href="https://blog.example.com/en/blog/hello-world-a1b2c3d4">`)
}

func TestPost_KoreanAlternatesUseEnglishToken(t *testing.T) {
	s := newSite(t, corpus())
	rec := serve(t, s, "/ko/blog/-a1b2c3d4")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `hreflang="en" href="https://blog.example.com/en/blog/hello-world-a1b2c3d4"`)
	assert.Contains(t, body, `hreflang="x-default" href="https://blog.example.com/en/blog/hello-world-a1b2c3d4"`)
	assert.NotContains(t, body, "/en/blog/-a1b2c3d4")
}

func TestPost_NotFound(t *testing.T) {
	s := newSite(t, corpus())
	for _, target := range []string{
		"/en/blog/nothing-here",
		"/en/blog/hello-world-deadbeef",
		"/fr/blog/hello-world-a1b2c3d4",
	} {
		rec := serve(t, s, target)
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `name="robots" content="noindex"`, target)
	}
}

func TestIndex(t *testing.T) {
	s := newSite(t, corpus())
	rec := serve(t, s, "/en/blog")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/en/blog/hello-world-a1b2c3d4"`)
	assert.Contains(t, body, `href="/en/blog/old-post"`)
	assert.Less(t, strings.Index(body, "Hello World"), strings.Index(body, "Legacy Thing"), "newest first")

	rec = serve(t, s, "/fr/blog")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoot_NegotiatesLocale(t *testing.T) {
	s := newSite(t, corpus())

	rec := serve(t, s, "/", "Accept-Language", "ko-KR,ko;q=0.9,en;q=0.5")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/ko/blog", rec.Header().Get("Location"))

	rec = serve(t, s, "/")
	assert.Equal(t, "/en/blog", rec.Header().Get("Location"))
}

func TestSitemapAndRobots(t *testing.T) {
	s := newSite(t, corpus())

	rec := serve(t, s, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<loc>https://blog.example.com/en/blog/hello-world-a1b2c3d4</loc>")
	assert.Contains(t, body, "<loc>https://blog.example.com/ko/blog/-a1b2c3d4</loc>")
	assert.Contains(t, body, "<loc>https://blog.example.com/en/blog/old-post</loc>")

	rec = serve(t, s, "/robots.txt")
	assert.Contains(t, rec.Body.String(), "Sitemap: https://blog.example.com/sitemap.xml")
}

func TestAPIResolve(t *testing.T) {
	s := newSite(t, corpus())

	rec := serve(t, s, "/api/resolve/en/stale-a1b2c3d4")
	require.Equal(t, http.StatusOK, rec.Code)
	var out resolveJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "stale", out.Outcome)
	assert.Equal(t, "/en/blog/hello-world-a1b2c3d4", out.Path)

	rec = serve(t, s, "/api/resolve/en/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
