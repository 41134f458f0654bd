package view

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/quill/internal/content"
	"github.com/yanizio/quill/internal/head"
	"github.com/yanizio/quill/internal/metrics"
)

func TestMarkdown_RenderAndCache(t *testing.T) {
	m := NewMarkdown(4)
	src := []byte("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n<Callout>hi</Callout>\n")

	before := testutil.ToFloat64(metrics.RenderCacheHitsTotal)
	out := string(m.Render(src))
	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<Callout>hi</Callout>")

	again := string(m.Render(src))
	assert.Equal(t, out, again)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.RenderCacheHitsTotal))
}

func page() Page {
	h := head.New()
	h.SetTitle("Hello <World>")
	h.Canonical("https://x.test/en/blog/hello-a1b2c3d4")
	return Page{
		SiteName: "Quill",
		Locale:   "en",
		Switch: []LocaleLink{
			{Locale: "en", Path: "/en/blog/hello-a1b2c3d4", Current: true},
			{Locale: "ko", Path: "/ko/blog/hello-a1b2c3d4"},
		},
		Head: h,
		Doc: &content.Document{
			Title: "Hello <World>",
			Date:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Tags:  []string{"go"},
		},
		Body: "<p>body</p>",
	}
}

func TestEngine_Post(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)

	html, err := e.RenderToString(PagePost, page())
	require.NoError(t, err)
	s := string(html)
	assert.Contains(t, s, `<html lang="en">`)
	assert.Contains(t, s, `<title>Hello &lt;World&gt;</title>`)
	assert.Contains(t, s, `<link rel="canonical" href="https://x.test/en/blog/hello-a1b2c3d4">`)
	assert.Contains(t, s, `<h1>Hello &lt;World&gt;</h1>`)
	assert.Contains(t, s, `<time datetime="2024-03-01T00:00:00Z">2024-03-01</time>`)
	assert.Contains(t, s, "<p>body</p>")
	assert.Contains(t, s, `href="/ko/blog/hello-a1b2c3d4"`)
}

func TestEngine_RenderStatus(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	p := page()
	p.Path = "/en/blog/missing"
	require.NoError(t, e.Render(rec, http.StatusNotFound, PageNotFound, p))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "/en/blog/missing")

	_, err = e.RenderToString("nope", p)
	assert.Error(t, err)
}

func TestEngine_IndexEmpty(t *testing.T) {
	e, err := New("")
	require.NoError(t, err)
	html, err := e.RenderToString(PageIndex, Page{Locale: "ko", Head: head.New()})
	require.NoError(t, err)
	assert.Contains(t, string(html), "No posts yet.")
}

func TestEngine_Override(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notfound.html"),
		[]byte(`{{ define "content" }}custom 404 {{ .Path }}{{ end }}`), 0o644))

	e, err := New(dir)
	require.NoError(t, err)
	html, err := e.RenderToString(PageNotFound, Page{Locale: "en", Head: head.New(), Path: "/x"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(html), "custom 404 /x"))

	// Pages without an override still come from the embedded set.
	html, err = e.RenderToString(PageIndex, Page{Locale: "en", Head: head.New()})
	require.NoError(t, err)
	assert.Contains(t, string(html), "No posts yet.")
}

func TestEngine_BrokenOverrideFailsStartup(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.html"), []byte(`{{ define "content" }}`), 0o644))
	_, err := New(dir)
	assert.Error(t, err)
}
