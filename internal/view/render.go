// internal/view/render.go
//
// Central view engine: template lookup, override directory, func-map
// injection, and one parsed *template.Template* set per page.
//
// Public helpers
// --------------
//   - Render         – write a full page with a status code.
//   - RenderToString – return template.HTML (tests, static export).
//
// Lookup precedence (first hit wins):
//  1. <override dir>/<file>.html   (site-specific theme, optional)
//  2. embedded templates/<file>.html
//
// Every page is parsed together with layout.html, so pages only define the
// "content" block and the layout owns <html>, <head>, and navigation.
//
// Notes
// -----
// • Templates are parsed once in New; a broken template fails startup, not
//   a request.
// • Rendering goes through a buffer so a mid-template error still yields a
//   clean 500 instead of half a page.
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var embedded embed.FS

// Pages rendered by the engine.
const (
	PagePost     = "post"
	PageIndex    = "index"
	PageNotFound = "notfound"
)

var pages = []string{PagePost, PageIndex, PageNotFound}

// Engine holds parsed template sets.  Safe for concurrent use.
type Engine struct {
	sets map[string]*template.Template
}

// New parses every page.  overrideDir may be empty.
func New(overrideDir string) (*Engine, error) {
	base, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, err
	}
	src := overlay{base: base}
	if overrideDir != "" {
		src.top = os.DirFS(overrideDir)
	}

	e := &Engine{sets: make(map[string]*template.Template, len(pages))}
	for _, p := range pages {
		t := template.New(p).Funcs(funcMap())
		for _, file := range []string{"layout.html", p + ".html"} {
			b, from, err := src.read(file)
			if err != nil {
				return nil, fmt.Errorf("view: %s: %w", file, err)
			}
			if _, err := t.New(file).Parse(string(b)); err != nil {
				return nil, fmt.Errorf("view: parse %s (%s): %w", file, from, err)
			}
		}
		e.sets[p] = t
	}
	return e, nil
}

// Render executes page into w with the given status code.
func (e *Engine) Render(w http.ResponseWriter, status int, page string, data any) error {
	var buf bytes.Buffer
	if err := e.execute(&buf, page, data); err != nil {
		zap.L().Error("template execution failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// RenderToString executes page and returns the HTML.
func (e *Engine) RenderToString(page string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := e.execute(&buf, page, data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

func (e *Engine) execute(buf *bytes.Buffer, page string, data any) error {
	t, ok := e.sets[page]
	if !ok {
		return fmt.Errorf("view: unknown page %q", page)
	}
	return t.ExecuteTemplate(buf, "layout.html", data)
}

//
// lookup
//

// overlay reads a file from top when present, else from base.
type overlay struct {
	top  fs.FS
	base fs.FS
}

func (o overlay) read(name string) ([]byte, string, error) {
	if o.top != nil {
		if b, err := fs.ReadFile(o.top, name); err == nil {
			return b, filepath.Join("override", name), nil
		}
	}
	b, err := fs.ReadFile(o.base, name)
	return b, filepath.Join("embedded", name), err
}

//
// func-map
//

func funcMap() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string { return t.Format("2006-01-02") },
		"isoDate": func(t time.Time) string {
			return t.UTC().Format(time.RFC3339)
		},
	}
}
