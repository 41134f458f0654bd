package view

import (
	"html/template"
	"time"

	"github.com/yanizio/quill/internal/content"
	"github.com/yanizio/quill/internal/head"
)

// Page is the data every template receives.
type Page struct {
	SiteName string
	Locale   string
	Switch   []LocaleLink // language switcher, one per configured locale
	Head     *head.Builder

	// post
	Doc  *content.Document
	Body template.HTML

	// index
	Items []Item

	// notfound
	Path string
}

// LocaleLink is one entry in the language switcher.
type LocaleLink struct {
	Locale  string
	Path    string
	Current bool
}

// Item is one row of an index listing.
type Item struct {
	Title       string
	Path        string
	Date        time.Time
	Description string
	Tags        []string
}
