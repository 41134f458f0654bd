// internal/content/document.go
//
// Normalized document model.
//
// Context
// -------
// Document is the catalog's view of one content file.  It is produced once
// per listing by normalize() and never re-derived downstream, so every
// defaulting rule lives here:
//
//   • Title       – falls back to the content key.
//   • Date        – falls back to “now” (catalog clock) when absent or
//                   unparseable.
//   • Tags        – falls back to an empty, non-nil slice.
//   • Slug/Token  – derived from the current title and stored identifier.
//                   Without an identifier the token is the content key,
//                   the only form the resolver's legacy path matches.
//
// Notes
// -----
// • ContentKey is the storage name (file stem).  It is never placed in
//   canonical URLs; it only serves legacy lookups.
// • Oxford commas, two spaces after periods.

package content

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/quill/internal/postid"
	"github.com/yanizio/quill/internal/routing"
)

// Document is one normalized content record.
type Document struct {
	Locale      string    `json:"locale"`
	ContentKey  string    `json:"content_key"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Tags        []string  `json:"tags"`
	Author      string    `json:"author,omitempty"`
	Category    string    `json:"category,omitempty"`
	Image       string    `json:"image,omitempty"`
	Identifier  string    `json:"identifier,omitempty"`
	Slug        string    `json:"slug"`
	Token       string    `json:"token"`
}

// HasIdentifier reports whether self-healing is enabled for d.
func (d Document) HasIdentifier() bool { return d.Identifier != "" }

// RawDocument is one stored file split into front matter and body.
type RawDocument struct {
	Locale      string
	ContentKey  string
	FrontMatter FrontMatter
	Body        []byte
}

// dateLayouts are tried in order when parsing the front-matter date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// ParseDate parses a front-matter date.  ok is false for blank or
// unrecognized input.
func ParseDate(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalize applies the defaulting rules and derives slug and token.
func normalize(locale, key string, fm FrontMatter, now time.Time) Document {
	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = key
	}

	date, ok := ParseDate(fm.Date)
	if !ok {
		if fm.Date != "" {
			zap.L().Warn("content date unparseable, using now",
				zap.String("locale", locale),
				zap.String("key", key),
				zap.String("date", fm.Date))
		}
		date = now
	}

	tags := fm.Tags
	if tags == nil {
		tags = []string{}
	}

	id := fm.ID
	if id != "" && !postid.Valid(id) {
		// A malformed identifier cannot be embedded in a token that
		// SplitToken would recognize, so the document degrades to legacy.
		zap.L().Warn("content identifier malformed, ignoring",
			zap.String("locale", locale),
			zap.String("key", key),
			zap.String("id", id))
		id = ""
	}

	slug := routing.Slugify(title)
	token := key
	if id != "" {
		token = routing.JoinToken(slug, id)
	}
	return Document{
		Locale:      locale,
		ContentKey:  key,
		Title:       title,
		Description: fm.Description,
		Date:        date,
		Tags:        tags,
		Author:      fm.Author,
		Category:    fm.Category,
		Image:       fm.Image,
		Identifier:  id,
		Slug:        slug,
		Token:       token,
	}
}
