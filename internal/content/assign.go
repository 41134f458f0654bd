// internal/content/assign.go
//
// Identifier backfill for filesystem content.
//
// Context
// -------
// Identifiers are author-supplied front matter and are never computed at
// read time.  Documents created before the identifier scheme, or by authors
// who forgot, carry none and therefore cannot self-heal.  Assigner mints one
// identifier per such file and writes it back exactly once.
//
// Rules
// -----
//   • An existing, valid identifier is never touched.
//   • An existing, malformed identifier is reported and left alone.  Links
//     may already point at it, so replacing it silently would break them.
//   • A minted identifier that collides with one already used in the locale
//     is reported and not written.
//   • Files are replaced atomically (natefinch/atomic); a crash mid-write
//     leaves the original file.
//
// Notes
// -----
// • The seed date is the raw front-matter date when present.  An undated
//   file is seeded with the current time, and that date is written back
//   next to the identifier, so the seed stays reproducible from the file.
// • Oxford commas, two spaces after periods.

package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/yanizio/quill/internal/postid"
)

// ErrIdentifierCollision reports a minted identifier already used in the
// locale.
var ErrIdentifierCollision = errors.New("content: identifier collision")

// Assignment is the per-file outcome of an Assigner run.
type Assignment struct {
	Locale     string `json:"locale"`
	ContentKey string `json:"content_key"`
	File       string `json:"file"`
	ID         string `json:"id,omitempty"`
	Assigned   bool   `json:"assigned"`
	Err        error  `json:"-"`
}

// Assigner backfills identifiers into content files under Dir.
type Assigner struct {
	Dir    string
	DryRun bool
	Now    func() time.Time
}

// Run processes every content file of locale, in key order.  The returned
// error is reserved for failures that stop the whole run; per-file problems
// are reported in Assignment.Err.
func (a *Assigner) Run(ctx context.Context, locale string) ([]Assignment, error) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	files, err := listSourceFiles(os.DirFS(a.Dir), locale)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	type parsed struct {
		path string
		src  []byte
		fm   FrontMatter
		body []byte
	}
	docs := make(map[string]parsed, len(keys))
	out := make([]Assignment, 0, len(keys))
	used := map[string]string{}

	// Pass 1: parse everything and record identifiers already in use.
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		p := filepath.Join(a.Dir, locale, files[key])
		src, err := os.ReadFile(p)
		if err != nil {
			out = append(out, Assignment{Locale: locale, ContentKey: key, File: p, Err: err})
			continue
		}
		fm, body, err := ParseSource(src)
		if err != nil {
			out = append(out, Assignment{Locale: locale, ContentKey: key, File: p, Err: err})
			continue
		}
		if postid.Valid(fm.ID) {
			used[fm.ID] = key
		}
		docs[key] = parsed{path: p, src: src, fm: fm, body: body}
	}

	// Pass 2: mint and write.
	for _, key := range keys {
		d, ok := docs[key]
		if !ok {
			continue
		}
		res := Assignment{Locale: locale, ContentKey: key, File: d.path}

		title := strings.TrimSpace(d.fm.Title)
		if title == "" {
			title = key
		}
		date, stamped := d.fm.Date, ""
		if date == "" {
			date = now().UTC().Format(time.RFC3339)
			stamped = date
		}
		seed := postid.Seed{ContentKey: key, Title: title, Date: date, Locale: locale}

		id, assigned, err := postid.Assign(d.fm.ID, seed)
		res.ID = id
		if err != nil {
			res.Err = fmt.Errorf("%s: %w", key, err)
			out = append(out, res)
			continue
		}
		if !assigned {
			out = append(out, res)
			continue
		}
		if owner, taken := used[id]; taken {
			res.Err = fmt.Errorf("%w: %s already used by %s", ErrIdentifierCollision, id, owner)
			out = append(out, res)
			continue
		}
		used[id] = key
		res.Assigned = true

		if !a.DryRun {
			fields := []field{{IdentifierKeys[0], id}}
			if stamped != "" {
				fields = append(fields, field{"date", stamped})
			}
			updated, err := withFields(d.src, fields...)
			if err == nil {
				err = atomic.WriteFile(d.path, bytes.NewReader(updated))
			}
			if err != nil {
				res.Assigned = false
				res.Err = fmt.Errorf("write %s: %w", d.path, err)
				out = append(out, res)
				continue
			}
			zap.L().Info("identifier assigned",
				zap.String("locale", locale),
				zap.String("key", key),
				zap.String("id", id))
		}
		out = append(out, res)
	}
	return out, nil
}

// field is one top-level front-matter key and its string value.
type field struct{ key, value string }

// withFields returns src with each `key: "<value>"` set in its front matter,
// creating a front-matter block when the file has none.
func withFields(src []byte, fields ...field) ([]byte, error) {
	block, body, err := splitSource(src)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.Grow(len(src) + 32*len(fields))
	b.WriteString("---\n")

	// A blank key is replaced in place; YAML rejects duplicate keys.
	replaced := make([]bool, len(fields))
	for _, l := range bytes.SplitAfter(block, []byte("\n")) {
		hit := false
		for i, f := range fields {
			if !replaced[i] && isBlankKey(l, f.key) {
				fmt.Fprintf(&b, "%s: %q\n", f.key, f.value)
				replaced[i], hit = true, true
				break
			}
		}
		if !hit {
			b.Write(l)
		}
	}
	for i, f := range fields {
		if !replaced[i] {
			fmt.Fprintf(&b, "%s: %q\n", f.key, f.value)
		}
	}
	b.WriteString("---\n")
	b.Write(body)
	return b.Bytes(), nil
}

// isBlankKey matches a top-level `key:` line with an empty or null value.
func isBlankKey(line []byte, key string) bool {
	s := strings.TrimRight(string(line), " \t\r\n")
	rest, ok := strings.CutPrefix(s, key+":")
	if !ok {
		return false
	}
	switch strings.TrimSpace(rest) {
	case "", `""`, "''", "~", "null":
		return true
	}
	return false
}
