// internal/routing/slug.go
//
// Slug and path helpers.
//
// • Slugify(title)      ─ converts arbitrary text into a URL-safe slug
//   restricted to ASCII a-z, 0-9 and “-”.
// • BuildPath(parts...) ─ joins path segments with a single “/” and
//   guarantees exactly one leading slash.
//
// Rules (Slugify)
// ---------------
// 1. Lower-case everything.
// 2. Drop every character outside [a-z0-9], whitespace, and “-”.  Dropped
//    characters do NOT become separators, so “don’t” → “dont”.
// 3. Convert any run of whitespace and “-” to one “-”.
// 4. Trim leading / trailing “-”.
//
// Notes
// -----
// • The output alphabet is [a-z0-9-] with no leading, trailing, or doubled
//   dash, so Slugify(Slugify(x)) == Slugify(x).
// • A title made only of non-ASCII letters yields the empty slug.  Tokens
//   still resolve through the identifier.
// • No length cap.  The stale check compares the full slug, so truncation
//   would hide title edits past the cut.

package routing

import (
	"strings"
	"unicode"
)

// Slugify converts title → lower-kebab ASCII.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	pendingDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == '-' || unicode.IsSpace(r):
			pendingDash = true
		default:
			// stripped, not a separator
		}
	}
	return b.String()
}

// BuildPath joins segments ensuring exactly one leading slash and no
// duplicate separators.  Empty segments are skipped.
func BuildPath(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		b.WriteByte('/')
		b.WriteString(p)
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}
