// internal/postid/postid.go
//
// Post identifier generator.
//
// Context
// -------
// Every article carries a short identifier in its front matter.  The
// identifier is the durable public identity of the article inside one locale
// and is embedded as the last dash-delimited segment of its URL token
// ("my-title-3f9a0c1e").  Titles may change at any time; the identifier may
// not.
//
// Contract
// --------
//   • Generate(seed) ─ SHA-256 over contentKey, title, date, and locale,
//     hex-encoded, truncated to Length characters.  Alphabet is [0-9a-f].
//   • Valid(s)       ─ exact length and alphabet check.  The slug codec uses
//     it to decide whether a trailing token segment is an identifier.
//   • Assign(cur, s) ─ generate-once policy.  A present identifier is
//     returned untouched; a missing one is minted from the seed.
//
// Notes
// -----
// • Length and alphabet are a public contract.  Changing either breaks the
//   disambiguation of every previously issued link.
// • Oxford commas, two spaces after periods.

package postid

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// Length is the number of hex characters in an identifier.
const Length = 8

// ErrMalformed is returned by Assign when an existing identifier is present
// but does not match the identifier shape.  Such a value is never replaced
// silently because links may already point at it.
var ErrMalformed = errors.New("postid: existing identifier is malformed")

// Seed holds the content properties an identifier is derived from.
type Seed struct {
	ContentKey string
	Title      string
	Date       string
	Locale     string
}

// Generate returns the identifier for seed.  Same seed, same identifier.
func Generate(s Seed) string {
	h := sha256.New()
	// Fields are joined without a separator.
	h.Write([]byte(s.ContentKey))
	h.Write([]byte(s.Title))
	h.Write([]byte(s.Date))
	h.Write([]byte(s.Locale))
	return hex.EncodeToString(h.Sum(nil))[:Length]
}

// Valid reports whether s has the exact identifier shape.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

// Assign applies the generate-once policy.  When current is non-blank it is
// returned as is (assigned == false), or ErrMalformed when it is not a valid
// identifier.  When current is blank a new identifier is generated from seed
// and assigned == true.
func Assign(current string, seed Seed) (id string, assigned bool, err error) {
	current = strings.TrimSpace(current)
	if current != "" {
		if !Valid(current) {
			return current, false, ErrMalformed
		}
		return current, false, nil
	}
	return Generate(seed), true, nil
}
