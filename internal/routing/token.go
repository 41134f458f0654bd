// internal/routing/token.go
//
// Slug-id token codec.
//
// Context
// -------
// A blog URL ends in one path segment, the token.  Modern tokens are
// “{slug}-{id}”, where id is an eight-character hex post identifier.  Links
// minted before identifiers existed carry a bare legacy slug instead.
//
// Rules (SplitToken)
// ------------------
// 1. Find the last “-”.  None, or “-” as the final character, means the whole
//    token is a slug.
// 2. The suffix after it is an identifier only when postid.Valid accepts it.
//    Anything else (“part-2”, “top-10”, “v2024”) keeps the whole token as a
//    slug, so titles ending in number-like words never false-positive.
//
// JoinToken is the inverse: SplitToken(JoinToken(s, id)) == (s, id) for any
// valid id.

package routing

import (
	"strings"

	"github.com/yanizio/quill/internal/postid"
)

// SplitToken decomposes token into its slug and identifier.  id is empty for
// legacy tokens.
func SplitToken(token string) (slug, id string) {
	i := strings.LastIndexByte(token, '-')
	if i < 0 || i == len(token)-1 {
		return token, ""
	}
	if cand := token[i+1:]; postid.Valid(cand) {
		return token[:i], cand
	}
	return token, ""
}

// JoinToken composes a token.  An empty id yields the bare slug.
func JoinToken(slug, id string) string {
	if id == "" {
		return slug
	}
	return slug + "-" + id
}
