// internal/content/frontmatter.go
//
// Front-matter splitting and typed decoding.
//
// Context
// -------
// A content file is YAML front matter fenced by “---” lines, followed by the
// Markdown (or MDX) body:
//
//	---
//	title: Hello World
//	date: 2024-03-01
//	tags: [go, web]
//	id: 3f9a0c1e
//	---
//	Body text …
//
// Workflow
// --------
//  1. splitSource separates the fenced block from the body.  A file without
//     an opening fence has no front matter, which is legal.  An opening fence
//     without a closing one is malformed.
//  2. The block is decoded into a yaml.Node tree, not a map, so scalars keep
//     their source text.  “id: 00000000” must stay a string, not become 0.
//  3. Known keys populate FrontMatter; everything is also kept in Extra.
//
// Notes
// -----
// • Defaulting (title, date, tags) is NOT done here; see document.go.
// • Oxford commas, two spaces after periods.

package content

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMalformed marks a document whose front matter cannot be parsed.
var ErrMalformed = errors.New("content: malformed front matter")

// IdentifierKeys lists the front-matter keys accepted as the identifier, in
// priority order.  New identifiers are always written under the first one.
var IdentifierKeys = []string{"id", "postId", "post_id"}

// FrontMatter is the typed view over a document's front matter.  Empty
// strings and nil slices mean “absent”.
type FrontMatter struct {
	Title       string
	Description string
	Date        string // raw source text; parsed during normalization
	Tags        []string
	Author      string
	Category    string
	Image       string
	ID          string
	Extra       map[string]any
}

var bom = []byte("\ufeff")

// ParseSource splits src and decodes its front matter.
func ParseSource(src []byte) (FrontMatter, []byte, error) {
	block, body, err := splitSource(src)
	if err != nil {
		return FrontMatter{}, nil, err
	}
	fm, err := decodeFrontMatter(block)
	if err != nil {
		return FrontMatter{}, nil, err
	}
	return fm, body, nil
}

// splitSource returns the raw YAML block (nil when absent) and the body.
func splitSource(src []byte) (block, body []byte, err error) {
	src = bytes.TrimPrefix(src, bom)

	// lineAt returns the end of the line starting at from (exclusive of the
	// newline) and the start of the following line.
	lineAt := func(from int) (end, next int) {
		i := bytes.IndexByte(src[from:], '\n')
		if i < 0 {
			return len(src), len(src)
		}
		return from + i, from + i + 1
	}
	isFence := func(start, end int, fences ...string) bool {
		line := strings.TrimRight(string(src[start:end]), " \t\r")
		for _, f := range fences {
			if line == f {
				return true
			}
		}
		return false
	}

	end, next := lineAt(0)
	if !isFence(0, end, "---") {
		return nil, src, nil
	}
	blockStart := next
	for pos := next; pos < len(src); {
		end, nxt := lineAt(pos)
		if isFence(pos, end, "---", "...") {
			return src[blockStart:pos], src[nxt:], nil
		}
		pos = nxt
	}
	return nil, nil, fmt.Errorf("%w: unterminated front matter", ErrMalformed)
}

func decodeFrontMatter(block []byte) (FrontMatter, error) {
	fm := FrontMatter{Extra: map[string]any{}}
	if len(bytes.TrimSpace(block)) == 0 {
		return fm, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return FrontMatter{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return fm, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return FrontMatter{}, fmt.Errorf("%w: front matter is not a mapping", ErrMalformed)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i].Value, root.Content[i+1]

		var v any
		if err := val.Decode(&v); err != nil {
			return FrontMatter{}, fmt.Errorf("%w: key %q: %v", ErrMalformed, key, err)
		}
		fm.Extra[key] = v

		switch key {
		case "title":
			fm.Title = scalar(val)
		case "description", "summary":
			if fm.Description == "" {
				fm.Description = scalar(val)
			}
		case "date":
			fm.Date = scalar(val)
		case "tags":
			fm.Tags = list(val)
		case "author":
			fm.Author = scalar(val)
		case "category":
			fm.Category = scalar(val)
		case "image":
			fm.Image = scalar(val)
		}
	}

	for _, k := range IdentifierKeys {
		for i := 0; i+1 < len(root.Content); i += 2 {
			if root.Content[i].Value == k {
				if id := scalar(root.Content[i+1]); id != "" {
					fm.ID = id
				}
			}
		}
		if fm.ID != "" {
			break
		}
	}
	return fm, nil
}

// scalar returns the trimmed source text of a scalar node, or "" for any
// other node kind and for YAML null.
func scalar(n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return ""
	}
	return strings.TrimSpace(n.Value)
}

// list accepts a YAML sequence or a comma-separated scalar.
func list(n *yaml.Node) []string {
	var out []string
	switch n.Kind {
	case yaml.SequenceNode:
		for _, c := range n.Content {
			if s := scalar(c); s != "" {
				out = append(out, s)
			}
		}
	case yaml.ScalarNode:
		for _, part := range strings.Split(scalar(n), ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
