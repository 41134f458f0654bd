// internal/content/store.go
//
// Content-store contract and the filesystem implementation.
//
// Context
// -------
// The catalog needs only two things from storage: the list of content keys
// for a locale, and the raw bytes of one key.  Two stores satisfy it:
//
//   • FSStore  – <root>/<locale>/<key>.mdx or <key>.md (this file).
//   • SQLStore – content_document table via sqlx (sqlstore.go).
//
// Notes
// -----
// • Keys are returned in lexical order.  The catalog's date sort is stable,
//   so this order breaks date ties.
// • When both <key>.mdx and <key>.md exist, .mdx wins.
// • Read returns an error wrapping ErrNotFound for unknown keys.

package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// ErrNotFound is returned when a document or locale directory is absent.
var ErrNotFound = errors.New("content: not found")

// Extensions lists recognized content file extensions in priority order.
var Extensions = []string{".mdx", ".md"}

// Store is the read-only storage contract consumed by Catalog.
type Store interface {
	Keys(ctx context.Context, locale string) ([]string, error)
	Read(ctx context.Context, locale, key string) ([]byte, error)
}

// FSStore reads content files from an fs.FS laid out as <locale>/<key>.<ext>.
type FSStore struct {
	fsys fs.FS
}

// NewFSStore returns a store rooted at dir on the local disk.
func NewFSStore(dir string) *FSStore { return &FSStore{fsys: os.DirFS(dir)} }

// NewFSStoreFS returns a store over an arbitrary fs.FS (embed, fstest).
func NewFSStoreFS(fsys fs.FS) *FSStore { return &FSStore{fsys: fsys} }

// Keys lists content keys for locale.  A missing locale directory yields an
// empty list, not an error.
func (s *FSStore) Keys(ctx context.Context, locale string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	files, err := listSourceFiles(s.fsys, locale)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Read returns the raw source of locale/key.
func (s *FSStore) Read(ctx context.Context, locale, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validKey(key) || !validKey(locale) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, locale, key)
	}
	for _, ext := range Extensions {
		b, err := fs.ReadFile(s.fsys, path.Join(locale, key+ext))
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read %s/%s%s: %w", locale, key, ext, err)
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, locale, key)
}

// listSourceFiles maps key → file name for every content file directly
// under locale.  Sub-directories and dot-files are ignored.
func listSourceFiles(fsys fs.FS, locale string) (map[string]string, error) {
	if !validKey(locale) {
		return nil, fmt.Errorf("%w: locale %q", ErrNotFound, locale)
	}
	entries, err := fs.ReadDir(fsys, locale)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("list %s: %w", locale, err)
	}

	files := make(map[string]string, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		for rank, ext := range Extensions {
			if !strings.HasSuffix(name, ext) {
				continue
			}
			key := strings.TrimSuffix(name, ext)
			if prev, dup := files[key]; dup && extRank(prev) <= rank {
				break
			}
			files[key] = name
			break
		}
	}
	return files, nil
}

func extRank(name string) int {
	for i, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return i
		}
	}
	return len(Extensions)
}

// validKey rejects empty keys and anything that could escape the locale
// directory.
func validKey(k string) bool {
	return k != "" && k != "." && k != ".." &&
		!strings.ContainsAny(k, `/\`) && fs.ValidPath(k)
}
