// internal/content/catalog.go
//
// Content catalog: list, normalize, and index documents per locale.
//
// Context
// -------
// The catalog is rebuilt from the store on every call.  There is no cache
// and therefore no invalidation problem: a title edit is visible on the very
// next request, and stale links are healed by redirect, not by eviction.
//
// Workflow (Snapshot)
// -------------------
//  1. Reject locales outside the configured set (ErrUnknownLocale).
//  2. Store.Keys → Store.Read → ParseSource → normalize, per key.  A read or
//     parse failure skips that one document, logs it, and bumps
//     catalog_skipped_total.  One bad file never fails the listing.
//  3. Stable sort by date, newest first.
//  4. Claim identifiers oldest-first.  A later document repeating a claimed
//     identifier loses it for this snapshot and falls back to its content key.
//  5. Index by identifier and by content key.
//
// Concurrency
// -----------
// Identical concurrent builds for one locale share a single store scan via
// singleflight.  The result is handed to every waiter and then dropped.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package content

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/quill/internal/metrics"
)

// ErrUnknownLocale is returned for locales outside the configured set.
var ErrUnknownLocale = errors.New("content: unknown locale")

// Catalog enumerates and loads documents from a Store.  Safe for concurrent
// use; holds no per-request state.
type Catalog struct {
	store   Store
	locales []string
	now     func() time.Time
	sfg     singleflight.Group
}

// Option customizes a Catalog.
type Option func(*Catalog)

// WithClock overrides the clock used for the missing-date default.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// NewCatalog returns a Catalog over store serving the given locales.
func NewCatalog(store Store, locales []string, opts ...Option) *Catalog {
	c := &Catalog{
		store:   store,
		locales: append([]string(nil), locales...),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Locales returns the configured locale codes in order.
func (c *Catalog) Locales() []string { return append([]string(nil), c.locales...) }

// Supports reports whether locale is configured.
func (c *Catalog) Supports(locale string) bool {
	for _, l := range c.locales {
		if l == locale {
			return true
		}
	}
	return false
}

// List returns every readable document for locale, newest first.
func (c *Catalog) List(ctx context.Context, locale string) ([]Document, error) {
	snap, err := c.Snapshot(ctx, locale)
	if err != nil {
		return nil, err
	}
	return snap.Documents(), nil
}

// Raw loads one document's front matter and body.  Missing, unreadable, and
// malformed documents all yield an error wrapping ErrNotFound.
func (c *Catalog) Raw(ctx context.Context, locale, key string) (*RawDocument, error) {
	if !c.Supports(locale) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
	}
	src, err := c.store.Read(ctx, locale, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			zap.L().Warn("content read failed",
				zap.String("locale", locale),
				zap.String("key", key),
				zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, locale, key)
	}
	fm, body, err := ParseSource(src)
	if err != nil {
		zap.L().Warn("content malformed",
			zap.String("locale", locale),
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, locale, key)
	}
	return &RawDocument{Locale: locale, ContentKey: key, FrontMatter: fm, Body: body}, nil
}

// Snapshot builds an indexed, point-in-time view of locale.
func (c *Catalog) Snapshot(ctx context.Context, locale string) (*Snapshot, error) {
	if !c.Supports(locale) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLocale, locale)
	}
	v, err, _ := c.sfg.Do(locale, func() (any, error) {
		// Waiters share this build; one caller's cancellation must not
		// fail the others.
		return c.build(context.WithoutCancel(ctx), locale)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (c *Catalog) build(ctx context.Context, locale string) (*Snapshot, error) {
	start := time.Now()
	defer func() {
		metrics.CatalogBuildSeconds.WithLabelValues(locale).Observe(time.Since(start).Seconds())
	}()

	keys, err := c.store.Keys(ctx, locale)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", locale, err)
	}

	now := c.now()
	docs := make([]Document, 0, len(keys))
	for _, key := range keys {
		src, err := c.store.Read(ctx, locale, key)
		if err != nil {
			zap.L().Warn("catalog skip unreadable",
				zap.String("locale", locale),
				zap.String("key", key),
				zap.Error(err))
			metrics.CatalogSkippedTotal.WithLabelValues(locale, "unreadable").Inc()
			continue
		}
		fm, _, err := ParseSource(src)
		if err != nil {
			zap.L().Warn("catalog skip malformed",
				zap.String("locale", locale),
				zap.String("key", key),
				zap.Error(err))
			metrics.CatalogSkippedTotal.WithLabelValues(locale, "malformed").Inc()
			continue
		}
		docs = append(docs, normalize(locale, key, fm, now))
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].Date.After(docs[j].Date)
	})

	snap := newSnapshot(locale, docs)
	metrics.CatalogDocuments.WithLabelValues(locale).Set(float64(len(snap.docs)))
	zap.L().Debug("catalog built",
		zap.String("locale", locale),
		zap.Int("documents", len(snap.docs)),
		zap.Duration("took", time.Since(start)))
	return snap, nil
}

// Translations returns doc's counterpart in every configured locale.  See
// TranslationsIn.  A locale that fails to build is left out.
func (c *Catalog) Translations(ctx context.Context, doc Document) map[string]Document {
	snaps := make(map[string]*Snapshot, len(c.locales))
	for _, l := range c.locales {
		if l == doc.Locale {
			continue
		}
		snap, err := c.Snapshot(ctx, l)
		if err != nil {
			zap.L().Warn("translations: locale skipped",
				zap.String("locale", l),
				zap.Error(err))
			continue
		}
		snaps[l] = snap
	}
	return TranslationsIn(snaps, doc)
}

// TranslationsIn pairs doc with the documents sharing its identifier in
// snaps, keyed by locale.  doc itself always fills its own locale.  A legacy
// document has no identifier to pair on and maps to itself alone.
func TranslationsIn(snaps map[string]*Snapshot, doc Document) map[string]Document {
	out := map[string]Document{doc.Locale: doc}
	if !doc.HasIdentifier() {
		return out
	}
	for l, snap := range snaps {
		if l == doc.Locale || snap == nil {
			continue
		}
		if t, ok := snap.ByIdentifier(doc.Identifier); ok {
			out[l] = t
		}
	}
	return out
}

// -----------------------------------------------------------------------------
// Snapshot
// -----------------------------------------------------------------------------

// Snapshot is an immutable, indexed listing of one locale.
type Snapshot struct {
	Locale string
	docs   []Document
	byID   map[string]int
	byKey  map[string]int
}

func newSnapshot(locale string, docs []Document) *Snapshot {
	s := &Snapshot{
		Locale: locale,
		docs:   docs,
		byID:   make(map[string]int, len(docs)),
		byKey:  make(map[string]int, len(docs)),
	}

	// Oldest first: the earliest document is the one the identifier was
	// minted for.
	for i := len(docs) - 1; i >= 0; i-- {
		d := &docs[i]
		s.byKey[d.ContentKey] = i
		if d.Identifier == "" {
			continue
		}
		if owner, taken := s.byID[d.Identifier]; taken {
			zap.L().Error("duplicate identifier",
				zap.String("locale", locale),
				zap.String("id", d.Identifier),
				zap.String("owner", docs[owner].ContentKey),
				zap.String("duplicate", d.ContentKey))
			metrics.DuplicateIdentifiersTotal.WithLabelValues(locale).Inc()
			d.Identifier = ""
			d.Token = d.ContentKey
			continue
		}
		s.byID[d.Identifier] = i
	}
	return s
}

// Documents returns a copy of the listing, newest first.
func (s *Snapshot) Documents() []Document {
	return append([]Document(nil), s.docs...)
}

// Len returns the number of documents.
func (s *Snapshot) Len() int { return len(s.docs) }

// ByIdentifier finds the document owning id.
func (s *Snapshot) ByIdentifier(id string) (Document, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Document{}, false
	}
	return s.docs[i], true
}

// ByKey finds the document stored under the exact content key.
func (s *Snapshot) ByKey(key string) (Document, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return Document{}, false
	}
	return s.docs[i], true
}
