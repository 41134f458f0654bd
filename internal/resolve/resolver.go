// internal/resolve/resolver.go
//
// Token → document resolution with self-healing.
//
// Context
// -------
// A URL token is `<slug>-<id>` for documents that carry an identifier, or a
// bare content key for legacy documents.  Titles change, so the slug half of
// an old link may be wrong; the identifier half never is.  The resolver finds
// the document and reports whether the requested token is the canonical one.
//
// Workflow
// --------
//  1. SplitToken.  When the suffix is identifier-shaped, look it up.  A hit
//     is Found; it is Stale when the requested slug differs from the
//     document's current slug.
//  2. Otherwise, or on an identifier miss, look the FULL token up as a
//     content key.  A hit is Found and Legacy, never Stale.
//  3. Anything else is NotFound.
//
// Notes
// -----
// • Not-found is a value, not an error.  Catalog failures are logged and
//   reported as not-found so a broken store never leaks to visitors.
// • Oxford commas, two spaces after periods.

package resolve

import (
	"context"

	"go.uber.org/zap"

	"github.com/yanizio/quill/internal/content"
	"github.com/yanizio/quill/internal/metrics"
	"github.com/yanizio/quill/internal/routing"
)

// Catalog is the slice of *content.Catalog the resolver needs.
type Catalog interface {
	Snapshot(ctx context.Context, locale string) (*content.Snapshot, error)
}

// Result is the outcome of one resolution.  Document is nil for NotFound.
type Result struct {
	Document *content.Document
	Stale    bool
	Legacy   bool
}

// Found reports whether a document matched.
func (r Result) Found() bool { return r.Document != nil }

// Outcome names r for logs and metrics.
func (r Result) Outcome() string {
	switch {
	case r.Document == nil:
		return metrics.OutcomeNotFound
	case r.Stale:
		return metrics.OutcomeStale
	case r.Legacy:
		return metrics.OutcomeLegacy
	default:
		return metrics.OutcomeFound
	}
}

// Resolver maps (locale, token) pairs to documents.
type Resolver struct {
	catalog Catalog
}

// New returns a Resolver over catalog.
func New(catalog Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve looks token up in locale.  Documents in other locales are never
// consulted.
func (r *Resolver) Resolve(ctx context.Context, locale, token string) Result {
	res, known := r.resolve(ctx, locale, token)
	label := locale
	if !known {
		label = "unknown" // keeps request paths out of label values
	}
	metrics.ResolveTotal.WithLabelValues(label, res.Outcome()).Inc()
	return res
}

// resolve reports known=false when locale has no snapshot.
func (r *Resolver) resolve(ctx context.Context, locale, token string) (res Result, known bool) {
	snap, err := r.catalog.Snapshot(ctx, locale)
	if err != nil {
		zap.L().Warn("resolve: catalog unavailable",
			zap.String("locale", locale),
			zap.String("token", token),
			zap.Error(err))
		return Result{}, false
	}
	if token == "" {
		return Result{}, true
	}

	slug, id := routing.SplitToken(token)
	if id != "" {
		if doc, ok := snap.ByIdentifier(id); ok {
			return Result{Document: &doc, Stale: slug != doc.Slug}, true
		}
	}

	// Legacy lookup always uses the token as requested: a content key may
	// itself end in something identifier-shaped.
	if doc, ok := snap.ByKey(token); ok {
		return Result{Document: &doc, Legacy: true}, true
	}
	return Result{}, true
}
