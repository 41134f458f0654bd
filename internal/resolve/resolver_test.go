package resolve

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/quill/internal/content"
	"github.com/yanizio/quill/internal/metrics"
)

func file(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }

func newResolver(fsys fstest.MapFS) *Resolver {
	cat := content.NewCatalog(content.NewFSStoreFS(fsys), []string{"en", "ko"},
		content.WithClock(func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }))
	return New(cat)
}

func TestResolve_SelfHealing(t *testing.T) {
	fsys := fstest.MapFS{
		"en/post.mdx": file("---\ntitle: Old Title\ndate: 2024-01-01\nid: a1b2c3d4\n---\n"),
	}
	r := newResolver(fsys)
	ctx := context.Background()

	res := r.Resolve(ctx, "en", "old-title-a1b2c3d4")
	require.True(t, res.Found())
	assert.False(t, res.Stale)
	assert.False(t, res.Legacy)
	assert.Equal(t, "post", res.Document.ContentKey)

	// Title edit is visible on the next call; the old link now heals.
	fsys["en/post.mdx"] = file("---\ntitle: New Title\ndate: 2024-01-01\nid: a1b2c3d4\n---\n")

	res = r.Resolve(ctx, "en", "old-title-a1b2c3d4")
	require.True(t, res.Found())
	assert.True(t, res.Stale)
	assert.Equal(t, "new-title-a1b2c3d4", res.Document.Token)

	res = r.Resolve(ctx, "en", "new-title-a1b2c3d4")
	require.True(t, res.Found())
	assert.False(t, res.Stale)

	// Any slug, even none, still reaches the document by identifier.
	res = r.Resolve(ctx, "en", "-a1b2c3d4")
	require.True(t, res.Found())
	assert.True(t, res.Stale)
}

func TestResolve_LegacyFallback(t *testing.T) {
	r := newResolver(fstest.MapFS{
		"en/my-post.mdx": file("---\ntitle: Something Else Entirely\n---\n"),
	})
	ctx := context.Background()

	res := r.Resolve(ctx, "en", "my-post")
	require.True(t, res.Found())
	assert.False(t, res.Stale)
	assert.True(t, res.Legacy)
	assert.Equal(t, "my-post", res.Document.Token, "canonical token is the key it resolved by")

	res = r.Resolve(ctx, "en", "something-else-entirely")
	assert.False(t, res.Found(), "the title slug is not an address")

	res = r.Resolve(ctx, "en", "my-post-00000000")
	assert.False(t, res.Found())
}

func TestResolve_IdentifierShapedLegacyKey(t *testing.T) {
	r := newResolver(fstest.MapFS{
		"en/release-20240101.mdx": file("---\ntitle: Release\n---\n"),
	})
	res := r.Resolve(context.Background(), "en", "release-20240101")
	require.True(t, res.Found())
	assert.True(t, res.Legacy)
	assert.False(t, res.Stale)
}

func TestResolve_UnknownIdentifier(t *testing.T) {
	r := newResolver(fstest.MapFS{
		"en/some-slug.mdx": file("---\ntitle: Some Slug\nid: 12345678\n---\n"),
	})
	res := r.Resolve(context.Background(), "en", "some-slug-deadbeef")
	assert.False(t, res.Found())
	assert.Equal(t, metrics.OutcomeNotFound, res.Outcome())
}

func TestResolve_SameTitleIsolation(t *testing.T) {
	r := newResolver(fstest.MapFS{
		"en/one.mdx": file("---\ntitle: Intro\ndate: 2024-01-01\nid: 11111111\n---\n"),
		"en/two.mdx": file("---\ntitle: Intro\ndate: 2024-02-01\nid: 22222222\n---\n"),
	})
	ctx := context.Background()

	a := r.Resolve(ctx, "en", "intro-11111111")
	b := r.Resolve(ctx, "en", "intro-22222222")
	require.True(t, a.Found())
	require.True(t, b.Found())
	assert.Equal(t, "one", a.Document.ContentKey)
	assert.Equal(t, "two", b.Document.ContentKey)
	assert.NotEqual(t, a.Document.Token, b.Document.Token)
	assert.False(t, a.Stale)
	assert.False(t, b.Stale)
}

func TestResolve_LocaleIsolation(t *testing.T) {
	r := newResolver(fstest.MapFS{
		"en/hello.mdx": file("---\ntitle: Hello\nid: abcdabcd\n---\n"),
	})
	assert.False(t, r.Resolve(context.Background(), "ko", "hello-abcdabcd").Found())
	assert.False(t, r.Resolve(context.Background(), "ko", "hello").Found())
}

type failingCatalog struct{}

func (failingCatalog) Snapshot(context.Context, string) (*content.Snapshot, error) {
	return nil, errors.New("store offline")
}

func TestResolve_CatalogErrorIsNotFound(t *testing.T) {
	r := New(failingCatalog{})
	before := testutil.ToFloat64(metrics.ResolveTotal.WithLabelValues("unknown", metrics.OutcomeNotFound))

	res := r.Resolve(context.Background(), "en", "anything-a1b2c3d4")
	assert.False(t, res.Found())

	after := testutil.ToFloat64(metrics.ResolveTotal.WithLabelValues("unknown", metrics.OutcomeNotFound))
	assert.Equal(t, before+1, after)

	// Unconfigured locale goes the same way.
	assert.False(t, newResolver(fstest.MapFS{}).Resolve(context.Background(), "fr", "x").Found())
	assert.False(t, newResolver(fstest.MapFS{}).Resolve(context.Background(), "en", "").Found())
}

func TestResult_Outcome(t *testing.T) {
	doc := &content.Document{}
	assert.Equal(t, metrics.OutcomeFound, Result{Document: doc}.Outcome())
	assert.Equal(t, metrics.OutcomeStale, Result{Document: doc, Stale: true}.Outcome())
	assert.Equal(t, metrics.OutcomeLegacy, Result{Document: doc, Legacy: true}.Outcome())
	assert.Equal(t, metrics.OutcomeNotFound, Result{}.Outcome())
}
