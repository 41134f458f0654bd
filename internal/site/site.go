// internal/site/site.go
//
// Site aggregate: every long-lived resource the blog needs, built once at
// startup from Config.
//
// Workflow (Open)
// ---------------
//  1. Open the content store named by content.driver.  SQL drivers resolve
//     the password (plain or `vault:` reference), open a pool, and run the
//     content schema plus component migrations.
//  2. Build the catalog over the store and the configured locales.
//  3. Build the resolver, link builder, views, Markdown converter, and
//     locale negotiator.
//
// Notes
// -----
// • Nothing here caches content.  The catalog is rebuilt per request.
// • Close releases the SQL pool when one was opened.
// • Oxford commas, two spaces after periods.

package site

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/quill/internal/component"
	"github.com/yanizio/quill/internal/config"
	"github.com/yanizio/quill/internal/content"
	"github.com/yanizio/quill/internal/database"
	"github.com/yanizio/quill/internal/permalink"
	"github.com/yanizio/quill/internal/requestinfo"
	"github.com/yanizio/quill/internal/resolve"
	"github.com/yanizio/quill/internal/view"
)

// Site implements component.SiteInfo.
type Site struct {
	Config     *config.Config
	DB         *sqlx.DB // nil for the fs driver
	Catalog    *content.Catalog
	Resolver   *resolve.Resolver
	Links      permalink.Builder
	Views      *view.Engine
	Markdown   *view.Markdown
	Negotiator *requestinfo.Negotiator
}

var _ component.SiteInfo = (*Site)(nil)

// Option customizes Open.
type Option func(*options)

type options struct {
	catalog []content.Option
	secrets SecretResolver
}

// WithCatalogOptions forwards options to content.NewCatalog.
func WithCatalogOptions(o ...content.Option) Option {
	return func(s *options) { s.catalog = append(s.catalog, o...) }
}

// WithSecrets overrides how `content.password` is resolved.
func WithSecrets(r SecretResolver) Option {
	return func(s *options) { s.secrets = r }
}

// Open assembles the site.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Site, error) {
	o := options{secrets: vaultSecrets}
	for _, fn := range opts {
		fn(&o)
	}

	store, db, err := OpenStore(ctx, cfg.Content, o.secrets)
	if err != nil {
		return nil, err
	}
	if db != nil {
		if err := migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	engine, err := view.New(cfg.Site.TemplateDir)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	locales := cfg.Locales()
	cat := content.NewCatalog(store, locales, o.catalog...)
	s := &Site{
		Config:     cfg,
		DB:         db,
		Catalog:    cat,
		Resolver:   resolve.New(cat),
		Links:      permalink.New(cfg.Site.BaseURL, locales),
		Views:      engine,
		Markdown:   view.NewMarkdown(cfg.Content.RenderCache),
		Negotiator: requestinfo.NewNegotiator(locales),
	}
	zap.S().Infow("site ready",
		"name", cfg.Site.Name,
		"base_url", cfg.Site.BaseURL,
		"locales", locales,
		"driver", cfg.Content.Driver)
	return s, nil
}

// Close releases the SQL pool, if any.
func (s *Site) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// migrate applies the content schema and every component's migrations.
func migrate(ctx context.Context, db *sqlx.DB) error {
	stmts := []string{content.Schema}
	for _, c := range component.All() {
		stmts = append(stmts, c.Migrations()...)
	}
	if err := database.Migrate(ctx, db, stmts); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	return nil
}

/*──────────────────────────── SiteInfo ────────────────────────────────────*/

func (s *Site) GetConfig() *config.Config              { return s.Config }
func (s *Site) GetCatalog() *content.Catalog           { return s.Catalog }
func (s *Site) GetResolver() *resolve.Resolver         { return s.Resolver }
func (s *Site) GetLinks() permalink.Builder            { return s.Links }
func (s *Site) GetViews() *view.Engine                 { return s.Views }
func (s *Site) GetMarkdown() *view.Markdown            { return s.Markdown }
func (s *Site) GetNegotiator() *requestinfo.Negotiator { return s.Negotiator }
