// internal/component/siteinfo.go
//
// Exposes site-wide resources to Components during Init() without
// importing the concrete site package, which would be an import cycle.

package component

import (
	"github.com/yanizio/quill/internal/config"
	"github.com/yanizio/quill/internal/content"
	"github.com/yanizio/quill/internal/permalink"
	"github.com/yanizio/quill/internal/requestinfo"
	"github.com/yanizio/quill/internal/resolve"
	"github.com/yanizio/quill/internal/view"
)

// SiteInfo provides read-only access to runtime assets a Component may need
// at Init time.  The concrete *site.Site satisfies it.
type SiteInfo interface {
	GetConfig() *config.Config
	GetCatalog() *content.Catalog
	GetResolver() *resolve.Resolver
	GetLinks() permalink.Builder
	GetViews() *view.Engine
	GetMarkdown() *view.Markdown
	GetNegotiator() *requestinfo.Negotiator
}
