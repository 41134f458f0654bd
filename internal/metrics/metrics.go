// Package metrics holds Prometheus instruments that are used across the
// site.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Resolve outcomes, used as the "outcome" label of ResolveTotal.
const (
	OutcomeFound    = "found"
	OutcomeStale    = "stale"
	OutcomeLegacy   = "legacy"
	OutcomeNotFound = "not_found"
)

var (
	ResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permalink_resolve_total",
			Help: "Token resolutions by locale and outcome.",
		}, []string{"locale", "outcome"})

	CatalogBuildSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_build_seconds",
			Help:    "Time spent listing and normalizing one locale.",
			Buckets: prometheus.DefBuckets,
		}, []string{"locale"})

	CatalogDocuments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_documents",
			Help: "Documents in the most recent listing per locale.",
		}, []string{"locale"})

	CatalogSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_skipped_total",
			Help: "Documents excluded from a listing, by reason.",
		}, []string{"locale", "reason"})

	DuplicateIdentifiersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_duplicate_identifiers_total",
			Help: "Documents whose identifier was already claimed in the locale.",
		}, []string{"locale"})

	RenderCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "render_cache_hits_total",
			Help: "Markdown bodies served from the render cache.",
		})
)

func init() {
	prometheus.MustRegister(
		ResolveTotal,
		CatalogBuildSeconds,
		CatalogDocuments,
		CatalogSkippedTotal,
		DuplicateIdentifiersTotal,
		RenderCacheHitsTotal,
	)
}
