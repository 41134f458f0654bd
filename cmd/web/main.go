// cmd/web/main.go
//
// Quill – HTTP entry point.
//
// Startup
// -------
//
//  1. Load config (conf/.env → conf/global.yaml → QUILL_* env).
//
//  2. Start the rotating logger (tees to console when running in a TTY).
//
//  3. Open the site: content store, catalog, resolver, views.
//
//  4. Init every registered component and mount its routes.  The blog
//     owns “/”; any other component lives under /<name>.
//
//  5. Wrap the router:
//
//     • StripSlashes, Recoverer   – chi middleware
//     • Enrich                    – UA, client IP, negotiated locale
//     • RequestLog                – request id, status-levelled access log
//     • RateLimit                 – per-IP token bucket (when configured)
//     • Security                  – response headers
//     • ForceHTTPS                – 308 to https (when configured)
//     • gzip                      – klauspost gzhttp (when configured)
//
//  6. Expose Prometheus /metrics.
//
//  7. Serve until SIGINT or SIGTERM, then drain for http.shutdown_timeout.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/quill/internal/component"
	"github.com/yanizio/quill/internal/config"
	"github.com/yanizio/quill/internal/logger"
	"github.com/yanizio/quill/internal/middleware"
	"github.com/yanizio/quill/internal/requestinfo"
	"github.com/yanizio/quill/internal/server"
	"github.com/yanizio/quill/internal/site"

	_ "github.com/yanizio/quill/components/blog"
)

const (
	rateLimitClients = 10_000 // per-IP limiter table size
	rootComponent    = "blog" // mounted at “/”; the rest at /<name>
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(logger.Options{
		Dir:   cfg.Log.Dir,
		Level: cfg.Log.Level,
		Tee:   logger.IsTTY(),
	})
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Site ────────────────────────────────────────────────────────
	//
	s, err := site.Open(ctx, cfg)
	if err != nil {
		logOut.Fatalw("open site", "err", err)
	}
	defer s.Close()

	//
	// ── 2.  Router and middleware ───────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Use(chimw.StripSlashes, chimw.Recoverer)
	r.Use(requestinfo.Enrich(s.Negotiator), middleware.RequestLog)
	if cfg.HTTP.RateLimit > 0 {
		r.Use(middleware.RateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst, rateLimitClients))
	}
	r.Use(middleware.Security)

	//
	// ── 3.  Metrics endpoint ────────────────────────────────────────────
	//
	r.Handle("/metrics", promhttp.Handler())

	//
	// ── 4.  Components ──────────────────────────────────────────────────
	//
	for _, c := range component.All() {
		if err := c.Init(s); err != nil {
			logOut.Fatalw("component init", "component", c.Name(), "err", err)
		}
		prefix := "/" + c.Name()
		if c.Name() == rootComponent {
			prefix = "/"
		}
		r.Mount(prefix, c.Routes())
		logOut.Infow("component mounted", "component", c.Name(), "prefix", prefix)
	}

	//
	// ── 5.  Outer wrappers and serve ────────────────────────────────────
	//
	var h http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		h = middleware.ForceHTTPS(cfg.HTTP.ExemptHosts...)(h)
	}
	if cfg.HTTP.Gzip {
		h = gzhttp.GzipHandler(h)
	}

	srv := server.New(cfg.HTTP.ListenAddr, h)
	if err := server.Run(ctx, srv, cfg.HTTP.ShutdownTimeout); err != nil {
		zap.L().Fatal("server stopped", zap.Error(err))
	}
	logOut.Info("shutdown complete")
}
