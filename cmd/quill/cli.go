package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/yanizio/quill/internal/config"
	"github.com/yanizio/quill/internal/content"
	"github.com/yanizio/quill/internal/logger"
	"github.com/yanizio/quill/internal/permalink"
	"github.com/yanizio/quill/internal/site"
	"github.com/yanizio/quill/internal/sitemap"
)

// watchQuiet is how long assign-ids --watch waits after the last save.
const watchQuiet = 500 * time.Millisecond

var errAssignFailed = errors.New("some documents were not assigned")

// newApp builds the CLI.  stdout receives command output, stderr the log.
func newApp(stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:      "quill",
		Usage:     "Permalink maintenance for the Quill blog",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Usage: "project root holding conf/global.yaml", EnvVars: []string{config.EnvPrefix + "ROOT"}},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "debug|info|warn|error"},
		},
		Before: func(c *cli.Context) error {
			_, err := logger.New(logger.Options{Level: c.String("log-level"), Tee: true, Stdout: stderr})
			return err
		},
		Commands: []*cli.Command{
			assignCmd(),
			listCmd(),
			resolveCmd(),
			sitemapCmd(),
		},
	}
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	if root := c.String("root"); root != "" {
		return config.LoadFrom(root)
	}
	return config.Load()
}

func openSite(c *cli.Context) (*site.Site, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	return site.Open(c.Context, cfg)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

/*──────────────────────────── assign-ids ──────────────────────────────────*/

// assignment is content.Assignment with the error spelled out.
type assignment struct {
	content.Assignment
	Error string `json:"error,omitempty"`
}

func assignCmd() *cli.Command {
	return &cli.Command{
		Name:  "assign-ids",
		Usage: "Write an identifier into every document that lacks one",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "locale", Aliases: []string{"l"}, Usage: "limit to these locales (default: all)"},
			&cli.BoolFlag{Name: "dry-run", Aliases: []string{"n"}, Usage: "report without writing"},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "keep running and assign on every save"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			if cfg.Content.Driver != "fs" {
				return fmt.Errorf("assign-ids needs content.driver fs, have %q", cfg.Content.Driver)
			}
			locales := c.StringSlice("locale")
			if len(locales) == 0 {
				locales = cfg.Locales()
			}
			a := &content.Assigner{Dir: cfg.Content.Dir, DryRun: c.Bool("dry-run")}

			run := func(ctx context.Context, locale string) error {
				res, err := a.Run(ctx, locale)
				if err != nil {
					return err
				}
				out := make([]assignment, 0, len(res))
				failed := false
				for _, r := range res {
					row := assignment{Assignment: r}
					if r.Err != nil {
						row.Error = r.Err.Error()
						failed = true
					}
					out = append(out, row)
				}
				if err := writeJSON(c.App.Writer, out); err != nil {
					return err
				}
				if failed {
					return errAssignFailed
				}
				return nil
			}

			var firstErr error
			for _, l := range locales {
				if err := run(c.Context, l); err != nil && firstErr == nil {
					firstErr = err
				}
			}
			if !c.Bool("watch") {
				return firstErr
			}

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()
			zap.S().Infow("watching for changes", "dir", cfg.Content.Dir, "locales", locales)
			return content.Watch(ctx, cfg.Content.Dir, locales, watchQuiet, func(l string) {
				if err := run(ctx, l); err != nil {
					zap.S().Warnw("assign-ids", "locale", l, "err", err)
				}
			})
		},
	}
}

/*──────────────────────────── list ────────────────────────────────────────*/

// listed is one row of `quill list`.
type listed struct {
	Locale     string `json:"locale"`
	Token      string `json:"token"`
	Path       string `json:"path"`
	Title      string `json:"title"`
	ContentKey string `json:"content_key"`
	Legacy     bool   `json:"legacy,omitempty"`
}

func listCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print every document's canonical token",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "locale", Aliases: []string{"l"}, Usage: "limit to these locales (default: all)"},
		},
		Action: func(c *cli.Context) error {
			s, err := openSite(c)
			if err != nil {
				return err
			}
			defer s.Close()

			locales := c.StringSlice("locale")
			if len(locales) == 0 {
				locales = s.Catalog.Locales()
			}
			out := []listed{}
			for _, l := range locales {
				docs, err := s.Catalog.List(c.Context, l)
				if err != nil {
					return err
				}
				for _, d := range docs {
					out = append(out, listed{
						Locale:     l,
						Token:      d.Token,
						Path:       permalink.Path(l, d.Token),
						Title:      d.Title,
						ContentKey: d.ContentKey,
						Legacy:     !d.HasIdentifier(),
					})
				}
			}
			return writeJSON(c.App.Writer, out)
		},
	}
}

/*──────────────────────────── resolve ─────────────────────────────────────*/

type resolved struct {
	Outcome   string `json:"outcome"`
	Path      string `json:"path,omitempty"`
	Canonical string `json:"canonical,omitempty"`
	Title     string `json:"title,omitempty"`
}

func resolveCmd() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Resolve one token the way the server would",
		ArgsUsage: "<locale> <token>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.ShowCommandHelp(c, "resolve")
			}
			s, err := openSite(c)
			if err != nil {
				return err
			}
			defer s.Close()

			locale, token := c.Args().Get(0), c.Args().Get(1)
			res := s.Resolver.Resolve(c.Context, locale, token)
			out := resolved{Outcome: res.Outcome()}
			if res.Found() {
				out.Path = permalink.Path(locale, res.Document.Token)
				out.Canonical = s.Links.Canonical(locale, *res.Document)
				out.Title = res.Document.Title
			}
			return writeJSON(c.App.Writer, out)
		},
	}
}

/*──────────────────────────── sitemap ─────────────────────────────────────*/

func sitemapCmd() *cli.Command {
	return &cli.Command{
		Name:  "sitemap",
		Usage: "Write sitemap.xml (or the static params list)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "params", Usage: "print {locale, token} pairs as JSON instead"},
			&cli.PathFlag{Name: "out", Aliases: []string{"o"}, Usage: "write to a file instead of stdout"},
		},
		Action: func(c *cli.Context) error {
			s, err := openSite(c)
			if err != nil {
				return err
			}
			defer s.Close()

			w := c.App.Writer
			if p := c.Path("out"); p != "" {
				f, err := os.Create(p)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if c.Bool("params") {
				return writeJSON(w, sitemap.Params(c.Context, s.Catalog))
			}
			return sitemap.Write(w, sitemap.Entries(c.Context, s.Catalog, s.Links))
		},
	}
}
