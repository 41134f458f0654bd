// internal/config/loader.go
//
// Configuration loader and reloader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `conf/.env` file.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `QUILL_`, where `__` maps to “.”
     (e.g., `QUILL_HTTP__LISTEN_ADDR → http.listen_addr`).  List keys
     (`site.locales`, `http.exempt_hosts`) accept comma-separated values.

After merging, the tree is unmarshalled into strongly-typed structs,
defaulted, validated, enriched with the runtime root path, and cached in
an `atomic.Pointer` for lock-free reads.  `Reload()` simply calls `Load()`
again and swaps the pointer.

Instrumentation
---------------
  • DEBUG spans, root discovery, YAML read, env overlay.
  • ERROR spans, YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span, final “config loaded” with key highlights.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • Relative `content.dir`, `log.dir`, and `site.template_dir` are resolved
    against the root.
  • Oxford commas, two spaces after periods.
*/
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "QUILL_"

var current atomic.Pointer[Config]

// listKeys are split on commas when they arrive from the environment.
var listKeys = map[string]bool{
	"site.locales":      true,
	"http.exempt_hosts": true,
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves QUILL_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv(EnvPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load discovers the root and loads from it.
func Load() (*Config, error) { return LoadFrom(rootDir()) }

// LoadFrom reads root/conf/.env, root/conf/global.yaml, env overrides,
// validates, and caches Config.
func LoadFrom(root string) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"locales", cfg.Site.Locales,
		"content_driver", cfg.Content.Driver,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// envKey maps QUILL_SITE__LOCALES=en,ko → ("site.locales", ["en","ko"]).
// QUILL_ROOT is not a config key and is dropped.
func envKey(k, v string) (string, any) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(k, EnvPrefix), "__", "."))
	if key == "root" {
		return "", nil
	}
	if listKeys[key] {
		var out []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return key, out
	}
	return key, v
}

// applyDefaults fills zero values and anchors relative paths at root.
func applyDefaults(c *Config) {
	if c.HTTP.ListenAddr == "" {
		c.HTTP.ListenAddr = ":8080"
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		c.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if c.HTTP.RateLimit > 0 && c.HTTP.RateBurst == 0 {
		c.HTTP.RateBurst = 20
	}
	if c.Site.Name == "" {
		c.Site.Name = "Blog"
	}
	if c.Site.DefaultLocale == "" && len(c.Site.Locales) > 0 {
		c.Site.DefaultLocale = c.Site.Locales[0]
	}
	if c.Content.Driver == "" {
		c.Content.Driver = "fs"
	}
	if c.Content.Driver == "fs" && c.Content.Dir == "" {
		c.Content.Dir = "content"
	}
	if c.Content.RenderCache == 0 {
		c.Content.RenderCache = 512
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}

	c.Content.Dir = anchor(c.Paths.Root, c.Content.Dir)
	c.Log.Dir = anchor(c.Paths.Root, c.Log.Dir)
	c.Site.TemplateDir = anchor(c.Paths.Root, c.Site.TemplateDir)
}

func anchor(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
