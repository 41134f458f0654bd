// internal/config/model.go
//
// Typed configuration model for Quill.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                         – dotenv values,
//   • `conf/global.yaml`                      – primary static file,
//   • `QUILL_`-prefixed environment overrides – highest precedence.
//
// Secrets may be written as `vault:<mount>/<path>#<key>`.  The model keeps
// the reference as-is; the caller resolves it with vault.Resolve right
// before use, so a config dump never contains the secret.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.  Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import "time"

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr      string        `koanf:"listen_addr"      validate:"required,hostname_port"`
	ForceHTTPS      bool          `koanf:"force_https"`
	ExemptHosts     []string      `koanf:"exempt_hosts"`
	Gzip            bool          `koanf:"gzip"`
	RateLimit       float64       `koanf:"rate_limit"       validate:"gte=0"`
	RateBurst       int           `koanf:"rate_burst"       validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

//
// Site section
//

// Site describes the public blog.  Locales are ordered; the first one is
// the fallback for language negotiation unless DefaultLocale says otherwise.
type Site struct {
	Name          string   `koanf:"name"`
	BaseURL       string   `koanf:"base_url"       validate:"required,url"`
	Locales       []string `koanf:"locales"        validate:"required,min=1,unique,dive,bcp47_language_tag"`
	DefaultLocale string   `koanf:"default_locale" validate:"required"`
	TemplateDir   string   `koanf:"template_dir"`
}

//
// Content section
//

// Content selects and configures the content store.
//
//   • fs     – Dir/<locale>/<key>.mdx files.
//   • mysql  – content_document table; DSN may contain one %s for the
//              password.
//   • sqlite – content_document table in a local file.
type Content struct {
	Driver      string `koanf:"driver"       validate:"required,oneof=fs mysql sqlite"`
	Dir         string `koanf:"dir"          validate:"required_if=Driver fs"`
	DSN         string `koanf:"dsn"          validate:"required_unless=Driver fs"`
	Password    string `koanf:"password"`
	RenderCache int    `koanf:"render_cache" validate:"gte=0"`
}

//
// Log section
//

// Log controls the zap logger.
type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `koanf:"dir"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or QUILL_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP    HTTP    `koanf:"http"`
	Site    Site    `koanf:"site"`
	Content Content `koanf:"content"`
	Log     Log     `koanf:"log"`
	Paths   Paths   `koanf:"-"`
}

// Locales returns Site.Locales with DefaultLocale moved to the front.
func (c *Config) Locales() []string {
	out := make([]string, 0, len(c.Site.Locales))
	out = append(out, c.Site.DefaultLocale)
	for _, l := range c.Site.Locales {
		if l != c.Site.DefaultLocale {
			out = append(out, l)
		}
	}
	return out
}
