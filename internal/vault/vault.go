// internal/vault/vault.go
//
// Vault client wrapper for secret indirection in configuration.
//
// Context
// -------
//   - Provides a concurrency-safe wrapper around the HashiCorp Vault Go SDK.
//   - Adds background token renewal, a KV-v2 getter, and per-key caching.
//   - Config values of the form `vault:<mount>/<path>#<key>` are resolved
//     through Resolve; any other value is returned unchanged, so plain
//     passwords keep working in development.
//
// Public workflow
// ---------------
//  1. pw, err := vault.Resolve(ctx, cfg.Content.Password, vault.Lazy(ctx))
//  2. Lazy only dials Vault when a `vault:` reference is actually present.
//
// Notes
// -----
// • Header block, section underlines, Oxford commas, two spaces after
//   periods, no m-dash.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"go.uber.org/zap"
)

// Prefix marks a config value as a Vault reference.
const Prefix = "vault:"

// ErrBadReference reports a `vault:` value that is not mount/path#key.
var ErrBadReference = errors.New("vault: reference must be vault:<mount>/<path>#<key>")

//
// SECTION 1.  Reference resolution
//

// Getter fetches one key of a KV-v2 secret.
type Getter interface {
	GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error)
}

// Ref is a parsed `vault:` reference.
type Ref struct {
	Path string // mount/path
	Key  string
}

// ParseRef splits value.  ok is false when value carries no `vault:` prefix.
func ParseRef(value string) (ref Ref, ok bool, err error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(value), Prefix)
	if !ok {
		return Ref{}, false, nil
	}
	path, key, found := strings.Cut(rest, "#")
	if !found || key == "" || !strings.Contains(strings.Trim(path, "/"), "/") {
		return Ref{}, true, fmt.Errorf("%w: %q", ErrBadReference, value)
	}
	return Ref{Path: strings.Trim(path, "/"), Key: key}, true, nil
}

// Resolve returns value itself, or the secret it references.  getter is only
// called for `vault:` values; it may be nil when none are expected.
func Resolve(ctx context.Context, value string, getter func() (Getter, error)) (string, error) {
	ref, isRef, err := ParseRef(value)
	if err != nil || !isRef {
		return value, err
	}
	if getter == nil {
		return "", fmt.Errorf("vault: %s#%s: no client configured", ref.Path, ref.Key)
	}
	g, err := getter()
	if err != nil {
		return "", err
	}
	return g.GetKV(ctx, ref.Path, ref.Key, 5*time.Minute)
}

// Lazy returns a getter that dials Vault on first use only.
func Lazy(ctx context.Context) func() (Getter, error) {
	var (
		once sync.Once
		cli  *Client
		err  error
	)
	return func() (Getter, error) {
		once.Do(func() { cli, err = New(ctx) })
		return cli, err
	}
}

//
// SECTION 2.  Client
//

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api *vault.Client

	cacheMu sync.RWMutex
	cache   map[string]cached // canonical path#key → value + expiry.
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client and starts a background token-renewal loop
// bound to ctx.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – initial token.
func New(ctx context.Context) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := &Client{api: apiCli, cache: make(map[string]cached)}
	go c.renewLoop(ctx)
	return c, nil
}

// GetKV fetches a single key from a KV-v2 secret.  If ttl > 0 the result is
// cached for that duration.
func (c *Client) GetKV(ctx context.Context, secretPath, key string, ttl time.Duration) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}
	canonical := secretPath + "#" + key

	if ttl > 0 {
		c.cacheMu.RLock()
		if cv, ok := c.cache[canonical]; ok && time.Now().Before(cv.exp) {
			c.cacheMu.RUnlock()
			return cv.val, nil
		}
		c.cacheMu.RUnlock()
	}

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}
	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	sval, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s#%s is not a string", secretPath, key)
	}

	if ttl > 0 {
		c.cacheMu.Lock()
		c.cache[canonical] = cached{val: sval, exp: time.Now().Add(ttl)}
		c.cacheMu.Unlock()
	}
	return sval, nil
}

//
// SECTION 3.  Background token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
	log := zap.S().With("component", "vault")
	for ctx.Err() == nil {
		sec, err := c.api.Auth().Token().RenewSelfWithContext(ctx, 0)
		if err != nil {
			log.Warnw("token renew self failed", "err", err)
			backoff(ctx, 30*time.Second)
			continue
		}
		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			log.Debugw("token is not renewable, sleeping 1h")
			backoff(ctx, time.Hour)
			continue
		}

		watcher, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{
			Secret: sec,
		})
		if err != nil {
			log.Warnw("lifetime watcher init failed", "err", err)
			backoff(ctx, 30*time.Second)
			continue
		}
		c.watch(ctx, watcher, log)
	}
}

// watch runs one lifetime watcher until it stops or ctx ends.
func (c *Client) watch(ctx context.Context, w *vault.LifetimeWatcher, log *zap.SugaredLogger) {
	go w.Start()
	defer w.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.DoneCh():
			if err != nil {
				log.Warnw("token renewal stopped", "err", err)
			}
			backoff(ctx, 15*time.Second)
			return
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				log.Debugw("token renewed", "ttl_s", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

//
// SECTION 4.  Helpers
//

func splitMount(p string) (mount, rel string) {
	mount, rel, _ = strings.Cut(p, "/")
	return mount, rel
}

func backoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
