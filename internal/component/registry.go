// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/web invokes Init() with
// the assembled site, then mounts Routes(): the blog at “/”, every other
// component at /<name>.

package component

import (
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Initializer is called once with the assembled site before Routes().
type Initializer interface {
	Init(SiteInfo) error
}

// Component contract.
//
// Migrations() may return nil if the component has no schema changes.  They
// run only when the content store is SQL-backed.
type Component interface {
	Name() string
	Routes() chi.Router
	Migrations() []string
	Initializer
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component, sorted by name.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
