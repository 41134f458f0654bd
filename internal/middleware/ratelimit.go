// internal/middleware/ratelimit.go
//
// Per-client token-bucket rate limiting.
//
// Token probing (“/en/blog/a-00000000”, “…-00000001”, …) is cheap for a
// scanner and costs one catalog build per request here.  Each client IP
// gets its own golang.org/x/time/rate limiter; limiters live in a bounded
// LRU so a scan from many addresses cannot grow memory without limit.
//
// Notes
// -----
// • Client IP comes from requestinfo, so mount after Enrich.
// • Requests without a resolvable IP share one bucket.
// • Oxford commas, two spaces after periods.

package middleware

import (
	"net/http"
	"strconv"
	"sync"

	"golang.org/x/time/rate"

	"github.com/yanizio/quill/internal/cache"
	"github.com/yanizio/quill/internal/requestinfo"
)

// RateLimit allows rps requests per second per client with the given burst.
// A non-positive rps disables limiting.
func RateLimit(rps float64, burst, clients int) func(http.Handler) http.Handler {
	if rps <= 0 {
		return func(h http.Handler) http.Handler { return h }
	}
	if clients < 1 {
		clients = 10000
	}
	var mu sync.Mutex
	buckets := cache.New[string, *rate.Limiter](clients)

	limiter := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := buckets.Get(key); ok {
			return l
		}
		l := rate.NewLimiter(rate.Limit(rps), burst)
		buckets.Add(key, l)
		return l
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ""
			if info := requestinfo.FromContext(r.Context()); info != nil && info.IP != nil {
				key = info.IP.String()
			}
			if !limiter(key).Allow() {
				w.Header().Set("Retry-After", strconv.Itoa(1))
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
