// Package middleware holds small, composable HTTP wrappers.
package middleware

import (
	"net/http"
	"strings"
)

// ForceHTTPS returns a wrapper that issues a 308 Permanent Redirect to the
// HTTPS version of the same URL when the request arrived over plain HTTP.
// Requests already on TLS, requests a proxy marked with
// X-Forwarded-Proto: https, and requests for an exempt host (localhost by
// default) pass through unchanged.
func ForceHTTPS(exempt ...string) func(http.Handler) http.Handler {
	skip := map[string]struct{}{"localhost": {}, "127.0.0.1": {}}
	for _, h := range exempt {
		skip[strings.ToLower(h)] = struct{}{}
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
				h.ServeHTTP(w, r)
				return
			}
			if _, ok := skip[strings.ToLower(stripPort(r.Host))]; ok {
				h.ServeHTTP(w, r)
				return
			}
			target := "https://" + r.Host + r.URL.RequestURI()
			http.Redirect(w, r, target, http.StatusPermanentRedirect)
		})
	}
}

// stripPort removes the :port suffix from Host when present.
func stripPort(h string) string {
	if i := strings.LastIndexByte(h, ':'); i != -1 && !strings.HasSuffix(h, "]") {
		return h[:i]
	}
	return h
}
