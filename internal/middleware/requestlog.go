// internal/middleware/requestlog.go
//
// Access log and request IDs.
//
// Every request gets a ULID (sortable, so log lines for one request group
// together when sorted) echoed in X-Request-ID unless the client or proxy
// already supplied one.  When the response is done, one zap line records
// method, path, status, bytes, latency, and the bot flag from requestinfo.
//
// Notes
// -----
// • Mount after requestinfo.Enrich so the bot flag is available.
// • 5xx lines log at Error, 4xx at Warn, everything else at Info.
// • Oxford commas, two spaces after periods.

package middleware

import (
	"context"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanizio/quill/internal/requestinfo"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type reqIDKey struct{}

// RequestID returns the ID attached by RequestLog, or "".
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(reqIDKey{}).(string)
	return v
}

// RequestLog assigns a request ID and writes one access-log line per request.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = ulid.Make().String()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), reqIDKey{}, id)

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := zapcore.InfoLevel
		switch {
		case status >= 500:
			level = zapcore.ErrorLevel
		case status >= 400:
			level = zapcore.WarnLevel
		}

		bot := false
		if info := requestinfo.FromContext(r.Context()); info != nil {
			bot = info.UA.IsBot
		}
		if ce := zap.L().Check(level, "http request"); ce != nil {
			ce.Write(
				zap.String("id", id),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("took", time.Since(start)),
				zap.Bool("bot", bot),
			)
		}
	})
}
