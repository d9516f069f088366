package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bcnelson/cicd-wizard/internal/logging"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Logging attaches a request-scoped logger to the context and logs each
// completed request. It expects chi's RequestID middleware to run first.
func Logging(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			log := base.With("request_id", chimw.GetReqID(r.Context()))
			ctx := logging.ToContext(r.Context(), log)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.Log(ctx, level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}
