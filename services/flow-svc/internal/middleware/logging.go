package middleware

import (
	"net/http"
	"time"

	"flowtrace/pkg/logger"
)

// Logging логирует каждый запрос с request_id, статусом и длительностью
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrap(w)

		next.ServeHTTP(rw, r)

		fields := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"bytes", rw.bytes,
			"duration_ms", durationMs(time.Since(start)),
			"remote", r.RemoteAddr,
		}

		log := logger.WithContext(r.Context())
		switch {
		case rw.status >= http.StatusInternalServerError:
			log.Error("HTTP request failed", fields...)
		case rw.status >= http.StatusBadRequest:
			log.Warn("HTTP request rejected", fields...)
		default:
			log.Info("HTTP request completed", fields...)
		}
	})
}
