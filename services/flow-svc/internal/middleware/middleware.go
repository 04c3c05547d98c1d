// Package middleware содержит HTTP middleware API: request id, логирование,
// метрики, трассировку, rate limiting, CORS и восстановление после паники.
package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/justinas/alice"
	"github.com/rs/cors"

	"flowtrace/pkg/apperror"
	"flowtrace/pkg/config"
	"flowtrace/pkg/logger"
	"flowtrace/pkg/metrics"
	"flowtrace/pkg/ratelimit"
	"flowtrace/pkg/telemetry"
)

// ChainConfig зависимости цепочки
type ChainConfig struct {
	CORS         config.CORSConfig
	Metrics      *metrics.Metrics
	Limiter      ratelimit.Limiter // nil - без ограничения
	RateExcluded []string          // пути без rate limiting
	MaxBodyBytes int64
}

// Chain собирает стандартную цепочку. Порядок: request id, recover, трассировка,
// логирование и метрики, CORS, лимиты.
func Chain(cfg ChainConfig) alice.Chain {
	constructors := []alice.Constructor{
		RequestID,
		Recover,
		telemetry.HTTPMiddleware,
		Logging,
	}
	if cfg.Metrics != nil {
		constructors = append(constructors, Metrics(cfg.Metrics, RouteLabel))
	}
	if cfg.CORS.Enabled {
		constructors = append(constructors, CORS(cfg.CORS))
	}
	if cfg.Limiter != nil {
		constructors = append(constructors, RateLimit(cfg.Limiter, cfg.RateExcluded...))
	}
	if cfg.MaxBodyBytes > 0 {
		constructors = append(constructors, MaxBody(cfg.MaxBodyBytes))
	}
	return alice.New(constructors...)
}

// CORS на базе rs/cors из секции http.cors
func CORS(cfg config.CORSConfig) alice.Constructor {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
	return c.Handler
}

// MaxBody ограничивает размер тела запроса
func MaxBody(limit int64) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// responseWriter запоминает статус и размер ответа
type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Unwrap нужен http.ResponseController
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// writeError отдаёт apperror в формате API
func writeError(w http.ResponseWriter, r *http.Request, err *apperror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus())

	body := map[string]any{
		"error":      err.ToBody(),
		"request_id": logger.RequestIDFromContext(r.Context()),
	}
	if encErr := json.NewEncoder(w).Encode(body); encErr != nil {
		logger.Log.Error("failed to write error response", "error", encErr)
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
