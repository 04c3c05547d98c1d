package middleware

import (
	"math"
	"net/http"
	"strconv"

	"flowtrace/pkg/apperror"
	"flowtrace/pkg/logger"
	"flowtrace/pkg/ratelimit"
)

// Заголовки лимита
const (
	HeaderRateLimit     = "X-RateLimit-Limit"
	HeaderRateRemaining = "X-RateLimit-Remaining"
	HeaderRetryAfter    = "Retry-After"
)

// RateLimit ограничивает частоту запросов по IP клиента.
// Ошибка бэкенда лимитера пропускает запрос.
func RateLimit(limiter ratelimit.Limiter, excluded ...string) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(excluded))
	for _, p := range excluded {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			decision, err := limiter.Allow(r.Context(), ratelimit.ClientKey(r))
			if err != nil {
				logger.WithContext(r.Context()).Warn("rate limiter unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set(HeaderRateLimit, strconv.Itoa(decision.Limit))
			w.Header().Set(HeaderRateRemaining, strconv.Itoa(decision.Remaining))

			if !decision.Allowed {
				retry := int(math.Ceil(decision.RetryAfter.Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set(HeaderRetryAfter, strconv.Itoa(retry))
				writeError(w, r, apperror.New(apperror.CodeRateLimited, ratelimit.ErrRateLimitExceeded.Error()).
					WithDetails("retry_after_seconds", retry))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
