package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"flowtrace/pkg/metrics"
)

// Metrics пишет длительность и число запросов по маршруту
func Metrics(m *metrics.Metrics, route func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := wrap(w)

			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			next.ServeHTTP(rw, r)

			m.RecordHTTPRequest(r.Method, route(r), rw.status, time.Since(start))
		})
	}
}

// RouteLabel метка маршрута с ограниченной кардинальностью: UUID заменяются на :id,
// всё под /swagger/ схлопывается.
func RouteLabel(r *http.Request) string {
	path := r.URL.Path
	if strings.HasPrefix(path, "/swagger/") {
		return "/swagger/*"
	}

	segments := strings.Split(path, "/")
	for i, s := range segments {
		if _, err := uuid.Parse(s); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
