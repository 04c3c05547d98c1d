package handlers

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"flowtrace/pkg/logger"
)

// health liveness, зависимости не проверяет
func (h *Handler) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeData(w, r, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        h.svc.Version(),
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}

// ready readiness: 503 если не отвечает кэш или история
func (h *Handler) ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	checks, err := h.svc.Ready(r.Context())
	status, code := "ready", http.StatusOK
	if err != nil {
		status, code = "not_ready", http.StatusServiceUnavailable
		logger.WithContext(r.Context()).Warn("readiness check failed", "error", err)
	}

	writeData(w, r, code, map[string]any{
		"status": status,
		"checks": checks,
	})
}
