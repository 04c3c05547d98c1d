package middleware

import (
	"net/http"
	"runtime/debug"

	"flowtrace/pkg/apperror"
	"flowtrace/pkg/logger"
)

// Recover перехватывает панику обработчика и отвечает 500
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			// http.ErrAbortHandler штатно обрывает соединение
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			logger.WithContext(r.Context()).Error("panic in HTTP handler",
				"panic", rec,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			w.Header().Set("Connection", "close")
			writeError(w, r, apperror.New(apperror.CodeInternal, "internal server error"))
		}()

		next.ServeHTTP(w, r)
	})
}
