package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"flowtrace/pkg/logger"
)

// HeaderRequestID заголовок идентификатора запроса
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLen входящие id длиннее заменяются
const maxRequestIDLen = 128

// RequestID берёт X-Request-ID клиента или генерирует новый,
// кладёт его в контекст логгера и возвращает в ответе.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		w.Header().Set(HeaderRequestID, id)
		ctx := logger.ContextWithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
