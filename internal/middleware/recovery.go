package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"previewhub/internal/httputil"
)

// Recovery turns a handler panic into a 500 problem response. The log record
// carries the request id that RequestID echoed to the caller.
// http.ErrAbortHandler is re-raised so net/http still aborts the response.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}

				logger.Error("handler panicked",
					"request_id", r.Header.Get(RequestIDHeader),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", v,
					"stack", string(debug.Stack()),
				)
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}
