package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"vaultadmin/internal/response"
)

// Recoverer turns a handler panic into the 500 envelope and logs the stack.
func Recoverer(lg *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				lg.Errorw("panic recovered", "panic", rec, "path", r.URL.Path, "stack", string(debug.Stack()))
				response.Error(w, http.StatusInternalServerError, response.MsgInternalServer)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
