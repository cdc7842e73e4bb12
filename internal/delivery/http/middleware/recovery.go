package middleware

import (
	"net/http"
	"runtime/debug"

	"farmacia-catalogo/pkg/logger"
	"farmacia-catalogo/pkg/utils"
)

// Recovery turns a panicking handler into a 500 with the generic message.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.WithContext(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("path", r.URL.Path).
				Msg("Recovered from panic")
			utils.WriteError(w, http.StatusInternalServerError, utils.ErrInternal)
		}()

		next.ServeHTTP(w, r)
	})
}
