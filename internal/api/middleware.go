// Package api implements the hours search page and JSON API using chi.
package api

import (
	"net/http"

	"github.com/starford/hoursheet/internal/apperr"
	"github.com/starford/hoursheet/internal/session"
)

// RequireLoaded answers 503 while the initial load is still running, so
// clients retry instead of caching a loading placeholder.
func RequireLoaded(sess *session.Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sess.State() == session.StateLoading {
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusServiceUnavailable, errorBody(apperr.ErrNotReady.Error()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
