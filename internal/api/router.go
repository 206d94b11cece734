package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with the JSON API routes, to be mounted
// under /api. events, if non-nil, is served at GET /events.
func NewRouter(h *Handler, events http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/status", h.Status)
	r.Post("/reload", h.Reload)

	r.Group(func(r chi.Router) {
		r.Use(RequireLoaded(h.sess))
		r.Get("/search", h.Search)
		r.Get("/export.pdf", h.ExportPDF)
	})

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
