package api

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"

	"github.com/starford/hoursheet/internal/export"
	"github.com/starford/hoursheet/internal/present"
	"github.com/starford/hoursheet/internal/session"
)

// Handler holds the page and API route handlers.
type Handler struct {
	sess  *session.Session
	title string
	now   func() time.Time
}

// NewHandler creates a Handler serving sess. title heads the page and the
// PDF report.
func NewHandler(sess *session.Session, title string) *Handler {
	return &Handler{sess: sess, title: title, now: time.Now}
}

// Page handles GET /. With a q parameter (even an empty one) it runs a
// search; without one it shows the current status.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	v := h.sess.View()
	if q := r.URL.Query(); q.Has("q") {
		v = h.sess.Search(q.Get("q"))
	}
	render(w, r, present.Page(h.title, v))
}

// Search handles GET /api/search?q=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	v := h.sess.Search(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, SearchResponse{View: v, TotalLine: v.TotalLine()})
}

// Status handles GET /api/status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Snapshot())
}

// Reload handles POST /api/reload. The reload outlives the request so a
// client disconnect does not cancel a fetch other callers share.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	replaced, err := h.sess.Reload(context.WithoutCancel(r.Context()))
	if err != nil {
		slog.Warn("manual reload failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, ReloadResponse{Replaced: replaced, Status: h.sess.Snapshot()})
}

// ExportPDF handles GET /api/export.pdf?q=.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	v := h.sess.Search(r.URL.Query().Get("q"))
	now := h.now()

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, h.title, v, now); err != nil {
		slog.Error("pdf export failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	filename := fmt.Sprintf("hours_%s.pdf", now.Format("20060102"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	_, _ = w.Write(buf.Bytes())
}

// Ready handles GET /health/ready: 200 once a dataset is loaded.
func (h *Handler) Ready(w http.ResponseWriter, _ *http.Request) {
	state := h.sess.State()
	status := http.StatusOK
	if state != session.StateReady {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"status": state.String()})
}

func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
