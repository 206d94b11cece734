package api

import (
	"github.com/starford/hoursheet/internal/present"
	"github.com/starford/hoursheet/internal/session"
)

// SearchResponse is the body of GET /api/search. It is the presenter view
// with the aggregate line spelled out for clients that only print it.
type SearchResponse struct {
	present.View
	TotalLine string `json:"total_line,omitempty"`
}

// ReloadResponse is the body of POST /api/reload.
type ReloadResponse struct {
	Replaced bool             `json:"replaced"`
	Status   session.Snapshot `json:"status"`
}
