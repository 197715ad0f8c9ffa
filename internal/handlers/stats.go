package handlers

import (
	"net/http"

	"inkpress/internal/middleware"
	"inkpress/internal/service"
)

// Stats groups the dashboard statistics handlers.
type Stats struct {
	stats *service.StatsService
}

// NewStats creates a new Stats handler group.
func NewStats(stats *service.StatsService) *Stats {
	return &Stats{stats: stats}
}

// Get handles GET /dashboard/stats.
func (h *Stats) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Compute(r.Context(), middleware.PrincipalFromCtx(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
