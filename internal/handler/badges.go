package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// BadgeHandler serves the sidebar counters.
type BadgeHandler struct {
	svc BadgeServicer
}

func NewBadgeHandler(svc BadgeServicer) *BadgeHandler {
	return &BadgeHandler{svc: svc}
}

func (h *BadgeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/badges", h.Counts)
}

// Counts never fails; unreadable counters are reported as zero.
func (h *BadgeHandler) Counts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.SidebarCounts(r.Context()))
}
