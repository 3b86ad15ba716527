package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/enum"
	"github.com/terraemar-pos/api/internal/middleware"
)

// CouponStore defines the database methods needed by coupon admin handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type CouponStore interface {
	ListActiveCoupons(ctx context.Context) ([]database.Coupon, error)
	ReplenishCouponUses(ctx context.Context, id uuid.UUID) (database.Coupon, error)
}

// CouponHandler handles coupon administration.
type CouponHandler struct {
	store CouponStore
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(store CouponStore) *CouponHandler {
	return &CouponHandler{store: store}
}

// RegisterRoutes registers coupon endpoints.
// Expected to be mounted at /coupons.
func (h *CouponHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.With(middleware.RequireRole(enum.UserRoleAdmin)).Post("/{id}/replenish", h.Replenish)
}

type adminCouponResponse struct {
	couponResponse
	TotalUses     int32 `json:"total_uses"`
	RemainingUses int32 `json:"remaining_uses"`
}

func toAdminCouponResponse(c database.Coupon) adminCouponResponse {
	return adminCouponResponse{
		couponResponse: toCouponResponse(c),
		TotalUses:      c.TotalUses,
		RemainingUses:  c.RemainingUses,
	}
}

// List returns active coupons with their usage counters.
func (h *CouponHandler) List(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.store.ListActiveCoupons(r.Context())
	if err != nil {
		log.WithError(err).Error("list active coupons")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]adminCouponResponse, len(coupons))
	for i, c := range coupons {
		resp[i] = toAdminCouponResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Replenish resets a coupon's remaining uses to its total.
func (h *CouponHandler) Replenish(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "coupon ID")
	if !ok {
		return
	}

	c, err := h.store.ReplenishCouponUses(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "coupon not found"})
			return
		}
		log.WithError(err).Error("replenish coupon")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, toAdminCouponResponse(c))
}
