package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/terraemar-pos/api/internal/enum"
	"github.com/terraemar-pos/api/internal/middleware"
	"github.com/terraemar-pos/api/internal/money"
)

// DeliveryFeeServicer is satisfied by *service.OrderService.
type DeliveryFeeServicer interface {
	DeliveryFee(ctx context.Context) (decimal.Decimal, error)
	SetDeliveryFee(ctx context.Context, fee decimal.Decimal) error
}

// SettingsHandler handles operator settings.
type SettingsHandler struct {
	svc DeliveryFeeServicer
}

func NewSettingsHandler(svc DeliveryFeeServicer) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// RegisterRoutes registers settings endpoints.
// Expected to be mounted at /settings.
func (h *SettingsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/delivery-fee", h.GetDeliveryFee)
	r.With(middleware.RequireRole(enum.UserRoleAdmin)).Put("/delivery-fee", h.SetDeliveryFee)
}

type deliveryFeeBody struct {
	DeliveryFee string `json:"delivery_fee"`
}

func (h *SettingsHandler) GetDeliveryFee(w http.ResponseWriter, r *http.Request) {
	fee, err := h.svc.DeliveryFee(r.Context())
	if err != nil {
		writeServiceError(w, err, "get delivery fee")
		return
	}
	writeJSON(w, http.StatusOK, deliveryFeeBody{DeliveryFee: money.Format(fee)})
}

// SetDeliveryFee changes the fee for online orders created from now on.
func (h *SettingsHandler) SetDeliveryFee(w http.ResponseWriter, r *http.Request) {
	var req deliveryFeeBody
	if !decodeJSON(w, r, &req) {
		return
	}
	fee, err := decimal.NewFromString(req.DeliveryFee)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid delivery_fee"})
		return
	}

	if err := h.svc.SetDeliveryFee(r.Context(), fee); err != nil {
		writeServiceError(w, err, "set delivery fee")
		return
	}
	writeJSON(w, http.StatusOK, deliveryFeeBody{DeliveryFee: money.Format(fee)})
}
