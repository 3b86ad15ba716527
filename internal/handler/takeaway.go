package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/terraemar-pos/api/internal/middleware"
	"github.com/terraemar-pos/api/internal/report"
	"github.com/terraemar-pos/api/internal/service"
)

// TakeawayServicer is satisfied by *service.OrderService.
type TakeawayServicer interface {
	CreateTakeaway(ctx context.Context, customerName string, staffID uuid.UUID, items []service.ItemRequest, notes string) (*service.TakeawayResult, error)
	ListTakeaway(ctx context.Context, closedSince time.Time) ([]service.OrderDetail, error)
}

// TakeawayHandler handles counter takeaway orders.
type TakeawayHandler struct {
	svc TakeawayServicer
	now func() time.Time
}

// NewTakeawayHandler creates a new TakeawayHandler.
func NewTakeawayHandler(svc TakeawayServicer) *TakeawayHandler {
	return &TakeawayHandler{svc: svc, now: time.Now}
}

// RegisterRoutes registers takeaway endpoints.
// Expected to be mounted at /takeaway.
func (h *TakeawayHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
}

type createTakeawayRequest struct {
	CustomerName string        `json:"customer_name"`
	Items        []itemRequest `json:"items"`
	Notes        string        `json:"notes"`
}

type takeawayResponse struct {
	Tab   tabResponse   `json:"tab"`
	Order orderResponse `json:"order"`
}

// List returns live takeaway orders plus those closed today.
func (h *TakeawayHandler) List(w http.ResponseWriter, r *http.Request) {
	start, _ := report.DayBounds(h.now())
	details, err := h.svc.ListTakeaway(r.Context(), start)
	if err != nil {
		writeServiceError(w, err, "list takeaway orders")
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetailList(details))
}

// Create opens a takeaway tab with its first order.
func (h *TakeawayHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var req createTakeawayRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	items, ok := toItemRequests(w, req.Items)
	if !ok {
		return
	}

	res, err := h.svc.CreateTakeaway(r.Context(), req.CustomerName, claims.UserID, items, req.Notes)
	if err != nil {
		writeServiceError(w, err, "create takeaway order")
		return
	}
	writeJSON(w, http.StatusCreated, takeawayResponse{
		Tab:   toTabResponse(res.Tab),
		Order: toOrderDetailResponse(*res.Order),
	})
}
