package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/middleware"
	"github.com/terraemar-pos/api/internal/receipt"
	"github.com/terraemar-pos/api/internal/report"
	"github.com/terraemar-pos/api/internal/service"
)

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Get(ctx context.Context, id uuid.UUID) (*service.OrderDetail, error)
	Accept(ctx context.Context, id uuid.UUID) (database.Order, error)
	StartPreparing(ctx context.Context, id uuid.UUID) (database.Order, error)
	Complete(ctx context.Context, id uuid.UUID) (database.Order, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string, actor uuid.UUID) (database.Order, error)
	SettleDelivery(ctx context.Context, id uuid.UUID) (database.Order, error)
	MarkDeliveryPrinted(ctx context.Context, id uuid.UUID) (*service.OrderDetail, error)
	KitchenQueue(ctx context.Context, completedSince time.Time) ([]service.KitchenTicket, error)
	ListOnline(ctx context.Context, closedSince time.Time) ([]service.OrderDetail, error)
	ListPending(ctx context.Context) ([]service.OrderDetail, error)
}

// OrderHandler handles order status endpoints and the kitchen and online boards.
type OrderHandler struct {
	svc OrderServicer
	now func() time.Time
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer) *OrderHandler {
	return &OrderHandler{svc: svc, now: time.Now}
}

// RegisterRoutes registers order endpoints.
// Expected to be mounted at /orders.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{id}", h.Get)
	r.Post("/{id}/accept", h.Accept)
	r.Post("/{id}/start", h.Start)
	r.Post("/{id}/complete", h.Complete)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/settle", h.Settle)
	r.Post("/{id}/delivery-ticket", h.DeliveryTicket)
}

// RegisterKitchenRoutes registers the kitchen board. Expected to be mounted at /kitchen.
func (h *OrderHandler) RegisterKitchenRoutes(r chi.Router) {
	r.Get("/queue", h.KitchenQueue)
}

// RegisterOnlineRoutes registers the online order board. Expected to be mounted at /online.
func (h *OrderHandler) RegisterOnlineRoutes(r chi.Router) {
	r.Get("/", h.ListOnline)
	r.Get("/pending", h.ListPending)
}

// --- Request / Response types ---

type cancelRequest struct {
	Reason string `json:"reason"`
}

type deliveryTicketResponse struct {
	Order   orderResponse `json:"order"`
	Receipt string        `json:"receipt"`
}

type kitchenTicketResponse struct {
	orderResponse
	Label  string `json:"label"`
	Ticket string `json:"ticket"`
}

// --- Handlers ---

// Get returns one order with its items and totals.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "order ID")
	if !ok {
		return
	}

	detail, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get order")
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetailResponse(*detail))
}

func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "accept order", h.svc.Accept)
}

func (h *OrderHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "start order", h.svc.StartPreparing)
}

func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "complete order", h.svc.Complete)
}

func (h *OrderHandler) Settle(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "settle order", h.svc.SettleDelivery)
}

// Cancel cancels an order with a mandatory reason.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	id, ok := uuidParam(w, r, "id", "order ID")
	if !ok {
		return
	}

	var req cancelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.svc.Cancel(r.Context(), id, req.Reason, claims.UserID)
	if err != nil {
		writeServiceError(w, err, "cancel order")
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// DeliveryTicket marks an online order's ticket as printed and returns its text.
func (h *OrderHandler) DeliveryTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "order ID")
	if !ok {
		return
	}

	detail, err := h.svc.MarkDeliveryPrinted(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "print delivery ticket")
		return
	}
	writeJSON(w, http.StatusOK, deliveryTicketResponse{
		Order: toOrderDetailResponse(*detail),
		Receipt: receipt.RenderDelivery(receipt.Delivery{
			Order:  detail.Order,
			Items:  detail.Items,
			Totals: detail.Totals,
		}),
	})
}

// KitchenQueue lists active kitchen orders plus those finished today.
func (h *OrderHandler) KitchenQueue(w http.ResponseWriter, r *http.Request) {
	start, _ := report.DayBounds(h.now())
	tickets, err := h.svc.KitchenQueue(r.Context(), start)
	if err != nil {
		writeServiceError(w, err, "kitchen queue")
		return
	}

	resp := make([]kitchenTicketResponse, len(tickets))
	for i, t := range tickets {
		label := kitchenLabel(t)
		resp[i] = kitchenTicketResponse{
			orderResponse: toOrderDetailResponse(t.OrderDetail),
			Label:         label,
			Ticket: receipt.RenderKitchen(receipt.Kitchen{
				Number:    t.Order.Number,
				Label:     label,
				Items:     t.Items,
				Notes:     t.Order.Notes.String,
				CreatedAt: t.Order.CreatedAt.In(report.Zone),
			}),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListOnline lists live online orders plus those closed today.
func (h *OrderHandler) ListOnline(w http.ResponseWriter, r *http.Request) {
	start, _ := report.DayBounds(h.now())
	details, err := h.svc.ListOnline(r.Context(), start)
	if err != nil {
		writeServiceError(w, err, "list online orders")
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetailList(details))
}

// ListPending lists online orders awaiting acceptance.
func (h *OrderHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	details, err := h.svc.ListPending(r.Context())
	if err != nil {
		writeServiceError(w, err, "list pending orders")
		return
	}
	writeJSON(w, http.StatusOK, toOrderDetailList(details))
}

// --- Helpers ---

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, uuid.UUID) (database.Order, error)) {
	id, ok := uuidParam(w, r, "id", "order ID")
	if !ok {
		return
	}

	order, err := fn(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, op)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

func kitchenLabel(t service.KitchenTicket) string {
	switch t.Order.Origin {
	case database.OrderOriginONLINE:
		return "Online - " + t.Order.CustomerName.String
	case database.OrderOriginTAKEAWAY:
		name := t.TabCustomerName.String
		if name == "" {
			name = t.Order.CustomerName.String
		}
		return "Takeaway - " + name
	default:
		if t.TableNumber.Valid {
			return fmt.Sprintf("Table %d", t.TableNumber.Int32)
		}
		return "Dine-in"
	}
}
