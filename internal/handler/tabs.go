package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/middleware"
	"github.com/terraemar-pos/api/internal/money"
	"github.com/terraemar-pos/api/internal/pricing"
	"github.com/terraemar-pos/api/internal/service"
)

// TabServicer defines the service methods needed by tab and table handlers.
// Satisfied by *service.TabService; narrow interface for testability.
type TabServicer interface {
	Open(ctx context.Context, tableID, staffID uuid.UUID, customerName string) (database.Tab, error)
	Get(ctx context.Context, tabID uuid.UUID) (*service.TabDetail, error)
	GetOpenByTable(ctx context.Context, tableID uuid.UUID) (*service.TabDetail, error)
	Close(ctx context.Context, tabID uuid.UUID, paymentMethod string) (database.Tab, error)
	CancelOrder(ctx context.Context, tabID, orderID uuid.UUID, reason string, actor uuid.UUID) (database.Order, error)
	PrintBill(ctx context.Context, tabID uuid.UUID, req service.BillRequest) (*service.Bill, error)
	InitTables(ctx context.Context, count int) ([]database.DiningTable, error)
}

// DineInCreator is satisfied by *service.OrderService.
type DineInCreator interface {
	CreateDineIn(ctx context.Context, tabID, createdBy uuid.UUID, items []service.ItemRequest, notes string) (*service.OrderDetail, error)
}

// TabHandler handles tab endpoints.
type TabHandler struct {
	tabs   TabServicer
	orders DineInCreator
}

// NewTabHandler creates a new TabHandler.
func NewTabHandler(tabs TabServicer, orders DineInCreator) *TabHandler {
	return &TabHandler{tabs: tabs, orders: orders}
}

// RegisterRoutes registers tab endpoints.
// Expected to be mounted at /tabs.
func (h *TabHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{id}", h.Get)
	r.Post("/{id}/orders", h.AddOrder)
	r.Post("/{id}/bill", h.PrintBill)
	r.Post("/{id}/close", h.Close)
	r.Post("/{id}/orders/{orderID}/cancel", h.CancelOrder)
}

// --- Request / Response types ---

type addOrderRequest struct {
	Items []itemRequest `json:"items"`
	Notes string        `json:"notes"`
}

type billRequest struct {
	CouponCode     string `json:"coupon_code"`
	ManualDiscount string `json:"manual_discount"`
}

type closeTabRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type tableResponse struct {
	ID         uuid.UUID `json:"id"`
	Number     int32     `json:"number"`
	Name       string    `json:"name"`
	IsTakeaway bool      `json:"is_takeaway"`
}

type tabDetailResponse struct {
	tabResponse
	Table  tableResponse   `json:"table"`
	Orders []orderResponse `json:"orders"`
	Totals *totalsResponse `json:"totals"`
}

type billLineResponse struct {
	OrderNumber *int64 `json:"order_number"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Quantity    int32  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Value       string `json:"value"`
}

type billResponse struct {
	Tab        tabResponse        `json:"tab"`
	Title      string             `json:"title"`
	Lines      []billLineResponse `json:"lines"`
	Totals     *totalsResponse    `json:"totals"`
	CouponCode *string            `json:"coupon_code"`
	Receipt    string             `json:"receipt"`
}

// --- Handlers ---

// Get returns a tab with its orders and running bill.
func (h *TabHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "tab ID")
	if !ok {
		return
	}

	detail, err := h.tabs.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "get tab")
		return
	}
	writeJSON(w, http.StatusOK, toTabDetailResponse(detail))
}

// AddOrder places a new order on an open tab.
func (h *TabHandler) AddOrder(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	id, ok := uuidParam(w, r, "id", "tab ID")
	if !ok {
		return
	}

	var req addOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	items, ok := toItemRequests(w, req.Items)
	if !ok {
		return
	}

	detail, err := h.orders.CreateDineIn(r.Context(), id, claims.UserID, items, req.Notes)
	if err != nil {
		writeServiceError(w, err, "create dine-in order")
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDetailResponse(*detail))
}

// PrintBill prices the tab with the selected discount and returns the printable bill.
func (h *TabHandler) PrintBill(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "tab ID")
	if !ok {
		return
	}

	var req billRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	manual, err := parseAmount(req.ManualDiscount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid manual_discount"})
		return
	}

	bill, err := h.tabs.PrintBill(r.Context(), id, service.BillRequest{
		CouponCode:     req.CouponCode,
		ManualDiscount: manual,
	})
	if err != nil {
		writeServiceError(w, err, "print bill")
		return
	}
	writeJSON(w, http.StatusOK, toBillResponse(bill))
}

// Close settles the tab with a payment method.
func (h *TabHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id", "tab ID")
	if !ok {
		return
	}

	var req closeTabRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tab, err := h.tabs.Close(r.Context(), id, req.PaymentMethod)
	if err != nil {
		writeServiceError(w, err, "close tab")
		return
	}
	writeJSON(w, http.StatusOK, toTabResponse(tab))
}

// CancelOrder cancels one order of the tab.
func (h *TabHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	tabID, ok := uuidParam(w, r, "id", "tab ID")
	if !ok {
		return
	}
	orderID, ok := uuidParam(w, r, "orderID", "order ID")
	if !ok {
		return
	}

	var req cancelRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.tabs.CancelOrder(r.Context(), tabID, orderID, req.Reason, claims.UserID)
	if err != nil {
		writeServiceError(w, err, "cancel tab order")
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(order))
}

// --- Helpers ---

func toTableResponse(t database.DiningTable) tableResponse {
	return tableResponse{ID: t.ID, Number: t.Number, Name: t.Name, IsTakeaway: t.IsTakeaway}
}

func toTabDetailResponse(d *service.TabDetail) tabDetailResponse {
	return tabDetailResponse{
		tabResponse: toTabResponse(d.Tab),
		Table:       toTableResponse(d.Table),
		Orders:      toOrderDetailList(d.Orders),
		Totals:      toTotalsResponse(d.Totals),
	}
}

func toBillResponse(b *service.Bill) billResponse {
	resp := billResponse{
		Tab:     toTabResponse(b.Tab),
		Title:   b.Title,
		Lines:   make([]billLineResponse, len(b.Lines)),
		Totals:  toTotalsResponse(b.Totals),
		Receipt: b.Receipt,
	}
	for i, l := range b.Lines {
		resp.Lines[i] = toBillLineResponse(l)
	}
	if b.CouponCode != "" {
		code := b.CouponCode
		resp.CouponCode = &code
	}
	return resp
}

func toBillLineResponse(l pricing.BillLine) billLineResponse {
	resp := billLineResponse{
		Code:        l.Code,
		Description: l.Description,
		Quantity:    l.Quantity,
		UnitPrice:   money.Format(l.UnitPrice),
		Value:       money.Format(l.Value),
	}
	if l.OrderNumber != 0 {
		n := l.OrderNumber
		resp.OrderNumber = &n
	}
	return resp
}
