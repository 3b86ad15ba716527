package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/enum"
	"github.com/terraemar-pos/api/internal/middleware"
	"github.com/terraemar-pos/api/internal/service"
)

// BadgeServicer is satisfied by *service.BadgeService.
type BadgeServicer interface {
	SidebarCounts(ctx context.Context) service.Counts
	TableFlags(ctx context.Context) []database.ListTableFlagsRow
	TakeawayHasOpenOrders(ctx context.Context) bool
}

// TableHandler handles the table map and opening tabs on tables.
type TableHandler struct {
	tabs   TabServicer
	badges BadgeServicer
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(tabs TabServicer, badges BadgeServicer) *TableHandler {
	return &TableHandler{tabs: tabs, badges: badges}
}

// RegisterRoutes registers table endpoints.
// Expected to be mounted at /tables.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.With(middleware.RequireRole(enum.UserRoleAdmin)).Post("/init", h.Init)
	r.Get("/{tid}/tab", h.GetTab)
	r.Post("/{tid}/tab", h.OpenTab)
}

// --- Request / Response types ---

type initTablesRequest struct {
	Count int `json:"count"`
}

type openTabRequest struct {
	CustomerName string `json:"customer_name"`
}

type tableFlagsResponse struct {
	ID             uuid.UUID  `json:"id"`
	Number         int32      `json:"number"`
	Name           string     `json:"name"`
	TabID          *uuid.UUID `json:"tab_id"`
	CustomerName   *string    `json:"customer_name"`
	HasOpenOrders  bool       `json:"has_open_orders"`
	HasPendingBill bool       `json:"has_pending_bill"`
}

type tableMapResponse struct {
	Tables                []tableFlagsResponse `json:"tables"`
	TakeawayHasOpenOrders bool                 `json:"takeaway_has_open_orders"`
}

// --- Handlers ---

// List returns every dine-in table with its badge flags.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	rows := h.badges.TableFlags(r.Context())
	resp := tableMapResponse{
		Tables:                make([]tableFlagsResponse, len(rows)),
		TakeawayHasOpenOrders: h.badges.TakeawayHasOpenOrders(r.Context()),
	}
	for i, t := range rows {
		resp.Tables[i] = tableFlagsResponse{
			ID:             t.ID,
			Number:         t.Number,
			Name:           t.Name,
			TabID:          uuidPtr(t.TabID),
			CustomerName:   textPtr(t.CustomerName),
			HasOpenOrders:  t.HasOpenOrders,
			HasPendingBill: t.HasPendingBill,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Init creates tables 1..count and the takeaway table.
func (h *TableHandler) Init(w http.ResponseWriter, r *http.Request) {
	var req initTablesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tables, err := h.tabs.InitTables(r.Context(), req.Count)
	if err != nil {
		writeServiceError(w, err, "init tables")
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTab returns the open tab of a table.
func (h *TableHandler) GetTab(w http.ResponseWriter, r *http.Request) {
	tableID, ok := uuidParam(w, r, "tid", "table ID")
	if !ok {
		return
	}

	detail, err := h.tabs.GetOpenByTable(r.Context(), tableID)
	if err != nil {
		writeServiceError(w, err, "get open tab")
		return
	}
	writeJSON(w, http.StatusOK, toTabDetailResponse(detail))
}

// OpenTab opens a tab on a free table.
func (h *TableHandler) OpenTab(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	tableID, ok := uuidParam(w, r, "tid", "table ID")
	if !ok {
		return
	}

	var req openTabRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	tab, err := h.tabs.Open(r.Context(), tableID, claims.UserID, req.CustomerName)
	if err != nil {
		writeServiceError(w, err, "open tab")
		return
	}
	writeJSON(w, http.StatusCreated, toTabResponse(tab))
}
