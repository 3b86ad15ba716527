package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/terraemar-pos/api/internal/auth"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/pricing"
	"github.com/terraemar-pos/api/internal/service"
)

const testJWTSecret = "test-secret-for-handlers"

func staffClaims() *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: "STAFF"}
}

func adminClaims() *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: "ADMIN"}
}

func kitchenClaims() *auth.Claims {
	return &auth.Claims{UserID: uuid.New(), Role: "KITCHEN"}
}

func doAuthRequest(t *testing.T, router http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	t.Helper()

	// Generate a real JWT token from claims
	token, err := auth.GenerateToken(testJWTSecret, claims.UserID, claims.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decodeResponse(t, rr)["error"].(string)
	return msg
}

// --- Fixtures ---

func numeric(s string) pgtype.Numeric {
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		panic(err)
	}
	return n
}

func pgText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func testOrder(origin database.OrderOrigin, status database.OrderStatus) database.Order {
	return database.Order{
		ID:          uuid.New(),
		Number:      101,
		Origin:      origin,
		Status:      status,
		Discount:    numeric("0"),
		DeliveryFee: numeric("0"),
		CreatedAt:   time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC),
	}
}

func testDetail(o database.Order) *service.OrderDetail {
	return &service.OrderDetail{
		Order: o,
		Items: []database.ListOrderItemsWithProductRow{
			{
				ID:                 uuid.New(),
				OrderID:            o.ID,
				ProductID:          uuid.New(),
				Quantity:           2,
				UnitPrice:          numeric("12.50"),
				ProductCode:        "X01",
				ProductDescription: "X-Burger",
				RoutesToKitchen:    true,
			},
		},
		Totals: pricing.Compute(pricing.Input{
			Lines: []pricing.Line{{Quantity: 2, UnitPrice: decimal.RequireFromString("12.50")}},
		}),
	}
}

// --- Mock order service ---

// mockOrderService satisfies every order-facing handler interface.
type mockOrderService struct {
	getFn            func(ctx context.Context, id uuid.UUID) (*service.OrderDetail, error)
	acceptFn         func(ctx context.Context, id uuid.UUID) (database.Order, error)
	startFn          func(ctx context.Context, id uuid.UUID) (database.Order, error)
	completeFn       func(ctx context.Context, id uuid.UUID) (database.Order, error)
	cancelFn         func(ctx context.Context, id uuid.UUID, reason string, actor uuid.UUID) (database.Order, error)
	settleFn         func(ctx context.Context, id uuid.UUID) (database.Order, error)
	markPrintedFn    func(ctx context.Context, id uuid.UUID) (*service.OrderDetail, error)
	kitchenQueueFn   func(ctx context.Context, completedSince time.Time) ([]service.KitchenTicket, error)
	listOnlineFn     func(ctx context.Context, closedSince time.Time) ([]service.OrderDetail, error)
	listPendingFn    func(ctx context.Context) ([]service.OrderDetail, error)
	listTakeawayFn   func(ctx context.Context, closedSince time.Time) ([]service.OrderDetail, error)
	createDineInFn   func(ctx context.Context, tabID, createdBy uuid.UUID, items []service.ItemRequest, notes string) (*service.OrderDetail, error)
	createTakeawayFn func(ctx context.Context, customerName string, staffID uuid.UUID, items []service.ItemRequest, notes string) (*service.TakeawayResult, error)
	createOnlineFn   func(ctx context.Context, req service.OnlineOrderRequest) (*service.OrderDetail, error)
	deliveryFeeFn    func(ctx context.Context) (decimal.Decimal, error)
	setDeliveryFeeFn func(ctx context.Context, fee decimal.Decimal) error
}

func (m *mockOrderService) Get(ctx context.Context, id uuid.UUID) (*service.OrderDetail, error) {
	return m.getFn(ctx, id)
}

func (m *mockOrderService) Accept(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.acceptFn(ctx, id)
}

func (m *mockOrderService) StartPreparing(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.startFn(ctx, id)
}

func (m *mockOrderService) Complete(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.completeFn(ctx, id)
}

func (m *mockOrderService) Cancel(ctx context.Context, id uuid.UUID, reason string, actor uuid.UUID) (database.Order, error) {
	return m.cancelFn(ctx, id, reason, actor)
}

func (m *mockOrderService) SettleDelivery(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.settleFn(ctx, id)
}

func (m *mockOrderService) MarkDeliveryPrinted(ctx context.Context, id uuid.UUID) (*service.OrderDetail, error) {
	return m.markPrintedFn(ctx, id)
}

func (m *mockOrderService) KitchenQueue(ctx context.Context, completedSince time.Time) ([]service.KitchenTicket, error) {
	return m.kitchenQueueFn(ctx, completedSince)
}

func (m *mockOrderService) ListOnline(ctx context.Context, closedSince time.Time) ([]service.OrderDetail, error) {
	return m.listOnlineFn(ctx, closedSince)
}

func (m *mockOrderService) ListPending(ctx context.Context) ([]service.OrderDetail, error) {
	return m.listPendingFn(ctx)
}

func (m *mockOrderService) ListTakeaway(ctx context.Context, closedSince time.Time) ([]service.OrderDetail, error) {
	return m.listTakeawayFn(ctx, closedSince)
}

func (m *mockOrderService) CreateDineIn(ctx context.Context, tabID, createdBy uuid.UUID, items []service.ItemRequest, notes string) (*service.OrderDetail, error) {
	return m.createDineInFn(ctx, tabID, createdBy, items, notes)
}

func (m *mockOrderService) CreateTakeaway(ctx context.Context, customerName string, staffID uuid.UUID, items []service.ItemRequest, notes string) (*service.TakeawayResult, error) {
	return m.createTakeawayFn(ctx, customerName, staffID, items, notes)
}

func (m *mockOrderService) CreateOnline(ctx context.Context, req service.OnlineOrderRequest) (*service.OrderDetail, error) {
	return m.createOnlineFn(ctx, req)
}

func (m *mockOrderService) DeliveryFee(ctx context.Context) (decimal.Decimal, error) {
	return m.deliveryFeeFn(ctx)
}

func (m *mockOrderService) SetDeliveryFee(ctx context.Context, fee decimal.Decimal) error {
	return m.setDeliveryFeeFn(ctx, fee)
}

// --- Mock tab service ---

type mockTabService struct {
	openFn           func(ctx context.Context, tableID, staffID uuid.UUID, customerName string) (database.Tab, error)
	getFn            func(ctx context.Context, tabID uuid.UUID) (*service.TabDetail, error)
	getOpenByTableFn func(ctx context.Context, tableID uuid.UUID) (*service.TabDetail, error)
	closeFn          func(ctx context.Context, tabID uuid.UUID, paymentMethod string) (database.Tab, error)
	cancelOrderFn    func(ctx context.Context, tabID, orderID uuid.UUID, reason string, actor uuid.UUID) (database.Order, error)
	printBillFn      func(ctx context.Context, tabID uuid.UUID, req service.BillRequest) (*service.Bill, error)
	initTablesFn     func(ctx context.Context, count int) ([]database.DiningTable, error)
}

func (m *mockTabService) Open(ctx context.Context, tableID, staffID uuid.UUID, customerName string) (database.Tab, error) {
	return m.openFn(ctx, tableID, staffID, customerName)
}

func (m *mockTabService) Get(ctx context.Context, tabID uuid.UUID) (*service.TabDetail, error) {
	return m.getFn(ctx, tabID)
}

func (m *mockTabService) GetOpenByTable(ctx context.Context, tableID uuid.UUID) (*service.TabDetail, error) {
	return m.getOpenByTableFn(ctx, tableID)
}

func (m *mockTabService) Close(ctx context.Context, tabID uuid.UUID, paymentMethod string) (database.Tab, error) {
	return m.closeFn(ctx, tabID, paymentMethod)
}

func (m *mockTabService) CancelOrder(ctx context.Context, tabID, orderID uuid.UUID, reason string, actor uuid.UUID) (database.Order, error) {
	return m.cancelOrderFn(ctx, tabID, orderID, reason, actor)
}

func (m *mockTabService) PrintBill(ctx context.Context, tabID uuid.UUID, req service.BillRequest) (*service.Bill, error) {
	return m.printBillFn(ctx, tabID, req)
}

func (m *mockTabService) InitTables(ctx context.Context, count int) ([]database.DiningTable, error) {
	return m.initTablesFn(ctx, count)
}

// --- Mock badge service ---

type mockBadgeService struct {
	counts   service.Counts
	flags    []database.ListTableFlagsRow
	takeaway bool
}

func (m *mockBadgeService) SidebarCounts(context.Context) service.Counts { return m.counts }

func (m *mockBadgeService) TableFlags(context.Context) []database.ListTableFlagsRow {
	return m.flags
}

func (m *mockBadgeService) TakeawayHasOpenOrders(context.Context) bool { return m.takeaway }

func getRequest(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
	return rr
}
