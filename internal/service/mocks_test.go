package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/events"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr  error
	committed  bool
	rolledBack bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitErr == nil {
		m.committed = true
	}
	return m.commitErr
}
func (m *mockTx) Rollback(ctx context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockDB implements DB. Queries go through the mock store, so the DBTX
// methods are never reached.
type mockDB struct {
	tx     *mockTx
	err    error
	begins int
}

func (m *mockDB) Begin(ctx context.Context) (pgx.Tx, error) {
	m.begins++
	if m.err != nil {
		return nil, m.err
	}
	return m.tx, nil
}
func (m *mockDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	panic("not implemented")
}

// mockStore implements Store with configurable behavior.
type mockStore struct {
	getNextOrderNumberFn           func(ctx context.Context) (int64, error)
	createOrderFn                  func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	createOrderItemFn              func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	getOrderFn                     func(ctx context.Context, id uuid.UUID) (database.Order, error)
	orderRequiresKitchenFn         func(ctx context.Context, orderID uuid.UUID) (bool, error)
	transitionOrderFn              func(ctx context.Context, arg database.TransitionOrderParams) (database.Order, error)
	markDeliveryPrintedFn          func(ctx context.Context, id uuid.UUID) (database.Order, error)
	listOrdersByTabFn              func(ctx context.Context, tabID pgtype.UUID) ([]database.Order, error)
	listOrdersByOriginFn           func(ctx context.Context, arg database.ListOrdersByOriginParams) ([]database.Order, error)
	listAwaitingAcceptanceFn       func(ctx context.Context) ([]database.Order, error)
	listKitchenOrdersFn            func(ctx context.Context, completedSince time.Time) ([]database.ListKitchenOrdersRow, error)
	listOrderItemsWithProductFn    func(ctx context.Context, orderIds []uuid.UUID) ([]database.ListOrderItemsWithProductRow, error)
	listProductsByIDsFn            func(ctx context.Context, ids []uuid.UUID) ([]database.Product, error)
	countUnfinishedTabOrdersFn     func(ctx context.Context, tabID pgtype.UUID) (int64, error)
	closeTabOrdersFn               func(ctx context.Context, arg database.CloseTabOrdersParams) (int64, error)
	setTabOrderDiscountFn          func(ctx context.Context, arg database.SetTabOrderDiscountParams) (int64, error)
	createTabFn                    func(ctx context.Context, arg database.CreateTabParams) (database.Tab, error)
	getTabFn                       func(ctx context.Context, id uuid.UUID) (database.Tab, error)
	getOpenTabByTableFn            func(ctx context.Context, tableID uuid.UUID) (database.Tab, error)
	closeTabFn                     func(ctx context.Context, arg database.CloseTabParams) (database.Tab, error)
	getDiningTableFn               func(ctx context.Context, id uuid.UUID) (database.DiningTable, error)
	getTakeawayTableFn             func(ctx context.Context) (database.DiningTable, error)
	upsertDiningTableFn            func(ctx context.Context, arg database.UpsertDiningTableParams) (database.DiningTable, error)
	listTableFlagsFn               func(ctx context.Context) ([]database.ListTableFlagsRow, error)
	getSettingFn                   func(ctx context.Context, key string) (database.Setting, error)
	setSettingFn                   func(ctx context.Context, arg database.SetSettingParams) (database.Setting, error)
	countTablesWithPendingBillFn   func(ctx context.Context) (int64, error)
	countTakeawayAwaitingPickupFn  func(ctx context.Context) (int64, error)
	countOnlineActiveFn            func(ctx context.Context) (int64, error)
	countKitchenActiveFn           func(ctx context.Context) (int64, error)
	takeawayHasOpenOrdersFn        func(ctx context.Context) (bool, error)
	listCompletedOrdersForReportFn func(ctx context.Context, arg database.ListCompletedOrdersForReportParams) ([]database.ListCompletedOrdersForReportRow, error)
	listCancelledOrdersForReportFn func(ctx context.Context, arg database.ListCancelledOrdersForReportParams) ([]database.ListCancelledOrdersForReportRow, error)
}

func (m *mockStore) GetNextOrderNumber(ctx context.Context) (int64, error) {
	return m.getNextOrderNumberFn(ctx)
}
func (m *mockStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	return m.createOrderFn(ctx, arg)
}
func (m *mockStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	return m.createOrderItemFn(ctx, arg)
}
func (m *mockStore) GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.getOrderFn(ctx, id)
}
func (m *mockStore) OrderRequiresKitchen(ctx context.Context, orderID uuid.UUID) (bool, error) {
	return m.orderRequiresKitchenFn(ctx, orderID)
}
func (m *mockStore) TransitionOrder(ctx context.Context, arg database.TransitionOrderParams) (database.Order, error) {
	return m.transitionOrderFn(ctx, arg)
}
func (m *mockStore) MarkDeliveryPrinted(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return m.markDeliveryPrintedFn(ctx, id)
}
func (m *mockStore) ListOrdersByTab(ctx context.Context, tabID pgtype.UUID) ([]database.Order, error) {
	return m.listOrdersByTabFn(ctx, tabID)
}
func (m *mockStore) ListOrdersByOrigin(ctx context.Context, arg database.ListOrdersByOriginParams) ([]database.Order, error) {
	return m.listOrdersByOriginFn(ctx, arg)
}
func (m *mockStore) ListAwaitingAcceptance(ctx context.Context) ([]database.Order, error) {
	return m.listAwaitingAcceptanceFn(ctx)
}
func (m *mockStore) ListKitchenOrders(ctx context.Context, completedSince time.Time) ([]database.ListKitchenOrdersRow, error) {
	return m.listKitchenOrdersFn(ctx, completedSince)
}
func (m *mockStore) ListOrderItemsWithProduct(ctx context.Context, orderIds []uuid.UUID) ([]database.ListOrderItemsWithProductRow, error) {
	return m.listOrderItemsWithProductFn(ctx, orderIds)
}
func (m *mockStore) ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]database.Product, error) {
	return m.listProductsByIDsFn(ctx, ids)
}
func (m *mockStore) CountUnfinishedTabOrders(ctx context.Context, tabID pgtype.UUID) (int64, error) {
	return m.countUnfinishedTabOrdersFn(ctx, tabID)
}
func (m *mockStore) CloseTabOrders(ctx context.Context, arg database.CloseTabOrdersParams) (int64, error) {
	return m.closeTabOrdersFn(ctx, arg)
}
func (m *mockStore) SetTabOrderDiscount(ctx context.Context, arg database.SetTabOrderDiscountParams) (int64, error) {
	return m.setTabOrderDiscountFn(ctx, arg)
}
func (m *mockStore) CreateTab(ctx context.Context, arg database.CreateTabParams) (database.Tab, error) {
	return m.createTabFn(ctx, arg)
}
func (m *mockStore) GetTab(ctx context.Context, id uuid.UUID) (database.Tab, error) {
	return m.getTabFn(ctx, id)
}
func (m *mockStore) GetOpenTabByTable(ctx context.Context, tableID uuid.UUID) (database.Tab, error) {
	return m.getOpenTabByTableFn(ctx, tableID)
}
func (m *mockStore) CloseTab(ctx context.Context, arg database.CloseTabParams) (database.Tab, error) {
	return m.closeTabFn(ctx, arg)
}
func (m *mockStore) GetDiningTable(ctx context.Context, id uuid.UUID) (database.DiningTable, error) {
	return m.getDiningTableFn(ctx, id)
}
func (m *mockStore) GetTakeawayTable(ctx context.Context) (database.DiningTable, error) {
	return m.getTakeawayTableFn(ctx)
}
func (m *mockStore) UpsertDiningTable(ctx context.Context, arg database.UpsertDiningTableParams) (database.DiningTable, error) {
	return m.upsertDiningTableFn(ctx, arg)
}
func (m *mockStore) ListTableFlags(ctx context.Context) ([]database.ListTableFlagsRow, error) {
	return m.listTableFlagsFn(ctx)
}
func (m *mockStore) GetSetting(ctx context.Context, key string) (database.Setting, error) {
	return m.getSettingFn(ctx, key)
}
func (m *mockStore) SetSetting(ctx context.Context, arg database.SetSettingParams) (database.Setting, error) {
	return m.setSettingFn(ctx, arg)
}
func (m *mockStore) CountTablesWithPendingBill(ctx context.Context) (int64, error) {
	return m.countTablesWithPendingBillFn(ctx)
}
func (m *mockStore) CountTakeawayAwaitingPickup(ctx context.Context) (int64, error) {
	return m.countTakeawayAwaitingPickupFn(ctx)
}
func (m *mockStore) CountOnlineActive(ctx context.Context) (int64, error) {
	return m.countOnlineActiveFn(ctx)
}
func (m *mockStore) CountKitchenActive(ctx context.Context) (int64, error) {
	return m.countKitchenActiveFn(ctx)
}
func (m *mockStore) TakeawayHasOpenOrders(ctx context.Context) (bool, error) {
	return m.takeawayHasOpenOrdersFn(ctx)
}
func (m *mockStore) ListCompletedOrdersForReport(ctx context.Context, arg database.ListCompletedOrdersForReportParams) ([]database.ListCompletedOrdersForReportRow, error) {
	return m.listCompletedOrdersForReportFn(ctx, arg)
}
func (m *mockStore) ListCancelledOrdersForReport(ctx context.Context, arg database.ListCancelledOrdersForReportParams) ([]database.ListCancelledOrdersForReportRow, error) {
	return m.listCancelledOrdersForReportFn(ctx, arg)
}

// mockPublisher records published events.
type mockPublisher struct {
	events []events.Event
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, e events.Event) error {
	m.events = append(m.events, e)
	return m.err
}

func (m *mockPublisher) types() []events.Type {
	out := make([]events.Type, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

// mockCoupons implements CouponValidator.
type mockCoupons struct {
	validateFn func(ctx context.Context, raw string) (database.Coupon, error)
}

func (m *mockCoupons) Validate(ctx context.Context, raw string) (database.Coupon, error) {
	if m.validateFn == nil {
		return database.Coupon{}, errors.New("unexpected coupon validation")
	}
	return m.validateFn(ctx, raw)
}

var _ Store = (*mockStore)(nil)
var _ Store = (*database.Queries)(nil)
var _ DB = (*mockDB)(nil)
