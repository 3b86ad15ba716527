package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/terraemar-pos/api/internal/coupon"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/enum"
	"github.com/terraemar-pos/api/internal/events"
	"github.com/terraemar-pos/api/internal/lifecycle"
	"github.com/terraemar-pos/api/internal/money"
	"github.com/terraemar-pos/api/internal/pricing"
	"github.com/terraemar-pos/api/internal/receipt"
)

const maxTables = 200

// TabDetail is a tab with its orders and running bill.
type TabDetail struct {
	Tab    database.Tab
	Table  database.DiningTable
	Orders []OrderDetail
	Totals pricing.Totals
}

// BillRequest selects the discounts applied when a bill is printed.
type BillRequest struct {
	CouponCode     string
	ManualDiscount decimal.Decimal
}

type Bill struct {
	Tab        database.Tab
	Title      string
	Lines      []pricing.BillLine
	Totals     pricing.Totals
	CouponCode string
	Receipt    string
}

// TabService aggregates orders under tabs.
type TabService struct {
	db       DB
	newStore NewStore
	orders   *OrderService
	coupons  CouponValidator
	events   events.Publisher
}

func NewTabService(db DB, newStore NewStore, orders *OrderService, coupons CouponValidator, pub events.Publisher) *TabService {
	return &TabService{db: db, newStore: newStore, orders: orders, coupons: coupons, events: pub}
}

// Open starts a dine-in tab. A table holds at most one open tab.
func (s *TabService) Open(ctx context.Context, tableID, staffID uuid.UUID, customerName string) (database.Tab, error) {
	store := s.newStore(s.db)

	table, err := store.GetDiningTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Tab{}, ErrTableNotFound
		}
		return database.Tab{}, fmt.Errorf("get table: %w", err)
	}
	if table.IsTakeaway {
		return database.Tab{}, ErrTakeawayTable
	}

	if _, err := store.GetOpenTabByTable(ctx, tableID); err == nil {
		return database.Tab{}, ErrAlreadyOpen
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return database.Tab{}, fmt.Errorf("get open tab: %w", err)
	}

	tab, err := store.CreateTab(ctx, database.CreateTabParams{
		TableID:      tableID,
		StaffID:      pgUUID(staffID),
		CustomerName: text(customerName),
	})
	if err != nil {
		// Lost a race with another open on the same table.
		if isUniqueViolation(err, constraintOneOpenTab) {
			return database.Tab{}, ErrAlreadyOpen
		}
		return database.Tab{}, fmt.Errorf("create tab: %w", err)
	}

	publish(ctx, s.events, events.Event{Type: events.TabOpened, TabID: tab.ID, Origin: string(database.OrderOriginDINEIN)})
	return tab, nil
}

func (s *TabService) Get(ctx context.Context, tabID uuid.UUID) (*TabDetail, error) {
	store := s.newStore(s.db)
	tab, err := getTab(ctx, store, tabID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, store, tab)
}

// GetOpenByTable returns the open dine-in tab of a table.
func (s *TabService) GetOpenByTable(ctx context.Context, tableID uuid.UUID) (*TabDetail, error) {
	store := s.newStore(s.db)
	tab, err := store.GetOpenTabByTable(ctx, tableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTabNotFound
		}
		return nil, fmt.Errorf("get open tab: %w", err)
	}
	return s.detail(ctx, store, tab)
}

func (s *TabService) detail(ctx context.Context, store Store, tab database.Tab) (*TabDetail, error) {
	table, err := store.GetDiningTable(ctx, tab.TableID)
	if err != nil {
		return nil, fmt.Errorf("get table: %w", err)
	}
	orders, err := store.ListOrdersByTab(ctx, pgUUID(tab.ID))
	if err != nil {
		return nil, fmt.Errorf("list tab orders: %w", err)
	}
	details, err := withItems(ctx, store, orders)
	if err != nil {
		return nil, err
	}

	// Stored shares are summed uncapped and the cap applies once, as on the bill.
	subtotal, discount := decimal.Zero, decimal.Zero
	for _, d := range details {
		if d.Order.Status == database.OrderStatusCANCELLED {
			continue
		}
		subtotal = subtotal.Add(d.Totals.Subtotal)
		discount = discount.Add(money.FromNumeric(d.Order.Discount))
	}
	totalDiscount := decimal.Min(subtotal, discount)

	return &TabDetail{
		Tab:    tab,
		Table:  table,
		Orders: details,
		Totals: pricing.Totals{
			Subtotal:       subtotal,
			TotalDiscount:  totalDiscount,
			DeliveryFee:    decimal.Zero,
			Total:          pricing.Total(subtotal, totalDiscount, decimal.Zero),
		},
	}, nil
}

// Close settles a tab. Orders with no kitchen items are completed first; if
// any order is still in progress afterwards the tab stays open.
func (s *TabService) Close(ctx context.Context, tabID uuid.UUID, paymentMethod string) (database.Tab, error) {
	if err := checkPaymentMethod(paymentMethod); err != nil {
		return database.Tab{}, err
	}

	store := s.newStore(s.db)
	tab, err := getTab(ctx, store, tabID)
	if err != nil {
		return database.Tab{}, err
	}
	if !tab.IsOpen {
		return database.Tab{}, ErrTabNotOpen
	}

	if err := s.autoComplete(ctx, store, tab.ID); err != nil {
		return database.Tab{}, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return database.Tab{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	txStore := s.newStore(tx)

	closed, err := txStore.CloseTab(ctx, database.CloseTabParams{ID: tab.ID, PaymentMethod: text(paymentMethod)})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Tab{}, ErrTabNotOpen
		}
		return database.Tab{}, fmt.Errorf("close tab: %w", err)
	}

	pending, err := txStore.CountUnfinishedTabOrders(ctx, pgUUID(tab.ID))
	if err != nil {
		return database.Tab{}, fmt.Errorf("count unfinished orders: %w", err)
	}
	if pending > 0 {
		return database.Tab{}, fmt.Errorf("%w: %d order(s) still in progress", ErrPendingOrders, pending)
	}

	if _, err := txStore.CloseTabOrders(ctx, database.CloseTabOrdersParams{
		TabID:         pgUUID(tab.ID),
		PaymentMethod: text(paymentMethod),
	}); err != nil {
		return database.Tab{}, fmt.Errorf("close tab orders: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Tab{}, fmt.Errorf("commit tx: %w", err)
	}

	publish(ctx, s.events, events.Event{Type: events.TabClosed, TabID: closed.ID})
	return closed, nil
}

// autoComplete completes every in-progress order of the tab that needs no
// kitchen work. Each update commits on its own.
func (s *TabService) autoComplete(ctx context.Context, store Store, tabID uuid.UUID) error {
	orders, err := store.ListOrdersByTab(ctx, pgUUID(tabID))
	if err != nil {
		return fmt.Errorf("list tab orders: %w", err)
	}
	for _, o := range orders {
		if o.Status != database.OrderStatusNEW && o.Status != database.OrderStatusPREPARING {
			continue
		}
		updated, err := transition(ctx, store, o.ID, lifecycle.ActionAutoComplete, nil)
		switch {
		case err == nil:
			publish(ctx, s.events, orderEvent(events.OrderStatusChanged, updated))
		case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrConcurrentUpdate):
			// Kitchen orders stay put; the pending check below reports them.
			log.WithField("order", o.Number).Debug("auto-complete skipped")
		default:
			return err
		}
	}
	return nil
}

// CancelOrder cancels an order of the tab that the kitchen has not started.
func (s *TabService) CancelOrder(ctx context.Context, tabID, orderID uuid.UUID, reason string, actor uuid.UUID) (database.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return database.Order{}, ErrReasonRequired
	}

	// The status read here is the one the update is conditioned on, so a
	// kitchen start in between turns the cancel into a conflict.
	return s.orders.cancel(ctx, orderID, reason, actor, func(o database.Order) error {
		if !o.TabID.Valid || uuid.UUID(o.TabID.Bytes) != tabID {
			return ErrNotTabOrder
		}
		if o.Status != database.OrderStatusNEW {
			return fmt.Errorf("%w: only orders not yet in preparation can be cancelled from the tab", ErrInvalidTransition)
		}
		return nil
	})
}

// PrintBill prices the tab, spreads the selected discount evenly over its
// non-cancelled orders and renders the printable bill. Selecting no discount
// clears any discount recorded by an earlier print.
func (s *TabService) PrintBill(ctx context.Context, tabID uuid.UUID, req BillRequest) (*Bill, error) {
	if req.ManualDiscount.IsNegative() {
		return nil, ErrNegativeAmount
	}

	store := s.newStore(s.db)
	tab, err := getTab(ctx, store, tabID)
	if err != nil {
		return nil, err
	}
	if !tab.IsOpen {
		return nil, ErrTabNotOpen
	}

	table, err := store.GetDiningTable(ctx, tab.TableID)
	if err != nil {
		return nil, fmt.Errorf("get table: %w", err)
	}
	orders, err := store.ListOrdersByTab(ctx, pgUUID(tab.ID))
	if err != nil {
		return nil, fmt.Errorf("list tab orders: %w", err)
	}
	details, err := withItems(ctx, store, orders)
	if err != nil {
		return nil, err
	}

	var sources []pricing.ItemSource
	active := 0
	for _, d := range details {
		cancelled := d.Order.Status == database.OrderStatusCANCELLED
		if !cancelled {
			active++
		}
		for _, it := range d.Items {
			sources = append(sources, pricing.ItemSource{
				OrderID:     d.Order.ID,
				OrderNumber: d.Order.Number,
				Cancelled:   cancelled,
				Code:        it.ProductCode,
				Description: it.ProductDescription,
				Quantity:    it.Quantity,
				UnitPrice:   money.FromNumeric(it.UnitPrice),
			})
		}
	}

	in := pricing.Input{
		Lines:          pricing.Lines(sources),
		Origin:         database.OrderOriginDINEIN,
		ManualDiscount: req.ManualDiscount,
	}
	if tab.IsTakeaway {
		in.Origin = database.OrderOriginTAKEAWAY
	}

	couponID := pgtype.UUID{}
	couponCode := ""
	if strings.TrimSpace(req.CouponCode) != "" {
		c, err := s.coupons.Validate(ctx, req.CouponCode)
		if err != nil {
			return nil, err
		}
		in.Coupon = coupon.Terms(c)
		couponID = pgUUID(c.ID)
		couponCode = c.Code
	}
	totals := pricing.Compute(in)

	share := pricing.SplitDiscount(totals.TotalDiscount, active)
	if _, err := store.SetTabOrderDiscount(ctx, database.SetTabOrderDiscountParams{
		TabID:    pgUUID(tab.ID),
		Discount: money.ToNumeric(share),
		CouponID: couponID,
	}); err != nil {
		return nil, fmt.Errorf("record tab discount: %w", err)
	}

	bill := &Bill{
		Tab:        tab,
		Title:      billTitle(tab, table, details),
		Lines:      pricing.Itemize(sources, !tab.IsTakeaway),
		Totals:     totals,
		CouponCode: couponCode,
	}
	bill.Receipt = receipt.RenderBill(receipt.Bill{
		Title:      bill.Title,
		Lines:      bill.Lines,
		Totals:     bill.Totals,
		CouponCode: bill.CouponCode,
	})

	publish(ctx, s.events, events.Event{Type: events.TabBilled, TabID: tab.ID})
	return bill, nil
}

// InitTables makes sure tables 1..count and the takeaway table exist.
// Tables above count are kept since they may still hold tabs.
func (s *TabService) InitTables(ctx context.Context, count int) ([]database.DiningTable, error) {
	if count < 1 || count > maxTables {
		return nil, ErrInvalidTableCount
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	tables := make([]database.DiningTable, 0, count+1)
	takeaway, err := store.UpsertDiningTable(ctx, database.UpsertDiningTableParams{
		Number:     enum.TakeawayTableNumber,
		Name:       enum.TakeawayTableName,
		IsTakeaway: true,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert takeaway table: %w", err)
	}
	tables = append(tables, takeaway)

	for n := 1; n <= count; n++ {
		t, err := store.UpsertDiningTable(ctx, database.UpsertDiningTableParams{
			Number: int32(n),
			Name:   fmt.Sprintf("Table %d", n),
		})
		if err != nil {
			return nil, fmt.Errorf("upsert table %d: %w", n, err)
		}
		tables = append(tables, t)
	}

	if _, err := store.SetSetting(ctx, database.SetSettingParams{
		Key:   enum.SettingTableCount,
		Value: fmt.Sprint(count),
	}); err != nil {
		return nil, fmt.Errorf("set table count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return tables, nil
}

func getTab(ctx context.Context, store Store, id uuid.UUID) (database.Tab, error) {
	tab, err := store.GetTab(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Tab{}, ErrTabNotFound
		}
		return database.Tab{}, fmt.Errorf("get tab: %w", err)
	}
	return tab, nil
}

func billTitle(tab database.Tab, table database.DiningTable, orders []OrderDetail) string {
	if !tab.IsTakeaway {
		return table.Name
	}
	title := "TAKEAWAY"
	if len(orders) > 0 {
		title = fmt.Sprintf("Order #%d - TAKEAWAY", orders[0].Order.Number)
	}
	if tab.CustomerName.Valid {
		title += " - " + tab.CustomerName.String
	}
	return title
}
