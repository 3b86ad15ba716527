package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/terraemar-pos/api/internal/coupon"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/enum"
	"github.com/terraemar-pos/api/internal/events"
	"github.com/terraemar-pos/api/internal/lifecycle"
	"github.com/terraemar-pos/api/internal/money"
	"github.com/terraemar-pos/api/internal/pricing"
)

const maxOrderNumberRetries = 3

// ItemRequest is a single requested line item.
type ItemRequest struct {
	ProductID uuid.UUID
	Quantity  int32
	Note      string
}

// OnlineOrderRequest is the validated input of a storefront checkout.
type OnlineOrderRequest struct {
	CustomerName   string
	CustomerPhone  string
	Address        string
	ReferencePoint string
	DeliveryType   database.DeliveryType // defaults to DELIVERY
	PaymentMethod  string
	ChangeFor      decimal.NullDecimal
	CouponCode     string
	Notes          string
	Items          []ItemRequest
}

// OrderDetail is an order with its items and computed totals.
type OrderDetail struct {
	Order  database.Order
	Items  []database.ListOrderItemsWithProductRow
	Totals pricing.Totals
}

// KitchenTicket is an order as the kitchen board shows it.
type KitchenTicket struct {
	OrderDetail
	TableNumber     pgtype.Int4
	TabCustomerName pgtype.Text
}

// TakeawayResult is a new takeaway tab with its first order.
type TakeawayResult struct {
	Tab   database.Tab
	Order *OrderDetail
}

// OrderService handles order creation and status changes.
type OrderService struct {
	db       DB
	newStore NewStore
	coupons  CouponValidator
	events   events.Publisher
}

func NewOrderService(db DB, newStore NewStore, coupons CouponValidator, pub events.Publisher) *OrderService {
	return &OrderService{db: db, newStore: newStore, coupons: coupons, events: pub}
}

// preparedItem is a requested item resolved against the catalog.
type preparedItem struct {
	product  database.Product
	quantity int32
	note     string
}

// CreateDineIn adds an order to an open tab. Orders on a takeaway tab keep
// the takeaway origin.
func (s *OrderService) CreateDineIn(ctx context.Context, tabID, createdBy uuid.UUID, items []ItemRequest, notes string) (*OrderDetail, error) {
	if err := checkItems(items); err != nil {
		return nil, err
	}

	detail, err := withOrderNumberRetry(func() (*OrderDetail, error) {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx) //nolint:errcheck

		store := s.newStore(tx)

		tab, err := store.GetTab(ctx, tabID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrTabNotFound
			}
			return nil, fmt.Errorf("get tab: %w", err)
		}
		if !tab.IsOpen {
			return nil, ErrTabNotOpen
		}

		prepared, err := prepareItems(ctx, store, items)
		if err != nil {
			return nil, err
		}

		origin := database.OrderOriginDINEIN
		if tab.IsTakeaway {
			origin = database.OrderOriginTAKEAWAY
		}

		detail, err := insertOrder(ctx, store, database.CreateOrderParams{
			Origin:       origin,
			TabID:        pgUUID(tab.ID),
			CustomerName: tab.CustomerName,
			DeliveryType: database.DeliveryTypePICKUP,
			Discount:     money.ToNumeric(decimal.Zero),
			DeliveryFee:  money.ToNumeric(decimal.Zero),
			Notes:        text(notes),
			CreatedBy:    pgUUID(createdBy),
		}, prepared)
		if err != nil {
			return nil, err
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit tx: %w", err)
		}
		return detail, nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, orderEvent(events.OrderCreated, detail.Order))
	return detail, nil
}

// CreateTakeaway opens a tab on the takeaway table and places its first order
// in one transaction.
func (s *OrderService) CreateTakeaway(ctx context.Context, customerName string, staffID uuid.UUID, items []ItemRequest, notes string) (*TakeawayResult, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, ErrCustomerNameRequired
	}
	if err := checkItems(items); err != nil {
		return nil, err
	}

	var tab database.Tab
	detail, err := withOrderNumberRetry(func() (*OrderDetail, error) {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx) //nolint:errcheck

		store := s.newStore(tx)

		table, err := store.GetTakeawayTable(ctx)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrNoTakeawayTable
			}
			return nil, fmt.Errorf("get takeaway table: %w", err)
		}

		prepared, err := prepareItems(ctx, store, items)
		if err != nil {
			return nil, err
		}

		tab, err = store.CreateTab(ctx, database.CreateTabParams{
			TableID:      table.ID,
			StaffID:      pgUUID(staffID),
			CustomerName: text(customerName),
			IsTakeaway:   true,
		})
		if err != nil {
			return nil, fmt.Errorf("create tab: %w", err)
		}

		detail, err := insertOrder(ctx, store, database.CreateOrderParams{
			Origin:       database.OrderOriginTAKEAWAY,
			TabID:        pgUUID(tab.ID),
			CustomerName: tab.CustomerName,
			DeliveryType: database.DeliveryTypePICKUP,
			Discount:     money.ToNumeric(decimal.Zero),
			DeliveryFee:  money.ToNumeric(decimal.Zero),
			Notes:        text(notes),
			CreatedBy:    pgUUID(staffID),
		}, prepared)
		if err != nil {
			return nil, err
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit tx: %w", err)
		}
		return detail, nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, events.Event{Type: events.TabOpened, TabID: tab.ID, Origin: string(database.OrderOriginTAKEAWAY)})
	publish(ctx, s.events, orderEvent(events.OrderCreated, detail.Order))
	return &TakeawayResult{Tab: tab, Order: detail}, nil
}

// CreateOnline places a storefront order. The delivery fee is the configured
// fee at this moment; a coupon code, when given, must pass validation.
func (s *OrderService) CreateOnline(ctx context.Context, req OnlineOrderRequest) (*OrderDetail, error) {
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerPhone) == "" {
		return nil, ErrCustomerRequired
	}
	deliveryType := req.DeliveryType
	if deliveryType == "" {
		deliveryType = database.DeliveryTypeDELIVERY
	}
	if deliveryType != database.DeliveryTypeDELIVERY && deliveryType != database.DeliveryTypePICKUP {
		return nil, ErrInvalidDeliveryType
	}
	if deliveryType == database.DeliveryTypeDELIVERY && strings.TrimSpace(req.Address) == "" {
		return nil, ErrAddressRequired
	}
	if err := checkPaymentMethod(req.PaymentMethod); err != nil {
		return nil, err
	}
	if req.ChangeFor.Valid && req.ChangeFor.Decimal.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if err := checkItems(req.Items); err != nil {
		return nil, err
	}

	var cp *database.Coupon
	if strings.TrimSpace(req.CouponCode) != "" {
		c, err := s.coupons.Validate(ctx, req.CouponCode)
		if err != nil {
			return nil, err
		}
		cp = &c
	}

	fee, err := s.DeliveryFee(ctx)
	if err != nil {
		return nil, err
	}

	detail, err := withOrderNumberRetry(func() (*OrderDetail, error) {
		tx, err := s.db.Begin(ctx)
		if err != nil {
			return nil, fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx) //nolint:errcheck

		store := s.newStore(tx)

		prepared, err := prepareItems(ctx, store, req.Items)
		if err != nil {
			return nil, err
		}

		in := pricing.Input{
			Lines:        linesOf(prepared),
			Origin:       database.OrderOriginONLINE,
			DeliveryType: deliveryType,
			DeliveryFee:  fee,
		}
		couponID := pgtype.UUID{}
		if cp != nil {
			in.Coupon = coupon.Terms(*cp)
			couponID = pgUUID(cp.ID)
		}
		totals := pricing.Compute(in)

		detail, err := insertOrder(ctx, store, database.CreateOrderParams{
			Origin:          database.OrderOriginONLINE,
			CustomerName:    text(req.CustomerName),
			CustomerPhone:   text(req.CustomerPhone),
			CustomerAddress: text(req.Address),
			ReferencePoint:  text(req.ReferencePoint),
			PaymentMethod:   text(req.PaymentMethod),
			ChangeFor:       money.NullableToNumeric(req.ChangeFor),
			DeliveryType:    deliveryType,
			Discount:        money.ToNumeric(totals.TotalDiscount),
			DeliveryFee:     money.ToNumeric(totals.DeliveryFee),
			CouponID:        couponID,
			Notes:           text(req.Notes),
		}, prepared)
		if err != nil {
			return nil, err
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit tx: %w", err)
		}
		return detail, nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, orderEvent(events.OrderCreated, detail.Order))
	return detail, nil
}

// DeliveryFee returns the configured delivery fee, zero when unset.
func (s *OrderService) DeliveryFee(ctx context.Context) (decimal.Decimal, error) {
	setting, err := s.newStore(s.db).GetSetting(ctx, enum.SettingDeliveryFee)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get delivery fee: %w", err)
	}
	fee, err := decimal.NewFromString(strings.TrimSpace(setting.Value))
	if err != nil || fee.IsNegative() {
		return decimal.Zero, ErrInvalidDeliveryFee
	}
	return fee, nil
}

// SetDeliveryFee changes the fee applied to online orders created from now on.
func (s *OrderService) SetDeliveryFee(ctx context.Context, fee decimal.Decimal) error {
	if fee.IsNegative() {
		return ErrNegativeAmount
	}
	_, err := s.newStore(s.db).SetSetting(ctx, database.SetSettingParams{
		Key:   enum.SettingDeliveryFee,
		Value: fee.String(),
	})
	if err != nil {
		return fmt.Errorf("set delivery fee: %w", err)
	}
	return nil
}

// Accept takes an online order out of the acceptance queue.
func (s *OrderService) Accept(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return s.apply(ctx, id, lifecycle.ActionAccept, nil)
}

func (s *OrderService) StartPreparing(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return s.apply(ctx, id, lifecycle.ActionStart, nil)
}

// Complete finishes a preparing order. A takeaway order whose tab was already
// paid inherits the tab's payment method.
func (s *OrderService) Complete(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return s.apply(ctx, id, lifecycle.ActionComplete, func(ctx context.Context, store Store, o database.Order, p *database.TransitionOrderParams) error {
		if o.Origin == database.OrderOriginONLINE || !o.TabID.Valid {
			return nil
		}
		tab, err := store.GetTab(ctx, o.TabID.Bytes)
		if err != nil {
			return fmt.Errorf("get tab: %w", err)
		}
		if tab.PaymentMethod.Valid {
			p.PaymentMethod = tab.PaymentMethod
		}
		return nil
	})
}

// Cancel requires a reason and records who cancelled.
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID, reason string, actor uuid.UUID) (database.Order, error) {
	return s.cancel(ctx, id, reason, actor, nil)
}

// cancel runs the cancellation; check, when set, vets the order as read in the
// same step that writes it.
func (s *OrderService) cancel(ctx context.Context, id uuid.UUID, reason string, actor uuid.UUID, check func(database.Order) error) (database.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return database.Order{}, ErrReasonRequired
	}
	return s.apply(ctx, id, lifecycle.ActionCancel, func(_ context.Context, _ Store, o database.Order, p *database.TransitionOrderParams) error {
		if check != nil {
			if err := check(o); err != nil {
				return err
			}
		}
		p.CancelReason = text(reason)
		p.CancelledBy = pgUUID(actor)
		return nil
	})
}

// SettleDelivery confirms that a completed online order was handed over.
func (s *OrderService) SettleDelivery(ctx context.Context, id uuid.UUID) (database.Order, error) {
	return s.apply(ctx, id, lifecycle.ActionSettle, func(_ context.Context, _ Store, o database.Order, _ *database.TransitionOrderParams) error {
		if o.ClosedAt.Valid {
			return ErrAlreadySettled
		}
		return nil
	})
}

// MarkDeliveryPrinted stamps the delivery ticket as printed and returns the
// order it belongs to.
func (s *OrderService) MarkDeliveryPrinted(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	store := s.newStore(s.db)

	order, err := getOrder(ctx, store, id)
	if err != nil {
		return nil, err
	}
	if order.Origin != database.OrderOriginONLINE {
		return nil, ErrNotOnline
	}

	order, err = store.MarkDeliveryPrinted(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark delivery printed: %w", err)
	}
	details, err := withItems(ctx, store, []database.Order{order})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.events, orderEvent(events.OrderDeliveryPrinted, order))
	return &details[0], nil
}

// transitionHook adjusts the update of a transition that passed the state machine.
type transitionHook func(ctx context.Context, store Store, current database.Order, p *database.TransitionOrderParams) error

func (s *OrderService) apply(ctx context.Context, id uuid.UUID, action lifecycle.Action, hook transitionHook) (database.Order, error) {
	order, err := transition(ctx, s.newStore(s.db), id, action, hook)
	if err != nil {
		return database.Order{}, err
	}

	t := events.OrderStatusChanged
	if action == lifecycle.ActionSettle {
		t = events.OrderSettled
	}
	publish(ctx, s.events, orderEvent(t, order))
	return order, nil
}

// transition reads the order, asks the state machine for the next status and
// writes it only if the order is still in the status that was read.
func transition(ctx context.Context, store Store, id uuid.UUID, action lifecycle.Action, hook transitionHook) (database.Order, error) {
	order, err := getOrder(ctx, store, id)
	if err != nil {
		return database.Order{}, err
	}

	kitchen, err := store.OrderRequiresKitchen(ctx, id)
	if err != nil {
		return database.Order{}, fmt.Errorf("check kitchen routing: %w", err)
	}

	out, err := lifecycle.Next(lifecycle.Kind{Origin: order.Origin, RequiresKitchen: kitchen}, order.Status, action)
	if err != nil {
		return database.Order{}, err
	}

	params := database.TransitionOrderParams{
		ID:             id,
		CurrentStatus:  order.Status,
		NextStatus:     out.Status,
		StampAccepted:  out.StampAccepted,
		StampClosed:    out.StampClosed,
		StampCancelled: out.StampCancelled,
	}
	if hook != nil {
		if err := hook(ctx, store, order, &params); err != nil {
			return database.Order{}, err
		}
	}

	updated, err := store.TransitionOrder(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrConcurrentUpdate
		}
		return database.Order{}, fmt.Errorf("update order status: %w", err)
	}
	return updated, nil
}

// Get returns one order with its items.
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*OrderDetail, error) {
	store := s.newStore(s.db)
	order, err := getOrder(ctx, store, id)
	if err != nil {
		return nil, err
	}
	details, err := withItems(ctx, store, []database.Order{order})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// KitchenQueue lists orders the kitchen works on, plus those it finished since completedSince.
func (s *OrderService) KitchenQueue(ctx context.Context, completedSince time.Time) ([]KitchenTicket, error) {
	store := s.newStore(s.db)

	rows, err := store.ListKitchenOrders(ctx, completedSince)
	if err != nil {
		return nil, fmt.Errorf("list kitchen orders: %w", err)
	}
	orders := make([]database.Order, len(rows))
	for i, r := range rows {
		orders[i] = r.Order
	}
	details, err := withItems(ctx, store, orders)
	if err != nil {
		return nil, err
	}

	tickets := make([]KitchenTicket, 0, len(rows))
	for i, r := range rows {
		if !lifecycle.KitchenVisible(r.Order.Status, routesToKitchen(details[i].Items)) {
			continue
		}
		tickets = append(tickets, KitchenTicket{
			OrderDetail:     details[i],
			TableNumber:     r.TableNumber,
			TabCustomerName: r.TabCustomerName,
		})
	}
	return tickets, nil
}

func routesToKitchen(items []database.ListOrderItemsWithProductRow) bool {
	for _, it := range items {
		if it.RoutesToKitchen {
			return true
		}
	}
	return false
}

// ListOnline returns live online orders and those closed since closedSince.
func (s *OrderService) ListOnline(ctx context.Context, closedSince time.Time) ([]OrderDetail, error) {
	return s.listByOrigin(ctx, database.OrderOriginONLINE, closedSince)
}

// ListTakeaway returns live takeaway orders and those closed since closedSince.
func (s *OrderService) ListTakeaway(ctx context.Context, closedSince time.Time) ([]OrderDetail, error) {
	return s.listByOrigin(ctx, database.OrderOriginTAKEAWAY, closedSince)
}

func (s *OrderService) listByOrigin(ctx context.Context, origin database.OrderOrigin, closedSince time.Time) ([]OrderDetail, error) {
	store := s.newStore(s.db)
	orders, err := store.ListOrdersByOrigin(ctx, database.ListOrdersByOriginParams{
		Origin:      origin,
		ClosedSince: closedSince,
	})
	if err != nil {
		return nil, fmt.Errorf("list %s orders: %w", origin, err)
	}
	return withItems(ctx, store, orders)
}

// ListPending returns online orders waiting for acceptance, oldest first.
func (s *OrderService) ListPending(ctx context.Context) ([]OrderDetail, error) {
	store := s.newStore(s.db)
	orders, err := store.ListAwaitingAcceptance(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending orders: %w", err)
	}
	return withItems(ctx, store, orders)
}

// --- Helpers ---

func getOrder(ctx context.Context, store Store, id uuid.UUID) (database.Order, error) {
	order, err := store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

func checkItems(items []ItemRequest) error {
	if len(items) == 0 {
		return ErrEmptyItems
	}
	for i, it := range items {
		if it.Quantity <= 0 {
			return fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
	}
	return nil
}

func checkPaymentMethod(pm string) error {
	if strings.TrimSpace(pm) == "" {
		return ErrPaymentMethodRequired
	}
	if !enum.IsPaymentMethod(pm) {
		return ErrInvalidPaymentMethod
	}
	return nil
}

// prepareItems resolves every item against the catalog in one query. Unit
// prices are taken from the catalog now and never change afterwards.
func prepareItems(ctx context.Context, store Store, items []ItemRequest) ([]preparedItem, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := store.ListProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	byID := make(map[uuid.UUID]database.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	prepared := make([]preparedItem, 0, len(items))
	for i, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrProductNotFound)
		}
		if !p.IsActive {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrProductInactive)
		}
		prepared = append(prepared, preparedItem{product: p, quantity: it.Quantity, note: it.Note})
	}
	return prepared, nil
}

func requiresKitchen(items []preparedItem) bool {
	for _, it := range items {
		if it.product.RoutesToKitchen {
			return true
		}
	}
	return false
}

func linesOf(items []preparedItem) []pricing.Line {
	lines := make([]pricing.Line, len(items))
	for i, it := range items {
		lines[i] = pricing.Line{Quantity: it.quantity, UnitPrice: money.FromNumeric(it.product.Price)}
	}
	return lines
}

// insertOrder numbers the order, sets its initial status and writes it with
// its items through store. Callers own the transaction.
func insertOrder(ctx context.Context, store Store, params database.CreateOrderParams, items []preparedItem) (*OrderDetail, error) {
	num, err := store.GetNextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("get next order number: %w", err)
	}

	initial := lifecycle.Initial(lifecycle.Kind{Origin: params.Origin, RequiresKitchen: requiresKitchen(items)})
	params.Number = num
	params.Status = initial.Status
	params.StampClosed = initial.StampClosed

	order, err := store.CreateOrder(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	rows := make([]database.ListOrderItemsWithProductRow, 0, len(items))
	for _, it := range items {
		created, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:   order.ID,
			ProductID: it.product.ID,
			Quantity:  it.quantity,
			UnitPrice: it.product.Price,
			Note:      text(it.note),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		rows = append(rows, database.ListOrderItemsWithProductRow{
			ID:                 created.ID,
			OrderID:            order.ID,
			ProductID:          it.product.ID,
			Quantity:           created.Quantity,
			UnitPrice:          created.UnitPrice,
			Note:               created.Note,
			ProductCode:        it.product.Code,
			ProductDescription: it.product.Description,
			RoutesToKitchen:    it.product.RoutesToKitchen,
		})
	}

	return &OrderDetail{Order: order, Items: rows, Totals: orderTotals(order, rows)}, nil
}

// withOrderNumberRetry retries fn when the order number collides with an
// existing one, e.g. after numbers were inserted by hand.
func withOrderNumberRetry(fn func() (*OrderDetail, error)) (*OrderDetail, error) {
	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		detail, err := fn()
		if err == nil {
			return detail, nil
		}
		if isUniqueViolation(err, constraintOrderNumber) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// withItems loads the items of orders in one query and attaches totals.
func withItems(ctx context.Context, store Store, orders []database.Order) ([]OrderDetail, error) {
	if len(orders) == 0 {
		return []OrderDetail{}, nil
	}
	ids := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := store.ListOrderItemsWithProduct(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	byOrder := make(map[uuid.UUID][]database.ListOrderItemsWithProductRow, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}

	details := make([]OrderDetail, len(orders))
	for i, o := range orders {
		rows := byOrder[o.ID]
		if rows == nil {
			rows = []database.ListOrderItemsWithProductRow{}
		}
		details[i] = OrderDetail{Order: o, Items: rows, Totals: orderTotals(o, rows)}
	}
	return details, nil
}

// orderTotals prices a stored order. The stored discount already holds the
// coupon and manual parts combined.
func orderTotals(o database.Order, items []database.ListOrderItemsWithProductRow) pricing.Totals {
	lines := make([]pricing.Line, len(items))
	for i, it := range items {
		lines[i] = pricing.Line{Quantity: it.Quantity, UnitPrice: money.FromNumeric(it.UnitPrice)}
	}
	return pricing.Compute(pricing.Input{
		Lines:          lines,
		Origin:         o.Origin,
		DeliveryType:   o.DeliveryType,
		DeliveryFee:    money.FromNumeric(o.DeliveryFee),
		ManualDiscount: money.FromNumeric(o.Discount),
	})
}
