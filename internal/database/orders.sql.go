package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const orderColumns = `id, number, origin, status, tab_id, customer_name, customer_phone, customer_address,
    reference_point, payment_method, change_for, delivery_type, discount, delivery_fee, coupon_id,
    notes, created_by, cancel_reason, cancelled_by, cancelled_at, accepted_at, closed_at,
    delivery_printed_at, created_at, updated_at`

const qualifiedOrderColumns = `o.id, o.number, o.origin, o.status, o.tab_id, o.customer_name, o.customer_phone,
    o.customer_address, o.reference_point, o.payment_method, o.change_for, o.delivery_type, o.discount,
    o.delivery_fee, o.coupon_id, o.notes, o.created_by, o.cancel_reason, o.cancelled_by, o.cancelled_at,
    o.accepted_at, o.closed_at, o.delivery_printed_at, o.created_at, o.updated_at`

func scanOrder(row pgx.Row, extra ...interface{}) (Order, error) {
	var i Order
	dest := []interface{}{
		&i.ID,
		&i.Number,
		&i.Origin,
		&i.Status,
		&i.TabID,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.CustomerAddress,
		&i.ReferencePoint,
		&i.PaymentMethod,
		&i.ChangeFor,
		&i.DeliveryType,
		&i.Discount,
		&i.DeliveryFee,
		&i.CouponID,
		&i.Notes,
		&i.CreatedBy,
		&i.CancelReason,
		&i.CancelledBy,
		&i.CancelledAt,
		&i.AcceptedAt,
		&i.ClosedAt,
		&i.DeliveryPrintedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	}
	err := row.Scan(append(dest, extra...)...)
	return i, err
}

func collectOrders(rows pgx.Rows, err error) ([]Order, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getNextOrderNumber = `-- name: GetNextOrderNumber :one
SELECT nextval('order_number_seq')::bigint
`

// GetNextOrderNumber allocates the next order number from the sequence.
// Concurrent callers never see the same value.
func (q *Queries) GetNextOrderNumber(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, getNextOrderNumber)
	var column_1 int64
	err := row.Scan(&column_1)
	return column_1, err
}

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (
    number, origin, status, tab_id, customer_name, customer_phone, customer_address,
    reference_point, payment_method, change_for, delivery_type, discount, delivery_fee,
    coupon_id, notes, created_by, closed_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
    CASE WHEN $17::bool THEN now() ELSE NULL END
)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	Number          int64          `json:"number"`
	Origin          OrderOrigin    `json:"origin"`
	Status          OrderStatus    `json:"status"`
	TabID           pgtype.UUID    `json:"tab_id"`
	CustomerName    pgtype.Text    `json:"customer_name"`
	CustomerPhone   pgtype.Text    `json:"customer_phone"`
	CustomerAddress pgtype.Text    `json:"customer_address"`
	ReferencePoint  pgtype.Text    `json:"reference_point"`
	PaymentMethod   pgtype.Text    `json:"payment_method"`
	ChangeFor       pgtype.Numeric `json:"change_for"`
	DeliveryType    DeliveryType   `json:"delivery_type"`
	Discount        pgtype.Numeric `json:"discount"`
	DeliveryFee     pgtype.Numeric `json:"delivery_fee"`
	CouponID        pgtype.UUID    `json:"coupon_id"`
	Notes           pgtype.Text    `json:"notes"`
	CreatedBy       pgtype.UUID    `json:"created_by"`
	StampClosed     bool           `json:"stamp_closed"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.Number,
		arg.Origin,
		arg.Status,
		arg.TabID,
		arg.CustomerName,
		arg.CustomerPhone,
		arg.CustomerAddress,
		arg.ReferencePoint,
		arg.PaymentMethod,
		arg.ChangeFor,
		arg.DeliveryType,
		arg.Discount,
		arg.DeliveryFee,
		arg.CouponID,
		arg.Notes,
		arg.CreatedBy,
		arg.StampClosed,
	)
	return scanOrder(row)
}

const getOrder = `-- name: GetOrder :one
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrder, id)
	return scanOrder(row)
}

const orderRequiresKitchen = `-- name: OrderRequiresKitchen :one
SELECT EXISTS (
    SELECT 1
    FROM order_items oi
    JOIN products p ON p.id = oi.product_id
    WHERE oi.order_id = $1 AND p.routes_to_kitchen
)
`

// OrderRequiresKitchen reports whether any line item of the order routes to the kitchen.
func (q *Queries) OrderRequiresKitchen(ctx context.Context, orderID uuid.UUID) (bool, error) {
	row := q.db.QueryRow(ctx, orderRequiresKitchen, orderID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const transitionOrder = `-- name: TransitionOrder :one
UPDATE orders SET
    status         = $3,
    accepted_at    = CASE WHEN $4::bool THEN now() ELSE accepted_at END,
    closed_at      = CASE WHEN $5::bool THEN now() ELSE closed_at END,
    cancelled_at   = CASE WHEN $6::bool THEN now() ELSE cancelled_at END,
    cancel_reason  = COALESCE($7, cancel_reason),
    cancelled_by   = COALESCE($8, cancelled_by),
    payment_method = COALESCE($9, payment_method),
    updated_at     = now()
WHERE id = $1 AND status = $2
  AND (NOT $5::bool OR closed_at IS NULL)
RETURNING ` + orderColumns

type TransitionOrderParams struct {
	ID             uuid.UUID   `json:"id"`
	CurrentStatus  OrderStatus `json:"current_status"`
	NextStatus     OrderStatus `json:"next_status"`
	StampAccepted  bool        `json:"stamp_accepted"`
	StampClosed    bool        `json:"stamp_closed"`
	StampCancelled bool        `json:"stamp_cancelled"`
	CancelReason   pgtype.Text `json:"cancel_reason"`
	CancelledBy    pgtype.UUID `json:"cancelled_by"`
	PaymentMethod  pgtype.Text `json:"payment_method"`
}

// TransitionOrder moves an order to its next status only while it is still in
// CurrentStatus and, when StampClosed is set, not yet closed. A lost race
// yields pgx.ErrNoRows.
func (q *Queries) TransitionOrder(ctx context.Context, arg TransitionOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, transitionOrder,
		arg.ID,
		arg.CurrentStatus,
		arg.NextStatus,
		arg.StampAccepted,
		arg.StampClosed,
		arg.StampCancelled,
		arg.CancelReason,
		arg.CancelledBy,
		arg.PaymentMethod,
	)
	return scanOrder(row)
}

const markDeliveryPrinted = `-- name: MarkDeliveryPrinted :one
UPDATE orders SET delivery_printed_at = now(), updated_at = now()
WHERE id = $1
RETURNING ` + orderColumns

func (q *Queries) MarkDeliveryPrinted(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, markDeliveryPrinted, id)
	return scanOrder(row)
}

const listOrdersByTab = `-- name: ListOrdersByTab :many
SELECT ` + orderColumns + `
FROM orders
WHERE tab_id = $1
ORDER BY created_at
`

func (q *Queries) ListOrdersByTab(ctx context.Context, tabID pgtype.UUID) ([]Order, error) {
	return collectOrders(q.db.Query(ctx, listOrdersByTab, tabID))
}

const listOrdersByOrigin = `-- name: ListOrdersByOrigin :many
SELECT ` + orderColumns + `
FROM orders
WHERE origin = $1
  AND status <> 'CANCELLED'
  AND (closed_at IS NULL OR closed_at >= $2)
ORDER BY created_at DESC
`

type ListOrdersByOriginParams struct {
	Origin      OrderOrigin `json:"origin"`
	ClosedSince time.Time   `json:"closed_since"`
}

// ListOrdersByOrigin returns the live orders of a channel plus those closed since ClosedSince.
func (q *Queries) ListOrdersByOrigin(ctx context.Context, arg ListOrdersByOriginParams) ([]Order, error) {
	return collectOrders(q.db.Query(ctx, listOrdersByOrigin, arg.Origin, arg.ClosedSince))
}

const listAwaitingAcceptance = `-- name: ListAwaitingAcceptance :many
SELECT ` + orderColumns + `
FROM orders
WHERE origin = 'ONLINE' AND status = 'AWAITING_ACCEPTANCE'
ORDER BY created_at
`

func (q *Queries) ListAwaitingAcceptance(ctx context.Context) ([]Order, error) {
	return collectOrders(q.db.Query(ctx, listAwaitingAcceptance))
}

const listKitchenOrders = `-- name: ListKitchenOrders :many
SELECT ` + qualifiedOrderColumns + `, dt.number AS table_number, t.customer_name AS tab_customer_name
FROM orders o
LEFT JOIN tabs t ON t.id = o.tab_id
LEFT JOIN dining_tables dt ON dt.id = t.table_id
WHERE EXISTS (
        SELECT 1 FROM order_items oi
        JOIN products p ON p.id = oi.product_id
        WHERE oi.order_id = o.id AND p.routes_to_kitchen
    )
  AND (o.status IN ('NEW', 'PREPARING')
       OR (o.status = 'COMPLETED' AND o.updated_at >= $1))
ORDER BY o.created_at
`

type ListKitchenOrdersRow struct {
	Order           Order       `json:"order"`
	TableNumber     pgtype.Int4 `json:"table_number"`
	TabCustomerName pgtype.Text `json:"tab_customer_name"`
}

// ListKitchenOrders returns orders visible to the kitchen. Completed orders are
// limited to those finished since completedSince.
func (q *Queries) ListKitchenOrders(ctx context.Context, completedSince time.Time) ([]ListKitchenOrdersRow, error) {
	rows, err := q.db.Query(ctx, listKitchenOrders, completedSince)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListKitchenOrdersRow{}
	for rows.Next() {
		var i ListKitchenOrdersRow
		o, err := scanOrder(rows, &i.TableNumber, &i.TabCustomerName)
		if err != nil {
			return nil, err
		}
		i.Order = o
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countUnfinishedTabOrders = `-- name: CountUnfinishedTabOrders :one
SELECT count(*)
FROM orders
WHERE tab_id = $1 AND status NOT IN ('COMPLETED', 'CANCELLED')
`

func (q *Queries) CountUnfinishedTabOrders(ctx context.Context, tabID pgtype.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countUnfinishedTabOrders, tabID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const closeTabOrders = `-- name: CloseTabOrders :execrows
UPDATE orders SET closed_at = now(), payment_method = $2, updated_at = now()
WHERE tab_id = $1 AND status <> 'CANCELLED'
`

type CloseTabOrdersParams struct {
	TabID         pgtype.UUID `json:"tab_id"`
	PaymentMethod pgtype.Text `json:"payment_method"`
}

func (q *Queries) CloseTabOrders(ctx context.Context, arg CloseTabOrdersParams) (int64, error) {
	result, err := q.db.Exec(ctx, closeTabOrders, arg.TabID, arg.PaymentMethod)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const setTabOrderDiscount = `-- name: SetTabOrderDiscount :execrows
UPDATE orders SET discount = $2, coupon_id = $3, updated_at = now()
WHERE tab_id = $1 AND status <> 'CANCELLED'
`

type SetTabOrderDiscountParams struct {
	TabID    pgtype.UUID    `json:"tab_id"`
	Discount pgtype.Numeric `json:"discount"`
	CouponID pgtype.UUID    `json:"coupon_id"`
}

// SetTabOrderDiscount overwrites the discount share and coupon of every
// non-cancelled order under a tab.
func (q *Queries) SetTabOrderDiscount(ctx context.Context, arg SetTabOrderDiscountParams) (int64, error) {
	result, err := q.db.Exec(ctx, setTabOrderDiscount, arg.TabID, arg.Discount, arg.CouponID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
