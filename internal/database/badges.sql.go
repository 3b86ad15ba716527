package database

import (
	"context"
)

const countTablesWithPendingBill = `-- name: CountTablesWithPendingBill :one
SELECT count(DISTINCT t.table_id)
FROM tabs t
JOIN orders o ON o.tab_id = t.id
WHERE t.is_open AND NOT t.is_takeaway AND o.status = 'COMPLETED'
`

func (q *Queries) CountTablesWithPendingBill(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countTablesWithPendingBill)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countTakeawayAwaitingPickup = `-- name: CountTakeawayAwaitingPickup :one
SELECT count(*)
FROM orders o
JOIN tabs t ON t.id = o.tab_id
WHERE o.origin = 'TAKEAWAY' AND o.status = 'COMPLETED' AND t.is_open
`

// CountTakeawayAwaitingPickup counts finished takeaway orders whose tab has not been paid.
func (q *Queries) CountTakeawayAwaitingPickup(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countTakeawayAwaitingPickup)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countOnlineActive = `-- name: CountOnlineActive :one
SELECT count(*)
FROM orders
WHERE origin = 'ONLINE'
  AND (status IN ('AWAITING_ACCEPTANCE', 'NEW', 'PREPARING')
       OR (status = 'COMPLETED' AND closed_at IS NULL))
`

// CountOnlineActive counts online orders that are in flight or ready but not yet settled.
func (q *Queries) CountOnlineActive(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countOnlineActive)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countKitchenActive = `-- name: CountKitchenActive :one
SELECT count(*)
FROM orders o
WHERE o.status IN ('NEW', 'PREPARING')
  AND EXISTS (
      SELECT 1 FROM order_items oi
      JOIN products p ON p.id = oi.product_id
      WHERE oi.order_id = o.id AND p.routes_to_kitchen
  )
`

func (q *Queries) CountKitchenActive(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countKitchenActive)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const takeawayHasOpenOrders = `-- name: TakeawayHasOpenOrders :one
SELECT EXISTS (
    SELECT 1
    FROM orders o
    JOIN tabs t ON t.id = o.tab_id
    WHERE o.origin = 'TAKEAWAY' AND t.is_open AND o.status IN ('NEW', 'PREPARING')
)
`

func (q *Queries) TakeawayHasOpenOrders(ctx context.Context) (bool, error) {
	row := q.db.QueryRow(ctx, takeawayHasOpenOrders)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}
