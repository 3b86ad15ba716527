package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const listCompletedOrdersForReport = `-- name: ListCompletedOrdersForReport :many
SELECT o.id, o.number, o.origin, o.tab_id,
       COALESCE(t.customer_name, o.customer_name) AS customer_name,
       dt.number AS table_number,
       o.payment_method, o.discount, o.delivery_fee, o.closed_at,
       COALESCE((SELECT sum(oi.quantity * oi.unit_price) FROM order_items oi WHERE oi.order_id = o.id), 0)::numeric AS subtotal
FROM orders o
LEFT JOIN tabs t ON t.id = o.tab_id
LEFT JOIN dining_tables dt ON dt.id = t.table_id
WHERE o.status = 'COMPLETED'
  AND o.closed_at >= $1
  AND o.closed_at < $2
ORDER BY o.closed_at, o.number
`

type ListCompletedOrdersForReportParams struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

type ListCompletedOrdersForReportRow struct {
	ID            uuid.UUID          `json:"id"`
	Number        int64              `json:"number"`
	Origin        OrderOrigin        `json:"origin"`
	TabID         pgtype.UUID        `json:"tab_id"`
	CustomerName  pgtype.Text        `json:"customer_name"`
	TableNumber   pgtype.Int4        `json:"table_number"`
	PaymentMethod pgtype.Text        `json:"payment_method"`
	Discount      pgtype.Numeric     `json:"discount"`
	DeliveryFee   pgtype.Numeric     `json:"delivery_fee"`
	ClosedAt      pgtype.Timestamptz `json:"closed_at"`
	Subtotal      pgtype.Numeric     `json:"subtotal"`
}

// ListCompletedOrdersForReport returns orders closed within [Since, Until).
func (q *Queries) ListCompletedOrdersForReport(ctx context.Context, arg ListCompletedOrdersForReportParams) ([]ListCompletedOrdersForReportRow, error) {
	rows, err := q.db.Query(ctx, listCompletedOrdersForReport, arg.Since, arg.Until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListCompletedOrdersForReportRow{}
	for rows.Next() {
		var i ListCompletedOrdersForReportRow
		if err := rows.Scan(
			&i.ID,
			&i.Number,
			&i.Origin,
			&i.TabID,
			&i.CustomerName,
			&i.TableNumber,
			&i.PaymentMethod,
			&i.Discount,
			&i.DeliveryFee,
			&i.ClosedAt,
			&i.Subtotal,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listCancelledOrdersForReport = `-- name: ListCancelledOrdersForReport :many
SELECT o.id, o.number, o.origin,
       COALESCE(t.customer_name, o.customer_name) AS customer_name,
       o.cancel_reason, o.cancelled_at,
       p.full_name AS cancelled_by_name,
       COALESCE((SELECT sum(oi.quantity * oi.unit_price) FROM order_items oi WHERE oi.order_id = o.id), 0)::numeric AS subtotal
FROM orders o
LEFT JOIN tabs t ON t.id = o.tab_id
LEFT JOIN profiles p ON p.id = o.cancelled_by
WHERE o.status = 'CANCELLED'
  AND o.cancelled_at >= $1
  AND o.cancelled_at < $2
ORDER BY o.cancelled_at DESC
`

type ListCancelledOrdersForReportParams struct {
	Since time.Time `json:"since"`
	Until time.Time `json:"until"`
}

type ListCancelledOrdersForReportRow struct {
	ID              uuid.UUID          `json:"id"`
	Number          int64              `json:"number"`
	Origin          OrderOrigin        `json:"origin"`
	CustomerName    pgtype.Text        `json:"customer_name"`
	CancelReason    pgtype.Text        `json:"cancel_reason"`
	CancelledAt     pgtype.Timestamptz `json:"cancelled_at"`
	CancelledByName pgtype.Text        `json:"cancelled_by_name"`
	Subtotal        pgtype.Numeric     `json:"subtotal"`
}

func (q *Queries) ListCancelledOrdersForReport(ctx context.Context, arg ListCancelledOrdersForReportParams) ([]ListCancelledOrdersForReportRow, error) {
	rows, err := q.db.Query(ctx, listCancelledOrdersForReport, arg.Since, arg.Until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListCancelledOrdersForReportRow{}
	for rows.Next() {
		var i ListCancelledOrdersForReportRow
		if err := rows.Scan(
			&i.ID,
			&i.Number,
			&i.Origin,
			&i.CustomerName,
			&i.CancelReason,
			&i.CancelledAt,
			&i.CancelledByName,
			&i.Subtotal,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
