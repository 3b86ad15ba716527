package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrderItem = `-- name: CreateOrderItem :one
INSERT INTO order_items (order_id, product_id, quantity, unit_price, note)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, product_id, quantity, unit_price, note, created_at
`

type CreateOrderItemParams struct {
	OrderID   uuid.UUID      `json:"order_id"`
	ProductID uuid.UUID      `json:"product_id"`
	Quantity  int32          `json:"quantity"`
	UnitPrice pgtype.Numeric `json:"unit_price"`
	Note      pgtype.Text    `json:"note"`
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.ProductID,
		arg.Quantity,
		arg.UnitPrice,
		arg.Note,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.Quantity,
		&i.UnitPrice,
		&i.Note,
		&i.CreatedAt,
	)
	return i, err
}

const listOrderItemsWithProduct = `-- name: ListOrderItemsWithProduct :many
SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.note,
       p.code AS product_code, p.description AS product_description, p.routes_to_kitchen
FROM order_items oi
JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = ANY($1::uuid[])
ORDER BY oi.created_at, oi.id
`

type ListOrderItemsWithProductRow struct {
	ID                 uuid.UUID      `json:"id"`
	OrderID            uuid.UUID      `json:"order_id"`
	ProductID          uuid.UUID      `json:"product_id"`
	Quantity           int32          `json:"quantity"`
	UnitPrice          pgtype.Numeric `json:"unit_price"`
	Note               pgtype.Text    `json:"note"`
	ProductCode        string         `json:"product_code"`
	ProductDescription string         `json:"product_description"`
	RoutesToKitchen    bool           `json:"routes_to_kitchen"`
}

// ListOrderItemsWithProduct returns the line items of the given orders joined
// with the product code and description used on tickets and bills.
func (q *Queries) ListOrderItemsWithProduct(ctx context.Context, orderIds []uuid.UUID) ([]ListOrderItemsWithProductRow, error) {
	rows, err := q.db.Query(ctx, listOrderItemsWithProduct, orderIds)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListOrderItemsWithProductRow{}
	for rows.Next() {
		var i ListOrderItemsWithProductRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.Quantity,
			&i.UnitPrice,
			&i.Note,
			&i.ProductCode,
			&i.ProductDescription,
			&i.RoutesToKitchen,
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
