package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const getDiningTable = `-- name: GetDiningTable :one
SELECT id, number, name, is_takeaway, created_at
FROM dining_tables
WHERE id = $1
`

func (q *Queries) GetDiningTable(ctx context.Context, id uuid.UUID) (DiningTable, error) {
	row := q.db.QueryRow(ctx, getDiningTable, id)
	var i DiningTable
	err := row.Scan(
		&i.ID,
		&i.Number,
		&i.Name,
		&i.IsTakeaway,
		&i.CreatedAt,
	)
	return i, err
}

const getTakeawayTable = `-- name: GetTakeawayTable :one
SELECT id, number, name, is_takeaway, created_at
FROM dining_tables
WHERE is_takeaway
LIMIT 1
`

func (q *Queries) GetTakeawayTable(ctx context.Context) (DiningTable, error) {
	row := q.db.QueryRow(ctx, getTakeawayTable)
	var i DiningTable
	err := row.Scan(
		&i.ID,
		&i.Number,
		&i.Name,
		&i.IsTakeaway,
		&i.CreatedAt,
	)
	return i, err
}

const upsertDiningTable = `-- name: UpsertDiningTable :one
INSERT INTO dining_tables (number, name, is_takeaway)
VALUES ($1, $2, $3)
ON CONFLICT (number) DO UPDATE SET name = EXCLUDED.name, is_takeaway = EXCLUDED.is_takeaway
RETURNING id, number, name, is_takeaway, created_at
`

type UpsertDiningTableParams struct {
	Number     int32  `json:"number"`
	Name       string `json:"name"`
	IsTakeaway bool   `json:"is_takeaway"`
}

func (q *Queries) UpsertDiningTable(ctx context.Context, arg UpsertDiningTableParams) (DiningTable, error) {
	row := q.db.QueryRow(ctx, upsertDiningTable, arg.Number, arg.Name, arg.IsTakeaway)
	var i DiningTable
	err := row.Scan(
		&i.ID,
		&i.Number,
		&i.Name,
		&i.IsTakeaway,
		&i.CreatedAt,
	)
	return i, err
}

const listTableFlags = `-- name: ListTableFlags :many
SELECT dt.id, dt.number, dt.name, t.id AS tab_id, t.customer_name,
       COALESCE(bool_or(o.status IN ('NEW', 'PREPARING', 'AWAITING_ACCEPTANCE')), false)::bool AS has_open_orders,
       COALESCE(bool_or(o.status = 'COMPLETED'), false)::bool AS has_pending_bill
FROM dining_tables dt
LEFT JOIN tabs t ON t.table_id = dt.id AND t.is_open AND NOT t.is_takeaway
LEFT JOIN orders o ON o.tab_id = t.id
WHERE NOT dt.is_takeaway
GROUP BY dt.id, dt.number, dt.name, t.id, t.customer_name
ORDER BY dt.number
`

type ListTableFlagsRow struct {
	ID             uuid.UUID   `json:"id"`
	Number         int32       `json:"number"`
	Name           string      `json:"name"`
	TabID          pgtype.UUID `json:"tab_id"`
	CustomerName   pgtype.Text `json:"customer_name"`
	HasOpenOrders  bool        `json:"has_open_orders"`
	HasPendingBill bool        `json:"has_pending_bill"`
}

// ListTableFlags returns every dine-in table with its open tab, if any, and
// the badge flags derived from the tab's orders.
func (q *Queries) ListTableFlags(ctx context.Context) ([]ListTableFlagsRow, error) {
	rows, err := q.db.Query(ctx, listTableFlags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []ListTableFlagsRow{}
	for rows.Next() {
		var i ListTableFlagsRow
		if err := rows.Scan(
			&i.ID,
			&i.Number,
			&i.Name,
			&i.TabID,
			&i.CustomerName,
			&i.HasOpenOrders,
			&i.HasPendingBill,
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
