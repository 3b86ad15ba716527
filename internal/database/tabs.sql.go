package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const tabColumns = `id, table_id, staff_id, customer_name, is_open, is_takeaway, payment_method, closed_at, created_at, updated_at`

func scanTab(row pgx.Row) (Tab, error) {
	var i Tab
	err := row.Scan(
		&i.ID,
		&i.TableID,
		&i.StaffID,
		&i.CustomerName,
		&i.IsOpen,
		&i.IsTakeaway,
		&i.PaymentMethod,
		&i.ClosedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createTab = `-- name: CreateTab :one
INSERT INTO tabs (table_id, staff_id, customer_name, is_takeaway)
VALUES ($1, $2, $3, $4)
RETURNING ` + tabColumns

type CreateTabParams struct {
	TableID      uuid.UUID   `json:"table_id"`
	StaffID      pgtype.UUID `json:"staff_id"`
	CustomerName pgtype.Text `json:"customer_name"`
	IsTakeaway   bool        `json:"is_takeaway"`
}

func (q *Queries) CreateTab(ctx context.Context, arg CreateTabParams) (Tab, error) {
	row := q.db.QueryRow(ctx, createTab,
		arg.TableID,
		arg.StaffID,
		arg.CustomerName,
		arg.IsTakeaway,
	)
	return scanTab(row)
}

const getTab = `-- name: GetTab :one
SELECT ` + tabColumns + `
FROM tabs
WHERE id = $1
`

func (q *Queries) GetTab(ctx context.Context, id uuid.UUID) (Tab, error) {
	row := q.db.QueryRow(ctx, getTab, id)
	return scanTab(row)
}

const getOpenTabByTable = `-- name: GetOpenTabByTable :one
SELECT ` + tabColumns + `
FROM tabs
WHERE table_id = $1 AND is_open AND NOT is_takeaway
LIMIT 1
`

func (q *Queries) GetOpenTabByTable(ctx context.Context, tableID uuid.UUID) (Tab, error) {
	row := q.db.QueryRow(ctx, getOpenTabByTable, tableID)
	return scanTab(row)
}

const closeTab = `-- name: CloseTab :one
UPDATE tabs SET is_open = false, payment_method = $2, closed_at = now(), updated_at = now()
WHERE id = $1 AND is_open
RETURNING ` + tabColumns

type CloseTabParams struct {
	ID            uuid.UUID   `json:"id"`
	PaymentMethod pgtype.Text `json:"payment_method"`
}

// CloseTab closes an open tab. A tab that is already closed yields pgx.ErrNoRows.
func (q *Queries) CloseTab(ctx context.Context, arg CloseTabParams) (Tab, error) {
	row := q.db.QueryRow(ctx, closeTab, arg.ID, arg.PaymentMethod)
	return scanTab(row)
}
