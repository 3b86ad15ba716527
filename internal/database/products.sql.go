package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const productColumns = `id, code, description, sides, price, is_active, image_url, routes_to_kitchen, created_at, updated_at`

func collectProducts(rows pgx.Rows, err error) ([]Product, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Code,
			&i.Description,
			&i.Sides,
			&i.Price,
			&i.IsActive,
			&i.ImageUrl,
			&i.RoutesToKitchen,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const listActiveProducts = `-- name: ListActiveProducts :many
SELECT ` + productColumns + `
FROM products
WHERE is_active
ORDER BY code
`

func (q *Queries) ListActiveProducts(ctx context.Context) ([]Product, error) {
	return collectProducts(q.db.Query(ctx, listActiveProducts))
}

const listProductsByIDs = `-- name: ListProductsByIDs :many
SELECT ` + productColumns + `
FROM products
WHERE id = ANY($1::uuid[])
`

// ListProductsByIDs is the batched catalog lookup used when pricing new orders.
// Inactive products are returned so callers can reject them explicitly.
func (q *Queries) ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error) {
	return collectProducts(q.db.Query(ctx, listProductsByIDs, ids))
}
