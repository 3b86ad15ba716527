package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const couponColumns = `id, code, percentage, max_discount, valid_until, total_uses, remaining_uses, is_active, created_at, updated_at`

func scanCoupon(row pgx.Row) (Coupon, error) {
	var i Coupon
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Percentage,
		&i.MaxDiscount,
		&i.ValidUntil,
		&i.TotalUses,
		&i.RemainingUses,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getCouponByCode = `-- name: GetCouponByCode :one
SELECT ` + couponColumns + `
FROM coupons
WHERE lower(code) = lower($1)
`

// GetCouponByCode matches the code case-insensitively and exactly; no pattern
// characters are interpreted.
func (q *Queries) GetCouponByCode(ctx context.Context, code string) (Coupon, error) {
	row := q.db.QueryRow(ctx, getCouponByCode, code)
	return scanCoupon(row)
}

const listActiveCoupons = `-- name: ListActiveCoupons :many
SELECT ` + couponColumns + `
FROM coupons
WHERE is_active
ORDER BY valid_until, code
`

func (q *Queries) ListActiveCoupons(ctx context.Context) ([]Coupon, error) {
	rows, err := q.db.Query(ctx, listActiveCoupons)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Coupon{}
	for rows.Next() {
		i, err := scanCoupon(rows)
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

const replenishCouponUses = `-- name: ReplenishCouponUses :one
UPDATE coupons SET remaining_uses = total_uses, updated_at = now()
WHERE id = $1
RETURNING ` + couponColumns

func (q *Queries) ReplenishCouponUses(ctx context.Context, id uuid.UUID) (Coupon, error) {
	row := q.db.QueryRow(ctx, replenishCouponUses, id)
	return scanCoupon(row)
}
