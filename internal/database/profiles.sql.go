package database

import (
	"context"

	"github.com/google/uuid"
)

const getProfileByEmail = `-- name: GetProfileByEmail :one
SELECT id, code, full_name, email, phone, hashed_password, role, is_active, created_at, updated_at
FROM profiles
WHERE email = $1 AND is_active = true
`

func (q *Queries) GetProfileByEmail(ctx context.Context, email string) (Profile, error) {
	row := q.db.QueryRow(ctx, getProfileByEmail, email)
	var i Profile
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.FullName,
		&i.Email,
		&i.Phone,
		&i.HashedPassword,
		&i.Role,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getProfileByID = `-- name: GetProfileByID :one
SELECT id, code, full_name, email, phone, hashed_password, role, is_active, created_at, updated_at
FROM profiles
WHERE id = $1 AND is_active = true
`

func (q *Queries) GetProfileByID(ctx context.Context, id uuid.UUID) (Profile, error) {
	row := q.db.QueryRow(ctx, getProfileByID, id)
	var i Profile
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.FullName,
		&i.Email,
		&i.Phone,
		&i.HashedPassword,
		&i.Role,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
