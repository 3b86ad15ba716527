// Package coupon validates discount codes. Validation only reads coupon
// state; the remaining-uses counter is managed administratively.
package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/money"
	"github.com/terraemar-pos/api/internal/pricing"
)

// Rejection reasons. Messages are shown to the customer as-is.
var (
	ErrEmptyCode = errors.New("enter a coupon code")
	ErrNotFound  = errors.New("coupon not found")
	ErrInactive  = errors.New("coupon is not active")
	ErrExpired   = errors.New("coupon has expired")
	ErrExhausted = errors.New("coupon has no uses left")
)

// IsRejection reports whether err is one of the validation rejections above.
func IsRejection(err error) bool {
	return errors.Is(err, ErrEmptyCode) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInactive) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrExhausted)
}

// Store is satisfied by *database.Queries.
type Store interface {
	GetCouponByCode(ctx context.Context, code string) (database.Coupon, error)
}

type Validator struct {
	store Store
	now   func() time.Time
}

type Option func(*Validator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

func NewValidator(store Store, opts ...Option) *Validator {
	v := &Validator{store: store, now: time.Now}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate returns the coupon matching raw, or the first rejection reason in
// the order: empty, not found, inactive, expired, exhausted.
func (v *Validator) Validate(ctx context.Context, raw string) (database.Coupon, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return database.Coupon{}, ErrEmptyCode
	}

	c, err := v.store.GetCouponByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Coupon{}, ErrNotFound
		}
		return database.Coupon{}, fmt.Errorf("get coupon: %w", err)
	}

	switch {
	case !c.IsActive:
		return database.Coupon{}, ErrInactive
	case c.ValidUntil.Before(v.now()):
		return database.Coupon{}, ErrExpired
	case c.RemainingUses <= 0:
		return database.Coupon{}, ErrExhausted
	}
	return c, nil
}

// Terms extracts the pricing inputs of a coupon.
func Terms(c database.Coupon) *pricing.CouponTerms {
	return &pricing.CouponTerms{
		Percentage:  money.FromNumeric(c.Percentage),
		MaxDiscount: money.ToNullable(c.MaxDiscount),
	}
}
