// Package money converts between Postgres numerics and decimals.
// Amounts keep full precision until Format is called.
package money

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// FromNumeric returns zero for NULL or unreadable values.
func FromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	s, ok := val.(string)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func ToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.String())
	return n
}

// NullableToNumeric maps an invalid decimal to SQL NULL.
func NullableToNumeric(d decimal.NullDecimal) pgtype.Numeric {
	if !d.Valid {
		return pgtype.Numeric{}
	}
	return ToNumeric(d.Decimal)
}

// ToNullable keeps NULL as an invalid NullDecimal.
func ToNullable(n pgtype.Numeric) decimal.NullDecimal {
	if !n.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(FromNumeric(n))
}

// Format renders an amount with two decimal places. It is the only place
// amounts are rounded.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func FormatNumeric(n pgtype.Numeric) string {
	return Format(FromNumeric(n))
}
