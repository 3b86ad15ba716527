// Package pricing turns line items, discounts and fees into billable totals.
// All arithmetic is exact decimal; nothing here rounds.
package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/terraemar-pos/api/internal/database"
)

var hundred = decimal.NewFromInt(100)

// Line is a priced quantity. Cancelled lines must be filtered by the caller.
type Line struct {
	Quantity  int32
	UnitPrice decimal.Decimal
}

// CouponTerms is the part of a coupon the engine needs.
type CouponTerms struct {
	Percentage  decimal.Decimal
	MaxDiscount decimal.NullDecimal
}

type Input struct {
	Lines          []Line
	Origin         database.OrderOrigin
	DeliveryType   database.DeliveryType
	DeliveryFee    decimal.Decimal // configured fee captured at creation
	Coupon         *CouponTerms
	ManualDiscount decimal.Decimal
}

type Totals struct {
	Subtotal       decimal.Decimal
	CouponDiscount decimal.Decimal
	ManualDiscount decimal.Decimal
	TotalDiscount  decimal.Decimal
	DeliveryFee    decimal.Decimal
	Total          decimal.Decimal
}

// Compute applies, in order: subtotal, coupon discount (capped by the coupon
// maximum, then by the subtotal), manual discount, the combined cap, the
// delivery fee and the zero floor.
func Compute(in Input) Totals {
	subtotal := Subtotal(in.Lines)
	couponDiscount := CouponDiscount(subtotal, in.Coupon)

	manual := in.ManualDiscount
	if manual.IsNegative() {
		manual = decimal.Zero
	}

	totalDiscount := decimal.Min(subtotal, couponDiscount.Add(manual))
	fee := DeliveryFee(in.Origin, in.DeliveryType, in.DeliveryFee)

	return Totals{
		Subtotal:       subtotal,
		CouponDiscount: couponDiscount,
		ManualDiscount: manual,
		TotalDiscount:  totalDiscount,
		DeliveryFee:    fee,
		Total:          Total(subtotal, totalDiscount, fee),
	}
}

func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt32(l.Quantity)))
	}
	return sum
}

// CouponDiscount is subtotal × percentage / 100, capped by the coupon maximum and by subtotal.
func CouponDiscount(subtotal decimal.Decimal, c *CouponTerms) decimal.Decimal {
	if c == nil || !subtotal.IsPositive() {
		return decimal.Zero
	}
	d := subtotal.Mul(c.Percentage).Div(hundred)
	if c.MaxDiscount.Valid && d.GreaterThan(c.MaxDiscount.Decimal) {
		d = c.MaxDiscount.Decimal
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(d, subtotal)
}

// DeliveryFee is charged only to online orders delivered to the customer.
func DeliveryFee(origin database.OrderOrigin, dt database.DeliveryType, configured decimal.Decimal) decimal.Decimal {
	if origin != database.OrderOriginONLINE || dt != database.DeliveryTypeDELIVERY || configured.IsNegative() {
		return decimal.Zero
	}
	return configured
}

// Total is subtotal − discount + fee, floored at zero.
func Total(subtotal, discount, fee decimal.Decimal) decimal.Decimal {
	t := subtotal.Sub(discount).Add(fee)
	if t.IsNegative() {
		return decimal.Zero
	}
	return t
}

// SplitDiscount spreads a tab discount evenly over n orders.
func SplitDiscount(total decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(n)))
}
