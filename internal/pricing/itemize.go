package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemSource is one order line as read for billing.
type ItemSource struct {
	OrderID     uuid.UUID
	OrderNumber int64
	Cancelled   bool
	Code        string
	Description string
	Quantity    int32
	UnitPrice   decimal.Decimal
}

// BillLine is one printed row of a bill.
type BillLine struct {
	OrderNumber int64 // zero when the line merges several orders
	Code        string
	Description string
	Quantity    int32
	UnitPrice   decimal.Decimal
	Value       decimal.Decimal
}

type mergeKey struct {
	code        string
	description string
}

// Itemize builds bill lines from the items of non-cancelled orders. With merge
// set, lines sharing code and description collapse into one row summing
// quantity and value; the first unit price seen is kept. Without merge every
// line is listed per order in input order.
func Itemize(items []ItemSource, merge bool) []BillLine {
	lines := make([]BillLine, 0, len(items))
	index := make(map[mergeKey]int)

	for _, it := range items {
		if it.Cancelled {
			continue
		}
		value := it.UnitPrice.Mul(decimal.NewFromInt32(it.Quantity))

		if merge {
			k := mergeKey{code: it.Code, description: it.Description}
			if i, ok := index[k]; ok {
				lines[i].Quantity += it.Quantity
				lines[i].Value = lines[i].Value.Add(value)
				if lines[i].OrderNumber != it.OrderNumber {
					lines[i].OrderNumber = 0
				}
				continue
			}
			index[k] = len(lines)
		}

		lines = append(lines, BillLine{
			OrderNumber: it.OrderNumber,
			Code:        it.Code,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Value:       value,
		})
	}
	return lines
}

// Lines returns the priced lines of the non-cancelled items.
func Lines(items []ItemSource) []Line {
	out := make([]Line, 0, len(items))
	for _, it := range items {
		if it.Cancelled {
			continue
		}
		out = append(out, Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out
}
