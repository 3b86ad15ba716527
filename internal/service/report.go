package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/money"
	"github.com/terraemar-pos/api/internal/pricing"
)

// FinancialRow is one settled sale: a whole tab, or a single online order.
type FinancialRow struct {
	ClosedAt      time.Time
	OrderNumbers  []int64
	Origin        database.OrderOrigin
	Label         string
	PaymentMethod string
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	DeliveryFee   decimal.Decimal
	Total         decimal.Decimal
}

type FinancialReport struct {
	Since       time.Time
	Until       time.Time
	Rows        []FinancialRow
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
}

type ReportService struct {
	store Store
}

func NewReportService(store Store) *ReportService {
	return &ReportService{store: store}
}

// Financial lists completed orders closed in [since, until). Orders of the
// same tab are merged into one row.
func (s *ReportService) Financial(ctx context.Context, since, until time.Time) (*FinancialReport, error) {
	orders, err := s.store.ListCompletedOrdersForReport(ctx, database.ListCompletedOrdersForReportParams{
		Since: since,
		Until: until,
	})
	if err != nil {
		return nil, fmt.Errorf("list completed orders: %w", err)
	}

	var rows []*FinancialRow
	byTab := make(map[uuid.UUID]*FinancialRow)
	for _, o := range orders {
		var row *FinancialRow
		if o.TabID.Valid {
			row = byTab[o.TabID.Bytes]
		}
		if row == nil {
			row = &FinancialRow{
				Origin:      o.Origin,
				Label:       reportLabel(o),
				Subtotal:    decimal.Zero,
				Discount:    decimal.Zero,
				DeliveryFee: decimal.Zero,
			}
			if o.PaymentMethod.Valid {
				row.PaymentMethod = o.PaymentMethod.String
			}
			rows = append(rows, row)
			if o.TabID.Valid {
				byTab[o.TabID.Bytes] = row
			}
		}

		row.OrderNumbers = append(row.OrderNumbers, o.Number)
		row.Subtotal = row.Subtotal.Add(money.FromNumeric(o.Subtotal))
		row.Discount = row.Discount.Add(money.FromNumeric(o.Discount))
		row.DeliveryFee = row.DeliveryFee.Add(money.FromNumeric(o.DeliveryFee))
		if o.ClosedAt.Valid && o.ClosedAt.Time.After(row.ClosedAt) {
			row.ClosedAt = o.ClosedAt.Time
		}
	}

	report := &FinancialReport{
		Since:       since,
		Until:       until,
		Rows:        make([]FinancialRow, 0, len(rows)),
		Subtotal:    decimal.Zero,
		Discount:    decimal.Zero,
		DeliveryFee: decimal.Zero,
		Total:       decimal.Zero,
	}
	for _, r := range rows {
		r.Total = pricing.Total(r.Subtotal, decimal.Min(r.Discount, r.Subtotal), r.DeliveryFee)
		report.Rows = append(report.Rows, *r)
		report.Subtotal = report.Subtotal.Add(r.Subtotal)
		report.Discount = report.Discount.Add(r.Discount)
		report.DeliveryFee = report.DeliveryFee.Add(r.DeliveryFee)
		report.Total = report.Total.Add(r.Total)
	}
	sort.SliceStable(report.Rows, func(i, j int) bool {
		return report.Rows[i].ClosedAt.Before(report.Rows[j].ClosedAt)
	})
	return report, nil
}

// Cancellations lists orders cancelled in [since, until), newest first.
func (s *ReportService) Cancellations(ctx context.Context, since, until time.Time) ([]database.ListCancelledOrdersForReportRow, error) {
	rows, err := s.store.ListCancelledOrdersForReport(ctx, database.ListCancelledOrdersForReportParams{
		Since: since,
		Until: until,
	})
	if err != nil {
		return nil, fmt.Errorf("list cancelled orders: %w", err)
	}
	return rows, nil
}

func reportLabel(o database.ListCompletedOrdersForReportRow) string {
	name := ""
	if o.CustomerName.Valid {
		name = " - " + o.CustomerName.String
	}
	switch o.Origin {
	case database.OrderOriginDINEIN:
		if o.TableNumber.Valid {
			return fmt.Sprintf("Table %d%s", o.TableNumber.Int32, name)
		}
		return "Dine-in" + name
	case database.OrderOriginTAKEAWAY:
		return "Takeaway" + name
	default:
		return "Online" + name
	}
}
