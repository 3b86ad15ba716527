package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/terraemar-pos/api/internal/database"
)

func closedAt(tm time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: tm, Valid: true}
}

func TestFinancial_MergesTabOrders(t *testing.T) {
	since := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	until := since.Add(24 * time.Hour)
	tabID := uuid.New()

	rows := []database.ListCompletedOrdersForReportRow{
		{
			ID: uuid.New(), Number: 12, Origin: database.OrderOriginONLINE,
			CustomerName:  pgtype.Text{String: "Maria", Valid: true},
			PaymentMethod: pgtype.Text{String: "PIX", Valid: true},
			Subtotal:      makeNumeric("20"), Discount: makeNumeric("2"), DeliveryFee: makeNumeric("5"),
			ClosedAt: closedAt(since.Add(5 * time.Hour)),
		},
		{
			ID: uuid.New(), Number: 10, Origin: database.OrderOriginDINEIN, TabID: pgUUID(tabID),
			TableNumber:   pgtype.Int4{Int32: 4, Valid: true},
			PaymentMethod: pgtype.Text{String: "CASH", Valid: true},
			Subtotal:      makeNumeric("20"), Discount: makeNumeric("3"), DeliveryFee: makeNumeric("0"),
			ClosedAt: closedAt(since.Add(2 * time.Hour)),
		},
		{
			ID: uuid.New(), Number: 11, Origin: database.OrderOriginDINEIN, TabID: pgUUID(tabID),
			TableNumber:   pgtype.Int4{Int32: 4, Valid: true},
			PaymentMethod: pgtype.Text{String: "CASH", Valid: true},
			Subtotal:      makeNumeric("15"), Discount: makeNumeric("3"), DeliveryFee: makeNumeric("0"),
			ClosedAt: closedAt(since.Add(2 * time.Hour)),
		},
	}
	var params database.ListCompletedOrdersForReportParams
	store := &mockStore{
		listCompletedOrdersForReportFn: func(ctx context.Context, arg database.ListCompletedOrdersForReportParams) ([]database.ListCompletedOrdersForReportRow, error) {
			params = arg
			return rows, nil
		},
	}

	report, err := NewReportService(store).Financial(context.Background(), since, until)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !params.Since.Equal(since) || !params.Until.Equal(until) {
		t.Errorf("range: got %+v", params)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("expected one row per tab or online order, got %d", len(report.Rows))
	}

	tab := report.Rows[0]
	if tab.Label != "Table 4" || tab.PaymentMethod != "CASH" {
		t.Errorf("tab row: got %q %q", tab.Label, tab.PaymentMethod)
	}
	if len(tab.OrderNumbers) != 2 || tab.OrderNumbers[0] != 10 || tab.OrderNumbers[1] != 11 {
		t.Errorf("order numbers: got %v", tab.OrderNumbers)
	}
	if !decEquals(tab.Subtotal, "35") || !decEquals(tab.Discount, "6") || !decEquals(tab.Total, "29") {
		t.Errorf("tab totals: got %s %s %s", tab.Subtotal, tab.Discount, tab.Total)
	}

	online := report.Rows[1]
	if online.Label != "Online - Maria" || !decEquals(online.Total, "23") {
		t.Errorf("online row: got %q %s", online.Label, online.Total)
	}

	if !decEquals(report.Subtotal, "55") || !decEquals(report.DeliveryFee, "5") || !decEquals(report.Total, "52") {
		t.Errorf("report totals: got %s %s %s", report.Subtotal, report.DeliveryFee, report.Total)
	}
}

func TestFinancial_Empty(t *testing.T) {
	store := &mockStore{
		listCompletedOrdersForReportFn: func(ctx context.Context, arg database.ListCompletedOrdersForReportParams) ([]database.ListCompletedOrdersForReportRow, error) {
			return nil, nil
		},
	}

	report, err := NewReportService(store).Financial(context.Background(), time.Now(), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Rows == nil || len(report.Rows) != 0 || !report.Total.IsZero() {
		t.Errorf("got %+v", report)
	}
}

func TestReportLabel(t *testing.T) {
	name := pgtype.Text{String: "Ana", Valid: true}
	tests := []struct {
		row  database.ListCompletedOrdersForReportRow
		want string
	}{
		{database.ListCompletedOrdersForReportRow{Origin: database.OrderOriginDINEIN, TableNumber: pgtype.Int4{Int32: 2, Valid: true}, CustomerName: name}, "Table 2 - Ana"},
		{database.ListCompletedOrdersForReportRow{Origin: database.OrderOriginDINEIN}, "Dine-in"},
		{database.ListCompletedOrdersForReportRow{Origin: database.OrderOriginTAKEAWAY, CustomerName: name}, "Takeaway - Ana"},
		{database.ListCompletedOrdersForReportRow{Origin: database.OrderOriginONLINE}, "Online"},
	}
	for _, tt := range tests {
		if got := reportLabel(tt.row); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}
