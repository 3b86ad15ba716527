// Package report holds the business-day calendar and the spreadsheet export
// of the financial and cancellation reports.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/enum"
	"github.com/terraemar-pos/api/internal/money"
	"github.com/terraemar-pos/api/internal/service"
	"github.com/xuri/excelize/v2"
)

// Zone is the restaurant's fixed UTC-3 business time zone.
var Zone = time.FixedZone("UTC-3", -3*60*60)

const (
	dateLayout = "2006-01-02"
	maxDays    = 366

	financialSheet    = "Financial"
	cancellationSheet = "Cancellations"
	timeLayout        = "02/01/2006 15:04"
)

var ErrInvalidRange = errors.New("invalid date range")

// DayBounds returns the UTC start and end of the business day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(Zone)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, Zone)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// ParseRange turns inclusive from/to business dates (YYYY-MM-DD) into a
// half-open UTC range. An empty from means the business day of now; an empty
// to means the same day as from.
func ParseRange(from, to string, now time.Time) (time.Time, time.Time, error) {
	since, _ := DayBounds(now)
	if s := strings.TrimSpace(from); s != "" {
		d, err := time.ParseInLocation(dateLayout, s, Zone)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be YYYY-MM-DD", ErrInvalidRange)
		}
		since = d.UTC()
	}

	_, until := DayBounds(since)
	if s := strings.TrimSpace(to); s != "" {
		d, err := time.ParseInLocation(dateLayout, s, Zone)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be YYYY-MM-DD", ErrInvalidRange)
		}
		_, until = DayBounds(d)
	}

	if !until.After(since) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to is before from", ErrInvalidRange)
	}
	if until.Sub(since) > maxDays*24*time.Hour {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: at most %d days", ErrInvalidRange, maxDays)
	}
	return since, until, nil
}

// Workbook builds a spreadsheet with one sheet per report. The caller closes it.
func Workbook(fin *service.FinancialReport, cancelled []database.ListCancelledOrdersForReportRow) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", financialSheet)

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, fmt.Errorf("money style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	if err := writeFinancial(f, fin, moneyStyle, boldStyle); err != nil {
		f.Close() //nolint:errcheck
		return nil, err
	}
	if err := writeCancellations(f, cancelled, moneyStyle, boldStyle); err != nil {
		f.Close() //nolint:errcheck
		return nil, err
	}
	return f, nil
}

func writeFinancial(f *excelize.File, fin *service.FinancialReport, moneyStyle, boldStyle int) error {
	header := []interface{}{"Closed at", "Orders", "Channel", "Customer", "Payment", "Subtotal", "Discount", "Delivery fee", "Total"}
	if err := f.SetSheetRow(financialSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := 2
	for _, r := range fin.Rows {
		numbers := make([]string, len(r.OrderNumbers))
		for i, n := range r.OrderNumbers {
			numbers[i] = fmt.Sprintf("#%d", n)
		}
		values := []interface{}{
			r.ClosedAt.In(Zone).Format(timeLayout),
			strings.Join(numbers, ", "),
			channelLabel(r.Origin),
			r.Label,
			enum.PaymentMethodLabel(r.PaymentMethod),
			r.Subtotal.InexactFloat64(),
			r.Discount.InexactFloat64(),
			r.DeliveryFee.InexactFloat64(),
			r.Total.InexactFloat64(),
		}
		if err := f.SetSheetRow(financialSheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	totals := []interface{}{
		"TOTAL", "", "", "", "",
		fin.Subtotal.InexactFloat64(),
		fin.Discount.InexactFloat64(),
		fin.DeliveryFee.InexactFloat64(),
		fin.Total.InexactFloat64(),
	}
	if err := f.SetSheetRow(financialSheet, fmt.Sprintf("A%d", row), &totals); err != nil {
		return fmt.Errorf("write totals: %w", err)
	}

	if err := f.SetCellStyle(financialSheet, "A1", "I1", boldStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(financialSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), boldStyle); err != nil {
		return err
	}
	if err := f.SetCellStyle(financialSheet, "F2", fmt.Sprintf("I%d", row), moneyStyle); err != nil {
		return err
	}
	return f.SetColWidth(financialSheet, "A", "E", 18)
}

func writeCancellations(f *excelize.File, rows []database.ListCancelledOrdersForReportRow, moneyStyle, boldStyle int) error {
	if _, err := f.NewSheet(cancellationSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := []interface{}{"Cancelled at", "Order", "Channel", "Customer", "Reason", "Cancelled by", "Subtotal"}
	if err := f.SetSheetRow(cancellationSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, c := range rows {
		at := ""
		if c.CancelledAt.Valid {
			at = c.CancelledAt.Time.In(Zone).Format(timeLayout)
		}
		values := []interface{}{
			at,
			fmt.Sprintf("#%d", c.Number),
			channelLabel(c.Origin),
			c.CustomerName.String,
			c.CancelReason.String,
			c.CancelledByName.String,
			money.FromNumeric(c.Subtotal).InexactFloat64(),
		}
		if err := f.SetSheetRow(cancellationSheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetCellStyle(cancellationSheet, "A1", "G1", boldStyle); err != nil {
		return err
	}
	if len(rows) > 0 {
		if err := f.SetCellStyle(cancellationSheet, "G2", fmt.Sprintf("G%d", len(rows)+1), moneyStyle); err != nil {
			return err
		}
	}
	return f.SetColWidth(cancellationSheet, "A", "F", 18)
}

func channelLabel(o database.OrderOrigin) string {
	switch o {
	case database.OrderOriginDINEIN:
		return "Dine-in"
	case database.OrderOriginTAKEAWAY:
		return "Takeaway"
	case database.OrderOriginONLINE:
		return "Online"
	}
	return string(o)
}
