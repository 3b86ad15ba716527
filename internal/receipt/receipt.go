// Package receipt renders bills and tickets as plain text sized for an 80mm
// thermal printer. It only formats; every amount arrives already computed.
package receipt

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/enum"
	"github.com/terraemar-pos/api/internal/money"
	"github.com/terraemar-pos/api/internal/pricing"
)

const (
	StoreName = "Lanchonete Terra e Mar"
	Footer    = "Thank you! Come back soon."

	lineWidth = 42
)

type Bill struct {
	Title      string
	Lines      []pricing.BillLine
	Totals     pricing.Totals
	CouponCode string
}

func RenderBill(b Bill) string {
	var sb strings.Builder
	center(&sb, StoreName)
	center(&sb, b.Title)
	sb.WriteString("\n")

	tw := tabwriter.NewWriter(&sb, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Code\tProduct\tQty\tUnit\tValue\t")
	for _, l := range b.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t\n",
			l.Code, truncate(l.Description, 16), l.Quantity, money.Format(l.UnitPrice), money.Format(l.Value))
	}
	tw.Flush()

	rule(&sb)
	writeTotals(&sb, b.Totals, b.CouponCode)
	sb.WriteString("\n")
	center(&sb, Footer)
	return sb.String()
}

type Delivery struct {
	Order  database.Order
	Items  []database.ListOrderItemsWithProductRow
	Totals pricing.Totals
}

// RenderDelivery prints the ticket that travels with an online order.
func RenderDelivery(d Delivery) string {
	o := d.Order
	var sb strings.Builder
	center(&sb, fmt.Sprintf("Delivery order #%d", o.Number))
	if o.DeliveryType == database.DeliveryTypePICKUP {
		center(&sb, "PICKUP")
	}
	sb.WriteString("\n")

	for _, f := range []pgtype.Text{o.CustomerName, o.CustomerPhone, o.CustomerAddress} {
		if f.Valid {
			sb.WriteString(f.String + "\n")
		}
	}
	if o.ReferencePoint.Valid {
		fmt.Fprintf(&sb, "Ref: %s\n", o.ReferencePoint.String)
	}

	payment := "-"
	if o.PaymentMethod.Valid {
		payment = enum.PaymentMethodLabel(o.PaymentMethod.String)
	}
	if o.ChangeFor.Valid {
		payment += " - change for " + money.FormatNumeric(o.ChangeFor)
	}
	fmt.Fprintf(&sb, "Payment: %s\n", payment)
	if o.Notes.Valid {
		sb.WriteString(o.Notes.String + "\n")
	}
	sb.WriteString("\n")

	tw := tabwriter.NewWriter(&sb, 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Code\tProduct\tQty\tValue\t")
	for _, it := range d.Items {
		desc := it.ProductDescription
		if it.Note.Valid {
			desc += " (" + it.Note.String + ")"
		}
		value := money.FromNumeric(it.UnitPrice).Mul(decimal.NewFromInt32(it.Quantity))
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t\n", it.ProductCode, truncate(desc, 20), it.Quantity, money.Format(value))
	}
	tw.Flush()

	rule(&sb)
	writeTotals(&sb, d.Totals, "")
	sb.WriteString("\n")
	center(&sb, Footer)
	return sb.String()
}

type Kitchen struct {
	Number    int64
	Label     string
	Items     []database.ListOrderItemsWithProductRow
	Notes     string
	CreatedAt time.Time
}

// RenderKitchen lists only the items the kitchen prepares.
func RenderKitchen(k Kitchen) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "#%d  %s  %s\n", k.Number, k.Label, k.CreatedAt.Format("15:04"))
	rule(&sb)
	for _, it := range k.Items {
		if !it.RoutesToKitchen {
			continue
		}
		fmt.Fprintf(&sb, "%3dx %s\n", it.Quantity, it.ProductDescription)
		if it.Note.Valid {
			fmt.Fprintf(&sb, "     > %s\n", it.Note.String)
		}
	}
	if k.Notes != "" {
		fmt.Fprintf(&sb, "Notes: %s\n", k.Notes)
	}
	return sb.String()
}

func writeTotals(sb *strings.Builder, t pricing.Totals, couponCode string) {
	fmt.Fprintf(sb, "Subtotal: R$ %s\n", money.Format(t.Subtotal))
	if t.CouponDiscount.IsPositive() {
		label := "Coupon discount"
		if couponCode != "" {
			label += " (" + couponCode + ")"
		}
		fmt.Fprintf(sb, "%s: - %s\n", label, money.Format(t.CouponDiscount))
	}
	if t.ManualDiscount.IsPositive() {
		fmt.Fprintf(sb, "Discount: - %s\n", money.Format(t.ManualDiscount))
	}
	if t.DeliveryFee.IsPositive() {
		fmt.Fprintf(sb, "Delivery fee: %s\n", money.Format(t.DeliveryFee))
	}
	fmt.Fprintf(sb, "TOTAL: R$ %s\n", money.Format(t.Total))
}

func center(sb *strings.Builder, s string) {
	if pad := (lineWidth - len([]rune(s))) / 2; pad > 0 {
		sb.WriteString(strings.Repeat(" ", pad))
	}
	sb.WriteString(s + "\n")
}

func rule(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("-", lineWidth) + "\n")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "."
}
