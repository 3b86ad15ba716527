package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/money"
	"github.com/terraemar-pos/api/internal/report"
	"github.com/terraemar-pos/api/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportServicer is satisfied by *service.ReportService.
type ReportServicer interface {
	Financial(ctx context.Context, since, until time.Time) (*service.FinancialReport, error)
	Cancellations(ctx context.Context, since, until time.Time) ([]database.ListCancelledOrdersForReportRow, error)
}

// ReportsHandler handles report endpoints.
type ReportsHandler struct {
	svc ReportServicer
	now func() time.Time
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(svc ReportServicer) *ReportsHandler {
	return &ReportsHandler{svc: svc, now: time.Now}
}

// RegisterRoutes registers report endpoints.
// Expected to be mounted at /reports behind an ADMIN role check.
func (h *ReportsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/financial", h.Financial)
	r.Get("/financial.xlsx", h.FinancialXLSX)
	r.Get("/cancellations", h.Cancellations)
}

// --- Response types ---

type financialRowResponse struct {
	ClosedAt      time.Time `json:"closed_at"`
	OrderNumbers  []int64   `json:"order_numbers"`
	Origin        string    `json:"origin"`
	Label         string    `json:"label"`
	PaymentMethod string    `json:"payment_method"`
	Subtotal      string    `json:"subtotal"`
	Discount      string    `json:"discount"`
	DeliveryFee   string    `json:"delivery_fee"`
	Total         string    `json:"total"`
}

type financialResponse struct {
	Since       time.Time              `json:"since"`
	Until       time.Time              `json:"until"`
	Rows        []financialRowResponse `json:"rows"`
	Subtotal    string                 `json:"subtotal"`
	Discount    string                 `json:"discount"`
	DeliveryFee string                 `json:"delivery_fee"`
	Total       string                 `json:"total"`
}

type cancellationResponse struct {
	ID           uuid.UUID  `json:"id"`
	Number       int64      `json:"number"`
	Origin       string     `json:"origin"`
	CustomerName *string    `json:"customer_name"`
	Reason       *string    `json:"reason"`
	CancelledAt  *time.Time `json:"cancelled_at"`
	CancelledBy  *string    `json:"cancelled_by"`
	Subtotal     string     `json:"subtotal"`
}

// --- Handlers ---

// Financial returns settled sales between ?from= and ?to= (YYYY-MM-DD, inclusive).
func (h *ReportsHandler) Financial(w http.ResponseWriter, r *http.Request) {
	since, until, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	fin, err := h.svc.Financial(r.Context(), since, until)
	if err != nil {
		writeServiceError(w, err, "financial report")
		return
	}

	resp := financialResponse{
		Since:       fin.Since,
		Until:       fin.Until,
		Rows:        make([]financialRowResponse, len(fin.Rows)),
		Subtotal:    money.Format(fin.Subtotal),
		Discount:    money.Format(fin.Discount),
		DeliveryFee: money.Format(fin.DeliveryFee),
		Total:       money.Format(fin.Total),
	}
	for i, row := range fin.Rows {
		resp.Rows[i] = financialRowResponse{
			ClosedAt:      row.ClosedAt,
			OrderNumbers:  row.OrderNumbers,
			Origin:        string(row.Origin),
			Label:         row.Label,
			PaymentMethod: row.PaymentMethod,
			Subtotal:      money.Format(row.Subtotal),
			Discount:      money.Format(row.Discount),
			DeliveryFee:   money.Format(row.DeliveryFee),
			Total:         money.Format(row.Total),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// FinancialXLSX exports the financial report and cancellations as a workbook.
func (h *ReportsHandler) FinancialXLSX(w http.ResponseWriter, r *http.Request) {
	since, until, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	fin, err := h.svc.Financial(r.Context(), since, until)
	if err != nil {
		writeServiceError(w, err, "financial report")
		return
	}
	cancelled, err := h.svc.Cancellations(r.Context(), since, until)
	if err != nil {
		writeServiceError(w, err, "cancellations report")
		return
	}

	f, err := report.Workbook(fin, cancelled)
	if err != nil {
		log.WithError(err).Error("build financial workbook")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	defer f.Close()

	name := fmt.Sprintf("financial-%s.xlsx", since.In(report.Zone).Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if err := f.Write(w); err != nil {
		log.WithError(err).Error("write financial workbook")
	}
}

// Cancellations lists cancelled orders in the range with who cancelled them.
func (h *ReportsHandler) Cancellations(w http.ResponseWriter, r *http.Request) {
	since, until, ok := h.parseRange(w, r)
	if !ok {
		return
	}

	rows, err := h.svc.Cancellations(r.Context(), since, until)
	if err != nil {
		writeServiceError(w, err, "cancellations report")
		return
	}

	resp := make([]cancellationResponse, len(rows))
	for i, c := range rows {
		resp[i] = cancellationResponse{
			ID:           c.ID,
			Number:       c.Number,
			Origin:       string(c.Origin),
			CustomerName: textPtr(c.CustomerName),
			Reason:       textPtr(c.CancelReason),
			CancelledAt:  timePtr(c.CancelledAt),
			CancelledBy:  textPtr(c.CancelledByName),
			Subtotal:     money.FormatNumeric(c.Subtotal),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func (h *ReportsHandler) parseRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	since, until, err := report.ParseRange(q.Get("from"), q.Get("to"), h.now())
	if err != nil {
		if errors.Is(err, report.ErrInvalidRange) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return time.Time{}, time.Time{}, false
		}
		log.WithError(err).Error("parse report range")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return time.Time{}, time.Time{}, false
	}
	return since, until, true
}
