package handler_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/enum"
	"github.com/terraemar-pos/api/internal/handler"
	"github.com/terraemar-pos/api/internal/middleware"
	"github.com/terraemar-pos/api/internal/service"
	"github.com/xuri/excelize/v2"
)

// --- Mocks ---

type mockReportService struct {
	financialFn     func(ctx context.Context, since, until time.Time) (*service.FinancialReport, error)
	cancellationsFn func(ctx context.Context, since, until time.Time) ([]database.ListCancelledOrdersForReportRow, error)
}

func (m *mockReportService) Financial(ctx context.Context, since, until time.Time) (*service.FinancialReport, error) {
	return m.financialFn(ctx, since, until)
}

func (m *mockReportService) Cancellations(ctx context.Context, since, until time.Time) ([]database.ListCancelledOrdersForReportRow, error) {
	return m.cancellationsFn(ctx, since, until)
}

type mockCouponStore struct {
	coupons     []database.Coupon
	replenishFn func(ctx context.Context, id uuid.UUID) (database.Coupon, error)
}

func (m *mockCouponStore) ListActiveCoupons(context.Context) ([]database.Coupon, error) {
	return m.coupons, nil
}

func (m *mockCouponStore) ReplenishCouponUses(ctx context.Context, id uuid.UUID) (database.Coupon, error) {
	return m.replenishFn(ctx, id)
}

func setupAdminRouter(reports *mockReportService, coupons *mockCouponStore, orders *mockOrderService, badges *mockBadgeService) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	handler.NewBadgeHandler(badges).RegisterRoutes(r)
	r.Route("/coupons", handler.NewCouponHandler(coupons).RegisterRoutes)
	r.Route("/settings", handler.NewSettingsHandler(orders).RegisterRoutes)
	r.With(middleware.RequireRole(enum.UserRoleAdmin)).Route("/reports", handler.NewReportsHandler(reports).RegisterRoutes)
	return r
}

func sampleFinancial(since, until time.Time) *service.FinancialReport {
	closed := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	return &service.FinancialReport{
		Since: since,
		Until: until,
		Rows: []service.FinancialRow{
			{
				ClosedAt:      closed,
				OrderNumbers:  []int64{10, 11},
				Origin:        database.OrderOriginDINEIN,
				Label:         "Table 4",
				PaymentMethod: enum.PaymentMethodCash,
				Subtotal:      decimal.NewFromInt(35),
				Discount:      decimal.NewFromInt(6),
				DeliveryFee:   decimal.Zero,
				Total:         decimal.NewFromInt(29),
			},
		},
		Subtotal:    decimal.NewFromInt(35),
		Discount:    decimal.NewFromInt(6),
		DeliveryFee: decimal.Zero,
		Total:       decimal.NewFromInt(29),
	}
}

// --- Reports ---

func TestFinancialReport(t *testing.T) {
	var gotSince, gotUntil time.Time
	reports := &mockReportService{
		financialFn: func(_ context.Context, since, until time.Time) (*service.FinancialReport, error) {
			gotSince, gotUntil = since, until
			return sampleFinancial(since, until), nil
		},
	}

	rr := doAuthRequest(t, setupAdminRouter(reports, nil, nil, nil), "GET", "/reports/financial?from=2026-03-10&to=2026-03-11", nil, adminClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}

	wantSince := time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	wantUntil := time.Date(2026, 3, 12, 3, 0, 0, 0, time.UTC)
	if !gotSince.Equal(wantSince) || !gotUntil.Equal(wantUntil) {
		t.Errorf("range: got [%v, %v), want [%v, %v)", gotSince, gotUntil, wantSince, wantUntil)
	}

	resp := decodeResponse(t, rr)
	if resp["total"] != "29.00" || resp["discount"] != "6.00" {
		t.Errorf("totals: got %v", resp)
	}
	row := resp["rows"].([]interface{})[0].(map[string]interface{})
	if row["label"] != "Table 4" || row["total"] != "29.00" || len(row["order_numbers"].([]interface{})) != 2 {
		t.Errorf("row: got %v", row)
	}
}

func TestFinancialReport_BadRange(t *testing.T) {
	reports := &mockReportService{}
	r := setupAdminRouter(reports, nil, nil, nil)
	for _, q := range []string{"from=10/03/2026", "from=2026-03-10&to=2026-03-01", "from=2025-01-01&to=2026-12-31"} {
		rr := doAuthRequest(t, r, "GET", "/reports/financial?"+q, nil, adminClaims())
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want %d", q, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestReports_AdminOnly(t *testing.T) {
	rr := doAuthRequest(t, setupAdminRouter(&mockReportService{}, nil, nil, nil), "GET", "/reports/financial", nil, staffClaims())
	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestFinancialXLSX(t *testing.T) {
	reports := &mockReportService{
		financialFn: func(_ context.Context, since, until time.Time) (*service.FinancialReport, error) {
			return sampleFinancial(since, until), nil
		},
		cancellationsFn: func(context.Context, time.Time, time.Time) ([]database.ListCancelledOrdersForReportRow, error) {
			return []database.ListCancelledOrdersForReportRow{
				{ID: uuid.New(), Number: 12, Origin: database.OrderOriginONLINE, CancelReason: pgText("no stock"), Subtotal: numeric("12.5")},
			}, nil
		},
	}

	rr := doAuthRequest(t, setupAdminRouter(reports, nil, nil, nil), "GET", "/reports/financial.xlsx?from=2026-03-10", nil, adminClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d; body: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("content type: got %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="financial-2026-03-10.xlsx"` {
		t.Errorf("content disposition: got %q", cd)
	}

	f, err := excelize.OpenReader(rr.Body)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	if got, _ := f.GetCellValue("Financial", "D2"); got != "Table 4" {
		t.Errorf("Financial!D2: got %q", got)
	}
	if got, _ := f.GetCellValue("Cancellations", "A2"); got == "" {
		t.Error("expected a cancellation row")
	}
}

func TestCancellationsReport(t *testing.T) {
	reports := &mockReportService{
		cancellationsFn: func(context.Context, time.Time, time.Time) ([]database.ListCancelledOrdersForReportRow, error) {
			return []database.ListCancelledOrdersForReportRow{{
				ID:              uuid.New(),
				Number:          12,
				Origin:          database.OrderOriginDINEIN,
				CancelReason:    pgText("wrong dish"),
				CancelledAt:     pgtype.Timestamptz{Time: time.Now(), Valid: true},
				CancelledByName: pgText("Admin"),
				Subtotal:        numeric("12.5"),
			}}, nil
		},
	}
	rr := doAuthRequest(t, setupAdminRouter(reports, nil, nil, nil), "GET", "/reports/cancellations", nil, adminClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	row := decodeList(t, rr)[0]
	if row["reason"] != "wrong dish" || row["cancelled_by"] != "Admin" || row["subtotal"] != "12.50" {
		t.Errorf("row: got %v", row)
	}
}

// --- Coupons ---

func TestCouponList(t *testing.T) {
	coupons := &mockCouponStore{coupons: []database.Coupon{{
		ID:            uuid.New(),
		Code:          "TENOFF",
		Percentage:    numeric("10"),
		ValidUntil:    time.Now().Add(time.Hour),
		TotalUses:     10,
		RemainingUses: 0,
		IsActive:      true,
	}}}
	rr := doAuthRequest(t, setupAdminRouter(nil, coupons, nil, nil), "GET", "/coupons", nil, staffClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	c := decodeList(t, rr)[0]
	if c["remaining_uses"] != float64(0) || c["total_uses"] != float64(10) || c["max_discount"] != nil {
		t.Errorf("coupon: got %v", c)
	}
}

func TestCouponReplenish(t *testing.T) {
	id := uuid.New()
	coupons := &mockCouponStore{
		replenishFn: func(_ context.Context, got uuid.UUID) (database.Coupon, error) {
			if got != id {
				return database.Coupon{}, pgx.ErrNoRows
			}
			return database.Coupon{ID: id, Code: "TENOFF", Percentage: numeric("10"), TotalUses: 10, RemainingUses: 10, IsActive: true}, nil
		},
	}
	r := setupAdminRouter(nil, coupons, nil, nil)

	if rr := doAuthRequest(t, r, "POST", "/coupons/"+id.String()+"/replenish", nil, staffClaims()); rr.Code != http.StatusForbidden {
		t.Errorf("staff: got %d", rr.Code)
	}
	rr := doAuthRequest(t, r, "POST", "/coupons/"+id.String()+"/replenish", nil, adminClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("admin: got %d", rr.Code)
	}
	if resp := decodeResponse(t, rr); resp["remaining_uses"] != float64(10) {
		t.Errorf("remaining_uses: got %v", resp["remaining_uses"])
	}
	if rr := doAuthRequest(t, r, "POST", "/coupons/"+uuid.NewString()+"/replenish", nil, adminClaims()); rr.Code != http.StatusNotFound {
		t.Errorf("unknown coupon: got %d", rr.Code)
	}
}

// --- Settings ---

func TestDeliveryFeeSetting(t *testing.T) {
	var stored decimal.Decimal
	orders := &mockOrderService{
		deliveryFeeFn: func(context.Context) (decimal.Decimal, error) { return stored, nil },
		setDeliveryFeeFn: func(_ context.Context, fee decimal.Decimal) error {
			if fee.IsNegative() {
				return service.ErrNegativeAmount
			}
			stored = fee
			return nil
		},
	}
	r := setupAdminRouter(nil, nil, orders, nil)

	if rr := doAuthRequest(t, r, "PUT", "/settings/delivery-fee", map[string]string{"delivery_fee": "7.5"}, staffClaims()); rr.Code != http.StatusForbidden {
		t.Errorf("staff put: got %d", rr.Code)
	}
	if rr := doAuthRequest(t, r, "PUT", "/settings/delivery-fee", map[string]string{"delivery_fee": "7.5"}, adminClaims()); rr.Code != http.StatusOK {
		t.Fatalf("admin put: got %d", rr.Code)
	}
	rr := doAuthRequest(t, r, "GET", "/settings/delivery-fee", nil, staffClaims())
	if resp := decodeResponse(t, rr); resp["delivery_fee"] != "7.50" {
		t.Errorf("get: got %v", resp["delivery_fee"])
	}

	for _, bad := range []string{"-1", "seven"} {
		rr := doAuthRequest(t, r, "PUT", "/settings/delivery-fee", map[string]string{"delivery_fee": bad}, adminClaims())
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%q: got %d", bad, rr.Code)
		}
	}
}

func TestDeliveryFeeSetting_Corrupt(t *testing.T) {
	orders := &mockOrderService{
		deliveryFeeFn: func(context.Context) (decimal.Decimal, error) { return decimal.Zero, service.ErrInvalidDeliveryFee },
	}
	rr := doAuthRequest(t, setupAdminRouter(nil, nil, orders, nil), "GET", "/settings/delivery-fee", nil, staffClaims())
	if rr.Code != http.StatusInternalServerError || errorMessage(t, rr) != service.ErrInvalidDeliveryFee.Error() {
		t.Errorf("got %d", rr.Code)
	}
}

// --- Badges ---

func TestBadges(t *testing.T) {
	badges := &mockBadgeService{counts: service.Counts{Tables: 2, Takeaway: 1, Online: 3, Kitchen: 4}}
	rr := doAuthRequest(t, setupAdminRouter(nil, nil, nil, badges), "GET", "/badges", nil, kitchenClaims())
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d", rr.Code)
	}
	resp := decodeResponse(t, rr)
	if resp["tables"] != float64(2) || resp["online"] != float64(3) || resp["kitchen"] != float64(4) {
		t.Errorf("counts: got %v", resp)
	}
}

func TestReportStorageFailure(t *testing.T) {
	reports := &mockReportService{
		financialFn: func(context.Context, time.Time, time.Time) (*service.FinancialReport, error) {
			return nil, errors.New("timeout")
		},
	}
	rr := doAuthRequest(t, setupAdminRouter(reports, nil, nil, nil), "GET", "/reports/financial", nil, adminClaims())
	if rr.Code != http.StatusInternalServerError || errorMessage(t, rr) != "internal server error" {
		t.Errorf("got %d", rr.Code)
	}
}
