package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/terraemar-pos/api/internal/coupon"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/money"
	"github.com/terraemar-pos/api/internal/pricing"
	"github.com/terraemar-pos/api/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("encode JSON response")
	}
}

// writeServiceError maps a service error to its HTTP status. Unexpected
// errors are logged under op and hidden from the client.
func writeServiceError(w http.ResponseWriter, err error, op string) {
	var status int
	switch {
	case coupon.IsRejection(err):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrPendingOrders),
		errors.Is(err, service.ErrAlreadyOpen),
		errors.Is(err, service.ErrConcurrentUpdate):
		status = http.StatusConflict
	case errors.Is(err, service.ErrConfiguration):
		log.WithError(err).Error(op)
		status = http.StatusInternalServerError
	default:
		log.WithError(err).Error(op)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + label})
		return uuid.Nil, false
	}
	return id, true
}

// parseAmount reads an optional decimal; an empty string is zero.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

type itemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
	Note      string `json:"note"`
}

// toItemRequests parses line items, writing a 400 on the first bad product ID.
func toItemRequests(w http.ResponseWriter, items []itemRequest) ([]service.ItemRequest, bool) {
	out := make([]service.ItemRequest, len(items))
	for i, it := range items {
		id, err := uuid.Parse(it.ProductID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("items[%d]: invalid product_id", i)})
			return nil, false
		}
		out[i] = service.ItemRequest{ProductID: id, Quantity: it.Quantity, Note: it.Note}
	}
	return out, true
}

// --- Response types ---

type totalsResponse struct {
	Subtotal       string `json:"subtotal"`
	CouponDiscount string `json:"coupon_discount"`
	ManualDiscount string `json:"manual_discount"`
	Discount       string `json:"discount"`
	DeliveryFee    string `json:"delivery_fee"`
	Total          string `json:"total"`
}

type orderItemResponse struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	Code            string    `json:"code"`
	Description     string    `json:"description"`
	Quantity        int32     `json:"quantity"`
	UnitPrice       string    `json:"unit_price"`
	Value           string    `json:"value"`
	Note            *string   `json:"note"`
	RoutesToKitchen bool      `json:"routes_to_kitchen"`
}

type orderResponse struct {
	ID                uuid.UUID           `json:"id"`
	Number            int64               `json:"number"`
	Origin            string              `json:"origin"`
	Status            string              `json:"status"`
	TabID             *uuid.UUID          `json:"tab_id"`
	CustomerName      *string             `json:"customer_name"`
	CustomerPhone     *string             `json:"customer_phone,omitempty"`
	CustomerAddress   *string             `json:"customer_address,omitempty"`
	ReferencePoint    *string             `json:"reference_point,omitempty"`
	DeliveryType      string              `json:"delivery_type,omitempty"`
	PaymentMethod     *string             `json:"payment_method"`
	ChangeFor         *string             `json:"change_for,omitempty"`
	Notes             *string             `json:"notes"`
	CancelReason      *string             `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	AcceptedAt        *time.Time          `json:"accepted_at,omitempty"`
	ClosedAt          *time.Time          `json:"closed_at"`
	CancelledAt       *time.Time          `json:"cancelled_at,omitempty"`
	DeliveryPrintedAt *time.Time          `json:"delivery_printed_at,omitempty"`
	Items             []orderItemResponse `json:"items,omitempty"`
	Totals            *totalsResponse     `json:"totals,omitempty"`
}

func toTotalsResponse(t pricing.Totals) *totalsResponse {
	return &totalsResponse{
		Subtotal:       money.Format(t.Subtotal),
		CouponDiscount: money.Format(t.CouponDiscount),
		ManualDiscount: money.Format(t.ManualDiscount),
		Discount:       money.Format(t.TotalDiscount),
		DeliveryFee:    money.Format(t.DeliveryFee),
		Total:          money.Format(t.Total),
	}
}

// toOrderResponse converts a bare order; items and totals are left empty.
func toOrderResponse(o database.Order) orderResponse {
	resp := orderResponse{
		ID:                o.ID,
		Number:            o.Number,
		Origin:            string(o.Origin),
		Status:            string(o.Status),
		TabID:             uuidPtr(o.TabID),
		CustomerName:      textPtr(o.CustomerName),
		CustomerPhone:     textPtr(o.CustomerPhone),
		CustomerAddress:   textPtr(o.CustomerAddress),
		ReferencePoint:    textPtr(o.ReferencePoint),
		PaymentMethod:     textPtr(o.PaymentMethod),
		Notes:             textPtr(o.Notes),
		CancelReason:      textPtr(o.CancelReason),
		CreatedAt:         o.CreatedAt,
		AcceptedAt:        timePtr(o.AcceptedAt),
		ClosedAt:          timePtr(o.ClosedAt),
		CancelledAt:       timePtr(o.CancelledAt),
		DeliveryPrintedAt: timePtr(o.DeliveryPrintedAt),
	}
	if o.Origin == database.OrderOriginONLINE {
		resp.DeliveryType = string(o.DeliveryType)
	}
	if o.ChangeFor.Valid {
		s := money.FormatNumeric(o.ChangeFor)
		resp.ChangeFor = &s
	}
	return resp
}

func toOrderDetailResponse(d service.OrderDetail) orderResponse {
	resp := toOrderResponse(d.Order)
	resp.Items = make([]orderItemResponse, len(d.Items))
	for i, it := range d.Items {
		price := money.FromNumeric(it.UnitPrice)
		resp.Items[i] = orderItemResponse{
			ID:              it.ID,
			ProductID:       it.ProductID,
			Code:            it.ProductCode,
			Description:     it.ProductDescription,
			Quantity:        it.Quantity,
			UnitPrice:       money.Format(price),
			Value:           money.Format(price.Mul(decimal.NewFromInt32(it.Quantity))),
			Note:            textPtr(it.Note),
			RoutesToKitchen: it.RoutesToKitchen,
		}
	}
	resp.Totals = toTotalsResponse(d.Totals)
	return resp
}

func toOrderDetailList(details []service.OrderDetail) []orderResponse {
	out := make([]orderResponse, len(details))
	for i, d := range details {
		out[i] = toOrderDetailResponse(d)
	}
	return out
}

type tabResponse struct {
	ID            uuid.UUID  `json:"id"`
	TableID       uuid.UUID  `json:"table_id"`
	CustomerName  *string    `json:"customer_name"`
	IsOpen        bool       `json:"is_open"`
	IsTakeaway    bool       `json:"is_takeaway"`
	PaymentMethod *string    `json:"payment_method"`
	CreatedAt     time.Time  `json:"created_at"`
	ClosedAt      *time.Time `json:"closed_at"`
}

func toTabResponse(t database.Tab) tabResponse {
	return tabResponse{
		ID:            t.ID,
		TableID:       t.TableID,
		CustomerName:  textPtr(t.CustomerName),
		IsOpen:        t.IsOpen,
		IsTakeaway:    t.IsTakeaway,
		PaymentMethod: textPtr(t.PaymentMethod),
		CreatedAt:     t.CreatedAt,
		ClosedAt:      timePtr(t.ClosedAt),
	}
}

func textPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}

func timePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func uuidPtr(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := uuid.UUID(u.Bytes)
	return &id
}
