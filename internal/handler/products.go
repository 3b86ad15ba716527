package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/terraemar-pos/api/internal/coupon"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/money"
	"github.com/terraemar-pos/api/internal/pricing"
	"github.com/terraemar-pos/api/internal/service"
)

// ProductStore defines the database methods needed by the storefront.
// Satisfied by *database.Queries; narrow interface for testability.
type ProductStore interface {
	ListActiveProducts(ctx context.Context) ([]database.Product, error)
}

// CouponChecker is satisfied by *coupon.Validator.
type CouponChecker interface {
	Validate(ctx context.Context, raw string) (database.Coupon, error)
}

// OnlineOrderCreator is satisfied by *service.OrderService.
type OnlineOrderCreator interface {
	CreateOnline(ctx context.Context, req service.OnlineOrderRequest) (*service.OrderDetail, error)
	DeliveryFee(ctx context.Context) (decimal.Decimal, error)
}

// StoreHandler serves the public online storefront.
type StoreHandler struct {
	products ProductStore
	coupons  CouponChecker
	orders   OnlineOrderCreator
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(products ProductStore, coupons CouponChecker, orders OnlineOrderCreator) *StoreHandler {
	return &StoreHandler{products: products, coupons: coupons, orders: orders}
}

// RegisterRoutes registers the catalog and coupon endpoints.
// Expected to be mounted at /store.
func (h *StoreHandler) RegisterRoutes(r chi.Router) {
	r.Get("/products", h.ListProducts)
	r.Post("/coupons/validate", h.ValidateCoupon)
}

// --- Request / Response types ---

type productResponse struct {
	ID              uuid.UUID `json:"id"`
	Code            string    `json:"code"`
	Description     string    `json:"description"`
	Sides           *string   `json:"sides"`
	Price           string    `json:"price"`
	ImageURL        *string   `json:"image_url"`
	RoutesToKitchen bool      `json:"routes_to_kitchen"`
}

type catalogResponse struct {
	Products    []productResponse `json:"products"`
	DeliveryFee string            `json:"delivery_fee"`
}

type validateCouponRequest struct {
	Code     string `json:"code"`
	Subtotal string `json:"subtotal"`
}

type couponResponse struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Percentage  string    `json:"percentage"`
	MaxDiscount *string   `json:"max_discount"`
	ValidUntil  time.Time `json:"valid_until"`
	IsActive    bool      `json:"is_active"`
}

type couponQuoteResponse struct {
	couponResponse
	Discount string `json:"discount"`
}

type onlineOrderRequest struct {
	CustomerName   string        `json:"customer_name"`
	CustomerPhone  string        `json:"customer_phone"`
	Address        string        `json:"address"`
	ReferencePoint string        `json:"reference_point"`
	DeliveryType   string        `json:"delivery_type"`
	PaymentMethod  string        `json:"payment_method"`
	ChangeFor      string        `json:"change_for"`
	CouponCode     string        `json:"coupon_code"`
	Notes          string        `json:"notes"`
	Items          []itemRequest `json:"items"`
}

// --- Handlers ---

// ListProducts returns the active catalog and the current delivery fee.
func (h *StoreHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListActiveProducts(r.Context())
	if err != nil {
		log.WithError(err).Error("list active products")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	fee, err := h.orders.DeliveryFee(r.Context())
	if err != nil {
		writeServiceError(w, err, "get delivery fee")
		return
	}

	resp := catalogResponse{
		Products:    make([]productResponse, len(products)),
		DeliveryFee: money.Format(fee),
	}
	for i, p := range products {
		resp.Products[i] = productResponse{
			ID:              p.ID,
			Code:            p.Code,
			Description:     p.Description,
			Sides:           textPtr(p.Sides),
			Price:           money.FormatNumeric(p.Price),
			ImageURL:        textPtr(p.ImageUrl),
			RoutesToKitchen: p.RoutesToKitchen,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ValidateCoupon checks a code and, given a cart subtotal, quotes its discount.
func (h *StoreHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req validateCouponRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	subtotal, err := parseAmount(req.Subtotal)
	if err != nil || subtotal.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid subtotal"})
		return
	}

	c, err := h.coupons.Validate(r.Context(), req.Code)
	if err != nil {
		writeServiceError(w, err, "validate coupon")
		return
	}

	writeJSON(w, http.StatusOK, couponQuoteResponse{
		couponResponse: toCouponResponse(c),
		Discount:       money.Format(pricing.CouponDiscount(subtotal, coupon.Terms(c))),
	})
}

// CreateOrder places an online order. The router guards it with the
// idempotency middleware.
func (h *StoreHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req onlineOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	items, ok := toItemRequests(w, req.Items)
	if !ok {
		return
	}

	var changeFor decimal.NullDecimal
	if req.ChangeFor != "" {
		d, err := decimal.NewFromString(req.ChangeFor)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid change_for"})
			return
		}
		changeFor = decimal.NewNullDecimal(d)
	}

	detail, err := h.orders.CreateOnline(r.Context(), service.OnlineOrderRequest{
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Address:        req.Address,
		ReferencePoint: req.ReferencePoint,
		DeliveryType:   database.DeliveryType(req.DeliveryType),
		PaymentMethod:  req.PaymentMethod,
		ChangeFor:      changeFor,
		CouponCode:     req.CouponCode,
		Notes:          req.Notes,
		Items:          items,
	})
	if err != nil {
		writeServiceError(w, err, "create online order")
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDetailResponse(*detail))
}

// --- Helpers ---

func toCouponResponse(c database.Coupon) couponResponse {
	resp := couponResponse{
		ID:         c.ID,
		Code:       c.Code,
		Percentage: money.FormatNumeric(c.Percentage),
		ValidUntil: c.ValidUntil,
		IsActive:   c.IsActive,
	}
	if c.MaxDiscount.Valid {
		s := money.FormatNumeric(c.MaxDiscount)
		resp.MaxDiscount = &s
	}
	return resp
}
