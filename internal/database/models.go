package database

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type DeliveryType string

const (
	DeliveryTypeDELIVERY DeliveryType = "DELIVERY"
	DeliveryTypePICKUP   DeliveryType = "PICKUP"
)

func (e *DeliveryType) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = DeliveryType(s)
	case string:
		*e = DeliveryType(s)
	default:
		return fmt.Errorf("unsupported scan type for DeliveryType: %T", src)
	}
	return nil
}

type NullDeliveryType struct {
	DeliveryType DeliveryType
	Valid        bool
}

func (ns *NullDeliveryType) Scan(value interface{}) error {
	if value == nil {
		ns.DeliveryType, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.DeliveryType.Scan(value)
}

func (ns NullDeliveryType) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.DeliveryType), nil
}

type OrderOrigin string

const (
	OrderOriginDINEIN   OrderOrigin = "DINE_IN"
	OrderOriginTAKEAWAY OrderOrigin = "TAKEAWAY"
	OrderOriginONLINE   OrderOrigin = "ONLINE"
)

func (e *OrderOrigin) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = OrderOrigin(s)
	case string:
		*e = OrderOrigin(s)
	default:
		return fmt.Errorf("unsupported scan type for OrderOrigin: %T", src)
	}
	return nil
}

type NullOrderOrigin struct {
	OrderOrigin OrderOrigin
	Valid       bool
}

func (ns *NullOrderOrigin) Scan(value interface{}) error {
	if value == nil {
		ns.OrderOrigin, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.OrderOrigin.Scan(value)
}

func (ns NullOrderOrigin) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.OrderOrigin), nil
}

type OrderStatus string

const (
	OrderStatusAWAITINGACCEPTANCE OrderStatus = "AWAITING_ACCEPTANCE"
	OrderStatusNEW                OrderStatus = "NEW"
	OrderStatusPREPARING          OrderStatus = "PREPARING"
	OrderStatusCOMPLETED          OrderStatus = "COMPLETED"
	OrderStatusCANCELLED          OrderStatus = "CANCELLED"
)

func (e *OrderStatus) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = OrderStatus(s)
	case string:
		*e = OrderStatus(s)
	default:
		return fmt.Errorf("unsupported scan type for OrderStatus: %T", src)
	}
	return nil
}

type NullOrderStatus struct {
	OrderStatus OrderStatus
	Valid       bool
}

func (ns *NullOrderStatus) Scan(value interface{}) error {
	if value == nil {
		ns.OrderStatus, ns.Valid = "", false
		return nil
	}
	ns.Valid = true
	return ns.OrderStatus.Scan(value)
}

func (ns NullOrderStatus) Value() (driver.Value, error) {
	if !ns.Valid {
		return nil, nil
	}
	return string(ns.OrderStatus), nil
}

type UserRole string

const (
	UserRoleADMIN   UserRole = "ADMIN"
	UserRoleSTAFF   UserRole = "STAFF"
	UserRoleKITCHEN UserRole = "KITCHEN"
)

func (e *UserRole) Scan(src interface{}) error {
	switch s := src.(type) {
	case []byte:
		*e = UserRole(s)
	case string:
		*e = UserRole(s)
	default:
		return fmt.Errorf("unsupported scan type for UserRole: %T", src)
	}
	return nil
}

type Coupon struct {
	ID            uuid.UUID      `json:"id"`
	Code          string         `json:"code"`
	Percentage    pgtype.Numeric `json:"percentage"`
	MaxDiscount   pgtype.Numeric `json:"max_discount"`
	ValidUntil    time.Time      `json:"valid_until"`
	TotalUses     int32          `json:"total_uses"`
	RemainingUses int32          `json:"remaining_uses"`
	IsActive      bool           `json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type DiningTable struct {
	ID         uuid.UUID `json:"id"`
	Number     int32     `json:"number"`
	Name       string    `json:"name"`
	IsTakeaway bool      `json:"is_takeaway"`
	CreatedAt  time.Time `json:"created_at"`
}

type Order struct {
	ID                uuid.UUID          `json:"id"`
	Number            int64              `json:"number"`
	Origin            OrderOrigin        `json:"origin"`
	Status            OrderStatus        `json:"status"`
	TabID             pgtype.UUID        `json:"tab_id"`
	CustomerName      pgtype.Text        `json:"customer_name"`
	CustomerPhone     pgtype.Text        `json:"customer_phone"`
	CustomerAddress   pgtype.Text        `json:"customer_address"`
	ReferencePoint    pgtype.Text        `json:"reference_point"`
	PaymentMethod     pgtype.Text        `json:"payment_method"`
	ChangeFor         pgtype.Numeric     `json:"change_for"`
	DeliveryType      DeliveryType       `json:"delivery_type"`
	Discount          pgtype.Numeric     `json:"discount"`
	DeliveryFee       pgtype.Numeric     `json:"delivery_fee"`
	CouponID          pgtype.UUID        `json:"coupon_id"`
	Notes             pgtype.Text        `json:"notes"`
	CreatedBy         pgtype.UUID        `json:"created_by"`
	CancelReason      pgtype.Text        `json:"cancel_reason"`
	CancelledBy       pgtype.UUID        `json:"cancelled_by"`
	CancelledAt       pgtype.Timestamptz `json:"cancelled_at"`
	AcceptedAt        pgtype.Timestamptz `json:"accepted_at"`
	ClosedAt          pgtype.Timestamptz `json:"closed_at"`
	DeliveryPrintedAt pgtype.Timestamptz `json:"delivery_printed_at"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

type OrderItem struct {
	ID        uuid.UUID      `json:"id"`
	OrderID   uuid.UUID      `json:"order_id"`
	ProductID uuid.UUID      `json:"product_id"`
	Quantity  int32          `json:"quantity"`
	UnitPrice pgtype.Numeric `json:"unit_price"`
	Note      pgtype.Text    `json:"note"`
	CreatedAt time.Time      `json:"created_at"`
}

type Product struct {
	ID              uuid.UUID      `json:"id"`
	Code            string         `json:"code"`
	Description     string         `json:"description"`
	Sides           pgtype.Text    `json:"sides"`
	Price           pgtype.Numeric `json:"price"`
	IsActive        bool           `json:"is_active"`
	ImageUrl        pgtype.Text    `json:"image_url"`
	RoutesToKitchen bool           `json:"routes_to_kitchen"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type Profile struct {
	ID             uuid.UUID   `json:"id"`
	Code           pgtype.Text `json:"code"`
	FullName       string      `json:"full_name"`
	Email          string      `json:"email"`
	Phone          pgtype.Text `json:"phone"`
	HashedPassword string      `json:"hashed_password"`
	Role           UserRole    `json:"role"`
	IsActive       bool        `json:"is_active"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Tab struct {
	ID            uuid.UUID          `json:"id"`
	TableID       uuid.UUID          `json:"table_id"`
	StaffID       pgtype.UUID        `json:"staff_id"`
	CustomerName  pgtype.Text        `json:"customer_name"`
	IsOpen        bool               `json:"is_open"`
	IsTakeaway    bool               `json:"is_takeaway"`
	PaymentMethod pgtype.Text        `json:"payment_method"`
	ClosedAt      pgtype.Timestamptz `json:"closed_at"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}
