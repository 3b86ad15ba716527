// Package service holds the order, tab, badge and report operations. Each
// service reads through a Store built on the pool and runs multi-step writes
// inside a pgx transaction.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	log "github.com/sirupsen/logrus"
	"github.com/terraemar-pos/api/internal/database"
	"github.com/terraemar-pos/api/internal/events"
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	database.DBTX
	TxBeginner
}

// Store defines the DB methods the services need.
// Satisfied by *database.Queries (and its WithTx variant).
type Store interface {
	// orders
	GetNextOrderNumber(ctx context.Context) (int64, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	OrderRequiresKitchen(ctx context.Context, orderID uuid.UUID) (bool, error)
	TransitionOrder(ctx context.Context, arg database.TransitionOrderParams) (database.Order, error)
	MarkDeliveryPrinted(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrdersByTab(ctx context.Context, tabID pgtype.UUID) ([]database.Order, error)
	ListOrdersByOrigin(ctx context.Context, arg database.ListOrdersByOriginParams) ([]database.Order, error)
	ListAwaitingAcceptance(ctx context.Context) ([]database.Order, error)
	ListKitchenOrders(ctx context.Context, completedSince time.Time) ([]database.ListKitchenOrdersRow, error)
	ListOrderItemsWithProduct(ctx context.Context, orderIds []uuid.UUID) ([]database.ListOrderItemsWithProductRow, error)
	ListProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]database.Product, error)
	CountUnfinishedTabOrders(ctx context.Context, tabID pgtype.UUID) (int64, error)
	CloseTabOrders(ctx context.Context, arg database.CloseTabOrdersParams) (int64, error)
	SetTabOrderDiscount(ctx context.Context, arg database.SetTabOrderDiscountParams) (int64, error)

	// tabs and tables
	CreateTab(ctx context.Context, arg database.CreateTabParams) (database.Tab, error)
	GetTab(ctx context.Context, id uuid.UUID) (database.Tab, error)
	GetOpenTabByTable(ctx context.Context, tableID uuid.UUID) (database.Tab, error)
	CloseTab(ctx context.Context, arg database.CloseTabParams) (database.Tab, error)
	GetDiningTable(ctx context.Context, id uuid.UUID) (database.DiningTable, error)
	GetTakeawayTable(ctx context.Context) (database.DiningTable, error)
	UpsertDiningTable(ctx context.Context, arg database.UpsertDiningTableParams) (database.DiningTable, error)
	ListTableFlags(ctx context.Context) ([]database.ListTableFlagsRow, error)

	// settings
	GetSetting(ctx context.Context, key string) (database.Setting, error)
	SetSetting(ctx context.Context, arg database.SetSettingParams) (database.Setting, error)

	// badges
	CountTablesWithPendingBill(ctx context.Context) (int64, error)
	CountTakeawayAwaitingPickup(ctx context.Context) (int64, error)
	CountOnlineActive(ctx context.Context) (int64, error)
	CountKitchenActive(ctx context.Context) (int64, error)
	TakeawayHasOpenOrders(ctx context.Context) (bool, error)

	// reports
	ListCompletedOrdersForReport(ctx context.Context, arg database.ListCompletedOrdersForReportParams) ([]database.ListCompletedOrdersForReportRow, error)
	ListCancelledOrdersForReport(ctx context.Context, arg database.ListCancelledOrdersForReportParams) ([]database.ListCancelledOrdersForReportRow, error)
}

// NewStore creates a Store from a DBTX (pool or tx).
type NewStore func(db database.DBTX) Store

// CouponValidator is satisfied by *coupon.Validator.
type CouponValidator interface {
	Validate(ctx context.Context, raw string) (database.Coupon, error)
}

func text(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

// publish sends e and logs a failure. The change it reports is already
// committed, so the caller's result does not depend on it.
func publish(ctx context.Context, pub events.Publisher, e events.Event) {
	if err := pub.Publish(ctx, e); err != nil {
		log.WithError(err).WithField("event", e.Type).Warn("publish event")
	}
}

func orderEvent(t events.Type, o database.Order) events.Event {
	e := events.Event{
		Type:        t,
		OrderID:     o.ID,
		OrderNumber: o.Number,
		Origin:      string(o.Origin),
		Status:      string(o.Status),
	}
	if o.TabID.Valid {
		e.TabID = o.TabID.Bytes
	}
	return e
}
