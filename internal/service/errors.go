package service

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/terraemar-pos/api/internal/lifecycle"
)

// Error categories. Every error returned by the services either wraps one of
// these or is an unexpected storage failure.
var (
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = lifecycle.ErrInvalidTransition
	ErrPendingOrders     = errors.New("tab has orders that are not completed")
	ErrAlreadyOpen       = errors.New("table already has an open tab")
	ErrConcurrentUpdate  = errors.New("order was changed by another request")
)

type domainError struct {
	category error
	msg      string
}

func (e *domainError) Error() string { return e.msg }
func (e *domainError) Unwrap() error { return e.category }

func newError(category error, msg string) error {
	return &domainError{category: category, msg: msg}
}

var (
	ErrEmptyItems            = newError(ErrValidation, "items are required")
	ErrInvalidQuantity       = newError(ErrValidation, "quantity must be > 0")
	ErrProductNotFound       = newError(ErrValidation, "product not found")
	ErrProductInactive       = newError(ErrValidation, "product is not available")
	ErrReasonRequired        = newError(ErrValidation, "cancellation reason is required")
	ErrPaymentMethodRequired = newError(ErrValidation, "payment method is required")
	ErrInvalidPaymentMethod  = newError(ErrValidation, "invalid payment method")
	ErrCustomerRequired      = newError(ErrValidation, "customer name and phone are required")
	ErrCustomerNameRequired  = newError(ErrValidation, "customer name is required")
	ErrAddressRequired       = newError(ErrValidation, "address is required for delivery")
	ErrInvalidDeliveryType   = newError(ErrValidation, "invalid delivery type")
	ErrNegativeAmount        = newError(ErrValidation, "amount must be >= 0")
	ErrTabNotOpen            = newError(ErrValidation, "tab is not open")
	ErrTakeawayTable         = newError(ErrValidation, "the takeaway table cannot hold a dine-in tab")
	ErrNotTabOrder           = newError(ErrValidation, "order does not belong to this tab")
	ErrInvalidTableCount     = newError(ErrValidation, "table count must be between 1 and 200")
	ErrNotOnline             = newError(ErrValidation, "only online orders have a delivery ticket")

	ErrNoTakeawayTable    = newError(ErrConfiguration, "no table is designated for takeaway; initialise tables first")
	ErrInvalidDeliveryFee = newError(ErrConfiguration, "delivery fee setting is not a valid amount")

	ErrOrderNotFound = newError(ErrNotFound, "order not found")
	ErrTabNotFound   = newError(ErrNotFound, "tab not found")
	ErrTableNotFound = newError(ErrNotFound, "table not found")

	ErrAlreadySettled = newError(ErrInvalidTransition, "order has already been settled")
)

const (
	constraintOneOpenTab  = "tabs_one_open_per_table"
	constraintOrderNumber = "orders_number_key"
)

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == constraint
	}
	return false
}
