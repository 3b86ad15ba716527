package enum

// ── Group A: Roles (enum type in DB) ──

const (
	UserRoleAdmin   = "ADMIN"
	UserRoleStaff   = "STAFF"
	UserRoleKitchen = "KITCHEN"
)

func IsUserRole(s string) bool {
	switch s {
	case UserRoleAdmin, UserRoleStaff, UserRoleKitchen:
		return true
	}
	return false
}

// ── Group B: Configurable labels (no DB constraint) ──

// Payment methods are recorded as labels only; nothing is processed.
const (
	PaymentMethodCash       = "CASH"
	PaymentMethodPix        = "PIX"
	PaymentMethodCreditCard = "CREDIT_CARD"
	PaymentMethodDebitCard  = "DEBIT_CARD"
)

var paymentMethodLabels = map[string]string{
	PaymentMethodCash:       "Cash",
	PaymentMethodPix:        "PIX",
	PaymentMethodCreditCard: "Credit card",
	PaymentMethodDebitCard:  "Debit card",
}

func IsPaymentMethod(s string) bool {
	_, ok := paymentMethodLabels[s]
	return ok
}

// PaymentMethodLabel returns the printable label, falling back to the raw value.
func PaymentMethodLabel(s string) string {
	if l, ok := paymentMethodLabels[s]; ok {
		return l
	}
	return s
}

// ── Group C: Settings keys ──

const (
	SettingDeliveryFee = "delivery_fee"
	SettingTableCount  = "table_count"
)

const (
	TakeawayTableNumber = 0
	TakeawayTableName   = "TAKEAWAY"
)
