package enums

import "fmt"

// OrderPaymentStatus mirrors the projected financial label onto the order's
// payment_status column. The legacy schema carries the same derived label in
// both status and payment_status, and that is preserved.
type OrderPaymentStatus string

const (
	OrderPaymentStatusPending         OrderPaymentStatus = "pending"
	OrderPaymentStatusPartiallyPaid   OrderPaymentStatus = "partially_paid"
	OrderPaymentStatusPaidForSourcing OrderPaymentStatus = "paid_for_sourcing"
	OrderPaymentStatusPaid            OrderPaymentStatus = "paid"
)

var validOrderPaymentStatuses = []OrderPaymentStatus{
	OrderPaymentStatusPending,
	OrderPaymentStatusPartiallyPaid,
	OrderPaymentStatusPaidForSourcing,
	OrderPaymentStatusPaid,
}

// String implements fmt.Stringer.
func (o OrderPaymentStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderPaymentStatus.
func (o OrderPaymentStatus) IsValid() bool {
	for _, candidate := range validOrderPaymentStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderPaymentStatus converts raw input into an OrderPaymentStatus.
func ParseOrderPaymentStatus(value string) (OrderPaymentStatus, error) {
	for _, candidate := range validOrderPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order payment status %q", value)
}
