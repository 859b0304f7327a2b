package enums

import "fmt"

// OrderStatus is the financially derived order state written by the capture
// engine. Workflow stages (forwarding, negotiation, shipping legs) are owned
// by back-office code outside this service and never touched here.
type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "pending"
	OrderStatusPartiallyPaid   OrderStatus = "partially_paid"
	OrderStatusPaidForSourcing OrderStatus = "paid_for_sourcing"
	OrderStatusPaid            OrderStatus = "paid"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPartiallyPaid,
	OrderStatusPaidForSourcing,
	OrderStatusPaid,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
