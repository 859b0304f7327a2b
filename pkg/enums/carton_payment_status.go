package enums

import "fmt"

// CartonPaymentStatus tracks how much of a carton's shipping bill is settled.
type CartonPaymentStatus string

const (
	CartonPaymentStatusPending  CartonPaymentStatus = "pending"
	CartonPaymentStatusPartial  CartonPaymentStatus = "partial"
	CartonPaymentStatusVerified CartonPaymentStatus = "verified"
)

var validCartonPaymentStatuses = []CartonPaymentStatus{
	CartonPaymentStatusPending,
	CartonPaymentStatusPartial,
	CartonPaymentStatusVerified,
}

// String implements fmt.Stringer.
func (c CartonPaymentStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CartonPaymentStatus.
func (c CartonPaymentStatus) IsValid() bool {
	for _, candidate := range validCartonPaymentStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCartonPaymentStatus converts raw input into a CartonPaymentStatus.
func ParseCartonPaymentStatus(value string) (CartonPaymentStatus, error) {
	for _, candidate := range validCartonPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid carton payment status %q", value)
}
