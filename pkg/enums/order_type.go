package enums

import "fmt"

// OrderType says which charge phases an order accrues.
type OrderType string

const (
	OrderTypeSourcing OrderType = "sourcing"
	OrderTypeShipping OrderType = "shipping"
	OrderTypeBoth     OrderType = "both"
)

var validOrderTypes = []OrderType{
	OrderTypeSourcing,
	OrderTypeShipping,
	OrderTypeBoth,
}

// IncludesSourcing reports whether the order accrues a sourcing charge.
func (o OrderType) IncludesSourcing() bool {
	return o == OrderTypeSourcing || o == OrderTypeBoth
}

// IsValid reports whether the value is a known OrderType.
func (o OrderType) IsValid() bool {
	for _, candidate := range validOrderTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderType converts raw input into an OrderType.
func ParseOrderType(value string) (OrderType, error) {
	for _, candidate := range validOrderTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order type %q", value)
}
