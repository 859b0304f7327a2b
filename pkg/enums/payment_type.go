package enums

import "fmt"

// PaymentType distinguishes the two charge phases and wallet top-ups.
// A deposit pays down the order's sourcing due; bd_final pays the
// Bangladesh-inbound shipping charge carried on cartons.
type PaymentType string

const (
	PaymentTypeDeposit     PaymentType = "deposit"
	PaymentTypeBDFinal     PaymentType = "bd_final"
	PaymentTypeWalletTopup PaymentType = "wallet_topup"
)

var validPaymentTypes = []PaymentType{
	PaymentTypeDeposit,
	PaymentTypeBDFinal,
	PaymentTypeWalletTopup,
}

// String implements fmt.Stringer.
func (p PaymentType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentType.
func (p PaymentType) IsValid() bool {
	for _, candidate := range validPaymentTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// LedgerDebitType maps the payment type to the ledger entry type its capture
// writes.
func (p PaymentType) LedgerDebitType() (LedgerEntryType, error) {
	switch p {
	case PaymentTypeDeposit:
		return LedgerEntryTypeChargeSourcingCaptured, nil
	case PaymentTypeBDFinal:
		return LedgerEntryTypeChargeShippingCaptured, nil
	default:
		return "", fmt.Errorf("payment type %q does not debit the wallet", p)
	}
}

// ParsePaymentType converts raw input into a PaymentType.
func ParsePaymentType(value string) (PaymentType, error) {
	for _, candidate := range validPaymentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment type %q", value)
}
