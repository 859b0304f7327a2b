package enums

import "fmt"

// LedgerEntryType classifies an immutable wallet ledger entry. The sign of an
// entry is implied by its type; amounts themselves are always non-negative.
type LedgerEntryType string

const (
	LedgerEntryTypeTopupVerified    LedgerEntryType = "topup_verified"
	LedgerEntryTypeManualCredit     LedgerEntryType = "manual_credit"
	LedgerEntryTypeAdjustmentCredit LedgerEntryType = "adjustment_credit"
	LedgerEntryTypeRefund           LedgerEntryType = "refund"

	LedgerEntryTypeChargeSourcingCaptured LedgerEntryType = "charge_sourcing_captured"
	LedgerEntryTypeChargeShippingCaptured LedgerEntryType = "charge_shipping_captured"
	LedgerEntryTypeAdjustmentDebit        LedgerEntryType = "adjustment_debit"
)

var ledgerCreditTypes = []LedgerEntryType{
	LedgerEntryTypeTopupVerified,
	LedgerEntryTypeManualCredit,
	LedgerEntryTypeAdjustmentCredit,
	LedgerEntryTypeRefund,
}

var ledgerDebitTypes = []LedgerEntryType{
	LedgerEntryTypeChargeSourcingCaptured,
	LedgerEntryTypeChargeShippingCaptured,
	LedgerEntryTypeAdjustmentDebit,
}

// CreditEntryTypes returns the entry types that increase a wallet balance.
func CreditEntryTypes() []LedgerEntryType {
	return append([]LedgerEntryType(nil), ledgerCreditTypes...)
}

// DebitEntryTypes returns the entry types that decrease a wallet balance.
func DebitEntryTypes() []LedgerEntryType {
	return append([]LedgerEntryType(nil), ledgerDebitTypes...)
}

// IsCredit reports whether the entry type increases the balance.
func (t LedgerEntryType) IsCredit() bool {
	for _, candidate := range ledgerCreditTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsDebit reports whether the entry type decreases the balance.
func (t LedgerEntryType) IsDebit() bool {
	for _, candidate := range ledgerDebitTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsValid reports whether the value matches a known ledger entry type.
func (t LedgerEntryType) IsValid() bool {
	return t.IsCredit() || t.IsDebit()
}

// ParseLedgerEntryType converts raw input into a LedgerEntryType.
func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	t := LedgerEntryType(value)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid ledger entry type %q", value)
	}
	return t, nil
}
