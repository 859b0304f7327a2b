package status

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/tradedesk/backoffice/pkg/enums"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func TestProject_PlainLadder(t *testing.T) {
	cases := []struct {
		name string
		paid string
		due  string
		want enums.OrderStatus
	}{
		{"anything due is partially paid", "0", "100.00", enums.OrderStatusPartiallyPaid},
		{"partially paid", "40.00", "60.00", enums.OrderStatusPartiallyPaid},
		{"fully paid", "100.00", "0", enums.OrderStatusPaid},
		{"nothing due settles", "0", "0", enums.OrderStatusPaid},
		{"rounding residue counts as settled", "99.999", "0.004", enums.OrderStatusPaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, pst := Project(enums.OrderTypeShipping, nil, dec(tc.paid), dec(tc.due))
			assert.Equal(t, tc.want, st)
			assert.Equal(t, string(st), string(pst), "both columns carry the same label")
		})
	}
}

func TestProject_ShippingMoneyWithoutDepositsIsPartiallyPaid(t *testing.T) {
	// A shipping sweep leaves the deposit sum at zero while carton due
	// remains; the order still reflects that money has moved.
	st, _ := Project(enums.OrderTypeShipping, nil, decimal.Zero, dec("10.00"))
	assert.Equal(t, enums.OrderStatusPartiallyPaid, st)
}

func TestProject_SourcingTargetGraduates(t *testing.T) {
	st, pst := Project(enums.OrderTypeSourcing, decPtr("500.00"), dec("500.00"), dec("250.00"))
	assert.Equal(t, enums.OrderStatusPaidForSourcing, st)
	assert.Equal(t, enums.OrderPaymentStatusPaidForSourcing, pst)
}

func TestProject_SourcingTargetNotYetReached(t *testing.T) {
	st, _ := Project(enums.OrderTypeBoth, decPtr("500.00"), dec("200.00"), dec("300.00"))
	assert.Equal(t, enums.OrderStatusPartiallyPaid, st)

	st, _ = Project(enums.OrderTypeBoth, decPtr("500.00"), decimal.Zero, dec("500.00"))
	assert.Equal(t, enums.OrderStatusPartiallyPaid, st, "an unmet target never settles")
}

func TestProject_SourcingWithoutPriceFallsBackToLadder(t *testing.T) {
	st, _ := Project(enums.OrderTypeSourcing, nil, dec("100.00"), decimal.Zero)
	assert.Equal(t, enums.OrderStatusPaid, st)

	st, _ = Project(enums.OrderTypeSourcing, decPtr("0"), dec("100.00"), decimal.Zero)
	assert.Equal(t, enums.OrderStatusPaid, st, "zero product price is treated as absent")
}

func TestProject_ShippingTypeIgnoresProductPrice(t *testing.T) {
	st, _ := Project(enums.OrderTypeShipping, decPtr("500.00"), dec("500.00"), dec("10.00"))
	assert.Equal(t, enums.OrderStatusPartiallyPaid, st, "shipping orders never graduate on product price")
}
