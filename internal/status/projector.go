package status

import (
	"github.com/shopspring/decimal"

	"github.com/tradedesk/backoffice/pkg/enums"
	"github.com/tradedesk/backoffice/pkg/money"
)

// Project derives an order's payment standing from its current figures. The
// same label feeds both the lifecycle status and payment_status columns; the
// two only diverge through workflows outside payment capture.
//
// Projection runs after a capture has moved money, so each branch has exactly
// two outcomes: sourcing orders with a known product price graduate to
// paid_for_sourcing once payments cover that price and sit at partially_paid
// until then; all other orders are partially_paid while anything remains due
// and paid otherwise. The pending label is the pre-capture default stamped at
// order creation and is never re-derived here.
func Project(orderType enums.OrderType, productPrice *decimal.Decimal, paid, due decimal.Decimal) (enums.OrderStatus, enums.OrderPaymentStatus) {
	if orderType.IncludesSourcing() && productPrice != nil && money.IsPositive(*productPrice) {
		if money.GTE(paid, *productPrice) {
			return enums.OrderStatusPaidForSourcing, enums.OrderPaymentStatusPaidForSourcing
		}
		return enums.OrderStatusPartiallyPaid, enums.OrderPaymentStatusPartiallyPaid
	}

	if money.IsPositive(due) {
		return enums.OrderStatusPartiallyPaid, enums.OrderPaymentStatusPartiallyPaid
	}
	return enums.OrderStatusPaid, enums.OrderPaymentStatusPaid
}
