package dues

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tradedesk/backoffice/internal/orders"
	"github.com/tradedesk/backoffice/internal/schema"
	"github.com/tradedesk/backoffice/pkg/db/models"
	"github.com/tradedesk/backoffice/pkg/enums"
	"github.com/tradedesk/backoffice/pkg/money"
)

// Line is one carton's outstanding position.
type Line struct {
	CartonID int64
	Bill     decimal.Decimal
	Paid     decimal.Decimal
	Due      decimal.Decimal
}

// Calculator derives outstanding amounts from whichever monetary columns the
// deployed carton schema actually carries.
type Calculator struct {
	caps schema.Capabilities
}

// NewCalculator builds a due calculator over the resolved capabilities. A
// zero-value Capabilities is legal: it models the fully degraded schema where
// nothing is payable.
func NewCalculator(caps schema.Capabilities) *Calculator {
	return &Calculator{caps: caps}
}

// LineFor computes one carton's bill/paid/due using the most
// information-preserving formula the schema allows:
//
//  1. a direct remaining-due column,
//  2. bill minus paid,
//  3. full bill if the status flag still says pending, zero otherwise.
//
// With no bill column at all, nothing is payable and due is zero. That is a
// documented degenerate schema, not an error.
func (c *Calculator) LineFor(carton models.Carton) Line {
	line := Line{CartonID: carton.ID}

	if !c.caps.HasColumn(schema.TableCartons, schema.ColumnBDTotalPrice) {
		return line
	}
	if carton.BDTotalPrice != nil {
		line.Bill = money.Round2(*carton.BDTotalPrice)
	}

	switch {
	case c.caps.HasColumn(schema.TableCartons, schema.ColumnTotalDue) && carton.TotalDue != nil:
		line.Due = money.Clamp(money.Round2(*carton.TotalDue))
		if c.caps.HasColumn(schema.TableCartons, schema.ColumnTotalPaid) && carton.TotalPaid != nil {
			line.Paid = money.Round2(*carton.TotalPaid)
		} else {
			line.Paid = money.Clamp(line.Bill.Sub(line.Due))
		}
	case c.caps.HasColumn(schema.TableCartons, schema.ColumnTotalPaid) && carton.TotalPaid != nil:
		line.Paid = money.Round2(*carton.TotalPaid)
		line.Due = money.Clamp(line.Bill.Sub(line.Paid))
	case c.caps.HasColumn(schema.TableCartons, schema.ColumnBDPaymentStatus):
		if carton.BDPaymentStatus == enums.CartonPaymentStatusPending {
			line.Due = line.Bill
		} else {
			line.Paid = line.Bill
		}
	default:
		// Nothing tracked: conservatively treat the whole bill as unpaid.
		line.Due = line.Bill
	}

	return line
}

// TotalDue sums the outstanding amounts over the order's cartons, optionally
// restricted to cartonIDs. Only positive dues are counted; rounding residue
// never sums negatively.
func (c *Calculator) TotalDue(ctx context.Context, repo orders.Repository, orderID int64, cartonIDs []int64) (decimal.Decimal, error) {
	lines, err := c.PerLineDue(ctx, repo, orderID, cartonIDs, false)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, line := range lines {
		if money.IsPositive(line.Due) {
			total = total.Add(line.Due)
		}
	}
	return total, nil
}

// PerLineDue fetches the order's cartons ascending by id and computes each
// line's position. lock must be true when the caller intends to mutate the
// rows inside an open transaction.
func (c *Calculator) PerLineDue(ctx context.Context, repo orders.Repository, orderID int64, cartonIDs []int64, lock bool) ([]Line, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	cartons, err := repo.ListCartons(ctx, orderID, cartonIDs, lock)
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(cartons))
	for _, carton := range cartons {
		lines = append(lines, c.LineFor(carton))
	}
	return lines, nil
}
