package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tradedesk/backoffice/internal/dues"
	"github.com/tradedesk/backoffice/internal/orders"
	"github.com/tradedesk/backoffice/internal/schema"
	"github.com/tradedesk/backoffice/pkg/enums"
	"github.com/tradedesk/backoffice/pkg/money"
)

// LineResult records what one carton received from a capture.
type LineResult struct {
	CartonID int64
	Applied  decimal.Decimal
	NewPaid  decimal.Decimal
	NewDue   decimal.Decimal
	Status   enums.CartonPaymentStatus
}

// Result aggregates a full allocation pass.
type Result struct {
	Applied decimal.Decimal
	Lines   []LineResult
}

// CartonsPaid counts cartons fully settled by this allocation.
func (r *Result) CartonsPaid() int {
	n := 0
	for _, line := range r.Lines {
		if line.Status == enums.CartonPaymentStatusVerified {
			n++
		}
	}
	return n
}

// Allocator distributes a capture amount across an order's outstanding
// cartons, oldest (lowest id) first, and persists each touched row.
type Allocator struct {
	caps  schema.Capabilities
	calc  *dues.Calculator
	clock func() time.Time
}

// NewAllocator wires an allocator over the resolved schema capabilities.
func NewAllocator(caps schema.Capabilities, calc *dues.Calculator) (*Allocator, error) {
	if calc == nil {
		return nil, fmt.Errorf("due calculator required")
	}
	return &Allocator{caps: caps, calc: calc, clock: time.Now}, nil
}

// Allocate walks the target cartons ascending by id, applying
// min(due, remaining) to each until the amount is consumed or the list ends.
// The repository must be bound to the open capture transaction: rows are
// locked on read and mutated in place. The returned applied total equals
// min(amount, total due over the targets).
func (a *Allocator) Allocate(ctx context.Context, repo orders.Repository, orderID int64, amount decimal.Decimal, cartonIDs []int64) (*Result, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("allocation amount must not be negative")
	}

	lines, err := a.calc.PerLineDue(ctx, repo, orderID, cartonIDs, true)
	if err != nil {
		return nil, err
	}

	if a.degenerateSchema() {
		return a.allocateByStatusOnly(ctx, repo, lines)
	}

	result := &Result{Applied: decimal.Zero}
	remaining := money.Round2(amount)

	for _, line := range lines {
		if !money.IsPositive(remaining) {
			break
		}
		if !money.IsPositive(line.Due) {
			continue
		}

		applied := money.Min(line.Due, remaining)
		newPaid := money.Round2(line.Paid.Add(applied))
		newDue := money.Clamp(money.Round2(line.Due.Sub(applied)))
		remaining = remaining.Sub(applied)

		status := enums.CartonPaymentStatusPending
		switch {
		case money.IsZero(newDue):
			status = enums.CartonPaymentStatusVerified
		case money.IsPositive(newPaid):
			status = enums.CartonPaymentStatusPartial
		}

		if err := a.persistLine(ctx, repo, line.CartonID, newPaid, newDue, status); err != nil {
			return nil, err
		}

		result.Applied = result.Applied.Add(applied)
		result.Lines = append(result.Lines, LineResult{
			CartonID: line.CartonID,
			Applied:  applied,
			NewPaid:  newPaid,
			NewDue:   newDue,
			Status:   status,
		})
	}

	result.Applied = money.Round2(result.Applied)
	return result, nil
}

// degenerateSchema reports a deployment tracking no per-carton monetary
// progress at all (neither paid nor due columns).
func (a *Allocator) degenerateSchema() bool {
	return !a.caps.HasColumn(schema.TableCartons, schema.ColumnTotalPaid) &&
		!a.caps.HasColumn(schema.TableCartons, schema.ColumnTotalDue)
}

// allocateByStatusOnly is the legacy fallback for schema-less deployments:
// every targeted pending carton is marked verified in full and its whole bill
// counts as applied. There is no way to represent a partial payment here.
func (a *Allocator) allocateByStatusOnly(ctx context.Context, repo orders.Repository, lines []dues.Line) (*Result, error) {
	if !a.caps.HasColumn(schema.TableCartons, schema.ColumnBDPaymentStatus) {
		return &Result{Applied: decimal.Zero}, nil
	}

	result := &Result{Applied: decimal.Zero}
	for _, line := range lines {
		if !money.IsPositive(line.Due) {
			continue
		}
		if err := a.persistLine(ctx, repo, line.CartonID, line.Bill, decimal.Zero, enums.CartonPaymentStatusVerified); err != nil {
			return nil, err
		}
		result.Applied = result.Applied.Add(line.Bill)
		result.Lines = append(result.Lines, LineResult{
			CartonID: line.CartonID,
			Applied:  line.Bill,
			NewPaid:  line.Bill,
			NewDue:   decimal.Zero,
			Status:   enums.CartonPaymentStatusVerified,
		})
	}
	result.Applied = money.Round2(result.Applied)
	return result, nil
}

func (a *Allocator) persistLine(ctx context.Context, repo orders.Repository, cartonID int64, newPaid, newDue decimal.Decimal, status enums.CartonPaymentStatus) error {
	fields := map[string]any{}
	if a.caps.HasColumn(schema.TableCartons, schema.ColumnTotalPaid) {
		fields[schema.ColumnTotalPaid] = newPaid
	}
	if a.caps.HasColumn(schema.TableCartons, schema.ColumnTotalDue) {
		fields[schema.ColumnTotalDue] = newDue
	}
	if a.caps.HasColumn(schema.TableCartons, schema.ColumnBDPaymentStatus) {
		fields[schema.ColumnBDPaymentStatus] = status
	}
	if status == enums.CartonPaymentStatusVerified &&
		a.caps.HasColumn(schema.TableCartons, schema.ColumnBDPaymentVerifiedAt) {
		fields[schema.ColumnBDPaymentVerifiedAt] = a.clock()
	}
	if len(fields) == 0 {
		return nil
	}
	return repo.UpdateCarton(ctx, cartonID, fields)
}
