package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tradedesk/backoffice/internal/allocation"
	"github.com/tradedesk/backoffice/internal/dues"
	"github.com/tradedesk/backoffice/internal/orders"
	"github.com/tradedesk/backoffice/internal/payments"
	"github.com/tradedesk/backoffice/internal/status"
	"github.com/tradedesk/backoffice/internal/wallet"
	"github.com/tradedesk/backoffice/pkg/config"
	"github.com/tradedesk/backoffice/pkg/db"
	"github.com/tradedesk/backoffice/pkg/db/models"
	"github.com/tradedesk/backoffice/pkg/enums"
	pkgerrors "github.com/tradedesk/backoffice/pkg/errors"
	"github.com/tradedesk/backoffice/pkg/logger"
	"github.com/tradedesk/backoffice/pkg/metrics"
	"github.com/tradedesk/backoffice/pkg/money"
)

// OwnerResolver maps an order to the wallet owner being charged. The default
// resolver charges the ordering customer; marketplaces with payer-of-record
// indirection plug in their own.
type OwnerResolver interface {
	ResolveWalletOwner(ctx context.Context, order *models.Order) (int64, error)
}

// CustomerOwnerResolver charges the order's customer directly.
type CustomerOwnerResolver struct{}

func (CustomerOwnerResolver) ResolveWalletOwner(_ context.Context, order *models.Order) (int64, error) {
	if order.CustomerID <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "order wallet owner unresolved")
	}
	return order.CustomerID, nil
}

// Notifier receives best-effort audit trail writes after a capture commits.
type Notifier interface {
	AppendAuditNote(ctx context.Context, orderID int64, body string)
}

// Input describes one capture request against an order's wallet.
//
// Amount and CartonIDs select the mode: carton ids present means a targeted
// shipping capture restricted to those cartons; an amount with no ids is a
// manual capture of exactly that amount; neither means a sweep of everything
// currently due for the payment type.
type Input struct {
	OrderID       int64
	PaymentType   enums.PaymentType
	Amount        *decimal.Decimal
	CartonIDs     []int64
	BankAccountID *int64
	Notes         *string
}

// TopupInput funds a wallet outside any order.
type TopupInput struct {
	OwnerID       int64
	Amount        decimal.Decimal
	BankAccountID *int64
	Notes         *string
}

// Result reports what a committed capture did.
type Result struct {
	Payment      *models.Payment
	Applied      decimal.Decimal
	Lines        []allocation.LineResult
	NewBalance   decimal.Decimal
	RemainingDue decimal.Decimal
	CartonsPaid  int
	OrderStatus  enums.OrderStatus
}

// TopupResult reports a committed wallet top-up.
type TopupResult struct {
	Payment    *models.Payment
	Entry      *models.LedgerEntry
	NewBalance decimal.Decimal
}

// Service is the capture engine: it debits wallets, allocates funds across
// cartons, and projects order payment standing, all inside one transaction.
type Service interface {
	Capture(ctx context.Context, input Input) (*Result, error)
	Topup(ctx context.Context, input TopupInput) (*TopupResult, error)
}

type service struct {
	tx        db.TxRunner
	ordersRp  orders.Repository
	payRp     payments.Repository
	walletSvc wallet.Service
	calc      *dues.Calculator
	alloc     *allocation.Allocator
	owner     OwnerResolver
	notifier  Notifier
	codes     *txnCodeGenerator
	logg      *logger.Logger
	met       *metrics.CaptureMetrics
}

// Deps bundles the collaborators of the capture service.
type Deps struct {
	Tx         db.TxRunner
	Orders     orders.Repository
	Payments   payments.Repository
	Wallets    wallet.Service
	Calculator *dues.Calculator
	Allocator  *allocation.Allocator
	Owner      OwnerResolver
	Notifier   Notifier
	Logger     *logger.Logger
	Metrics    *metrics.CaptureMetrics
	Wallet     config.WalletConfig
}

// NewService validates the dependency set and builds the engine. Owner,
// Notifier and Metrics are optional; everything else is required.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Tx == nil:
		return nil, fmt.Errorf("tx runner required")
	case deps.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case deps.Payments == nil:
		return nil, fmt.Errorf("payments repository required")
	case deps.Wallets == nil:
		return nil, fmt.Errorf("wallet service required")
	case deps.Calculator == nil:
		return nil, fmt.Errorf("due calculator required")
	case deps.Allocator == nil:
		return nil, fmt.Errorf("allocator required")
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}
	if deps.Owner == nil {
		deps.Owner = CustomerOwnerResolver{}
	}
	return &service{
		tx:        deps.Tx,
		ordersRp:  deps.Orders,
		payRp:     deps.Payments,
		walletSvc: deps.Wallets,
		calc:      deps.Calculator,
		alloc:     deps.Allocator,
		owner:     deps.Owner,
		notifier:  deps.Notifier,
		codes:     newTxnCodeGenerator(deps.Wallet.TxnCodePrefix, deps.Wallet.TxnCodeRetries),
		logg:      deps.Logger,
		met:       deps.Metrics,
	}, nil
}

// Capture runs the full charge pipeline for one order. Wallet debit, carton
// allocation, payment row and order projection commit or roll back as a unit;
// a partial capture can never be observed.
func (s *service) Capture(ctx context.Context, input Input) (*Result, error) {
	input.PaymentType = inferPaymentType(input)
	if err := s.validate(input); err != nil {
		s.countCapture(input.PaymentType, "rejected")
		return nil, err
	}

	ctx = s.logg.WithOrderID(ctx, input.OrderID)

	var result *Result
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		r, err := s.captureInTx(ctx, tx, input)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		s.countCapture(input.PaymentType, outcomeFor(err))
		return nil, err
	}

	s.countCapture(input.PaymentType, "captured")
	s.observeAmount(input.PaymentType, result.Applied)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"payment_id": result.Payment.ID,
		"txn_code":   result.Payment.TxnCode,
		"applied":    result.Applied.String(),
	}), "payment captured")

	if s.notifier != nil {
		s.notifier.AppendAuditNote(ctx, input.OrderID, fmt.Sprintf(
			"Captured %s %s via wallet (txn %s): %d carton(s) settled, %s still due.",
			result.Applied.StringFixed(2), result.Payment.PaymentType,
			result.Payment.TxnCode, result.CartonsPaid, result.RemainingDue.StringFixed(2)))
	}

	return result, nil
}

// inferPaymentType fills the payment type from the capture mode when the
// caller omits it: an amount with no carton targeting is a manual sourcing
// deposit; targeted and sweep captures charge shipping.
func inferPaymentType(input Input) enums.PaymentType {
	if input.PaymentType != "" {
		return input.PaymentType
	}
	if input.Amount != nil && len(input.CartonIDs) == 0 {
		return enums.PaymentTypeDeposit
	}
	return enums.PaymentTypeBDFinal
}

func (s *service) validate(input Input) error {
	if input.OrderID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	switch input.PaymentType {
	case enums.PaymentTypeDeposit, enums.PaymentTypeBDFinal:
	default:
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("payment type %q cannot be captured against an order", input.PaymentType))
	}
	if input.PaymentType == enums.PaymentTypeDeposit && len(input.CartonIDs) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "carton targeting only applies to shipping captures")
	}
	// Zero is a valid request; it resolves to NothingDue downstream.
	if input.Amount != nil && input.Amount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "capture amount must not be negative")
	}
	for _, id := range input.CartonIDs {
		if id <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "carton ids must be positive")
		}
	}
	return nil
}

func (s *service) captureInTx(ctx context.Context, tx *gorm.DB, input Input) (*Result, error) {
	ordersRp := s.ordersRp.WithTx(tx)
	payRp := s.payRp.WithTx(tx)
	walletSvc := s.walletSvc.WithTx(tx)

	order, err := ordersRp.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	ownerID, err := s.owner.ResolveWalletOwner(ctx, order)
	if err != nil {
		return nil, err
	}
	wlt, err := walletSvc.Ensure(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ensuring wallet")
	}

	due, err := s.dueFor(ctx, ordersRp, order, input)
	if err != nil {
		return nil, err
	}

	// The desired charge is the due ceiling, tightened by an explicit amount.
	// A zero result, whether from a settled order or a zero request, is a
	// NothingDue answer, not a validation failure.
	desired := due
	if input.Amount != nil {
		desired = money.Min(money.Round2(*input.Amount), due)
	}
	if !money.IsPositive(desired) {
		return nil, pkgerrors.New(pkgerrors.CodeNothingDue, "nothing due for this charge").
			WithDetails(map[string]any{"order_id": order.ID, "payment_type": input.PaymentType, "due": due.StringFixed(2)})
	}

	balance, err := walletSvc.Balance(ctx, wlt.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deriving wallet balance")
	}

	capped := money.Min(desired, balance)
	if !money.IsPositive(capped) {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientBalance, "wallet cannot cover any of the charge").
			WithDetails(map[string]any{
				"balance": balance.StringFixed(2),
				"due":     due.StringFixed(2),
			})
	}

	applied := capped
	var lines []allocation.LineResult
	if input.PaymentType == enums.PaymentTypeBDFinal {
		allocRes, err := s.alloc.Allocate(ctx, ordersRp, order.ID, capped, input.CartonIDs)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocating capture")
		}
		applied = allocRes.Applied
		lines = allocRes.Lines
	}

	code, err := s.codes.Next(ctx, payRp)
	if err != nil {
		return nil, err
	}
	orderID := order.ID
	payment := &models.Payment{
		OrderID:       &orderID,
		BankAccountID: input.BankAccountID,
		TxnCode:       code,
		Amount:        applied,
		Status:        enums.PaymentStatusVerified,
		PaymentType:   input.PaymentType,
	}
	if err := payRp.Create(ctx, payment); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "txn code already recorded")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording payment")
	}

	allocLines := make([]models.PaymentAllocationLine, 0, len(lines))
	for _, line := range lines {
		allocLines = append(allocLines, models.PaymentAllocationLine{
			PaymentID: payment.ID,
			CartonID:  line.CartonID,
			Amount:    line.Applied,
		})
	}
	if err := payRp.CreateAllocationLines(ctx, allocLines); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording allocation lines")
	}

	debitType, err := input.PaymentType.LedgerDebitType()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "resolving ledger entry type")
	}
	if _, err := walletSvc.Debit(ctx, wallet.DebitInput{
		WalletID:  wlt.ID,
		EntryType: debitType,
		Amount:    applied,
		OrderID:   &orderID,
		PaymentID: &payment.ID,
		Notes:     input.Notes,
	}); err != nil {
		return nil, err
	}
	s.met.IncLedgerEntry(string(debitType))

	remainingDue, orderStatus, err := s.projectOrder(ctx, ordersRp, payRp, order, input.PaymentType, applied)
	if err != nil {
		return nil, err
	}

	newBalance, err := walletSvc.Balance(ctx, wlt.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "re-deriving wallet balance")
	}

	res := &Result{
		Payment:      payment,
		Applied:      applied,
		Lines:        lines,
		NewBalance:   newBalance,
		RemainingDue: remainingDue,
		OrderStatus:  orderStatus,
	}
	for _, line := range lines {
		if line.Status == enums.CartonPaymentStatusVerified {
			res.CartonsPaid++
		}
	}
	return res, nil
}

// dueFor computes the outstanding amount the capture is allowed to target.
// Deposits charge the order-level sourcing due; shipping captures charge the
// carton-level dues, locked so concurrent captures serialize.
func (s *service) dueFor(ctx context.Context, ordersRp orders.Repository, order *models.Order, input Input) (decimal.Decimal, error) {
	if input.PaymentType == enums.PaymentTypeDeposit {
		return money.Clamp(money.Round2(order.AmountTotal)), nil
	}

	lines, err := s.calc.PerLineDue(ctx, ordersRp, order.ID, input.CartonIDs, true)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "computing carton dues")
	}
	if len(input.CartonIDs) > 0 && len(lines) != len(input.CartonIDs) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "carton not found on this order")
	}

	due := decimal.Zero
	for _, line := range lines {
		if money.IsPositive(line.Due) {
			due = due.Add(line.Due)
		}
	}
	return due, nil
}

// projectOrder refreshes the order's cached figures after a capture and
// derives its new payment standing. paid_amount is always recomputed by
// summation over verified deposits, never incremented, so drifted rows heal
// on the next capture.
func (s *service) projectOrder(ctx context.Context, ordersRp orders.Repository, payRp payments.Repository, order *models.Order, paymentType enums.PaymentType, applied decimal.Decimal) (decimal.Decimal, enums.OrderStatus, error) {
	paidAmount, err := payRp.SumVerifiedByType(ctx, order.ID, enums.PaymentTypeDeposit)
	if err != nil {
		return decimal.Zero, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing verified deposits")
	}

	amountTotal := money.Round2(order.AmountTotal)
	if paymentType == enums.PaymentTypeDeposit {
		amountTotal = money.Clamp(amountTotal.Sub(applied))
	}

	cartonDue, err := s.calc.TotalDue(ctx, ordersRp, order.ID, nil)
	if err != nil {
		return decimal.Zero, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recomputing carton dues")
	}
	remainingDue := money.Clamp(amountTotal.Add(cartonDue))

	newStatus, newPaymentStatus := projectStanding(order, paidAmount, remainingDue)

	fields := map[string]any{
		"paid_amount":    paidAmount,
		"status":         newStatus,
		"payment_status": newPaymentStatus,
	}
	if paymentType == enums.PaymentTypeDeposit {
		fields["amount_total"] = amountTotal
	}
	if err := ordersRp.UpdateOrder(ctx, order.ID, fields); err != nil {
		return decimal.Zero, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting order standing")
	}

	return remainingDue, newStatus, nil
}

// Topup credits a wallet from funds received outside any order. The payment
// row exists for the audit trail; the ledger credit is what moves the balance.
func (s *service) Topup(ctx context.Context, input TopupInput) (*TopupResult, error) {
	if input.OwnerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallet owner id required")
	}
	if !money.IsPositive(input.Amount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "topup amount must be positive")
	}

	var result *TopupResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		payRp := s.payRp.WithTx(tx)
		walletSvc := s.walletSvc.WithTx(tx)

		wlt, err := walletSvc.Ensure(ctx, input.OwnerID)
		if err != nil {
			return err
		}

		code, err := s.codes.Next(ctx, payRp)
		if err != nil {
			return err
		}
		payment := &models.Payment{
			BankAccountID: input.BankAccountID,
			TxnCode:       code,
			Amount:        money.Round2(input.Amount),
			Status:        enums.PaymentStatusVerified,
			PaymentType:   enums.PaymentTypeWalletTopup,
		}
		if err := payRp.Create(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording topup payment")
		}

		entry, err := walletSvc.Credit(ctx, wallet.CreditInput{
			WalletID:  wlt.ID,
			EntryType: enums.LedgerEntryTypeTopupVerified,
			Amount:    input.Amount,
			PaymentID: &payment.ID,
			Notes:     input.Notes,
		})
		if err != nil {
			return err
		}
		s.met.IncLedgerEntry(string(entry.EntryType))

		balance, err := walletSvc.Balance(ctx, wlt.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deriving wallet balance")
		}

		result = &TopupResult{Payment: payment, Entry: entry, NewBalance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithWalletID(ctx, result.Entry.WalletID), "wallet topped up")
	return result, nil
}

func projectStanding(order *models.Order, paid, due decimal.Decimal) (enums.OrderStatus, enums.OrderPaymentStatus) {
	return status.Project(order.OrderType, order.ProductPrice, paid, due)
}

func (s *service) countCapture(paymentType enums.PaymentType, outcome string) {
	s.met.IncCapture(string(paymentType), outcome)
}

func (s *service) observeAmount(paymentType enums.PaymentType, amount decimal.Decimal) {
	f, _ := amount.Float64()
	s.met.ObserveCaptureAmount(string(paymentType), f)
}

func outcomeFor(err error) string {
	switch {
	case pkgerrors.HasCode(err, pkgerrors.CodeNothingDue):
		return "nothing_due"
	case pkgerrors.HasCode(err, pkgerrors.CodeInsufficientBalance):
		return "insufficient_balance"
	case pkgerrors.HasCode(err, pkgerrors.CodeValidation):
		return "rejected"
	case pkgerrors.HasCode(err, pkgerrors.CodeNotFound):
		return "not_found"
	default:
		return "failed"
	}
}
