package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tradedesk/backoffice/pkg/db/models"
	"github.com/tradedesk/backoffice/pkg/enums"
	pkgerrors "github.com/tradedesk/backoffice/pkg/errors"
	"github.com/tradedesk/backoffice/pkg/money"
	"gorm.io/gorm"
)

// Service exposes wallet balance derivation and ledger writes.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Ensure(ctx context.Context, ownerID int64) (*models.Wallet, error)
	Balance(ctx context.Context, walletID int64) (decimal.Decimal, error)
	Credit(ctx context.Context, input CreditInput) (*models.LedgerEntry, error)
	Debit(ctx context.Context, input DebitInput) (*models.LedgerEntry, error)
	Statement(ctx context.Context, walletID int64) ([]models.LedgerEntry, error)
}

type service struct {
	repo     Repository
	currency string
}

// CreditInput describes a balance-increasing ledger append.
type CreditInput struct {
	WalletID  int64
	EntryType enums.LedgerEntryType
	Amount    decimal.Decimal
	OrderID   *int64
	PaymentID *int64
	Notes     *string
}

// DebitInput describes a balance-decreasing ledger append; captures write
// exactly one of these per verified wallet payment.
type DebitInput struct {
	WalletID  int64
	EntryType enums.LedgerEntryType
	Amount    decimal.Decimal
	OrderID   *int64
	CartonID  *int64
	PaymentID *int64
	Notes     *string
}

// NewService wires a wallet service with the provided repository and the
// wallet currency all new wallets are denominated in.
func NewService(repo Repository, currency string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if currency == "" {
		return nil, fmt.Errorf("wallet currency required")
	}
	return &service{repo: repo, currency: currency}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx), currency: s.currency}
}

// Ensure returns the owner's wallet, creating it on first reference. The
// create is an ON CONFLICT DO NOTHING upsert, so a racing creator never raises
// an error that would abort an enclosing transaction; when the insert is
// skipped the winner's row is re-fetched.
func (s *service) Ensure(ctx context.Context, ownerID int64) (*models.Wallet, error) {
	if ownerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallet owner id required")
	}

	existing, err := s.repo.FindByOwner(ctx, ownerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet := &models.Wallet{OwnerID: ownerID, Currency: s.currency}
	if createErr := s.repo.Create(ctx, wallet); createErr != nil {
		return nil, createErr
	}
	if wallet.ID == 0 {
		return s.repo.FindByOwner(ctx, ownerID)
	}
	return wallet, nil
}

// Balance folds the wallet's full ledger history: sum of credits minus sum of
// debits. Never cached, never stored.
func (s *service) Balance(ctx context.Context, walletID int64) (decimal.Decimal, error) {
	credits, err := s.repo.SumByTypes(ctx, walletID, enums.CreditEntryTypes())
	if err != nil {
		return decimal.Zero, err
	}
	debits, err := s.repo.SumByTypes(ctx, walletID, enums.DebitEntryTypes())
	if err != nil {
		return decimal.Zero, err
	}
	return credits.Sub(debits), nil
}

func (s *service) Credit(ctx context.Context, input CreditInput) (*models.LedgerEntry, error) {
	if !input.EntryType.IsCredit() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("entry type %q is not a credit", input.EntryType))
	}
	return s.append(ctx, &models.LedgerEntry{
		WalletID:  input.WalletID,
		EntryType: input.EntryType,
		Amount:    money.Round2(input.Amount),
		Currency:  s.currency,
		OrderID:   input.OrderID,
		PaymentID: input.PaymentID,
		Notes:     input.Notes,
	})
}

func (s *service) Debit(ctx context.Context, input DebitInput) (*models.LedgerEntry, error) {
	if !input.EntryType.IsDebit() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("entry type %q is not a debit", input.EntryType))
	}
	return s.append(ctx, &models.LedgerEntry{
		WalletID:  input.WalletID,
		EntryType: input.EntryType,
		Amount:    money.Round2(input.Amount),
		Currency:  s.currency,
		OrderID:   input.OrderID,
		CartonID:  input.CartonID,
		PaymentID: input.PaymentID,
		Notes:     input.Notes,
	})
}

func (s *service) append(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	if entry.WalletID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallet id required")
	}
	if !money.IsPositive(entry.Amount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ledger amount must be positive")
	}
	if err := s.repo.AppendEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Statement(ctx context.Context, walletID int64) ([]models.LedgerEntry, error) {
	if walletID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wallet id required")
	}
	return s.repo.ListEntries(ctx, walletID)
}
