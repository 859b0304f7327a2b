package controllers

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tradedesk/backoffice/api/responses"
	"github.com/tradedesk/backoffice/api/validators"
	"github.com/tradedesk/backoffice/internal/capture"
	"github.com/tradedesk/backoffice/internal/wallet"
	"github.com/tradedesk/backoffice/pkg/db/models"
	"github.com/tradedesk/backoffice/pkg/enums"
	pkgerrors "github.com/tradedesk/backoffice/pkg/errors"
	"github.com/tradedesk/backoffice/pkg/logger"
)

type balanceResponse struct {
	WalletID int64  `json:"wallet_id"`
	OwnerID  int64  `json:"owner_id"`
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

// WalletBalance derives and returns the owner's current balance. The wallet
// is created lazily on first reference.
func WalletBalance(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ownerID, err := validators.ParseIDParam(r, "ownerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		wlt, err := svc.Ensure(ctx, ownerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		balance, err := svc.Balance(ctx, wlt.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deriving balance"))
			return
		}

		responses.WriteSuccess(w, balanceResponse{
			WalletID: wlt.ID,
			OwnerID:  wlt.OwnerID,
			Currency: wlt.Currency,
			Balance:  balance.StringFixed(2),
		})
	}
}

type ledgerEntryResponse struct {
	ID        int64   `json:"id"`
	EntryType string  `json:"entry_type"`
	Amount    string  `json:"amount"`
	Currency  string  `json:"currency"`
	OrderID   *int64  `json:"order_id,omitempty"`
	CartonID  *int64  `json:"carton_id,omitempty"`
	PaymentID *int64  `json:"payment_id,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	CreatedAt string  `json:"created_at"`
}

// WalletStatement lists the wallet's full ledger history, oldest first.
func WalletStatement(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ownerID, err := validators.ParseIDParam(r, "ownerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		wlt, err := svc.Ensure(ctx, ownerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		entries, err := svc.Statement(ctx, wlt.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing ledger entries"))
			return
		}

		responses.WriteSuccess(w, toLedgerEntryResponses(entries))
	}
}

func toLedgerEntryResponses(entries []models.LedgerEntry) []ledgerEntryResponse {
	out := make([]ledgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ledgerEntryResponse{
			ID:        e.ID,
			EntryType: string(e.EntryType),
			Amount:    e.Amount.StringFixed(2),
			Currency:  e.Currency,
			OrderID:   e.OrderID,
			CartonID:  e.CartonID,
			PaymentID: e.PaymentID,
			Notes:     e.Notes,
			CreatedAt: e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}

// Entry types written by the capture and topup flows; manual adjustments may
// not impersonate them.
var reservedEntryTypes = map[enums.LedgerEntryType]bool{
	enums.LedgerEntryTypeTopupVerified:          true,
	enums.LedgerEntryTypeChargeSourcingCaptured: true,
	enums.LedgerEntryTypeChargeShippingCaptured: true,
}

type adjustRequest struct {
	EntryType string  `json:"entry_type" validate:"required"`
	Amount    string  `json:"amount" validate:"required"`
	OrderID   *int64  `json:"order_id,omitempty"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type adjustResponse struct {
	EntryID    int64  `json:"entry_id"`
	EntryType  string `json:"entry_type"`
	Amount     string `json:"amount"`
	NewBalance string `json:"new_balance"`
}

// WalletAdjust appends a manual credit or adjustment entry to the owner's
// ledger. Back-office corrections only; captures never go through here.
func WalletAdjust(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ownerID, err := validators.ParseIDParam(r, "ownerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req adjustRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		entryType, err := enums.ParseLedgerEntryType(req.EntryType)
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entry type"))
			return
		}
		if reservedEntryTypes[entryType] {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("entry type %q is written by its own pipeline", entryType)))
			return
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		wlt, err := svc.Ensure(ctx, ownerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var entry *models.LedgerEntry
		if entryType.IsCredit() {
			entry, err = svc.Credit(ctx, wallet.CreditInput{
				WalletID:  wlt.ID,
				EntryType: entryType,
				Amount:    amount,
				OrderID:   req.OrderID,
				Notes:     req.Notes,
			})
		} else {
			entry, err = svc.Debit(ctx, wallet.DebitInput{
				WalletID:  wlt.ID,
				EntryType: entryType,
				Amount:    amount,
				OrderID:   req.OrderID,
				Notes:     req.Notes,
			})
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		balance, err := svc.Balance(ctx, wlt.ID)
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deriving balance"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, adjustResponse{
			EntryID:    entry.ID,
			EntryType:  string(entry.EntryType),
			Amount:     entry.Amount.StringFixed(2),
			NewBalance: balance.StringFixed(2),
		})
	}
}

type topupRequest struct {
	Amount        string  `json:"amount" validate:"required"`
	BankAccountID *int64  `json:"bank_account_id,omitempty"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type topupResponse struct {
	PaymentID  int64  `json:"payment_id"`
	TxnCode    string `json:"txn_code"`
	EntryID    int64  `json:"entry_id"`
	NewBalance string `json:"new_balance"`
}

// WalletTopup credits verified off-platform funds into the owner's wallet.
func WalletTopup(svc capture.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ownerID, err := validators.ParseIDParam(r, "ownerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req topupRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		amount, err := decimal.NewFromString(req.Amount)
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount"))
			return
		}

		result, err := svc.Topup(ctx, capture.TopupInput{
			OwnerID:       ownerID,
			Amount:        amount,
			BankAccountID: req.BankAccountID,
			Notes:         req.Notes,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, topupResponse{
			PaymentID:  result.Payment.ID,
			TxnCode:    result.Payment.TxnCode,
			EntryID:    result.Entry.ID,
			NewBalance: result.NewBalance.StringFixed(2),
		})
	}
}
