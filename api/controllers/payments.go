package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tradedesk/backoffice/api/responses"
	"github.com/tradedesk/backoffice/api/validators"
	"github.com/tradedesk/backoffice/internal/capture"
	"github.com/tradedesk/backoffice/internal/payments"
	"github.com/tradedesk/backoffice/pkg/db/models"
	"github.com/tradedesk/backoffice/pkg/enums"
	pkgerrors "github.com/tradedesk/backoffice/pkg/errors"
	"github.com/tradedesk/backoffice/pkg/logger"
)

type captureRequest struct {
	PaymentType   string  `json:"payment_type,omitempty"`
	Amount        *string `json:"amount,omitempty"`
	CartonIDs     []int64 `json:"carton_ids,omitempty"`
	BankAccountID *int64  `json:"bank_account_id,omitempty"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type allocationLineResponse struct {
	CartonID int64  `json:"carton_id"`
	Applied  string `json:"applied"`
	NewPaid  string `json:"new_paid"`
	NewDue   string `json:"new_due"`
	Status   string `json:"status"`
}

type captureResponse struct {
	PaymentID    int64                    `json:"payment_id"`
	TxnCode      string                   `json:"txn_code"`
	PaymentType  string                   `json:"payment_type"`
	Applied      string                   `json:"applied"`
	NewBalance   string                   `json:"wallet_balance"`
	RemainingDue string                   `json:"order_due"`
	CartonsPaid  int                      `json:"cartons_paid"`
	OrderStatus  string                   `json:"order_status"`
	Lines        []allocationLineResponse `json:"lines,omitempty"`
}

// CapturePayment charges an order against the customer's wallet.
func CapturePayment(svc capture.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParseIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req captureRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := capture.Input{
			OrderID:       orderID,
			CartonIDs:     req.CartonIDs,
			BankAccountID: req.BankAccountID,
			Notes:         req.Notes,
		}
		// Absent type is inferred from the capture mode downstream.
		if req.PaymentType != "" {
			paymentType, parseErr := enums.ParsePaymentType(req.PaymentType)
			if parseErr != nil {
				responses.WriteError(ctx, logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid payment type"))
				return
			}
			input.PaymentType = paymentType
		}
		if req.Amount != nil {
			amount, parseErr := decimal.NewFromString(*req.Amount)
			if parseErr != nil {
				responses.WriteError(ctx, logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid amount"))
				return
			}
			input.Amount = &amount
		}

		result, err := svc.Capture(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toCaptureResponse(result))
	}
}

func toCaptureResponse(result *capture.Result) captureResponse {
	resp := captureResponse{
		PaymentID:    result.Payment.ID,
		TxnCode:      result.Payment.TxnCode,
		PaymentType:  string(result.Payment.PaymentType),
		Applied:      result.Applied.StringFixed(2),
		NewBalance:   result.NewBalance.StringFixed(2),
		RemainingDue: result.RemainingDue.StringFixed(2),
		CartonsPaid:  result.CartonsPaid,
		OrderStatus:  string(result.OrderStatus),
	}
	for _, line := range result.Lines {
		resp.Lines = append(resp.Lines, allocationLineResponse{
			CartonID: line.CartonID,
			Applied:  line.Applied.StringFixed(2),
			NewPaid:  line.NewPaid.StringFixed(2),
			NewDue:   line.NewDue.StringFixed(2),
			Status:   string(line.Status),
		})
	}
	return resp
}

type paymentResponse struct {
	ID            int64  `json:"id"`
	TxnCode       string `json:"txn_code"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	PaymentType   string `json:"payment_type"`
	BankAccountID *int64 `json:"bank_account_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// ListOrderPayments returns an order's payments, newest first.
func ListOrderPayments(repo payments.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		orderID, err := validators.ParseIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := repo.ListByOrder(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing payments"))
			return
		}

		responses.WriteSuccess(w, toPaymentResponses(list))
	}
}

func toPaymentResponses(list []models.Payment) []paymentResponse {
	out := make([]paymentResponse, 0, len(list))
	for _, p := range list {
		out = append(out, paymentResponse{
			ID:            p.ID,
			TxnCode:       p.TxnCode,
			Amount:        p.Amount.StringFixed(2),
			Status:        string(p.Status),
			PaymentType:   string(p.PaymentType),
			BankAccountID: p.BankAccountID,
			CreatedAt:     p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return out
}
