package controllers

import (
	"net/http"

	"github.com/tradedesk/backoffice/api/responses"
	"github.com/tradedesk/backoffice/internal/banks"
	pkgerrors "github.com/tradedesk/backoffice/pkg/errors"
	"github.com/tradedesk/backoffice/pkg/logger"
)

type bankAccountResponse struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	AccountNo string `json:"account_no"`
}

// ListBankAccounts returns the active receiving accounts shown to customers
// paying by bank transfer.
func ListBankAccounts(repo banks.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		accounts, err := repo.ListActive(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing bank accounts"))
			return
		}

		out := make([]bankAccountResponse, 0, len(accounts))
		for _, a := range accounts {
			out = append(out, bankAccountResponse{ID: a.ID, Label: a.Label, AccountNo: a.AccountNo})
		}
		responses.WriteSuccess(w, out)
	}
}
