package capture

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradedesk/backoffice/internal/payments"
	pkgerrors "github.com/tradedesk/backoffice/pkg/errors"
)

// txnCodeGenerator issues human-quotable transaction codes unique across all
// payments. Codes look like TDX-20260830-4F9A21C3.
type txnCodeGenerator struct {
	prefix  string
	retries int
	clock   func() time.Time
	random  func() string
}

func newTxnCodeGenerator(prefix string, retries int) *txnCodeGenerator {
	if retries <= 0 {
		retries = 5
	}
	return &txnCodeGenerator{
		prefix:  prefix,
		retries: retries,
		clock:   time.Now,
		random:  randomSuffix,
	}
}

func randomSuffix() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return raw[:8]
}

// Next returns a code not yet present in the payments table. Collisions are
// retried with fresh randomness; exhausting the retry budget falls back to a
// nanosecond timestamp suffix, which cannot collide with the random form.
func (g *txnCodeGenerator) Next(ctx context.Context, repo payments.Repository) (string, error) {
	day := g.clock().UTC().Format("20060102")

	for attempt := 0; attempt < g.retries; attempt++ {
		code := fmt.Sprintf("%s-%s-%s", g.prefix, day, g.random())
		exists, err := repo.TxnCodeExists(ctx, code)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking txn code uniqueness")
		}
		if !exists {
			return code, nil
		}
	}

	return fmt.Sprintf("%s-%s-T%d", g.prefix, day, g.clock().UnixNano()), nil
}
