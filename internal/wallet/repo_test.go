package wallet

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tradedesk/backoffice/pkg/db/models"
	"github.com/tradedesk/backoffice/pkg/enums"
)

func setupWalletTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:wallet_%s?mode=memory&cache=shared", t.Name())), &gorm.Config{})
	require.NoError(t, err)

	wallets := `
CREATE TABLE IF NOT EXISTS wallets (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  owner_id INTEGER NOT NULL UNIQUE,
  currency TEXT NOT NULL,
  created_at DATETIME
);`
	entries := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  wallet_id INTEGER NOT NULL,
  entry_type TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  currency TEXT NOT NULL,
  order_id INTEGER,
  carton_id INTEGER,
  payment_id INTEGER,
  notes TEXT,
  created_at DATETIME
);`
	require.NoError(t, conn.Exec(wallets).Error)
	require.NoError(t, conn.Exec(entries).Error)
	return conn
}

func TestRepository_CreateAndFindByOwner(t *testing.T) {
	conn := setupWalletTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	wallet := &models.Wallet{OwnerID: 77, Currency: "BDT"}
	require.NoError(t, repo.Create(ctx, wallet))
	require.NotZero(t, wallet.ID)

	found, err := repo.FindByOwner(ctx, 77)
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, found.ID)
	assert.Equal(t, "BDT", found.Currency)
}

func TestRepository_CreateExistingOwnerIsNoOp(t *testing.T) {
	conn := setupWalletTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	first := &models.Wallet{OwnerID: 77, Currency: "BDT"}
	require.NoError(t, repo.Create(ctx, first))

	// Colliding insert is skipped, not errored: the caller sees ID zero and
	// no duplicate row exists.
	second := &models.Wallet{OwnerID: 77, Currency: "BDT"}
	require.NoError(t, repo.Create(ctx, second))
	assert.Zero(t, second.ID)

	var count int64
	require.NoError(t, conn.Model(&models.Wallet{}).Where("owner_id = ?", 77).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestRepository_SumByTypesFoldsHistory(t *testing.T) {
	conn := setupWalletTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	wallet := &models.Wallet{OwnerID: 5, Currency: "BDT"}
	require.NoError(t, repo.Create(ctx, wallet))

	appends := []struct {
		entryType enums.LedgerEntryType
		amount    string
	}{
		{enums.LedgerEntryTypeTopupVerified, "300.00"},
		{enums.LedgerEntryTypeManualCredit, "50.25"},
		{enums.LedgerEntryTypeChargeShippingCaptured, "70.00"},
		{enums.LedgerEntryTypeAdjustmentDebit, "0.25"},
	}
	for _, a := range appends {
		amount, err := decimal.NewFromString(a.amount)
		require.NoError(t, err)
		require.NoError(t, repo.AppendEntry(ctx, &models.LedgerEntry{
			WalletID:  wallet.ID,
			EntryType: a.entryType,
			Amount:    amount,
			Currency:  "BDT",
		}))
	}

	credits, err := repo.SumByTypes(ctx, wallet.ID, enums.CreditEntryTypes())
	require.NoError(t, err)
	assert.True(t, credits.Equal(decimal.RequireFromString("350.25")), "credits = %s", credits)

	debits, err := repo.SumByTypes(ctx, wallet.ID, enums.DebitEntryTypes())
	require.NoError(t, err)
	assert.True(t, debits.Equal(decimal.RequireFromString("70.25")), "debits = %s", debits)
}

func TestRepository_SumByTypesEmptyWallet(t *testing.T) {
	conn := setupWalletTestDB(t)
	repo := NewRepository(conn)

	sum, err := repo.SumByTypes(context.Background(), 999, enums.CreditEntryTypes())
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestRepository_ListEntriesOrdered(t *testing.T) {
	conn := setupWalletTestDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	wallet := &models.Wallet{OwnerID: 9, Currency: "BDT"}
	require.NoError(t, repo.Create(ctx, wallet))

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.AppendEntry(ctx, &models.LedgerEntry{
			WalletID:  wallet.ID,
			EntryType: enums.LedgerEntryTypeTopupVerified,
			Amount:    decimal.NewFromInt(int64(i + 1)),
			Currency:  "BDT",
		}))
	}

	entries, err := repo.ListEntries(ctx, wallet.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].ID, entries[i].ID)
	}
}
