package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jask/jaskledger/internal/database"
)

func newTestStores(t *testing.T) (*Stores, *sql.DB) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := database.Setup(ctx, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	stores := NewStores(db, "#868e96")
	require.NoError(t, stores.Currencies.SeedDefaults(ctx))
	return stores, db
}

func countRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

func debitInput(name string) AccountInput {
	return AccountInput{Name: name, Variant: Debit{}, Balance: dec("100"), Currency: "USD", CountInAsset: true}
}

func creditVariant() Credit {
	return Credit{
		CreditLimit: decimal.NewNullDecimal(dec("1000")),
		Owed:        decimal.NewNullDecimal(dec("200")),
		BillingDate: "2024-01-01",
		DueDate:     "2024-01-15",
	}
}

func investVariant() Invest {
	return Invest{
		AvgCost:  decimal.NewNullDecimal(dec("12.5")),
		Quantity: decimal.NewNullDecimal(dec("40")),
		TotalCap: decimal.NewNullDecimal(dec("500")),
	}
}

// seedLedger creates a debit account and a ledger using it.
func seedLedger(t *testing.T, s *Stores) (ledgerID, accountID int64) {
	t.Helper()
	ctx := context.Background()
	accountID, err := s.Accounts.Create(ctx, debitInput("Everyday"))
	require.NoError(t, err)
	ledgerID, err = s.Ledgers.Create(ctx, Ledger{Name: "Household", BaseCurrency: "USD", BaseAccount: &accountID})
	require.NoError(t, err)
	return ledgerID, accountID
}

func txnInput(ledgerID, accountID int64, amount string, tags ...string) TransactionInput {
	return TransactionInput{
		LedgerID:  ledgerID,
		AccountID: accountID,
		Amount:    dec(amount),
		Currency:  "USD",
		Date:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Tags:      tags,
	}
}
