package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTransactionsShareResolvedTag(t *testing.T) {
	t.Parallel()
	s, db := newTestStores(t)
	ctx := context.Background()
	ledgerID, accountID := seedLedger(t, s)

	first, err := s.Transactions.Create(ctx, txnInput(ledgerID, accountID, "-12.50", "food"))
	require.NoError(t, err)
	second, err := s.Transactions.Create(ctx, txnInput(ledgerID, accountID, "-8", "food"))
	require.NoError(t, err)

	require.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM tags WHERE name = 'food'`))
	for _, id := range []int64{first, second} {
		require.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM transaction_tags WHERE transaction_id = ?`, id))
	}

	txns, err := s.Transactions.List(ctx, TransactionFilters{})
	require.NoError(t, err)
	require.Len(t, txns, 2)
	for _, txn := range txns {
		require.Equal(t, []string{"food"}, txn.Tags)
	}
}

func TestCreateTransactionRoundTrip(t *testing.T) {
	t.Parallel()
	s, _ := newTestStores(t)
	ctx := context.Background()
	ledgerID, accountID := seedLedger(t, s)

	in := txnInput(ledgerID, accountID, "-42.1234", "groceries", "weekly")
	in.Note = strPtr("market")
	in.Date = time.Date(2024, 5, 17, 9, 30, 0, 0, time.FixedZone("AEST", 10*3600))
	id, err := s.Transactions.Create(ctx, in)
	require.NoError(t, err)

	got, err := s.Transactions.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, ledgerID, got.LedgerID)
	require.Equal(t, accountID, got.AccountID)
	require.True(t, got.Amount.Equal(dec("-42.1234")))
	require.Equal(t, "USD", got.Currency)
	require.True(t, got.Date.Equal(in.Date))
	require.Equal(t, "market", *got.Note)
	require.Equal(t, []string{"groceries", "weekly"}, got.Tags)
}

func TestCreateTransactionCollapsesDuplicateTags(t *testing.T) {
	t.Parallel()
	s, db := newTestStores(t)
	ctx := context.Background()
	ledgerID, accountID := seedLedger(t, s)

	// composed and decomposed "café" are one name after NFC
	id, err := s.Transactions.Create(ctx, txnInput(ledgerID, accountID, "-3", "food", " food ", "caf\u00e9", "cafe\u0301"))
	require.NoError(t, err)

	require.Equal(t, 2, countRows(t, db, `SELECT COUNT(*) FROM tags`))
	require.Equal(t, 2, countRows(t, db, `SELECT COUNT(*) FROM transaction_tags WHERE transaction_id = ?`, id))
}

func TestCreateTransactionRollsBackOnBadTag(t *testing.T) {
	t.Parallel()
	s, db := newTestStores(t)
	ctx := context.Background()
	ledgerID, accountID := seedLedger(t, s)

	_, err := s.Transactions.Create(ctx, txnInput(ledgerID, accountID, "-3", "food", "   "))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	require.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM transactions`))
	require.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM transaction_tags`))
	require.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM tags`))
}

func TestCreateTransactionUnknownLedgerIsConstraint(t *testing.T) {
	t.Parallel()
	s, db := newTestStores(t)
	_, accountID := seedLedger(t, s)

	_, err := s.Transactions.Create(context.Background(), txnInput(999, accountID, "1", "food"))
	var ce *ConstraintError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM transactions`))
}

func TestUpdateTransactionReplacesTags(t *testing.T) {
	t.Parallel()
	s, db := newTestStores(t)
	ctx := context.Background()
	ledgerID, accountID := seedLedger(t, s)

	id, err := s.Transactions.Create(ctx, txnInput(ledgerID, accountID, "-5", "food"))
	require.NoError(t, err)

	require.NoError(t, s.Transactions.Update(ctx, id, txnInput(ledgerID, accountID, "-6", "transport")))

	got, err := s.Transactions.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{"transport"}, got.Tags)
	require.True(t, got.Amount.Equal(dec("-6")))
	// the tag itself is shared data and survives
	require.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM tags WHERE name = 'food'`))
}

func TestFailedUpdateKeepsOldTags(t *testing.T) {
	t.Parallel()
	s, _ := newTestStores(t)
	ctx := context.Background()
	ledgerID, accountID := seedLedger(t, s)

	id, err := s.Transactions.Create(ctx, txnInput(ledgerID, accountID, "-5", "food", "lunch"))
	require.NoError(t, err)

	err = s.Transactions.Update(ctx, id, txnInput(ledgerID, accountID, "-9", "transport", ""))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	got, err := s.Transactions.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{"food", "lunch"}, got.Tags)
	require.True(t, got.Amount.Equal(dec("-5")))
}

func TestUpdateMissingTransactionIsNotFound(t *testing.T) {
	t.Parallel()
	s, db := newTestStores(t)
	ledgerID, accountID := seedLedger(t, s)

	err := s.Transactions.Update(context.Background(), 77, txnInput(ledgerID, accountID, "1", "food"))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM tags`))
}

func TestDeleteTransaction(t *testing.T) {
	t.Parallel()
	s, db := newTestStores(t)
	ctx := context.Background()
	ledgerID, accountID := seedLedger(t, s)

	id, err := s.Transactions.Create(ctx, txnInput(ledgerID, accountID, "-5", "food"))
	require.NoError(t, err)

	require.NoError(t, s.Transactions.Delete(ctx, id))
	require.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM transactions`))
	require.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM transaction_tags`))
	require.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM tags`))

	require.NoError(t, s.Transactions.Delete(ctx, id))

	_, err = s.Transactions.Get(ctx, id)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestListTransactionsFilters(t *testing.T) {
	t.Parallel()
	s, _ := newTestStores(t)
	ctx := context.Background()
	ledgerID, accountID := seedLedger(t, s)

	other, err := s.Accounts.Create(ctx, debitInput("Savings"))
	require.NoError(t, err)

	older := txnInput(ledgerID, accountID, "-1", "a")
	older.Date = older.Date.AddDate(0, 0, -1)
	_, err = s.Transactions.Create(ctx, older)
	require.NoError(t, err)
	newer, err := s.Transactions.Create(ctx, txnInput(ledgerID, accountID, "-2"))
	require.NoError(t, err)
	_, err = s.Transactions.Create(ctx, txnInput(ledgerID, other, "-3", "b"))
	require.NoError(t, err)

	all, err := s.Transactions.List(ctx, TransactionFilters{LedgerID: ledgerID})
	require.NoError(t, err)
	require.Len(t, all, 3)

	mine, err := s.Transactions.List(ctx, TransactionFilters{AccountID: accountID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, newer, mine[0].ID)
	require.Empty(t, mine[0].Tags)
	require.NotNil(t, mine[0].Tags)
	require.Equal(t, []string{"a"}, mine[1].Tags)
}

func TestDeleteAccountCascadesTransactions(t *testing.T) {
	t.Parallel()
	s, db := newTestStores(t)
	ctx := context.Background()
	ledgerID, accountID := seedLedger(t, s)

	_, err := s.Transactions.Create(ctx, txnInput(ledgerID, accountID, "-5", "food"))
	require.NoError(t, err)

	require.NoError(t, s.Accounts.Delete(ctx, accountID))
	require.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM transactions`))
	require.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM transaction_tags`))

	ledger, err := s.Ledgers.Get(ctx, ledgerID)
	require.NoError(t, err)
	require.Nil(t, ledger.BaseAccount)
}
