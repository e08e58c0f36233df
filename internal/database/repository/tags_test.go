package repository

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveConcurrentSameName(t *testing.T) {
	t.Parallel()
	s, db := newTestStores(t)
	ctx := context.Background()
	resolver := &TagResolver{}

	const workers = 16
	ids := make([]int64, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = resolver.Resolve(ctx, db, "coffee")
		}(i)
	}
	wg.Wait()

	for i := range ids {
		require.NoError(t, errs[i])
		require.Equal(t, ids[0], ids[i])
	}
	require.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM tags WHERE name = 'coffee'`))

	tags, err := s.Tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 1)
}

// staleLookup hides the first by-name lookup, as if a concurrent writer
// committed the tag between our read and our insert.
type staleLookup struct {
	querier
	hidden bool
}

func (q *staleLookup) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	if !q.hidden && strings.HasPrefix(query, "SELECT id FROM tags WHERE name") {
		q.hidden = true
		return q.querier.QueryRowContext(ctx, `SELECT id FROM tags WHERE 0`)
	}
	return q.querier.QueryRowContext(ctx, query, args...)
}

func TestResolveFallsBackToReadOnUniqueViolation(t *testing.T) {
	t.Parallel()
	_, db := newTestStores(t)
	ctx := context.Background()
	resolver := &TagResolver{}

	want, err := resolver.Resolve(ctx, db, "rent")
	require.NoError(t, err)

	q := &staleLookup{querier: db}
	got, created, err := resolver.resolve(ctx, q, "rent", nil)
	require.NoError(t, err)
	require.True(t, q.hidden)
	require.False(t, created)
	require.Equal(t, want, got)
	require.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM tags`))
}

func TestResolveRejectsBlankName(t *testing.T) {
	t.Parallel()
	_, db := newTestStores(t)

	_, err := (&TagResolver{}).Resolve(context.Background(), db, " \t ")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, 0, countRows(t, db, `SELECT COUNT(*) FROM tags`))
}

func TestCreateTagIsIdempotent(t *testing.T) {
	t.Parallel()
	s, _ := newTestStores(t)
	ctx := context.Background()

	first, err := s.Tags.Create(ctx, " travel ", strPtr("#ff0000"))
	require.NoError(t, err)
	require.Equal(t, "travel", first.Name)
	require.Equal(t, "#ff0000", *first.Color)

	again, err := s.Tags.Create(ctx, "travel", strPtr("#00ff00"))
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
	require.Equal(t, "#ff0000", *again.Color)

	plain, err := s.Tags.Create(ctx, "misc", nil)
	require.NoError(t, err)
	require.Equal(t, "#868e96", *plain.Color)
}

func TestUpdateTag(t *testing.T) {
	t.Parallel()
	s, _ := newTestStores(t)
	ctx := context.Background()

	a, err := s.Tags.Create(ctx, "a", nil)
	require.NoError(t, err)
	b, err := s.Tags.Create(ctx, "b", nil)
	require.NoError(t, err)

	require.NoError(t, s.Tags.Update(ctx, a.ID, "alpha", strPtr("#123456")))
	got, err := s.Tags.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "alpha", got.Name)
	require.Equal(t, "#123456", *got.Color)

	err = s.Tags.Update(ctx, b.ID, "alpha", nil)
	var ce *ConstraintError
	require.ErrorAs(t, err, &ce)

	err = s.Tags.Update(ctx, 999, "zeta", nil)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestDeleteTagKeepsTransactions(t *testing.T) {
	t.Parallel()
	s, db := newTestStores(t)
	ctx := context.Background()
	ledgerID, accountID := seedLedger(t, s)

	id, err := s.Transactions.Create(ctx, txnInput(ledgerID, accountID, "-5", "food", "lunch"))
	require.NoError(t, err)
	tags, err := s.Tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)

	require.NoError(t, s.Tags.Delete(ctx, tags[0].ID))
	require.NoError(t, s.Tags.Delete(ctx, tags[0].ID))

	got, err := s.Transactions.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, []string{"lunch"}, got.Tags)
	require.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM transaction_tags`))
}
