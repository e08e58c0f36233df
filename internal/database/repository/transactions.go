package repository

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/jask/jaskledger/internal/database"
)

// TransactionRepo handles transactions and their tag associations.
type TransactionRepo struct {
	db   *sql.DB
	tags *TagResolver
}

func NewTransactionRepo(db *sql.DB, tags *TagResolver) *TransactionRepo {
	if tags == nil {
		tags = &TagResolver{}
	}
	return &TransactionRepo{db: db, tags: tags}
}

const transactionSelect = `SELECT id, ledger_id, account_id, amount, currency, date, note FROM transactions`

// Create inserts the transaction, resolves every tag name and links it. The
// whole sequence is one transaction: a failing tag leaves nothing behind.
func (r *TransactionRepo) Create(ctx context.Context, in TransactionInput) (int64, error) {
	const op = "insert transaction"
	if err := validateTransaction(op, in); err != nil {
		return 0, err
	}
	var id int64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions(ledger_id, account_id, amount, currency, date, note)
		VALUES (?, ?, ?, ?, ?, ?)
		`, in.LedgerID, in.AccountID, fixed(in.Amount), in.Currency, fmtTime(in.Date), in.Note)
		if err != nil {
			return wrap(op, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return wrap(op, err)
		}
		return r.attachTags(ctx, tx, id, in.Tags)
	})
	if err != nil {
		return 0, wrap(op, err)
	}
	return id, nil
}

// List returns transactions newest first, each with its full tag set.
func (r *TransactionRepo) List(ctx context.Context, f TransactionFilters) ([]Transaction, error) {
	var where []string
	var args []interface{}
	if f.LedgerID != 0 {
		where = append(where, "ledger_id = ?")
		args = append(args, f.LedgerID)
	}
	if f.AccountID != 0 {
		where = append(where, "account_id = ?")
		args = append(args, f.AccountID)
	}
	query := transactionSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("query transactions", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, wrap("parse transaction row", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("query transactions", err)
	}

	tagMap, err := r.tagNamesByTxnID(ctx, f)
	if err != nil {
		return nil, wrap("query transaction tags", err)
	}
	for i := range out {
		out[i].Tags = tagMap[out[i].ID]
		if out[i].Tags == nil {
			out[i].Tags = []string{}
		}
	}
	return out, nil
}

func (r *TransactionRepo) Get(ctx context.Context, id int64) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, transactionSelect+` WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Entity: "transaction", Key: id}
		}
		return nil, wrap("get transaction", err)
	}
	tags, err := fetchTagNames(ctx, r.db, t.ID)
	if err != nil {
		return nil, wrap("get transaction tags", err)
	}
	t.Tags = tags
	return &t, nil
}

// Update replaces the scalar fields and the whole tag set. The previous
// associations survive untouched when any step fails.
func (r *TransactionRepo) Update(ctx context.Context, id int64, in TransactionInput) error {
	const op = "update transaction"
	if err := validateTransaction(op, in); err != nil {
		return err
	}
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
		UPDATE transactions SET ledger_id = ?, account_id = ?, amount = ?, currency = ?, date = ?, note = ?
		WHERE id = ?
		`, in.LedgerID, in.AccountID, fixed(in.Amount), in.Currency, fmtTime(in.Date), in.Note, id)
		if err != nil {
			return wrap(op, err)
		}
		if err := requireAffected(res, "transaction", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transaction_tags WHERE transaction_id = ?`, id); err != nil {
			return wrap("clear transaction tags", err)
		}
		return r.attachTags(ctx, tx, id, in.Tags)
	})
	return wrap(op, err)
}

// Delete removes the associations and the transaction. Deleting a missing id
// is not an error.
func (r *TransactionRepo) Delete(ctx context.Context, id int64) error {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transaction_tags WHERE transaction_id = ?`, id); err != nil {
			return wrap("delete transaction tags", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return wrap("delete transaction", err)
		}
		return nil
	})
	return wrap("delete transaction", err)
}

// attachTags resolves names inside tx and links them to the transaction.
// Names that normalize to the same tag collapse to one association.
func (r *TransactionRepo) attachTags(ctx context.Context, tx *sql.Tx, txnID int64, names []string) error {
	seen := map[int64]bool{}
	for _, name := range names {
		tagID, err := r.tags.Resolve(ctx, tx, name)
		if err != nil {
			return err
		}
		if seen[tagID] {
			continue
		}
		seen[tagID] = true
		if _, err := tx.ExecContext(ctx, `INSERT INTO transaction_tags(transaction_id, tag_id) VALUES (?, ?)`, txnID, tagID); err != nil {
			return wrap("insert transaction tag", err)
		}
	}
	return nil
}

func (r *TransactionRepo) tagNamesByTxnID(ctx context.Context, f TransactionFilters) (map[int64][]string, error) {
	query := `
		SELECT tt.transaction_id, tg.name
		FROM transaction_tags tt
		JOIN tags tg ON tg.id = tt.tag_id
		JOIN transactions t ON t.id = tt.transaction_id
		WHERE 1 = 1`
	var args []interface{}
	if f.LedgerID != 0 {
		query += " AND t.ledger_id = ?"
		args = append(args, f.LedgerID)
	}
	if f.AccountID != 0 {
		query += " AND t.account_id = ?"
		args = append(args, f.AccountID)
	}
	query += " ORDER BY tt.transaction_id, tg.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[int64][]string{}
	for rows.Next() {
		var txnID int64
		var name string
		if err := rows.Scan(&txnID, &name); err != nil {
			return nil, err
		}
		out[txnID] = append(out[txnID], name)
	}
	return out, rows.Err()
}

func fetchTagNames(ctx context.Context, q querier, txnID int64) ([]string, error) {
	rows, err := q.QueryContext(ctx, `SELECT tg.name FROM tags tg JOIN transaction_tags tt ON tt.tag_id = tg.id WHERE tt.transaction_id = ?`, txnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tags := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tags = append(tags, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(tags)
	return tags, nil
}

func validateTransaction(op string, in TransactionInput) error {
	var missing []string
	if in.LedgerID <= 0 {
		missing = append(missing, "ledger_id")
	}
	if in.AccountID <= 0 {
		missing = append(missing, "account_id")
	}
	if strings.TrimSpace(in.Currency) == "" {
		missing = append(missing, "currency")
	}
	if in.Date.IsZero() {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return &ValidationError{Op: op, Fields: missing, Message: "missing transaction fields"}
	}
	return nil
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var date string
	if err := row.Scan(&t.ID, &t.LedgerID, &t.AccountID, &t.Amount, &t.Currency, &date, &t.Note); err != nil {
		return Transaction{}, err
	}
	parsed, err := parseTime(date)
	if err != nil {
		return Transaction{}, err
	}
	t.Date = parsed
	return t, nil
}
