package repository

import (
	"context"
	"database/sql"
	"strings"
)

// LedgerRepo handles ledgers.
type LedgerRepo struct {
	db *sql.DB
}

func NewLedgerRepo(db *sql.DB) *LedgerRepo {
	return &LedgerRepo{db: db}
}

const ledgerSelect = `SELECT id, name, base_currency, base_account, is_archived FROM ledgers`

func (r *LedgerRepo) Create(ctx context.Context, l Ledger) (int64, error) {
	const op = "insert ledger"
	if err := validateLedger(op, l); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO ledgers(name, base_currency, base_account, is_archived)
	VALUES (?, ?, ?, ?)
	`, strings.TrimSpace(l.Name), l.BaseCurrency, l.BaseAccount, l.IsArchived)
	if err != nil {
		return 0, wrap(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrap(op, err)
	}
	return id, nil
}

func (r *LedgerRepo) List(ctx context.Context) ([]Ledger, error) {
	rows, err := r.db.QueryContext(ctx, ledgerSelect+` ORDER BY id`)
	if err != nil {
		return nil, wrap("query ledgers", err)
	}
	defer rows.Close()
	var out []Ledger
	for rows.Next() {
		var l Ledger
		if err := rows.Scan(&l.ID, &l.Name, &l.BaseCurrency, &l.BaseAccount, &l.IsArchived); err != nil {
			return nil, wrap("parse ledger row", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("query ledgers", err)
	}
	return out, nil
}

func (r *LedgerRepo) Get(ctx context.Context, id int64) (*Ledger, error) {
	var l Ledger
	err := r.db.QueryRowContext(ctx, ledgerSelect+` WHERE id = ?`, id).
		Scan(&l.ID, &l.Name, &l.BaseCurrency, &l.BaseAccount, &l.IsArchived)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Entity: "ledger", Key: id}
		}
		return nil, wrap("get ledger", err)
	}
	return &l, nil
}

// Update replaces every field of ledger l.ID.
func (r *LedgerRepo) Update(ctx context.Context, l Ledger) error {
	const op = "update ledger"
	if err := validateLedger(op, l); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
	UPDATE ledgers SET name = ?, base_currency = ?, base_account = ?, is_archived = ?
	WHERE id = ?
	`, strings.TrimSpace(l.Name), l.BaseCurrency, l.BaseAccount, l.IsArchived, l.ID)
	if err != nil {
		return wrap(op, err)
	}
	return wrap(op, requireAffected(res, "ledger", l.ID))
}

// Delete removes a ledger. Its categories and transactions cascade.
func (r *LedgerRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM ledgers WHERE id = ?`, id)
	return wrap("delete ledger", err)
}

func validateLedger(op string, l Ledger) error {
	var missing []string
	if strings.TrimSpace(l.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(l.BaseCurrency) == "" {
		missing = append(missing, "base_currency")
	}
	if len(missing) > 0 {
		return &ValidationError{Op: op, Fields: missing, Message: "missing ledger fields"}
	}
	return nil
}
