package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/jask/jaskledger/internal/database"
)

// DefaultCurrencies is the reference set seeded into an empty database.
var DefaultCurrencies = []Currency{
	{Code: "USD", Name: "US Dollar", Symbol: "$"},
	{Code: "EUR", Name: "Euro", Symbol: "€"},
	{Code: "GBP", Name: "British Pound", Symbol: "£"},
	{Code: "MYR", Name: "Malaysian Ringgit", Symbol: "RM"},
	{Code: "JPY", Name: "Japanese Yen", Symbol: "¥"},
	{Code: "AUD", Name: "Australian Dollar", Symbol: "A$"},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: "C$"},
	{Code: "SGD", Name: "Singapore Dollar", Symbol: "S$"},
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥"},
	{Code: "INR", Name: "Indian Rupee", Symbol: "₹"},
}

// CurrencyRepo reads currency reference data.
type CurrencyRepo struct {
	db *sql.DB
}

func NewCurrencyRepo(db *sql.DB) *CurrencyRepo {
	return &CurrencyRepo{db: db}
}

func (r *CurrencyRepo) List(ctx context.Context) ([]Currency, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, name, symbol FROM currencies ORDER BY code`)
	if err != nil {
		return nil, wrap("query currencies", err)
	}
	defer rows.Close()
	var out []Currency
	for rows.Next() {
		var c Currency
		if err := rows.Scan(&c.Code, &c.Name, &c.Symbol); err != nil {
			return nil, wrap("parse currency row", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("query currencies", err)
	}
	return out, nil
}

func (r *CurrencyRepo) Get(ctx context.Context, code string) (*Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	var c Currency
	err := r.db.QueryRowContext(ctx, `SELECT code, name, symbol FROM currencies WHERE code = ?`, code).
		Scan(&c.Code, &c.Name, &c.Symbol)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Entity: "currency", Key: code}
		}
		return nil, wrap("get currency", err)
	}
	return &c, nil
}

// SeedDefaults inserts DefaultCurrencies when the table is empty. A populated
// table is left alone, so the seed runs once per database.
func (r *CurrencyRepo) SeedDefaults(ctx context.Context) error {
	const op = "seed currencies"
	for _, c := range DefaultCurrencies {
		if money.GetCurrency(c.Code) == nil {
			return &ValidationError{Op: op, Fields: []string{"code"}, Message: fmt.Sprintf("unknown ISO currency %q", c.Code)}
		}
	}
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM currencies`).Scan(&n); err != nil {
			return wrap(op, err)
		}
		if n > 0 {
			return nil
		}
		for _, c := range DefaultCurrencies {
			if _, err := tx.ExecContext(ctx, `INSERT INTO currencies(code, name, symbol) VALUES (?, ?, ?)`, c.Code, c.Name, c.Symbol); err != nil {
				return wrap(op, err)
			}
		}
		return nil
	})
	return wrap(op, err)
}
