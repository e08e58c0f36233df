package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jask/jaskledger/internal/database"
)

// AccountRepo handles accounts and their variant extension rows.
type AccountRepo struct {
	db *sql.DB
}

func NewAccountRepo(db *sql.DB) *AccountRepo {
	return &AccountRepo{db: db}
}

const accountSelect = `
	SELECT a.id, a.name, a.type, a.balance, a.currency, a.note, a.count_in_asset,
	 c.credit_limit, c.owed, c.billing_date, c.due_date,
	 i.avg_cost, i.quantity, i.total_cap
	FROM accounts a
	LEFT JOIN credit_accounts c ON c.account_id = a.id
	LEFT JOIN invest_accounts i ON i.account_id = a.id`

// Create inserts the base row and, for Credit and Invest, the extension row
// in one transaction. Nothing is written when validation fails.
func (r *AccountRepo) Create(ctx context.Context, in AccountInput) (int64, error) {
	const op = "insert account"
	if err := validateAccount(op, in); err != nil {
		return 0, err
	}
	var id int64
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
		INSERT INTO accounts(name, type, balance, currency, note, count_in_asset)
		VALUES (?, ?, ?, ?, ?, ?)
		`, strings.TrimSpace(in.Name), string(in.Variant.Type()), fixed(in.Balance), in.Currency, in.Note, in.CountInAsset)
		if err != nil {
			return wrap(op, err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return wrap(op, err)
		}
		return writeExtension(ctx, tx, id, in.Variant)
	})
	if err != nil {
		return 0, wrap(op, err)
	}
	return id, nil
}

// List returns every account. Only the extension fields of an account's own
// variant are populated.
func (r *AccountRepo) List(ctx context.Context) ([]Account, error) {
	rows, err := r.db.QueryContext(ctx, accountSelect+` ORDER BY a.id`)
	if err != nil {
		return nil, wrap("query accounts", err)
	}
	defer rows.Close()
	var out []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, wrap("parse account row", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("query accounts", err)
	}
	return out, nil
}

func (r *AccountRepo) Get(ctx context.Context, id int64) (*Account, error) {
	row := r.db.QueryRowContext(ctx, accountSelect+` WHERE a.id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Entity: "account", Key: id}
		}
		return nil, wrap("get account", err)
	}
	return &a, nil
}

// Update replaces the base fields and the extension row of the new variant.
// Extension rows belonging to any other variant are removed in the same
// transaction, so a type change never leaves an orphan behind.
func (r *AccountRepo) Update(ctx context.Context, id int64, in AccountInput) error {
	const op = "update account"
	if err := validateAccount(op, in); err != nil {
		return err
	}
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
		UPDATE accounts SET name = ?, type = ?, balance = ?, currency = ?, note = ?, count_in_asset = ?
		WHERE id = ?
		`, strings.TrimSpace(in.Name), string(in.Variant.Type()), fixed(in.Balance), in.Currency, in.Note, in.CountInAsset, id)
		if err != nil {
			return wrap(op, err)
		}
		if err := requireAffected(res, "account", id); err != nil {
			return wrap(op, err)
		}
		return writeExtension(ctx, tx, id, in.Variant)
	})
	return wrap(op, err)
}

// Delete removes the extension rows and the base row. Deleting a missing id
// is not an error.
func (r *AccountRepo) Delete(ctx context.Context, id int64) error {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM credit_accounts WHERE account_id = ?`, id); err != nil {
			return wrap("delete from credit accounts", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM invest_accounts WHERE account_id = ?`, id); err != nil {
			return wrap("delete from invest accounts", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
			return wrap("delete account", err)
		}
		return nil
	})
	return wrap("delete account", err)
}

func validateAccount(op string, in AccountInput) error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.Currency) == "" {
		missing = append(missing, "currency")
	}
	if len(missing) > 0 {
		return &ValidationError{Op: op, Fields: missing, Message: "missing account fields"}
	}
	return validateVariant(op, in.Variant)
}

// writeExtension makes the extension tables agree with v for account id.
func writeExtension(ctx context.Context, tx *sql.Tx, id int64, v Variant) error {
	switch v := v.(type) {
	case Debit, Member:
		if err := clearCredit(ctx, tx, id); err != nil {
			return err
		}
		return clearInvest(ctx, tx, id)
	case Credit:
		if err := clearInvest(ctx, tx, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO credit_accounts(account_id, credit_limit, owed, billing_date, due_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
		 credit_limit=excluded.credit_limit,
		 owed=excluded.owed,
		 billing_date=excluded.billing_date,
		 due_date=excluded.due_date;
		`, id, fixed(v.CreditLimit.Decimal), fixed(v.Owed.Decimal), v.BillingDate, v.DueDate)
		return wrap("write credit account details", err)
	case Invest:
		if err := clearCredit(ctx, tx, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO invest_accounts(account_id, avg_cost, quantity, total_cap)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET
		 avg_cost=excluded.avg_cost,
		 quantity=excluded.quantity,
		 total_cap=excluded.total_cap;
		`, id, fixed(v.AvgCost.Decimal), fixed(v.Quantity.Decimal), fixed(v.TotalCap.Decimal))
		return wrap("write invest account details", err)
	default:
		return &ValidationError{Op: "write account details", Message: fmt.Sprintf("unsupported account variant %T", v)}
	}
}

func clearCredit(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM credit_accounts WHERE account_id = ?`, id)
	return wrap("clear credit account details", err)
}

func clearInvest(ctx context.Context, tx *sql.Tx, id int64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM invest_accounts WHERE account_id = ?`, id)
	return wrap("clear invest account details", err)
}

func scanAccount(row scanner) (Account, error) {
	var (
		a                           Account
		typ                         string
		creditLimit, owed           decimal.NullDecimal
		billingDate, dueDate        sql.NullString
		avgCost, quantity, totalCap decimal.NullDecimal
	)
	if err := row.Scan(&a.ID, &a.Name, &typ, &a.Balance, &a.Currency, &a.Note, &a.CountInAsset,
		&creditLimit, &owed, &billingDate, &dueDate,
		&avgCost, &quantity, &totalCap); err != nil {
		return Account{}, err
	}
	switch AccountType(typ) {
	case AccountDebit:
		a.Variant = Debit{}
	case AccountMember:
		a.Variant = Member{}
	case AccountCredit:
		a.Variant = Credit{
			CreditLimit: creditLimit,
			Owed:        owed,
			BillingDate: billingDate.String,
			DueDate:     dueDate.String,
		}
	case AccountInvest:
		a.Variant = Invest{AvgCost: avgCost, Quantity: quantity, TotalCap: totalCap}
	default:
		return Account{}, fmt.Errorf("account %d has unknown type %q", a.ID, typ)
	}
	return a, nil
}
