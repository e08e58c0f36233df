package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

const categorySelect = `SELECT id, ledger_id, name, icon, color, type, subcategories FROM categories`

func (r *CategoryRepo) Insert(ctx context.Context, c Category) (int64, error) {
	const op = "insert category"
	if err := validateCategory(op, c); err != nil {
		return 0, err
	}
	subs, err := encodeSubcategories(c.Subcategories)
	if err != nil {
		return 0, wrap(op, err)
	}
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO categories(ledger_id, name, icon, color, type, subcategories)
	VALUES (?, ?, ?, ?, ?, ?)
	`, c.LedgerID, strings.TrimSpace(c.Name), c.Icon, c.Color, string(c.Type), subs)
	if err != nil {
		return 0, wrap(op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrap(op, err)
	}
	return id, nil
}

// ListForLedger returns the categories of one ledger ordered by name.
func (r *CategoryRepo) ListForLedger(ctx context.Context, ledgerID int64) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, categorySelect+` WHERE ledger_id = ? ORDER BY name, id`, ledgerID)
	if err != nil {
		return nil, wrap("query categories", err)
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, wrap("parse category row", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("query categories", err)
	}
	return out, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id int64) (*Category, error) {
	c, err := scanCategory(r.db.QueryRowContext(ctx, categorySelect+` WHERE id = ?`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Entity: "category", Key: id}
		}
		return nil, wrap("get category", err)
	}
	return &c, nil
}

// Update replaces every field of category c.ID.
func (r *CategoryRepo) Update(ctx context.Context, c Category) error {
	const op = "update category"
	if err := validateCategory(op, c); err != nil {
		return err
	}
	subs, err := encodeSubcategories(c.Subcategories)
	if err != nil {
		return wrap(op, err)
	}
	res, err := r.db.ExecContext(ctx, `
	UPDATE categories SET ledger_id = ?, name = ?, icon = ?, color = ?, type = ?, subcategories = ?
	WHERE id = ?
	`, c.LedgerID, strings.TrimSpace(c.Name), c.Icon, c.Color, string(c.Type), subs, c.ID)
	if err != nil {
		return wrap(op, err)
	}
	return wrap(op, requireAffected(res, "category", c.ID))
}

func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return wrap("delete category", err)
}

func validateCategory(op string, c Category) error {
	var missing []string
	if c.LedgerID <= 0 {
		missing = append(missing, "ledger_id")
	}
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return &ValidationError{Op: op, Fields: missing, Message: "missing category fields"}
	}
	if !c.Type.Valid() {
		return &ValidationError{Op: op, Fields: []string{"type"}, Message: fmt.Sprintf("unknown category type %q", c.Type)}
	}
	return nil
}

func encodeSubcategories(subs []string) (string, error) {
	if subs == nil {
		subs = []string{}
	}
	b, err := json.Marshal(subs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decodeSubcategories never fails: a malformed column reads as an empty list.
func decodeSubcategories(categoryID int64, raw string) []string {
	var subs []string
	if err := json.Unmarshal([]byte(raw), &subs); err != nil {
		slog.Warn("category subcategories unreadable", "category_id", categoryID, "err", err)
		return []string{}
	}
	if subs == nil {
		return []string{}
	}
	return subs
}

func scanCategory(row scanner) (Category, error) {
	var c Category
	var typ, subs string
	if err := row.Scan(&c.ID, &c.LedgerID, &c.Name, &c.Icon, &c.Color, &typ, &subs); err != nil {
		return Category{}, err
	}
	c.Type = CategoryType(typ)
	c.Subcategories = decodeSubcategories(c.ID, subs)
	return c, nil
}
