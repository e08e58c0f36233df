package repository

import (
	"context"
	"database/sql"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/jask/jaskledger/internal/database"
)

// NormalizeTagName trims name and converts it to NFC so visually identical
// names resolve to the same tag.
func NormalizeTagName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// TagResolver maps tag names to ids, creating tags on first use.
//
// The tags.name UNIQUE constraint is the race guard: a resolver that loses an
// insert race gets a uniqueness violation and re-reads the winning row.
type TagResolver struct {
	DefaultColor string
}

// Resolve returns the id of the tag called name, creating it when absent.
// q may be the database handle or a caller's transaction.
func (r *TagResolver) Resolve(ctx context.Context, q querier, name string) (int64, error) {
	id, _, err := r.resolve(ctx, q, name, nil)
	return id, err
}

func (r *TagResolver) resolve(ctx context.Context, q querier, name string, color *string) (int64, bool, error) {
	const op = "resolve tag"
	name = NormalizeTagName(name)
	if name == "" {
		return 0, false, &ValidationError{Op: op, Fields: []string{"name"}, Message: "tag name is empty"}
	}
	id, err := tagIDByName(ctx, q, name)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return 0, false, wrap(op, err)
	}

	if color == nil && r.DefaultColor != "" {
		color = &r.DefaultColor
	}
	res, err := q.ExecContext(ctx, `INSERT INTO tags(name, color) VALUES (?, ?)`, name, color)
	if err == nil {
		id, err := res.LastInsertId()
		if err != nil {
			return 0, false, wrap(op, err)
		}
		return id, true, nil
	}
	if !isUniqueViolation(err) {
		return 0, false, wrap(op, err)
	}
	// lost the insert race; the winner's row is committed
	id, err = tagIDByName(ctx, q, name)
	if err != nil {
		return 0, false, wrap(op, err)
	}
	return id, false, nil
}

func tagIDByName(ctx context.Context, q querier, name string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	return id, err
}

// TagRepo handles tags.
type TagRepo struct {
	db       *sql.DB
	resolver *TagResolver
}

func NewTagRepo(db *sql.DB, resolver *TagResolver) *TagRepo {
	if resolver == nil {
		resolver = &TagResolver{}
	}
	return &TagRepo{db: db, resolver: resolver}
}

// Create returns the tag called name, creating it with color when it does not
// exist yet. An existing tag keeps its color.
func (r *TagRepo) Create(ctx context.Context, name string, color *string) (*Tag, error) {
	id, _, err := r.resolver.resolve(ctx, r.db, name, color)
	if err != nil {
		return nil, wrap("create tag", err)
	}
	return r.Get(ctx, id)
}

func (r *TagRepo) Get(ctx context.Context, id int64) (*Tag, error) {
	var t Tag
	err := r.db.QueryRowContext(ctx, `SELECT id, name, color FROM tags WHERE id = ?`, id).Scan(&t.ID, &t.Name, &t.Color)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &NotFoundError{Entity: "tag", Key: id}
		}
		return nil, wrap("get tag", err)
	}
	return &t, nil
}

func (r *TagRepo) List(ctx context.Context) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color FROM tags ORDER BY name`)
	if err != nil {
		return nil, wrap("query tags", err)
	}
	defer rows.Close()
	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Color); err != nil {
			return nil, wrap("parse tag row", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("query tags", err)
	}
	return out, nil
}

// Update renames and recolors a tag. Renaming onto an existing name is a
// ConstraintError.
func (r *TagRepo) Update(ctx context.Context, id int64, name string, color *string) error {
	const op = "update tag"
	name = NormalizeTagName(name)
	if name == "" {
		return &ValidationError{Op: op, Fields: []string{"name"}, Message: "tag name is empty"}
	}
	res, err := r.db.ExecContext(ctx, `UPDATE tags SET name = ?, color = ? WHERE id = ?`, name, color, id)
	if err != nil {
		return wrap(op, err)
	}
	return wrap(op, requireAffected(res, "tag", id))
}

// Delete removes a tag and its associations. Transactions are untouched.
func (r *TagRepo) Delete(ctx context.Context, id int64) error {
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transaction_tags WHERE tag_id = ?`, id); err != nil {
			return wrap("delete tag associations", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id); err != nil {
			return wrap("delete tag", err)
		}
		return nil
	})
	return wrap("delete tag", err)
}
