package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jask/jaskledger/internal/database"
)

// MaintenanceService houses destructive and diagnostic actions.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes all user data. It keeps the schema and the currency reference
// data so the ledger can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"transaction_tags",
			"transactions",
			"tags",
			"categories",
			"ledgers",
			"credit_accounts",
			"invest_accounts",
			"accounts",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, "VACUUM"); err != nil {
		slog.Warn("vacuum after reset failed", "err", err)
	}
	return nil
}

// Issue is one integrity problem found by Check.
type Issue struct {
	Table  string `json:"table"`
	RowID  int64  `json:"row_id"`
	Parent string `json:"parent,omitempty"`
	Reason string `json:"reason"`
}

// IntegrityReport lists every problem Check found. An empty report means the
// account extension tables and all foreign keys are consistent.
type IntegrityReport struct {
	Issues []Issue `json:"issues"`
}

func (r IntegrityReport) OK() bool { return len(r.Issues) == 0 }

// Check looks for extension rows that do not match their account's variant
// and for foreign-key violations that slipped in while enforcement was off.
func (s *MaintenanceService) Check(ctx context.Context) (IntegrityReport, error) {
	report := IntegrityReport{Issues: []Issue{}}
	if s.DB == nil {
		return report, fmt.Errorf("maintenance: db not configured")
	}

	extensions := []struct {
		table, variant string
	}{
		{"credit_accounts", "credit"},
		{"invest_accounts", "invest"},
	}
	for _, ext := range extensions {
		rows, err := s.DB.QueryContext(ctx, `
		SELECT e.account_id, a.type
		FROM `+ext.table+` e
		LEFT JOIN accounts a ON a.id = e.account_id
		WHERE a.id IS NULL OR a.type <> ?
		ORDER BY e.account_id`, ext.variant)
		if err != nil {
			return report, fmt.Errorf("check %s: %w", ext.table, err)
		}
		for rows.Next() {
			var id int64
			var typ sql.NullString
			if err := rows.Scan(&id, &typ); err != nil {
				rows.Close()
				return report, fmt.Errorf("check %s: %w", ext.table, err)
			}
			reason := "orphaned extension row"
			if typ.Valid {
				reason = fmt.Sprintf("extension row for %s account", typ.String)
			}
			report.Issues = append(report.Issues, Issue{Table: ext.table, RowID: id, Parent: "accounts", Reason: reason})
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return report, fmt.Errorf("check %s: %w", ext.table, err)
		}
	}

	rows, err := s.DB.QueryContext(ctx, `PRAGMA foreign_key_check`)
	if err != nil {
		return report, fmt.Errorf("foreign key check: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var table, parent string
		var rowID sql.NullInt64
		var fkid int64
		if err := rows.Scan(&table, &rowID, &parent, &fkid); err != nil {
			return report, fmt.Errorf("foreign key check: %w", err)
		}
		report.Issues = append(report.Issues, Issue{Table: table, RowID: rowID.Int64, Parent: parent, Reason: "foreign key violation"})
	}
	if err := rows.Err(); err != nil {
		return report, fmt.Errorf("foreign key check: %w", err)
	}
	return report, nil
}
