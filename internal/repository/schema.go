package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DDL kept portable across postgres and sqlite: UUIDs and decimals as TEXT,
// the transaction date as a YYYY-MM-DD string.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS expenses (
		id               TEXT PRIMARY KEY,
		merchant_name    TEXT,
		transaction_date TEXT,
		total            TEXT,
		status           TEXT NOT NULL,
		error_message    TEXT,
		file_path        TEXT NOT NULL DEFAULT '',
		file_ext         TEXT NOT NULL DEFAULT '',
		content_hash     TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMP NOT NULL,
		updated_at       TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS line_items (
		id          TEXT PRIMARY KEY,
		expense_id  TEXT NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
		line_index  INTEGER NOT NULL,
		description TEXT NOT NULL,
		quantity    TEXT NOT NULL,
		unit_price  TEXT NOT NULL,
		is_discount INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_status ON expenses(status)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_line_items_expense_index ON line_items(expense_id, line_index)`,
}

// Migrate creates the schema when it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders into $N for postgres; sqlite takes ? as-is.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
