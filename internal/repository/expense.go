package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expensio/expense-docai/constants"
	"github.com/expensio/expense-docai/internal/common"
	"github.com/expensio/expense-docai/internal/entity"
	"github.com/expensio/expense-docai/internal/extract"
)

// ExpenseRepository persists expense records and their line items. Terminal
// status writes are guarded so each outcome lands exactly once.
type ExpenseRepository interface {
	CreateDraft(ctx context.Context, e *entity.Expense) (*entity.Expense, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error)
	ListByStatus(ctx context.Context, status constants.ExpenseStatus) ([]*entity.Expense, error)
	ListByDateRange(ctx context.Context, statuses []constants.ExpenseStatus, from, to *time.Time) ([]*entity.Expense, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	CompleteExtraction(ctx context.Context, id uuid.UUID, payload *extract.Payload) (*entity.Expense, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to constants.ExpenseStatus) error
	UpdateLineItem(ctx context.Context, expenseID uuid.UUID, lineIndex int, description string, quantity, unitPrice decimal.Decimal) error
}

type expenseRepository struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
}

func NewExpenseRepository(db *sql.DB, dialect Dialect, logger *slog.Logger) ExpenseRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &expenseRepository{db: db, dialect: dialect, logger: logger}
}

const dateLayout = "2006-01-02"

func (r *expenseRepository) CreateDraft(ctx context.Context, e *entity.Expense) (*entity.Expense, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	now := time.Now().UTC()
	e.Status = constants.StatusDraft
	e.CreatedAt = now
	e.UpdatedAt = now

	q := r.dialect.rebind(`INSERT INTO expenses
		(id, status, file_path, file_ext, content_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q,
		e.ID.String(), string(e.Status), e.FilePath, e.FileExt, e.ContentHash, now, now)
	if err != nil {
		r.logger.Error("expense create failed", "expense_id", e.ID, "error", err)
		return nil, common.WrapError(err, "create expense")
	}
	r.logger.Info("expense created", "expense_id", e.ID, "status", e.Status)
	return e, nil
}

func (r *expenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Expense, error) {
	q := r.dialect.rebind(`SELECT id, merchant_name, transaction_date, total, status,
		error_message, file_path, file_ext, content_hash, created_at, updated_at
		FROM expenses WHERE id = ?`)
	row := r.db.QueryRowContext(ctx, q, id.String())
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapError(err, "get expense")
	}
	items, err := r.loadLineItems(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	e.LineItems = items
	return e, nil
}

func (r *expenseRepository) ListByStatus(ctx context.Context, status constants.ExpenseStatus) ([]*entity.Expense, error) {
	q := r.dialect.rebind(`SELECT id, merchant_name, transaction_date, total, status,
		error_message, file_path, file_ext, content_hash, created_at, updated_at
		FROM expenses WHERE status = ? ORDER BY created_at`)
	return r.queryExpenses(ctx, q, string(status))
}

func (r *expenseRepository) ListByDateRange(ctx context.Context, statuses []constants.ExpenseStatus, from, to *time.Time) ([]*entity.Expense, error) {
	q := `SELECT id, merchant_name, transaction_date, total, status,
		error_message, file_path, file_ext, content_hash, created_at, updated_at
		FROM expenses WHERE 1=1`
	var args []any
	if len(statuses) > 0 {
		q += " AND status IN ("
		for i, s := range statuses {
			if i > 0 {
				q += ", "
			}
			q += "?"
			args = append(args, string(s))
		}
		q += ")"
	}
	if from != nil {
		q += " AND transaction_date >= ?"
		args = append(args, from.Format(dateLayout))
	}
	if to != nil {
		q += " AND transaction_date <= ?"
		args = append(args, to.Format(dateLayout))
	}
	q += " ORDER BY transaction_date, created_at"
	return r.queryExpenses(ctx, r.dialect.rebind(q), args...)
}

func (r *expenseRepository) queryExpenses(ctx context.Context, q string, args ...any) ([]*entity.Expense, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("expense query failed", "error", err)
		return nil, common.WrapError(err, "query expenses")
	}
	defer rows.Close()

	var result []*entity.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan expense")
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(err, "iterate expenses")
	}
	for _, e := range result {
		items, err := r.loadLineItems(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		e.LineItems = items
	}
	return result, nil
}

func (r *expenseRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id, constants.StatusDraft, constants.StatusProcessing, nil)
}

func (r *expenseRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.transition(ctx, id, constants.StatusProcessing, constants.StatusFailed, &reason)
}

func (r *expenseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to constants.ExpenseStatus) error {
	if !constants.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, from, to)
	}
	return r.transition(ctx, id, from, to, nil)
}

// transition moves a record between statuses with a guard on the current one.
// Zero rows affected means the record is missing or already moved on.
func (r *expenseRepository) transition(ctx context.Context, id uuid.UUID, from, to constants.ExpenseStatus, errMsg *string) error {
	q := r.dialect.rebind(`UPDATE expenses SET status = ?, error_message = ?, updated_at = ?
		WHERE id = ? AND status = ?`)
	res, err := r.db.ExecContext(ctx, q,
		string(to), errMsg, time.Now().UTC(), id.String(), string(from))
	if err != nil {
		r.logger.Error("expense transition failed", "expense_id", id, "from", from, "to", to, "error", err)
		return common.WrapError(err, "update status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return common.WrapError(err, "rows affected")
	}
	if n == 0 {
		if _, gerr := r.GetByID(ctx, id); errors.Is(gerr, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: expense %s is not %s", common.ErrInvalidTransition, id, from)
	}
	r.logger.Info("expense transitioned", "expense_id", id, "from", from, "to", to)
	return nil
}

func (r *expenseRepository) CompleteExtraction(ctx context.Context, id uuid.UUID, payload *extract.Payload) (*entity.Expense, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.WrapError(err, "begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	var merchant, txDate, total *string
	if payload.MerchantName != "" {
		merchant = &payload.MerchantName
	}
	if payload.TransactionDate != nil {
		s := payload.TransactionDate.Format(dateLayout)
		txDate = &s
	}
	if payload.Total != nil {
		s := payload.Total.StringFixed(2)
		total = &s
	}

	q := r.dialect.rebind(`UPDATE expenses
		SET merchant_name = ?, transaction_date = ?, total = ?, status = ?,
		    error_message = NULL, updated_at = ?
		WHERE id = ? AND status = ?`)
	res, err := tx.ExecContext(ctx, q,
		merchant, txDate, total, string(constants.StatusPending),
		time.Now().UTC(), id.String(), string(constants.StatusProcessing))
	if err != nil {
		return nil, common.WrapError(err, "complete extraction")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: expense %s is not %s", common.ErrInvalidTransition, id, constants.StatusProcessing)
	}

	del := r.dialect.rebind(`DELETE FROM line_items WHERE expense_id = ?`)
	if _, err := tx.ExecContext(ctx, del, id.String()); err != nil {
		return nil, common.WrapError(err, "clear line items")
	}

	ins := r.dialect.rebind(`INSERT INTO line_items
		(id, expense_id, line_index, description, quantity, unit_price, is_discount)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for i, li := range payload.LineItems {
		discount := 0
		if li.IsDiscount {
			discount = 1
		}
		if _, err := tx.ExecContext(ctx, ins,
			uuid.New().String(), id.String(), i,
			li.Description, li.Quantity.String(), li.UnitPrice.StringFixed(2), discount); err != nil {
			return nil, common.WrapError(err, "insert line item")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, common.WrapError(err, "commit extraction")
	}
	r.logger.Info("extraction persisted", "expense_id", id, "line_items", len(payload.LineItems))
	return r.GetByID(ctx, id)
}

func (r *expenseRepository) UpdateLineItem(ctx context.Context, expenseID uuid.UUID, lineIndex int, description string, quantity, unitPrice decimal.Decimal) error {
	q := r.dialect.rebind(`UPDATE line_items SET description = ?, quantity = ?, unit_price = ?
		WHERE expense_id = ? AND line_index = ?`)
	res, err := r.db.ExecContext(ctx, q,
		description, quantity.String(), unitPrice.StringFixed(2), expenseID.String(), lineIndex)
	if err != nil {
		r.logger.Error("line item update failed", "expense_id", expenseID, "line_index", lineIndex, "error", err)
		return common.WrapError(err, "update line item")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.ErrNotFound
	}
	r.logger.Info("line item updated", "expense_id", expenseID, "line_index", lineIndex)
	return nil
}

func (r *expenseRepository) loadLineItems(ctx context.Context, expenseID uuid.UUID) ([]*entity.LineItem, error) {
	q := r.dialect.rebind(`SELECT id, expense_id, line_index, description, quantity, unit_price, is_discount
		FROM line_items WHERE expense_id = ? ORDER BY line_index`)
	rows, err := r.db.QueryContext(ctx, q, expenseID.String())
	if err != nil {
		return nil, common.WrapError(err, "query line items")
	}
	defer rows.Close()

	var items []*entity.LineItem
	for rows.Next() {
		var (
			idStr, expStr, qty, price string
			li                        entity.LineItem
			discount                  int
		)
		if err := rows.Scan(&idStr, &expStr, &li.LineIndex, &li.Description, &qty, &price, &discount); err != nil {
			return nil, common.WrapError(err, "scan line item")
		}
		if li.ID, err = uuid.Parse(idStr); err != nil {
			return nil, common.WrapError(err, "parse line item id")
		}
		if li.ExpenseID, err = uuid.Parse(expStr); err != nil {
			return nil, common.WrapError(err, "parse line item expense id")
		}
		if li.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, common.WrapError(err, "parse quantity")
		}
		if li.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, common.WrapError(err, "parse unit price")
		}
		li.IsDiscount = discount != 0
		items = append(items, &li)
	}
	return items, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*entity.Expense, error) {
	var (
		e                entity.Expense
		idStr, statusStr string
		merchant, txDate sql.NullString
		total, errMsg    sql.NullString
	)
	if err := row.Scan(&idStr, &merchant, &txDate, &total, &statusStr,
		&errMsg, &e.FilePath, &e.FileExt, &e.ContentHash, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if e.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	e.Status = constants.ExpenseStatus(statusStr)
	if merchant.Valid {
		e.MerchantName = &merchant.String
	}
	if txDate.Valid && txDate.String != "" {
		t, err := time.ParseInLocation(dateLayout, txDate.String, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date: %w", err)
		}
		e.TransactionDate = &t
	}
	if total.Valid && total.String != "" {
		d, err := decimal.NewFromString(total.String)
		if err != nil {
			return nil, fmt.Errorf("parse total: %w", err)
		}
		e.Total = &d
	}
	if errMsg.Valid {
		e.ErrorMessage = &errMsg.String
	}
	return &e, nil
}
