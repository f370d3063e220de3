package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/expensio/expense-docai/constants"
	"github.com/expensio/expense-docai/internal/repository"
)

// Service is a tiny façade over the repository that produces XLSX bytes, one
// row per line item.
type Service struct {
	expenses repository.ExpenseRepository
	logger   *slog.Logger
}

func NewService(expenses repository.ExpenseRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{expenses: expenses, logger: logger}
}

// ExportExpensesXLSX returns an XLSX workbook for approved expenses in the
// date window. If only from is provided -> from..today (inclusive).
// If neither is provided -> all approved expenses.
func (s *Service) ExportExpensesXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		toDate = &t
	}

	recs, err := s.expenses.ListByDateRange(ctx, []constants.ExpenseStatus{constants.StatusApproved}, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Expenses"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Transaction Date",
		"Merchant",
		"Item/Service",
		"Quantity",
		"Unit Price",
		"Line Total",
		"Status",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		date := ""
		if r.TransactionDate != nil {
			date = r.TransactionDate.Format("2006-01-02")
		}
		merchant := ""
		if r.MerchantName != nil {
			merchant = *r.MerchantName
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		for _, li := range r.LineItems {
			write(1, date)
			write(2, merchant)
			write(3, li.Description)
			write(4, li.Quantity.String())
			write(5, li.UnitPrice.StringFixed(2))
			write(6, li.UnitPrice.Mul(li.Quantity).StringFixed(2))
			write(7, string(r.Status))
			row++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 14) // date
	_ = f.SetColWidth(sheet, "B", "B", 28) // merchant
	_ = f.SetColWidth(sheet, "C", "C", 40) // item
	_ = f.SetColWidth(sheet, "D", "F", 12) // numbers
	_ = f.SetColWidth(sheet, "G", "G", 12) // status

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"expenses", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
