package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/expensio/expense-docai/constants"
	"github.com/expensio/expense-docai/internal/extract"
	"github.com/expensio/expense-docai/internal/repository"
)

// DocumentProcessor is the external AI capability the workflow calls. The
// concrete client (auth, transport, timeouts) is owned by whoever wires the
// Processor; nothing here holds auth state.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, content []byte, mimeType string) ([]byte, error)
}

// AssetReader loads the stored receipt bytes for an expense.
type AssetReader interface {
	Read(path string) ([]byte, error)
}

// Processor drives one receipt from Draft to a terminal processing status:
// mark processing, call the document AI, run extraction, persist the payload
// or the failure. The status is written exactly once per terminal outcome.
type Processor struct {
	Logger   *slog.Logger
	Expenses repository.ExpenseRepository
	Assets   AssetReader
	DocAI    DocumentProcessor
	Pipeline *extract.Pipeline
}

func NewProcessor(logger *slog.Logger, expenses repository.ExpenseRepository, assets AssetReader, docAI DocumentProcessor) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:   logger,
		Expenses: expenses,
		Assets:   assets,
		DocAI:    docAI,
		Pipeline: extract.NewPipeline(logger),
	}
}

func (p *Processor) ProcessReceipt(ctx context.Context, expenseID uuid.UUID) error {
	exp, err := p.Expenses.GetByID(ctx, expenseID)
	if err != nil {
		return fmt.Errorf("load expense: %w", err)
	}
	if exp.Status != constants.StatusDraft {
		return fmt.Errorf("expense %s not ready for processing: status=%s", expenseID, exp.Status)
	}

	if err := p.Expenses.MarkProcessing(ctx, expenseID); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	content, err := p.Assets.Read(exp.FilePath)
	if err != nil {
		return p.fail(ctx, expenseID, fmt.Sprintf("read receipt asset: %v", err))
	}

	mimeType := constants.MimeTypes[constants.NormalizeExt(exp.FileExt)]
	raw, err := p.DocAI.ProcessDocument(ctx, content, mimeType)
	if err != nil {
		return p.fail(ctx, expenseID, fmt.Sprintf("document ai call: %v", err))
	}

	outcome := p.Pipeline.Run(string(raw))
	if !outcome.Completed() {
		p.Logger.Warn("workflow.extract.failed",
			"expense_id", expenseID, "reason", outcome.Reason, "message", outcome.Message)
		return p.fail(ctx, expenseID, fmt.Sprintf("%s: %s", outcome.Reason, outcome.Message))
	}

	if _, err := p.Expenses.CompleteExtraction(ctx, expenseID, outcome.Payload); err != nil {
		return fmt.Errorf("persist extraction: %w", err)
	}

	p.Logger.Info("workflow.process.ok",
		"expense_id", expenseID,
		"merchant", outcome.Payload.MerchantName,
		"line_items", len(outcome.Payload.LineItems),
	)
	return nil
}

// fail records the terminal failure against the expense. The original reason
// is what surfaces to reviewers, so persistence errors are logged, not
// substituted.
func (p *Processor) fail(ctx context.Context, expenseID uuid.UUID, reason string) error {
	if err := p.Expenses.MarkFailed(ctx, expenseID, reason); err != nil {
		p.Logger.Error("workflow.mark_failed_error", "expense_id", expenseID, "error", err)
	}
	return fmt.Errorf("processing failed: %s", reason)
}
