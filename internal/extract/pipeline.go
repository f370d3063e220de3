package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expensio/expense-docai/constants"
	"github.com/expensio/expense-docai/internal/docai"
)

// FailureReason is the stable code attached to a failed extraction attempt.
type FailureReason string

const (
	FailEmptyResponse     FailureReason = "EMPTY_RESPONSE"
	FailMalformedResponse FailureReason = "MALFORMED_RESPONSE"
	FailMissingDocument   FailureReason = "MISSING_DOCUMENT"
	FailMissingEntities   FailureReason = "MISSING_ENTITIES"
	FailNoDataExtracted   FailureReason = "NO_DATA_EXTRACTED"
	FailExtractionError   FailureReason = "EXTRACTION_ERROR"
)

// Synthetic line item label when only a document total was captured.
const totalAmountLabel = "Total Amount"

// Payload is the finished domain output of one extraction: header fields plus
// the ordered line items (tax aggregate last when present).
type Payload struct {
	MerchantName    string // empty when the document carried no supplier name
	TransactionDate *time.Time
	Total           *decimal.Decimal
	Status          constants.ExpenseStatus
	LineItems       []LineItemDraft
}

// Outcome is the terminal result of one extraction attempt: a completed
// payload or a typed failure. No partial state escapes the pipeline.
type Outcome struct {
	Payload *Payload
	Reason  FailureReason
	Message string
}

// Completed reports whether the attempt produced a payload.
func (o Outcome) Completed() bool { return o.Payload != nil }

func failure(reason FailureReason, message string) Outcome {
	return Outcome{Reason: reason, Message: message}
}

// Pipeline turns one raw response body into an Outcome. It is a pure,
// synchronous transformation holding no cross-invocation state; concurrent use
// for unrelated receipts needs no coordination.
type Pipeline struct {
	Logger *slog.Logger
}

func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Logger: logger}
}

// Run executes the full extraction over one response body. It never
// propagates a fault past its boundary: callers always receive an Outcome.
func (p *Pipeline) Run(responseBody string) (out Outcome) {
	if strings.TrimSpace(responseBody) == "" {
		return failure(FailEmptyResponse, "response body is empty")
	}

	var resp docai.ProcessResponse
	if err := json.Unmarshal([]byte(responseBody), &resp); err != nil {
		return failure(FailMalformedResponse, fmt.Sprintf("response is not valid JSON: %v", err))
	}
	if resp.Document == nil {
		return failure(FailMissingDocument, "response has no document")
	}
	if resp.Document.Entities == nil {
		return failure(FailMissingEntities, "document has no entities")
	}

	defer func() {
		if r := recover(); r != nil {
			p.Logger.Error("extract.pipeline.panic", "panic", r)
			out = failure(FailExtractionError, fmt.Sprintf("extraction error: %v", r))
		}
	}()

	scratch := ExtractEntities(resp.Document.Entities, p.Logger)

	lineItems := append([]LineItemDraft(nil), scratch.LineItems...)
	if taxDraft, ok := AggregateTax(scratch.TaxAmounts); ok {
		lineItems = append(lineItems, taxDraft)
	}

	if !scratch.HasData() && len(lineItems) == 0 {
		return failure(FailNoDataExtracted, "no fields or line items could be extracted")
	}

	payload := &Payload{
		MerchantName: scratch.MerchantName,
		Total:        scratch.Total,
		Status:       constants.StatusPending,
	}

	if scratch.DateRaw != "" {
		if d, ok := ParseMDY(scratch.DateRaw); ok {
			payload.TransactionDate = &d
		} else {
			p.Logger.Warn("extract.pipeline.bad_date", "raw", scratch.DateRaw)
		}
	}

	if len(lineItems) == 0 {
		// A captured total still yields one synthetic line item; a payload
		// with neither is a failure, never a success with empty data.
		if scratch.Total == nil {
			return failure(FailNoDataExtracted, "no line items and no total amount")
		}
		lineItems = []LineItemDraft{{
			Description: totalAmountLabel,
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   *scratch.Total,
		}}
	}
	payload.LineItems = lineItems

	p.Logger.Info("extract.pipeline.ok",
		"merchant", payload.MerchantName,
		"has_date", payload.TransactionDate != nil,
		"line_items", len(payload.LineItems),
	)
	return Outcome{Payload: payload}
}
