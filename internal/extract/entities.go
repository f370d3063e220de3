package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/expensio/expense-docai/internal/docai"
)

// Scratch is the mutable accumulator built during one pass over the entity
// list. It is created empty, populated by ExtractEntities, consumed by the
// pipeline, and then discarded.
type Scratch struct {
	MerchantName string
	DateRaw      string // month/day/year source text, decoded at assembly time
	Total        *decimal.Decimal
	TaxAmounts   []decimal.Decimal
	LineItems    []LineItemDraft
}

// HasData reports whether any named field was captured.
func (s *Scratch) HasData() bool {
	return s.MerchantName != "" || s.DateRaw != "" || s.Total != nil
}

// ExtractEntities routes each entity by its type tag in a single pass. A
// defect in one entity degrades that one field; it never aborts the pass.
// Entities with no type tag are skipped.
func ExtractEntities(entities []docai.Entity, logger *slog.Logger) *Scratch {
	if logger == nil {
		logger = slog.Default()
	}
	scratch := &Scratch{}

	for _, e := range entities {
		switch e.Type {
		case docai.TypeReceiptDate:
			scratch.DateRaw = dateSource(e)

		case docai.TypeTotalAmount:
			mv := moneyValueOf(e)
			if mv == nil {
				logger.Warn("extract.total_amount.no_money_value")
				continue
			}
			amt, err := DecodeAmount(mv.Units, mv.Nanos)
			if err != nil {
				logger.Warn("extract.total_amount.bad_amount", "units", mv.Units, "error", err)
				continue
			}
			scratch.Total = &amt

		case docai.TypeSupplierName:
			if name := strings.TrimSpace(e.MentionText); name != "" {
				scratch.MerchantName = name
			} else if e.NormalizedValue != nil && e.NormalizedValue.Text != "" {
				scratch.MerchantName = e.NormalizedValue.Text
			}

		case docai.TypeTotalTaxAmount:
			mv := moneyValueOf(e)
			if mv == nil {
				continue
			}
			amt, err := DecodeAmount(mv.Units, mv.Nanos)
			if err != nil {
				logger.Warn("extract.tax.bad_amount", "units", mv.Units, "error", err)
				continue
			}
			scratch.TaxAmounts = append(scratch.TaxAmounts, amt)

		case docai.TypeLineItem:
			if draft, ok := BuildLineItem(e, logger); ok {
				scratch.LineItems = append(scratch.LineItems, draft)
			}

		default:
			// unrecognized or untyped entity; ignore
		}
	}
	return scratch
}

// dateSource yields the month/day/year string for a receipt_date entity. A
// complete structured dateValue is flattened to the same convention so one
// decode path serves both shapes.
func dateSource(e docai.Entity) string {
	if nv := e.NormalizedValue; nv != nil && nv.DateValue != nil {
		dv := nv.DateValue
		if dv.Year != 0 && dv.Month != 0 && dv.Day != 0 {
			return fmt.Sprintf("%d/%d/%d", dv.Month, dv.Day, dv.Year)
		}
	}
	return strings.TrimSpace(e.MentionText)
}
