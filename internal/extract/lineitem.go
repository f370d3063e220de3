package extract

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/expensio/expense-docai/internal/docai"
)

// Fallback labels for drafts whose description could not be resolved.
const (
	unknownItemLabel = "Unknown Item"
	discountLabel    = "Discount"
	discountPrefix   = "Discount - "
)

// LineItemDraft is an unpersisted candidate line item pending assembly into
// the final payload.
type LineItemDraft struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	IsDiscount  bool
}

// BuildLineItem converts one line_item entity, scanning its child properties
// for quantity, amount, and description. A draft is emitted only when an
// amount decoded successfully; a line item with no price carries no accounting
// value and is dropped.
func BuildLineItem(e docai.Entity, logger *slog.Logger) (LineItemDraft, bool) {
	if logger == nil {
		logger = slog.Default()
	}

	description := e.MentionText
	quantityText := "1"

	var (
		amount     decimal.Decimal
		hasAmount  bool
		isDiscount bool
	)

	for _, child := range e.Properties {
		switch child.Type {
		case docai.TypeLineItemQuantity:
			quantityText = child.MentionText
		case docai.TypeLineItemAmount:
			mv := moneyValueOf(child)
			if mv == nil {
				continue
			}
			signed, err := DecodeAmount(mv.Units, mv.Nanos)
			if err != nil {
				logger.Warn("extract.line_item.bad_amount", "units", mv.Units, "error", err)
				continue
			}
			isDiscount = signed.Sign() < 0
			if isDiscount {
				// Context decided discount semantics; take the magnitude and
				// force the sign ourselves.
				abs, err := DecodeAbsolute(mv.Units, mv.Nanos)
				if err != nil {
					continue
				}
				amount = abs.Neg()
			} else {
				amount = signed
			}
			hasAmount = true
		case docai.TypeLineItemDescription:
			// Property-level description wins over the entity-level mention text.
			description = child.MentionText
		}
	}

	if !hasAmount {
		return LineItemDraft{}, false
	}

	description = strings.TrimSpace(description)
	if isDiscount {
		if description == "" {
			description = discountLabel
		} else {
			description = discountPrefix + description
		}
	}
	if description == "" {
		description = unknownItemLabel
	}

	return LineItemDraft{
		Description: description,
		Quantity:    parseQuantity(quantityText, logger),
		UnitPrice:   amount,
		IsDiscount:  isDiscount,
	}, true
}

// parseQuantity parses the quantity mention text as a decimal >= 0. Invalid
// text is non-fatal; the default of 1 applies.
func parseQuantity(s string, logger *slog.Logger) decimal.Decimal {
	q, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || q.Sign() < 0 {
		if s != "" && s != "1" {
			logger.Warn("extract.line_item.bad_quantity", "quantity", s)
		}
		return decimal.NewFromInt(1)
	}
	return q
}

// moneyValueOf pulls the moneyValue variant out of an entity, or nil.
func moneyValueOf(e docai.Entity) *docai.MoneyValue {
	if e.NormalizedValue == nil {
		return nil
	}
	return e.NormalizedValue.MoneyValue
}
