package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensio/expense-docai/internal/docai"
)

func moneyEntity(typ, units string, n *int64) docai.Entity {
	return docai.Entity{
		Type: typ,
		NormalizedValue: &docai.NormalizedValue{
			MoneyValue: &docai.MoneyValue{Units: units, Nanos: n},
		},
	}
}

func textEntity(typ, text string) docai.Entity {
	return docai.Entity{Type: typ, MentionText: text}
}

func TestBuildLineItem(t *testing.T) {
	e := docai.Entity{
		Type:        docai.TypeLineItem,
		MentionText: "2 Widget 100.50",
		Properties: []docai.Entity{
			textEntity(docai.TypeLineItemDescription, "Widget"),
			textEntity(docai.TypeLineItemQuantity, "2"),
			moneyEntity(docai.TypeLineItemAmount, "100", nanos(500_000_000)),
		},
	}
	draft, ok := BuildLineItem(e, nil)
	require.True(t, ok)
	assert.Equal(t, "Widget", draft.Description)
	assert.Equal(t, "2", draft.Quantity.String())
	assert.Equal(t, "100.50", draft.UnitPrice.StringFixed(2))
	assert.False(t, draft.IsDiscount)
}

func TestBuildLineItemDescriptionPrecedence(t *testing.T) {
	// property-level description wins over the entity-level mention text
	e := docai.Entity{
		Type:        docai.TypeLineItem,
		MentionText: "entity mention",
		Properties: []docai.Entity{
			moneyEntity(docai.TypeLineItemAmount, "5", nil),
			textEntity(docai.TypeLineItemDescription, "property description"),
		},
	}
	draft, ok := BuildLineItem(e, nil)
	require.True(t, ok)
	assert.Equal(t, "property description", draft.Description)

	// no property description: keep the entity mention text
	e.Properties = e.Properties[:1]
	draft, ok = BuildLineItem(e, nil)
	require.True(t, ok)
	assert.Equal(t, "entity mention", draft.Description)
}

func TestBuildLineItemDiscount(t *testing.T) {
	e := docai.Entity{
		Type: docai.TypeLineItem,
		Properties: []docai.Entity{
			moneyEntity(docai.TypeLineItemAmount, "-10", nanos(0)),
		},
	}
	draft, ok := BuildLineItem(e, nil)
	require.True(t, ok)
	assert.Equal(t, "Discount", draft.Description)
	assert.Equal(t, "1", draft.Quantity.String())
	assert.Equal(t, "-10.00", draft.UnitPrice.StringFixed(2))
	assert.True(t, draft.IsDiscount)
}

func TestBuildLineItemDiscountWithDescription(t *testing.T) {
	e := docai.Entity{
		Type: docai.TypeLineItem,
		Properties: []docai.Entity{
			textEntity(docai.TypeLineItemDescription, "Member Savings"),
			moneyEntity(docai.TypeLineItemAmount, "-3", nanos(250_000_000)),
		},
	}
	draft, ok := BuildLineItem(e, nil)
	require.True(t, ok)
	assert.Equal(t, "Discount - Member Savings", draft.Description)
	assert.Equal(t, "-3.25", draft.UnitPrice.StringFixed(2))
	assert.True(t, draft.IsDiscount)
}

func TestBuildLineItemNoAmountDropped(t *testing.T) {
	e := docai.Entity{
		Type:        docai.TypeLineItem,
		MentionText: "Item without a price",
		Properties: []docai.Entity{
			textEntity(docai.TypeLineItemQuantity, "3"),
		},
	}
	_, ok := BuildLineItem(e, nil)
	assert.False(t, ok)

	// an amount property that fails to decode counts as no amount
	e.Properties = append(e.Properties, moneyEntity(docai.TypeLineItemAmount, "not-money", nil))
	_, ok = BuildLineItem(e, nil)
	assert.False(t, ok)
}

func TestBuildLineItemBlankDescription(t *testing.T) {
	e := docai.Entity{
		Type:        docai.TypeLineItem,
		MentionText: "   ",
		Properties: []docai.Entity{
			moneyEntity(docai.TypeLineItemAmount, "9", nanos(990_000_000)),
		},
	}
	draft, ok := BuildLineItem(e, nil)
	require.True(t, ok)
	assert.Equal(t, "Unknown Item", draft.Description)
}

func TestBuildLineItemQuantity(t *testing.T) {
	build := func(qty string) LineItemDraft {
		e := docai.Entity{
			Type: docai.TypeLineItem,
			Properties: []docai.Entity{
				textEntity(docai.TypeLineItemQuantity, qty),
				moneyEntity(docai.TypeLineItemAmount, "1", nil),
			},
		}
		draft, ok := BuildLineItem(e, nil)
		require.True(t, ok)
		return draft
	}

	assert.Equal(t, "2.5", build("2.5").Quantity.String())
	assert.Equal(t, "0", build("0").Quantity.String())
	// invalid quantity text is non-fatal: default of 1 applies
	assert.Equal(t, "1", build("two").Quantity.String())
	assert.Equal(t, "1", build("-4").Quantity.String())
	assert.Equal(t, "1", build("").Quantity.String())
}
