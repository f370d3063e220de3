package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensio/expense-docai/internal/docai"
)

func TestExtractEntitiesRouting(t *testing.T) {
	entities := []docai.Entity{
		{Type: docai.TypeSupplierName, MentionText: "Test Merchant"},
		{
			Type: docai.TypeReceiptDate,
			NormalizedValue: &docai.NormalizedValue{
				DateValue: &docai.DateValue{Year: 2024, Month: 1, Day: 15},
			},
		},
		moneyEntity(docai.TypeTotalAmount, "111", nanos(0)),
		moneyEntity(docai.TypeTotalTaxAmount, "5", nil),
		moneyEntity(docai.TypeTotalTaxAmount, "3", nanos(250_000_000)),
		{
			Type: docai.TypeLineItem,
			Properties: []docai.Entity{
				textEntity(docai.TypeLineItemDescription, "Test Item"),
				moneyEntity(docai.TypeLineItemAmount, "100", nanos(500_000_000)),
			},
		},
		{Type: "unrelated_tag", MentionText: "ignored"},
		{MentionText: "no type key, skipped"},
	}

	scratch := ExtractEntities(entities, nil)

	assert.Equal(t, "Test Merchant", scratch.MerchantName)
	assert.Equal(t, "1/15/2024", scratch.DateRaw)
	require.NotNil(t, scratch.Total)
	assert.Equal(t, "111.00", scratch.Total.StringFixed(2))
	require.Len(t, scratch.TaxAmounts, 2)
	assert.Equal(t, "5.00", scratch.TaxAmounts[0].StringFixed(2))
	assert.Equal(t, "3.25", scratch.TaxAmounts[1].StringFixed(2))
	require.Len(t, scratch.LineItems, 1)
	assert.Equal(t, "Test Item", scratch.LineItems[0].Description)
}

func TestExtractEntitiesSupplierFallback(t *testing.T) {
	scratch := ExtractEntities([]docai.Entity{
		{
			Type:            docai.TypeSupplierName,
			MentionText:     "   ",
			NormalizedValue: &docai.NormalizedValue{Text: "Canonical Merchant"},
		},
	}, nil)
	assert.Equal(t, "Canonical Merchant", scratch.MerchantName)
}

func TestExtractEntitiesDateFromMentionText(t *testing.T) {
	scratch := ExtractEntities([]docai.Entity{
		{Type: docai.TypeReceiptDate, MentionText: " 1/15/2024 "},
	}, nil)
	assert.Equal(t, "1/15/2024", scratch.DateRaw)
}

func TestExtractEntitiesMalformedEntityDegradesOneField(t *testing.T) {
	entities := []docai.Entity{
		moneyEntity(docai.TypeTotalAmount, "garbage", nil),
		{Type: docai.TypeTotalAmount},
		{Type: docai.TypeSupplierName, MentionText: "Still Extracted"},
	}
	scratch := ExtractEntities(entities, nil)
	assert.Nil(t, scratch.Total)
	assert.Equal(t, "Still Extracted", scratch.MerchantName)
}

func TestScratchHasData(t *testing.T) {
	assert.False(t, (&Scratch{}).HasData())
	assert.True(t, (&Scratch{MerchantName: "m"}).HasData())
	assert.True(t, (&Scratch{DateRaw: "1/2/2024"}).HasData())

	total, err := DecodeAmount("1", nil)
	require.NoError(t, err)
	assert.True(t, (&Scratch{Total: &total}).HasData())
}
