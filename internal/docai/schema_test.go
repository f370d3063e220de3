package docai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateResponseShape(t *testing.T) {
	valid := []string{
		`{}`,
		`{"document": {}}`,
		`{"document": {"entities": []}}`,
		`{"document": {"text": "x", "entities": [
			{"type": "line_item", "properties": [
				{"type": "line_item/amount",
				 "normalizedValue": {"moneyValue": {"currencyCode": "USD", "units": "5", "nanos": 0}}}
			]}
		]}}`,
		// unknown entity types and extra keys pass: only the skeleton is checked
		`{"document": {"entities": [{"type": "mystery", "confidence": 0.9}]}, "humanReviewStatus": {}}`,
	}
	for _, body := range valid {
		assert.NoError(t, ValidateResponseShape([]byte(body)), body)
	}

	invalid := []string{
		`[]`,
		`{"document": "not an object"}`,
		`{"document": {"entities": {"not": "an array"}}}`,
		`{"document": {"entities": [{"type": 42}]}}`,
		`{"document": {"entities": [{"normalizedValue": {"moneyValue": {"units": 5}}}]}}`,
		`{"document": {"entities": [{"normalizedValue": {"dateValue": {"year": "2024"}}}]}}`,
	}
	for _, body := range invalid {
		assert.Error(t, ValidateResponseShape([]byte(body)), body)
	}
}

func TestValidateResponseShapeRejectsBadJSON(t *testing.T) {
	assert.Error(t, ValidateResponseShape([]byte(`{broken`)))
}

func TestProcessResponseUnmarshal(t *testing.T) {
	body := `{"document": {"entities": [
		{"type": "receipt_date", "mentionText": "1/2/2024",
		 "normalizedValue": {"dateValue": {"year": 2024, "month": 1, "day": 2}}},
		{"type": "total_amount",
		 "normalizedValue": {"moneyValue": {"units": "-12", "nanos": 340000000}}}
	]}}`

	var resp ProcessResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.NotNil(t, resp.Document)
	require.Len(t, resp.Document.Entities, 2)

	date := resp.Document.Entities[0]
	require.NotNil(t, date.NormalizedValue)
	require.NotNil(t, date.NormalizedValue.DateValue)
	assert.Equal(t, 2024, date.NormalizedValue.DateValue.Year)

	money := resp.Document.Entities[1]
	require.NotNil(t, money.NormalizedValue.MoneyValue)
	assert.Equal(t, "-12", money.NormalizedValue.MoneyValue.Units)
	require.NotNil(t, money.NormalizedValue.MoneyValue.Nanos)
	assert.Equal(t, int64(340_000_000), *money.NormalizedValue.MoneyValue.Nanos)
}
