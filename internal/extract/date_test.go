package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensio/expense-docai/internal/docai"
)

func TestDecodeDateStructured(t *testing.T) {
	e := docai.Entity{
		Type:        docai.TypeReceiptDate,
		MentionText: "garbage",
		NormalizedValue: &docai.NormalizedValue{
			DateValue: &docai.DateValue{Year: 2024, Month: 1, Day: 15},
		},
	}
	got, ok := DecodeDate(e)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestDecodeDateFallsBackToMentionText(t *testing.T) {
	e := docai.Entity{
		Type:        docai.TypeReceiptDate,
		MentionText: "1/15/2024",
		NormalizedValue: &docai.NormalizedValue{
			// incomplete structured value forces the free-text path
			DateValue: &docai.DateValue{Year: 2024, Month: 1},
		},
	}
	got, ok := DecodeDate(e)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), got)
}

func TestParseMDY(t *testing.T) {
	got, ok := ParseMDY("1/15/2024")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), got)

	// month/day/year is positional; swapped fields must fail, not reinterpret
	_, ok = ParseMDY("15/1/2024")
	assert.False(t, ok)
}

func TestParseMDYInvalid(t *testing.T) {
	for _, s := range []string{"", "1/15", "a/b/c", "1/x/2024", "2/30/2024", "0/1/2024", "1/0/2024"} {
		t.Run(s, func(t *testing.T) {
			_, ok := ParseMDY(s)
			assert.False(t, ok)
		})
	}
}
