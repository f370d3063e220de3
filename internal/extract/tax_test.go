package extract

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateTax(t *testing.T) {
	draft, ok := AggregateTax([]decimal.Decimal{
		decimal.RequireFromString("5.00"),
		decimal.RequireFromString("3.25"),
	})
	require.True(t, ok)
	assert.Equal(t, "Total Tax", draft.Description)
	assert.Equal(t, "1", draft.Quantity.String())
	assert.Equal(t, "8.25", draft.UnitPrice.StringFixed(2))
}

func TestAggregateTaxEmpty(t *testing.T) {
	_, ok := AggregateTax(nil)
	assert.False(t, ok)
}
