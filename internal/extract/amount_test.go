package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nanos(n int64) *int64 { return &n }

func TestDecodeAmount(t *testing.T) {
	tests := []struct {
		name  string
		units string
		nanos *int64
		want  string
	}{
		{"integer with nanos", "100", nanos(500_000_000), "100.50"},
		{"no nanos", "42", nil, "42.00"},
		{"single digit cents padded", "7", nanos(50_000_000), "7.05"},
		{"negative units", "-5", nanos(250_000_000), "-5.25"},
		{"negative nanos ignored for sign", "3", nanos(-750_000_000), "3.75"},
		{"zero", "0", nil, "0.00"},
		{"sign after decimal point artifact", "12.-50", nil, "12.50"},
		{"plus after decimal point artifact", "12.+50", nil, "12.50"},
		{"negative with artifact", "-12.-50", nil, "-12.50"},
		{"surrounding whitespace", " 19 ", nanos(990_000_000), "19.99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeAmount(tt.units, tt.nanos)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestDecodeAmountMalformed(t *testing.T) {
	for _, units := range []string{"", "abc", "12x", "--5", "12.34.56"} {
		t.Run(units, func(t *testing.T) {
			_, err := DecodeAmount(units, nil)
			require.ErrorIs(t, err, ErrMalformedAmount)
		})
	}
}

func TestDecodeAbsolute(t *testing.T) {
	got, err := DecodeAbsolute("-10", nanos(500_000_000))
	require.NoError(t, err)
	assert.Equal(t, "10.50", got.StringFixed(2))

	got, err = DecodeAbsolute("10", nil)
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.StringFixed(2))

	_, err = DecodeAbsolute("not-a-number", nil)
	require.ErrorIs(t, err, ErrMalformedAmount)
}
