package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrMalformedAmount reports a units string that is not numeric after cleanup.
var ErrMalformedAmount = errors.New("malformed amount")

// signAfterPoint matches the known upstream artifact where a sign character
// lands after the decimal point inside units, e.g. "12.-50". The sign is
// dropped before any sign detection happens.
var signAfterPoint = regexp.MustCompile(`\.[-+]`)

// nanosPerCent scales a nanos value (fractional part * 1e9) down to cents.
const nanosPerCent = 10_000_000

// DecodeAmount collapses the split integer/fractional money representation
// into one signed decimal with two fractional digits. Sign is taken from the
// cleaned units string; nanos contributes abs(nanos)/1e7 cents.
func DecodeAmount(units string, nanos *int64) (decimal.Decimal, error) {
	magnitude, neg, err := decodeParts(units, nanos)
	if err != nil {
		return decimal.Zero, err
	}
	if neg {
		return magnitude.Neg(), nil
	}
	return magnitude, nil
}

// DecodeAbsolute returns the unsigned magnitude of the same representation.
// Call sites use this when discount semantics are decided from context rather
// than from the local sign.
func DecodeAbsolute(units string, nanos *int64) (decimal.Decimal, error) {
	magnitude, _, err := decodeParts(units, nanos)
	if err != nil {
		return decimal.Zero, err
	}
	return magnitude, nil
}

func decodeParts(units string, nanos *int64) (decimal.Decimal, bool, error) {
	cleaned := signAfterPoint.ReplaceAllString(strings.TrimSpace(units), ".")
	neg := strings.HasPrefix(cleaned, "-")

	base, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: units %q: %v", ErrMalformedAmount, units, err)
	}

	var cents int64
	if nanos != nil {
		n := *nanos
		if n < 0 {
			n = -n
		}
		cents = n / nanosPerCent
	}

	magnitude := base.Abs().Add(decimal.New(cents, -2)).Round(2)
	return magnitude, neg, nil
}
