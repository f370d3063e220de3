package extract

import "github.com/shopspring/decimal"

// Synthetic line item label for the aggregated tax entry.
const totalTaxLabel = "Total Tax"

// AggregateTax sums all discovered tax amounts into one synthetic draft,
// appended by the pipeline after every other line item. An empty sequence
// yields no draft.
func AggregateTax(amounts []decimal.Decimal) (LineItemDraft, bool) {
	if len(amounts) == 0 {
		return LineItemDraft{}, false
	}
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return LineItemDraft{
		Description: totalTaxLabel,
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   sum,
	}, true
}
