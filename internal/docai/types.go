package docai

// Entity type tags recognized by the extraction core. Anything else in the
// response is carried through and ignored downstream.
const (
	TypeReceiptDate    = "receipt_date"
	TypeTotalAmount    = "total_amount"
	TypeSupplierName   = "supplier_name"
	TypeTotalTaxAmount = "total_tax_amount"
	TypeLineItem       = "line_item"

	TypeLineItemQuantity    = "line_item/quantity"
	TypeLineItemAmount      = "line_item/amount"
	TypeLineItemDescription = "line_item/description"
)

// ProcessResponse is the top-level shape of a document-understanding response.
// It is decoded exactly once, at the boundary; downstream code works on these
// typed values and never on raw maps.
type ProcessResponse struct {
	Document *Document `json:"document"`
}

// Document holds the recognized entity list for one processed receipt.
type Document struct {
	Text     string   `json:"text,omitempty"`
	Entities []Entity `json:"entities"`
}

// Entity is one recognized field or region from the response. Line items carry
// their quantity/amount/description as nested child entities in Properties.
type Entity struct {
	Type            string           `json:"type"`
	MentionText     string           `json:"mentionText,omitempty"`
	NormalizedValue *NormalizedValue `json:"normalizedValue,omitempty"`
	Properties      []Entity         `json:"properties,omitempty"`
}

// NormalizedValue is the machine-usable form of an entity. Exactly one of the
// variant fields is populated in practice, but none is guaranteed.
type NormalizedValue struct {
	Text       string      `json:"text,omitempty"`
	DateValue  *DateValue  `json:"dateValue,omitempty"`
	MoneyValue *MoneyValue `json:"moneyValue,omitempty"`
}

// DateValue is a structured calendar date.
type DateValue struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// MoneyValue is the split integer/fractional currency representation. Units is
// a string-encoded integer that may carry upstream artifacts (stray signs,
// malformed decimal points); Nanos is the fractional part scaled by 1e9.
type MoneyValue struct {
	CurrencyCode string `json:"currencyCode,omitempty"`
	Units        string `json:"units"`
	Nanos        *int64 `json:"nanos,omitempty"`
}
