package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/expensio/expense-docai/constants"
)

// Expense represents one receipt's expense record for data transfer between layers.
type Expense struct {
	ID              uuid.UUID               `json:"id"`
	MerchantName    *string                 `json:"merchant_name,omitempty"`
	TransactionDate *time.Time              `json:"transaction_date,omitempty"`
	Total           *decimal.Decimal        `json:"total,omitempty"`
	Status          constants.ExpenseStatus `json:"status"`
	ErrorMessage    *string                 `json:"error_message,omitempty"`
	FilePath        string                  `json:"file_path,omitempty"`
	FileExt         string                  `json:"file_ext,omitempty"`
	ContentHash     string                  `json:"content_hash,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	LineItems       []*LineItem             `json:"line_items,omitempty"`
}

// LineItem represents one normalized expense line for data transfer between layers.
type LineItem struct {
	ID          uuid.UUID       `json:"id"`
	ExpenseID   uuid.UUID       `json:"expense_id"`
	LineIndex   int             `json:"line_index"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	IsDiscount  bool            `json:"is_discount"`
}
