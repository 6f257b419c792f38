package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Log is a single income or expense entry. Amount is an unsigned magnitude;
// the direction of its effect on the balance comes from the category type.
type Log struct {
	Base
	Timestamp          time.Time       `gorm:"not null;index" json:"timestamp"`
	Amount             decimal.Decimal `gorm:"type:text;not null" json:"amount"`
	Notes              string          `json:"notes"`
	ExcludedFromReport bool            `gorm:"not null;default:false" json:"excluded_from_report"`
	CategoryID         string          `gorm:"type:uuid;not null;index" json:"category_id"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// SignedAmount returns the log's contribution to the balance for a category
// of the given type: negative for expenses, positive for income.
func SignedAmount(amount decimal.Decimal, t CategoryType) decimal.Decimal {
	if t == CategoryTypeExpense {
		return amount.Neg()
	}
	return amount
}
