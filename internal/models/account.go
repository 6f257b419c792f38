package models

import "github.com/shopspring/decimal"

// Account holds the single running balance of the ledger.
//
// Balance is a cached total: every log mutation adjusts it by the log's signed
// amount inside the same database transaction.
type Account struct {
	Base
	Name    *string         `json:"name,omitempty"`
	Balance decimal.Decimal `gorm:"type:text;not null;default:'0'" json:"balance"`
}

// DisplayName returns the account name or a placeholder when it was never set.
func (a *Account) DisplayName() string {
	if a.Name == nil || *a.Name == "" {
		return "Nameless"
	}
	return *a.Name
}
