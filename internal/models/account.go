package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account types.
const (
	AccountCash    = "cash"
	AccountMargin  = "margin"
	AccountIRA     = "ira"
	AccountCrypto  = "crypto"
	AccountForex   = "forex"
	AccountFutures = "futures"
)

// Account is a capital pool. CurrentBalance always equals InitialBalance
// plus the realized P&L of the account's closed trades, shifted by any
// explicit initial-balance edits. Currency is a label and is never
// converted.
type Account struct {
	ID     string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID string `gorm:"type:varchar(36);not null;index" json:"userId"`

	Name        string `gorm:"type:varchar(128);not null" json:"name"`
	Broker      string `gorm:"type:varchar(128);not null" json:"broker"`
	AccountType string `gorm:"type:varchar(16);not null;default:cash" json:"accountType"`
	Currency    string `gorm:"type:varchar(8);not null;default:USD" json:"currency"`

	InitialBalance decimal.Decimal `gorm:"type:numeric(30,10);not null" json:"initialBalance"`
	CurrentBalance decimal.Decimal `gorm:"type:numeric(30,10);not null" json:"currentBalance"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidAccountType reports whether s is a known account type.
func ValidAccountType(s string) bool {
	switch s {
	case AccountCash, AccountMargin, AccountIRA, AccountCrypto, AccountForex, AccountFutures:
		return true
	}
	return false
}
