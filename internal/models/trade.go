package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Asset classes a trade can belong to.
const (
	AssetStock  = "stock"
	AssetOption = "option"
	AssetFuture = "future"
	AssetForex  = "forex"
	AssetCrypto = "crypto"
	AssetOther  = "other"
)

// Trade directions.
const (
	DirectionLong  = "long"
	DirectionShort = "short"
)

// Trade statuses. Status is derived: a trade is closed iff both exit
// price and exit date are present.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Trade is a single trade record. PnL, PnLPercentage, RMultiple and
// Status are derived fields owned by the ledger; they are never set
// directly by callers.
type Trade struct {
	ID        string `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string `gorm:"type:varchar(36);not null;index" json:"userId"`
	AccountID string `gorm:"type:varchar(36);not null;index" json:"accountId"`

	Symbol     string `gorm:"type:varchar(32);not null;index" json:"symbol"`
	AssetClass string `gorm:"type:varchar(16);not null;default:stock" json:"assetClass"`
	Direction  string `gorm:"type:varchar(8);not null" json:"direction"`

	Quantity   decimal.Decimal  `gorm:"type:numeric(30,10);not null" json:"quantity"`
	EntryPrice decimal.Decimal  `gorm:"type:numeric(30,10);not null" json:"entryPrice"`
	EntryDate  time.Time        `gorm:"not null;index" json:"entryDate"`
	ExitPrice  *decimal.Decimal `gorm:"type:numeric(30,10)" json:"exitPrice,omitempty"`
	ExitDate   *time.Time       `gorm:"index" json:"exitDate,omitempty"`
	StopLoss   *decimal.Decimal `gorm:"type:numeric(30,10)" json:"stopLoss,omitempty"`
	TakeProfit *decimal.Decimal `gorm:"type:numeric(30,10)" json:"takeProfit,omitempty"`
	Fees       decimal.Decimal  `gorm:"type:numeric(30,10);not null" json:"fees"`

	// Explicit column names because default GORM naming turns "PnL" into "pn_l".
	PnL           decimal.Decimal  `gorm:"column:pnl;type:numeric(30,10);not null" json:"pnl"`
	PnLPercentage decimal.Decimal  `gorm:"column:pnl_percentage;type:numeric(30,10);not null" json:"pnlPercentage"`
	RMultiple     *decimal.Decimal `gorm:"column:r_multiple;type:numeric(30,10)" json:"rMultiple,omitempty"`
	Status        string           `gorm:"type:varchar(8);not null;index" json:"status"`

	SetupID  *string        `gorm:"type:varchar(36);index" json:"setupId,omitempty"`
	Tags     datatypes.JSON `json:"tags,omitempty"`
	Mistakes datatypes.JSON `json:"mistakes,omitempty"`
	Notes    string         `gorm:"type:text" json:"notes,omitempty"`
	Rating   *int           `json:"rating,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidAssetClass reports whether s is a known asset class.
func ValidAssetClass(s string) bool {
	switch s {
	case AssetStock, AssetOption, AssetFuture, AssetForex, AssetCrypto, AssetOther:
		return true
	}
	return false
}

// ValidDirection reports whether s is a known trade direction.
func ValidDirection(s string) bool {
	return s == DirectionLong || s == DirectionShort
}

// JSONList marshals a string slice into a JSON column value. A nil or
// empty slice becomes an empty JSON array, never SQL NULL.
func JSONList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	raw, _ := json.Marshal(items)
	return datatypes.JSON(raw)
}

// ListFromJSON is the inverse of JSONList. Malformed payloads decode to nil.
func ListFromJSON(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}
