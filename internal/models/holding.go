package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding represents a single position owned by an account: a ticker
// symbol, how many units are held, and the cost basis per unit.
type Holding struct {
	ID        uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	OwnerID   string          `json:"owner_id" gorm:"not null;index"`
	Symbol    string          `json:"symbol" gorm:"not null"`
	Category  string          `json:"category"`
	Quantity  decimal.Decimal `json:"quantity" gorm:"type:decimal(20,8);not null"`
	BuyPrice  decimal.Decimal `json:"buy_price" gorm:"type:decimal(20,8);not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type AddHoldingRequest struct {
	Symbol   string          `json:"symbol" binding:"required"`
	Category string          `json:"category"`
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
	BuyPrice decimal.Decimal `json:"buy_price" binding:"required"`
}

// UpdateHoldingRequest carries partial updates. Nil fields are left
// unchanged; OwnerID and Symbol are immutable after creation.
type UpdateHoldingRequest struct {
	Category *string          `json:"category"`
	Quantity *decimal.Decimal `json:"quantity"`
	BuyPrice *decimal.Decimal `json:"buy_price"`
}

type ImportResult struct {
	BatchID      string `json:"batch_id"`
	RowsImported int    `json:"rows_imported"`
	RowsSkipped  int    `json:"rows_skipped"`
}
