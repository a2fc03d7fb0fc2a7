package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioValueSnapshot stores an owner's daily portfolio value for
// historical tracking
type PortfolioValueSnapshot struct {
	ID           uint            `json:"id" gorm:"primaryKey;autoIncrement"`
	OwnerID      string          `json:"owner_id" gorm:"not null;uniqueIndex:idx_owner_snapshot_date"`
	SnapshotDate time.Time       `json:"snapshot_date" gorm:"not null;uniqueIndex:idx_owner_snapshot_date"`
	TotalValue   decimal.Decimal `json:"total_value" gorm:"type:decimal(20,2)"`
	TotalCost    decimal.Decimal `json:"total_cost" gorm:"type:decimal(20,2)"`
	ProfitLoss   decimal.Decimal `json:"profit_loss" gorm:"type:decimal(20,2)"`
	HoldingCount int             `json:"holding_count"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ValueHistoryResponse is the API response for portfolio value history
type ValueHistoryResponse struct {
	Snapshots []PortfolioValueSnapshot `json:"snapshots"`
	Period    string                   `json:"period"` // "week", "month", "year", "all"
}
