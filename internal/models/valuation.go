package models

import (
	"github.com/shopspring/decimal"
)

// ValuedHolding is a Holding priced with a live quote. All monetary fields
// are rounded to 2 decimal places; PriceAvailable distinguishes a genuinely
// worthless position from one whose quote could not be fetched.
type ValuedHolding struct {
	ID             uint            `json:"id"`
	OwnerID        string          `json:"owner_id"`
	Symbol         string          `json:"symbol"`
	Category       string          `json:"category"`
	Quantity       decimal.Decimal `json:"quantity"`
	BuyPrice       decimal.Decimal `json:"buy_price"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	CurrentValue   decimal.Decimal `json:"current_value"`
	CostBasis      decimal.Decimal `json:"cost_basis"`
	ProfitLoss     decimal.Decimal `json:"profit_loss"`
	PriceAvailable bool            `json:"price_available"`
}

// PortfolioSnapshot is the valuation of an owner's full holding list at a
// moment in time. Totals are summed before rounding so per-holding rounding
// error does not compound.
type PortfolioSnapshot struct {
	Holdings        []ValuedHolding `json:"holdings"`
	TotalValue      decimal.Decimal `json:"total_value"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	TotalProfitLoss decimal.Decimal `json:"total_profit_loss"`
}

// CategoryAllocation is one category's share of a snapshot's value.
// Categories appear in first-seen holding order; the label is used
// verbatim, including the empty string.
type CategoryAllocation struct {
	Category string          `json:"category"`
	Value    decimal.Decimal `json:"value"`
}

// PortfolioResponse is the dashboard payload: the snapshot plus its
// category allocation breakdown.
type PortfolioResponse struct {
	PortfolioSnapshot
	Allocation []CategoryAllocation `json:"allocation"`
}
