// Package portfolio implements the valuation, allocation, and CSV
// reconciliation engine. Every function here is a pure transformation over
// its inputs: no storage or network access, safe to call from concurrent
// handlers without coordination.
package portfolio

import (
	"github.com/shopspring/decimal"

	"github.com/declanharris/portfolio-tracker/internal/models"
)

// Valuate prices each holding with the quote for its symbol and produces an
// owner-level snapshot. A symbol missing from quotes, or a quote with no
// price, values at zero rather than failing the snapshot; the holding is
// flagged via PriceAvailable=false and still contributes its full cost to
// the profit/loss totals so the degraded state stays visible.
//
// Per-holding monetary fields are rounded to 2 decimal places. Totals are
// summed over the unrounded per-holding values and rounded once, so
// rounding error does not compound across large portfolios.
func Valuate(holdings []models.Holding, quotes map[string]models.Quote) models.PortfolioSnapshot {
	valued := make([]models.ValuedHolding, 0, len(holdings))
	totalValue := decimal.Zero
	totalCost := decimal.Zero

	for _, h := range holdings {
		price := decimal.Zero
		available := false
		if q, ok := quotes[h.Symbol]; ok && q.Price != nil {
			price = *q.Price
			available = true
		}

		value := h.Quantity.Mul(price)
		cost := h.Quantity.Mul(h.BuyPrice)
		totalValue = totalValue.Add(value)
		totalCost = totalCost.Add(cost)

		valued = append(valued, models.ValuedHolding{
			ID:             h.ID,
			OwnerID:        h.OwnerID,
			Symbol:         h.Symbol,
			Category:       h.Category,
			Quantity:       h.Quantity,
			BuyPrice:       h.BuyPrice,
			CurrentPrice:   price.Round(2),
			CurrentValue:   value.Round(2),
			CostBasis:      cost.Round(2),
			ProfitLoss:     value.Sub(cost).Round(2),
			PriceAvailable: available,
		})
	}

	return models.PortfolioSnapshot{
		Holdings:        valued,
		TotalValue:      totalValue.Round(2),
		TotalCost:       totalCost.Round(2),
		TotalProfitLoss: totalValue.Sub(totalCost).Round(2),
	}
}
