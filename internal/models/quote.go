package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is an externally sourced price for a symbol. Price is nil when the
// provider could not supply one (unknown symbol, fetch failure, timeout).
// Quotes are fetched fresh per request and never persisted.
type Quote struct {
	Symbol string           `json:"symbol"`
	Price  *decimal.Decimal `json:"price"`
	AsOf   time.Time        `json:"as_of"`
}

// Available reports whether the quote carries a usable price.
func (q Quote) Available() bool {
	return q.Price != nil
}

// PricePoint is a single day in a symbol's close-price history.
type PricePoint struct {
	Date  string          `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// PriceHistoryResponse is the API response for a symbol's close series.
type PriceHistoryResponse struct {
	Symbol string       `json:"symbol"`
	Range  string       `json:"range"`
	Points []PricePoint `json:"points"`
}
