package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/declanharris/portfolio-tracker/internal/models"
	"github.com/declanharris/portfolio-tracker/internal/services"
	"github.com/declanharris/portfolio-tracker/internal/store"
)

// HistoryProvider supplies daily close series for the price chart endpoint.
type HistoryProvider interface {
	GetHistory(ctx context.Context, symbol, rng string) ([]models.PricePoint, error)
}

type QuoteHandler struct {
	history  HistoryProvider
	worker   *services.QuoteWorker
	holdings *store.HoldingStore
}

func NewQuoteHandler(history HistoryProvider, worker *services.QuoteWorker, holdings *store.HoldingStore) *QuoteHandler {
	return &QuoteHandler{
		history:  history,
		worker:   worker,
		holdings: holdings,
	}
}

var allowedRanges = map[string]bool{
	"1mo": true,
	"3mo": true,
	"6mo": true,
	"1y":  true,
}

// GetSymbolHistory returns a symbol's daily close series for charting.
func (h *QuoteHandler) GetSymbolHistory(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}

	rng := c.DefaultQuery("range", "6mo")
	if !allowedRanges[rng] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "range must be one of 1mo, 3mo, 6mo, 1y"})
		return
	}

	points, err := h.history.GetHistory(c.Request.Context(), symbol, rng)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.PriceHistoryResponse{
		Symbol: symbol,
		Range:  rng,
		Points: points,
	})
}

// RefreshQuotes queues the owner's held symbols for urgent refresh.
func (h *QuoteHandler) RefreshQuotes(c *gin.Context) {
	holdings, err := h.holdings.ListByOwner(ownerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	queued := 0
	seen := make(map[string]bool, len(holdings))
	for _, holding := range holdings {
		if seen[holding.Symbol] {
			continue
		}
		seen[holding.Symbol] = true
		h.worker.QueueRefresh(holding.Symbol)
		queued++
	}

	c.JSON(http.StatusOK, gin.H{"queued": queued})
}

// GetQuoteStatus reports worker progress and cache occupancy.
func (h *QuoteHandler) GetQuoteStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.worker.Status())
}
