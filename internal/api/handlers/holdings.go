package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/declanharris/portfolio-tracker/internal/models"
	"github.com/declanharris/portfolio-tracker/internal/portfolio"
	"github.com/declanharris/portfolio-tracker/internal/services"
	"github.com/declanharris/portfolio-tracker/internal/store"
)

type HoldingHandler struct {
	holdings        *store.HoldingStore
	quoteService    *services.QuoteService
	snapshotService *services.SnapshotService
}

func NewHoldingHandler(holdings *store.HoldingStore, quoteService *services.QuoteService, snapshotService *services.SnapshotService) *HoldingHandler {
	return &HoldingHandler{
		holdings:        holdings,
		quoteService:    quoteService,
		snapshotService: snapshotService,
	}
}

func (h *HoldingHandler) ListHoldings(c *gin.Context) {
	holdings, err := h.holdings.ListByOwner(ownerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, holdings)
}

func (h *HoldingHandler) AddHolding(c *gin.Context) {
	var req models.AddHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol must not be empty"})
		return
	}
	if req.Quantity.IsNegative() || req.BuyPrice.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity and buy_price must not be negative"})
		return
	}

	holding := models.Holding{
		OwnerID:  ownerID(c),
		Symbol:   symbol,
		Category: strings.TrimSpace(req.Category),
		Quantity: req.Quantity,
		BuyPrice: req.BuyPrice,
	}
	if err := h.holdings.Insert(&holding); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, holding)
}

func (h *HoldingHandler) UpdateHolding(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req models.UpdateHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity != nil && req.Quantity.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must not be negative"})
		return
	}
	if req.BuyPrice != nil && req.BuyPrice.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "buy_price must not be negative"})
		return
	}

	holding, err := h.holdings.Update(uint(id), ownerID(c), req)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "holding not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, holding)
}

func (h *HoldingHandler) DeleteHolding(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	err = h.holdings.Delete(uint(id), ownerID(c))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "holding not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// GetPortfolio is the dashboard endpoint: the owner's holdings priced with
// live quotes, plus totals and the category allocation breakdown.
func (h *HoldingHandler) GetPortfolio(c *gin.Context) {
	owner := ownerID(c)

	holdings, err := h.holdings.ListByOwner(owner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	symbols := make([]string, 0, len(holdings))
	for _, holding := range holdings {
		symbols = append(symbols, holding.Symbol)
	}
	quotes := h.quoteService.GetQuotes(c.Request.Context(), symbols)

	snapshot := portfolio.Valuate(holdings, quotes)
	c.JSON(http.StatusOK, models.PortfolioResponse{
		PortfolioSnapshot: snapshot,
		Allocation:        portfolio.Aggregate(snapshot),
	})
}

// GetValueHistory returns the owner's daily value snapshots for charting
func (h *HoldingHandler) GetValueHistory(c *gin.Context) {
	period := c.DefaultQuery("period", "month")

	snapshots, err := h.snapshotService.GetHistory(ownerID(c), period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.ValueHistoryResponse{
		Snapshots: snapshots,
		Period:    period,
	})
}

// TakeSnapshot records a value snapshot for the owner right now instead of
// waiting for the scheduled daily run.
func (h *HoldingHandler) TakeSnapshot(c *gin.Context) {
	snapshot, err := h.snapshotService.TakeSnapshotFor(c.Request.Context(), ownerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
