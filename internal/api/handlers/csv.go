package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/declanharris/portfolio-tracker/internal/metrics"
	"github.com/declanharris/portfolio-tracker/internal/models"
	"github.com/declanharris/portfolio-tracker/internal/portfolio"
	"github.com/declanharris/portfolio-tracker/internal/store"
)

type CSVHandler struct {
	holdings *store.HoldingStore
}

func NewCSVHandler(holdings *store.HoldingStore) *CSVHandler {
	return &CSVHandler{holdings: holdings}
}

// ExportHoldings streams the owner's holdings as a CSV attachment. The
// output re-imports without modification.
func (h *CSVHandler) ExportHoldings(c *gin.Context) {
	holdings, err := h.holdings.ListByOwner(ownerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, err := portfolio.Serialize(holdings)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="portfolio.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ImportHoldings parses an uploaded CSV and inserts every valid row as a
// new holding under the requesting owner. The whole batch is parsed before
// anything is inserted, so a malformed row aborts with zero rows written.
// If the store fails mid-batch, the response reports exactly how many rows
// made it in.
func (h *CSVHandler) ImportHoldings(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file selected"})
		return
	}

	reader, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer reader.Close()

	candidates, skipped, err := portfolio.Parse(reader, ownerID(c))
	var rowErr *portfolio.MalformedRowError
	if errors.As(err, &rowErr) {
		metrics.ImportsTotal.WithLabelValues("malformed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         rowErr.Error(),
			"row":           rowErr.Line,
			"rows_imported": 0,
		})
		return
	}
	if err != nil {
		metrics.ImportsTotal.WithLabelValues("malformed").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "rows_imported": 0})
		return
	}

	inserted, err := h.holdings.InsertBatch(candidates)
	metrics.ImportRowsTotal.Add(float64(inserted))
	if err != nil {
		metrics.ImportsTotal.WithLabelValues("failed").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":         fmt.Sprintf("import stopped after %d of %d rows: %v", inserted, len(candidates), err),
			"rows_imported": inserted,
		})
		return
	}

	metrics.ImportsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, models.ImportResult{
		BatchID:      uuid.New().String(),
		RowsImported: inserted,
		RowsSkipped:  skipped,
	})
}
