package api

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/declanharris/portfolio-tracker/internal/api/handlers"
	"github.com/declanharris/portfolio-tracker/internal/services"
	"github.com/declanharris/portfolio-tracker/internal/store"
)

func SetupRouter(holdings *store.HoldingStore, quoteService *services.QuoteService, quoteWorker *services.QuoteWorker, snapshotService *services.SnapshotService, history handlers.HistoryProvider) *gin.Engine {
	router := gin.Default()
	router.Use(handlers.Metrics())

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Owner-ID"}
	config.AllowCredentials = false // Explicitly set
	router.Use(cors.New(config))

	// Initialize handlers
	holdingHandler := handlers.NewHoldingHandler(holdings, quoteService, snapshotService)
	csvHandler := handlers.NewCSVHandler(holdings)
	quoteHandler := handlers.NewQuoteHandler(history, quoteWorker, holdings)

	// API routes; owner identity is required on everything owner-scoped
	api := router.Group("/api", handlers.OwnerRequired())
	{
		// Holding routes
		holdingsGroup := api.Group("/holdings")
		{
			holdingsGroup.GET("", holdingHandler.ListHoldings)
			holdingsGroup.POST("", holdingHandler.AddHolding)
			holdingsGroup.PUT("/:id", holdingHandler.UpdateHolding)
			holdingsGroup.DELETE("/:id", holdingHandler.DeleteHolding)
			holdingsGroup.GET("/export", csvHandler.ExportHoldings)
			holdingsGroup.POST("/import", csvHandler.ImportHoldings)
		}

		// Portfolio routes
		portfolioGroup := api.Group("/portfolio")
		{
			portfolioGroup.GET("", holdingHandler.GetPortfolio)
			portfolioGroup.GET("/history", holdingHandler.GetValueHistory)
			portfolioGroup.POST("/snapshot", holdingHandler.TakeSnapshot)
		}

		// Quote routes
		quotesGroup := api.Group("/quotes")
		{
			quotesGroup.GET("/:symbol/history", quoteHandler.GetSymbolHistory)
			quotesGroup.POST("/refresh", quoteHandler.RefreshQuotes)
			quotesGroup.GET("/status", quoteHandler.GetQuoteStatus)
		}
	}

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router
}
