package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/declanharris/portfolio-tracker/internal/api"
	"github.com/declanharris/portfolio-tracker/internal/database"
	"github.com/declanharris/portfolio-tracker/internal/quotes"
	"github.com/declanharris/portfolio-tracker/internal/services"
	"github.com/declanharris/portfolio-tracker/internal/store"
)

func main() {
	// Local development config; real deployments set the environment
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./portfolio_tracker.db"
	}

	// Initialize database
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	holdingStore := store.NewHoldingStore(database.GetDB())

	// Initialize the quote provider client
	var clientOpts []quotes.Option
	if baseURL := os.Getenv("QUOTE_API_BASE_URL"); baseURL != "" {
		clientOpts = append(clientOpts, quotes.WithBaseURL(baseURL))
	}
	quoteClient := quotes.NewClient(clientOpts...)

	// Quote service with TTL cache in front of the provider
	cacheTTL := 5 * time.Minute
	if ttlStr := os.Getenv("QUOTE_CACHE_TTL"); ttlStr != "" {
		if ttl, err := time.ParseDuration(ttlStr); err == nil {
			cacheTTL = ttl
		}
	}
	quoteService := services.NewQuoteService(quoteClient, cacheTTL)

	// Background workers
	quoteWorker := services.NewQuoteWorker(quoteService, holdingStore)
	snapshotService := services.NewSnapshotService(holdingStore, quoteService)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start quote worker in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("PANIC in quote worker: %v - restarting in 30 seconds", r)
					}
				}()
				quoteWorker.Start(ctx)
			}()

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				log.Println("Quote worker restarting after panic recovery...")
			}
		}
	}()

	// Start snapshot service in background
	go snapshotService.Start(ctx)

	// Setup router
	router := api.SetupRouter(holdingStore, quoteService, quoteWorker, snapshotService, quoteClient)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the background workers
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
