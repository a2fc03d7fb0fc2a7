package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/declanharris/portfolio-tracker/internal/database"
	"github.com/declanharris/portfolio-tracker/internal/metrics"
	"github.com/declanharris/portfolio-tracker/internal/models"
	"github.com/declanharris/portfolio-tracker/internal/portfolio"
	"github.com/declanharris/portfolio-tracker/internal/store"
)

// SnapshotService records each owner's daily portfolio value for history
// charting
type SnapshotService struct {
	mu            sync.RWMutex
	holdings      *store.HoldingStore
	quoteService  *QuoteService
	lastSnapshot  time.Time
	snapshotHour  int // Hour of day to take snapshots (0-23)
	checkInterval time.Duration
}

func NewSnapshotService(holdings *store.HoldingStore, quoteService *QuoteService) *SnapshotService {
	return &SnapshotService{
		holdings:      holdings,
		quoteService:  quoteService,
		snapshotHour:  23, // Default: 11 PM
		checkInterval: 15 * time.Minute,
	}
}

// Start begins the background snapshot worker
func (s *SnapshotService) Start(ctx context.Context) {
	log.Println("Snapshot service started: will record daily portfolio values")

	// Check if we need snapshots for today on startup
	s.checkAndSnapshot(ctx)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Snapshot service stopping...")
			return
		case <-ticker.C:
			s.checkAndSnapshot(ctx)
		}
	}
}

func (s *SnapshotService) checkAndSnapshot(ctx context.Context) {
	now := time.Now()
	if now.Hour() < s.snapshotHour {
		return
	}
	if err := s.TakeSnapshots(ctx); err != nil {
		log.Printf("Snapshot service: failed to take snapshots: %v", err)
	}
}

// hasSnapshotForDate checks if an owner already has a snapshot for the date
func (s *SnapshotService) hasSnapshotForDate(ownerID string, date time.Time) bool {
	db := database.GetDB()

	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	var count int64
	db.Model(&models.PortfolioValueSnapshot{}).
		Where("owner_id = ? AND snapshot_date >= ? AND snapshot_date < ?", ownerID, startOfDay, endOfDay).
		Count(&count)

	return count > 0
}

// TakeSnapshots records the current portfolio value for every owner that
// does not yet have a snapshot for today. One owner failing does not stop
// the rest.
func (s *SnapshotService) TakeSnapshots(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owners, err := s.holdings.DistinctOwners()
	if err != nil {
		return err
	}
	metrics.OwnersTracked.Set(float64(len(owners)))

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	totalHoldings := 0
	for _, ownerID := range owners {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if s.hasSnapshotForDate(ownerID, today) {
			continue
		}
		count, err := s.snapshotOwner(ctx, ownerID, today)
		if err != nil {
			log.Printf("Snapshot service: failed to snapshot owner %s: %v", ownerID, err)
			continue
		}
		totalHoldings += count
	}
	metrics.HoldingsTracked.Set(float64(totalHoldings))

	s.lastSnapshot = now
	return nil
}

// TakeSnapshotFor records a snapshot for one owner regardless of timing
// (manual trigger), upserting today's row. Holds the same lock as the
// scheduled run so the two cannot race on the non-atomic upsert.
func (s *SnapshotService) TakeSnapshotFor(ctx context.Context, ownerID string) (*models.PortfolioValueSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if _, err := s.snapshotOwner(ctx, ownerID, today); err != nil {
		return nil, err
	}

	db := database.GetDB()
	var snapshot models.PortfolioValueSnapshot
	if err := db.Where("owner_id = ? AND snapshot_date = ?", ownerID, today).First(&snapshot).Error; err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// snapshotOwner valuates one owner's holdings and upserts the day's row.
// Returns the owner's holding count.
func (s *SnapshotService) snapshotOwner(ctx context.Context, ownerID string, date time.Time) (int, error) {
	holdings, err := s.holdings.ListByOwner(ownerID)
	if err != nil {
		return 0, err
	}

	symbols := make([]string, 0, len(holdings))
	for _, h := range holdings {
		symbols = append(symbols, h.Symbol)
	}
	quotes := s.quoteService.GetQuotes(ctx, symbols)
	snap := portfolio.Valuate(holdings, quotes)

	db := database.GetDB()
	snapshot := models.PortfolioValueSnapshot{
		OwnerID:      ownerID,
		SnapshotDate: date,
		TotalValue:   snap.TotalValue,
		TotalCost:    snap.TotalCost,
		ProfitLoss:   snap.TotalProfitLoss,
		HoldingCount: len(holdings),
		CreatedAt:    time.Now(),
	}

	// Upsert so a manual trigger after the scheduled run replaces the row
	// instead of violating the owner+date unique index.
	result := db.Where("owner_id = ? AND snapshot_date = ?", ownerID, date).
		Assign(models.PortfolioValueSnapshot{
			TotalValue:   snapshot.TotalValue,
			TotalCost:    snapshot.TotalCost,
			ProfitLoss:   snapshot.ProfitLoss,
			HoldingCount: snapshot.HoldingCount,
		}).
		FirstOrCreate(&snapshot)
	if result.Error != nil {
		return 0, result.Error
	}

	metrics.SnapshotsTotal.Inc()
	log.Printf("Snapshot service: recorded %s for owner %s (total: %s, holdings: %d)",
		date.Format("2006-01-02"), ownerID, snap.TotalValue, len(holdings))

	return len(holdings), nil
}

// GetHistory retrieves an owner's value snapshots for a given period
func (s *SnapshotService) GetHistory(ownerID, period string) ([]models.PortfolioValueSnapshot, error) {
	db := database.GetDB()
	var snapshots []models.PortfolioValueSnapshot

	now := time.Now()
	var startDate time.Time

	switch period {
	case "week":
		startDate = now.AddDate(0, 0, -7)
	case "month":
		startDate = now.AddDate(0, -1, 0)
	case "3month":
		startDate = now.AddDate(0, -3, 0)
	case "year":
		startDate = now.AddDate(-1, 0, 0)
	case "all":
		startDate = time.Time{} // No filter
	default:
		startDate = now.AddDate(0, -1, 0) // Default to 1 month
	}

	query := db.Where("owner_id = ?", ownerID).Order("snapshot_date ASC")
	if !startDate.IsZero() {
		query = query.Where("snapshot_date >= ?", startDate)
	}

	if err := query.Find(&snapshots).Error; err != nil {
		return nil, err
	}

	return snapshots, nil
}
