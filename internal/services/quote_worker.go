package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/declanharris/portfolio-tracker/internal/metrics"
	"github.com/declanharris/portfolio-tracker/internal/store"
)

const (
	defaultRefreshInterval = 15 * time.Minute
	urgentDrainInterval    = 10 * time.Second
)

// QuoteWorker keeps the quote cache warm for every symbol currently held by
// any owner, so dashboard loads mostly hit the cache instead of the
// provider. User-requested refreshes go through a high-priority queue that
// drains on a much shorter interval.
type QuoteWorker struct {
	quoteService    *QuoteService
	holdings        *store.HoldingStore
	refreshInterval time.Duration
	mu              sync.RWMutex

	// Priority queue for user-requested refreshes
	urgentQueue []string
	urgentMu    sync.Mutex

	// Stats (reset at midnight)
	refreshedToday  int
	lastRefreshTime time.Time
	lastStatsDay    time.Time
}

type QuoteWorkerStatus struct {
	LastRefreshTime time.Time `json:"last_refresh_time"`
	NextRefreshTime time.Time `json:"next_refresh_time"`
	RefreshedToday  int       `json:"refreshed_today"`
	QueueSize       int       `json:"queue_size"`
	CachedQuotes    int       `json:"cached_quotes"`
}

func NewQuoteWorker(quoteService *QuoteService, holdings *store.HoldingStore) *QuoteWorker {
	return &QuoteWorker{
		quoteService:    quoteService,
		holdings:        holdings,
		refreshInterval: defaultRefreshInterval,
	}
}

// QueueRefresh adds a symbol to the high-priority refresh queue and returns
// its 1-based position.
func (w *QuoteWorker) QueueRefresh(symbol string) int {
	w.urgentMu.Lock()
	defer w.urgentMu.Unlock()

	for i, queued := range w.urgentQueue {
		if queued == symbol {
			return i + 1
		}
	}
	w.urgentQueue = append(w.urgentQueue, symbol)
	metrics.QuoteRefreshQueueSize.Set(float64(len(w.urgentQueue)))
	log.Printf("Quote worker: queued refresh for %s (queue size: %d)", symbol, len(w.urgentQueue))
	return len(w.urgentQueue)
}

// Status reports worker progress for the status endpoint.
func (w *QuoteWorker) Status() QuoteWorkerStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	w.urgentMu.Lock()
	queueSize := len(w.urgentQueue)
	w.urgentMu.Unlock()

	var next time.Time
	if !w.lastRefreshTime.IsZero() {
		next = w.lastRefreshTime.Add(w.refreshInterval)
	}

	return QuoteWorkerStatus{
		LastRefreshTime: w.lastRefreshTime,
		NextRefreshTime: next,
		RefreshedToday:  w.refreshedToday,
		QueueSize:       queueSize,
		CachedQuotes:    w.quoteService.CacheSize(),
	}
}

// resetDailyStatsIfNeeded resets refreshedToday at midnight
func (w *QuoteWorker) resetDailyStatsIfNeeded() {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if w.lastStatsDay.Before(today) {
		if !w.lastStatsDay.IsZero() {
			log.Printf("Quote worker: daily stats reset (previous day: %d symbols refreshed)", w.refreshedToday)
		}
		w.refreshedToday = 0
		w.lastStatsDay = today
	}
}

// Start begins the background refresh loop and blocks until ctx is
// cancelled.
func (w *QuoteWorker) Start(ctx context.Context) {
	log.Printf("Quote worker started: refreshing held symbols every %v", w.refreshInterval)

	// Warm the cache immediately on startup.
	w.refreshHeldSymbols(ctx)

	ticker := time.NewTicker(w.refreshInterval)
	defer ticker.Stop()
	urgent := time.NewTicker(urgentDrainInterval)
	defer urgent.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Quote worker stopping...")
			return
		case <-ticker.C:
			w.refreshHeldSymbols(ctx)
		case <-urgent.C:
			w.drainUrgentQueue(ctx)
		}
	}
}

// refreshHeldSymbols refreshes quotes for every distinct held symbol.
func (w *QuoteWorker) refreshHeldSymbols(ctx context.Context) {
	w.resetDailyStatsIfNeeded()

	symbols, err := w.holdings.DistinctSymbols()
	if err != nil {
		log.Printf("Quote worker: failed to list held symbols: %v", err)
		return
	}
	if len(symbols) == 0 {
		return
	}

	start := time.Now()
	refreshed := w.quoteService.Refresh(ctx, symbols)
	metrics.QuoteBatchDuration.Observe(time.Since(start).Seconds())

	w.mu.Lock()
	w.refreshedToday += refreshed
	w.lastRefreshTime = time.Now()
	w.mu.Unlock()

	log.Printf("Quote worker: refreshed %d/%d held symbols in %v", refreshed, len(symbols), time.Since(start).Round(time.Millisecond))
}

// drainUrgentQueue refreshes user-requested symbols ahead of the next
// scheduled batch.
func (w *QuoteWorker) drainUrgentQueue(ctx context.Context) {
	w.urgentMu.Lock()
	if len(w.urgentQueue) == 0 {
		w.urgentMu.Unlock()
		return
	}
	batch := w.urgentQueue
	w.urgentQueue = nil
	metrics.QuoteRefreshQueueSize.Set(0)
	w.urgentMu.Unlock()

	refreshed := w.quoteService.Refresh(ctx, batch)

	w.mu.Lock()
	w.refreshedToday += refreshed
	w.mu.Unlock()

	log.Printf("Quote worker: drained urgent queue (%d symbols)", len(batch))
}
