package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/declanharris/portfolio-tracker/internal/metrics"
	"github.com/declanharris/portfolio-tracker/internal/models"
)

const (
	defaultQuoteCacheSize = 1024
	defaultQuoteCacheTTL  = 5 * time.Minute
	defaultFetchTimeout   = 5 * time.Second
)

// Provider is the external quote capability: given a symbol, return a
// recent price or an unavailable quote. Implementations must tolerate
// unknown symbols without returning an error.
type Provider interface {
	GetLatestPrice(ctx context.Context, symbol string) (models.Quote, error)
}

// QuoteService fans out quote fetches across symbols and caches results
// with a TTL, so repeated dashboard loads within the window never touch
// the provider. It holds no per-request state and is safe for concurrent
// use.
type QuoteService struct {
	provider     Provider
	cache        *expirable.LRU[string, models.Quote]
	fetchTimeout time.Duration
}

func NewQuoteService(provider Provider, cacheTTL time.Duration) *QuoteService {
	if cacheTTL <= 0 {
		cacheTTL = defaultQuoteCacheTTL
	}
	return &QuoteService{
		provider:     provider,
		cache:        expirable.NewLRU[string, models.Quote](defaultQuoteCacheSize, nil, cacheTTL),
		fetchTimeout: defaultFetchTimeout,
	}
}

// GetQuotes returns quotes keyed by symbol, fetching uncached symbols
// concurrently. A symbol whose fetch fails or times out is simply absent
// from the map; the valuation engine treats absence as an unavailable
// quote, so one slow symbol degrades its own valuation rather than the
// whole request.
func (s *QuoteService) GetQuotes(ctx context.Context, symbols []string) map[string]models.Quote {
	results := make(map[string]models.Quote, len(symbols))
	seen := make(map[string]bool, len(symbols))

	// Resolve cache hits before spawning anything so the fetch goroutines
	// are the only concurrent writers to the map.
	var misses []string
	for _, symbol := range symbols {
		if seen[symbol] {
			continue
		}
		seen[symbol] = true

		if q, ok := s.cache.Get(symbol); ok {
			metrics.QuoteCacheHits.Inc()
			results[symbol] = q
			continue
		}
		metrics.QuoteCacheMisses.Inc()
		misses = append(misses, symbol)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, symbol := range misses {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			q, ok := s.fetch(ctx, symbol)
			if !ok {
				return
			}
			mu.Lock()
			results[symbol] = q
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()
	return results
}

// Refresh fetches fresh quotes for symbols, bypassing the cache. Returns
// the number of symbols successfully refreshed. Used by the background
// worker to keep the cache warm for held symbols.
func (s *QuoteService) Refresh(ctx context.Context, symbols []string) int {
	refreshed := 0
	for _, symbol := range symbols {
		if ctx.Err() != nil {
			return refreshed
		}
		if _, ok := s.fetch(ctx, symbol); ok {
			refreshed++
		}
	}
	return refreshed
}

// fetch retrieves one quote within the per-call timeout and caches the
// outcome. Unavailable quotes are cached too, so a delisted symbol does
// not get re-fetched on every valuation.
func (s *QuoteService) fetch(ctx context.Context, symbol string) (models.Quote, bool) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	q, err := s.provider.GetLatestPrice(fetchCtx, symbol)
	if err != nil {
		metrics.QuoteFetchesTotal.WithLabelValues("error").Inc()
		log.Printf("Quote service: fetch for %s failed: %v", symbol, err)
		return models.Quote{}, false
	}

	if q.Available() {
		metrics.QuoteFetchesTotal.WithLabelValues("ok").Inc()
	} else {
		metrics.QuoteFetchesTotal.WithLabelValues("unavailable").Inc()
	}

	s.cache.Add(symbol, q)
	return q, true
}

// CacheSize returns the number of cached quotes.
func (s *QuoteService) CacheSize() int {
	return s.cache.Len()
}
