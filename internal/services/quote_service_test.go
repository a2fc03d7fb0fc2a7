package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/declanharris/portfolio-tracker/internal/models"
)

// stubProvider answers from a fixed price table; unknown symbols are
// unavailable, symbols in failures return an error.
type stubProvider struct {
	mu       sync.Mutex
	prices   map[string]string
	failures map[string]bool
	calls    int
}

func (p *stubProvider) GetLatestPrice(ctx context.Context, symbol string) (models.Quote, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()

	if p.failures[symbol] {
		return models.Quote{Symbol: symbol}, errors.New("provider unreachable")
	}
	if raw, ok := p.prices[symbol]; ok {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return models.Quote{Symbol: symbol}, err
		}
		return models.Quote{Symbol: symbol, Price: &price, AsOf: time.Now()}, nil
	}
	return models.Quote{Symbol: symbol, AsOf: time.Now()}, nil
}

func (p *stubProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestGetQuotesFetchesAllSymbols(t *testing.T) {
	provider := &stubProvider{prices: map[string]string{"AAPL": "150", "VTI": "250"}}
	svc := NewQuoteService(provider, time.Minute)

	quotes := svc.GetQuotes(context.Background(), []string{"AAPL", "VTI"})

	if len(quotes) != 2 {
		t.Fatalf("got %d quotes, want 2", len(quotes))
	}
	if !quotes["AAPL"].Available() || quotes["AAPL"].Price.String() != "150" {
		t.Errorf("unexpected AAPL quote: %+v", quotes["AAPL"])
	}
}

func TestGetQuotesDeduplicatesSymbols(t *testing.T) {
	provider := &stubProvider{prices: map[string]string{"AAPL": "150"}}
	svc := NewQuoteService(provider, time.Minute)

	svc.GetQuotes(context.Background(), []string{"AAPL", "AAPL", "AAPL"})

	if provider.callCount() != 1 {
		t.Errorf("provider called %d times, want 1", provider.callCount())
	}
}

func TestGetQuotesUsesCache(t *testing.T) {
	provider := &stubProvider{prices: map[string]string{"AAPL": "150"}}
	svc := NewQuoteService(provider, time.Minute)

	svc.GetQuotes(context.Background(), []string{"AAPL"})
	svc.GetQuotes(context.Background(), []string{"AAPL"})

	if provider.callCount() != 1 {
		t.Errorf("provider called %d times, want 1 (second load should hit the cache)", provider.callCount())
	}
}

func TestGetQuotesProviderErrorLeavesSymbolAbsent(t *testing.T) {
	provider := &stubProvider{
		prices:   map[string]string{"AAPL": "150"},
		failures: map[string]bool{"DOWN": true},
	}
	svc := NewQuoteService(provider, time.Minute)

	quotes := svc.GetQuotes(context.Background(), []string{"AAPL", "DOWN"})

	if _, ok := quotes["DOWN"]; ok {
		t.Error("failed symbol should be absent from the map")
	}
	if _, ok := quotes["AAPL"]; !ok {
		t.Error("a failing symbol must not take down the others")
	}
}

func TestGetQuotesUnavailableSymbolIsReturnedAndCached(t *testing.T) {
	provider := &stubProvider{prices: map[string]string{}}
	svc := NewQuoteService(provider, time.Minute)

	quotes := svc.GetQuotes(context.Background(), []string{"DELISTED"})
	q, ok := quotes["DELISTED"]
	if !ok {
		t.Fatal("unavailable quote should still be returned")
	}
	if q.Available() {
		t.Error("quote should be unavailable")
	}

	// Unavailability is cached so the provider is not hammered.
	svc.GetQuotes(context.Background(), []string{"DELISTED"})
	if provider.callCount() != 1 {
		t.Errorf("provider called %d times, want 1", provider.callCount())
	}
}

func TestGetQuotesMixesCachedAndUncachedSymbols(t *testing.T) {
	prices := make(map[string]string)
	var cached, all []string
	for i := 0; i < 200; i++ {
		symbol := fmt.Sprintf("HELD%03d", i)
		prices[symbol] = "100"
		cached = append(cached, symbol)
		all = append(all, symbol)
	}
	for i := 0; i < 3; i++ {
		symbol := fmt.Sprintf("NEW%d", i)
		prices[symbol] = "50"
		all = append(all, symbol)
	}

	// Warm the cache for the held symbols only, then request the mixed
	// list. Cache hits land in the result map from the calling goroutine
	// while the misses arrive from fetch goroutines, so this exercises
	// both writers together (run under -race). Fresh service each round
	// so the new symbols stay uncached.
	for i := 0; i < 50; i++ {
		svc := NewQuoteService(&stubProvider{prices: prices}, time.Minute)
		svc.GetQuotes(context.Background(), cached)

		quotes := svc.GetQuotes(context.Background(), all)
		if len(quotes) != len(all) {
			t.Fatalf("got %d quotes, want %d", len(quotes), len(all))
		}
	}
}

func TestRefreshBypassesCache(t *testing.T) {
	provider := &stubProvider{prices: map[string]string{"AAPL": "150", "VTI": "250"}}
	svc := NewQuoteService(provider, time.Minute)

	svc.GetQuotes(context.Background(), []string{"AAPL", "VTI"})
	refreshed := svc.Refresh(context.Background(), []string{"AAPL", "VTI"})

	if refreshed != 2 {
		t.Errorf("refreshed = %d, want 2", refreshed)
	}
	if provider.callCount() != 4 {
		t.Errorf("provider called %d times, want 4 (refresh must not use the cache)", provider.callCount())
	}
}

func TestRefreshStopsOnCancelledContext(t *testing.T) {
	provider := &stubProvider{prices: map[string]string{"AAPL": "150", "VTI": "250"}}
	svc := NewQuoteService(provider, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if refreshed := svc.Refresh(ctx, []string{"AAPL", "VTI"}); refreshed != 0 {
		t.Errorf("refreshed = %d, want 0 after cancellation", refreshed)
	}
}
