package quotes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chartBody(symbol string, price float64, timestamps []int64, closes []float64) string {
	ts := ""
	cl := ""
	for i := range timestamps {
		if i > 0 {
			ts += ","
			cl += ","
		}
		ts += fmt.Sprintf("%d", timestamps[i])
		cl += fmt.Sprintf("%g", closes[i])
	}
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"symbol":%q,"regularMarketPrice":%g,"regularMarketTime":1735689600},"timestamp":[%s],"indicators":{"quote":[{"close":[%s]}]}}],"error":null}}`,
		symbol, price, ts, cl)
}

func testServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL))
}

func TestGetLatestPrice(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, chartBody("AAPL", 187.33, []int64{1735689600}, []float64{187.33}))
	})

	q, err := client.GetLatestPrice(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("GetLatestPrice failed: %v", err)
	}
	if !q.Available() {
		t.Fatal("quote should be available")
	}
	if q.Price.String() != "187.33" {
		t.Errorf("price = %s, want 187.33", q.Price)
	}
	if q.Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL", q.Symbol)
	}
}

func TestGetLatestPriceFallsBackToLastClose(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chartBody("VTI", 0, []int64{1735603200, 1735689600}, []float64{254.10, 255.01}))
	})

	q, err := client.GetLatestPrice(context.Background(), "VTI")
	if err != nil {
		t.Fatalf("GetLatestPrice failed: %v", err)
	}
	if !q.Available() {
		t.Fatal("quote should be available")
	}
	if q.Price.String() != "255.01" {
		t.Errorf("price = %s, want last close 255.01", q.Price)
	}
}

func TestGetLatestPriceUnknownSymbol(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	})

	q, err := client.GetLatestPrice(context.Background(), "NOSUCH")
	if err != nil {
		t.Fatalf("unknown symbol should not be an error, got %v", err)
	}
	if q.Available() {
		t.Error("quote for an unknown symbol should be unavailable")
	}
}

func TestGetLatestPriceServerError(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	q, err := client.GetLatestPrice(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected an error for a 500 response")
	}
	if q.Available() {
		t.Error("quote should be unavailable on transport failure")
	}
}

func TestGetHistory(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("range"); got != "6mo" {
			t.Errorf("range = %q, want 6mo", got)
		}
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"symbol":"AAPL"},"timestamp":[1735603200,1735689600,1735776000],"indicators":{"quote":[{"close":[185.5,null,187.331]}]}}],"error":null}}`)
	})

	points, err := client.GetHistory(context.Background(), "AAPL", "6mo")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	// The nil close is omitted.
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Date != "2024-12-31" {
		t.Errorf("first date = %q, want 2024-12-31", points[0].Date)
	}
	if points[1].Close.String() != "187.33" {
		t.Errorf("close = %s, want 187.33 (rounded)", points[1].Close)
	}
}

func TestGetHistoryUnknownSymbol(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	})

	if _, err := client.GetHistory(context.Background(), "NOSUCH", "6mo"); err == nil {
		t.Error("expected an error when history is unavailable")
	}
}
