package handlers_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/declanharris/portfolio-tracker/internal/models"
)

func uploadCSV(t *testing.T, router *gin.Engine, owner, csv string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "upload.csv")
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(csv)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/api/holdings/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Owner-ID", owner)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportHoldings(t *testing.T) {
	router := setupRouter(t, nil)

	csv := "symbol,category,quantity,buy_price\n" +
		"aapl,Tech,10,150.25\n" +
		"VTI,Funds,2.5,220\n"

	w := uploadCSV(t, router, "owner-1", csv)
	if w.Code != http.StatusOK {
		t.Fatalf("import returned %d: %s", w.Code, w.Body.String())
	}

	var result models.ImportResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.RowsImported != 2 {
		t.Errorf("rows imported = %d, want 2", result.RowsImported)
	}
	if result.BatchID == "" {
		t.Error("batch id should be set")
	}

	listed := listHoldings(t, router, "owner-1")
	if len(listed) != 2 {
		t.Fatalf("got %d holdings after import, want 2", len(listed))
	}
	if listed[0].Symbol != "AAPL" {
		t.Errorf("symbol = %q, want AAPL (normalized on import)", listed[0].Symbol)
	}
}

func TestImportIsAdditive(t *testing.T) {
	router := setupRouter(t, nil)
	csv := "symbol,category,quantity,buy_price\nAAPL,Tech,10,150\n"

	uploadCSV(t, router, "owner-1", csv)
	w := uploadCSV(t, router, "owner-1", csv)
	if w.Code != http.StatusOK {
		t.Fatalf("second import returned %d", w.Code)
	}

	listed := listHoldings(t, router, "owner-1")
	if len(listed) != 2 {
		t.Errorf("got %d holdings after two imports, want 2 distinct rows", len(listed))
	}
}

func TestImportMalformedRowAbortsBatch(t *testing.T) {
	router := setupRouter(t, nil)

	csv := "symbol,category,quantity,buy_price\n" +
		"AAPL,Tech,10,150\n" +
		"VTI,Funds,abc,220\n"

	w := uploadCSV(t, router, "owner-1", csv)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("import returned %d, want 400", w.Code)
	}

	var resp struct {
		Row          int `json:"row"`
		RowsImported int `json:"rows_imported"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Row != 3 {
		t.Errorf("row = %d, want 3 (file line of the bad row)", resp.Row)
	}
	if resp.RowsImported != 0 {
		t.Errorf("rows imported = %d, want 0 (batch parsed before insert)", resp.RowsImported)
	}

	if listed := listHoldings(t, router, "owner-1"); len(listed) != 0 {
		t.Errorf("got %d holdings, want 0 after aborted import", len(listed))
	}
}

func TestImportWithoutFile(t *testing.T) {
	router := setupRouter(t, nil)

	req := httptest.NewRequest("POST", "/api/holdings/import", nil)
	req.Header.Set("X-Owner-ID", "owner-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without a file", w.Code)
	}
}

func TestExportRoundTrip(t *testing.T) {
	router := setupRouter(t, nil)
	addHolding(t, router, "owner-1", "AAPL", "Tech", "10", "150.25")
	addHolding(t, router, "owner-1", "VTI", "Funds, broad", "2.5", "220")

	w := doJSON(t, router, "GET", "/api/holdings/export", "owner-1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export returned %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q, want text/csv", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "portfolio.csv") {
		t.Errorf("content disposition = %q, want attachment filename", cd)
	}
	exported := w.Body.String()
	if !strings.HasPrefix(exported, "symbol,category,quantity,buy_price") {
		t.Fatalf("unexpected header: %q", exported)
	}

	// Exported CSV must re-import as-is, into another account here.
	w2 := uploadCSV(t, router, "owner-2", exported)
	if w2.Code != http.StatusOK {
		t.Fatalf("re-import returned %d: %s", w2.Code, w2.Body.String())
	}

	theirs := listHoldings(t, router, "owner-2")
	if len(theirs) != 2 {
		t.Fatalf("got %d re-imported holdings, want 2", len(theirs))
	}
	if theirs[1].Category != "Funds, broad" {
		t.Errorf("category = %q, comma should survive the round trip", theirs[1].Category)
	}
}

func listHoldings(t *testing.T, router *gin.Engine, owner string) []models.Holding {
	t.Helper()
	w := doJSON(t, router, "GET", "/api/holdings", owner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list returned %d", w.Code)
	}
	var listed []models.Holding
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	return listed
}
