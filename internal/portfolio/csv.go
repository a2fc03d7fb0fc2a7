package portfolio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/declanharris/portfolio-tracker/internal/models"
)

// csvColumns is the canonical export schema. Exports must re-import without
// modification, so both Serialize and Parse are pinned to these names.
var csvColumns = []string{"symbol", "category", "quantity", "buy_price"}

// MalformedRowError reports a CSV data row that could not be converted into
// a holding candidate. Line is the 1-based line number in the file, with
// the header counting as line 1.
type MalformedRowError struct {
	Line  int
	Field string
	Value string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("row %d: invalid %s value %q", e.Line, e.Field, e.Value)
}

// Serialize renders holdings as a CSV document in store order. Quantity and
// buy price are emitted as plain decimal text, symbols exactly as stored.
func Serialize(holdings []models.Holding) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvColumns); err != nil {
		return nil, err
	}
	for _, h := range holdings {
		record := []string{h.Symbol, h.Category, h.Quantity.String(), h.BuyPrice.String()}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Parse reads a CSV document and returns holding candidates for ownerID.
// Columns are mapped by header name, so column order does not matter, but
// all four canonical columns must be present. Rows with an empty symbol are
// skipped (counted in the second return value), never an error. A quantity
// or buy_price that is not a non-negative decimal fails the whole parse
// with a *MalformedRowError.
//
// Parsing is strictly additive: every valid row becomes a fresh candidate
// under ownerID with no dedup against existing holdings. The caller owns
// insertion; callers who need replace semantics delete first.
func Parse(r io.Reader, ownerID string) ([]models.Holding, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, fmt.Errorf("csv document is empty")
	}
	if err != nil {
		return nil, 0, err
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range csvColumns {
		if _, ok := columns[name]; !ok {
			return nil, 0, fmt.Errorf("csv is missing required column %q", name)
		}
	}

	field := func(record []string, name string) string {
		i := columns[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var candidates []models.Holding
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
		// Physical file line of this record. The csv reader skips blank
		// lines and folds quoted multi-line fields into one record, so a
		// record counter would drift from what an editor shows.
		line, _ := reader.FieldPos(0)

		symbol := strings.ToUpper(field(record, "symbol"))
		if symbol == "" {
			skipped++
			continue
		}

		quantity, err := parseAmount(field(record, "quantity"))
		if err != nil {
			return nil, 0, &MalformedRowError{Line: line, Field: "quantity", Value: field(record, "quantity")}
		}
		buyPrice, err := parseAmount(field(record, "buy_price"))
		if err != nil {
			return nil, 0, &MalformedRowError{Line: line, Field: "buy_price", Value: field(record, "buy_price")}
		}

		candidates = append(candidates, models.Holding{
			OwnerID:  ownerID,
			Symbol:   symbol,
			Category: field(record, "category"),
			Quantity: quantity,
			BuyPrice: buyPrice,
		})
	}

	return candidates, skipped, nil
}

// parseAmount parses a decimal field, enforcing the holding invariant that
// quantities and prices are never negative.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("negative amount %s", s)
	}
	return d, nil
}
