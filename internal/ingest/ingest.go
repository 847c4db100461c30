// Package ingest decodes the delimited input file into a sales.Batch.
//
// The header row is required. Columns are matched to sales.Columns after
// trimming and lower-casing, a UTF-8 byte order mark is ignored, extra
// columns are dropped, and short rows are padded with nulls. Every cell is
// trimmed and NFC normalized so grouping keys compare by exact value.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/salesmetrics/internal/sales"
)

const bom = "\uFEFF"

// Options tunes decoding.
type Options struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
}

// DecodeFile opens path and decodes it.
func DecodeFile(path string, opts Options) (sales.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	batch, err := Decode(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return batch, nil
}

// Decode reads a header row and every data row from r.
// Returns a *sales.SchemaError if a required column is absent.
func Decode(r io.Reader, opts Options) (sales.Batch, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // short and long rows are tolerated
	reader.ReuseRecord = true
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &sales.SchemaError{Missing: append([]string(nil), sales.Columns...)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	header = append([]string(nil), header...)

	index, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var batch sales.Batch
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		cell := func(col string) string {
			i := index[col]
			if i >= len(row) {
				return ""
			}
			return clean(row[i])
		}

		batch = append(batch, sales.SalesRecord{
			Line:       line,
			OrderID:    cell(sales.ColOrderID),
			Product:    cell(sales.ColProduct),
			Category:   cell(sales.ColCategory),
			Quantity:   cell(sales.ColQuantity),
			Price:      cell(sales.ColPrice),
			OrderDate:  cell(sales.ColOrderDate),
			CustomerID: cell(sales.ColCustomerID),
		})
	}

	return batch, nil
}

// resolveColumns maps each required column to its header position.
// The first occurrence of a duplicated header wins.
func resolveColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(sales.Columns))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, bom)
		}
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range sales.Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		cleaned := make([]string, len(header))
		for i, h := range header {
			cleaned[i] = strings.TrimSpace(strings.TrimPrefix(h, bom))
		}
		return nil, &sales.SchemaError{Missing: missing, Header: cleaned}
	}
	return index, nil
}

func clean(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
