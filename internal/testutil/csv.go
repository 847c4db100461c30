package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/salesmetrics/internal/sales"
)

// Header is the canonical header line of a sales file.
var Header = strings.Join(sales.Columns, ",")

// Row is one input line, in canonical column order.
type Row struct {
	OrderID    string
	Product    string
	Category   string
	Quantity   string
	Price      string
	OrderDate  string
	CustomerID string
}

// CSV renders rows under the canonical header. Cells are written verbatim,
// so callers quote them when needed.
func CSV(rows ...Row) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')
	for _, r := range rows {
		b.WriteString(strings.Join([]string{
			r.OrderID, r.Product, r.Category, r.Quantity, r.Price, r.OrderDate, r.CustomerID,
		}, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// Records converts rows into a batch as the decoder would, numbering lines
// from 2 (line 1 is the header).
func Records(rows ...Row) []sales.SalesRecord {
	out := make([]sales.SalesRecord, len(rows))
	for i, r := range rows {
		out[i] = sales.SalesRecord{
			Line:       i + 2,
			OrderID:    r.OrderID,
			Product:    r.Product,
			Category:   r.Category,
			Quantity:   r.Quantity,
			Price:      r.Price,
			OrderDate:  r.OrderDate,
			CustomerID: r.CustomerID,
		}
	}
	return out
}

// WriteCSV writes content to name inside a fresh temp dir and returns the path.
func WriteCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ReferenceRows is the two-row batch used throughout the tests:
// one Electronics sale of 2 x 10.0 and one Books sale of 1 x 5.0.
func ReferenceRows() []Row {
	return []Row{
		{OrderID: "1", Product: "Laptop", Category: "Electronics", Quantity: "2", Price: "10.0", OrderDate: "2024-01-01", CustomerID: "c1"},
		{OrderID: "2", Product: "Novel", Category: "Books", Quantity: "1", Price: "5.0", OrderDate: "2024-01-02", CustomerID: "c2"},
	}
}
