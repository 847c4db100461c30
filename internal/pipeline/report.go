package pipeline

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roach88/salesmetrics/internal/sales"
)

// Report holds every view computed from one batch.
type Report struct {
	RunID    string
	Category string
	Policy   Policy

	Raw             []sales.SalesRecord
	Selected        []SelectedRow
	Enriched        []EnrichedRow
	Filtered        []EnrichedRow
	CategoryTotals  map[string]decimal.Decimal
	ProductAverages map[string]decimal.NullDecimal
	Daily           []DailySummary

	// Skipped lists the rows dropped under PolicySkip.
	Skipped []Diagnostic
}

// View is a derived view in tabular form.
// Cells are nil (null), string, int, decimal.Decimal, decimal.NullDecimal
// or sales.Date.
type View struct {
	Name    string
	Title   string
	Columns []string
	Rows    [][]any
}

// Records returns the rows as column-keyed objects.
func (v View) Records() []any {
	out := make([]any, len(v.Rows))
	for i, row := range v.Rows {
		obj := make(map[string]any, len(v.Columns))
		for j, col := range v.Columns {
			obj[col] = row[j]
		}
		out[i] = obj
	}
	return out
}

// Views returns the report's views in print order. Mapping views are
// sorted by key ascending, null key first.
func (r *Report) Views() []View {
	recordColumns := append([]string(nil), sales.Columns...)
	enrichedColumns := append(append([]string(nil), sales.Columns...), ColTotalValue)

	views := []View{
		{Name: ViewRaw, Title: "RAW DATA", Columns: recordColumns},
		{Name: ViewSelected, Title: "SELECTED COLUMNS", Columns: []string{sales.ColOrderID, sales.ColProduct, sales.ColQuantity, sales.ColPrice}},
		{Name: ViewWithTotal, Title: "WITH TOTAL VALUE", Columns: enrichedColumns},
		{Name: ViewFiltered, Title: FilteredTitle(r.Category), Columns: enrichedColumns},
		{Name: ViewCategoryTotals, Title: "TOTAL SALES PER CATEGORY", Columns: []string{sales.ColCategory, ColTotalSales}},
		{Name: ViewProductAverages, Title: "AVERAGE PRICE PER PRODUCT", Columns: []string{sales.ColProduct, ColAvgPrice}},
		{Name: ViewDaily, Title: "DAILY SALES SUMMARY", Columns: []string{sales.ColOrderDate, ColDailyTotalSales, ColUniqueCustomers}},
	}

	for _, rec := range r.Raw {
		views[0].Rows = append(views[0].Rows, recordCells(rec))
	}
	for _, s := range r.Selected {
		views[1].Rows = append(views[1].Rows, []any{nullable(s.OrderID), nullable(s.Product), nullable(s.Quantity), nullable(s.Price)})
	}
	for _, e := range r.Enriched {
		views[2].Rows = append(views[2].Rows, append(recordCells(e.SalesRecord), e.TotalValue))
	}
	for _, e := range r.Filtered {
		views[3].Rows = append(views[3].Rows, append(recordCells(e.SalesRecord), e.TotalValue))
	}
	for _, k := range sales.SortedKeys(r.CategoryTotals) {
		views[4].Rows = append(views[4].Rows, []any{nullable(k), r.CategoryTotals[k]})
	}
	for _, k := range sales.SortedKeys(r.ProductAverages) {
		views[5].Rows = append(views[5].Rows, []any{nullable(k), r.ProductAverages[k]})
	}
	for _, d := range r.Daily {
		views[6].Rows = append(views[6].Rows, []any{d.OrderDate, d.DailyTotalSales, d.UniqueCustomers})
	}
	return views
}

// FilteredTitle returns the heading of the category filter view.
func FilteredTitle(category string) string {
	if category == "" {
		return "NULL ONLY"
	}
	return strings.ToUpper(category) + " ONLY"
}

func recordCells(r sales.SalesRecord) []any {
	cells := r.Cells()
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = nullable(c)
	}
	return out
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CanonicalMap returns the report as a map suitable for sales.MarshalCanonical.
// The run id is excluded: it identifies who ran the batch, not what it computed.
func (r *Report) CanonicalMap() map[string]any {
	views := make(map[string]any)
	for _, v := range r.Views() {
		views[v.Name] = v.Records()
	}
	skipped := make([]any, len(r.Skipped))
	for i, d := range r.Skipped {
		skipped[i] = map[string]any{
			"view":     d.View,
			"line":     d.Line,
			"order_id": nullable(d.OrderID),
			"error":    d.Message(),
		}
	}
	return map[string]any{
		"category": r.Category,
		"policy":   string(r.Policy),
		"views":    views,
		"skipped":  skipped,
	}
}

// Canonical returns the canonical JSON encoding of the report.
// Two runs over the same batch produce byte-identical output.
func (r *Report) Canonical() ([]byte, error) {
	return sales.MarshalCanonical(r.CanonicalMap())
}

// Digests returns the content digest of every view, keyed by view name.
func (r *Report) Digests() (map[string]string, error) {
	out := make(map[string]string)
	for _, v := range r.Views() {
		d, err := sales.ViewDigest(v.Name, v.Records())
		if err != nil {
			return nil, err
		}
		out[v.Name] = d
	}
	return out, nil
}
