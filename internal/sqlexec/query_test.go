package sqlexec

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/salesmetrics/internal/pipeline"
	"github.com/roach88/salesmetrics/internal/sales"
	"github.com/roach88/salesmetrics/internal/testutil"
)

func newPipeline(opts ...pipeline.Option) *pipeline.Pipeline {
	base := []pipeline.Option{
		pipeline.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		pipeline.WithRunIDGenerator(testutil.NewFixedRunIDGenerator("run-sql")),
	}
	return pipeline.New(append(base, opts...)...)
}

func generatedRows(n int) []testutil.Row {
	categories := []string{"Electronics", "Books", "", "Toys"}
	products := []string{"Laptop", "Novel", "", "Kite", "Ink"}
	prices := []string{"10.0", "5.00", "0.335", "1.005", "7", ""}
	rows := make([]testutil.Row, n)
	for i := range rows {
		rows[i] = testutil.Row{
			OrderID:    fmt.Sprintf("%d", i+1),
			Product:    products[i%len(products)],
			Category:   categories[i%len(categories)],
			Quantity:   fmt.Sprintf("%d", i%5),
			Price:      prices[i%len(prices)],
			OrderDate:  fmt.Sprintf("2024-02-%02d", i%6+1),
			CustomerID: fmt.Sprintf("c%d", i%4),
		}
		if i%7 == 0 {
			rows[i].OrderDate = ""
		}
		if i%9 == 0 {
			rows[i].CustomerID = ""
		}
	}
	return rows
}

func assertEnginesAgree(t *testing.T, p *pipeline.Pipeline, records []sales.SalesRecord, category string) {
	t.Helper()
	ctx := context.Background()

	want, err := p.Run(ctx, records, category)
	require.NoError(t, err)
	wantBytes, err := want.Canonical()
	require.NoError(t, err)

	e := openTestEngine(t)
	got, err := e.Run(ctx, p, records, category)
	require.NoError(t, err)
	gotBytes, err := got.Canonical()
	require.NoError(t, err)

	assert.Equal(t, string(wantBytes), string(gotBytes))
	assert.Equal(t, want.RunID, got.RunID)

	wantDigests, err := want.Digests()
	require.NoError(t, err)
	gotDigests, err := got.Digests()
	require.NoError(t, err)
	assert.Equal(t, wantDigests, gotDigests)
}

func TestRun_ReferenceBatch(t *testing.T) {
	records := testutil.Records(testutil.ReferenceRows()...)
	e := openTestEngine(t)

	report, err := e.Run(context.Background(), newPipeline(), records, "Electronics")
	require.NoError(t, err)

	assert.Equal(t, "run-sql", report.RunID)
	assert.Equal(t, pipeline.PolicyFail, report.Policy)
	require.Len(t, report.Enriched, 2)
	assert.Equal(t, "20.0", sales.FormatDecimal(report.Enriched[0].TotalValue))
	require.Len(t, report.Filtered, 1)
	assert.Equal(t, "Laptop", report.Filtered[0].Product)
	assert.Equal(t, "20.0", sales.FormatDecimal(report.CategoryTotals["Electronics"]))
	assert.Equal(t, "5.0", sales.FormatDecimal(report.CategoryTotals["Books"]))
	assert.Equal(t, "10.00", sales.FormatDecimal(report.ProductAverages["Laptop"].Decimal))
	require.Len(t, report.Daily, 2)
	assert.Equal(t, "2024-01-02", report.Daily[1].OrderDate.String())
	assert.Equal(t, 1, report.Daily[1].UniqueCustomers)
}

func TestRun_MatchesPipeline(t *testing.T) {
	tests := []struct {
		name     string
		rows     []testutil.Row
		category string
	}{
		{"reference", testutil.ReferenceRows(), "Electronics"},
		{"empty batch", nil, "Electronics"},
		{"category absent", testutil.ReferenceRows(), "Garden"},
		{"null category filter", testutil.ReferenceRows(), ""},
		{"same day same customer", []testutil.Row{
			{OrderID: "1", Product: "Pen", Category: "Office", Quantity: "1", Price: "3.0", OrderDate: "2024-01-01", CustomerID: "c1"},
			{OrderID: "2", Product: "Pen", Category: "Office", Quantity: "2", Price: "1.5", OrderDate: "2024-01-01", CustomerID: "c1"},
		}, "Office"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEnginesAgree(t, newPipeline(), testutil.Records(tt.rows...), tt.category)
		})
	}
}

func TestRun_MatchesPipelineUnderSkip(t *testing.T) {
	rows := append(generatedRows(40),
		testutil.Row{OrderID: "bad-price", Product: "Ink", Category: "Office", Quantity: "1", Price: "abc", OrderDate: "2024-02-01", CustomerID: "c1"},
		testutil.Row{OrderID: "bad-qty", Product: "Pad", Category: "Office", Quantity: "1.5", Price: "1.0", OrderDate: "2024-02-01", CustomerID: "c2"},
		testutil.Row{OrderID: "bad-date", Product: "Pen", Category: "Office", Quantity: "1", Price: "2.0", OrderDate: "02/01/2024", CustomerID: "c3"},
	)

	for _, workers := range []int{1, 3} {
		p := newPipeline(pipeline.WithPolicy(pipeline.PolicySkip), pipeline.WithWorkers(workers))
		assertEnginesAgree(t, p, testutil.Records(rows...), "Office")
	}
}

func TestRun_FailPolicy(t *testing.T) {
	records := testutil.Records(
		testutil.ReferenceRows()[0],
		testutil.Row{OrderID: "2", Product: "Novel", Category: "Books", Quantity: "1", Price: "abc", OrderDate: "2024-01-02", CustomerID: "c2"},
	)
	e := openTestEngine(t)

	report, err := e.Run(context.Background(), newPipeline(), records, "Electronics")
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, sales.IsMalformedRow(err))

	var count int
	require.NoError(t, e.db.QueryRow("SELECT COUNT(*) FROM sales").Scan(&count))
	assert.Equal(t, 0, count, "a rejected batch is never loaded")
}

func TestLoad_ReplacesContents(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	first := pipeline.Screen(testutil.Records(generatedRows(10)...))
	require.NoError(t, e.Load(ctx, first))

	second := pipeline.Screen(testutil.Records(testutil.ReferenceRows()...))
	require.NoError(t, e.Load(ctx, second))

	var count int
	require.NoError(t, e.db.QueryRow("SELECT COUNT(*) FROM sales").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestReport_RawKeepsNullsAndLines(t *testing.T) {
	e := openTestEngine(t)
	ctx := context.Background()

	records := testutil.Records(
		testutil.Row{OrderID: "1", Product: "", Category: "Toys", Quantity: "x", Price: "", OrderDate: "", CustomerID: ""},
	)
	require.NoError(t, e.Load(ctx, pipeline.Screen(records)))

	report, err := e.Report(ctx, "Toys")
	require.NoError(t, err)
	require.Len(t, report.Raw, 1)
	assert.Equal(t, records[0], report.Raw[0])
	assert.Empty(t, report.Enriched)
	assert.Empty(t, report.CategoryTotals)

	require.Len(t, report.ProductAverages, 1)
	assert.False(t, report.ProductAverages[sales.NullKey].Valid)
}
