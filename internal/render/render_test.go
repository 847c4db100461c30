package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/salesmetrics/internal/pipeline"
	"github.com/roach88/salesmetrics/internal/sales"
	"github.com/roach88/salesmetrics/internal/testutil"
)

func referenceReport(t *testing.T) *pipeline.Report {
	t.Helper()
	p := pipeline.New(
		pipeline.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		pipeline.WithRunIDGenerator(testutil.NewFixedRunIDGenerator("run-render")),
	)
	report, err := p.Run(context.Background(), testutil.Records(testutil.ReferenceRows()...), "Electronics")
	require.NoError(t, err)
	return report
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestText_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Text(&buf, referenceReport(t), DefaultOptions()))
	newGoldie(t).Assert(t, "reference", buf.Bytes())
}

func TestTable_LimitsGolden(t *testing.T) {
	raw := referenceReport(t).Views()[0]

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, raw, Options{MaxRows: 1, Truncate: 5}))
	newGoldie(t).Assert(t, "limited", buf.Bytes())
}

func TestTable_Nulls(t *testing.T) {
	v := pipeline.View{
		Columns: []string{"product", "avg_price"},
		Rows: [][]any{
			{nil, decimal.NullDecimal{}},
			{"Pen", decimal.NewNullDecimal(decimal.RequireFromString("1.50"))},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, v, Options{}))
	assert.Equal(t,
		"+-------+---------+\n"+
			"|product|avg_price|\n"+
			"+-------+---------+\n"+
			"|   null|     null|\n"+
			"|    Pen|     1.50|\n"+
			"+-------+---------+\n",
		buf.String())
}

func TestTable_NoRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, pipeline.View{Columns: []string{"a"}}, DefaultOptions()))
	assert.Equal(t, "+---+\n|  a|\n+---+\n+---+\n", buf.String())
}

func TestTable_WideRunes(t *testing.T) {
	v := pipeline.View{Columns: []string{"product"}, Rows: [][]any{{"ノート"}}}

	var buf bytes.Buffer
	require.NoError(t, Table(&buf, v, Options{}))
	assert.Contains(t, buf.String(), "| ノート|")
}

func TestDisplayWidth(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"Laptop", 6},
		{"Caf\u00e9", 4},
		{"ノート", 6},
		{"\uFF21\uFF22", 4},
		{"\uFF71", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, displayWidth(tt.in), "%q", tt.in)
	}
}

func TestFormatCell(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"empty string", "", "null"},
		{"string", "Laptop", "Laptop"},
		{"int", 3, "3"},
		{"int64", int64(42), "42"},
		{"decimal keeps scale", decimal.RequireFromString("20.0"), "20.0"},
		{"decimal exponent", decimal.New(2, 1), "20"},
		{"null decimal", decimal.NullDecimal{}, "null"},
		{"valid null decimal", decimal.NewNullDecimal(decimal.RequireFromString("5.00")), "5.00"},
		{"date", sales.MustParseDate("2024-01-02"), "2024-01-02"},
		{"null date", sales.Date{}, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCell(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Electronics", truncate("Electronics", 0))
	assert.Equal(t, "Electronics", truncate("Electronics", 11))
	assert.Equal(t, "Elect...", truncate("Electronics", 8))
	assert.Equal(t, "Ele", truncate("Electronics", 3))
}

func TestNewDocument(t *testing.T) {
	report := referenceReport(t)

	doc, err := NewDocument(report)
	require.NoError(t, err)
	assert.Equal(t, "run-render", doc.RunID)
	assert.Len(t, doc.Digests, 7)

	canonical, err := report.Canonical()
	require.NoError(t, err)
	assert.Equal(t, canonical, []byte(doc.Report))

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category":"Electronics"`)
	assert.NotContains(t, string(doc.Report), "run-render")
}
