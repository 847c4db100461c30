package harness

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/salesmetrics/internal/pipeline"
	"github.com/roach88/salesmetrics/internal/sales"
)

func testResult() *Result {
	report := &pipeline.Report{
		Category: "Electronics",
		CategoryTotals: map[string]decimal.Decimal{
			"Electronics": decimal.RequireFromString("20.0"),
			"":            decimal.RequireFromString("4.50"),
		},
		Daily: []pipeline.DailySummary{
			{OrderDate: sales.MustParseDate("2024-01-01"), DailyTotalSales: decimal.RequireFromString("20.0"), UniqueCustomers: 1},
		},
		Skipped: []pipeline.Diagnostic{{View: pipeline.ViewWithTotal, Line: 3}},
	}
	result := NewResult()
	result.Report = report
	return result
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	assertions := []Assertion{
		{Type: AssertViewCount, View: pipeline.ViewCategoryTotals, Count: 2},
		{Type: AssertColumnValues, View: pipeline.ViewCategoryTotals, Column: pipeline.ColTotalSales, Values: []string{"4.50", "20.0"}},
		{Type: AssertRowMatch, View: pipeline.ViewCategoryTotals, Where: map[string]string{"category": "null"}, Expect: map[string]string{"total_sales": "4.50"}},
		{Type: AssertRowMatch, View: pipeline.ViewDaily, Where: map[string]string{"order_date": "2024-01-01"}, Expect: map[string]string{"unique_customers": "1"}},
		{Type: AssertSkippedCount, Count: 1},
	}
	assert.Empty(t, EvaluateAssertions(testResult(), assertions))
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{
			name:      "view count",
			assertion: Assertion{Type: AssertViewCount, View: pipeline.ViewDaily, Count: 3},
			want:      "Actual: 1 rows",
		},
		{
			name:      "column values",
			assertion: Assertion{Type: AssertColumnValues, View: pipeline.ViewDaily, Column: pipeline.ColDailyTotalSales, Values: []string{"20"}},
			want:      "Actual: [20.0]",
		},
		{
			name:      "unknown column",
			assertion: Assertion{Type: AssertColumnValues, View: pipeline.ViewDaily, Column: "total"},
			want:      `has no column "total"`,
		},
		{
			name:      "row mismatch",
			assertion: Assertion{Type: AssertRowMatch, View: pipeline.ViewCategoryTotals, Where: map[string]string{"category": "Electronics"}, Expect: map[string]string{"total_sales": "21.0"}},
			want:      "total_sales=20.0 (want 21.0)",
		},
		{
			name:      "row missing",
			assertion: Assertion{Type: AssertRowMatch, View: pipeline.ViewCategoryTotals, Where: map[string]string{"category": "Books"}, Expect: map[string]string{"total_sales": "5.0"}},
			want:      "no matching row",
		},
		{
			name:      "skipped count",
			assertion: Assertion{Type: AssertSkippedCount, Count: 0},
			want:      "Actual: 1 skipped rows",
		},
		{
			name:      "error code on success",
			assertion: Assertion{Type: AssertErrorCode, Code: "SCHEMA"},
			want:      "Actual: run succeeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(testResult(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestEvaluateAssertions_FailedRun(t *testing.T) {
	result := NewResult()
	result.ErrorCode = "DATE_PARSE"
	result.ErrorMessage = "DATE_PARSE: line 2"

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertErrorCode, Code: "DATE_PARSE"},
		{Type: AssertViewCount, View: pipeline.ViewRaw, Count: 1},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "run failed with DATE_PARSE")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: "view_count", Expected: "2 rows", Actual: "1 rows"}
	assert.Equal(t, "Assertion failed: view_count\n  Expected: 2 rows\n  Actual: 1 rows", err.Error())
}
