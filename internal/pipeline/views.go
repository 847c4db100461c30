package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/salesmetrics/internal/sales"
)

// View names, in evaluation order.
const (
	ViewRaw             = "raw_data"
	ViewSelected        = "selected_columns"
	ViewWithTotal       = "with_total_value"
	ViewFiltered        = "category_filter"
	ViewCategoryTotals  = "total_sales_per_category"
	ViewProductAverages = "average_price_per_product"
	ViewDaily           = "daily_sales_summary"
)

// Output column names of the derived views.
const (
	ColTotalValue      = "total_value"
	ColTotalSales      = "total_sales"
	ColAvgPrice        = "avg_price"
	ColDailyTotalSales = "daily_total_sales"
	ColUniqueCustomers = "unique_customers"
)

// SelectedRow is the projection of a record onto four columns.
// Cells keep their source text.
type SelectedRow struct {
	OrderID  string `json:"order_id"`
	Product  string `json:"product"`
	Quantity string `json:"quantity"`
	Price    string `json:"price"`
}

// EnrichedRow is a record with its derived total_value.
type EnrichedRow struct {
	sales.SalesRecord
	TotalValue decimal.Decimal `json:"total_value"`
}

// DailySummary aggregates the enriched rows of one order date.
type DailySummary struct {
	OrderDate       sales.Date      `json:"order_date"`
	DailyTotalSales decimal.Decimal `json:"daily_total_sales"`
	UniqueCustomers int             `json:"unique_customers"`
}

// Categorized is satisfied by every row type FilterCategory accepts.
type Categorized interface {
	CategoryName() string
}
