package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/salesmetrics/internal/sales"
)

// SelectColumns projects order_id, product, quantity and price.
// Row order is preserved and the projection never fails.
func SelectColumns(records []sales.SalesRecord) []SelectedRow {
	out := make([]SelectedRow, len(records))
	for i, r := range records {
		out[i] = SelectedRow{
			OrderID:  r.OrderID,
			Product:  r.Product,
			Quantity: r.Quantity,
			Price:    r.Price,
		}
	}
	return out
}

// WithTotalValue appends total_value = quantity * price to every record.
// Returns the first *sales.MalformedRowError in input order and no rows
// if any quantity or price is missing or not numeric.
func WithTotalValue(records []sales.SalesRecord) ([]EnrichedRow, error) {
	out := make([]EnrichedRow, len(records))
	for i, r := range records {
		total, err := r.TotalValue()
		if err != nil {
			return nil, err
		}
		out[i] = EnrichedRow{SalesRecord: r, TotalValue: total}
	}
	return out, nil
}

// FilterCategory keeps the rows whose category equals category exactly.
// A null category never matches, so filtering on "" yields no rows.
func FilterCategory[R Categorized](rows []R, category string) []R {
	out := make([]R, 0)
	if category == sales.NullKey {
		return out
	}
	for _, r := range rows {
		if r.CategoryName() == category {
			out = append(out, r)
		}
	}
	return out
}

// AggregateByCategory sums total_value per category.
// Null categories share the sales.NullKey group.
func AggregateByCategory(rows []EnrichedRow) map[string]decimal.Decimal {
	acc := newCategoryTotals()
	for _, r := range rows {
		acc.add(r.Category, r.TotalValue)
	}
	return acc.result()
}

// AveragePriceByProduct computes the mean non-null price per product,
// rounded half-up to two decimal places after the full reduction.
// A product whose prices are all null maps to an invalid NullDecimal.
// Returns the first *sales.MalformedRowError if a price is not numeric.
func AveragePriceByProduct(records []sales.SalesRecord) (map[string]decimal.NullDecimal, error) {
	acc := newProductAverages()
	for _, r := range records {
		price, err := r.PriceValue()
		if err != nil {
			return nil, err
		}
		acc.add(r.Product, price)
	}
	return acc.result(), nil
}

// DailySalesSummary groups enriched rows by parsed order_date, sums
// total_value, counts distinct non-null customer_id values, and orders the
// result ascending by date with the null date first.
// Returns the first *sales.DateParseError in input order.
func DailySalesSummary(rows []EnrichedRow) ([]DailySummary, error) {
	acc := newDailyTotals()
	for _, r := range rows {
		date, err := r.DateValue()
		if err != nil {
			return nil, err
		}
		acc.add(date, r.CustomerID, r.TotalValue)
	}
	return acc.result(), nil
}
