package sqlexec

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/salesmetrics/internal/pipeline"
	"github.com/roach88/salesmetrics/internal/sales"
)

const recordColumns = `line, order_id, product, category, quantity_raw, price_raw, order_date_raw, customer_id`

// View queries. Every statement ends with an ORDER BY.
const (
	queryRaw = `SELECT ` + recordColumns + ` FROM sales ORDER BY seq ASC`

	queryEnriched = `SELECT ` + recordColumns + `, decimal_mul(quantity, price)
FROM sales WHERE total_ok = 1 ORDER BY seq ASC`

	queryFiltered = `SELECT ` + recordColumns + `, decimal_mul(quantity, price)
FROM sales WHERE total_ok = 1 AND category = ? ORDER BY seq ASC`

	queryCategoryTotals = `SELECT category, decimal_sum(decimal_mul(quantity, price))
FROM sales WHERE total_ok = 1
GROUP BY category ORDER BY category ASC`

	queryProductAverages = `SELECT product, decimal_avg2(COALESCE(price, ''))
FROM sales WHERE price_ok = 1
GROUP BY product ORDER BY product ASC`

	queryDaily = `SELECT order_date, decimal_sum(decimal_mul(quantity, price)), COUNT(DISTINCT customer_id)
FROM sales WHERE total_ok = 1 AND date_ok = 1
GROUP BY order_date ORDER BY order_date ASC`
)

// Run mirrors Pipeline.Run with SQLite as the evaluator: the batch is
// screened and admitted by p, loaded, and every view is queried.
func (e *Engine) Run(ctx context.Context, p *pipeline.Pipeline, records []sales.SalesRecord, category string) (*pipeline.Report, error) {
	runID := p.NewRunID()

	screening, err := p.Screen(ctx, records)
	if err != nil {
		return nil, err
	}
	if err := p.Admit(runID, screening); err != nil {
		return nil, err
	}
	if err := e.Load(ctx, screening); err != nil {
		return nil, err
	}

	report, err := e.Report(ctx, category)
	if err != nil {
		return nil, err
	}
	report.RunID = runID
	report.Policy = p.Policy()
	if p.Policy() == pipeline.PolicySkip {
		report.Skipped = screening.Diagnostics
	}
	return report, nil
}

// Report queries every view of the loaded batch.
func (e *Engine) Report(ctx context.Context, category string) (*pipeline.Report, error) {
	report := &pipeline.Report{Category: category}

	raw, err := e.records(ctx, queryRaw)
	if err != nil {
		return nil, fmt.Errorf("raw view: %w", err)
	}
	report.Raw = raw
	report.Selected = pipeline.SelectColumns(raw)

	if report.Enriched, err = e.enriched(ctx, queryEnriched); err != nil {
		return nil, fmt.Errorf("enriched view: %w", err)
	}
	if report.Filtered, err = e.enriched(ctx, queryFiltered, category); err != nil {
		return nil, fmt.Errorf("filtered view: %w", err)
	}
	if report.CategoryTotals, err = e.categoryTotals(ctx); err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	if report.ProductAverages, err = e.productAverages(ctx); err != nil {
		return nil, fmt.Errorf("product averages: %w", err)
	}
	if report.Daily, err = e.daily(ctx); err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}
	return report, nil
}

type recordScan struct {
	line                                    int
	orderID, product, category              sql.NullString
	quantity, price, orderDate, customerID sql.NullString
}

func (s *recordScan) dest() []any {
	return []any{&s.line, &s.orderID, &s.product, &s.category, &s.quantity, &s.price, &s.orderDate, &s.customerID}
}

func (s *recordScan) record() sales.SalesRecord {
	return sales.SalesRecord{
		Line:       s.line,
		OrderID:    s.orderID.String,
		Product:    s.product.String,
		Category:   s.category.String,
		Quantity:   s.quantity.String,
		Price:      s.price.String,
		OrderDate:  s.orderDate.String,
		CustomerID: s.customerID.String,
	}
}

func (e *Engine) records(ctx context.Context, query string) ([]sales.SalesRecord, error) {
	rows, err := e.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []sales.SalesRecord
	for rows.Next() {
		var s recordScan
		if err := rows.Scan(s.dest()...); err != nil {
			return nil, err
		}
		out = append(out, s.record())
	}
	return out, rows.Err()
}

func (e *Engine) enriched(ctx context.Context, query string, args ...any) ([]pipeline.EnrichedRow, error) {
	rows, err := e.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pipeline.EnrichedRow, 0)
	for rows.Next() {
		var s recordScan
		var total string
		if err := rows.Scan(append(s.dest(), &total)...); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("total_value %q: %w", total, err)
		}
		out = append(out, pipeline.EnrichedRow{SalesRecord: s.record(), TotalValue: d})
	}
	return out, rows.Err()
}

func (e *Engine) categoryTotals(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := e.Query(ctx, queryCategoryTotals)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]decimal.Decimal)
	for rows.Next() {
		var category sql.NullString
		var total string
		if err := rows.Scan(&category, &total); err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("total_sales %q: %w", total, err)
		}
		out[category.String] = d
	}
	return out, rows.Err()
}

func (e *Engine) productAverages(ctx context.Context) (map[string]decimal.NullDecimal, error) {
	rows, err := e.Query(ctx, queryProductAverages)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]decimal.NullDecimal)
	for rows.Next() {
		var product sql.NullString
		var avg string
		if err := rows.Scan(&product, &avg); err != nil {
			return nil, err
		}
		if avg == "" {
			out[product.String] = decimal.NullDecimal{}
			continue
		}
		d, err := decimal.NewFromString(avg)
		if err != nil {
			return nil, fmt.Errorf("avg_price %q: %w", avg, err)
		}
		out[product.String] = decimal.NullDecimal{Decimal: d, Valid: true}
	}
	return out, rows.Err()
}

func (e *Engine) daily(ctx context.Context) ([]pipeline.DailySummary, error) {
	rows, err := e.Query(ctx, queryDaily)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]pipeline.DailySummary, 0)
	for rows.Next() {
		var orderDate sql.NullString
		var total string
		var customers int
		if err := rows.Scan(&orderDate, &total, &customers); err != nil {
			return nil, err
		}
		date, err := sales.ParseDate(orderDate.String)
		if err != nil {
			return nil, fmt.Errorf("order_date %q: %w", orderDate.String, err)
		}
		d, err := decimal.NewFromString(total)
		if err != nil {
			return nil, fmt.Errorf("daily_total_sales %q: %w", total, err)
		}
		out = append(out, pipeline.DailySummary{
			OrderDate:       date,
			DailyTotalSales: d,
			UniqueCustomers: customers,
		})
	}
	return out, rows.Err()
}
