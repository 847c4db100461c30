package pipeline

import (
	"slices"

	"github.com/shopspring/decimal"

	"github.com/roach88/salesmetrics/internal/sales"
)

// Accumulators hold partial reductions. add folds one row in, merge folds
// another partition's partial in, result finalizes. Merging is exact, so
// the order partitions are merged in does not change the result.

type categoryTotals map[string]decimal.Decimal

func newCategoryTotals() categoryTotals {
	return make(categoryTotals)
}

func (c categoryTotals) add(category string, v decimal.Decimal) {
	c[category] = c[category].Add(v)
}

func (c categoryTotals) merge(o categoryTotals) {
	for k, v := range o {
		c.add(k, v)
	}
}

func (c categoryTotals) result() map[string]decimal.Decimal {
	return map[string]decimal.Decimal(c)
}

type priceSum struct {
	sum   decimal.Decimal
	count int64
}

type productAverages map[string]*priceSum

func newProductAverages() productAverages {
	return make(productAverages)
}

func (p productAverages) entry(product string) *priceSum {
	e, ok := p[product]
	if !ok {
		e = &priceSum{}
		p[product] = e
	}
	return e
}

// add registers the product even for a null price so the product still
// appears with a null average.
func (p productAverages) add(product string, price decimal.NullDecimal) {
	e := p.entry(product)
	if !price.Valid {
		return
	}
	e.sum = e.sum.Add(price.Decimal)
	e.count++
}

func (p productAverages) merge(o productAverages) {
	for k, v := range o {
		e := p.entry(k)
		e.sum = e.sum.Add(v.sum)
		e.count += v.count
	}
}

func (p productAverages) result() map[string]decimal.NullDecimal {
	out := make(map[string]decimal.NullDecimal, len(p))
	for k, v := range p {
		out[k] = averageOf(v.sum, v.count)
	}
	return out
}

// averageOf rounds half-up (away from zero for non-negative prices) to two places.
func averageOf(sum decimal.Decimal, count int64) decimal.NullDecimal {
	if count == 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: sum.DivRound(decimal.NewFromInt(count), 2), Valid: true}
}

type dayTotal struct {
	total     decimal.Decimal
	customers map[string]struct{}
}

type dailyTotals map[sales.Date]*dayTotal

func newDailyTotals() dailyTotals {
	return make(dailyTotals)
}

func (d dailyTotals) entry(date sales.Date) *dayTotal {
	e, ok := d[date]
	if !ok {
		e = &dayTotal{customers: make(map[string]struct{})}
		d[date] = e
	}
	return e
}

func (d dailyTotals) add(date sales.Date, customerID string, total decimal.Decimal) {
	e := d.entry(date)
	e.total = e.total.Add(total)
	if customerID != sales.NullKey {
		e.customers[customerID] = struct{}{}
	}
}

func (d dailyTotals) merge(o dailyTotals) {
	for date, v := range o {
		e := d.entry(date)
		e.total = e.total.Add(v.total)
		for c := range v.customers {
			e.customers[c] = struct{}{}
		}
	}
}

func (d dailyTotals) result() []DailySummary {
	out := make([]DailySummary, 0, len(d))
	for date, v := range d {
		out = append(out, DailySummary{
			OrderDate:       date,
			DailyTotalSales: v.total,
			UniqueCustomers: len(v.customers),
		})
	}
	slices.SortFunc(out, func(a, b DailySummary) int {
		return a.OrderDate.Compare(b.OrderDate)
	})
	return out
}
