package sqlexec

import (
	"database/sql"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/roach88/salesmetrics/internal/sales"
)

// DriverName is the database/sql driver with the decimal functions registered.
const DriverName = "sqlite3_salesmetrics"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: registerFunctions,
	})
}

func registerFunctions(conn *sqlite3.SQLiteConn) error {
	if err := conn.RegisterFunc("decimal_mul", decimalMul, true); err != nil {
		return fmt.Errorf("register decimal_mul: %w", err)
	}
	if err := conn.RegisterAggregator("decimal_sum", newDecimalSum, true); err != nil {
		return fmt.Errorf("register decimal_sum: %w", err)
	}
	if err := conn.RegisterAggregator("decimal_avg2", newDecimalAvg2, true); err != nil {
		return fmt.Errorf("register decimal_avg2: %w", err)
	}
	return nil
}

// decimalMul multiplies an integer quantity by a decimal price exactly.
func decimalMul(quantity int64, price string) (string, error) {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return "", fmt.Errorf("decimal_mul: price %q: %w", price, err)
	}
	return sales.FormatDecimal(p.Mul(decimal.NewFromInt(quantity))), nil
}

// decimalSum is the exact SUM aggregate over decimal text.
type decimalSum struct {
	sum decimal.Decimal
	err error
}

func newDecimalSum() *decimalSum {
	return &decimalSum{}
}

func (a *decimalSum) Step(v string) {
	if a.err != nil {
		return
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		a.err = fmt.Errorf("decimal_sum: %q: %w", v, err)
		return
	}
	a.sum = a.sum.Add(d)
}

func (a *decimalSum) Done() (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return sales.FormatDecimal(a.sum), nil
}

// decimalAvg2 is the AVG aggregate rounded half-up to two places.
// Empty inputs are nulls and are not counted; with no non-null input the
// result is '' (null).
type decimalAvg2 struct {
	sum   decimal.Decimal
	count int64
	err   error
}

func newDecimalAvg2() *decimalAvg2 {
	return &decimalAvg2{}
}

func (a *decimalAvg2) Step(v string) {
	if a.err != nil || v == "" {
		return
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		a.err = fmt.Errorf("decimal_avg2: %q: %w", v, err)
		return
	}
	a.sum = a.sum.Add(d)
	a.count++
}

func (a *decimalAvg2) Done() (string, error) {
	if a.err != nil {
		return "", a.err
	}
	if a.count == 0 {
		return "", nil
	}
	return a.sum.DivRound(decimal.NewFromInt(a.count), 2).StringFixed(2), nil
}
