package pipeline

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/roach88/salesmetrics/internal/sales"
)

// Policy decides what happens to a row a view cannot use.
type Policy string

const (
	// PolicyFail fails the whole run on the first diagnostic.
	PolicyFail Policy = "fail"

	// PolicySkip drops the row from the affected view and logs it.
	PolicySkip Policy = "skip"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyFail, PolicySkip:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("invalid policy %q: must be %q or %q", s, PolicyFail, PolicySkip)
	}
}

// ScreenedRow is the typed form of one record.
type ScreenedRow struct {
	Total   decimal.Decimal
	TotalOK bool // quantity and price are present and numeric

	Price   decimal.NullDecimal
	PriceOK bool // price is null or numeric

	Date   sales.Date
	DateOK bool // order_date is null or matches yyyy-MM-dd

	totalErr error
	priceErr error
	dateErr  error
}

// screenRecord types one record. It never fails; errors are kept on the row.
func screenRecord(r sales.SalesRecord) ScreenedRow {
	var row ScreenedRow

	row.Total, row.totalErr = r.TotalValue()
	row.TotalOK = row.totalErr == nil

	row.Price, row.priceErr = r.PriceValue()
	row.PriceOK = row.priceErr == nil

	row.Date, row.dateErr = r.DateValue()
	row.DateOK = row.dateErr == nil

	return row
}

// Diagnostic records a row that a view cannot use.
type Diagnostic struct {
	View    string `json:"view"`
	Line    int    `json:"line"`
	OrderID string `json:"order_id"`
	Err     error  `json:"-"`
}

// Message returns the error text.
func (d Diagnostic) Message() string {
	if d.Err == nil {
		return ""
	}
	return d.Err.Error()
}

// Screening is the result of typing every record of a batch once.
// Rows[i] corresponds to Records[i].
type Screening struct {
	Records     []sales.SalesRecord
	Rows        []ScreenedRow
	Diagnostics []Diagnostic
}

// Screen types every record sequentially. Pipeline.Screen is the
// partitioned equivalent.
func Screen(records []sales.SalesRecord) *Screening {
	rows := make([]ScreenedRow, len(records))
	for i, r := range records {
		rows[i] = screenRecord(r)
	}
	return newScreening(records, rows)
}

// newScreening lists diagnostics in view order (with_total_value,
// average_price_per_product, daily_sales_summary), then in input order.
// The daily summary only consumes enriched rows, so a row already dropped
// by with_total_value is not reported again there.
func newScreening(records []sales.SalesRecord, rows []ScreenedRow) *Screening {
	s := &Screening{Records: records, Rows: rows}
	for i, row := range rows {
		if !row.TotalOK {
			s.Diagnostics = append(s.Diagnostics, diagnostic(ViewWithTotal, records[i], row.totalErr))
		}
	}
	for i, row := range rows {
		if !row.PriceOK {
			s.Diagnostics = append(s.Diagnostics, diagnostic(ViewProductAverages, records[i], row.priceErr))
		}
	}
	for i, row := range rows {
		if row.TotalOK && !row.DateOK {
			s.Diagnostics = append(s.Diagnostics, diagnostic(ViewDaily, records[i], row.dateErr))
		}
	}
	return s
}

func diagnostic(view string, r sales.SalesRecord, err error) Diagnostic {
	return Diagnostic{View: view, Line: r.Line, OrderID: r.OrderID, Err: err}
}

// Err returns the error of the first diagnostic, or nil.
func (s *Screening) Err() error {
	if len(s.Diagnostics) == 0 {
		return nil
	}
	return s.Diagnostics[0].Err
}

// Enriched returns the rows usable by with_total_value, in input order.
func (s *Screening) Enriched() []EnrichedRow {
	out := make([]EnrichedRow, 0, len(s.Records))
	for i, row := range s.Rows {
		if row.TotalOK {
			out = append(out, EnrichedRow{SalesRecord: s.Records[i], TotalValue: row.Total})
		}
	}
	return out
}
