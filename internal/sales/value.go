package sales

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the fixed order_date format (yyyy-MM-dd).
const DateLayout = "2006-01-02"

// Date is a calendar date without a time zone.
// The zero value is the null date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses text in DateLayout. Empty text yields the null date.
func ParseDate(s string) (Date, error) {
	if s == "" {
		return Date{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// MustParseDate is like ParseDate but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// IsNull reports whether d is the null date.
func (d Date) IsNull() bool {
	return d == Date{}
}

// String formats d in DateLayout, or returns "" for the null date.
func (d Date) String() string {
	if d.IsNull() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Compare orders dates ascending with the null date first.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// ParseQuantity parses a non-negative integer quantity.
func ParseQuantity(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing value")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value")
	}
	return n, nil
}

// MaxPriceScale bounds the decimal exponent of a price in both directions.
const MaxPriceScale = 18

// ParsePrice parses a non-negative decimal price. Empty text is null.
func ParsePrice(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("not a number")
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, fmt.Errorf("negative value")
	}
	// Exponent notation can ask for any scale; the formatted value grows with it.
	if d.Exponent() < -MaxPriceScale {
		return decimal.NullDecimal{}, fmt.Errorf("too many decimal places")
	}
	if d.Exponent() > MaxPriceScale {
		return decimal.NullDecimal{}, fmt.Errorf("exponent out of range")
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// QuantityValue returns the typed quantity.
// A missing or non-integer quantity is a MalformedRowError.
func (r SalesRecord) QuantityValue() (int64, error) {
	n, err := ParseQuantity(r.Quantity)
	if err != nil {
		return 0, r.malformed(ColQuantity, r.Quantity, err.Error())
	}
	return n, nil
}

// PriceValue returns the typed price; a null price is not an error here.
func (r SalesRecord) PriceValue() (decimal.NullDecimal, error) {
	p, err := ParsePrice(r.Price)
	if err != nil {
		return decimal.NullDecimal{}, r.malformed(ColPrice, r.Price, err.Error())
	}
	return p, nil
}

// TotalValue returns quantity * price in exact decimal arithmetic.
// The product keeps the scale of the price.
func (r SalesRecord) TotalValue() (decimal.Decimal, error) {
	q, err := r.QuantityValue()
	if err != nil {
		return decimal.Decimal{}, err
	}
	p, err := r.PriceValue()
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !p.Valid {
		return decimal.Decimal{}, r.malformed(ColPrice, r.Price, "missing value")
	}
	return p.Decimal.Mul(decimal.NewFromInt(q)), nil
}

// DateValue returns the typed order date; an empty cell is the null date.
func (r SalesRecord) DateValue() (Date, error) {
	d, err := ParseDate(r.OrderDate)
	if err != nil {
		return Date{}, &DateParseError{
			Line:    r.Line,
			OrderID: r.OrderID,
			Value:   r.OrderDate,
			Layout:  "yyyy-MM-dd",
			Err:     err,
		}
	}
	return d, nil
}

func (r SalesRecord) malformed(column, value, reason string) *MalformedRowError {
	return &MalformedRowError{
		Line:    r.Line,
		OrderID: r.OrderID,
		Column:  column,
		Value:   value,
		Reason:  reason,
	}
}

// FormatDecimal renders d in plain notation keeping its scale,
// so 10.0 * 2 prints as "20.0".
func FormatDecimal(d decimal.Decimal) string {
	if d.Exponent() >= 0 {
		return d.StringFixed(0)
	}
	return d.StringFixed(-d.Exponent())
}
