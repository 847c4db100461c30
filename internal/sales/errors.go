package sales

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes data errors.
type ErrorCode string

const (
	// CodeMalformedRow indicates a missing or non-numeric quantity or price.
	CodeMalformedRow ErrorCode = "MALFORMED_ROW"

	// CodeDateParse indicates an order_date that does not match yyyy-MM-dd.
	CodeDateParse ErrorCode = "DATE_PARSE"

	// CodeSchema indicates a required column is absent from the input.
	CodeSchema ErrorCode = "SCHEMA"
)

var (
	// ErrComputation matches every error raised while deriving a view
	// from a record (MalformedRowError and DateParseError).
	ErrComputation = errors.New("computation error")

	// ErrSchema matches SchemaError.
	ErrSchema = errors.New("schema error")
)

// MalformedRowError reports a quantity or price cell that cannot take part
// in a computation.
type MalformedRowError struct {
	Line    int
	OrderID string
	Column  string
	Value   string
	Reason  string
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("%s: line %d (order_id=%q): %s %q: %s",
		CodeMalformedRow, e.Line, e.OrderID, e.Column, e.Value, e.Reason)
}

// Is makes MalformedRowError match ErrComputation.
func (e *MalformedRowError) Is(target error) bool {
	return target == ErrComputation
}

// Code returns CodeMalformedRow.
func (e *MalformedRowError) Code() ErrorCode {
	return CodeMalformedRow
}

// DateParseError reports an order_date that does not match the fixed layout.
type DateParseError struct {
	Line    int
	OrderID string
	Value   string
	Layout  string
	Err     error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("%s: line %d (order_id=%q): order_date %q does not match %s",
		CodeDateParse, e.Line, e.OrderID, e.Value, e.Layout)
}

// Unwrap returns the underlying time parse error.
func (e *DateParseError) Unwrap() error {
	return e.Err
}

// Is makes DateParseError match ErrComputation.
func (e *DateParseError) Is(target error) bool {
	return target == ErrComputation
}

// Code returns CodeDateParse.
func (e *DateParseError) Code() ErrorCode {
	return CodeDateParse
}

// SchemaError reports required columns missing from the input header.
type SchemaError struct {
	Missing []string
	Header  []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing required column(s) %s (header: %s)",
		CodeSchema, strings.Join(e.Missing, ", "), strings.Join(e.Header, ", "))
}

// Is makes SchemaError match ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// Code returns CodeSchema.
func (e *SchemaError) Code() ErrorCode {
	return CodeSchema
}

// CodeOf returns the ErrorCode carried by err, or "" if it carries none.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var coded interface{ Code() ErrorCode }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

// IsMalformedRow returns true if err is or wraps a MalformedRowError.
func IsMalformedRow(err error) bool {
	var me *MalformedRowError
	return errors.As(err, &me)
}

// IsDateParse returns true if err is or wraps a DateParseError.
func IsDateParse(err error) bool {
	var de *DateParseError
	return errors.As(err, &de)
}
