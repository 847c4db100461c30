package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/salesmetrics/internal/pipeline"
	"github.com/roach88/salesmetrics/internal/render"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertErrorCode:
		return assertErrorCode(result, a)
	case AssertSkippedCount:
		if result.Report == nil {
			return noReport(result, a)
		}
		return assertSkippedCount(result.Report, a)
	case AssertViewCount, AssertColumnValues, AssertRowMatch:
		if result.Report == nil {
			return noReport(result, a)
		}
		view, ok := findView(result.Report, a.View)
		if !ok {
			return fmt.Errorf("unknown view %q", a.View)
		}
		switch a.Type {
		case AssertViewCount:
			return assertViewCount(view, a)
		case AssertColumnValues:
			return assertColumnValues(view, a)
		default:
			return assertRowMatch(view, a)
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func noReport(result *Result, a Assertion) error {
	return &AssertionError{
		Type:     a.Type,
		Expected: "a report",
		Actual:   fmt.Sprintf("run failed with %s: %s", result.ErrorCode, result.ErrorMessage),
	}
}

func assertErrorCode(result *Result, a Assertion) error {
	if result.ErrorCode == a.Code {
		return nil
	}
	actual := "run succeeded"
	if result.ErrorCode != "" {
		actual = fmt.Sprintf("%s: %s", result.ErrorCode, result.ErrorMessage)
	}
	return &AssertionError{Type: a.Type, Expected: a.Code, Actual: actual}
}

func assertSkippedCount(r *pipeline.Report, a Assertion) error {
	if len(r.Skipped) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d skipped rows", a.Count),
		Actual:   fmt.Sprintf("%d skipped rows", len(r.Skipped)),
	}
}

func assertViewCount(v pipeline.View, a Assertion) error {
	if len(v.Rows) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s has %d rows", v.Name, a.Count),
		Actual:   fmt.Sprintf("%d rows", len(v.Rows)),
	}
}

func assertColumnValues(v pipeline.View, a Assertion) error {
	col := slices.Index(v.Columns, a.Column)
	if col < 0 {
		return fmt.Errorf("view %s has no column %q", v.Name, a.Column)
	}
	got := make([]string, len(v.Rows))
	for i, row := range v.Rows {
		got[i] = render.FormatCell(row[col])
	}
	if slices.Equal(got, a.Values) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%s.%s = %v", v.Name, a.Column, a.Values),
		Actual:   fmt.Sprintf("%v", got),
	}
}

func assertRowMatch(v pipeline.View, a Assertion) error {
	index := make(map[string]int, len(v.Columns))
	for i, c := range v.Columns {
		index[c] = i
	}
	for col := range a.Where {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("view %s has no column %q", v.Name, col)
		}
	}
	for col := range a.Expect {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("view %s has no column %q", v.Name, col)
		}
	}

	for _, row := range v.Rows {
		if !cellsMatch(row, index, a.Where) {
			continue
		}
		var diffs []string
		for _, col := range sortedKeys(a.Expect) {
			if got := render.FormatCell(row[index[col]]); got != a.Expect[col] {
				diffs = append(diffs, fmt.Sprintf("%s=%s (want %s)", col, got, a.Expect[col]))
			}
		}
		if len(diffs) == 0 {
			return nil
		}
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("row %v with %v", a.Where, a.Expect),
			Actual:   strings.Join(diffs, ", "),
		}
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("row %v in %s", a.Where, v.Name),
		Actual:   "no matching row",
	}
}

func cellsMatch(row []any, index map[string]int, where map[string]string) bool {
	for col, want := range where {
		if render.FormatCell(row[index[col]]) != want {
			return false
		}
	}
	return true
}

func findView(r *pipeline.Report, name string) (pipeline.View, bool) {
	for _, v := range r.Views() {
		if v.Name == name {
			return v, true
		}
	}
	return pipeline.View{}, false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
