package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"

	"github.com/roach88/salesmetrics/internal/pipeline"
	"github.com/roach88/salesmetrics/internal/sales"
)

// Null is printed in place of a missing cell.
const Null = "null"

// Options controls table layout.
type Options struct {
	// MaxRows is the number of rows shown per view. 0 shows all rows.
	MaxRows int
	// Truncate is the widest cell printed in full. Longer cells are cut to
	// Truncate-3 characters followed by "...". 0 disables truncation.
	Truncate int
}

// DefaultOptions matches the dataframe show() defaults.
func DefaultOptions() Options {
	return Options{MaxRows: 20, Truncate: 20}
}

// Text writes every view of the report under its heading.
func Text(w io.Writer, r *pipeline.Report, opts Options) error {
	for _, v := range r.Views() {
		if _, err := fmt.Fprintf(w, "===== %s =====\n", v.Title); err != nil {
			return err
		}
		if err := Table(w, v, opts); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// Table writes one view as a bordered table.
func Table(w io.Writer, v pipeline.View, opts Options) error {
	rows := v.Rows
	hidden := false
	if opts.MaxRows > 0 && len(rows) > opts.MaxRows {
		rows = rows[:opts.MaxRows]
		hidden = true
	}

	header := make([]string, len(v.Columns))
	widths := make([]int, len(v.Columns))
	for i, col := range v.Columns {
		header[i] = truncate(col, opts.Truncate)
		widths[i] = max(3, displayWidth(header[i]))
	}

	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(v.Columns))
		for j := range v.Columns {
			var cell any
			if j < len(row) {
				cell = row[j]
			}
			s := truncate(FormatCell(cell), opts.Truncate)
			cells[i][j] = s
			widths[j] = max(widths[j], displayWidth(s))
		}
	}

	var b strings.Builder
	border := separator(widths)
	b.WriteString(border)
	writeRow(&b, header, widths)
	b.WriteString(border)
	for _, row := range cells {
		writeRow(&b, row, widths)
	}
	b.WriteString(border)
	if hidden {
		fmt.Fprintf(&b, "only showing top %d %s\n", opts.MaxRows, plural(opts.MaxRows, "row", "rows"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// FormatCell returns the printed form of a view cell.
func FormatCell(v any) string {
	switch c := v.(type) {
	case nil:
		return Null
	case string:
		if c == "" {
			return Null
		}
		return c
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case decimal.Decimal:
		return sales.FormatDecimal(c)
	case decimal.NullDecimal:
		if !c.Valid {
			return Null
		}
		return sales.FormatDecimal(c.Decimal)
	case sales.Date:
		if c.IsNull() {
			return Null
		}
		return c.String()
	default:
		return fmt.Sprint(c)
	}
}

func separator(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w))
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	return b.String()
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	b.WriteByte('|')
	for i, c := range cells {
		b.WriteString(strings.Repeat(" ", widths[i]-displayWidth(c)))
		b.WriteString(c)
		b.WriteByte('|')
	}
	b.WriteByte('\n')
}

func truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if limit < 4 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// displayWidth counts wide and fullwidth runes as two columns.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		p := width.LookupRune(r)
		switch p.Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
