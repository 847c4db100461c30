package sqlexec

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/salesmetrics/internal/pipeline"
	"github.com/roach88/salesmetrics/internal/sales"
)

const insertSale = `
INSERT INTO sales (
    seq, line, order_id, product, category,
    quantity_raw, price_raw, order_date_raw, customer_id,
    quantity, price, order_date,
    total_ok, price_ok, date_ok
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// Load replaces the table contents with a screened batch.
// Runs in a single transaction.
func (e *Engine) Load(ctx context.Context, s *pipeline.Screening) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM sales"); err != nil {
		return fmt.Errorf("clear sales: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSale)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range s.Records {
		row := s.Rows[i]

		var quantity sql.NullInt64
		var price, orderDate sql.NullString
		if row.TotalOK {
			q, err := r.QuantityValue()
			if err != nil {
				return fmt.Errorf("line %d: %w", r.Line, err)
			}
			quantity = sql.NullInt64{Int64: q, Valid: true}
		}
		if row.PriceOK && row.Price.Valid {
			price = nullString(sales.FormatDecimal(row.Price.Decimal))
		}
		if row.DateOK {
			orderDate = nullString(row.Date.String())
		}

		_, err := stmt.ExecContext(ctx,
			i, r.Line, nullString(r.OrderID), nullString(r.Product), nullString(r.Category),
			nullString(r.Quantity), nullString(r.Price), nullString(r.OrderDate), nullString(r.CustomerID),
			quantity, price, orderDate,
			flag(row.TotalOK), flag(row.PriceOK), flag(row.DateOK),
		)
		if err != nil {
			return fmt.Errorf("insert line %d: %w", r.Line, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
