package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/salesmetrics/internal/testutil"
)

func executeValidate(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestValidate_ValidFile(t *testing.T) {
	path := testutil.WriteCSV(t, "sales.csv", testutil.CSV(testutil.ReferenceRows()...))

	out, err := executeValidate(t, "text", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2 row(s) valid")
}

func TestValidate_CollectsEveryError(t *testing.T) {
	rows := append(testutil.ReferenceRows(),
		testutil.Row{OrderID: "3", Product: "Pen", Category: "Office", Quantity: "1.5", Price: "2.00", OrderDate: "2024-01-03", CustomerID: "c3"},
		testutil.Row{OrderID: "4", Product: "Pad", Category: "Office", Quantity: "1", Price: "2.00", OrderDate: "03/01/2024", CustomerID: "c4"},
	)
	rows[0].Price = "abc"
	path := testutil.WriteCSV(t, "sales.csv", testutil.CSV(rows...))

	t.Run("text", func(t *testing.T) {
		out, err := executeValidate(t, "text", path)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, out, "✗ Validation failed")
		assert.Contains(t, out, "line 2 (with_total_value)")
		assert.Contains(t, out, "line 4 (with_total_value)")
		assert.Contains(t, out, "line 2 (average_price_per_product)")
		assert.Contains(t, out, "line 5 (daily_sales_summary)")
	})

	t.Run("json", func(t *testing.T) {
		out, err := executeValidate(t, "json", path)
		require.Error(t, err)
		assert.Equal(t, ExitFailure, GetExitCode(err))

		var resp struct {
			Status string           `json:"status"`
			Data   ValidationResult `json:"data"`
			Error  *CLIError        `json:"error"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.False(t, resp.Data.Valid)
		assert.Equal(t, 4, resp.Data.Rows)
		require.Len(t, resp.Data.Errors, 4)

		codes := make([]string, len(resp.Data.Errors))
		for i, e := range resp.Data.Errors {
			codes[i] = e.Code
		}
		assert.Equal(t, []string{"MALFORMED_ROW", "MALFORMED_ROW", "MALFORMED_ROW", "DATE_PARSE"}, codes)
		assert.Equal(t, "MALFORMED_ROW", resp.Error.Code)
	})
}

func TestValidate_SchemaError(t *testing.T) {
	path := testutil.WriteCSV(t, "sales.csv", "order_id,product,category\n1,Laptop,Electronics\n")

	out, err := executeValidate(t, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [SCHEMA]")
	assert.Contains(t, out, "quantity")
}

func TestValidate_MissingArg(t *testing.T) {
	_, err := executeValidate(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}
