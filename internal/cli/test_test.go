package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: two_sales
description: "Reference batch totals"
input: |
  order_id,product,category,quantity,price,order_date,customer_id
  1,Laptop,Electronics,2,10.0,2024-01-01,c1
  2,Novel,Books,1,5.0,2024-01-02,c2
assertions:
  - type: column_values
    view: with_total_value
    column: total_value
    values: ["20.0", "5.0"]
`

const failingScenario = `name: wrong_total
description: "Expects a total the batch does not produce"
input: |
  order_id,product,category,quantity,price,order_date,customer_id
  1,Laptop,Electronics,2,10.0,2024-01-01,c1
assertions:
  - type: column_values
    view: with_total_value
    column: total_value
    values: ["21.0"]
`

func writeScenario(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func executeTest(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	cmd := NewTestCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := executeTest(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, err := executeTest(t, "text", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := executeTest(t, "text", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommandPassing(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "two_sales.yaml", passingScenario)

	out, err := executeTest(t, "text", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ two_sales")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandFailing(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "two_sales.yaml", passingScenario)
	writeScenario(t, dir, "wrong_total.yaml", failingScenario)

	out, err := executeTest(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 1, resp.Data.Passed)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, "TEST_FAILED", resp.Error.Code)
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "two_sales.yaml", passingScenario)
	writeScenario(t, dir, "wrong_total.yaml", failingScenario)

	out, err := executeTest(t, "text", dir, "--filter", "two_*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommandGolden(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "two_sales.yaml", passingScenario)

	out, err := executeTest(t, "text", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")

	goldenPath := filepath.Join(dir, "golden", "two_sales.golden")
	data, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scenario_name":"two_sales"`)

	_, err = executeTest(t, "text", dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"scenario_name":"two_sales"}`), 0o644))
	out, err = executeTest(t, "text", dir)
	require.Error(t, err)
	assert.Contains(t, out, "does not match golden file")
}
