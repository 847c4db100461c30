// Package harness runs sales scenarios against both evaluation backends.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: reference_batch
//	description: "What this scenario validates"
//	category: Electronics      # optional, defaults to Electronics
//	on_malformed: fail         # optional, fail | skip
//	workers: 4                 # optional, defaults to 1
//	input: |
//	  order_id,product,category,quantity,price,order_date,customer_id
//	  1,Laptop,Electronics,2,10.0,2024-01-01,c1
//	assertions:
//	  - type: column_values
//	    view: with_total_value
//	    column: total_value
//	    values: ["20.0"]
//	  - type: row_match
//	    view: total_sales_per_category
//	    where: { category: Electronics }
//	    expect: { total_sales: "20.0" }
//
// # Assertion Types
//
//   - view_count: the view has exactly count rows
//   - column_values: a column's printed cells, in row order
//   - row_match: the first row matching where has the expect cells
//   - error_code: the run fails with the given error code
//   - skipped_count: exactly count rows were skipped
//
// Cells are compared in their printed form ("20.0", "null", "2024-01-01").
//
// # Backends
//
// Every scenario runs through the in-memory pipeline and the SQLite engine.
// A scenario fails when the two disagree on the error code or on the
// canonical report, whatever its assertions say.
//
// # Deterministic Testing
//
// Runs use a fixed run id (scenario.run_id or testutil.DefaultRunID) and
// discard logs, so reports and golden files are reproducible.
package harness
