// Package sqlexec evaluates the sales views with SQLite.
//
// A screened batch is loaded into a scratch database (in memory by
// default) and every view is computed by one SQL statement: projections
// and filters with SELECT/WHERE, aggregates with GROUP BY. Decimal
// arithmetic never touches SQLite's REAL type; these Go functions are
// registered on every connection instead:
//
//   - decimal_mul(quantity INTEGER, price TEXT) -> TEXT
//   - decimal_sum(value TEXT) -> TEXT (aggregate, exact)
//   - decimal_avg2(price TEXT) -> TEXT (aggregate, mean rounded half-up
//     to two places after the full reduction; '' inputs are nulls)
//
// # Query rules
//
//   - Every query has an ORDER BY, so row views come back in input order
//     (seq) and grouped views in key order
//   - All values are bound as parameters, never interpolated
//   - GROUP BY collapses NULL keys into one group and ORDER BY ... ASC puts
//     NULL first, matching the in-memory pipeline
//
// The database is configured with one connection, since each :memory:
// connection would otherwise see its own empty database.
package sqlexec
