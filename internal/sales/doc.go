// Package sales provides the data model shared by every salesmetrics package.
//
// This package contains the record and date types, typed cell parsing, the
// error kinds raised while deriving views, and the canonical JSON encoding
// used for view digests. All other internal packages import sales; sales
// imports nothing internal.
//
// Key design constraints:
//   - Cells are kept as source text and typed on access; "" is the null value
//   - Money is github.com/shopspring/decimal, never float64
//   - All JSON keys use snake_case
//   - Canonical JSON sorts object keys by UTF-16 code units (RFC 8785)
package sales
