// Package render prints pipeline reports.
//
// Text output lays every view out the way a dataframe show() call does:
// bordered, right-aligned cells, null for missing values, long cells cut
// and a row limit with a trailing note. JSON output wraps the canonical
// report and its view digests.
package render
