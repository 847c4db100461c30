// Package pipeline implements the sales metrics computation.
//
// The package exposes two layers:
//
//   - Pure operations (SelectColumns, WithTotalValue, FilterCategory,
//     AggregateByCategory, AveragePriceByProduct, DailySalesSummary) that
//     take a batch and return one derived view or the first error in input
//     order.
//   - Pipeline.Run, which screens the batch once, applies the malformed-row
//     Policy, and evaluates every view into a Report, optionally across
//     several partitions.
//
// # Determinism
//
// Every reduction is exact (decimal sums, distinct-customer set union) and
// therefore commutative and associative. Averages are rounded half-up to
// two places only after all partitions are merged. The error reported under
// PolicyFail is always the first Diagnostic in view order then line order,
// so the outcome does not depend on the worker count.
package pipeline
