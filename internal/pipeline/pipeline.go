package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/salesmetrics/internal/sales"
)

// MaxWorkers bounds the number of partitions evaluated concurrently.
const MaxWorkers = 256

// Pipeline evaluates every view of a batch.
type Pipeline struct {
	policy  Policy
	workers int
	logger  *slog.Logger
	runIDs  RunIDGenerator
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPolicy sets the malformed-row policy. Defaults to PolicyFail.
func WithPolicy(p Policy) Option {
	return func(pl *Pipeline) { pl.policy = p }
}

// WithWorkers sets the number of partitions. Values below 1 mean 1.
func WithWorkers(n int) Option {
	return func(pl *Pipeline) { pl.workers = n }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(pl *Pipeline) { pl.logger = l }
}

// WithRunIDGenerator overrides the run id generator (for testing).
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(pl *Pipeline) { pl.runIDs = g }
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		policy:  PolicyFail,
		workers: 1,
		runIDs:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.workers < 1 {
		p.workers = 1
	}
	if p.workers > MaxWorkers {
		p.workers = MaxWorkers
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Policy returns the configured policy.
func (p *Pipeline) Policy() Policy {
	return p.policy
}

// NewRunID returns a fresh run id from the configured generator.
func (p *Pipeline) NewRunID() string {
	return p.runIDs.Generate()
}

// Screen types every record, one partition per worker.
// The result is identical to the package-level Screen.
func (p *Pipeline) Screen(ctx context.Context, records []sales.SalesRecord) (*Screening, error) {
	rows := make([]ScreenedRow, len(records))
	err := p.forEachPartition(ctx, len(records), func(_ int, lo, hi int) {
		for i := lo; i < hi; i++ {
			rows[i] = screenRecord(records[i])
		}
	})
	if err != nil {
		return nil, err
	}
	return newScreening(records, rows), nil
}

// Admit applies the policy to a screening: under PolicyFail the first
// diagnostic is returned, under PolicySkip every diagnostic is logged.
func (p *Pipeline) Admit(runID string, s *Screening) error {
	if p.policy == PolicyFail {
		if err := s.Err(); err != nil {
			p.logger.Error("batch rejected",
				"run_id", runID,
				"diagnostics", len(s.Diagnostics),
				"error", err)
			return err
		}
		return nil
	}
	for _, d := range s.Diagnostics {
		p.logger.Warn("row skipped",
			"run_id", runID,
			"view", d.View,
			"line", d.Line,
			"order_id", d.OrderID,
			"error", d.Err)
	}
	return nil
}

// Run screens the batch, applies the policy, and evaluates every view.
// Under PolicyFail a malformed batch produces no Report.
func (p *Pipeline) Run(ctx context.Context, records []sales.SalesRecord, category string) (*Report, error) {
	runID := p.NewRunID()
	p.logger.Info("pipeline starting",
		"run_id", runID,
		"rows", len(records),
		"workers", p.workers,
		"policy", string(p.policy))

	screening, err := p.Screen(ctx, records)
	if err != nil {
		return nil, err
	}
	if err := p.Admit(runID, screening); err != nil {
		return nil, err
	}

	report, err := p.evaluate(ctx, runID, category, screening)
	if err != nil {
		return nil, err
	}

	p.logger.Info("pipeline finished",
		"run_id", runID,
		"enriched", len(report.Enriched),
		"filtered", len(report.Filtered),
		"categories", len(report.CategoryTotals),
		"products", len(report.ProductAverages),
		"days", len(report.Daily),
		"skipped", len(report.Skipped))
	return report, nil
}

type partial struct {
	categories categoryTotals
	products   productAverages
	daily      dailyTotals
}

func (p *Pipeline) evaluate(ctx context.Context, runID, category string, s *Screening) (*Report, error) {
	partials := make([]partial, p.partitionCount(len(s.Records)))
	err := p.forEachPartition(ctx, len(s.Records), func(part, lo, hi int) {
		acc := partial{
			categories: newCategoryTotals(),
			products:   newProductAverages(),
			daily:      newDailyTotals(),
		}
		for i := lo; i < hi; i++ {
			r, row := s.Records[i], s.Rows[i]
			if row.PriceOK {
				acc.products.add(r.Product, row.Price)
			}
			if !row.TotalOK {
				continue
			}
			acc.categories.add(r.Category, row.Total)
			if row.DateOK {
				acc.daily.add(row.Date, r.CustomerID, row.Total)
			}
		}
		partials[part] = acc
	})
	if err != nil {
		return nil, err
	}

	categories := newCategoryTotals()
	products := newProductAverages()
	daily := newDailyTotals()
	for _, acc := range partials {
		categories.merge(acc.categories)
		products.merge(acc.products)
		daily.merge(acc.daily)
	}

	enriched := s.Enriched()
	report := &Report{
		RunID:           runID,
		Category:        category,
		Policy:          p.policy,
		Raw:             s.Records,
		Selected:        SelectColumns(s.Records),
		Enriched:        enriched,
		Filtered:        FilterCategory(enriched, category),
		CategoryTotals:  categories.result(),
		ProductAverages: products.result(),
		Daily:           daily.result(),
	}
	if p.policy == PolicySkip {
		report.Skipped = s.Diagnostics
	}

	for _, v := range report.Views() {
		p.logger.Debug("view computed", "run_id", runID, "view", v.Name, "rows", len(v.Rows))
	}
	return report, nil
}

func (p *Pipeline) partitionCount(n int) int {
	if n == 0 {
		return 0
	}
	return (n + p.chunkSize(n) - 1) / p.chunkSize(n)
}

func (p *Pipeline) chunkSize(n int) int {
	size := (n + p.workers - 1) / p.workers
	if size < 1 {
		size = 1
	}
	return size
}

// forEachPartition calls fn for every [lo, hi) chunk of n rows, running at
// most p.workers chunks at once. fn must only write state owned by its part.
func (p *Pipeline) forEachPartition(ctx context.Context, n int, fn func(part, lo, hi int)) error {
	if n == 0 {
		return ctx.Err()
	}
	size := p.chunkSize(n)

	var g errgroup.Group
	g.SetLimit(p.workers)
	for part, lo := 0, 0; lo < n; part, lo = part+1, lo+size {
		hi := min(lo+size, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("partition %d: %w", part, err)
			}
			fn(part, lo, hi)
			return nil
		})
	}
	return g.Wait()
}
