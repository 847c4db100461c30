package harness

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/salesmetrics/internal/config"
	"github.com/roach88/salesmetrics/internal/ingest"
	"github.com/roach88/salesmetrics/internal/pipeline"
	"github.com/roach88/salesmetrics/internal/sales"
	"github.com/roach88/salesmetrics/internal/sqlexec"
	"github.com/roach88/salesmetrics/internal/testutil"
)

// Harness is the scenario execution environment.
// It runs both backends with a fixed run id and discarded logs.
type Harness struct {
	category string
	policy   pipeline.Policy
	workers  int
	runID    string
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Execution flow:
// 1. Decode the scenario input
// 2. Evaluate the batch in memory and in a fresh in-memory SQLite database
// 3. Check that both backends agree
// 4. Evaluate assertions against the in-memory report
func Run(scenario *Scenario) (*Result, error) {
	h, err := newHarness(scenario)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	result := NewResult()

	records, err := ingest.Decode(strings.NewReader(scenario.Input), ingest.Options{})
	if err != nil {
		if sales.CodeOf(err) == "" {
			return nil, fmt.Errorf("failed to decode input: %w", err)
		}
		result.ErrorCode = string(sales.CodeOf(err))
		result.ErrorMessage = err.Error()
		h.finish(result, scenario.Assertions)
		return result, nil
	}

	memReport, memErr := h.pipeline().Run(ctx, records, h.category)
	if err := unexpected("memory", memErr); err != nil {
		return nil, err
	}
	sqlReport, sqlErr := h.runSQL(ctx, records)
	if err := unexpected("sqlite", sqlErr); err != nil {
		return nil, err
	}

	memCode, sqlCode := sales.CodeOf(memErr), sales.CodeOf(sqlErr)
	if memCode != sqlCode {
		result.AddError(fmt.Sprintf("backends disagree on error: memory %q, sqlite %q", memCode, sqlCode))
	}

	if memErr != nil {
		result.ErrorCode = string(memCode)
		result.ErrorMessage = memErr.Error()
		h.finish(result, scenario.Assertions)
		return result, nil
	}

	if sqlReport != nil {
		if err := compareReports(memReport, sqlReport); err != nil {
			result.AddError(err.Error())
		}
	}

	result.Report = memReport
	if result.Digests, err = memReport.Digests(); err != nil {
		return nil, fmt.Errorf("failed to digest report: %w", err)
	}
	h.finish(result, scenario.Assertions)
	return result, nil
}

func newHarness(s *Scenario) (*Harness, error) {
	h := &Harness{
		category: s.Category,
		policy:   pipeline.PolicyFail,
		workers:  s.Workers,
		runID:    s.RunID,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	if h.category == "" {
		h.category = config.Defaults().Category
	}
	if s.OnMalformed != "" {
		p, err := pipeline.ParsePolicy(s.OnMalformed)
		if err != nil {
			return nil, err
		}
		h.policy = p
	}
	if h.workers == 0 {
		h.workers = 1
	}
	return h, nil
}

func (h *Harness) pipeline() *pipeline.Pipeline {
	return pipeline.New(
		pipeline.WithPolicy(h.policy),
		pipeline.WithWorkers(h.workers),
		pipeline.WithLogger(h.logger),
		pipeline.WithRunIDGenerator(testutil.NewFixedRunIDGenerator(h.runID)),
	)
}

func (h *Harness) runSQL(ctx context.Context, records []sales.SalesRecord) (*pipeline.Report, error) {
	eng, err := sqlexec.Open(sqlexec.MemoryDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory engine: %w", err)
	}
	defer eng.Close()
	return eng.Run(ctx, h.pipeline(), records, h.category)
}

// finish evaluates assertions and flags an error nobody asserted on.
func (h *Harness) finish(result *Result, assertions []Assertion) {
	for _, msg := range EvaluateAssertions(result, assertions) {
		result.AddError(msg)
	}
	if result.ErrorCode == "" {
		return
	}
	for _, a := range assertions {
		if a.Type == AssertErrorCode {
			return
		}
	}
	result.AddError(fmt.Sprintf("unexpected error: %s", result.ErrorMessage))
}

// unexpected reports run errors that carry no sales error code.
func unexpected(backend string, err error) error {
	if err == nil || sales.CodeOf(err) != "" {
		return nil
	}
	return fmt.Errorf("%s backend failed: %w", backend, err)
}

// compareReports checks that two reports have the same canonical encoding.
func compareReports(memory, sqlite *pipeline.Report) error {
	want, err := memory.Canonical()
	if err != nil {
		return fmt.Errorf("failed to encode memory report: %w", err)
	}
	got, err := sqlite.Canonical()
	if err != nil {
		return fmt.Errorf("failed to encode sqlite report: %w", err)
	}
	if !bytes.Equal(want, got) {
		return fmt.Errorf("backends disagree on report:\n  memory: %s\n  sqlite: %s", want, got)
	}
	return nil
}
