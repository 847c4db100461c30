package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/salesmetrics/internal/sales"
)

// Snapshot is the golden form of a scenario run: the canonical report, or
// the error code when the run failed. The run id is not part of it.
func Snapshot(name string, result *Result) ([]byte, error) {
	m := map[string]any{"scenario_name": name}
	if result.Report != nil {
		m["report"] = result.Report.CanonicalMap()
	} else {
		m["error_code"] = result.ErrorCode
	}
	return sales.MarshalCanonical(m)
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
