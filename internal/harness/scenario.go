package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/salesmetrics/internal/pipeline"
)

// Scenario defines one batch and what its views must contain.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Category is the filterCategory argument. Defaults to Electronics.
	Category string `yaml:"category,omitempty"`

	// OnMalformed is the malformed-row policy. Defaults to fail.
	OnMalformed string `yaml:"on_malformed,omitempty"`

	// Workers is the partition count of the in-memory backend. Defaults to 1.
	Workers int `yaml:"workers,omitempty"`

	// RunID fixes the report's run id. Defaults to testutil.DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`

	// Input is the CSV file content, header included.
	Input string `yaml:"input"`

	// Assertions validate the resulting report.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates one aspect of the report.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// View is the view name (view_count, column_values, row_match).
	View string `yaml:"view,omitempty"`

	// Column is the column name (column_values).
	Column string `yaml:"column,omitempty"`

	// Values are the expected printed cells in row order (column_values).
	Values []string `yaml:"values,omitempty"`

	// Where selects the first row whose cells all match (row_match).
	Where map[string]string `yaml:"where,omitempty"`

	// Expect contains the expected cells of the selected row (row_match).
	// Subset match - only specified columns are validated.
	Expect map[string]string `yaml:"expect,omitempty"`

	// Count is the expected number of rows (view_count, skipped_count).
	Count int `yaml:"count,omitempty"`

	// Code is the expected error code (error_code).
	Code string `yaml:"code,omitempty"`
}

// Assertion type constants.
const (
	AssertViewCount    = "view_count"
	AssertColumnValues = "column_values"
	AssertRowMatch     = "row_match"
	AssertErrorCode    = "error_code"
	AssertSkippedCount = "skipped_count"
)

var knownViews = []string{
	pipeline.ViewRaw,
	pipeline.ViewSelected,
	pipeline.ViewWithTotal,
	pipeline.ViewFiltered,
	pipeline.ViewCategoryTotals,
	pipeline.ViewProductAverages,
	pipeline.ViewDaily,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Input == "" {
		return fmt.Errorf("input is required")
	}
	if s.OnMalformed != "" {
		if _, err := pipeline.ParsePolicy(s.OnMalformed); err != nil {
			return err
		}
	}
	if s.Workers < 0 || s.Workers > pipeline.MaxWorkers {
		return fmt.Errorf("workers must be between 0 and %d (0 means 1)", pipeline.MaxWorkers)
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertViewCount, AssertColumnValues, AssertRowMatch:
		if a.View == "" {
			return fmt.Errorf("assertions[%d]: view is required for %s", index, a.Type)
		}
		if !slices.Contains(knownViews, a.View) {
			return fmt.Errorf("assertions[%d]: unknown view %q", index, a.View)
		}
	}

	switch a.Type {
	case AssertViewCount, AssertSkippedCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertColumnValues:
		if a.Column == "" {
			return fmt.Errorf("assertions[%d]: column is required for column_values", index)
		}
	case AssertRowMatch:
		if len(a.Where) == 0 {
			return fmt.Errorf("assertions[%d]: where is required for row_match", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for row_match", index)
		}
	case AssertErrorCode:
		if a.Code == "" {
			return fmt.Errorf("assertions[%d]: code is required for error_code", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
