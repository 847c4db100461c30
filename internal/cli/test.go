package cli

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/salesmetrics/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult is the outcome of one scenario file.
type ScenarioResult struct {
	Name      string            `json:"name"`
	Pass      bool              `json:"pass"`
	ErrorCode string            `json:"error_code,omitempty"` // set when the batch was rejected
	Digests   map[string]string `json:"digests,omitempty"`    // view digests of the memory report
	Errors    []string          `json:"errors,omitempty"`
}

// TestResult summarizes a scenario directory.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scenario files against both engines",
		Long: `Run YAML scenarios through the in-memory pipeline and the SQLite engine.

Each scenario passes when both engines agree, every assertion holds and,
if golden/<name>.golden exists next to it, the report matches it.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  salesmetrics test ./scenarios
  salesmetrics test ./scenarios --filter "null_*"
  salesmetrics test ./scenarios --update
  salesmetrics test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", dir))
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if len(files) == 0 {
		if opts.Format == "json" {
			return reportTests(formatter, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	// Progress lines are only printed in text mode.
	progress := io.Discard
	if opts.Format != "json" {
		progress = formatter.Writer
	}

	result := TestResult{Scenarios: make([]ScenarioResult, 0, len(files)), Total: len(files)}
	for _, file := range files {
		sr := runScenarioFile(file, opts.Update)
		printScenario(progress, sr, opts.Update)

		result.Scenarios = append(result.Scenarios, sr)
		if sr.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}
	return reportTests(formatter, result)
}

// findScenarioFiles lists the .yaml and .yml files under dir in lexical
// order, skipping golden directories.
func findScenarioFiles(dir, filter string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && d.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		if filter != "" {
			matched, err := filepath.Match(filter, strings.TrimSuffix(d.Name(), ext))
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// runScenarioFile loads, runs and golden-checks one scenario.
func runScenarioFile(file string, update bool) ScenarioResult {
	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return failed(filepath.Base(file), fmt.Sprintf("failed to load scenario: %v", err))
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return failed(scenario.Name, fmt.Sprintf("execution failed: %v", err))
	}

	sr := ScenarioResult{
		Name:      scenario.Name,
		Pass:      result.Pass,
		ErrorCode: result.ErrorCode,
		Digests:   result.Digests,
		Errors:    result.Errors,
	}

	snapshot, err := harness.Snapshot(scenario.Name, result)
	if err != nil {
		return failed(scenario.Name, fmt.Sprintf("failed to marshal snapshot: %v", err))
	}
	if msg := checkGolden(goldenFilePath(file), snapshot, update); msg != "" {
		sr.Pass = false
		sr.Errors = append(sr.Errors, msg)
	}
	return sr
}

func failed(name string, errs ...string) ScenarioResult {
	return ScenarioResult{Name: name, Errors: errs}
}

// goldenFilePath returns <dir>/golden/<name>.golden for <dir>/<name>.yaml.
func goldenFilePath(file string) string {
	base := filepath.Base(file)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(file), "golden", name+".golden")
}

// checkGolden writes the snapshot when update is set, otherwise compares
// it with an existing golden file. A missing golden file is not an error.
// Returns a failure message, or "" on success.
func checkGolden(path string, snapshot []byte, update bool) string {
	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Sprintf("failed to update golden file: %v", err)
		}
		if err := os.WriteFile(path, snapshot, 0o644); err != nil {
			return fmt.Sprintf("failed to update golden file: %v", err)
		}
		return ""
	}

	golden, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ""
	}
	if err != nil {
		return fmt.Sprintf("golden comparison failed: %v", err)
	}
	if !bytes.Equal(golden, snapshot) {
		return "report does not match golden file (run with --update to regenerate)"
	}
	return ""
}

func printScenario(w io.Writer, sr ScenarioResult, update bool) {
	if !sr.Pass {
		fmt.Fprintf(w, "✗ %s\n", sr.Name)
		for _, e := range sr.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return
	}
	switch {
	case update:
		fmt.Fprintf(w, "✓ %s (golden updated)\n", sr.Name)
	case sr.ErrorCode != "":
		fmt.Fprintf(w, "✓ %s (rejected with %s)\n", sr.Name, sr.ErrorCode)
	default:
		fmt.Fprintf(w, "✓ %s\n", sr.Name)
	}
}

// reportTests writes the summary. Any failed scenario is exit code 1.
func reportTests(formatter *OutputFormatter, result TestResult) error {
	var exitErr error
	if result.Failed > 0 {
		exitErr = reported(NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed)))
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if exitErr != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "TEST_FAILED", Message: exitErr.Error()}
		}
		if err := formatter.encode(resp); err != nil {
			return err
		}
		return exitErr
	}

	w := formatter.Writer
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if exitErr == nil {
		fmt.Fprintln(w, "✓ All scenarios passed")
	}
	return exitErr
}
