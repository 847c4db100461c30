package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/salesmetrics/internal/ingest"
	"github.com/roach88/salesmetrics/internal/pipeline"
	"github.com/roach88/salesmetrics/internal/sales"
)

// RowError is one diagnosed row.
type RowError struct {
	View    string `json:"view"`
	Line    int    `json:"line"`
	OrderID string `json:"order_id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool       `json:"valid"`
	Rows   int        `json:"rows"`
	Errors []RowError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <input.csv>",
		Short: "Check a sales file without computing views",
		Long: `Check the header and type every row of a sales file.

Unlike run, validate does not stop at the first bad row: every malformed
quantity or price and every unparseable order date is listed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	records, err := ingest.DecodeFile(path, ingest.Options{})
	if err != nil {
		return inputError(formatter, err)
	}
	formatter.VerboseLog("Read %d row(s) from %s", len(records), path)

	screening := pipeline.Screen(records)
	if len(screening.Diagnostics) > 0 {
		return outputValidationErrors(formatter, len(records), rowErrors(screening.Diagnostics))
	}
	return outputValidateSuccess(formatter, len(records))
}

func rowErrors(diags []pipeline.Diagnostic) []RowError {
	out := make([]RowError, len(diags))
	for i, d := range diags {
		out[i] = RowError{
			View:    d.View,
			Line:    d.Line,
			OrderID: d.OrderID,
			Code:    string(sales.CodeOf(d.Err)),
			Message: d.Message(),
		}
	}
	return out
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, rows int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Rows: rows})
	}

	fmt.Fprintf(formatter.Writer, "✓ %d row(s) valid\n", rows)
	return nil
}

// outputValidationErrors outputs every diagnosed row.
func outputValidationErrors(formatter *OutputFormatter, rows int, errs []RowError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Rows:   rows,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		if err := formatter.encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return reported(NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs))))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "line %d (%s)\n", err.Line, err.View)
		fmt.Fprintf(formatter.Writer, "  %s\n\n", err.Message)
	}

	// Validation failures = exit code 1
	return reported(NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs))))
}
