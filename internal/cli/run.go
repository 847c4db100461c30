package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/salesmetrics/internal/config"
	"github.com/roach88/salesmetrics/internal/ingest"
	"github.com/roach88/salesmetrics/internal/pipeline"
	"github.com/roach88/salesmetrics/internal/render"
	"github.com/roach88/salesmetrics/internal/sales"
	"github.com/roach88/salesmetrics/internal/sqlexec"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	ConfigPath  string
	Category    string
	OnMalformed string
	Engine      string
	Workers     int
	MaxRows     int
	Truncate    int

	// RunIDGenerator allows overriding the run id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDGenerator pipeline.RunIDGenerator
}

// RunResult is the JSON payload of a successful run.
type RunResult struct {
	*render.Document
	Engine string `json:"engine"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	defaults := config.Defaults()

	cmd := &cobra.Command{
		Use:   "run [input.csv]",
		Short: "Compute and print every view of a sales file",
		Long: `Load a sales CSV and print every view of the batch.

The input path comes from the argument or from the config file. Flags
override config file values only when set explicitly.

Exit codes:
  0 - All views computed
  1 - Malformed row or unparseable date (no partial output under --on-malformed=fail)
  2 - Command error (bad flags or config, missing file, missing columns)

Example:
  salesmetrics run sales.csv
  salesmetrics run sales.csv --category Books --engine sqlite
  salesmetrics run --config run.yaml --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&opts.Category, "category", defaults.Category, "category kept by the filter view")
	cmd.Flags().StringVar(&opts.OnMalformed, "on-malformed", defaults.OnMalformed, "malformed row policy (fail|skip)")
	cmd.Flags().StringVar(&opts.Engine, "engine", defaults.Engine, "evaluation engine (memory|sqlite)")
	cmd.Flags().IntVar(&opts.Workers, "workers", defaults.Workers, "number of partitions evaluated concurrently")
	cmd.Flags().IntVar(&opts.MaxRows, "max-rows", defaults.MaxRows, "rows shown per view (0 shows all)")
	cmd.Flags().IntVar(&opts.Truncate, "truncate", defaults.Truncate, "widest cell printed in full (0 disables)")

	return cmd
}

// resolveConfig merges defaults, the config file, the positional input and
// explicitly set flags, then validates the result.
func resolveConfig(opts *RunOptions, args []string, cmd *cobra.Command) (config.Config, error) {
	cfg := config.Defaults()
	if opts.ConfigPath != "" {
		loaded, err := config.LoadFile(opts.ConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	if len(args) == 1 {
		cfg.Input = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("category") {
		cfg.Category = opts.Category
	}
	if flags.Changed("on-malformed") {
		cfg.OnMalformed = opts.OnMalformed
	}
	if flags.Changed("engine") {
		cfg.Engine = opts.Engine
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.Workers
	}
	if flags.Changed("max-rows") {
		cfg.MaxRows = opts.MaxRows
	}
	if flags.Changed("truncate") {
		cfg.Truncate = opts.Truncate
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runPipeline(opts *RunOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := resolveConfig(opts, args, cmd)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return reported(WrapExitError(ExitCommandError, "invalid configuration", err))
	}
	logger.Debug("configuration resolved",
		"input", cfg.Input,
		"category", cfg.Category,
		"on_malformed", cfg.OnMalformed,
		"engine", cfg.Engine,
		"workers", cfg.Workers)

	records, err := ingest.DecodeFile(cfg.Input, ingest.Options{})
	if err != nil {
		return inputError(formatter, err)
	}
	logger.Info("input loaded", "path", cfg.Input, "rows", len(records))

	policy, err := pipeline.ParsePolicy(cfg.OnMalformed)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	runIDs := opts.RunIDGenerator
	if runIDs == nil {
		runIDs = pipeline.UUIDv7Generator{}
	}
	p := pipeline.New(
		pipeline.WithPolicy(policy),
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithLogger(logger),
		pipeline.WithRunIDGenerator(runIDs),
	)

	ctx, cancel := signalContext(cmd)
	defer cancel()

	report, err := evaluate(ctx, cfg, p, records)
	if err != nil {
		return dataError(formatter, err)
	}

	if opts.Format == "json" {
		doc, err := render.NewDocument(report)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to encode report", err)
		}
		return formatter.Success(RunResult{Document: doc, Engine: cfg.Engine})
	}

	if err := render.Text(formatter.Writer, report, render.Options{MaxRows: cfg.MaxRows, Truncate: cfg.Truncate}); err != nil {
		return WrapExitError(ExitFailure, "failed to write report", err)
	}
	for _, d := range report.Skipped {
		formatter.VerboseLog("skipped line %d (%s): %s", d.Line, d.View, d.Message())
	}
	return nil
}

// evaluate runs the batch through the configured engine.
func evaluate(ctx context.Context, cfg config.Config, p *pipeline.Pipeline, records []sales.SalesRecord) (*pipeline.Report, error) {
	if cfg.Engine != config.EngineSQLite {
		return p.Run(ctx, records, cfg.Category)
	}

	eng, err := sqlexec.Open(sqlexec.MemoryDSN)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := eng.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	return eng.Run(ctx, p, records, cfg.Category)
}

// newLogger writes text logs to w, at DEBUG when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// signalContext cancels on SIGINT or SIGTERM.
// Uses the command's context if available (for testing).
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// inputError reports a file that could not be decoded. A missing column
// keeps its SCHEMA code; anything else is an INPUT error.
func inputError(formatter *OutputFormatter, err error) error {
	code := ErrCodeInput
	if errors.Is(err, sales.ErrSchema) {
		code = string(sales.CodeSchema)
	}
	_ = formatter.Error(code, err.Error(), nil)
	return reported(WrapExitError(ExitCommandError, "failed to load input", err))
}

// dataError reports a failed run. Row-level errors are data failures;
// anything else (cancellation, database errors) is internal.
func dataError(formatter *OutputFormatter, err error) error {
	code := string(sales.CodeOf(err))
	if code == "" {
		_ = formatter.Error(ErrCodeInternal, err.Error(), nil)
		return reported(WrapExitError(ExitFailure, "run failed", err))
	}
	_ = formatter.Error(code, err.Error(), errorDetails(err))
	return reported(WrapExitError(ExitFailure, "batch rejected", err))
}

// errorDetails returns the structured fields of a row error.
func errorDetails(err error) map[string]any {
	var malformed *sales.MalformedRowError
	if errors.As(err, &malformed) {
		return map[string]any{
			"line":     malformed.Line,
			"order_id": malformed.OrderID,
			"column":   malformed.Column,
			"value":    malformed.Value,
		}
	}
	var dateErr *sales.DateParseError
	if errors.As(err, &dateErr) {
		return map[string]any{
			"line":     dateErr.Line,
			"order_id": dateErr.OrderID,
			"column":   sales.ColOrderDate,
			"value":    dateErr.Value,
		}
	}
	return nil
}
