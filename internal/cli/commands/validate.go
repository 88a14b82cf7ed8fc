package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/leapstack-labs/flowlint/internal/cli/config"
	"github.com/leapstack-labs/flowlint/internal/state"
	"github.com/leapstack-labs/flowlint/pkg/core"
	"github.com/leapstack-labs/flowlint/pkg/document"
	"github.com/leapstack-labs/flowlint/pkg/lint"
	_ "github.com/leapstack-labs/flowlint/pkg/lint/rules" // register structural rules
	"github.com/leapstack-labs/flowlint/pkg/workflow"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// ErrIssuesFound is returned when any file has findings or could not be
// validated. Output has already been rendered when it is returned.
var ErrIssuesFound = errors.New("lint issues found")

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Files           []string // Workflow files
	Format          string   // Output format override
	InputFormat     string   // auto, json or yaml
	Disable         []string // Rule IDs, names or categories to disable
	Severity        string   // Minimum severity
	Rules           []string // Run only these rules
	ShowConnections bool     // Print the connection report for each file
	Jobs            int      // Files validated in parallel
	Watch           bool     // Re-validate on change
	Record          bool     // Record runs in the history database
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:     "validate [file...]",
		Aliases: []string{"lint"},
		Short:   "Validate workflow files",
		Long: `Validate the structure of one or more workflow files.

Each file is decoded, its nodes and connections are extracted, and the
structural checks are run. Findings are reported per file:

  DUPLICATE_NAME   two nodes share a name
  DUPLICATE_ID     two nodes share an id
  DANGLING_SOURCE  a connection starts at a node that does not exist
  DANGLING_TARGET  a connection points at a node that does not exist
  ORPHANED_NODE    a non-trigger node has no connections

Without arguments the files listed under 'workflows' in flowlint.yaml
are validated. The command exits non-zero when any file has findings or
cannot be read, parsed or extracted.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Validate a workflow
  flowlint validate weekly-digest.json

  # Validate several files, four at a time
  flowlint validate flows/*.json --jobs 4

  # Show the connection report as well
  flowlint validate digest.json --show-connections

  # Skip orphaned-node findings
  flowlint validate digest.json --disable ORPHANED_NODE

  # Re-validate whenever the file changes
  flowlint validate digest.json --watch

  # Output as JSON
  flowlint validate digest.json --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Files = args
			return runValidate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "", "Input format: auto, json, yaml")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule IDs, names or categories to disable")
	cmd.Flags().StringVar(&opts.Severity, "severity", "", "Minimum severity: error, warning, info, hint")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run only specific rules")
	cmd.Flags().BoolVar(&opts.ShowConnections, "show-connections", false, "Print connections grouped by type")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", runtime.GOMAXPROCS(0), "Files validated in parallel")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-validate when files change")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "Record runs in the history database")

	_ = cmd.RegisterFlagCompletionFunc("input-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// Status of a validated file.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
	StatusError  = "error"
)

// FileResult is the outcome of validating one file.
type FileResult struct {
	Path        string
	Format      document.Format
	Status      string
	Err         error
	Graph       *workflow.Graph
	Diagnostics []lint.Diagnostic
	StartedAt   time.Time
	Duration    time.Duration
}

// validator runs the extraction and checks for a set of files.
type validator struct {
	format   document.Format
	analyzer *lint.Analyzer
	jobs     int
	logger   *slog.Logger
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions) error {
	cmdCtx := NewCommandContext(cmd, opts.Format)
	cfg := cmdCtx.Cfg
	r := cmdCtx.Renderer

	files := opts.Files
	if len(files) == 0 {
		files = cfg.Workflows
	}
	if len(files) == 0 {
		return fmt.Errorf("no workflow files given: pass files as arguments or list them under 'workflows' in flowlint.yaml")
	}

	format := cfg.Format()
	if opts.InputFormat != "" {
		f, err := document.ParseFormat(opts.InputFormat)
		if err != nil {
			return err
		}
		format = f
	}

	lintCfg, err := buildLintConfig(cfg, opts)
	if err != nil {
		return err
	}
	if unknown := lintCfg.UnknownKeys(); len(unknown) > 0 {
		r.Warning(fmt.Sprintf("unknown rules or categories in configuration: %s", strings.Join(unknown, ", ")))
	}

	v := &validator{
		format:   format,
		analyzer: lint.NewAnalyzer(lintCfg, cmdCtx.Logger),
		jobs:     opts.Jobs,
		logger:   cmdCtx.Logger,
	}

	var history state.Store
	if opts.Record || cfg.History.Enabled {
		store, err := cmdCtx.OpenHistory()
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		defer func() { _ = store.Close() }()
		history = store
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	check := func(ctx context.Context, paths []string) error {
		results, err := v.validateFiles(ctx, paths)
		if err != nil {
			return err
		}
		renderValidateResults(r, results, opts.ShowConnections)
		if history != nil {
			recordResults(ctx, history, results, cmdCtx.Logger)
		}
		return resultsError(results)
	}

	err = check(ctx, files)
	if !opts.Watch || (err != nil && !errors.Is(err, ErrIssuesFound)) {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.Println("")
	r.Println(r.Styles().Muted.Render("Watching for changes. Press Ctrl-C to stop."))
	return watchFiles(ctx, files, cfg.Watch.Debounce, cmdCtx.Logger, func(changed []string) {
		r.Println("")
		if err := check(ctx, changed); err != nil && !errors.Is(err, ErrIssuesFound) {
			r.Error(err.Error())
		}
	})
}

// buildLintConfig layers the command flags over the config file's lint section.
func buildLintConfig(cfg *config.Config, opts *ValidateOptions) (*lint.Config, error) {
	lintCfg := cfg.AnalyzerConfig()

	for _, key := range opts.Disable {
		if key = strings.TrimSpace(key); key != "" {
			lintCfg.Disable(key)
		}
	}
	for _, key := range opts.Rules {
		if key = strings.TrimSpace(key); key != "" {
			lintCfg.Only(key)
		}
	}
	if opts.Severity != "" {
		sev, ok := core.ParseSeverity(opts.Severity)
		if !ok {
			return nil, fmt.Errorf("invalid severity %q: want error, warning, info or hint", opts.Severity)
		}
		lintCfg.MinSeverity = sev
	}

	return lintCfg, nil
}

// validateFiles validates paths concurrently. Results keep argument order.
func (v *validator) validateFiles(ctx context.Context, paths []string) ([]FileResult, error) {
	results := make([]FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if v.jobs > 0 {
		g.SetLimit(v.jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = v.validateFile(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// validateFile loads one workflow and runs the checks. Load failures are
// reported in the result, never returned.
func (v *validator) validateFile(path string) FileResult {
	res := FileResult{Path: path, Format: document.FormatFor(path, v.format), StartedAt: time.Now()}

	graph, err := workflow.Load(path, v.format)
	if err != nil {
		v.logger.Debug("workflow could not be loaded", slog.String("path", path), slog.Any("error", err))
		res.Status = StatusError
		res.Err = err
		res.Duration = time.Since(res.StartedAt)
		return res
	}

	res.Graph = graph
	res.Diagnostics = v.analyzer.Analyze(graph)
	res.Status = StatusPassed
	if len(res.Diagnostics) > 0 {
		res.Status = StatusFailed
	}
	res.Duration = time.Since(res.StartedAt)
	return res
}

// resultsError returns ErrIssuesFound with counts when any file did not pass.
func resultsError(results []FileResult) error {
	var findings, broken int
	for _, res := range results {
		switch res.Status {
		case StatusFailed:
			findings += len(res.Diagnostics)
		case StatusError:
			broken++
		}
	}
	switch {
	case findings > 0 && broken > 0:
		return fmt.Errorf("%w: %d findings, %d files could not be validated", ErrIssuesFound, findings, broken)
	case findings > 0:
		return fmt.Errorf("%w: %d findings", ErrIssuesFound, findings)
	case broken > 0:
		return fmt.Errorf("%w: %d files could not be validated", ErrIssuesFound, broken)
	}
	return nil
}

// FatalKind classifies a load failure: "not_found", "malformed" or
// "structure". Other errors are "io".
func FatalKind(err error) string {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		return "not_found"
	case errors.Is(err, workflow.ErrMalformed):
		return "malformed"
	case errors.Is(err, workflow.ErrStructure):
		return "structure"
	default:
		return "io"
	}
}

// fatalIndicator is the headline printed for a load failure.
func fatalIndicator(err error) string {
	switch FatalKind(err) {
	case "not_found":
		return "FILE NOT FOUND"
	case "malformed":
		return "MALFORMED INPUT"
	case "structure":
		return "INVALID STRUCTURE"
	default:
		return "READ ERROR"
	}
}

// recordResults stores each result in the history database. Failures are
// logged and do not change the command outcome.
func recordResults(ctx context.Context, store state.Store, results []FileResult, logger *slog.Logger) {
	for _, res := range results {
		run, findings := toRun(res)
		if err := store.RecordRun(ctx, run, findings); err != nil {
			logger.Warn("failed to record run", slog.String("path", res.Path), slog.Any("error", err))
		}
	}
}

func toRun(res FileResult) (*state.Run, []state.Finding) {
	run := &state.Run{
		Path:      res.Path,
		StartedAt: res.StartedAt,
		Duration:  res.Duration,
	}
	switch res.Status {
	case StatusPassed:
		run.Status = state.RunStatusPassed
	case StatusFailed:
		run.Status = state.RunStatusFailed
	default:
		run.Status = state.RunStatusError
	}
	if res.Err != nil {
		run.Error = res.Err.Error()
	}
	if res.Graph != nil {
		run.Nodes = res.Graph.NodeCount()
		run.Connections = len(res.Graph.Edges)
	}

	summary := lint.Summarize(res.Diagnostics)
	run.Errors = summary.Errors
	run.Warnings = summary.Warnings

	findings := make([]state.Finding, 0, len(res.Diagnostics))
	for _, d := range res.Diagnostics {
		findings = append(findings, state.Finding{
			RuleID:   d.RuleID,
			Category: string(d.Category),
			Severity: d.Severity.String(),
			Message:  d.Message,
			Node:     d.Node,
			Line:     d.Pos.Line,
			Column:   d.Pos.Column,
		})
	}
	return run, findings
}
