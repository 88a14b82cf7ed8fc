package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/flowlint/internal/cli/output"
	"github.com/leapstack-labs/flowlint/internal/state"
	"github.com/spf13/cobra"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit    int    // Maximum runs listed
	File     string // Only runs of this file
	Format   string // Output format override
	Findings bool   // Include findings of each run
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded validation runs",
		Long: `List validation runs recorded with 'flowlint validate --record' or with
history.enabled set in flowlint.yaml, newest first.

Runs are stored in a SQLite database at history.path
(default .flowlint/history.db).`,
		Example: `  # Show the last 20 runs
  flowlint history

  # Runs of one file, with their findings
  flowlint history --file flows/digest.json --findings

  # Output as JSON
  flowlint history -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs (0 for all)")
	cmd.Flags().StringVar(&opts.File, "file", "", "Only show runs of this workflow file")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().BoolVar(&opts.Findings, "findings", false, "Include the findings of each run")

	return cmd
}

// HistoryRunJSON is the JSON form of one recorded run.
type HistoryRunJSON struct {
	*state.Run
	FindingList []state.Finding `json:"finding_list,omitempty"`
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx := NewCommandContext(cmd, opts.Format)
	r := cmdCtx.Renderer

	if _, err := os.Stat(cmdCtx.Cfg.History.Path); os.IsNotExist(err) {
		if r.EffectiveMode() == output.ModeJSON {
			return r.JSON([]HistoryRunJSON{})
		}
		r.Println("No runs recorded yet. Use 'flowlint validate --record' to record runs.")
		return nil
	}

	store, err := cmdCtx.OpenHistory()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	runs, err := store.ListRuns(ctx, state.RunFilter{Path: opts.File, Limit: opts.Limit})
	if err != nil {
		return err
	}

	findings := make(map[string][]state.Finding)
	if opts.Findings {
		for _, run := range runs {
			f, err := store.GetFindings(ctx, run.ID)
			if err != nil {
				return err
			}
			findings[run.ID] = f
		}
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := make([]HistoryRunJSON, 0, len(runs))
		for _, run := range runs {
			out = append(out, HistoryRunJSON{Run: run, FindingList: findings[run.ID]})
		}
		return r.JSON(out)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Validation History"))
		r.Println("")
	default:
		r.Header(1, "Validation History")
	}

	if len(runs) == 0 {
		r.Println("No matching runs.")
		return nil
	}

	rows := make([]table.Row, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, table.Row{
			run.StartedAt.Local().Format(time.DateTime),
			run.Path,
			string(run.Status),
			run.Nodes,
			run.Connections,
			run.Errors,
			run.Warnings,
			run.Duration.Round(time.Millisecond).String(),
		})
	}
	r.Table(table.Row{"Started", "File", "Status", "Nodes", "Connections", "Errors", "Warnings", "Duration"}, rows)

	if opts.Findings {
		for _, run := range runs {
			if run.Error == "" && len(findings[run.ID]) == 0 {
				continue
			}
			r.Println("")
			r.Printf("%s  %s\n", run.StartedAt.Local().Format(time.DateTime), run.Path)
			if run.Error != "" {
				r.Printf("  %s\n", run.Error)
			}
			for _, f := range findings[run.ID] {
				r.Printf("  %d:%d  %s  %s\n", f.Line, f.Column, f.Category, f.Message)
			}
		}
	}
	return nil
}
