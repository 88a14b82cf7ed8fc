package commands

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/flowlint/internal/cli/output"
	"github.com/leapstack-labs/flowlint/pkg/lint"
	"github.com/leapstack-labs/flowlint/pkg/workflow"
)

// ValidateSummary counts files and findings across a validate run.
type ValidateSummary struct {
	Files    int `json:"files"`
	Passed   int `json:"passed"`
	Failed   int `json:"failed"`
	Errored  int `json:"errored"`
	Findings int `json:"findings"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	Hints    int `json:"hints"`
}

// ValidateFileJSON is the JSON form of one file's result.
type ValidateFileJSON struct {
	Path        string                     `json:"path"`
	Status      string                     `json:"status"`
	Error       string                     `json:"error,omitempty"`
	ErrorKind   string                     `json:"error_kind,omitempty"`
	Nodes       int                        `json:"nodes"`
	Connections int                        `json:"connections"`
	Findings    []lint.Diagnostic          `json:"findings"`
	Groups      []workflow.ConnectionGroup `json:"connection_groups,omitempty"`
}

// ValidateJSONOutput is the JSON output structure for validate.
type ValidateJSONOutput struct {
	Summary ValidateSummary    `json:"summary"`
	Files   []ValidateFileJSON `json:"files"`
}

func summarizeResults(results []FileResult) ValidateSummary {
	s := ValidateSummary{Files: len(results)}
	for _, res := range results {
		switch res.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		default:
			s.Errored++
		}
		counts := lint.Summarize(res.Diagnostics)
		s.Findings += counts.Total
		s.Errors += counts.Errors
		s.Warnings += counts.Warnings
		s.Infos += counts.Infos
		s.Hints += counts.Hints
	}
	return s
}

func renderValidateResults(r *output.Renderer, results []FileResult, showConnections bool) {
	summary := summarizeResults(results)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		_ = r.JSON(validateJSON(results, summary, showConnections))
	case output.ModeMarkdown:
		validateMarkdown(r, results, summary, showConnections)
	default:
		validateText(r, results, summary, showConnections)
	}
}

func validateJSON(results []FileResult, summary ValidateSummary, showConnections bool) ValidateJSONOutput {
	out := ValidateJSONOutput{Summary: summary, Files: make([]ValidateFileJSON, 0, len(results))}
	for _, res := range results {
		f := ValidateFileJSON{
			Path:     res.Path,
			Status:   res.Status,
			Findings: res.Diagnostics,
		}
		if f.Findings == nil {
			f.Findings = []lint.Diagnostic{}
		}
		if res.Err != nil {
			f.Error = res.Err.Error()
			f.ErrorKind = FatalKind(res.Err)
		}
		if res.Graph != nil {
			f.Nodes = res.Graph.NodeCount()
			f.Connections = len(res.Graph.Edges)
			if showConnections {
				f.Groups = res.Graph.ConnectionGroups()
			}
		}
		out.Files = append(out.Files, f)
	}
	return out
}

// validateText outputs results in styled text format.
func validateText(r *output.Renderer, results []FileResult, summary ValidateSummary, showConnections bool) {
	styles := r.Styles()

	for _, res := range results {
		r.Printf("%s %s\n", styles.Bold.Render("Validating:"), styles.Path.Render(res.Path))

		if res.Err != nil {
			r.Printf("  %s %s\n", styles.Error.Render("✗ "+fatalIndicator(res.Err)+":"), res.Err.Error())
			r.Println("")
			continue
		}
		r.Println(styles.Success.Render(fmt.Sprintf("  ✓ %s valid", strings.ToUpper(string(res.Format)))))

		if showConnections {
			r.Println("")
			connectionsText(r, res.Graph)
		}

		if len(res.Diagnostics) == 0 {
			r.Println(styles.Success.Render("  ✓ Result: all OK"))
			r.Println("")
			continue
		}

		r.Println(styles.Error.Render(fmt.Sprintf("  %d problem(s) found:", len(res.Diagnostics))))
		for _, d := range res.Diagnostics {
			r.Printf("    %s  %s  %s  %s\n",
				styles.Muted.Render(fmt.Sprintf("%-7s", d.Pos.String())),
				severityStyle(styles, d.Severity).Render(fmt.Sprintf("%-15s", d.Category)),
				d.Message,
				styles.Muted.Render(d.RuleID),
			)
		}
		r.Println("")
	}

	if len(results) > 1 || summary.Findings > 0 {
		r.Println(styles.Muted.Render("Summary: " + summaryLine(summary)))
	}
}

// validateMarkdown outputs results in markdown format.
func validateMarkdown(r *output.Renderer, results []FileResult, summary ValidateSummary, showConnections bool) {
	for _, res := range results {
		r.Println(output.FormatHeader(2, res.Path))
		r.Println("")

		if res.Err != nil {
			r.Printf("> **%s:** %s\n\n", fatalIndicator(res.Err), res.Err.Error())
			continue
		}
		r.Printf("**Format:** %s | **Nodes:** %d | **Connections:** %d\n\n",
			res.Format, res.Graph.NodeCount(), len(res.Graph.Edges))

		if showConnections {
			connectionsMarkdown(r, res.Graph, 3)
		}

		if len(res.Diagnostics) == 0 {
			r.Println("**OK:** no findings")
			r.Println("")
			continue
		}

		r.Println(output.FormatHeader(3, fmt.Sprintf("Findings (%d)", len(res.Diagnostics))))
		r.Println("")
		for _, d := range res.Diagnostics {
			r.Printf("- **%s** (`%s`, %s, %s): %s\n", d.Category, d.Severity, d.RuleID, d.Pos.String(), d.Message)
		}
		r.Println("")
	}

	r.Println(output.FormatHeader(2, "Summary"))
	r.Println("")
	r.Println(summaryLine(summary))
}

func summaryLine(s ValidateSummary) string {
	parts := []string{fmt.Sprintf("%d findings", s.Findings)}
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("%d errors", s.Errors))
	}
	if s.Warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d warnings", s.Warnings))
	}
	if s.Infos > 0 {
		parts = append(parts, fmt.Sprintf("%d info", s.Infos))
	}
	if s.Hints > 0 {
		parts = append(parts, fmt.Sprintf("%d hints", s.Hints))
	}
	line := fmt.Sprintf("%s in %d files (%d passed, %d failed", strings.Join(parts, ", "), s.Files, s.Passed, s.Failed)
	if s.Errored > 0 {
		line += fmt.Sprintf(", %d could not be validated", s.Errored)
	}
	return line + ")"
}

// connectionsText prints the node/connection counts and one table per
// connection type.
func connectionsText(r *output.Renderer, g *workflow.Graph) {
	styles := r.Styles()
	r.Printf("  %s %d\n", styles.Bold.Render("Nodes:"), g.NodeCount())
	r.Printf("  %s %d\n", styles.Bold.Render("Connections:"), len(g.Edges))
	r.Println("")

	for _, group := range g.ConnectionGroups() {
		r.Println(styles.Header2.Render("  [" + group.Label + "]"))
		r.Table(table.Row{"Source", "Target", "Status"}, connectionRows(styles, group))
		r.Println("")
	}
}

// connectionsMarkdown prints the connection report as markdown tables.
func connectionsMarkdown(r *output.Renderer, g *workflow.Graph, level int) {
	for _, group := range g.ConnectionGroups() {
		r.Println(output.FormatHeader(level, group.Label))
		r.Println("")
		r.Table(table.Row{"Source", "Target", "Status"}, connectionRows(nil, group))
		r.Println("")
	}
}

func connectionRows(styles *output.Styles, group workflow.ConnectionGroup) []table.Row {
	rows := make([]table.Row, 0, len(group.Edges))
	for _, e := range group.Edges {
		status := e.Status
		if styles != nil {
			if e.OK() {
				status = styles.Success.Render(status)
			} else {
				status = styles.Error.Render(status)
			}
		}
		rows = append(rows, table.Row{e.Source, e.Target, status})
	}
	return rows
}

func severityStyle(styles *output.Styles, sev lint.Severity) lipgloss.Style {
	switch sev {
	case lint.SeverityError:
		return styles.Error
	case lint.SeverityWarning:
		return styles.Warning
	case lint.SeverityInfo:
		return styles.Info
	default:
		return styles.Muted
	}
}
