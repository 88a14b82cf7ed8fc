package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/flowlint/internal/cli/output"
	"github.com/leapstack-labs/flowlint/internal/dag"
	"github.com/leapstack-labs/flowlint/pkg/document"
	"github.com/leapstack-labs/flowlint/pkg/workflow"
	"github.com/spf13/cobra"
)

// ConnectionsOptions holds options for the connections command.
type ConnectionsOptions struct {
	Format      string // Output format override
	InputFormat string // auto, json or yaml
	Nodes       bool   // Add the per-node table
}

// NewConnectionsCommand creates the connections command.
func NewConnectionsCommand() *cobra.Command {
	opts := &ConnectionsOptions{}
	cmd := &cobra.Command{
		Use:   "connections <file>",
		Short: "Show the connections of a workflow",
		Long: `Print the node and connection counts of a workflow and list every
connection grouped by connection type.

Main connections are shown as "Data flow" and AI sub-node connections
(ai_languageModel, ai_tool, ...) as "AI: languageModel" and so on. Each
connection is marked OK when both of its nodes exist and MISSING otherwise.

With --nodes a table of every node with its inbound and outbound
connections is added, followed by nodes that no entry point reaches.`,
		Example: `  # Show connections
  flowlint connections digest.json

  # Include per-node detail
  flowlint connections digest.json --nodes

  # Output as JSON
  flowlint connections digest.json -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnections(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "", "Input format: auto, json, yaml")
	cmd.Flags().BoolVar(&opts.Nodes, "nodes", false, "Show per-node inbound and outbound connections")

	return cmd
}

// NodeReport describes one node's place in the connection graph.
type NodeReport struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	EntryPoint bool     `json:"entry_point"`
	Inbound    []string `json:"inbound"`
	Outbound   []string `json:"outbound"`
	Reachable  bool     `json:"reachable"`
}

// ConnectionsJSONOutput is the JSON output structure for connections.
type ConnectionsJSONOutput struct {
	Path        string                     `json:"path"`
	Nodes       int                        `json:"nodes"`
	Connections int                        `json:"connections"`
	Groups      []workflow.ConnectionGroup `json:"groups"`
	NodeDetail  []NodeReport               `json:"node_detail,omitempty"`
	Cycle       []string                   `json:"cycle,omitempty"`
}

func runConnections(cmd *cobra.Command, path string, opts *ConnectionsOptions) error {
	cmdCtx := NewCommandContext(cmd, opts.Format)
	r := cmdCtx.Renderer

	format := cmdCtx.Cfg.Format()
	if opts.InputFormat != "" {
		f, err := document.ParseFormat(opts.InputFormat)
		if err != nil {
			return err
		}
		format = f
	}

	g, err := workflow.Load(path, format)
	if err != nil {
		return fmt.Errorf("%s: %w", strings.ToLower(fatalIndicator(err)), err)
	}

	var reports []NodeReport
	var cycle []string
	if opts.Nodes {
		reports, cycle = nodeReports(g)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := ConnectionsJSONOutput{
			Path:        path,
			Nodes:       g.NodeCount(),
			Connections: len(g.Edges),
			Groups:      g.ConnectionGroups(),
			NodeDetail:  reports,
			Cycle:       cycle,
		}
		if out.Groups == nil {
			out.Groups = []workflow.ConnectionGroup{}
		}
		return r.JSON(out)
	case output.ModeMarkdown:
		r.Println(output.FormatHeader(1, "Connections: "+path))
		r.Println("")
		r.Printf("**Nodes:** %d | **Connections:** %d\n\n", g.NodeCount(), len(g.Edges))
		connectionsMarkdown(r, g, 2)
		if opts.Nodes {
			r.Println(output.FormatHeader(2, "Nodes"))
			r.Println("")
			renderNodeReports(r, reports, cycle)
		}
	default:
		r.Header(1, "Connections: "+path)
		connectionsText(r, g)
		if opts.Nodes {
			r.Header(2, "Nodes")
			renderNodeReports(r, reports, cycle)
		}
	}
	return nil
}

// nodeReports builds per-node detail from the adjacency view. Reachability
// starts from entry-point nodes and from nodes without inbound connections.
func nodeReports(g *workflow.Graph) ([]NodeReport, []string) {
	adj, _ := dag.FromWorkflow(g)

	var starts []string
	for _, n := range adj.GetAllNodes() {
		if workflow.IsEntryPointType(n.Type) {
			starts = append(starts, n.ID)
		}
	}
	starts = append(starts, adj.GetRoots()...)
	reached := adj.Reachable(starts)

	reports := make([]NodeReport, 0, adj.NodeCount())
	for _, n := range adj.GetAllNodes() {
		reports = append(reports, NodeReport{
			Name:       n.ID,
			Type:       n.Type,
			EntryPoint: workflow.IsEntryPointType(n.Type),
			Inbound:    linkLabels(adj.Incoming(n.ID)),
			Outbound:   linkLabels(adj.Outgoing(n.ID)),
			Reachable:  reached[n.ID],
		})
	}

	var cycle []string
	if hasCycle, path := adj.HasCycle(); hasCycle {
		cycle = path
	}
	return reports, cycle
}

func linkLabels(links []dag.Link) []string {
	labels := make([]string, 0, len(links))
	for _, l := range links {
		if l.Type == workflow.MainConnectionType {
			labels = append(labels, l.ID)
			continue
		}
		labels = append(labels, fmt.Sprintf("%s (%s)", l.ID, workflow.TypeLabel(l.Type)))
	}
	return labels
}

func renderNodeReports(r *output.Renderer, reports []NodeReport, cycle []string) {
	rows := make([]table.Row, 0, len(reports))
	var unreached []string
	for _, n := range reports {
		entry := ""
		if n.EntryPoint {
			entry = "yes"
		}
		rows = append(rows, table.Row{
			n.Name,
			n.Type,
			entry,
			strings.Join(n.Inbound, ", "),
			strings.Join(n.Outbound, ", "),
		})
		if !n.Reachable {
			unreached = append(unreached, n.Name)
		}
	}
	r.Table(table.Row{"Node", "Type", "Entry", "Inbound", "Outbound"}, rows)
	r.Println("")

	if len(unreached) > 0 {
		r.Printf("Not reachable from any entry point: %s\n", strings.Join(unreached, ", "))
	}
	if len(cycle) > 0 {
		r.Printf("Contains a loop: %s\n", strings.Join(cycle, " → "))
	}
}
