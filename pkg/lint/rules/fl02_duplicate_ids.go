package rules

import (
	"fmt"

	"github.com/leapstack-labs/flowlint/pkg/lint"
	"github.com/leapstack-labs/flowlint/pkg/workflow"
)

func init() {
	lint.Register(lint.RuleDef{
		ID:          "FL02",
		Name:        "duplicate-ids",
		Group:       "identity",
		Categories:  []lint.Category{lint.CategoryDuplicateID},
		Description: "Node ids must be unique",
		Severity:    lint.SeverityError,
		Check:       checkDuplicateIDs,

		Rationale: `Node ids identify nodes across edits and imports. Nodes without an id are
counted under the placeholder '?', so two or more id-less nodes are reported as well.`,

		BadExample: `{"nodes": [{"name": "A", "id": "1"}, {"name": "B", "id": "1"}]}`,

		GoodExample: `{"nodes": [{"name": "A", "id": "1"}, {"name": "B", "id": "2"}]}`,

		Fix: "Give every node its own id.",
	})
}

// checkDuplicateIDs treats a missing id as workflow.MissingIDPlaceholder,
// so id-less nodes collide with each other. Explicit null ids collide only
// with other null ids.
func checkDuplicateIDs(g *workflow.Graph) []lint.Diagnostic {
	var diagnostics []lint.Diagnostic

	for _, d := range findDuplicates(g.Nodes, workflow.Node.IDKey) {
		diagnostics = append(diagnostics, lint.Diagnostic{
			RuleID:   "FL02",
			Category: lint.CategoryDuplicateID,
			Severity: lint.SeverityError,
			Message:  fmt.Sprintf("node id '%s' occurs more than once", d.First.IDLabel()),
			Node:     d.First.IDLabel(),
			Pos:      d.Pos,
		})
	}

	return diagnostics
}
