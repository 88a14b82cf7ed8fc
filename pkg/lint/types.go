package lint

import (
	"fmt"

	"github.com/leapstack-labs/flowlint/pkg/core"
	"github.com/leapstack-labs/flowlint/pkg/document"
	"github.com/leapstack-labs/flowlint/pkg/workflow"
)

// =============================================================================
// Severity
// =============================================================================

// Severity is an alias so rule packages need only import lint.
type Severity = core.Severity

// Severity levels re-exported from core.
const (
	SeverityError   = core.SeverityError
	SeverityWarning = core.SeverityWarning
	SeverityInfo    = core.SeverityInfo
	SeverityHint    = core.SeverityHint
)

// =============================================================================
// Categories
// =============================================================================

// Category is the stable, machine-readable class of a finding.
type Category string

// Finding categories.
const (
	CategoryDuplicateName  Category = "DUPLICATE_NAME"
	CategoryDuplicateID    Category = "DUPLICATE_ID"
	CategoryDanglingSource Category = "DANGLING_SOURCE"
	CategoryDanglingTarget Category = "DANGLING_TARGET"
	CategoryOrphanedNode   Category = "ORPHANED_NODE"
)

// =============================================================================
// Rule Definitions
// =============================================================================

// CheckFunc inspects a workflow graph and returns its findings in a
// deterministic order. Checks must not modify the graph.
type CheckFunc func(g *workflow.Graph) []Diagnostic

// RuleDef is a data-driven rule definition.
// Rules are stateless - all context comes via the Check function parameters.
type RuleDef struct {
	ID          string     // Unique identifier, e.g., "FL01"
	Name        string     // Human-readable name, e.g., "duplicate-names"
	Group       string     // e.g., "identity", "connectivity"
	Categories  []Category // Categories this rule can emit
	Description string
	Severity    Severity // Default severity
	Check       CheckFunc

	// Documentation fields for richer rule documentation
	Rationale   string
	BadExample  string
	GoodExample string
	Fix         string
}

// Info returns the rule's metadata for documentation and tooling.
func (r RuleDef) Info() core.RuleInfo {
	cats := make([]string, len(r.Categories))
	for i, c := range r.Categories {
		cats[i] = string(c)
	}
	return core.RuleInfo{
		ID:              r.ID,
		Name:            r.Name,
		Group:           r.Group,
		Categories:      cats,
		Description:     r.Description,
		DefaultSeverity: r.Severity,
		Rationale:       r.Rationale,
		BadExample:      r.BadExample,
		GoodExample:     r.GoodExample,
		Fix:             r.Fix,
	}
}

// =============================================================================
// Diagnostics
// =============================================================================

// Diagnostic represents a lint finding.
type Diagnostic struct {
	RuleID   string            `json:"rule_id"`
	Category Category          `json:"category"`
	Severity Severity          `json:"severity"`
	Message  string            `json:"message"`
	Node     string            `json:"node,omitempty"` // subject node name or id
	Pos      document.Position `json:"pos"`
}

// String renders the finding as "CATEGORY: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Category, d.Message)
}

// Summary counts findings per severity.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	Hints    int `json:"hints"`
}

// Add counts every diagnostic in diags.
func (s *Summary) Add(diags []Diagnostic) {
	for _, d := range diags {
		s.Total++
		switch d.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		case SeverityInfo:
			s.Infos++
		default:
			s.Hints++
		}
	}
}

// Summarize counts diags by severity.
func Summarize(diags []Diagnostic) Summary {
	var s Summary
	s.Add(diags)
	return s
}
