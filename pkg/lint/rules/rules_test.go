package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/flowlint/pkg/document"
	"github.com/leapstack-labs/flowlint/pkg/lint"
	"github.com/leapstack-labs/flowlint/pkg/workflow"
)

func graphFromJSON(t *testing.T, src string) *workflow.Graph {
	t.Helper()
	g, err := workflow.Parse("test.json", []byte(src), document.FormatJSON)
	require.NoError(t, err)
	return g
}

func lines(diags []lint.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.String()
	}
	return out
}

const validWorkflow = `{
	"name": "Weekly digest",
	"nodes": [
		{"name": "Schedule", "id": "1", "type": "n8n-nodes-base.scheduleTrigger"},
		{"name": "Fetch", "id": "2", "type": "n8n-nodes-base.httpRequest"},
		{"name": "Agent", "id": "3", "type": "@n8n/n8n-nodes-langchain.agent"},
		{"name": "Model", "id": "4", "type": "@n8n/n8n-nodes-langchain.lmChatOpenAi"},
		{"name": "Note", "id": "5", "type": "n8n-nodes-base.stickyNote"}
	],
	"connections": {
		"Schedule": {"main": [[{"node": "Fetch", "type": "main", "index": 0}]]},
		"Fetch": {"main": [[{"node": "Agent", "type": "main", "index": 0}]]},
		"Model": {"ai_languageModel": [[{"node": "Agent", "type": "ai_languageModel", "index": 0}]]}
	}
}`

func TestRulesRegistered(t *testing.T) {
	rules := lint.GetAll()
	require.Len(t, rules, 4)

	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"FL01", "FL02", "FL03", "FL04"}, ids)

	for _, r := range rules {
		assert.NotEmpty(t, r.Name, r.ID)
		assert.NotEmpty(t, r.Description, r.ID)
		assert.NotEmpty(t, r.Categories, r.ID)
		assert.NotNil(t, r.Check, r.ID)
	}
}

func TestValidate_EmptyDocument(t *testing.T) {
	g := graphFromJSON(t, `{}`)
	assert.Empty(t, lint.Validate(g))
}

func TestValidate_ValidDocument(t *testing.T) {
	g := graphFromJSON(t, validWorkflow)
	assert.Empty(t, lint.Validate(g))
}

func TestValidate_Idempotent(t *testing.T) {
	g := graphFromJSON(t, `{
		"nodes": [{"name": "A"}, {"name": "A"}, {"name": "C", "type": "x"}],
		"connections": {"X": {"main": [[{"node": "Y"}]]}}
	}`)

	first := lint.Validate(g)
	second := lint.Validate(g)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestFL01_DuplicateNames(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "single duplicate",
			src: `{"nodes": [{"name": "A", "id": "1"}, {"name": "B", "id": "2"}, {"name": "A", "id": "3"}],
				"connections": {"A": {"main": [[{"node": "B"}]]}}}`,
			want: []string{"DUPLICATE_NAME: node name 'A' occurs more than once"},
		},
		{
			name: "triplicate reported once",
			src: `{"nodes": [{"name": "A", "id": "1"}, {"name": "A", "id": "2"}, {"name": "A", "id": "3"}],
				"connections": {"A": {"main": [[{"node": "A"}]]}}}`,
			want: []string{"DUPLICATE_NAME: node name 'A' occurs more than once"},
		},
		{
			name: "first appearance order",
			src: `{"nodes": [{"name": "B", "id": "1"}, {"name": "A", "id": "2"}, {"name": "A", "id": "3"}, {"name": "B", "id": "4"}],
				"connections": {"A": {"main": [[{"node": "B"}]]}}}`,
			want: []string{
				"DUPLICATE_NAME: node name 'B' occurs more than once",
				"DUPLICATE_NAME: node name 'A' occurs more than once",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := checkDuplicateNames(graphFromJSON(t, tt.src))
			assert.Equal(t, tt.want, lines(diags))
		})
	}
}

func TestFL01_PositionOfSecondOccurrence(t *testing.T) {
	g := graphFromJSON(t, "{\"nodes\": [\n{\"name\": \"A\"},\n{\"name\": \"A\"}\n]}")
	diags := checkDuplicateNames(g)
	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Pos.Line)
	assert.Equal(t, "A", diags[0].Node)
	assert.Equal(t, "FL01", diags[0].RuleID)
}

func TestFL02_DuplicateIDs(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "shared id",
			src:  `{"nodes": [{"name": "A", "id": "x"}, {"name": "B", "id": "x"}]}`,
			want: []string{"DUPLICATE_ID: node id 'x' occurs more than once"},
		},
		{
			name: "id-less nodes collide on placeholder",
			src:  `{"nodes": [{"name": "A"}, {"name": "B"}]}`,
			want: []string{"DUPLICATE_ID: node id '?' occurs more than once"},
		},
		{
			name: "single id-less node",
			src:  `{"nodes": [{"name": "A"}, {"name": "B", "id": "1"}]}`,
			want: nil,
		},
		{
			name: "numeric and string ids share text",
			src:  `{"nodes": [{"name": "A", "id": 1}, {"name": "B", "id": "1"}]}`,
			want: []string{"DUPLICATE_ID: node id '1' occurs more than once"},
		},
		{
			name: "null id does not collide with missing id",
			src:  `{"nodes": [{"name": "A", "id": null}, {"name": "B"}]}`,
			want: nil,
		},
		{
			name: "null id does not collide with the string null",
			src:  `{"nodes": [{"name": "A", "id": null}, {"name": "B", "id": "null"}]}`,
			want: nil,
		},
		{
			name: "null ids collide with each other",
			src:  `{"nodes": [{"name": "A", "id": null}, {"name": "B", "id": null}, {"name": "C"}, {"name": "D"}]}`,
			want: []string{
				"DUPLICATE_ID: node id 'null' occurs more than once",
				"DUPLICATE_ID: node id '?' occurs more than once",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := checkDuplicateIDs(graphFromJSON(t, tt.src))
			if tt.want == nil {
				assert.Empty(t, diags)
				return
			}
			assert.Equal(t, tt.want, lines(diags))
		})
	}
}

func TestFL03_DanglingEndpoints(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "missing target only",
			src:  `{"nodes": [{"name": "A"}], "connections": {"A": {"main": [[{"node": "B"}]]}}}`,
			want: []string{"DANGLING_TARGET: connection target 'B' does not exist as a node"},
		},
		{
			name: "missing source only",
			src:  `{"nodes": [{"name": "B"}], "connections": {"A": {"main": [[{"node": "B"}]]}}}`,
			want: []string{"DANGLING_SOURCE: connection source 'A' does not exist as a node"},
		},
		{
			name: "both missing yields source then target",
			src:  `{"nodes": [], "connections": {"A": {"main": [[{"node": "B"}]]}}}`,
			want: []string{
				"DANGLING_SOURCE: connection source 'A' does not exist as a node",
				"DANGLING_TARGET: connection target 'B' does not exist as a node",
			},
		},
		{
			name: "one finding per edge",
			src: `{"nodes": [{"name": "A"}],
				"connections": {"A": {"main": [[{"node": "X"}], [{"node": "X"}]], "ai_tool": [[{"node": "Y"}]]}}}`,
			want: []string{
				"DANGLING_TARGET: connection target 'X' does not exist as a node",
				"DANGLING_TARGET: connection target 'X' does not exist as a node",
				"DANGLING_TARGET: connection target 'Y' does not exist as a node",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := checkDanglingEndpoints(graphFromJSON(t, tt.src))
			assert.Equal(t, tt.want, lines(diags))
		})
	}
}

func TestFL04_OrphanedNodes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "manual trigger alone",
			src:  `{"nodes": [{"name": "Start", "type": "n8n-nodes-base.manualTrigger"}]}`,
			want: nil,
		},
		{
			name: "every entry point type is exempt",
			src: `{"nodes": [
				{"name": "a", "type": "n8n-nodes-base.scheduleTrigger"},
				{"name": "b", "type": "n8n-nodes-base.manualTrigger"},
				{"name": "c", "type": "n8n-nodes-base.webhook"},
				{"name": "d", "type": "@n8n/n8n-nodes-langchain.manualChatTrigger"},
				{"name": "e", "type": "n8n-nodes-base.stickyNote"}
			]}`,
			want: nil,
		},
		{
			name: "arbitrary type alone",
			src:  `{"nodes": [{"name": "Lost", "type": "n8n-nodes-base.set"}]}`,
			want: []string{"ORPHANED_NODE: node 'Lost' (n8n-nodes-base.set) has no connections"},
		},
		{
			name: "missing type renders empty",
			src:  `{"nodes": [{"name": "Bare"}]}`,
			want: []string{"ORPHANED_NODE: node 'Bare' () has no connections"},
		},
		{
			name: "auxiliary connection counts",
			src: `{"nodes": [{"name": "Model", "type": "lm"}, {"name": "Agent", "type": "agent"}],
				"connections": {"Model": {"ai_languageModel": [[{"node": "Agent"}]]}}}`,
			want: nil,
		},
		{
			name: "target of a dangling source counts",
			src: `{"nodes": [{"name": "B", "type": "x"}],
				"connections": {"Ghost": {"main": [[{"node": "B"}]]}}}`,
			want: nil,
		},
		{
			name: "last duplicate record decides type",
			src: `{"nodes": [{"name": "A", "type": "n8n-nodes-base.set"}, {"name": "A", "type": "n8n-nodes-base.webhook"},
				{"name": "B", "type": "n8n-nodes-base.webhook"}, {"name": "B", "type": "n8n-nodes-base.set"}]}`,
			want: []string{"ORPHANED_NODE: node 'B' (n8n-nodes-base.set) has no connections"},
		},
		{
			name: "first appearance order",
			src:  `{"nodes": [{"name": "Z", "type": "t"}, {"name": "A", "type": "t"}, {"name": "Z", "type": "t"}]}`,
			want: []string{
				"ORPHANED_NODE: node 'Z' (t) has no connections",
				"ORPHANED_NODE: node 'A' (t) has no connections",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := checkOrphanedNodes(graphFromJSON(t, tt.src))
			if tt.want == nil {
				assert.Empty(t, diags)
				return
			}
			assert.Equal(t, tt.want, lines(diags))
			for _, d := range diags {
				assert.Equal(t, lint.SeverityWarning, d.Severity)
			}
		})
	}
}

func TestValidate_CheckOrder(t *testing.T) {
	g := graphFromJSON(t, `{
		"nodes": [
			{"name": "A", "id": "1", "type": "t"},
			{"name": "A", "id": "1", "type": "t"},
			{"name": "Lonely", "id": "2", "type": "t"}
		],
		"connections": {"A": {"main": [[{"node": "Missing"}]]}}
	}`)

	assert.Equal(t, []string{
		"DUPLICATE_NAME: node name 'A' occurs more than once",
		"DUPLICATE_ID: node id '1' occurs more than once",
		"DANGLING_TARGET: connection target 'Missing' does not exist as a node",
		"ORPHANED_NODE: node 'Lonely' (t) has no connections",
	}, lines(lint.Validate(g)))
}

func TestValidate_DisableCategoryKeepsOrder(t *testing.T) {
	g := graphFromJSON(t, `{
		"nodes": [{"name": "A"}, {"name": "A"}, {"name": "L", "id": "9", "type": "t"}],
		"connections": {"X": {"main": [[{"node": "Y"}]]}}
	}`)

	cfg := lint.NewConfig().Disable("DANGLING_SOURCE").Disable("FL02")
	diags := lint.NewAnalyzer(cfg, nil).Analyze(g)
	assert.Equal(t, []string{
		"DUPLICATE_NAME: node name 'A' occurs more than once",
		"DANGLING_TARGET: connection target 'Y' does not exist as a node",
		"ORPHANED_NODE: node 'A' () has no connections",
		"ORPHANED_NODE: node 'L' (t) has no connections",
	}, lines(diags))

	cfg = lint.NewConfig()
	cfg.MinSeverity = lint.SeverityError
	diags = lint.NewAnalyzer(cfg, nil).Analyze(g)
	for _, d := range diags {
		assert.NotEqual(t, lint.CategoryOrphanedNode, d.Category)
	}
}
