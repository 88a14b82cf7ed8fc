// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/flowlint/internal/cli/output"
)

// Workflow fixtures written by SetupTestWorkflows.
const (
	// ValidWorkflow has a trigger feeding two nodes and an AI sub-node.
	ValidWorkflow = `{
  "name": "Weekly digest",
  "nodes": [
    {"id": "1", "name": "Schedule", "type": "n8n-nodes-base.scheduleTrigger"},
    {"id": "2", "name": "Fetch", "type": "n8n-nodes-base.httpRequest"},
    {"id": "3", "name": "Summarize", "type": "@n8n/n8n-nodes-langchain.agent"},
    {"id": "4", "name": "Model", "type": "@n8n/n8n-nodes-langchain.lmChatOpenAi"},
    {"id": "5", "name": "Note", "type": "n8n-nodes-base.stickyNote"}
  ],
  "connections": {
    "Schedule": {"main": [[{"node": "Fetch", "type": "main", "index": 0}]]},
    "Fetch": {"main": [[{"node": "Summarize", "type": "main", "index": 0}]]},
    "Model": {"ai_languageModel": [[{"node": "Summarize", "type": "ai_languageModel", "index": 0}]]}
  }
}
`

	// BrokenWorkflow triggers every finding category once.
	BrokenWorkflow = `{
  "nodes": [
    {"id": "1", "name": "Start", "type": "n8n-nodes-base.manualTrigger"},
    {"id": "1", "name": "Fetch", "type": "n8n-nodes-base.httpRequest"},
    {"id": "3", "name": "Fetch", "type": "n8n-nodes-base.httpRequest"},
    {"id": "4", "name": "Lonely", "type": "n8n-nodes-base.set"}
  ],
  "connections": {
    "Start": {"main": [[{"node": "Fetch"}, {"node": "Ghost"}]]},
    "Phantom": {"main": [[{"node": "Fetch"}]]}
  }
}
`

	// ValidYAMLWorkflow is a valid workflow in YAML form.
	ValidYAMLWorkflow = `nodes:
  - name: Start
    type: n8n-nodes-base.manualTrigger
  - name: Log
    type: n8n-nodes-base.noOp
connections:
  Start:
    main:
      - - node: Log
`

	// MalformedWorkflow is not valid JSON.
	MalformedWorkflow = `{"nodes": [`

	// StructurallyInvalidWorkflow parses but has a node without a name.
	StructurallyInvalidWorkflow = `{"nodes": [{"id": "1", "type": "x"}]}`
)

// SetupTestWorkflows writes the workflow fixtures into a temporary directory
// and returns its path.
func SetupTestWorkflows(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"valid.json":     ValidWorkflow,
		"broken.json":    BrokenWorkflow,
		"valid.yaml":     ValidYAMLWorkflow,
		"malformed.json": MalformedWorkflow,
		"invalid.json":   StructurallyInvalidWorkflow,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
	return dir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if fenceCount := strings.Count(md, "```"); fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
