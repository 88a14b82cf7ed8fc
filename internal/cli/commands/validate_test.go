package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/flowlint/internal/cli/config"
	clitestutil "github.com/leapstack-labs/flowlint/internal/cli/testutil"
	"github.com/leapstack-labs/flowlint/internal/state"
	"github.com/leapstack-labs/flowlint/internal/testutil"
	"github.com/leapstack-labs/flowlint/pkg/lint"
	"github.com/leapstack-labs/flowlint/pkg/workflow"
)

func validateJSONRun(t *testing.T, args ...string) (ValidateJSONOutput, error) {
	t.Helper()
	out, _, err := execute(t, NewValidateCommand(), append([]string{"--format", "json"}, args...)...)

	var result ValidateJSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result), "output should be JSON: %s", out)
	return result, err
}

func categories(diags []lint.Diagnostic) []lint.Category {
	var cats []lint.Category
	for _, d := range diags {
		cats = append(cats, d.Category)
	}
	return cats
}

func TestValidate_ValidWorkflow(t *testing.T) {
	config.ResetConfig()
	dir := clitestutil.SetupTestWorkflows(t)
	path := filepath.Join(dir, "valid.json")

	out, _, err := execute(t, NewValidateCommand(), path)
	require.NoError(t, err)

	assert.Contains(t, out, "## "+path)
	assert.Contains(t, out, "**Format:** json | **Nodes:** 5 | **Connections:** 3")
	assert.Contains(t, out, "**OK:** no findings")
	assert.Contains(t, out, "0 findings in 1 files (1 passed, 0 failed)")
	clitestutil.AssertNoANSI(t, out)
	clitestutil.AssertValidMarkdown(t, out)
}

func TestValidate_YAMLWorkflow(t *testing.T) {
	config.ResetConfig()
	dir := clitestutil.SetupTestWorkflows(t)

	result, err := validateJSONRun(t, filepath.Join(dir, "valid.yaml"))
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, StatusPassed, result.Files[0].Status)
	assert.Equal(t, 2, result.Files[0].Nodes)
	assert.Equal(t, 1, result.Files[0].Connections)
}

func TestValidate_BrokenWorkflow(t *testing.T) {
	config.ResetConfig()
	dir := clitestutil.SetupTestWorkflows(t)
	path := filepath.Join(dir, "broken.json")

	result, err := validateJSONRun(t, path)
	require.ErrorIs(t, err, ErrIssuesFound)
	assert.Contains(t, err.Error(), "5 findings")

	assert.Equal(t, ValidateSummary{Files: 1, Failed: 1, Findings: 5, Errors: 4, Warnings: 1}, result.Summary)
	require.Len(t, result.Files, 1)

	f := result.Files[0]
	assert.Equal(t, StatusFailed, f.Status)
	assert.Equal(t, []lint.Category{
		lint.CategoryDuplicateName,
		lint.CategoryDuplicateID,
		lint.CategoryDanglingTarget,
		lint.CategoryDanglingSource,
		lint.CategoryOrphanedNode,
	}, categories(f.Findings))
	assert.Equal(t, "node name 'Fetch' occurs more than once", f.Findings[0].Message)
	assert.Equal(t, "Ghost", f.Findings[2].Node)
	assert.Equal(t, "Phantom", f.Findings[3].Node)
	assert.Equal(t, "node 'Lonely' (n8n-nodes-base.set) has no connections", f.Findings[4].Message)
	assert.Equal(t, lint.SeverityWarning, f.Findings[4].Severity)
	assert.True(t, f.Findings[0].Pos.IsValid(), "findings should carry positions")
}

func TestValidate_BrokenWorkflowMarkdown(t *testing.T) {
	config.ResetConfig()
	dir := clitestutil.SetupTestWorkflows(t)

	out, _, err := execute(t, NewValidateCommand(), filepath.Join(dir, "broken.json"))
	require.ErrorIs(t, err, ErrIssuesFound)

	assert.Contains(t, out, "### Findings (5)")
	assert.Contains(t, out, "- **DANGLING_TARGET** (`error`, FL03,")
	assert.Contains(t, out, "connection target 'Ghost' does not exist as a node")
	assert.Contains(t, out, "connection source 'Phantom' does not exist as a node")
	assert.Contains(t, out, "5 findings, 4 errors, 1 warnings in 1 files (0 passed, 1 failed)")
	clitestutil.AssertValidMarkdown(t, out)
}

func TestValidate_FatalErrors(t *testing.T) {
	config.ResetConfig()
	dir := clitestutil.SetupTestWorkflows(t)

	tests := []struct {
		name      string
		file      string
		kind      string
		indicator string
		sentinel  error
	}{
		{name: "not found", file: "missing.json", kind: "not_found", indicator: "FILE NOT FOUND", sentinel: workflow.ErrNotFound},
		{name: "malformed", file: "malformed.json", kind: "malformed", indicator: "MALFORMED INPUT", sentinel: workflow.ErrMalformed},
		{name: "invalid structure", file: "invalid.json", kind: "structure", indicator: "INVALID STRUCTURE", sentinel: workflow.ErrStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)

			result, err := validateJSONRun(t, path)
			require.ErrorIs(t, err, ErrIssuesFound)
			assert.Contains(t, err.Error(), "1 files could not be validated")
			require.Len(t, result.Files, 1)
			assert.Equal(t, StatusError, result.Files[0].Status)
			assert.Equal(t, tt.kind, result.Files[0].ErrorKind)
			assert.Empty(t, result.Files[0].Findings)
			assert.Equal(t, 1, result.Summary.Errored)

			out, _, err := execute(t, NewValidateCommand(), path)
			require.Error(t, err)
			assert.Contains(t, out, "> **"+tt.indicator+":**")

			res := (&validator{analyzer: lint.NewAnalyzer(nil, nil), logger: testutil.NewTestLogger(t)}).validateFile(path)
			assert.ErrorIs(t, res.Err, tt.sentinel)
		})
	}
}

func TestValidate_MultipleFilesKeepArgumentOrder(t *testing.T) {
	config.ResetConfig()
	dir := clitestutil.SetupTestWorkflows(t)
	names := []string{"broken.json", "valid.json", "missing.json", "valid.yaml", "malformed.json"}
	var paths []string
	for _, n := range names {
		paths = append(paths, filepath.Join(dir, n))
	}

	result, err := validateJSONRun(t, append([]string{"--jobs", "2"}, paths...)...)
	require.ErrorIs(t, err, ErrIssuesFound)
	assert.Contains(t, err.Error(), "5 findings, 2 files could not be validated")

	var got []string
	for _, f := range result.Files {
		got = append(got, f.Path)
	}
	assert.Equal(t, paths, got)
	assert.Equal(t, ValidateSummary{Files: 5, Passed: 2, Failed: 1, Errored: 2, Findings: 5, Errors: 4, Warnings: 1}, result.Summary)
}

func TestValidate_RuleSelection(t *testing.T) {
	config.ResetConfig()
	dir := clitestutil.SetupTestWorkflows(t)
	path := filepath.Join(dir, "broken.json")

	tests := []struct {
		name string
		args []string
		want []lint.Category
	}{
		{
			name: "disable category",
			args: []string{"--disable", "ORPHANED_NODE"},
			want: []lint.Category{lint.CategoryDuplicateName, lint.CategoryDuplicateID, lint.CategoryDanglingTarget, lint.CategoryDanglingSource},
		},
		{
			name: "disable rules by id and name",
			args: []string{"--disable", "FL01,dangling-endpoints"},
			want: []lint.Category{lint.CategoryDuplicateID, lint.CategoryOrphanedNode},
		},
		{
			name: "only one rule",
			args: []string{"--rule", "FL04"},
			want: []lint.Category{lint.CategoryOrphanedNode},
		},
		{
			name: "minimum severity",
			args: []string{"--severity", "error"},
			want: []lint.Category{lint.CategoryDuplicateName, lint.CategoryDuplicateID, lint.CategoryDanglingTarget, lint.CategoryDanglingSource},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := validateJSONRun(t, append(tt.args, path)...)
			require.ErrorIs(t, err, ErrIssuesFound)
			require.Len(t, result.Files, 1)
			assert.Equal(t, tt.want, categories(result.Files[0].Findings))
		})
	}
}

func TestValidate_ConfigSeverityOverride(t *testing.T) {
	setupConfig(t, `lint:
  severity:
    ORPHANED_NODE: error
  disabled: [DUPLICATE_ID]
`)
	dir := clitestutil.SetupTestWorkflows(t)

	result, err := validateJSONRun(t, filepath.Join(dir, "broken.json"))
	require.ErrorIs(t, err, ErrIssuesFound)
	assert.Equal(t, 4, result.Summary.Findings)
	assert.Equal(t, 4, result.Summary.Errors)
	assert.Zero(t, result.Summary.Warnings)
}

func TestValidate_InvalidSeverityFlag(t *testing.T) {
	config.ResetConfig()
	dir := clitestutil.SetupTestWorkflows(t)

	_, _, err := execute(t, NewValidateCommand(), "--severity", "loud", filepath.Join(dir, "valid.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid severity")
	assert.False(t, errors.Is(err, ErrIssuesFound))
}

func TestValidate_UnknownRuleWarns(t *testing.T) {
	config.ResetConfig()
	dir := clitestutil.SetupTestWorkflows(t)

	_, errOut, err := execute(t, NewValidateCommand(), "--disable", "NOPE", filepath.Join(dir, "valid.json"))
	require.NoError(t, err)
	assert.Contains(t, errOut, "unknown rules or categories in configuration: NOPE")
}

func TestValidate_NoFiles(t *testing.T) {
	setupConfig(t, "output: markdown\n")

	_, _, err := execute(t, NewValidateCommand())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no workflow files given")
}

func TestValidate_FilesFromConfig(t *testing.T) {
	dir := setupConfig(t, "workflows: [flow.json]\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flow.json"), []byte(clitestutil.ValidWorkflow), 0600))

	result, err := validateJSONRun(t)
	require.NoError(t, err)
	require.Len(t, result.Files, 1)
	assert.Equal(t, filepath.Join(dir, "flow.json"), result.Files[0].Path)
}

func TestValidate_InputFormatFlag(t *testing.T) {
	config.ResetConfig()
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.txt")
	require.NoError(t, os.WriteFile(path, []byte(clitestutil.ValidYAMLWorkflow), 0600))

	_, err := validateJSONRun(t, path)
	require.ErrorIs(t, err, ErrIssuesFound, "a .txt file is read as JSON by default")

	result, err := validateJSONRun(t, "--input-format", "yaml", path)
	require.NoError(t, err)
	assert.Equal(t, StatusPassed, result.Files[0].Status)
}

func TestValidate_ShowConnections(t *testing.T) {
	config.ResetConfig()
	dir := clitestutil.SetupTestWorkflows(t)

	out, _, err := execute(t, NewValidateCommand(), "--show-connections", filepath.Join(dir, "broken.json"))
	require.ErrorIs(t, err, ErrIssuesFound)

	assert.Contains(t, out, "### Data flow")
	assert.Contains(t, out, "| Start | Fetch | OK |")
	assert.Contains(t, out, "| Start | Ghost | MISSING |")
	assert.Contains(t, out, "| Phantom | Fetch | MISSING |")

	result, err := validateJSONRun(t, "--show-connections", filepath.Join(dir, "valid.json"))
	require.NoError(t, err)
	groups := result.Files[0].Groups
	require.Len(t, groups, 2)
	assert.Equal(t, "AI: languageModel", groups[0].Label)
	assert.Equal(t, "Data flow", groups[1].Label)
}

func TestValidate_TextMode(t *testing.T) {
	config.ResetConfig()
	dir := clitestutil.SetupTestWorkflows(t)

	out, _, err := execute(t, NewValidateCommand(), "--format", "text", filepath.Join(dir, "broken.json"), filepath.Join(dir, "malformed.json"))
	require.ErrorIs(t, err, ErrIssuesFound)

	assert.Contains(t, out, "Validating: "+filepath.Join(dir, "broken.json"))
	assert.Contains(t, out, "✓ JSON valid")
	assert.Contains(t, out, "5 problem(s) found:")
	assert.Contains(t, out, "✗ MALFORMED INPUT:")
	assert.Contains(t, out, "Summary: 5 findings")
	clitestutil.AssertNoANSI(t, out)
}

func TestValidate_RecordsHistory(t *testing.T) {
	dir := setupConfig(t, "history:\n  path: state/history.db\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte(clitestutil.BrokenWorkflow), 0600))

	_, _, err := execute(t, NewValidateCommand(), "--record", "broken.json", "missing.json")
	require.ErrorIs(t, err, ErrIssuesFound)

	store, err := state.OpenStore(filepath.Join(dir, "state", "history.db"), nil)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	runs, err := store.ListRuns(ctx, state.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byPath := map[string]*state.Run{}
	for _, r := range runs {
		byPath[r.Path] = r
	}
	broken := byPath["broken.json"]
	require.NotNil(t, broken)
	assert.Equal(t, state.RunStatusFailed, broken.Status)
	assert.Equal(t, 3, broken.Nodes, "duplicate names count once")
	assert.Equal(t, 3, broken.Connections)
	assert.Equal(t, 4, broken.Errors)
	assert.Equal(t, 1, broken.Warnings)
	assert.Equal(t, 5, broken.Findings)

	missing := byPath["missing.json"]
	require.NotNil(t, missing)
	assert.Equal(t, state.RunStatusError, missing.Status)
	assert.Contains(t, missing.Error, "workflow not found")

	findings, err := store.GetFindings(ctx, broken.ID)
	require.NoError(t, err)
	require.Len(t, findings, 5)
	assert.Equal(t, "FL01", findings[0].RuleID)
	assert.Equal(t, "DUPLICATE_NAME", findings[0].Category)
}

func TestToRun(t *testing.T) {
	res := FileResult{
		Path:   "x.json",
		Status: StatusError,
		Err:    fmt.Errorf("x.json: %w", workflow.ErrMalformed),
	}
	run, findings := toRun(res)
	assert.Equal(t, state.RunStatusError, run.Status)
	assert.Equal(t, "x.json: malformed workflow", run.Error)
	assert.Empty(t, findings)
}

func TestWatchFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.json")
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(path, []byte(clitestutil.ValidWorkflow), 0600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan []string, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchFiles(ctx, []string{path}, 20*time.Millisecond, slog.New(slog.DiscardHandler), func(changed []string) {
			changes <- changed
		})
	}()

	// the watcher may not be registered yet, so keep touching the file
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var got []string
	for got == nil {
		select {
		case got = <-changes:
		case <-ticker.C:
			require.NoError(t, os.WriteFile(other, []byte("{}"), 0600))
			require.NoError(t, os.WriteFile(path, []byte(clitestutil.BrokenWorkflow), 0600))
		case <-deadline:
			t.Fatal("no change reported")
		}
	}
	assert.Equal(t, []string{path}, got)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
