// Package main provides tests for the flowlint CLI.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/flowlint/internal/cli"
	"github.com/leapstack-labs/flowlint/internal/cli/commands"
	"github.com/leapstack-labs/flowlint/internal/cli/config"
	"github.com/leapstack-labs/flowlint/internal/cli/testutil"
)

// run executes the root command in a fresh working directory.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	output, err := run(t, "version")
	if err != nil {
		t.Errorf("version command error = %v", err)
	}
	if !strings.Contains(output, "flowlint v") {
		t.Errorf("version output should contain 'flowlint v', got: %s", output)
	}
}

func TestHelpCommand(t *testing.T) {
	output, err := run(t, "--help")
	if err != nil {
		t.Errorf("help command error = %v", err)
	}

	for _, expected := range []string{"validate", "connections", "rules", "history", "completion"} {
		if !strings.Contains(output, expected) {
			t.Errorf("help output should contain '%s', got: %s", expected, output)
		}
	}
}

func TestValidateCommand(t *testing.T) {
	dir := testutil.SetupTestWorkflows(t)
	t.Chdir(dir)

	output, err := run(t, "validate", "valid.json", "valid.yaml")
	if err != nil {
		t.Fatalf("validate command error = %v\n%s", err, output)
	}
	if !strings.Contains(output, "0 findings in 2 files (2 passed, 0 failed)") {
		t.Errorf("unexpected summary, got: %s", output)
	}
}

func TestValidateCommandFindings(t *testing.T) {
	dir := testutil.SetupTestWorkflows(t)
	t.Chdir(dir)

	output, err := run(t, "-o", "json", "validate", "broken.json")
	if !errors.Is(err, commands.ErrIssuesFound) {
		t.Fatalf("expected ErrIssuesFound, got %v", err)
	}

	var result commands.ValidateJSONOutput
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if result.Summary.Findings != 5 {
		t.Errorf("expected 5 findings, got %d", result.Summary.Findings)
	}
}

func TestValidateCommandConfigFile(t *testing.T) {
	dir := testutil.SetupTestWorkflows(t)
	t.Chdir(dir)

	cfg := "workflows: [broken.json]\noutput: json\nlint:\n  disabled: [FL01, FL02, FL03, FL04]\n"
	if err := os.WriteFile(filepath.Join(dir, "flowlint.yaml"), []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}

	output, err := run(t, "validate")
	if err != nil {
		t.Fatalf("validate command error = %v\n%s", err, output)
	}
	if !strings.Contains(output, `"passed": 1`) {
		t.Errorf("expected one passed file, got: %s", output)
	}
}

func TestInvalidConfiguration(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := run(t, "-o", "xml", "rules")
	if err == nil || !strings.Contains(err.Error(), "invalid configuration") {
		t.Errorf("expected invalid configuration error, got %v", err)
	}
}

func TestConnectionsCommand(t *testing.T) {
	dir := testutil.SetupTestWorkflows(t)
	t.Chdir(dir)

	output, err := run(t, "connections", "valid.json")
	if err != nil {
		t.Fatalf("connections command error = %v", err)
	}
	if !strings.Contains(output, "Data flow") {
		t.Errorf("connections output should contain 'Data flow', got: %s", output)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			output, err := run(t, "completion", shell)
			if err != nil {
				t.Errorf("completion %s error = %v", shell, err)
			}
			if len(output) == 0 {
				t.Errorf("completion %s produced no output", shell)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := run(t, "unknown-command")
	if err == nil {
		t.Error("expected error for unknown command")
	}
}
