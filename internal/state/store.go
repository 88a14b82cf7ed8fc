// Package state records validation runs in a local SQLite database so that
// results can be compared over time.
package state

import (
	"context"
	"time"
)

// RunStatus is the outcome of validating one workflow file.
type RunStatus string

// Run statuses.
const (
	// RunStatusPassed means the workflow produced no findings.
	RunStatusPassed RunStatus = "passed"
	// RunStatusFailed means the workflow produced at least one finding.
	RunStatusFailed RunStatus = "failed"
	// RunStatusError means the workflow could not be read or extracted.
	RunStatusError RunStatus = "error"
)

// Run is one recorded validation of a workflow file.
type Run struct {
	ID          string        `json:"id"`
	Path        string        `json:"path"`
	Status      RunStatus     `json:"status"`
	Nodes       int           `json:"nodes"`
	Connections int           `json:"connections"`
	Errors      int           `json:"errors"`
	Warnings    int           `json:"warnings"`
	Findings    int           `json:"findings"`
	Error       string        `json:"error,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
}

// Finding is one diagnostic recorded with a run.
type Finding struct {
	RuleID   string `json:"rule_id"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Node     string `json:"node,omitempty"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// RunFilter narrows ListRuns.
type RunFilter struct {
	Path  string // exact path match, empty for all
	Limit int    // maximum runs returned, <= 0 for all
}

// Store persists validation runs.
type Store interface {
	RecordRun(ctx context.Context, run *Run, findings []Finding) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*Run, error)
	GetFindings(ctx context.Context, runID string) ([]Finding, error)
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
