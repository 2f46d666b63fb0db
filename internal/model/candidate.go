package model

import (
	"context"
	"strings"
	"time"
)

// Selection is the operator's confirmed choice of columns.
// Competencies is ordered; the order is the order lines appear in the prompt.
type Selection struct {
	NameColumn   string
	Competencies []string
}

// Score is one competency label with the cell value taken verbatim from the row.
type Score struct {
	Label string
	Value string
}

// Candidate is the read-only view of one table row under a Selection.
type Candidate struct {
	Row    int    // zero-based position in the input table
	Name   string // display name from the name column
	Scores []Score
}

// ScoreMap returns the competency scores keyed by label.
func (c Candidate) ScoreMap() map[string]string {
	m := make(map[string]string, len(c.Scores))
	for _, s := range c.Scores {
		m[s.Label] = s.Value
	}
	return m
}

// Result is the outcome of one generation call. Exactly one of Text or Err is set.
type Result struct {
	Text string
	Err  string
}

// Failed reports whether the result carries an error description.
func (r Result) Failed() bool {
	return r.Err != ""
}

// String returns the value written to the result column.
func (r Result) String() string {
	if r.Failed() {
		return r.Err
	}
	return r.Text
}

// RunReport summarises one batch run.
type RunReport struct {
	RunID            string
	Source           string
	Output           string
	Total            int
	Succeeded        int
	Failed           int
	Kept             int // rows carried over unchanged (re-run mode)
	FailedCandidates []string
	Cancelled        bool
	StartedAt        time.Time
	FinishedAt       time.Time
}

// Generator turns a composed prompt into a Result. Implementations never
// return Go errors for per-row failures; failures are carried in Result.Err.
type Generator interface {
	Generate(ctx context.Context, prompt string) Result
}

// Notifier is told about finished runs.
type Notifier interface {
	Notify(report RunReport) error
}

// ErrorMarkerPrefix starts every error description written to the result column.
const ErrorMarkerPrefix = "Error: "

// IsErrorMarker reports whether a result column value records a failed generation.
func IsErrorMarker(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), ErrorMarkerPrefix)
}
