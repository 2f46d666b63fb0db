// Package batch runs the summary pipeline over every row of a table:
// build candidate, compose prompt, generate, record, pause.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/execsum/internal/columns"
	"github.com/amishk599/execsum/internal/filter"
	"github.com/amishk599/execsum/internal/model"
	"github.com/amishk599/execsum/internal/prompt"
	"github.com/amishk599/execsum/internal/ratelimit"
	"github.com/amishk599/execsum/internal/table"
)

// DefaultResultColumn is the column appended to the output table.
const DefaultResultColumn = "Executive Summary"

// CancelledMarker is recorded for rows not started because the run was cancelled.
const CancelledMarker = model.ErrorMarkerPrefix + "run cancelled before generation."

// Progress is reported before each row and once when the run ends.
type Progress struct {
	Completed int
	Total     int
	Candidate string
	Status    string
	Done      bool
}

// Fraction returns Completed/Total in [0, 1]. An empty run is complete.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}
	return float64(p.Completed) / float64(p.Total)
}

// Options tune a single run.
type Options struct {
	Source       string
	ResultColumn string           // defaults to DefaultResultColumn
	Filter       filter.RowFilter // rows it rejects keep their current result column value
	OnProgress   func(Progress)   // called synchronously from Run
}

// Output is the result of a run.
type Output struct {
	Table   *table.Table
	Results []model.Result
	Report  model.RunReport
}

// Runner owns the sequential pipeline. It is not safe for concurrent Runs.
type Runner struct {
	composer  *prompt.Composer
	generator model.Generator
	pacer     *ratelimit.Pacer
	logger    *slog.Logger
	now       func() time.Time
}

// NewRunner creates a runner wired with all its dependencies.
func NewRunner(composer *prompt.Composer, generator model.Generator, pacer *ratelimit.Pacer, logger *slog.Logger) *Runner {
	return &Runner{
		composer:  composer,
		generator: generator,
		pacer:     pacer,
		logger:    logger,
		now:       time.Now,
	}
}

// Run processes every row of the session's table in order, one at a time.
// It fails only when the session is not ready; per-row failures are recorded
// as error results. Cancellation is checked before each row; rows not started
// get CancelledMarker, so the output always has one result per input row.
func (r *Runner) Run(ctx context.Context, state columns.State, opts Options) (*Output, error) {
	if err := state.Ready(); err != nil {
		return nil, err
	}
	if opts.ResultColumn == "" {
		opts.ResultColumn = DefaultResultColumn
	}
	report := func(p Progress) {
		if opts.OnProgress != nil {
			opts.OnProgress(p)
		}
	}

	t := state.Table
	sel := state.Selection
	total := t.Len()
	results := make([]model.Result, total)
	rep := model.RunReport{
		RunID:     uuid.NewString(),
		Source:    opts.Source,
		Total:     total,
		StartedAt: r.now(),
	}

	r.logger.Info("starting batch",
		"run_id", rep.RunID,
		"rows", total,
		"name_column", sel.NameColumn,
		"competencies", len(sel.Competencies),
		"delay", r.pacer.Delay().String(),
	)

	kept := make([]bool, total)
	cancelFrom := func(i int) {
		rep.Cancelled = true
		for j := i; j < total; j++ {
			results[j] = model.Result{Err: CancelledMarker}
		}
		r.logger.Warn("batch cancelled", "run_id", rep.RunID, "completed", i, "total", total)
	}

	generated := 0
	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			cancelFrom(i)
			break
		}

		candidate := NewCandidate(t, sel, i)

		if opts.Filter != nil && !opts.Filter.Match(t, i) {
			results[i] = existingResult(t, opts.ResultColumn, i)
			kept[i] = true
			report(Progress{
				Completed: i,
				Total:     total,
				Candidate: candidate.Name,
				Status:    fmt.Sprintf("Keeping existing summary: %s (%d/%d)", candidate.Name, i+1, total),
			})
			continue
		}

		if generated > 0 {
			if err := r.pacer.Pause(ctx); err != nil {
				cancelFrom(i)
				break
			}
		}

		report(Progress{
			Completed: i,
			Total:     total,
			Candidate: candidate.Name,
			Status:    fmt.Sprintf("Processing candidate: %s (%d/%d)", candidate.Name, i+1, total),
		})

		results[i] = r.generate(ctx, candidate)
		generated++

		if results[i].Failed() {
			r.logger.Warn("candidate failed", "row", i+1, "candidate", candidate.Name, "error", results[i].Err)
		} else {
			r.logger.Debug("candidate done", "row", i+1, "candidate", candidate.Name, "chars", len(results[i].Text))
		}
	}

	values := make([]table.Value, total)
	for i, res := range results {
		values[i] = table.Text(res.String())
		switch {
		case kept[i]:
			rep.Kept++
		case res.Failed():
			rep.Failed++
			rep.FailedCandidates = append(rep.FailedCandidates, t.Cell(i, sel.NameColumn).String())
		default:
			rep.Succeeded++
		}
	}

	out, err := t.WithColumn(opts.ResultColumn, values)
	if err != nil {
		return nil, fmt.Errorf("append %s column: %w", opts.ResultColumn, err)
	}
	rep.FinishedAt = r.now()

	status := "Generation complete!"
	if rep.Cancelled {
		status = fmt.Sprintf("Generation cancelled: %d of %d candidates not started", countMarker(results, CancelledMarker), total)
	}
	report(Progress{Completed: total, Total: total, Status: status, Done: true})

	r.logger.Info("batch finished",
		"run_id", rep.RunID,
		"total", rep.Total,
		"succeeded", rep.Succeeded,
		"failed", rep.Failed,
		"kept", rep.Kept,
		"cancelled", rep.Cancelled,
		"duration", rep.FinishedAt.Sub(rep.StartedAt).Round(time.Millisecond).String(),
	)

	return &Output{Table: out, Results: results, Report: rep}, nil
}

// generate runs one row to completion. A row that has started is not
// interrupted by cancelling ctx; the generator's own timeout still applies.
func (r *Runner) generate(ctx context.Context, c model.Candidate) model.Result {
	text, err := r.composer.Compose(c)
	if err != nil {
		return model.Result{Err: fmt.Sprintf("%s%v", model.ErrorMarkerPrefix, err)}
	}
	return r.generator.Generate(context.WithoutCancel(ctx), text)
}

// NewCandidate builds the candidate view of row i. Scores follow the order of
// sel.Competencies and carry the cell text unchanged.
func NewCandidate(t *table.Table, sel model.Selection, i int) model.Candidate {
	c := model.Candidate{
		Row:    i,
		Name:   t.Cell(i, sel.NameColumn).String(),
		Scores: make([]model.Score, len(sel.Competencies)),
	}
	for j, label := range sel.Competencies {
		c.Scores[j] = model.Score{Label: label, Value: t.Cell(i, label).String()}
	}
	return c
}

func existingResult(t *table.Table, column string, i int) model.Result {
	if !t.HasColumn(column) {
		return model.Result{}
	}
	v := t.Cell(i, column).String()
	if model.IsErrorMarker(v) {
		return model.Result{Err: v}
	}
	return model.Result{Text: v}
}

func countMarker(results []model.Result, marker string) int {
	n := 0
	for _, r := range results {
		if r.Err == marker {
			n++
		}
	}
	return n
}
