package notifier

import (
	"log/slog"

	"github.com/amishk599/execsum/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes the run report to the given logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs reports via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the report counts and each failed candidate.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(r model.RunReport) error {
	n.logger.Info("run finished",
		"run_id", r.RunID,
		"source", r.Source,
		"output", r.Output,
		"total", r.Total,
		"succeeded", r.Succeeded,
		"failed", r.Failed,
		"kept", r.Kept,
		"cancelled", r.Cancelled,
	)
	for _, name := range r.FailedCandidates {
		n.logger.Warn("summary missing", "run_id", r.RunID, "candidate", name)
	}
	return nil
}
