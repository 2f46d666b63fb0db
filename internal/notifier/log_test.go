package notifier

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/amishk599/execsum/internal/model"
)

func TestLogNotifier_Notify_logsCountsAndFailures(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))

	err := n.Notify(model.RunReport{
		RunID:            "r1",
		Total:            3,
		Succeeded:        2,
		Failed:           1,
		FailedCandidates: []string{"Bob"},
	})
	if err != nil {
		t.Errorf("Notify = %v, want nil", err)
	}
	out := buf.String()
	for _, want := range []string{"run finished", "succeeded=2", "failed=1", "candidate=Bob"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogNotifier_Notify_emptyReport(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
	if err := n.Notify(model.RunReport{}); err != nil {
		t.Errorf("Notify = %v, want nil", err)
	}
	if strings.Contains(buf.String(), "summary missing") {
		t.Error("no failures should be logged for an empty report")
	}
}
