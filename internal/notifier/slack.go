package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amishk599/execsum/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// maxListedFailures caps the candidate names included in one message.
const maxListedFailures = 20

// SlackNotifier posts run reports to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each report to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends the report as one Block Kit message. A single 429 is honoured
// once using Retry-After.
func (s *SlackNotifier) Notify(r model.RunReport) error {
	body, err := json.Marshal(buildPayload(r))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		secs, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return &model.HTTPError{StatusCode: resp2.StatusCode, Err: fmt.Errorf("slack rejected message on retry")}
		}
		s.logger.Info("slack message sent", "run_id", r.RunID, "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return &model.HTTPError{StatusCode: resp.StatusCode, Err: fmt.Errorf("slack rejected message")}
	}
	s.logger.Info("slack message sent", "run_id", r.RunID)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SampleReport builds a two-minute run over a fictional cohort with the
// given number of failed candidates, for checking a notifier end to end.
func SampleReport(failures int) model.RunReport {
	finished := time.Now()
	r := model.RunReport{
		RunID:      "sample-" + finished.Format("20060102-150405"),
		Source:     "sample-cohort.xlsx",
		Output:     "Executive_Summaries_Output.csv",
		Total:      5 + failures,
		Succeeded:  5,
		Failed:     failures,
		StartedAt:  finished.Add(-2 * time.Minute),
		FinishedAt: finished,
	}
	for i := 1; i <= failures; i++ {
		r.FailedCandidates = append(r.FailedCandidates, fmt.Sprintf("Sample Candidate %d", i))
	}
	return r
}

func buildPayload(r model.RunReport) slackPayload {
	title := "✅ Executive summaries ready"
	switch {
	case r.Cancelled:
		title = "⏹ Executive summary run cancelled"
	case r.Failed > 0:
		title = "⚠️ Executive summaries finished with failures"
	}

	duration := r.FinishedAt.Sub(r.StartedAt).Round(time.Second)

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Source:*\n" + orNA(r.Source)},
				{Type: "mrkdwn", Text: "*Output:*\n" + orNA(r.Output)},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: fmt.Sprintf("*Candidates:*\n%d", r.Total)},
				{Type: "mrkdwn", Text: fmt.Sprintf("*Succeeded / Failed:*\n%d / %d", r.Succeeded, r.Failed)},
				{Type: "mrkdwn", Text: "*Duration:*\n" + duration.String()},
				{Type: "mrkdwn", Text: "*Run:*\n" + orNA(r.RunID)},
			},
		},
	}

	if len(r.FailedCandidates) > 0 {
		names := r.FailedCandidates
		more := 0
		if len(names) > maxListedFailures {
			more = len(names) - maxListedFailures
			names = names[:maxListedFailures]
		}
		text := "*Needs a re-run:*\n• " + strings.Join(names, "\n• ")
		if more > 0 {
			text += fmt.Sprintf("\n…and %d more", more)
		}
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: text},
		})
	}

	blocks = append(blocks, slackBlock{Type: "divider"})
	return slackPayload{Blocks: blocks}
}

func orNA(s string) string {
	if s == "" {
		return "n/a"
	}
	return s
}
