package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/execsum/internal/model"
)

// Ensure Summarizer implements model.Generator.
var _ model.Generator = (*Summarizer)(nil)

// NotInitializedMarker is the result text when the model client could not be created.
const NotInitializedMarker = model.ErrorMarkerPrefix + "AI model not initialized."

// Summarizer is the model client used by the batch orchestrator. It converts
// every provider failure into an error Result so one bad row never stops a run.
type Summarizer struct {
	provider LLMProvider
	initErr  error
	timeout  time.Duration
	logger   *slog.Logger
}

// NewSummarizer wraps provider. timeout bounds each call; zero means no limit.
func NewSummarizer(provider LLMProvider, timeout time.Duration, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		provider: provider,
		timeout:  timeout,
		logger:   logger,
	}
}

// NewUnavailableSummarizer records a model initialisation failure. The error
// is logged here, once; every later Generate call short-circuits to
// NotInitializedMarker.
func NewUnavailableSummarizer(err error, logger *slog.Logger) *Summarizer {
	logger.Error("failed to initialise AI model", "error", err)
	return &Summarizer{initErr: err, logger: logger}
}

// Err returns the initialisation error, if any.
func (s *Summarizer) Err() error {
	return s.initErr
}

// Generate sends prompt to the provider and returns the trimmed response.
func (s *Summarizer) Generate(ctx context.Context, prompt string) model.Result {
	if s.initErr != nil || s.provider == nil {
		return model.Result{Err: NotInitializedMarker}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.provider.Complete(ctx, prompt)
	if err != nil {
		s.logger.Warn("summary generation failed", "error", err)
		return model.Result{Err: fmt.Sprintf("%sAn error occurred while generating the summary: %v", model.ErrorMarkerPrefix, err)}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return model.Result{Err: model.ErrorMarkerPrefix + "the model returned an empty summary."}
	}
	return model.Result{Text: text}
}
