package ai

import "context"

// LLMProvider sends a prompt to a text-generation service and returns the raw text response.
type LLMProvider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// GenerationOptions are the tunables passed with every request.
type GenerationOptions struct {
	Temperature     float32
	CandidateCount  int32
	MaxOutputTokens int32             // zero leaves the service default
	Safety          map[string]string // harm category -> block threshold (Gemini only)
}
