package ai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/amishk599/execsum/internal/model"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-pro"

var harmCategories = map[string]genai.HarmCategory{
	"HARASSMENT":        genai.HarmCategoryHarassment,
	"HATE_SPEECH":       genai.HarmCategoryHateSpeech,
	"SEXUALLY_EXPLICIT": genai.HarmCategorySexuallyExplicit,
	"DANGEROUS_CONTENT": genai.HarmCategoryDangerousContent,
}

var harmThresholds = map[string]genai.HarmBlockThreshold{
	"BLOCK_NONE":             genai.HarmBlockThresholdBlockNone,
	"BLOCK_ONLY_HIGH":        genai.HarmBlockThresholdBlockOnlyHigh,
	"BLOCK_MEDIUM_AND_ABOVE": genai.HarmBlockThresholdBlockMediumAndAbove,
	"BLOCK_LOW_AND_ABOVE":    genai.HarmBlockThresholdBlockLowAndAbove,
	"OFF":                    genai.HarmBlockThresholdOff,
}

// DefaultSafety disables blocking for every harm category.
func DefaultSafety() map[string]string {
	out := make(map[string]string, len(harmCategories))
	for c := range harmCategories {
		out[c] = "BLOCK_NONE"
	}
	return out
}

// SafetySettings converts a category -> threshold map into Gemini settings,
// sorted by category. Categories may carry the HARM_CATEGORY_ prefix.
func SafetySettings(in map[string]string) ([]*genai.SafetySetting, error) {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	settings := make([]*genai.SafetySetting, 0, len(in))
	for _, k := range keys {
		name := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(k)), "HARM_CATEGORY_")
		category, ok := harmCategories[name]
		if !ok {
			return nil, fmt.Errorf("unknown harm category %q", k)
		}
		threshold, ok := harmThresholds[strings.ToUpper(strings.TrimSpace(in[k]))]
		if !ok {
			return nil, fmt.Errorf("unknown block threshold %q for %s", in[k], k)
		}
		settings = append(settings, &genai.SafetySetting{Category: category, Threshold: threshold})
	}
	return settings, nil
}

// GeminiProvider calls the Gemini API through the genai SDK.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
	config    *genai.GenerateContentConfig
}

// NewGeminiProvider creates the genai client. A missing key, bad safety
// settings or client construction failure is a *model.ConfigError.
// baseURL overrides the API endpoint and may be empty.
func NewGeminiProvider(ctx context.Context, apiKey, modelName, baseURL string, opts GenerationOptions) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, &model.ConfigError{Err: fmt.Errorf("gemini: %w", model.ErrMissingCredential)}
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	safety, err := SafetySettings(opts.Safety)
	if err != nil {
		return nil, &model.ConfigError{Err: fmt.Errorf("gemini safety settings: %w", err)}
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, &model.ConfigError{Err: fmt.Errorf("create gemini client: %w", err)}
	}

	gc := &genai.GenerateContentConfig{
		Temperature:    genai.Ptr(opts.Temperature),
		CandidateCount: opts.CandidateCount,
		SafetySettings: safety,
	}
	if opts.MaxOutputTokens > 0 {
		gc.MaxOutputTokens = opts.MaxOutputTokens
	}

	return &GeminiProvider{
		client:    client,
		modelName: modelName,
		config:    gc,
	}, nil
}

// Complete sends prompt as a single user turn and returns the response text.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.modelName, genai.Text(prompt), p.config)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return responseText(resp)
}

// responseText extracts the text of the first candidate, reporting blocked
// prompts and empty candidates as errors.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini returned no response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned no text (finish reason %s)", resp.Candidates[0].FinishReason)
	}
	return text, nil
}
