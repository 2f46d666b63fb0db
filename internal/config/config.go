package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/execsum/internal/ai"
	"github.com/amishk599/execsum/internal/batch"
	"github.com/amishk599/execsum/internal/columns"
	"github.com/amishk599/execsum/internal/model"
)

// EnvPath names the environment variable that points at a config file.
const EnvPath = "EXECSUM_CONFIG"

// DefaultPath is tried when neither the flag nor EnvPath is set.
const DefaultPath = "config.yaml"

// DefaultOutputPath is where generated summaries are written.
const DefaultOutputPath = "Executive_Summaries_Output.csv"

// Config is the root configuration for execsum.
type Config struct {
	AI           AIConfig
	Batch        BatchConfig
	Prompt       PromptConfig
	Output       OutputConfig
	Notification NotificationConfig
}

// AIConfig selects and tunes the model provider.
type AIConfig struct {
	Provider       string // "gemini" or "openai"
	Model          string
	BaseURL        string // empty uses the provider default
	APIKeyEnv      string // environment variable holding the key
	APIKey         string // literal key, wins over APIKeyEnv
	Temperature    float32
	CandidateCount int32
	Timeout        time.Duration // per-candidate request timeout
	Safety         map[string]string
}

// ResolveAPIKey returns the literal key when set, otherwise the value of APIKeyEnv.
func (a AIConfig) ResolveAPIKey() string {
	if a.APIKey != "" {
		return a.APIKey
	}
	if a.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(a.APIKeyEnv))
}

// BatchConfig controls the orchestrator.
type BatchConfig struct {
	Delay                time.Duration // pause between generated rows
	NameColumn           string
	ExpectedCompetencies []string
	ResultColumn         string
}

// PromptConfig locates the prompt template.
type PromptConfig struct {
	TemplatePath string `yaml:"template_path"` // empty uses the embedded template
}

// OutputConfig controls where results are written.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Provider:       "gemini",
			Model:          ai.DefaultGeminiModel,
			APIKeyEnv:      "GEMINI_API_KEY",
			Temperature:    0.7,
			CandidateCount: 1,
			Timeout:        2 * time.Minute,
			Safety:         ai.DefaultSafety(),
		},
		Batch: BatchConfig{
			Delay:                time.Second,
			NameColumn:           columns.DefaultNameColumn,
			ExpectedCompetencies: append([]string(nil), columns.DefaultCompetencies...),
			ResultColumn:         batch.DefaultResultColumn,
		},
		Output:       OutputConfig{Path: DefaultOutputPath},
		Notification: NotificationConfig{Type: "log"},
	}
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	AI           rawAIConfig        `yaml:"ai"`
	Batch        rawBatchConfig     `yaml:"batch"`
	Prompt       PromptConfig       `yaml:"prompt"`
	Output       OutputConfig       `yaml:"output"`
	Notification NotificationConfig `yaml:"notification"`
}

type rawAIConfig struct {
	Provider       string            `yaml:"provider"`
	Model          string            `yaml:"model"`
	BaseURL        string            `yaml:"base_url"`
	APIKeyEnv      string            `yaml:"api_key_env"`
	APIKey         string            `yaml:"api_key"`
	Temperature    *float32          `yaml:"temperature"`
	CandidateCount *int32            `yaml:"candidate_count"`
	Timeout        string            `yaml:"timeout"`
	Safety         map[string]string `yaml:"safety"`
}

type rawBatchConfig struct {
	Delay                string   `yaml:"delay"`
	NameColumn           string   `yaml:"name_column"`
	ExpectedCompetencies []string `yaml:"expected_competencies"`
	ResultColumn         string   `yaml:"result_column"`
}

// Resolve picks the config file: flag, then EnvPath, then DefaultPath.
// It returns "" when only the default was tried and it does not exist.
func Resolve(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	if _, err := os.Stat(DefaultPath); err == nil {
		return DefaultPath
	}
	return ""
}

// Load reads and parses the YAML config file at path over the defaults,
// validates it, and returns Config. An empty path returns the defaults.
// Every failure is a *model.ConfigError.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, wrap(validate(cfg))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrap(fmt.Errorf("read config: %w", err))
	}
	return Parse(data)
}

// Parse decodes YAML config bytes over the defaults.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, wrap(fmt.Errorf("parse config: %w", err))
	}

	cfg := Default()
	if err := raw.apply(cfg); err != nil {
		return nil, wrap(err)
	}
	if err := validate(cfg); err != nil {
		return nil, wrap(err)
	}
	return cfg, nil
}

func (raw rawConfig) apply(cfg *Config) error {
	a := raw.AI
	if a.Provider != "" {
		cfg.AI.Provider = strings.ToLower(strings.TrimSpace(a.Provider))
	}
	if cfg.AI.Provider == "openai" {
		cfg.AI.Model = ai.DefaultOpenAIModel
		cfg.AI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if a.Model != "" {
		cfg.AI.Model = a.Model
	}
	cfg.AI.BaseURL = a.BaseURL
	if a.APIKeyEnv != "" {
		cfg.AI.APIKeyEnv = a.APIKeyEnv
	}
	cfg.AI.APIKey = strings.TrimSpace(a.APIKey)
	if a.Temperature != nil {
		cfg.AI.Temperature = *a.Temperature
	}
	if a.CandidateCount != nil {
		cfg.AI.CandidateCount = *a.CandidateCount
	}
	if a.Timeout != "" {
		d, err := time.ParseDuration(a.Timeout)
		if err != nil {
			return fmt.Errorf("parse ai.timeout %q: %w", a.Timeout, err)
		}
		cfg.AI.Timeout = d
	}
	if len(a.Safety) > 0 {
		cfg.AI.Safety = a.Safety
	}

	b := raw.Batch
	if b.Delay != "" {
		d, err := time.ParseDuration(b.Delay)
		if err != nil {
			return fmt.Errorf("parse batch.delay %q: %w", b.Delay, err)
		}
		cfg.Batch.Delay = d
	}
	if b.NameColumn != "" {
		cfg.Batch.NameColumn = b.NameColumn
	}
	if len(b.ExpectedCompetencies) > 0 {
		cfg.Batch.ExpectedCompetencies = b.ExpectedCompetencies
	}
	if b.ResultColumn != "" {
		cfg.Batch.ResultColumn = b.ResultColumn
	}

	cfg.Prompt = raw.Prompt
	if raw.Output.Path != "" {
		cfg.Output.Path = raw.Output.Path
	}
	if raw.Notification.Type != "" {
		cfg.Notification = raw.Notification
	}
	return nil
}

func validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("ai.provider must be \"gemini\" or \"openai\", got %q", cfg.AI.Provider)
	}
	if cfg.AI.Model == "" {
		return errors.New("ai.model is required")
	}
	if cfg.AI.Temperature < 0 || cfg.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got %v", cfg.AI.Temperature)
	}
	if cfg.AI.CandidateCount != 1 {
		return fmt.Errorf("ai.candidate_count must be 1, got %d", cfg.AI.CandidateCount)
	}
	if cfg.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive, got %v", cfg.AI.Timeout)
	}
	if cfg.AI.Provider == "gemini" {
		if _, err := ai.SafetySettings(cfg.AI.Safety); err != nil {
			return fmt.Errorf("ai.safety: %w", err)
		}
	}

	if cfg.Batch.Delay < 0 {
		return fmt.Errorf("batch.delay must not be negative, got %v", cfg.Batch.Delay)
	}

	switch cfg.Notification.Type {
	case "log":
	case "slack":
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	return nil
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return &model.ConfigError{Err: err}
}
