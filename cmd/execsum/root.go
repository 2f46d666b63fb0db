package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/amishk599/execsum/internal/ai"
	"github.com/amishk599/execsum/internal/config"
	"github.com/amishk599/execsum/internal/model"
	"github.com/amishk599/execsum/internal/notifier"
	"github.com/amishk599/execsum/internal/prompt"
)

var (
	cfgPath      string
	templatePath string
	debug        bool
)

var rootCmd = &cobra.Command{
	Use:   "execsum",
	Short: "Executive summaries from competency assessment sheets",
	Long: "execsum reads a spreadsheet of candidate competency scores, asks a generative model\n" +
		"for a narrative executive summary per candidate, and writes the table back out with\n" +
		"an \"Executive Summary\" column.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: "+config.EnvPath+" env var or ./"+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&templatePath, "template", "", "prompt template file (overrides prompt.template_path)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > EXECSUM_CONFIG env var > "./config.yaml" > built-in defaults
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(config.Resolve(path))
	if err != nil {
		return nil, err
	}
	if templatePath != "" {
		cfg.Prompt.TemplatePath = templatePath
	}
	return cfg, nil
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

// discardLogger is used while a TUI owns the terminal; any log output
// written under the TUI corrupts the display.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stdin.Fd())
}

func loadComposer(cfg *config.Config, logger *slog.Logger) (*prompt.Composer, error) {
	tmpl, err := prompt.Load(cfg.Prompt.TemplatePath)
	if err != nil {
		return nil, err
	}
	logger.Debug("prompt template loaded", "name", tmpl.Name, "version", tmpl.Version, "source", tmpl.Source)
	return prompt.NewComposer(tmpl), nil
}

func setupProvider(ctx context.Context, cfg *config.Config, dryRun bool, httpClient *http.Client) (ai.LLMProvider, error) {
	if dryRun {
		return ai.NewDryRunProvider(), nil
	}
	opts := ai.GenerationOptions{
		Temperature:    cfg.AI.Temperature,
		CandidateCount: cfg.AI.CandidateCount,
		Safety:         cfg.AI.Safety,
	}
	apiKey := cfg.AI.ResolveAPIKey()
	switch cfg.AI.Provider {
	case "openai":
		return ai.NewOpenAIProvider(cfg.AI.BaseURL, apiKey, cfg.AI.Model, opts, httpClient)
	default:
		return ai.NewGeminiProvider(ctx, apiKey, cfg.AI.Model, cfg.AI.BaseURL, opts)
	}
}

// setupGenerator builds the model client. A provider that cannot be created
// is a configuration error: it is logged once and returned so generate stops
// before any row is processed.
func setupGenerator(ctx context.Context, cfg *config.Config, dryRun bool, logger *slog.Logger) (*ai.Summarizer, error) {
	httpClient := &http.Client{Timeout: cfg.AI.Timeout + 10*time.Second}
	provider, err := setupProvider(ctx, cfg, dryRun, httpClient)
	if err != nil {
		logger.Error("failed to initialise AI model", "provider", cfg.AI.Provider, "error", err)
		return nil, err
	}
	logger.Info("model client ready", "provider", cfg.AI.Provider, "model", cfg.AI.Model, "dry_run", dryRun)
	return ai.NewSummarizer(provider, cfg.AI.Timeout, logger), nil
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// userMessage turns a fatal error into a one-line actionable message.
func userMessage(err error) string {
	var cfgErr *model.ConfigError
	var inErr *model.InputError
	switch {
	case errors.Is(err, model.ErrMissingCredential):
		return fmt.Sprintf("Error: %v. Export the variable named by ai.api_key_env (default GEMINI_API_KEY) or set ai.api_key, then run again.", err)
	case errors.Is(err, model.ErrEmptySelection):
		return "Error: no competency columns selected. Pass --competency at least once or pick one in the column picker."
	case errors.As(err, &cfgErr):
		return fmt.Sprintf("Error: %v. Fix the configuration and run again.", err)
	case errors.As(err, &inErr):
		return fmt.Sprintf("Error: %v. Fix the input file or column selection and run again.", err)
	default:
		return "Error: " + err.Error()
	}
}
