package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/execsum/internal/notifier"
)

var sampleFailures int

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Run report notifications",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a sample run report",
	Long: "Builds a run report for a fictional cohort and delivers it through the notifier\n" +
		"selected by notification.type, so a Slack webhook can be checked before a real run.",
	Args: cobra.NoArgs,
	RunE: runNotifyTest,
}

func init() {
	notifyTestCmd.Flags().IntVar(&sampleFailures, "failures", 1, "failed candidates to include in the sample report")
	notifyCmd.AddCommand(notifyTestCmd)
	rootCmd.AddCommand(notifyCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	if sampleFailures < 0 {
		return fmt.Errorf("--failures must not be negative")
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	logger := setupLogger(debug)

	report := notifier.SampleReport(sampleFailures)
	n := setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)
	if err := n.Notify(report); err != nil {
		return fmt.Errorf("deliver sample report via %s notifier: %w", cfg.Notification.Type, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sample report %s delivered via %s notifier\n", report.RunID, cfg.Notification.Type)
	return nil
}
