package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/execsum/internal/batch"
	"github.com/amishk599/execsum/internal/columns"
	"github.com/amishk599/execsum/internal/config"
	"github.com/amishk599/execsum/internal/filter"
	"github.com/amishk599/execsum/internal/model"
	"github.com/amishk599/execsum/internal/ratelimit"
	"github.com/amishk599/execsum/internal/table"
	"github.com/amishk599/execsum/internal/tui"
)

var genOpts struct {
	nameColumn   string
	competencies []string
	candidates   []string
	output       string
	yes          bool
	onlyFailed   bool
	dryRun       bool
	noBrowse     bool
}

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Generate an executive summary for every candidate in a sheet",
	Long: "Loads an .xlsx/.csv/.tsv file, confirms the name and competency columns,\n" +
		"generates one summary per row in order and writes the table with an\n" +
		"\"Executive Summary\" column as a UTF-8 (BOM) CSV.",
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&genOpts.nameColumn, "name-column", "", "column holding the candidate name")
	f.StringArrayVar(&genOpts.competencies, "competency", nil, "competency column, repeat for several (order is kept)")
	f.StringSliceVar(&genOpts.candidates, "candidate", nil, "only generate for candidates whose name contains one of these")
	f.StringVarP(&genOpts.output, "output", "o", "", "output CSV path (default: output.path from config)")
	f.BoolVarP(&genOpts.yes, "yes", "y", false, "accept the default column selection without the picker")
	f.BoolVar(&genOpts.onlyFailed, "only-failed", false, "regenerate only rows whose summary is missing or an error")
	f.BoolVar(&genOpts.dryRun, "dry-run", false, "compose prompts but do not call the model")
	f.BoolVar(&genOpts.noBrowse, "no-browse", false, "skip the results browser after the run")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	path := args[0]
	interactive := isInteractive() && !genOpts.yes && genOpts.nameColumn == "" && len(genOpts.competencies) == 0

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	logger := setupLogger(debug)
	runLogger := logger
	if interactive {
		runLogger = discardLogger()
	}

	composer, err := loadComposer(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	generator, err := setupGenerator(ctx, cfg, genOpts.dryRun, logger)
	if err != nil {
		return err
	}

	tbl, err := table.LoadFile(path)
	if err != nil {
		return err
	}
	logger.Info("input loaded", "file", path, "rows", tbl.Len(), "columns", len(tbl.Columns()))

	state, err := confirmColumns(columns.NewState(path, tbl), cfg, interactive)
	if err != nil {
		return err
	}
	if !state.Confirmed {
		logger.Info("column selection cancelled, nothing generated")
		return nil
	}

	opts := batch.Options{
		Source:       filepath.Base(path),
		ResultColumn: cfg.Batch.ResultColumn,
		Filter:       rowFilter(cfg, state.Selection),
	}

	delay := cfg.Batch.Delay
	if genOpts.dryRun {
		delay = 0
	}
	runner := batch.NewRunner(composer, generator, ratelimit.NewPacer(delay), runLogger)

	var out *batch.Output
	if interactive {
		out, err = tui.RunProgress(ctx, opts.Source, func(ctx context.Context, onProgress func(batch.Progress)) (*batch.Output, error) {
			opts.OnProgress = onProgress
			return runner.Run(ctx, state, opts)
		})
	} else {
		opts.OnProgress = logProgress(logger)
		out, err = runner.Run(ctx, state, opts)
	}
	if err != nil {
		return err
	}

	outPath := genOpts.output
	if outPath == "" {
		outPath = cfg.Output.Path
	}
	if err := table.WriteCSVFile(outPath, out.Table); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	out.Report.Output = outPath

	n := setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)
	if err := n.Notify(out.Report); err != nil {
		logger.Warn("run notification failed", "error", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d summaries to %s (%d succeeded, %d failed, %d kept)\n",
		out.Report.Total, outPath, out.Report.Succeeded, out.Report.Failed, out.Report.Kept)

	if interactive && !genOpts.noBrowse && out.Report.Total > 0 {
		if err := tui.RunBrowser(tui.Entries(out, state.Selection.NameColumn)); err != nil {
			logger.Warn("results browser failed", "error", err)
		}
	}
	return nil
}

// confirmColumns resolves the selection from flags, the picker or the
// defaults. The returned state is unconfirmed only if the picker was quit.
func confirmColumns(state columns.State, cfg *config.Config, interactive bool) (columns.State, error) {
	resolver := columns.NewResolver(cfg.Batch.NameColumn, cfg.Batch.ExpectedCompetencies)
	sel := state.Defaults(resolver)
	if genOpts.nameColumn != "" {
		sel.NameColumn = genOpts.nameColumn
	}
	if len(genOpts.competencies) > 0 {
		sel.Competencies = genOpts.competencies
	}

	if interactive {
		picked, ok, err := tui.RunColumnPicker(state.Table.Columns(), sel)
		if err != nil {
			return state, err
		}
		if !ok {
			return state, nil
		}
		sel = picked
	}
	return state.Confirm(resolver, sel)
}

func rowFilter(cfg *config.Config, sel model.Selection) filter.RowFilter {
	var filters filter.All
	if genOpts.onlyFailed {
		filters = append(filters, filter.NewFailedOnly(cfg.Batch.ResultColumn))
	}
	if len(genOpts.candidates) > 0 {
		filters = append(filters, filter.NewNameFilter(sel.NameColumn, genOpts.candidates))
	}
	if len(filters) == 0 {
		return nil
	}
	return filters
}

func logProgress(logger *slog.Logger) func(batch.Progress) {
	return func(p batch.Progress) {
		logger.Info(p.Status, "progress", fmt.Sprintf("%.0f%%", p.Fraction()*100))
	}
}
