package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/execsum/internal/batch"
	"github.com/amishk599/execsum/internal/columns"
	"github.com/amishk599/execsum/internal/table"
)

var promptOpts struct {
	row          int
	nameColumn   string
	competencies []string
	check        bool
}

var promptCmd = &cobra.Command{
	Use:   "prompt [file]",
	Short: "Preview the prompt for one row, or check a template",
	Long: "Renders the exact prompt sent to the model for one row of the input file,\n" +
		"without calling the model. With --check, only validates the prompt template.",
	Args: cobra.MaximumNArgs(1),
	RunE: runPrompt,
}

func init() {
	f := promptCmd.Flags()
	f.IntVar(&promptOpts.row, "row", 1, "1-based data row to render")
	f.StringVar(&promptOpts.nameColumn, "name-column", "", "column holding the candidate name")
	f.StringArrayVar(&promptOpts.competencies, "competency", nil, "competency column, repeat for several")
	f.BoolVar(&promptOpts.check, "check", false, "validate the template and exit")
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	composer, err := loadComposer(cfg, setupLogger(debug))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if promptOpts.check {
		tmpl := composer.Template()
		fmt.Fprintf(w, "template %s (version %s) from %s is valid\n", tmpl.Name, tmpl.Version, tmpl.Source)
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("an input file is required unless --check is set")
	}

	tbl, err := table.LoadFile(args[0])
	if err != nil {
		return err
	}
	if promptOpts.row < 1 || promptOpts.row > tbl.Len() {
		return fmt.Errorf("--row must be between 1 and %d", tbl.Len())
	}

	resolver := columns.NewResolver(cfg.Batch.NameColumn, cfg.Batch.ExpectedCompetencies)
	state := columns.NewState(args[0], tbl)
	sel := state.Defaults(resolver)
	if promptOpts.nameColumn != "" {
		sel.NameColumn = promptOpts.nameColumn
	}
	if len(promptOpts.competencies) > 0 {
		sel.Competencies = promptOpts.competencies
	}
	state, err = state.Confirm(resolver, sel)
	if err != nil {
		return err
	}

	text, err := composer.Compose(batch.NewCandidate(tbl, state.Selection, promptOpts.row-1))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, text)
	return nil
}
