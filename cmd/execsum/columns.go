package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/amishk599/execsum/internal/columns"
	"github.com/amishk599/execsum/internal/table"
)

var columnsCmd = &cobra.Command{
	Use:   "columns <file>",
	Short: "List a sheet's columns and the default selection",
	Long:  "Prints every column of the input file, marking the default name column and competency columns.",
	Args:  cobra.ExactArgs(1),
	RunE:  runColumns,
}

func init() {
	rootCmd.AddCommand(columnsCmd)
}

func runColumns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	tbl, err := table.LoadFile(args[0])
	if err != nil {
		return err
	}

	state := columns.NewState(args[0], tbl)
	sel := state.Defaults(columns.NewResolver(cfg.Batch.NameColumn, cfg.Batch.ExpectedCompetencies))

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %d rows, %d columns\n\n", args[0], tbl.Len(), len(tbl.Columns()))
	for _, col := range tbl.Columns() {
		mark := "      "
		switch {
		case col == sel.NameColumn:
			mark = "[name]"
		case slices.Contains(sel.Competencies, col):
			mark = fmt.Sprintf("[%d]   ", slices.Index(sel.Competencies, col)+1)
		}
		fmt.Fprintf(w, "  %s %s\n", mark, col)
	}
	if len(sel.Competencies) == 0 {
		fmt.Fprintln(w, "\nNo expected competency columns found; pass --competency to generate.")
	}
	return nil
}
