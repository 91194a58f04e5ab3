package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tordrt/schemarag/internal/rag"
)

var tablesColumn string

var tablesCmd = &cobra.Command{
	Use:   "tables <name>",
	Short: "Look up stored tables by name",
	Long: `Tables lists stored tables whose name contains the given text, with their
columns and comments. --column keeps only the columns whose name contains it.`,
	Args: cobra.ExactArgs(1),
	RunE: runTables,
}

func init() {
	tablesCmd.Flags().StringVarP(&tablesColumn, "column", "c", "", "Only show columns whose name contains this")
}

func runTables(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(st)

	found, err := rag.LookupTables(ctx, st, args[0], tablesColumn)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		warn("no stored table matches %q", args[0])
		return nil
	}

	printTables(cmd.OutOrStdout(), found)
	return nil
}

func printTables(w io.Writer, found []rag.TableInfo) {
	for i, t := range found {
		if i > 0 {
			fmt.Fprintln(w)
		}
		header := color.New(color.Bold).Sprint(t.ID)
		if t.Comment != "" {
			header += " - " + t.Comment
		}
		fmt.Fprintln(w, header)
		for _, col := range t.Columns {
			if col.Comment != "" {
				fmt.Fprintf(w, "  %s: %s\n", color.CyanString(col.Name), col.Comment)
			} else {
				fmt.Fprintf(w, "  %s\n", color.CyanString(col.Name))
			}
		}
	}
}
