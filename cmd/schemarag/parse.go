package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tordrt/schemarag/internal/db"
	"github.com/tordrt/schemarag/internal/ddl"
)

var (
	parseOutput  outputFlags
	parseExclude string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.sql|dir>...",
	Short: "Parse CREATE TABLE scripts into table descriptors",
	Long: `Parse reads DDL files, or every .sql file in the given directories, and
writes the tables found with their columns, comments, primary key and indexes.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseOutput.register(parseCmd)
	parseCmd.Flags().StringVarP(&parseExclude, "exclude", "x", "", "Tables to leave out (comma-separated)")
}

func runParse(cmd *cobra.Command, args []string) error {
	sources, err := ddl.LoadSources(args...)
	if err != nil {
		return err
	}
	logger.Debug("loaded DDL documents", zap.Int("documents", len(sources)))

	s, err := ddl.Parse(sources)
	switch {
	case errors.Is(err, ddl.ErrNoInput):
		return fmt.Errorf("no .sql files found in %v", args)
	case err != nil:
		return err
	}

	db.FilterTables(s, splitList(parseExclude))
	logger.Info("parsed schema", zap.Int("documents", len(sources)), zap.Int("tables", len(s.Tables)))

	return parseOutput.write(s)
}
