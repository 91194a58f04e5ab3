package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tordrt/schemarag/internal/db"
)

var (
	dbURL            string
	mysqlURL         string
	sqlitePath       string
	schemaName       string
	tables           string
	excludeTables    string
	introspectOutput outputFlags
)

var introspectCmd = &cobra.Command{
	Use:   "introspect",
	Short: "Extract table descriptors from a live database",
	Long: `Introspect reads tables, columns, comments, primary keys and indexes from a
PostgreSQL, MySQL or SQLite database and writes them in the same formats as parse.`,
	Args: cobra.NoArgs,
	RunE: runIntrospect,
}

func init() {
	introspectCmd.Flags().StringVar(&dbURL, "db-url", "", "Database URL (postgres://, mysql:// or sqlite://)")
	introspectCmd.Flags().StringVar(&mysqlURL, "mysql-url", "", "MySQL connection string")
	introspectCmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file path")
	introspectCmd.Flags().StringVarP(&schemaName, "schema", "s", "", "Database schema name (default: public for PostgreSQL, the DSN database for MySQL)")
	introspectCmd.Flags().StringVarP(&tables, "tables", "t", "", "Specific tables (comma-separated, optional)")
	introspectCmd.Flags().StringVarP(&excludeTables, "exclude", "x", "", "Tables to leave out (comma-separated)")
	introspectOutput.register(introspectCmd)
}

// databaseURL resolves the connection flags to a single database URL
func databaseURL() (string, error) {
	var urls []string
	if dbURL != "" {
		urls = append(urls, dbURL)
	}
	if mysqlURL != "" {
		urls = append(urls, db.DriverMySQL+"://"+mysqlURL)
	}
	if sqlitePath != "" {
		urls = append(urls, db.DriverSQLite+"://"+sqlitePath)
	}

	switch len(urls) {
	case 0:
		return "", fmt.Errorf("one of --db-url, --mysql-url, or --sqlite must be specified")
	case 1:
		return urls[0], nil
	default:
		return "", fmt.Errorf("only one of --db-url, --mysql-url, or --sqlite can be specified")
	}
}

func runIntrospect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	url, err := databaseURL()
	if err != nil {
		return err
	}

	conn, err := db.Connect(ctx, url, schemaName)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(ctx); err != nil {
			warn("failed to close database connection: %v", err)
		}
	}()

	s, err := conn.Extractor.ExtractSchema(ctx, splitList(tables))
	if err != nil {
		return fmt.Errorf("failed to extract schema: %w", err)
	}
	db.FilterTables(s, splitList(excludeTables))
	logger.Info("extracted schema", zap.Int("tables", len(s.Tables)))

	return introspectOutput.write(s)
}
