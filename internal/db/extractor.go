package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/tordrt/schemarag/internal/schema"
)

// Driver names accepted in database URLs
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// ErrTableNotFound is returned when a requested table is not in the catalog
var ErrTableNotFound = errors.New("table not found")

// SchemaExtractor reads table metadata from a live database
type SchemaExtractor interface {
	ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error)
}

// Connection pairs an extractor with the client it reads from
type Connection struct {
	Extractor SchemaExtractor
	close     func(ctx context.Context) error
}

// Close closes the underlying database connection
func (c *Connection) Close(ctx context.Context) error {
	if c.close == nil {
		return nil
	}
	return c.close(ctx)
}

// Connect opens a database by URL and returns an extractor for it.
// schemaName defaults to "public" for PostgreSQL and to the DSN database
// for MySQL. SQLite has no schema concept.
func Connect(ctx context.Context, databaseURL, schemaName string) (*Connection, error) {
	driver, connStr, err := ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	switch driver {
	case DriverPostgres:
		client, err := NewPostgresClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		if schemaName == "" {
			schemaName = "public"
		}
		return &Connection{
			Extractor: NewPostgresExtractor(client, schemaName),
			close:     client.Close,
		}, nil
	case DriverMySQL:
		client, err := NewMySQLClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
		}
		if schemaName == "" {
			schemaName, err = ParseDatabaseName(connStr)
			if err != nil {
				_ = client.Close()
				return nil, fmt.Errorf("failed to determine database name: %w (please specify a schema)", err)
			}
		}
		return &Connection{
			Extractor: NewMySQLExtractor(client, schemaName),
			close:     func(context.Context) error { return client.Close() },
		}, nil
	default:
		client, err := NewSQLiteClient(ctx, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
		}
		return &Connection{
			Extractor: NewSQLiteExtractor(client),
			close:     func(context.Context) error { return client.Close() },
		}, nil
	}
}

// ParseDatabaseURL detects the driver and returns the driver-specific
// connection string
func ParseDatabaseURL(url string) (driver, connectionStr string, err error) {
	if url == "" {
		return "", "", fmt.Errorf("database URL is required")
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres, url, nil
	}

	if strings.HasPrefix(url, "mysql://") {
		// Strip mysql:// prefix for the Go MySQL driver
		return DriverMySQL, strings.TrimPrefix(url, "mysql://"), nil
	}

	if strings.HasPrefix(url, "sqlite://") {
		// Strip sqlite:// prefix to get file path
		return DriverSQLite, strings.TrimPrefix(url, "sqlite://"), nil
	}

	return "", "", fmt.Errorf("invalid database URL scheme (must start with postgres://, mysql://, or sqlite://)")
}

// ParseDatabaseName returns the database named in a MySQL DSN
func ParseDatabaseName(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("no database name in DSN")
	}
	return cfg.DBName, nil
}

// FilterTables removes tables whose name matches any entry of exclude,
// ignoring case
func FilterTables(s *schema.Schema, exclude []string) {
	if len(exclude) == 0 {
		return
	}

	filtered := make([]schema.Table, 0, len(s.Tables))
	for _, table := range s.Tables {
		excluded := false
		for _, name := range exclude {
			if schema.EqualFold(table.Name, name) || schema.EqualFold(table.ID(), name) {
				excluded = true
				break
			}
		}
		if !excluded {
			filtered = append(filtered, table)
		}
	}
	s.Tables = filtered
}

// extractAll lists the catalog tables, narrows them to requested and
// extracts each one in order
func extractAll(
	ctx context.Context,
	requested []string,
	list func(ctx context.Context) ([]string, error),
	extract func(ctx context.Context, tableName string) (*schema.Table, error),
) (*schema.Schema, error) {
	available, err := list(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}
	names, err := selectTables(available, requested)
	if err != nil {
		return nil, err
	}

	tables := make([]schema.Table, 0, len(names))
	for _, name := range names {
		table, err := extract(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract table %s: %w", name, err)
		}
		tables = append(tables, *table)
	}
	return &schema.Schema{Tables: normalizeTables(tables)}, nil
}

// selectTables resolves requested names against the catalog, keeping the
// requested order. An exact match wins over one that differs only in case.
func selectTables(available, requested []string) ([]string, error) {
	if len(requested) == 0 {
		return available, nil
	}

	selected := make([]string, 0, len(requested))
	var missing []string
	for _, name := range requested {
		found := ""
		for _, candidate := range available {
			if candidate == name {
				found = candidate
				break
			}
			if found == "" && schema.EqualFold(candidate, name) {
				found = candidate
			}
		}
		if found == "" {
			missing = append(missing, name)
			continue
		}
		selected = append(selected, found)
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, strings.Join(missing, ", "))
	}
	return selected, nil
}

// scanStrings collects the first column of every row and closes rows
func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// normalizeTables fills nil slices so that JSON output carries [] rather
// than null
func normalizeTables(tables []schema.Table) []schema.Table {
	if tables == nil {
		return []schema.Table{}
	}
	for i := range tables {
		if tables[i].Columns == nil {
			tables[i].Columns = []schema.Column{}
		}
		if tables[i].PrimaryKey == nil {
			tables[i].PrimaryKey = []string{}
		}
		if tables[i].Indexes == nil {
			tables[i].Indexes = []schema.Index{}
		}
	}
	return tables
}

// optionalComment turns an empty catalog comment into nil
func optionalComment(comment *string) *string {
	if comment == nil || *comment == "" {
		return nil
	}
	return comment
}
