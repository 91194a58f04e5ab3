package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db *sql.DB
}

// NewSQLiteClient opens an existing database file read-only
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	return openSQLite(ctx, path, url.Values{"mode": {"ro"}})
}

// NewWritableSQLiteClient opens or creates a database file in WAL mode
func NewWritableSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	return openSQLite(ctx, path, url.Values{
		"mode":          {"rwc"},
		"_journal_mode": {"WAL"},
		"_busy_timeout": {"5000"},
	})
}

func openSQLite(ctx context.Context, path string, params url.Values) (*SQLiteClient, error) {
	dsn := "file:" + path
	if len(params) > 0 {
		dsn += "?" + params.Encode()
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{db: db}, nil
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}
