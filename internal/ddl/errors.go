package ddl

import "errors"

var (
	// ErrNoInput is returned when there is no document to parse.
	ErrNoInput = errors.New("no DDL documents to parse")

	// ErrNoTables is returned when documents with content were parsed but
	// none of them contains a CREATE TABLE statement.
	ErrNoTables = errors.New("no CREATE TABLE statements found")
)
