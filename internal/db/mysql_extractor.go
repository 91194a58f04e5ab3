package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/tordrt/schemarag/internal/schema"
)

// MySQLExtractor handles schema extraction from MySQL
type MySQLExtractor struct {
	client     *MySQLClient
	schemaName string
	qb         squirrel.StatementBuilderType
}

// NewMySQLExtractor creates a new MySQL schema extractor
func NewMySQLExtractor(client *MySQLClient, schemaName string) *MySQLExtractor {
	return &MySQLExtractor{
		client:     client,
		schemaName: schemaName,
		qb:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// ExtractSchema extracts the complete schema for specified tables
// If tables is empty, extracts all tables in the schema
func (e *MySQLExtractor) ExtractSchema(ctx context.Context, tables []string) (*schema.Schema, error) {
	return extractAll(ctx, tables, e.listTables, e.extractTable)
}

func (e *MySQLExtractor) query(ctx context.Context, b squirrel.Sqlizer) (*sql.Rows, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	return e.client.GetDB().QueryContext(ctx, query, args...)
}

func (e *MySQLExtractor) listTables(ctx context.Context) ([]string, error) {
	rows, err := e.query(ctx, e.qb.
		Select("table_name").
		From("information_schema.tables").
		Where(squirrel.Eq{"table_schema": e.schemaName, "table_type": "BASE TABLE"}).
		OrderBy("table_name"))
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

func (e *MySQLExtractor) extractTable(ctx context.Context, tableName string) (*schema.Table, error) {
	table := &schema.Table{Schema: schema.StringPtr(e.schemaName), Name: tableName}

	var err error
	if table.Comment, err = e.extractTableComment(ctx, tableName); err != nil {
		return nil, fmt.Errorf("failed to extract table comment: %w", err)
	}
	if table.Columns, err = e.extractColumns(ctx, tableName); err != nil {
		return nil, fmt.Errorf("failed to extract columns: %w", err)
	}
	if table.PrimaryKey, err = e.extractPrimaryKey(ctx, tableName); err != nil {
		return nil, fmt.Errorf("failed to extract primary key: %w", err)
	}
	if table.Indexes, err = e.extractIndexes(ctx, tableName); err != nil {
		return nil, fmt.Errorf("failed to extract indexes: %w", err)
	}
	return table, nil
}

// extractTableComment reads TABLE_COMMENT; MySQL stores "" for none
func (e *MySQLExtractor) extractTableComment(ctx context.Context, tableName string) (*string, error) {
	rows, err := e.query(ctx, e.qb.
		Select("table_comment").
		From("information_schema.tables").
		Where(squirrel.Eq{"table_schema": e.schemaName, "table_name": tableName}))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comment sql.NullString
	if rows.Next() {
		if err := rows.Scan(&comment); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !comment.Valid {
		return nil, nil
	}
	return optionalComment(&comment.String), nil
}

// extractColumns reads columns in ordinal order. column_type keeps the
// length and UNSIGNED, unlike data_type.
func (e *MySQLExtractor) extractColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	rows, err := e.query(ctx, e.qb.
		Select("column_name", "column_type", "is_nullable", "column_default", "column_comment").
		From("information_schema.columns").
		Where(squirrel.Eq{"table_schema": e.schemaName, "table_name": tableName}).
		OrderBy("ordinal_position"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var nullable string
		var defaultVal sql.NullString
		var comment sql.NullString

		if err := rows.Scan(&col.Name, &col.Type, &nullable, &defaultVal, &comment); err != nil {
			return nil, err
		}

		col.Nullable = (nullable == "YES")
		if defaultVal.Valid {
			col.Default = &defaultVal.String
		}
		if comment.Valid {
			col.Comment = optionalComment(&comment.String)
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

// extractPrimaryKey reads primary key columns in key order
func (e *MySQLExtractor) extractPrimaryKey(ctx context.Context, tableName string) ([]string, error) {
	rows, err := e.query(ctx, e.qb.
		Select("column_name").
		From("information_schema.key_column_usage").
		Where(squirrel.Eq{
			"table_schema":    e.schemaName,
			"table_name":      tableName,
			"constraint_name": "PRIMARY",
		}).
		OrderBy("ordinal_position"))
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

// extractIndexes extracts secondary index information
func (e *MySQLExtractor) extractIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	rows, err := e.query(ctx, e.qb.
		Select("index_name", "GROUP_CONCAT(column_name ORDER BY seq_in_index) AS column_names").
		From("information_schema.statistics").
		Where(squirrel.Eq{"table_schema": e.schemaName, "table_name": tableName}).
		Where(squirrel.NotEq{"index_name": "PRIMARY"}).
		GroupBy("index_name").
		OrderBy("index_name"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var idx schema.Index
		var columnNames string

		if err := rows.Scan(&idx.Name, &columnNames); err != nil {
			return nil, err
		}

		idx.Columns = strings.Split(columnNames, ",")
		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}
