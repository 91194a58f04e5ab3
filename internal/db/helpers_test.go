package db

import (
	"testing"

	"github.com/tordrt/schemarag/internal/schema"
)

// verifyTablesExist checks that all expected tables are present in the schema
func verifyTablesExist(t *testing.T, s *schema.Schema, expectedTables []string) {
	t.Helper()

	if len(s.Tables) != len(expectedTables) {
		t.Errorf("Expected %d tables, got %d", len(expectedTables), len(s.Tables))
	}

	tableMap := make(map[string]bool)
	for _, table := range s.Tables {
		tableMap[table.Name] = true
	}

	for _, tableName := range expectedTables {
		if !tableMap[tableName] {
			t.Errorf("Expected table %s not found in schema", tableName)
		}
	}
}

// verifyColumns checks that expected columns exist in a table, in order
func verifyColumns(t *testing.T, table *schema.Table, expectedColumns []string) {
	t.Helper()

	if len(table.Columns) != len(expectedColumns) {
		t.Fatalf("Expected %d columns in %s, got %d", len(expectedColumns), table.Name, len(table.Columns))
	}

	for i, colName := range expectedColumns {
		if table.Columns[i].Name != colName {
			t.Errorf("Column %d of %s: expected %s, got %s", i, table.Name, colName, table.Columns[i].Name)
		}
	}
}

// verifyPrimaryKey checks that a table has the expected primary key
func verifyPrimaryKey(t *testing.T, table *schema.Table, expectedPK []string) {
	t.Helper()

	if len(table.PrimaryKey) != len(expectedPK) {
		t.Errorf("Expected primary key %v, got %v", expectedPK, table.PrimaryKey)
		return
	}

	for i, pk := range expectedPK {
		if table.PrimaryKey[i] != pk {
			t.Errorf("Expected primary key %v, got %v", expectedPK, table.PrimaryKey)
			return
		}
	}
}

// verifyIndex checks that a table carries an index with the given columns
func verifyIndex(t *testing.T, table *schema.Table, indexName string, expectedColumns []string) {
	t.Helper()

	for _, idx := range table.Indexes {
		if idx.Name != indexName {
			continue
		}
		if len(idx.Columns) != len(expectedColumns) {
			t.Errorf("Index %s: expected columns %v, got %v", indexName, expectedColumns, idx.Columns)
			return
		}
		for i := range expectedColumns {
			if idx.Columns[i] != expectedColumns[i] {
				t.Errorf("Index %s: expected columns %v, got %v", indexName, expectedColumns, idx.Columns)
				return
			}
		}
		return
	}

	t.Errorf("Index %s not found on %s", indexName, table.Name)
}

// findTable finds a table by name in the schema
func findTable(s *schema.Schema, name string) *schema.Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
