package rag

import (
	"context"
	"fmt"
	"strings"
)

// ColumnInfo is a column name with its comment
type ColumnInfo struct {
	Name    string
	Comment string
}

// TableInfo is a stored table with the columns selected by a lookup
type TableInfo struct {
	ID        string
	TableName string
	Comment   string
	Columns   []ColumnInfo
}

// LookupTables finds stored tables whose name contains name and lists
// their columns, keeping only those whose name contains column when it is
// set. Both filters ignore case and spaces.
func LookupTables(ctx context.Context, s Store, name, column string) ([]TableInfo, error) {
	name = strings.ReplaceAll(name, " ", "")
	column = strings.ToLower(strings.ReplaceAll(column, " ", ""))
	if name == "" {
		return []TableInfo{}, nil
	}

	docs, err := s.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up %q: %w", name, err)
	}

	tables := make([]TableInfo, 0, len(docs))
	for _, doc := range docs {
		info := TableInfo{ID: doc.ID, TableName: doc.TableName, Comment: doc.TableComment, Columns: []ColumnInfo{}}
		for i, col := range doc.Columns {
			if column != "" && !strings.Contains(strings.ToLower(col), column) {
				continue
			}
			comment := ""
			if i < len(doc.ColumnComments) {
				comment = doc.ColumnComments[i]
			}
			info.Columns = append(info.Columns, ColumnInfo{Name: col, Comment: comment})
		}
		tables = append(tables, info)
	}
	return tables, nil
}
