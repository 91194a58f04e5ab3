package ddl

import "github.com/tordrt/schemarag/internal/schema"

// IndexStatement is a CREATE INDEX statement before it is attached.
type IndexStatement struct {
	Name    string
	Schema  string
	Table   string
	Columns []string
}

// PrimaryKeyStatement is an ALTER TABLE ... ADD PRIMARY KEY statement.
type PrimaryKeyStatement struct {
	Schema  string
	Table   string
	Columns []string
}

// FindIndexes returns every CREATE INDEX statement in text, in document order.
func FindIndexes(text string) []IndexStatement {
	var out []IndexStatement
	for _, m := range indexRegex.FindAllStringSubmatch(text, -1) {
		out = append(out, IndexStatement{
			Name:    unquote(m[2]),
			Schema:  unquote(m[3]),
			Table:   unquote(m[4]),
			Columns: splitNameList(m[5]),
		})
	}
	return out
}

// FindPrimaryKeys returns primary keys added by ALTER TABLE statements.
func FindPrimaryKeys(text string) []PrimaryKeyStatement {
	var out []PrimaryKeyStatement
	for _, m := range alterPrimaryKey.FindAllStringSubmatch(text, -1) {
		out = append(out, PrimaryKeyStatement{
			Schema:  unquote(m[1]),
			Table:   unquote(m[2]),
			Columns: splitNameList(m[3]),
		})
	}
	return out
}

// AttachIndexes appends each index to its table. Index columns that are
// not columns of the table are dropped, as is an index left without
// columns or naming an unknown table. Duplicate names are kept.
func AttachIndexes(tables []schema.Table, stmts []IndexStatement) {
	for _, stmt := range stmts {
		t := findTable(tables, stmt.Schema, stmt.Table)
		if t == nil {
			continue
		}

		cols := make([]string, 0, len(stmt.Columns))
		for _, name := range stmt.Columns {
			if col := t.FindColumn(name); col != nil {
				cols = append(cols, col.Name)
			}
		}
		if len(cols) == 0 {
			continue
		}

		t.Indexes = append(t.Indexes, schema.Index{Name: stmt.Name, Columns: cols})
	}
}

// AttachPrimaryKeys merges ALTER TABLE primary keys into their tables.
func AttachPrimaryKeys(tables []schema.Table, stmts []PrimaryKeyStatement) {
	for _, stmt := range stmts {
		if t := findTable(tables, stmt.Schema, stmt.Table); t != nil {
			t.PrimaryKey = addPrimaryKey(t.PrimaryKey, stmt.Columns)
		}
	}
}
