package ddl

import "github.com/tordrt/schemarag/internal/schema"

// TableComment is a COMMENT ON TABLE statement.
type TableComment struct {
	Schema string
	Table  string
	Text   string
}

// ColumnComment is a COMMENT ON COLUMN statement.
type ColumnComment struct {
	Schema string
	Table  string
	Column string
	Text   string
}

// FindTableComments returns every COMMENT ON TABLE statement in text, in
// document order. The comment string ends at the first closing quote.
func FindTableComments(text string) []TableComment {
	var out []TableComment
	for _, m := range tableCommentRegex.FindAllStringSubmatch(text, -1) {
		out = append(out, TableComment{
			Schema: unquote(m[1]),
			Table:  unquote(m[2]),
			Text:   m[3],
		})
	}
	return out
}

// FindColumnComments returns every COMMENT ON COLUMN statement in text.
func FindColumnComments(text string) []ColumnComment {
	var out []ColumnComment
	for _, m := range columnCommentRegex.FindAllStringSubmatch(text, -1) {
		out = append(out, ColumnComment{
			Schema: unquote(m[1]),
			Table:  unquote(m[2]),
			Column: unquote(m[3]),
			Text:   m[4],
		})
	}
	return out
}

// ResolveTableComments assigns comments to matching tables. Comments on
// unknown tables are dropped.
func ResolveTableComments(tables []schema.Table, comments []TableComment) {
	for _, c := range comments {
		if t := findTable(tables, c.Schema, c.Table); t != nil {
			t.Comment = schema.StringPtr(c.Text)
		}
	}
}

// ResolveColumnComments assigns comments to matching columns. Column names
// match case-insensitively; unknown tables or columns are dropped.
func ResolveColumnComments(tables []schema.Table, comments []ColumnComment) {
	for _, c := range comments {
		t := findTable(tables, c.Schema, c.Table)
		if t == nil {
			continue
		}
		if col := t.FindColumn(c.Column); col != nil {
			col.Comment = schema.StringPtr(c.Text)
		}
	}
}

// findTable returns the table a reference points at. A table whose schema
// matches exactly wins over one matched by name alone.
func findTable(tables []schema.Table, schemaName, tableName string) *schema.Table {
	var byName *schema.Table
	for i := range tables {
		t := &tables[i]
		if !t.Matches(schemaName, tableName) {
			continue
		}
		if schemaName != "" && schema.EqualFold(t.SchemaName(), schemaName) {
			return t
		}
		if byName == nil {
			byName = t
		}
	}
	return byName
}
