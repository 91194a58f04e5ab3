package schema

// Schema represents a set of parsed or introspected tables
type Schema struct {
	Tables []Table `json:"tables" yaml:"tables"`
}

// Table represents a database table
type Table struct {
	Schema     *string  `json:"schema" yaml:"schema"`
	Name       string   `json:"table_name" yaml:"table_name"`
	Comment    *string  `json:"table_comment" yaml:"table_comment"`
	Columns    []Column `json:"columns" yaml:"columns"`
	PrimaryKey []string `json:"primary_key" yaml:"primary_key"`
	Indexes    []Index  `json:"indexes" yaml:"indexes"`
}

// Column represents a table column
type Column struct {
	Name     string  `json:"name" yaml:"name"`
	Type     string  `json:"type" yaml:"type"`
	Nullable bool    `json:"nullable" yaml:"nullable"`
	Default  *string `json:"default" yaml:"default"`
	Comment  *string `json:"comment" yaml:"comment"`
}

// Index represents a database index
type Index struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
}

// Document is the flattened per-table record stored in the vector index
type Document struct {
	ID             string   `json:"id" yaml:"id"`
	TableName      string   `json:"table_name" yaml:"table_name"`
	TableComment   string   `json:"table_comment" yaml:"table_comment"`
	Columns        []string `json:"columns" yaml:"columns"`
	ColumnComments []string `json:"column_comments" yaml:"column_comments"`
	SchemaText     string   `json:"schema_text" yaml:"schema_text"`
}

// ID returns the table identity: "schema.name", or just the name when the
// table has no schema qualifier. Case is preserved.
func (t *Table) ID() string {
	if t.Schema != nil && *t.Schema != "" {
		return *t.Schema + "." + t.Name
	}
	return t.Name
}

// SchemaName returns the schema qualifier or "".
func (t *Table) SchemaName() string {
	if t.Schema == nil {
		return ""
	}
	return *t.Schema
}

// CommentText returns the table comment or "".
func (t *Table) CommentText() string {
	if t.Comment == nil {
		return ""
	}
	return *t.Comment
}

// FindColumn returns the column whose name matches case-insensitively, or nil.
func (t *Table) FindColumn(name string) *Column {
	for i := range t.Columns {
		if EqualFold(t.Columns[i].Name, name) {
			return &t.Columns[i]
		}
	}
	return nil
}

// CommentText returns the column comment or "".
func (c *Column) CommentText() string {
	if c.Comment == nil {
		return ""
	}
	return *c.Comment
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}
