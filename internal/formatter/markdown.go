package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemarag/internal/schema"
)

// MarkdownFormatter formats schema as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the schema in markdown format
func (f *MarkdownFormatter) Format(s *schema.Schema) error {
	_, _ = fmt.Fprintln(f.writer, "# Database Schema")
	_, _ = fmt.Fprintln(f.writer)

	for _, table := range s.Tables {
		f.FormatTable(table)
	}
	return nil
}

// FormatTable formats a single table (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatTable(table schema.Table) {
	_, _ = fmt.Fprintf(f.writer, "## %s\n\n", table.ID())

	if table.Comment != nil && *table.Comment != "" {
		_, _ = fmt.Fprintf(f.writer, "%s\n\n", *table.Comment)
	}

	f.formatColumns(table)
	f.formatIndexes(table.Indexes)
}

func (f *MarkdownFormatter) formatColumns(table schema.Table) {
	if len(table.Columns) == 0 {
		return
	}

	_, _ = fmt.Fprintln(f.writer, "### Columns")
	_, _ = fmt.Fprintln(f.writer)

	for _, col := range table.Columns {
		line := fmt.Sprintf("- **%s:** %s", col.Name, col.Type)
		if constraints := f.formatConstraints(col, table.PrimaryKey); constraints != "" {
			line += ", " + constraints
		}
		if col.Comment != nil && *col.Comment != "" {
			line += " - " + *col.Comment
		}
		_, _ = fmt.Fprintln(f.writer, line)
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatIndexes(indexes []schema.Index) {
	if len(indexes) == 0 {
		return
	}

	_, _ = fmt.Fprintln(f.writer, "### Idx")
	_, _ = fmt.Fprintln(f.writer)
	for _, idx := range indexes {
		_, _ = fmt.Fprintf(f.writer, "- %s on (%s)\n", idx.Name, strings.Join(idx.Columns, ", "))
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatConstraints(col schema.Column, primaryKey []string) string {
	var constraints []string

	for _, pk := range primaryKey {
		if schema.EqualFold(pk, col.Name) {
			constraints = append(constraints, "PK")
			break
		}
	}

	if !col.Nullable {
		constraints = append(constraints, "NOT NULL")
	}

	if col.Default != nil {
		constraints = append(constraints, fmt.Sprintf("DEFAULT %s", *col.Default))
	}

	return strings.Join(constraints, ", ")
}
