package formatter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemarag/internal/schema"
)

// Schema text line prefixes. The layout is:
//
//	Table: ORDERS
//	Schema: APP
//	Comment: customer orders
//	Columns:
//	- ORDER_ID: NUMBER(10,0) NOT NULL
//	- STATUS: VARCHAR2(20) DEFAULT 'NEW' -- order state
//	Primary Key: ORDER_ID
//	Indexes:
//	- IDX_ORDERS_STATUS (STATUS)
const (
	tablePrefix   = "Table: "
	schemaPrefix  = "Schema: "
	commentPrefix = "Comment: "
	columnsHeader = "Columns:"
	pkPrefix      = "Primary Key: "
	indexesHeader = "Indexes:"
	itemPrefix    = "- "
	commentSep    = " -- "
	defaultSep    = " DEFAULT "
	notNullSuffix = " NOT NULL"
)

var (
	escaper   = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)
	unescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\r`, "\r")
)

// TextFormatter formats schema as compact text
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the schema text of every table
func (f *TextFormatter) Format(s *schema.Schema) error {
	for i, table := range s.Tables {
		if i > 0 {
			_, _ = fmt.Fprintln(f.writer) // Blank line between tables
		}
		if _, err := io.WriteString(f.writer, SchemaText(&table)); err != nil {
			return err
		}
	}
	return nil
}

// SchemaText renders a table to its flattened text form. The output is a
// pure function of the table's fields. A table without columns renders its
// header lines only.
func SchemaText(table *schema.Table) string {
	var b strings.Builder

	b.WriteString(tablePrefix + escaper.Replace(table.Name) + "\n")
	if table.Schema != nil {
		b.WriteString(schemaPrefix + escaper.Replace(*table.Schema) + "\n")
	}
	if table.Comment != nil {
		b.WriteString(commentPrefix + escaper.Replace(*table.Comment) + "\n")
	}

	if len(table.Columns) == 0 {
		return b.String()
	}

	b.WriteString(columnsHeader + "\n")
	for _, col := range table.Columns {
		b.WriteString(itemPrefix + formatColumn(col) + "\n")
	}

	if len(table.PrimaryKey) > 0 {
		b.WriteString(pkPrefix + escaper.Replace(strings.Join(table.PrimaryKey, ", ")) + "\n")
	}

	if len(table.Indexes) > 0 {
		b.WriteString(indexesHeader + "\n")
		for _, idx := range table.Indexes {
			fmt.Fprintf(&b, "%s%s (%s)\n", itemPrefix, escaper.Replace(idx.Name), escaper.Replace(strings.Join(idx.Columns, ", ")))
		}
	}

	return b.String()
}

func formatColumn(col schema.Column) string {
	parts := []string{escaper.Replace(col.Name) + ": " + escaper.Replace(col.Type)}

	if !col.Nullable {
		parts = append(parts, strings.TrimSpace(notNullSuffix))
	}

	if col.Default != nil {
		parts = append(parts, "DEFAULT "+escaper.Replace(*col.Default))
	}

	line := strings.Join(parts, " ")
	if col.Comment != nil {
		line += commentSep + escaper.Replace(*col.Comment)
	}
	return line
}

// ParseSchemaText reads text produced by SchemaText back into a table.
// Rendering the result again yields the same text.
func ParseSchemaText(text string) (*schema.Table, error) {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if !scanner.Scan() || !strings.HasPrefix(scanner.Text(), tablePrefix) {
		return nil, fmt.Errorf("schema text must start with %q", tablePrefix)
	}
	table := &schema.Table{Name: unescaper.Replace(strings.TrimPrefix(scanner.Text(), tablePrefix))}

	section := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == columnsHeader, line == indexesHeader:
			section = line
		case section == "" && strings.HasPrefix(line, schemaPrefix):
			table.Schema = schema.StringPtr(unescaper.Replace(strings.TrimPrefix(line, schemaPrefix)))
		case section == "" && strings.HasPrefix(line, commentPrefix):
			table.Comment = schema.StringPtr(unescaper.Replace(strings.TrimPrefix(line, commentPrefix)))
		case strings.HasPrefix(line, pkPrefix):
			section = ""
			for _, name := range strings.Split(strings.TrimPrefix(line, pkPrefix), ", ") {
				table.PrimaryKey = append(table.PrimaryKey, unescaper.Replace(name))
			}
		case section == columnsHeader && strings.HasPrefix(line, itemPrefix):
			col, err := parseColumnLine(strings.TrimPrefix(line, itemPrefix))
			if err != nil {
				return nil, err
			}
			table.Columns = append(table.Columns, col)
		case section == indexesHeader && strings.HasPrefix(line, itemPrefix):
			idx, err := parseIndexLine(strings.TrimPrefix(line, itemPrefix))
			if err != nil {
				return nil, err
			}
			table.Indexes = append(table.Indexes, idx)
		case line == "":
		default:
			return nil, fmt.Errorf("unexpected schema text line: %q", line)
		}
	}

	return table, scanner.Err()
}

func parseColumnLine(line string) (schema.Column, error) {
	name, rest, ok := strings.Cut(line, ": ")
	if !ok {
		return schema.Column{}, fmt.Errorf("invalid column line: %q", line)
	}
	col := schema.Column{Name: unescaper.Replace(name), Nullable: true}

	if i := strings.Index(rest, commentSep); i >= 0 {
		col.Comment = schema.StringPtr(unescaper.Replace(rest[i+len(commentSep):]))
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, defaultSep); i >= 0 {
		col.Default = schema.StringPtr(unescaper.Replace(rest[i+len(defaultSep):]))
		rest = rest[:i]
	}
	if strings.HasSuffix(rest, notNullSuffix) {
		col.Nullable = false
		rest = strings.TrimSuffix(rest, notNullSuffix)
	}
	col.Type = unescaper.Replace(rest)

	return col, nil
}

func parseIndexLine(line string) (schema.Index, error) {
	open := strings.LastIndex(line, " (")
	if open < 0 || !strings.HasSuffix(line, ")") {
		return schema.Index{}, fmt.Errorf("invalid index line: %q", line)
	}
	idx := schema.Index{Name: unescaper.Replace(line[:open])}
	for _, col := range strings.Split(line[open+2:len(line)-1], ", ") {
		idx.Columns = append(idx.Columns, unescaper.Replace(col))
	}
	return idx, nil
}
