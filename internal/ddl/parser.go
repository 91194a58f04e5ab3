// Package ddl turns raw SQL data-definition text into table descriptors.
//
// Parsing is a best-effort regular-expression scan, not a SQL grammar: a
// block or line that does not look as expected is skipped, and comments or
// indexes that reference unknown tables are dropped. Only input-level
// problems (nothing to parse, no table found, unreadable file) are reported
// as errors.
package ddl

import (
	"strings"

	"github.com/tordrt/schemarag/internal/schema"
)

// Document is the result of scanning one source text. Tables are parsed
// from their own blocks; comments, indexes and ALTER TABLE primary keys
// are kept as statements and resolved once every document is known.
type Document struct {
	Name           string
	Blank          bool
	Tables         []schema.Table
	TableComments  []TableComment
	ColumnComments []ColumnComment
	Indexes        []IndexStatement
	PrimaryKeys    []PrimaryKeyStatement

	// headerless[i] is set when Tables[i] came from a block whose header
	// could not be read
	headerless []bool
}

// ParseDocument scans a single source text.
func ParseDocument(name, text string) *Document {
	doc := &Document{Name: name}
	if strings.TrimSpace(text) == "" {
		doc.Blank = true
		return doc
	}

	for _, block := range Segment(text) {
		doc.Tables = append(doc.Tables, ParseTable(block))
		doc.headerless = append(doc.headerless, !block.HasHeader())
	}
	doc.TableComments = FindTableComments(text)
	doc.ColumnComments = FindColumnComments(text)
	doc.Indexes = FindIndexes(text)
	doc.PrimaryKeys = FindPrimaryKeys(text)

	return doc
}

// ParseText parses a single document and resolves it on its own.
func ParseText(text string) (*schema.Schema, error) {
	return Parse([]Source{{Name: "input", Text: text}})
}
