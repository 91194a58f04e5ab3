package ddl

import (
	"strings"

	"github.com/tordrt/schemarag/internal/schema"
)

// UnknownTable names a block whose header could not be read.
const UnknownTable = "UNKNOWN"

// ParseTable builds a table from one block: identity from the header,
// columns from the body, and the primary key from a PRIMARY KEY (...)
// constraint or inline column markers. Primary key names are uppercased.
func ParseTable(b Block) schema.Table {
	table := schema.Table{Name: UnknownTable}

	if m := tableHeaderRegex.FindStringSubmatch(b.Text); m != nil {
		if m[1] != "" {
			table.Schema = schema.StringPtr(unquote(m[1]))
		}
		table.Name = unquote(m[2])
	}

	if !b.Terminated {
		return table
	}

	cols := parseColumns(b.Body)
	table.Columns = cols.Columns

	var pk []string
	if m := primaryKeyRegex.FindStringSubmatch(b.Body); m != nil {
		pk = splitNameList(m[1])
	}
	pk = append(pk, cols.InlinePrimary...)
	table.PrimaryKey = addPrimaryKey(nil, pk)

	if m := tableOption.FindStringSubmatch(b.Tail); m != nil {
		table.Comment = schema.StringPtr(m[1])
	}

	return table
}

// addPrimaryKey merges names into an uppercase, de-duplicated key list.
func addPrimaryKey(pk []string, names []string) []string {
	for _, name := range names {
		name = strings.ToUpper(name)
		dup := false
		for _, existing := range pk {
			if existing == name {
				dup = true
				break
			}
		}
		if !dup {
			pk = append(pk, name)
		}
	}
	return pk
}

// prunePrimaryKey drops key names that are not columns of the table.
func prunePrimaryKey(t *schema.Table) {
	kept := make([]string, 0, len(t.PrimaryKey))
	for _, name := range t.PrimaryKey {
		if t.FindColumn(name) != nil {
			kept = append(kept, name)
		}
	}
	t.PrimaryKey = kept
}
