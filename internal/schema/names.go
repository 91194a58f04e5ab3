package schema

import "strings"

// EqualFold compares two identifiers ignoring case.
func EqualFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Matches reports whether the table is the target of a reference naming
// schemaName.tableName. Table names compare case-insensitively; schema
// qualifiers are only compared when both sides carry one.
func (t *Table) Matches(schemaName, tableName string) bool {
	if !EqualFold(t.Name, tableName) {
		return false
	}
	if schemaName == "" || t.SchemaName() == "" {
		return true
	}
	return EqualFold(t.SchemaName(), schemaName)
}
