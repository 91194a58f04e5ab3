package ddl

import (
	"regexp"
	"strings"
)

// identifier: "quoted", `quoted`, [quoted] or bare word (letters, digits, _ $ #)
const ident = `(?:"[^"]+"|` + "`[^`]+`" + `|\[[^\]]+\]|[\p{L}\p{N}_$#]+)`

// qualified matches [schema.]name and captures both parts
const qualified = `(?:(` + ident + `)\s*\.\s*)?(` + ident + `)`

const tableKeyword = `CREATE\s+(?:OR\s+REPLACE\s+)?(?:(?:GLOBAL|LOCAL)\s+)?(?:TEMPORARY\s+|TEMP\s+)?TABLE`

// Compiled once; all patterns are read-only after init.
var (
	// Segmentation
	tableKeywordRegex = regexp.MustCompile(`(?i)\b` + tableKeyword + `\b`)
	tableHeaderRegex  = regexp.MustCompile(`(?is)^` + tableKeyword + `\s+(?:IF\s+NOT\s+EXISTS\s+)?` + qualified)
	blockCloseRegex   = regexp.MustCompile(`(?i)\)\s*(?:;|/[ \t]*(?:\r?\n|\z)|(?:SEGMENT|PCTFREE|TABLESPACE|STORAGE|ENGINE|ORGANIZATION|NOLOGGING|LOGGING|INHERITS|ON\s+COMMIT|PARTITION\s+BY)\b|WITH\s*\()`)

	// Columns
	columnLineRegex   = regexp.MustCompile(`(?is)^(` + ident + `)\s+(` + columnType + `)(.*)$`)
	notNullRegex      = regexp.MustCompile(`(?i)\bNOT\s+NULL\b`)
	defaultRegex      = regexp.MustCompile(`(?i)\bDEFAULT\s+((?:'[^']*'[^\s,]*|[^\s,]+)(?:\s+(?:VARYING|PRECISION|WITH(?:OUT)?\s+TIME\s+ZONE)\b[^\s,]*)*)`)
	inlineComment     = regexp.MustCompile(`(?i)\bCOMMENT\s+'([^']*)'`)
	inlinePrimary     = regexp.MustCompile(`(?i)\bPRIMARY\s+KEY\b`)
	continuationRegex = regexp.MustCompile(`(?i)^\s*(?:NOT\s+NULL|NULL|DEFAULT|REFERENCES|CONSTRAINT|PRIMARY\s+KEY|UNIQUE|CHECK|COMMENT|GENERATED|AUTO_INCREMENT|IDENTITY|COLLATE|CHARACTER\s+SET|ON\s+UPDATE|ENABLE|DISABLE)\b`)
	constraintLine    = regexp.MustCompile(`(?i)^(?:CONSTRAINT\b|PRIMARY\s+KEY\b|FOREIGN\s+KEY\b|UNIQUE\s*(?:\(|KEY\b|INDEX\b)|CHECK\s*\(|KEY\s+` + ident + `\s*\(|INDEX\s+` + ident + `\s*\()`)

	// Constraints
	primaryKeyRegex = regexp.MustCompile(`(?is)PRIMARY\s+KEY\s*\(([^)]*)\)`)
	alterPrimaryKey = regexp.MustCompile(`(?is)ALTER\s+TABLE\s+(?:ONLY\s+)?` + qualified + `\s+ADD\s+(?:CONSTRAINT\s+` + ident + `\s+)?PRIMARY\s+KEY\s*\(([^)]*)\)`)
	tableOption     = regexp.MustCompile(`(?i)^\s*\)[^;]*?\bCOMMENT\s*=?\s*'([^']*)'`)

	// Comments
	tableCommentRegex  = regexp.MustCompile(`(?is)COMMENT\s+ON\s+TABLE\s+` + qualified + `\s+IS\s+'([^']*)'`)
	columnCommentRegex = regexp.MustCompile(`(?is)COMMENT\s+ON\s+COLUMN\s+(?:(` + ident + `)\s*\.\s*)?(` + ident + `)\s*\.\s*(` + ident + `)\s+IS\s+'([^']*)'`)

	// Indexes
	indexRegex      = regexp.MustCompile(`(?is)CREATE\s+(?:UNIQUE\s+|BITMAP\s+)?INDEX\s+(?:CONCURRENTLY\s+)?(?:IF\s+NOT\s+EXISTS\s+)?` + qualified + `\s+ON\s+(?:ONLY\s+)?` + qualified + `\s*(?:USING\s+\w+\s*)?\(([^)]*)\)`)
	indexOrderRegex = regexp.MustCompile(`(?i)\s+(?:ASC|DESC)(?:\s+NULLS\s+(?:FIRST|LAST))?$`)

	// Cleaning
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// columnType is a type word with an optional size group followed by the
// multi-word continuations dialects allow (DOUBLE PRECISION, CHARACTER
// VARYING(20), TIMESTAMP(6) WITH TIME ZONE, INTERVAL DAY(2) TO SECOND(6)).
const columnType = `[\p{L}_][\p{L}\p{N}_$#]*(?:\s*\([^)]*\))?` +
	`(?:\s+(?:VARYING|PRECISION|UNSIGNED|ZEROFILL|` +
	`WITH\s+LOCAL\s+TIME\s+ZONE|WITH\s+TIME\s+ZONE|WITHOUT\s+TIME\s+ZONE|` +
	`(?:YEAR|DAY)(?:\s*\([^)]*\))?\s+TO\s+(?:MONTH|SECOND)|TO\s+(?:MONTH|SECOND))\b(?:\s*\([^)]*\))?)*`

// unquote strips identifier quoting.
func unquote(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 2 {
		switch {
		case name[0] == '"' && name[len(name)-1] == '"',
			name[0] == '`' && name[len(name)-1] == '`',
			name[0] == '[' && name[len(name)-1] == ']':
			return name[1 : len(name)-1]
		}
	}
	return name
}

// splitNameList splits a parenthesised column list such as `"A", b DESC`.
func splitNameList(list string) []string {
	var names []string
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		part = indexOrderRegex.ReplaceAllString(part, "")
		part = unquote(strings.TrimSpace(part))
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}
