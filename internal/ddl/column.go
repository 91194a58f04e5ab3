package ddl

import (
	"strings"

	"github.com/tordrt/schemarag/internal/schema"
)

// columnResult carries the columns of one block plus the names marked
// PRIMARY KEY inline on a column definition.
type columnResult struct {
	Columns       []schema.Column
	InlinePrimary []string
}

// ParseColumns extracts column definitions from a block body. Lines that
// do not look like "name type ..." are skipped.
func ParseColumns(body string) []schema.Column {
	return parseColumns(body).Columns
}

func parseColumns(body string) columnResult {
	var res columnResult
	seen := make(map[string]bool)

	for _, line := range splitColumnLines(body) {
		if constraintLine.MatchString(line) {
			continue
		}

		col, rest, ok := parseColumnLine(line)
		if !ok {
			continue
		}

		key := strings.ToUpper(col.Name)
		if seen[key] {
			continue
		}
		seen[key] = true

		if inlinePrimary.MatchString(rest) {
			res.InlinePrimary = append(res.InlinePrimary, col.Name)
		}
		res.Columns = append(res.Columns, col)
	}
	return res
}

// parseColumnLine matches one candidate line and returns the column and
// the unparsed remainder after the type.
func parseColumnLine(line string) (schema.Column, string, bool) {
	m := columnLineRegex.FindStringSubmatch(line)
	if m == nil {
		return schema.Column{}, "", false
	}

	name := unquote(m[1])
	if name == "" {
		return schema.Column{}, "", false
	}

	rest := m[3]
	col := schema.Column{
		Name:     name,
		Type:     whitespaceRegex.ReplaceAllString(strings.TrimSpace(m[2]), " "),
		Nullable: !notNullRegex.MatchString(rest),
	}
	if d := defaultRegex.FindStringSubmatch(rest); d != nil {
		col.Default = schema.StringPtr(d[1])
	}
	if c := inlineComment.FindStringSubmatch(rest); c != nil {
		col.Comment = schema.StringPtr(c[1])
	}
	return col, rest, true
}

// splitColumnLines cuts a column list into candidate lines at commas on
// parenthesis depth zero outside string literals, and at physical line
// breaks unless the next line continues the previous definition (starts
// with NOT NULL, DEFAULT, REFERENCES and the like). SQL comments outside
// string literals are dropped; each candidate is trimmed and loses its
// trailing commas.
func splitColumnLines(body string) []string {
	var (
		lines   []string
		current strings.Builder
		depth   int
		inQuote bool
	)

	flush := func() {
		line := strings.TrimSpace(current.String())
		line = strings.TrimSpace(strings.TrimRight(line, ","))
		if line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	skip := 0
	for i, r := range body {
		if i < skip {
			continue
		}
		switch {
		case !inQuote && strings.HasPrefix(body[i:], "--"):
			// Keep the newline so it still ends the line
			if end := strings.IndexByte(body[i:], '\n'); end >= 0 {
				skip = i + end
			} else {
				skip = len(body)
			}
			continue
		case !inQuote && strings.HasPrefix(body[i:], "/*"):
			if end := strings.Index(body[i+2:], "*/"); end >= 0 {
				skip = i + 2 + end + 2
			} else {
				skip = len(body)
			}
			continue
		case r == '\'':
			inQuote = !inQuote
		case inQuote:
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			flush()
			continue
		case r == '\n' && depth == 0:
			if !continuationRegex.MatchString(body[i+1:]) {
				flush()
				continue
			}
			r = ' '
		}
		current.WriteRune(r)
	}
	flush()

	return lines
}
