package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/schemarag/internal/schema"
)

// Output format names
const (
	FormatJSON      = "json"
	FormatDocuments = "documents"
	FormatYAML      = "yaml"
	FormatText      = "text"
	FormatMarkdown  = "markdown"
)

// Formatter writes a schema to its destination
type Formatter interface {
	Format(s *schema.Schema) error
}

// New returns the single-stream formatter for format
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(w), nil
	case FormatDocuments:
		return NewDocumentsFormatter(w), nil
	case FormatYAML:
		return NewYAMLFormatter(w), nil
	case FormatText:
		return NewTextFormatter(w), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(w), nil
	default:
		return nil, fmt.Errorf("invalid format: %s (must be json, documents, yaml, text or markdown)", format)
	}
}

// SupportsMultiFile reports whether format can be split into one file per table
func SupportsMultiFile(format string) bool {
	return format == FormatText || format == FormatMarkdown
}
