package formatter

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/schemarag/internal/schema"
)

// JSONFormatter writes the table descriptors as a JSON array
type JSONFormatter struct {
	writer    io.Writer
	documents bool
}

// NewJSONFormatter creates a formatter for the full descriptor form
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// NewDocumentsFormatter creates a formatter for the flattened document form
// used by the retrieval index.
func NewDocumentsFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w, documents: true}
}

// Format writes the schema as indented JSON
func (f *JSONFormatter) Format(s *schema.Schema) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	var v any = tablesOrEmpty(s)
	if f.documents {
		v = Documents(s)
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// YAMLFormatter writes the table descriptors as YAML
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the schema as a YAML sequence
func (f *YAMLFormatter) Format(s *schema.Schema) error {
	enc := yaml.NewEncoder(f.writer)
	enc.SetIndent(2)
	if err := enc.Encode(tablesOrEmpty(s)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// ReadTables decodes a JSON array of table descriptors, as written by
// JSONFormatter.
func ReadTables(r io.Reader) (*schema.Schema, error) {
	var tables []schema.Table
	if err := json.NewDecoder(r).Decode(&tables); err != nil {
		return nil, fmt.Errorf("failed to decode schema JSON: %w", err)
	}
	return &schema.Schema{Tables: tables}, nil
}

// ReadDocuments decodes a JSON array of retrieval documents, as written by
// the documents format.
func ReadDocuments(r io.Reader) ([]schema.Document, error) {
	var docs []schema.Document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents JSON: %w", err)
	}
	return docs, nil
}

func tablesOrEmpty(s *schema.Schema) []schema.Table {
	if s == nil || s.Tables == nil {
		return []schema.Table{}
	}
	return s.Tables
}
