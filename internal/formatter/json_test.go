package formatter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/tordrt/schemarag/internal/schema"
)

func TestJSONFormatterFieldNames(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{
		{
			Schema:     schema.StringPtr("S"),
			Name:       "T",
			Comment:    schema.StringPtr("desc"),
			Columns:    []schema.Column{{Name: "ID", Type: "NUMBER", Nullable: false}},
			PrimaryKey: []string{},
			Indexes:    []schema.Index{},
		},
	}}

	var buf bytes.Buffer
	if err := NewJSONFormatter(&buf).Format(s); err != nil {
		t.Fatalf("Format() error: %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("Expected 1 table, got %d", len(raw))
	}

	for _, key := range []string{"schema", "table_name", "table_comment", "columns", "primary_key", "indexes"} {
		if _, ok := raw[0][key]; !ok {
			t.Errorf("Expected key %q in table object", key)
		}
	}

	col := raw[0]["columns"].([]any)[0].(map[string]any)
	for _, key := range []string{"name", "type", "nullable", "default", "comment"} {
		if _, ok := col[key]; !ok {
			t.Errorf("Expected key %q in column object", key)
		}
	}
	if col["default"] != nil || col["comment"] != nil {
		t.Errorf("Expected null default and comment, got %v and %v", col["default"], col["comment"])
	}
}

func TestJSONFormatterEmptySchema(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(&buf).Format(&schema.Schema{}); err != nil {
		t.Fatalf("Format() error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("Expected [], got %s", got)
	}
}

func TestReadTables(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{ordersTable()}}

	var buf bytes.Buffer
	if err := NewJSONFormatter(&buf).Format(s); err != nil {
		t.Fatalf("Format() error: %v", err)
	}

	got, err := ReadTables(&buf)
	if err != nil {
		t.Fatalf("ReadTables() error: %v", err)
	}
	if len(got.Tables) != 1 {
		t.Fatalf("Expected 1 table, got %d", len(got.Tables))
	}
	want := ordersTable()
	if SchemaText(&got.Tables[0]) != SchemaText(&want) {
		t.Errorf("Decoded table renders differently:\n%s", SchemaText(&got.Tables[0]))
	}
}

func TestDocuments(t *testing.T) {
	table := ordersTable()
	docs := Documents(&schema.Schema{Tables: []schema.Table{table, {Name: "BARE"}}})

	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}

	doc := docs[0]
	if doc.ID != "APP.ORDERS" {
		t.Errorf("Expected id APP.ORDERS, got %s", doc.ID)
	}
	if doc.TableName != "ORDERS" || doc.TableComment != "customer orders" {
		t.Errorf("Unexpected name/comment: %s / %s", doc.TableName, doc.TableComment)
	}
	wantCols := []string{"ORDER_ID", "STATUS", "NOTE"}
	wantComments := []string{"", "order state", ""}
	for i := range wantCols {
		if doc.Columns[i] != wantCols[i] {
			t.Errorf("Column %d: expected %s, got %s", i, wantCols[i], doc.Columns[i])
		}
		if doc.ColumnComments[i] != wantComments[i] {
			t.Errorf("Column comment %d: expected %q, got %q", i, wantComments[i], doc.ColumnComments[i])
		}
	}
	if doc.SchemaText != SchemaText(&table) {
		t.Error("Expected document schema_text to match SchemaText()")
	}

	bare := docs[1]
	if bare.ID != "BARE" || bare.SchemaText != "Table: BARE\n" {
		t.Errorf("Unexpected bare document: %+v", bare)
	}
	if bare.Columns == nil || bare.ColumnComments == nil {
		t.Error("Expected non-nil empty column slices")
	}
}

func TestDocumentsFormatter(t *testing.T) {
	var buf bytes.Buffer
	s := &schema.Schema{Tables: []schema.Table{ordersTable()}}
	if err := NewDocumentsFormatter(&buf).Format(s); err != nil {
		t.Fatalf("Format() error: %v", err)
	}

	docs, err := ReadDocuments(&buf)
	if err != nil {
		t.Fatalf("ReadDocuments() error: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "APP.ORDERS" {
		t.Fatalf("Unexpected documents: %+v", docs)
	}
	if got := docs[0].ColumnComments; len(got) != 3 || got[1] != "order state" || got[0] != "" {
		t.Errorf("Expected aligned column comments, got %q", got)
	}

	if _, err := ReadDocuments(strings.NewReader(`{"id": "x"}`)); err == nil {
		t.Error("Expected error for a non-array document file")
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	s := &schema.Schema{Tables: []schema.Table{ordersTable()}}
	if err := NewYAMLFormatter(&buf).Format(s); err != nil {
		t.Fatalf("Format() error: %v", err)
	}

	var tables []schema.Table
	if err := yaml.Unmarshal(buf.Bytes(), &tables); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if len(tables) != 1 || tables[0].ID() != "APP.ORDERS" {
		t.Fatalf("Unexpected tables: %+v", tables)
	}
	if got := tables[0].Columns[1].CommentText(); got != "order state" {
		t.Errorf("Expected STATUS comment, got %q", got)
	}
}

func TestMultiFileFormatter(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		ext      string
		contains string
	}{
		{name: "text", format: "text", ext: ".txt", contains: "Table: ORDERS"},
		{name: "markdown", format: "markdown", ext: ".md", contains: "## APP.ORDERS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			s := &schema.Schema{Tables: []schema.Table{ordersTable(), {Name: "EMPTY"}}}

			if err := NewMultiFileFormatter(dir, tt.format).Format(s); err != nil {
				t.Fatalf("Format() error: %v", err)
			}

			overview, err := os.ReadFile(filepath.Join(dir, "_overview"+tt.ext))
			if err != nil {
				t.Fatalf("overview not written: %v", err)
			}
			if !strings.Contains(string(overview), "APP.ORDERS: customer orders") && !strings.Contains(string(overview), "**APP.ORDERS**: customer orders") {
				t.Errorf("Overview missing table entry:\n%s", overview)
			}

			data, err := os.ReadFile(filepath.Join(dir, "APP.ORDERS"+tt.ext))
			if err != nil {
				t.Fatalf("table file not written: %v", err)
			}
			if !strings.Contains(string(data), tt.contains) {
				t.Errorf("Expected %q in table file, got:\n%s", tt.contains, data)
			}

			if _, err := os.Stat(filepath.Join(dir, "EMPTY"+tt.ext)); err != nil {
				t.Errorf("Expected file for table without columns: %v", err)
			}
		})
	}
}

func TestNew(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{ordersTable()}}

	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{format: FormatJSON, want: `"table_name": "ORDERS"`},
		{format: FormatDocuments, want: `"id": "APP.ORDERS"`},
		{format: FormatYAML, want: "table_name: ORDERS"},
		{format: FormatText, want: "Table: ORDERS"},
		{format: FormatMarkdown, want: "ORDERS"},
		{format: "csv", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			f, err := New(tt.format, &buf)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error for unknown format")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if err := f.Format(s); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("%s output missing %q:\n%s", tt.format, tt.want, buf.String())
			}
		})
	}

	if !SupportsMultiFile(FormatMarkdown) || SupportsMultiFile(FormatJSON) {
		t.Error("only text and markdown can be split into files")
	}
}
