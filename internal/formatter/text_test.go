package formatter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tordrt/schemarag/internal/schema"
)

func ordersTable() schema.Table {
	return schema.Table{
		Schema:  schema.StringPtr("APP"),
		Name:    "ORDERS",
		Comment: schema.StringPtr("customer orders"),
		Columns: []schema.Column{
			{Name: "ORDER_ID", Type: "NUMBER(10,0)", Nullable: false},
			{Name: "STATUS", Type: "VARCHAR2(20)", Nullable: true, Default: schema.StringPtr("'NEW'"), Comment: schema.StringPtr("order state")},
			{Name: "NOTE", Type: "VARCHAR2(4000)", Nullable: true},
		},
		PrimaryKey: []string{"ORDER_ID"},
		Indexes: []schema.Index{
			{Name: "APP.IDX_ORDERS_STATUS", Columns: []string{"STATUS", "ORDER_ID"}},
		},
	}
}

func TestSchemaText(t *testing.T) {
	tests := []struct {
		name  string
		table schema.Table
		want  string
	}{
		{
			name:  "full table",
			table: ordersTable(),
			want: "Table: ORDERS\n" +
				"Schema: APP\n" +
				"Comment: customer orders\n" +
				"Columns:\n" +
				"- ORDER_ID: NUMBER(10,0) NOT NULL\n" +
				"- STATUS: VARCHAR2(20) DEFAULT 'NEW' -- order state\n" +
				"- NOTE: VARCHAR2(4000)\n" +
				"Primary Key: ORDER_ID\n" +
				"Indexes:\n" +
				"- APP.IDX_ORDERS_STATUS (STATUS, ORDER_ID)\n",
		},
		{
			name:  "no columns renders header only",
			table: schema.Table{Name: "EMPTY", Columns: []schema.Column{}, PrimaryKey: []string{}},
			want:  "Table: EMPTY\n",
		},
		{
			name: "multi-line comment is escaped",
			table: schema.Table{
				Name:    "T",
				Comment: schema.StringPtr("line one\nline two"),
				Columns: []schema.Column{{Name: "A", Type: "INT", Nullable: true, Comment: schema.StringPtr(`C:\path`)}},
			},
			want: "Table: T\n" +
				"Comment: line one\\nline two\n" +
				"Columns:\n" +
				"- A: INT -- C:\\\\path\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SchemaText(&tt.table)
			if got != tt.want {
				t.Errorf("SchemaText() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestSchemaTextIsDeterministic(t *testing.T) {
	table := ordersTable()
	first := SchemaText(&table)
	for i := 0; i < 5; i++ {
		if got := SchemaText(&table); got != first {
			t.Fatalf("SchemaText() changed between calls:\n%s\nvs\n%s", got, first)
		}
	}
}

func TestParseSchemaTextRoundTrip(t *testing.T) {
	tables := []schema.Table{
		ordersTable(),
		{Name: "EMPTY"},
		{
			Name:    "NOTES",
			Comment: schema.StringPtr("free text\nwith newline"),
			Columns: []schema.Column{
				{Name: "BODY", Type: "CLOB", Nullable: true, Comment: schema.StringPtr("")},
				{Name: "CREATED_AT", Type: "TIMESTAMP WITH TIME ZONE", Nullable: false, Default: schema.StringPtr("SYSTIMESTAMP")},
			},
		},
	}

	for _, table := range tables {
		t.Run(table.Name, func(t *testing.T) {
			text := SchemaText(&table)
			parsed, err := ParseSchemaText(text)
			if err != nil {
				t.Fatalf("ParseSchemaText() error: %v", err)
			}
			if parsed.Name != table.Name {
				t.Errorf("Expected name %s, got %s", table.Name, parsed.Name)
			}
			if parsed.CommentText() != table.CommentText() {
				t.Errorf("Expected comment %q, got %q", table.CommentText(), parsed.CommentText())
			}
			if len(parsed.Columns) != len(table.Columns) {
				t.Fatalf("Expected %d columns, got %d", len(table.Columns), len(parsed.Columns))
			}
			if again := SchemaText(parsed); again != text {
				t.Errorf("Round trip mismatch:\n%s\nwant:\n%s", again, text)
			}
		})
	}
}

func TestParseSchemaTextErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "missing table line", text: "Columns:\n- A: INT\n"},
		{name: "bad column line", text: "Table: T\nColumns:\n- broken\n"},
		{name: "bad index line", text: "Table: T\nColumns:\n- A: INT\nIndexes:\n- IDX_A\n"},
		{name: "stray line", text: "Table: T\nsomething else\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSchemaText(tt.text); err == nil {
				t.Error("Expected error but got none")
			}
		})
	}
}

func TestTextFormatterSeparatesTables(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{{Name: "A"}, {Name: "B"}}}

	var buf bytes.Buffer
	if err := NewTextFormatter(&buf).Format(s); err != nil {
		t.Fatalf("Format() error: %v", err)
	}

	if got, want := buf.String(), "Table: A\n\nTable: B\n"; got != want {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}

func TestMarkdownFormatter(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{ordersTable()}}

	var buf bytes.Buffer
	if err := NewMarkdownFormatter(&buf).Format(s); err != nil {
		t.Fatalf("Format() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"## APP.ORDERS",
		"customer orders",
		"- **ORDER_ID:** NUMBER(10,0), PK, NOT NULL",
		"- **STATUS:** VARCHAR2(20), DEFAULT 'NEW' - order state",
		"- **NOTE:** VARCHAR2(4000)\n",
		"- APP.IDX_ORDERS_STATUS on (STATUS, ORDER_ID)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected markdown to contain %q, got:\n%s", want, out)
		}
	}
}
