package db

import (
	"errors"
	"strings"
	"testing"

	"github.com/tordrt/schemarag/internal/schema"
)

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantDriver string
		wantConn   string
		wantErr    bool
	}{
		{
			name:       "postgres",
			url:        "postgres://u:p@localhost:5432/db",
			wantDriver: DriverPostgres,
			wantConn:   "postgres://u:p@localhost:5432/db",
		},
		{
			name:       "postgresql alias",
			url:        "postgresql://localhost/db",
			wantDriver: DriverPostgres,
			wantConn:   "postgresql://localhost/db",
		},
		{
			name:       "mysql strips scheme",
			url:        "mysql://u:p@tcp(localhost:3306)/shop",
			wantDriver: DriverMySQL,
			wantConn:   "u:p@tcp(localhost:3306)/shop",
		},
		{
			name:       "sqlite strips scheme",
			url:        "sqlite://data/app.db",
			wantDriver: DriverSQLite,
			wantConn:   "data/app.db",
		},
		{name: "empty", url: "", wantErr: true},
		{name: "unknown scheme", url: "oracle://host/db", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, conn, err := ParseDatabaseURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if driver != tt.wantDriver || conn != tt.wantConn {
				t.Errorf("ParseDatabaseURL() = %s, %s; want %s, %s", driver, conn, tt.wantDriver, tt.wantConn)
			}
		})
	}
}

func TestParseDatabaseName(t *testing.T) {
	tests := []struct {
		dsn     string
		want    string
		wantErr bool
	}{
		{dsn: "u:p@tcp(localhost:3306)/shop", want: "shop"},
		{dsn: "u:p@tcp(localhost:3306)/shop?parseTime=true", want: "shop"},
		{dsn: "u:p@tcp(localhost:3306)/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.dsn, func(t *testing.T) {
			got, err := ParseDatabaseName(tt.dsn)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestFilterTables(t *testing.T) {
	s := &schema.Schema{Tables: []schema.Table{
		{Name: "users"},
		{Schema: schema.StringPtr("public"), Name: "schema_migrations"},
		{Name: "AUDIT_LOG"},
	}}

	FilterTables(s, []string{"public.schema_migrations", "audit_log"})

	verifyTablesExist(t, s, []string{"users"})
}

func TestSelectTables(t *testing.T) {
	available := []string{"Users", "orders", "users"}

	tests := []struct {
		name      string
		requested []string
		want      []string
		wantErr   bool
	}{
		{name: "all when none requested", requested: nil, want: available},
		{name: "requested order kept", requested: []string{"orders", "users"}, want: []string{"orders", "users"}},
		{name: "exact match preferred", requested: []string{"Users"}, want: []string{"Users"}},
		{name: "case-insensitive fallback", requested: []string{"ORDERS"}, want: []string{"orders"}},
		{name: "unknown table", requested: []string{"orders", "invoices", "payments"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectTables(available, tt.requested)
			if tt.wantErr {
				if !errors.Is(err, ErrTableNotFound) {
					t.Fatalf("Expected ErrTableNotFound, got %v", err)
				}
				if !strings.Contains(err.Error(), "invoices, payments") {
					t.Errorf("Expected every missing table in %q", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("selectTables() error = %v", err)
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("selectTables() = %v, want %v", got, tt.want)
			}
		})
	}
}
