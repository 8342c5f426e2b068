package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/viper"

	"github.com/pthm/hxgrid"
	"github.com/pthm/hxgrid/lib/dataset"
	"github.com/pthm/hxgrid/lib/table"
)

const peopleCSV = "id,name,age\n1,Alice,30\n2,bob,25\n3,Carol,40\n4,dave,30\n"

const configYAML = `
page_size: 2
dataset:
  path: %s
  columns:
    - key: id
      type: int
      id: true
    - key: name
      title: Name
      sortable: true
    - key: age
      title: Age
      type: int
      sortable: true
`

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	data := filepath.Join(dir, "people.csv")
	if err := os.WriteFile(data, []byte(peopleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "hxgrid.yaml")
	yaml := strings.Replace(configYAML, "%s", data, 1)
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

func testConfig(t *testing.T) Config {
	t.Helper()
	v := viper.New()
	if err := configure(v, writeConfig(t)); err != nil {
		t.Fatalf("configure failed: %v", err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	return cfg
}

func TestLoadConfig(t *testing.T) {
	cfg := testConfig(t)

	if cfg.PageSize != 2 || cfg.Addr != ":8080" || cfg.LogLevel != "info" {
		t.Errorf("cfg = %+v", cfg)
	}
	want := []dataset.ColumnSpec{
		{Key: "id", Type: "int", ID: true},
		{Key: "name", Title: "Name", Sortable: true},
		{Key: "age", Title: "Age", Type: "int", Sortable: true},
	}
	if !slices.Equal(cfg.Dataset.Columns, want) {
		t.Errorf("columns = %+v", cfg.Dataset.Columns)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("HXGRID_PAGE_SIZE", "5")
	t.Setenv("HXGRID_SQL_TABLE", "people")

	cfg := testConfig(t)
	if cfg.PageSize != 5 {
		t.Errorf("page size = %d, want 5", cfg.PageSize)
	}
	if cfg.SQL.Table != "people" {
		t.Errorf("sql.table = %q", cfg.SQL.Table)
	}
	// A file and a partial SQL config together are rejected.
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() accepted two sources")
	}
}

func TestConfigureWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	v := viper.New()
	if err := configure(v, ""); err != nil {
		t.Fatalf("a missing hxgrid.yaml should not be an error: %v", err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PageSize != table.DefaultPageSize {
		t.Errorf("page size = %d, want default", cfg.PageSize)
	}
}

func TestValidate(t *testing.T) {
	cols := []dataset.ColumnSpec{{Key: "id", Type: "int", ID: true}}
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"file", Config{Dataset: DatasetConfig{Path: "x.csv", Columns: cols}}, true},
		{"sql", Config{Dataset: DatasetConfig{Columns: cols}, SQL: SQLConfig{Driver: "sqlite3", DSN: ":memory:", Table: "t"}}, true},
		{"no columns", Config{Dataset: DatasetConfig{Path: "x.csv"}}, false},
		{"no source", Config{Dataset: DatasetConfig{Columns: cols}}, false},
		{"partial sql", Config{Dataset: DatasetConfig{Columns: cols}, SQL: SQLConfig{Driver: "postgres"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in   string
		want table.FilterConfig
		ok   bool
	}{
		{"age:gt:30", table.Filter("age", table.GreaterThan, "30"), true},
		{"name:contains:a:b", table.Filter("name", table.Contains, "a:b"), true},
		{"name:=:", table.Filter("name", table.Equals, ""), true},
		{"age:gt", table.FilterConfig{}, false},
		{":gt:1", table.FilterConfig{}, false},
		{"age:between:1", table.FilterConfig{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseFilter(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("parseFilter(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseFilter(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		in   string
		want table.SortConfig
		ok   bool
	}{
		{"", table.SortConfig{}, true},
		{"name", table.SortBy("name", table.Ascending), true},
		{"age:desc", table.SortBy("age", table.Descending), true},
		{"age:none", table.SortBy("age", table.None), true},
		{"age:sideways", table.SortConfig{}, false},
		{":asc", table.SortConfig{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseSort(tt.in)
			if (err == nil) != tt.ok {
				t.Fatalf("parseSort(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("parseSort(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func names(rows []dataset.Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i], _ = r.Values["name"].(string)
	}
	return out
}

func TestRunQuery(t *testing.T) {
	cfg := testConfig(t)
	engine, err := newEngine(cfg)
	if err != nil {
		t.Fatal(err)
	}
	flags := queryFlags{filters: []string{"age:gt:26", "nickname:contains:x"}, sort: "age:desc", page: 1}
	q, err := flags.query(cfg.PageSize)
	if err != nil {
		t.Fatal(err)
	}

	res, err := runQuery(context.Background(), cfg, engine, q, false)
	if err != nil {
		t.Fatalf("runQuery failed: %v", err)
	}
	if got := names(res.rows); !slices.Equal(got, []string{"Carol", "Alice"}) {
		t.Errorf("page rows = %v", got)
	}
	if res.total != 3 || res.state.TotalPages != 2 {
		t.Errorf("total = %d, pages = %d", res.total, res.state.TotalPages)
	}
	if len(res.diagnostics) != 1 || res.diagnostics[0].Code != table.UnknownColumn {
		t.Errorf("diagnostics = %v", res.diagnostics)
	}

	all, err := runQuery(context.Background(), cfg, engine, q, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := names(all.rows); !slices.Equal(got, []string{"Carol", "Alice", "dave"}) {
		t.Errorf("all rows = %v", got)
	}
}

func TestPrintTable(t *testing.T) {
	color.NoColor = true
	cfg := testConfig(t)
	engine, _ := newEngine(cfg)
	rows := []dataset.Record{
		{ID: 1, Values: map[string]any{"id": int64(1), "name": "Alice", "age": int64(30)}},
	}

	var buf bytes.Buffer
	if err := printTable(&buf, engine.Columns(), rows); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("output = %q", buf.String())
	}
	if got := strings.Fields(lines[0]); !slices.Equal(got, []string{"id", "Name", "Age"}) {
		t.Errorf("header = %v", got)
	}
	if got := strings.Fields(lines[1]); !slices.Equal(got, []string{"1", "Alice", "30"}) {
		t.Errorf("row = %v", got)
	}
}

func TestServeMux(t *testing.T) {
	cfg := testConfig(t)
	engine, _ := newEngine(cfg)
	src := dataset.FileSource{Path: cfg.Dataset.Path, Columns: cfg.Dataset.Columns}

	reg := hxgrid.NewRegistry([]byte("serve-test-key"))
	grid := hxgrid.New("data", engine, src, hxgrid.WithPageSize(cfg.PageSize))
	reg.Add(grid)
	mux := newMux(reg, page(grid))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{htmxScript, `id="toasts"`, "Alice", "bob"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
	if strings.Contains(body, "Carol") {
		t.Error("Carol is on page 2")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d", rec.Code)
	}
}

func TestSecretKey(t *testing.T) {
	key, err := secretKey("configured")
	if err != nil || string(key) != "configured" {
		t.Errorf("secretKey = %q, %v", key, err)
	}
	a, _ := secretKey("")
	b, _ := secretKey("")
	if len(a) != 32 || bytes.Equal(a, b) {
		t.Error("generated keys should be random 32 byte keys")
	}
}
