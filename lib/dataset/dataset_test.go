package dataset

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm/hxgrid/lib/export"
	"github.com/pthm/hxgrid/lib/table"
)

var peopleSpecs = []ColumnSpec{
	{Key: "id", Type: "int", ID: true},
	{Key: "name", Title: "Name", Sortable: true},
	{Key: "age", Title: "Age", Type: "int", Sortable: true},
	{Key: "score", Type: "float"},
}

func TestSchemaFor(t *testing.T) {
	schema, cols, err := SchemaFor(peopleSpecs)
	if err != nil {
		t.Fatalf("SchemaFor failed: %v", err)
	}
	if got := schema.Keys(); strings.Join(got, ",") != "id,name,age,score" {
		t.Errorf("Keys() = %v", got)
	}
	if cols[1].Title != "Name" || !cols[1].Sortable {
		t.Errorf("name column = %+v", cols[1])
	}
	if cols[3].Title != "score" {
		t.Errorf("untitled column should use its key, got %q", cols[3].Title)
	}
	f, _ := schema.Lookup("age")
	if f.Kind != table.KindInt {
		t.Errorf("age kind = %v, want int", f.Kind)
	}
}

func TestSchemaForErrors(t *testing.T) {
	tests := []struct {
		name  string
		specs []ColumnSpec
	}{
		{"empty", nil},
		{"missing key", []ColumnSpec{{Title: "x"}}},
		{"duplicate", []ColumnSpec{{Key: "a"}, {Key: "a"}}},
		{"bad type", []ColumnSpec{{Key: "a", Type: "date"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := SchemaFor(tt.specs); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func checkPeople(t *testing.T, recs []Record) {
	t.Helper()
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].ID != 7 || recs[1].ID != 9 {
		t.Errorf("ids = %d,%d, want 7,9", recs[0].ID, recs[1].ID)
	}
	if recs[0].Values["name"] != "Alice" || recs[0].Values["age"] != int64(30) || recs[0].Values["score"] != 1.5 {
		t.Errorf("record 0 = %v", recs[0].Values)
	}
}

func TestLoadJSON(t *testing.T) {
	in := `[{"id": 7, "name": "Alice", "age": 30, "score": 1.5, "extra": true},
	        {"id": 9, "name": "Bob", "age": 25, "score": 2}]`
	recs, err := LoadJSON(strings.NewReader(in), peopleSpecs)
	if err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	checkPeople(t, recs)
	if _, ok := recs[0].Values["extra"]; ok {
		t.Error("keys without a spec should be dropped")
	}
}

func TestLoadYAML(t *testing.T) {
	in := `
- id: 7
  name: Alice
  age: 30
  score: 1.5
- id: 9
  name: Bob
  age: 25
  score: 2
`
	recs, err := LoadYAML(strings.NewReader(in), peopleSpecs)
	if err != nil {
		t.Fatalf("LoadYAML failed: %v", err)
	}
	checkPeople(t, recs)
}

func TestLoadCSV(t *testing.T) {
	in := "id,name,age,score\n7,Alice,30,1.5\n9,Bob,25,2\n"
	recs, err := LoadCSV(strings.NewReader(in), peopleSpecs)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	checkPeople(t, recs)
}

func TestLoadCSVBadNumber(t *testing.T) {
	in := "id,name,age,score\n7,Alice,thirty,1.5\n"
	_, err := LoadCSV(strings.NewReader(in), peopleSpecs)
	if err == nil || !strings.Contains(err.Error(), `column "age"`) {
		t.Errorf("error = %v, want a column error", err)
	}
}

func TestRowNumbersWithoutIDColumn(t *testing.T) {
	specs := []ColumnSpec{{Key: "name"}}
	recs, err := LoadCSV(strings.NewReader("name\na\nb\nc\n"), specs)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	for i, r := range recs {
		if r.ID != int64(i+1) {
			t.Errorf("record %d id = %d, want %d", i, r.ID, i+1)
		}
	}
}

func TestMissingValuesAreZero(t *testing.T) {
	recs, err := LoadJSON(strings.NewReader(`[{"name": "x"}]`), peopleSpecs)
	if err != nil {
		t.Fatalf("LoadJSON failed: %v", err)
	}
	if recs[0].Values["age"] != int64(0) || recs[0].Values["score"] != 0.0 {
		t.Errorf("values = %v, want zero numbers", recs[0].Values)
	}
}

func TestLoadParquet(t *testing.T) {
	schema, cols, err := SchemaFor(peopleSpecs)
	if err != nil {
		t.Fatal(err)
	}
	src := []Record{
		{ID: 7, Values: map[string]any{"id": int64(7), "name": "Alice", "age": int64(30), "score": 1.5}},
		{ID: 9, Values: map[string]any{"id": int64(9), "name": "Bob", "age": int64(25), "score": 2.0}},
	}

	var buf bytes.Buffer
	if err := export.Parquet(&buf, schema, cols, src); err != nil {
		t.Fatalf("export.Parquet failed: %v", err)
	}

	recs, err := LoadParquet(context.Background(), bytes.NewReader(buf.Bytes()), peopleSpecs)
	if err != nil {
		t.Fatalf("LoadParquet failed: %v", err)
	}
	checkPeople(t, recs)
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"people.json": `[{"id":7,"name":"Alice","age":30,"score":1.5},{"id":9,"name":"Bob","age":25,"score":2}]`,
		"people.yml":  "- {id: 7, name: Alice, age: 30, score: 1.5}\n- {id: 9, name: Bob, age: 25, score: 2}\n",
		"people.csv":  "id,name,age,score\n7,Alice,30,1.5\n9,Bob,25,2\n",
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			recs, err := FileSource{Path: path, Columns: peopleSpecs}.Rows(context.Background())
			if err != nil {
				t.Fatalf("Rows failed: %v", err)
			}
			checkPeople(t, recs)
		})
	}

	if _, err := Load(filepath.Join(dir, "people.xlsx"), peopleSpecs); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestRecordsThroughEngine(t *testing.T) {
	schema, cols, err := SchemaFor(peopleSpecs)
	if err != nil {
		t.Fatal(err)
	}
	recs, err := LoadCSV(strings.NewReader("id,name,age,score\n1,Alice,30,1\n2,bob,25,2\n3,Carol,40,3\n"), peopleSpecs)
	if err != nil {
		t.Fatal(err)
	}

	e := table.New(schema, cols...)
	v := e.Compute(recs, table.Query{
		Filters: []table.FilterConfig{table.Filter("age", table.GreaterThan, "26")},
		Sort:    table.SortBy("age", table.Descending),
		Page:    table.Page(1, 10),
	})
	if len(v.Rows) != 2 || v.Rows[0].ID != 3 || v.Rows[1].ID != 1 {
		t.Errorf("rows = %+v, want Carol then Alice", v.Rows)
	}
}
