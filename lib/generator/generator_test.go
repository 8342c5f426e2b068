package generator

import (
	"bytes"
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const personSource = `package people

type Person struct {
	ID     int64   ` + "`grid:\"id,id\"`" + `
	Name   string  ` + "`grid:\"name,title=Full name,sortable\"`" + `
	Age    int     ` + "`grid:\"age,sortable\"`" + `
	Score  float32 ` + "`grid:\"score\"`" + `
	Notes  string  ` + "`grid:\"-\"`" + `
	hidden bool
}

type Plain struct {
	Name string
}
`

func parseSource(t *testing.T, src string) []TypeInfo {
	t.Helper()
	file, err := parser.ParseFile(token.NewFileSet(), "people.go", src, 0)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	types, err := FindTypes(file)
	if err != nil {
		t.Fatalf("FindTypes failed: %v", err)
	}
	return types
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		tag  string
		want TagOptions
		skip bool
	}{
		{"name", TagOptions{Key: "name"}, false},
		{"name,sortable", TagOptions{Key: "name", Sortable: true}, false},
		{"id,id,sortable", TagOptions{Key: "id", ID: true, Sortable: true}, false},
		{"first,title=First name", TagOptions{Key: "first", Title: "First name"}, false},
		{",sortable", TagOptions{Sortable: true}, false},
		{"-", TagOptions{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, skip := ParseTag(tt.tag)
			if got != tt.want || skip != tt.skip {
				t.Errorf("ParseTag(%q) = %+v, %v; want %+v, %v", tt.tag, got, skip, tt.want, tt.skip)
			}
		})
	}
}

func TestFindTypes(t *testing.T) {
	types := parseSource(t, personSource)
	if len(types) != 1 || types[0].Name != "Person" {
		t.Fatalf("types = %+v, want only Person", types)
	}
	p := types[0]
	if p.IDField != "ID" || p.IDConv {
		t.Errorf("id = %s conv=%v", p.IDField, p.IDConv)
	}

	want := []FieldInfo{
		{Name: "ID", GoType: "int64", Key: "id", Title: "ID", Kind: "Int"},
		{Name: "Name", GoType: "string", Key: "name", Title: "Full name", Sortable: true, Kind: "String"},
		{Name: "Age", GoType: "int", Key: "age", Title: "Age", Sortable: true, Kind: "Int", Conv: "int64"},
		{Name: "Score", GoType: "float32", Key: "score", Title: "Score", Kind: "Float", Conv: "float64"},
	}
	if len(p.Fields) != len(want) {
		t.Fatalf("fields = %+v", p.Fields)
	}
	for i := range want {
		if p.Fields[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, p.Fields[i], want[i])
		}
	}
}

func TestFindTypesFallbackID(t *testing.T) {
	types := parseSource(t, "package x\ntype Row struct {\n\tID int\n\tName string `grid:\"name\"`\n}\n")
	if types[0].IDField != "ID" || !types[0].IDConv {
		t.Errorf("IDField = %q conv=%v", types[0].IDField, types[0].IDConv)
	}
	if len(types[0].Fields) != 1 {
		t.Errorf("untagged ID should not become a column: %+v", types[0].Fields)
	}
}

func TestFindTypesErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"no id", "package x\ntype Row struct {\n\tName string `grid:\"name\"`\n}\n", ErrNoID},
		{"unsupported", "package x\ntype Row struct {\n\tID int64\n\tTags []string `grid:\"tags\"`\n}\n", ErrUnsupportedType},
		{"string id", "package x\ntype Row struct {\n\tCode string `grid:\"code,id\"`\n}\n", ErrUnsupportedType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := parser.ParseFile(token.NewFileSet(), "x.go", tt.src, 0)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := FindTypes(file); !errors.Is(err, tt.want) {
				t.Errorf("FindTypes error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	code, err := Render("people.go", "people", parseSource(t, personSource))
	if err != nil {
		t.Fatalf("Render failed: %v\n%s", err, code)
	}
	src := string(code)

	if _, err := parser.ParseFile(token.NewFileSet(), "people_grid.go", code, 0); err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, src)
	}
	for _, want := range []string{
		"// Code generated by hxgrid generate. DO NOT EDIT.",
		"func PersonSchema() *table.Schema[Person]",
		`func(r Person) int64 { return r.ID }`,
		`table.String("name", func(r Person) string { return r.Name })`,
		`table.Int("age", func(r Person) int64 { return int64(r.Age) })`,
		`table.Float("score", func(r Person) float64 { return float64(r.Score) })`,
		`{Key: "name", Title: "Full name", Sortable: true}`,
		`{Key: "score", Title: "Score", Sortable: false}`,
		"func PersonEngine() *table.Engine[Person]",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated code missing %q\n%s", want, src)
		}
	}
	if strings.Contains(src, "Notes") || strings.Contains(src, "hidden") {
		t.Error("skipped fields leaked into the output")
	}
}

func TestGenerateAndClean(t *testing.T) {
	dir := t.TempDir()
	pkg := filepath.Join(dir, "people")
	if err := os.MkdirAll(filepath.Join(dir, "_skip"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(pkg, 0o755); err != nil {
		t.Fatal(err)
	}
	write := func(path, src string) {
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(filepath.Join(pkg, "person.go"), personSource)
	write(filepath.Join(pkg, "person_test.go"), "package people\n")
	write(filepath.Join(dir, "_skip", "bad.go"), "package skip\ntype Bad struct {\n\tX string `grid:\"x\"`\n}\n")

	var out bytes.Buffer
	if err := New(Options{DryRun: true, Out: &out}).Generate(dir + "/..."); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	generated := filepath.Join(pkg, "person_grid.go")
	if _, err := os.Stat(generated); !os.IsNotExist(err) {
		t.Error("dry run wrote a file")
	}
	if !strings.Contains(out.String(), "generating "+generated) {
		t.Errorf("output = %q", out.String())
	}

	g := New(Options{Out: &out})
	if err := g.Generate(dir + "/..."); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := os.Stat(generated); err != nil {
		t.Fatalf("generated file missing: %v", err)
	}

	// Generated files are not inputs.
	if err := g.Generate(pkg); err != nil {
		t.Fatalf("second Generate failed: %v", err)
	}

	if err := g.Clean(dir + "/..."); err != nil {
		t.Fatalf("Clean failed: %v", err)
	}
	if _, err := os.Stat(generated); !os.IsNotExist(err) {
		t.Error("Clean left the generated file")
	}
	if _, err := os.Stat(filepath.Join(pkg, "person.go")); err != nil {
		t.Error("Clean removed a source file")
	}
}
