package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
)

// writeFile renders the schema file for the types found in source.
func (g *Generator) writeFile(source, pkgName string, types []TypeInfo) error {
	base := strings.TrimSuffix(filepath.Base(source), ".go")
	out := filepath.Join(filepath.Dir(source), base+GeneratedSuffix)

	fmt.Fprintf(g.opts.Out, "generating %s\n", out)
	if g.opts.DryRun {
		return nil
	}

	code, err := Render(filepath.Base(source), pkgName, types)
	if err != nil {
		return err
	}
	return os.WriteFile(out, code, 0o644)
}

// Render returns the formatted Go source for types.
func Render(source, pkgName string, types []TypeInfo) ([]byte, error) {
	var buf bytes.Buffer
	err := gridTemplate.Execute(&buf, struct {
		Source  string
		Package string
		Types   []TypeInfo
	}{source, pkgName, types})
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return buf.Bytes(), fmt.Errorf("format source: %w", err)
	}
	return formatted, nil
}

func accessor(f FieldInfo) string {
	if f.Conv == "" {
		return "r." + f.Name
	}
	return f.Conv + "(r." + f.Name + ")"
}

func accessorType(kind string) string {
	switch kind {
	case "Int":
		return "int64"
	case "Float":
		return "float64"
	default:
		return "string"
	}
}

var gridTemplate = template.Must(template.New("grid").Funcs(template.FuncMap{
	"quote":        strconv.Quote,
	"accessor":     accessor,
	"accessorType": accessorType,
}).Parse(`// Code generated by hxgrid generate. DO NOT EDIT.
// Source: {{.Source}}

package {{.Package}}

import "github.com/pthm/hxgrid/lib/table"
{{range $t := .Types}}
// {{.Name}}Schema returns the table schema for {{.Name}}.
func {{.Name}}Schema() *table.Schema[{{.Name}}] {
	return table.NewSchema(
		func(r {{.Name}}) int64 { return {{if .IDConv}}int64(r.{{.IDField}}){{else}}r.{{.IDField}}{{end}} },
		{{- range .Fields}}
		table.{{.Kind}}({{quote .Key}}, func(r {{$t.Name}}) {{accessorType .Kind}} { return {{accessor .}} }),
		{{- end}}
	)
}

// {{.Name}}Columns returns the display columns for {{.Name}}.
func {{.Name}}Columns() []table.Column {
	return []table.Column{
		{{- range .Fields}}
		{Key: {{quote .Key}}, Title: {{quote .Title}}, Sortable: {{.Sortable}}},
		{{- end}}
	}
}

// {{.Name}}Engine returns an engine over {{.Name}}Schema and {{.Name}}Columns.
func {{.Name}}Engine() *table.Engine[{{.Name}}] {
	return table.New({{.Name}}Schema(), {{.Name}}Columns()...)
}
{{end}}`))
