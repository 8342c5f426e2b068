// Package generator writes table schemas for Go structs tagged with grid.
//
//	type Person struct {
//	    ID    int64  `grid:"id,id"`
//	    Name  string `grid:"name,title=Full name,sortable"`
//	    Age   int    `grid:"age,sortable"`
//	    Notes string `grid:"-"`
//	}
//
// For each source file declaring tagged structs, Generate writes
// <file>_grid.go with PersonSchema, PersonColumns and PersonEngine.
package generator

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
)

// GeneratedSuffix marks files written by the generator.
const GeneratedSuffix = "_grid.go"

var (
	ErrNoID            = errors.New("generator: no id field")
	ErrUnsupportedType = errors.New("generator: unsupported field type")
)

// Options configures the generator.
type Options struct {
	// DryRun reports what would be written or removed without touching
	// the filesystem.
	DryRun bool
	// Out receives progress lines. Defaults to os.Stdout.
	Out io.Writer
}

// Generator generates grid schema code.
type Generator struct {
	opts Options
	fset *token.FileSet
}

// New creates a new generator.
func New(opts Options) *Generator {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Generator{
		opts: opts,
		fset: token.NewFileSet(),
	}
}

// Generate writes schema files for the given package patterns. A pattern is
// a directory or a directory followed by /... for a recursive walk.
func (g *Generator) Generate(patterns ...string) error {
	packages, err := g.findPackages(patterns)
	if err != nil {
		return err
	}

	for _, pkg := range packages {
		if err := g.generatePackage(pkg); err != nil {
			return fmt.Errorf("package %s: %w", pkg, err)
		}
	}
	return nil
}

// Clean removes generated files for the given package patterns.
func (g *Generator) Clean(patterns ...string) error {
	packages, err := g.findPackages(patterns)
	if err != nil {
		return err
	}

	for _, pkg := range packages {
		if err := g.cleanPackage(pkg); err != nil {
			return fmt.Errorf("package %s: %w", pkg, err)
		}
	}
	return nil
}

// findPackages resolves package patterns to directory paths.
func (g *Generator) findPackages(patterns []string) ([]string, error) {
	var packages []string

	for _, pattern := range patterns {
		if !strings.HasSuffix(pattern, "/...") {
			packages = append(packages, pattern)
			continue
		}

		root := strings.TrimSuffix(pattern, "/...")
		if root == "" {
			root = "."
		}
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			// The go tool ignores these too.
			base := d.Name()
			if path != root && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") || base == "vendor" || base == "testdata") {
				return filepath.SkipDir
			}
			if hasGoFiles(path) {
				packages = append(packages, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return packages, nil
}

func hasGoFiles(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && isSource(e.Name()) {
			return true
		}
	}
	return false
}

// isSource reports whether name is a Go file the generator should read.
func isSource(name string) bool {
	return strings.HasSuffix(name, ".go") &&
		!strings.HasSuffix(name, "_test.go") &&
		!strings.HasSuffix(name, GeneratedSuffix)
}

func (g *Generator) generatePackage(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.IsDir() || !isSource(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		file, err := parser.ParseFile(g.fset, path, nil, parser.ParseComments)
		if err != nil {
			return err
		}

		types, err := FindTypes(file)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name(), err)
		}
		if len(types) == 0 {
			continue
		}
		if err := g.writeFile(path, file.Name.Name, types); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) cleanPackage(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), GeneratedSuffix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		fmt.Fprintf(g.opts.Out, "removing %s\n", path)
		if g.opts.DryRun {
			continue
		}
		if err := os.Remove(path); err != nil {
			return err
		}
	}
	return nil
}

// TypeInfo describes one tagged struct.
type TypeInfo struct {
	Name    string
	IDField string
	IDConv  bool // ID needs an int64 conversion
	Fields  []FieldInfo
}

// FieldInfo describes one column field.
type FieldInfo struct {
	Name     string
	GoType   string
	Key      string
	Title    string
	Sortable bool
	Kind     string // String, Int or Float
	Conv     string // conversion wrapped around the field, if any
}

// FindTypes returns the structs in file that carry at least one grid tag,
// sorted by name.
func FindTypes(file *ast.File) ([]TypeInfo, error) {
	var types []TypeInfo

	for _, decl := range file.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok || ts.TypeParams != nil {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || !hasGridTag(st) {
				continue
			}
			info, err := inspectStruct(ts.Name.Name, st)
			if err != nil {
				return nil, fmt.Errorf("type %s: %w", ts.Name.Name, err)
			}
			types = append(types, info)
		}
	}

	sort.Slice(types, func(i, j int) bool { return types[i].Name < types[j].Name })
	return types, nil
}

func hasGridTag(st *ast.StructType) bool {
	for _, f := range st.Fields.List {
		if _, ok := gridTag(f); ok {
			return true
		}
	}
	return false
}

func gridTag(f *ast.Field) (string, bool) {
	if f.Tag == nil {
		return "", false
	}
	return reflect.StructTag(strings.Trim(f.Tag.Value, "`")).Lookup("grid")
}

func inspectStruct(name string, st *ast.StructType) (TypeInfo, error) {
	info := TypeInfo{Name: name}
	var fallbackID string

	for _, f := range st.Fields.List {
		if len(f.Names) == 0 {
			continue
		}
		goType := typeString(f.Type)
		kind, conv := kindOf(goType)
		fieldName := f.Names[0].Name

		tag, tagged := gridTag(f)
		if !tagged {
			if fieldName == "ID" && kind == "Int" {
				fallbackID = fieldName
			}
			continue
		}

		opts, skip := ParseTag(tag)
		if skip {
			continue
		}
		if kind == "" {
			return info, fmt.Errorf("%w: %s %s", ErrUnsupportedType, fieldName, goType)
		}
		if opts.ID {
			if kind != "Int" {
				return info, fmt.Errorf("%w: id field %s must be an integer", ErrUnsupportedType, fieldName)
			}
			info.IDField = fieldName
			info.IDConv = conv != ""
		}

		for _, n := range f.Names {
			key := opts.Key
			if key == "" || len(f.Names) > 1 {
				key = strings.ToLower(n.Name)
			}
			title := opts.Title
			if title == "" {
				title = n.Name
			}
			info.Fields = append(info.Fields, FieldInfo{
				Name:     n.Name,
				GoType:   goType,
				Key:      key,
				Title:    title,
				Sortable: opts.Sortable,
				Kind:     kind,
				Conv:     conv,
			})
		}
	}

	if info.IDField == "" {
		if fallbackID == "" {
			return info, ErrNoID
		}
		info.IDField = fallbackID
		info.IDConv = true
	}
	return info, nil
}

// TagOptions is a parsed grid tag.
type TagOptions struct {
	Key      string
	Title    string
	Sortable bool
	ID       bool
}

// ParseTag parses `key[,title=Title][,sortable][,id]`. A tag of "-"
// reports skip.
func ParseTag(tag string) (opts TagOptions, skip bool) {
	if tag == "-" {
		return opts, true
	}
	parts := strings.Split(tag, ",")
	opts.Key = strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		switch {
		case p == "sortable":
			opts.Sortable = true
		case p == "id":
			opts.ID = true
		case strings.HasPrefix(p, "title="):
			opts.Title = strings.TrimPrefix(p, "title=")
		}
	}
	return opts, false
}

// kindOf maps a Go type to a table field constructor and the conversion
// needed to reach its accessor type.
func kindOf(goType string) (kind, conv string) {
	switch goType {
	case "string":
		return "String", ""
	case "int64":
		return "Int", ""
	case "int", "int8", "int16", "int32", "uint", "uint8", "uint16", "uint32":
		return "Int", "int64"
	case "float64":
		return "Float", ""
	case "float32":
		return "Float", "float64"
	}
	return "", ""
}

func typeString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + typeString(t.X)
	case *ast.SelectorExpr:
		return typeString(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		return "[]" + typeString(t.Elt)
	case *ast.MapType:
		return "map[" + typeString(t.Key) + "]" + typeString(t.Value)
	default:
		return fmt.Sprintf("%T", expr)
	}
}
