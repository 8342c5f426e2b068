package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadJSON reads a JSON array of objects.
func LoadJSON(r io.Reader, specs []ColumnSpec) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("dataset: decode JSON: %w", err)
	}
	return Build(raw, specs)
}

// LoadYAML reads a YAML sequence of mappings.
func LoadYAML(r io.Reader, specs []ColumnSpec) ([]Record, error) {
	var raw []map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dataset: decode YAML: %w", err)
	}
	return Build(raw, specs)
}

// LoadCSV reads a CSV file whose first record names the columns.
func LoadCSV(r io.Reader, specs []ColumnSpec) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Build(nil, specs)
	}
	if err != nil {
		return nil, fmt.Errorf("dataset: read CSV header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	var raw []map[string]any
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("dataset: read CSV: %w", err)
		}
		row := make(map[string]any, len(header))
		for i, h := range header {
			row[h] = rec[i]
		}
		raw = append(raw, row)
	}
	return Build(raw, specs)
}

// Load reads path, choosing the format from its extension: .json, .yaml,
// .yml, .csv or .parquet.
func Load(path string, specs []ColumnSpec) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return LoadJSON(f, specs)
	case ".yaml", ".yml":
		return LoadYAML(f, specs)
	case ".csv":
		return LoadCSV(f, specs)
	case ".parquet":
		return LoadParquet(context.Background(), f, specs)
	default:
		return nil, fmt.Errorf("dataset: unsupported file type %q", ext)
	}
}

// FileSource reloads a dataset file on every call, so edits to the file
// show up on the next request.
type FileSource struct {
	Path    string
	Columns []ColumnSpec
}

// Rows loads the file.
func (s FileSource) Rows(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(s.Path, s.Columns)
}
