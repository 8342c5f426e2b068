// Package dataset loads untyped tabular files into records the table engine
// can work with.
//
// A dataset is described by a list of ColumnSpecs. Values are normalised
// at load time to the column's type, so accessors never convert.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pthm/hxgrid/lib/table"
)

// ErrNoColumns is returned when a dataset is described without columns.
var ErrNoColumns = errors.New("dataset: no columns configured")

// Record is one row of a dataset.
type Record struct {
	ID     int64
	Values map[string]any
}

// ColumnSpec describes one dataset column.
type ColumnSpec struct {
	Key      string `yaml:"key" mapstructure:"key"`
	Title    string `yaml:"title" mapstructure:"title"`
	Type     string `yaml:"type" mapstructure:"type"`
	Sortable bool   `yaml:"sortable" mapstructure:"sortable"`
	// ID marks the column holding the row identifier. Without one, rows
	// are numbered from 1 in file order.
	ID bool `yaml:"id" mapstructure:"id"`
}

func (c ColumnSpec) kind() (table.Kind, error) {
	if c.Type == "" {
		return table.KindString, nil
	}
	k, ok := table.ParseKind(c.Type)
	if !ok {
		return 0, fmt.Errorf("dataset: column %q has unknown type %q", c.Key, c.Type)
	}
	return k, nil
}

func (c ColumnSpec) title() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Key
}

// SchemaFor builds the schema and display columns for specs.
func SchemaFor(specs []ColumnSpec) (*table.Schema[Record], []table.Column, error) {
	if len(specs) == 0 {
		return nil, nil, ErrNoColumns
	}

	fields := make([]table.Field[Record], 0, len(specs))
	columns := make([]table.Column, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if spec.Key == "" {
			return nil, nil, errors.New("dataset: column without key")
		}
		if seen[spec.Key] {
			return nil, nil, fmt.Errorf("dataset: duplicate column %q", spec.Key)
		}
		seen[spec.Key] = true

		kind, err := spec.kind()
		if err != nil {
			return nil, nil, err
		}
		fields = append(fields, field(spec.Key, kind))
		columns = append(columns, table.Column{Key: spec.Key, Title: spec.title(), Sortable: spec.Sortable})
	}

	schema := table.NewSchema(func(r Record) int64 { return r.ID }, fields...)
	return schema, columns, nil
}

func field(key string, kind table.Kind) table.Field[Record] {
	switch kind {
	case table.KindInt:
		return table.Int(key, func(r Record) int64 {
			v, _ := r.Values[key].(int64)
			return v
		})
	case table.KindFloat:
		return table.Float(key, func(r Record) float64 {
			v, _ := r.Values[key].(float64)
			return v
		})
	default:
		return table.String(key, func(r Record) string {
			v, _ := r.Values[key].(string)
			return v
		})
	}
}

// Build turns raw rows, keyed by column key, into records. Values are
// converted to each column's type; keys without a spec are dropped.
func Build(raw []map[string]any, specs []ColumnSpec) ([]Record, error) {
	if len(specs) == 0 {
		return nil, ErrNoColumns
	}
	kinds := make([]table.Kind, len(specs))
	for i, spec := range specs {
		k, err := spec.kind()
		if err != nil {
			return nil, err
		}
		kinds[i] = k
	}

	records := make([]Record, len(raw))
	for n, row := range raw {
		rec := Record{ID: int64(n + 1), Values: make(map[string]any, len(specs))}
		for i, spec := range specs {
			v, err := convert(row[spec.Key], kinds[i])
			if err != nil {
				return nil, fmt.Errorf("dataset: row %d column %q: %w", n+1, spec.Key, err)
			}
			rec.Values[spec.Key] = v
			if spec.ID {
				id, err := convert(row[spec.Key], table.KindInt)
				if err != nil {
					return nil, fmt.Errorf("dataset: row %d id: %w", n+1, err)
				}
				rec.ID = id.(int64)
			}
		}
		records[n] = rec
	}
	return records, nil
}

// convert normalises v to string, int64 or float64. nil and empty strings
// become the zero value.
func convert(v any, kind table.Kind) (any, error) {
	switch kind {
	case table.KindInt:
		return toInt(v)
	case table.KindFloat:
		return toFloat(v)
	default:
		return toString(v), nil
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", x)
		}
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), nil
	case json.Number:
		return x.Int64()
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, nil
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", x)
		}
		return n, nil
	}
	return 0, fmt.Errorf("unsupported value %T", v)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case json.Number:
		return x.Float64()
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", x)
		}
		return f, nil
	}
	return 0, fmt.Errorf("unsupported value %T", v)
}
