// Package export writes table rows as CSV, JSON or Parquet.
//
// Only the given columns are written, in order, and only when the schema
// has a field for them. Rows are written as given, so callers pass the
// filtered and sorted set they want to export.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/pthm/hxgrid/lib/table"
)

// Format is a supported export format.
type Format int

const (
	FormatCSV Format = iota
	FormatJSON
	FormatParquet
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatParquet:
		return "parquet"
	default:
		return "csv"
	}
}

// Extension is the file extension for f, with the leading dot.
func (f Format) Extension() string {
	return "." + f.String()
}

// ContentType is the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatParquet:
		return "application/vnd.apache.parquet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ParseFormat parses a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "parquet", "pq":
		return FormatParquet, nil
	}
	return FormatCSV, fmt.Errorf("export: unknown format %q", s)
}

// Write writes rows in format f.
func Write[R any](w io.Writer, f Format, schema *table.Schema[R], columns []table.Column, rows []R) error {
	switch f {
	case FormatJSON:
		return JSON(w, schema, columns, rows)
	case FormatParquet:
		return Parquet(w, schema, columns, rows)
	default:
		return CSV(w, schema, columns, rows)
	}
}

type boundColumn[R any] struct {
	table.Column
	field table.Field[R]
}

func bind[R any](schema *table.Schema[R], columns []table.Column) []boundColumn[R] {
	out := make([]boundColumn[R], 0, len(columns))
	for _, c := range columns {
		if f, ok := schema.Lookup(c.Key); ok {
			out = append(out, boundColumn[R]{Column: c, field: f})
		}
	}
	return out
}

// CSV writes a header of column titles followed by one record per row.
func CSV[R any](w io.Writer, schema *table.Schema[R], columns []table.Column, rows []R) error {
	cols := bind(schema, columns)
	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Title
		if header[i] == "" {
			header[i] = c.Key
		}
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("export: write CSV header: %w", err)
	}

	record := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			record[i] = c.field.Text(r)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("export: write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// JSON writes an indented array of objects keyed by column key. Numeric
// fields keep their type.
func JSON[R any](w io.Writer, schema *table.Schema[R], columns []table.Column, rows []R) error {
	cols := bind(schema, columns)
	records := make([]map[string]any, len(rows))
	for i, r := range rows {
		rec := make(map[string]any, len(cols))
		for _, c := range cols {
			rec[c.Key] = c.field.Value(r)
		}
		records[i] = rec
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("export: encode JSON: %w", err)
	}
	return nil
}

// Parquet writes rows as a snappy-compressed Parquet file with the Arrow
// schema stored in the metadata.
func Parquet[R any](w io.Writer, schema *table.Schema[R], columns []table.Column, rows []R) error {
	tbl := Table(schema, columns, rows)
	defer tbl.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(tbl.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("export: create parquet writer: %w", err)
	}
	if err := writer.WriteTable(tbl, max(tbl.NumRows(), 1)); err != nil {
		writer.Close()
		return fmt.Errorf("export: write parquet table: %w", err)
	}
	return writer.Close()
}

// Table builds an Arrow table from rows. String fields become utf8 columns,
// int fields int64 and float fields float64. The caller releases it.
func Table[R any](schema *table.Schema[R], columns []table.Column, rows []R) arrow.Table {
	cols := bind(schema, columns)
	pool := memory.NewGoAllocator()

	fields := make([]arrow.Field, len(cols))
	arrowCols := make([]arrow.Column, len(cols))
	for i, c := range cols {
		fields[i] = arrow.Field{Name: c.Key, Type: arrowType(c.field.Kind)}
		arr := buildArray(pool, fields[i].Type, c.field, rows)
		chunked := arrow.NewChunked(fields[i].Type, []arrow.Array{arr})
		arr.Release()
		arrowCols[i] = *arrow.NewColumn(fields[i], chunked)
		chunked.Release()
	}

	return array.NewTable(arrow.NewSchema(fields, nil), arrowCols, int64(len(rows)))
}

func arrowType(k table.Kind) arrow.DataType {
	switch k {
	case table.KindInt:
		return arrow.PrimitiveTypes.Int64
	case table.KindFloat:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

func buildArray[R any](pool memory.Allocator, dt arrow.DataType, f table.Field[R], rows []R) arrow.Array {
	builder := array.NewBuilder(pool, dt)
	defer builder.Release()
	builder.Reserve(len(rows))

	for _, r := range rows {
		switch b := builder.(type) {
		case *array.Int64Builder:
			v, _ := f.Value(r).(int64)
			b.Append(v)
		case *array.Float64Builder:
			v, _ := f.Value(r).(float64)
			b.Append(v)
		case *array.StringBuilder:
			b.Append(f.Text(r))
		}
	}
	return builder.NewArray()
}
