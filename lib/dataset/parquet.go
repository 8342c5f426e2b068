package dataset

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
)

// LoadParquet reads a Parquet file. Columns are matched to specs by name;
// string, integer, floating point and boolean columns are supported.
func LoadParquet(ctx context.Context, r parquet.ReaderAtSeeker, specs []ColumnSpec) ([]Record, error) {
	pf, err := file.NewParquetReader(r, file.WithReadProps(&parquet.ReaderProperties{}))
	if err != nil {
		return nil, fmt.Errorf("dataset: open parquet: %w", err)
	}
	defer pf.Close()

	reader, err := pqarrow.NewFileReader(pf, pqarrow.ArrowReadProperties{}, memory.NewGoAllocator())
	if err != nil {
		return nil, fmt.Errorf("dataset: create arrow reader: %w", err)
	}
	tbl, err := reader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("dataset: read parquet: %w", err)
	}
	defer tbl.Release()

	raw := make([]map[string]any, 0, tbl.NumRows())
	tr := array.NewTableReader(tbl, tbl.NumRows())
	defer tr.Release()

	for tr.Next() {
		rec := tr.Record()
		schema := rec.Schema()
		for row := 0; row < int(rec.NumRows()); row++ {
			values := make(map[string]any, rec.NumCols())
			for i, col := range rec.Columns() {
				values[schema.Field(i).Name] = arrowValue(col, row)
			}
			raw = append(raw, values)
		}
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("dataset: read parquet: %w", err)
	}
	return Build(raw, specs)
}

func arrowValue(col arrow.Array, pos int) any {
	if col.IsNull(pos) {
		return nil
	}
	switch c := col.(type) {
	case *array.String:
		return c.Value(pos)
	case *array.LargeString:
		return c.Value(pos)
	case *array.Int64:
		return c.Value(pos)
	case *array.Int32:
		return c.Value(pos)
	case *array.Int16:
		return int64(c.Value(pos))
	case *array.Int8:
		return int64(c.Value(pos))
	case *array.Uint64:
		return c.Value(pos)
	case *array.Uint32:
		return int64(c.Value(pos))
	case *array.Float64:
		return c.Value(pos)
	case *array.Float32:
		return c.Value(pos)
	case *array.Boolean:
		return fmt.Sprint(c.Value(pos))
	default:
		return col.ValueStr(pos)
	}
}
