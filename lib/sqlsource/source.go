package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	errs "github.com/bdlm/errors"
	"github.com/bdlm/log"

	"github.com/pthm/hxgrid/lib/dataset"
	"github.com/pthm/hxgrid/lib/table"
)

// Source reads records from one table through database/sql.
type Source struct {
	db *sql.DB
	b  *Builder
}

// New returns a source over db. The driver must match the builder's dialect.
func New(db *sql.DB, b *Builder) *Source {
	return &Source{db: db, b: b}
}

// Open connects with driver and dsn, pings, and builds a source for
// tableName. Drivers are registered by blank imports in the binary.
func Open(ctx context.Context, driver, dsn, tableName string, specs []dataset.ColumnSpec) (*Source, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	b, err := NewBuilder(tableName, specs, dialect)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errs.Wrap(err, 0, "sqlsource: open %s", driver)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errs.Wrap(err, 0, "sqlsource: ping %s", driver)
	}
	return New(db, b), nil
}

// Close closes the underlying database.
func (s *Source) Close() error {
	return s.db.Close()
}

// Rows loads every row of the table, ordered by id.
func (s *Source) Rows(ctx context.Context) ([]dataset.Record, error) {
	query, args, err := s.b.All().ToSql()
	if err != nil {
		return nil, err
	}
	return s.query(ctx, query, args)
}

// PageResult is one page of rows computed by the database.
type PageResult struct {
	Rows        []dataset.Record
	Total       int
	Page        table.PaginationState
	Diagnostics []table.Diagnostic
}

// Page runs q in the database. Diagnostics match what the engine would
// report for the same query, in the same order.
func (s *Source) Page(ctx context.Context, q table.Query) (PageResult, error) {
	countQ, diags := s.b.Count(q)
	_, sortDiags := s.b.orderBy(q.Sort)
	diags = append(diags, sortDiags...)

	query, args, err := countQ.ToSql()
	if err != nil {
		return PageResult{}, err
	}
	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return PageResult{}, errs.Wrap(err, 0, "sqlsource: count")
	}

	p := q.Page
	if p.PageSize <= 0 {
		diags = append(diags, table.Diagnostic{
			Code:    table.InvalidPageSize,
			Message: fmt.Sprintf("page size %d, using %d", p.PageSize, table.DefaultPageSize),
		})
		p.PageSize = table.DefaultPageSize
	}
	p.CurrentPage = max(p.CurrentPage, 1)
	p.TotalPages = table.TotalPages(total, p.PageSize)

	out := PageResult{Rows: []dataset.Record{}, Total: total, Page: p, Diagnostics: diags}
	if p.CurrentPage > p.TotalPages {
		out.Diagnostics = append(out.Diagnostics, table.Diagnostic{
			Code:    table.PageOutOfRange,
			Message: fmt.Sprintf("page %d of %d", p.CurrentPage, p.TotalPages),
		})
		return out, nil
	}

	q.Page = p
	sel, _ := s.b.Select(q)
	query, args, err = sel.ToSql()
	if err != nil {
		return PageResult{}, err
	}
	if out.Rows, err = s.query(ctx, query, args); err != nil {
		return PageResult{}, err
	}
	return out, nil
}

func (s *Source) query(ctx context.Context, query string, args []any) ([]dataset.Record, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.Wrap(err, 0, "sqlsource: query")
	}
	defer rows.Close()

	names := s.b.columnNames()
	var raw []map[string]any
	for rows.Next() {
		values := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errs.Wrap(err, 0, "sqlsource: scan")
		}
		row := make(map[string]any, len(names))
		for i, n := range names {
			row[n] = normalize(values[i])
		}
		raw = append(raw, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, 0, "sqlsource: rows")
	}

	log.WithFields(log.Fields{
		"table":    s.b.table,
		"rows":     len(raw),
		"duration": time.Since(start).String(),
	}).Debugf("sql query")

	return dataset.Build(raw, s.b.specs)
}

// normalize maps driver values onto the types dataset.Build understands.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return v
	}
}
