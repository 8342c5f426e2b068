package table

import (
	"fmt"
	"slices"
)

// Engine binds a schema to the configured columns. It is immutable after
// construction and safe to share between goroutines.
type Engine[R any] struct {
	schema  *Schema[R]
	columns []Column
	byKey   map[string]Column
}

// New returns an engine for schema. When no columns are given, one
// sortable column per schema field is used.
func New[R any](schema *Schema[R], columns ...Column) *Engine[R] {
	if len(columns) == 0 {
		columns = schema.Columns()
	}
	e := &Engine[R]{
		schema:  schema,
		columns: slices.Clone(columns),
		byKey:   make(map[string]Column, len(columns)),
	}
	for _, c := range columns {
		e.byKey[c.Key] = c
	}
	return e
}

// Schema returns the engine's schema.
func (e *Engine[R]) Schema() *Schema[R] {
	return e.schema
}

// Columns returns a copy of the configured columns.
func (e *Engine[R]) Columns() []Column {
	return slices.Clone(e.columns)
}

// Column returns the column configured under key.
func (e *Engine[R]) Column(key string) (Column, bool) {
	c, ok := e.byKey[key]
	return c, ok
}

// View is the output of one pipeline run.
type View[R any] struct {
	// Rows is the visible page.
	Rows []R
	// Filtered holds every row that passed the filters, in sorted order.
	Filtered []R
	// Page is the input pagination with TotalPages filled in.
	Page        PaginationState
	Diagnostics []Diagnostic
}

// FilteredCount is the number of rows that passed the filters.
func (v View[R]) FilteredCount() int {
	return len(v.Filtered)
}

// TotalPages is the page count for the filtered rows.
func (v View[R]) TotalPages() int {
	return v.Page.TotalPages
}

// Compute runs filter, sort and paginate over rows. The rows slice is not
// modified. The result depends only on the arguments.
func (e *Engine[R]) Compute(rows []R, q Query) View[R] {
	preds, diags := compileFilters(e.schema, q.Filters)
	filtered := applyFilters(rows, preds)

	sortDiags := e.sortRows(filtered, q.Sort)
	diags = append(diags, sortDiags...)

	page, pageDiags := normalizePage(q.Page, len(filtered))
	diags = append(diags, pageDiags...)

	return View[R]{
		Rows:        paginate(filtered, page),
		Filtered:    filtered,
		Page:        page,
		Diagnostics: diags,
	}
}

// VisibleRows returns only the visible page for the given inputs.
func (e *Engine[R]) VisibleRows(rows []R, filters []FilterConfig, sort SortConfig, page PaginationState) []R {
	return e.Compute(rows, Query{Filters: filters, Sort: sort, Page: page}).Rows
}

// FilteredCount runs only the filter stage and returns the count of
// surviving rows.
func (e *Engine[R]) FilteredCount(rows []R, filters []FilterConfig) int {
	preds, _ := compileFilters(e.schema, filters)
	if len(preds) == 0 {
		return len(rows)
	}
	n := 0
next:
	for _, r := range rows {
		for _, p := range preds {
			if !p(r) {
				continue next
			}
		}
		n++
	}
	return n
}

// sortRows sorts rows in place. rows must be owned by the caller of
// sortRows (Compute passes its freshly filtered copy).
func (e *Engine[R]) sortRows(rows []R, sc SortConfig) []Diagnostic {
	sc = sc.Normalize()
	if !sc.Active {
		return nil
	}
	field, ok := e.schema.Lookup(sc.ColumnKey)
	if !ok {
		return []Diagnostic{{Code: UnknownColumn, ColumnKey: sc.ColumnKey, Message: "sort ignored"}}
	}
	if col, configured := e.byKey[sc.ColumnKey]; configured && !col.Sortable {
		return []Diagnostic{{Code: NotSortable, ColumnKey: sc.ColumnKey, Message: "sort ignored"}}
	}

	cmp := field.Compare
	if sc.Direction == Descending {
		cmp = func(a, b R) int { return field.Compare(b, a) }
	}
	slices.SortStableFunc(rows, cmp)
	return nil
}

func normalizePage(p PaginationState, count int) (PaginationState, []Diagnostic) {
	var diags []Diagnostic
	if p.PageSize <= 0 {
		diags = append(diags, Diagnostic{
			Code:    InvalidPageSize,
			Message: fmt.Sprintf("page size %d, using %d", p.PageSize, DefaultPageSize),
		})
		p.PageSize = DefaultPageSize
	}
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	p.TotalPages = TotalPages(count, p.PageSize)
	if p.CurrentPage > p.TotalPages {
		diags = append(diags, Diagnostic{
			Code:    PageOutOfRange,
			Message: fmt.Sprintf("page %d of %d", p.CurrentPage, p.TotalPages),
		})
	}
	return p, diags
}

func paginate[R any](rows []R, p PaginationState) []R {
	if len(rows) == 0 || p.CurrentPage-1 >= TotalPages(len(rows), p.PageSize) {
		return []R{}
	}
	// CurrentPage-1 < TotalPages bounds start below len(rows).
	start := (p.CurrentPage - 1) * p.PageSize
	end := start + min(p.PageSize, len(rows)-start)
	return rows[start:end:end]
}

// TotalPages returns ceil(count/pageSize), never less than 1. A
// non-positive page size counts as DefaultPageSize.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if count <= 0 {
		return 1
	}
	return (count-1)/pageSize + 1
}
