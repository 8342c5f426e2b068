package table

import "slices"

// State is the full table state for one display session. It is a value:
// every method returns an updated copy and leaves the receiver untouched.
type State[R any] struct {
	Rows      []R
	Columns   []Column
	Loading   bool
	Err       string
	Filters   []FilterConfig
	Sort      SortConfig
	Page      PaginationState
	Selection SelectionState
}

// NewState returns an empty state with the given page size.
func NewState[R any](pageSize int) State[R] {
	return State[R]{Page: Page(1, pageSize)}
}

// Query returns the pipeline inputs held by the state.
func (s State[R]) Query() Query {
	return Query{Filters: s.Filters, Sort: s.Sort, Page: s.Page}
}

// View computes the visible rows for the state.
func (s State[R]) View(e *Engine[R]) View[R] {
	return e.Compute(s.Rows, s.Query())
}

// WithRows replaces the row set. Loading and Err are cleared; the current
// page is kept, callers clamp it with SetPage if needed.
func (s State[R]) WithRows(rows []R) State[R] {
	s.Rows = rows
	s.Loading = false
	s.Err = ""
	return s
}

func (s State[R]) WithColumns(cols []Column) State[R] {
	s.Columns = slices.Clone(cols)
	return s
}

func (s State[R]) WithLoading(loading bool) State[R] {
	s.Loading = loading
	return s
}

// WithError records a load failure message. An empty message clears it.
func (s State[R]) WithError(msg string) State[R] {
	s.Err = msg
	s.Loading = false
	return s
}

// WithFilters replaces the filter list and returns to the first page.
func (s State[R]) WithFilters(filters []FilterConfig) State[R] {
	s.Filters = slices.Clone(filters)
	s.Page.CurrentPage = 1
	return s
}

// AddFilter replaces any filter on the same column and operator, appends
// otherwise, and returns to the first page.
func (s State[R]) AddFilter(f FilterConfig) State[R] {
	filters := slices.Clone(s.Filters)
	i := slices.IndexFunc(filters, func(x FilterConfig) bool {
		return x.ColumnKey == f.ColumnKey && x.Operator == f.Operator
	})
	if i >= 0 {
		filters[i] = f
	} else {
		filters = append(filters, f)
	}
	s.Filters = filters
	s.Page.CurrentPage = 1
	return s
}

func (s State[R]) ClearFilters() State[R] {
	s.Filters = nil
	s.Page.CurrentPage = 1
	return s
}

// ToggleSort cycles the sort on key.
func (s State[R]) ToggleSort(key string) State[R] {
	s.Sort = CycleSort(s.Sort, key)
	return s
}

func (s State[R]) ToggleSelection(id int64) State[R] {
	s.Selection = ToggleSelection(s.Selection, id)
	return s
}

// SelectPage selects every row on the visible page, or deselects them all
// when they are already selected.
func (s State[R]) SelectPage(e *Engine[R]) State[R] {
	v := s.View(e)
	ids := make([]int64, len(v.Rows))
	for i, r := range v.Rows {
		ids[i] = e.schema.ID(r)
	}
	if len(ids) > 0 && s.Selection.SelectAll(ids).Equal(s.Selection) {
		s.Selection = s.Selection.DeselectAll(ids)
	} else {
		s.Selection = s.Selection.SelectAll(ids)
	}
	return s
}

// SetPage moves to page n, clamped by the current filtered row count.
func (s State[R]) SetPage(e *Engine[R], n int) State[R] {
	s.Page = SetPage(s.Page, n, e.FilteredCount(s.Rows, s.Filters))
	return s
}

// SetPageSize changes the page size and returns to the first page.
func (s State[R]) SetPageSize(size int) State[R] {
	if size <= 0 {
		size = DefaultPageSize
	}
	s.Page.PageSize = size
	s.Page.CurrentPage = 1
	return s
}
