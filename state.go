package hxgrid

import (
	"github.com/pthm/hxgrid/lib/table"
)

// State is the part of a grid's state that travels in the URL token.
// Rows are never serialised; they are reloaded from the RowSource on each
// request.
type State struct {
	Filters  []FilterState `msgpack:"f,omitempty"`
	SortKey  string        `msgpack:"sk,omitempty"`
	SortDir  int8          `msgpack:"sd,omitempty"`
	Page     int           `msgpack:"p,omitempty"`
	PageSize int           `msgpack:"ps,omitempty"`
	Selected []int64       `msgpack:"s,omitempty"`
}

// FilterState is the wire form of a table.FilterConfig.
type FilterState struct {
	Key      string `msgpack:"k"`
	Op       int8   `msgpack:"o"`
	Value    string `msgpack:"v"`
	Inactive bool   `msgpack:"x,omitempty"`
}

// StateOf captures the serialisable part of ts.
func StateOf[R any](ts table.State[R]) State {
	st := State{
		SortKey:  ts.Sort.ColumnKey,
		SortDir:  int8(ts.Sort.Direction),
		Page:     ts.Page.CurrentPage,
		PageSize: ts.Page.PageSize,
		Selected: ts.Selection.IDs(),
	}
	if len(ts.Filters) > 0 {
		st.Filters = make([]FilterState, len(ts.Filters))
		for i, f := range ts.Filters {
			st.Filters[i] = FilterState{
				Key:      f.ColumnKey,
				Op:       int8(f.Operator),
				Value:    f.Value,
				Inactive: !f.Active,
			}
		}
	}
	return st
}

// ApplyState overlays st onto ts. A zero page size keeps ts's page size.
// Filters with an unknown operator are dropped and an unknown sort
// direction leaves the grid unsorted.
func ApplyState[R any](st State, ts table.State[R]) table.State[R] {
	filters := make([]table.FilterConfig, 0, len(st.Filters))
	for _, f := range st.Filters {
		op := table.Operator(f.Op)
		if !op.Valid() {
			continue
		}
		filters = append(filters, table.FilterConfig{
			ColumnKey: f.Key,
			Operator:  op,
			Value:     f.Value,
			Active:    !f.Inactive,
		})
	}
	ts.Filters = filters

	dir := table.Direction(st.SortDir)
	if !dir.Valid() {
		dir = table.None
	}
	ts.Sort = table.SortBy(st.SortKey, dir)
	if st.PageSize > 0 {
		ts.Page.PageSize = st.PageSize
	}
	ts.Page.CurrentPage = max(st.Page, 1)
	ts.Selection = table.Selection(st.Selected...)
	return ts
}
