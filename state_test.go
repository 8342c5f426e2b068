package hxgrid

import (
	"net/url"
	"slices"
	"testing"

	"github.com/pthm/hxgrid/lib/encoding"
	"github.com/pthm/hxgrid/lib/table"
)

func TestStateTokenRoundTrip(t *testing.T) {
	codec, err := NewCodec([]byte("state-key"))
	if err != nil {
		t.Fatal(err)
	}

	ts := table.NewState[person](25).
		AddFilter(table.Filter("age", table.GreaterThan, "30")).
		ToggleSort("name").
		ToggleSelection(9).
		ToggleSelection(2)
	ts.Filters = append(ts.Filters, table.FilterConfig{ColumnKey: "email", Operator: table.EndsWith, Value: ".org"})
	ts.Page.CurrentPage = 3
	ts = ts.WithRows(people)

	token, err := codec.Encode(StateOf(ts), encoding.Signed)
	if err != nil {
		t.Fatal(err)
	}
	var wire State
	if err := codec.Decode(token, encoding.Signed, &wire); err != nil {
		t.Fatal(err)
	}
	got := ApplyState(wire, table.NewState[person](10))

	if len(got.Rows) != 0 {
		t.Error("rows must not travel in the token")
	}
	if !slices.Equal(got.Filters, ts.Filters) {
		t.Errorf("filters = %+v, want %+v", got.Filters, ts.Filters)
	}
	if got.Filters[1].Active {
		t.Error("inactive filter came back active")
	}
	if got.Sort != ts.Sort {
		t.Errorf("sort = %+v, want %+v", got.Sort, ts.Sort)
	}
	if got.Page.CurrentPage != 3 || got.Page.PageSize != 25 {
		t.Errorf("page = %+v", got.Page)
	}
	if !slices.Equal(got.Selection.IDs(), []int64{9, 2}) {
		t.Errorf("selection = %v, want [9 2]", got.Selection.IDs())
	}
}

func TestApplyStateDefaults(t *testing.T) {
	base := table.NewState[person](50)
	got := ApplyState(State{}, base)

	if got.Page.PageSize != 50 {
		t.Errorf("zero page size should keep 50, got %d", got.Page.PageSize)
	}
	if got.Page.CurrentPage != 1 {
		t.Errorf("page = %d, want 1", got.Page.CurrentPage)
	}
	if got.Sort.Active {
		t.Error("empty state should not sort")
	}
	if got.Selection.Len() != 0 || len(got.Filters) != 0 {
		t.Error("empty state should carry no filters or selection")
	}
}

func TestApplyStateOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name        string
		st          State
		wantFilters []string
		wantSort    table.SortConfig
	}{
		{
			name:     "sort direction above range",
			st:       State{SortKey: "name", SortDir: 7},
			wantSort: table.SortBy("name", table.None),
		},
		{
			name:     "negative sort direction",
			st:       State{SortKey: "name", SortDir: -1},
			wantSort: table.SortBy("name", table.None),
		},
		{
			name: "unknown operators dropped",
			st: State{Filters: []FilterState{
				{Key: "age", Op: 99, Value: "30"},
				{Key: "name", Op: int8(table.StartsWith), Value: "A"},
				{Key: "email", Op: -3, Value: "x"},
			}},
			wantFilters: []string{"name"},
		},
		{
			name:        "valid values pass through",
			st:          State{SortKey: "age", SortDir: int8(table.Descending), Filters: []FilterState{{Key: "age", Op: int8(table.LessThan), Value: "40"}}},
			wantSort:    table.SortBy("age", table.Descending),
			wantFilters: []string{"age"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyState(tt.st, table.NewState[person](10))
			if got.Sort != tt.wantSort {
				t.Errorf("sort = %+v, want %+v", got.Sort, tt.wantSort)
			}
			keys := make([]string, len(got.Filters))
			for i, f := range got.Filters {
				keys[i] = f.ColumnKey
				if !f.Operator.Valid() {
					t.Errorf("filter %q kept operator %v", f.ColumnKey, f.Operator)
				}
			}
			if !slices.Equal(keys, tt.wantFilters) {
				t.Errorf("filters = %v, want %v", keys, tt.wantFilters)
			}
		})
	}
}

func TestGridIgnoresOutOfRangeToken(t *testing.T) {
	g, h := newTestGrid(t)
	wire := State{
		SortKey:  "name",
		SortDir:  42,
		Filters:  []FilterState{{Key: "age", Op: 100, Value: "30"}},
		PageSize: 10,
	}
	token, err := g.codec.Encode(wire, encoding.Signed)
	if err != nil {
		t.Fatal(err)
	}

	res := mustGet(t, h, g.prefix+"/"+ActionRender+"?p="+url.QueryEscape(token))
	if !res.IsOK() || !res.HTMLContainsAll("Page 1 of 1", "Alice", "bob", "Eve") {
		t.Errorf("token with unknown values should render every row: %s", res.HTML)
	}
	if !before(res.HTML, "Alice", "bob") || !before(res.HTML, "dave", "Eve") {
		t.Errorf("unknown sort direction should keep source order: %s", res.HTML)
	}
	if len(res.Flashes) != 0 {
		t.Errorf("flashes = %+v, want none", res.Flashes)
	}
}
