package hxgrid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/bdlm/log"

	"github.com/pthm/hxgrid/lib/export"
	"github.com/pthm/hxgrid/lib/table"
)

// Built-in action names.
const (
	ActionRender         = ""
	ActionSort           = "sort"
	ActionPage           = "page"
	ActionSize           = "size"
	ActionSelect         = "select"
	ActionSelectPage     = "select-page"
	ActionClearSelection = "clear-selection"
	ActionFilter         = "filter"
	ActionUnfilter       = "unfilter"
	ActionClearFilters   = "clear-filters"
	ActionExport         = "export"
)

// EventSelection is triggered whenever the selection changes. The event
// detail carries the grid name and the selected ids.
const EventSelection = "grid:selection"

// ActionBuilder configures action registration (e.g., HTTP method override).
//
//	g.Action("archive", handler)  // POST by default
//	g.Action("summary", handler).Method(http.MethodGet)
type ActionBuilder[R any] struct {
	action *actionDef[R]
}

// Method overrides the default POST method for an action.
func (ab *ActionBuilder[R]) Method(m string) *ActionBuilder[R] {
	ab.action.method = m
	return ab
}

// WireAttrs builds the HTMX attributes for a grid action.
//
// For GET actions, returns hx-get with the token and params in the query
// string. For other methods the token and params go in hx-vals.
func WireAttrs(path, method, encoded string, params map[string]string) templ.Attributes {
	attrs := templ.Attributes{}

	if method == http.MethodGet || method == "" {
		q := url.Values{}
		if encoded != "" {
			q.Set("p", encoded)
		}
		for k, v := range params {
			q.Set(k, v)
		}
		if len(q) > 0 {
			path += "?" + q.Encode()
		}
		attrs["hx-get"] = path
		return attrs
	}

	switch method {
	case http.MethodPost:
		attrs["hx-post"] = path
	case http.MethodPut:
		attrs["hx-put"] = path
	case http.MethodPatch:
		attrs["hx-patch"] = path
	case http.MethodDelete:
		attrs["hx-delete"] = path
	}
	vals := make(map[string]string, len(params)+1)
	for k, v := range params {
		vals[k] = v
	}
	if encoded != "" {
		vals["p"] = encoded
	}
	if len(vals) > 0 {
		data, _ := json.Marshal(vals)
		attrs["hx-vals"] = string(data)
	}
	return attrs
}

func (g *Grid[R]) registerBuiltins() {
	g.Action(ActionRender, g.handleRender).Method(http.MethodGet)
	g.Action(ActionSort, g.handleSort).Method(http.MethodGet)
	g.Action(ActionPage, g.handlePage).Method(http.MethodGet)
	g.Action(ActionSize, g.handleSize).Method(http.MethodGet)
	g.Action(ActionExport, g.handleExport).Method(http.MethodGet)
	g.Action(ActionSelect, g.handleSelect)
	g.Action(ActionSelectPage, g.handleSelectPage)
	g.Action(ActionClearSelection, g.handleClearSelection)
	g.Action(ActionFilter, g.handleFilter)
	g.Action(ActionUnfilter, g.handleUnfilter)
	g.Action(ActionClearFilters, g.handleClearFilters)
}

func (g *Grid[R]) handleRender(_ context.Context, st table.State[R], _ http.ResponseWriter, _ *http.Request) Result[table.State[R]] {
	return OK(st)
}

func (g *Grid[R]) handleSort(_ context.Context, st table.State[R], _ http.ResponseWriter, r *http.Request) Result[table.State[R]] {
	key := r.FormValue("col")
	col, ok := g.engine.Column(key)
	switch {
	case !ok:
		return OK(st).Flash(FlashWarning, fmt.Sprintf("Unknown column %q", key))
	case !col.Sortable:
		return OK(st).Flash(FlashWarning, fmt.Sprintf("Column %q is not sortable", col.Title))
	}
	return OK(st.ToggleSort(key))
}

func (g *Grid[R]) handlePage(_ context.Context, st table.State[R], _ http.ResponseWriter, r *http.Request) Result[table.State[R]] {
	n, err := strconv.Atoi(r.FormValue("n"))
	if err != nil {
		return OK(st).Flash(FlashWarning, "Invalid page number")
	}
	return OK(st.SetPage(g.engine, n))
}

func (g *Grid[R]) handleSize(_ context.Context, st table.State[R], _ http.ResponseWriter, r *http.Request) Result[table.State[R]] {
	size, err := strconv.Atoi(r.FormValue("size"))
	if err != nil || size <= 0 || size > g.maxPageSize() {
		return OK(st).Flash(FlashWarning, "Invalid page size")
	}
	return OK(st.SetPageSize(size))
}

func (g *Grid[R]) handleSelect(_ context.Context, st table.State[R], _ http.ResponseWriter, r *http.Request) Result[table.State[R]] {
	id, err := strconv.ParseInt(r.FormValue("id"), 10, 64)
	if err != nil {
		return OK(st).Flash(FlashWarning, "Invalid row id")
	}
	return g.selectionChanged(st.ToggleSelection(id))
}

func (g *Grid[R]) handleSelectPage(_ context.Context, st table.State[R], _ http.ResponseWriter, _ *http.Request) Result[table.State[R]] {
	return g.selectionChanged(st.SelectPage(g.engine))
}

func (g *Grid[R]) handleClearSelection(_ context.Context, st table.State[R], _ http.ResponseWriter, _ *http.Request) Result[table.State[R]] {
	st.Selection = st.Selection.Clear()
	return g.selectionChanged(st)
}

func (g *Grid[R]) selectionChanged(st table.State[R]) Result[table.State[R]] {
	ids := st.Selection.IDs()
	if ids == nil {
		ids = []int64{}
	}
	return OK(st).Trigger(EventSelection, map[string]any{
		"grid": g.name,
		"ids":  ids,
	})
}

func (g *Grid[R]) handleFilter(_ context.Context, st table.State[R], _ http.ResponseWriter, r *http.Request) Result[table.State[R]] {
	key := r.FormValue("col")
	if _, ok := g.engine.Schema().Lookup(key); !ok {
		return OK(st).Flash(FlashWarning, fmt.Sprintf("Unknown column %q", key))
	}
	op, ok := table.ParseOperator(r.FormValue("op"))
	if !ok {
		return OK(st).Flash(FlashWarning, fmt.Sprintf("Unknown operator %q", r.FormValue("op")))
	}

	value := strings.TrimSpace(r.FormValue("value"))
	if value == "" {
		return OK(withoutFilters(st, key))
	}
	return OK(st.AddFilter(table.Filter(key, op, value)))
}

func (g *Grid[R]) handleUnfilter(_ context.Context, st table.State[R], _ http.ResponseWriter, r *http.Request) Result[table.State[R]] {
	return OK(withoutFilters(st, r.FormValue("col")))
}

func (g *Grid[R]) handleClearFilters(_ context.Context, st table.State[R], _ http.ResponseWriter, _ *http.Request) Result[table.State[R]] {
	return OK(st.ClearFilters())
}

// withoutFilters drops every filter on key.
func withoutFilters[R any](st table.State[R], key string) table.State[R] {
	return st.WithFilters(slices.DeleteFunc(slices.Clone(st.Filters), func(f table.FilterConfig) bool {
		return f.ColumnKey == key
	}))
}

// handleExport streams every filtered row, in sort order, as CSV.
func (g *Grid[R]) handleExport(_ context.Context, st table.State[R], w http.ResponseWriter, _ *http.Request) Result[table.State[R]] {
	view := st.View(g.engine)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, g.opts.exportName))
	if err := export.CSV(w, g.engine.Schema(), g.engine.Columns(), view.Filtered); err != nil {
		log.WithFields(log.Fields{"grid": g.name}).Errorf("export: %v", err)
	}
	return Skip[table.State[R]]()
}
