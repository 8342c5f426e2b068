package hxgrid

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/pthm/hxgrid/lib/table"
)

// pageSizes are offered in the pager's size selector.
var pageSizes = []int{10, 25, 50, 100}

// maxPageSize is the largest size the size action accepts: the biggest
// selector entry, or the grid's initial size if that is larger.
func (g *Grid[R]) maxPageSize() int {
	return max(slices.Max(pageSizes), g.opts.pageSize)
}

var filterOperators = []table.Operator{
	table.Contains,
	table.Equals,
	table.StartsWith,
	table.EndsWith,
	table.GreaterThan,
	table.LessThan,
}

var operatorLabels = map[table.Operator]string{
	table.Contains:    "contains",
	table.Equals:      "equals",
	table.StartsWith:  "starts with",
	table.EndsWith:    "ends with",
	table.GreaterThan: ">",
	table.LessThan:    "<",
}

// Render returns the grid markup for st. Rows must already be loaded.
func (g *Grid[R]) Render(st table.State[R]) templ.Component {
	return g.renderView(st, st.View(g.engine))
}

func (g *Grid[R]) renderView(st table.State[R], view table.View[R]) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var sb strings.Builder
		g.writeGrid(&sb, st, view)
		_, err := io.WriteString(w, sb.String())
		return err
	})
}

// DOMID is the id of the grid's root element.
func (g *Grid[R]) DOMID() string {
	return "grid-" + strings.TrimPrefix(g.prefix, "/_g/")
}

func (g *Grid[R]) writeGrid(sb *strings.Builder, st table.State[R], view table.View[R]) {
	target := g.opts.target
	if target == "" {
		target = "this"
	}
	// The rendered page is what a follow-up request starts from.
	st.Page = view.Page

	sb.WriteString("<div")
	writeAttrs(sb, templ.Attributes{
		"id":        g.DOMID(),
		"class":     "hxgrid",
		"data-grid": g.name,
		"hx-target": target,
		"hx-swap":   string(g.opts.swap),
	})
	sb.WriteString(">")

	g.writeFilterForm(sb, st)
	g.writeActiveFilters(sb, st)

	sb.WriteString(`<table class="hxgrid-table">`)
	g.writeHeader(sb, st, view)
	g.writeBody(sb, st, view)
	sb.WriteString(`</table>`)

	g.writePager(sb, st, view)
	sb.WriteString(`</div>`)
}

func (g *Grid[R]) writeFilterForm(sb *strings.Builder, st table.State[R]) {
	sb.WriteString("<form")
	attrs := g.Attrs(ActionFilter, st, nil)
	attrs["class"] = "hxgrid-filter"
	writeAttrs(sb, attrs)
	sb.WriteString(`><select name="col" aria-label="Column">`)
	for _, c := range g.engine.Columns() {
		if _, ok := g.engine.Schema().Lookup(c.Key); !ok {
			continue
		}
		writeOption(sb, c.Key, c.Title, false)
	}
	sb.WriteString(`</select><select name="op" aria-label="Operator">`)
	for _, op := range filterOperators {
		writeOption(sb, op.String(), operatorLabels[op], false)
	}
	sb.WriteString(`</select><input type="search" name="value" placeholder="Filter value" aria-label="Filter value">`)
	sb.WriteString(`<button type="submit">Filter</button></form>`)
}

func (g *Grid[R]) writeActiveFilters(sb *strings.Builder, st table.State[R]) {
	var active []table.FilterConfig
	for _, f := range st.Filters {
		if f.Active {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return
	}

	sb.WriteString(`<div class="hxgrid-filters">`)
	for _, f := range active {
		label := fmt.Sprintf("%s %s %q", g.columnTitle(f.ColumnKey), operatorLabels[f.Operator], f.Value)
		sb.WriteString(`<span class="hxgrid-chip">`)
		sb.WriteString(templ.EscapeString(label))
		sb.WriteString(`<button type="button"`)
		attrs := g.Attrs(ActionUnfilter, st, map[string]string{"col": f.ColumnKey})
		attrs["aria-label"] = "Remove filter"
		writeAttrs(sb, attrs)
		sb.WriteString(`>&times;</button></span>`)
	}
	sb.WriteString(`<button type="button" class="hxgrid-clear"`)
	writeAttrs(sb, g.Attrs(ActionClearFilters, st, nil))
	sb.WriteString(`>Clear filters</button></div>`)
}

func (g *Grid[R]) writeHeader(sb *strings.Builder, st table.State[R], view table.View[R]) {
	sb.WriteString(`<thead><tr><th class="hxgrid-select">`)
	sb.WriteString(`<input type="checkbox" aria-label="Select page"`)
	attrs := g.Attrs(ActionSelectPage, st, nil)
	if g.pageSelected(st, view) {
		attrs["checked"] = true
	}
	writeAttrs(sb, attrs)
	sb.WriteString(`></th>`)

	for _, c := range g.engine.Columns() {
		dir := table.None
		if st.Sort.Active && st.Sort.ColumnKey == c.Key {
			dir = st.Sort.Direction
		}
		sb.WriteString("<th")
		writeAttrs(sb, templ.Attributes{
			"scope":     "col",
			"data-col":  c.Key,
			"aria-sort": ariaSort(dir),
		})
		sb.WriteString(">")
		if !c.Sortable {
			sb.WriteString(templ.EscapeString(c.Title))
			sb.WriteString("</th>")
			continue
		}
		sb.WriteString(`<button type="button" class="hxgrid-sort"`)
		writeAttrs(sb, g.Attrs(ActionSort, st, map[string]string{"col": c.Key}))
		sb.WriteString(">")
		sb.WriteString(templ.EscapeString(c.Title))
		sb.WriteString(sortIndicator(dir))
		sb.WriteString("</button></th>")
	}
	sb.WriteString(`</tr></thead>`)
}

func (g *Grid[R]) writeBody(sb *strings.Builder, st table.State[R], view table.View[R]) {
	span := strconv.Itoa(len(g.engine.Columns()) + 1)
	sb.WriteString("<tbody>")
	defer sb.WriteString("</tbody>")

	switch {
	case st.Loading:
		sb.WriteString(`<tr class="hxgrid-loading"><td colspan="` + span + `" aria-busy="true">Loading&hellip;</td></tr>`)
		return
	case st.Err != "":
		sb.WriteString(`<tr class="hxgrid-error"><td colspan="` + span + `" role="alert">`)
		sb.WriteString(templ.EscapeString(st.Err))
		sb.WriteString(`</td></tr>`)
		return
	case len(view.Rows) == 0:
		sb.WriteString(`<tr class="hxgrid-empty"><td colspan="` + span + `">No matching rows</td></tr>`)
		return
	}

	schema := g.engine.Schema()
	for _, row := range view.Rows {
		id := schema.ID(row)
		selected := st.Selection.Contains(id)

		sb.WriteString("<tr")
		rowAttrs := templ.Attributes{"data-id": strconv.FormatInt(id, 10)}
		if selected {
			rowAttrs["class"] = "selected"
		}
		writeAttrs(sb, rowAttrs)
		sb.WriteString(`><td class="hxgrid-select"><input type="checkbox" aria-label="Select row"`)
		attrs := g.Attrs(ActionSelect, st, map[string]string{"id": strconv.FormatInt(id, 10)})
		if selected {
			attrs["checked"] = true
		}
		writeAttrs(sb, attrs)
		sb.WriteString("></td>")

		for _, c := range g.engine.Columns() {
			sb.WriteString("<td>")
			if f, ok := schema.Lookup(c.Key); ok {
				sb.WriteString(templ.EscapeString(f.Text(row)))
			}
			sb.WriteString("</td>")
		}
		sb.WriteString("</tr>")
	}
}

func (g *Grid[R]) writePager(sb *strings.Builder, st table.State[R], view table.View[R]) {
	page, total := view.Page.CurrentPage, view.TotalPages()

	sb.WriteString(`<nav class="hxgrid-pager" aria-label="Pagination">`)
	g.writePageButton(sb, st, "Previous", page-1, page <= 1)
	fmt.Fprintf(sb, `<span class="hxgrid-status">Page %d of %d</span>`, page, total)
	fmt.Fprintf(sb, `<span class="hxgrid-count">%d rows, %d selected</span>`, view.FilteredCount(), st.Selection.Len())
	g.writePageButton(sb, st, "Next", page+1, page >= total)

	sb.WriteString(`<select name="size" aria-label="Rows per page" hx-trigger="change"`)
	writeAttrs(sb, g.Attrs(ActionSize, st, nil))
	sb.WriteString(">")
	sizes := pageSizes
	if !slices.Contains(sizes, view.Page.PageSize) {
		sizes = append(slices.Clone(sizes), view.Page.PageSize)
		slices.Sort(sizes)
	}
	for _, n := range sizes {
		writeOption(sb, strconv.Itoa(n), strconv.Itoa(n), n == view.Page.PageSize)
	}
	sb.WriteString("</select>")

	sb.WriteString(`<a class="hxgrid-export" download`)
	writeAttrs(sb, templ.Attributes{"href": g.URL(ActionExport, st, nil)})
	sb.WriteString(">Export CSV</a></nav>")
}

func (g *Grid[R]) writePageButton(sb *strings.Builder, st table.State[R], label string, n int, disabled bool) {
	sb.WriteString(`<button type="button"`)
	attrs := g.Attrs(ActionPage, st, map[string]string{"n": strconv.Itoa(n)})
	if disabled {
		attrs = templ.Attributes{"disabled": true}
	}
	writeAttrs(sb, attrs)
	sb.WriteString(">" + label + "</button>")
}

// pageSelected reports whether every visible row is selected.
func (g *Grid[R]) pageSelected(st table.State[R], view table.View[R]) bool {
	if len(view.Rows) == 0 {
		return false
	}
	for _, r := range view.Rows {
		if !st.Selection.Contains(g.engine.Schema().ID(r)) {
			return false
		}
	}
	return true
}

func (g *Grid[R]) columnTitle(key string) string {
	if c, ok := g.engine.Column(key); ok && c.Title != "" {
		return c.Title
	}
	return key
}

func ariaSort(d table.Direction) string {
	switch d {
	case table.Ascending:
		return "ascending"
	case table.Descending:
		return "descending"
	default:
		return "none"
	}
}

func sortIndicator(d table.Direction) string {
	switch d {
	case table.Ascending:
		return ` <span aria-hidden="true">&#9650;</span>`
	case table.Descending:
		return ` <span aria-hidden="true">&#9660;</span>`
	default:
		return ""
	}
}

func writeOption(sb *strings.Builder, value, label string, selected bool) {
	sb.WriteString(`<option value="`)
	sb.WriteString(templ.EscapeString(value))
	sb.WriteString(`"`)
	if selected {
		sb.WriteString(" selected")
	}
	sb.WriteString(">")
	sb.WriteString(templ.EscapeString(label))
	sb.WriteString("</option>")
}

// writeAttrs writes attrs in key order. Boolean attributes are written bare
// when true and dropped when false.
func writeAttrs(sb *strings.Builder, attrs templ.Attributes) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		switch v := attrs[k].(type) {
		case bool:
			if v {
				sb.WriteString(" " + k)
			}
		case string:
			sb.WriteString(" " + k + `="` + templ.EscapeString(v) + `"`)
		default:
			sb.WriteString(" " + k + `="` + templ.EscapeString(fmt.Sprint(v)) + `"`)
		}
	}
}
