// Package hxgrid provides server-rendered, interactive data tables built on
// HTMX and templ.
//
// A Grid pairs a table.Engine (schema, columns, filter/sort/paginate
// pipeline) with a RowSource. Everything the user changes, such as filters,
// the sort column, the page and the selected ids, lives in a compact state
// token that rides along with every request, so the server keeps no session.
//
// # Defining a grid
//
//	schema := table.NewSchema(func(p Person) int64 { return p.ID },
//	    table.String("name", func(p Person) string { return p.Name }),
//	    table.Int("age", func(p Person) int64 { return p.Age }),
//	)
//	engine := table.New(schema,
//	    table.Column{Key: "name", Title: "Name", Sortable: true},
//	    table.Column{Key: "age", Title: "Age", Sortable: true},
//	)
//	people := hxgrid.New("people", engine, hxgrid.SliceSource[Person](all),
//	    hxgrid.WithPageSize(25))
//
// The hxgrid generate command derives the schema and columns from struct
// tags, see lib/generator.
//
// # Mounting
//
//	reg := hxgrid.NewRegistry(key)
//	reg.Add(people)
//	mux.Handle(hxgrid.DefaultPath, reg.Handler())
//
// Embed the grid in a page with people.Initial(), or load it after the page
// with people.Lazy(nil) or people.Defer(nil).
//
// # Actions
//
// Built-in actions cover sorting (sort), paging (page, size), filtering
// (filter, unfilter, clear-filters), selection (select, select-page,
// clear-selection) and CSV export (export). Custom actions receive the
// decoded state with rows loaded and return a Result:
//
//	people.Action("archive", func(ctx context.Context, st table.State[Person], w http.ResponseWriter, r *http.Request) hxgrid.Result[table.State[Person]] {
//	    archive(st.Selection.IDs())
//	    return hxgrid.OK(st).Flash(hxgrid.FlashSuccess, "Archived")
//	})
//
// Selection changes trigger the grid:selection event with the selected ids
// as its detail.
//
// # Failure handling
//
// Bad filter values, unknown columns and out-of-range pages never fail a
// request. The engine reports them as diagnostics, which the grid logs and
// shows as warning toasts while rendering the rows it could compute. A row
// source failure renders the grid's error state with status 502. Tampered
// tokens are rejected with 400 by the registry's OnError.
//
// # Security
//
// Non-GET requests require the HX-Request header, which browsers will not
// send cross-origin without CORS approval. Tokens are signed by default and
// encrypted with the Sensitive option.
package hxgrid
