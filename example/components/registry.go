package components

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pthm/hxgrid"
	"github.com/pthm/hxgrid/lib/table"
)

// C holds the grid instances.
var C struct {
	People *hxgrid.Grid[Person]
}

// Init creates the grids and registers them. Call it once at startup,
// before handling requests.
func Init(store PersonStore, reg *hxgrid.Registry) {
	C.People = hxgrid.New("people", PersonEngine(), store,
		hxgrid.WithPageSize(5),
		hxgrid.WithExportName("staff"),
	)
	C.People.Action("archive", archiveSelected(store))

	reg.Add(C.People)
}

// archiveSelected archives the selected people, reloads the rows and
// clears the selection.
func archiveSelected(store PersonStore) hxgrid.ActionFunc[Person] {
	return func(ctx context.Context, st table.State[Person], w http.ResponseWriter, r *http.Request) hxgrid.Result[table.State[Person]] {
		ids := st.Selection.IDs()
		if len(ids) == 0 {
			return hxgrid.OK(st).Flash(hxgrid.FlashInfo, "Select people to archive first")
		}
		n := store.Archive(ids)
		rows, err := store.Rows(ctx)
		if err != nil {
			return hxgrid.Err(st, err)
		}
		st = st.WithRows(rows)
		st.Selection = st.Selection.Clear()
		return hxgrid.OK(st).
			Flash(hxgrid.FlashSuccess, fmt.Sprintf("Archived %d of %d", n, len(ids))).
			Trigger("people:archived")
	}
}
