package hxgrid

import (
	"context"
	"net/http"
	"slices"
)

// RowSource loads the full row set for a grid. It is called once per
// request, before any action handler runs, so handlers always see fresh rows.
//
// Sources that can push filtering down (see lib/sqlsource) still return the
// complete set here; the engine applies filters, sort and pagination.
type RowSource[R any] interface {
	Rows(ctx context.Context) ([]R, error)
}

// SourceFunc adapts a function to RowSource.
type SourceFunc[R any] func(ctx context.Context) ([]R, error)

func (f SourceFunc[R]) Rows(ctx context.Context) ([]R, error) {
	return f(ctx)
}

// SliceSource serves a fixed slice. Each call returns a copy so handlers
// cannot disturb the backing data.
type SliceSource[R any] []R

func (s SliceSource[R]) Rows(context.Context) ([]R, error) {
	return slices.Clone([]R(s)), nil
}

// Mountable is implemented by grids so the registry can route to them
// without knowing their row type.
type Mountable interface {
	http.Handler
	Prefix() string
	Attach(codec *Codec, onError ErrorHandler)
}
