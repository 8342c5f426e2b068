// Package hxgridecho mounts hxgrid grids on an Echo server.
//
//	e := echo.New()
//	reg := hxgridecho.Mount(e, hxgridecho.WithKey(key))
//	reg.Add(peopleGrid)
//
// Grids can share a group's middleware:
//
//	g := e.Group("/admin", authMiddleware)
//	reg := hxgridecho.MountGroup(g, hxgridecho.WithKey(key))
//
// The registry ignores anything before hxgrid.DefaultPath in a request
// path, so a grouped mount answers /admin/_g/... with the same grids.
package hxgridecho

import (
	"crypto/rand"
	"fmt"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/pthm/hxgrid"
)

// Option configures Mount and MountGroup.
type Option func(*options)

type options struct {
	key     []byte
	onError hxgrid.ErrorHandler
}

// WithKey sets the token key for the registry. Without it a random key is
// generated, which only suits development: links stop working on restart.
func WithKey(key []byte) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithErrorHandler replaces hxgrid.DefaultErrorHandler.
func WithErrorHandler(h hxgrid.ErrorHandler) Option {
	return func(o *options) {
		o.onError = h
	}
}

// Mount creates a registry and routes hxgrid.DefaultPath on e to it.
func Mount(e *echo.Echo, opts ...Option) *hxgrid.Registry {
	reg := newRegistry(opts)
	e.Any(hxgrid.DefaultPath+"*", echo.WrapHandler(reg.Handler()))
	return reg
}

// MountGroup is Mount for a group, so grid requests pass through the
// group's middleware.
func MountGroup(g *echo.Group, opts ...Option) *hxgrid.Registry {
	reg := newRegistry(opts)
	g.Any(hxgrid.DefaultPath+"*", echo.WrapHandler(reg.Handler()))
	return reg
}

func newRegistry(opts []Option) *hxgrid.Registry {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	key := o.key
	if key == nil {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			panic(fmt.Sprintf("hxgridecho: failed to generate random key: %v", err))
		}
	}

	reg := hxgrid.NewRegistry(key)
	if o.onError != nil {
		reg.OnError = o.onError
	}
	return reg
}

// Render writes a templ component to the Echo response.
//
//	func page(c echo.Context) error {
//	    return hxgridecho.Render(c, layout(peopleGrid.Initial()))
//	}
func Render(c echo.Context, component templ.Component) error {
	return hxgrid.Render(c.Response(), c.Request(), component)
}
