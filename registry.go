package hxgrid

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bdlm/log"
)

// DefaultPath is where Handler expects to be mounted.
const DefaultPath = "/_g/"

// Registry owns the state codec and routes requests to grids.
type Registry struct {
	mu    sync.RWMutex
	codec *Codec
	grids map[string]Mountable

	// OnError is called when a request fails before or during a handler.
	// It must be set before grids are added.
	OnError ErrorHandler
}

// NewRegistry creates a registry whose tokens are protected by key.
// Panics if key is empty.
func NewRegistry(key []byte) *Registry {
	codec, err := NewCodec(key)
	if err != nil {
		panic(fmt.Sprintf("hxgrid: failed to create codec: %v", err))
	}
	return &Registry{
		codec:   codec,
		grids:   make(map[string]Mountable),
		OnError: DefaultErrorHandler,
	}
}

// Codec returns the registry's codec.
func (reg *Registry) Codec() *Codec {
	return reg.codec
}

// Add registers grids. Panics on a prefix collision.
func (reg *Registry) Add(grids ...Mountable) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, g := range grids {
		prefix := g.Prefix()
		if _, exists := reg.grids[prefix]; exists {
			panic(fmt.Sprintf("hxgrid: prefix collision for %q", prefix))
		}
		g.Attach(reg.codec, reg.OnError)
		reg.grids[prefix] = g
		log.WithFields(log.Fields{"prefix": prefix}).Debugf("grid registered")
	}
}

// lookup finds the grid owning path. Anything before DefaultPath (a router
// group prefix) is ignored; the returned path starts at DefaultPath.
func (reg *Registry) lookup(path string) (Mountable, string, bool) {
	i := strings.Index(path, DefaultPath)
	if i < 0 {
		return nil, path, false
	}
	path = path[i:]
	segment, _, _ := strings.Cut(strings.TrimPrefix(path, DefaultPath), "/")

	reg.mu.RLock()
	defer reg.mu.RUnlock()
	g, ok := reg.grids[DefaultPath+segment]
	return g, path, ok
}

// Handler returns the HTTP handler for grid routes. Mount it at DefaultPath:
//
//	reg := hxgrid.NewRegistry(key)
//	reg.Add(people)
//	mux.Handle(hxgrid.DefaultPath, reg.Handler())
//
// With echo, use the hxgridecho adapter instead:
//
//	reg := hxgridecho.Mount(e, hxgridecho.WithKey(key))
//
// Requests are routed to the grid whose prefix matches the path. Mutating
// requests must carry HX-Request: true; others are rejected as CSRF.
func (reg *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if !IsHTMX(r) {
				http.Error(w, "Forbidden: HTMX request required", http.StatusForbidden)
				return
			}
		}

		g, path, ok := reg.lookup(r.URL.Path)
		if !ok {
			reg.OnError(w, r, fmt.Errorf("%w: %s", ErrNotFound, r.URL.Path))
			return
		}
		if path != r.URL.Path {
			r2 := new(http.Request)
			*r2 = *r
			r2.URL = new(url.URL)
			*r2.URL = *r.URL
			r2.URL.Path = path
			r2.URL.RawPath = ""
			r = r2
		}

		start := time.Now()
		g.ServeHTTP(w, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Debugf("grid request")
	})
}
