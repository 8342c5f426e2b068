package hxgrid

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/a-h/templ"
	"github.com/bdlm/log"

	"github.com/pthm/hxgrid/lib/encoding"
	"github.com/pthm/hxgrid/lib/table"
)

// ActionFunc handles one grid action. It receives the decoded state with
// rows already loaded and returns the state to render.
type ActionFunc[R any] func(ctx context.Context, st table.State[R], w http.ResponseWriter, r *http.Request) Result[table.State[R]]

// actionDef holds metadata about a registered action.
type actionDef[R any] struct {
	name    string
	method  string
	handler ActionFunc[R]
}

// Grid is an HTMX data table over rows of type R.
//
// The view state (filters, sort, page, selection) travels with every request
// as a signed token in the "p" parameter; rows are reloaded from the
// RowSource each time. Built-in actions cover sorting, paging, filtering,
// selection and CSV export. Custom actions are added with Action.
//
//	people := hxgrid.New("people", engine, hxgrid.SliceSource[Person](all))
//	reg.Add(people)
//
// Each grid receives a deterministic URL prefix based on its name and the
// source location of the New call.
type Grid[R any] struct {
	name    string
	prefix  string
	engine  *table.Engine[R]
	source  RowSource[R]
	opts    options
	actions map[string]*actionDef[R]
	codec   *Codec
	onError ErrorHandler
}

// Option configures a Grid.
type Option func(*options)

type options struct {
	pageSize   int
	swap       SwapMode
	target     string
	sensitive  bool
	exportName string
}

// WithPageSize sets the initial page size. Values <= 0 fall back to
// table.DefaultPageSize.
func WithPageSize(n int) Option {
	return func(o *options) {
		o.pageSize = n
	}
}

// WithSwap sets the hx-swap mode used when the grid replaces itself.
// Defaults to SwapOuter.
func WithSwap(mode SwapMode) Option {
	return func(o *options) {
		o.swap = mode
	}
}

// WithTarget sets an explicit hx-target selector. By default the grid
// targets its own root element.
func WithTarget(selector string) Option {
	return func(o *options) {
		o.target = selector
	}
}

// Sensitive encrypts the state token instead of only signing it. Use it
// when selected ids or filter values must not be readable by clients.
func Sensitive() Option {
	return func(o *options) {
		o.sensitive = true
	}
}

// WithExportName sets the base file name of the CSV export.
func WithExportName(name string) Option {
	return func(o *options) {
		o.exportName = name
	}
}

// New creates a grid named name. The built-in actions are registered
// immediately; the grid must be added to a Registry before it can encode
// state tokens.
func New[R any](name string, engine *table.Engine[R], source RowSource[R], opts ...Option) *Grid[R] {
	o := options{
		pageSize:   table.DefaultPageSize,
		swap:       SwapOuter,
		exportName: name,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pageSize <= 0 {
		o.pageSize = table.DefaultPageSize
	}

	g := &Grid[R]{
		name:    name,
		prefix:  "/_g/" + name + "-" + componentHash(name, 1),
		engine:  engine,
		source:  source,
		opts:    o,
		actions: make(map[string]*actionDef[R]),
		onError: DefaultErrorHandler,
	}
	g.registerBuiltins()
	return g
}

// Name returns the grid's name.
func (g *Grid[R]) Name() string {
	return g.name
}

// Prefix returns the grid's URL prefix. All actions are mounted below it.
func (g *Grid[R]) Prefix() string {
	return g.prefix
}

// Engine returns the engine the grid renders with.
func (g *Grid[R]) Engine() *table.Engine[R] {
	return g.engine
}

// IsSensitive reports whether state tokens are encrypted.
func (g *Grid[R]) IsSensitive() bool {
	return g.opts.sensitive
}

// Attach wires the registry's codec and error handler. Called by
// Registry.Add.
func (g *Grid[R]) Attach(codec *Codec, onError ErrorHandler) {
	g.codec = codec
	if onError != nil {
		g.onError = onError
	}
}

// Action registers a named action with the default POST method. Registering
// a built-in name replaces the built-in handler.
//
//	g.Action("archive", archiveSelected)
//	g.Action("summary", summary).Method(http.MethodGet)
func (g *Grid[R]) Action(name string, handler ActionFunc[R]) *ActionBuilder[R] {
	def := &actionDef[R]{name: name, method: http.MethodPost, handler: handler}
	g.actions[name] = def
	return &ActionBuilder[R]{action: def}
}

// InitialState returns the state a fresh grid starts from, without rows.
func (g *Grid[R]) InitialState() table.State[R] {
	return table.NewState[R](g.opts.pageSize).WithColumns(g.engine.Columns())
}

// Load fetches rows from the source into st. On failure the returned
// state carries the error message and the error wraps ErrSourceFailed.
func (g *Grid[R]) Load(ctx context.Context, st table.State[R]) (table.State[R], error) {
	rows, err := g.source.Rows(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrSourceFailed, err)
		return st.WithError(err.Error()), err
	}
	return st.WithRows(rows), nil
}

// Initial renders the grid in its initial state, loading rows at render
// time. Use it to embed the grid directly in a page.
func (g *Grid[R]) Initial() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		st, err := g.Load(ctx, g.InitialState())
		if err != nil {
			log.WithFields(log.Fields{"grid": g.name}).Warnf("initial load failed: %v", err)
		}
		return g.Render(st).Render(ctx, w)
	})
}

// Lazy renders a placeholder that loads the grid when scrolled into view.
// A nil placeholder renders the grid's loading state.
func (g *Grid[R]) Lazy(placeholder templ.Component) templ.Component {
	return g.deferred(placeholder, "intersect once")
}

// Defer renders a placeholder that loads the grid after page load.
// A nil placeholder renders the grid's loading state.
func (g *Grid[R]) Defer(placeholder templ.Component) templ.Component {
	return g.deferred(placeholder, "load")
}

func (g *Grid[R]) deferred(placeholder templ.Component, trigger string) templ.Component {
	st := g.InitialState()
	if placeholder == nil {
		placeholder = g.Render(st.WithLoading(true))
	}
	return lazyComponent(g.URL("", st, nil), placeholder, trigger)
}

// URL builds the URL for action with st encoded in the "p" parameter.
// An empty action is the default render. Extra params are appended.
func (g *Grid[R]) URL(action string, st table.State[R], params url.Values) string {
	path := g.prefix + "/" + action
	q := url.Values{}
	if token, ok := g.encode(st); ok {
		q.Set("p", token)
	}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// Attrs returns the HTMX attributes that invoke action with st. POST
// actions carry the token and params in hx-vals.
func (g *Grid[R]) Attrs(action string, st table.State[R], params map[string]string) templ.Attributes {
	method := http.MethodGet
	if def, ok := g.actions[action]; ok {
		method = def.method
	}
	token, _ := g.encode(st)
	return WireAttrs(g.prefix+"/"+action, method, token, params)
}

func (g *Grid[R]) encode(st table.State[R]) (string, bool) {
	if g.codec == nil {
		return "", false
	}
	token, err := g.codec.Encode(StateOf(st), g.mode())
	if err != nil {
		log.WithFields(log.Fields{"grid": g.name}).Warnf("encode state: %v", err)
		return "", false
	}
	return token, true
}

func (g *Grid[R]) mode() encoding.Mode {
	if g.opts.sensitive {
		return encoding.Encrypted
	}
	return encoding.Signed
}

// decode reads the state token from the request. A missing token yields the
// initial state.
func (g *Grid[R]) decode(r *http.Request) (table.State[R], error) {
	st := g.InitialState()
	token := r.FormValue("p")
	if token == "" {
		return st, nil
	}
	if g.codec == nil {
		return st, ErrNoCodec
	}
	var wire State
	if err := g.codec.Decode(token, g.mode(), &wire); err != nil {
		return st, wrapEncodingError(err)
	}
	return ApplyState(wire, st), nil
}

// ServeHTTP dispatches a request under the grid's prefix.
func (g *Grid[R]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, g.prefix), "/")
	def, ok := g.actions[name]
	if !ok || !methodMatches(def.method, r.Method) {
		g.onError(w, r, fmt.Errorf("%w: %s /%s", ErrNotFound, r.Method, name))
		return
	}

	st, err := g.decode(r)
	if err != nil {
		g.onError(w, r, err)
		return
	}

	st, err = g.Load(r.Context(), st)
	if err != nil {
		log.WithFields(log.Fields{
			"grid":   g.name,
			"action": name,
		}).Errorf("%v", err)
		g.respond(w, r, OK(st).Status(http.StatusBadGateway))
		return
	}

	g.respond(w, r, def.handler(r.Context(), st, w, r))
}

func methodMatches(want, got string) bool {
	if want == got {
		return true
	}
	return want == http.MethodGet && got == http.MethodHead
}

// respond applies a handler result: headers, events, the rendered grid and
// any flashes. Engine diagnostics become warning flashes.
func (g *Grid[R]) respond(w http.ResponseWriter, r *http.Request, result Result[table.State[R]]) {
	if result.ShouldSkip() {
		return
	}
	if err := result.GetErr(); err != nil {
		g.onError(w, r, err)
		return
	}

	for k, v := range result.GetHeaders() {
		w.Header().Set(k, v)
	}
	if redirect := result.GetRedirect(); redirect != "" {
		w.Header().Set("HX-Redirect", redirect)
		w.WriteHeader(http.StatusOK)
		return
	}
	if trigger := BuildTriggerHeader(result.GetTrigger(), result.GetTriggerData()); trigger != "" {
		w.Header().Set("HX-Trigger", trigger)
	}
	if after := result.GetTriggerAfterSettle(); after != "" {
		w.Header().Set("HX-Trigger-After-Settle", after)
	}

	st := result.GetProps()
	view := st.View(g.engine)
	flashes := result.GetFlashes()
	for _, d := range view.Diagnostics {
		log.WithFields(log.Fields{
			"grid":   g.name,
			"code":   d.Code.String(),
			"column": d.ColumnKey,
		}).Warnf("%s", d.Message)
		flashes = append(flashes, Flash{Level: FlashWarning, Message: d.String()})
	}

	status := result.GetStatus()
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := g.renderView(st, view).Render(r.Context(), w); err != nil {
		log.WithFields(log.Fields{"grid": g.name}).Errorf("render: %v", err)
		return
	}
	if oob := RenderFlashesOOB(flashes); oob != "" {
		io.WriteString(w, oob)
	}
}

// componentHash generates a deterministic hash based on the grid name and
// the caller's source location.
func componentHash(name string, skip int) string {
	_, file, line, ok := runtime.Caller(skip + 1)
	input := name
	if ok {
		input = fmt.Sprintf("%s:%d:%s", filepath.Base(file), line, name)
	}
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:4])
}

// lazyComponent wraps placeholder in an element that fetches url on trigger.
func lazyComponent(url string, placeholder templ.Component, trigger string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div hx-get="%s" hx-trigger="%s" hx-swap="outerHTML">`,
			templ.EscapeString(url), templ.EscapeString(trigger))
		if err != nil {
			return err
		}
		if placeholder != nil {
			if err := placeholder.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, `</div>`)
		return err
	})
}
