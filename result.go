package hxgrid

// Result is returned from action handlers to control rendering and side
// effects. P is the grid's table.State type.
//
//	// Re-render with the new state
//	return hxgrid.OK(st.ToggleSort("name"))
//
//	// Re-render with a toast
//	return hxgrid.OK(st).Flash(hxgrid.FlashSuccess, "Archived 3 rows")
//
//	// Broadcast an event with data
//	return hxgrid.OK(st).Trigger("people:archived", map[string]any{"ids": ids})
//
//	// Handler wrote its own response (downloads)
//	return hxgrid.Skip[table.State[Person]]()
type Result[P any] struct {
	props              P
	err                error
	redirect           string
	flashes            []Flash
	trigger            string
	triggerData        map[string]any
	triggerAfterSettle string
	headers            map[string]string
	status             int
	skip               bool
}

// OK creates a success result that renders props.
func OK[P any](props P) Result[P] {
	return Result[P]{props: props}
}

// Err creates a result that is passed to the registry's OnError handler
// instead of rendering.
func Err[P any](props P, err error) Result[P] {
	return Result[P]{props: props, err: err}
}

// Skip creates a result indicating the handler wrote its own response.
func Skip[P any]() Result[P] {
	return Result[P]{skip: true}
}

// Redirect creates a result that redirects via the HX-Redirect header.
func Redirect[P any](url string) Result[P] {
	return Result[P]{redirect: url}
}

// Flash adds a toast notification. Flashes render as out-of-band swaps
// into #toasts after the grid markup.
func (r Result[P]) Flash(level, message string) Result[P] {
	r.flashes = append(r.flashes, Flash{Level: level, Message: message})
	return r
}

// Trigger emits an event via the HX-Trigger header. When data is given the
// header is JSON and the data becomes the event detail.
func (r Result[P]) Trigger(event string, data ...map[string]any) Result[P] {
	r.trigger = event
	if len(data) > 0 {
		r.triggerData = data[0]
	}
	return r
}

// PushURL updates the browser URL via HX-Push-Url.
func (r Result[P]) PushURL(url string) Result[P] {
	return r.Header("HX-Push-Url", url)
}

// TriggerAfterSettle emits event once the swap has settled.
func (r Result[P]) TriggerAfterSettle(event string) Result[P] {
	r.triggerAfterSettle = event
	return r
}

// Header sets a custom response header.
func (r Result[P]) Header(key, value string) Result[P] {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

// Status sets the HTTP status code. Zero means 200.
func (r Result[P]) Status(code int) Result[P] {
	r.status = code
	return r
}

func (r Result[P]) GetProps() P                    { return r.props }
func (r Result[P]) GetErr() error                  { return r.err }
func (r Result[P]) GetRedirect() string            { return r.redirect }
func (r Result[P]) GetFlashes() []Flash            { return r.flashes }
func (r Result[P]) GetTrigger() string             { return r.trigger }
func (r Result[P]) GetTriggerData() map[string]any { return r.triggerData }
func (r Result[P]) GetTriggerAfterSettle() string  { return r.triggerAfterSettle }
func (r Result[P]) GetHeaders() map[string]string  { return r.headers }
func (r Result[P]) GetStatus() int                 { return r.status }
func (r Result[P]) ShouldSkip() bool               { return r.skip }
