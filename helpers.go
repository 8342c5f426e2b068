package hxgrid

import (
	"encoding/json"
	"net/http"

	"github.com/a-h/templ"
)

// Render writes a templ component to the HTTP response as HTML, using the
// request's context. Use it for full pages around a grid:
//
//	func index(w http.ResponseWriter, r *http.Request) {
//	    hxgrid.Render(w, r, page(people.Initial()))
//	}
//
// Grid actions don't need it; the registry handler renders their results.
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return component.Render(r.Context(), w)
}

// IsHTMX returns true if the request originated from HTMX.
//
// HTMX sends HX-Request: true on every request. Use it to serve a partial
// to HTMX and the full page to direct navigation:
//
//	if hxgrid.IsHTMX(r) {
//	    return people.Initial()
//	}
//	return page(people.Initial())
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// IsBoosted returns true if the request is a boosted navigation (hx-boost).
//
//	if hxgrid.IsBoosted(r) {
//	    return contentOnly()
//	}
func IsBoosted(r *http.Request) bool {
	return r.Header.Get("HX-Boosted") == "true"
}

// CurrentURL returns the browser's current URL from HX-Current-URL. This
// is the page the grid sits on, not the action URL:
//
//	back := hxgrid.CurrentURL(r)
//
// Returns "" for non-HTMX requests.
func CurrentURL(r *http.Request) string {
	return r.Header.Get("HX-Current-URL")
}

// TriggerID returns the id of the element that triggered the request.
func TriggerID(r *http.Request) string {
	return r.Header.Get("HX-Trigger")
}

// TriggerName returns the name attribute of the element that triggered the
// request. Useful when one action serves several buttons:
//
//	if hxgrid.TriggerName(r) == "archive-all" {
//	    st = st.SelectPage(engine)
//	}
//
// Returns "" if not present.
func TriggerName(r *http.Request) string {
	return r.Header.Get("HX-Trigger-Name")
}

// TargetID returns the id of the element that will receive the response.
func TargetID(r *http.Request) string {
	return r.Header.Get("HX-Target")
}

// BuildTriggerHeader formats an HX-Trigger value. Without data the event
// name is returned as is; with data it becomes {"event": data}:
//
//	BuildTriggerHeader("people:archived", nil)
//	// people:archived
//	BuildTriggerHeader("people:archived", map[string]any{"count": 3})
//	// {"people:archived":{"count":3}}
func BuildTriggerHeader(trigger string, data map[string]any) string {
	if trigger == "" {
		return ""
	}
	if data == nil {
		return trigger
	}
	out, err := json.Marshal(map[string]any{trigger: data})
	if err != nil {
		return trigger
	}
	return string(out)
}
