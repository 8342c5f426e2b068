package hxgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/pthm/hxgrid/lib/table"
)

// TestResult holds the outcome of a grid request for assertions.
type TestResult struct {
	HTML            string
	StatusCode      int
	Headers         http.Header
	TriggeredEvents []string
	Flashes         []Flash
	RedirectURL     string
}

// TestRender renders st with g without going through HTTP. Rows must be
// loaded into st.
//
//	res, err := hxgrid.TestRender(g, st.WithRows(people))
//	if !res.HTMLContains("Alice") { ... }
func TestRender[R any](g *Grid[R], st table.State[R]) (*TestResult, error) {
	var buf bytes.Buffer
	if err := g.Render(st).Render(context.Background(), &buf); err != nil {
		return nil, err
	}
	return &TestResult{
		HTML:       buf.String(),
		StatusCode: http.StatusOK,
		Headers:    make(http.Header),
	}, nil
}

// TestAction sends an HTMX request to h, usually a Grid or a
// Registry.Handler, and collects the response.
//
//	res, err := hxgrid.TestAction(g, g.URL("sort", st, nil), http.MethodGet, nil)
func TestAction(h http.Handler, actionURL, method string, formData map[string]string) (*TestResult, error) {
	return NewTestRequest(method, actionURL).WithFormValues(formData).Execute(h)
}

// TestGet sends an HTMX GET request.
func TestGet(h http.Handler, url string) (*TestResult, error) {
	return TestAction(h, url, http.MethodGet, nil)
}

// TestPost sends an HTMX POST request with form data.
func TestPost(h http.Handler, url string, formData map[string]string) (*TestResult, error) {
	return TestAction(h, url, http.MethodPost, formData)
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HasEvent checks if an event was triggered.
func (r *TestResult) HasEvent(event string) bool {
	for _, e := range r.TriggeredEvents {
		if e == event {
			return true
		}
	}
	return false
}

// EventData decodes the detail of event from a JSON HX-Trigger header into v.
func (r *TestResult) EventData(event string, v any) error {
	var all map[string]json.RawMessage
	if err := json.Unmarshal([]byte(r.Headers.Get("HX-Trigger")), &all); err != nil {
		return err
	}
	return json.Unmarshal(all[event], v)
}

// HasFlash checks if a flash message was set with the given level and message.
func (r *TestResult) HasFlash(level, message string) bool {
	for _, f := range r.Flashes {
		if f.Level == level && f.Message == message {
			return true
		}
	}
	return false
}

// HasFlashLevel checks if any flash message was set with the given level.
func (r *TestResult) HasFlashLevel(level string) bool {
	for _, f := range r.Flashes {
		if f.Level == level {
			return true
		}
	}
	return false
}

// WasRedirected checks if the response was a redirect.
func (r *TestResult) WasRedirected() bool {
	return r.RedirectURL != ""
}

// IsOK checks if the status code is 200.
func (r *TestResult) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

// HasStatus checks if the status code matches.
func (r *TestResult) HasStatus(code int) bool {
	return r.StatusCode == code
}

// HasHeader checks if a header is set with the given value.
func (r *TestResult) HasHeader(key, value string) bool {
	return r.Headers.Get(key) == value
}

// parseTriggerHeader returns the event names in an HX-Trigger value, which is
// either a comma-separated list or a JSON object keyed by event.
func parseTriggerHeader(trigger string) []string {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil
	}

	if strings.HasPrefix(trigger, "{") {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal([]byte(trigger), &obj); err != nil {
			return nil
		}
		events := make([]string, 0, len(obj))
		for k := range obj {
			events = append(events, k)
		}
		return events
	}

	var events []string
	for _, p := range strings.Split(trigger, ",") {
		if p = strings.TrimSpace(p); p != "" {
			events = append(events, p)
		}
	}
	return events
}

// parseFlashesFromHTML extracts toasts written by RenderFlashesOOB.
func parseFlashesFromHTML(body string) []Flash {
	var flashes []Flash

	const prefix = `<div class="toast toast-`
	rest := body
	for {
		start := strings.Index(rest, prefix)
		if start == -1 {
			break
		}
		rest = rest[start+len(prefix):]

		level, after, ok := strings.Cut(rest, `"`)
		if !ok {
			break
		}
		_, after, ok = strings.Cut(after, ">")
		if !ok {
			break
		}
		message, after, ok := strings.Cut(after, "</div>")
		if !ok {
			break
		}

		flashes = append(flashes, Flash{
			Level:   html.UnescapeString(level),
			Message: html.UnescapeString(message),
		})
		rest = after
	}
	return flashes
}

// TestRequestBuilder builds a test request step by step.
//
//	res, err := hxgrid.NewTestRequest(http.MethodPost, u).
//	    WithFormData("id", "3").
//	    Execute(reg.Handler())
type TestRequestBuilder struct {
	method   string
	url      string
	formData map[string]string
	headers  map[string]string
	ctx      context.Context
	htmx     bool
}

// NewTestRequest creates a builder for an HTMX request.
func NewTestRequest(method, url string) *TestRequestBuilder {
	return &TestRequestBuilder{
		method:   method,
		url:      url,
		formData: make(map[string]string),
		headers:  make(map[string]string),
		ctx:      context.Background(),
		htmx:     true,
	}
}

// WithFormData adds a form value.
func (b *TestRequestBuilder) WithFormData(key, value string) *TestRequestBuilder {
	b.formData[key] = value
	return b
}

// WithFormValues adds multiple form values.
func (b *TestRequestBuilder) WithFormValues(data map[string]string) *TestRequestBuilder {
	for k, v := range data {
		b.formData[k] = v
	}
	return b
}

// WithHeader adds a header to the request.
func (b *TestRequestBuilder) WithHeader(key, value string) *TestRequestBuilder {
	b.headers[key] = value
	return b
}

// WithContext sets the request context.
func (b *TestRequestBuilder) WithContext(ctx context.Context) *TestRequestBuilder {
	b.ctx = ctx
	return b
}

// WithoutHTMX drops the HX-Request header, as a plain browser request would.
func (b *TestRequestBuilder) WithoutHTMX() *TestRequestBuilder {
	b.htmx = false
	return b
}

// Execute sends the request to h.
func (b *TestRequestBuilder) Execute(h http.Handler) (*TestResult, error) {
	form := url.Values{}
	for k, v := range b.formData {
		form.Set(k, v)
	}

	target, body := b.url, ""
	switch b.method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		// These methods carry values in the query string, as htmx sends them.
		if len(form) > 0 {
			sep := "?"
			if strings.Contains(target, "?") {
				sep = "&"
			}
			target += sep + form.Encode()
		}
	default:
		body = form.Encode()
	}

	req := httptest.NewRequest(b.method, target, strings.NewReader(body))
	req = req.WithContext(b.ctx)
	if b.htmx {
		req.Header.Set("HX-Request", "true")
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range b.headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	result := &TestResult{
		HTML:        rec.Body.String(),
		StatusCode:  rec.Code,
		Headers:     rec.Header(),
		RedirectURL: rec.Header().Get("HX-Redirect"),
	}
	if trigger := rec.Header().Get("HX-Trigger"); trigger != "" {
		result.TriggeredEvents = parseTriggerHeader(trigger)
	}
	result.Flashes = parseFlashesFromHTML(result.HTML)
	return result, nil
}
