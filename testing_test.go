package hxgrid

import (
	"context"
	"net/http"
	"slices"
	"testing"
)

func TestTestRender(t *testing.T) {
	g, _ := newTestGrid(t)
	st := g.InitialState().WithRows(people)

	res, err := TestRender(g, st)
	if err != nil {
		t.Fatalf("TestRender() error = %v", err)
	}
	if !res.IsOK() || !res.HTMLContainsAll("Alice", "bob", `data-id="1"`, `data-id="2"`) {
		t.Errorf("HTML = %s", res.HTML)
	}
	if res.HTMLContains(`data-id="3"`) {
		t.Error("row 3 is on page 2")
	}

	res, _ = TestRender(g, g.InitialState().WithLoading(true))
	if !res.HTMLContains(`aria-busy="true"`) {
		t.Errorf("loading state not rendered: %s", res.HTML)
	}
}

func TestTestRequestBuilder(t *testing.T) {
	var method, path, form, custom, htmx string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		form = r.FormValue("key")
		custom = r.Header.Get("X-Custom")
		htmx = r.Header.Get("HX-Request")
		w.Header().Set("HX-Trigger", "saved, refreshed")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`<div>Created</div>` + RenderFlashesOOB([]Flash{{FlashSuccess, "Saved & done"}})))
	})

	res, err := NewTestRequest(http.MethodPost, "/_g/t/create").
		WithFormData("key", "value").
		WithHeader("X-Custom", "custom-value").
		Execute(h)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if method != http.MethodPost || path != "/_g/t/create" {
		t.Errorf("request = %s %s", method, path)
	}
	if form != "value" || custom != "custom-value" || htmx != "true" {
		t.Errorf("form = %q, header = %q, HX-Request = %q", form, custom, htmx)
	}
	if !res.HasStatus(http.StatusCreated) {
		t.Errorf("status = %d, want 201", res.StatusCode)
	}
	if !res.HasEvent("saved") || !res.HasEvent("refreshed") || res.HasEvent("save") {
		t.Errorf("events = %v", res.TriggeredEvents)
	}
	if !res.HasFlash(FlashSuccess, "Saved & done") {
		t.Errorf("flashes = %+v", res.Flashes)
	}
}

func TestTestRequestBuilderGetUsesQuery(t *testing.T) {
	var raw string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw = r.URL.RawQuery
	})

	NewTestRequest(http.MethodGet, "/x?p=tok").
		WithFormValues(map[string]string{"n": "2"}).
		Execute(h)
	if raw != "p=tok&n=2" {
		t.Errorf("query = %q, want p=tok&n=2", raw)
	}
}

func TestTestRequestBuilderContextAndHTMX(t *testing.T) {
	type ctxKey string
	ctx := context.WithValue(context.Background(), ctxKey("k"), "v")

	var got any
	var htmx string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Context().Value(ctxKey("k"))
		htmx = r.Header.Get("HX-Request")
	})

	NewTestRequest(http.MethodGet, "/").WithContext(ctx).WithoutHTMX().Execute(h)
	if got != "v" {
		t.Errorf("context value = %v", got)
	}
	if htmx != "" {
		t.Errorf("HX-Request = %q, want empty", htmx)
	}
}

func TestParseTriggerHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{"empty", "", nil},
		{"whitespace", "   ", nil},
		{"single", "grid:selection", []string{"grid:selection"}},
		{"list", "a, b ,c", []string{"a", "b", "c"}},
		{"json", `{"a": null, "grid:selection": {"ids": [1]}}`, []string{"a", "grid:selection"}},
		{"bad json", `{"a":`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseTriggerHeader(tt.header)
			slices.Sort(got)
			if !slices.Equal(got, tt.want) {
				t.Errorf("parseTriggerHeader(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestParseFlashesFromHTML(t *testing.T) {
	body := `<div class="hxgrid">grid</div>` + RenderFlashesOOB([]Flash{
		{FlashWarning, `unknown_column (x): filter ignored`},
		{FlashError, `<b>"quoted"</b>`},
	})

	flashes := parseFlashesFromHTML(body)
	if len(flashes) != 2 {
		t.Fatalf("got %d flashes, want 2: %+v", len(flashes), flashes)
	}
	if flashes[0] != (Flash{FlashWarning, "unknown_column (x): filter ignored"}) {
		t.Errorf("flashes[0] = %+v", flashes[0])
	}
	if flashes[1] != (Flash{FlashError, `<b>"quoted"</b>`}) {
		t.Errorf("flashes[1] = %+v", flashes[1])
	}

	if got := parseFlashesFromHTML(`<div>No flashes here</div>`); len(got) != 0 {
		t.Errorf("got %d flashes, want 0", len(got))
	}
}

func TestTestResultAssertions(t *testing.T) {
	res := &TestResult{
		HTML:        `<p>hello world</p>`,
		StatusCode:  http.StatusAccepted,
		Headers:     http.Header{"X-A": {"1"}},
		RedirectURL: "/next",
		Flashes:     []Flash{{FlashInfo, "hi"}},
	}

	if !res.HTMLContains("hello") || !res.HTMLContainsAll("hello", "world") || res.HTMLContainsAll("hello", "moon") {
		t.Error("HTML assertions wrong")
	}
	if res.IsOK() || !res.HasStatus(http.StatusAccepted) {
		t.Error("status assertions wrong")
	}
	if !res.HasHeader("X-A", "1") || res.HasHeader("X-A", "2") {
		t.Error("header assertions wrong")
	}
	if !res.WasRedirected() {
		t.Error("WasRedirected() = false")
	}
	if !res.HasFlashLevel(FlashInfo) || res.HasFlashLevel(FlashError) || res.HasFlash(FlashInfo, "bye") {
		t.Error("flash assertions wrong")
	}
}
