package hxgrid

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/templ"
)

func TestRequestHeaderHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Boosted", "true")
	req.Header.Set("HX-Current-URL", "http://example.com/people?page=2")
	req.Header.Set("HX-Trigger", "sort-name")
	req.Header.Set("HX-Target", "grid-people")
	req.Header.Set("HX-Trigger-Name", "archive-all")

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"IsHTMX", IsHTMX(req), true},
		{"IsBoosted", IsBoosted(req), true},
		{"CurrentURL", CurrentURL(req), "http://example.com/people?page=2"},
		{"TriggerID", TriggerID(req), "sort-name"},
		{"TargetID", TargetID(req), "grid-people"},
		{"TriggerName", TriggerName(req), "archive-all"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s() = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	bare := httptest.NewRequest(http.MethodGet, "/", nil)
	if IsHTMX(bare) || IsBoosted(bare) || CurrentURL(bare) != "" || TriggerID(bare) != "" || TargetID(bare) != "" || TriggerName(bare) != "" {
		t.Error("helpers should report nothing without htmx headers")
	}

	bare.Header.Set("HX-Request", "1")
	if IsHTMX(bare) {
		t.Error(`IsHTMX() should require the literal value "true"`)
	}
}

func TestRenderHelper(t *testing.T) {
	comp := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>hi</p>")
		return err
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := Render(w, r, comp); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != "<p>hi</p>" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestBuildTriggerHeader(t *testing.T) {
	tests := []struct {
		name    string
		trigger string
		data    map[string]any
		expect  string
	}{
		{"empty", "", map[string]any{"x": 1}, ""},
		{"plain event", "people:changed", nil, "people:changed"},
		{"with data", "filter:changed", map[string]any{"column": "age"}, `{"filter:changed":{"column":"age"}}`},
		{"keys sorted", "grid:selection", map[string]any{"ids": []int64{3, 1}, "grid": "people"}, `{"grid:selection":{"grid":"people","ids":[3,1]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildTriggerHeader(tt.trigger, tt.data); got != tt.expect {
				t.Errorf("BuildTriggerHeader() = %q, want %q", got, tt.expect)
			}
		})
	}

	// The JSON form must be valid for htmx to parse it.
	var parsed map[string]map[string]any
	if err := json.Unmarshal([]byte(BuildTriggerHeader("a", map[string]any{"b": "<c>"})), &parsed); err != nil {
		t.Errorf("trigger header is not JSON: %v", err)
	}
}
