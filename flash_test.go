package hxgrid

import (
	"context"
	"strings"
	"testing"
)

func TestRenderFlashesOOBEmpty(t *testing.T) {
	if got := RenderFlashesOOB(nil); got != "" {
		t.Errorf("RenderFlashesOOB(nil) = %q, want empty string", got)
	}
	if got := RenderFlashesOOB([]Flash{}); got != "" {
		t.Errorf("RenderFlashesOOB([]) = %q, want empty string", got)
	}
}

func TestRenderFlashesOOBSingle(t *testing.T) {
	result := RenderFlashesOOB([]Flash{{Level: FlashWarning, Message: "not_sortable (email): sort ignored"}})

	for _, want := range []string{
		`id="toasts"`,
		`hx-swap-oob="beforeend"`,
		`class="toast toast-warning"`,
		`role="status"`,
		`data-auto-dismiss="4000"`,
		"not_sortable (email): sort ignored",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("missing %q in %s", want, result)
		}
	}
}

func TestRenderFlashesOOBMultiple(t *testing.T) {
	result := RenderFlashesOOB([]Flash{
		{Level: FlashSuccess, Message: "First"},
		{Level: FlashError, Message: "Second"},
		{Level: FlashInfo, Message: "Third"},
	})

	if strings.Count(result, `id="toasts"`) != 1 {
		t.Error("Should have exactly one toasts container")
	}
	if strings.Count(result, `class="toast `) != 3 {
		t.Error("Should have three toast elements")
	}
	if strings.Index(result, "First") > strings.Index(result, "Third") {
		t.Error("flashes should keep their order")
	}
	if strings.Count(result, "<div") != strings.Count(result, "</div>") {
		t.Error("mismatched div tags")
	}
}

func TestRenderFlashesOOBEscaping(t *testing.T) {
	result := RenderFlashesOOB([]Flash{
		{Level: "<bad>", Message: "<script>alert('xss')</script>"},
	})

	if strings.Contains(result, "<script>") {
		t.Error("message should be escaped")
	}
	if !strings.Contains(result, "&lt;script&gt;") {
		t.Error("missing escaped message")
	}
	if strings.Contains(result, "toast-<bad>") {
		t.Error("level should be escaped")
	}
}

func TestToastContainer(t *testing.T) {
	var sb strings.Builder
	if err := ToastContainer().Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(sb.String(), `id="toasts"`) {
		t.Errorf("ToastContainer() = %s", sb.String())
	}
}
