package hxgrid

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// Flash levels for toast notifications.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashWarning = "warning"
	FlashInfo    = "info"
)

// flashDismissMillis is how long a toast stays before auto-dismiss.
const flashDismissMillis = "4000"

// Flash is a one-time notification shown as a toast.
//
// Flashes render as out-of-band swaps appended to the #toasts container,
// and the data-auto-dismiss attribute removes them after a short delay.
// Grids also use flashes to surface engine diagnostics such as a filter
// value that is not a number.
//
// Typical usage from an action handler:
//
//	return hxgrid.OK(st).Flash(hxgrid.FlashSuccess, "Archived 3 rows")
//	return hxgrid.Err(st, err).Flash(hxgrid.FlashError, "Archive failed")
//
// Several flashes can be returned from one action; each appears as its
// own toast.
type Flash struct {
	Level   string
	Message string
}

// RenderFlashesOOB renders flashes as an out-of-band swap appending to the
// #toasts container with hx-swap-oob="beforeend". Grids call it after
// their own markup; custom handlers can append it the same way:
//
//	io.WriteString(w, hxgrid.RenderFlashesOOB([]hxgrid.Flash{
//	    {Level: hxgrid.FlashInfo, Message: "Saved"},
//	}))
//
// Level and message are HTML-escaped.
func RenderFlashesOOB(flashes []Flash) string {
	if len(flashes) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<div id="toasts" hx-swap-oob="beforeend">`)
	for _, f := range flashes {
		sb.WriteString(`<div class="toast toast-`)
		sb.WriteString(templ.EscapeString(f.Level))
		sb.WriteString(`" role="status" data-auto-dismiss="` + flashDismissMillis + `">`)
		sb.WriteString(templ.EscapeString(f.Message))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)
	return sb.String()
}

// ToastContainer renders the #toasts element flashes are appended to.
//
// Place it once in the page layout, typically near the end of <body>:
//
//	@hxgrid.ToastContainer()
//
// Position it with CSS (usually fixed to a corner); without it flashes
// have nowhere to land.
func ToastContainer() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<div id="toasts" class="toast-container" aria-live="polite"></div>`)
		return err
	})
}
