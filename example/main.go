package main

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/a-h/templ"
	log "github.com/bdlm/log"

	"github.com/pthm/hxgrid"
	"github.com/pthm/hxgrid/example/components"
)

func main() {
	level, _ := log.ParseLevel("debug")
	log.SetFormatter(&log.TextFormatter{ForceTTY: true})
	log.SetLevel(level)

	store := NewStore()

	// In production, load the key from configuration.
	key := []byte("example-key-must-be-32-bytes!!")
	if env := os.Getenv("HXGRID_KEY"); env != "" {
		key = []byte(env)
	}
	reg := hxgrid.NewRegistry(key)

	components.Init(store, reg)

	mux := http.NewServeMux()
	mux.Handle(hxgrid.DefaultPath, reg.Handler())
	mux.HandleFunc("/", handleIndex)

	addr := ":8080"
	log.Infof("starting server at http://localhost%s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if err := hxgrid.Render(w, r, layout(components.C.People.Initial())); err != nil {
		log.Errorf("render index: %v", err)
	}
}

func layout(body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := hxgrid.ToastContainer().Render(ctx, w); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

const head = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Staff directory</title>
<script src="https://unpkg.com/htmx.org@2.0.4"></script>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/@picocss/pico@2/css/pico.min.css">
</head>
<body><main class="container">
<h1>Staff directory</h1>
`
