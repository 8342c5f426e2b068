package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/a-h/templ"
	log "github.com/bdlm/log"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pthm/hxgrid"
	"github.com/pthm/hxgrid/lib/dataset"
)

const htmxScript = "https://unpkg.com/htmx.org@2.0.4"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the configured dataset as an interactive grid",
	Long: `Serve starts an HTTP server with a single page showing the configured
dataset as a grid that can be filtered, sorted, paged, selected and exported.

Grid state travels in signed tokens. Set key (or HXGRID_KEY) so tokens
survive restarts; without it a random key is generated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		engine, err := newEngine(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		src, _, closeFn, err := openSource(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		key, err := secretKey(cfg.Key)
		if err != nil {
			return err
		}

		reg := hxgrid.NewRegistry(key)
		grid := hxgrid.New("data", engine, src, hxgrid.WithPageSize(cfg.PageSize))
		reg.Add(grid)

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           newMux(reg, page(grid)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			errc <- srv.ListenAndServe()
		}()
		color.Green("✓ serving on http://localhost%s", cfg.Addr)

		select {
		case err := <-errc:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			log.Infof("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default is addr from config, :8080)")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

// secretKey returns the configured key, or a random one.
func secretKey(configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	log.Warnf("no key configured, generating one; grid links will not survive a restart")
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}
	return key, nil
}

func newMux(reg *hxgrid.Registry, index templ.Component) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(hxgrid.DefaultPath, logRequests(reg.Handler()))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if err := hxgrid.Render(w, r, index); err != nil {
			log.Errorf("render index: %v", err)
		}
	})
	return mux
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.WithField("method", r.Method).
			WithField("path", r.URL.Path).
			Debugf("handled in %s", time.Since(start))
	})
}

// page is the document wrapping the grid.
func page(grid *hxgrid.Grid[dataset.Record]) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>hxgrid</title><script src="`+htmxScript+`"></script></head><body>`); err != nil {
			return err
		}
		if err := hxgrid.ToastContainer().Render(ctx, w); err != nil {
			return err
		}
		if err := grid.Initial().Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
