package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/vpatch/internal/config"
	"github.com/vango-dev/vpatch/internal/errors"
	"github.com/vango-dev/vpatch/pkg/host/htmlhost"
	"github.com/vango-dev/vpatch/pkg/reconcile"
	"github.com/vango-dev/vpatch/pkg/remote"
	"github.com/vango-dev/vpatch/pkg/vdom"
)

func serveCmd(o *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve FILE",
		Short: "Serve a tree and stream its changes to websocket clients",
		Long: `Serve the tree described in FILE over HTTP.

  /          current markup
  /ws        host mutation op stream (binary frames)
  /metrics   Prometheus metrics

FILE is watched for changes; every successful reload is diffed
against what each client has and only the mutations are sent.

Examples:
  vpatch serve page.yaml
  vpatch serve page.yaml --addr=127.0.0.1:9000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				o.cfg.Serve.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, o, args[0])
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from vpatch.json)")

	return cmd
}

// server serves one watched tree file.
type server struct {
	path   string
	hub    *remote.Hub
	reg    *prometheus.Registry
	logger *slog.Logger
	o      *options

	mu   sync.RWMutex
	tree *vdom.VNode // last valid tree, never mounted
}

func newServer(o *options, path string) (*server, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mods := newModuleSet(o.cfg, reg)

	s := &server{
		path:   path,
		hub:    remote.NewHub(mods.build, o.logger),
		reg:    reg,
		logger: o.logger.With("component", "serve"),
		o:      o,
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// reload decodes the tree file and broadcasts it. A tree that fails to
// decode or validate keeps the previous one in place.
func (s *server) reload() error {
	v, err := readTree(s.path)
	if err != nil {
		return err
	}
	if err := s.hub.Broadcast(func() *vdom.VNode { return vdom.Clone(v) }); err != nil {
		return err
	}
	s.mu.Lock()
	s.tree = v
	s.mu.Unlock()
	return nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get(s.o.cfg.Serve.WSPath, s.hub.ServeWS)
	r.Handle(s.o.cfg.Serve.MetricsPath, promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{Registry: s.reg}))
	return r
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body data-vpatch-ws="{{.WSPath}}">{{.Body}}</body>
</html>
`))

// handleIndex renders the current tree into a fresh HTML host.
func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	v := vdom.Clone(s.tree)
	s.mu.RUnlock()

	ht, err := newHostTree(config.HostHTML)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	p := reconcile.New(nil, reconcile.WithAdapter(ht.api), reconcile.WithLogger(s.logger))
	if _, err := p.Mount(ht.root, v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = indexTemplate.Execute(w, map[string]any{
		"Title":  filepath.Base(s.path),
		"WSPath": s.o.cfg.Serve.WSPath,
		"Body":   template.HTML(htmlhost.RenderChildren(ht.root)),
	})
	if err != nil {
		s.logger.Warn("index render failed", "error", err)
	}
}

// watch reloads the tree whenever its file changes, until ctx is done.
// The directory is watched so editors that replace the file are seen.
func (s *server) watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(s.path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	const debounce = 100 * time.Millisecond
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			if err := s.reload(); err != nil {
				s.logger.Warn("reload failed", "path", s.path, "error", err)
				continue
			}
			s.logger.Info("reloaded", "path", s.path, "sessions", s.hub.Count())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watch error", "error", err)
		}
	}
}

func runServe(ctx context.Context, o *options, path string) error {
	s, err := newServer(o, path)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              o.cfg.Serve.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.watch(ctx); err != nil {
			s.logger.Error("watcher stopped", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	success(os.Stdout, "Serving %s on %s", path, o.cfg.Serve.Addr)
	info(os.Stdout, "websocket %s, metrics %s", o.cfg.Serve.WSPath, o.cfg.Serve.MetricsPath)

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("E141").Wrap(err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
