package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/tablenode/internal/config"
	"github.com/vango-dev/tablenode/internal/demo"
	"github.com/vango-dev/tablenode/pkg/component"
	"github.com/vango-dev/tablenode/pkg/inspect"
	"github.com/vango-dev/tablenode/pkg/metrics"
	"github.com/vango-dev/tablenode/pkg/view"
)

func serveCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo screen with the inspector",
		Long: `Run the table screen on a live loop and serve the inspector.

Routes:
  GET  /tree               mounted tree as JSON
  GET  /pool               view pool statistics
  GET  /metrics            Prometheus metrics
  GET  /ws                 live stream of patch batches
  GET  /state              current screen state
  POST /rows/{idx}/delete  tap DEL on a row

Examples:
  tablenode serve
  tablenode serve --addr :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Inspector.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Inspector listen address (default from config)")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	collector := metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace(cfg.Metrics.Namespace))

	loop := component.NewLoop(component.WithLoopLogger(logger))
	defer loop.Close()

	var publish func(component.RenderInfo)
	screen := demo.NewScreen(loop, cfg,
		demo.WithLogger(logger),
		demo.WithMetrics(collector),
		demo.WithObserver(func(info component.RenderInfo) {
			if publish != nil {
				publish(info)
			}
		}),
	)
	srv := inspect.New(loop, screen.Component(),
		inspect.WithGatherer(reg),
		inspect.WithClientBuffer(cfg.Inspector.ClientBuffer),
		inspect.WithLogger(logger),
	)
	publish = srv.Publish
	defer srv.Close()

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()

	bounds := view.Size{Width: cfg.Demo.Width, Height: cfg.Demo.Height}
	var loadErr error
	if err := srv.OnLoop(ctx, func() { loadErr = screen.Load(bounds) }); err != nil {
		return err
	}
	if loadErr != nil {
		return loadErr
	}
	logger.Info("screen loaded", "rows", cfg.Demo.Items, "bounds", bounds)

	if cfg.Inspector.Addr == "" {
		<-ctx.Done()
		return nil
	}

	router := srv.Router()
	mountDemoRoutes(router, srv, screen)
	httpSrv := &http.Server{
		Addr:              cfg.Inspector.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("inspector listening", "addr", cfg.Inspector.Addr)
		serveErr <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case err := <-loopErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}

func mountDemoRoutes(r chi.Router, srv *inspect.Server, screen *demo.Screen) {
	r.Get("/state", func(w http.ResponseWriter, req *http.Request) {
		inspect.WriteJSON(w, http.StatusOK, screen.State())
	})

	r.Post("/rows/{idx}/delete", func(w http.ResponseWriter, req *http.Request) {
		idx, err := strconv.Atoi(chi.URLParam(req, "idx"))
		if err != nil {
			http.Error(w, "invalid row", http.StatusBadRequest)
			return
		}
		var tapped bool
		if err := srv.OnLoop(req.Context(), func() { tapped = screen.Tap(idx) }); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if !tapped {
			http.Error(w, "row has no active DEL button", http.StatusConflict)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
}
