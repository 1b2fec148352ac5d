package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/streamstore"
	"github.com/vango-dev/streamstore/internal/config"
	"github.com/vango-dev/streamstore/internal/demo"
	"github.com/vango-dev/streamstore/pkg/metrics"
	"github.com/vango-dev/streamstore/pkg/scope"
	"github.com/vango-dev/streamstore/pkg/server"
)

func serveCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the counter demo",
		Long: `Serve the counter demo over HTTP and websockets.

Routes:
  GET /         server-rendered page
  GET /ws       live session, one store per connection
  GET /metrics  Prometheus metrics (when metrics.enabled)
  GET /healthz  liveness probe

Examples:
  streamstore serve
  streamstore serve --addr=:9090
  STREAMSTORE_LOG_LEVEL=debug streamstore serve -c streamstore.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")
	return cmd
}

// newServer builds the demo server described by cfg.
func newServer(cfg *config.Config) *server.Server {
	scope.DebugMode = cfg.Runtime.Debug
	logger := slog.Default().With("component", "server")

	var storeOpts []streamstore.Option
	serverOpts := []server.Option{server.WithLogger(logger)}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace(cfg.Metrics.Namespace))
		storeOpts = append(storeOpts, streamstore.WithObserver(m))
		serverOpts = append(serverOpts, server.WithMetrics(m, reg))
	}

	app := demo.New(storeOpts...).App()
	return server.New(app, server.FromConfig(cfg), serverOpts...)
}

func runServe(ctx context.Context, cfg *config.Config) error {
	srv := newServer(cfg)
	info("listening on %s", cfg.Server.Address)
	return srv.Run(ctx)
}
