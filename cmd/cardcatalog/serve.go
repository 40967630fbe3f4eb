package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/cardcatalog/internal/adapters/http/api"
	"github.com/okian/cardcatalog/internal/adapters/http/swagger"
	service "github.com/okian/cardcatalog/internal/app"
	"github.com/okian/cardcatalog/pkg/logger"
	"github.com/okian/cardcatalog/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeout              = 10 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	systemMetricsInterval     = 10 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// Root context with cancel on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc := newService(cfg)
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer func() {
				if err := svc.Stop(); err != nil {
					logger.Get().Error(context.Background(), "service stop failed", logger.Error(err))
				}
			}()

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           newMux(ctx, svc),
				ReadTimeout:       readTimeout,
				WriteTimeout:      writeTimeout,
				IdleTimeout:       idleTimeout,
				ReadHeaderTimeout: readHeaderTimeout,
			}
			return serve(ctx, srv, svc, cfg.ShutdownTimeout(), cfg.PoolStatsInterval())
		},
	}
}

func newMux(ctx context.Context, svc *service.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc.Catalog(), svc, svc, logger.Named("http")).Register(ctx, mux)
	return mux
}

// serve runs the HTTP server and the metric updaters until ctx is done or
// one of them fails, then shuts the server down within shutdownTimeout.
func serve(ctx context.Context, srv *http.Server, svc *service.Service, shutdownTimeout, poolInterval time.Duration) error {
	log := logger.Get()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info(gctx, "starting HTTP server", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(gctx, "shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(gctx, "server shutdown failed", logger.Error(err))
			return err
		}
		log.Info(gctx, "server stopped")
		return nil
	})

	g.Go(func() error { return svc.RunPoolMetrics(gctx, poolInterval) })
	g.Go(func() error { return runSystemMetrics(gctx, systemMetricsInterval) })

	return g.Wait()
}

// runSystemMetrics refreshes process metrics until ctx is done.
func runSystemMetrics(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	var avgPauseMs float64
	if m.NumGC > 0 {
		avgPauseMs = float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
	}
	metrics.UpdateSystem(m.Alloc, runtime.NumGoroutine(), avgPauseMs)
}
