package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/okian/agenteval/internal/adapters/http/api"
	"github.com/okian/agenteval/internal/adapters/http/site"
	"github.com/okian/agenteval/internal/adapters/http/swagger"
	app "github.com/okian/agenteval/internal/app"
	"github.com/okian/agenteval/pkg/logger"
	"github.com/okian/agenteval/pkg/metrics"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Evaluate the dataset and serve the interactive dashboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			deps, err := bootstrap(ctx, root)
			if err != nil {
				return err
			}
			if addr != "" {
				deps.cfg.Addr = addr
			}
			return serve(ctx, deps)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

// newMux registers every HTTP surface on one mux.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()

	site.Register(ctx, mux, site.WithMiddleware(api.MetricsMiddleware))
	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)
	return mux
}

func serve(ctx context.Context, deps *runtimeDeps) error {
	log := deps.log

	// The dashboard opens on a populated report; a broken dataset is fatal here.
	if _, err := deps.svc.Run(ctx); err != nil {
		return fmt.Errorf("initial run: %w", err)
	}

	srv := &http.Server{
		Addr:              deps.cfg.Addr,
		Handler:           newMux(ctx, deps.svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		startSystemMetricsUpdater(gctx)
		return nil
	})

	g.Go(func() error {
		log.Info(ctx, "starting HTTP server",
			logger.String("addr", deps.cfg.Addr),
			logger.String("dashboard", "http://"+displayAddr(deps.cfg.Addr)+site.DashboardPath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		// Wait for shutdown signal or a failed listener.
		<-gctx.Done()
		log.Info(ctx, "shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error(ctx, "server shutdown failed", logger.Error(err))
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	log.Info(ctx, "server stopped")
	return err
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}

// startSystemMetricsUpdater refreshes system metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	updateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
