package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/marquee/internal/adapters/http/api"
	"github.com/okian/marquee/internal/adapters/http/site"
	"github.com/okian/marquee/internal/adapters/http/swagger"
	"github.com/okian/marquee/internal/adapters/render"
	app "github.com/okian/marquee/internal/app"
	"github.com/okian/marquee/internal/config"
	"github.com/okian/marquee/pkg/logger"
	"github.com/okian/marquee/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 30 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "failed to read .env:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logging:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, logger.Get()); err != nil {
		logger.Get().Error(ctx, "marquee stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// newService maps configuration onto service options.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log),
		app.WithDataSource(cfg.DataSource),
		app.WithAnnotationsFile(cfg.AnnotationsFile),
		app.WithQueueSize(cfg.EventQueueSize),
		app.WithMaxSessions(cfg.MaxSessions),
		app.WithResizeDebounce(time.Duration(cfg.ResizeDebounceMS)*time.Millisecond),
		app.WithViewport(float64(cfg.ViewportWidth), float64(cfg.ViewportHeight)),
		app.WithEngineOptions(
			render.WithLaneGap(cfg.LaneGap),
			render.WithLabelPadding(cfg.LabelPadding),
			render.WithLabelDamping(cfg.LabelDamping),
			render.WithLabelMaxIterations(cfg.LabelMaxIterations),
			render.WithFontSize(cfg.FontSize),
		),
	)
}

// newMux registers every route group on a fresh mux.
func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	site.Register(ctx, mux)
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc).Register(ctx, mux)
	return mux
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	if err := metrics.StartSystemCollector(ctx); err != nil {
		log.Warn(ctx, "system metrics collector not started", logger.Error(err))
	}

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := svc.Stop(stopCtx); err != nil {
			log.Error(ctx, "service stop failed", logger.Error(err))
		}
	}()

	go startServiceMetricsUpdater(ctx, svc)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	log.Info(ctx, "server stopped")
	return nil
}

// startServiceMetricsUpdater refreshes the session and queue gauges between events.
func startServiceMetricsUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := svc.GetStats()
			if n, ok := stats["sessions"].(int); ok {
				metrics.UpdateSessionsActive(n)
			}
			if n, ok := stats["queueLength"].(int); ok {
				metrics.UpdateQueueSize(n)
			}
		}
	}
}
