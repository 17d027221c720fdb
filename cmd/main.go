package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/grantwise/matchd/internal/adapters/auth"
	"github.com/grantwise/matchd/internal/adapters/catalog"
	"github.com/grantwise/matchd/internal/adapters/feed"
	"github.com/grantwise/matchd/internal/adapters/http/api"
	app "github.com/grantwise/matchd/internal/app"
	"github.com/grantwise/matchd/internal/config"
	"github.com/grantwise/matchd/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 0 // unlimited; the SSE stream endpoint holds connections open
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	authn, err := auth.NewJWTAuthenticator(cfg.HandshakeSecret)
	if err != nil {
		log.Error(ctx, "failed to build authenticator", logger.Error(err))
		return
	}

	// The catalog is in-memory; candidate updates flow through the change
	// feed and re-enqueue affected profiles for rescoring.
	changes := feed.NewInMemoryFeed()
	store := catalog.NewInMemoryCatalog()

	svc := app.New(
		app.WithLogger(log),
		app.WithCatalog(store, store),
		app.WithAuthenticator(authn),
		app.WithChangeFeed(changes),
		app.WithScoreThreshold(cfg.ScoreThreshold),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.JobQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithSweep(
			time.Duration(cfg.SweepIntervalSeconds)*time.Second,
			time.Duration(cfg.SessionTTLSeconds)*time.Second,
		),
		app.WithDeliveryTimeout(time.Duration(cfg.DeliveryTimeoutMS)*time.Millisecond),
		app.WithStreamBuffer(cfg.StreamBuffer),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}

	router := chi.NewRouter()
	api.NewServer(svc, svc).Register(router)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "http server listening", logger.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info(ctx, "shutdown signal received")
	case err := <-errCh:
		log.Error(ctx, "http server failed", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn(shutdownCtx, "http shutdown incomplete", logger.Error(err))
	}
	svc.Stop()
	log.Info(shutdownCtx, "service stopped")
}
