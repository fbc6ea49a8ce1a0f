package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/okian/attrition/internal/adapters/http/api"
	"github.com/okian/attrition/internal/adapters/http/swagger"
	"github.com/okian/attrition/internal/adapters/repository"
	"github.com/okian/attrition/internal/adapters/retention"
	app "github.com/okian/attrition/internal/app"
	"github.com/okian/attrition/internal/config"
	"github.com/okian/attrition/internal/domain/scoring"
	"github.com/okian/attrition/internal/domain/validation"
	"github.com/okian/attrition/pkg/logger"
	"github.com/okian/attrition/pkg/metrics"
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

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.InitWithFormat(cfg.LogFormat); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}

	log := logger.Get()
	code := 0
	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "attrition service failed", logger.Error(err))
		code = 1
	}
	_ = logger.Sync()
	os.Exit(code)
}

// run wires the service and serves HTTP until ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	store, err := repository.NewSQLiteStore(ctx, cfg.DatabasePath,
		repository.WithLogger(log.Named("repository")))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	scorer, watcher, err := newScorer(cfg, log)
	if err != nil {
		_ = store.Close()
		return err
	}

	validator := validation.New(
		validation.WithAgeRange(cfg.AgeMin, cfg.AgeMax),
		validation.WithSalaryTolerance(cfg.SalaryTolerance),
		validation.WithMinPromotionYear(cfg.MinPromotionYear),
	)

	pruner := retention.NewPruner(store, retention.Config{
		RetentionDays: cfg.RetentionDays,
		Schedule:      cfg.RetentionSchedule,
	}, retention.WithLogger(log))

	svc := app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithScorer(scorer),
		app.WithValidator(validator),
		app.WithRetention(retention.NewScheduler(pruner)),
		app.WithModelWatcher(watcher),
	)
	if err := svc.Start(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newHandler(ctx, cfg, svc, log),
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
		log.Info(gctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info(context.Background(), "shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		log.Info(context.Background(), "server stopped")
		return nil
	})

	return g.Wait()
}

// newScorer serves the embedded model, or the artifact at cfg.ModelPath with
// a watcher that hot-reloads it.
func newScorer(cfg *config.Config, log logger.Logger) (*scoring.LogisticScorer, *scoring.Watcher, error) {
	if cfg.ModelPath == "" {
		s := scoring.NewLogisticScorer()
		m := s.Holder().Load()
		metrics.SetModelInfo(m.Name, m.Version)
		return s, nil, nil
	}

	m, err := scoring.LoadModelFile(cfg.ModelPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load model: %w", err)
	}
	metrics.SetModelInfo(m.Name, m.Version)

	holder := scoring.NewModelHolder(m)
	watcher := scoring.NewWatcher(cfg.ModelPath, holder,
		scoring.WithDebounce(cfg.ModelReloadDebounce),
		scoring.WithWatcherLogger(log.Named("model")),
		scoring.WithOnReload(func(m *scoring.Model, err error) {
			metrics.RecordModelReload(err == nil)
			if err == nil {
				metrics.SetModelInfo(m.Name, m.Version)
			}
		}),
	)
	return scoring.NewLogisticScorer(scoring.WithHolder(holder)), watcher, nil
}

// newHandler builds the HTTP routes. Every response carries X-Request-ID.
func newHandler(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) http.Handler {
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc,
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithLogger(log.Named("api")),
	)
	apiServer.Register(ctx, mux)

	return api.RequestIDMiddleware(mux.ServeHTTP)
}

// startSystemMetricsUpdater updates system metrics until ctx is cancelled.
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

	if m.NumGC > 0 {
		// Average pause across all collections
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
