package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/bryanwahyu/automarket-intake/internal/application"
	appscans "github.com/bryanwahyu/automarket-intake/internal/application/scans"
	"github.com/bryanwahyu/automarket-intake/internal/bootstrap"
	"github.com/bryanwahyu/automarket-intake/internal/config"
	domain "github.com/bryanwahyu/automarket-intake/internal/domain/scans"
	"github.com/bryanwahyu/automarket-intake/internal/infra/db/memory"
	mysqlp "github.com/bryanwahyu/automarket-intake/internal/infra/db/mysql"
	"github.com/bryanwahyu/automarket-intake/internal/infra/db/postgres"
	"github.com/bryanwahyu/automarket-intake/internal/infra/events"
	"github.com/bryanwahyu/automarket-intake/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/automarket-intake/internal/infra/storage"
	"github.com/bryanwahyu/automarket-intake/internal/logger"
	"github.com/bryanwahyu/automarket-intake/internal/metrics"
	"github.com/bryanwahyu/automarket-intake/internal/middleware"
	"github.com/bryanwahyu/automarket-intake/internal/telemetry"
)

// scanStore is what every backend provides.
type scanStore interface {
	domain.Repository
	domain.SchemaInitializer
	domain.Pinger
}

func main() {
	// path config.yaml
	defaultPath := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	path := pflag.StringP("config", "c", defaultPath, "path to the yaml config file")
	pflag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New(prometheus.DefaultRegisterer)

	tracing, err := telemetry.NewProvider(cfg.Tracing.Enabled, cfg.Tracing.ServiceName, os.Stdout)
	if err != nil {
		log.Fatal("tracing init error", zap.Error(err))
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal("store open error", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer closeStore()

	// schema must be ready before the listener exists
	boot := bootstrap.New(store, log.Named("bootstrap"), m)
	boot.Attempts = cfg.Bootstrap.Attempts
	boot.Backoff = cfg.Bootstrap.Backoff
	if res, err := boot.Run(ctx); err != nil {
		log.Fatal("database bootstrap failed, refusing to serve",
			zap.Stringer("state", res.State), zap.Int("attempts", res.Attempts), zap.Error(err))
	}

	sinks, closeSinks := openSinks(ctx, cfg, log)
	defer closeSinks()

	grader := domain.NewGrader()
	grader.AnalysisDelay = cfg.Grading.AnalysisDelay

	svc := &appscans.Service{
		Repo:         store,
		Grader:       grader,
		Mileage:      appscans.RandomMileage{},
		Clock:        application.SystemClock{},
		Tracer:       tracing.Tracer(),
		Sinks:        sinks,
		StoreTimeout: cfg.Store.Timeout,
		HistoryLimit: cfg.History.Limit,
		Metrics:      m,
		Logger:       log.Named("intake"),
	}

	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimit.Capacity > 0 {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimit.Capacity, cfg.Server.RateLimit.RefillRate)
		go limiter.Run(5*time.Minute, ctx.Done())
	}

	handler := httpserver.NewRouter(svc, httpserver.Options{
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		HealthCheckers: map[string]middleware.HealthChecker{
			"store": &middleware.StoreHealthChecker{Store: store},
		},
		RateLimiter: limiter,
		Metrics:     m,
		Gatherer:    prometheus.DefaultGatherer,
		Logger:      log.Named("http"),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server listening", zap.String("addr", addr), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	log.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	if err := tracing.Shutdown(ctx2); err != nil {
		log.Error("tracing shutdown error", zap.Error(err))
	}
}

func openStore(cfg *config.Config) (scanStore, func(), error) {
	var (
		db  *sql.DB
		err error
	)
	switch cfg.Database.Driver {
	case config.DriverMemory:
		return memory.NewScanRepository(), func() {}, nil
	case config.DriverMySQL:
		if db, err = mysqlp.Open(cfg.MySQLDSN()); err != nil {
			return nil, nil, err
		}
		return mysqlp.NewScanRepository(db), func() { db.Close() }, nil
	default:
		if db, err = postgres.Open(cfg.PostgresDSN()); err != nil {
			return nil, nil, err
		}
		return postgres.NewScanRepository(db), func() { db.Close() }, nil
	}
}

// openSinks connects the optional post-persist sinks. A sink that cannot be
// reached at startup is skipped; grading never depends on it.
func openSinks(ctx context.Context, cfg *config.Config, log *zap.Logger) ([]domain.Sink, func()) {
	var sinks []domain.Sink
	var closers []func() error

	if cfg.Minio.Enabled {
		archive, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Warn("minio archive disabled", zap.Error(err))
		} else {
			sinks = append(sinks, archive)
		}
	}

	if cfg.Redis.Enabled {
		pub, err := events.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.Channel, cfg.Redis.Timeout)
		if err != nil {
			log.Warn("redis events disabled", zap.Error(err))
		} else {
			sinks = append(sinks, pub)
			closers = append(closers, pub.Close)
		}
	}

	return sinks, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("sink close error", zap.Error(err))
			}
		}
	}
}
