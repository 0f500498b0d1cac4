// Command dnaauth-server runs the school dashboard API behind the DNA
// fingerprint engine.
//
// Usage:
//
//	dnaauth-server --config config.yaml
//	dnaauth-server --redis-embedded --log-level debug
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	dnaAuth "github.com/MrEthical07/dnaAuth"
	"github.com/MrEthical07/dnaAuth/internal/httpapi"
	"github.com/MrEthical07/dnaAuth/internal/records"
	"github.com/MrEthical07/dnaAuth/internal/settings"
	"github.com/MrEthical07/dnaAuth/metrics/export/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dnaauth-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.String("config", "", "path to YAML config file")
	addr := pflag.String("addr", "", "listen address (overrides server.addr)")
	redisAddr := pflag.String("redis-addr", "", "redis address (overrides redis.addr)")
	embedded := pflag.Bool("redis-embedded", false, "run an in-process miniredis for sessions")
	logLevel := pflag.String("log-level", "", "log level: debug, info, warn, error")
	pflag.Parse()

	s, err := settings.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		s.Server.Addr = *addr
	}
	if *redisAddr != "" {
		s.Redis.Addr = *redisAddr
		s.Redis.Embedded = false
	}
	if *embedded {
		s.Redis.Embedded = true
		s.Redis.Addr = ""
	}
	if *logLevel != "" {
		s.Logging.Level = *logLevel
	}
	if err := s.Validate(); err != nil {
		return err
	}

	logger := s.Logging.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	rdb, cleanup, err := openRedis(s.Redis, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	builder := dnaAuth.New().
		WithConfig(s.Engine).
		WithProfiles(s.Profiles).
		WithLogger(logger)
	if len(s.Permissions) > 0 {
		builder = builder.WithPermissions(s.Permissions)
	}
	if rdb != nil {
		builder = builder.WithRedis(rdb)
	}
	if s.Engine.Audit.Enabled {
		builder = builder.WithAuditSink(dnaAuth.NewJSONWriterSink(os.Stdout))
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}
	defer engine.Close()

	for _, w := range s.Engine.Lint() {
		logger.Warn("config lint", "code", w.Code, "severity", w.Severity.String(), "message", w.Message)
	}

	var metricsHandler http.Handler
	if s.Engine.Metrics.Enabled {
		metricsHandler = prometheus.NewPrometheusExporter(engine).Handler()
	}

	router := httpapi.NewRouter(httpapi.Options{
		Engine:         engine,
		Records:        records.NewStore(s.Engine.Institution.Name, nil),
		Logger:         logger,
		Metrics:        metricsHandler,
		CORSOrigins:    s.Server.CORSOrigins,
		RequestTimeout: s.Server.RequestTimeout,
		AccessLog:      true,
	})

	srv := &http.Server{
		Addr:              s.Server.Addr,
		Handler:           router,
		ReadTimeout:       s.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			"addr", s.Server.Addr,
			"profiles", len(engine.Profiles()),
			"redis", rdb != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openRedis returns nil when sessions should stay in process memory.
func openRedis(cfg settings.RedisSettings, logger *slog.Logger) (*redis.Client, func(), error) {
	switch {
	case cfg.Embedded:
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("starting embedded redis: %w", err)
		}
		logger.Info("embedded redis started", "addr", mr.Addr())
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		return rdb, func() {
			_ = rdb.Close()
			mr.Close()
		}, nil
	case cfg.Addr != "":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connecting to redis %s: %w", cfg.Addr, err)
		}
		return rdb, func() { _ = rdb.Close() }, nil
	default:
		return nil, func() {}, nil
	}
}
