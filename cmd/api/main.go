package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/madfam-org/ticketbooth/internal/api"
	"github.com/madfam-org/ticketbooth/internal/config"
	"github.com/madfam-org/ticketbooth/internal/db"
	"github.com/madfam-org/ticketbooth/internal/logging"
	"github.com/madfam-org/ticketbooth/internal/monitoring"
	"github.com/madfam-org/ticketbooth/internal/services"
	"github.com/madfam-org/ticketbooth/internal/validation"
)

const serviceName = "ticketbooth-api"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}

	// Setup logging
	logger, err := logging.NewStructuredLogger(&logging.LogConfig{
		Level:       cfg.LogLevel.String(),
		Format:      cfg.LogFormat,
		Output:      "stdout",
		ServiceName: serviceName,
		Version:     version,
		Environment: cfg.Environment,
	})
	if err != nil {
		logrus.Fatal("Failed to initialize logger: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if len(os.Args) > 1 && os.Args[1] == "count" {
		if err := printCount(ctx, cfg, logger); err != nil {
			logger.Error(ctx, "Failed to count tokens", logging.Error("error", err))
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "Server exited with error", logging.Error("error", err))
		os.Exit(1)
	}
}

// printCount reports how many tokens the configured store holds.
func printCount(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	store, err := db.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%d tokens stored (%s)\n", count, cfg.StorageDriver)
	return nil
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	if cfg.APIKey == "" {
		logger.Warn(ctx, "No API key configured; every /api request will fail with a configuration error")
	}

	// Tracing
	if cfg.TracingEnabled {
		shutdownTracing, err := logging.InitTracing(&logging.TracingConfig{
			ServiceName:    serviceName,
			Version:        version,
			Environment:    cfg.Environment,
			JaegerEndpoint: cfg.JaegerEndpoint,
			Sampler:        cfg.TracingSampler,
		})
		if err != nil {
			return err
		}
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := shutdownTracing(flushCtx); err != nil {
				logger.Warn(flushCtx, "Failed to flush traces", logging.Error("error", err))
			}
		}()
	}

	// Storage
	store, err := db.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	metricsCollector := monitoring.NewMetricsCollector()

	g, gctx := errgroup.WithContext(ctx)

	if pg, ok := store.(*db.PostgresStore); ok {
		if err := metricsCollector.RegisterDBStats(pg.Manager().DB()); err != nil {
			return err
		}
		g.Go(func() error {
			pg.Manager().WatchPool(gctx, 30*time.Second)
			return nil
		})
	}

	tokenService := services.NewTokenService(
		monitoring.InstrumentStore(store, cfg.StorageDriver, metricsCollector),
		logger,
	)

	// Setup HTTP server
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	apiHandler := api.NewHandler(
		tokenService,
		validation.NewValidator(),
		store,
		metricsCollector,
		logger,
		api.BuildInfo{Service: serviceName, Version: version},
	)
	router := api.NewRouter(apiHandler, api.RouterConfig{APIKey: cfg.APIKey})

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	g.Go(func() error {
		logger.Info(gctx, "Ticketbooth API starting",
			logging.String("port", cfg.Port),
			logging.String("environment", cfg.Environment),
			logging.String("storage_driver", cfg.StorageDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info(context.Background(), "Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info(context.Background(), "Server exiting")
	return nil
}
