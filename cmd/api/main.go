package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectoinject/ectocontainer"
	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Ramsey-B/aster/config"
	datasetrepo "github.com/Ramsey-B/aster/internal/repositories/dataset"
	datasetrowrepo "github.com/Ramsey-B/aster/internal/repositories/datasetrow"
	lookupconfigrepo "github.com/Ramsey-B/aster/internal/repositories/lookupconfig"
	"github.com/Ramsey-B/aster/pkg/database"
	"github.com/Ramsey-B/aster/pkg/events"
	"github.com/Ramsey-B/aster/pkg/kafka"
	"github.com/Ramsey-B/aster/pkg/logging"
	"github.com/Ramsey-B/aster/pkg/lookup"
	"github.com/Ramsey-B/aster/pkg/middleware"
	"github.com/Ramsey-B/aster/pkg/redis"
	"github.com/Ramsey-B/aster/pkg/review"
	datasetroutes "github.com/Ramsey-B/aster/pkg/routes/dataset"
	"github.com/Ramsey-B/aster/pkg/routes/health"
	lookuproutes "github.com/Ramsey-B/aster/pkg/routes/lookup"
	lookupconfigroutes "github.com/Ramsey-B/aster/pkg/routes/lookupconfig"
	reviewroutes "github.com/Ramsey-B/aster/pkg/routes/review"
	"github.com/Ramsey-B/aster/pkg/startup"
	"github.com/Ramsey-B/aster/pkg/tracing"
	"github.com/Ramsey-B/aster/pkg/tracing/exporters"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, zapLogger, err := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.PrettyLogs,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zapLogger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Service exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger ectologger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := setupTracing(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to set up tracing: %w", err)
		}
		defer shutdown(context.Background())
	}

	db, err := database.Connect(ctx, database.Config{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db.DB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
	})
	if err := migrations.Migrate(cfg.DatabaseName, driver); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var cache *redis.Client
	if cfg.RedisEnabled {
		cache, err = redis.NewClient(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer cache.Close()
	}

	var sink events.Sink = events.NopSink{}
	var producer *kafka.Producer
	if cfg.KafkaEnabled {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaDecisionsTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		defer producer.Close()
		sink = events.NewEmitter(producer, logger)
	}

	dbInstance := database.NewDatabaseInstance(db, logger)
	datasets := datasetrepo.NewRepository(dbInstance, logger)
	rows := datasetrowrepo.NewRepository(dbInstance, logger)
	configs := lookupconfigrepo.NewRepository(dbInstance, logger)

	lookupService := lookup.NewService(rows, configs, cache, cfg.RowCacheTTL, cfg.FuzzyThreshold, cfg.ReviewThreshold, logger)
	reviewManager := review.NewManager(sink)

	container, err := ectoinject.NewDIDefaultContainer()
	if err != nil {
		return fmt.Errorf("failed to create DI container: %w", err)
	}
	if err := registerDependencies(container, datasets, rows, configs, lookupService, reviewManager); err != nil {
		return fmt.Errorf("failed to register dependencies: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	if cfg.TracingEnabled {
		e.Use(otelecho.Middleware(cfg.AppName))
	}
	e.HTTPErrorHandler = middleware.Error(logger)

	checker := health.NewChecker(dbInstance, cache, version)
	checker.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	datasetroutes.Register(api.Group("/datasets"))
	lookupconfigroutes.Register(api.Group("/datasets"), api.Group("/configs"))
	lookuproutes.Register(api.Group("/lookup"))
	reviewroutes.Register(api.Group("/reviews"))

	deps := startup.New(logger, cfg.StartupMaxAttempts)
	deps.AddDependency(&startup.FuncDependency{
		Name: "postgres",
		StartFunc: func(ctx context.Context) error {
			return dbInstance.PingContext(ctx)
		},
	})
	if cache != nil {
		deps.AddDependency(&startup.FuncDependency{
			Name: "redis",
			StartFunc: func(ctx context.Context) error {
				return cache.Ping(ctx)
			},
		})
	}
	if err := deps.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = deps.Stop(context.Background()) }()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:       time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second,
		IdleTimeout:       time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeoutSeconds) * time.Second,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(map[string]any{"port": cfg.Port}).Info("Starting HTTP server")
		if err := e.StartServer(server); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	checker.SetReady(true)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	checker.SetReady(false)
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func registerDependencies(
	container ectocontainer.DIContainer,
	datasets *datasetrepo.Repository,
	rows *datasetrowrepo.Repository,
	configs *lookupconfigrepo.Repository,
	lookupService *lookup.Service,
	reviewManager *review.Manager,
) error {
	if err := ectoinject.RegisterInstance[*datasetrepo.Repository](container, datasets); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*datasetrowrepo.Repository](container, rows); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*lookupconfigrepo.Repository](container, configs); err != nil {
		return err
	}
	if err := ectoinject.RegisterInstance[*lookup.Service](container, lookupService); err != nil {
		return err
	}
	return ectoinject.RegisterInstance[*review.Manager](container, reviewManager)
}

func setupTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	var exporter sdktrace.SpanExporter
	switch cfg.TracingExporter {
	case "console":
		exporter = &exporters.ConsoleExporter{}
	default:
		protocol := "grpc"
		if cfg.TracingExporter == "otlp-http" {
			protocol = "http"
		}

		var err error
		exporter, err = exporters.NewOTLPExporter(ctx, exporters.OTLPConfig{
			Endpoint: cfg.TracingEndpoint,
			Protocol: protocol,
			Insecure: true,
			Timeout:  10 * time.Second,
		})
		if err != nil {
			return nil, err
		}
	}

	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)
	tracing.SetTracer(provider.Tracer(cfg.AppName))

	return provider.Shutdown, nil
}
