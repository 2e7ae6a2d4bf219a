// Package main is the entry point for the annotation server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/tagqa/internal/annotation"
	"github.com/onnwee/tagqa/internal/api"
	"github.com/onnwee/tagqa/internal/catalog"
	"github.com/onnwee/tagqa/internal/config"
	"github.com/onnwee/tagqa/internal/fsutil"
	"github.com/onnwee/tagqa/internal/health"
	"github.com/onnwee/tagqa/internal/identity"
	"github.com/onnwee/tagqa/internal/middleware"
	"github.com/onnwee/tagqa/internal/ranking"
	"github.com/onnwee/tagqa/internal/tracing"
)

const serviceName = "tagqa"

func main() {
	help := flag.Bool("help", false, "display help message")
	configPath := flag.String("config", "", "optional YAML config file; environment variables take precedence")
	flag.Parse()

	if *help {
		fmt.Println("Music tag QA annotation server")
		fmt.Println()
		fmt.Println("Usage: tagqa [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// A missing .env file is fine; real deployments set the environment.
	_ = godotenv.Load()

	cfg, errs := config.Load(*configPath)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config error:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "config", cfg.LogSummary())

	tp, err := tracing.NewProvider(tracing.Config{
		ServiceName:  serviceName,
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: cfg.TracingExporter,
		OTLPEndpoint: cfg.TracingEndpoint,
		SamplingRate: cfg.TracingSamplingRate,
		InsecureMode: cfg.TracingInsecure,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      a.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "variant", cfg.Variant, "store", cfg.StoreBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exitCode := 0
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		exitCode = 1
	}
	a.close()
	if err := tp.Shutdown(ctx); err != nil {
		logger.Error("failed to flush traces", "error", err)
	}

	logger.Info("server stopped")
	os.Exit(exitCode)
}

// app is the wired HTTP handler plus whatever must be released on exit.
type app struct {
	handler http.Handler
	closers []func() error
}

func (a *app) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			slog.Warn("failed to release resource", "error", err)
		}
	}
}

// results is the selected annotation store and its readiness probe.
type results struct {
	store   annotation.Store
	checker api.HealthChecker
	redis   *redis.Client
	closer  func() error
}

// openStore connects the configured result store backend.
func openStore(cfg *config.Config, fsys fsutil.FileSystem) (*results, error) {
	switch cfg.StoreBackend {
	case config.StoreFile:
		if err := fsys.MkdirAll(cfg.ResultsDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create results dir: %w", err)
		}
		return &results{
			store:   annotation.NewFileStore(fsys, cfg.ResultsDir),
			checker: health.NewDirChecker(fsys, cfg.ResultsDir),
		}, nil

	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		return &results{
			store:   annotation.NewRedisStore(client, cfg.RedisPrefix),
			checker: health.NewRedisChecker(client),
			redis:   client,
			closer:  client.Close,
		}, nil

	case config.StoreS3:
		client, err := annotation.NewS3Client(annotation.S3Config{
			Bucket:          cfg.S3BucketName,
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return &results{
			store:   annotation.NewS3Store(client, cfg.S3BucketName, cfg.S3Prefix),
			checker: health.NewS3Checker(client, cfg.S3BucketName),
		}, nil

	case config.StoreSQLite:
		store, err := annotation.OpenSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &results{
			store:   store,
			checker: health.NewDBChecker(store.DB()),
			closer:  store.Close,
		}, nil

	case config.StoreMemory:
		return &results{store: annotation.NewMemoryStore()}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// variant holds what differs between the two review tools.
type variant struct {
	answers        annotation.AnswerSet
	encoding       annotation.Encoding
	confidenceGate bool
}

func variantFor(name string) variant {
	if name == config.VariantTagRetrieval {
		return variant{answers: annotation.YesNo, encoding: annotation.EncodingText}
	}
	return variant{answers: annotation.Correctness, encoding: annotation.EncodingJSON, confidenceGate: true}
}

// newApp builds the full middleware chain and router for cfg.
func newApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	return newAppWithFS(cfg, logger, fsutil.OSFileSystem{})
}

func newAppWithFS(cfg *config.Config, logger *slog.Logger, fsys fsutil.FileSystem) (*app, error) {
	format, err := ranking.FormatByName(cfg.Variant)
	if err != nil {
		return nil, err
	}
	format = format.WithTopN(cfg.TopN).WithAudioURLTemplate(cfg.AudioURLTemplate)

	cat, err := catalog.Load(catalog.Config{
		Format:      cfg.Variant,
		RankingsDir: cfg.RankingsDir,
		Tasks:       cfg.Tasks,
		Methods:     cfg.Methods,
		Embeddings:  cfg.Embeddings,
		Models:      cfg.Models,
		FS:          fsys,
	})
	if err != nil {
		return nil, err
	}

	res, err := openStore(cfg, fsys)
	if err != nil {
		return nil, err
	}
	a := &app{}
	if res.closer != nil {
		a.closers = append(a.closers, res.closer)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	httpMetrics := middleware.NewMetrics()
	rankingMetrics := ranking.NewMetrics()
	annotationMetrics := annotation.NewMetrics()
	for _, register := range []func(prometheus.Registerer) error{
		httpMetrics.Register,
		rankingMetrics.Register,
		annotationMetrics.Register,
	} {
		if err := register(reg); err != nil {
			a.close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	loader := ranking.NewLoader(ranking.LoaderConfig{
		Format:  format,
		FS:      fsys,
		Cache:   ranking.NewCache(),
		Metrics: rankingMetrics,
		Logger:  logger,
	})

	v := variantFor(cfg.Variant)
	service, err := annotation.NewService(annotation.Config{
		Store:    res.store,
		Answers:  v.answers,
		Encoding: v.encoding,
		Backend:  cfg.StoreBackend,
		Metrics:  annotationMetrics,
		Logger:   logger,
	})
	if err != nil {
		a.close()
		return nil, err
	}

	// Rate limit counters live next to the results when Redis is the store.
	var limitStore middleware.RateLimitStore = middleware.NewInMemoryRateLimitStore()
	if res.redis != nil {
		limitStore = middleware.NewRedisRateLimitStore(res.redis).WithMetrics(httpMetrics).WithLogger(logger)
	}
	writeLimiter := middleware.RateLimiter(limitStore, middleware.PerMinute(cfg.RateLimitPerMinute), middleware.IPKeyFunc(), httpMetrics)

	router := api.NewRouter(api.RouterConfig{
		Catalog:        cat,
		Loader:         loader,
		Service:        service,
		Identity:       identity.NewChecker(nil),
		ConfidenceGate: v.confidenceGate,
		Health: api.HealthHandlersConfig{
			StoreChecker:    res.checker,
			StoreBackend:    cfg.StoreBackend,
			RankingsChecker: health.NewDirChecker(fsys, cfg.RankingsDir),
			MetricsEnabled:  true,
		},
		Gatherer:     reg,
		CORS:         middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins},
		WriteLimiter: writeLimiter,
	})

	// RequestID -> Tracing -> Logging -> HTTPMetrics -> router
	handler := middleware.HTTPMetrics(httpMetrics)(router)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Tracing(serviceName)(handler)
	a.handler = middleware.RequestID(handler)

	summary := cat.Summary()
	tags := 0
	for _, t := range summary.Tags {
		tags += len(t)
	}
	logger.Info("catalog loaded", "variant", cat.Format(), "groups", len(cat.Groups()), "tags", tags)

	return a, nil
}
