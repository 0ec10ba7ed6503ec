package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kisangi1/The-SOL-NEW/internal/api"
	"github.com/Kisangi1/The-SOL-NEW/internal/blogstore"
	"github.com/Kisangi1/The-SOL-NEW/internal/cache"
	"github.com/Kisangi1/The-SOL-NEW/internal/config"
	"github.com/Kisangi1/The-SOL-NEW/internal/database"
	"github.com/Kisangi1/The-SOL-NEW/internal/domain"
	"github.com/Kisangi1/The-SOL-NEW/internal/events"
	"github.com/Kisangi1/The-SOL-NEW/internal/logging"
	"github.com/Kisangi1/The-SOL-NEW/internal/mailer"
	"github.com/Kisangi1/The-SOL-NEW/internal/media"
	"github.com/Kisangi1/The-SOL-NEW/internal/metrics"
	"github.com/Kisangi1/The-SOL-NEW/internal/service"
	"github.com/Kisangi1/The-SOL-NEW/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mailSender := mailer.NewSMTPMailer(cfg.SMTP, &logger)
	mailWorker := newMailWorker(cfg, db, mailSender, redisClient)
	go mailWorker.Start(ctx)

	eventBus := events.NewEventBus()
	catalogCache := buildCache(cfg, redisClient, &logger)
	service.RegisterEventHandlers(eventBus, catalogCache, &logger)

	bookings := service.NewBookingService(db, eventBus, mailWorker, &logger)
	catalog := service.NewCatalogService(db, catalogCache, eventBus, &logger)
	subscribers := service.NewSubscriberService(db, eventBus, mailWorker, &logger)

	blogs := initBlogStore(ctx, cfg, &logger)
	uploader := initUploader(cfg, &logger)

	httpServer := api.NewHTTPServer(*cfg, bookings, catalog, subscribers, blogs, uploader, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func newMailWorker(cfg *config.Config, db *database.DB, sender mailer.Sender, redisClient *redis.Client) *worker.MailWorker {
	retry := worker.RetryPolicy{
		MaxRetries:    cfg.Worker.MaxRetries,
		InitialDelay:  time.Duration(cfg.Worker.InitialDelaySeconds) * time.Second,
		MaxDelay:      time.Duration(cfg.Worker.MaxDelaySeconds) * time.Second,
		BackoffFactor: cfg.Worker.BackoffFactor,
	}

	w := worker.NewMailWorker(db, sender, redisClient, retry, nil)
	w.SetPolling(time.Duration(cfg.Worker.PollIntervalSeconds)*time.Second, cfg.Worker.BatchSize)
	return w
}

// buildCache слоит redis-кэш поверх локального, чтобы переживать
// отказ redis без потери каталога.
func buildCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) cache.Cache {
	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	memory := cache.NewMemoryCache(ttl)
	if redisClient == nil {
		return memory
	}
	return cache.NewFailoverCache(cache.NewRedisCache(redisClient, "catalog", ttl), memory, logger)
}

func initBlogStore(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.BlogRepository {
	if cfg.Mongo.URI == "" {
		logger.Warn().Msg("mongo uri is not set, blog endpoints disabled")
		return nil
	}

	store, err := blogstore.NewStore(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("mongo connection failed, continuing without blogs")
		return nil
	}

	logger.Info().Str("database", cfg.Mongo.Database).Msg("mongo connected")
	return store
}

func initUploader(cfg *config.Config, logger *zerolog.Logger) media.Uploader {
	if cfg.Cloudinary.CloudName == "" || cfg.Cloudinary.UploadPreset == "" {
		logger.Warn().Msg("cloudinary is not configured, image uploads disabled")
		return nil
	}
	return media.NewCloudinaryUploader(cfg.Cloudinary, logger)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, cfg *config.Config, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
