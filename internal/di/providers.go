package di

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"logistics-scheduler-service/internal/adapters/cache"
	"logistics-scheduler-service/internal/adapters/directions"
	"logistics-scheduler-service/internal/adapters/docstore"
	"logistics-scheduler-service/internal/adapters/events"
	"logistics-scheduler-service/internal/adapters/repositories"
	"logistics-scheduler-service/internal/adapters/storage"
	"logistics-scheduler-service/internal/api"
	"logistics-scheduler-service/internal/config"
	"logistics-scheduler-service/internal/platform/compress"
	"logistics-scheduler-service/internal/platform/db"
	"logistics-scheduler-service/internal/platform/logging"
	"logistics-scheduler-service/internal/platform/obs"
	"logistics-scheduler-service/internal/ports"
	"logistics-scheduler-service/internal/services"
)

// Server is the HTTP composition root.
type Server struct {
	HTTP   *http.Server
	Logger zerolog.Logger
}

// Jobs holds the batch entry points run by cmd/jobs.
type Jobs struct {
	Recurrence *services.RecurrenceScheduler
	Backups    *services.BackupService
	Logger     zerolog.Logger
	Registry   *prometheus.Registry
}

func NewServer(httpServer *http.Server, logger zerolog.Logger) *Server {
	return &Server{HTTP: httpServer, Logger: logger}
}

func NewJobs(
	recurrence *services.RecurrenceScheduler,
	backups *services.BackupService,
	logger zerolog.Logger,
	reg *prometheus.Registry,
) *Jobs {
	return &Jobs{Recurrence: recurrence, Backups: backups, Logger: logger, Registry: reg}
}

func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logger.Level, cfg.Logger.Pretty, os.Stdout)
}

func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) obs.Metrics {
	return obs.NewMetrics(cfg.Metrics.Enabled, reg)
}

func ProvidePool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, func(), error) {
	pool, err := db.Open(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Close, nil
}

func ProvideDocumentStore(pool *pgxpool.Pool) ports.DocumentStore {
	return docstore.NewPostgresStore(pool)
}

func ProvideDistanceCache(cfg *config.Config, pool *pgxpool.Pool) (ports.DistanceCache, func(), error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryDistanceCache(cfg.Cache.SizeMB, cfg.Cache.TTL), func() {}, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		return cache.NewRedisDistanceCache(client, cfg.Cache.TTL), func() { _ = client.Close() }, nil
	case "postgres":
		return cache.NewSQLDistanceCache(pool), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func ProvideDirections(
	cfg *config.Config,
	distanceCache ports.DistanceCache,
	metrics obs.Metrics,
	logger zerolog.Logger,
) (ports.DirectionsProvider, error) {
	var next ports.DirectionsProvider
	switch cfg.Directions.Provider {
	case "mock":
		next = directions.NewMockDirectionsProvider(nil)
	default:
		ors, err := directions.NewORSDirectionsProvider(cfg.Directions.APIKey, directions.ORSOptions{
			BaseURL: cfg.Directions.BaseURL,
			Profile: cfg.Directions.Profile,
			Timeout: cfg.Directions.Timeout,
		})
		if err != nil {
			return nil, err
		}
		next = ors
	}
	return directions.NewCachedProvider(next, distanceCache, metrics, logger), nil
}

func ProvideFleet(store ports.DocumentStore) ports.FleetRepository {
	return repositories.NewDocumentFleetRepository(store)
}

func ProvideRouteOptimizer(
	cfg *config.Config,
	provider ports.DirectionsProvider,
	costs *services.CostModel,
	logger zerolog.Logger,
	metrics obs.Metrics,
) *services.RouteOptimizer {
	return services.NewRouteOptimizer(provider, costs, cfg.Location(), logger, metrics)
}

// MetricsHandler serves /metrics; nil when metrics are disabled.
type MetricsHandler http.Handler

func ProvideMetricsHandler(cfg *config.Config, reg *prometheus.Registry) MetricsHandler {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ProvideRouter(
	cfg *config.Config,
	optimizer *services.RouteOptimizer,
	logger zerolog.Logger,
	metrics obs.Metrics,
	metricsHandler MetricsHandler,
) http.Handler {
	return api.NewRouter(optimizer, cfg.Location(), logger, metrics, metricsHandler)
}

// Timeouts are tuned for cold-cache route planning (external API latency).
func ProvideHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

func ProvideObjectStore(ctx context.Context, cfg *config.Config) (ports.ObjectStore, error) {
	if !cfg.Archive.Enabled {
		return storage.NewMemoryObjectStore(), nil
	}
	store, err := storage.NewS3ObjectStore(ctx, storage.S3Options{
		Region:       cfg.Archive.Region,
		Bucket:       cfg.Archive.Bucket,
		Endpoint:     cfg.Archive.Endpoint,
		UsePathStyle: cfg.Archive.UsePathStyle,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func ProvideEventPublisher(cfg *config.Config) (ports.EventPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return events.NoopPublisher{}, func() {}, nil
	}

	producer, err := events.NewSaramaProducer(strings.Join(cfg.Kafka.Brokers, ","), cfg.Kafka.ClientID)
	if err != nil {
		return nil, nil, err
	}
	publisher := events.NewKafkaPublisher(producer, cfg.Kafka.Topic)
	return publisher, func() { _ = publisher.Close() }, nil
}

func ProvideArchiver(
	cfg *config.Config,
	store ports.DocumentStore,
	objects ports.ObjectStore,
	compressor compress.Compressor,
) *services.Archiver {
	return services.NewArchiver(store, objects, compressor, cfg.Backup.AttachmentPrefix)
}

func ProvideJobEnv(cfg *config.Config) services.JobEnv {
	return services.JobEnv{Location: cfg.Location()}
}

func ProvideBackupOptions(cfg *config.Config) services.BackupOptions {
	return services.BackupOptions{
		ChunkSize:              cfg.Backup.ChunkSize,
		DeletePageSize:         cfg.Backup.DeletePageSize,
		DefaultPeriodicityDays: cfg.Backup.PeriodicityDays,
		AttachmentPrefix:       cfg.Backup.AttachmentPrefix,
		ArchiveEnabled:         cfg.Archive.Enabled,
	}
}
