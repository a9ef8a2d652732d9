// cmd/worker-manager/main.go
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

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"sales-workers/internal/common/aws"
	"sales-workers/internal/common/camunda"
	"sales-workers/internal/common/config"
	"sales-workers/internal/common/database"
	"sales-workers/internal/common/logger"
	"sales-workers/internal/common/observability"
	"sales-workers/internal/sales"
	"sales-workers/internal/sales/audit"
	"sales-workers/internal/sales/cache"
	"sales-workers/internal/sales/events"
	"sales-workers/internal/sales/repository"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewFromConfig(cfg.Logging)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting sales worker manager...",
		zap.String("environment", cfg.App.Environment),
		zap.String("salesIndex", cfg.Sales.Indices.Sales),
	)

	ctx := context.Background()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}

	var tracer *observability.Tracer
	if cfg.Tracing.Jaeger.Enabled {
		tracer, err = observability.NewJaegerTracer(cfg.App.Name, cfg.Tracing.Jaeger.Endpoint)
		if err != nil {
			zapLog.Fatal("jaeger tracer init failed", zap.Error(err))
		}
		zapLog.Info("Jaeger tracing enabled", zap.String("endpoint", cfg.Tracing.Jaeger.Endpoint))
	}

	// --- Zeebe ---
	camundaClient, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		RetryConfig: &camunda.RetryConfig{
			MaxRetries: 10,
			BaseDelay:  2 * time.Second,
			MaxDelay:   30 * time.Second,
		},
	})
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- Elasticsearch ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	if cfg.Sales.Indices.UpdateLookup != cfg.Sales.Indices.Sales {
		zapLog.Warn("update lookups use a different index than writes",
			zap.String("salesIndex", cfg.Sales.Indices.Sales),
			zap.String("updateLookupIndex", cfg.Sales.Indices.UpdateLookup),
		)
	}

	// --- Optional collaborators ---
	opts := sales.Options{}
	readiness := map[string]func(context.Context) error{
		"camunda":       camundaClient.HealthCheck,
		"elasticsearch": esClient.Ping,
	}

	if cfg.Sales.CacheTTL > 0 {
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()

		opts.Cache = cache.NewRedisCache(redisClient.Client, config.GetDuration(cfg.Sales.CacheTTL))
		readiness["redis"] = redisClient.Ping
		zapLog.Info("Analytics cache enabled", zap.Int("ttlMs", cfg.Sales.CacheTTL))
	}

	if cfg.Sales.Audit.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		auditLog := audit.NewPostgresLog(pg.DB, cfg.Sales.Audit.Table)
		if err := auditLog.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("audit schema migration failed", zap.Error(err))
		}
		opts.Audit = auditLog
		readiness["postgres"] = pg.Ping
		zapLog.Info("Sales audit trail enabled", zap.String("table", cfg.Sales.Audit.Table))
	}

	if cfg.Events.SNS.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Events.SNS.Region)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		opts.Events = events.NewSNSPublisher(snsClient, cfg.Events.SNS.TopicARN)
		zapLog.Info("Sales events enabled", zap.String("topicArn", cfg.Events.SNS.TopicARN))
	}

	// --- Sales service ---
	repo := repository.New(esClient.Transport(), repository.Config{
		SalesIndex:  cfg.Sales.Indices.Sales,
		LookupIndex: cfg.Sales.Indices.UpdateLookup,
		Refresh:     cfg.Sales.Refresh,
	}, log)
	service := sales.NewService(repo, log, opts)

	// --- Workers ---
	workers, err := registerWorkers(camundaClient.GetClient(), cfg, service, obs, log)
	if err != nil {
		zapLog.Fatal("worker registration failed", zap.Error(err))
	}
	zapLog.Info("Sales workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.HealthPort),
		Handler:           newHealthMux(readiness, 5*time.Second),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	closeWorkers(workers)

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing traces", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping meter provider", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func closeWorkers(workers []worker.JobWorker) {
	for _, w := range workers {
		w.Close()
	}
	for _, w := range workers {
		w.AwaitClose()
	}
}
