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

	"casematch-workers/internal/api"
	"casematch-workers/internal/casematch"
	"casematch-workers/internal/common/camunda"
	"casematch-workers/internal/common/config"
	"casematch-workers/internal/common/database"
	"casematch-workers/internal/common/logger"
	"casematch-workers/internal/common/observability"
	"casematch-workers/internal/common/validation"
	"casematch-workers/internal/embedding"
	"casematch-workers/internal/repository"
	"casematch-workers/internal/service"
	"casematch-workers/pkg/registry"

	bmr "casematch-workers/internal/workers/casematch/build-match-response"
	rcm "casematch-workers/internal/workers/casematch/rank-case-matches"
	fcc "casematch-workers/internal/workers/data-access/fetch-candidate-cases"
	sci "casematch-workers/internal/workers/data-access/search-case-index"
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
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"app":     cfg.App.Name,
		"version": cfg.App.Version,
	})

	zapLog.Info("Starting case-match worker manager...")

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("metrics init failed", zap.Error(err))
	}
	tracing, err := observability.NewTracing(cfg.Tracing)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(cfg.Camunda)
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
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
	zapLog.Info("PostgreSQL connected successfully")

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
	if ok, err := esClient.CaseIndexExists(ctx); err != nil || !ok {
		zapLog.Warn("case index unavailable, search will fall back to listing",
			zap.String("index", esClient.CaseIndex), zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Redis ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Scoring pipeline ---
	var embedder casematch.Embedder
	if cfg.Embedding.Enabled {
		client := embedding.NewClient(cfg.Embedding)
		embedder = client
		if cfg.Embedding.CacheTTL > 0 {
			embedder = embedding.NewCachedEmbedder(client, redis,
				time.Duration(cfg.Embedding.CacheTTL)*time.Second, log)
		}
	} else {
		zapLog.Warn("embedding disabled, vector similarity will be degraded")
	}

	ranker, err := casematch.NewRanker(cfg.Scoring.ToOptions(), embedder, log)
	if err != nil {
		zapLog.Fatal("invalid scoring configuration", zap.Error(err))
	}
	presenter := casematch.NewPresenter(cfg.Presentation.BadgeCap)

	cases := repository.NewCachedCaseRepository(
		repository.NewPostgresCaseRepository(pg.DB), redis, cfg.Database.Redis.CaseTTL(), log)

	var validator camunda.InputValidator
	if reg, err := registry.LoadRegistry(cfg.Registry.Path); err != nil {
		zapLog.Warn("activity registry unavailable, job input validation disabled",
			zap.String("path", cfg.Registry.Path), zap.Error(err))
	} else {
		validator = validation.NewRegistryValidator(reg)
	}

	// --- Workers ---
	zc := zeebe.GetClient()
	var workers []worker.JobWorker
	start := func(taskType string, handler camunda.HandlerFunc) {
		if w := camunda.StartWorker(zc, taskType, config.GetWorkerConfig(cfg, taskType), handler, obs, log); w != nil {
			workers = append(workers, w)
		}
	}

	searchCfg := sci.LoadConfig()
	searchCfg.Timeout = workerTimeout(cfg, sci.TaskType, searchCfg.Timeout)
	start(sci.TaskType, sci.NewHandler(searchCfg, esClient, validator, log).Handle)

	fetchCfg := fcc.LoadConfig()
	fetchCfg.Timeout = workerTimeout(cfg, fcc.TaskType, fetchCfg.Timeout)
	start(fcc.TaskType, fcc.NewHandler(fetchCfg, cases, validator, log).Handle)

	rankCfg := rcm.LoadConfig()
	rankCfg.Timeout = workerTimeout(cfg, rcm.TaskType, rankCfg.Timeout)
	start(rcm.TaskType, rcm.NewHandler(rankCfg, ranker, validator, log).Handle)

	responseCfg := bmr.LoadConfig()
	responseCfg.Timeout = workerTimeout(cfg, bmr.TaskType, responseCfg.Timeout)
	responseCfg.BadgeCap = cfg.Presentation.BadgeCap
	responseCfg.AppVersion = cfg.App.Version
	start(bmr.TaskType, bmr.NewHandler(responseCfg, obs, validator, log).Handle)

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- HTTP API, health and metrics ---
	matchSvc := service.NewMatchService(
		service.NewESSearcher(esClient), cases, ranker, presenter, obs,
		service.Options{
			SearchSize:      searchCfg.DefaultSize,
			MaxCandidates:   fetchCfg.MaxCandidates,
			DefaultPageSize: cfg.Presentation.DefaultPageSize,
			MaxPageSize:     cfg.Presentation.MaxPageSize,
		},
		log,
	)

	router := api.NewRouter(api.RouterConfig{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RequestTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
		Grades:         cfg.Scoring.ToOptions().Grades,
	}, matchSvc, map[string]api.ReadinessCheck{
		"zeebe":         zeebe.HealthCheck,
		"postgres":      pg.Ping,
		"redis":         redis.Ping,
		"elasticsearch": esClient.Ping,
	}, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Address(),
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.HTTP.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.HTTP.WriteTimeout),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}
	if err := tracing.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing traces", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping meter provider", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func workerTimeout(cfg *config.Config, taskType string, fallback time.Duration) time.Duration {
	if ms := config.GetWorkerConfig(cfg, taskType).Timeout; ms > 0 {
		return config.GetDuration(ms)
	}
	return fallback
}
