// cmd/devtogether/main.go
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

	"devtogether/internal/api"
	"devtogether/internal/common/camunda"
	"devtogether/internal/common/config"
	"devtogether/internal/common/database"
	"devtogether/internal/common/logger"
	"devtogether/internal/common/observability"
	"devtogether/internal/dashboard"
	"devtogether/internal/profile"
	"devtogether/internal/search"
	"devtogether/internal/store"
	"devtogether/pkg/registry"

	rd "devtogether/internal/workers/dashboard/refresh-dashboard"
	gsl "devtogether/internal/workers/profile/generate-share-link"
	tpv "devtogether/internal/workers/profile/track-profile-view"
	spi "devtogether/internal/workers/search/sync-project-index"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
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

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"service": cfg.App.Name,
		"version": cfg.App.Version,
	})

	log.Info("Starting DevTogether aggregation service", map[string]interface{}{"environment": cfg.App.Environment})

	obsOpts := []observability.Option{observability.WithSampleRatio(cfg.Tracing.SampleRatio)}
	spanExporter, err := observability.NewSpanExporter(cfg.Tracing.Exporter, os.Stdout)
	if err != nil {
		log.Warn("Span exporter unavailable, tracing disabled", map[string]interface{}{"error": err.Error()})
	} else if spanExporter != nil {
		obsOpts = append(obsOpts, observability.WithSpanExporter(spanExporter))
		log.Info("Tracing enabled", map[string]interface{}{"exporter": cfg.Tracing.Exporter})
	}

	obs, err := observability.New(cfg.App.Name, obsOpts...)
	if err != nil {
		log.Warn("OpenTelemetry metrics unavailable", map[string]interface{}{"error": err.Error()})
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		fatal(log, "postgres failed after retries", err)
	}
	defer pg.Close()
	log.Info("PostgreSQL connected successfully", nil)

	// --- Init Redis with retry ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		fatal(log, "redis failed after retries", err)
	}
	defer redis.Close()
	log.Info("Redis connected successfully", nil)

	// --- Init Elasticsearch with retry ---
	var es *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return es.Ping(ctx)
	}, 15, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		fatal(log, "elasticsearch failed after retries", err)
	}
	log.Info("Elasticsearch connected successfully", nil)

	// --- Aggregators ---
	st := store.New(pg.DB)
	dashboards := dashboard.NewAggregator(st, log,
		dashboard.WithLimits(cfg.Dashboard),
		dashboard.WithObservability(obs),
	)
	profiles := profile.NewAggregator(st, dashboards, st, log,
		profile.Config{Sharing: cfg.Sharing, Analytics: cfg.Analytics},
		profile.WithRedis(redis.Client),
		profile.WithObservability(obs),
	)

	// --- Search ---
	indexer := search.NewIndexer(es.Client, st, cfg.Search, log)
	if err := indexer.EnsureIndex(ctx); err != nil {
		log.Warn("Search index not ready, sync will retry on schedule", map[string]interface{}{"error": err.Error()})
	}
	scheduler := search.NewScheduler(indexer, cfg.Search, log)
	if err := scheduler.Start(ctx); err != nil {
		fatal(log, "search scheduler failed to start", err)
	}

	server := api.NewServer(dashboards, profiles, log,
		api.WithSearch(search.NewSearcher(es.Client, cfg.Search, log)),
		api.WithRequestTimeout(config.GetDuration(cfg.Server.RequestTimeout)),
		api.WithReadinessCheck("postgres", pg),
		api.WithReadinessCheck("redis", redis),
		api.WithReadinessCheck("elasticsearch", es),
	)

	// --- Job workers ---
	var pool *camunda.Pool
	if cfg.Camunda.Enabled() {
		var zeebe *camunda.Client
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
			return err
		}, 10, 2*time.Second, log, "Zeebe client initialization")
		if err != nil {
			fatal(log, "zeebe client failed after retries", err)
		}
		defer zeebe.Close()

		reg, err := registry.LoadRegistry(cfg.Registry.Path)
		if err != nil {
			fatal(log, "activity registry load failed", err)
		}
		if err := reg.Validate(); err != nil {
			fatal(log, "activity registry is invalid", err)
		}

		pool = camunda.NewPool(zeebe.Zeebe(), obs, log)
		if err := startWorkers(pool, cfg, reg, dashboards, profiles, indexer, log); err != nil {
			fatal(log, "worker registration failed", err)
		}
		log.Info("Workers registered", map[string]interface{}{"taskTypes": pool.Running()})
	} else {
		log.Info("No Zeebe broker configured, job workers disabled", nil)
	}

	// --- HTTP server ---
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"addr": httpServer.Addr})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info("Shutdown signal received", nil)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	if pool != nil {
		pool.Close(shutdownCtx)
	}
	stop()
	scheduler.Stop(shutdownCtx)
	if obs != nil {
		obs.Shutdown(shutdownCtx)
	}

	log.Info("DevTogether aggregation service stopped gracefully", nil)
}

func startWorkers(
	pool *camunda.Pool,
	cfg *config.Config,
	reg *registry.ActivityRegistry,
	dashboards *dashboard.Aggregator,
	profiles *profile.Aggregator,
	indexer *search.Indexer,
	log logger.Logger,
) error {
	rdCfg, err := rd.LoadConfig(cfg, reg)
	if err != nil {
		return err
	}
	pool.Start(rd.TaskType, config.GetWorkerConfig(cfg, rd.TaskType), rd.NewHandler(rdCfg, dashboards, log))

	gslCfg, err := gsl.LoadConfig(cfg, reg)
	if err != nil {
		return err
	}
	pool.Start(gsl.TaskType, config.GetWorkerConfig(cfg, gsl.TaskType), gsl.NewHandler(gslCfg, profiles, log))

	tpvCfg, err := tpv.LoadConfig(cfg, reg)
	if err != nil {
		return err
	}
	pool.Start(tpv.TaskType, config.GetWorkerConfig(cfg, tpv.TaskType), tpv.NewHandler(tpvCfg, profiles, log))

	spiCfg, err := spi.LoadConfig(cfg, reg)
	if err != nil {
		return err
	}
	pool.Start(spi.TaskType, config.GetWorkerConfig(cfg, spi.TaskType), spi.NewHandler(spiCfg, indexer, log))

	return nil
}

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, map[string]interface{}{"error": err.Error()})
	os.Exit(1)
}
