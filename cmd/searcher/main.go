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

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/analytics/aggregator"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/internal/searcher/handler"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/hashsearch/pkg/redis"
)

var routes = []string{
	"/api/v1/search",
	"/api/v1/cache/stats",
	"/api/v1/cache/invalidate",
	"/api/v1/analytics",
	"/api/v1/analytics/snapshots",
	"/health/live",
	"/health/ready",
}

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg); err != nil {
		slog.Error("search service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("search service stopped")
}

func run(cfg *config.Config) error {
	slog.Info("starting search service",
		"port", cfg.Server.Port,
		"index_dir", cfg.Index.Dir,
		"backend", cfg.Index.Backend,
	)
	if err := indexer.Check(cfg.Index); err != nil {
		// Readiness reports the index down until the files appear.
		slog.Warn("index stores not readable yet", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
		metricsServer := metrics.NewServer(cfg.Metrics.Port)
		serve(ctx, g, metricsServer, cfg, "metrics")
	}

	checker := health.NewChecker()
	checker.Register("index", health.Required(func(context.Context) error {
		return indexer.Check(cfg.Index)
	}))

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, search caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg, m)
			checker.Register("redis", health.Optional(redisClient.Ping))
			slog.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var (
		tracker    handler.Tracker
		analyticsH *analytics.Handler
	)
	if cfg.Analytics.Enabled {
		collector, h, closeAnalytics, err := startAnalytics(ctx, g, cfg, checker)
		if err != nil {
			return err
		}
		defer closeAnalytics()
		tracker, analyticsH = collector, h
	}

	exec := executor.New(cfg, m)
	h := handler.New(exec, queryCache, tracker, m)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	if analyticsH != nil {
		mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
		mux.HandleFunc("GET /api/v1/analytics/snapshots", analyticsH.Snapshots)
	}
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)
	if m != nil {
		chain = middleware.Metrics(m, routes...)(chain)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	serve(ctx, g, server, cfg, "search")

	return g.Wait()
}

// startAnalytics wires the collector, the aggregating consumer and, when
// Postgres is reachable, snapshot persistence. The returned func flushes
// the collector and closes the producer; call it after the HTTP server has
// stopped.
func startAnalytics(ctx context.Context, g *errgroup.Group, cfg *config.Config, checker *health.Checker) (*analytics.Collector, *analytics.Handler, func(), error) {
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.SearchTopic)
	collector := analytics.NewCollector(producer, cfg.Analytics.BufferSize)
	collector.Start(ctx)
	closeAnalytics := func() {
		collector.Close()
		if err := producer.Close(); err != nil {
			slog.Error("closing kafka producer", "error", err)
		}
	}

	agg := analytics.NewAggregator()
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.SearchTopic, analytics.HandleEvent(agg))
	g.Go(func() error {
		return consumer.Start(ctx)
	})

	var snapshots analytics.SnapshotLister
	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, analytics snapshots disabled", "error", err)
	} else {
		store := aggregator.NewStore(db)
		if err := store.Migrate(ctx); err != nil {
			db.Close()
			closeAnalytics()
			return nil, nil, nil, err
		}
		if err := store.Restore(ctx, agg); err != nil {
			slog.Warn("restoring analytics snapshot failed", "error", err)
		}
		store.StartPeriodicSave(ctx, agg, cfg.Analytics.SnapshotInterval)
		checker.Register("postgres", health.Optional(db.Ping))
		g.Go(func() error {
			<-ctx.Done()
			return db.Close()
		})
		snapshots = store
	}

	slog.Info("analytics enabled", "topic", cfg.Kafka.SearchTopic, "snapshots", snapshots != nil)
	return collector, analytics.NewHandler(agg, snapshots), closeAnalytics, nil
}

// serve runs server in g and shuts it down when ctx is done.
func serve(ctx context.Context, g *errgroup.Group, server *http.Server, cfg *config.Config, name string) {
	g.Go(func() error {
		slog.Info("server listening", "server", name, "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down %s server: %w", name, err)
		}
		return nil
	})
}
