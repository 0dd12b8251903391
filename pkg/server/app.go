package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockLens/internal/domain/repository"
	"StockLens/internal/handler/api"
	internalrepo "StockLens/internal/repository"
	"StockLens/internal/regime"
	icache "StockLens/internal/service/cache"
	"StockLens/internal/services/quotes"
	"StockLens/internal/snapshot"
	"StockLens/internal/usecase"
	"StockLens/pkg/cache"
	pkgch "StockLens/pkg/clickhouse"
	"StockLens/pkg/config"
	xhttp "StockLens/pkg/http"
	"StockLens/pkg/http/middleware"
	pkgkafka "StockLens/pkg/kafka"
	applogger "StockLens/pkg/logger"
	pkgqueue "StockLens/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	collector   *usecase.BarCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	metrics     repository.Metrics
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	opsServer   *http.Server
	refreshQ    *pkgqueue.RedisQueue
	l           *applogger.Logger
	BarProc     *usecase.BarProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.BarCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	metrics repository.Metrics,
	l *applogger.Logger,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		metrics:   metrics,
		l:         l,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.l
	if l == nil {
		var err error
		l, err = applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		a.l = l
	}

	var (
		analysis *usecase.AnalysisUseCase
		rc       *cache.RedisCache
	)

	// Echo HTTP server with routes registered by the analysis handler
	httpHandler := a.httpHandler
	if httpHandler == nil && a.chClient != nil {
		db := a.cfg.ClickHouse.Database
		barStore := internalrepo.NewClickHouseBarStore(a.chClient.DB(), db+".daily_bars")
		snapStore := internalrepo.NewCHSnapshotStore(a.chClient, db+".indicator_snapshots")
		snapStore.SetLogger(l)

		var c cache.Service
		if a.cfg.Analysis.Redis.Enabled {
			redisCache, err := cache.NewRedisCache(
				cache.WithRedisHost(a.cfg.Analysis.Redis.Host),
				cache.WithRedisPort(a.cfg.Analysis.Redis.Port),
				cache.WithRedisPassword(a.cfg.Analysis.Redis.Password),
				cache.WithRedisDB(a.cfg.Analysis.Redis.DB),
			)
			if err != nil {
				l.Warn("redis cache unavailable, falling back to memory", applogger.Error(err))
			} else {
				rc = redisCache
				c = cache.NewLayeredCache(rc)
			}
		}
		if c == nil {
			c = cache.NewMemoryCache()
		}

		agg := snapshot.NewAggregator(l)
		opt := regime.NewAdaptiveOptimizer(l)
		analysis = usecase.NewAnalysisUseCase(barStore, snapStore, agg, opt, c, a.metrics, l,
			usecase.WithLookback(a.cfg.Analysis.Lookback),
			usecase.WithCacheTTL(a.cfg.Analysis.CacheTTL),
		)
		bars := usecase.NewBarsUseCase(barStore)
		httpHandler = api.NewAnalysisEchoHandler(l, analysis, bars)

		// Background snapshot refresh keeps the cache warm past its TTL.
		// Requires Redis for the queue and the per-symbol locks.
		if rc != nil && a.cfg.Analysis.RefreshInterval > 0 {
			a.refreshQ = pkgqueue.NewRedisQueue(l, &pkgqueue.Config{
				Workers:    a.cfg.Analysis.RefreshWorkers,
				RetryLimit: 2,
				RetryDelay: 15 * time.Second,
			}, rc.Client())
			a.refreshQ.RegisterJob(usecase.NewSnapshotRefreshJob(analysis, c, l))
			if err := a.refreshQ.Start(); err != nil {
				l.Warn("refresh queue start failed", applogger.Error(err))
				a.refreshQ = nil
			} else {
				sched := usecase.NewRefreshScheduler(a.refreshQ, a.cfg.Stream.Symbols, a.cfg.Analysis.RefreshInterval, l)
				go sched.Run(ctx)
			}
		}
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	)

	// Plain net/http surface for internal consumers, with its own response
	// cache and rate limiting
	if analysis != nil && a.cfg.Server.InternalPort > 0 {
		a.opsServer = a.buildOpsServer(analysis, rc, l)
		go func() {
			l.Info("internal server listening", applogger.Int("port", a.cfg.Server.InternalPort))
			if err := a.opsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				l.Error("internal server error", applogger.Error(err))
			}
		}()
	}

	// Backfill history before live ingest when a quote provider is configured
	if a.cfg.Quotes.Enabled && a.chClient != nil {
		db := a.cfg.ClickHouse.Database
		store := internalrepo.NewClickHouseBarStore(a.chClient.DB(), db+".daily_bars")
		backfill := usecase.NewBackfillUseCase(quotes.New(a.cfg), store, a.metrics, l, a.cfg.Quotes.Depth)
		go func() {
			if err := backfill.Run(ctx, a.cfg.Stream.Symbols); err != nil {
				l.Warn("backfill error", applogger.Error(err))
			}
		}()
	}

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("symbols", a.cfg.Stream.Symbols))

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

func (a *App) buildOpsServer(analysis *usecase.AnalysisUseCase, rc *cache.RedisCache, l *applogger.Logger) *http.Server {
	h := api.NewAnalysisHandler(analysis)
	h.SetLogger(l)
	if rc != nil {
		h.SetCache(icache.NewRedisBytesCache(rc.Client()))
	} else {
		h.SetCache(icache.NewTTLCache())
	}

	mux := http.NewServeMux()
	mux.Handle("/internal/v1/snapshot", h.Snapshot())
	mux.Handle("/internal/v1/regime", h.Regime())
	mux.Handle("/internal/v1/parameters", h.Parameters())

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.InternalPort),
		Handler:      middleware.Metrics(l, 500*time.Millisecond)(mux),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.l
	l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.opsServer != nil {
		if err := a.opsServer.Shutdown(shutdownCtx); err != nil {
			l.Warn("internal server shutdown error", applogger.Error(err))
		}
	}
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop background refresh before the cache backing it goes away
	if a.refreshQ != nil {
		if err := a.refreshQ.Stop(shutdownCtx); err != nil {
			l.Warn("refresh queue stop error", applogger.Error(err))
		}
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// flush aggregated error logs before the Kafka producer goes away
	l.RemoveCollector()

	// Close bar processor resources (publisher/storage)
	if a.BarProc != nil {
		a.BarProc.Close()
	}

	l.Info("shutdown complete")
	return nil
}
