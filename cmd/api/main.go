package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart_crm_backend/internal/adapters/storage"
	"smart_crm_backend/internal/analytics"
	"smart_crm_backend/internal/analytics/cache"
	analyticssvc "smart_crm_backend/internal/analytics/service"
	"smart_crm_backend/internal/auth"
	"smart_crm_backend/internal/chat"
	chatagent "smart_crm_backend/internal/chat/agent"
	chatsvc "smart_crm_backend/internal/chat/service"
	"smart_crm_backend/internal/deals"
	"smart_crm_backend/internal/email"
	"smart_crm_backend/internal/events"
	"smart_crm_backend/internal/expenses"
	"smart_crm_backend/internal/exports"
	apphttp "smart_crm_backend/internal/http"
	"smart_crm_backend/internal/http/router"
	"smart_crm_backend/internal/interactions"
	"smart_crm_backend/internal/leads"
	"smart_crm_backend/internal/notification"
	"smart_crm_backend/internal/scheduler"
	"smart_crm_backend/internal/tasks"
	"smart_crm_backend/platform/ai/gemini"
	"smart_crm_backend/platform/ai/moonshot"
	"smart_crm_backend/platform/config"
	"smart_crm_backend/platform/db"
	"smart_crm_backend/platform/logger"
	"smart_crm_backend/platform/validator"

	"google.golang.org/adk/model"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	if cfg.MigrationsEnabled {
		if err := db.Retry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, pool)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	retries, closeRetries := initRecomputeClient(cfg, log)
	if closeRetries != nil {
		defer closeRetries()
	}

	// ========================================================================
	// Domain Modules
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, eventBus, val, log)

	leadsModule, err := leads.NewModule(pool, retries, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}

	dealsModule, err := deals.NewModule(pool, retries, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize deals module", "error", err)
		panic("failed to initialize deals module: " + err.Error())
	}

	expensesModule, err := expenses.NewModule(pool, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize expenses module", "error", err)
		panic("failed to initialize expenses module: " + err.Error())
	}

	tasksModule, err := tasks.NewModule(pool, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize tasks module", "error", err)
		panic("failed to initialize tasks module: " + err.Error())
	}

	interactionsModule, err := interactions.NewModule(pool, leadsModule.Repository(), eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize interactions module", "error", err)
		panic("failed to initialize interactions module: " + err.Error())
	}

	// ========================================================================
	// Reporting Modules
	// ========================================================================

	snapshots, closeSnapshots := initSnapshotCache(cfg, log)
	if closeSnapshots != nil {
		defer closeSnapshots()
	}

	analyticsModule := analytics.NewModule(analyticssvc.Stores{
		Leads:      leadsModule.Repository(),
		Deals:      dealsModule.Repository(),
		Expenses:   expensesModule.Repository(),
		Tasks:      tasksModule.Repository(),
		Users:      authModule.Repository(),
		Activities: interactionsModule.Repository(),
	}, snapshots, eventBus, log)

	chatModule, err := chat.NewModule(analyticsModule.Service(), initCompleter(ctx, cfg, log), cfg, val, log)
	if err != nil {
		log.Error("failed to initialize chat module", "error", err)
		panic("failed to initialize chat module: " + err.Error())
	}

	exportsModule := exports.NewModule(pool, analyticsModule.Service(), initObjectStore(cfg, log), cfg.GetMinioBucketExports(), eventBus, log)

	if !cfg.GetEmailEnabled() {
		log.Warn("SMTP_HOST not configured; notification emails disabled")
	}
	notification.New(authModule.Repository(), email.NewSender(cfg), cfg, log).RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
			dealsModule,
			expensesModule,
			tasksModule,
			interactionsModule,
			analyticsModule,
			chatModule,
			exportsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initRecomputeClient returns the retry queue. Without Redis it is nil and
// failed recomputes stay stale until the next write or explicit recompute.
func initRecomputeClient(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.RecomputeEnqueuer, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; failed recomputes will not be retried")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize recompute queue client", "error", err)
		return nil, nil
	}
	return client, func() {
		_ = client.Close()
	}
}

func initSnapshotCache(cfg config.CacheConfig, log *logger.Logger) (cache.Snapshots, func()) {
	if !cfg.IsAnalyticsCacheEnabled() {
		log.Info("analytics cache disabled")
		return nil, nil
	}

	redisCache, err := cache.NewRedis(cfg.GetRedisURL(), cfg.GetAnalyticsCacheTTL())
	if err != nil {
		log.Error("failed to initialize analytics cache", "error", err)
		return nil, nil
	}
	return redisCache, func() {
		_ = redisCache.Close()
	}
}

// initCompleter picks the chat model. Moonshot wins when both providers are
// configured; nil disables chat.
func initCompleter(ctx context.Context, cfg config.ChatConfig, log *logger.Logger) chatsvc.Completer {
	if !cfg.IsChatEnabled() {
		log.Warn("no chat provider configured; chat disabled")
		return nil
	}

	var llm model.LLM
	if cfg.GetMoonshotAPIKey() != "" {
		llm = moonshot.NewModel(moonshot.Config{APIKey: cfg.GetMoonshotAPIKey(), Model: cfg.GetMoonshotModel()})
	} else {
		g, err := gemini.NewModel(ctx, gemini.Config{APIKey: cfg.GetGeminiAPIKey(), Model: cfg.GetGeminiModel()})
		if err != nil {
			log.Error("failed to initialize gemini model", "error", err)
			return nil
		}
		llm = g
	}
	log.Info("chat enabled", "model", llm.Name())
	return chatagent.NewCompleter(llm)
}

func initObjectStore(cfg config.StorageConfig, log *logger.Logger) storage.ObjectStore {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; report exports disabled")
		return nil
	}

	svc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize object storage", "error", err)
		return nil
	}
	return svc
}
