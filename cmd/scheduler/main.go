package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"smart_crm_backend/internal/deals"
	"smart_crm_backend/internal/events"
	"smart_crm_backend/internal/leads"
	"smart_crm_backend/internal/scheduler"
	"smart_crm_backend/platform/config"
	"smart_crm_backend/platform/db"
	"smart_crm_backend/platform/logger"
	"smart_crm_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	// Worker-side wiring: the same services the API uses, without HTTP
	// handlers. Retries are not re-enqueued from here; asynq owns the
	// retry schedule of the task being processed.
	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	leadsModule, err := leads.NewModule(pool, nil, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize leads module", "error", err)
		panic("failed to initialize leads module: " + err.Error())
	}
	dealsModule, err := deals.NewModule(pool, nil, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize deals module", "error", err)
		panic("failed to initialize deals module: " + err.Error())
	}

	worker, err := scheduler.NewWorker(cfg, leadsModule.Service(), dealsModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}
