package scheduler

import (
	"context"
	"fmt"

	"smart_crm_backend/platform/config"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// LeadScoreRecomputer re-scores a stored lead.
type LeadScoreRecomputer interface {
	RecomputeScore(ctx context.Context, leadID uuid.UUID) error
}

// DealHoursRecomputer re-derives a deal's actual hours from its work logs.
type DealHoursRecomputer interface {
	RecomputeActualHours(ctx context.Context, dealID uuid.UUID) error
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	leads  LeadScoreRecomputer
	deals  DealHoursRecomputer
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, leads LeadScoreRecomputer, deals DealHoursRecomputer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		leads:  leads,
		deals:  deals,
		log:    log,
	}
	w.mux.HandleFunc(TaskLeadScoreRecompute, w.handleLeadScoreRecompute)
	w.mux.HandleFunc(TaskDealHoursRecompute, w.handleDealHoursRecompute)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleLeadScoreRecompute(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadScoreRecomputePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := w.leads.RecomputeScore(ctx, leadID); err != nil {
		w.log.RecomputeFailed(TaskLeadScoreRecompute, leadID.String(), err)
		return err
	}
	w.log.Info("lead score recomputed", "leadId", leadID)
	return nil
}

func (w *Worker) handleDealHoursRecompute(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseDealHoursRecomputePayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	dealID, err := uuid.Parse(payload.DealID)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := w.deals.RecomputeActualHours(ctx, dealID); err != nil {
		w.log.RecomputeFailed(TaskDealHoursRecompute, dealID.String(), err)
		return err
	}
	w.log.Info("deal hours recomputed", "dealId", dealID)
	return nil
}
