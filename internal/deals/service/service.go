package service

import (
	"context"
	"time"

	"smart_crm_backend/internal/analytics/aggregate"
	"smart_crm_backend/internal/deals/domain"
	"smart_crm_backend/internal/deals/repository"
	"smart_crm_backend/internal/events"
	"smart_crm_backend/internal/scheduler"
	"smart_crm_backend/platform/apperr"
	"smart_crm_backend/platform/logger"
	"smart_crm_backend/platform/metrics"

	"github.com/google/uuid"
)

// Derived-state markers carried on work-log write responses.
const (
	DerivedFresh = "fresh"
	DerivedStale = "stale"
)

// Repository is the deal and work-log store the service depends on.
type Repository interface {
	List(ctx context.Context, params repository.ListParams) ([]domain.Deal, error)
	ListAll(ctx context.Context, assignedTo *uuid.UUID) ([]domain.Deal, error)
	ListWon(ctx context.Context) ([]domain.Deal, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Deal, error)
	Create(ctx context.Context, params repository.CreateParams) (domain.Deal, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (domain.Deal, error)
	SetActualHours(ctx context.Context, id uuid.UUID, hours float64) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListWorkLogs(ctx context.Context, f repository.WorkLogFilter) ([]domain.WorkLog, error)
	GetWorkLog(ctx context.Context, id uuid.UUID) (domain.WorkLog, error)
	CreateWorkLog(ctx context.Context, params repository.WorkLogParams) (domain.WorkLog, error)
	UpdateWorkLog(ctx context.Context, id uuid.UUID, params repository.WorkLogUpdate) (domain.WorkLog, error)
	DeleteWorkLog(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     Repository
	retries  scheduler.RecomputeEnqueuer
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(repo Repository, retries scheduler.RecomputeEnqueuer, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, retries: retries, eventBus: eventBus, log: log, now: time.Now}
}

// Pipeline is the Kanban view of all deals plus its summary.
type Pipeline struct {
	Stages  []aggregate.StageGroup    `json:"stages"`
	Summary aggregate.PipelineSummary `json:"summary"`
}

// Revenue is a revenue summary for a parsed period.
type Revenue struct {
	Period   aggregate.Period         `json:"period"`
	Summary  aggregate.RevenueSummary `json:"summary"`
	Warnings []string                 `json:"warnings,omitempty"`
}

func (s *Service) List(ctx context.Context, params repository.ListParams) ([]domain.Deal, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) Pipeline(ctx context.Context, assignedTo *uuid.UUID) (Pipeline, error) {
	deals, err := s.repo.ListAll(ctx, assignedTo)
	if err != nil {
		return Pipeline{}, err
	}
	return Pipeline{
		Stages:  aggregate.GroupByStage(deals),
		Summary: aggregate.SummarizePipeline(deals),
	}, nil
}

func (s *Service) Stats(ctx context.Context, assignedTo *uuid.UUID) (aggregate.PipelineSummary, error) {
	deals, err := s.repo.ListAll(ctx, assignedTo)
	if err != nil {
		return aggregate.PipelineSummary{}, err
	}
	return aggregate.SummarizePipeline(deals), nil
}

// Revenue sums won deals closed in [start, end]. Empty bounds are open.
func (s *Service) Revenue(ctx context.Context, start, end string) (Revenue, error) {
	period, warnings := aggregate.ParsePeriod(start, end, s.now(), false)
	deals, err := s.repo.ListWon(ctx)
	if err != nil {
		return Revenue{}, err
	}
	return Revenue{
		Period:   period,
		Summary:  aggregate.SummarizeRevenue(deals, period),
		Warnings: warnings,
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Deal, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateInput are the caller-supplied attributes of a new deal.
type CreateInput struct {
	Params      repository.CreateParams
	Probability *int
}

// Create stores a deal, deriving probability and close stamps from its stage.
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Deal, error) {
	params := in.Params
	if params.Stage == "" {
		params.Stage = domain.StageDiscovery
	}
	if !params.Stage.Valid() {
		return domain.Deal{}, apperr.Validation("invalid stage")
	}

	change := domain.ApplyStageChange(params.Stage, in.Probability, s.now())
	params.Probability = change.Probability
	params.ClosedAt = change.ClosedAt
	if params.ActualCloseDate == nil {
		params.ActualCloseDate = change.ActualCloseDate
	}

	deal, err := s.repo.Create(ctx, params)
	if err != nil {
		return domain.Deal{}, err
	}
	s.publish(ctx, deal.ID, events.ActionCreated)
	return deal, nil
}

// Update applies a partial update. A stage change re-derives probability and
// close stamps unless the update names its own probability or close date.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (domain.Deal, error) {
	if params.Stage != nil {
		if !params.Stage.Valid() {
			return domain.Deal{}, apperr.Validation("invalid stage")
		}
		change := domain.ApplyStageChange(*params.Stage, params.Probability, s.now())
		params.Probability = &change.Probability
		params.ClosedAt = change.ClosedAt
		if params.ActualCloseDate == nil {
			params.ActualCloseDate = change.ActualCloseDate
		}
	}

	deal, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return domain.Deal{}, err
	}
	s.publish(ctx, deal.ID, events.ActionUpdated)
	return deal, nil
}

// UpdateStage moves a deal to stage.
func (s *Service) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage, probability *int) (domain.Deal, error) {
	return s.Update(ctx, id, repository.UpdateParams{Stage: &stage, Probability: probability})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, events.ActionDeleted)
	return nil
}

func (s *Service) publish(ctx context.Context, dealID uuid.UUID, action string) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, events.DealChanged{
		BaseEvent: events.NewBaseEvent(),
		DealID:    dealID,
		Action:    action,
	})
}

// trackFailure records a failed derived-state recompute and queues its retry.
func (s *Service) trackFailure(ctx context.Context, dealID uuid.UUID, err error) {
	s.log.WithContext(ctx).RecomputeFailed(metrics.KindDealHours, dealID.String(), err)
	metrics.RecomputeFailures.WithLabelValues(metrics.KindDealHours).Inc()
	if s.retries != nil {
		if qerr := s.retries.EnqueueDealHoursRecompute(ctx, dealID); qerr != nil {
			s.log.WithContext(ctx).Error("enqueue deal hours retry failed", "dealId", dealID, "error", qerr)
		}
	}
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.DealHoursStale{BaseEvent: events.NewBaseEvent(), DealID: dealID})
	}
}
