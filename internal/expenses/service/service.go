package service

import (
	"context"
	"strings"
	"time"

	"smart_crm_backend/internal/analytics/aggregate"
	"smart_crm_backend/internal/events"
	"smart_crm_backend/internal/expenses/domain"
	"smart_crm_backend/internal/expenses/repository"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type Repository interface {
	List(ctx context.Context, params repository.ListParams) ([]domain.Expense, error)
	ListInRange(ctx context.Context, from, to *time.Time) ([]domain.Expense, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Expense, error)
	Create(ctx context.Context, params repository.CreateParams) (domain.Expense, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (domain.Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     Repository
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(repo Repository, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, eventBus: eventBus, log: log, now: time.Now}
}

// Totals is the expense summary of a parsed period.
type Totals struct {
	Period   aggregate.Period         `json:"period"`
	Summary  aggregate.ExpenseSummary `json:"summary"`
	Warnings []string                 `json:"warnings,omitempty"`
}

func (s *Service) List(ctx context.Context, params repository.ListParams) ([]domain.Expense, error) {
	return s.repo.List(ctx, params)
}

// Totals sums expenses in [start, end]. Empty bounds default to the current
// month to date.
func (s *Service) Totals(ctx context.Context, start, end string) (Totals, error) {
	period, warnings := aggregate.ParsePeriod(start, end, s.now(), true)
	expenses, err := s.repo.ListInRange(ctx, period.Start, period.End)
	if err != nil {
		return Totals{}, err
	}
	summary := aggregate.SummarizeExpenses(expenses, period)
	if summary.DefaultedToVariable > 0 {
		s.log.WithContext(ctx).Debug("expenses counted as variable", "count", summary.DefaultedToVariable)
	}
	return Totals{Period: period, Summary: summary, Warnings: warnings}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Expense, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores an expense. A missing category is stored as variable and a
// blank type as the default type.
func (s *Service) Create(ctx context.Context, params repository.CreateParams) (domain.Expense, error) {
	if params.Category == "" {
		params.Category = domain.CategoryVariable
	}
	if strings.TrimSpace(params.Type) == "" {
		params.Type = domain.DefaultType
	}

	expense, err := s.repo.Create(ctx, params)
	if err != nil {
		return domain.Expense{}, err
	}
	s.publish(ctx, expense.ID, events.ActionCreated)
	return expense, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (domain.Expense, error) {
	expense, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return domain.Expense{}, err
	}
	s.publish(ctx, expense.ID, events.ActionUpdated)
	return expense, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, events.ActionDeleted)
	return nil
}

func (s *Service) publish(ctx context.Context, id uuid.UUID, action string) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, events.ExpenseChanged{
		BaseEvent: events.NewBaseEvent(),
		ExpenseID: id,
		Action:    action,
	})
}
