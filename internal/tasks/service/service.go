package service

import (
	"context"
	"time"

	"smart_crm_backend/internal/events"
	"smart_crm_backend/internal/tasks/domain"
	"smart_crm_backend/internal/tasks/repository"
	"smart_crm_backend/platform/apperr"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type Repository interface {
	List(ctx context.Context, params repository.ListParams) ([]domain.Task, error)
	ListAll(ctx context.Context, assignedTo *uuid.UUID) ([]domain.Task, error)
	ListOpenDueBetween(ctx context.Context, from, to time.Time, assignedTo *uuid.UUID) ([]domain.Task, error)
	ListOpenDueBefore(ctx context.Context, cutoff time.Time, assignedTo *uuid.UUID) ([]domain.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Task, error)
	Create(ctx context.Context, params repository.CreateParams) (domain.Task, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (domain.Task, error)
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

func (s *Service) List(ctx context.Context, params repository.ListParams) ([]domain.Task, error) {
	return s.repo.List(ctx, params)
}

// Today returns open tasks due on the current calendar day.
func (s *Service) Today(ctx context.Context, assignedTo *uuid.UUID) ([]domain.Task, error) {
	start := domain.StartOfDay(s.now())
	return s.repo.ListOpenDueBetween(ctx, start, start.AddDate(0, 0, 1), assignedTo)
}

// Overdue returns open tasks due before today.
func (s *Service) Overdue(ctx context.Context, assignedTo *uuid.UUID) ([]domain.Task, error) {
	return s.repo.ListOpenDueBefore(ctx, domain.StartOfDay(s.now()), assignedTo)
}

// Week returns open tasks due from today through the next seven days.
func (s *Service) Week(ctx context.Context, assignedTo *uuid.UUID) ([]domain.Task, error) {
	start := domain.StartOfDay(s.now())
	return s.repo.ListOpenDueBetween(ctx, start, start.AddDate(0, 0, 7), assignedTo)
}

func (s *Service) Stats(ctx context.Context, assignedTo *uuid.UUID) (domain.Stats, error) {
	tasks, err := s.repo.ListAll(ctx, assignedTo)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(tasks, s.now()), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a task with pending status and medium priority unless given.
func (s *Service) Create(ctx context.Context, params repository.CreateParams) (domain.Task, error) {
	if params.Status == "" {
		params.Status = domain.StatusPending
	}
	if params.Priority == "" {
		params.Priority = domain.PriorityMedium
	}

	task, err := s.repo.Create(ctx, params)
	if err != nil {
		return domain.Task{}, err
	}
	s.publish(ctx, task.ID, events.ActionCreated)
	return task, nil
}

// Update applies a partial update. Moving to completed stamps completed_at
// and marks the task handled.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (domain.Task, error) {
	if params.Status != nil {
		if completion, ok := domain.ApplyStatus(*params.Status, s.now()); ok {
			params.CompletedAt = completion.CompletedAt
			params.IsHandled = &completion.IsHandled
		}
	}

	task, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return domain.Task{}, err
	}
	s.publish(ctx, task.ID, events.ActionUpdated)
	return task, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Task, error) {
	if !validStatus(status) {
		return domain.Task{}, apperr.Validation("invalid status")
	}
	return s.Update(ctx, id, repository.UpdateParams{Status: &status})
}

// MarkHandled flags the task as dealt with without changing its status.
func (s *Service) MarkHandled(ctx context.Context, id uuid.UUID) (domain.Task, error) {
	handled := true
	return s.Update(ctx, id, repository.UpdateParams{IsHandled: &handled})
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
	s.eventBus.Publish(ctx, events.TaskChanged{
		BaseEvent: events.NewBaseEvent(),
		TaskID:    id,
		Action:    action,
	})
}

func validStatus(status domain.Status) bool {
	for _, st := range domain.Statuses {
		if st == status {
			return true
		}
	}
	return false
}
