package service

import (
	"context"

	"smart_crm_backend/internal/analytics/aggregate"
	"smart_crm_backend/internal/deals/domain"
	"smart_crm_backend/internal/deals/repository"
	"smart_crm_backend/internal/events"
	"smart_crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// WorkLogMutation is the outcome of a work-log write. ActualHours is the
// deal's recomputed total, nil when the recompute failed.
type WorkLogMutation struct {
	WorkLog      *domain.WorkLog `json:"work_log,omitempty"`
	DealID       uuid.UUID       `json:"deal_id"`
	ActualHours  *float64        `json:"actual_hours"`
	DerivedState string          `json:"derived_state"`
}

// MyHours is a user's own time summary for a period.
type MyHours struct {
	Period   aggregate.Period    `json:"period"`
	Summary  domain.HoursSummary `json:"summary"`
	Logs     []domain.WorkLog    `json:"logs"`
	Warnings []string            `json:"warnings,omitempty"`
}

// Actor is the user performing a work-log write.
type Actor struct {
	UserID  uuid.UUID
	IsAdmin bool
}

func (s *Service) ListWorkLogs(ctx context.Context, dealID uuid.UUID) ([]domain.WorkLog, error) {
	if _, err := s.repo.GetByID(ctx, dealID); err != nil {
		return nil, err
	}
	return s.repo.ListWorkLogs(ctx, repository.WorkLogFilter{DealID: &dealID})
}

// CreateWorkLog records time on a deal and refreshes the deal's actual hours.
func (s *Service) CreateWorkLog(ctx context.Context, actor Actor, params repository.WorkLogParams) (WorkLogMutation, error) {
	if _, err := s.repo.GetByID(ctx, params.DealID); err != nil {
		return WorkLogMutation{}, err
	}
	params.UserID = actor.UserID
	params.Date = domain.DateOnly(params.Date)

	log, err := s.repo.CreateWorkLog(ctx, params)
	if err != nil {
		return WorkLogMutation{}, err
	}
	return s.afterWorkLogWrite(ctx, &log, log.DealID, events.ActionCreated), nil
}

func (s *Service) UpdateWorkLog(ctx context.Context, actor Actor, id uuid.UUID, params repository.WorkLogUpdate) (WorkLogMutation, error) {
	existing, err := s.authorizeWorkLog(ctx, actor, id)
	if err != nil {
		return WorkLogMutation{}, err
	}
	if params.Date != nil {
		day := domain.DateOnly(*params.Date)
		params.Date = &day
	}

	log, err := s.repo.UpdateWorkLog(ctx, id, params)
	if err != nil {
		return WorkLogMutation{}, err
	}
	return s.afterWorkLogWrite(ctx, &log, existing.DealID, events.ActionUpdated), nil
}

func (s *Service) DeleteWorkLog(ctx context.Context, actor Actor, id uuid.UUID) (WorkLogMutation, error) {
	existing, err := s.authorizeWorkLog(ctx, actor, id)
	if err != nil {
		return WorkLogMutation{}, err
	}
	if err := s.repo.DeleteWorkLog(ctx, id); err != nil {
		return WorkLogMutation{}, err
	}
	return s.afterWorkLogWrite(ctx, nil, existing.DealID, events.ActionDeleted), nil
}

// RecomputeActualHours re-derives a deal's actual hours from its work logs.
// Running it twice yields the same stored value.
func (s *Service) RecomputeActualHours(ctx context.Context, dealID uuid.UUID) error {
	_, err := s.recompute(ctx, dealID)
	return err
}

// Recompute is the explicit recompute operation exposed over HTTP.
func (s *Service) Recompute(ctx context.Context, dealID uuid.UUID) (WorkLogMutation, error) {
	hours, err := s.recompute(ctx, dealID)
	if err != nil {
		return WorkLogMutation{}, err
	}
	return WorkLogMutation{DealID: dealID, ActualHours: &hours, DerivedState: DerivedFresh}, nil
}

// MyHours summarizes the caller's own work logs. Empty bounds default to the
// current month to date.
func (s *Service) MyHours(ctx context.Context, userID uuid.UUID, start, end string) (MyHours, error) {
	period, warnings := aggregate.ParsePeriod(start, end, s.now(), true)
	logs, err := s.repo.ListWorkLogs(ctx, repository.WorkLogFilter{UserID: &userID, From: period.Start, To: period.End})
	if err != nil {
		return MyHours{}, err
	}
	return MyHours{
		Period:   period,
		Summary:  domain.SummarizeHours(logs),
		Logs:     logs,
		Warnings: warnings,
	}, nil
}

func (s *Service) recompute(ctx context.Context, dealID uuid.UUID) (float64, error) {
	logs, err := s.repo.ListWorkLogs(ctx, repository.WorkLogFilter{DealID: &dealID})
	if err != nil {
		return 0, err
	}
	hours := domain.ActualHours(logs)
	if err := s.repo.SetActualHours(ctx, dealID, hours); err != nil {
		return 0, err
	}
	return hours, nil
}

func (s *Service) afterWorkLogWrite(ctx context.Context, log *domain.WorkLog, dealID uuid.UUID, action string) WorkLogMutation {
	result := WorkLogMutation{WorkLog: log, DealID: dealID}
	s.publish(ctx, dealID, action)

	hours, err := s.recompute(ctx, dealID)
	if err != nil {
		s.trackFailure(ctx, dealID, err)
		result.DerivedState = DerivedStale
		return result
	}
	result.ActualHours = &hours
	result.DerivedState = DerivedFresh
	return result
}

func (s *Service) authorizeWorkLog(ctx context.Context, actor Actor, id uuid.UUID) (domain.WorkLog, error) {
	existing, err := s.repo.GetWorkLog(ctx, id)
	if err != nil {
		return domain.WorkLog{}, err
	}
	if existing.UserID != actor.UserID && !actor.IsAdmin {
		return domain.WorkLog{}, apperr.Forbidden("cannot modify another user's work log")
	}
	return existing, nil
}
