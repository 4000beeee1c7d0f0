package service

import (
	"context"
	"strings"

	"smart_crm_backend/internal/events"
	"smart_crm_backend/internal/leads/domain"
	"smart_crm_backend/internal/leads/repository"
	"smart_crm_backend/internal/leads/scoring"
	"smart_crm_backend/internal/scheduler"
	"smart_crm_backend/platform/apperr"
	"smart_crm_backend/platform/logger"
	"smart_crm_backend/platform/metrics"
	"smart_crm_backend/platform/phone"

	"github.com/google/uuid"
)

// Derived-state markers carried on write responses.
const (
	DerivedFresh = "fresh"
	DerivedStale = "stale"
)

const defaultTopScoredLimit = 10

// Repository is the lead store the service depends on.
type Repository interface {
	List(ctx context.Context, params repository.ListParams) ([]domain.Lead, error)
	TopScored(ctx context.Context, limit int, assignedTo *uuid.UUID) ([]domain.Lead, error)
	ListAll(ctx context.Context, assignedTo *uuid.UUID) ([]domain.Lead, error)
	FindDuplicates(ctx context.Context, q repository.DuplicateQuery) ([]domain.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	Create(ctx context.Context, params repository.CreateParams) (domain.Lead, error)
	Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams) (domain.Lead, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score float64, explanation string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     Repository
	scorer   *scoring.Service
	retries  scheduler.RecomputeEnqueuer
	eventBus events.Bus
	log      *logger.Logger
}

func New(repo Repository, retries scheduler.RecomputeEnqueuer, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		scorer:   scoring.New(repo, log),
		retries:  retries,
		eventBus: eventBus,
		log:      log,
	}
}

// Mutation is the outcome of a lead write. DerivedState is empty when the
// write did not touch a scoring input.
type Mutation struct {
	Lead         domain.Lead     `json:"lead"`
	Score        *scoring.Result `json:"score,omitempty"`
	DerivedState string          `json:"derived_state,omitempty"`
}

func (s *Service) List(ctx context.Context, params repository.ListParams) ([]domain.Lead, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) TopScored(ctx context.Context, limit int, assignedTo *uuid.UUID) ([]domain.Lead, error) {
	if limit <= 0 {
		limit = defaultTopScoredLimit
	}
	return s.repo.TopScored(ctx, limit, assignedTo)
}

func (s *Service) Stats(ctx context.Context, assignedTo *uuid.UUID) (domain.Stats, error) {
	leads, err := s.repo.ListAll(ctx, assignedTo)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(leads), nil
}

// CheckDuplicate looks for existing leads by email, E.164 phone or company name.
func (s *Service) CheckDuplicate(ctx context.Context, email, rawPhone, company string) ([]domain.Lead, error) {
	var q repository.DuplicateQuery
	if v := strings.TrimSpace(email); v != "" {
		q.Email = &v
	}
	if v := phone.NormalizeE164(rawPhone); v != "" {
		q.Phone = &v
	}
	if v := strings.TrimSpace(company); v != "" {
		q.CompanyName = &v
	}
	if q.Email == nil && q.Phone == nil && q.CompanyName == nil {
		return nil, apperr.BadRequest("email, phone or company_name is required")
	}
	return s.repo.FindDuplicates(ctx, q)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a lead and scores it when both interest and AI readiness are known.
func (s *Service) Create(ctx context.Context, params repository.CreateParams) (Mutation, error) {
	params.Phone = phone.NormalizePtr(params.Phone)
	if params.Status == "" {
		params.Status = domain.StatusNew
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		return Mutation{}, err
	}
	s.publish(ctx, lead.ID, events.ActionCreated)

	result := Mutation{Lead: lead}
	if scoring.ShouldScoreOnCreate(scoring.InputFromLead(lead)) {
		s.rescore(ctx, &result)
	}
	return result, nil
}

// Update applies a partial update. changedFields names the fields present in
// the request and decides whether the lead is re-scored.
func (s *Service) Update(ctx context.Context, id uuid.UUID, params repository.UpdateParams, changedFields []string) (Mutation, error) {
	params.Phone = phone.NormalizePtr(params.Phone)

	lead, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return Mutation{}, err
	}
	s.publish(ctx, lead.ID, events.ActionUpdated)

	result := Mutation{Lead: lead}
	if scoring.ScoringFieldsChanged(changedFields) {
		s.rescore(ctx, &result)
	}
	return result, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, events.ActionDeleted)
	return nil
}

// Score recomputes and stores the score of a lead on demand.
func (s *Service) Score(ctx context.Context, id uuid.UUID) (Mutation, error) {
	result, err := s.scorer.Recalculate(ctx, id)
	if err != nil {
		return Mutation{}, err
	}
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Mutation{}, err
	}
	s.publish(ctx, id, events.ActionScored)
	return Mutation{Lead: lead, Score: &result, DerivedState: DerivedFresh}, nil
}

// RecomputeScore is the retry entry point used by the background worker.
func (s *Service) RecomputeScore(ctx context.Context, id uuid.UUID) error {
	if _, err := s.scorer.Recalculate(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, events.ActionScored)
	return nil
}

// Preview scores unsaved attributes.
func (s *Service) Preview(in scoring.Input) scoring.Result {
	return s.scorer.Preview(in)
}

// rescore scores the freshly written lead in place. A failure leaves the
// write in effect, marks the result stale and queues a background retry.
func (s *Service) rescore(ctx context.Context, m *Mutation) {
	result, err := s.scorer.Recalculate(ctx, m.Lead.ID)
	if err != nil {
		s.log.WithContext(ctx).RecomputeFailed(metrics.KindLeadScore, m.Lead.ID.String(), err)
		metrics.RecomputeFailures.WithLabelValues(metrics.KindLeadScore).Inc()
		m.DerivedState = DerivedStale
		if s.retries != nil {
			if qerr := s.retries.EnqueueLeadScoreRecompute(ctx, m.Lead.ID); qerr != nil {
				s.log.WithContext(ctx).Error("enqueue lead score retry failed", "leadId", m.Lead.ID, "error", qerr)
			}
		}
		if s.eventBus != nil {
			s.eventBus.Publish(ctx, events.LeadScoreStale{BaseEvent: events.NewBaseEvent(), LeadID: m.Lead.ID})
		}
		return
	}

	score := result.Total
	explanation := result.Explanation
	m.Lead.LeadScore = &score
	m.Lead.LeadScoreExplanation = &explanation
	m.Score = &result
	m.DerivedState = DerivedFresh
}

func (s *Service) publish(ctx context.Context, leadID uuid.UUID, action string) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, events.LeadChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		Action:    action,
	})
}
