package scoring

import (
	"context"
	"time"

	"smart_crm_backend/internal/leads/domain"
	"smart_crm_backend/platform/logger"
	"smart_crm_backend/platform/metrics"

	"github.com/google/uuid"
)

// Repository is the store access the recompute needs.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	UpdateScore(ctx context.Context, id uuid.UUID, score float64, explanation string) error
}

// Service loads a lead, scores it and persists the result.
type Service struct {
	repo Repository
	log  *logger.Logger
	now  func() time.Time
}

func New(repo Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// Recalculate re-scores the stored lead. Running it twice on unchanged input
// writes the same score, so callers may retry freely.
func (s *Service) Recalculate(ctx context.Context, leadID uuid.UUID) (Result, error) {
	lead, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return Result{}, err
	}

	result := s.Preview(InputFromLead(lead))
	if err := s.repo.UpdateScore(ctx, leadID, result.Total, result.Explanation); err != nil {
		return Result{}, err
	}

	s.log.WithContext(ctx).Debug("lead scored",
		"leadId", leadID,
		"score", result.Total,
		"banner", result.Banner,
	)
	return result, nil
}

// Preview scores attributes without touching the store.
func (s *Service) Preview(in Input) Result {
	result := Score(in, s.now())
	metrics.LeadScoresComputed.WithLabelValues(result.Banner).Inc()
	return result
}
