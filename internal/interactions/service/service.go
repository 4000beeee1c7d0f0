package service

import (
	"context"
	"time"

	"smart_crm_backend/internal/events"
	"smart_crm_backend/internal/interactions/domain"
	"smart_crm_backend/internal/interactions/repository"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

type Repository interface {
	ListRecent(ctx context.Context, limit int, userID *uuid.UUID) ([]domain.Interaction, error)
	ListForLead(ctx context.Context, leadID uuid.UUID) ([]domain.Interaction, error)
	ListForDeal(ctx context.Context, dealID uuid.UUID) ([]domain.Interaction, error)
	Create(ctx context.Context, params repository.CreateParams) (domain.Interaction, error)
}

// LeadContactToucher moves a lead's last contact date forward.
type LeadContactToucher interface {
	TouchLastContact(ctx context.Context, id uuid.UUID, at time.Time) error
}

type Service struct {
	repo     Repository
	leads    LeadContactToucher
	eventBus events.Bus
	log      *logger.Logger
}

func New(repo Repository, leads LeadContactToucher, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, leads: leads, eventBus: eventBus, log: log}
}

// Recent returns the activity feed, newest first.
func (s *Service) Recent(ctx context.Context, limit int, userID *uuid.UUID) ([]domain.Interaction, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	return s.repo.ListRecent(ctx, limit, userID)
}

func (s *Service) ListForLead(ctx context.Context, leadID uuid.UUID) ([]domain.Interaction, error) {
	return s.repo.ListForLead(ctx, leadID)
}

func (s *Service) ListForDeal(ctx context.Context, dealID uuid.UUID) ([]domain.Interaction, error) {
	return s.repo.ListForDeal(ctx, dealID)
}

// Create records an interaction. Logging one against a lead moves the lead's
// last contact date to the interaction time; that update is best effort and
// does not re-score the lead.
func (s *Service) Create(ctx context.Context, params repository.CreateParams) (domain.Interaction, error) {
	interaction, err := s.repo.Create(ctx, params)
	if err != nil {
		return domain.Interaction{}, err
	}

	if interaction.LeadID != nil && s.leads != nil {
		if err := s.leads.TouchLastContact(ctx, *interaction.LeadID, interaction.CreatedAt); err != nil {
			s.log.WithContext(ctx).Warn("touch lead last contact failed", "leadId", *interaction.LeadID, "error", err)
		}
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.InteractionLogged{
			BaseEvent:     events.NewBaseEvent(),
			InteractionID: interaction.ID,
			LeadID:        interaction.LeadID,
			DealID:        interaction.DealID,
		})
	}
	return interaction, nil
}
