package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"smart_crm_backend/internal/interactions/domain"
	"smart_crm_backend/internal/interactions/repository"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	created   []domain.Interaction
	lastLimit int
}

func (r *fakeRepo) ListRecent(_ context.Context, limit int, _ *uuid.UUID) ([]domain.Interaction, error) {
	r.lastLimit = limit
	return r.created, nil
}

func (r *fakeRepo) ListForLead(context.Context, uuid.UUID) ([]domain.Interaction, error) {
	return r.created, nil
}

func (r *fakeRepo) ListForDeal(context.Context, uuid.UUID) ([]domain.Interaction, error) {
	return r.created, nil
}

func (r *fakeRepo) Create(_ context.Context, p repository.CreateParams) (domain.Interaction, error) {
	i := domain.Interaction{
		ID:        uuid.New(),
		LeadID:    p.LeadID,
		DealID:    p.DealID,
		Type:      p.Type,
		CreatedAt: time.Date(2026, 6, 2, 11, 0, 0, 0, time.UTC),
	}
	r.created = append(r.created, i)
	return i, nil
}

type fakeLeads struct {
	touched map[uuid.UUID]time.Time
	err     error
}

func (f *fakeLeads) TouchLastContact(_ context.Context, id uuid.UUID, at time.Time) error {
	if f.err != nil {
		return f.err
	}
	f.touched[id] = at
	return nil
}

func TestCreateOnLeadTouchesLastContact(t *testing.T) {
	repo := &fakeRepo{}
	leads := &fakeLeads{touched: map[uuid.UUID]time.Time{}}
	svc := New(repo, leads, nil, logger.Nop())
	leadID := uuid.New()

	interaction, err := svc.Create(context.Background(), repository.CreateParams{LeadID: &leadID, Type: domain.TypeCall})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := leads.touched[leadID]; !ok || !got.Equal(interaction.CreatedAt) {
		t.Fatalf("expected lead contact at %s, got %v", interaction.CreatedAt, got)
	}
}

func TestCreateOnDealLeavesLeadsAlone(t *testing.T) {
	leads := &fakeLeads{touched: map[uuid.UUID]time.Time{}}
	svc := New(&fakeRepo{}, leads, nil, logger.Nop())
	dealID := uuid.New()

	if _, err := svc.Create(context.Background(), repository.CreateParams{DealID: &dealID, Type: domain.TypeMeeting}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads.touched) != 0 {
		t.Fatalf("expected no lead touch, got %v", leads.touched)
	}
}

func TestCreateSurvivesTouchFailure(t *testing.T) {
	leads := &fakeLeads{err: errors.New("connection reset")}
	svc := New(&fakeRepo{}, leads, nil, logger.Nop())
	leadID := uuid.New()

	if _, err := svc.Create(context.Background(), repository.CreateParams{LeadID: &leadID, Type: domain.TypeEmail}); err != nil {
		t.Fatalf("expected interaction to persist, got %v", err)
	}
}

func TestRecentClampsLimit(t *testing.T) {
	repo := &fakeRepo{}
	svc := New(repo, nil, nil, logger.Nop())

	_, _ = svc.Recent(context.Background(), 0, nil)
	if repo.lastLimit != defaultRecentLimit {
		t.Fatalf("expected default limit, got %d", repo.lastLimit)
	}
	_, _ = svc.Recent(context.Background(), 5000, nil)
	if repo.lastLimit != maxRecentLimit {
		t.Fatalf("expected max limit, got %d", repo.lastLimit)
	}
}
