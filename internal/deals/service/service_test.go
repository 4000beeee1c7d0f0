package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"smart_crm_backend/internal/deals/domain"
	"smart_crm_backend/internal/deals/repository"
	"smart_crm_backend/platform/apperr"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	deals      map[uuid.UUID]domain.Deal
	logs       map[uuid.UUID]domain.WorkLog
	hoursErr   error
	hoursSets  int
	lastCreate repository.CreateParams
	lastUpdate repository.UpdateParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{deals: map[uuid.UUID]domain.Deal{}, logs: map[uuid.UUID]domain.WorkLog{}}
}

func (r *fakeRepo) List(context.Context, repository.ListParams) ([]domain.Deal, error) {
	return r.all(), nil
}

func (r *fakeRepo) ListAll(context.Context, *uuid.UUID) ([]domain.Deal, error) {
	return r.all(), nil
}

func (r *fakeRepo) ListWon(context.Context) ([]domain.Deal, error) {
	var won []domain.Deal
	for _, d := range r.deals {
		if d.Stage == domain.StageClosedWon {
			won = append(won, d)
		}
	}
	return won, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Deal, error) {
	d, ok := r.deals[id]
	if !ok {
		return domain.Deal{}, apperr.NotFound("deal not found")
	}
	return d, nil
}

func (r *fakeRepo) Create(_ context.Context, p repository.CreateParams) (domain.Deal, error) {
	r.lastCreate = p
	d := domain.Deal{
		ID:              uuid.New(),
		Title:           p.Title,
		Value:           p.Value,
		Stage:           p.Stage,
		Probability:     p.Probability,
		ActualCloseDate: p.ActualCloseDate,
		ClosedAt:        p.ClosedAt,
	}
	r.deals[d.ID] = d
	return d, nil
}

func (r *fakeRepo) Update(_ context.Context, id uuid.UUID, p repository.UpdateParams) (domain.Deal, error) {
	r.lastUpdate = p
	d, ok := r.deals[id]
	if !ok {
		return domain.Deal{}, apperr.NotFound("deal not found")
	}
	if p.Stage != nil {
		d.Stage = *p.Stage
	}
	if p.Probability != nil {
		d.Probability = *p.Probability
	}
	if p.ClosedAt != nil {
		d.ClosedAt = p.ClosedAt
	}
	if p.ActualCloseDate != nil {
		d.ActualCloseDate = p.ActualCloseDate
	}
	r.deals[id] = d
	return d, nil
}

func (r *fakeRepo) SetActualHours(_ context.Context, id uuid.UUID, hours float64) error {
	if r.hoursErr != nil {
		return r.hoursErr
	}
	r.hoursSets++
	d := r.deals[id]
	d.ActualHours = hours
	r.deals[id] = d
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.deals, id)
	return nil
}

func (r *fakeRepo) ListWorkLogs(_ context.Context, f repository.WorkLogFilter) ([]domain.WorkLog, error) {
	var out []domain.WorkLog
	for _, l := range r.logs {
		if f.DealID != nil && l.DealID != *f.DealID {
			continue
		}
		if f.UserID != nil && l.UserID != *f.UserID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *fakeRepo) GetWorkLog(_ context.Context, id uuid.UUID) (domain.WorkLog, error) {
	l, ok := r.logs[id]
	if !ok {
		return domain.WorkLog{}, apperr.NotFound("work log not found")
	}
	return l, nil
}

func (r *fakeRepo) CreateWorkLog(_ context.Context, p repository.WorkLogParams) (domain.WorkLog, error) {
	l := domain.WorkLog{ID: uuid.New(), UserID: p.UserID, DealID: p.DealID, Date: p.Date, Hours: p.Hours, Billable: p.Billable}
	r.logs[l.ID] = l
	return l, nil
}

func (r *fakeRepo) UpdateWorkLog(_ context.Context, id uuid.UUID, p repository.WorkLogUpdate) (domain.WorkLog, error) {
	l := r.logs[id]
	if p.Hours != nil {
		l.Hours = *p.Hours
	}
	r.logs[id] = l
	return l, nil
}

func (r *fakeRepo) DeleteWorkLog(_ context.Context, id uuid.UUID) error {
	delete(r.logs, id)
	return nil
}

func (r *fakeRepo) all() []domain.Deal {
	out := make([]domain.Deal, 0, len(r.deals))
	for _, d := range r.deals {
		out = append(out, d)
	}
	return out
}

type fakeRetries struct {
	deals []uuid.UUID
}

func (f *fakeRetries) EnqueueLeadScoreRecompute(context.Context, uuid.UUID) error { return nil }

func (f *fakeRetries) EnqueueDealHoursRecompute(_ context.Context, id uuid.UUID) error {
	f.deals = append(f.deals, id)
	return nil
}

func newTestService(repo *fakeRepo, retries *fakeRetries) *Service {
	svc := New(repo, retries, nil, logger.Nop())
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 15, 30, 0, 0, time.UTC) }
	return svc
}

func TestCreateDefaultsToDiscovery(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRetries{})

	deal, err := svc.Create(context.Background(), CreateInput{Params: repository.CreateParams{Title: "Chatbot", Value: 12000}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deal.Stage != domain.StageDiscovery {
		t.Fatalf("expected discovery, got %q", deal.Stage)
	}
	if deal.Probability != domain.DefaultProbability(domain.StageDiscovery) {
		t.Fatalf("expected default probability, got %d", deal.Probability)
	}
	if deal.ClosedAt != nil {
		t.Fatalf("expected no close stamp on open deal")
	}
}

func TestUpdateStageToWonStampsCloseDates(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRetries{})
	created, _ := svc.Create(context.Background(), CreateInput{Params: repository.CreateParams{Title: "Chatbot"}})

	deal, err := svc.UpdateStage(context.Background(), created.ID, domain.StageClosedWon, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deal.Probability != 100 {
		t.Fatalf("expected probability 100, got %d", deal.Probability)
	}
	if deal.ClosedAt == nil || deal.ActualCloseDate == nil {
		t.Fatalf("expected closed_at and actual_close_date stamps")
	}
	want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !deal.ActualCloseDate.Equal(want) {
		t.Fatalf("expected actual close date %s, got %s", want, deal.ActualCloseDate)
	}
}

func TestUpdateStageKeepsExplicitProbability(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRetries{})
	created, _ := svc.Create(context.Background(), CreateInput{Params: repository.CreateParams{Title: "Chatbot"}})

	p := 35
	deal, err := svc.UpdateStage(context.Background(), created.ID, domain.StageProposal, &p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deal.Probability != 35 {
		t.Fatalf("expected explicit probability 35, got %d", deal.Probability)
	}
}

func TestUpdateRejectsUnknownStage(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRetries{})
	created, _ := svc.Create(context.Background(), CreateInput{Params: repository.CreateParams{Title: "Chatbot"}})

	if _, err := svc.UpdateStage(context.Background(), created.ID, domain.Stage("archived"), nil); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWorkLogWritesRecomputeActualHours(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRetries{})
	deal, _ := svc.Create(context.Background(), CreateInput{Params: repository.CreateParams{Title: "Chatbot"}})
	actor := Actor{UserID: uuid.New()}

	first, err := svc.CreateWorkLog(context.Background(), actor, repository.WorkLogParams{DealID: deal.ID, Hours: 3, Billable: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.CreateWorkLog(context.Background(), actor, repository.WorkLogParams{DealID: deal.ID, Hours: 2.5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.deals[deal.ID].ActualHours; got != 5.5 {
		t.Fatalf("expected 5.5 actual hours, got %v", got)
	}

	result, err := svc.DeleteWorkLog(context.Background(), actor, first.WorkLog.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DerivedState != DerivedFresh || result.ActualHours == nil || *result.ActualHours != 2.5 {
		t.Fatalf("expected fresh 2.5 hours after delete, got %+v", result)
	}
}

func TestWorkLogRecomputeFailureIsStale(t *testing.T) {
	repo := newFakeRepo()
	retries := &fakeRetries{}
	svc := newTestService(repo, retries)
	deal, _ := svc.Create(context.Background(), CreateInput{Params: repository.CreateParams{Title: "Chatbot"}})
	repo.hoursErr = errors.New("connection reset")

	result, err := svc.CreateWorkLog(context.Background(), Actor{UserID: uuid.New()}, repository.WorkLogParams{DealID: deal.ID, Hours: 4})
	if err != nil {
		t.Fatalf("expected partial success, got %v", err)
	}
	if result.DerivedState != DerivedStale || result.ActualHours != nil {
		t.Fatalf("expected stale result without hours, got %+v", result)
	}
	if len(repo.logs) != 1 {
		t.Fatalf("expected work log to persist")
	}
	if len(retries.deals) != 1 || retries.deals[0] != deal.ID {
		t.Fatalf("expected one retry for %s, got %v", deal.ID, retries.deals)
	}
}

func TestWorkLogOwnershipEnforced(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRetries{})
	deal, _ := svc.Create(context.Background(), CreateInput{Params: repository.CreateParams{Title: "Chatbot"}})
	owner := Actor{UserID: uuid.New()}
	created, _ := svc.CreateWorkLog(context.Background(), owner, repository.WorkLogParams{DealID: deal.ID, Hours: 1})

	hours := 2.0
	_, err := svc.UpdateWorkLog(context.Background(), Actor{UserID: uuid.New()}, created.WorkLog.ID, repository.WorkLogUpdate{Hours: &hours})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for another user, got %v", err)
	}

	admin := Actor{UserID: uuid.New(), IsAdmin: true}
	if _, err := svc.UpdateWorkLog(context.Background(), admin, created.WorkLog.ID, repository.WorkLogUpdate{Hours: &hours}); err != nil {
		t.Fatalf("expected admin update to succeed, got %v", err)
	}
}

func TestRecomputeActualHoursIsIdempotent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeRetries{})
	deal, _ := svc.Create(context.Background(), CreateInput{Params: repository.CreateParams{Title: "Chatbot"}})
	_, _ = svc.CreateWorkLog(context.Background(), Actor{UserID: uuid.New()}, repository.WorkLogParams{DealID: deal.ID, Hours: 6})

	for i := 0; i < 2; i++ {
		if err := svc.RecomputeActualHours(context.Background(), deal.ID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := repo.deals[deal.ID].ActualHours; got != 6 {
			t.Fatalf("expected 6 hours on pass %d, got %v", i, got)
		}
	}
}
