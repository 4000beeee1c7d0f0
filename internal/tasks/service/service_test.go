package service

import (
	"context"
	"testing"
	"time"

	"smart_crm_backend/internal/tasks/domain"
	"smart_crm_backend/internal/tasks/repository"
	"smart_crm_backend/platform/apperr"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	tasks      map[uuid.UUID]domain.Task
	lastUpdate repository.UpdateParams
	from, to   time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tasks: map[uuid.UUID]domain.Task{}}
}

func (r *fakeRepo) List(context.Context, repository.ListParams) ([]domain.Task, error) {
	return r.all(), nil
}

func (r *fakeRepo) ListAll(context.Context, *uuid.UUID) ([]domain.Task, error) {
	return r.all(), nil
}

func (r *fakeRepo) ListOpenDueBetween(_ context.Context, from, to time.Time, _ *uuid.UUID) ([]domain.Task, error) {
	r.from, r.to = from, to
	return nil, nil
}

func (r *fakeRepo) ListOpenDueBefore(_ context.Context, cutoff time.Time, _ *uuid.UUID) ([]domain.Task, error) {
	r.to = cutoff
	return nil, nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return domain.Task{}, apperr.NotFound("task not found")
	}
	return t, nil
}

func (r *fakeRepo) Create(_ context.Context, p repository.CreateParams) (domain.Task, error) {
	t := domain.Task{ID: uuid.New(), Title: p.Title, DueDate: p.DueDate, Priority: p.Priority, Status: p.Status}
	r.tasks[t.ID] = t
	return t, nil
}

func (r *fakeRepo) Update(_ context.Context, id uuid.UUID, p repository.UpdateParams) (domain.Task, error) {
	r.lastUpdate = p
	t, ok := r.tasks[id]
	if !ok {
		return domain.Task{}, apperr.NotFound("task not found")
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.IsHandled != nil {
		t.IsHandled = *p.IsHandled
	}
	if p.CompletedAt != nil {
		t.CompletedAt = p.CompletedAt
	}
	r.tasks[id] = t
	return t, nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.tasks, id)
	return nil
}

func (r *fakeRepo) all() []domain.Task {
	out := make([]domain.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	return out
}

var fixedNow = time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo) *Service {
	svc := New(repo, nil, logger.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc := newTestService(newFakeRepo())

	task, err := svc.Create(context.Background(), repository.CreateParams{Title: "Call back", DueDate: fixedNow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Status != domain.StatusPending || task.Priority != domain.PriorityMedium {
		t.Fatalf("expected pending/medium defaults, got %s/%s", task.Status, task.Priority)
	}
}

func TestCompletingStampsCompletionAndHandled(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	created, _ := svc.Create(context.Background(), repository.CreateParams{Title: "Send proposal", DueDate: fixedNow})

	task, err := svc.UpdateStatus(context.Background(), created.ID, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.CompletedAt == nil || !task.CompletedAt.Equal(fixedNow) {
		t.Fatalf("expected completed_at %s, got %v", fixedNow, task.CompletedAt)
	}
	if !task.IsHandled {
		t.Fatalf("expected completed task to be handled")
	}
}

func TestNonCompletingStatusLeavesStampsAlone(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	created, _ := svc.Create(context.Background(), repository.CreateParams{Title: "Demo", DueDate: fixedNow})

	if _, err := svc.UpdateStatus(context.Background(), created.ID, domain.StatusInProgress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastUpdate.CompletedAt != nil || repo.lastUpdate.IsHandled != nil {
		t.Fatalf("expected no completion stamps, got %+v", repo.lastUpdate)
	}
}

func TestUpdateStatusRejectsUnknown(t *testing.T) {
	svc := newTestService(newFakeRepo())

	if _, err := svc.UpdateStatus(context.Background(), uuid.New(), domain.Status("done")); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWindowsUseCalendarDays(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	midnight := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	_, _ = svc.Today(context.Background(), nil)
	if !repo.from.Equal(midnight) || !repo.to.Equal(midnight.AddDate(0, 0, 1)) {
		t.Fatalf("unexpected today window %s..%s", repo.from, repo.to)
	}

	_, _ = svc.Week(context.Background(), nil)
	if !repo.to.Equal(midnight.AddDate(0, 0, 7)) {
		t.Fatalf("unexpected week end %s", repo.to)
	}

	_, _ = svc.Overdue(context.Background(), nil)
	if !repo.to.Equal(midnight) {
		t.Fatalf("expected overdue cutoff at midnight, got %s", repo.to)
	}
}
