package service

import (
	"context"
	"testing"
	"time"

	"smart_crm_backend/internal/events"
	"smart_crm_backend/internal/expenses/domain"
	"smart_crm_backend/internal/expenses/repository"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	expenses   []domain.Expense
	lastCreate repository.CreateParams
	rangeFrom  *time.Time
	rangeTo    *time.Time
}

func (r *fakeRepo) List(context.Context, repository.ListParams) ([]domain.Expense, error) {
	return r.expenses, nil
}

func (r *fakeRepo) ListInRange(_ context.Context, from, to *time.Time) ([]domain.Expense, error) {
	r.rangeFrom, r.rangeTo = from, to
	return r.expenses, nil
}

func (r *fakeRepo) GetByID(context.Context, uuid.UUID) (domain.Expense, error) {
	return domain.Expense{}, nil
}

func (r *fakeRepo) Create(_ context.Context, p repository.CreateParams) (domain.Expense, error) {
	r.lastCreate = p
	return domain.Expense{ID: uuid.New(), Amount: p.Amount, Date: p.Date, Category: p.Category, Type: p.Type}, nil
}

func (r *fakeRepo) Update(_ context.Context, id uuid.UUID, _ repository.UpdateParams) (domain.Expense, error) {
	return domain.Expense{ID: id}, nil
}

func (r *fakeRepo) Delete(context.Context, uuid.UUID) error { return nil }

type recordingBus struct {
	events []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) { b.events = append(b.events, e) }

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func TestCreateDefaultsCategoryAndType(t *testing.T) {
	repo := &fakeRepo{}
	bus := &recordingBus{}
	svc := New(repo, bus, logger.Nop())

	expense, err := svc.Create(context.Background(), repository.CreateParams{Amount: 120})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expense.Category != domain.CategoryVariable {
		t.Fatalf("expected variable category, got %q", expense.Category)
	}
	if expense.Type != domain.DefaultType {
		t.Fatalf("expected default type, got %q", expense.Type)
	}
	if len(bus.events) != 1 {
		t.Fatalf("expected one published event, got %d", len(bus.events))
	}
}

func TestTotalsDefaultsToMonthToDate(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 5, d, 0, 0, 0, 0, time.UTC) }
	repo := &fakeRepo{expenses: []domain.Expense{
		{Amount: 1000, Date: day(1), Category: domain.CategoryFixed, Type: "rent"},
		{Amount: 250.5, Date: day(10), Category: domain.CategoryVariable, Type: "ads"},
		{Amount: 40, Date: day(12), Category: "", Type: ""},
	}}
	svc := New(repo, nil, logger.Nop())
	svc.now = func() time.Time { return time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC) }

	totals, err := svc.Totals(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.rangeFrom == nil || !repo.rangeFrom.Equal(day(1)) {
		t.Fatalf("expected range to start on the first of the month, got %v", repo.rangeFrom)
	}
	if totals.Summary.Fixed != 1000 || totals.Summary.Variable != 290.5 {
		t.Fatalf("unexpected split fixed=%v variable=%v", totals.Summary.Fixed, totals.Summary.Variable)
	}
	if totals.Summary.DefaultedToVariable != 1 {
		t.Fatalf("expected one defaulted expense, got %d", totals.Summary.DefaultedToVariable)
	}
}

func TestTotalsWarnsOnMalformedDate(t *testing.T) {
	svc := New(&fakeRepo{}, nil, logger.Nop())

	totals, err := svc.Totals(context.Background(), "not-a-date", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(totals.Warnings) == 0 {
		t.Fatalf("expected a warning for the malformed start date")
	}
}
