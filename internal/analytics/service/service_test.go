package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	userdomain "smart_crm_backend/internal/auth/domain"
	dealdomain "smart_crm_backend/internal/deals/domain"
	dealrepo "smart_crm_backend/internal/deals/repository"
	expensedomain "smart_crm_backend/internal/expenses/domain"
	interactiondomain "smart_crm_backend/internal/interactions/domain"
	leaddomain "smart_crm_backend/internal/leads/domain"
	taskdomain "smart_crm_backend/internal/tasks/domain"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStores struct {
	leads    []leaddomain.Lead
	deals    []dealdomain.Deal
	logs     []dealdomain.WorkLog
	expenses []expensedomain.Expense
	tasks    []taskdomain.Task
	users    []userdomain.User
	dealErr  error
	loads    int
}

func (f *fakeStores) stores() Stores {
	return Stores{
		Leads:      leadStore{f},
		Deals:      dealStore{f},
		Expenses:   expenseStore{f},
		Tasks:      taskStore{f},
		Users:      userStore{f},
		Activities: activityStore{f},
	}
}

type leadStore struct{ f *fakeStores }

func (s leadStore) ListAll(context.Context, *uuid.UUID) ([]leaddomain.Lead, error) {
	return s.f.leads, nil
}

type dealStore struct{ f *fakeStores }

func (s dealStore) ListAll(context.Context, *uuid.UUID) ([]dealdomain.Deal, error) {
	s.f.loads++
	return s.f.deals, s.f.dealErr
}

func (s dealStore) ListWon(context.Context) ([]dealdomain.Deal, error) {
	s.f.loads++
	var won []dealdomain.Deal
	for _, d := range s.f.deals {
		if d.Stage == dealdomain.StageClosedWon {
			won = append(won, d)
		}
	}
	return won, s.f.dealErr
}

func (s dealStore) ListWorkLogs(context.Context, dealrepo.WorkLogFilter) ([]dealdomain.WorkLog, error) {
	return s.f.logs, nil
}

type expenseStore struct{ f *fakeStores }

func (s expenseStore) ListInRange(context.Context, *time.Time, *time.Time) ([]expensedomain.Expense, error) {
	return s.f.expenses, nil
}

type taskStore struct{ f *fakeStores }

func (s taskStore) ListAll(context.Context, *uuid.UUID) ([]taskdomain.Task, error) {
	return s.f.tasks, nil
}

type userStore struct{ f *fakeStores }

func (s userStore) List(context.Context, bool) ([]userdomain.User, error) {
	return s.f.users, nil
}

type activityStore struct{ f *fakeStores }

func (s activityStore) ListRecent(context.Context, int, *uuid.UUID) ([]interactiondomain.Interaction, error) {
	return nil, nil
}

type memorySnapshots struct {
	entries map[string][]byte
}

func (m *memorySnapshots) Get(_ context.Context, key string, dst interface{}) (bool, error) {
	raw, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memorySnapshots) Set(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memorySnapshots) Invalidate(context.Context) error {
	m.entries = map[string][]byte{}
	return nil
}

var testNow = time.Date(2026, 5, 20, 12, 0, 0, 0, time.UTC)

func day(m time.Month, d int) *time.Time {
	t := time.Date(2026, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestProfitabilityCombinesRevenueExpensesAndLabor(t *testing.T) {
	rep := uuid.New()
	f := &fakeStores{
		deals: []dealdomain.Deal{
			{Stage: dealdomain.StageClosedWon, Value: 10000, ActualCloseDate: day(5, 3)},
			{Stage: dealdomain.StageClosedWon, Value: 5000, ActualCloseDate: day(4, 28)},
			{Stage: dealdomain.StageProposal, Value: 9000},
		},
		expenses: []expensedomain.Expense{
			{Amount: 2000, Date: *day(5, 1), Category: expensedomain.CategoryFixed},
			{Amount: 500, Date: *day(5, 10), Category: expensedomain.CategoryVariable},
		},
		users: []userdomain.User{{ID: rep, HourlyRate: 50}},
		logs: []dealdomain.WorkLog{
			{UserID: rep, Date: *day(5, 4), Hours: 10, Billable: true},
			{UserID: rep, Date: *day(5, 5), Hours: 4, Billable: false},
		},
	}
	svc := New(f.stores(), nil, logger.Nop())
	svc.now = func() time.Time { return testNow }

	report, err := svc.Profitability(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Revenue.TotalRevenue != 10000 {
		t.Fatalf("expected May revenue 10000, got %v", report.Revenue.TotalRevenue)
	}
	if report.Costs.Labor != 500 {
		t.Fatalf("expected labor cost 500, got %v", report.Costs.Labor)
	}
	if report.Costs.Total != 3000 {
		t.Fatalf("expected total cost 3000, got %v", report.Costs.Total)
	}
	if report.Profit.Net != 7000 || report.Profit.MarginPercent != 70 {
		t.Fatalf("expected net 7000 at 70%%, got %+v", report.Profit)
	}
}

func TestProfitabilityReportsMalformedDates(t *testing.T) {
	svc := New((&fakeStores{}).stores(), nil, logger.Nop())
	svc.now = func() time.Time { return testNow }

	report, err := svc.Profitability(context.Background(), "2026-13-45", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", report.Warnings)
	}
	if report.Profit.MarginPercent != 0 {
		t.Fatalf("expected zero margin without revenue, got %v", report.Profit.MarginPercent)
	}
}

func TestDashboardPropagatesStoreErrors(t *testing.T) {
	f := &fakeStores{dealErr: errors.New("connection refused")}
	svc := New(f.stores(), nil, logger.Nop())

	if _, err := svc.Dashboard(context.Background(), nil); err == nil {
		t.Fatalf("expected store error to surface")
	}
}

func TestDashboardServedFromCache(t *testing.T) {
	f := &fakeStores{deals: []dealdomain.Deal{{Stage: dealdomain.StageDiscovery, Value: 100}}}
	snapshots := &memorySnapshots{entries: map[string][]byte{}}
	svc := New(f.stores(), snapshots, logger.Nop())
	svc.now = func() time.Time { return testNow }

	first, err := svc.Dashboard(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loads := f.loads

	second, err := svc.Dashboard(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.loads != loads {
		t.Fatalf("expected cached dashboard, stores were read again")
	}
	if second.KPIs.ActiveDeals != first.KPIs.ActiveDeals {
		t.Fatalf("expected identical KPIs from cache")
	}

	_ = snapshots.Invalidate(context.Background())
	if _, err := svc.Dashboard(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.loads == loads {
		t.Fatalf("expected reload after invalidation")
	}
}
