// Package service loads report inputs from the stores and runs the
// aggregators over them.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smart_crm_backend/internal/analytics/aggregate"
	"smart_crm_backend/internal/analytics/cache"
	userdomain "smart_crm_backend/internal/auth/domain"
	dealdomain "smart_crm_backend/internal/deals/domain"
	dealrepo "smart_crm_backend/internal/deals/repository"
	expensedomain "smart_crm_backend/internal/expenses/domain"
	interactiondomain "smart_crm_backend/internal/interactions/domain"
	leaddomain "smart_crm_backend/internal/leads/domain"
	taskdomain "smart_crm_backend/internal/tasks/domain"
	"smart_crm_backend/platform/logger"
	"smart_crm_backend/platform/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	recentActivityLimit = 10
	revenueChartMonths  = 6
)

type LeadStore interface {
	ListAll(ctx context.Context, assignedTo *uuid.UUID) ([]leaddomain.Lead, error)
}

type DealStore interface {
	ListAll(ctx context.Context, assignedTo *uuid.UUID) ([]dealdomain.Deal, error)
	ListWon(ctx context.Context) ([]dealdomain.Deal, error)
	ListWorkLogs(ctx context.Context, f dealrepo.WorkLogFilter) ([]dealdomain.WorkLog, error)
}

type ExpenseStore interface {
	ListInRange(ctx context.Context, from, to *time.Time) ([]expensedomain.Expense, error)
}

type TaskStore interface {
	ListAll(ctx context.Context, assignedTo *uuid.UUID) ([]taskdomain.Task, error)
}

type UserStore interface {
	List(ctx context.Context, activeOnly bool) ([]userdomain.User, error)
}

type ActivityStore interface {
	ListRecent(ctx context.Context, limit int, userID *uuid.UUID) ([]interactiondomain.Interaction, error)
}

// Stores groups the report inputs.
type Stores struct {
	Leads      LeadStore
	Deals      DealStore
	Expenses   ExpenseStore
	Tasks      TaskStore
	Users      UserStore
	Activities ActivityStore
}

type Service struct {
	stores Stores
	cache  cache.Snapshots
	log    *logger.Logger
	now    func() time.Time
}

// New builds the service. snapshots may be nil to disable caching.
func New(stores Stores, snapshots cache.Snapshots, log *logger.Logger) *Service {
	return &Service{stores: stores, cache: snapshots, log: log, now: time.Now}
}

// Pipeline is the Kanban view with its summary.
type Pipeline struct {
	Stages  []aggregate.StageGroup    `json:"stages"`
	Summary aggregate.PipelineSummary `json:"summary"`
}

// Dashboard composes the KPI dashboard. A non-nil userID restricts every
// input to that representative.
func (s *Service) Dashboard(ctx context.Context, userID *uuid.UUID) (aggregate.Dashboard, error) {
	key := "dashboard:all"
	if userID != nil {
		key = "dashboard:" + userID.String()
	}

	return cached(ctx, s, key, func(ctx context.Context) (aggregate.Dashboard, error) {
		in := aggregate.DashboardInput{Now: s.now()}
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			in.Leads, err = s.stores.Leads.ListAll(gctx, userID)
			return err
		})
		g.Go(func() (err error) {
			in.Deals, err = s.stores.Deals.ListAll(gctx, userID)
			return err
		})
		g.Go(func() (err error) {
			in.Tasks, err = s.stores.Tasks.ListAll(gctx, userID)
			return err
		})
		g.Go(func() (err error) {
			in.RecentActivity, err = s.stores.Activities.ListRecent(gctx, recentActivityLimit, userID)
			return err
		})
		if err := g.Wait(); err != nil {
			return aggregate.Dashboard{}, fmt.Errorf("load dashboard inputs: %w", err)
		}
		return aggregate.ComposeDashboard(in), nil
	})
}

// Profitability reports revenue minus expenses and labor for [start, end].
// Empty bounds default to the current month to date; malformed ones become
// warnings.
func (s *Service) Profitability(ctx context.Context, start, end string) (aggregate.Profitability, error) {
	period, warnings := aggregate.ParsePeriod(start, end, s.now(), true)
	key := fmt.Sprintf("profitability:%s:%s", dayKey(period.Start), dayKey(period.End))

	out, err := cached(ctx, s, key, func(ctx context.Context) (aggregate.Profitability, error) {
		in := aggregate.ProfitabilityInput{Period: period}
		var logs []dealdomain.WorkLog
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			in.Deals, err = s.stores.Deals.ListWon(gctx)
			return err
		})
		g.Go(func() (err error) {
			in.Expenses, err = s.stores.Expenses.ListInRange(gctx, period.Start, period.End)
			return err
		})
		g.Go(func() (err error) {
			in.Users, err = s.stores.Users.List(gctx, false)
			return err
		})
		g.Go(func() (err error) {
			logs, err = s.stores.Deals.ListWorkLogs(gctx, dealrepo.WorkLogFilter{From: period.Start, To: period.End})
			return err
		})
		if err := g.Wait(); err != nil {
			return aggregate.Profitability{}, fmt.Errorf("load profitability inputs: %w", err)
		}
		in.LogsByUser = aggregate.GroupLogsByUser(logs)
		return aggregate.ComputeProfitability(in), nil
	})
	if err != nil {
		return aggregate.Profitability{}, err
	}
	out.Warnings = append(out.Warnings, warnings...)
	return out, nil
}

func (s *Service) Pipeline(ctx context.Context, assignedTo *uuid.UUID) (Pipeline, error) {
	defer s.observe("pipeline", time.Now())
	deals, err := s.stores.Deals.ListAll(ctx, assignedTo)
	if err != nil {
		return Pipeline{}, err
	}
	return Pipeline{Stages: aggregate.GroupByStage(deals), Summary: aggregate.SummarizePipeline(deals)}, nil
}

func (s *Service) LeadSources(ctx context.Context, assignedTo *uuid.UUID) (aggregate.LeadSources, error) {
	defer s.observe("lead_sources", time.Now())
	leads, err := s.stores.Leads.ListAll(ctx, assignedTo)
	if err != nil {
		return aggregate.LeadSources{}, err
	}
	return aggregate.SummarizeLeadSources(leads), nil
}

// RepresentativePerformance scores every active representative.
func (s *Service) RepresentativePerformance(ctx context.Context) ([]aggregate.RepresentativePerformance, error) {
	defer s.observe("representative_performance", time.Now())
	var (
		users []userdomain.User
		leads []leaddomain.Lead
		deals []dealdomain.Deal
		tasks []taskdomain.Task
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.stores.Users.List(gctx, true)
		return err
	})
	g.Go(func() (err error) {
		leads, err = s.stores.Leads.ListAll(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		deals, err = s.stores.Deals.ListAll(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		tasks, err = s.stores.Tasks.ListAll(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load representative inputs: %w", err)
	}
	return aggregate.SummarizeRepresentatives(users, leads, deals, tasks, s.now()), nil
}

// RevenueChart returns won revenue for the last six calendar months.
func (s *Service) RevenueChart(ctx context.Context) ([]aggregate.MonthRevenue, error) {
	defer s.observe("revenue_chart", time.Now())
	deals, err := s.stores.Deals.ListWon(ctx)
	if err != nil {
		return nil, err
	}
	return aggregate.RevenueByMonth(deals, s.now(), revenueChartMonths), nil
}

// cached serves key from the snapshot cache, computing and storing it on a
// miss. Cache failures fall through to a fresh computation.
func cached[T any](ctx context.Context, s *Service, key string, compute func(context.Context) (T, error)) (T, error) {
	var out T
	if s.cache != nil {
		hit, err := s.cache.Get(ctx, key, &out)
		if err != nil {
			s.log.WithContext(ctx).Warn("analytics cache read failed", "key", key, "error", err)
		}
		if hit {
			return out, nil
		}
	}

	report, _, _ := strings.Cut(key, ":")
	defer s.observe(report, time.Now())
	out, err := compute(ctx)
	if err != nil {
		return out, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out); err != nil {
			s.log.WithContext(ctx).Warn("analytics cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

func (s *Service) observe(report string, started time.Time) {
	metrics.AggregationDuration.WithLabelValues(report).Observe(float64(time.Since(started).Microseconds()) / 1000)
}

func dayKey(t *time.Time) string {
	if t == nil {
		return "open"
	}
	return t.Format("2006-01-02")
}
