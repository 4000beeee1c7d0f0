package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"smart_crm_backend/internal/analytics/aggregate"
	analyticssvc "smart_crm_backend/internal/analytics/service"
	dealdomain "smart_crm_backend/internal/deals/domain"
	leaddomain "smart_crm_backend/internal/leads/domain"
	"smart_crm_backend/platform/apperr"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeReports struct {
	dashboardScope *uuid.UUID
	profitCalls    int
}

func (f *fakeReports) Dashboard(_ context.Context, userID *uuid.UUID) (aggregate.Dashboard, error) {
	f.dashboardScope = userID
	return aggregate.Dashboard{
		KPIs:      aggregate.KPIs{TotalRevenue: 12000, AverageDealSize: 6000, ConversionRate: 25},
		LeadStats: leaddomain.Stats{Total: 4, ByStatus: map[string]int{"new": 3, "won": 1}, BySource: map[string]int{"website": 4}},
	}, nil
}

func (f *fakeReports) Pipeline(context.Context, *uuid.UUID) (analyticssvc.Pipeline, error) {
	return analyticssvc.Pipeline{Summary: aggregate.PipelineSummary{
		TotalValue: 50000,
		ByStage:    map[dealdomain.Stage]aggregate.StageTotals{dealdomain.StageProposal: {Count: 2, Value: 50000}},
	}}, nil
}

func (f *fakeReports) Profitability(context.Context, string, string) (aggregate.Profitability, error) {
	f.profitCalls++
	return aggregate.Profitability{
		Revenue: aggregate.RevenueSummary{TotalRevenue: 20000, DealCount: 2},
		Costs:   aggregate.CostBreakdown{Fixed: 5000, Total: 8000, ByType: map[string]float64{"rent": 5000}},
		Profit:  aggregate.Profit{Net: 12000, MarginPercent: 60},
	}, nil
}

type fakeCompleter struct {
	instruction string
	prompt      string
	err         error
}

func (f *fakeCompleter) Complete(_ context.Context, _, instruction, prompt string) (string, error) {
	f.instruction = instruction
	f.prompt = prompt
	return "  Twelve thousand.  ", f.err
}

func TestStatsForRepresentativeOmitCosts(t *testing.T) {
	reports := &fakeReports{}
	svc := New(reports, nil, "Acme", "en", logger.Nop())
	viewer := Viewer{UserID: uuid.New()}

	stats, err := svc.Stats(context.Background(), viewer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reports.dashboardScope == nil || *reports.dashboardScope != viewer.UserID {
		t.Fatalf("expected dashboard scoped to the viewer")
	}
	if reports.profitCalls != 0 {
		t.Fatalf("expected no profitability lookup for representatives")
	}
	if stats.Expenses != "" || stats.Profitability != "" {
		t.Fatalf("expected cost sections to be empty, got %+v", stats)
	}
	if !strings.Contains(stats.Revenue, "₪12,000") {
		t.Fatalf("expected grouped revenue amount, got %q", stats.Revenue)
	}
}

func TestStatsForAdminIncludeProfitability(t *testing.T) {
	reports := &fakeReports{}
	svc := New(reports, nil, "Acme", "en", logger.Nop())

	stats, err := svc.Stats(context.Background(), Viewer{UserID: uuid.New(), IsAdmin: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reports.dashboardScope != nil {
		t.Fatalf("expected unscoped dashboard for admins")
	}
	if !strings.Contains(stats.Profitability, "60.00%") {
		t.Fatalf("expected margin in profitability section, got %q", stats.Profitability)
	}
	if !strings.Contains(stats.Pipeline, "proposal: 2 deals") {
		t.Fatalf("expected stage line in pipeline section, got %q", stats.Pipeline)
	}
}

func TestAskWithoutCompleterIsUnavailable(t *testing.T) {
	svc := New(&fakeReports{}, nil, "Acme", "en", logger.Nop())

	_, err := svc.Ask(context.Background(), Viewer{UserID: uuid.New()}, "How are we doing?", "")
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}

func TestAskPromptsWithStatsAndMode(t *testing.T) {
	completer := &fakeCompleter{}
	svc := New(&fakeReports{}, completer, "Acme", "en", logger.Nop())

	reply, err := svc.Ask(context.Background(), Viewer{UserID: uuid.New()}, "What is our revenue?", ModeSales)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.Reply != "Twelve thousand." || reply.Mode != ModeSales {
		t.Fatalf("unexpected reply %+v", reply)
	}
	if !strings.Contains(completer.instruction, "sales representative for Acme") {
		t.Fatalf("expected sales instruction, got %q", completer.instruction)
	}
	if !strings.HasPrefix(completer.prompt, "CRM stats:\nLead Statistics:") || !strings.HasSuffix(completer.prompt, "What is our revenue?") {
		t.Fatalf("unexpected prompt %q", completer.prompt)
	}
}

func TestAskWrapsProviderFailure(t *testing.T) {
	svc := New(&fakeReports{}, &fakeCompleter{err: errors.New("timeout")}, "Acme", "en", logger.Nop())

	_, err := svc.Ask(context.Background(), Viewer{UserID: uuid.New()}, "Hi", ModeService)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
