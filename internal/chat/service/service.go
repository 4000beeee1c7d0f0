// Package service answers chat questions with CRM statistics as context.
package service

import (
	"context"
	"fmt"
	"strings"

	"smart_crm_backend/internal/analytics/aggregate"
	analyticssvc "smart_crm_backend/internal/analytics/service"
	"smart_crm_backend/platform/apperr"
	"smart_crm_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Mode selects the assistant persona.
type Mode string

const (
	ModeAnalyst    Mode = "analyst"
	ModeService    Mode = "service"
	ModeSales      Mode = "sales"
	ModeConsulting Mode = "consulting"
)

var Modes = []Mode{ModeAnalyst, ModeService, ModeSales, ModeConsulting}

// Reports is the slice of the analytics service the stats are built from.
type Reports interface {
	Dashboard(ctx context.Context, userID *uuid.UUID) (aggregate.Dashboard, error)
	Pipeline(ctx context.Context, assignedTo *uuid.UUID) (analyticssvc.Pipeline, error)
	Profitability(ctx context.Context, start, end string) (aggregate.Profitability, error)
}

// Completer is the text-completion collaborator.
type Completer interface {
	Complete(ctx context.Context, sessionKey, instruction, prompt string) (string, error)
}

// Viewer is who the stats are built for. Representatives see their own
// figures without costs.
type Viewer struct {
	UserID  uuid.UUID
	IsAdmin bool
}

type Reply struct {
	Mode  Mode   `json:"mode"`
	Reply string `json:"reply"`
}

type Service struct {
	reports   Reports
	completer Completer
	company   string
	format    formatter
	log       *logger.Logger
}

// New builds the service. completer may be nil, in which case Ask reports
// the chat as unavailable.
func New(reports Reports, completer Completer, company, lang string, log *logger.Logger) *Service {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &Service{
		reports:   reports,
		completer: completer,
		company:   company,
		format:    formatter{p: message.NewPrinter(tag)},
		log:       log,
	}
}

// Stats renders the aggregator outputs visible to the viewer.
func (s *Service) Stats(ctx context.Context, viewer Viewer) (Stats, error) {
	var scope *uuid.UUID
	if !viewer.IsAdmin {
		id := viewer.UserID
		scope = &id
	}

	dashboard, err := s.reports.Dashboard(ctx, scope)
	if err != nil {
		return Stats{}, fmt.Errorf("load dashboard: %w", err)
	}
	pipeline, err := s.reports.Pipeline(ctx, scope)
	if err != nil {
		return Stats{}, fmt.Errorf("load pipeline: %w", err)
	}

	out := Stats{
		Leads:    s.format.leads(dashboard.LeadStats),
		Pipeline: s.format.pipeline(pipeline.Summary),
		Tasks:    s.format.tasks(dashboard.TaskStats),
	}
	if !viewer.IsAdmin {
		out.Revenue = s.format.kpiRevenue(dashboard.KPIs)
		return out, nil
	}

	report, err := s.reports.Profitability(ctx, "", "")
	if err != nil {
		return Stats{}, fmt.Errorf("load profitability: %w", err)
	}
	out.Revenue = s.format.revenue("this month", report.Revenue)
	out.Expenses = s.format.expenses(report.Costs)
	out.Labor = s.format.labor(report.Labor)
	out.Profitability = s.format.profitability(report)
	return out, nil
}

// Ask answers a question in the given mode with the viewer's stats as
// context. An empty mode means ModeAnalyst.
func (s *Service) Ask(ctx context.Context, viewer Viewer, question string, mode Mode) (Reply, error) {
	if s.completer == nil {
		return Reply{}, apperr.Unavailable("chat is not configured")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, apperr.Validation("message is required")
	}
	if mode == "" {
		mode = ModeAnalyst
	}

	stats, err := s.Stats(ctx, viewer)
	if err != nil {
		return Reply{}, err
	}

	prompt := fmt.Sprintf("CRM stats:\n%s\n\nQuestion:\n%s", stats.Text(), question)
	answer, err := s.completer.Complete(ctx, viewer.UserID.String(), instructionFor(mode, s.company), prompt)
	if err != nil {
		s.log.WithContext(ctx).Error("chat completion failed", "mode", mode, "error", err)
		return Reply{}, apperr.Wrap(apperr.KindUnavailable, "chat provider unavailable", err)
	}
	return Reply{Mode: mode, Reply: strings.TrimSpace(answer)}, nil
}
