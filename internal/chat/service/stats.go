package service

import (
	"sort"
	"strings"

	"smart_crm_backend/internal/analytics/aggregate"
	dealdomain "smart_crm_backend/internal/deals/domain"
	leaddomain "smart_crm_backend/internal/leads/domain"
	taskdomain "smart_crm_backend/internal/tasks/domain"

	"golang.org/x/text/message"
)

// Stats holds the plain-text CRM summaries handed to the completion model.
// Cost sections are empty for callers without access to them.
type Stats struct {
	Leads         string `json:"leads"`
	Pipeline      string `json:"pipeline"`
	Revenue       string `json:"revenue"`
	Tasks         string `json:"tasks"`
	Expenses      string `json:"expenses,omitempty"`
	Labor         string `json:"labor,omitempty"`
	Profitability string `json:"profitability,omitempty"`
}

// Text joins the non-empty sections.
func (s Stats) Text() string {
	sections := []string{s.Leads, s.Pipeline, s.Revenue, s.Tasks, s.Expenses, s.Labor, s.Profitability}
	parts := make([]string, 0, len(sections))
	for _, section := range sections {
		if section != "" {
			parts = append(parts, section)
		}
	}
	return strings.Join(parts, "\n\n")
}

// formatter renders aggregator outputs. Amounts are shekels with no
// decimals, grouped per the printer's locale.
type formatter struct {
	p *message.Printer
}

func (f formatter) leads(stats leaddomain.Stats) string {
	var b strings.Builder
	f.p.Fprintf(&b, "Lead Statistics:\n  - Total Leads: %d\n", stats.Total)
	b.WriteString("  By Status:\n")
	for _, k := range sortedKeys(stats.ByStatus) {
		f.p.Fprintf(&b, "    - %s: %d\n", k, stats.ByStatus[k])
	}
	b.WriteString("  By Source:\n")
	for _, k := range sortedKeys(stats.BySource) {
		f.p.Fprintf(&b, "    - %s: %d\n", k, stats.BySource[k])
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f formatter) pipeline(s aggregate.PipelineSummary) string {
	var b strings.Builder
	b.WriteString("Deal Pipeline:\n")
	f.p.Fprintf(&b, "  - Total Value: ₪%.0f\n", s.TotalValue)
	f.p.Fprintf(&b, "  - Weighted Value: ₪%.0f\n", s.WeightedValue)
	f.p.Fprintf(&b, "  - Active Deals: %d (₪%.0f)\n", s.ActiveDeals, s.ActiveValue)
	b.WriteString("  By Stage:\n")
	for _, stage := range dealdomain.Stages {
		t := s.ByStage[stage]
		f.p.Fprintf(&b, "    - %s: %d deals, ₪%.0f\n", stage, t.Count, t.Value)
	}
	if s.Unrecognized.Count > 0 {
		f.p.Fprintf(&b, "    - unrecognized: %d deals, ₪%.0f\n", s.Unrecognized.Count, s.Unrecognized.Value)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f formatter) revenue(label string, s aggregate.RevenueSummary) string {
	return f.p.Sprintf("Revenue (%s):\n  - Total: ₪%.0f\n  - Deals Won: %d\n  - Average Deal Size: ₪%.0f",
		label, s.TotalRevenue, s.DealCount, s.AverageDealSize)
}

func (f formatter) kpiRevenue(k aggregate.KPIs) string {
	return f.p.Sprintf("Revenue (this month):\n  - Total: ₪%.0f\n  - Average Deal Size: ₪%.0f\n  - Conversion Rate: %.1f%%",
		k.TotalRevenue, k.AverageDealSize, k.ConversionRate)
}

func (f formatter) tasks(s taskdomain.Stats) string {
	return f.p.Sprintf("Task Statistics:\n  - Total: %d\n  - Pending: %d\n  - In Progress: %d\n  - Completed: %d\n  - Overdue: %d\n  - Urgent: %d",
		s.Total, s.Pending, s.InProgress, s.Completed, s.Overdue, s.Urgent)
}

func (f formatter) expenses(c aggregate.CostBreakdown) string {
	var b strings.Builder
	b.WriteString("Expenses (this month):\n")
	f.p.Fprintf(&b, "  - Fixed: ₪%.0f\n  - Variable: ₪%.0f\n", c.Fixed, c.Variable)
	for _, k := range sortedKeys(c.ByType) {
		f.p.Fprintf(&b, "    - %s: ₪%.0f\n", k, c.ByType[k])
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f formatter) labor(l aggregate.LaborSummary) string {
	var b strings.Builder
	b.WriteString("Labor (this month):\n")
	f.p.Fprintf(&b, "  - Billable Hours: %.1f\n  - Cost: ₪%.0f\n", l.TotalHours, l.TotalCost)
	for _, u := range l.ByUser {
		f.p.Fprintf(&b, "    - %s: %.1fh at ₪%.0f/h\n", u.FullName, u.BillableHours, u.HourlyRate)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (f formatter) profitability(p aggregate.Profitability) string {
	return f.p.Sprintf("Profitability (this month):\n  - Revenue: ₪%.0f\n  - Total Costs: ₪%.0f\n  - Net Profit: ₪%.0f\n  - Margin: %.2f%%",
		p.Revenue.TotalRevenue, p.Costs.Total, p.Profit.Net, p.Profit.MarginPercent)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
