package aggregate

import (
	"time"

	userdomain "smart_crm_backend/internal/auth/domain"
	dealdomain "smart_crm_backend/internal/deals/domain"
	interactiondomain "smart_crm_backend/internal/interactions/domain"
	leaddomain "smart_crm_backend/internal/leads/domain"
	taskdomain "smart_crm_backend/internal/tasks/domain"

	"github.com/google/uuid"
)

// DashboardInput is the snapshot the dashboard is composed from. Tasks are
// already scoped to the viewer; RecentActivity is passed through untouched.
type DashboardInput struct {
	Now            time.Time
	Leads          []leaddomain.Lead
	Deals          []dealdomain.Deal
	Tasks          []taskdomain.Task
	RecentActivity []interactiondomain.Interaction
}

// KPIs are the headline numbers of the dashboard.
type KPIs struct {
	TotalLeads       int     `json:"total_leads"`
	LeadsThisMonth   int     `json:"leads_this_month"`
	ConversionRate   float64 `json:"conversion_rate"`
	TotalRevenue     float64 `json:"total_revenue"`
	ActiveDeals      int     `json:"active_deals"`
	ActiveDealsValue float64 `json:"active_deals_value"`
	AverageDealSize  float64 `json:"average_deal_size"`
	TasksDueToday    int     `json:"tasks_due_today"`
	OverdueTasks     int     `json:"overdue_tasks"`
}

// Dashboard is the composed read model.
type Dashboard struct {
	KPIs           KPIs                            `json:"kpis"`
	LeadStats      leaddomain.Stats                `json:"lead_stats"`
	DealStats      PipelineSummary                 `json:"deal_stats"`
	TaskStats      taskdomain.Stats                `json:"task_stats"`
	RecentActivity []interactiondomain.Interaction `json:"recent_activity"`
}

// ComposeDashboard derives the KPI block from the lead, pipeline, revenue
// and task summaries. Revenue figures cover the current month to date.
func ComposeDashboard(in DashboardInput) Dashboard {
	leadStats := leaddomain.ComputeStats(in.Leads)
	pipeline := SummarizePipeline(in.Deals)
	revenue := SummarizeRevenue(in.Deals, MonthToDate(in.Now))
	taskStats := taskdomain.ComputeStats(in.Tasks, in.Now)

	month := MonthToDate(in.Now)
	leadsThisMonth := 0
	for _, l := range in.Leads {
		if !l.CreatedAt.IsZero() && month.Contains(l.CreatedAt) {
			leadsThisMonth++
		}
	}

	recent := in.RecentActivity
	if recent == nil {
		recent = []interactiondomain.Interaction{}
	}

	return Dashboard{
		KPIs: KPIs{
			TotalLeads:       leadStats.Total,
			LeadsThisMonth:   leadsThisMonth,
			ConversionRate:   round(ratio(float64(leadStats.Won()), float64(leadStats.Total))*100, 1),
			TotalRevenue:     revenue.TotalRevenue,
			ActiveDeals:      pipeline.ActiveDeals,
			ActiveDealsValue: pipeline.ActiveValue,
			AverageDealSize:  revenue.AverageDealSize,
			TasksDueToday:    taskStats.DueToday,
			OverdueTasks:     taskStats.Overdue,
		},
		LeadStats:      leadStats,
		DealStats:      pipeline,
		TaskStats:      taskStats,
		RecentActivity: recent,
	}
}

// SourceEffectiveness is how well one acquisition channel converts.
type SourceEffectiveness struct {
	Total          int     `json:"total"`
	Converted      int     `json:"converted"`
	ConversionRate float64 `json:"conversion_rate"`
	AverageScore   float64 `json:"average_score"`
}

// LeadSources is the lead-source report.
type LeadSources struct {
	BySource            map[string]int                 `json:"by_source"`
	SourceEffectiveness map[string]SourceEffectiveness `json:"source_effectiveness"`
}

// SummarizeLeadSources counts leads per channel along with how many were won
// and their mean score. Leads without a source count as "unknown"; unscored
// leads are left out of the mean.
func SummarizeLeadSources(leads []leaddomain.Lead) LeadSources {
	stats := leaddomain.ComputeStats(leads)
	type acc struct {
		won, scored int
		scoreSum    float64
	}
	accs := map[string]*acc{}
	for _, l := range leads {
		key := "unknown"
		if l.Source != nil && *l.Source != "" {
			key = string(*l.Source)
		}
		a, ok := accs[key]
		if !ok {
			a = &acc{}
			accs[key] = a
		}
		if l.Status == leaddomain.StatusWon {
			a.won++
		}
		if l.LeadScore != nil {
			a.scored++
			a.scoreSum += *l.LeadScore
		}
	}

	out := LeadSources{
		BySource:            stats.BySource,
		SourceEffectiveness: make(map[string]SourceEffectiveness, len(stats.BySource)),
	}
	for source, total := range stats.BySource {
		a := accs[source]
		out.SourceEffectiveness[source] = SourceEffectiveness{
			Total:          total,
			Converted:      a.won,
			ConversionRate: round(ratio(float64(a.won), float64(total))*100, 1),
			AverageScore:   round(ratio(a.scoreSum, float64(a.scored)), 2),
		}
	}
	return out
}

// RepresentativeMetrics is one representative's scorecard.
type RepresentativeMetrics struct {
	TotalLeads     int     `json:"total_leads"`
	ConvertedLeads int     `json:"converted_leads"`
	ConversionRate float64 `json:"conversion_rate"`
	TotalDeals     int     `json:"total_deals"`
	WonDeals       int     `json:"won_deals"`
	TotalRevenue   float64 `json:"total_revenue"`
	TargetRevenue  float64 `json:"target_revenue"`
	TargetDeals    int     `json:"target_deals"`
	TasksCompleted int     `json:"tasks_completed"`
	TasksPending   int     `json:"tasks_pending"`
}

// RepresentativePerformance pairs a representative with their scorecard.
type RepresentativePerformance struct {
	UserID  uuid.UUID             `json:"user_id"`
	Name    string                `json:"name"`
	Email   string                `json:"email"`
	Metrics RepresentativeMetrics `json:"metrics"`
}

// SummarizeRepresentatives builds a scorecard for every non-admin user from
// the leads, deals and tasks assigned to them.
func SummarizeRepresentatives(users []userdomain.User, leads []leaddomain.Lead, deals []dealdomain.Deal, tasks []taskdomain.Task, now time.Time) []RepresentativePerformance {
	leadsBy := map[uuid.UUID][]leaddomain.Lead{}
	for _, l := range leads {
		if l.AssignedTo != nil {
			leadsBy[*l.AssignedTo] = append(leadsBy[*l.AssignedTo], l)
		}
	}
	dealsBy := map[uuid.UUID][]dealdomain.Deal{}
	for _, d := range deals {
		if d.AssignedTo != nil {
			dealsBy[*d.AssignedTo] = append(dealsBy[*d.AssignedTo], d)
		}
	}
	tasksBy := map[uuid.UUID][]taskdomain.Task{}
	for _, t := range tasks {
		if t.AssignedTo != nil {
			tasksBy[*t.AssignedTo] = append(tasksBy[*t.AssignedTo], t)
		}
	}

	out := []RepresentativePerformance{}
	for _, u := range users {
		if u.IsAdmin() {
			continue
		}
		leadStats := leaddomain.ComputeStats(leadsBy[u.ID])
		revenue := SummarizeRevenue(dealsBy[u.ID], Period{})
		taskStats := taskdomain.ComputeStats(tasksBy[u.ID], now)

		out = append(out, RepresentativePerformance{
			UserID: u.ID,
			Name:   u.FullName,
			Email:  u.Email,
			Metrics: RepresentativeMetrics{
				TotalLeads:     leadStats.Total,
				ConvertedLeads: leadStats.Won(),
				ConversionRate: round(ratio(float64(leadStats.Won()), float64(leadStats.Total))*100, 1),
				TotalDeals:     len(dealsBy[u.ID]),
				WonDeals:       revenue.DealCount,
				TotalRevenue:   revenue.TotalRevenue,
				TargetRevenue:  u.TargetMonthlyRevenue,
				TargetDeals:    u.TargetMonthlyDeals,
				TasksCompleted: taskStats.Completed,
				TasksPending:   taskStats.Pending,
			},
		})
	}
	return out
}
