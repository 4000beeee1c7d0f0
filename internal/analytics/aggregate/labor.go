package aggregate

import (
	userdomain "smart_crm_backend/internal/auth/domain"
	dealdomain "smart_crm_backend/internal/deals/domain"

	"github.com/google/uuid"
)

// UserLabor is one user's billable time and its cost.
type UserLabor struct {
	UserID        uuid.UUID `json:"user_id"`
	FullName      string    `json:"full_name"`
	HourlyRate    float64   `json:"hourly_rate"`
	BillableHours float64   `json:"billable_hours"`
	Cost          float64   `json:"cost"`
}

// LaborSummary prices billable hours at each user's hourly rate.
type LaborSummary struct {
	TotalHours float64     `json:"total_hours"`
	TotalCost  float64     `json:"total_cost"`
	ByUser     []UserLabor `json:"by_user"`
}

// SummarizeLabor prices billable work logged within the period. Users without
// a positive hourly rate contribute neither hours nor cost.
func SummarizeLabor(users []userdomain.User, logsByUser map[uuid.UUID][]dealdomain.WorkLog, period Period) LaborSummary {
	s := LaborSummary{ByUser: []UserLabor{}}
	for _, u := range users {
		if u.HourlyRate <= 0 {
			continue
		}
		hours := 0.0
		for _, l := range logsByUser[u.ID] {
			if l.Billable && period.Contains(l.Date) {
				hours += l.Hours
			}
		}
		cost := hours * u.HourlyRate
		s.TotalHours += hours
		s.TotalCost += cost
		s.ByUser = append(s.ByUser, UserLabor{
			UserID:        u.ID,
			FullName:      u.FullName,
			HourlyRate:    u.HourlyRate,
			BillableHours: hours,
			Cost:          cost,
		})
	}
	return s
}

// GroupLogsByUser indexes work logs by their author.
func GroupLogsByUser(logs []dealdomain.WorkLog) map[uuid.UUID][]dealdomain.WorkLog {
	out := make(map[uuid.UUID][]dealdomain.WorkLog)
	for _, l := range logs {
		out[l.UserID] = append(out[l.UserID], l)
	}
	return out
}
