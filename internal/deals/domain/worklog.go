package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkLog is time a user spent on a deal on one day.
type WorkLog struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	DealID      uuid.UUID `json:"deal_id"`
	Date        time.Time `json:"date"`
	Hours       float64   `json:"hours"`
	Description *string   `json:"description,omitempty"`
	Billable    bool      `json:"billable"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActualHours is the cumulative logged time of a deal: the sum of the hours
// of its current work logs.
func ActualHours(logs []WorkLog) float64 {
	total := 0.0
	for _, l := range logs {
		total += l.Hours
	}
	return total
}

// HoursSummary splits logged time into billable and non-billable hours.
type HoursSummary struct {
	TotalHours       float64 `json:"total_hours"`
	BillableHours    float64 `json:"billable_hours"`
	NonBillableHours float64 `json:"non_billable_hours"`
	Entries          int     `json:"entries"`
}

// SummarizeHours totals a set of work logs.
func SummarizeHours(logs []WorkLog) HoursSummary {
	var s HoursSummary
	for _, l := range logs {
		s.TotalHours += l.Hours
		if l.Billable {
			s.BillableHours += l.Hours
		} else {
			s.NonBillableHours += l.Hours
		}
	}
	s.Entries = len(logs)
	return s
}
