// Package domain holds follow-up tasks and their due-date rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Statuses lists every task status.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// Priorities lists every task priority.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// IsClosed reports whether no further work is expected.
func (s Status) IsClosed() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Task is a dated follow-up, optionally tied to a lead or deal.
type Task struct {
	ID                   uuid.UUID  `json:"id"`
	Title                string     `json:"title"`
	Description          *string    `json:"description,omitempty"`
	DueDate              time.Time  `json:"due_date"`
	AssignedTo           *uuid.UUID `json:"assigned_to,omitempty"`
	LeadID               *uuid.UUID `json:"lead_id,omitempty"`
	DealID               *uuid.UUID `json:"deal_id,omitempty"`
	Priority             Priority   `json:"priority"`
	Status               Status     `json:"status"`
	IsHandled            bool       `json:"is_handled"`
	RequiresUrgentAction bool       `json:"requires_urgent_action"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsOverdue reports whether an open task was due before today.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.Status.IsClosed() && t.DueDate.Before(StartOfDay(now))
}

// IsDueToday reports whether an open task falls on now's calendar day.
func (t Task) IsDueToday(now time.Time) bool {
	start := StartOfDay(now)
	end := start.AddDate(0, 0, 1)
	return !t.Status.IsClosed() && !t.DueDate.Before(start) && t.DueDate.Before(end)
}

// IsUrgent reports whether an open task has urgent priority.
func (t Task) IsUrgent() bool {
	return !t.Status.IsClosed() && t.Priority == PriorityUrgent
}

// Stats counts tasks by state.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	Overdue    int `json:"overdue"`
	DueToday   int `json:"due_today"`
	Urgent     int `json:"urgent"`
}

// ComputeStats tallies tasks relative to now. A missing status counts as pending.
func ComputeStats(tasks []Task, now time.Time) Stats {
	s := Stats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case StatusInProgress:
			s.InProgress++
		case StatusCompleted:
			s.Completed++
		case StatusCancelled:
			s.Cancelled++
		default:
			s.Pending++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
		if t.IsDueToday(now) {
			s.DueToday++
		}
		if t.IsUrgent() {
			s.Urgent++
		}
	}
	return s
}

// Completion is the state a status change stamps onto a task.
type Completion struct {
	CompletedAt *time.Time
	IsHandled   bool
}

// ApplyStatus returns the completion stamps for moving a task to status.
// Completing stamps completed_at and marks the task handled.
func ApplyStatus(status Status, now time.Time) (Completion, bool) {
	if status != StatusCompleted {
		return Completion{}, false
	}
	at := now.UTC()
	return Completion{CompletedAt: &at, IsHandled: true}, true
}
