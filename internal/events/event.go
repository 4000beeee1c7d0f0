// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"smart_crm_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadChanged is published after a lead is created, updated, re-scored or deleted.
type LeadChanged struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Action string    `json:"action"`
}

func (e LeadChanged) EventName() string { return "leads.lead.changed" }

// LeadScoreStale is published when a lead's stored score could not be
// refreshed after its inputs changed.
type LeadScoreStale struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
}

func (e LeadScoreStale) EventName() string { return "leads.score.stale" }

// =============================================================================
// Deal Domain Events
// =============================================================================

// DealChanged is published after a deal or one of its work logs is written.
type DealChanged struct {
	BaseEvent
	DealID uuid.UUID `json:"dealId"`
	Action string    `json:"action"`
}

func (e DealChanged) EventName() string { return "deals.deal.changed" }

// DealHoursStale is published when a deal's actual hours could not be
// recomputed after a work-log write.
type DealHoursStale struct {
	BaseEvent
	DealID uuid.UUID `json:"dealId"`
}

func (e DealHoursStale) EventName() string { return "deals.hours.stale" }

// =============================================================================
// Expense / Task Domain Events
// =============================================================================

// ExpenseChanged is published after an expense write.
type ExpenseChanged struct {
	BaseEvent
	ExpenseID uuid.UUID `json:"expenseId"`
	Action    string    `json:"action"`
}

func (e ExpenseChanged) EventName() string { return "expenses.expense.changed" }

// TaskChanged is published after a task write.
type TaskChanged struct {
	BaseEvent
	TaskID uuid.UUID `json:"taskId"`
	Action string    `json:"action"`
}

func (e TaskChanged) EventName() string { return "tasks.task.changed" }

// UserChanged is published after a user's profile or hourly rate changes.
type UserChanged struct {
	BaseEvent
	UserID uuid.UUID `json:"userId"`
	Action string    `json:"action"`
}

func (e UserChanged) EventName() string { return "auth.user.changed" }

// InteractionLogged is published after a call, email or meeting is recorded.
type InteractionLogged struct {
	BaseEvent
	InteractionID uuid.UUID  `json:"interactionId"`
	LeadID        *uuid.UUID `json:"leadId,omitempty"`
	DealID        *uuid.UUID `json:"dealId,omitempty"`
}

func (e InteractionLogged) EventName() string { return "interactions.interaction.logged" }

// =============================================================================
// Export Domain Events
// =============================================================================

// ReportExported is published after a report is uploaded to object storage.
type ReportExported struct {
	BaseEvent
	ExportID    uuid.UUID `json:"exportId"`
	ActorID     uuid.UUID `json:"actorId"`
	Kind        string    `json:"kind"`
	Period      string    `json:"period"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

func (e ReportExported) EventName() string { return "exports.report.exported" }

// Actions carried by the *Changed events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionScored  = "scored"
)

// ReportInputEvents lists every event that invalidates cached analytics.
var ReportInputEvents = []string{
	LeadChanged{}.EventName(),
	DealChanged{}.EventName(),
	ExpenseChanged{}.EventName(),
	TaskChanged{}.EventName(),
	UserChanged{}.EventName(),
	InteractionLogged{}.EventName(),
}
