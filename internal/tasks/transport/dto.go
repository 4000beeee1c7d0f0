package transport

import (
	"time"

	"smart_crm_backend/internal/tasks/domain"
	"smart_crm_backend/internal/tasks/repository"
	"smart_crm_backend/platform/sanitize"
	"smart_crm_backend/platform/validator"

	"github.com/google/uuid"
)

// RegisterValidations adds the task_status and task_priority tags to val.
func RegisterValidations(val *validator.Validator) error {
	if err := validator.RegisterEnum(val, "task_status", domain.Statuses); err != nil {
		return err
	}
	return validator.RegisterEnum(val, "task_priority", domain.Priorities)
}

type CreateTaskRequest struct {
	Title                string     `json:"title" validate:"required,min=1,max=200"`
	Description          *string    `json:"description" validate:"omitempty,max=4000"`
	DueDate              time.Time  `json:"due_date" validate:"required"`
	AssignedTo           *uuid.UUID `json:"assigned_to"`
	LeadID               *uuid.UUID `json:"lead_id"`
	DealID               *uuid.UUID `json:"deal_id"`
	Priority             *string    `json:"priority" validate:"omitempty,task_priority"`
	Status               *string    `json:"status" validate:"omitempty,task_status"`
	RequiresUrgentAction bool       `json:"requires_urgent_action"`
}

type UpdateTaskRequest struct {
	Title                *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description          *string    `json:"description" validate:"omitempty,max=4000"`
	DueDate              *time.Time `json:"due_date"`
	AssignedTo           *uuid.UUID `json:"assigned_to"`
	LeadID               *uuid.UUID `json:"lead_id"`
	DealID               *uuid.UUID `json:"deal_id"`
	Priority             *string    `json:"priority" validate:"omitempty,task_priority"`
	Status               *string    `json:"status" validate:"omitempty,task_status"`
	IsHandled            *bool      `json:"is_handled"`
	RequiresUrgentAction *bool      `json:"requires_urgent_action"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,task_status"`
}

func (r CreateTaskRequest) ToParams() repository.CreateParams {
	p := repository.CreateParams{
		Title:                sanitize.Text(r.Title),
		Description:          sanitize.TextPtr(r.Description),
		DueDate:              r.DueDate,
		AssignedTo:           r.AssignedTo,
		LeadID:               r.LeadID,
		DealID:               r.DealID,
		RequiresUrgentAction: r.RequiresUrgentAction,
	}
	if r.Priority != nil {
		p.Priority = domain.Priority(*r.Priority)
	}
	if r.Status != nil {
		p.Status = domain.Status(*r.Status)
	}
	return p
}

func (r UpdateTaskRequest) ToParams() repository.UpdateParams {
	p := repository.UpdateParams{
		Title:                sanitize.TextPtr(r.Title),
		Description:          sanitize.TextPtr(r.Description),
		DueDate:              r.DueDate,
		AssignedTo:           r.AssignedTo,
		LeadID:               r.LeadID,
		DealID:               r.DealID,
		IsHandled:            r.IsHandled,
		RequiresUrgentAction: r.RequiresUrgentAction,
	}
	if r.Priority != nil {
		priority := domain.Priority(*r.Priority)
		p.Priority = &priority
	}
	if r.Status != nil {
		status := domain.Status(*r.Status)
		p.Status = &status
	}
	return p
}
