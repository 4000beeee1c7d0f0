package transport

import (
	"time"

	"smart_crm_backend/internal/analytics/aggregate"
	"smart_crm_backend/internal/deals/domain"
	"smart_crm_backend/internal/deals/repository"
	"smart_crm_backend/internal/deals/service"
	"smart_crm_backend/platform/sanitize"
	"smart_crm_backend/platform/validator"

	"github.com/google/uuid"
)

// RegisterValidations adds the deal_stage tag to val.
func RegisterValidations(val *validator.Validator) error {
	return validator.RegisterEnum(val, "deal_stage", domain.Stages)
}

type CreateDealRequest struct {
	Title             string     `json:"title" validate:"required,min=1,max=200"`
	Value             float64    `json:"value" validate:"gte=0"`
	LeadID            *uuid.UUID `json:"lead_id"`
	AssignedTo        *uuid.UUID `json:"assigned_to"`
	Description       *string    `json:"description" validate:"omitempty,max=4000"`
	Stage             *string    `json:"stage" validate:"omitempty,deal_stage"`
	Probability       *int       `json:"probability" validate:"omitempty,min=0,max=100"`
	ExpectedCloseDate *string    `json:"expected_close_date" validate:"omitempty,isodate"`
	ActualCloseDate   *string    `json:"actual_close_date" validate:"omitempty,isodate"`
	EstimatedHours    *float64   `json:"estimated_hours" validate:"omitempty,gte=0"`
	ServiceType       *string    `json:"service_type" validate:"omitempty,max=100"`
}

type UpdateDealRequest struct {
	Title             *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Value             *float64   `json:"value" validate:"omitempty,gte=0"`
	LeadID            *uuid.UUID `json:"lead_id"`
	AssignedTo        *uuid.UUID `json:"assigned_to"`
	Description       *string    `json:"description" validate:"omitempty,max=4000"`
	Stage             *string    `json:"stage" validate:"omitempty,deal_stage"`
	Probability       *int       `json:"probability" validate:"omitempty,min=0,max=100"`
	ExpectedCloseDate *string    `json:"expected_close_date" validate:"omitempty,isodate"`
	ActualCloseDate   *string    `json:"actual_close_date" validate:"omitempty,isodate"`
	EstimatedHours    *float64   `json:"estimated_hours" validate:"omitempty,gte=0"`
	ServiceType       *string    `json:"service_type" validate:"omitempty,max=100"`
}

type UpdateStageRequest struct {
	Stage       string `json:"stage" validate:"required,deal_stage"`
	Probability *int   `json:"probability" validate:"omitempty,min=0,max=100"`
}

type CreateWorkLogRequest struct {
	Date        *string `json:"date" validate:"omitempty,isodate"`
	Hours       float64 `json:"hours" validate:"required,gt=0,lte=24"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Billable    *bool   `json:"billable"`
}

type UpdateWorkLogRequest struct {
	Date        *string  `json:"date" validate:"omitempty,isodate"`
	Hours       *float64 `json:"hours" validate:"omitempty,gt=0,lte=24"`
	Description *string  `json:"description" validate:"omitempty,max=2000"`
	Billable    *bool    `json:"billable"`
}

func (r CreateDealRequest) ToInput() service.CreateInput {
	p := repository.CreateParams{
		Title:             sanitize.Text(r.Title),
		Value:             r.Value,
		LeadID:            r.LeadID,
		AssignedTo:        r.AssignedTo,
		Description:       sanitize.TextPtr(r.Description),
		ExpectedCloseDate: parseDate(r.ExpectedCloseDate),
		ActualCloseDate:   parseDate(r.ActualCloseDate),
		EstimatedHours:    r.EstimatedHours,
		ServiceType:       sanitize.TextPtr(r.ServiceType),
	}
	if stage := parseStage(r.Stage); stage != nil {
		p.Stage = *stage
	}
	return service.CreateInput{Params: p, Probability: r.Probability}
}

func (r UpdateDealRequest) ToParams() repository.UpdateParams {
	return repository.UpdateParams{
		Title:             sanitize.TextPtr(r.Title),
		Value:             r.Value,
		LeadID:            r.LeadID,
		AssignedTo:        r.AssignedTo,
		Description:       sanitize.TextPtr(r.Description),
		Stage:             parseStage(r.Stage),
		Probability:       r.Probability,
		ExpectedCloseDate: parseDate(r.ExpectedCloseDate),
		ActualCloseDate:   parseDate(r.ActualCloseDate),
		EstimatedHours:    r.EstimatedHours,
		ServiceType:       sanitize.TextPtr(r.ServiceType),
	}
}

// ToParams builds the new work log. A missing date means today and a missing
// billable flag means billable.
func (r CreateWorkLogRequest) ToParams(dealID uuid.UUID, now time.Time) repository.WorkLogParams {
	p := repository.WorkLogParams{
		DealID:      dealID,
		Date:        now,
		Hours:       r.Hours,
		Description: sanitize.TextPtr(r.Description),
		Billable:    true,
	}
	if d := parseDate(r.Date); d != nil {
		p.Date = *d
	}
	if r.Billable != nil {
		p.Billable = *r.Billable
	}
	return p
}

func (r UpdateWorkLogRequest) ToParams() repository.WorkLogUpdate {
	return repository.WorkLogUpdate{
		Date:        parseDate(r.Date),
		Hours:       r.Hours,
		Description: sanitize.TextPtr(r.Description),
		Billable:    r.Billable,
	}
}

func parseStage(raw *string) *domain.Stage {
	if raw == nil {
		return nil
	}
	stage, ok := domain.ParseStage(*raw)
	if !ok {
		return nil
	}
	return &stage
}

func parseDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, ok := aggregate.ParseDay(*raw)
	if !ok {
		return nil
	}
	return &t
}
