package transport

import (
	"time"

	"smart_crm_backend/internal/leads/domain"
	"smart_crm_backend/internal/leads/repository"
	"smart_crm_backend/internal/leads/scoring"
	"smart_crm_backend/platform/sanitize"
	"smart_crm_backend/platform/validator"

	"github.com/google/uuid"
)

// RegisterValidations adds the lead enum tags to val.
func RegisterValidations(val *validator.Validator) error {
	if err := validator.RegisterEnum(val, "business_size", []domain.BusinessSize{
		domain.BusinessSizeMicro, domain.BusinessSizeSmall, domain.BusinessSizeMedium,
	}); err != nil {
		return err
	}
	if err := validator.RegisterEnum(val, "lead_source", domain.LeadSources); err != nil {
		return err
	}
	return validator.RegisterEnum(val, "lead_status", domain.LeadStatuses)
}

type CreateLeadRequest struct {
	CompanyName       string     `json:"company_name" validate:"required,min=1,max=200"`
	ContactName       string     `json:"contact_name" validate:"required,min=1,max=200"`
	Email             *string    `json:"email" validate:"omitempty,email"`
	Phone             *string    `json:"phone" validate:"omitempty,max=40"`
	BusinessSize      *string    `json:"business_size" validate:"omitempty,business_size"`
	EstimatedBudget   *float64   `json:"estimated_budget" validate:"omitempty,gte=0"`
	Source            *string    `json:"source" validate:"omitempty,lead_source"`
	SourceDetails     *string    `json:"source_details" validate:"omitempty,max=500"`
	InterestLevel     *int       `json:"interest_level" validate:"omitempty,min=1,max=10"`
	Industry          *string    `json:"industry" validate:"omitempty,max=200"`
	CurrentPainPoints *string    `json:"current_pain_points" validate:"omitempty,max=4000"`
	AIReadinessScore  *int       `json:"ai_readiness_score" validate:"omitempty,min=1,max=10"`
	Status            *string    `json:"status" validate:"omitempty,lead_status"`
	Notes             *string    `json:"notes" validate:"omitempty,max=4000"`
	AssignedTo        *uuid.UUID `json:"assigned_to"`
	LastContactDate   *string    `json:"last_contact_date" validate:"omitempty,isodate"`
	NextFollowUp      *string    `json:"next_follow_up" validate:"omitempty,isodate"`
}

type UpdateLeadRequest struct {
	CompanyName       *string    `json:"company_name" validate:"omitempty,min=1,max=200"`
	ContactName       *string    `json:"contact_name" validate:"omitempty,min=1,max=200"`
	Email             *string    `json:"email" validate:"omitempty,email"`
	Phone             *string    `json:"phone" validate:"omitempty,max=40"`
	BusinessSize      *string    `json:"business_size" validate:"omitempty,business_size"`
	EstimatedBudget   *float64   `json:"estimated_budget" validate:"omitempty,gte=0"`
	Source            *string    `json:"source" validate:"omitempty,lead_source"`
	SourceDetails     *string    `json:"source_details" validate:"omitempty,max=500"`
	InterestLevel     *int       `json:"interest_level" validate:"omitempty,min=1,max=10"`
	Industry          *string    `json:"industry" validate:"omitempty,max=200"`
	CurrentPainPoints *string    `json:"current_pain_points" validate:"omitempty,max=4000"`
	AIReadinessScore  *int       `json:"ai_readiness_score" validate:"omitempty,min=1,max=10"`
	Status            *string    `json:"status" validate:"omitempty,lead_status"`
	Notes             *string    `json:"notes" validate:"omitempty,max=4000"`
	AssignedTo        *uuid.UUID `json:"assigned_to"`
	LastContactDate   *string    `json:"last_contact_date" validate:"omitempty,isodate"`
	NextFollowUp      *string    `json:"next_follow_up" validate:"omitempty,isodate"`
}

// ScorePreviewRequest carries unsaved scoring attributes.
type ScorePreviewRequest struct {
	BusinessSize    *string  `json:"business_size" validate:"omitempty,business_size"`
	EstimatedBudget *float64 `json:"estimated_budget"`
	Source          *string  `json:"source" validate:"omitempty,lead_source"`
	InterestLevel   *int     `json:"interest_level" validate:"omitempty,min=1,max=10"`
	AIReadiness     *int     `json:"ai_readiness_score" validate:"omitempty,min=1,max=10"`
	LastContactDate *string  `json:"last_contact_date"`
}

func (r CreateLeadRequest) ToParams() repository.CreateParams {
	p := repository.CreateParams{
		CompanyName:       sanitize.Text(r.CompanyName),
		ContactName:       sanitize.Text(r.ContactName),
		Email:             r.Email,
		Phone:             r.Phone,
		BusinessSize:      parseBusinessSize(r.BusinessSize),
		EstimatedBudget:   r.EstimatedBudget,
		Source:            parseSource(r.Source),
		SourceDetails:     sanitize.TextPtr(r.SourceDetails),
		InterestLevel:     r.InterestLevel,
		Industry:          sanitize.TextPtr(r.Industry),
		CurrentPainPoints: sanitize.TextPtr(r.CurrentPainPoints),
		AIReadinessScore:  r.AIReadinessScore,
		Notes:             sanitize.TextPtr(r.Notes),
		AssignedTo:        r.AssignedTo,
		LastContactDate:   parseDate(r.LastContactDate),
		NextFollowUp:      parseDate(r.NextFollowUp),
	}
	if status := parseStatus(r.Status); status != nil {
		p.Status = *status
	}
	return p
}

func (r UpdateLeadRequest) ToParams() repository.UpdateParams {
	return repository.UpdateParams{
		CompanyName:       sanitize.TextPtr(r.CompanyName),
		ContactName:       sanitize.TextPtr(r.ContactName),
		Email:             r.Email,
		Phone:             r.Phone,
		BusinessSize:      parseBusinessSize(r.BusinessSize),
		EstimatedBudget:   r.EstimatedBudget,
		Source:            parseSource(r.Source),
		SourceDetails:     sanitize.TextPtr(r.SourceDetails),
		InterestLevel:     r.InterestLevel,
		Industry:          sanitize.TextPtr(r.Industry),
		CurrentPainPoints: sanitize.TextPtr(r.CurrentPainPoints),
		AIReadinessScore:  r.AIReadinessScore,
		Status:            parseStatus(r.Status),
		Notes:             sanitize.TextPtr(r.Notes),
		AssignedTo:        r.AssignedTo,
		LastContactDate:   parseDate(r.LastContactDate),
		NextFollowUp:      parseDate(r.NextFollowUp),
	}
}

// ChangedFields lists the scoring inputs present in the update.
func (r UpdateLeadRequest) ChangedFields() []string {
	var fields []string
	if r.InterestLevel != nil {
		fields = append(fields, scoring.FieldInterestLevel)
	}
	if r.AIReadinessScore != nil {
		fields = append(fields, scoring.FieldAIReadiness)
	}
	if r.BusinessSize != nil {
		fields = append(fields, scoring.FieldBusinessSize)
	}
	if r.EstimatedBudget != nil {
		fields = append(fields, scoring.FieldEstimatedBudget)
	}
	if r.Source != nil {
		fields = append(fields, scoring.FieldSource)
	}
	return fields
}

func (r ScorePreviewRequest) ToInput() scoring.Input {
	in := scoring.Input{
		BusinessSize:    parseBusinessSize(r.BusinessSize),
		EstimatedBudget: r.EstimatedBudget,
		Source:          parseSource(r.Source),
		InterestLevel:   r.InterestLevel,
		AIReadiness:     r.AIReadiness,
		LastContactDate: parseDate(r.LastContactDate),
	}
	if r.LastContactDate != nil {
		in.LastContactRaw = *r.LastContactDate
	}
	return in
}

func parseBusinessSize(raw *string) *domain.BusinessSize {
	if raw == nil {
		return nil
	}
	size, ok := domain.ParseBusinessSize(*raw)
	if !ok {
		return nil
	}
	return &size
}

func parseSource(raw *string) *domain.LeadSource {
	if raw == nil {
		return nil
	}
	source, ok := domain.ParseLeadSource(*raw)
	if !ok {
		return nil
	}
	return &source
}

func parseStatus(raw *string) *domain.LeadStatus {
	if raw == nil {
		return nil
	}
	status, ok := domain.ParseLeadStatus(*raw)
	if !ok {
		return nil
	}
	return &status
}

func parseDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	t, ok := scoring.ParseContactDate(*raw)
	if !ok {
		return nil
	}
	return &t
}
