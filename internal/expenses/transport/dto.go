package transport

import (
	"time"

	"smart_crm_backend/internal/analytics/aggregate"
	"smart_crm_backend/internal/expenses/domain"
	"smart_crm_backend/internal/expenses/repository"
	"smart_crm_backend/platform/sanitize"
	"smart_crm_backend/platform/validator"

	"github.com/google/uuid"
)

// RegisterValidations adds the expense_category tag to val.
func RegisterValidations(val *validator.Validator) error {
	return validator.RegisterEnum(val, "expense_category", []domain.Category{domain.CategoryFixed, domain.CategoryVariable})
}

type CreateExpenseRequest struct {
	Amount             float64    `json:"amount" validate:"gte=0"`
	Date               string     `json:"date" validate:"required,isodate"`
	Category           *string    `json:"category" validate:"omitempty,expense_category"`
	Type               *string    `json:"type" validate:"omitempty,max=100"`
	UserID             *uuid.UUID `json:"user_id"`
	Description        *string    `json:"description" validate:"omitempty,max=2000"`
	IsRecurring        bool       `json:"is_recurring"`
	RecurringFrequency *string    `json:"recurring_frequency" validate:"omitempty,oneof=weekly monthly quarterly yearly"`
}

type UpdateExpenseRequest struct {
	Amount             *float64   `json:"amount" validate:"omitempty,gte=0"`
	Date               *string    `json:"date" validate:"omitempty,isodate"`
	Category           *string    `json:"category" validate:"omitempty,expense_category"`
	Type               *string    `json:"type" validate:"omitempty,max=100"`
	UserID             *uuid.UUID `json:"user_id"`
	Description        *string    `json:"description" validate:"omitempty,max=2000"`
	IsRecurring        *bool      `json:"is_recurring"`
	RecurringFrequency *string    `json:"recurring_frequency" validate:"omitempty,oneof=weekly monthly quarterly yearly"`
}

func (r CreateExpenseRequest) ToParams() repository.CreateParams {
	p := repository.CreateParams{
		Amount:             r.Amount,
		UserID:             r.UserID,
		Description:        sanitize.TextPtr(r.Description),
		IsRecurring:        r.IsRecurring,
		RecurringFrequency: r.RecurringFrequency,
	}
	if d, ok := aggregate.ParseDay(r.Date); ok {
		p.Date = d
	}
	if c := parseCategory(r.Category); c != nil {
		p.Category = *c
	}
	if t := sanitize.TextPtr(r.Type); t != nil {
		p.Type = *t
	}
	return p
}

func (r UpdateExpenseRequest) ToParams() repository.UpdateParams {
	return repository.UpdateParams{
		Amount:             r.Amount,
		Date:               parseDate(r.Date),
		Category:           parseCategory(r.Category),
		Type:               sanitize.TextPtr(r.Type),
		UserID:             r.UserID,
		Description:        sanitize.TextPtr(r.Description),
		IsRecurring:        r.IsRecurring,
		RecurringFrequency: r.RecurringFrequency,
	}
}

func parseCategory(raw *string) *domain.Category {
	if raw == nil {
		return nil
	}
	c, ok := domain.ParseCategory(*raw)
	if !ok {
		return nil
	}
	return &c
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
