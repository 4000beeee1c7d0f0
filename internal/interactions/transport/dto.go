package transport

import (
	"smart_crm_backend/internal/interactions/domain"
	"smart_crm_backend/internal/interactions/repository"
	"smart_crm_backend/platform/sanitize"
	"smart_crm_backend/platform/validator"

	"github.com/google/uuid"
)

// RegisterValidations adds the interaction_type tag to val.
func RegisterValidations(val *validator.Validator) error {
	return validator.RegisterEnum(val, "interaction_type", domain.Types)
}

type CreateInteractionRequest struct {
	Type            string     `json:"type" validate:"required,interaction_type"`
	Subject         *string    `json:"subject" validate:"omitempty,max=300"`
	Content         *string    `json:"content" validate:"omitempty,max=8000"`
	Outcome         *string    `json:"outcome" validate:"omitempty,max=1000"`
	DurationMinutes *int       `json:"duration_minutes" validate:"omitempty,gte=0,lte=1440"`
	DealID          *uuid.UUID `json:"deal_id"`
}

// ToParams attaches the interaction to a lead or deal on behalf of userID.
func (r CreateInteractionRequest) ToParams(userID uuid.UUID) repository.CreateParams {
	return repository.CreateParams{
		UserID:          &userID,
		DealID:          r.DealID,
		Type:            domain.Type(r.Type),
		Subject:         sanitize.TextPtr(r.Subject),
		Content:         sanitize.TextPtr(r.Content),
		Outcome:         sanitize.TextPtr(r.Outcome),
		DurationMinutes: r.DurationMinutes,
	}
}
