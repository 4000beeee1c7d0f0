package transport

import (
	"smart_crm_backend/internal/chat/service"
	"smart_crm_backend/platform/validator"
)

// RegisterValidations adds the chat_mode tag to val.
func RegisterValidations(val *validator.Validator) error {
	return validator.RegisterEnum(val, "chat_mode", service.Modes)
}

type AskRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
	Mode    string `json:"mode" validate:"omitempty,chat_mode"`
}
