// Package chat provides the CRM assistant module.
package chat

import (
	"smart_crm_backend/internal/chat/handler"
	"smart_crm_backend/internal/chat/service"
	"smart_crm_backend/internal/chat/transport"
	apphttp "smart_crm_backend/internal/http"
	"smart_crm_backend/platform/config"
	"smart_crm_backend/platform/logger"
	"smart_crm_backend/platform/validator"
)

type Module struct {
	handler *handler.Handler
}

// NewModule wires the chat service. A nil completer leaves the stats
// endpoint working and answers chat requests with 503.
func NewModule(reports service.Reports, completer service.Completer, cfg config.CompanyConfig, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}
	svc := service.New(reports, completer, cfg.GetCompanyName(), cfg.GetDefaultLanguage(), log)
	return &Module{handler: handler.New(svc, val)}, nil
}

func (m *Module) Name() string {
	return "chat"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/chat"))
}

var _ apphttp.Module = (*Module)(nil)
