// Package analytics provides the reporting bounded context module.
package analytics

import (
	"smart_crm_backend/internal/analytics/cache"
	"smart_crm_backend/internal/analytics/handler"
	"smart_crm_backend/internal/analytics/service"
	"smart_crm_backend/internal/events"
	apphttp "smart_crm_backend/internal/http"
	"smart_crm_backend/platform/logger"
)

// Module is the analytics module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the report service. When snapshots is non-nil it is
// invalidated on every report input event.
func NewModule(stores service.Stores, snapshots cache.Snapshots, eventBus events.Bus, log *logger.Logger) *Module {
	if snapshots != nil && eventBus != nil {
		cache.Subscribe(eventBus, snapshots, log)
	}
	svc := service.New(stores, snapshots, log)
	return &Module{handler: handler.New(svc), service: svc}
}

func (m *Module) Name() string {
	return "analytics"
}

// Service exposes the report service to the chat and export modules.
func (m *Module) Service() *service.Service {
	return m.service
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/analytics"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/analytics"))
}

var _ apphttp.Module = (*Module)(nil)
