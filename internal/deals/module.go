// Package deals provides the deal pipeline and work-log bounded context module.
package deals

import (
	"smart_crm_backend/internal/deals/handler"
	"smart_crm_backend/internal/deals/repository"
	"smart_crm_backend/internal/deals/service"
	"smart_crm_backend/internal/deals/transport"
	"smart_crm_backend/internal/events"
	apphttp "smart_crm_backend/internal/http"
	"smart_crm_backend/internal/scheduler"
	"smart_crm_backend/platform/logger"
	"smart_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the deals bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates the deals module with all its dependencies.
func NewModule(pool *pgxpool.Pool, retries scheduler.RecomputeEnqueuer, eventBus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, retries, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "deals"
}

// Service exposes the deal service to the background worker.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the deal and work-log store to the reporting modules.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts deal and work-log routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/deals"))
	m.handler.RegisterWorkLogRoutes(ctx.Protected.Group("/work-logs"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
