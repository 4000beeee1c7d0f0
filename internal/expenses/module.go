// Package expenses provides the expense ledger bounded context module.
package expenses

import (
	"smart_crm_backend/internal/events"
	"smart_crm_backend/internal/expenses/handler"
	"smart_crm_backend/internal/expenses/repository"
	"smart_crm_backend/internal/expenses/service"
	"smart_crm_backend/internal/expenses/transport"
	apphttp "smart_crm_backend/internal/http"
	"smart_crm_backend/platform/logger"
	"smart_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the expenses bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule creates the expenses module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		repo:    repo,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "expenses"
}

// Repository exposes the expense store to the reporting modules.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts expense routes. Expenses are admin-only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/expenses"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
