// Package interactions provides the activity timeline bounded context module.
package interactions

import (
	"smart_crm_backend/internal/events"
	apphttp "smart_crm_backend/internal/http"
	"smart_crm_backend/internal/interactions/handler"
	"smart_crm_backend/internal/interactions/repository"
	"smart_crm_backend/internal/interactions/service"
	"smart_crm_backend/internal/interactions/transport"
	"smart_crm_backend/platform/logger"
	"smart_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the interactions bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule wires the interaction store. leads receives last-contact updates
// for interactions logged against a lead.
func NewModule(pool *pgxpool.Pool, leads service.LeadContactToucher, eventBus events.Bus, val *validator.Validator, log *logger.Logger) (*Module, error) {
	if err := transport.RegisterValidations(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	svc := service.New(repo, leads, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		repo:    repo,
	}, nil
}

func (m *Module) Name() string {
	return "interactions"
}

// Repository exposes the interaction store to the dashboard.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts the activity feed and the per-lead and per-deal
// timelines.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/interactions/recent", m.handler.Recent)
	ctx.Protected.GET("/leads/:id/interactions", m.handler.ListForLead)
	ctx.Protected.POST("/leads/:id/interactions", m.handler.CreateForLead)
	ctx.Protected.GET("/deals/:id/interactions", m.handler.ListForDeal)
	ctx.Protected.POST("/deals/:id/interactions", m.handler.CreateForDeal)
}

var _ apphttp.Module = (*Module)(nil)
