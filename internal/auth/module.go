// Package auth provides the authentication and user management module.
package auth

import (
	"smart_crm_backend/internal/auth/handler"
	"smart_crm_backend/internal/auth/repository"
	"smart_crm_backend/internal/auth/service"
	"smart_crm_backend/internal/events"
	apphttp "smart_crm_backend/internal/http"
	"smart_crm_backend/platform/config"
	"smart_crm_backend/platform/logger"
	"smart_crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, eventBus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Repository exposes the user store to modules that read users.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.GET("/auth/me", m.handler.GetMe)
	ctx.Protected.PATCH("/users/me", m.handler.UpdateMe)
	ctx.Protected.GET("/users", m.handler.ListUsers)
	ctx.Protected.GET("/users/:id", m.handler.GetUser)

	ctx.Admin.POST("/admin/users", m.handler.CreateUser)
	ctx.Admin.PUT("/admin/users/:id", m.handler.UpdateUser)
	ctx.Admin.DELETE("/admin/users/:id", m.handler.DeactivateUser)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
