// Package exports uploads rendered reports to object storage.
package exports

import (
	"smart_crm_backend/internal/adapters/storage"
	"smart_crm_backend/internal/events"
	apphttp "smart_crm_backend/internal/http"
	"smart_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the exports module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule wires the export service. objects may be nil when storage is
// not configured.
func NewModule(pool *pgxpool.Pool, reports Reports, objects storage.ObjectStore, bucket string, eventBus events.Bus, log *logger.Logger) *Module {
	svc := NewService(reports, objects, bucket, NewRepository(pool), eventBus, log)
	return &Module{handler: NewHandler(svc)}
}

func (m *Module) Name() string {
	return "exports"
}

// RegisterRoutes mounts the admin-only export routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/exports"))
}

var _ apphttp.Module = (*Module)(nil)
