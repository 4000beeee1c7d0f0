package handler

import (
	"smart_crm_backend/internal/analytics/service"
	"smart_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the reports open to every signed-in user.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Dashboard)
	rg.GET("/pipeline", h.Pipeline)
	rg.GET("/lead-sources", h.LeadSources)
	rg.GET("/revenue-chart", h.RevenueChart)
}

// RegisterAdminRoutes mounts the cost and team reports.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/profitability", h.Profitability)
	rg.GET("/representative-performance", h.RepresentativePerformance)
}

func (h *Handler) Dashboard(c *gin.Context) {
	scope, ok := httpkit.ScopeUserID(c, "user_id")
	if !ok {
		return
	}

	dashboard, err := h.svc.Dashboard(c.Request.Context(), scope)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, dashboard)
}

func (h *Handler) Pipeline(c *gin.Context) {
	scope, ok := httpkit.ScopeUserID(c, "user_id")
	if !ok {
		return
	}

	pipeline, err := h.svc.Pipeline(c.Request.Context(), scope)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, pipeline)
}

func (h *Handler) LeadSources(c *gin.Context) {
	scope, ok := httpkit.ScopeUserID(c, "user_id")
	if !ok {
		return
	}

	sources, err := h.svc.LeadSources(c.Request.Context(), scope)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, sources)
}

func (h *Handler) RevenueChart(c *gin.Context) {
	chart, err := h.svc.RevenueChart(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, chart)
}

func (h *Handler) Profitability(c *gin.Context) {
	report, err := h.svc.Profitability(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, report)
}

func (h *Handler) RepresentativePerformance(c *gin.Context) {
	reps, err := h.svc.RepresentativePerformance(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, reps)
}
