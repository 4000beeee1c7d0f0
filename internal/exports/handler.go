package exports

import (
	"smart_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("/profitability", h.ExportProfitability)
	rg.GET("/:id/download", h.Download)
}

func (h *Handler) ExportProfitability(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	export, err := h.svc.ExportProfitability(c.Request.Context(), identity.UserID(), c.Query("start_date"), c.Query("end_date"), c.DefaultQuery("format", FormatCSV))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, export)
}

func (h *Handler) List(c *gin.Context) {
	page := httpkit.ParsePage(c)
	records, err := h.svc.List(c.Request.Context(), page.Limit, page.Offset)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, records)
}

func (h *Handler) Download(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	export, err := h.svc.Download(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, export)
}
