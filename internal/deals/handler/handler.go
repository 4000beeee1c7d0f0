package handler

import (
	"net/http"
	"time"

	"smart_crm_backend/internal/deals/domain"
	"smart_crm_backend/internal/deals/repository"
	"smart_crm_backend/internal/deals/service"
	"smart_crm_backend/internal/deals/transport"
	"smart_crm_backend/platform/httpkit"
	"smart_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

var dealSortColumns = map[string]string{
	"created_at":          "created_at",
	"updated_at":          "updated_at",
	"title":               "title",
	"value":               "value",
	"probability":         "probability",
	"expected_close_date": "expected_close_date",
}

type Handler struct {
	svc *service.Service
	val *validator.Validator
	now func() time.Time
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val, now: time.Now}
}

// RegisterRoutes mounts deal routes on rg, the /deals group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/pipeline", h.Pipeline)
	rg.GET("/stats", h.Stats)
	rg.GET("/revenue", h.Revenue)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/stage", h.UpdateStage)
	rg.DELETE("/:id", h.Delete)
	rg.GET("/:id/work-logs", h.ListWorkLogs)
	rg.POST("/:id/work-logs", h.CreateWorkLog)
	rg.POST("/:id/hours/recompute", h.RecomputeHours)
}

// RegisterWorkLogRoutes mounts the /work-logs group.
func (h *Handler) RegisterWorkLogRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.MyHours)
	rg.PUT("/:id", h.UpdateWorkLog)
	rg.DELETE("/:id", h.DeleteWorkLog)
}

func (h *Handler) List(c *gin.Context) {
	assignedTo, err := httpkit.ParseOptionalUUIDQuery(c, "assigned_to")
	if httpkit.HandleError(c, err) {
		return
	}
	leadID, err := httpkit.ParseOptionalUUIDQuery(c, "lead_id")
	if httpkit.HandleError(c, err) {
		return
	}

	page := httpkit.ParsePage(c)
	sort := httpkit.ParseSort(c, dealSortColumns, "created_at")
	params := repository.ListParams{
		AssignedTo: assignedTo,
		LeadID:     leadID,
		SortColumn: sort.Column,
		Ascending:  sort.Ascending,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if raw := c.Query("stage"); raw != "" {
		stage, ok := domain.ParseStage(raw)
		if !ok {
			httpkit.Error(c, http.StatusBadRequest, "invalid stage", nil)
			return
		}
		params.Stage = &stage
	}

	deals, err := h.svc.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, deals)
}

func (h *Handler) Pipeline(c *gin.Context) {
	assignedTo, err := httpkit.ParseOptionalUUIDQuery(c, "assigned_to")
	if httpkit.HandleError(c, err) {
		return
	}

	pipeline, err := h.svc.Pipeline(c.Request.Context(), assignedTo)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, pipeline)
}

func (h *Handler) Stats(c *gin.Context) {
	assignedTo, err := httpkit.ParseOptionalUUIDQuery(c, "assigned_to")
	if httpkit.HandleError(c, err) {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), assignedTo)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stats)
}

func (h *Handler) Revenue(c *gin.Context) {
	revenue, err := h.svc.Revenue(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, revenue)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	deal, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, deal)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	deal, err := h.svc.Create(c.Request.Context(), req.ToInput())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, deal)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	var req transport.UpdateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	deal, err := h.svc.Update(c.Request.Context(), id, req.ToParams())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, deal)
}

func (h *Handler) UpdateStage(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	var req transport.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	deal, err := h.svc.UpdateStage(c.Request.Context(), id, domain.Stage(req.Stage), req.Probability)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, deal)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListWorkLogs(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	logs, err := h.svc.ListWorkLogs(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, logs)
}

func (h *Handler) CreateWorkLog(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	var req transport.CreateWorkLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}
	result, err := h.svc.CreateWorkLog(c.Request.Context(), actor, req.ToParams(id, h.now()))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

func (h *Handler) UpdateWorkLog(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	var req transport.UpdateWorkLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}
	result, err := h.svc.UpdateWorkLog(c.Request.Context(), actor, id, req.ToParams())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) DeleteWorkLog(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	actor, ok := actorOf(c)
	if !ok {
		return
	}
	result, err := h.svc.DeleteWorkLog(c.Request.Context(), actor, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) RecomputeHours(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	result, err := h.svc.Recompute(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) MyHours(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	hours, err := h.svc.MyHours(c.Request.Context(), identity.UserID(), c.Query("start_date"), c.Query("end_date"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, hours)
}

func actorOf(c *gin.Context) (service.Actor, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return service.Actor{}, false
	}
	return service.Actor{UserID: identity.UserID(), IsAdmin: httpkit.IsAdmin(identity)}, true
}
