package handler

import (
	"context"
	"net/http"

	"smart_crm_backend/internal/tasks/domain"
	"smart_crm_backend/internal/tasks/repository"
	"smart_crm_backend/internal/tasks/service"
	"smart_crm_backend/internal/tasks/transport"
	"smart_crm_backend/platform/httpkit"
	"smart_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/today", h.Today)
	rg.GET("/overdue", h.Overdue)
	rg.GET("/week", h.Week)
	rg.GET("/stats", h.Stats)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.POST("/:id/handled", h.MarkHandled)
	rg.DELETE("/:id", h.Delete)
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
	dealID, err := httpkit.ParseOptionalUUIDQuery(c, "deal_id")
	if httpkit.HandleError(c, err) {
		return
	}

	page := httpkit.ParsePage(c)
	params := repository.ListParams{
		AssignedTo: assignedTo,
		LeadID:     leadID,
		DealID:     dealID,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if raw := c.Query("status"); raw != "" {
		if err := h.val.Var(raw, "task_status"); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid status", nil)
			return
		}
		status := domain.Status(raw)
		params.Status = &status
	}

	tasks, err := h.svc.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, tasks)
}

func (h *Handler) Today(c *gin.Context) {
	h.listWindow(c, h.svc.Today)
}

func (h *Handler) Overdue(c *gin.Context) {
	h.listWindow(c, h.svc.Overdue)
}

func (h *Handler) Week(c *gin.Context) {
	h.listWindow(c, h.svc.Week)
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

func (h *Handler) Get(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	task, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, task)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	task, err := h.svc.Create(c.Request.Context(), req.ToParams())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, task)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	var req transport.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	task, err := h.svc.Update(c.Request.Context(), id, req.ToParams())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, task)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	task, err := h.svc.UpdateStatus(c.Request.Context(), id, domain.Status(req.Status))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, task)
}

func (h *Handler) MarkHandled(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	task, err := h.svc.MarkHandled(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, task)
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

type windowFunc func(ctx context.Context, assignedTo *uuid.UUID) ([]domain.Task, error)

// listWindow serves the date-window listings. Without assigned_to the
// caller's own tasks are returned; admins may pass all=true.
func (h *Handler) listWindow(c *gin.Context, fn windowFunc) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	assignedTo, err := httpkit.ParseOptionalUUIDQuery(c, "assigned_to")
	if httpkit.HandleError(c, err) {
		return
	}
	if assignedTo == nil {
		all := httpkit.ParseBoolQuery(c, "all")
		if all == nil || !*all || !httpkit.IsAdmin(identity) {
			self := identity.UserID()
			assignedTo = &self
		}
	}

	tasks, err := fn(c.Request.Context(), assignedTo)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, tasks)
}
