package handler

import (
	"net/http"

	"smart_crm_backend/internal/analytics/aggregate"
	"smart_crm_backend/internal/expenses/domain"
	"smart_crm_backend/internal/expenses/repository"
	"smart_crm_backend/internal/expenses/service"
	"smart_crm_backend/internal/expenses/transport"
	"smart_crm_backend/platform/httpkit"
	"smart_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
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
	rg.GET("/totals", h.Totals)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler) List(c *gin.Context) {
	userID, err := httpkit.ParseOptionalUUIDQuery(c, "user_id")
	if httpkit.HandleError(c, err) {
		return
	}

	page := httpkit.ParsePage(c)
	params := repository.ListParams{UserID: userID, Limit: page.Limit, Offset: page.Offset}
	if raw := c.Query("category"); raw != "" {
		category, ok := domain.ParseCategory(raw)
		if !ok {
			httpkit.Error(c, http.StatusBadRequest, "invalid category", nil)
			return
		}
		params.Category = &category
	}
	if raw := c.Query("start_date"); raw != "" {
		from, ok := aggregate.ParseDay(raw)
		if !ok {
			httpkit.Error(c, http.StatusBadRequest, "invalid start_date", nil)
			return
		}
		params.From = &from
	}
	if raw := c.Query("end_date"); raw != "" {
		to, ok := aggregate.ParseDay(raw)
		if !ok {
			httpkit.Error(c, http.StatusBadRequest, "invalid end_date", nil)
			return
		}
		params.To = &to
	}

	expenses, err := h.svc.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, expenses)
}

func (h *Handler) Totals(c *gin.Context) {
	totals, err := h.svc.Totals(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, totals)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	expense, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, expense)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	expense, err := h.svc.Create(c.Request.Context(), req.ToParams())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, expense)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	var req transport.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	expense, err := h.svc.Update(c.Request.Context(), id, req.ToParams())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, expense)
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
