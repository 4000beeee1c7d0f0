package handler

import (
	"net/http"
	"strconv"
	"strings"

	"smart_crm_backend/internal/leads/domain"
	"smart_crm_backend/internal/leads/repository"
	"smart_crm_backend/internal/leads/service"
	"smart_crm_backend/internal/leads/transport"
	"smart_crm_backend/platform/httpkit"
	"smart_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	maxTopScored        = 50
)

var leadSortColumns = map[string]string{
	"created_at":      "created_at",
	"updated_at":      "updated_at",
	"company_name":    "company_name",
	"lead_score":      "lead_score",
	"next_follow_up":  "next_follow_up",
	"estimated_value": "estimated_budget",
}

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
	rg.GET("/top-scored", h.TopScored)
	rg.GET("/stats", h.Stats)
	rg.GET("/check-duplicate", h.CheckDuplicate)
	rg.POST("/score-preview", h.ScorePreview)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/score", h.Score)
}

func (h *Handler) List(c *gin.Context) {
	assignedTo, err := httpkit.ParseOptionalUUIDQuery(c, "assigned_to")
	if httpkit.HandleError(c, err) {
		return
	}

	page := httpkit.ParsePage(c)
	sort := httpkit.ParseSort(c, leadSortColumns, "created_at")
	params := repository.ListParams{
		AssignedTo: assignedTo,
		Search:     c.Query("search"),
		SortColumn: sort.Column,
		Ascending:  sort.Ascending,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := domain.ParseLeadStatus(raw)
		if !ok {
			httpkit.Error(c, http.StatusBadRequest, "invalid status", nil)
			return
		}
		params.Status = &status
	}
	if raw := c.Query("source"); raw != "" {
		source, ok := domain.ParseLeadSource(raw)
		if !ok {
			httpkit.Error(c, http.StatusBadRequest, "invalid source", nil)
			return
		}
		params.Source = &source
	}
	if raw := strings.TrimSpace(c.Query("min_score")); raw != "" {
		minScore, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid min_score", nil)
			return
		}
		params.MinScore = &minScore
	}

	leads, err := h.svc.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leads)
}

func (h *Handler) TopScored(c *gin.Context) {
	assignedTo, err := httpkit.ParseOptionalUUIDQuery(c, "assigned_to")
	if httpkit.HandleError(c, err) {
		return
	}

	leads, err := h.svc.TopScored(c.Request.Context(), httpkit.ParseLimit(c, 10, maxTopScored), assignedTo)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leads)
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

func (h *Handler) CheckDuplicate(c *gin.Context) {
	matches, err := h.svc.CheckDuplicate(c.Request.Context(), c.Query("email"), c.Query("phone"), c.Query("company_name"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{
		"is_duplicate": len(matches) > 0,
		"matches":      matches,
	})
}

func (h *Handler) ScorePreview(c *gin.Context) {
	var req transport.ScorePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	httpkit.OK(c, h.svc.Preview(req.ToInput()))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Create(c.Request.Context(), req.ToParams())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, result)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.Update(c.Request.Context(), id, req.ToParams(), req.ChangedFields())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
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

func (h *Handler) Score(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	result, err := h.svc.Score(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
