package handler

import (
	"net/http"

	"smart_crm_backend/internal/interactions/service"
	"smart_crm_backend/internal/interactions/transport"
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

func (h *Handler) Recent(c *gin.Context) {
	userID, ok := httpkit.ScopeUserID(c, "user_id")
	if !ok {
		return
	}

	items, err := h.svc.Recent(c.Request.Context(), httpkit.ParseLimit(c, 10, 100), userID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, items)
}

func (h *Handler) ListForLead(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	items, err := h.svc.ListForLead(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, items)
}

func (h *Handler) ListForDeal(c *gin.Context) {
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	items, err := h.svc.ListForDeal(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, items)
}

func (h *Handler) CreateForLead(c *gin.Context) {
	h.create(c, true)
}

func (h *Handler) CreateForDeal(c *gin.Context) {
	h.create(c, false)
}

func (h *Handler) create(c *gin.Context, onLead bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	id, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	var req transport.CreateInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	params := req.ToParams(identity.UserID())
	if onLead {
		params.LeadID = &id
	} else {
		params.DealID = &id
	}

	interaction, err := h.svc.Create(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, interaction)
}
