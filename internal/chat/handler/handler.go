package handler

import (
	"net/http"

	"smart_crm_backend/internal/chat/service"
	"smart_crm_backend/internal/chat/transport"
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
	rg.GET("/stats", h.Stats)
	rg.POST("", h.Ask)
}

func (h *Handler) Stats(c *gin.Context) {
	viewer, ok := viewerOf(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), viewer)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"sections": stats, "text": stats.Text()})
}

func (h *Handler) Ask(c *gin.Context) {
	viewer, ok := viewerOf(c)
	if !ok {
		return
	}

	var req transport.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	reply, err := h.svc.Ask(c.Request.Context(), viewer, req.Message, service.Mode(req.Mode))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, reply)
}

func viewerOf(c *gin.Context) (service.Viewer, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return service.Viewer{}, false
	}
	return service.Viewer{UserID: identity.UserID(), IsAdmin: httpkit.IsAdmin(identity)}, true
}
