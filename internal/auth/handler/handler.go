package handler

import (
	"net/http"

	"smart_crm_backend/internal/auth/repository"
	"smart_crm_backend/internal/auth/service"
	"smart_crm_backend/internal/auth/transport"
	"smart_crm_backend/platform/httpkit"
	"smart_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	tokenTypeBearer     = "Bearer"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
}

func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	session, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.LoginResponse{
		AccessToken: session.AccessToken,
		TokenType:   tokenTypeBearer,
		ExpiresIn:   int64(session.ExpiresIn.Seconds()),
		User:        session.User,
	})
}

func (h *Handler) GetMe(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	user, err := h.svc.Me(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, user)
}

func (h *Handler) UpdateMe(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	user, err := h.svc.UpdateMe(c.Request.Context(), id.UserID(), toUpdateParams(req))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, user)
}

func (h *Handler) ListUsers(c *gin.Context) {
	includeInactive := false
	if v := httpkit.ParseBoolQuery(c, "include_inactive"); v != nil {
		includeInactive = *v && httpkit.IsAdmin(httpkit.GetIdentity(c))
	}

	users, err := h.svc.ListUsers(c.Request.Context(), includeInactive)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, users)
}

func (h *Handler) GetUser(c *gin.Context) {
	userID, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), userID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, user)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req transport.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), service.CreateUserInput{
		Email:                req.Email,
		Password:             req.Password,
		FullName:             req.FullName,
		Role:                 req.Role,
		Phone:                req.Phone,
		TargetMonthlyRevenue: req.TargetMonthlyRevenue,
		TargetMonthlyDeals:   req.TargetMonthlyDeals,
		HourlyRate:           req.HourlyRate,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, user)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	userID, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	var req transport.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	user, err := h.svc.UpdateUser(c.Request.Context(), userID, toUpdateParams(req))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, user)
}

func (h *Handler) DeactivateUser(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}
	userID, err := httpkit.ParseUUIDParam(c, "id")
	if httpkit.HandleError(c, err) {
		return
	}

	if err := h.svc.DeactivateUser(c.Request.Context(), id.UserID(), userID); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func toUpdateParams(req transport.UpdateUserRequest) repository.UpdateUserParams {
	return repository.UpdateUserParams{
		FullName:             req.FullName,
		Phone:                req.Phone,
		AvatarURL:            req.AvatarURL,
		Role:                 req.Role,
		TargetMonthlyRevenue: req.TargetMonthlyRevenue,
		TargetMonthlyDeals:   req.TargetMonthlyDeals,
		HourlyRate:           req.HourlyRate,
		IsActive:             req.IsActive,
	}
}
