package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smart_crm_backend/internal/analytics/aggregate"
	analyticssvc "smart_crm_backend/internal/analytics/service"
	"smart_crm_backend/internal/chat/service"
	"smart_crm_backend/internal/chat/transport"
	"smart_crm_backend/platform/httpkit"
	"smart_crm_backend/platform/logger"
	"smart_crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReports struct{}

func (stubReports) Dashboard(context.Context, *uuid.UUID) (aggregate.Dashboard, error) {
	return aggregate.Dashboard{KPIs: aggregate.KPIs{TotalRevenue: 1000}}, nil
}

func (stubReports) Pipeline(context.Context, *uuid.UUID) (analyticssvc.Pipeline, error) {
	return analyticssvc.Pipeline{}, nil
}

func (stubReports) Profitability(context.Context, string, string) (aggregate.Profitability, error) {
	return aggregate.Profitability{}, nil
}

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, _, _, prompt string) (string, error) {
	return "ok", nil
}

func newEngine(t *testing.T, completer service.Completer, userID *uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	val := validator.New()
	require.NoError(t, transport.RegisterValidations(val))
	h := New(service.New(stubReports{}, completer, "Acme", "en", logger.Nop()), val)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != nil {
			c.Set(httpkit.ContextUserIDKey, *userID)
			c.Set(httpkit.ContextRolesKey, []string{"sales_rep"})
		}
		c.Next()
	})
	h.RegisterRoutes(r.Group("/chat"))
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAskReturnsReply(t *testing.T) {
	userID := uuid.New()
	rec := post(newEngine(t, echoCompleter{}, &userID), `{"message":"How many leads?","mode":"consulting"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var reply service.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "ok", reply.Reply)
	assert.Equal(t, service.ModeConsulting, reply.Mode)
}

func TestAskRejectsUnknownMode(t *testing.T) {
	userID := uuid.New()
	rec := post(newEngine(t, echoCompleter{}, &userID), `{"message":"Hi","mode":"poet"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgValidationFailed)
}

func TestAskRejectsMalformedBody(t *testing.T) {
	userID := uuid.New()
	rec := post(newEngine(t, echoCompleter{}, &userID), `{"message":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), msgInvalidRequest)
}

func TestAskWithoutProviderIsServiceUnavailable(t *testing.T) {
	userID := uuid.New()
	rec := post(newEngine(t, nil, &userID), `{"message":"Hi"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatsRequiresIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	newEngine(t, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/stats", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatsReturnsSectionsAndText(t *testing.T) {
	userID := uuid.New()
	rec := httptest.NewRecorder()
	newEngine(t, nil, &userID).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Sections service.Stats `json:"sections"`
		Text     string        `json:"text"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Text)
	assert.Empty(t, body.Sections.Profitability)
}
