package httpkit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const testSecret = "test-secret"

type testJWTConfig struct{}

func (testJWTConfig) GetJWTAccessSecret() string { return testSecret }

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newProtectedEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthRequired(testJWTConfig{}))
	r.GET("/me", func(c *gin.Context) {
		id := MustGetIdentity(c)
		if id == nil {
			return
		}
		OK(c, gin.H{"id": id.UserID().String(), "admin": IsAdmin(id)})
	})
	r.GET("/admin", RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func doRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthRequiredAcceptsAccessToken(t *testing.T) {
	userID := uuid.New()
	token := signToken(t, jwt.MapClaims{
		"sub":   userID.String(),
		"type":  "access",
		"roles": []string{"sales_rep"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	rec := doRequest(newProtectedEngine(), "/me", token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":"`+userID.String()+`","admin":false}`, rec.Body.String())
}

func TestAuthRequiredRejectsBadTokens(t *testing.T) {
	expired := signToken(t, jwt.MapClaims{"sub": uuid.NewString(), "type": "access", "exp": time.Now().Add(-time.Minute).Unix()})
	wrongType := signToken(t, jwt.MapClaims{"sub": uuid.NewString(), "type": "refresh", "exp": time.Now().Add(time.Hour).Unix()})
	badSubject := signToken(t, jwt.MapClaims{"sub": "not-a-uuid", "type": "access", "exp": time.Now().Add(time.Hour).Unix()})

	cases := map[string]string{
		"missing":     "",
		"expired":     expired,
		"wrong type":  wrongType,
		"bad subject": badSubject,
		"garbage":     "abc.def.ghi",
	}
	r := newProtectedEngine()
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(r, "/me", token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireRole(t *testing.T) {
	r := newProtectedEngine()
	claims := func(roles ...string) jwt.MapClaims {
		return jwt.MapClaims{"sub": uuid.NewString(), "type": "access", "roles": roles, "exp": time.Now().Add(time.Hour).Unix()}
	}

	assert.Equal(t, http.StatusForbidden, doRequest(r, "/admin", signToken(t, claims("sales_rep"))).Code)
	assert.Equal(t, http.StatusNoContent, doRequest(r, "/admin", signToken(t, claims("admin"))).Code)
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestScopeUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	self := uuid.New()
	other := uuid.New()

	scope := func(roles []string, query string) (*uuid.UUID, int) {
		r := gin.New()
		var got *uuid.UUID
		r.GET("/", func(c *gin.Context) {
			c.Set(ContextUserIDKey, self)
			c.Set(ContextRolesKey, roles)
			userID, ok := ScopeUserID(c, "user_id")
			if !ok {
				return
			}
			got = userID
			c.Status(http.StatusOK)
		})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+query, nil))
		return got, rec.Code
	}

	got, code := scope([]string{"sales_rep"}, "?user_id="+other.String())
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, got)
	assert.Equal(t, self, *got, "representatives cannot widen their scope")

	got, code = scope([]string{RoleAdmin}, "?user_id="+other.String())
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, got)
	assert.Equal(t, other, *got)

	got, code = scope([]string{RoleAdmin}, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, got)

	_, code = scope([]string{RoleAdmin}, "?user_id=nope")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestIPRateLimiterForgetsIdleClients(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(rate.Limit(1), 1, nil)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"), "burst of one is spent")
	assert.True(t, l.allow("10.0.0.2"), "buckets are per IP")

	now = now.Add(limiterIdleTTL + time.Second)
	assert.True(t, l.allow("10.0.0.3"))
	assert.Len(t, l.limiters, 1, "idle clients are swept")
}
