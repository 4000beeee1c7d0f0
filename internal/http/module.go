// Package http defines how bounded contexts plug into the router.
package http

import (
	"smart_crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context with HTTP routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext hands modules the /api/v1 groups they may mount on.
// Protected requires a valid access token; Admin additionally requires
// the admin role. All three share the same path prefix.
type RouterContext struct {
	V1        *gin.RouterGroup
	Protected *gin.RouterGroup
	Admin     *gin.RouterGroup
	// AuthRateLimiter throttles credential endpoints per client IP.
	AuthRateLimiter *httpkit.AuthRateLimiter
}
