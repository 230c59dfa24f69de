package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	permissiondomain "github.com/tallyhq/tally/internal/permission/domain"
	"github.com/tallyhq/tally/pkg/tenantctx"
)

const (
	HeaderTenant = "X-Tenant-ID"
	HeaderUser   = "X-User-ID"

	contextUserIDKey = "user_id"
)

// TenantContext resolves the tenant from the request header and injects it
// into the request context. Every /v1 route requires it.
func (s *Server) TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderTenant))
		if raw == "" && s.cfg.DefaultTenantID != 0 {
			raw = snowflake.ID(s.cfg.DefaultTenantID).String()
		}

		tenantID, err := snowflake.ParseString(raw)
		if err != nil || tenantID == 0 {
			AbortWithError(c, newValidationError("tenant", "invalid_tenant", "missing or invalid tenant header"))
			return
		}

		ctx := tenantctx.WithTenantID(c.Request.Context(), tenantID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// UserContext stashes the caller identity for permission checks. The header
// is optional; routes that need it enforce presence via RequirePermission.
func UserContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := strings.TrimSpace(c.GetHeader(HeaderUser)); userID != "" {
			c.Set(contextUserIDKey, userID)
		}
		c.Next()
	}
}

// RequirePermission gates a route on a capability of the calling user.
// No identity or no grant both deny.
func (s *Server) RequirePermission(capability permissiondomain.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(contextUserIDKey)
		if userID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ok, err := s.permissionSvc.HasPermission(c.Request.Context(), userID, capability)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		if !ok {
			AbortWithError(c, ErrForbidden)
			return
		}
		c.Next()
	}
}
