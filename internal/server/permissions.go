package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	permissiondomain "github.com/tallyhq/tally/internal/permission/domain"
)

type setPermissionsRequest struct {
	Grants       permissiondomain.Grants        `json:"grants"`
	Restrictions *permissiondomain.Restrictions `json:"restrictions"`
}

func (s *Server) GetUserPermissions(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	resp, err := s.permissionSvc.GetUserPermissions(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetUserPermissions(c *gin.Context) {
	var req setPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.permissionSvc.SetUserPermissions(c.Request.Context(), permissiondomain.SetPermissionsRequest{
		UserID:       strings.TrimSpace(c.Param("user_id")),
		Grants:       req.Grants,
		Restrictions: req.Restrictions,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPermissionHistory(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	resp, err := s.permissionSvc.ListHistory(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CheckPermission(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("user_id"))
	capability := strings.TrimSpace(c.Query("capability"))
	if capability == "" {
		AbortWithError(c, newValidationError("capability", "required", "capability is required"))
		return
	}

	allowed, err := s.permissionSvc.HasPermission(c.Request.Context(), userID, permissiondomain.Capability(strings.ToUpper(capability)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"allowed": allowed}})
}

func (s *Server) CheckProjectAccess(c *gin.Context) {
	var req permissiondomain.ProjectAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	allowed, err := s.permissionSvc.CanAccessProject(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"allowed": allowed}})
}

func (s *Server) CheckApprovalAccess(c *gin.Context) {
	var req permissiondomain.ApprovalAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	allowed, err := s.permissionSvc.CanApproveForUser(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"allowed": allowed}})
}

func (s *Server) CheckEditAccess(c *gin.Context) {
	var req permissiondomain.EditAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	allowed, err := s.permissionSvc.CanEditTimeEntry(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"allowed": allowed}})
}
