package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	approvaldomain "github.com/tallyhq/tally/internal/approval/domain"
)

func (s *Server) GetApprovalConfig(c *gin.Context) {
	resp, err := s.approvalSvc.GetConfig(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetDefaultApprovers(c *gin.Context) {
	var req approvaldomain.SetDefaultApproversRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.approvalSvc.SetDefaultApprovers(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetEscalationRules(c *gin.Context) {
	var req approvaldomain.SetEscalationRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.approvalSvc.SetEscalationRules(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListManagerMappings(c *gin.Context) {
	resp, err := s.approvalSvc.ListMappings(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDirectReports(c *gin.Context) {
	managerID := strings.TrimSpace(c.Param("manager_id"))
	resp, err := s.approvalSvc.ListDirectReports(c.Request.Context(), managerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetEmployeeManager(c *gin.Context) {
	var req approvaldomain.SetManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.approvalSvc.SetEmployeeManager(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RemoveEmployeeManager(c *gin.Context) {
	employeeID := strings.TrimSpace(c.Param("employee_id"))
	if err := s.approvalSvc.RemoveEmployeeManager(c.Request.Context(), employeeID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ImportHierarchy(c *gin.Context) {
	var req approvaldomain.ImportHierarchyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.approvalSvc.ImportHierarchy(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetApproverForEmployee(c *gin.Context) {
	employeeID := strings.TrimSpace(c.Param("employee_id"))
	approver, err := s.approvalSvc.GetApproverForEmployee(c.Request.Context(), employeeID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": approver})
}

func (s *Server) GetEscalationTarget(c *gin.Context) {
	employeeID := strings.TrimSpace(c.Param("employee_id"))
	target, err := s.approvalSvc.GetEscalationTarget(c.Request.Context(), employeeID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": target})
}

func (s *Server) IsApprovalRequired(c *gin.Context) {
	var query struct {
		EmployeeID string `form:"employee_id"`
		TotalHours string `form:"total_hours"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	hours, err := strconv.ParseFloat(strings.TrimSpace(query.TotalHours), 64)
	if err != nil || hours < 0 {
		AbortWithError(c, newValidationError("total_hours", "invalid_hours", "invalid total hours"))
		return
	}

	required, err := s.approvalSvc.IsApprovalRequired(c.Request.Context(), approvaldomain.IsApprovalRequiredRequest{
		EmployeeID: strings.TrimSpace(query.EmployeeID),
		TotalHours: hours,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"required": required}})
}
