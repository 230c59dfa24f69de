package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	ratedomain "github.com/tallyhq/tally/internal/rate/domain"
)

type setRateRequest struct {
	EmployeeID     string     `json:"employee_id"`
	ProjectID      string     `json:"project_id"`
	ActivityCodeID string     `json:"activity_code_id"`
	StandardRate   float64    `json:"standard_rate"`
	OvertimeRate   *float64   `json:"overtime_rate"`
	BillableRate   *float64   `json:"billable_rate"`
	Currency       string     `json:"currency"`
	EffectiveFrom  *time.Time `json:"effective_from"`
}

func (r setRateRequest) toDomain() ratedomain.SetRateRequest {
	return ratedomain.SetRateRequest{
		EmployeeID:     strings.TrimSpace(r.EmployeeID),
		ProjectID:      strings.TrimSpace(r.ProjectID),
		ActivityCodeID: strings.TrimSpace(r.ActivityCodeID),
		StandardRate:   r.StandardRate,
		OvertimeRate:   r.OvertimeRate,
		BillableRate:   r.BillableRate,
		Currency:       strings.TrimSpace(r.Currency),
		EffectiveFrom:  r.EffectiveFrom,
	}
}

func (s *Server) SetDefaultRate(c *gin.Context) {
	s.setRate(c, s.rateSvc.SetDefaultRate)
}

func (s *Server) SetEmployeeRate(c *gin.Context) {
	s.setRate(c, s.rateSvc.SetEmployeeRate)
}

func (s *Server) SetProjectRate(c *gin.Context) {
	s.setRate(c, s.rateSvc.SetProjectRate)
}

func (s *Server) SetActivityRate(c *gin.Context) {
	s.setRate(c, s.rateSvc.SetActivityRate)
}

func (s *Server) SetEmployeeProjectRate(c *gin.Context) {
	s.setRate(c, s.rateSvc.SetEmployeeProjectRate)
}

func (s *Server) setRate(c *gin.Context, set func(ctx context.Context, req ratedomain.SetRateRequest) (*ratedomain.Response, error)) {
	var req setRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := set(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetActiveRate(c *gin.Context) {
	var query ratedomain.ScopeRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rateSvc.GetActiveRate(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRateHistory(c *gin.Context) {
	var query ratedomain.HistoryRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rateSvc.ListHistory(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ResolveRate(c *gin.Context) {
	var query ratedomain.ResolveRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rateSvc.Resolve(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CalculateEntryCost(c *gin.Context) {
	var req ratedomain.EntryCostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rateSvc.CalculateEntryCost(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
