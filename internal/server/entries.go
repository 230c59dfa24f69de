package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	entrydomain "github.com/tallyhq/tally/internal/entry/domain"
)

func (s *Server) ValidateEntry(c *gin.Context) {
	var entry entrydomain.Entry
	if err := c.ShouldBindJSON(&entry); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.entrySvc.ValidateEntry(c.Request.Context(), entry)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) EstimateEntryCost(c *gin.Context) {
	var entry entrydomain.Entry
	if err := c.ShouldBindJSON(&entry); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.entrySvc.EstimateCost(c.Request.Context(), entry)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
