package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	plandomain "github.com/smallbiznis/gymledger/internal/plan/domain"
)

func (s *Server) createPlan(c *gin.Context) {
	var req plandomain.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrBadRequest)
		return
	}
	plan, err := s.plans.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (s *Server) listPlans(c *gin.Context) {
	includeArchived := c.Query("include_archived") == "true"
	plans, err := s.plans.List(c.Request.Context(), includeArchived)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

func (s *Server) archivePlan(c *gin.Context) {
	if err := s.plans.Archive(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
