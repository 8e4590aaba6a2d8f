package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listCustomerMemberships(c *gin.Context) {
	memberships, err := s.memberships.ListByCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memberships": memberships})
}

func (s *Server) currentMembership(c *gin.Context) {
	membership, err := s.memberships.Current(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, membership)
}
