package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/smallbiznis/gymledger/internal/billing/domain"
)

func (s *Server) createBill(c *gin.Context) {
	var req billingdomain.CreateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrBadRequest)
		return
	}
	bill, err := s.bills.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bill)
}

func (s *Server) getBill(c *gin.Context) {
	bill, err := s.bills.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (s *Server) updateBill(c *gin.Context) {
	var req billingdomain.UpdateBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrBadRequest)
		return
	}
	bill, err := s.bills.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (s *Server) deleteBill(c *gin.Context) {
	if err := s.bills.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) voidBill(c *gin.Context) {
	bill, err := s.bills.Void(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

func (s *Server) listCustomerBills(c *gin.Context) {
	bills, err := s.bills.ListByCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}
