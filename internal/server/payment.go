package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	paymentdomain "github.com/smallbiznis/gymledger/internal/payment/domain"
)

func (s *Server) addPayment(c *gin.Context) {
	var req paymentdomain.AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrBadRequest)
		return
	}
	payment, err := s.payments.AddPayment(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (s *Server) deletePayment(c *gin.Context) {
	if err := s.payments.DeletePayment(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listBillPayments(c *gin.Context) {
	payments, err := s.payments.ListByBill(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
