package handler

import (
	"net/http"

	"github.com/Gilderlan0101/qodo-pdv/internal/dto"
	"github.com/Gilderlan0101/qodo-pdv/internal/middleware"
	"github.com/Gilderlan0101/qodo-pdv/internal/service"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct{ svc service.CheckoutService }

func NewCheckoutHandler(svc service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// Checkout finalizes the operator's cart into an immutable sale.
// POST /v1/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	receipt, sale, err := h.svc.Checkout(c.Request.Context(), middleware.TenantID(c), middleware.OperatorID(c), claims.OperatorName, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"receipt": receipt, "sale": sale})
}
