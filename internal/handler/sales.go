package handler

import (
	"net/http"

	"github.com/Gilderlan0101/qodo-pdv/internal/apierror"
	"github.com/Gilderlan0101/qodo-pdv/internal/dto"
	"github.com/Gilderlan0101/qodo-pdv/internal/middleware"
	"github.com/Gilderlan0101/qodo-pdv/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SaleHandler struct{ svc service.SaleService }

func NewSaleHandler(svc service.SaleService) *SaleHandler { return &SaleHandler{svc: svc} }

// Get returns a sale with its items.
// GET /v1/sales/:id
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.InvalidInput("invalid sale id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), middleware.TenantID(c), saleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Amend changes an item's quantity on a completed sale, adjusting stock and
// posting the compensating cash movement.
// PATCH /v1/sales/:id
func (h *SaleHandler) Amend(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.InvalidInput("invalid sale id"))
		return
	}
	var req dto.AmendSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Amend(c.Request.Context(), middleware.TenantID(c), middleware.OperatorID(c), saleID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Void reverses a sale: stock returns, payment refunds through the ledger.
// DELETE /v1/sales/:id
func (h *SaleHandler) Void(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.InvalidInput("invalid sale id"))
		return
	}
	if err := h.svc.Void(c.Request.Context(), middleware.TenantID(c), middleware.OperatorID(c), saleID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
