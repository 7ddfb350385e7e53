package handler

import (
	"net/http"

	"github.com/Gilderlan0101/qodo-pdv/internal/middleware"
	"github.com/Gilderlan0101/qodo-pdv/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct{ svc service.ReportService }

func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// PaymentMethods groups the tenant's sales by payment method (cached).
// GET /v1/reports/payment-methods
func (h *ReportHandler) PaymentMethods(c *gin.Context) {
	resp, err := h.svc.PaymentMethodBreakdown(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LowStock lists products at or below their minimum stock level (cached).
// GET /v1/reports/low-stock
func (h *ReportHandler) LowStock(c *gin.Context) {
	resp, err := h.svc.LowStock(c.Request.Context(), middleware.TenantID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": resp})
}
