package handler

import (
	"net/http"

	"github.com/Gilderlan0101/qodo-pdv/internal/dto"
	"github.com/Gilderlan0101/qodo-pdv/internal/middleware"
	"github.com/Gilderlan0101/qodo-pdv/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct{ svc service.ProductService }

func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// Create registers a catalog entry for the tenant.
// POST /v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.CreateProductRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// StockEntry adds delivered units to a product's stock.
// POST /v1/products/stock/entry
func (h *ProductHandler) StockEntry(c *gin.Context) {
	var req dto.StockAdjustmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.StockEntry(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// StockExit writes units off outside a sale (breakage, expiry).
// POST /v1/products/stock/exit
func (h *ProductHandler) StockExit(c *gin.Context) {
	var req dto.StockAdjustmentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.StockExit(c.Request.Context(), middleware.TenantID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get resolves a product by id, code or name.
// GET /v1/products/:ref
func (h *ProductHandler) Get(c *gin.Context) {
	resp, err := h.svc.GetByRef(c.Request.Context(), middleware.TenantID(c), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
