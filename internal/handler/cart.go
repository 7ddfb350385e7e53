package handler

import (
	"net/http"

	"github.com/Gilderlan0101/qodo-pdv/internal/apierror"
	"github.com/Gilderlan0101/qodo-pdv/internal/dto"
	"github.com/Gilderlan0101/qodo-pdv/internal/middleware"
	"github.com/Gilderlan0101/qodo-pdv/internal/service"

	"github.com/gin-gonic/gin"
)

type CartHandler struct{ svc service.CartService }

func NewCartHandler(svc service.CartService) *CartHandler { return &CartHandler{svc: svc} }

// AddLine adds quantity of a product to the cart, reserving stock.
// POST /v1/cart/lines
func (h *CartHandler) AddLine(c *gin.Context) {
	var req dto.AddCartLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddLine(c.Request.Context(), middleware.TenantID(c), middleware.OperatorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateLine adjusts a line's quantity, discount or addition.
// PUT /v1/cart/lines
func (h *CartHandler) UpdateLine(c *gin.Context) {
	var req dto.UpdateCartLineRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateLine(c.Request.Context(), middleware.TenantID(c), middleware.OperatorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveLine deletes a line and returns its stock.
// DELETE /v1/cart/lines/:ref
func (h *CartHandler) RemoveLine(c *gin.Context) {
	ref := c.Param("ref")
	if ref == "" {
		c.JSON(http.StatusBadRequest, apierror.InvalidInput("missing product reference"))
		return
	}
	if err := h.svc.RemoveLine(c.Request.Context(), middleware.TenantID(c), middleware.OperatorID(c), ref); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Clear drains the cart, returning all reserved stock (abandoned cart).
// DELETE /v1/cart
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.svc.Clear(c.Request.Context(), middleware.TenantID(c), middleware.OperatorID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List returns the cart's lines.
// GET /v1/cart
func (h *CartHandler) List(c *gin.Context) {
	lines, err := h.svc.ListLines(c.Request.Context(), middleware.TenantID(c), middleware.OperatorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

// Summary returns derived totals for the cart.
// GET /v1/cart/summary
func (h *CartHandler) Summary(c *gin.Context) {
	resp, err := h.svc.Summary(c.Request.Context(), middleware.TenantID(c), middleware.OperatorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
