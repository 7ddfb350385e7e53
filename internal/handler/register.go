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

type RegisterHandler struct{ svc service.RegisterService }

func NewRegisterHandler(svc service.RegisterService) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

// Open opens (or idempotently returns) the operator's cash register.
// POST /v1/register/open
func (h *RegisterHandler) Open(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Open(c.Request.Context(), middleware.TenantID(c), middleware.OperatorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// PostMovement records a manual IN/OUT cash movement.
// POST /v1/register/:id/movements
func (h *RegisterHandler) PostMovement(c *gin.Context) {
	registerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.InvalidInput("invalid register id"))
		return
	}
	var req dto.PostMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.PostMovement(c.Request.Context(), middleware.TenantID(c), registerID, middleware.OperatorID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Close closes the register and returns the reconciliation report.
// POST /v1/register/:id/close
func (h *RegisterHandler) Close(c *gin.Context) {
	registerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.InvalidInput("invalid register id"))
		return
	}
	var req dto.CloseRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Close(c.Request.Context(), middleware.TenantID(c), registerID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Report returns the drawer detail view for an open or closed register.
// GET /v1/register/:id
func (h *RegisterHandler) Report(c *gin.Context) {
	registerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.InvalidInput("invalid register id"))
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), middleware.TenantID(c), registerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Current returns the operator's OPEN register, if any.
// GET /v1/register/current
func (h *RegisterHandler) Current(c *gin.Context) {
	reg, err := h.svc.FindOpen(c.Request.Context(), middleware.TenantID(c), middleware.OperatorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := h.svc.Report(c.Request.Context(), middleware.TenantID(c), reg.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
