package claims

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/middleware"
	"github.com/smartclaim/backend/pkg/pagination"
)

// Handler handles HTTP requests for claims
type Handler struct {
	service *Service
}

// NewHandler creates a new claims handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateClaim opens a new claim
// POST /api/v1/claims
func (h *Handler) CreateClaim(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.service.CreateClaim(c.Request.Context(), userID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to create claim")
		return
	}

	common.CreatedResponse(c, claim)
}

// ListClaims lists the authenticated user's claims
// GET /api/v1/claims?status=DRAFT
func (h *Handler) ListClaims(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := pagination.ParseParams(c)
	status := c.Query("status")

	result, total, err := h.service.ListClaims(c.Request.Context(), userID, status, params.Limit, params.Offset)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list claims")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, result, meta)
}

// GetClaim gets a single claim
// GET /api/v1/claims/:id
func (h *Handler) GetClaim(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid claim ID")
		return
	}

	claim, err := h.service.GetClaim(c.Request.Context(), userID, claimID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusNotFound, "claim not found")
		return
	}

	common.SuccessResponse(c, claim)
}

// UpdateClaim edits a DRAFT claim
// PATCH /api/v1/claims/:id
func (h *Handler) UpdateClaim(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid claim ID")
		return
	}

	var req UpdateClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := h.service.UpdateClaim(c.Request.Context(), userID, claimID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to update claim")
		return
	}

	common.SuccessResponse(c, claim)
}
