package workflow

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/middleware"
)

// Handler handles HTTP requests for claim submission
type Handler struct {
	service *Service
}

// NewHandler creates a new workflow handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SubmitClaim runs the decision pipeline for a claim
// POST /api/v1/claims/:id/submit
func (h *Handler) SubmitClaim(c *gin.Context) {
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

	result, err := h.service.Submit(c.Request.Context(), userID, claimID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to submit claim")
		return
	}

	common.SuccessResponse(c, result)
}

// GetRiskAssessment returns a claim's readiness and fraud scores read-only
// GET /api/v1/claims/:id/risk
func (h *Handler) GetRiskAssessment(c *gin.Context) {
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

	assessment, err := h.service.Assess(c.Request.Context(), userID, claimID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to assess claim")
		return
	}

	common.SuccessResponse(c, assessment)
}
