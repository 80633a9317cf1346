package policies

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/middleware"
	"github.com/smartclaim/backend/pkg/pagination"
)

// Handler handles HTTP requests for policies
type Handler struct {
	service *Service
}

// NewHandler creates a new policies handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// LinkPolicy links a policy to the authenticated user
// POST /api/v1/policies
func (h *Handler) LinkPolicy(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req LinkPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	policy, err := h.service.LinkPolicy(c.Request.Context(), userID, &req)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to link policy")
		return
	}

	common.CreatedResponse(c, policy)
}

// ListPolicies lists the authenticated user's policies
// GET /api/v1/policies
func (h *Handler) ListPolicies(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := pagination.ParseParams(c)

	policies, total, err := h.service.ListPolicies(c.Request.Context(), userID, params.Limit, params.Offset)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list policies")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, policies, meta)
}

// GetPolicy gets a single policy
// GET /api/v1/policies/:id
func (h *Handler) GetPolicy(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	policyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid policy ID")
		return
	}

	policy, err := h.service.GetPolicy(c.Request.Context(), userID, policyID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusNotFound, "policy not found")
		return
	}

	common.SuccessResponse(c, policy)
}
