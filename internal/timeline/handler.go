package timeline

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/smartclaim/backend/internal/claims"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/middleware"
	"github.com/smartclaim/backend/pkg/pagination"
)

// ClaimReader is the slice of the claims repository used for ownership checks
type ClaimReader interface {
	GetByID(ctx context.Context, claimID uuid.UUID) (*claims.Claim, error)
}

// Handler handles HTTP requests for claim timelines
type Handler struct {
	service *Service
	claims  ClaimReader
}

// NewHandler creates a new timeline handler
func NewHandler(service *Service, claimReader ClaimReader) *Handler {
	return &Handler{service: service, claims: claimReader}
}

// GetTimeline lists a claim's events newest first
// GET /api/v1/claims/:id/timeline
func (h *Handler) GetTimeline(c *gin.Context) {
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

	claim, err := h.claims.GetByID(c.Request.Context(), claimID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			common.ErrorResponse(c, http.StatusNotFound, "claim not found")
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to load claim")
		return
	}
	if claim.UserID != userID {
		common.ErrorResponse(c, http.StatusNotFound, "claim not found")
		return
	}

	params := pagination.ParseParams(c)

	events, total, err := h.service.ListEvents(c.Request.Context(), claimID, params.Limit, params.Offset)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list timeline events")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, events, meta)
}
