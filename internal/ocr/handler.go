package ocr

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/middleware"
)

// Handler handles HTTP requests for document text extraction
type Handler struct {
	service *Service
}

// NewHandler creates a new OCR handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ExtractDocument runs OCR for a document on demand
// POST /api/v1/documents/:id/ocr
func (h *Handler) ExtractDocument(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid document ID")
		return
	}

	doc, err := h.service.ExtractForDocument(c.Request.Context(), userID, documentID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to extract document text")
		return
	}

	common.SuccessResponse(c, doc)
}
