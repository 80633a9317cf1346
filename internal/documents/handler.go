package documents

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/middleware"
	"github.com/smartclaim/backend/pkg/storage"
)

// Handler handles HTTP requests for claim documents
type Handler struct {
	service *Service
}

// NewHandler creates a new documents handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UploadDocument uploads a document to a claim
// POST /api/v1/claims/:id/documents (multipart: document_type, file)
func (h *Handler) UploadDocument(c *gin.Context) {
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

	documentType := c.PostForm("document_type")
	if documentType == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "document_type is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "failed to read file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "failed to read file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = storage.GetMimeTypeFromExtension(fileHeader.Filename)
	}

	doc, err := h.service.Upload(c.Request.Context(), userID, claimID, documentType, fileHeader.Filename, contentType, data)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to upload document")
		return
	}

	common.CreatedResponse(c, doc)
}

// ListDocuments lists a claim's documents
// GET /api/v1/claims/:id/documents
func (h *Handler) ListDocuments(c *gin.Context) {
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

	docs, err := h.service.ListForClaim(c.Request.Context(), userID, claimID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list documents")
		return
	}

	common.SuccessResponse(c, docs)
}
