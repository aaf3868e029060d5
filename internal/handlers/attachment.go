package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/issue-tracker-api/internal/errors"
	"github.com/yukikurage/issue-tracker-api/internal/middleware"
	"github.com/yukikurage/issue-tracker-api/internal/services"
	"github.com/yukikurage/issue-tracker-api/internal/utils"
)

// AttachmentHandler handles upload endpoints.
type AttachmentHandler struct {
	attachmentService *services.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler.
func NewAttachmentHandler(attachmentService *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// Upload handles POST /api/attachments. Expects a multipart form with a
// single "file" field.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "A file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to read uploaded file")
		return
	}
	defer file.Close()

	attachment, err := h.attachmentService.Upload(c.Request.Context(), services.UploadInput{
		UploaderID: userID,
		Filename:   fileHeader.Filename,
		MimeType:   fileHeader.Header.Get("Content-Type"),
		Size:       fileHeader.Size,
		Reader:     file,
	})
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	respondData(c, http.StatusCreated, dto.ToAttachmentDTO(*attachment))
}

// Delete handles DELETE /api/attachments/:id
func (h *AttachmentHandler) Delete(c *gin.Context) {
	attachmentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid attachment ID")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	if err := h.attachmentService.Delete(c.Request.Context(), attachmentID, userID); err != nil {
		respondAttachmentError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Attachment deleted")
}

// MyAttachments handles GET /api/attachments/my-attachments
func (h *AttachmentHandler) MyAttachments(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	attachments, total, err := h.attachmentService.ListByUploader(userID, params.Page, params.Limit)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	respondPage(c, dto.ToAttachmentDTOs(attachments), len(attachments), total, params)
}

func respondAttachmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrAttachmentNotFound):
		apierrors.NotFound(c, "Attachment not found")
	case errors.Is(err, services.ErrAttachmentTooLarge):
		apierrors.BadRequest(c, "File exceeds the maximum allowed size of 25 MiB")
	case errors.Is(err, services.ErrUnsupportedMimeType):
		apierrors.BadRequest(c, "Unsupported file type")
	case errors.Is(err, services.ErrCannotDeleteUpload):
		apierrors.Forbidden(c, "Only the uploader or an admin can delete this attachment")
	case errors.Is(err, services.ErrStorageFailed):
		apierrors.ServiceUnavailable(c, "File storage is temporarily unavailable")
	default:
		apierrors.InternalError(c, "")
	}
}
