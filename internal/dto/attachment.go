package dto

import (
	"time"

	"github.com/yukikurage/issue-tracker-api/internal/models"
)

// AttachmentDTO represents an attachment in API responses
type AttachmentDTO struct {
	ID               uint64                `json:"id"`
	URL              string                `json:"url"`
	Type             models.AttachmentType `json:"type"`
	UploadedByID     uint64                `json:"uploaded_by"`
	OriginalFilename string                `json:"original_filename"`
	MimeType         string                `json:"mime_type"`
	Size             int64                 `json:"size"`
	IssueID          *uint64               `json:"issue_id,omitempty"`
	CommentID        *uint64               `json:"comment_id,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
}

// ToAttachmentDTO converts an Attachment model to AttachmentDTO
func ToAttachmentDTO(attachment models.Attachment) AttachmentDTO {
	return AttachmentDTO{
		ID:               attachment.ID,
		URL:              attachment.URL,
		Type:             attachment.Type,
		UploadedByID:     attachment.UploadedByID,
		OriginalFilename: attachment.OriginalFilename,
		MimeType:         attachment.MimeType,
		Size:             attachment.Size,
		IssueID:          attachment.IssueID,
		CommentID:        attachment.CommentID,
		CreatedAt:        attachment.CreatedAt,
	}
}

// ToAttachmentDTOs converts a slice of attachments
func ToAttachmentDTOs(attachments []models.Attachment) []AttachmentDTO {
	dtos := make([]AttachmentDTO, len(attachments))
	for i, attachment := range attachments {
		dtos[i] = ToAttachmentDTO(attachment)
	}
	return dtos
}
