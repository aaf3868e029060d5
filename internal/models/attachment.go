package models

import (
	"time"

	"gorm.io/gorm"
)

type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentVideo AttachmentType = "video"
	AttachmentFile  AttachmentType = "file"
	AttachmentPDF   AttachmentType = "pdf"
)

// Attachment is the metadata record for an uploaded binary object. Uploads
// start out detached; an issue or comment claims the attachment later by
// referencing its ID.
type Attachment struct {
	ID               uint64         `gorm:"primarykey" json:"id"`
	URL              string         `gorm:"type:varchar(500);not null" json:"url"`
	Type             AttachmentType `gorm:"type:varchar(20);not null" json:"type"`
	PublicID         string         `gorm:"type:varchar(255);not null" json:"public_id"`
	UploadedByID     uint64         `gorm:"not null;index" json:"uploaded_by"`
	OriginalFilename string         `gorm:"type:varchar(255)" json:"original_filename"`
	MimeType         string         `gorm:"type:varchar(100)" json:"mime_type"`
	Size             int64          `gorm:"not null" json:"size"`
	IssueID          *uint64        `gorm:"index" json:"issue_id,omitempty"`
	CommentID        *uint64        `gorm:"index" json:"comment_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	UploadedBy User `gorm:"foreignKey:UploadedByID" json:"uploader,omitempty"`
}
