package storage

import (
	"context"
	"io"

	"github.com/yukikurage/issue-tracker-api/internal/models"
)

// StoredObject describes a binary object persisted by a Storage backend.
type StoredObject struct {
	URL          string
	PublicID     string
	ResourceType models.AttachmentType
}

// Storage is the object-storage boundary. Implementations persist raw bytes
// and hand back a stable public identifier that later deletes use.
type Storage interface {
	Store(ctx context.Context, r io.Reader, folder, filename, mimeType string) (*StoredObject, error)
	Delete(ctx context.Context, publicID string, resourceType models.AttachmentType) error
}

// ResourceTypeFor maps an uploaded MIME type to the attachment type recorded
// in metadata.
func ResourceTypeFor(mimeType string) models.AttachmentType {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif":
		return models.AttachmentImage
	case "video/mp4":
		return models.AttachmentVideo
	case "application/pdf":
		return models.AttachmentPDF
	default:
		return models.AttachmentFile
	}
}
