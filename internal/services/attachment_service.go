package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/yukikurage/issue-tracker-api/internal/authz"
	"github.com/yukikurage/issue-tracker-api/internal/constants"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/repository"
	"github.com/yukikurage/issue-tracker-api/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrAttachmentTooLarge  = errors.New("attachment exceeds the maximum allowed size")
	ErrUnsupportedMimeType = errors.New("unsupported file type")
	ErrCannotDeleteUpload  = errors.New("only the uploader or an admin can delete this attachment")
	ErrStorageFailed       = errors.New("object storage operation failed")
)

var allowedMimeTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"application/pdf",
	"video/mp4",
}

// AttachmentService handles uploads and attachment lifecycle.
type AttachmentService struct {
	attachmentRepo repository.AttachmentRepository
	userRepo       repository.UserRepository
	store          storage.Storage
}

// NewAttachmentService creates a new AttachmentService.
func NewAttachmentService(attachmentRepo repository.AttachmentRepository, userRepo repository.UserRepository, store storage.Storage) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		userRepo:       userRepo,
		store:          store,
	}
}

// UploadInput represents an incoming file upload.
type UploadInput struct {
	UploaderID uint64
	Filename   string
	MimeType   string
	Size       int64
	Reader     io.Reader
}

// Upload validates and stores a file, then persists its metadata. Uploads
// are detached; an issue or comment claims them later by ID. On storage
// failure no metadata row is written.
func (s *AttachmentService) Upload(ctx context.Context, input UploadInput) (*models.Attachment, error) {
	if input.Size > constants.MaxAttachmentSize {
		return nil, ErrAttachmentTooLarge
	}
	if !lo.Contains(allowedMimeTypes, input.MimeType) {
		return nil, ErrUnsupportedMimeType
	}

	obj, err := s.store.Store(ctx, input.Reader, "attachments", input.Filename, input.MimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	attachment := &models.Attachment{
		URL:              obj.URL,
		Type:             obj.ResourceType,
		PublicID:         obj.PublicID,
		UploadedByID:     input.UploaderID,
		OriginalFilename: input.Filename,
		MimeType:         input.MimeType,
		Size:             input.Size,
	}
	if err := s.attachmentRepo.Create(attachment); err != nil {
		return nil, fmt.Errorf("failed to persist attachment metadata: %w", err)
	}

	return attachment, nil
}

// Delete removes an attachment. Permitted to the uploader or a platform
// admin. The stored object goes first; if the metadata delete then fails the
// record survives and the delete can be retried.
func (s *AttachmentService) Delete(ctx context.Context, attachmentID, actorID uint64) error {
	attachment, err := s.attachmentRepo.FindByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttachmentNotFound
		}
		return fmt.Errorf("failed to find attachment: %w", err)
	}

	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if !authz.CanDeleteAttachment(attachment, actor) {
		return ErrCannotDeleteUpload
	}

	if err := s.store.Delete(ctx, attachment.PublicID, attachment.Type); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	if err := s.attachmentRepo.Delete(attachment.ID); err != nil {
		return fmt.Errorf("failed to delete attachment metadata: %w", err)
	}

	return nil
}

// ListByUploader lists a user's uploads, newest first.
func (s *AttachmentService) ListByUploader(userID uint64, page, pageSize int) ([]models.Attachment, int64, error) {
	return s.attachmentRepo.ListByUploader(userID, page, pageSize)
}
