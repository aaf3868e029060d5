package repository

import (
	"github.com/yukikurage/issue-tracker-api/internal/database"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormAttachmentRepository is a GORM implementation of AttachmentRepository
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// Create persists an attachment record
func (r *GormAttachmentRepository) Create(attachment *models.Attachment) error {
	return r.db.Create(attachment).Error
}

// FindByID finds an attachment by ID
func (r *GormAttachmentRepository) FindByID(id uint64) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := r.db.First(&attachment, id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// FindByIDs finds all attachments among the given IDs
func (r *GormAttachmentRepository) FindByIDs(ids []uint64) ([]models.Attachment, error) {
	var attachments []models.Attachment
	if len(ids) == 0 {
		return attachments, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// ListByUploader lists a user's attachments, newest first
func (r *GormAttachmentRepository) ListByUploader(userID uint64, page, pageSize int) ([]models.Attachment, int64, error) {
	query := r.db.Model(&models.Attachment{}).Where("uploaded_by_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attachments []models.Attachment
	if err := query.Order("attachments.created_at DESC").
		Scopes(database.Paginate(page, pageSize)).
		Find(&attachments).Error; err != nil {
		return nil, 0, err
	}

	return attachments, total, nil
}

// LinkToIssue claims the given attachments for an issue
func (r *GormAttachmentRepository) LinkToIssue(ids []uint64, issueID uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.Model(&models.Attachment{}).
		Where("id IN ?", ids).
		Update("issue_id", issueID).Error
}

// ListForIssueCascade lists attachments removed by deleting the issue
func (r *GormAttachmentRepository) ListForIssueCascade(issueID uint64) ([]models.Attachment, error) {
	commentIDs := r.db.Model(&models.Comment{}).Select("id").Where("issue_id = ?", issueID)

	var attachments []models.Attachment
	if err := r.db.Where("issue_id = ? OR comment_id IN (?)", issueID, commentIDs).
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// ListForProjectCascade lists attachments removed by deleting the project
func (r *GormAttachmentRepository) ListForProjectCascade(projectID uint64) ([]models.Attachment, error) {
	issueIDs := r.db.Model(&models.Issue{}).Select("id").Where("project_id = ?", projectID)
	commentIDs := r.db.Model(&models.Comment{}).Select("id").Where("issue_id IN (?)", issueIDs)

	var attachments []models.Attachment
	if err := r.db.Where("issue_id IN (?) OR comment_id IN (?)", issueIDs, commentIDs).
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// Delete removes an attachment record
func (r *GormAttachmentRepository) Delete(id uint64) error {
	return r.db.Delete(&models.Attachment{}, id).Error
}
