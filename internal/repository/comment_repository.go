package repository

import (
	"github.com/yukikurage/issue-tracker-api/internal/database"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormCommentRepository is a GORM implementation of CommentRepository
type GormCommentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &GormCommentRepository{db: db}
}

// Create creates a comment and claims the given attachments for it within a
// single transaction.
func (r *GormCommentRepository) Create(comment *models.Comment, attachmentIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		if len(attachmentIDs) == 0 {
			return nil
		}
		return tx.Model(&models.Attachment{}).
			Where("id IN ?", attachmentIDs).
			Update("comment_id", comment.ID).Error
	})
}

// FindByID finds a comment by ID with optional preloading
func (r *GormCommentRepository) FindByID(id uint64, preload ...string) (*models.Comment, error) {
	var comment models.Comment
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByIssue lists a thread in chronological order
func (r *GormCommentRepository) ListByIssue(issueID uint64, page, pageSize int) ([]models.Comment, int64, error) {
	return r.list(r.db.Where("issue_id = ?", issueID), "comments.created_at ASC", page, pageSize)
}

// ListByAuthor lists a user's comments, newest first
func (r *GormCommentRepository) ListByAuthor(authorID uint64, page, pageSize int) ([]models.Comment, int64, error) {
	return r.list(r.db.Where("author_id = ?", authorID), "comments.created_at DESC", page, pageSize)
}

func (r *GormCommentRepository) list(query *gorm.DB, order string, page, pageSize int) ([]models.Comment, int64, error) {
	query = query.Model(&models.Comment{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	if err := query.Order(order).
		Scopes(database.Paginate(page, pageSize)).
		Preload("Author").Preload("Attachments").
		Find(&comments).Error; err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

// Update saves the comment
func (r *GormCommentRepository) Update(comment *models.Comment) error {
	return r.db.Save(comment).Error
}

// Delete removes the comment and its linked attachment rows within a
// transaction.
func (r *GormCommentRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Comment{}, id).Error
	})
}
