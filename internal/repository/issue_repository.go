package repository

import (
	"github.com/yukikurage/issue-tracker-api/internal/database"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormIssueRepository is a GORM implementation of IssueRepository
type GormIssueRepository struct {
	db *gorm.DB
}

// NewIssueRepository creates a new IssueRepository
func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &GormIssueRepository{db: db}
}

// Create creates a new issue
func (r *GormIssueRepository) Create(issue *models.Issue) error {
	return r.db.Create(issue).Error
}

// FindByID finds an issue by ID with optional preloading
func (r *GormIssueRepository) FindByID(id uint64, preload ...string) (*models.Issue, error) {
	var issue models.Issue
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&issue, id).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

// List retrieves issues with filtering and pagination
func (r *GormIssueRepository) List(filter IssueFilter) ([]models.Issue, int64, error) {
	query := r.db.Model(&models.Issue{})

	if filter.ProjectID != nil {
		query = query.Where("issues.project_id = ?", *filter.ProjectID)
	}
	if filter.ReporterID != nil {
		query = query.Where("issues.reporter_id = ?", *filter.ReporterID)
	}
	if filter.AssigneeID != nil {
		query = query.Where("issues.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Status != nil {
		query = query.Where("issues.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("issues.priority = ?", *filter.Priority)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var issues []models.Issue
	if err := query.Order("issues.created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize)).
		Preload("Reporter").Preload("Assignee").
		Find(&issues).Error; err != nil {
		return nil, 0, err
	}

	return issues, total, nil
}

// ListForStats loads only status and priority for every issue of a project.
// Unpaginated on purpose: the stats roll-up walks the full issue set.
func (r *GormIssueRepository) ListForStats(projectID uint64) ([]models.Issue, error) {
	var issues []models.Issue
	if err := r.db.Select("id", "status", "priority").
		Where("project_id = ?", projectID).
		Find(&issues).Error; err != nil {
		return nil, err
	}
	return issues, nil
}

// Update saves the issue
func (r *GormIssueRepository) Update(issue *models.Issue) error {
	return r.db.Save(issue).Error
}

// Delete removes the issue, its comments, and attachment rows linked to the
// issue or those comments, within one transaction.
func (r *GormIssueRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("issue_id = ?", id)

		if err := tx.Where("issue_id = ? OR comment_id IN (?)", id, commentIDs).
			Delete(&models.Attachment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("issue_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Issue{}, id).Error
	})
}
