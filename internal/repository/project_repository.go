package repository

import (
	"github.com/yukikurage/issue-tracker-api/internal/database"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithOwner creates the project and the owner's membership atomically,
// so the owner-is-a-member invariant holds from the first commit.
func (r *GormProjectRepository) CreateWithOwner(project *models.Project) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return err
		}

		member := &models.ProjectMember{
			ProjectID: project.ID,
			UserID:    project.OwnerID,
			Role:      models.RoleManager,
			JoinedAt:  project.CreatedAt,
		}
		return tx.Create(member).Error
	})
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db
	for _, p := range preload {
		query = query.Preload(p)
	}
	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// KeyExists reports whether a project key is taken, excluding excludeID.
func (r *GormProjectRepository) KeyExists(key string, excludeID uint64) (bool, error) {
	var count int64
	// Qualified to sidestep KEY being reserved in MySQL.
	query := r.db.Model(&models.Project{}).Where("projects.key = ?", key)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update saves the project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete removes the project and all dependent rows in one transaction:
// attachments hanging off the project's issues or their comments, the
// comments, the issues, pending invites, memberships, and finally the
// project itself.
func (r *GormProjectRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		issueIDs := tx.Model(&models.Issue{}).Select("id").Where("project_id = ?", id)
		commentIDs := tx.Model(&models.Comment{}).Select("id").Where("issue_id IN (?)", issueIDs)

		if err := tx.Where("issue_id IN (?) OR comment_id IN (?)", issueIDs, commentIDs).
			Delete(&models.Attachment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("issue_id IN (?)", issueIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.Issue{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectInvite{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Project{}, id).Error
	})
}

// NextIssueSeq atomically increments and returns the project's issue counter.
func (r *GormProjectRepository) NextIssueSeq(projectID uint64) (uint64, error) {
	var seq uint64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Project{}).Where("id = ?", projectID).
			UpdateColumn("issue_seq", gorm.Expr("issue_seq + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		var project models.Project
		if err := tx.Select("issue_seq").First(&project, projectID).Error; err != nil {
			return err
		}
		seq = project.IssueSeq
		return nil
	})
	return seq, err
}

// AddMember adds a member, ignoring an already existing membership row so
// duplicate accepts stay a no-op.
func (r *GormProjectRepository) AddMember(member *models.ProjectMember) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(member).Error
}

// RemoveMember removes a member from a project
func (r *GormProjectRepository) RemoveMember(projectID, userID uint64) error {
	return r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{}).Error
}

// FindMember finds a specific membership row
func (r *GormProjectRepository) FindMember(projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a project with users preloaded
func (r *GormProjectRepository) ListMembers(projectID uint64) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.Preload("User").
		Where("project_id = ?", projectID).
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListByUserID lists projects the user belongs to, paginated
func (r *GormProjectRepository) ListByUserID(userID uint64, page, pageSize int) ([]models.Project, int64, error) {
	membershipSubQuery := r.db.Model(&models.ProjectMember{}).
		Select("project_id").
		Where("user_id = ?", userID)

	query := r.db.Model(&models.Project{}).Where("id IN (?)", membershipSubQuery)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	if err := query.Preload("Owner").
		Order("projects.created_at DESC").
		Scopes(database.Paginate(page, pageSize)).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// CreateInvite persists a pending invite
func (r *GormProjectRepository) CreateInvite(invite *models.ProjectInvite) error {
	return r.db.Create(invite).Error
}

// DeleteInvite removes a pending invite
func (r *GormProjectRepository) DeleteInvite(id uint64) error {
	return r.db.Delete(&models.ProjectInvite{}, id).Error
}

// FindInviteByToken finds a pending invite by token with the project preloaded
func (r *GormProjectRepository) FindInviteByToken(token string) (*models.ProjectInvite, error) {
	var invite models.ProjectInvite
	if err := r.db.Preload("Project").
		Where("token = ?", token).
		First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// FindPendingInvite finds a pending invite for the email on the project
func (r *GormProjectRepository) FindPendingInvite(projectID uint64, email string) (*models.ProjectInvite, error) {
	var invite models.ProjectInvite
	if err := r.db.Where("project_id = ? AND email = ?", projectID, email).
		First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}
