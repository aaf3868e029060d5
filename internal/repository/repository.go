package repository

import (
	"github.com/yukikurage/issue-tracker-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByResetToken finds a user holding the given password-reset token
	FindByResetToken(token string) (*models.User, error)

	// Update saves the user
	Update(user *models.User) error
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// CreateWithOwner creates a project and the owner's membership row
	// within a single transaction.
	CreateWithOwner(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// KeyExists reports whether a project key is taken, excluding the
	// given project ID (0 to exclude none).
	KeyExists(key string, excludeID uint64) (bool, error)

	// Update saves the project
	Update(project *models.Project) error

	// Delete removes the project and cascades to its issues, their
	// comments, and all attachments linked to either.
	Delete(id uint64) error

	// NextIssueSeq atomically increments and returns the project's issue
	// counter.
	NextIssueSeq(projectID uint64) (uint64, error)

	// AddMember adds a member, ignoring an existing membership row.
	AddMember(member *models.ProjectMember) error

	// RemoveMember removes a member from a project
	RemoveMember(projectID, userID uint64) error

	// FindMember finds a specific membership row
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)

	// ListMembers lists all members of a project with users preloaded
	ListMembers(projectID uint64) ([]models.ProjectMember, error)

	// ListByUserID lists projects the user belongs to, paginated
	ListByUserID(userID uint64, page, pageSize int) ([]models.Project, int64, error)

	// CreateInvite persists a pending invite
	CreateInvite(invite *models.ProjectInvite) error

	// DeleteInvite removes a pending invite
	DeleteInvite(id uint64) error

	// FindInviteByToken finds a pending invite by token with the project
	// preloaded
	FindInviteByToken(token string) (*models.ProjectInvite, error)

	// FindPendingInvite finds a pending invite for the email on the project
	FindPendingInvite(projectID uint64, email string) (*models.ProjectInvite, error)
}

// IssueFilter holds filtering options for listing issues
type IssueFilter struct {
	ProjectID  *uint64
	ReporterID *uint64
	AssigneeID *uint64
	Status     *models.IssueStatus
	Priority   *models.IssuePriority
	Page       int
	PageSize   int
}

// IssueRepository defines the interface for issue data access
type IssueRepository interface {
	// Create creates a new issue
	Create(issue *models.Issue) error

	// FindByID finds an issue by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Issue, error)

	// List retrieves issues with filtering and pagination
	List(filter IssueFilter) ([]models.Issue, int64, error)

	// ListForStats loads status and priority for every issue of a project
	ListForStats(projectID uint64) ([]models.Issue, error)

	// Update saves the issue
	Update(issue *models.Issue) error

	// Delete removes the issue, its comments, and the attachment rows
	// linked to the issue or those comments, within a transaction.
	Delete(id uint64) error
}

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	// Create creates a comment and links the given attachments to it
	// within a single transaction.
	Create(comment *models.Comment, attachmentIDs []uint64) error

	// FindByID finds a comment by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Comment, error)

	// ListByIssue lists a thread in chronological order
	ListByIssue(issueID uint64, page, pageSize int) ([]models.Comment, int64, error)

	// ListByAuthor lists a user's comments, newest first
	ListByAuthor(authorID uint64, page, pageSize int) ([]models.Comment, int64, error)

	// Update saves the comment
	Update(comment *models.Comment) error

	// Delete removes the comment and its linked attachment rows within a
	// transaction.
	Delete(id uint64) error
}

// AttachmentRepository defines the interface for attachment metadata access
type AttachmentRepository interface {
	// Create persists an attachment record
	Create(attachment *models.Attachment) error

	// FindByID finds an attachment by ID
	FindByID(id uint64) (*models.Attachment, error)

	// FindByIDs finds all attachments among the given IDs
	FindByIDs(ids []uint64) ([]models.Attachment, error)

	// ListByUploader lists a user's attachments, newest first
	ListByUploader(userID uint64, page, pageSize int) ([]models.Attachment, int64, error)

	// LinkToIssue claims the given attachments for an issue
	LinkToIssue(ids []uint64, issueID uint64) error

	// ListForIssueCascade lists attachments removed by deleting the issue:
	// those on the issue itself and those on its comments.
	ListForIssueCascade(issueID uint64) ([]models.Attachment, error)

	// ListForProjectCascade lists attachments removed by deleting the
	// project.
	ListForProjectCascade(projectID uint64) ([]models.Attachment, error)

	// Delete removes an attachment record
	Delete(id uint64) error
}
