package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/yukikurage/issue-tracker-api/internal/constants"
	"github.com/yukikurage/issue-tracker-api/internal/mail"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/repository"
	"github.com/yukikurage/issue-tracker-api/internal/storage"
	"github.com/yukikurage/issue-tracker-api/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrInvalidProjectName  = errors.New("project name cannot be empty")
	ErrInvalidProjectKey   = errors.New("project key must be 2-10 letters")
	ErrProjectKeyTaken     = errors.New("project key already in use")
	ErrAlreadyMember       = errors.New("user is already a member of this project")
	ErrInvitePending       = errors.New("an invitation for this email is already pending")
	ErrInvalidInviteToken  = errors.New("invalid or expired invitation token")
	ErrInviteEmailMismatch = errors.New("invitation was issued for a different email address")
	ErrCannotRemoveOwner   = errors.New("the project owner cannot be removed")
	ErrMemberNotFound      = errors.New("project member not found")
)

var projectKeyPattern = regexp.MustCompile(`^[A-Z]{2,10}$`)

// ProjectService provides business logic for projects, membership and
// invitations.
type ProjectService struct {
	projectRepo    repository.ProjectRepository
	userRepo       repository.UserRepository
	issueRepo      repository.IssueRepository
	attachmentRepo repository.AttachmentRepository
	store          storage.Storage
	mailer         mail.Sender
	frontendURL    string
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	issueRepo repository.IssueRepository,
	attachmentRepo repository.AttachmentRepository,
	store storage.Storage,
	mailer mail.Sender,
	frontendURL string,
) *ProjectService {
	return &ProjectService{
		projectRepo:    projectRepo,
		userRepo:       userRepo,
		issueRepo:      issueRepo,
		attachmentRepo: attachmentRepo,
		store:          store,
		mailer:         mailer,
		frontendURL:    frontendURL,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	Key         string
	OwnerID     uint64
	Settings    datatypes.JSONMap
}

// CreateProject creates a project whose creator becomes owner and member.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidProjectName
	}

	key := strings.ToUpper(strings.TrimSpace(input.Key))
	if !projectKeyPattern.MatchString(key) {
		return nil, ErrInvalidProjectKey
	}

	taken, err := s.projectRepo.KeyExists(key, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check project key: %w", err)
	}
	if taken {
		return nil, ErrProjectKeyTaken
	}

	project := &models.Project{
		Name:        input.Name,
		Description: input.Description,
		Key:         key,
		OwnerID:     input.OwnerID,
		Settings:    input.Settings,
	}

	if err := s.projectRepo.CreateWithOwner(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjects returns projects the user belongs to, paginated.
func (s *ProjectService) ListProjects(userID uint64, page, pageSize int) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.ListByUserID(userID, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetProjectMembers returns all members of a project.
func (s *ProjectService) GetProjectMembers(projectID uint64) ([]models.ProjectMember, error) {
	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project members: %w", err)
	}
	return members, nil
}

// UpdateProjectInput holds project fields; nil means "leave unchanged".
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Key         *string
	Settings    datatypes.JSONMap
}

// UpdateProject updates project fields. A key change re-checks uniqueness
// excluding the project itself.
func (s *ProjectService) UpdateProject(projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = *input.Name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Key != nil {
		key := strings.ToUpper(strings.TrimSpace(*input.Key))
		if !projectKeyPattern.MatchString(key) {
			return nil, ErrInvalidProjectKey
		}
		if key != project.Key {
			taken, err := s.projectRepo.KeyExists(key, project.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check project key: %w", err)
			}
			if taken {
				return nil, ErrProjectKeyTaken
			}
			project.Key = key
		}
	}
	if input.Settings != nil {
		project.Settings = input.Settings
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project and everything under it: issues, their
// comments, and all attachments with their stored objects. Stored objects go
// first so a storage failure leaves the metadata intact and the delete
// retryable.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID uint64) error {
	if _, err := s.findProject(projectID); err != nil {
		return err
	}

	attachments, err := s.attachmentRepo.ListForProjectCascade(projectID)
	if err != nil {
		return fmt.Errorf("failed to collect attachments: %w", err)
	}
	for i := range attachments {
		if err := s.store.Delete(ctx, attachments[i].PublicID, attachments[i].Type); err != nil {
			return fmt.Errorf("failed to delete stored object %s: %w", attachments[i].PublicID, err)
		}
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// InviteMemberInput represents parameters for inviting a user by email.
type InviteMemberInput struct {
	ProjectID uint64
	ActorID   uint64
	Email     string
	Role      models.UserRole
}

// InviteMember creates a pending invite and mails the accept link. A failed
// send removes the invite again and surfaces the error.
func (s *ProjectService) InviteMember(ctx context.Context, input InviteMemberInput) (*models.ProjectInvite, error) {
	project, err := s.findProject(input.ProjectID)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleDeveloper
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	// Reject if the email already belongs to a member.
	if user, err := s.userRepo.FindByEmail(input.Email); err == nil {
		if _, err := s.projectRepo.FindMember(project.ID, user.ID); err == nil {
			return nil, ErrAlreadyMember
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check membership: %w", err)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	if _, err := s.projectRepo.FindPendingInvite(project.ID, input.Email); err == nil {
		return nil, ErrInvitePending
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check pending invites: %w", err)
	}

	token, err := utils.GenerateInviteToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate invite token: %w", err)
	}

	invite := &models.ProjectInvite{
		ProjectID:   project.ID,
		Email:       input.Email,
		Role:        role,
		InvitedByID: input.ActorID,
		Token:       token,
		ExpiresAt:   time.Now().Add(constants.InviteTokenTTL),
	}
	if err := s.projectRepo.CreateInvite(invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	inviter, err := s.userRepo.FindByID(input.ActorID)
	if err != nil {
		return nil, fmt.Errorf("failed to find inviter: %w", err)
	}

	subject, body := mail.InvitationBody(inviter.Name, project.Name, s.frontendURL, token)
	if err := s.mailer.Send(ctx, invite.Email, subject, body); err != nil {
		if delErr := s.projectRepo.DeleteInvite(invite.ID); delErr != nil {
			return nil, fmt.Errorf("failed to roll back invite after mail failure: %w", delErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrMailDeliveryFailed, err)
	}

	return invite, nil
}

// AcceptInvitation redeems an invite token for the given user. A mismatched
// email leaves the invite intact so the intended recipient can still redeem
// it; a successful accept consumes the invite.
func (s *ProjectService) AcceptInvitation(userID uint64, token string) (*models.Project, error) {
	invite, err := s.projectRepo.FindInviteByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteToken
		}
		return nil, fmt.Errorf("failed to find invite: %w", err)
	}
	if invite.Expired(time.Now()) {
		return nil, ErrInvalidInviteToken
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user.Email != invite.Email {
		return nil, ErrInviteEmailMismatch
	}

	member := &models.ProjectMember{
		ProjectID: invite.ProjectID,
		UserID:    user.ID,
		Role:      invite.Role,
		JoinedAt:  time.Now(),
	}
	if err := s.projectRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	if err := s.projectRepo.DeleteInvite(invite.ID); err != nil {
		return nil, fmt.Errorf("failed to consume invite: %w", err)
	}

	return &invite.Project, nil
}

// RemoveMember removes a member from the project. The owner cannot be
// removed; that would break the owner-is-a-member invariant.
func (s *ProjectService) RemoveMember(projectID, targetID uint64) error {
	project, err := s.findProject(projectID)
	if err != nil {
		return err
	}
	if targetID == project.OwnerID {
		return ErrCannotRemoveOwner
	}

	if _, err := s.projectRepo.FindMember(projectID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find project member: %w", err)
	}

	if err := s.projectRepo.RemoveMember(projectID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// ProjectStats aggregates issue counts for a project.
type ProjectStats struct {
	TotalIssues  int64                        `json:"total_issues"`
	ByStatus     map[models.IssueStatus]int   `json:"by_status"`
	ByPriority   map[models.IssuePriority]int `json:"by_priority"`
	HighPriority int                          `json:"high_priority"`
}

// GetProjectStats walks the full issue set of a project and rolls it up by
// status and priority. Unpaginated, O(issues).
func (s *ProjectService) GetProjectStats(projectID uint64) (*ProjectStats, error) {
	if _, err := s.findProject(projectID); err != nil {
		return nil, err
	}

	issues, err := s.issueRepo.ListForStats(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load issues: %w", err)
	}

	stats := &ProjectStats{
		TotalIssues: int64(len(issues)),
		ByStatus: lo.CountValuesBy(issues, func(i models.Issue) models.IssueStatus {
			return i.Status
		}),
		ByPriority: lo.CountValuesBy(issues, func(i models.Issue) models.IssuePriority {
			return i.Priority
		}),
	}
	stats.HighPriority = lo.CountBy(issues, func(i models.Issue) bool {
		return i.Priority == models.PriorityHigh || i.Priority == models.PriorityUrgent
	})

	return stats, nil
}

func (s *ProjectService) findProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}
