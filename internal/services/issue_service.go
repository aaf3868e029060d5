package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/issue-tracker-api/internal/authz"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/repository"
	"github.com/yukikurage/issue-tracker-api/internal/storage"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrIssueNotFound        = errors.New("issue not found")
	ErrIssueTitleRequired   = errors.New("title is required")
	ErrIssueTitleEmpty      = errors.New("title cannot be empty")
	ErrInvalidIssueStatus   = errors.New("invalid issue status")
	ErrInvalidIssuePriority = errors.New("invalid issue priority")
	ErrAssigneeNotMember    = errors.New("assignee must be a member of the project")
	ErrNotIssueActor        = errors.New("only the project owner, reporter or assignee can modify this issue")
	ErrCannotDeleteIssue    = errors.New("only the project owner or reporter can delete this issue")
	ErrNotAssignee          = errors.New("only the current assignee can update the issue status")
	ErrAttachmentsNotOwned  = errors.New("all attachments must exist and belong to the requesting user")
)

// IssueService handles issue business logic.
type IssueService struct {
	issueRepo      repository.IssueRepository
	projectRepo    repository.ProjectRepository
	attachmentRepo repository.AttachmentRepository
	store          storage.Storage
}

// NewIssueService creates a new IssueService.
func NewIssueService(
	issueRepo repository.IssueRepository,
	projectRepo repository.ProjectRepository,
	attachmentRepo repository.AttachmentRepository,
	store storage.Storage,
) *IssueService {
	return &IssueService{
		issueRepo:      issueRepo,
		projectRepo:    projectRepo,
		attachmentRepo: attachmentRepo,
		store:          store,
	}
}

// CreateIssueInput represents input for creating an issue.
type CreateIssueInput struct {
	ProjectID     uint64
	ReporterID    uint64
	Title         string
	Description   string
	Priority      models.IssuePriority
	AssigneeID    *uint64
	Tags          []string
	DueDate       *time.Time
	AttachmentIDs []uint64
}

// CreateIssue creates an issue under a project. The key is minted from the
// project's atomic issue counter, so concurrent creates cannot collide.
func (s *IssueService) CreateIssue(input CreateIssueInput) (*models.Issue, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrIssueTitleRequired
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidIssuePriority
	}

	project, err := s.findProject(input.ProjectID)
	if err != nil {
		return nil, err
	}

	if input.AssigneeID != nil {
		if err := s.ensureProjectMember(project.ID, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	if err := s.ensureAttachmentsOwned(input.AttachmentIDs, input.ReporterID); err != nil {
		return nil, err
	}

	seq, err := s.projectRepo.NextIssueSeq(project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate issue number: %w", err)
	}

	issue := &models.Issue{
		Key:         fmt.Sprintf("%s-%d", project.Key, seq),
		Title:       input.Title,
		Description: input.Description,
		Status:      models.IssueStatusTodo,
		Priority:    priority,
		ReporterID:  input.ReporterID,
		AssigneeID:  input.AssigneeID,
		ProjectID:   project.ID,
		Tags:        datatypes.NewJSONSlice(input.Tags),
		DueDate:     input.DueDate,
	}

	if err := s.issueRepo.Create(issue); err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}

	if len(input.AttachmentIDs) > 0 {
		if err := s.attachmentRepo.LinkToIssue(input.AttachmentIDs, issue.ID); err != nil {
			return nil, fmt.Errorf("failed to link attachments: %w", err)
		}
	}

	return s.issueRepo.FindByID(issue.ID, "Reporter", "Assignee", "Attachments")
}

// GetIssue returns an issue with related data.
func (s *IssueService) GetIssue(issueID uint64) (*models.Issue, error) {
	issue, err := s.issueRepo.FindByID(issueID, "Reporter", "Assignee", "Comments", "Attachments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}
	return issue, nil
}

// UpdateIssueInput holds partial-update fields. Pointer fields mean "leave
// unchanged" when nil; AssigneeSet and DueDateSet record whether the key was
// present at all, so an explicit null clears the field.
type UpdateIssueInput struct {
	Title       *string
	Description *string
	Status      *models.IssueStatus
	Priority    *models.IssuePriority
	Tags        *[]string
	AssigneeSet bool
	AssigneeID  *uint64
	DueDateSet  bool
	DueDate     *time.Time
}

// UpdateIssue applies a partial update. Permitted to the project owner, the
// reporter, or the current assignee.
func (s *IssueService) UpdateIssue(issueID, actorID uint64, input UpdateIssueInput) (*models.Issue, error) {
	issue, project, err := s.findIssueWithProject(issueID)
	if err != nil {
		return nil, err
	}

	if !authz.IsIssueActor(issue, project, actorID) {
		return nil, ErrNotIssueActor
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrIssueTitleEmpty
		}
		issue.Title = *input.Title
	}
	if input.Description != nil {
		issue.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidIssueStatus
		}
		issue.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidIssuePriority
		}
		issue.Priority = *input.Priority
	}
	if input.Tags != nil {
		issue.Tags = datatypes.NewJSONSlice(*input.Tags)
	}
	if input.AssigneeSet {
		if input.AssigneeID != nil {
			if err := s.ensureProjectMember(issue.ProjectID, *input.AssigneeID); err != nil {
				return nil, err
			}
		}
		issue.AssigneeID = input.AssigneeID
	}
	if input.DueDateSet {
		issue.DueDate = input.DueDate
	}

	if err := s.issueRepo.Update(issue); err != nil {
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}

	return s.issueRepo.FindByID(issue.ID, "Reporter", "Assignee", "Attachments")
}

// DeleteIssue deletes an issue and cascades to its comments and every
// attachment on the issue or those comments. Stored objects are removed
// before the metadata rows.
func (s *IssueService) DeleteIssue(ctx context.Context, issueID, actorID uint64) error {
	issue, project, err := s.findIssueWithProject(issueID)
	if err != nil {
		return err
	}

	if !authz.CanDeleteIssue(issue, project, actorID) {
		return ErrCannotDeleteIssue
	}

	attachments, err := s.attachmentRepo.ListForIssueCascade(issue.ID)
	if err != nil {
		return fmt.Errorf("failed to collect attachments: %w", err)
	}
	for i := range attachments {
		if err := s.store.Delete(ctx, attachments[i].PublicID, attachments[i].Type); err != nil {
			return fmt.Errorf("failed to delete stored object %s: %w", attachments[i].PublicID, err)
		}
	}

	if err := s.issueRepo.Delete(issue.ID); err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}

	return nil
}

// AssignIssue sets or clears the assignee. Any project member may reassign;
// the target must be a current member or nil to unassign.
func (s *IssueService) AssignIssue(issueID uint64, assigneeID *uint64) (*models.Issue, error) {
	issue, err := s.findIssue(issueID)
	if err != nil {
		return nil, err
	}

	if assigneeID != nil {
		if err := s.ensureProjectMember(issue.ProjectID, *assigneeID); err != nil {
			return nil, err
		}
	}

	issue.AssigneeID = assigneeID
	if err := s.issueRepo.Update(issue); err != nil {
		return nil, fmt.Errorf("failed to assign issue: %w", err)
	}

	return s.issueRepo.FindByID(issue.ID, "Reporter", "Assignee")
}

// UpdateStatus moves the issue to a new status. Stricter than UpdateIssue:
// only the current assignee may use this transition.
func (s *IssueService) UpdateStatus(issueID, actorID uint64, status models.IssueStatus) (*models.Issue, error) {
	if !status.Valid() {
		return nil, ErrInvalidIssueStatus
	}

	issue, err := s.findIssue(issueID)
	if err != nil {
		return nil, err
	}

	if issue.AssigneeID == nil || *issue.AssigneeID != actorID {
		return nil, ErrNotAssignee
	}

	issue.Status = status
	if err := s.issueRepo.Update(issue); err != nil {
		return nil, fmt.Errorf("failed to update issue status: %w", err)
	}

	return s.issueRepo.FindByID(issue.ID, "Reporter", "Assignee")
}

// ListByProject lists issues of a project with optional filters.
func (s *IssueService) ListByProject(projectID uint64, status *models.IssueStatus, priority *models.IssuePriority, assigneeID *uint64, page, pageSize int) ([]models.Issue, int64, error) {
	if status != nil && !status.Valid() {
		return nil, 0, ErrInvalidIssueStatus
	}
	if priority != nil && !priority.Valid() {
		return nil, 0, ErrInvalidIssuePriority
	}

	return s.issueRepo.List(repository.IssueFilter{
		ProjectID:  &projectID,
		Status:     status,
		Priority:   priority,
		AssigneeID: assigneeID,
		Page:       page,
		PageSize:   pageSize,
	})
}

// ListAssignedTo lists issues currently assigned to the user.
func (s *IssueService) ListAssignedTo(userID uint64, page, pageSize int) ([]models.Issue, int64, error) {
	return s.issueRepo.List(repository.IssueFilter{
		AssigneeID: &userID,
		Page:       page,
		PageSize:   pageSize,
	})
}

// ListReportedBy lists issues reported by the user.
func (s *IssueService) ListReportedBy(userID uint64, page, pageSize int) ([]models.Issue, int64, error) {
	return s.issueRepo.List(repository.IssueFilter{
		ReporterID: &userID,
		Page:       page,
		PageSize:   pageSize,
	})
}

func (s *IssueService) findIssue(issueID uint64) (*models.Issue, error) {
	issue, err := s.issueRepo.FindByID(issueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}
	return issue, nil
}

func (s *IssueService) findIssueWithProject(issueID uint64) (*models.Issue, *models.Project, error) {
	issue, err := s.findIssue(issueID)
	if err != nil {
		return nil, nil, err
	}

	project, err := s.findProject(issue.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return issue, project, nil
}

func (s *IssueService) findProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func (s *IssueService) ensureProjectMember(projectID, userID uint64) error {
	if _, err := s.projectRepo.FindMember(projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotMember
		}
		return fmt.Errorf("failed to check membership: %w", err)
	}
	return nil
}

// ensureAttachmentsOwned validates the all-or-nothing rule for linking
// uploads: every referenced attachment must exist and belong to the caller.
func (s *IssueService) ensureAttachmentsOwned(ids []uint64, ownerID uint64) error {
	if len(ids) == 0 {
		return nil
	}

	attachments, err := s.attachmentRepo.FindByIDs(ids)
	if err != nil {
		return fmt.Errorf("failed to load attachments: %w", err)
	}
	if len(attachments) != len(ids) {
		return ErrAttachmentsNotOwned
	}
	for i := range attachments {
		if attachments[i].UploadedByID != ownerID {
			return ErrAttachmentsNotOwned
		}
	}
	return nil
}
