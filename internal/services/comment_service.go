package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/issue-tracker-api/internal/authz"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/repository"
	"github.com/yukikurage/issue-tracker-api/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound     = errors.New("comment not found")
	ErrCommentContentEmpty = errors.New("comment content cannot be empty")
	ErrNotCommentActor     = errors.New("only the project owner or comment author can modify this comment")
)

// CommentService handles comment business logic.
type CommentService struct {
	commentRepo    repository.CommentRepository
	issueRepo      repository.IssueRepository
	projectRepo    repository.ProjectRepository
	attachmentRepo repository.AttachmentRepository
	store          storage.Storage
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	issueRepo repository.IssueRepository,
	projectRepo repository.ProjectRepository,
	attachmentRepo repository.AttachmentRepository,
	store storage.Storage,
) *CommentService {
	return &CommentService{
		commentRepo:    commentRepo,
		issueRepo:      issueRepo,
		projectRepo:    projectRepo,
		attachmentRepo: attachmentRepo,
		store:          store,
	}
}

// CreateCommentInput represents input for creating a comment.
type CreateCommentInput struct {
	IssueID       uint64
	AuthorID      uint64
	Content       string
	AttachmentIDs []uint64
}

// CreateComment adds a comment to an issue. Supplied attachment IDs must all
// exist and belong to the author; the validation is all-or-nothing.
func (s *CommentService) CreateComment(input CreateCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrCommentContentEmpty
	}

	if _, err := s.issueRepo.FindByID(input.IssueID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to find issue: %w", err)
	}

	if err := s.ensureAttachmentsOwned(input.AttachmentIDs, input.AuthorID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content:  input.Content,
		AuthorID: input.AuthorID,
		IssueID:  input.IssueID,
	}
	if err := s.commentRepo.Create(comment, input.AttachmentIDs); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	return s.commentRepo.FindByID(comment.ID, "Author", "Attachments")
}

// GetComment returns a comment with author and attachments.
func (s *CommentService) GetComment(commentID uint64) (*models.Comment, error) {
	comment, err := s.commentRepo.FindByID(commentID, "Author", "Attachments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return comment, nil
}

// UpdateComment edits a comment's content. Permitted to the comment author
// or the project owner.
func (s *CommentService) UpdateComment(commentID, actorID uint64, content string) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrCommentContentEmpty
	}

	comment, project, err := s.findCommentWithProject(commentID)
	if err != nil {
		return nil, err
	}

	if !authz.IsCommentActor(comment, project, actorID) {
		return nil, ErrNotCommentActor
	}

	comment.Content = content
	if err := s.commentRepo.Update(comment); err != nil {
		return nil, fmt.Errorf("failed to update comment: %w", err)
	}

	return s.commentRepo.FindByID(comment.ID, "Author", "Attachments")
}

// DeleteComment removes a comment and its linked attachments, stored objects
// first.
func (s *CommentService) DeleteComment(ctx context.Context, commentID, actorID uint64) error {
	comment, project, err := s.findCommentWithProject(commentID)
	if err != nil {
		return err
	}

	if !authz.IsCommentActor(comment, project, actorID) {
		return ErrNotCommentActor
	}

	for i := range comment.Attachments {
		att := &comment.Attachments[i]
		if err := s.store.Delete(ctx, att.PublicID, att.Type); err != nil {
			return fmt.Errorf("failed to delete stored object %s: %w", att.PublicID, err)
		}
	}

	if err := s.commentRepo.Delete(comment.ID); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	return nil
}

// ListByIssue lists a thread in chronological order.
func (s *CommentService) ListByIssue(issueID uint64, page, pageSize int) ([]models.Comment, int64, error) {
	return s.commentRepo.ListByIssue(issueID, page, pageSize)
}

// ListByAuthor lists a user's comments, newest first.
func (s *CommentService) ListByAuthor(authorID uint64, page, pageSize int) ([]models.Comment, int64, error) {
	return s.commentRepo.ListByAuthor(authorID, page, pageSize)
}

func (s *CommentService) findCommentWithProject(commentID uint64) (*models.Comment, *models.Project, error) {
	comment, err := s.commentRepo.FindByID(commentID, "Attachments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCommentNotFound
		}
		return nil, nil, fmt.Errorf("failed to find comment: %w", err)
	}

	issue, err := s.issueRepo.FindByID(comment.IssueID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find issue: %w", err)
	}

	project, err := s.projectRepo.FindByID(issue.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find project: %w", err)
	}

	return comment, project, nil
}

func (s *CommentService) ensureAttachmentsOwned(ids []uint64, ownerID uint64) error {
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
