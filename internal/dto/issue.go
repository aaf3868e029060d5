package dto

import (
	"time"

	"github.com/yukikurage/issue-tracker-api/internal/models"
)

// IssueDTO represents an issue in API responses
type IssueDTO struct {
	ID          uint64               `json:"id"`
	Key         string               `json:"key"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      models.IssueStatus   `json:"status"`
	Priority    models.IssuePriority `json:"priority"`
	ReporterID  uint64               `json:"reporter_id"`
	AssigneeID  *uint64              `json:"assignee_id"`
	ProjectID   uint64               `json:"project_id"`
	Tags        []string             `json:"tags"`
	DueDate     *time.Time           `json:"due_date"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	Reporter    *UserDTO             `json:"reporter,omitempty"`
	Assignee    *UserDTO             `json:"assignee,omitempty"`
	Comments    []CommentDTO         `json:"comments,omitempty"`
	Attachments []AttachmentDTO      `json:"attachments,omitempty"`
}

// ToIssueDTO converts an Issue model to IssueDTO
func ToIssueDTO(issue models.Issue) IssueDTO {
	dto := IssueDTO{
		ID:          issue.ID,
		Key:         issue.Key,
		Title:       issue.Title,
		Description: issue.Description,
		Status:      issue.Status,
		Priority:    issue.Priority,
		ReporterID:  issue.ReporterID,
		AssigneeID:  issue.AssigneeID,
		ProjectID:   issue.ProjectID,
		Tags:        []string(issue.Tags),
		DueDate:     issue.DueDate,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
	}

	if dto.Tags == nil {
		dto.Tags = []string{}
	}

	// Include reporter if preloaded
	if issue.Reporter.ID != 0 {
		reporter := ToUserDTO(issue.Reporter)
		dto.Reporter = &reporter
	}

	// Include assignee if preloaded
	if issue.Assignee != nil && issue.Assignee.ID != 0 {
		assignee := ToUserDTO(*issue.Assignee)
		dto.Assignee = &assignee
	}

	if len(issue.Comments) > 0 {
		dto.Comments = make([]CommentDTO, len(issue.Comments))
		for i, comment := range issue.Comments {
			dto.Comments[i] = ToCommentDTO(comment)
		}
	}

	if len(issue.Attachments) > 0 {
		dto.Attachments = make([]AttachmentDTO, len(issue.Attachments))
		for i, attachment := range issue.Attachments {
			dto.Attachments[i] = ToAttachmentDTO(attachment)
		}
	}

	return dto
}

// ToIssueDTOs converts a slice of issues
func ToIssueDTOs(issues []models.Issue) []IssueDTO {
	dtos := make([]IssueDTO, len(issues))
	for i, issue := range issues {
		dtos[i] = ToIssueDTO(issue)
	}
	return dtos
}
