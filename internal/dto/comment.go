package dto

import (
	"time"

	"github.com/yukikurage/issue-tracker-api/internal/models"
)

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID          uint64          `json:"id"`
	Content     string          `json:"content"`
	AuthorID    uint64          `json:"author_id"`
	IssueID     uint64          `json:"issue_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Author      *UserDTO        `json:"author,omitempty"`
	Attachments []AttachmentDTO `json:"attachments,omitempty"`
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	dto := CommentDTO{
		ID:        comment.ID,
		Content:   comment.Content,
		AuthorID:  comment.AuthorID,
		IssueID:   comment.IssueID,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}

	// Include author if preloaded
	if comment.Author.ID != 0 {
		author := ToUserDTO(comment.Author)
		dto.Author = &author
	}

	if len(comment.Attachments) > 0 {
		dto.Attachments = make([]AttachmentDTO, len(comment.Attachments))
		for i, attachment := range comment.Attachments {
			dto.Attachments[i] = ToAttachmentDTO(attachment)
		}
	}

	return dto
}

// ToCommentDTOs converts a slice of comments
func ToCommentDTOs(comments []models.Comment) []CommentDTO {
	dtos := make([]CommentDTO, len(comments))
	for i, comment := range comments {
		dtos[i] = ToCommentDTO(comment)
	}
	return dtos
}
