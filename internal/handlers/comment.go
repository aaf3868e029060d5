package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/issue-tracker-api/internal/errors"
	"github.com/yukikurage/issue-tracker-api/internal/middleware"
	"github.com/yukikurage/issue-tracker-api/internal/services"
	"github.com/yukikurage/issue-tracker-api/internal/utils"
)

// CommentHandler handles comment endpoints.
type CommentHandler struct {
	commentService *services.CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// CreateComment handles POST /api/issues/:id/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	issue, ok := middleware.GetIssue(c)
	if !ok {
		apierrors.InternalError(c, "Issue not loaded")
		return
	}

	userID, _ := middleware.GetUserID(c)

	var req struct {
		Content       string   `json:"content" binding:"required"`
		AttachmentIDs []uint64 `json:"attachment_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	comment, err := h.commentService.CreateComment(services.CreateCommentInput{
		IssueID:       issue.ID,
		AuthorID:      userID,
		Content:       req.Content,
		AttachmentIDs: req.AttachmentIDs,
	})
	if err != nil {
		respondCommentError(c, err)
		return
	}

	respondData(c, http.StatusCreated, dto.ToCommentDTO(*comment))
}

// ListIssueComments handles GET /api/issues/:id/comments
func (h *CommentHandler) ListIssueComments(c *gin.Context) {
	issue, ok := middleware.GetIssue(c)
	if !ok {
		apierrors.InternalError(c, "Issue not loaded")
		return
	}

	params := utils.GetPaginationParams(c)
	comments, total, err := h.commentService.ListByIssue(issue.ID, params.Page, params.Limit)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	respondPage(c, dto.ToCommentDTOs(comments), len(comments), total, params)
}

// GetComment handles GET /api/comments/:id
func (h *CommentHandler) GetComment(c *gin.Context) {
	comment, ok := middleware.GetComment(c)
	if !ok {
		apierrors.InternalError(c, "Comment not loaded")
		return
	}

	full, err := h.commentService.GetComment(comment.ID)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToCommentDTO(*full))
}

// UpdateComment handles PUT /api/comments/:id
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	comment, ok := middleware.GetComment(c)
	if !ok {
		apierrors.InternalError(c, "Comment not loaded")
		return
	}

	userID, _ := middleware.GetUserID(c)

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	updated, err := h.commentService.UpdateComment(comment.ID, userID, req.Content)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToCommentDTO(*updated))
}

// DeleteComment handles DELETE /api/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	comment, ok := middleware.GetComment(c)
	if !ok {
		apierrors.InternalError(c, "Comment not loaded")
		return
	}

	userID, _ := middleware.GetUserID(c)

	if err := h.commentService.DeleteComment(c.Request.Context(), comment.ID, userID); err != nil {
		respondCommentError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Comment deleted")
}

// MyComments handles GET /api/comments/my-comments
func (h *CommentHandler) MyComments(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	comments, total, err := h.commentService.ListByAuthor(userID, params.Page, params.Limit)
	if err != nil {
		respondCommentError(c, err)
		return
	}

	respondPage(c, dto.ToCommentDTOs(comments), len(comments), total, params)
}

func respondCommentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCommentNotFound):
		apierrors.NotFound(c, "Comment not found")
	case errors.Is(err, services.ErrIssueNotFound):
		apierrors.NotFound(c, "Issue not found")
	case errors.Is(err, services.ErrCommentContentEmpty):
		apierrors.BadRequest(c, "Comment content cannot be empty")
	case errors.Is(err, services.ErrAttachmentsNotOwned):
		apierrors.BadRequest(c, "All attachments must exist and belong to you")
	case errors.Is(err, services.ErrNotCommentActor):
		apierrors.Forbidden(c, "Only the project owner or comment author can modify this comment")
	default:
		apierrors.InternalError(c, "")
	}
}
