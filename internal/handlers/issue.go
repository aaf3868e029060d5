package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/issue-tracker-api/internal/errors"
	"github.com/yukikurage/issue-tracker-api/internal/middleware"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/services"
	"github.com/yukikurage/issue-tracker-api/internal/utils"
)

// IssueHandler handles issue endpoints.
type IssueHandler struct {
	issueService *services.IssueService
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(issueService *services.IssueService) *IssueHandler {
	return &IssueHandler{issueService: issueService}
}

// CreateIssue handles POST /api/projects/:id/issues
func (h *IssueHandler) CreateIssue(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	userID, _ := middleware.GetUserID(c)

	var req struct {
		Title         string               `json:"title" binding:"required"`
		Description   string               `json:"description"`
		Priority      models.IssuePriority `json:"priority"`
		AssigneeID    *uint64              `json:"assignee_id"`
		Tags          []string             `json:"tags"`
		DueDate       *time.Time           `json:"due_date"`
		AttachmentIDs []uint64             `json:"attachment_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	issue, err := h.issueService.CreateIssue(services.CreateIssueInput{
		ProjectID:     project.ID,
		ReporterID:    userID,
		Title:         req.Title,
		Description:   req.Description,
		Priority:      req.Priority,
		AssigneeID:    req.AssigneeID,
		Tags:          req.Tags,
		DueDate:       req.DueDate,
		AttachmentIDs: req.AttachmentIDs,
	})
	if err != nil {
		respondIssueError(c, err)
		return
	}

	respondData(c, http.StatusCreated, dto.ToIssueDTO(*issue))
}

// ListProjectIssues handles GET /api/projects/:id/issues
func (h *IssueHandler) ListProjectIssues(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	var status *models.IssueStatus
	if s := c.Query("status"); s != "" {
		v := models.IssueStatus(s)
		status = &v
	}
	var priority *models.IssuePriority
	if p := c.Query("priority"); p != "" {
		v := models.IssuePriority(p)
		priority = &v
	}
	var assigneeID *uint64
	if a := c.Query("assignee_id"); a != "" {
		id, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assignee ID")
			return
		}
		assigneeID = &id
	}

	params := utils.GetPaginationParams(c)
	issues, total, err := h.issueService.ListByProject(project.ID, status, priority, assigneeID, params.Page, params.Limit)
	if err != nil {
		respondIssueError(c, err)
		return
	}

	respondPage(c, dto.ToIssueDTOs(issues), len(issues), total, params)
}

// GetIssue handles GET /api/issues/:id
func (h *IssueHandler) GetIssue(c *gin.Context) {
	issue, ok := middleware.GetIssue(c)
	if !ok {
		apierrors.InternalError(c, "Issue not loaded")
		return
	}

	// Reload with related data; the middleware loads the bare row.
	full, err := h.issueService.GetIssue(issue.ID)
	if err != nil {
		respondIssueError(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToIssueDTO(*full))
}

// UpdateIssue handles PUT /api/issues/:id. Fields absent from the body are
// left unchanged; assignee_id and due_date distinguish "absent" from an
// explicit null, which clears them.
func (h *IssueHandler) UpdateIssue(c *gin.Context) {
	issue, ok := middleware.GetIssue(c)
	if !ok {
		apierrors.InternalError(c, "Issue not loaded")
		return
	}

	userID, _ := middleware.GetUserID(c)

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	var input services.UpdateIssueInput
	fields := map[string]any{
		"title":       &input.Title,
		"description": &input.Description,
		"status":      &input.Status,
		"priority":    &input.Priority,
		"tags":        &input.Tags,
	}
	for name, dst := range fields {
		if body, present := raw[name]; present {
			if err := json.Unmarshal(body, dst); err != nil {
				apierrors.BadRequest(c, "Invalid value for "+name)
				return
			}
		}
	}
	if body, present := raw["assignee_id"]; present {
		input.AssigneeSet = true
		if err := json.Unmarshal(body, &input.AssigneeID); err != nil {
			apierrors.BadRequest(c, "Invalid value for assignee_id")
			return
		}
	}
	if body, present := raw["due_date"]; present {
		input.DueDateSet = true
		if err := json.Unmarshal(body, &input.DueDate); err != nil {
			apierrors.BadRequest(c, "Invalid value for due_date")
			return
		}
	}

	updated, err := h.issueService.UpdateIssue(issue.ID, userID, input)
	if err != nil {
		respondIssueError(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToIssueDTO(*updated))
}

// DeleteIssue handles DELETE /api/issues/:id
func (h *IssueHandler) DeleteIssue(c *gin.Context) {
	issue, ok := middleware.GetIssue(c)
	if !ok {
		apierrors.InternalError(c, "Issue not loaded")
		return
	}

	userID, _ := middleware.GetUserID(c)

	if err := h.issueService.DeleteIssue(c.Request.Context(), issue.ID, userID); err != nil {
		respondIssueError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Issue deleted")
}

// AssignIssue handles PUT /api/issues/:id/assign
func (h *IssueHandler) AssignIssue(c *gin.Context) {
	issue, ok := middleware.GetIssue(c)
	if !ok {
		apierrors.InternalError(c, "Issue not loaded")
		return
	}

	var req struct {
		AssigneeID *uint64 `json:"assignee_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	updated, err := h.issueService.AssignIssue(issue.ID, req.AssigneeID)
	if err != nil {
		respondIssueError(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToIssueDTO(*updated))
}

// UpdateStatus handles PUT /api/issues/:id/status
func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	issue, ok := middleware.GetIssue(c)
	if !ok {
		apierrors.InternalError(c, "Issue not loaded")
		return
	}

	userID, _ := middleware.GetUserID(c)

	var req struct {
		Status models.IssueStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	updated, err := h.issueService.UpdateStatus(issue.ID, userID, req.Status)
	if err != nil {
		respondIssueError(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToIssueDTO(*updated))
}

// AssignedToMe handles GET /api/issues/assigned-to-me
func (h *IssueHandler) AssignedToMe(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	issues, total, err := h.issueService.ListAssignedTo(userID, params.Page, params.Limit)
	if err != nil {
		respondIssueError(c, err)
		return
	}

	respondPage(c, dto.ToIssueDTOs(issues), len(issues), total, params)
}

// ReportedByMe handles GET /api/issues/reported-by-me
func (h *IssueHandler) ReportedByMe(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	issues, total, err := h.issueService.ListReportedBy(userID, params.Page, params.Limit)
	if err != nil {
		respondIssueError(c, err)
		return
	}

	respondPage(c, dto.ToIssueDTOs(issues), len(issues), total, params)
}

func respondIssueError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrIssueNotFound):
		apierrors.NotFound(c, "Issue not found")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrIssueTitleRequired), errors.Is(err, services.ErrIssueTitleEmpty):
		apierrors.BadRequest(c, "Title cannot be empty")
	case errors.Is(err, services.ErrInvalidIssueStatus):
		apierrors.BadRequest(c, "Invalid issue status")
	case errors.Is(err, services.ErrInvalidIssuePriority):
		apierrors.BadRequest(c, "Invalid issue priority")
	case errors.Is(err, services.ErrAssigneeNotMember):
		apierrors.BadRequest(c, "Assignee must be a member of the project")
	case errors.Is(err, services.ErrAttachmentsNotOwned):
		apierrors.BadRequest(c, "All attachments must exist and belong to you")
	case errors.Is(err, services.ErrNotIssueActor):
		apierrors.Forbidden(c, "Only the project owner, reporter or assignee can modify this issue")
	case errors.Is(err, services.ErrCannotDeleteIssue):
		apierrors.Forbidden(c, "Only the project owner or reporter can delete this issue")
	case errors.Is(err, services.ErrNotAssignee):
		apierrors.Forbidden(c, "Only the current assignee can update the issue status")
	default:
		apierrors.InternalError(c, "")
	}
}
