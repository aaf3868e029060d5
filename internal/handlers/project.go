package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/issue-tracker-api/internal/errors"
	"github.com/yukikurage/issue-tracker-api/internal/middleware"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/services"
	"github.com/yukikurage/issue-tracker-api/internal/utils"
	"gorm.io/datatypes"
)

// ProjectHandler handles project, membership and invitation endpoints.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProject handles POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	var req struct {
		Name        string            `json:"name" binding:"required"`
		Description string            `json:"description"`
		Key         string            `json:"key" binding:"required"`
		Settings    datatypes.JSONMap `json:"settings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Key:         req.Key,
		OwnerID:     userID,
		Settings:    req.Settings,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	respondData(c, http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects handles GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	projects, total, err := h.projectService.ListProjects(userID, params.Page, params.Limit)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	dtos := make([]dto.ProjectDTO, len(projects))
	for i, project := range projects {
		dtos[i] = dto.ToProjectDTO(project)
	}

	respondPage(c, dtos, len(dtos), total, params)
}

// GetProject handles GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	members, err := h.projectService.GetProjectMembers(project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToProjectDetailDTO(project, members))
}

// UpdateProject handles PUT /api/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	var req struct {
		Name        *string           `json:"name"`
		Description *string           `json:"description"`
		Key         *string           `json:"key"`
		Settings    datatypes.JSONMap `json:"settings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	updated, err := h.projectService.UpdateProject(project.ID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Key:         req.Key,
		Settings:    req.Settings,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToProjectDTO(*updated))
}

// DeleteProject handles DELETE /api/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), project.ID); err != nil {
		respondProjectError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Project deleted")
}

// InviteMember handles POST /api/projects/:id/invite
func (h *ProjectHandler) InviteMember(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	userID, _ := middleware.GetUserID(c)

	var req struct {
		Email string          `json:"email" binding:"required,email"`
		Role  models.UserRole `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequestWithDetails(c, "Invalid request body", err.Error())
		return
	}

	invite, err := h.projectService.InviteMember(c.Request.Context(), services.InviteMemberInput{
		ProjectID: project.ID,
		ActorID:   userID,
		Email:     req.Email,
		Role:      req.Role,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	respondData(c, http.StatusCreated, dto.ToInviteDTO(*invite))
}

// AcceptInvitation handles POST /api/projects/accept-invite/:token
func (h *ProjectHandler) AcceptInvitation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	project, err := h.projectService.AcceptInvitation(userID, c.Param("token"))
	if err != nil {
		respondProjectError(c, err)
		return
	}

	respondData(c, http.StatusOK, dto.ToProjectDTO(*project))
}

// RemoveMember handles DELETE /api/projects/:id/members/:memberId
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	memberID, err := strconv.ParseUint(c.Param("memberId"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid member ID")
		return
	}

	if err := h.projectService.RemoveMember(project.ID, memberID); err != nil {
		respondProjectError(c, err)
		return
	}

	respondMessage(c, http.StatusOK, "Member removed")
}

// GetProjectStats handles GET /api/projects/:id/stats
func (h *ProjectHandler) GetProjectStats(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.InternalError(c, "Project not loaded")
		return
	}

	stats, err := h.projectService.GetProjectStats(project.ID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	respondData(c, http.StatusOK, stats)
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrInvalidProjectName):
		apierrors.BadRequest(c, "Project name cannot be empty")
	case errors.Is(err, services.ErrInvalidProjectKey):
		apierrors.BadRequest(c, "Project key must be 2-10 letters")
	case errors.Is(err, services.ErrProjectKeyTaken):
		apierrors.Conflict(c, "A project with this key already exists")
	case errors.Is(err, services.ErrAlreadyMember):
		apierrors.BadRequest(c, "This user is already a member of the project")
	case errors.Is(err, services.ErrInvitePending):
		apierrors.Conflict(c, "An invitation for this email is already pending")
	case errors.Is(err, services.ErrInvalidInviteToken):
		apierrors.BadRequest(c, "Invalid or expired invitation token")
	case errors.Is(err, services.ErrInviteEmailMismatch):
		apierrors.Forbidden(c, "This invitation was issued for a different email address")
	case errors.Is(err, services.ErrCannotRemoveOwner):
		apierrors.BadRequest(c, "The project owner cannot be removed")
	case errors.Is(err, services.ErrMemberNotFound):
		apierrors.NotFound(c, "Project member not found")
	case errors.Is(err, services.ErrMailDeliveryFailed):
		apierrors.ServiceUnavailable(c, "Could not send email, please try again later")
	default:
		apierrors.InternalError(c, "")
	}
}
