package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker-api/internal/constants"
	"github.com/yukikurage/issue-tracker-api/internal/dto"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/services"
)

func TestProjectHandler_CreateProject(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := createHandlerTestUser(t, env, "Owner", "owner@example.com")

	payload := map[string]string{
		"name": "Demo",
		"key":  "demo",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := testContext(http.MethodPost, "/api/projects", body, owner.ID)
	env.project.CreateProject(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Data dto.ProjectDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "DEMO", response.Data.Key)
	require.Equal(t, owner.ID, response.Data.OwnerID)
}

func TestProjectHandler_CreateProject_DuplicateKey(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := createHandlerTestUser(t, env, "Owner", "owner@example.com")
	createHandlerTestProject(t, env, owner, "DEMO")

	payload := map[string]string{
		"name": "Another",
		"key":  "DEMO",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := testContext(http.MethodPost, "/api/projects", body, owner.ID)
	env.project.CreateProject(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestProjectHandler_GetProject(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := createHandlerTestUser(t, env, "Owner", "owner@example.com")
	project := createHandlerTestProject(t, env, owner, "DEMO")

	c, w := testContext(http.MethodGet, "/api/projects/1", nil, owner.ID)
	c.Set(constants.ContextKeyProject, *project)
	env.project.GetProject(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data dto.ProjectDetailDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, project.ID, response.Data.ID)
	require.Len(t, response.Data.Members, 1)
	require.Equal(t, owner.ID, response.Data.Members[0].User.ID)
}

func TestProjectHandler_RemoveMember_Owner(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := createHandlerTestUser(t, env, "Owner", "owner@example.com")
	project := createHandlerTestProject(t, env, owner, "DEMO")

	c, w := testContext(http.MethodDelete, "/api/projects/1/members/1", nil, owner.ID)
	c.Set(constants.ContextKeyProject, *project)
	c.Params = gin.Params{{Key: "memberId", Value: strconv.FormatUint(owner.ID, 10)}}
	env.project.RemoveMember(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProjectHandler_AcceptInvitation_EmailMismatch(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := createHandlerTestUser(t, env, "Owner", "owner@example.com")
	stranger := createHandlerTestUser(t, env, "Stranger", "stranger@example.com")
	project := createHandlerTestProject(t, env, owner, "DEMO")

	invite, err := env.projectService.InviteMember(context.Background(), services.InviteMemberInput{
		ProjectID: project.ID,
		ActorID:   owner.ID,
		Email:     "dev@example.com",
	})
	require.NoError(t, err)

	c, w := testContext(http.MethodPost, "/api/projects/accept-invite/"+invite.Token, nil, stranger.ID)
	c.Params = gin.Params{{Key: "token", Value: invite.Token}}
	env.project.AcceptInvitation(c)

	require.Equal(t, http.StatusForbidden, w.Code)

	// The invite survives for the intended recipient.
	var count int64
	require.NoError(t, env.db.Model(&models.ProjectInvite{}).
		Where("token = ?", invite.Token).
		Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestProjectHandler_GetProjectStats(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := createHandlerTestUser(t, env, "Owner", "owner@example.com")
	project := createHandlerTestProject(t, env, owner, "DEMO")

	_, err := env.issueService.CreateIssue(services.CreateIssueInput{
		ProjectID:  project.ID,
		ReporterID: owner.ID,
		Title:      "Broken build",
		Priority:   models.PriorityUrgent,
	})
	require.NoError(t, err)

	c, w := testContext(http.MethodGet, "/api/projects/1/stats", nil, owner.ID)
	c.Set(constants.ContextKeyProject, *project)
	env.project.GetProjectStats(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data services.ProjectStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, int64(1), response.Data.TotalIssues)
	require.Equal(t, 1, response.Data.HighPriority)
}
