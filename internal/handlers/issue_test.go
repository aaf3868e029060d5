package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker-api/internal/constants"
	"github.com/yukikurage/issue-tracker-api/internal/dto"
	"github.com/yukikurage/issue-tracker-api/internal/models"
	"github.com/yukikurage/issue-tracker-api/internal/services"
)

func TestIssueHandler_CreateIssue(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := createHandlerTestUser(t, env, "Owner", "owner@example.com")
	project := createHandlerTestProject(t, env, owner, "DEMO")

	payload := map[string]any{
		"title":    "Crash on save",
		"priority": "high",
		"tags":     []string{"backend", "crash"},
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := testContext(http.MethodPost, "/api/projects/1/issues", body, owner.ID)
	c.Set(constants.ContextKeyProject, *project)
	env.issue.CreateIssue(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response struct {
		Data dto.IssueDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "DEMO-1", response.Data.Key)
	require.Equal(t, models.IssueStatusTodo, response.Data.Status)
	require.Equal(t, models.PriorityHigh, response.Data.Priority)
	require.Equal(t, []string{"backend", "crash"}, response.Data.Tags)
}

func TestIssueHandler_CreateIssue_AssigneeNotMember(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := createHandlerTestUser(t, env, "Owner", "owner@example.com")
	outsider := createHandlerTestUser(t, env, "Outsider", "outsider@example.com")
	project := createHandlerTestProject(t, env, owner, "DEMO")

	payload := map[string]any{
		"title":       "Crash on save",
		"assignee_id": outsider.ID,
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	c, w := testContext(http.MethodPost, "/api/projects/1/issues", body, owner.ID)
	c.Set(constants.ContextKeyProject, *project)
	env.issue.CreateIssue(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIssueHandler_UpdateStatus(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := createHandlerTestUser(t, env, "Owner", "owner@example.com")
	assignee := createHandlerTestUser(t, env, "Assignee", "assignee@example.com")
	project := createHandlerTestProject(t, env, owner, "DEMO")
	require.NoError(t, env.db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    assignee.ID,
		Role:      models.RoleDeveloper,
	}).Error)

	issue, err := env.issueService.CreateIssue(services.CreateIssueInput{
		ProjectID:  project.ID,
		ReporterID: owner.ID,
		Title:      "Crash on save",
		AssigneeID: &assignee.ID,
	})
	require.NoError(t, err)

	payload := map[string]string{"status": "inprogress"}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	// The reporter is not the assignee and may not move the status.
	c, w := testContext(http.MethodPut, "/api/issues/1/status", body, owner.ID)
	c.Set(constants.ContextKeyIssue, *issue)
	env.issue.UpdateStatus(c)
	require.Equal(t, http.StatusForbidden, w.Code)

	c, w = testContext(http.MethodPut, "/api/issues/1/status", body, assignee.ID)
	c.Set(constants.ContextKeyIssue, *issue)
	env.issue.UpdateStatus(c)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data dto.IssueDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, models.IssueStatusInProgress, response.Data.Status)
}

func TestIssueHandler_UpdateIssue_NullClearsAssignee(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := createHandlerTestUser(t, env, "Owner", "owner@example.com")
	assignee := createHandlerTestUser(t, env, "Assignee", "assignee@example.com")
	project := createHandlerTestProject(t, env, owner, "DEMO")
	require.NoError(t, env.db.Create(&models.ProjectMember{
		ProjectID: project.ID,
		UserID:    assignee.ID,
		Role:      models.RoleDeveloper,
	}).Error)

	issue, err := env.issueService.CreateIssue(services.CreateIssueInput{
		ProjectID:  project.ID,
		ReporterID: owner.ID,
		Title:      "Crash on save",
		AssigneeID: &assignee.ID,
	})
	require.NoError(t, err)

	// A body without assignee_id leaves the assignee untouched.
	c, w := testContext(http.MethodPut, "/api/issues/1", []byte(`{"title":"Crash on autosave"}`), owner.ID)
	c.Set(constants.ContextKeyIssue, *issue)
	env.issue.UpdateIssue(c)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data dto.IssueDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.NotNil(t, response.Data.AssigneeID)

	// An explicit null clears it.
	c, w = testContext(http.MethodPut, "/api/issues/1", []byte(`{"assignee_id":null}`), owner.ID)
	c.Set(constants.ContextKeyIssue, *issue)
	env.issue.UpdateIssue(c)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Nil(t, response.Data.AssigneeID)
}

func TestIssueHandler_ListProjectIssues_StatusFilter(t *testing.T) {
	env := setupHandlerTestEnv(t)
	owner := createHandlerTestUser(t, env, "Owner", "owner@example.com")
	project := createHandlerTestProject(t, env, owner, "DEMO")

	for _, title := range []string{"First", "Second"} {
		_, err := env.issueService.CreateIssue(services.CreateIssueInput{
			ProjectID:  project.ID,
			ReporterID: owner.ID,
			Title:      title,
		})
		require.NoError(t, err)
	}

	c, w := testContext(http.MethodGet, "/api/projects/1/issues?status=todo", nil, owner.ID)
	c.Set(constants.ContextKeyProject, *project)
	env.issue.ListProjectIssues(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data  []dto.IssueDTO `json:"data"`
		Total int64          `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, int64(2), response.Total)
	require.Len(t, response.Data, 2)

	c, w = testContext(http.MethodGet, "/api/projects/1/issues?status=done", nil, owner.ID)
	c.Set(constants.ContextKeyProject, *project)
	env.issue.ListProjectIssues(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Zero(t, response.Total)
}
