package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker-api/internal/models"
)

func TestIssueActorPredicates(t *testing.T) {
	ownerID, reporterID, assigneeID, bystanderID := uint64(1), uint64(2), uint64(3), uint64(4)
	project := &models.Project{OwnerID: ownerID}
	issue := &models.Issue{ReporterID: reporterID, AssigneeID: &assigneeID}

	require.True(t, IsIssueActor(issue, project, ownerID))
	require.True(t, IsIssueActor(issue, project, reporterID))
	require.True(t, IsIssueActor(issue, project, assigneeID))
	require.False(t, IsIssueActor(issue, project, bystanderID))

	// The assignee alone cannot delete.
	require.True(t, CanDeleteIssue(issue, project, ownerID))
	require.True(t, CanDeleteIssue(issue, project, reporterID))
	require.False(t, CanDeleteIssue(issue, project, assigneeID))

	unassigned := &models.Issue{ReporterID: reporterID}
	require.False(t, IsIssueActor(unassigned, project, assigneeID))
}

func TestCommentActorPredicate(t *testing.T) {
	project := &models.Project{OwnerID: 1}
	comment := &models.Comment{AuthorID: 2}

	require.True(t, IsCommentActor(comment, project, 1))
	require.True(t, IsCommentActor(comment, project, 2))
	require.False(t, IsCommentActor(comment, project, 3))
}

func TestProjectMemberPredicate(t *testing.T) {
	project := &models.Project{
		OwnerID: 1,
		Members: []models.ProjectMember{
			{UserID: 1}, {UserID: 2},
		},
	}

	require.True(t, IsProjectOwner(project, 1))
	require.False(t, IsProjectOwner(project, 2))
	require.True(t, IsProjectMember(project, 2))
	require.False(t, IsProjectMember(project, 3))
}

func TestCanDeleteAttachment(t *testing.T) {
	attachment := &models.Attachment{UploadedByID: 1}

	uploader := &models.User{ID: 1, Role: models.RoleDeveloper}
	admin := &models.User{ID: 2, Role: models.RoleAdmin}
	other := &models.User{ID: 3, Role: models.RoleDeveloper}

	require.True(t, CanDeleteAttachment(attachment, uploader))
	require.True(t, CanDeleteAttachment(attachment, admin))
	require.False(t, CanDeleteAttachment(attachment, other))
}
