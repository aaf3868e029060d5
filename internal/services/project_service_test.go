package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/issue-tracker-api/internal/models"
)

func TestProjectService_CreateProject_OwnerBecomesMember(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := createTestUser(t, env, "Owner", "owner@example.com")

	project, err := env.project.CreateProject(CreateProjectInput{
		Name:    "Demo",
		Key:     "demo",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)
	require.Equal(t, "DEMO", project.Key)

	members, err := env.project.GetProjectMembers(project.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.Equal(t, owner.ID, members[0].UserID)
	require.Equal(t, models.RoleManager, members[0].Role)
}

func TestProjectService_CreateProject_DuplicateKey(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := createTestUser(t, env, "Owner", "owner@example.com")

	createTestProject(t, env, owner, "DEMO")

	_, err := env.project.CreateProject(CreateProjectInput{
		Name:    "Another",
		Key:     "demo",
		OwnerID: owner.ID,
	})
	require.ErrorIs(t, err, ErrProjectKeyTaken)
}

func TestProjectService_CreateProject_InvalidKey(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := createTestUser(t, env, "Owner", "owner@example.com")

	for _, key := range []string{"", "X", "TOOLONGKEYABC", "AB1"} {
		_, err := env.project.CreateProject(CreateProjectInput{
			Name:    "Demo",
			Key:     key,
			OwnerID: owner.ID,
		})
		require.ErrorIs(t, err, ErrInvalidProjectKey, "key %q", key)
	}
}

func TestProjectService_UpdateProject_KeyConflict(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := createTestUser(t, env, "Owner", "owner@example.com")

	createTestProject(t, env, owner, "DEMO")
	other := createTestProject(t, env, owner, "OPS")

	key := "demo"
	_, err := env.project.UpdateProject(other.ID, UpdateProjectInput{Key: &key})
	require.ErrorIs(t, err, ErrProjectKeyTaken)

	// Re-submitting its own key is not a conflict.
	own := "ops"
	updated, err := env.project.UpdateProject(other.ID, UpdateProjectInput{Key: &own})
	require.NoError(t, err)
	require.Equal(t, "OPS", updated.Key)
}

func TestProjectService_InviteAndAccept(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := createTestUser(t, env, "Owner", "owner@example.com")
	invitee := createTestUser(t, env, "Dev", "dev@example.com")
	project := createTestProject(t, env, owner, "DEMO")

	invite, err := env.project.InviteMember(context.Background(), InviteMemberInput{
		ProjectID: project.ID,
		ActorID:   owner.ID,
		Email:     invitee.Email,
		Role:      models.RoleDeveloper,
	})
	require.NoError(t, err)
	require.Len(t, env.mailer.sent, 1)
	require.Equal(t, invitee.Email, env.mailer.sent[0].To)
	require.True(t, strings.Contains(env.mailer.sent[0].Body, invite.Token))

	joined, err := env.project.AcceptInvitation(invitee.ID, invite.Token)
	require.NoError(t, err)
	require.Equal(t, project.ID, joined.ID)

	members, err := env.project.GetProjectMembers(project.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)

	// The invite is consumed on accept.
	_, err = env.project.AcceptInvitation(invitee.ID, invite.Token)
	require.ErrorIs(t, err, ErrInvalidInviteToken)
}

func TestProjectService_AcceptInvitation_EmailMismatch(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := createTestUser(t, env, "Owner", "owner@example.com")
	invitee := createTestUser(t, env, "Dev", "dev@example.com")
	stranger := createTestUser(t, env, "Stranger", "stranger@example.com")
	project := createTestProject(t, env, owner, "DEMO")

	invite, err := env.project.InviteMember(context.Background(), InviteMemberInput{
		ProjectID: project.ID,
		ActorID:   owner.ID,
		Email:     invitee.Email,
	})
	require.NoError(t, err)

	_, err = env.project.AcceptInvitation(stranger.ID, invite.Token)
	require.ErrorIs(t, err, ErrInviteEmailMismatch)

	// The invite survives the failed attempt and the intended recipient can
	// still redeem it.
	_, err = env.project.AcceptInvitation(invitee.ID, invite.Token)
	require.NoError(t, err)
}

func TestProjectService_AcceptInvitation_Expired(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := createTestUser(t, env, "Owner", "owner@example.com")
	invitee := createTestUser(t, env, "Dev", "dev@example.com")
	project := createTestProject(t, env, owner, "DEMO")

	invite, err := env.project.InviteMember(context.Background(), InviteMemberInput{
		ProjectID: project.ID,
		ActorID:   owner.ID,
		Email:     invitee.Email,
	})
	require.NoError(t, err)

	require.NoError(t, env.db.Model(&models.ProjectInvite{}).
		Where("id = ?", invite.ID).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)

	_, err = env.project.AcceptInvitation(invitee.ID, invite.Token)
	require.ErrorIs(t, err, ErrInvalidInviteToken)
}

func TestProjectService_InviteMember_AlreadyMemberOrPending(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := createTestUser(t, env, "Owner", "owner@example.com")
	invitee := createTestUser(t, env, "Dev", "dev@example.com")
	project := createTestProject(t, env, owner, "DEMO")

	_, err := env.project.InviteMember(context.Background(), InviteMemberInput{
		ProjectID: project.ID,
		ActorID:   owner.ID,
		Email:     owner.Email,
	})
	require.ErrorIs(t, err, ErrAlreadyMember)

	_, err = env.project.InviteMember(context.Background(), InviteMemberInput{
		ProjectID: project.ID,
		ActorID:   owner.ID,
		Email:     invitee.Email,
	})
	require.NoError(t, err)

	_, err = env.project.InviteMember(context.Background(), InviteMemberInput{
		ProjectID: project.ID,
		ActorID:   owner.ID,
		Email:     invitee.Email,
	})
	require.ErrorIs(t, err, ErrInvitePending)
}

func TestProjectService_InviteMember_MailFailureRollsBack(t *testing.T) {
	env := setupServiceTestEnv(t)
	env.mailer.fail = true

	owner := createTestUser(t, env, "Owner", "owner@example.com")
	project := createTestProject(t, env, owner, "DEMO")

	_, err := env.project.InviteMember(context.Background(), InviteMemberInput{
		ProjectID: project.ID,
		ActorID:   owner.ID,
		Email:     "dev@example.com",
	})
	require.ErrorIs(t, err, ErrMailDeliveryFailed)

	var count int64
	require.NoError(t, env.db.Model(&models.ProjectInvite{}).
		Where("project_id = ?", project.ID).
		Count(&count).Error)
	require.Zero(t, count)
}

func TestProjectService_RemoveMember(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := createTestUser(t, env, "Owner", "owner@example.com")
	dev := createTestUser(t, env, "Dev", "dev@example.com")
	project := createTestProject(t, env, owner, "DEMO")
	addTestMember(t, env, project.ID, dev)

	require.ErrorIs(t, env.project.RemoveMember(project.ID, owner.ID), ErrCannotRemoveOwner)

	require.NoError(t, env.project.RemoveMember(project.ID, dev.ID))
	require.ErrorIs(t, env.project.RemoveMember(project.ID, dev.ID), ErrMemberNotFound)
}

func TestProjectService_DeleteProject_Cascades(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := createTestUser(t, env, "Owner", "owner@example.com")
	project := createTestProject(t, env, owner, "DEMO")

	issueAtt := uploadTestAttachment(t, env, owner.ID)
	issue, err := env.issue.CreateIssue(CreateIssueInput{
		ProjectID:     project.ID,
		ReporterID:    owner.ID,
		Title:         "Crash on save",
		AttachmentIDs: []uint64{issueAtt.ID},
	})
	require.NoError(t, err)

	commentAtt := uploadTestAttachment(t, env, owner.ID)
	_, err = env.comment.CreateComment(CreateCommentInput{
		IssueID:       issue.ID,
		AuthorID:      owner.ID,
		Content:       "Stack trace attached",
		AttachmentIDs: []uint64{commentAtt.ID},
	})
	require.NoError(t, err)

	require.NoError(t, env.project.DeleteProject(context.Background(), project.ID))

	for _, model := range []any{&models.Issue{}, &models.Comment{}, &models.Attachment{}, &models.ProjectMember{}} {
		var count int64
		require.NoError(t, env.db.Model(model).Count(&count).Error)
		require.Zero(t, count)
	}
	require.Zero(t, env.store.len())

	_, err = env.project.GetProjectStats(project.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_GetProjectStats(t *testing.T) {
	env := setupServiceTestEnv(t)
	owner := createTestUser(t, env, "Owner", "owner@example.com")
	project := createTestProject(t, env, owner, "DEMO")

	for _, priority := range []models.IssuePriority{models.PriorityLow, models.PriorityHigh, models.PriorityUrgent} {
		_, err := env.issue.CreateIssue(CreateIssueInput{
			ProjectID:  project.ID,
			ReporterID: owner.ID,
			Title:      "Issue " + string(priority),
			Priority:   priority,
		})
		require.NoError(t, err)
	}

	stats, err := env.project.GetProjectStats(project.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), stats.TotalIssues)
	require.Equal(t, 3, stats.ByStatus[models.IssueStatusTodo])
	require.Equal(t, 1, stats.ByPriority[models.PriorityUrgent])
	require.Equal(t, 2, stats.HighPriority)
}
