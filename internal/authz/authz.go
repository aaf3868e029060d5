// Package authz holds the permission predicates evaluated before every
// resource-scoped operation. Predicates are pure functions over already
// loaded records; callers are responsible for resolving the resource first
// so that a missing resource reads as NotFound rather than Forbidden.
package authz

import "github.com/yukikurage/issue-tracker-api/internal/models"

// IsProjectOwner reports whether the user owns the project.
func IsProjectOwner(project *models.Project, userID uint64) bool {
	return project.OwnerID == userID
}

// IsProjectMember reports whether the user is a current member of the
// project. The members slice must be loaded.
func IsProjectMember(project *models.Project, userID uint64) bool {
	for _, m := range project.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// IsIssueActor reports whether the user may mutate the issue: the project
// owner, the reporter, or the current assignee.
func IsIssueActor(issue *models.Issue, project *models.Project, userID uint64) bool {
	if IsProjectOwner(project, userID) || issue.ReporterID == userID {
		return true
	}
	return issue.AssigneeID != nil && *issue.AssigneeID == userID
}

// CanDeleteIssue reports whether the user may delete the issue. The
// assignee alone cannot delete.
func CanDeleteIssue(issue *models.Issue, project *models.Project, userID uint64) bool {
	return IsProjectOwner(project, userID) || issue.ReporterID == userID
}

// IsCommentActor reports whether the user may mutate the comment: the
// project owner or the comment author.
func IsCommentActor(comment *models.Comment, project *models.Project, userID uint64) bool {
	return IsProjectOwner(project, userID) || comment.AuthorID == userID
}

// CanDeleteAttachment is the platform-role gate for attachment deletion:
// the uploader or an admin.
func CanDeleteAttachment(attachment *models.Attachment, user *models.User) bool {
	return attachment.UploadedByID == user.ID || user.Role == models.RoleAdmin
}
