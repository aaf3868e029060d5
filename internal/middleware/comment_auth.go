package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker-api/internal/constants"
	"github.com/yukikurage/issue-tracker-api/internal/database"
	apierrors "github.com/yukikurage/issue-tracker-api/internal/errors"
	"github.com/yukikurage/issue-tracker-api/internal/models"
)

// RequireCommentAccess resolves the comment from the URL and checks that the
// caller is a member of the owning project.
func RequireCommentAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		commentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid comment ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var comment models.Comment
		if err := database.GetDB().First(&comment, commentID).Error; err != nil {
			apierrors.NotFound(c, "Comment not found")
			c.Abort()
			return
		}

		var issue models.Issue
		if err := database.GetDB().First(&issue, comment.IssueID).Error; err != nil {
			apierrors.NotFound(c, "Issue not found")
			c.Abort()
			return
		}

		var member models.ProjectMember
		err = database.GetDB().
			Where("project_id = ? AND user_id = ?", issue.ProjectID, userID).
			First(&member).Error
		if err != nil {
			apierrors.Forbidden(c, "You must be a member of this project")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyComment, comment)
		c.Set(constants.ContextKeyIssue, issue)
		c.Next()
	}
}

// GetComment retrieves the comment loaded by RequireCommentAccess.
func GetComment(c *gin.Context) (models.Comment, bool) {
	v, exists := c.Get(constants.ContextKeyComment)
	if !exists {
		return models.Comment{}, false
	}
	comment, ok := v.(models.Comment)
	return comment, ok
}
