package constants

import "time"

// Context keys used to pass request-scoped values between middleware and handlers.
const (
	ContextKeyUserID        = "user_id"
	ContextKeyUserEmail     = "user_email"
	ContextKeyUserRole      = "user_role"
	ContextKeyProject       = "project"
	ContextKeyProjectMember = "project_member"
	ContextKeyIssue         = "issue"
	ContextKeyComment       = "comment"
)

// Pagination bounds.
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Authentication settings.
const (
	MinPasswordLength = 8
	ResetTokenTTL     = 15 * time.Minute
)

// Invitation settings.
const (
	InviteTokenTTL = 7 * 24 * time.Hour
)

// Attachment upload limits.
const (
	MaxAttachmentSize = 25 << 20 // 25 MiB
)
