package models

import "time"

// ProjectInvite is a pending, time-limited offer of membership tied to an
// email address. The row is removed when the invite is accepted or when the
// invitation email fails to send.
type ProjectInvite struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	ProjectID   uint64    `gorm:"not null;index" json:"project_id"`
	Email       string    `gorm:"type:varchar(255);not null;index" json:"email"`
	Role        UserRole  `gorm:"type:varchar(20);not null;default:'developer'" json:"role"`
	InvitedByID uint64    `gorm:"not null" json:"invited_by"`
	Token       string    `gorm:"type:varchar(96);uniqueIndex;not null" json:"-"`
	ExpiresAt   time.Time `gorm:"index;not null" json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Project   Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	InvitedBy User    `gorm:"foreignKey:InvitedByID" json:"inviter,omitempty"`
}

// Expired reports whether the invite can no longer be redeemed.
func (i *ProjectInvite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
