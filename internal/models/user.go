package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleDeveloper UserRole = "developer"
	RoleManager   UserRole = "manager"
	RoleAdmin     UserRole = "admin"
)

// Valid reports whether the role is one of the known platform roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleDeveloper, RoleManager, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Name         string         `gorm:"type:varchar(100);not null" json:"name"`
	Email        string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	Avatar       string         `gorm:"type:varchar(500)" json:"avatar"`
	Role         UserRole       `gorm:"type:varchar(20);not null;default:'developer'" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Password reset flow; both nil unless a reset is in flight.
	ResetToken          *string    `gorm:"type:varchar(64);index" json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`

	// Relations
	OwnedProjects  []Project       `gorm:"foreignKey:OwnerID" json:"-"`
	Memberships    []ProjectMember `gorm:"foreignKey:UserID" json:"-"`
	ReportedIssues []Issue         `gorm:"foreignKey:ReporterID" json:"-"`
}
