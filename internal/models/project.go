package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Project struct {
	ID          uint64            `gorm:"primarykey" json:"id"`
	Name        string            `gorm:"type:varchar(255);not null" json:"name"`
	Description string            `gorm:"type:text" json:"description"`
	Key         string            `gorm:"type:varchar(10);uniqueIndex;not null" json:"key"`
	OwnerID     uint64            `gorm:"not null" json:"owner_id"`
	Settings    datatypes.JSONMap `json:"settings"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`

	// IssueSeq is the per-project issue counter. It is only ever bumped with
	// an atomic UPDATE inside the issue-create transaction, never written
	// through Save.
	IssueSeq uint64 `gorm:"not null;default:0" json:"-"`

	// Relations
	Owner   User            `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Invites []ProjectInvite `gorm:"foreignKey:ProjectID" json:"-"`
	Issues  []Issue         `gorm:"foreignKey:ProjectID" json:"-"`
}
