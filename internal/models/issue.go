package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type IssueStatus string

const (
	IssueStatusTodo       IssueStatus = "todo"
	IssueStatusInProgress IssueStatus = "inprogress"
	IssueStatusDone       IssueStatus = "done"
)

// Valid reports whether the status is a known value. No transition graph is
// enforced; any status may move to any other.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueStatusTodo, IssueStatusInProgress, IssueStatusDone:
		return true
	}
	return false
}

type IssuePriority string

const (
	PriorityLow    IssuePriority = "low"
	PriorityMedium IssuePriority = "medium"
	PriorityHigh   IssuePriority = "high"
	PriorityUrgent IssuePriority = "urgent"
)

func (p IssuePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

type Issue struct {
	ID          uint64                      `gorm:"primarykey" json:"id"`
	Key         string                      `gorm:"type:varchar(20);uniqueIndex;not null" json:"key"`
	Title       string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Status      IssueStatus                 `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	Priority    IssuePriority               `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	ReporterID  uint64                      `gorm:"not null" json:"reporter_id"`
	AssigneeID  *uint64                     `json:"assignee_id"`
	ProjectID   uint64                      `gorm:"not null;index" json:"project_id"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	DueDate     *time.Time                  `json:"due_date"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	DeletedAt   gorm.DeletedAt              `gorm:"index" json:"-"`

	// Relations
	Reporter    User         `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Assignee    *User        `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Project     Project      `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Comments    []Comment    `gorm:"foreignKey:IssueID" json:"comments,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:IssueID" json:"attachments,omitempty"`
}
