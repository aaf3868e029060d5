package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Issue indexes for filtering and sorting
		{"issues", "idx_issues_project_id", "project_id"},
		{"issues", "idx_issues_reporter_id", "reporter_id"},
		{"issues", "idx_issues_assignee_id", "assignee_id"},
		{"issues", "idx_issues_status", "status"},
		{"issues", "idx_issues_priority", "priority"},
		{"issues", "idx_issues_due_date", "due_date"},

		// Membership indexes
		{"project_members", "idx_project_members_project_id", "project_id"},
		{"project_members", "idx_project_members_user_id", "user_id"},

		// Invite token lookup
		{"project_invites", "idx_project_invites_token", "token"},
		{"project_invites", "idx_project_invites_email", "email"},

		// Comment thread lookup
		{"comments", "idx_comments_issue_id", "issue_id"},
		{"comments", "idx_comments_author_id", "author_id"},

		// Attachment ownership and linkage
		{"attachments", "idx_attachments_uploaded_by_id", "uploaded_by_id"},
		{"attachments", "idx_attachments_issue_id", "issue_id"},
		{"attachments", "idx_attachments_comment_id", "comment_id"},
	}

	for _, idx := range indexes {
		exists, err := indexExists(db, idx.table, idx.name)
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}
		if exists {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}

func indexExists(db *gorm.DB, table, name string) (bool, error) {
	var count int64
	switch db.Dialector.Name() {
	case "postgres":
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, table, name).Scan(&count).Error
		return count > 0, err
	case "mysql":
		err := db.Raw(`
			SELECT COUNT(*)
			FROM information_schema.statistics
			WHERE table_schema = DATABASE() AND table_name = ? AND index_name = ?
		`, table, name).Scan(&count).Error
		return count > 0, err
	default:
		err := db.Raw(`
			SELECT COUNT(*)
			FROM sqlite_master
			WHERE type = 'index' AND tbl_name = ? AND name = ?
		`, table, name).Scan(&count).Error
		return count > 0, err
	}
}
