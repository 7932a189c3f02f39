package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mtakagi/todo-share-api/internal/models"
)

// CheckSchema verifies at startup that every table the application depends
// on exists. The sharing table in particular must be present before any
// request is served: discovering a missing relation per-request is not
// acceptable, the process should refuse to start instead.
func CheckSchema(db *gorm.DB) error {
	required := []interface{}{
		&models.User{},
		&models.Todo{},
		&models.SharedTodo{},
	}

	for _, model := range required {
		if !db.Migrator().HasTable(model) {
			stmt := &gorm.Statement{DB: db}
			if err := stmt.Parse(model); err != nil {
				return fmt.Errorf("failed to resolve table name: %w", err)
			}
			return fmt.Errorf("required table %q is missing; run migrations first", stmt.Schema.Table)
		}
	}

	return nil
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Todo indexes for the listing paths
		{"todos", "idx_todos_owner_id", "owner_id"},
		{"todos", "idx_todos_created_at", "created_at"},
		{"todos", "idx_todos_deleted", "deleted"},

		// Shared todo indexes
		{"shared_todos", "idx_shared_todos_user_id", "user_id"},
		{"shared_todos", "idx_shared_todos_todo_id", "todo_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
