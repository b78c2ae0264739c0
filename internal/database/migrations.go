package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/isp-kanban/internal/models"
	"gorm.io/gorm"
)

// boardIndexes are the columns the board filters and groups by
var boardIndexes = []struct {
	name    string
	columns string
}{
	{"idx_tasks_status", "status"},
	{"idx_tasks_priority", "priority"},
	{"idx_tasks_node", "node"},
	{"idx_tasks_created_at", "created_at"},
}

// AddIndexes creates the board's secondary indexes on the tasks table if they are missing
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range boardIndexes {
		if migrator.HasIndex(&models.Task{}, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON tasks (%s)", idx.name, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on tasks(%s)", idx.name, idx.columns)
	}

	return nil
}
