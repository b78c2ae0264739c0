package repository

import (
	"github.com/yukikurage/isp-kanban/internal/models"
	"github.com/yukikurage/isp-kanban/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID
	FindByID(id uint64) (*models.Task, error)

	// List retrieves tasks in board order with optional filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update saves every column of an existing task
	Update(task *models.Task) error

	// Delete removes a task
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	Node       string
	Pagination *utils.PaginationParams
}
