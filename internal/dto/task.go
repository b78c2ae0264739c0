package dto

import (
	"github.com/yukikurage/isp-kanban/internal/models"
	"github.com/yukikurage/isp-kanban/internal/services"
)

// TaskRequest is the body of POST /tasks/ and PUT /tasks/:id. PUT replaces the
// whole task, so fields left out are cleared (priority and status fall back
// to their defaults). An id in the body is ignored.
type TaskRequest struct {
	Title           string              `json:"title" binding:"required"`
	Description     string              `json:"description"`
	Node            string              `json:"node"`
	ResponsibleName string              `json:"responsible_name"`
	Priority        models.TaskPriority `json:"priority"`
	Status          models.TaskStatus   `json:"status"`
}

// ToInput converts the request into service input
func (r TaskRequest) ToInput() services.TaskInput {
	return services.TaskInput{
		Title:           r.Title,
		Description:     r.Description,
		Node:            r.Node,
		ResponsibleName: r.ResponsibleName,
		Priority:        r.Priority,
		Status:          r.Status,
	}
}

// GenerateTasksRequest is the body of POST /tasks/generate
type GenerateTasksRequest struct {
	Text string `json:"text" binding:"required"`
}

// GenerateTasksResponse wraps the drafts returned by POST /tasks/generate
type GenerateTasksResponse struct {
	Tasks []models.Task `json:"tasks"`
}
