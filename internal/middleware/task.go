package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/isp-kanban/internal/errors"
	"github.com/yukikurage/isp-kanban/internal/models"
	"github.com/yukikurage/isp-kanban/internal/services"
)

const taskContextKey = "task"

// RequireTask loads the task named by the :id path parameter into the context.
// Unknown IDs get a 404 before the handler runs.
func RequireTask(service *services.TaskService) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}

		task, err := service.GetTask(taskID)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
				return
			}
			apierrors.InternalError(c, "Failed to load task")
			return
		}

		c.Set(taskContextKey, *task)
		c.Next()
	}
}

// GetTask returns the task set by RequireTask
func GetTask(c *gin.Context) (models.Task, bool) {
	value, exists := c.Get(taskContextKey)
	if !exists {
		return models.Task{}, false
	}
	task, ok := value.(models.Task)
	return task, ok
}

// SetTask stores a task the way RequireTask does
func SetTask(c *gin.Context, task models.Task) {
	c.Set(taskContextKey, task)
}
