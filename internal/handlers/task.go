package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/isp-kanban/internal/dto"
	apierrors "github.com/yukikurage/isp-kanban/internal/errors"
	"github.com/yukikurage/isp-kanban/internal/middleware"
	"github.com/yukikurage/isp-kanban/internal/models"
	"github.com/yukikurage/isp-kanban/internal/services"
	"github.com/yukikurage/isp-kanban/internal/utils"
)

type TaskHandler struct {
	service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{
		service: service,
	}
}

// ListTasks returns the board's tasks as a JSON array.
// Optional filters: status, priority, node. Optional page/limit paginate the
// array and report the unpaginated count in X-Total-Count.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	input := services.ListTasksInput{
		Node: c.Query("node"),
	}
	if status, ok := c.GetQuery("status"); ok {
		s := models.TaskStatus(status)
		input.Status = &s
	}
	if priority, ok := c.GetQuery("priority"); ok {
		p := models.TaskPriority(priority)
		input.Priority = &p
	}
	if params, ok := utils.GetPaginationParams(c); ok {
		input.Pagination = &params
	}

	tasks, total, err := h.service.ListTasks(input)
	if err != nil {
		if errors.Is(err, models.ErrInvalidTask) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, tasks)
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTask middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, task)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.TaskRequest
	if !bindJSON(c, &req, "Invalid request body: title is required") {
		return
	}

	task, err := h.service.CreateTask(req.ToInput())
	if err != nil {
		if errors.Is(err, models.ErrInvalidTask) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to create task")
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask replaces a task with the request body
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	var req dto.TaskRequest
	if !bindJSON(c, &req, "Invalid request body: title is required") {
		return
	}

	updated, err := h.service.UpdateTask(task.ID, req.ToInput())
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidTask):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrTaskNotFound):
			apierrors.NotFound(c, "Task not found")
		default:
			apierrors.InternalError(c, "Failed to update task")
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.service.DeleteTask(task.ID); err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			apierrors.NotFound(c, "Task not found")
			return
		}
		apierrors.InternalError(c, "Failed to delete task")
		return
	}

	c.Status(http.StatusNoContent)
}

// GenerateTasks drafts tasks from an incident report using AI. The drafts
// are returned for review and not stored.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	var req dto.GenerateTasksRequest
	if !bindJSON(c, &req, "Invalid request body: text is required") {
		return
	}

	drafts, err := h.service.GenerateTasks(c.Request.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAIServiceNotConfigured):
			apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
		case errors.Is(err, services.ErrIncidentTextEmpty), errors.Is(err, services.ErrIncidentTextTooLong):
			apierrors.BadRequest(c, err.Error())
		default:
			apierrors.BadGateway(c, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, dto.GenerateTasksResponse{Tasks: drafts})
}

// bindJSON decodes the body into req. A body that is not JSON gets
// INVALID_FORMAT; one that breaks a field rule gets INVALID_INPUT with message.
func bindJSON(c *gin.Context, req any, message string) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		apierrors.BadRequest(c, message)
	} else {
		apierrors.InvalidFormat(c, "Invalid JSON body")
	}
	return false
}
