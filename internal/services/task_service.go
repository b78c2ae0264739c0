package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/isp-kanban/internal/constants"
	"github.com/yukikurage/isp-kanban/internal/models"
	"github.com/yukikurage/isp-kanban/internal/repository"
	"github.com/yukikurage/isp-kanban/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrIncidentTextEmpty      = errors.New("incident text is required")
	ErrIncidentTextTooLong    = fmt.Errorf("incident text must be at most %d characters", constants.MaxIncidentTextLength)
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo  repository.TaskRepository
	aiService *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:  taskRepo,
		aiService: aiService,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status     *models.TaskStatus
	Priority   *models.TaskPriority
	Node       string
	Pagination *utils.PaginationParams
}

// TaskInput carries the user-editable fields of a task. Create and Update
// both take the complete set; Update replaces every field.
type TaskInput struct {
	Title           string
	Description     string
	Node            string
	ResponsibleName string
	Priority        models.TaskPriority
	Status          models.TaskStatus
}

func (in TaskInput) apply(task *models.Task) {
	task.Title = strings.TrimSpace(in.Title)
	task.Description = in.Description
	task.Node = in.Node
	task.ResponsibleName = in.ResponsibleName
	task.Priority = in.Priority
	task.Status = in.Status
	task.ApplyDefaults()
}

// ListTasks returns the tasks matching the filters in board order
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", models.ErrInvalidTask, *input.Status)
	}
	if input.Priority != nil && !input.Priority.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown priority %q", models.ErrInvalidTask, *input.Priority)
	}

	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		Status:     input.Status,
		Priority:   input.Priority,
		Node:       input.Node,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a single task
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask validates and stores a new task
func (s *TaskService) CreateTask(input TaskInput) (*models.Task, error) {
	task := &models.Task{}
	input.apply(task)

	if err := models.ValidateTask(*task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID)
}

// UpdateTask replaces every editable field of an existing task
func (s *TaskService) UpdateTask(taskID uint64, input TaskInput) (*models.Task, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	input.apply(task)
	if err := models.ValidateTask(*task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID)
}

// DeleteTask deletes a task
func (s *TaskService) DeleteTask(taskID uint64) error {
	if err := s.taskRepo.Delete(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// GenerateTasks turns an incident report into task drafts. Nothing is stored.
func (s *TaskService) GenerateTasks(ctx context.Context, text string) ([]models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrIncidentTextEmpty
	}
	if len([]rune(text)) > constants.MaxIncidentTextLength {
		return nil, ErrIncidentTextTooLong
	}
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.aiService.DraftTasksFromIncident(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		return nil, fmt.Errorf("AI generated too many tasks (max %d)", constants.MaxAIGeneratedTasks)
	}

	drafts := make([]models.Task, 0, len(aiTasks))
	for _, aiTask := range aiTasks {
		draft := models.Task{}
		TaskInput{
			Title:           aiTask.Title,
			Description:     aiTask.Description,
			Node:            aiTask.Node,
			ResponsibleName: aiTask.ResponsibleName,
			Priority:        aiTask.Priority,
		}.apply(&draft)

		// a made-up priority falls back to the default rather than dropping the draft
		if !draft.Priority.IsValid() {
			draft.Priority = models.TaskPriorityMedium
		}
		if models.ValidateTask(draft) != nil {
			continue
		}
		drafts = append(drafts, draft)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoValidTasks
	}

	return drafts, nil
}
