// Package board keeps an in-memory copy of the kanban board in step with the
// task API. Create, edit and delete wait for the server before touching the
// cache; drag-and-drop moves update the cache first and reconcile afterwards.
package board

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/yukikurage/isp-kanban/internal/models"
)

var (
	ErrDeclined         = errors.New("deletion not confirmed")
	ErrUnknownStage     = errors.New("status is not a column on this board")
	ErrTaskNotFound     = errors.New("task not found on board")
	ErrInvalidDirection = errors.New("direction must be -1 or +1")
	ErrMissingID        = errors.New("task has no identifier")
)

// Remote is the authoritative task store
type Remote interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, draft models.Task) (models.Task, error)
	UpdateTask(ctx context.Context, task models.Task) (models.Task, error)
	DeleteTask(ctx context.Context, id uint64) error
}

// Confirmer gates destructive actions behind a yes/no answer from the user
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarning
	NoticeError
)

// Notice is a message meant for the person using the board
type Notice struct {
	Level   NoticeLevel
	Message string
}

// Notifier shows notices to the user
type Notifier interface {
	Notify(n Notice)
}

// NotifyFunc adapts a function to Notifier
type NotifyFunc func(n Notice)

func (f NotifyFunc) Notify(n Notice) { f(n) }

// Option configures a Board
type Option func(*Board)

// WithStages sets the column order. Tasks move between neighbouring entries.
func WithStages(stages ...models.TaskStatus) Option {
	return func(b *Board) {
		b.stages = slices.Clone(stages)
	}
}

func WithConfirmer(c Confirmer) Option {
	return func(b *Board) {
		b.confirm = c
	}
}

func WithNotifier(n Notifier) Option {
	return func(b *Board) {
		b.notify = n
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(b *Board) {
		b.logger = l
	}
}

// Board owns the cached task list. Callers read it through TasksByColumn,
// Tasks and Task and change it only through the mutation methods.
type Board struct {
	remote  Remote
	stages  []models.TaskStatus
	confirm Confirmer
	notify  Notifier
	logger  *slog.Logger

	mu    sync.RWMutex
	tasks []models.Task

	// background drag reconciliations
	pending sync.WaitGroup
}

// New creates an empty board backed by remote. Without WithConfirmer every
// deletion is declined.
func New(remote Remote, opts ...Option) *Board {
	b := &Board{
		remote:  remote,
		stages:  slices.Clone(models.Stages),
		confirm: ConfirmFunc(func(string) bool { return false }),
		notify:  NotifyFunc(func(Notice) {}),
		logger:  slog.Default(),
		tasks:   []models.Task{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Columns returns the board's stage order
func (b *Board) Columns() []models.TaskStatus {
	return slices.Clone(b.stages)
}

// Tasks returns a copy of the cache in board order
func (b *Board) Tasks() []models.Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.tasks)
}

// Task returns the cached task with the given ID
func (b *Board) Task(id uint64) (models.Task, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i := b.indexOf(id); i >= 0 {
		return b.tasks[i], true
	}
	return models.Task{}, false
}

// TasksByColumn yields the cached tasks whose status is stage, in board order.
// Each iteration reads a fresh snapshot, so the sequence can be ranged over
// again after the board changes.
func (b *Board) TasksByColumn(stage models.TaskStatus) iter.Seq[models.Task] {
	return func(yield func(models.Task) bool) {
		b.mu.RLock()
		snapshot := slices.Clone(b.tasks)
		b.mu.RUnlock()

		for _, task := range snapshot {
			if task.Status != stage {
				continue
			}
			if !yield(task) {
				return
			}
		}
	}
}

// LoadAll replaces the cache with the server's task list. On failure the
// previous cache is kept.
func (b *Board) LoadAll(ctx context.Context) error {
	tasks, err := b.remote.ListTasks(ctx)
	if err != nil {
		b.logger.Error("failed to load tasks", "error", err)
		return fmt.Errorf("load tasks: %w", err)
	}

	b.mu.Lock()
	b.tasks = slices.Clone(tasks)
	b.mu.Unlock()

	b.logger.Debug("tasks loaded", "count", len(tasks))
	return nil
}

// Create validates the draft, stores it remotely and appends the stored task.
func (b *Board) Create(ctx context.Context, draft models.Task) (models.Task, error) {
	draft.ID = 0
	draft.ApplyDefaults()
	if err := models.ValidateTask(draft); err != nil {
		b.notifyf(NoticeWarning, "%v", err)
		return models.Task{}, err
	}

	created, err := b.remote.CreateTask(ctx, draft)
	if err != nil {
		b.logger.Error("failed to create task", "title", draft.Title, "error", err)
		b.notifyf(NoticeError, "Could not create task %q", draft.Title)
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}

	b.mu.Lock()
	b.tasks = append(b.tasks, created)
	b.mu.Unlock()

	b.notifyf(NoticeInfo, "Task %q created", created.Title)
	return created, nil
}

// Update sends the full record to the server and swaps the stored result into
// the cache. The status may be set to any column.
func (b *Board) Update(ctx context.Context, task models.Task) (models.Task, error) {
	if task.ID == 0 {
		return models.Task{}, ErrMissingID
	}
	task.ApplyDefaults()
	if err := models.ValidateTask(task); err != nil {
		b.notifyf(NoticeWarning, "%v", err)
		return models.Task{}, err
	}

	updated, err := b.remote.UpdateTask(ctx, task)
	if err != nil {
		b.logger.Error("failed to update task", "task_id", task.ID, "error", err)
		b.notifyf(NoticeError, "Could not update task %q", task.Title)
		return models.Task{}, fmt.Errorf("update task %d: %w", task.ID, err)
	}
	// the path decides which record was replaced
	updated.ID = task.ID

	b.mu.Lock()
	if i := b.indexOf(task.ID); i >= 0 {
		b.tasks[i] = updated
	}
	b.mu.Unlock()

	return updated, nil
}

// Remove deletes a task once the user confirms. Declining returns ErrDeclined
// without contacting the server.
func (b *Board) Remove(ctx context.Context, id uint64) error {
	prompt := "Delete this task?"
	if task, ok := b.Task(id); ok {
		prompt = fmt.Sprintf("Delete task %q?", task.Title)
	}
	if !b.confirm.Confirm(prompt) {
		return ErrDeclined
	}

	if err := b.remote.DeleteTask(ctx, id); err != nil {
		b.logger.Error("failed to delete task", "task_id", id, "error", err)
		return fmt.Errorf("delete task %d: %w", id, err)
	}

	b.mu.Lock()
	if i := b.indexOf(id); i >= 0 {
		b.tasks = slices.Delete(b.tasks, i, i+1)
	}
	b.mu.Unlock()

	return nil
}

// Move shifts a task one column left (-1) or right (+1). Moving past either
// end of the board does nothing and returns the task unchanged.
func (b *Board) Move(ctx context.Context, task models.Task, direction int) (models.Task, error) {
	if direction != -1 && direction != 1 {
		return task, ErrInvalidDirection
	}

	current := slices.Index(b.stages, task.Status)
	if current < 0 {
		return task, fmt.Errorf("%w: %q", ErrUnknownStage, task.Status)
	}

	next := current + direction
	if next < 0 || next >= len(b.stages) {
		return task, nil
	}

	task.Status = b.stages[next]
	return b.Update(ctx, task)
}

// Wait blocks until every background drag reconciliation has finished
func (b *Board) Wait() {
	b.pending.Wait()
}

func (b *Board) notifyf(level NoticeLevel, format string, args ...any) {
	b.notify.Notify(Notice{Level: level, Message: fmt.Sprintf(format, args...)})
}

// indexOf must be called with mu held
func (b *Board) indexOf(id uint64) int {
	return slices.IndexFunc(b.tasks, func(t models.Task) bool {
		return t.ID == id
	})
}
