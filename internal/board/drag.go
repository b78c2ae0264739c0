package board

import (
	"context"
	"fmt"
	"slices"

	"github.com/yukikurage/isp-kanban/internal/models"
)

// Position is a slot on the board: a column and an index within it
type Position struct {
	Column models.TaskStatus
	Index  int
}

// DragEvent describes a finished drag gesture. Destination is nil when the
// card was dropped outside every column.
type DragEvent struct {
	TaskID      uint64
	Source      Position
	Destination *Position
}

// ReorderByDrag places the dragged task at its destination right away and then
// saves the record in the background. If the save fails the whole board is
// reloaded from the server. Dropping a card back where it started, or outside
// every column, never reaches the server. The API stores no card order, so a
// reorder inside one column sends the record unchanged and the order itself
// lasts until the next reload.
func (b *Board) ReorderByDrag(ctx context.Context, ev DragEvent) error {
	if ev.Destination == nil || *ev.Destination == ev.Source {
		return nil
	}

	target := ev.Destination.Column
	if !slices.Contains(b.stages, target) {
		return fmt.Errorf("%w: %q", ErrUnknownStage, target)
	}

	b.mu.Lock()
	i := b.indexOf(ev.TaskID)
	if i < 0 {
		b.mu.Unlock()
		return ErrTaskNotFound
	}

	previous := b.tasks[i]
	moved := previous
	moved.Status = target

	b.tasks = slices.Delete(b.tasks, i, i+1)
	at := b.insertionPoint(target, ev.Destination.Index)
	b.tasks = slices.Insert(b.tasks, at, moved)
	b.mu.Unlock()

	b.logger.Debug("task dragged",
		"task_id", moved.ID,
		"from", previous.Status,
		"to", target,
	)

	b.pending.Add(1)
	go b.saveDragged(context.WithoutCancel(ctx), moved)
	return nil
}

func (b *Board) saveDragged(ctx context.Context, task models.Task) {
	defer b.pending.Done()

	updated, err := b.remote.UpdateTask(ctx, task)
	if err != nil {
		b.logger.Error("failed to save dragged task, reloading board",
			"task_id", task.ID,
			"status", task.Status,
			"error", err,
		)
		reloadErr := b.LoadAll(ctx)
		if reloadErr != nil {
			b.notifyf(NoticeError, "Could not move %q and the board could not be reloaded", task.Title)
			return
		}
		b.notifyf(NoticeError, "Could not move %q; board reloaded", task.Title)
		return
	}

	updated.ID = task.ID
	b.mu.Lock()
	// a later drag of the same card owns the slot now
	if j := b.indexOf(task.ID); j >= 0 && b.tasks[j].Status == task.Status {
		b.tasks[j] = updated
	}
	b.mu.Unlock()
}

// insertionPoint returns the cache index at which a task becomes the index-th
// card of column. Must be called with mu held.
func (b *Board) insertionPoint(column models.TaskStatus, index int) int {
	seen := 0
	last := -1
	for j, t := range b.tasks {
		if t.Status != column {
			continue
		}
		if seen == index {
			return j
		}
		seen++
		last = j
	}
	if last >= 0 {
		return last + 1
	}
	return len(b.tasks)
}
