package models

import (
	"slices"
	"time"
)

type TaskStatus string

const (
	TaskStatusBacklog    TaskStatus = "Backlog"
	TaskStatusInProgress TaskStatus = "En Proceso"
	TaskStatusStandBy    TaskStatus = "Stand-by"
	TaskStatusDone       TaskStatus = "Terminado"
)

// Stages is the full column order of the board, left to right.
var Stages = []TaskStatus{
	TaskStatusBacklog,
	TaskStatusInProgress,
	TaskStatusStandBy,
	TaskStatusDone,
}

// ButtonStages is the column order used when tasks only move one step at a
// time with the arrow buttons. It has no Stand-by column.
var ButtonStages = []TaskStatus{
	TaskStatusBacklog,
	TaskStatusInProgress,
	TaskStatusDone,
}

// IsValid reports whether s is one of the known stages
func (s TaskStatus) IsValid() bool {
	return slices.Contains(Stages, s)
}

type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "Baja"
	TaskPriorityMedium   TaskPriority = "Media"
	TaskPriorityHigh     TaskPriority = "Alta"
	TaskPriorityCritical TaskPriority = "Crítica"
)

var Priorities = []TaskPriority{
	TaskPriorityLow,
	TaskPriorityMedium,
	TaskPriorityHigh,
	TaskPriorityCritical,
}

// IsValid reports whether p is one of the four priority levels
func (p TaskPriority) IsValid() bool {
	return slices.Contains(Priorities, p)
}

type Task struct {
	ID              uint64       `gorm:"primarykey" json:"id"`
	Title           string       `gorm:"not null" json:"title" validate:"notblank"`
	Description     string       `gorm:"type:text" json:"description"`
	Node            string       `gorm:"type:varchar(255)" json:"node"`
	ResponsibleName string       `gorm:"type:varchar(255)" json:"responsible_name"`
	Priority        TaskPriority `gorm:"type:varchar(20);not null;default:'Media'" json:"priority" validate:"task_priority"`
	Status          TaskStatus   `gorm:"type:varchar(20);not null;default:'Backlog'" json:"status" validate:"task_status"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// ApplyDefaults fills the enumerated fields a draft may leave empty
func (t *Task) ApplyDefaults() {
	if t.Priority == "" {
		t.Priority = TaskPriorityMedium
	}
	if t.Status == "" {
		t.Status = TaskStatusBacklog
	}
}
