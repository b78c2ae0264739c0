package tui

import (
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yukikurage/isp-kanban/internal/models"
)

// Form fields in tab order. Text fields come first and map onto inputs.
const (
	fieldTitle = iota
	fieldDescription
	fieldNode
	fieldResponsible
	fieldPriority
	fieldStatus
)

var fieldLabels = []string{"Title", "Description", "Node", "Responsible", "Priority", "Status"}

// taskForm edits a single task. New tasks have no status field and land in
// the first column.
type taskForm struct {
	editing bool
	base    models.Task

	inputs   []textinput.Model
	priority int
	stages   []models.TaskStatus
	status   int

	focus int
	err   error
}

func newTaskForm(base models.Task, stages []models.TaskStatus, editing bool) taskForm {
	base.ApplyDefaults()

	values := []string{base.Title, base.Description, base.Node, base.ResponsibleName}
	inputs := make([]textinput.Model, len(values))
	for i, v := range values {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 255
		ti.Width = 40
		ti.SetValue(v)
		inputs[i] = ti
	}
	inputs[fieldDescription].CharLimit = 2000
	inputs[fieldTitle].Placeholder = "Required"

	// keep a status outside the board's columns selectable so editing
	// other fields does not move the task
	stages = slices.Clone(stages)
	if !slices.Contains(stages, base.Status) {
		stages = append(stages, base.Status)
	}

	f := taskForm{
		editing:  editing,
		base:     base,
		inputs:   inputs,
		priority: max(slices.Index(models.Priorities, base.Priority), 0),
		stages:   stages,
		status:   max(slices.Index(stages, base.Status), 0),
	}
	f.setFocus(fieldTitle)
	return f
}

func (f *taskForm) fieldCount() int {
	if f.editing {
		return fieldStatus + 1
	}
	return fieldPriority + 1
}

func (f *taskForm) setFocus(field int) {
	n := f.fieldCount()
	f.focus = (field%n + n) % n
	for i := range f.inputs {
		if i == f.focus {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

// Update handles navigation and editing keys. Left and right cycle the
// priority and status selectors; every other key goes to the focused input.
func (f taskForm) Update(msg tea.Msg, keys KeyMap) (taskForm, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, keys.Next):
			f.setFocus(f.focus + 1)
			return f, textinput.Blink
		case key.Matches(msg, keys.Prev):
			f.setFocus(f.focus - 1)
			return f, textinput.Blink
		}

		if f.focus >= fieldPriority {
			step := 0
			switch {
			case key.Matches(msg, keys.Left):
				step = -1
			case key.Matches(msg, keys.Right):
				step = 1
			}
			if f.focus == fieldPriority {
				f.priority = cycle(f.priority, step, len(models.Priorities))
			} else {
				f.status = cycle(f.status, step, len(f.stages))
			}
			return f, nil
		}
	}

	if f.focus < len(f.inputs) {
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		return f, cmd
	}
	return f, nil
}

// Task returns the edited record, or the validation error that keeps it from
// being saved.
func (f taskForm) Task() (models.Task, error) {
	task := f.base
	task.Title = strings.TrimSpace(f.inputs[fieldTitle].Value())
	task.Description = strings.TrimSpace(f.inputs[fieldDescription].Value())
	task.Node = strings.TrimSpace(f.inputs[fieldNode].Value())
	task.ResponsibleName = strings.TrimSpace(f.inputs[fieldResponsible].Value())
	task.Priority = models.Priorities[f.priority]
	if f.editing {
		task.Status = f.stages[f.status]
	}
	if err := models.ValidateTask(task); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func (f taskForm) View() string {
	title := "New task"
	if f.editing {
		title = "Edit task"
	}

	lines := []string{DialogTitleStyle.Render(title), ""}
	for i := 0; i < f.fieldCount(); i++ {
		label := LabelStyle.Render(fieldLabels[i])
		if i == f.focus {
			label = FocusedLabelStyle.Render(fieldLabels[i])
		}

		var value string
		switch i {
		case fieldPriority:
			p := models.Priorities[f.priority]
			value = "‹ " + PriorityStyle(p).Render(string(p)) + " ›"
		case fieldStatus:
			value = "‹ " + string(f.stages[f.status]) + " ›"
		default:
			value = f.inputs[i].View()
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, label, value))
	}

	lines = append(lines, "")
	if f.err != nil {
		lines = append(lines, ErrorStyle.Render(f.err.Error()), "")
	}
	lines = append(lines, DimStyle.Render("tab next · ←/→ change choice · enter save · esc cancel"))

	return DialogStyle.Render(strings.Join(lines, "\n"))
}

func cycle(i, step, n int) int {
	if n == 0 {
		return 0
	}
	return ((i+step)%n + n) % n
}
