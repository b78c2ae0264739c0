// Package tui renders the kanban board in the terminal and turns key presses
// into board operations.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/yukikurage/isp-kanban/internal/board"
	"github.com/yukikurage/isp-kanban/internal/constants"
	"github.com/yukikurage/isp-kanban/internal/models"
)

// ViewMode represents the current view
type ViewMode int

const (
	ViewModeBoard    ViewMode = iota // Columns and cards
	ViewModeForm                     // New/edit task form
	ViewModeConfirm                  // Yes/no prompt
	ViewModeIncident                 // Incident text entry
	ViewModeDrafts                   // Drafts returned by the API
	ViewModeHelp                     // Help overlay
)

// Messages
type tasksLoadedMsg struct {
	err error
}

type taskSavedMsg struct {
	task    models.Task
	created bool
	err     error
}

type taskMovedMsg struct {
	task models.Task
	from models.TaskStatus
	err  error
}

type taskDeletedMsg struct {
	title string
	err   error
}

type draftsMsg struct {
	drafts []models.Task
	err    error
}

// Drafter turns incident text into unsaved task drafts
type Drafter interface {
	GenerateDrafts(ctx context.Context, text string) ([]models.Task, error)
}

type dragState struct {
	taskID uint64
	title  string
	source board.Position
	target board.Position
}

// Option configures a Model
type Option func(*Model)

// WithDrafter enables drafting tasks from incident text
func WithDrafter(d Drafter) Option {
	return func(m *Model) {
		m.drafter = d
	}
}

func WithKeyMap(k KeyMap) Option {
	return func(m *Model) {
		m.keys = k
	}
}

// Model is the root Bubble Tea model
type Model struct {
	ctx     context.Context
	board   *board.Board
	drafter Drafter
	keys    KeyMap

	// Terminal dimensions
	width  int
	height int
	ready  bool

	viewMode ViewMode

	// Selected card
	col int
	row int

	// Keyboard drag in progress
	drag *dragState

	form     taskForm
	confirm  *confirmRequestMsg
	incident textinput.Model
	drafts   []models.Task
	draftIdx int

	notice  *board.Notice
	loading bool
}

// NewModel creates a model over b. Board operations run with ctx.
func NewModel(ctx context.Context, b *board.Board, opts ...Option) Model {
	incident := textinput.New()
	incident.Placeholder = "Describe the incident..."
	incident.Prompt = "❯ "
	incident.PromptStyle = InputPromptStyle
	incident.CharLimit = constants.MaxIncidentTextLength
	incident.Width = 60

	m := Model{
		ctx:      ctx,
		board:    b,
		keys:     DefaultKeyMap(),
		incident: incident,
		loading:  true,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init loads the board
func (m Model) Init() tea.Cmd {
	return m.loadCmd()
}

func (m Model) loadCmd() tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		return tasksLoadedMsg{err: b.LoadAll(ctx)}
	}
}

func (m Model) createCmd(draft models.Task) tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		task, err := b.Create(ctx, draft)
		return taskSavedMsg{task: task, created: true, err: err}
	}
}

func (m Model) updateCmd(task models.Task) tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		updated, err := b.Update(ctx, task)
		return taskSavedMsg{task: updated, err: err}
	}
}

func (m Model) moveCmd(task models.Task, direction int) tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		moved, err := b.Move(ctx, task, direction)
		return taskMovedMsg{task: moved, from: task.Status, err: err}
	}
}

// removeCmd runs off the update loop because Remove blocks on the prompt
func (m Model) removeCmd(task models.Task) tea.Cmd {
	b, ctx := m.board, m.ctx
	return func() tea.Msg {
		return taskDeletedMsg{title: task.Title, err: b.Remove(ctx, task.ID)}
	}
}

func (m Model) draftCmd(text string) tea.Cmd {
	d, ctx := m.drafter, m.ctx
	return func() tea.Msg {
		drafts, err := d.GenerateDrafts(ctx, text)
		return draftsMsg{drafts: drafts, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.incident.Width = max(msg.Width-12, 10)
		return m, nil

	case tasksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.setNotice(board.NoticeError, "Could not load tasks from the server")
		}
		m.clampSelection()
		return m, nil

	case taskSavedMsg:
		// failures were already reported through the notifier
		if msg.err == nil {
			if !msg.created {
				m.setNotice(board.NoticeInfo, fmt.Sprintf("Task %q saved", msg.task.Title))
			}
			m.focusTask(msg.task.ID)
		}
		return m, nil

	case taskMovedMsg:
		switch {
		case errors.Is(msg.err, board.ErrUnknownStage):
			m.setNotice(board.NoticeWarning, fmt.Sprintf("%q is in %s, which is not a column here", msg.task.Title, msg.from))
		case msg.err == nil && msg.task.Status != msg.from:
			m.setNotice(board.NoticeInfo, fmt.Sprintf("Moved %q to %s", msg.task.Title, msg.task.Status))
			m.focusTask(msg.task.ID)
		}
		return m, nil

	case taskDeletedMsg:
		switch {
		case errors.Is(msg.err, board.ErrDeclined):
			m.setNotice(board.NoticeInfo, "Deletion cancelled")
		case msg.err != nil:
			m.setNotice(board.NoticeError, fmt.Sprintf("Could not delete %q", msg.title))
		default:
			m.setNotice(board.NoticeInfo, fmt.Sprintf("Task %q deleted", msg.title))
		}
		m.clampSelection()
		return m, nil

	case draftsMsg:
		switch {
		case msg.err != nil:
			m.setNotice(board.NoticeError, "Could not draft tasks: "+msg.err.Error())
		case len(msg.drafts) == 0:
			m.setNotice(board.NoticeWarning, "No tasks could be drafted from that incident")
		default:
			m.drafts = msg.drafts
			m.draftIdx = 0
			m.viewMode = ViewModeDrafts
			m.notice = nil
		}
		return m, nil

	case noticeMsg:
		n := msg.notice
		m.notice = &n
		// a failed drag reloads the board behind our back
		m.clampSelection()
		return m, nil

	case confirmRequestMsg:
		// one prompt at a time; a second delete is declined, not stranded
		if m.confirm != nil {
			msg.answer <- false
			return m, nil
		}
		m.confirm = &msg
		m.viewMode = ViewModeConfirm
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	switch m.viewMode {
	case ViewModeForm:
		m.form, cmd = m.form.Update(msg, m.keys)
	case ViewModeIncident:
		m.incident, cmd = m.incident.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.viewMode {
	case ViewModeConfirm:
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.answer(true)
		case key.Matches(msg, m.keys.Decline):
			m.answer(false)
		}
		return m, nil

	case ViewModeForm:
		return m.handleFormKey(msg)

	case ViewModeIncident:
		return m.handleIncidentKey(msg)

	case ViewModeDrafts:
		return m.handleDraftsKey(msg)

	case ViewModeHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Escape, m.keys.Quit) {
			m.viewMode = ViewModeBoard
		}
		return m, nil
	}

	if m.drag != nil {
		return m.handleDragKey(msg)
	}
	return m.handleBoardKey(msg)
}

func (m Model) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.viewMode = ViewModeHelp

	case key.Matches(msg, m.keys.MoveLeft), key.Matches(msg, m.keys.MoveRight):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		direction := 1
		if key.Matches(msg, m.keys.MoveLeft) {
			direction = -1
		}
		return m, m.moveCmd(task, direction)

	case key.Matches(msg, m.keys.Left):
		m.col--
	case key.Matches(msg, m.keys.Right):
		m.col++
	case key.Matches(msg, m.keys.Up):
		m.row--
	case key.Matches(msg, m.keys.Down):
		m.row++

	case key.Matches(msg, m.keys.Grab):
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		source := board.Position{Column: task.Status, Index: m.row}
		m.drag = &dragState{taskID: task.ID, title: task.Title, source: source, target: source}
		return m, nil

	case key.Matches(msg, m.keys.New):
		return m.openForm(models.Task{}, false)

	case key.Matches(msg, m.keys.Edit):
		if task, ok := m.selected(); ok {
			return m.openForm(task, true)
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if task, ok := m.selected(); ok {
			return m, m.removeCmd(task)
		}
		return m, nil

	case key.Matches(msg, m.keys.Draft):
		if m.drafter == nil {
			m.setNotice(board.NoticeWarning, "Drafting from incidents is not available")
			return m, nil
		}
		m.incident.Reset()
		m.incident.Focus()
		m.viewMode = ViewModeIncident
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		m.notice = nil
		return m, m.loadCmd()
	}

	m.clampSelection()
	return m, nil
}

func (m Model) handleDragKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := *m.drag
	cols := m.board.Columns()
	i := slices.Index(cols, d.target.Column)

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Left):
		if i > 0 {
			d.target.Column = cols[i-1]
		}
	case key.Matches(msg, m.keys.Right):
		if i >= 0 && i < len(cols)-1 {
			d.target.Column = cols[i+1]
		}
	case key.Matches(msg, m.keys.Up):
		d.target.Index--
	case key.Matches(msg, m.keys.Down):
		d.target.Index++
	case key.Matches(msg, m.keys.Grab), key.Matches(msg, m.keys.Enter):
		target := d.target
		return m.drop(&target)
	case key.Matches(msg, m.keys.Escape):
		return m.drop(nil)
	}

	d.target.Index = min(max(d.target.Index, 0), m.dropSlots(d.target.Column, d.taskID))
	m.drag = &d
	return m, nil
}

// drop finishes the keyboard drag. A nil destination is a drop outside the
// board.
func (m Model) drop(destination *board.Position) (tea.Model, tea.Cmd) {
	d := m.drag
	m.drag = nil

	err := m.board.ReorderByDrag(m.ctx, board.DragEvent{
		TaskID:      d.taskID,
		Source:      d.source,
		Destination: destination,
	})
	if err != nil {
		m.setNotice(board.NoticeError, fmt.Sprintf("Could not move %q: %v", d.title, err))
	}
	m.focusTask(d.taskID)
	return m, nil
}

func (m Model) openForm(task models.Task, editing bool) (tea.Model, tea.Cmd) {
	m.form = newTaskForm(task, m.board.Columns(), editing)
	m.viewMode = ViewModeForm
	return m, textinput.Blink
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.viewMode = ViewModeBoard
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		task, err := m.form.Task()
		if err != nil {
			m.form.err = err
			return m, nil
		}
		m.viewMode = ViewModeBoard
		if m.form.editing {
			return m, m.updateCmd(task)
		}
		return m, m.createCmd(task)
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg, m.keys)
	return m, cmd
}

func (m Model) handleIncidentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.incident.Blur()
		m.viewMode = ViewModeBoard
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		text := strings.TrimSpace(m.incident.Value())
		if text == "" {
			return m, nil
		}
		m.incident.Blur()
		m.viewMode = ViewModeBoard
		m.setNotice(board.NoticeInfo, "Drafting tasks...")
		return m, m.draftCmd(text)
	}

	var cmd tea.Cmd
	m.incident, cmd = m.incident.Update(msg)
	return m, cmd
}

func (m Model) handleDraftsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Quit):
		m.drafts = nil
		m.viewMode = ViewModeBoard
	case key.Matches(msg, m.keys.Up):
		m.draftIdx = max(m.draftIdx-1, 0)
	case key.Matches(msg, m.keys.Down):
		m.draftIdx = min(m.draftIdx+1, len(m.drafts)-1)
	case key.Matches(msg, m.keys.Enter):
		draft := m.drafts[m.draftIdx]
		m.drafts = slices.Delete(m.drafts, m.draftIdx, m.draftIdx+1)
		return m.openForm(draft, false)
	}
	return m, nil
}

// answer replies to the pending prompt
func (m *Model) answer(yes bool) {
	if m.confirm != nil {
		m.confirm.answer <- yes
		m.confirm = nil
	}
	m.viewMode = ViewModeBoard
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.answer(false)
	return m, tea.Quit
}

func (m *Model) setNotice(level board.NoticeLevel, message string) {
	m.notice = &board.Notice{Level: level, Message: message}
}

func (m Model) columnTasks(i int) []models.Task {
	cols := m.board.Columns()
	if i < 0 || i >= len(cols) {
		return nil
	}
	return slices.Collect(m.board.TasksByColumn(cols[i]))
}

func (m Model) selected() (models.Task, bool) {
	tasks := m.columnTasks(m.col)
	if m.row < 0 || m.row >= len(tasks) {
		return models.Task{}, false
	}
	return tasks[m.row], true
}

func (m *Model) clampSelection() {
	m.col = min(max(m.col, 0), max(len(m.board.Columns())-1, 0))
	m.row = min(max(m.row, 0), max(len(m.columnTasks(m.col))-1, 0))
}

// focusTask selects the card with the given ID wherever it now sits
func (m *Model) focusTask(id uint64) {
	for i := range m.board.Columns() {
		for j, t := range m.columnTasks(i) {
			if t.ID == id {
				m.col, m.row = i, j
				return
			}
		}
	}
	m.clampSelection()
}

// dropSlots returns the last valid drop index in column for the dragged card
func (m Model) dropSlots(column models.TaskStatus, dragged uint64) int {
	n := 0
	for t := range m.board.TasksByColumn(column) {
		if t.ID != dragged {
			n++
		}
	}
	return n
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var body string
	switch m.viewMode {
	case ViewModeForm:
		body = m.center(m.form.View())
	case ViewModeConfirm:
		body = m.center(m.confirmView())
	case ViewModeIncident:
		body = m.center(m.incidentView())
	case ViewModeDrafts:
		body = m.center(m.draftsView())
	case ViewModeHelp:
		body = m.center(m.helpView())
	default:
		body = m.boardView()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatusBar(),
	)
}

func (m Model) bodyHeight() int {
	return max(m.height-3, 1)
}

func (m Model) center(s string) string {
	return lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, s)
}

func (m Model) renderHeader() string {
	title := HeaderStyle.Render("ISP-SYNC")
	subtitle := DimStyle.Render("Support ticket board")
	count := DimStyle.Render(fmt.Sprintf("%d tasks", len(m.board.Tasks())))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", subtitle, "  ", count) + "\n"
}

func (m Model) boardView() string {
	cols := m.board.Columns()
	if len(cols) == 0 {
		return ""
	}

	// 2 columns of border per box
	width := max(m.width/len(cols)-2, 16)
	views := make([]string, 0, len(cols))
	for i, stage := range cols {
		views = append(views, m.columnView(i, stage, width))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

func (m Model) columnView(i int, stage models.TaskStatus, width int) string {
	tasks := m.columnTasks(i)
	inner := width - 2

	lines := []string{
		ColumnTitleStyle.Render(fmt.Sprintf("%s (%d)", stage, len(tasks))),
		"",
	}

	dropping := m.drag != nil && m.drag.target.Column == stage
	marker := DropMarkerStyle.Render(ansi.Truncate("▸ drop here", inner, "…"))

	slot := 0
	for j, t := range tasks {
		if m.drag != nil && t.ID == m.drag.taskID {
			lines = append(lines, renderCard(t, inner, DraggedCardStyle))
			continue
		}
		if dropping && m.drag.target.Index == slot {
			lines = append(lines, marker)
		}
		style := CardStyle
		if m.drag == nil && i == m.col && j == m.row {
			style = SelectedCardStyle
		}
		lines = append(lines, renderCard(t, inner, style))
		slot++
	}
	if dropping && m.drag.target.Index >= slot {
		lines = append(lines, marker)
	}

	style := ColumnStyle
	if i == m.col {
		style = ActiveColumnStyle
	}
	return style.
		Width(width).
		Height(max(m.bodyHeight()-2, 1)).
		Render(strings.Join(lines, "\n"))
}

func renderCard(t models.Task, width int, style lipgloss.Style) string {
	text := width - 2

	meta := fmt.Sprintf("#%d", t.ID)
	if t.Node != "" {
		meta += " · " + t.Node
	}
	who := PriorityStyle(t.Priority).Render(string(t.Priority))
	if t.ResponsibleName != "" {
		who += CardMetaStyle.Render(" · " + t.ResponsibleName)
	}

	lines := []string{
		ansi.Truncate(t.Title, text, "…"),
		CardMetaStyle.Render(ansi.Truncate(meta, text, "…")),
		ansi.Truncate(who, text, "…"),
	}
	return style.Width(width).MarginBottom(1).Render(strings.Join(lines, "\n"))
}

func (m Model) confirmView() string {
	prompt := ""
	if m.confirm != nil {
		prompt = m.confirm.prompt
	}
	return DialogStyle.Render(strings.Join([]string{
		DialogTitleStyle.Render("Confirm"),
		"",
		prompt,
		"",
		HelpKeyStyle.Render("y") + HelpDescStyle.Render(" yes   ") +
			HelpKeyStyle.Render("n") + HelpDescStyle.Render(" no"),
	}, "\n"))
}

func (m Model) incidentView() string {
	return DialogStyle.Render(strings.Join([]string{
		DialogTitleStyle.Render("Draft tasks from an incident"),
		"",
		m.incident.View(),
		"",
		DimStyle.Render("enter send · esc cancel"),
	}, "\n"))
}

func (m Model) draftsView() string {
	lines := []string{DialogTitleStyle.Render("Drafted tasks"), ""}
	for i, d := range m.drafts {
		style := CardStyle
		if i == m.draftIdx {
			style = SelectedCardStyle
		}
		lines = append(lines, renderCard(d, 48, style))
	}
	lines = append(lines, DimStyle.Render("enter review and create · esc discard"))
	return DialogStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) helpView() string {
	lines := []string{DialogTitleStyle.Render("Keys"), ""}
	for _, group := range m.keys.FullHelp() {
		for _, b := range group {
			h := b.Help()
			lines = append(lines, HelpKeyStyle.Width(12).Render(h.Key)+HelpDescStyle.Render(h.Desc))
		}
		lines = append(lines, "")
	}
	return DialogStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatusBar() string {
	var text string
	switch {
	case m.drag != nil:
		text = WarningStyle.Render(fmt.Sprintf("Dragging %q", m.drag.title)) +
			DimStyle.Render(" · arrows pick a slot · space drop · esc cancel")
	case m.notice != nil:
		text = noticeStyle(m.notice.Level).Render(m.notice.Message)
	case m.loading:
		text = DimStyle.Render("Loading tasks...")
	default:
		parts := make([]string, 0, len(m.keys.ShortHelp()))
		for _, b := range m.keys.ShortHelp() {
			h := b.Help()
			parts = append(parts, HelpKeyStyle.Render(h.Key)+" "+DimStyle.Render(h.Desc))
		}
		text = strings.Join(parts, DimStyle.Render(" · "))
	}
	return StatusBarStyle.Render(text)
}

func noticeStyle(level board.NoticeLevel) lipgloss.Style {
	switch level {
	case board.NoticeError:
		return ErrorStyle
	case board.NoticeWarning:
		return WarningStyle
	default:
		return InfoStyle
	}
}
