package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/yukikurage/isp-kanban/internal/models"
)

// One Dark palette
var (
	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")
	ColorFgComment = lipgloss.Color("#5C6370")

	ColorRed     = lipgloss.Color("#E06C75")
	ColorGreen   = lipgloss.Color("#98C379")
	ColorYellow  = lipgloss.Color("#E5C07B")
	ColorBlue    = lipgloss.Color("#61AFEF")
	ColorMagenta = lipgloss.Color("#C678DD")
	ColorCyan    = lipgloss.Color("#56B6C2")
	ColorOrange  = lipgloss.Color("#D19A66")

	ColorBorder = lipgloss.Color("#3F4451")
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true).
			PaddingLeft(1)

	// Columns
	ColumnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	ActiveColumnStyle = ColumnStyle.
				BorderForeground(ColorBlue)

	ColumnTitleStyle = lipgloss.NewStyle().
				Foreground(ColorMagenta).
				Bold(true)

	// Cards
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(ColorBorder).
			PaddingLeft(1)

	SelectedCardStyle = CardStyle.
				BorderForeground(ColorGreen).
				Bold(true)

	DraggedCardStyle = CardStyle.
				BorderForeground(ColorYellow).
				Foreground(ColorYellow)

	DropMarkerStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	CardMetaStyle = lipgloss.NewStyle().
			Foreground(ColorFgComment)

	// Dialogs
	DialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBlue).
			Padding(1, 2)

	DialogTitleStyle = lipgloss.NewStyle().
				Foreground(ColorBlue).
				Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			Width(14)

	FocusedLabelStyle = LabelStyle.
				Foreground(ColorGreen)

	InputPromptStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)

	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			PaddingLeft(1).
			PaddingRight(1)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorCyan)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorFgComment)
)

// PriorityStyle colours a priority label by urgency
func PriorityStyle(p models.TaskPriority) lipgloss.Style {
	switch p {
	case models.TaskPriorityCritical:
		return lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	case models.TaskPriorityHigh:
		return lipgloss.NewStyle().Foreground(ColorOrange)
	case models.TaskPriorityLow:
		return lipgloss.NewStyle().Foreground(ColorFgComment)
	default:
		return lipgloss.NewStyle().Foreground(ColorFgPrimary)
	}
}
