package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/frezix0/TodoReact/internal/theme"
)

// Smallest terminal the layout renders into.
const (
	MinWidth  = 60
	MinHeight = 12
)

// Layout manages the terminal frame: a one-line header, the content area
// and a one-line status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left for the active view.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight, 0)
}

// TooSmall reports whether the terminal is below the minimum size.
func (l Layout) TooSmall() bool {
	return l.Width < MinWidth || l.Height < MinHeight
}

// RenderTooSmall asks the user to enlarge the terminal.
func (l Layout) RenderTooSmall() string {
	return lipgloss.NewStyle().
		Width(l.Width).
		Height(l.Height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(fmt.Sprintf(
			"Terminal too small (%dx%d)\nneed at least %dx%d",
			l.Width, l.Height, MinWidth, MinHeight,
		))
}

// RenderHeader renders the title, the current section and the sync state
// right-aligned.
func (l Layout) RenderHeader(title, section, syncStatus string) string {
	left := title
	if section != "" {
		left += " › " + section
	}
	leftRendered := theme.HeaderStyle.Render(left)
	statusRendered := theme.HeaderStyle.
		Foreground(theme.SyncStyle(syncStatus).GetForeground()).
		Render(syncStatus)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftRendered,
		fill(theme.HeaderStyle, l.Width-lipgloss.Width(leftRendered)-lipgloss.Width(statusRendered)),
		statusRendered,
	)
}

// RenderStatusBar renders keyboard hints on the left and a transient
// notice on the right. The notice wins when both do not fit.
func (l Layout) RenderStatusBar(hints, notice string) string {
	noticeRendered := ""
	if notice != "" {
		noticeRendered = theme.StatusBarStyle.
			Foreground(theme.NoticeStyle.GetForeground()).
			Render(notice)
	}
	room := l.Width - lipgloss.Width(noticeRendered)
	hintsRendered := theme.StatusBarStyle.
		MaxWidth(max(room, 0)).
		Render(hints)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		hintsRendered,
		fill(theme.StatusBarStyle, room-lipgloss.Width(hintsRendered)),
		noticeRendered,
	)
}

// RenderWithFrame stacks the header, content area and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

// fill renders width blank cells in the background of style.
func fill(style lipgloss.Style, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Width(width).
		Background(style.GetBackground()).
		Render("")
}
