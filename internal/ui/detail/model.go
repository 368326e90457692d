package detail

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/frezix0/TodoReact/internal/keys"
	"github.com/frezix0/TodoReact/internal/model"
	"github.com/frezix0/TodoReact/internal/theme"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// Action is something the user asked to do with the displayed todo.
type Action string

// Detail view actions.
const (
	ActionEdit   Action = "edit"
	ActionToggle Action = "toggle"
	ActionDelete Action = "delete"
)

// ActionMsg signals the parent to execute an action on the current todo.
type ActionMsg struct {
	Action Action
	TodoID int64
}

// Model is the todo detail view component.
type Model struct {
	todo     *model.Todo
	category *model.Category
	viewport viewport.Model
	keys     *keys.KeyMap
	now      func() time.Time
	width    int
	height   int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		now:      time.Now,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return BackMsg{} }
		case key.Matches(msg, m.keys.Edit):
			return m, m.action(ActionEdit)
		case key.Matches(msg, m.keys.Toggle):
			return m, m.action(ActionToggle)
		case key.Matches(msg, m.keys.Delete):
			return m, m.action(ActionDelete)
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) action(a Action) tea.Cmd {
	if m.todo == nil {
		return nil
	}
	id := m.todo.ID
	return func() tea.Msg {
		return ActionMsg{Action: a, TodoID: id}
	}
}

// View renders the detail view.
func (m Model) View() string {
	if m.todo == nil {
		emptyStyle := lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray)
		return emptyStyle.Render("No todo selected")
	}

	return m.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.todo == nil {
		return ""
	}

	todo := m.todo
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(todo.Title))

	status := "OPEN"
	statusStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)
	if todo.Completed {
		status = "DONE"
		statusStyle = statusStyle.Foreground(theme.ColorGreen)
	}
	badges := []string{
		statusStyle.Render(status),
		theme.PriorityStyle(todo.Priority).Render(strings.ToUpper(string(todo.Priority))),
	}
	if m.category != nil {
		badges = append(badges, theme.CategoryStyle(m.category.Color).Render(m.category.Name))
	}
	if todo.IsOverdue(m.now()) {
		badges = append(badges, theme.OverdueStyle.Render("OVERDUE"))
	}
	sections = append(sections, strings.Join(badges, "  "), "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	meta := func(label, value string) {
		sections = append(sections, fmt.Sprintf(
			"%s %s",
			metaStyle.Render(fmt.Sprintf("%-9s", label+":")),
			valStyle.Render(value),
		))
	}

	if todo.DueDate != nil {
		meta("Due", todo.DueDate.Local().Format("2006-01-02"))
	}
	if !todo.CreatedAt.IsZero() {
		meta("Created", todo.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	if !todo.UpdatedAt.IsZero() {
		meta("Updated", todo.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	sections = append(sections, "", separator, "")

	descHeaderStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	sections = append(sections, descHeaderStyle.Render("Description"))

	body := todo.DescriptionText()
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No description")
	}
	sections = append(sections, body)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetTodo updates the displayed todo. category may be nil when unknown.
func (m *Model) SetTodo(todo *model.Todo, category *model.Category) {
	m.todo = todo
	m.category = category
	m.viewport.SetContent(m.renderContent())
}

// TodoID returns the id of the displayed todo, or zero.
func (m Model) TodoID() int64 {
	if m.todo == nil {
		return 0
	}
	return m.todo.ID
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
