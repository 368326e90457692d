package help

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/frezix0/TodoReact/internal/keys"
	"github.com/frezix0/TodoReact/internal/theme"
	"github.com/frezix0/TodoReact/internal/ui/command"
)

// groupTitles names the groups of keys.KeyMap.FullHelp in order.
var groupTitles = []string{
	"Navigation",
	"Search & commands",
	"Filters",
	"Sort & paging",
	"Todos & categories",
}

// Model is the scrollable help screen: shortcut groups followed by the
// command palette reference.
type Model struct {
	keys     *keys.KeyMap
	help     help.Model
	viewport viewport.Model
	width    int
	height   int
}

// New creates a new help view model.
func New(k *keys.KeyMap, width, height int) Model {
	m := Model{
		keys:     k,
		help:     help.New(),
		viewport: viewport.New(width-4, height-4),
	}
	m.SetSize(width, height)
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update scrolls the help text.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the help screen.
func (m Model) View() string {
	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(m.viewport.View())
}

func (m Model) renderContent() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	groupStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue)

	sections := []string{titleStyle.Render("Keyboard Shortcuts")}
	for i, group := range m.keys.FullHelp() {
		name := fmt.Sprintf("Group %d", i+1)
		if i < len(groupTitles) {
			name = groupTitles[i]
		}
		sections = append(sections,
			groupStyle.Render(name),
			m.help.FullHelpView([][]key.Binding{group}),
			"",
		)
	}

	sections = append(sections, titleStyle.Render("Commands (press :)"))
	nameStyle := lipgloss.NewStyle().Foreground(theme.ColorBlue)
	descStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	var lines []string
	for _, c := range command.Commands {
		lines = append(lines, nameStyle.Render(fmt.Sprintf("%-16s", c.Usage()))+" "+descStyle.Render(c.Help))
	}
	sections = append(sections, strings.Join(lines, "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
	m.viewport.Width = max(width-6, 0)
	m.viewport.Height = max(height-6, 1)
	m.viewport.SetContent(m.renderContent())
}
