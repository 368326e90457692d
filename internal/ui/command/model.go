package command

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/frezix0/TodoReact/internal/theme"
)

// CommandMsg is emitted when the user executes a command.
type CommandMsg string

// Spec describes one palette command.
type Spec struct {
	Name string
	Args string
	Help string
}

// Usage returns the command with its argument placeholder.
func (s Spec) Usage() string {
	if s.Args == "" {
		return s.Name
	}
	return s.Name + " " + s.Args
}

// Commands lists the palette commands in display order.
var Commands = []Spec{
	{Name: "refresh", Help: "reload todos and categories"},
	{Name: "new", Help: "create a todo"},
	{Name: "search", Args: "TEXT", Help: "search titles and descriptions"},
	{Name: "pending", Help: "show open todos"},
	{Name: "completed", Help: "show finished todos"},
	{Name: "all", Help: "show todos in any state"},
	{Name: "clear", Help: "reset all filters"},
	{Name: "sort", Args: "KEY", Help: "created_at, updated_at, title, priority, due_date"},
	{Name: "page", Args: "N", Help: "jump to page N"},
	{Name: "perpage", Args: "N", Help: "todos per page"},
	{Name: "categories", Help: "manage categories"},
	{Name: "settings", Help: "connection settings"},
	{Name: "quit", Help: "exit"},
}

const maxHistory = 20

// Model is the command palette view.
type Model struct {
	input   textinput.Model
	history []string
	cursor  int
	width   int
	height  int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.Focus()
	ti.Width = width - 6

	names := make([]string, len(Commands))
	for i, c := range Commands {
		names[i] = c.Name
	}
	ti.SetSuggestions(names)

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if cmd == "" {
				return m, nil
			}
			m.remember(cmd)
			return m, func() tea.Msg {
				return CommandMsg(cmd)
			}
		case "ctrl+p":
			m.recall(1)
			return m, nil
		case "ctrl+n":
			m.recall(-1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// remember appends cmd to the history, dropping an immediate repeat.
func (m *Model) remember(cmd string) {
	m.cursor = 0
	if n := len(m.history); n > 0 && m.history[n-1] == cmd {
		return
	}
	m.history = append(m.history, cmd)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

// recall moves through the history; step 1 goes back in time.
func (m *Model) recall(step int) {
	if len(m.history) == 0 {
		return
	}
	m.cursor = min(max(m.cursor+step, 0), len(m.history))
	if m.cursor == 0 {
		m.input.Reset()
		return
	}
	m.input.SetValue(m.history[len(m.history)-m.cursor])
	m.input.CursorEnd()
}

// Matches returns the commands whose name starts with the first word of
// the current input.
func (m Model) Matches() []Spec {
	word := strings.Fields(m.input.Value())
	if len(word) == 0 {
		return Commands
	}
	var out []Spec
	for _, c := range Commands {
		if strings.HasPrefix(c.Name, word[0]) {
			out = append(out, c)
		}
	}
	return out
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	title := titleStyle.Render("Command Palette")

	nameStyle := lipgloss.NewStyle().Foreground(theme.ColorBlue)
	helpStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	var lines []string
	for _, c := range m.Matches() {
		lines = append(lines, fmt.Sprintf("%s  %s",
			nameStyle.Render(fmt.Sprintf("%-16s", c.Usage())),
			helpStyle.Render(c.Help),
		))
	}
	if len(lines) == 0 {
		lines = append(lines, helpStyle.Render("no matching command"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.input.View(),
		"",
		strings.Join(lines, "\n"),
		"",
		helpStyle.Render("tab complete | ctrl+p/ctrl+n history | enter run | esc back"),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
