package todolist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/frezix0/TodoReact/internal/model"
	"github.com/frezix0/TodoReact/internal/theme"
)

// TodoItem wraps a model.Todo so it can be used in a bubbles/list.
type TodoItem struct {
	Todo model.Todo

	// Category is the owning category, when known.
	Category *model.Category

	Overdue bool
}

// FilterValue returns the string used for fuzzy filtering.
func (i TodoItem) FilterValue() string { return i.Todo.Title }

// Title returns the todo title for the list.
func (i TodoItem) Title() string { return i.Todo.Title }

// Description returns a short summary line for the list.
func (i TodoItem) Description() string {
	parts := []string{
		priorityLabel(i.Todo.Priority),
		categoryName(i.Category),
		relativeTime(i.Todo.UpdatedAt),
	}
	return strings.Join(parts, " | ")
}

// newTodoItem resolves the category of t. The embedded category wins over
// the lookup table since it comes from the same response.
func newTodoItem(t model.Todo, categories map[int64]model.Category, now time.Time) TodoItem {
	item := TodoItem{Todo: t, Overdue: t.IsOverdue(now)}
	if t.Category != nil {
		c := *t.Category
		item.Category = &c
	} else if c, ok := categories[t.CategoryID]; ok {
		item.Category = &c
	}
	return item
}

// ItemDelegate implements list.ItemDelegate for rendering todo rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single todo row.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TodoItem)
	if !ok {
		return
	}
	fmt.Fprint(w, renderRow(ti, index == m.Index()))
}

func renderRow(ti TodoItem, isSelected bool) string {
	t := ti.Todo

	prefix := "○"
	if t.Completed {
		prefix = "✓"
	}

	priBadge := theme.PriorityStyle(t.Priority).Render(priorityLabel(t.Priority))

	catBadge := ""
	if ti.Category != nil {
		catBadge = " " + theme.CategoryStyle(ti.Category.Color).Render(ti.Category.Name)
	}

	dueDateStr := ""
	if t.DueDate != nil {
		dueDateStr = theme.DueDateStyle.Render(" " + t.DueDate.Local().Format("Jan 02"))
	}

	overdueStr := ""
	if ti.Overdue {
		overdueStr = theme.OverdueStyle.Render(" OVERDUE")
	}

	timeStr := lipgloss.NewStyle().
		Foreground(theme.ColorGray).
		Render(relativeTime(t.UpdatedAt))

	line := fmt.Sprintf(
		"%s %s %s%s%s%s  %s",
		prefix, priBadge, t.Title, catBadge, dueDateStr, overdueStr, timeStr,
	)

	if t.Completed {
		line = theme.DimmedStyle.Render(line)
	}

	if isSelected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	}
}

// priorityLabel returns a short label for the given priority level.
func priorityLabel(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "HIGH"
	case model.PriorityMedium:
		return "MED "
	case model.PriorityLow:
		return "LOW "
	default:
		return "??? "
	}
}

func categoryName(c *model.Category) string {
	if c == nil {
		return "uncategorized"
	}
	return c.Name
}
