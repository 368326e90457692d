package app

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/frezix0/TodoReact/internal/model"
)

// deleteConfirm is the yes/no dialog shown before a todo is deleted.
// value lives on the heap so huh's pointer survives model copies.
type deleteConfirm struct {
	id    int64
	value *bool
	form  *huh.Form
}

func newDeleteConfirm(todo model.Todo, width int) *deleteConfirm {
	value := false
	w := min(max(width-4, 40), 100)
	return &deleteConfirm{
		id:    todo.ID,
		value: &value,
		form: huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Delete %q?", todo.Title)).
					Description("This cannot be undone.").
					Affirmative("Yes, delete").
					Negative("Cancel").
					Value(&value),
			),
		).WithWidth(w),
	}
}

func (c *deleteConfirm) View() string {
	return lipgloss.NewStyle().Padding(1, 2).Render(c.form.View())
}
