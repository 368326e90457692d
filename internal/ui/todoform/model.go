package todoform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/frezix0/TodoReact/internal/model"
	"github.com/frezix0/TodoReact/internal/theme"
)

const dateLayout = "2006-01-02"

// CreateSubmittedMsg is dispatched when the create form is submitted.
type CreateSubmittedMsg struct {
	Payload model.TodoCreate
}

// UpdateSubmittedMsg is dispatched when the edit form is submitted.
type UpdateSubmittedMsg struct {
	ID      int64
	Payload model.TodoUpdate
}

// TodoFormCancelMsg is dispatched when the user cancels the form.
type TodoFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	priority    model.Priority
	dueDate     string
	categoryID  int64
	completed   bool
}

// Model is the Bubble Tea model for the todo create/edit form.
type Model struct {
	form       *huh.Form
	fb         *formBindings
	editMode   bool
	editID     int64
	categories []model.Category
	saving     bool
	errMsg     string
	width      int
	height     int
}

// New creates a new todo form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{priority: model.PriorityMedium},
		width:  width,
		height: height,
	}
}

// SetCategories sets the options of the category selector.
func (m *Model) SetCategories(categories []model.Category) {
	m.categories = categories
}

// StartCreate initializes the form for a new todo. categoryID preselects a
// category; zero picks the first one.
func (m *Model) StartCreate(categoryID int64) tea.Cmd {
	m.editMode = false
	m.editID = 0
	m.fb.title = ""
	m.fb.description = ""
	m.fb.priority = model.PriorityMedium
	m.fb.dueDate = ""
	m.fb.completed = false
	m.fb.categoryID = categoryID
	if categoryID == 0 && len(m.categories) > 0 {
		m.fb.categoryID = m.categories[0].ID
	}
	return m.open()
}

// StartEdit initializes the form for editing an existing todo.
func (m *Model) StartEdit(todo model.Todo) tea.Cmd {
	m.editMode = true
	m.editID = todo.ID
	m.fb.title = todo.Title
	m.fb.description = todo.DescriptionText()
	m.fb.priority = todo.Priority
	m.fb.categoryID = todo.CategoryID
	m.fb.completed = todo.Completed
	if todo.DueDate != nil {
		m.fb.dueDate = todo.DueDate.Local().Format(dateLayout)
	} else {
		m.fb.dueDate = ""
	}
	return m.open()
}

// Fail reopens the form after a rejected save, keeping the entered values
// and showing msg.
func (m *Model) Fail(msg string) tea.Cmd {
	cmd := m.open()
	m.errMsg = msg
	return cmd
}

// Saving reports whether a submitted form is waiting for the server.
func (m Model) Saving() bool {
	return m.saving
}

// EditID returns the id of the todo being edited, or zero.
func (m Model) EditID() int64 {
	return m.editID
}

func (m *Model) open() tea.Cmd {
	m.saving = false
	m.errMsg = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the todo form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil || m.saving {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.saving = true
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return TodoFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the todo form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Todo"
	if m.editMode {
		titleText = "Edit Todo"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n"
	if m.errMsg != "" {
		content += theme.ErrorStyle.Render(m.errMsg) + "\n\n"
	}
	if m.saving {
		content += theme.NoticeStyle.Render("Saving...")
	} else {
		content += m.form.View()
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			CharLimit(model.MaxTitleLength).
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			CharLimit(model.MaxDescriptionLength).
			Value(&m.fb.description),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(
				huh.NewOption("High", model.PriorityHigh),
				huh.NewOption("Medium", model.PriorityMedium),
				huh.NewOption("Low", model.PriorityLow),
			).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DD (optional)").
			Value(&m.fb.dueDate).
			Validate(validateOptionalDate),
		m.categoryField(),
	}
	if m.editMode {
		fields = append(fields,
			huh.NewConfirm().
				Title("Completed").
				Affirmative("Done").
				Negative("Open").
				Value(&m.fb.completed),
		)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) categoryField() huh.Field {
	opts := make([]huh.Option[int64], len(m.categories))
	for i, c := range m.categories {
		opts[i] = huh.NewOption(c.Name, c.ID)
	}
	return huh.NewSelect[int64]().
		Title("Category").
		Options(opts...).
		Value(&m.fb.categoryID).
		Validate(func(id int64) error {
			if id <= 0 {
				return fmt.Errorf("category is required")
			}
			return nil
		})
}

func (m Model) handleSubmit() tea.Cmd {
	if m.editMode {
		msg := UpdateSubmittedMsg{ID: m.editID, Payload: updatePayload(*m.fb)}
		return func() tea.Msg { return msg }
	}
	msg := CreateSubmittedMsg{Payload: createPayload(*m.fb)}
	return func() tea.Msg { return msg }
}

func createPayload(fb formBindings) model.TodoCreate {
	payload := model.TodoCreate{
		Title:      strings.TrimSpace(fb.title),
		Priority:   fb.priority,
		CategoryID: fb.categoryID,
		DueDate:    parseDate(fb.dueDate),
	}
	if desc := strings.TrimSpace(fb.description); desc != "" {
		payload.Description = &desc
	}
	return payload
}

// updatePayload sends every field the form shows. An empty due date leaves
// the stored one unchanged.
func updatePayload(fb formBindings) model.TodoUpdate {
	title := strings.TrimSpace(fb.title)
	desc := strings.TrimSpace(fb.description)
	priority := fb.priority
	categoryID := fb.categoryID
	completed := fb.completed
	return model.TodoUpdate{
		Title:       &title,
		Description: &desc,
		Completed:   &completed,
		Priority:    &priority,
		DueDate:     parseDate(fb.dueDate),
		CategoryID:  &categoryID,
	}
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil
	}
	return &t
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	_, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}
