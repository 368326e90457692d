package categorymgr

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/frezix0/TodoReact/internal/keys"
	"github.com/frezix0/TodoReact/internal/model"
	appsync "github.com/frezix0/TodoReact/internal/sync"
	"github.com/frezix0/TodoReact/internal/theme"
)

// CategoryListCloseMsg signals the parent to close the category view.
type CategoryListCloseMsg struct{}

// CreateSubmittedMsg asks the parent to create a category.
type CreateSubmittedMsg struct {
	Payload model.CategoryCreate
}

// UpdateSubmittedMsg asks the parent to update a category.
type UpdateSubmittedMsg struct {
	ID      int64
	Payload model.CategoryUpdate
}

// DeleteConfirmedMsg asks the parent to delete a category and its todos.
type DeleteConfirmedMsg struct {
	ID int64
}

type categoryMode int

const (
	modeList categoryMode = iota
	modeForm
	modeConfirmDelete
	modeSaving
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type formBindings struct {
	name    string
	color   string
	confirm bool
}

// Model is the Bubble Tea model for category management.
type Model struct {
	mode        categoryMode
	keys        *keys.KeyMap
	state       appsync.CategoryState
	selectedIdx int
	editingID   int64
	isNew       bool
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	errMsg      string
	width       int
	height      int
}

// New creates a new category manager model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		mode:  modeList,
		keys:  k,
		fb:    &formBindings{},
		width: width, height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetState replaces the rendered category snapshot.
func (m *Model) SetState(state appsync.CategoryState) {
	m.state = state
	n := len(state.Items)
	if m.selectedIdx >= n {
		m.selectedIdx = max(n-1, 0)
	}
}

// Selected returns the category under the cursor.
func (m Model) Selected() (model.Category, bool) {
	items := m.state.WithCounts()
	if m.selectedIdx < 0 || m.selectedIdx >= len(items) {
		return model.Category{}, false
	}
	return items[m.selectedIdx], true
}

// Busy reports whether a form or confirmation owns the keyboard.
func (m Model) Busy() bool {
	return m.mode != modeList
}

// Saved returns to the list after a confirmed save or delete.
func (m *Model) Saved(notice string) {
	m.mode = modeList
	m.errMsg = ""
	m.statusMsg = notice
}

// Fail handles a rejected save or delete. A failed save reopens the form
// with the entered values.
func (m *Model) Fail(msg string) tea.Cmd {
	m.statusMsg = ""
	m.errMsg = msg
	if m.confirmForm != nil && m.form == nil {
		m.mode = modeList
		return nil
	}
	m.form = m.buildForm()
	m.mode = modeForm
	return m.form.Init()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	n := len(m.state.Items)

	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CategoryListCloseMsg{} }

	case key.Matches(msg, m.keys.Down):
		if n > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % n
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if n > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = n - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.isNew = true
		m.editingID = 0
		m.fb.name = ""
		m.fb.color = model.DefaultCategoryColor
		m.errMsg = ""
		m.confirmForm = nil
		m.form = m.buildForm()
		m.mode = modeForm
		cmd := m.form.Init()
		return m, cmd

	case key.Matches(msg, m.keys.Edit):
		c, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.isNew = false
		m.editingID = c.ID
		m.fb.name = c.Name
		m.fb.color = c.Color
		m.errMsg = ""
		m.confirmForm = nil
		m.form = m.buildForm()
		m.mode = modeForm
		cmd := m.form.Init()
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		c, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.editingID = c.ID
		m.fb.confirm = false
		m.errMsg = ""
		m.form = nil
		m.confirmForm = m.buildConfirmForm(c)
		m.mode = modeConfirmDelete
		cmd := m.confirmForm.Init()
		return m, cmd
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Category name").
				CharLimit(model.MaxCategoryNameLength).
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Color").
				Placeholder(model.DefaultCategoryColor).
				Value(&m.fb.color).
				Validate(validateColor),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) buildConfirmForm(c model.Category) *huh.Form {
	warning := "The category has no todos."
	switch n := c.Count(); n {
	case 0:
	case 1:
		warning = "Its 1 todo will be deleted too."
	default:
		warning = fmt.Sprintf("Its %d todos will be deleted too.", n)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete category %q?", c.Name)).
				Description(warning).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(&m.fb.confirm),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.mode = modeSaving
		return m, m.submit()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		if m.fb.confirm {
			m.mode = modeSaving
			id := m.editingID
			return m, func() tea.Msg { return DeleteConfirmedMsg{ID: id} }
		}
		m.mode = modeList
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) submit() tea.Cmd {
	if m.isNew {
		msg := CreateSubmittedMsg{Payload: model.CategoryCreate{
			Name:  strings.TrimSpace(m.fb.name),
			Color: strings.TrimSpace(m.fb.color),
		}}
		return func() tea.Msg { return msg }
	}

	name := strings.TrimSpace(m.fb.name)
	color := strings.TrimSpace(m.fb.color)
	msg := UpdateSubmittedMsg{
		ID:      m.editingID,
		Payload: model.CategoryUpdate{Name: &name, Color: &color},
	}
	return func() tea.Msg { return msg }
}

// View renders the category manager.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return m.viewForm(m.form)
	case modeConfirmDelete:
		return m.viewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).MarginBottom(1)
	b.WriteString(titleStyle.Render("Categories"))
	b.WriteString("\n\n")

	items := m.state.WithCounts()
	switch {
	case len(items) == 0 && m.state.Loading.Categories:
		b.WriteString(theme.NoticeStyle.Render("Loading categories..."))
	case len(items) == 0:
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No categories yet. Press 'n' to create one."))
	default:
		for i, c := range items {
			swatch := theme.CategoryStyle(c.Color).Render("■")
			label := fmt.Sprintf("%s %s (%d)", swatch, c.Name, c.Count())

			if i == m.selectedIdx {
				b.WriteString(theme.SelectedItemStyle.Render(label))
			} else {
				b.WriteString(theme.ListItemStyle.Render(label))
			}
			b.WriteString("\n")
		}
	}

	if m.mode == modeSaving {
		b.WriteString("\n")
		b.WriteString(theme.NoticeStyle.Render("Saving..."))
	}
	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorStyle.Render(m.errMsg))
	} else if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.NoticeStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Render(
		"n new | e edit | d delete | esc back",
	))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) viewForm(f *huh.Form) string {
	if f == nil {
		return ""
	}
	content := f.View()
	if m.errMsg != "" {
		content = theme.ErrorStyle.Render(m.errMsg) + "\n\n" + content
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
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

func validateColor(s string) error {
	if !hexColor.MatchString(strings.TrimSpace(s)) {
		return fmt.Errorf("color must look like #RRGGBB")
	}
	return nil
}
