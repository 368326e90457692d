package todolist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/frezix0/TodoReact/internal/keys"
	"github.com/frezix0/TodoReact/internal/model"
	appsync "github.com/frezix0/TodoReact/internal/sync"
	"github.com/frezix0/TodoReact/internal/theme"
)

// SearchDebounce is how long typing must pause before a search is
// committed.
const SearchDebounce = 300 * time.Millisecond

// SearchCommittedMsg is sent when the search term should be applied.
type SearchCommittedMsg struct {
	Term string
}

// FilterMsg asks the parent to change the todo filters.
type FilterMsg struct {
	Options []appsync.FilterOption
}

// PageMsg asks the parent to load the given page.
type PageMsg struct {
	Page int
}

// SelectedTodoMsg is sent when a user opens a todo.
type SelectedTodoMsg struct {
	ID int64
}

type searchDebounceMsg struct {
	seq  int
	term string
}

// Model is the todo list view. It renders store snapshots and turns keys
// into intent messages; it never talks to the stores itself.
type Model struct {
	list        list.Model
	keys        *keys.KeyMap
	state       appsync.TodoState
	categories  []model.Category
	searchMode  bool
	searchInput textinput.Model
	searchSeq   int
	committed   string
	debounce    time.Duration
	now         func() time.Time
	width       int
	height      int
}

// New creates a new todo list model.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, listHeight(height))
	l.Title = "Todos"
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search todos..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		keys:        k,
		state:       appsync.TodoState{Filters: model.DefaultTodoFilters()},
		searchInput: si,
		debounce:    SearchDebounce,
		now:         time.Now,
		width:       width,
		height:      height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// SetState replaces the rendered snapshot, keeping the cursor on the same
// todo when it is still listed.
func (m *Model) SetState(state appsync.TodoState) tea.Cmd {
	var keepID int64
	if cur, ok := m.SelectedTodo(); ok {
		keepID = cur.ID
	}

	m.state = state
	byID := make(map[int64]model.Category, len(m.categories))
	for _, c := range m.categories {
		byID[c.ID] = c
	}

	now := m.now()
	items := make([]list.Item, len(state.Todos))
	cursor := -1
	for i, t := range state.Todos {
		items[i] = newTodoItem(t, byID, now)
		if t.ID == keepID {
			cursor = i
		}
	}
	cmd := m.list.SetItems(items)
	if cursor >= 0 {
		m.list.Select(cursor)
	}
	return cmd
}

// SetCategories sets the categories used for badges and the category filter.
func (m *Model) SetCategories(categories []model.Category) {
	m.categories = categories
}

// SelectedTodo returns the todo under the cursor.
func (m Model) SelectedTodo() (model.Todo, bool) {
	item, ok := m.list.SelectedItem().(TodoItem)
	if !ok {
		return model.Todo{}, false
	}
	return item.Todo, true
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.searchMode
}

// Update handles messages for the todo list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchDebounceMsg:
		if msg.seq != m.searchSeq {
			return m, nil
		}
		cmd := m.commitSearch(msg.term)
		return m, cmd

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys processes key input while in search mode. The input
// updates immediately; the search itself is committed once typing pauses.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.searchSeq++
		m.searchInput.Blur()
		cmd := m.commitSearch(m.searchInput.Value())
		return m, cmd

	case "esc":
		m.searchMode = false
		m.searchSeq++
		m.searchInput.Reset()
		m.searchInput.Blur()
		cmd := m.commitSearch("")
		return m, cmd
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() == before {
		return m, cmd
	}

	m.searchSeq++
	return m, tea.Batch(cmd, m.debounceSearch(m.searchSeq, m.searchInput.Value()))
}

func (m Model) debounceSearch(seq int, term string) tea.Cmd {
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq, term: term}
	})
}

func (m *Model) commitSearch(term string) tea.Cmd {
	term = strings.TrimSpace(term)
	if term == m.committed {
		return nil
	}
	m.committed = term
	return emit(SearchCommittedMsg{Term: term})
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	f := m.state.Filters

	switch {
	case key.Matches(msg, m.keys.Select):
		todo, ok := m.SelectedTodo()
		if !ok {
			return m, nil
		}
		return m, emit(SelectedTodoMsg{ID: todo.ID})

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.searchInput.SetValue(m.committed)
		m.searchInput.CursorEnd()
		cmd := m.searchInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.FilterCompletion):
		return m, filter(appsync.WithCompleted(nextCompletion(f.Completed)))

	case key.Matches(msg, m.keys.FilterPriority):
		return m, filter(appsync.WithPriority(nextPriority(f.Priority)))

	case key.Matches(msg, m.keys.FilterCategory):
		return m, filter(appsync.WithCategory(nextCategory(f.CategoryID, m.categories)))

	case key.Matches(msg, m.keys.ClearFilters):
		m.committed = ""
		m.searchInput.Reset()
		return m, filter(appsync.ResetFilters())

	case key.Matches(msg, m.keys.CycleSort):
		return m, filter(appsync.WithSort(nextSortKey(f.SortBy), f.SortOrder))

	case key.Matches(msg, m.keys.FlipOrder):
		return m, filter(appsync.WithSort(f.SortBy, f.SortOrder.Flip()))

	case key.Matches(msg, m.keys.NextPage):
		p := m.state.Pagination
		if !p.HasNext {
			return m, nil
		}
		return m, emit(PageMsg{Page: p.CurrentPage + 1})

	case key.Matches(msg, m.keys.PrevPage):
		p := m.state.Pagination
		if !p.HasPrev {
			return m, nil
		}
		return m, emit(PageMsg{Page: p.CurrentPage - 1})
	}

	// Delegate to the list for cursor movement
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// nextCompletion cycles all → pending → completed → all.
func nextCompletion(cur *bool) *bool {
	switch {
	case cur == nil:
		v := false
		return &v
	case !*cur:
		v := true
		return &v
	default:
		return nil
	}
}

// nextPriority cycles all → high → medium → low → all.
func nextPriority(cur *model.Priority) *model.Priority {
	if cur == nil {
		p := model.Priorities[0]
		return &p
	}
	for i, p := range model.Priorities {
		if p == *cur && i+1 < len(model.Priorities) {
			next := model.Priorities[i+1]
			return &next
		}
	}
	return nil
}

// nextCategory cycles all → each category in order → all.
func nextCategory(cur *int64, categories []model.Category) *int64 {
	if len(categories) == 0 {
		return nil
	}
	if cur == nil {
		id := categories[0].ID
		return &id
	}
	for i, c := range categories {
		if c.ID == *cur && i+1 < len(categories) {
			id := categories[i+1].ID
			return &id
		}
	}
	return nil
}

func nextSortKey(cur model.SortKey) model.SortKey {
	for i, k := range model.SortKeys {
		if k == cur {
			return model.SortKeys[(i+1)%len(model.SortKeys)]
		}
	}
	return model.SortKeys[0]
}

func filter(opts ...appsync.FilterOption) tea.Cmd {
	return emit(FilterMsg{Options: opts})
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// FilterSummary describes the active filters and sort in one line.
func (m Model) FilterSummary() string {
	f := m.state.Filters
	var parts []string

	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", f.Search))
	}
	if f.Completed != nil {
		status := "pending"
		if *f.Completed {
			status = "completed"
		}
		parts = append(parts, "status: "+status)
	}
	if f.Priority != nil {
		parts = append(parts, "priority: "+string(*f.Priority))
	}
	if f.CategoryID != nil {
		name := fmt.Sprintf("#%d", *f.CategoryID)
		for _, c := range m.categories {
			if c.ID == *f.CategoryID {
				name = c.Name
				break
			}
		}
		parts = append(parts, "category: "+name)
	}

	arrow := "↓"
	if f.SortOrder == model.SortAsc {
		arrow = "↑"
	}
	parts = append(parts, fmt.Sprintf("sort: %s %s", f.SortBy, arrow))
	return strings.Join(parts, " · ")
}

// SummaryLine renders the aggregate counts.
func (m Model) SummaryLine() string {
	s := m.state.Summary
	return fmt.Sprintf(
		"%d total · %d done · %d pending · %d high · %d overdue",
		s.Total, s.Completed, s.Pending, s.HighPriority, s.Overdue,
	)
}

// PageIndicator renders the current page position.
func (m Model) PageIndicator() string {
	p := m.state.Pagination
	return fmt.Sprintf("Page %d/%d (%d todos)", p.CurrentPage, p.TotalPages, p.Total)
}

// View renders the todo list view.
func (m Model) View() string {
	gray := lipgloss.NewStyle().Foreground(theme.ColorGray)

	top := gray.Render(m.SummaryLine() + "   " + m.FilterSummary())
	if m.searchMode {
		top = lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
	}

	body := m.list.View()
	if len(m.list.Items()) == 0 {
		body = m.renderEmptyState()
	}

	footer := gray.Render(m.PageIndicator())
	switch {
	case m.state.Error != "":
		footer += "  " + theme.ErrorStyle.Render(m.state.Error)
	case m.state.Loading.Todos:
		footer += "  " + theme.NoticeStyle.Render("loading...")
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, body, footer)
}

// renderEmptyState shows guidance text when no todos are listed.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(listHeight(m.height)).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.state.Loading.Todos {
		return style.Render("Loading todos...")
	}
	if m.state.Filters.Active() {
		return style.Render("No matching todos.\nPress 0 to clear filters.")
	}
	return style.Render("No todos yet.\n\nPress n to create one.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, listHeight(height))
	m.searchInput.Width = width - 4
}

func listHeight(height int) int {
	h := height - 2
	if h < 1 {
		h = 1
	}
	return h
}
