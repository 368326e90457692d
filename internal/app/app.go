package app

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/sirupsen/logrus"

	"github.com/frezix0/TodoReact/internal/gateway"
	"github.com/frezix0/TodoReact/internal/keys"
	"github.com/frezix0/TodoReact/internal/logging"
	"github.com/frezix0/TodoReact/internal/model"
	appsync "github.com/frezix0/TodoReact/internal/sync"
	"github.com/frezix0/TodoReact/internal/ui"
	"github.com/frezix0/TodoReact/internal/ui/categorymgr"
	"github.com/frezix0/TodoReact/internal/ui/command"
	"github.com/frezix0/TodoReact/internal/ui/detail"
	helpview "github.com/frezix0/TodoReact/internal/ui/help"
	"github.com/frezix0/TodoReact/internal/ui/settings"
	"github.com/frezix0/TodoReact/internal/ui/todoform"
	"github.com/frezix0/TodoReact/internal/ui/todolist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewHelp
	ViewCommand
	ViewTodoForm
	ViewTodoDelete
	ViewCategories
	ViewSettings
)

// Model is the root Bubble Tea model. It renders store snapshots, routes
// input to the active view and runs user intents against the stores.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	log          logrus.FieldLogger

	todos      *appsync.TodoStore
	categories *appsync.CategoryStore
	poller     *appsync.Poller
	opTimeout  time.Duration

	todoList     todolist.Model
	detail       detail.Model
	helpView     helpview.Model
	commandView  command.Model
	todoFormView todoform.Model
	categoryView categorymgr.Model
	settingsView settings.Model
	confirm      *deleteConfirm

	// config is the client configuration the stores were built from.
	config model.AppConfig

	ready  bool
	notice string
}

// New creates the root model over already wired stores. The poller should
// have both stores registered.
func New(
	todos *appsync.TodoStore,
	categories *appsync.CategoryStore,
	poller *appsync.Poller,
	log logrus.FieldLogger,
) Model {
	k := keys.DefaultKeyMap()
	return Model{
		currentView:  ViewList,
		keys:         k,
		log:          logging.Component(log, "tui"),
		todos:        todos,
		categories:   categories,
		poller:       poller,
		opTimeout:    gateway.DefaultTimeout * 2,
		todoList:     todolist.New(k, 80, 24),
		detail:       detail.New(k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		todoFormView: todoform.New(80, 24),
		categoryView: categorymgr.New(k, 80, 24),
		settingsView: settings.New(*model.DefaultAppConfig(), "", k, 80, 24),
		config:       *model.DefaultAppConfig(),
	}
}

// Init subscribes to both stores and starts the background refresh, whose
// first run loads the initial data.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.watchTodos(),
		m.watchCategories(),
		m.poller.Start(),
	)
}

func (m Model) watchTodos() tea.Cmd {
	return appsync.WaitForChange(m.todos.Name(), m.todos.Changes())
}

func (m Model) watchCategories() tea.Cmd {
	return appsync.WaitForChange(m.categories.Name(), m.categories.Changes())
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.todoList.SetSize(contentWidth, contentHeight)
		m.detail.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		m.todoFormView.SetSize(contentWidth, contentHeight)
		m.categoryView.SetSize(contentWidth, contentHeight)
		m.settingsView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.StoreChangedMsg:
		switch msg.Name {
		case m.todos.Name():
			cmd := m.syncTodos()
			return m, tea.Batch(cmd, m.watchTodos())
		case m.categories.Name():
			cmd := m.syncCategories()
			return m, tea.Batch(cmd, m.watchCategories())
		}
		return m, nil

	case appsync.SyncResultMsg:
		if msg.Error != nil {
			m.log.WithError(msg.Error).WithField("store", msg.Name).Debug("background refresh failed")
		}
		return m, m.poller.WaitForNextResult()

	case mutationResultMsg:
		return m.handleMutationResult(msg)

	case todolist.SearchCommittedMsg:
		return m, m.setFilters(appsync.WithSearch(msg.Term))

	case todolist.FilterMsg:
		return m, m.setFilters(msg.Options...)

	case todolist.PageMsg:
		return m, m.setPage(msg.Page)

	case todolist.SelectedTodoMsg:
		m.todos.Select(msg.ID)
		m.previousView = m.currentView
		m.currentView = ViewDetail
		m.showDetail(msg.ID)
		return m, nil

	case todoform.CreateSubmittedMsg:
		return m, m.createTodo(msg.Payload)

	case todoform.UpdateSubmittedMsg:
		return m, m.updateTodo(msg.ID, msg.Payload)

	case todoform.TodoFormCancelMsg:
		m.todos.CloseForm()
		m.currentView = m.returnView()
		return m, nil

	case detail.BackMsg:
		m.todos.ClearSelection()
		m.currentView = ViewList
		return m, nil

	case detail.ActionMsg:
		todo, ok := m.todos.Snapshot().Todo(msg.TodoID)
		if !ok {
			return m, nil
		}
		switch msg.Action {
		case detail.ActionEdit:
			cmd := m.startEdit(todo)
			return m, cmd
		case detail.ActionToggle:
			return m, m.toggleTodo(todo)
		case detail.ActionDelete:
			cmd := m.startDelete(todo)
			return m, cmd
		}
		return m, nil

	case categorymgr.CategoryListCloseMsg:
		m.categories.ClearSelection()
		m.currentView = ViewList
		return m, nil

	case categorymgr.CreateSubmittedMsg:
		return m, m.createCategory(msg.Payload)

	case categorymgr.UpdateSubmittedMsg:
		return m, m.updateCategory(msg.ID, msg.Payload)

	case categorymgr.DeleteConfirmedMsg:
		return m, m.deleteCategory(msg.ID)

	case settings.DoneMsg:
		m.currentView = ViewList
		return m, nil

	case settings.SavedMsg:
		return m.applySettings(msg.Config)

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.poller.Stop()
			return m, tea.Quit
		}
		if m.currentView == ViewList && !m.todoList.Searching() {
			m.notice = ""
		}
		if m.acceptsGlobalKeys() {
			if next, cmd, handled := m.handleGlobalKey(msg); handled {
				return next, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// acceptsGlobalKeys is false while a text input or form owns the keyboard.
func (m Model) acceptsGlobalKeys() bool {
	switch m.currentView {
	case ViewList:
		return !m.todoList.Searching()
	case ViewDetail, ViewHelp:
		return true
	case ViewCategories:
		return !m.categoryView.Busy()
	case ViewSettings:
		return !m.settingsView.Busy()
	}
	return false
}

func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "q":
		if m.currentView == ViewList {
			m.poller.Stop()
			return m, tea.Quit, true
		}

	case "?":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		if m.currentView == ViewCategories || m.currentView == ViewSettings {
			return m, nil, false
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case ":":
		if m.currentView == ViewCategories || m.currentView == ViewSettings {
			return m, nil, false
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd, true

	case "esc":
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
	}

	if m.currentView != ViewList {
		return m, nil, false
	}

	switch {
	case keyMatches(msg, m.keys.Refresh):
		m.notice = "Refreshing..."
		return m, m.refreshAll(), true

	case keyMatches(msg, m.keys.New):
		cmd := m.startCreate()
		return m, cmd, true

	case keyMatches(msg, m.keys.Categories):
		m.previousView = m.currentView
		m.currentView = ViewCategories
		m.categoryView.SetState(m.categories.Snapshot())
		return m, nil, true

	case keyMatches(msg, m.keys.Settings):
		m.openSettings()
		return m, nil, true
	}

	todo, ok := m.todoList.SelectedTodo()
	if !ok {
		return m, nil, false
	}
	switch {
	case keyMatches(msg, m.keys.Edit):
		cmd := m.startEdit(todo)
		return m, cmd, true
	case keyMatches(msg, m.keys.Toggle):
		return m, m.toggleTodo(todo), true
	case keyMatches(msg, m.keys.Delete):
		cmd := m.startDelete(todo)
		return m, cmd, true
	}
	return m, nil, false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.todoList, cmd = m.todoList.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
			m.currentView = m.previousView
			return m, nil
		}
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewTodoForm:
		m.todoFormView, cmd = m.todoFormView.Update(msg)
	case ViewTodoDelete:
		return m.updateDeleteConfirm(msg)
	case ViewCategories:
		m.categoryView, cmd = m.categoryView.Update(msg)
	case ViewSettings:
		m.settingsView, cmd = m.settingsView.Update(msg)
	}

	// The todo list must see search debounce ticks even when another view
	// is active.
	if m.currentView != ViewList {
		if _, ok := msg.(tea.KeyMsg); !ok {
			var listCmd tea.Cmd
			m.todoList, listCmd = m.todoList.Update(msg)
			cmd = tea.Batch(cmd, listCmd)
		}
	}

	return m, cmd
}

// syncTodos pushes the latest todo snapshot into the views.
func (m *Model) syncTodos() tea.Cmd {
	snap := m.todos.Snapshot()
	cmd := m.todoList.SetState(snap)
	if m.currentView == ViewDetail {
		m.showDetail(m.detail.TodoID())
	}
	return cmd
}

// syncCategories pushes the latest category snapshot into the views.
func (m *Model) syncCategories() tea.Cmd {
	snap := m.categories.Snapshot()
	items := snap.WithCounts()
	m.todoList.SetCategories(items)
	m.todoFormView.SetCategories(items)
	m.categoryView.SetState(snap)
	// Re-render rows so category badges pick up renames.
	return m.todoList.SetState(m.todos.Snapshot())
}

func (m *Model) showDetail(id int64) {
	todo, ok := m.todos.Snapshot().Todo(id)
	if !ok {
		m.detail.SetTodo(nil, nil)
		return
	}
	var cat *model.Category
	if c, ok := m.categories.Lookup(todo.CategoryID); ok {
		cat = &c
	} else if todo.Category != nil {
		cat = todo.Category
	}
	m.detail.SetTodo(&todo, cat)
}

func (m *Model) startCreate() tea.Cmd {
	if len(m.categories.Snapshot().Items) == 0 {
		m.notice = "Create a category first (press c)"
		return nil
	}
	var categoryID int64
	if f := m.todos.Snapshot().Filters; f.CategoryID != nil {
		categoryID = *f.CategoryID
	}
	m.todos.OpenForm()
	m.previousView = m.currentView
	m.currentView = ViewTodoForm
	return m.todoFormView.StartCreate(categoryID)
}

func (m *Model) startEdit(todo model.Todo) tea.Cmd {
	m.todos.Select(todo.ID)
	m.todos.OpenForm()
	m.previousView = m.currentView
	m.currentView = ViewTodoForm
	return m.todoFormView.StartEdit(todo)
}

func (m *Model) startDelete(todo model.Todo) tea.Cmd {
	m.todos.OpenDeleteConfirm(todo.ID)
	m.confirm = newDeleteConfirm(todo, m.layout.ContentWidth())
	m.previousView = m.currentView
	m.currentView = ViewTodoDelete
	return m.confirm.form.Init()
}

func (m Model) updateDeleteConfirm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.confirm == nil {
		m.currentView = m.returnView()
		return m, nil
	}
	mdl, cmd := m.confirm.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirm.form = f
	}
	switch m.confirm.form.State {
	case huh.StateCompleted:
		id := m.confirm.id
		yes := *m.confirm.value
		m.confirm = nil
		m.currentView = m.returnView()
		if !yes {
			m.todos.CloseDeleteConfirm()
			return m, nil
		}
		return m, m.deleteTodo(id)
	case huh.StateAborted:
		m.confirm = nil
		m.todos.CloseDeleteConfirm()
		m.currentView = m.returnView()
		return m, nil
	}
	return m, cmd
}

func (m *Model) openSettings() {
	m.previousView = m.currentView
	m.currentView = ViewSettings
	m.settingsView.Reset()
}

// applySettings takes over saved settings. The page size applies at once;
// the API URL, timeout and refresh interval apply on the next start.
func (m Model) applySettings(cfg model.AppConfig) (tea.Model, tea.Cmd) {
	prev := m.config
	m.config = cfg

	m.notice = "Settings saved"
	if cfg.API.BaseURL != prev.API.BaseURL ||
		cfg.API.Timeout != prev.API.Timeout ||
		cfg.Sync.Interval != prev.Sync.Interval {
		m.notice = "Settings saved; restart to connect with the new settings"
	}
	m.log.WithFields(logrus.Fields{
		"base_url": cfg.API.BaseURL,
		"per_page": cfg.API.PerPage,
	}).Info("settings saved")

	if cfg.API.PerPage != prev.API.PerPage {
		return m, m.setPerPage(cfg.API.PerPage)
	}
	return m, nil
}

// returnView is where a finished form or dialog goes back to.
func (m Model) returnView() ViewState {
	if m.previousView == ViewDetail {
		return ViewDetail
	}
	return ViewList
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.layout.TooSmall() {
		return m.layout.RenderTooSmall()
	}

	notice := ""
	if m.currentView == ViewList {
		notice = m.notice
	}
	header := m.layout.RenderHeader("Todos", m.sectionName(), m.syncStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints(), notice)

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.todoList.View()
	case ViewDetail:
		return m.detail.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewTodoForm:
		return m.todoFormView.View()
	case ViewTodoDelete:
		if m.confirm != nil {
			return m.confirm.View()
		}
	case ViewCategories:
		return m.categoryView.View()
	case ViewSettings:
		return m.settingsView.View()
	}
	return ""
}

// syncStatus returns a short string describing the combined sync state.
func (m Model) syncStatus() string {
	statuses := m.poller.Statuses()
	if len(statuses) == 0 {
		return "offline"
	}

	running := 0
	var failed []string
	var last time.Time
	for _, s := range statuses {
		switch s.State {
		case appsync.SyncRunning:
			running++
		case appsync.SyncError:
			failed = append(failed, s.Name)
		}
		if s.LastSync.After(last) {
			last = s.LastSync
		}
	}

	switch {
	case running > 0:
		return fmt.Sprintf("syncing (%d)", running)
	case len(failed) > 0:
		return "unreachable: " + strings.Join(failed, ", ")
	case last.IsZero():
		return appsync.SyncIdle.String()
	default:
		return "synced " + last.Local().Format("15:04:05")
	}
}

// sectionName labels the active view in the header.
func (m Model) sectionName() string {
	switch m.currentView {
	case ViewDetail:
		return "Detail"
	case ViewHelp:
		return "Help"
	case ViewCommand:
		return "Command"
	case ViewTodoForm:
		if m.todoFormView.EditID() != 0 {
			return "Edit todo"
		}
		return "New todo"
	case ViewTodoDelete:
		return "Delete todo"
	case ViewCategories:
		return "Categories"
	case ViewSettings:
		return "Settings"
	}
	return ""
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewDetail:
		return "esc back | e edit | x toggle | d delete | j/k scroll"
	case ViewTodoForm:
		return "enter submit | esc cancel"
	case ViewTodoDelete:
		return "y confirm | n cancel"
	case ViewCategories:
		return "n new | e edit | d delete | esc back"
	case ViewSettings:
		return "e edit | t test connection | esc back"
	default:
		if m.todoList.Searching() {
			return "enter apply | esc clear"
		}
		return "q quit | ? help | n new | / search | s status | p priority | g category | tab sort | [ ] page"
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(input string) tea.Cmd {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}
	arg := strings.TrimSpace(strings.TrimPrefix(input, fields[0]))

	switch fields[0] {
	case "refresh", "sync":
		return m.refreshAll()
	case "quit", "q":
		m.poller.Stop()
		return tea.Quit
	case "new", "todo":
		m.currentView = ViewList
		return m.startCreate()
	case "categories":
		m.currentView = ViewCategories
		m.categoryView.SetState(m.categories.Snapshot())
		return nil
	case "settings":
		m.openSettings()
		return nil
	case "search":
		return m.setFilters(appsync.WithSearch(arg))
	case "pending":
		v := false
		return m.setFilters(appsync.WithCompleted(&v))
	case "completed", "done":
		v := true
		return m.setFilters(appsync.WithCompleted(&v))
	case "all":
		return m.setFilters(appsync.WithCompleted(nil))
	case "clear":
		return m.setFilters(appsync.ResetFilters())
	case "sort":
		key := model.SortKey(arg)
		if !key.Valid() {
			m.notice = fmt.Sprintf("unknown sort key %q", arg)
			return nil
		}
		return m.setFilters(appsync.WithSort(key, ""))
	case "page", "perpage":
		n, err := parsePositive(arg)
		if err != nil {
			m.notice = fmt.Sprintf("%s: %v", fields[0], err)
			return nil
		}
		if fields[0] == "page" {
			return m.setPage(n)
		}
		return m.setPerPage(n)
	default:
		m.notice = fmt.Sprintf("unknown command %q", fields[0])
		return nil
	}
}
