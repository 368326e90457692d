package app

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezix0/TodoReact/internal/logging"
	"github.com/frezix0/TodoReact/internal/model"
	"github.com/frezix0/TodoReact/internal/server"
	"github.com/frezix0/TodoReact/internal/store"
	appsync "github.com/frezix0/TodoReact/internal/sync"
	"github.com/frezix0/TodoReact/internal/ui/categorymgr"
	"github.com/frezix0/TodoReact/internal/ui/detail"
	"github.com/frezix0/TodoReact/internal/ui/settings"
	"github.com/frezix0/TodoReact/internal/ui/todoform"
	"github.com/frezix0/TodoReact/internal/ui/todolist"
	"github.com/frezix0/TodoReact/tests/testutil"
)

// newTestApp runs the API server over an in-memory store and wires the
// root model against it.
func newTestApp(t *testing.T) (Model, *store.SQLStore) {
	t.Helper()

	st := testutil.NewTestStore(t)
	srv := httptest.NewServer(server.New(*model.DefaultAppConfig(), st, logging.Discard()).Handler())
	t.Cleanup(srv.Close)

	cfg := *model.DefaultAppConfig()
	cfg.API.BaseURL = srv.URL
	m := NewFromConfig(cfg, filepath.Join(t.TempDir(), "config.yaml"), logging.Discard())
	t.Cleanup(m.poller.Stop)

	return update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40}), st
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	switch k {
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	}
	return updateCmd(t, m, msg)
}

// load fetches both stores synchronously and delivers the change
// notifications the subscriptions would.
func load(t *testing.T, m Model) Model {
	t.Helper()
	ctx := context.Background()
	m.categories.Refresh(ctx)
	m.todos.Refresh(ctx)
	m.todos.RefreshSummary(ctx)
	return notify(t, m)
}

func notify(t *testing.T, m Model) Model {
	t.Helper()
	m = update(t, m, appsync.StoreChangedMsg{Name: m.categories.Name()})
	return update(t, m, appsync.StoreChangedMsg{Name: m.todos.Name()})
}

// runMutation executes the command of a mutation intent and feeds its
// result back into the model.
func runMutation(t *testing.T, m Model, cmd tea.Cmd) (Model, mutationResultMsg) {
	t.Helper()
	require.NotNil(t, cmd)
	res, ok := cmd().(mutationResultMsg)
	require.True(t, ok)
	return notify(t, update(t, m, res)), res
}

func TestStoreChangeRendersTodos(t *testing.T) {
	m, st := newTestApp(t)
	cat := testutil.SeedCategory(t, st, "Errands")
	testutil.SeedTodo(t, st, cat.ID, "buy milk", model.PriorityHigh)

	m = load(t, m)

	assert.Contains(t, m.View(), "buy milk")
	todo, ok := m.todoList.SelectedTodo()
	require.True(t, ok)
	assert.Equal(t, "buy milk", todo.Title)
	assert.Equal(t, 1, m.todos.Snapshot().Summary.Total)
}

func TestCreateTodoFromForm(t *testing.T) {
	m, st := newTestApp(t)
	cat := testutil.SeedCategory(t, st, "Home")
	m = load(t, m)

	m, _ = press(t, m, "n")
	require.Equal(t, ViewTodoForm, m.currentView)
	assert.True(t, m.todos.Snapshot().FormOpen)

	m, cmd := updateCmd(t, m, todoform.CreateSubmittedMsg{Payload: model.TodoCreate{
		Title:      "walk dog",
		Priority:   model.PriorityLow,
		CategoryID: cat.ID,
	}})
	m, res := runMutation(t, m, cmd)

	require.NoError(t, res.err)
	assert.Equal(t, ViewList, m.currentView)
	assert.Equal(t, "Todo created", m.notice)
	assert.False(t, m.todos.Snapshot().FormOpen)

	snap := m.todos.Snapshot()
	require.Len(t, snap.Todos, 1)
	assert.Equal(t, "walk dog", snap.Todos[0].Title)
	assert.Equal(t, 1, snap.Summary.Pending)

	counted, ok := m.categories.Lookup(cat.ID)
	require.True(t, ok)
	assert.Equal(t, 1, counted.Count())
}

func TestFailedCreateKeepsFormOpen(t *testing.T) {
	m, st := newTestApp(t)
	cat := testutil.SeedCategory(t, st, "Home")
	m = load(t, m)

	m, _ = press(t, m, "n")
	m, cmd := updateCmd(t, m, todoform.CreateSubmittedMsg{Payload: model.TodoCreate{
		Title:      "   ",
		Priority:   model.PriorityLow,
		CategoryID: cat.ID,
	}})
	m, res := runMutation(t, m, cmd)

	require.Error(t, res.err)
	assert.Equal(t, ViewTodoForm, m.currentView)
	assert.Empty(t, m.todos.Snapshot().Todos)
	assert.NotEmpty(t, m.todos.Snapshot().Error)
}

func TestCreateRequiresCategory(t *testing.T) {
	m, _ := newTestApp(t)
	m = load(t, m)

	m, cmd := press(t, m, "n")
	assert.Nil(t, cmd)
	assert.Equal(t, ViewList, m.currentView)
	assert.Equal(t, "Create a category first (press c)", m.notice)
}

func TestToggleFromList(t *testing.T) {
	m, st := newTestApp(t)
	cat := testutil.SeedCategory(t, st, "Home")
	testutil.SeedTodo(t, st, cat.ID, "water plants", model.PriorityMedium)
	m = load(t, m)

	m, cmd := press(t, m, "x")
	m, res := runMutation(t, m, cmd)

	require.NoError(t, res.err)
	assert.Equal(t, "Marked done", m.notice)
	snap := m.todos.Snapshot()
	assert.True(t, snap.Todos[0].Completed)
	assert.Equal(t, 1, snap.Summary.Completed)
	assert.Equal(t, 0, snap.Summary.Pending)
}

func TestFilterMsgAppliesFilters(t *testing.T) {
	m, st := newTestApp(t)
	cat := testutil.SeedCategory(t, st, "Work")
	testutil.SeedTodo(t, st, cat.ID, "ship release", model.PriorityHigh)
	testutil.SeedTodo(t, st, cat.ID, "tidy desk", model.PriorityLow)
	m = load(t, m)
	require.Len(t, m.todos.Snapshot().Todos, 2)

	high := model.PriorityHigh
	m, cmd := updateCmd(t, m, todolist.FilterMsg{Options: []appsync.FilterOption{appsync.WithPriority(&high)}})
	require.NotNil(t, cmd)
	assert.Nil(t, cmd())
	m = notify(t, m)

	snap := m.todos.Snapshot()
	require.NotNil(t, snap.Filters.Priority)
	assert.Equal(t, model.PriorityHigh, *snap.Filters.Priority)
	require.Len(t, snap.Todos, 1)
	assert.Equal(t, "ship release", snap.Todos[0].Title)
	assert.NotContains(t, m.View(), "tidy desk")
}

func TestDeleteCategoryCascades(t *testing.T) {
	m, st := newTestApp(t)
	doomed := testutil.SeedCategory(t, st, "Old")
	kept := testutil.SeedCategory(t, st, "New")
	testutil.SeedTodo(t, st, doomed.ID, "a", model.PriorityLow)
	testutil.SeedTodo(t, st, doomed.ID, "b", model.PriorityLow)
	testutil.SeedTodo(t, st, kept.ID, "c", model.PriorityLow)
	m = load(t, m)

	m, _ = press(t, m, "c")
	require.Equal(t, ViewCategories, m.currentView)

	m, cmd := updateCmd(t, m, categorymgr.DeleteConfirmedMsg{ID: doomed.ID})
	m, res := runMutation(t, m, cmd)
	require.NoError(t, res.err)

	assert.Equal(t, ViewCategories, m.currentView)
	_, ok := m.categories.Lookup(doomed.ID)
	assert.False(t, ok)

	snap := m.todos.Snapshot()
	require.Len(t, snap.Todos, 1)
	assert.Equal(t, "c", snap.Todos[0].Title)
	assert.Equal(t, 1, snap.Summary.Total)
}

func TestNavigation(t *testing.T) {
	m, st := newTestApp(t)
	cat := testutil.SeedCategory(t, st, "Home")
	todo := testutil.SeedTodo(t, st, cat.ID, "call mum", model.PriorityHigh)
	m = load(t, m)

	m, _ = press(t, m, "?")
	assert.Equal(t, ViewHelp, m.currentView)
	m, _ = press(t, m, "esc")
	assert.Equal(t, ViewList, m.currentView)

	m, _ = press(t, m, "c")
	assert.Equal(t, ViewCategories, m.currentView)
	m = update(t, m, categorymgr.CategoryListCloseMsg{})
	assert.Equal(t, ViewList, m.currentView)

	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	m = update(t, m, cmd())
	assert.Equal(t, ViewDetail, m.currentView)
	assert.Equal(t, todo.ID, m.detail.TodoID())
	assert.Contains(t, m.View(), "call mum")

	m = update(t, m, detail.BackMsg{})
	assert.Equal(t, ViewList, m.currentView)
	assert.Nil(t, m.todos.Snapshot().SelectedID)
}

func TestDeleteFromDetailReturnsToList(t *testing.T) {
	m, st := newTestApp(t)
	cat := testutil.SeedCategory(t, st, "Home")
	todo := testutil.SeedTodo(t, st, cat.ID, "fix tap", model.PriorityMedium)
	m = load(t, m)

	m = update(t, m, todolist.SelectedTodoMsg{ID: todo.ID})
	require.Equal(t, ViewDetail, m.currentView)

	m, res := runMutation(t, m, m.deleteTodo(todo.ID))
	require.NoError(t, res.err)
	assert.Equal(t, ViewList, m.currentView)
	assert.Empty(t, m.todos.Snapshot().Todos)
	assert.Equal(t, "Todo deleted", m.notice)
}

func TestExecuteCommand(t *testing.T) {
	m, st := newTestApp(t)
	cat := testutil.SeedCategory(t, st, "Home")
	testutil.SeedTodo(t, st, cat.ID, "buy milk", model.PriorityLow)
	testutil.SeedTodo(t, st, cat.ID, "read book", model.PriorityLow)
	m = load(t, m)

	assert.Nil(t, m.executeCommand("sort bogus"))
	assert.Equal(t, `unknown sort key "bogus"`, m.notice)

	assert.Nil(t, m.executeCommand("page zero"))
	assert.Contains(t, m.notice, "page:")

	assert.Nil(t, m.executeCommand("frobnicate"))
	assert.Equal(t, `unknown command "frobnicate"`, m.notice)

	cmd := m.executeCommand("search milk")
	require.NotNil(t, cmd)
	cmd()
	snap := m.todos.Snapshot()
	assert.Equal(t, "milk", snap.Filters.Search)
	require.Len(t, snap.Todos, 1)

	cmd = m.executeCommand("clear")
	require.NotNil(t, cmd)
	cmd()
	assert.Empty(t, m.todos.Snapshot().Filters.Search)
	assert.Len(t, m.todos.Snapshot().Todos, 2)

	cmd = m.executeCommand("categories")
	assert.Nil(t, cmd)
	assert.Equal(t, ViewCategories, m.currentView)
}

func TestSyncStatus(t *testing.T) {
	m, _ := newTestApp(t)
	assert.Equal(t, "idle", m.syncStatus())
}

func TestSettingsApplyPageSize(t *testing.T) {
	m, st := newTestApp(t)
	cat := testutil.SeedCategory(t, st, "Home")
	for _, title := range []string{"a", "b", "c"} {
		testutil.SeedTodo(t, st, cat.ID, title, model.PriorityLow)
	}
	m = load(t, m)

	m, _ = press(t, m, ",")
	require.Equal(t, ViewSettings, m.currentView)

	cfg := m.config
	cfg.API.PerPage = 2
	m, cmd := updateCmd(t, m, settings.SavedMsg{Config: cfg})
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, "Settings saved", m.notice)

	snap := m.todos.Snapshot()
	assert.Equal(t, 2, snap.Pagination.PerPage)
	assert.Len(t, snap.Todos, 2)
	assert.True(t, snap.Pagination.HasNext)

	m = update(t, m, settings.DoneMsg{})
	assert.Equal(t, ViewList, m.currentView)

	cfg.API.BaseURL = "http://elsewhere.test"
	m = update(t, m, settings.SavedMsg{Config: cfg})
	assert.Contains(t, m.notice, "restart")
}
