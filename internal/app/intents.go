package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/frezix0/TodoReact/internal/gateway"
	"github.com/frezix0/TodoReact/internal/model"
	appsync "github.com/frezix0/TodoReact/internal/sync"
)

type mutationOp int

const (
	opTodoSave mutationOp = iota
	opTodoToggle
	opTodoDelete
	opCategorySave
	opCategoryDelete
)

// mutationResultMsg reports the outcome of a store mutation started from
// the UI. The stores publish the state change themselves; this message
// only drives view transitions and notices.
type mutationResultMsg struct {
	op     mutationOp
	id     int64
	notice string
	err    error
}

func (m Model) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.opTimeout)
}

// run executes fn in a command and wraps its error in a mutationResultMsg.
func (m Model) run(op mutationOp, id int64, notice string, fn func(ctx context.Context) error) tea.Cmd {
	newCtx := m.opContext
	return func() tea.Msg {
		ctx, cancel := newCtx()
		defer cancel()
		return mutationResultMsg{op: op, id: id, notice: notice, err: fn(ctx)}
	}
}

// do executes fn in a command that produces no message; the store change
// notification drives the re-render.
func (m Model) do(fn func(ctx context.Context)) tea.Cmd {
	newCtx := m.opContext
	return func() tea.Msg {
		ctx, cancel := newCtx()
		defer cancel()
		fn(ctx)
		return nil
	}
}

func (m Model) createTodo(payload model.TodoCreate) tea.Cmd {
	todos := m.todos
	return m.run(opTodoSave, 0, "Todo created", func(ctx context.Context) error {
		_, err := todos.Create(ctx, payload)
		return err
	})
}

func (m Model) updateTodo(id int64, payload model.TodoUpdate) tea.Cmd {
	todos := m.todos
	return m.run(opTodoSave, id, "Todo updated", func(ctx context.Context) error {
		_, err := todos.Update(ctx, id, payload)
		return err
	})
}

func (m Model) toggleTodo(todo model.Todo) tea.Cmd {
	todos := m.todos
	completed := !todo.Completed
	notice := "Marked done"
	if !completed {
		notice = "Reopened"
	}
	return m.run(opTodoToggle, todo.ID, notice, func(ctx context.Context) error {
		_, err := todos.ToggleCompletion(ctx, todo.ID, completed)
		return err
	})
}

func (m Model) deleteTodo(id int64) tea.Cmd {
	todos := m.todos
	return m.run(opTodoDelete, id, "Todo deleted", func(ctx context.Context) error {
		return todos.Delete(ctx, id)
	})
}

func (m Model) createCategory(payload model.CategoryCreate) tea.Cmd {
	categories := m.categories
	return m.run(opCategorySave, 0, "Category created", func(ctx context.Context) error {
		_, err := categories.Create(ctx, payload)
		return err
	})
}

func (m Model) updateCategory(id int64, payload model.CategoryUpdate) tea.Cmd {
	categories := m.categories
	return m.run(opCategorySave, id, "Category updated", func(ctx context.Context) error {
		_, err := categories.Update(ctx, id, payload)
		return err
	})
}

func (m Model) deleteCategory(id int64) tea.Cmd {
	categories := m.categories
	return m.run(opCategoryDelete, id, "Category deleted", func(ctx context.Context) error {
		return categories.Delete(ctx, id)
	})
}

func (m Model) setFilters(opts ...appsync.FilterOption) tea.Cmd {
	todos := m.todos
	return m.do(func(ctx context.Context) {
		todos.SetFilters(ctx, opts...)
	})
}

func (m Model) setPage(n int) tea.Cmd {
	todos := m.todos
	return m.do(func(ctx context.Context) {
		todos.SetPage(ctx, n)
	})
}

func (m Model) setPerPage(n int) tea.Cmd {
	todos := m.todos
	return m.do(func(ctx context.Context) {
		todos.SetPerPage(ctx, n)
	})
}

// refreshAll asks the poller for an immediate refresh of both stores.
func (m Model) refreshAll() tea.Cmd {
	return m.poller.RefreshAll()
}

func (m Model) handleMutationResult(msg mutationResultMsg) (tea.Model, tea.Cmd) {
	errText := gateway.Message(msg.err)

	switch msg.op {
	case opTodoSave:
		if msg.err != nil {
			cmd := m.todoFormView.Fail(errText)
			return m, cmd
		}
		m.todos.CloseForm()
		if m.currentView == ViewTodoForm {
			m.currentView = m.returnView()
		}

	case opTodoDelete:
		m.todos.CloseDeleteConfirm()
		if msg.err == nil && m.currentView == ViewDetail && m.detail.TodoID() == msg.id {
			m.todos.ClearSelection()
			m.currentView = ViewList
		}

	case opCategorySave, opCategoryDelete:
		if msg.err != nil {
			cmd := m.categoryView.Fail(errText)
			return m, cmd
		}
		m.categoryView.Saved(msg.notice)
		return m, nil
	}

	if msg.err != nil {
		m.notice = "Error: " + errText
		return m, nil
	}
	m.notice = msg.notice
	return m, nil
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("expected a positive number, got %q", s)
	}
	return n, nil
}

func keyMatches(msg tea.KeyMsg, b key.Binding) bool {
	return key.Matches(msg, b)
}
