package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/frezix0/TodoReact/internal/model"
)

// listEnvelope is decoded with pointer fields so absent keys can be told
// apart from empty values.
type listEnvelope struct {
	Data       *[]model.Todo     `json:"data"`
	Pagination *model.Pagination `json:"pagination"`
}

// ListTodos fetches one page of todos matching filters. When the response
// is missing its data or pagination, the returned page still carries safe
// defaults (an empty list and DefaultPagination(perPage)) together with a
// MalformedResponse error, so callers can render something either way.
func (c *Client) ListTodos(
	ctx context.Context,
	filters model.TodoFilters,
	perPage int,
) (*model.TodoPage, error) {
	if perPage < 1 {
		return nil, InvalidRequestError("per_page must be at least 1", map[string]string{
			"per_page": "per_page must be at least 1",
		})
	}

	path := apiPrefix + "/todos"
	raw, err := c.do(ctx, http.MethodGet, path, filters.Query(perPage), nil)
	if err != nil {
		return nil, err
	}

	op := opName(http.MethodGet, path)
	page := &model.TodoPage{
		Data:       []model.Todo{},
		Pagination: model.DefaultPagination(perPage),
	}

	var env listEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return page, malformedError(op, fmt.Errorf("decoding todo list: %w", err))
	}

	var missing []string
	if env.Data != nil {
		page.Data = *env.Data
	} else {
		missing = append(missing, "data")
	}
	if env.Pagination != nil {
		page.Pagination = *env.Pagination
	} else {
		missing = append(missing, "pagination")
	}
	if len(missing) > 0 {
		return page, malformedError(op, fmt.Errorf("todo list is missing %v", missing))
	}

	return page, nil
}

// GetTodo fetches a single todo.
func (c *Client) GetTodo(ctx context.Context, id int64) (*model.Todo, error) {
	var todo model.Todo
	if err := c.getEntity(ctx, todoPath(id), nil, &todo, "id", "title"); err != nil {
		return nil, err
	}
	return &todo, nil
}

// CreateTodo creates a todo and returns it as stored by the server.
func (c *Client) CreateTodo(ctx context.Context, payload model.TodoCreate) (*model.Todo, error) {
	var todo model.Todo
	err := c.sendEntity(ctx, http.MethodPost, apiPrefix+"/todos", payload, &todo, "id", "title")
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo applies payload to the todo with the given id.
func (c *Client) UpdateTodo(
	ctx context.Context,
	id int64,
	payload model.TodoUpdate,
) (*model.Todo, error) {
	var todo model.Todo
	err := c.sendEntity(ctx, http.MethodPut, todoPath(id), payload, &todo, "id", "title")
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// SetTodoCompletion sets only the completion flag of a todo.
func (c *Client) SetTodoCompletion(
	ctx context.Context,
	id int64,
	completed bool,
) (*model.Todo, error) {
	var todo model.Todo
	err := c.sendEntity(ctx, http.MethodPatch, todoPath(id)+"/complete",
		model.CompletionUpdate{Completed: completed}, &todo, "id", "completed")
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// DeleteTodo deletes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, todoPath(id), nil, nil)
	return err
}

// TodoSummary fetches the aggregate counts across all todos.
func (c *Client) TodoSummary(ctx context.Context) (*model.Summary, error) {
	var s model.Summary
	err := c.getEntity(ctx, apiPrefix+"/todos/summary", nil, &s, "total", "completed", "pending")
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SearchTodos runs the server's ranked full-text search.
func (c *Client) SearchTodos(ctx context.Context, term string, limit int) ([]model.Todo, error) {
	path := apiPrefix + "/todos/search"
	q := url.Values{}
	q.Set("q", term)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	raw, err := c.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	return decodeArray[model.Todo](opName(http.MethodGet, path), raw, "id", "title")
}
