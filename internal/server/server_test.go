package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frezix0/TodoReact/internal/logging"
	"github.com/frezix0/TodoReact/internal/model"
	"github.com/frezix0/TodoReact/internal/server"
	"github.com/frezix0/TodoReact/internal/store"
	"github.com/frezix0/TodoReact/tests/testutil"
)

type apiFixture struct {
	t     *testing.T
	store *store.SQLStore
	srv   *httptest.Server
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	st := testutil.NewTestStore(t)
	cfg := *model.DefaultAppConfig()
	srv := httptest.NewServer(server.New(cfg, st, logging.Discard()).Handler())
	t.Cleanup(srv.Close)
	return &apiFixture{t: t, store: st, srv: srv}
}

func (f *apiFixture) do(method, path, body string) (*http.Response, []byte) {
	f.t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.srv.URL+path, r)
	require.NoError(f.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.srv.Client().Do(req)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(f.t, err)
	return resp, data
}

type envelope struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	ErrorCode string            `json:"error_code"`
	Errors    map[string]string `json:"errors"`
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestHealth(t *testing.T) {
	api := newAPI(t)

	resp, body := api.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	health := decode[model.Health](t, body)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.0.0", health.Version)
}

type downStore struct {
	store.Store
}

func (downStore) Ping(context.Context) error { return errors.New("connection reset") }

func TestHealth_DatabaseDown(t *testing.T) {
	srv := httptest.NewServer(server.New(*model.DefaultAppConfig(), downStore{}, logging.Discard()).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCategoryLifecycle(t *testing.T) {
	api := newAPI(t)

	resp, body := api.do(http.MethodPost, "/api/categories", `{"name":"Work","color":"#10B981"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[model.Category](t, body)
	assert.Equal(t, "Work", created.Name)

	resp, body = api.do(http.MethodPost, "/api/categories/", `{"name":"Work","color":"#10B981"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "conflict", decode[envelope](t, body).ErrorCode)

	resp, body = api.do(http.MethodPut, "/api/categories/1", `{"color":"#EF4444"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "#EF4444", decode[model.Category](t, body).Color)

	resp, body = api.do(http.MethodGet, "/api/categories/with-counts", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	counted := decode[[]model.Category](t, body)
	require.Len(t, counted, 1)
	require.NotNil(t, counted[0].TodoCount)
	assert.Equal(t, 0, *counted[0].TodoCount)

	resp, _ = api.do(http.MethodDelete, "/api/categories/1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = api.do(http.MethodGet, "/api/categories/1", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	env := decode[envelope](t, body)
	assert.False(t, env.Success)
	assert.Equal(t, "Category not found", env.Message)
	assert.Equal(t, "not_found", env.ErrorCode)
}

func TestCreateCategory_Validation(t *testing.T) {
	api := newAPI(t)

	resp, body := api.do(http.MethodPost, "/api/categories", `{"name":"  ","color":"blue"}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	env := decode[envelope](t, body)
	assert.Equal(t, "validation_error", env.ErrorCode)
	assert.Contains(t, env.Errors, "name")
	assert.Contains(t, env.Errors, "color")
}

func TestTodoLifecycle(t *testing.T) {
	api := newAPI(t)
	work := testutil.SeedCategory(t, api.store, "Work")

	resp, body := api.do(http.MethodPost, "/api/todos",
		`{"title":" Write report ","priority":"high","category_id":`+itoa(work.ID)+`}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	todo := decode[model.Todo](t, body)
	assert.Equal(t, "Write report", todo.Title)
	require.NotNil(t, todo.Category)
	assert.Equal(t, "Work", todo.Category.Name)

	path := "/api/todos/" + itoa(todo.ID)

	resp, body = api.do(http.MethodPatch, path+"/complete", `{"completed":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[model.Todo](t, body).Completed)

	resp, body = api.do(http.MethodPut, path, `{"title":"Write final report","priority":"low"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[model.Todo](t, body)
	assert.Equal(t, "Write final report", updated.Title)
	assert.Equal(t, model.PriorityLow, updated.Priority)
	assert.True(t, updated.Completed)

	resp, body = api.do(http.MethodGet, "/api/todos/summary", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sum := decode[model.Summary](t, body)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.Completed)
	assert.Equal(t, 0, sum.Pending)

	resp, _ = api.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = api.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Todo not found", decode[envelope](t, body).Message)
}

func TestCreateTodo_Errors(t *testing.T) {
	api := newAPI(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"unknown category", `{"title":"x","category_id":99}`, http.StatusBadRequest, "bad_request"},
		{"missing title", `{"title":"   ","category_id":1}`, http.StatusUnprocessableEntity, "validation_error"},
		{"bad priority", `{"title":"x","priority":"urgent","category_id":1}`, http.StatusUnprocessableEntity, "validation_error"},
		{"wrong type", `{"title":"x","category_id":"one"}`, http.StatusUnprocessableEntity, "validation_error"},
		{"broken json", `{"title":`, http.StatusBadRequest, "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := api.do(http.MethodPost, "/api/todos", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, string(body))
			assert.Equal(t, tt.wantCode, decode[envelope](t, body).ErrorCode)
		})
	}
}

func TestCreateTodo_UnknownCategoryMessage(t *testing.T) {
	api := newAPI(t)

	_, body := api.do(http.MethodPost, "/api/todos", `{"title":"x","category_id":99}`)
	assert.Equal(t, "Category not found", decode[envelope](t, body).Message)
}

func TestListTodos_ClampsAndFilters(t *testing.T) {
	api := newAPI(t)
	work := testutil.SeedCategory(t, api.store, "Work")
	home := testutil.SeedCategory(t, api.store, "Home")
	for _, title := range []string{"a", "b", "c"} {
		testutil.SeedTodo(t, api.store, work.ID, title, model.PriorityMedium)
	}
	testutil.SeedTodo(t, api.store, home.ID, "milk", model.PriorityHigh)

	resp, body := api.do(http.MethodGet, "/api/todos?page=0&per_page=500", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[model.TodoPage](t, body)
	assert.Len(t, page.Data, 4)
	assert.Equal(t, model.NewPagination(1, model.MaxPerPage, 4), page.Pagination)

	_, body = api.do(http.MethodGet, "/api/todos?per_page=2&page=2&category_id="+itoa(work.ID), "")
	page = decode[model.TodoPage](t, body)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasNext)
	assert.True(t, page.Pagination.HasPrev)

	_, body = api.do(http.MethodGet, "/api/todos?priority=high&sort_by=title&sort_order=asc", "")
	page = decode[model.TodoPage](t, body)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "milk", page.Data[0].Title)

	_, body = api.do(http.MethodGet, "/api/todos?search=nothing-matches", "")
	page = decode[model.TodoPage](t, body)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, 1, page.Pagination.TotalPages)

	resp, body = api.do(http.MethodGet, "/api/todos?completed=maybe&page=two", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	env := decode[envelope](t, body)
	assert.Contains(t, env.Errors, "completed")
	assert.Contains(t, env.Errors, "page")
}

func TestSearchTodos(t *testing.T) {
	api := newAPI(t)
	work := testutil.SeedCategory(t, api.store, "Work")
	testutil.SeedTodo(t, api.store, work.ID, "Invoice customers", model.PriorityHigh)
	testutil.SeedTodo(t, api.store, work.ID, "Buy milk", model.PriorityLow)

	resp, body := api.do(http.MethodGet, "/api/todos/search?q=invoice&limit=5", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	todos := decode[[]model.Todo](t, body)
	require.Len(t, todos, 1)
	assert.Equal(t, "Invoice customers", todos[0].Title)

	resp, _ = api.do(http.MethodGet, "/api/todos/search", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRouting_Errors(t *testing.T) {
	api := newAPI(t)

	resp, body := api.do(http.MethodPatch, "/api/categories", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "method_not_allowed", decode[envelope](t, body).ErrorCode)

	resp, body = api.do(http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", decode[envelope](t, body).ErrorCode)

	resp, body = api.do(http.MethodGet, "/api/todos/abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, decode[envelope](t, body).Errors, "todoID")
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	api := newAPI(t)

	req, err := http.NewRequest(http.MethodOptions, api.srv.URL+"/api/todos", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := api.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

func itoa(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}
