package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/frezix0/TodoReact/internal/model"
)

// todoRow is a todos row joined with its category.
type todoRow struct {
	ID                int64      `db:"id"`
	Title             string     `db:"title"`
	Description       *string    `db:"description"`
	Completed         bool       `db:"completed"`
	Priority          string     `db:"priority"`
	DueDate           *time.Time `db:"due_date"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
	CategoryID        int64      `db:"category_id"`
	CategoryName      string     `db:"category_name"`
	CategoryColor     string     `db:"category_color"`
	CategoryCreatedAt time.Time  `db:"category_created_at"`
}

func (r todoRow) toModel() model.Todo {
	return model.Todo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    model.Priority(r.Priority),
		DueDate:     utcPtr(r.DueDate),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
		CategoryID:  r.CategoryID,
		Category: &model.Category{
			ID:        r.CategoryID,
			Name:      r.CategoryName,
			Color:     strings.TrimSpace(r.CategoryColor),
			CreatedAt: r.CategoryCreatedAt.UTC(),
		},
	}
}

const todoSelect = `SELECT
	t.id, t.title, t.description, t.completed, t.priority, t.due_date,
	t.created_at, t.updated_at, t.category_id,
	c.name AS category_name, c.color AS category_color, c.created_at AS category_created_at
FROM todos t
JOIN categories c ON c.id = t.category_id`

// CreateTodo inserts a new todo and returns it with its category.
func (s *SQLStore) CreateTodo(ctx context.Context, in model.TodoCreate) (*model.Todo, error) {
	in.Normalize()
	if in.Title == "" {
		return nil, fmt.Errorf("todo title must not be empty")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requireCategory(ctx, tx, in.CategoryID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var id int64
	err = sqlx.GetContext(ctx, tx, &id, tx.Rebind(`
		INSERT INTO todos (
			title, description, completed, priority,
			due_date, created_at, updated_at, category_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		in.Title, in.Description, false, string(in.Priority),
		utcPtr(in.DueDate), now, now, in.CategoryID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("creating todo: %w", ErrCategoryMissing)
		}
		return nil, fmt.Errorf("creating todo: %w", err)
	}

	todo, err := s.getTodo(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing todo: %w", err)
	}
	return todo, nil
}

// GetTodo retrieves a single todo by ID.
func (s *SQLStore) GetTodo(ctx context.Context, id int64) (*model.Todo, error) {
	return s.getTodo(ctx, s.db, id)
}

func (s *SQLStore) getTodo(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.Todo, error) {
	var row todoRow
	err := sqlx.GetContext(ctx, q, &row, q.(rebinder).Rebind(todoSelect+" WHERE t.id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting todo %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting todo %d: %w", id, err)
	}
	todo := row.toModel()
	return &todo, nil
}

// UpdateTodo applies the set fields of in to the todo with the given ID.
func (s *SQLStore) UpdateTodo(
	ctx context.Context,
	id int64,
	in model.TodoUpdate,
) (*model.Todo, error) {
	in.Normalize()
	if in.Title != nil && *in.Title == "" {
		return nil, fmt.Errorf("todo title must not be empty")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := s.getTodo(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != nil && *in.CategoryID != current.CategoryID {
		if err := s.requireCategory(ctx, tx, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	in.Apply(current)
	current.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, tx.Rebind(`
		UPDATE todos SET
			title = ?, description = ?, completed = ?, priority = ?,
			due_date = ?, category_id = ?, updated_at = ?
		WHERE id = ?`),
		current.Title, current.Description, current.Completed, string(current.Priority),
		utcPtr(current.DueDate), current.CategoryID, current.UpdatedAt,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating todo %d: %w", id, err)
	}

	todo, err := s.getTodo(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing todo %d: %w", id, err)
	}
	return todo, nil
}

// SetTodoCompletion sets only the completion flag of a todo.
func (s *SQLStore) SetTodoCompletion(
	ctx context.Context,
	id int64,
	completed bool,
) (*model.Todo, error) {
	result, err := s.db.ExecContext(ctx,
		s.db.Rebind("UPDATE todos SET completed = ?, updated_at = ? WHERE id = ?"),
		completed, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("setting completion of todo %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("setting completion of todo %d: %w", id, ErrNotFound)
	}
	return s.GetTodo(ctx, id)
}

// DeleteTodo removes a todo by ID.
func (s *SQLStore) DeleteTodo(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM todos WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting todo %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("deleting todo %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListTodos returns one page of todos matching q and the total number of
// matches across all pages.
func (s *SQLStore) ListTodos(ctx context.Context, q TodoQuery) ([]model.Todo, int, error) {
	where, args := s.buildTodoWhere(q)

	var total int
	countQuery := s.db.Rebind("SELECT COUNT(*) FROM todos t" + where)
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("counting todos: %w", err)
	}

	query := todoSelect + where + todoOrderBy(q.SortBy, q.SortOrder)
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}
	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	var rows []todoRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("querying todos: %w", err)
	}
	return toTodos(rows), total, nil
}

// TodoSummary returns aggregate counts across all todos.
func (s *SQLStore) TodoSummary(ctx context.Context) (*model.Summary, error) {
	var row struct {
		Total     int `db:"total"`
		Completed int `db:"completed"`
		High      int `db:"high_priority"`
		Medium    int `db:"medium_priority"`
		Low       int `db:"low_priority"`
		Overdue   int `db:"overdue"`
	}

	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed,
			COALESCE(SUM(CASE WHEN priority = 'high' THEN 1 ELSE 0 END), 0) AS high_priority,
			COALESCE(SUM(CASE WHEN priority = 'medium' THEN 1 ELSE 0 END), 0) AS medium_priority,
			COALESCE(SUM(CASE WHEN priority = 'low' THEN 1 ELSE 0 END), 0) AS low_priority,
			COALESCE(SUM(CASE WHEN NOT completed AND due_date < ? THEN 1 ELSE 0 END), 0) AS overdue
		FROM todos`),
		time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("summarizing todos: %w", err)
	}

	return &model.Summary{
		Total:          row.Total,
		Completed:      row.Completed,
		Pending:        row.Total - row.Completed,
		HighPriority:   row.High,
		MediumPriority: row.Medium,
		LowPriority:    row.Low,
		Overdue:        row.Overdue,
	}, nil
}

// SearchTodos returns todos matching term, best matches first. PostgreSQL
// ranks with the search_todos full-text function; SQLite puts title matches
// ahead of description matches.
func (s *SQLStore) SearchTodos(ctx context.Context, term string, limit int) ([]model.Todo, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.Todo{}, nil
	}
	if limit <= 0 || limit > model.MaxPerPage {
		limit = model.MaxPerPage
	}

	var (
		query string
		args  []any
	)
	switch s.dialect {
	case postgresDialect:
		query = `SELECT
	t.id, t.title, t.description, t.completed, t.priority, t.due_date,
	t.created_at, t.updated_at, t.category_id,
	c.name AS category_name, c.color AS category_color, c.created_at AS category_created_at
FROM search_todos(?) s
JOIN todos t ON t.id = s.todo_id
JOIN categories c ON c.id = t.category_id
ORDER BY s.rank DESC, t.id DESC`
		args = []any{term}
	default:
		pattern := containsPattern(term)
		query = todoSelect + `
WHERE t.title LIKE ? ESCAPE '\' OR t.description LIKE ? ESCAPE '\'
ORDER BY CASE WHEN t.title LIKE ? ESCAPE '\' THEN 0 ELSE 1 END, t.updated_at DESC, t.id DESC`
		args = []any{pattern, pattern, pattern}
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	var rows []todoRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("searching todos: %w", err)
	}
	return toTodos(rows), nil
}

// buildTodoWhere constructs the WHERE clause and args for q.
func (s *SQLStore) buildTodoWhere(q TodoQuery) (string, []any) {
	var conditions []string
	var args []any

	if search := strings.TrimSpace(q.Search); search != "" {
		conditions = append(conditions,
			fmt.Sprintf(`(t.title %[1]s ? ESCAPE '\' OR t.description %[1]s ? ESCAPE '\')`, s.dialect.like))
		pattern := containsPattern(search)
		args = append(args, pattern, pattern)
	}
	if q.CategoryID != nil {
		conditions = append(conditions, "t.category_id = ?")
		args = append(args, *q.CategoryID)
	}
	if q.Completed != nil {
		conditions = append(conditions, "t.completed = ?")
		args = append(args, *q.Completed)
	}
	if q.Priority != nil {
		conditions = append(conditions, "t.priority = ?")
		args = append(args, string(*q.Priority))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// likeEscaper escapes LIKE wildcards with a backslash.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches term literally anywhere in the column.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

// todoOrderBy maps a sort key to an ORDER BY clause. Unknown keys sort by
// creation time; priority sorts by urgency rather than alphabetically.
func todoOrderBy(key model.SortKey, order model.SortOrder) string {
	columns := map[model.SortKey]string{
		model.SortByCreatedAt: "t.created_at",
		model.SortByUpdatedAt: "t.updated_at",
		model.SortByTitle:     "t.title",
		model.SortByDueDate:   "t.due_date",
		model.SortByPriority:  "CASE t.priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END",
	}
	col, ok := columns[key]
	if !ok {
		col = columns[model.SortByCreatedAt]
	}

	direction := "DESC"
	if order == model.SortAsc {
		direction = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, t.id %s", col, direction, direction)
}

// requireCategory fails with ErrCategoryMissing unless the category exists.
func (s *SQLStore) requireCategory(ctx context.Context, q sqlx.QueryerContext, id int64) error {
	var n int
	err := sqlx.GetContext(ctx, q, &n,
		q.(rebinder).Rebind("SELECT COUNT(*) FROM categories WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("checking category %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", id, ErrCategoryMissing)
	}
	return nil
}

// rebinder is implemented by both *sqlx.DB and *sqlx.Tx.
type rebinder interface {
	Rebind(query string) string
}

func toTodos(rows []todoRow) []model.Todo {
	todos := make([]model.Todo, len(rows))
	for i, r := range rows {
		todos[i] = r.toModel()
	}
	return todos
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
