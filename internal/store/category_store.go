package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/frezix0/TodoReact/internal/model"
)

type categoryRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	CreatedAt time.Time `db:"created_at"`
	TodoCount *int      `db:"todo_count"`
}

func (r categoryRow) toModel() model.Category {
	return model.Category{
		ID:        r.ID,
		Name:      r.Name,
		Color:     strings.TrimSpace(r.Color),
		CreatedAt: r.CreatedAt.UTC(),
		TodoCount: r.TodoCount,
	}
}

// CreateCategory inserts a new category. Names are unique.
func (s *SQLStore) CreateCategory(
	ctx context.Context,
	in model.CategoryCreate,
) (*model.Category, error) {
	in.Normalize()
	if in.Name == "" {
		return nil, fmt.Errorf("category name must not be empty")
	}

	var id int64
	err := s.db.GetContext(ctx, &id, s.db.Rebind(`
		INSERT INTO categories (name, color, created_at)
		VALUES (?, ?, ?)
		RETURNING id`),
		in.Name, in.Color, time.Now().UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating category %q: %w", in.Name, ErrDuplicate)
		}
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return s.GetCategory(ctx, id)
}

// GetCategory retrieves a single category by ID.
func (s *SQLStore) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	var row categoryRow
	err := s.db.GetContext(ctx, &row,
		s.db.Rebind("SELECT id, name, color, created_at FROM categories WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("getting category %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting category %d: %w", id, err)
	}
	c := row.toModel()
	return &c, nil
}

// UpdateCategory applies the set fields of in to the category.
func (s *SQLStore) UpdateCategory(
	ctx context.Context,
	id int64,
	in model.CategoryUpdate,
) (*model.Category, error) {
	in.Normalize()
	if in.Name != nil && *in.Name == "" {
		return nil, fmt.Errorf("category name must not be empty")
	}

	current, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	in.Apply(current)

	_, err = s.db.ExecContext(ctx,
		s.db.Rebind("UPDATE categories SET name = ?, color = ? WHERE id = ?"),
		current.Name, current.Color, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("renaming category %d to %q: %w", id, current.Name, ErrDuplicate)
		}
		return nil, fmt.Errorf("updating category %d: %w", id, err)
	}
	return current, nil
}

// DeleteCategory removes a category. Its todos are removed with it.
func (s *SQLStore) DeleteCategory(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM categories WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting category %d: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("deleting category %d: %w", id, ErrNotFound)
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func (s *SQLStore) ListCategories(ctx context.Context) ([]model.Category, error) {
	var rows []categoryRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT id, name, color, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	return toCategories(rows), nil
}

// ListCategoriesWithCounts returns all categories ordered by name, each
// carrying the number of todos it owns.
func (s *SQLStore) ListCategoriesWithCounts(ctx context.Context) ([]model.Category, error) {
	var rows []categoryRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT c.id, c.name, c.color, c.created_at, COUNT(t.id) AS todo_count
		FROM categories c
		LEFT JOIN todos t ON t.category_id = c.id
		GROUP BY c.id, c.name, c.color, c.created_at
		ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("querying category counts: %w", err)
	}

	categories := toCategories(rows)
	for i := range categories {
		if categories[i].TodoCount == nil {
			categories[i] = categories[i].WithCount(0)
		}
	}
	return categories, nil
}

func toCategories(rows []categoryRow) []model.Category {
	categories := make([]model.Category, len(rows))
	for i, r := range rows {
		categories[i] = r.toModel()
	}
	return categories
}
