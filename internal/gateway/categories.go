package gateway

import (
	"context"
	"net/http"

	"github.com/frezix0/TodoReact/internal/model"
)

// ListCategories fetches all categories ordered by name. The returned
// categories carry no todo count.
func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	return c.listCategories(ctx, apiPrefix+"/categories")
}

// ListCategoriesWithCounts fetches all categories with their todo counts.
func (c *Client) ListCategoriesWithCounts(ctx context.Context) ([]model.Category, error) {
	return c.listCategories(ctx, apiPrefix+"/categories/with-counts", "todo_count")
}

func (c *Client) listCategories(
	ctx context.Context,
	path string,
	extra ...string,
) ([]model.Category, error) {
	raw, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	required := append([]string{"id", "name"}, extra...)
	return decodeArray[model.Category](opName(http.MethodGet, path), raw, required...)
}

// GetCategory fetches a single category.
func (c *Client) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	var cat model.Category
	if err := c.getEntity(ctx, categoryPath(id), nil, &cat, "id", "name"); err != nil {
		return nil, err
	}
	return &cat, nil
}

// CreateCategory creates a category.
func (c *Client) CreateCategory(
	ctx context.Context,
	payload model.CategoryCreate,
) (*model.Category, error) {
	var cat model.Category
	err := c.sendEntity(ctx, http.MethodPost, apiPrefix+"/categories", payload, &cat, "id", "name")
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// UpdateCategory applies payload to the category with the given id.
func (c *Client) UpdateCategory(
	ctx context.Context,
	id int64,
	payload model.CategoryUpdate,
) (*model.Category, error) {
	var cat model.Category
	err := c.sendEntity(ctx, http.MethodPut, categoryPath(id), payload, &cat, "id", "name")
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// DeleteCategory deletes a category. The server deletes its todos with it.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, categoryPath(id), nil, nil)
	return err
}
