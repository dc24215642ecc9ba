package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"tugestor-cli/internal/model"
)

var ErrCategoryNameRequired = errors.New("el nombre de la categoría es obligatorio")

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	if err := c.do(ctx, http.MethodGet, "/categoria", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, req model.CategoryRequest) (model.Category, error) {
	var out model.Category
	if strings.TrimSpace(req.Name) == "" {
		return out, ErrCategoryNameRequired
	}
	err := c.do(ctx, http.MethodPost, "/categoria/add", req, &out)
	return out, err
}

// UpdateCategory replaces name, color and icon of category id.
func (c *Client) UpdateCategory(ctx context.Context, id int64, req model.CategoryRequest) (model.Category, error) {
	var out model.Category
	if strings.TrimSpace(req.Name) == "" {
		return out, ErrCategoryNameRequired
	}
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/categoria/update/%d", id), req, &out)
	return out, err
}

// DeleteCategory removes category id. Tasks referencing it are left without a category.
func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/categoria/delete/%d", id), nil, nil)
}

func (c *Client) SearchCategories(ctx context.Context, partial string) ([]model.Category, error) {
	var out []model.Category
	if err := c.do(ctx, http.MethodGet, "/categoria/nombre/"+url.PathEscape(partial), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
