package storeapi

import (
	"context"
	"fmt"
	"net/http"
)

// Categories lists all categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategory adds a category.
func (c *Client) CreateCategory(ctx context.Context, payload CategoryPayload) (Created, error) {
	var out Created
	err := c.do(ctx, http.MethodPost, "/api/categories", payload, &out)
	return out, err
}

// Products lists products, optionally filtered by category slug and name search.
func (c *Client) Products(ctx context.Context, filter ProductFilter) ([]Product, error) {
	var out []Product
	path := "/api/products" + qs(map[string]string{"category": filter.Category, "search": filter.Search})
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Product fetches a single product.
func (c *Client) Product(ctx context.Context, id int64) (Product, error) {
	var out Product
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%d", id), nil, &out)
	return out, err
}

// CreateProduct adds a product.
func (c *Client) CreateProduct(ctx context.Context, payload ProductPayload) (Created, error) {
	var out Created
	err := c.do(ctx, http.MethodPost, "/api/products", payload, &out)
	return out, err
}

// UpdateProduct replaces the editable fields of a product.
func (c *Client) UpdateProduct(ctx context.Context, id int64, payload ProductPayload) (Ack, error) {
	var out Ack
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/products/%d", id), payload, &out)
	return out, err
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) (Ack, error) {
	var out Ack
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), nil, &out)
	return out, err
}
