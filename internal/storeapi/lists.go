package storeapi

import (
	"context"
	"fmt"
	"net/http"
)

type cartAdd struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type cartUpdate struct {
	Quantity int `json:"quantity"`
}

type wishlistAdd struct {
	ProductID int64 `json:"product_id"`
}

// Cart loads the server-side cart.
func (c *Client) Cart(ctx context.Context, userID int64) ([]CartLine, error) {
	var out CartResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d/cart", userID), nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// AddCartItem adds quantity of a product to the server-side cart.
func (c *Client) AddCartItem(ctx context.Context, userID, productID int64, quantity int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/users/%d/cart", userID), cartAdd{ProductID: productID, Quantity: quantity}, nil)
}

// UpdateCartItem sets the quantity of a cart line.
func (c *Client) UpdateCartItem(ctx context.Context, userID, itemID int64, quantity int) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d/cart/%d", userID, itemID), cartUpdate{Quantity: quantity}, nil)
}

// RemoveCartItem deletes a cart line.
func (c *Client) RemoveCartItem(ctx context.Context, userID, itemID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d/cart/%d", userID, itemID), nil, nil)
}

// ClearCart empties the server-side cart.
func (c *Client) ClearCart(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d/cart", userID), nil, nil)
}

// Wishlist loads the server-side wishlist.
func (c *Client) Wishlist(ctx context.Context, userID int64) ([]WishlistEntry, error) {
	var out []WishlistEntry
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d/wishlist", userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddWishlistItem adds a product to the server-side wishlist.
func (c *Client) AddWishlistItem(ctx context.Context, userID, productID int64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/users/%d/wishlist", userID), wishlistAdd{ProductID: productID}, nil)
}

// RemoveWishlistItem removes a product from the server-side wishlist.
func (c *Client) RemoveWishlistItem(ctx context.Context, userID, productID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d/wishlist/%d", userID, productID), nil, nil)
}

// ClearWishlist empties the server-side wishlist.
func (c *Client) ClearWishlist(ctx context.Context, userID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d/wishlist", userID), nil, nil)
}
