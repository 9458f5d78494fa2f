package storeapi

import (
	"context"
	"fmt"
	"net/http"
)

// Register creates a customer account.
func (c *Client) Register(ctx context.Context, payload RegisterPayload) (Created, error) {
	var out Created
	err := c.do(ctx, http.MethodPost, "/api/users/register", payload, &out)
	return out, err
}

// Login verifies credentials and returns the user identity.
func (c *Client) Login(ctx context.Context, payload LoginPayload) (User, error) {
	var out User
	err := c.do(ctx, http.MethodPost, "/api/users/login", payload, &out)
	return out, err
}

// Profile fetches the user profile.
func (c *Client) Profile(ctx context.Context, userID int64) (User, error) {
	var out User
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", userID), nil, &out)
	return out, err
}

// CreateOrder places an order.
func (c *Client) CreateOrder(ctx context.Context, payload OrderPayload) (OrderCreated, error) {
	var out OrderCreated
	err := c.do(ctx, http.MethodPost, "/api/orders", payload, &out)
	return out, err
}

// Order fetches one order with its lines.
func (c *Client) Order(ctx context.Context, id int64) (Order, error) {
	var out Order
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%d", id), nil, &out)
	return out, err
}

// UserOrders lists a user's orders, newest first.
func (c *Client) UserOrders(ctx context.Context, userID int64) ([]OrderSummary, error) {
	var out []OrderSummary
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d/orders", userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type paymentMethodsResponse struct {
	PaymentMethods []PaymentMethod `json:"payment_methods"`
}

type paymentMethodResponse struct {
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// PaymentMethods lists saved payment methods.
func (c *Client) PaymentMethods(ctx context.Context, userID int64) ([]PaymentMethod, error) {
	var out paymentMethodsResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d/payment_methods", userID), nil, &out); err != nil {
		return nil, err
	}
	return out.PaymentMethods, nil
}

// AddPaymentMethod saves a payment method and returns its masked form.
func (c *Client) AddPaymentMethod(ctx context.Context, userID int64, payload PaymentMethodPayload) (PaymentMethod, error) {
	var out paymentMethodResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/users/%d/payment_methods", userID), payload, &out)
	return out.PaymentMethod, err
}

// DeletePaymentMethod removes a saved payment method.
func (c *Client) DeletePaymentMethod(ctx context.Context, userID, methodID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d/payment_methods/%d", userID, methodID), nil, nil)
}

// UpdateSettings applies a partial settings update.
func (c *Client) UpdateSettings(ctx context.Context, userID int64, settings Settings) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d/settings", userID), settings, nil)
}

// ChangePassword updates the account password.
func (c *Client) ChangePassword(ctx context.Context, userID int64, change PasswordChange) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d/password", userID), change, nil)
}

// Addresses lists saved addresses.
func (c *Client) Addresses(ctx context.Context, userID int64) ([]Address, error) {
	var out []Address
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d/addresses", userID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddAddress saves a new address.
func (c *Client) AddAddress(ctx context.Context, userID int64, addr Address) (Created, error) {
	var out Created
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/users/%d/addresses", userID), addr, &out)
	return out, err
}

// UpdateAddress replaces a saved address.
func (c *Client) UpdateAddress(ctx context.Context, userID, addressID int64, addr Address) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d/addresses/%d", userID, addressID), addr, nil)
}

// DeleteAddress removes a saved address.
func (c *Client) DeleteAddress(ctx context.Context, userID, addressID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d/addresses/%d", userID, addressID), nil, nil)
}
