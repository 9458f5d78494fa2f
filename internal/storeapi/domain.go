package storeapi

// Product mirrors the backend product representation.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	Category    string  `json:"category,omitempty"`
	CategoryID  int64   `json:"category_id,omitempty"`
}

// ProductPayload is the body for product create and update calls.
type ProductPayload struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Unit        string  `json:"unit"`
	Stock       int     `json:"stock"`
	ImageURL    string  `json:"image_url"`
	CategoryID  int64   `json:"category_id"`
	Rating      float64 `json:"rating"`
}

// ProductFilter narrows product listings server side.
type ProductFilter struct {
	Category string
	Search   string
}

// Category is a static reference entry.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// CategoryPayload is the body for category creation.
type CategoryPayload struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Created is returned by create endpoints.
type Created struct {
	ID      int64  `json:"id"`
	Message string `json:"message,omitempty"`
}

// Ack is returned by update and delete endpoints.
type Ack struct {
	Message string `json:"message,omitempty"`
}

// OrderLine is one product line of an order request.
type OrderLine struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderPayload is the body of POST /api/orders.
type OrderPayload struct {
	UserID      int64       `json:"user_id"`
	TotalAmount float64     `json:"total_amount"`
	Items       []OrderLine `json:"items"`
}

// OrderCreated is returned by POST /api/orders.
type OrderCreated struct {
	OrderID int64  `json:"order_id"`
	Message string `json:"message,omitempty"`
}

// OrderItem is a line of a stored order.
type OrderItem struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Order is the detailed order returned by GET /api/orders/:id.
type Order struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"user_id"`
	TotalAmount float64     `json:"total_amount"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"created_at"`
	Items       []OrderItem `json:"items"`
}

// OrderSummary is an entry of GET /api/users/:id/orders.
type OrderSummary struct {
	ID          int64       `json:"id"`
	TotalAmount float64     `json:"total_amount"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"created_at"`
	ItemsCount  int         `json:"items_count"`
	Products    []OrderItem `json:"products,omitempty"`
}

// RegisterPayload is the body of POST /api/users/register.
type RegisterPayload struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginPayload is the body of POST /api/users/login.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the identity returned on login and by the profile endpoint.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CartLine is a server-side cart line item.
type CartLine struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Product   Product `json:"product"`
}

// CartResponse wraps GET /api/users/:id/cart.
type CartResponse struct {
	Items []CartLine `json:"items"`
}

// WishlistEntry is a server-side wishlist entry with denormalized product fields.
type WishlistEntry struct {
	ID        int64   `json:"id,omitempty"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price,omitempty"`
	Unit      string  `json:"unit,omitempty"`
	Image     string  `json:"image,omitempty"`
	Rating    float64 `json:"rating,omitempty"`
	Stock     int     `json:"stock,omitempty"`
}

// Address is a saved delivery address.
type Address struct {
	ID        int64  `json:"id,omitempty"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
	IsDefault bool   `json:"isDefault"`
}

// PaymentMethod is a saved, masked payment instrument.
type PaymentMethod struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Last4 string `json:"last4"`
	Name  string `json:"name"`
}

// PaymentMethodPayload is the body for adding a payment method.
type PaymentMethodPayload struct {
	Type   string `json:"type"`
	Name   string `json:"name"`
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
}

// Settings is a partial settings update; nil fields are omitted.
type Settings struct {
	EmailNotifications *bool `json:"email_notifications,omitempty"`
	TwoFactorEnabled   *bool `json:"two_factor_enabled,omitempty"`
}

// PasswordChange is the body of PUT /api/users/:id/password.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// HealthStatus is returned by GET /api/health.
type HealthStatus struct {
	Status string `json:"status"`
}
