package account

import (
	"context"

	"github.com/freshmart/storefront/internal/storeapi"
)

// Order statuses shown on the dashboard.
const (
	StatusProcessing = "processing"
	StatusInTransit  = "in-transit"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// NormalizeStatus maps backend order states onto dashboard statuses.
// Unknown states pass through unchanged.
func NormalizeStatus(status string) string {
	switch status {
	case "pending", "paid", StatusProcessing:
		return StatusProcessing
	case "shipped", "in_transit", StatusInTransit:
		return StatusInTransit
	case "completed", StatusDelivered:
		return StatusDelivered
	case "canceled", StatusCancelled:
		return StatusCancelled
	default:
		return status
	}
}

// Address types offered by the address form.
var AddressTypes = []string{"Home", "Work", "Other"}

// Payment method types offered by the payment form.
var PaymentTypes = []string{"Credit Card", "Debit Card", "PayPal"}

// Order is an order history row.
type Order struct {
	ID       int64                `json:"id"`
	Status   string               `json:"status"`
	Date     string               `json:"date"`
	Items    int                  `json:"items"`
	Total    float64              `json:"total"`
	Products []storeapi.OrderItem `json:"products,omitempty"`
}

// Dashboard aggregates everything shown on the account page.
type Dashboard struct {
	Profile   storeapi.User            `json:"profile"`
	Orders    []Order                  `json:"orders"`
	Wishlist  []storeapi.WishlistEntry `json:"wishlist"`
	Addresses []storeapi.Address       `json:"addresses"`
	// MultipleDefaults is set when more than one address claims isDefault.
	// Nothing enforces a single default.
	MultipleDefaults bool `json:"multiple_defaults"`
}

// AddressForm is the address editor input.
type AddressForm struct {
	Type      string `json:"type" validate:"omitempty,oneof=Home Work Other"`
	Name      string `json:"name" validate:"required"`
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Zip       string `json:"zip" validate:"required"`
	Country   string `json:"country" validate:"required"`
	IsDefault bool   `json:"isDefault"`
}

// PaymentForm is the add-payment-method input.
type PaymentForm struct {
	Type   string `json:"type" validate:"required,oneof='Credit Card' 'Debit Card' PayPal"`
	Name   string `json:"name" validate:"required"`
	Number string `json:"number" validate:"required,cardnumber"`
	Expiry string `json:"expiry" validate:"required,expiry"`
	CVC    string `json:"cvc" validate:"required,numeric,max=4"`
}

// SettingsForm toggles account preferences; absent fields are unchanged.
type SettingsForm struct {
	EmailNotifications *bool `json:"email_notifications"`
	TwoFactorEnabled   *bool `json:"two_factor_enabled"`
}

// PasswordForm changes the account password.
type PasswordForm struct {
	Current string `json:"current_password" validate:"required"`
	New     string `json:"new_password" validate:"required,min=8"`
	Confirm string `json:"confirm_password" validate:"required"`
}

// Backend is the subset of the REST client used by the account area.
type Backend interface {
	Profile(ctx context.Context, userID int64) (storeapi.User, error)
	UserOrders(ctx context.Context, userID int64) ([]storeapi.OrderSummary, error)
	Order(ctx context.Context, id int64) (storeapi.Order, error)
	Wishlist(ctx context.Context, userID int64) ([]storeapi.WishlistEntry, error)
	Addresses(ctx context.Context, userID int64) ([]storeapi.Address, error)
	AddAddress(ctx context.Context, userID int64, addr storeapi.Address) (storeapi.Created, error)
	UpdateAddress(ctx context.Context, userID, addressID int64, addr storeapi.Address) error
	DeleteAddress(ctx context.Context, userID, addressID int64) error
	PaymentMethods(ctx context.Context, userID int64) ([]storeapi.PaymentMethod, error)
	AddPaymentMethod(ctx context.Context, userID int64, payload storeapi.PaymentMethodPayload) (storeapi.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, userID, methodID int64) error
	UpdateSettings(ctx context.Context, userID int64, settings storeapi.Settings) error
	ChangePassword(ctx context.Context, userID int64, change storeapi.PasswordChange) error
}
