// Package account implements the signed-in shopper's dashboard.
package account

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/freshmart/storefront/internal/platform/httpx"
	"github.com/freshmart/storefront/internal/storeapi"
)

// Service orchestrates account reads and writes against the backend.
type Service struct {
	backend  Backend
	validate *validator.Validate
}

// NewService constructs a Service.
func NewService(backend Backend) *Service {
	return &Service{backend: backend, validate: newValidator()}
}

// Dashboard loads profile, orders, wishlist and addresses concurrently.
// Any failure fails the whole dashboard.
func (s *Service) Dashboard(ctx context.Context, userID int64) (Dashboard, error) {
	var (
		d      Dashboard
		orders []storeapi.OrderSummary
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Profile, err = s.backend.Profile(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.backend.UserOrders(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.Wishlist, err = s.backend.Wishlist(ctx, userID)
		return err
	})
	g.Go(func() (err error) {
		d.Addresses, err = s.backend.Addresses(ctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("account: dashboard: %w", err)
	}

	d.Orders = make([]Order, 0, len(orders))
	for _, o := range orders {
		d.Orders = append(d.Orders, orderRow(o))
	}
	if d.Wishlist == nil {
		d.Wishlist = []storeapi.WishlistEntry{}
	}
	if d.Addresses == nil {
		d.Addresses = []storeapi.Address{}
	}
	d.MultipleDefaults = MultipleDefaults(d.Addresses)
	return d, nil
}

// MultipleDefaults reports whether more than one address is flagged default.
func MultipleDefaults(addrs []storeapi.Address) bool {
	n := 0
	for _, a := range addrs {
		if a.IsDefault {
			n++
		}
	}
	return n > 1
}

// Order returns one order of userID. Orders of other users read as not found.
func (s *Service) Order(ctx context.Context, userID, orderID int64) (storeapi.Order, error) {
	o, err := s.backend.Order(ctx, orderID)
	if err != nil {
		return storeapi.Order{}, err
	}
	if o.UserID != userID {
		return storeapi.Order{}, httpx.WithMessage(httpx.ErrNotFound, "Order not found")
	}
	o.Status = NormalizeStatus(o.Status)
	return o, nil
}

// Addresses lists saved addresses.
func (s *Service) Addresses(ctx context.Context, userID int64) ([]storeapi.Address, error) {
	addrs, err := s.backend.Addresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if addrs == nil {
		addrs = []storeapi.Address{}
	}
	return addrs, nil
}

// AddAddress validates f, saves it and returns the refreshed list.
func (s *Service) AddAddress(ctx context.Context, userID int64, f AddressForm) ([]storeapi.Address, error) {
	if err := validateAddress(s.validate, &f); err != nil {
		return nil, err
	}
	if _, err := s.backend.AddAddress(ctx, userID, toAddress(f)); err != nil {
		return nil, err
	}
	return s.Addresses(ctx, userID)
}

// UpdateAddress validates f, replaces address addressID and returns the refreshed list.
func (s *Service) UpdateAddress(ctx context.Context, userID, addressID int64, f AddressForm) ([]storeapi.Address, error) {
	if err := validateAddress(s.validate, &f); err != nil {
		return nil, err
	}
	addr := toAddress(f)
	addr.ID = addressID
	if err := s.backend.UpdateAddress(ctx, userID, addressID, addr); err != nil {
		return nil, err
	}
	return s.Addresses(ctx, userID)
}

// DeleteAddress removes addressID and returns the refreshed list.
func (s *Service) DeleteAddress(ctx context.Context, userID, addressID int64) ([]storeapi.Address, error) {
	if err := s.backend.DeleteAddress(ctx, userID, addressID); err != nil {
		return nil, err
	}
	return s.Addresses(ctx, userID)
}

// PaymentMethods lists saved payment methods.
func (s *Service) PaymentMethods(ctx context.Context, userID int64) ([]storeapi.PaymentMethod, error) {
	methods, err := s.backend.PaymentMethods(ctx, userID)
	if err != nil {
		return nil, err
	}
	if methods == nil {
		methods = []storeapi.PaymentMethod{}
	}
	return methods, nil
}

// AddPaymentMethod validates f and saves it; the backend keeps only the last four digits.
func (s *Service) AddPaymentMethod(ctx context.Context, userID int64, f PaymentForm) (storeapi.PaymentMethod, error) {
	if err := validatePayment(s.validate, &f); err != nil {
		return storeapi.PaymentMethod{}, err
	}
	return s.backend.AddPaymentMethod(ctx, userID, storeapi.PaymentMethodPayload{
		Type:   f.Type,
		Name:   f.Name,
		Number: f.Number,
		Expiry: f.Expiry,
		CVC:    f.CVC,
	})
}

// DeletePaymentMethod removes methodID.
func (s *Service) DeletePaymentMethod(ctx context.Context, userID, methodID int64) error {
	return s.backend.DeletePaymentMethod(ctx, userID, methodID)
}

// UpdateSettings sends the toggles present in f.
func (s *Service) UpdateSettings(ctx context.Context, userID int64, f SettingsForm) error {
	if f.EmailNotifications == nil && f.TwoFactorEnabled == nil {
		return httpx.Invalid("No settings to update")
	}
	return s.backend.UpdateSettings(ctx, userID, storeapi.Settings{
		EmailNotifications: f.EmailNotifications,
		TwoFactorEnabled:   f.TwoFactorEnabled,
	})
}

// ChangePassword validates f and forwards it.
func (s *Service) ChangePassword(ctx context.Context, userID int64, f PasswordForm) error {
	if err := validatePassword(s.validate, f); err != nil {
		return err
	}
	return s.backend.ChangePassword(ctx, userID, storeapi.PasswordChange{
		CurrentPassword: f.Current,
		NewPassword:     f.New,
		ConfirmPassword: f.Confirm,
	})
}

func orderRow(o storeapi.OrderSummary) Order {
	items := o.ItemsCount
	if items == 0 {
		for _, p := range o.Products {
			items += p.Quantity
		}
	}
	return Order{
		ID:       o.ID,
		Status:   NormalizeStatus(o.Status),
		Date:     o.CreatedAt,
		Items:    items,
		Total:    o.TotalAmount,
		Products: o.Products,
	}
}

func toAddress(f AddressForm) storeapi.Address {
	return storeapi.Address{
		Type:      f.Type,
		Name:      f.Name,
		Street:    f.Street,
		City:      f.City,
		State:     f.State,
		Zip:       f.Zip,
		Country:   f.Country,
		IsDefault: f.IsDefault,
	}
}
